// Package cache is a read-through TTL cache with tag invalidation.
package cache

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

type Store struct {
	items *gocache.Cache
	group singleflight.Group

	mu   sync.Mutex
	tags map[string]map[string]struct{}
	// generation is bumped on every invalidation of a tag; a computation that
	// started under an older generation is not stored.
	generation map[string]uint64
}

func New(defaultTTL time.Duration) *Store {
	return &Store{
		items:      gocache.New(defaultTTL, 2*defaultTTL+time.Minute),
		tags:       make(map[string]map[string]struct{}),
		generation: make(map[string]uint64),
	}
}

func (s *Store) snapshot(tags []string) []uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	gens := make([]uint64, len(tags))
	for i, t := range tags {
		gens[i] = s.generation[t]
	}
	return gens
}

func (s *Store) store(key string, value interface{}, ttl time.Duration, tags []string, gens []uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range tags {
		if s.generation[t] != gens[i] {
			return
		}
	}
	s.items.Set(key, value, ttl)
	for _, t := range tags {
		keys, ok := s.tags[t]
		if !ok {
			keys = make(map[string]struct{})
			s.tags[t] = keys
		}
		keys[key] = struct{}{}
	}
}

// Invalidate drops every entry stored under tag.
func (s *Store) Invalidate(tag string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation[tag]++
	for key := range s.tags[tag] {
		s.items.Delete(key)
	}
	delete(s.tags, tag)
}

// Flush drops everything.
func (s *Store) Flush() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for tag := range s.tags {
		s.generation[tag]++
	}
	s.tags = make(map[string]map[string]struct{})
	s.items.Flush()
}

// GetOrCompute returns the cached value for key or computes, caches and
// returns it. Concurrent misses for the same key share one computation.
// Errors are never cached.
func GetOrCompute[T any](s *Store, key string, ttl time.Duration, tags []string, compute func() (T, error)) (T, error) {
	if s == nil {
		return compute()
	}
	if v, ok := s.items.Get(key); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}

	gens := s.snapshot(tags)
	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		value, err := compute()
		if err != nil {
			return nil, err
		}
		s.store(key, value, ttl, tags, gens)
		return value, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
