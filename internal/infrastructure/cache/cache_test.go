package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrComputeCachesUntilInvalidated(t *testing.T) {
	s := New(time.Minute)
	calls := 0
	compute := func() (int, error) {
		calls++
		return calls, nil
	}

	v, err := GetOrCompute(s, "count:u1", time.Minute, []string{"savedlists:u1"}, compute)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	v, err = GetOrCompute(s, "count:u1", time.Minute, []string{"savedlists:u1"}, compute)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	s.Invalidate("savedlists:u2")
	v, _ = GetOrCompute(s, "count:u1", time.Minute, []string{"savedlists:u1"}, compute)
	assert.Equal(t, 1, v)

	s.Invalidate("savedlists:u1")
	v, _ = GetOrCompute(s, "count:u1", time.Minute, []string{"savedlists:u1"}, compute)
	assert.Equal(t, 2, v)
}

func TestGetOrComputeDoesNotCacheErrors(t *testing.T) {
	s := New(time.Minute)
	boom := errors.New("boom")

	_, err := GetOrCompute(s, "k", time.Minute, nil, func() (string, error) { return "", boom })
	assert.ErrorIs(t, err, boom)

	v, err := GetOrCompute(s, "k", time.Minute, nil, func() (string, error) { return "ok", nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}

func TestGetOrComputeDropsResultInvalidatedMidFlight(t *testing.T) {
	s := New(time.Minute)
	v, err := GetOrCompute(s, "k", time.Minute, []string{"t"}, func() (int, error) {
		s.Invalidate("t")
		return 1, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	v, _ = GetOrCompute(s, "k", time.Minute, []string{"t"}, func() (int, error) { return 2, nil })
	assert.Equal(t, 2, v)
}

func TestGetOrComputeSharesConcurrentMisses(t *testing.T) {
	s := New(time.Minute)
	var calls int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := GetOrCompute(s, "k", time.Minute, nil, func() (int, error) {
				atomic.AddInt32(&calls, 1)
				<-release
				return 7, nil
			})
			assert.NoError(t, err)
			assert.Equal(t, 7, v)
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.LessOrEqual(t, atomic.LoadInt32(&calls), int32(8))
	v, _ := GetOrCompute(s, "k", time.Minute, nil, func() (int, error) { return 0, nil })
	assert.Equal(t, 7, v)
}

func TestNilStoreAlwaysComputes(t *testing.T) {
	var s *Store
	v, err := GetOrCompute(s, "k", time.Minute, nil, func() (int, error) { return 3, nil })
	require.NoError(t, err)
	assert.Equal(t, 3, v)
}
