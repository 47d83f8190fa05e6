// Package memory is an in-process implementation of the repository
// contracts. A single mutex guards every collection, so each repository call
// is atomic with respect to all others. It backs STORE_DRIVER=memory and the
// use case tests.
package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
)

type Store struct {
	mu  sync.Mutex
	now func() time.Time

	savedLists map[string]*entity.SavedList
	carts      map[string]*entity.Cart
	products   map[string]*entity.Product
	addresses  map[string]*entity.Address
	orders     map[string]*entity.Order
	reviews    map[string]*entity.Review
}

func NewStore() *Store {
	return &Store{
		now:        time.Now,
		savedLists: make(map[string]*entity.SavedList),
		carts:      make(map[string]*entity.Cart),
		products:   make(map[string]*entity.Product),
		addresses:  make(map[string]*entity.Address),
		orders:     make(map[string]*entity.Order),
		reviews:    make(map[string]*entity.Review),
	}
}

// SetClock replaces the time source; tests use it for deterministic ordering.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) SavedLists() repository.SavedListRepository { return &savedListRepository{s} }
func (s *Store) Carts() repository.CartRepository           { return &cartRepository{s} }
func (s *Store) Products() repository.ProductRepository     { return &productRepository{s} }
func (s *Store) Addresses() repository.AddressRepository    { return &addressRepository{s} }
func (s *Store) Orders() repository.OrderRepository         { return &orderRepository{s} }
func (s *Store) Reviews() repository.ReviewRepository       { return &reviewRepository{s} }

func newID() string {
	return uuid.NewString()
}

func copyString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func copyTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneSavedList(l *entity.SavedList) *entity.SavedList {
	c := *l
	c.Items = make([]entity.SavedItem, len(l.Items))
	for i, it := range l.Items {
		it.VariantID = copyString(it.VariantID)
		it.PriceSnapshot = copyFloat(it.PriceSnapshot)
		if it.Variant != nil {
			v := *it.Variant
			it.Variant = &v
		}
		c.Items[i] = it
	}
	c.Meta.LastAddedAt = copyTime(l.Meta.LastAddedAt)
	c.Meta.LastRemovedAt = copyTime(l.Meta.LastRemovedAt)
	c.ArchivedAt = copyTime(l.ArchivedAt)
	return &c
}

func cloneCart(cart *entity.Cart) *entity.Cart {
	c := *cart
	c.Items = make([]entity.CartItem, len(cart.Items))
	for i, it := range cart.Items {
		it.VariantID = copyString(it.VariantID)
		if it.Variant != nil {
			m := make(map[string]interface{}, len(it.Variant))
			for k, v := range it.Variant {
				m[k] = v
			}
			it.Variant = m
		}
		c.Items[i] = it
	}
	c.ExpiresAt = copyTime(cart.ExpiresAt)
	return &c
}

func cloneProduct(p *entity.Product) *entity.Product {
	c := *p
	c.SalePrice = copyFloat(p.SalePrice)
	c.Images = append([]string(nil), p.Images...)
	c.Variants = make([]entity.ProductVariant, len(p.Variants))
	for i, v := range p.Variants {
		v.Price = copyFloat(v.Price)
		if v.Attributes != nil {
			attrs := make(map[string]string, len(v.Attributes))
			for k, val := range v.Attributes {
				attrs[k] = val
			}
			v.Attributes = attrs
		}
		c.Variants[i] = v
	}
	return &c
}

func cloneAddress(a *entity.Address) *entity.Address {
	c := *a
	return &c
}

func cloneOrder(o *entity.Order) *entity.Order {
	c := *o
	c.Items = make([]entity.OrderItem, len(o.Items))
	for i, it := range o.Items {
		it.VariantID = copyString(it.VariantID)
		c.Items[i] = it
	}
	if o.ShippingAddress != nil {
		c.ShippingAddress = cloneAddress(o.ShippingAddress)
	}
	return &c
}

func cloneReview(r *entity.Review) *entity.Review {
	c := *r
	c.Images = append([]string(nil), r.Images...)
	return &c
}
