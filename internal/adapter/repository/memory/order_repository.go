package memory

import (
	"context"
	stderrors "errors"
	"sort"

	"storefront/internal/domain/entity"
	"storefront/pkg/errors"
	"storefront/pkg/utils"
)

type orderRepository struct {
	s *Store
}

// workingProducts clones the products touched by changes.
func (r *orderRepository) workingProducts(changes []entity.StockChange) map[string]*entity.Product {
	products := make(map[string]*entity.Product)
	for _, id := range entity.ProductIDs(changes) {
		if p, ok := r.s.products[id]; ok {
			products[id] = cloneProduct(p)
		}
	}
	return products
}

func (r *orderRepository) commitProducts(products map[string]*entity.Product) {
	now := r.s.now()
	for id, p := range products {
		p.UpdatedAt = now
		r.s.products[id] = p
	}
}

func (r *orderRepository) Place(ctx context.Context, order *entity.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	changes := order.StockChanges(-1)
	products := r.workingProducts(changes)
	if err := entity.ApplyStockChanges(products, changes, true); err != nil {
		switch {
		case stderrors.Is(err, entity.ErrInsufficientStock):
			return errors.Conflict("Insufficient stock: " + err.Error())
		default:
			return errors.Conflict("Product no longer available: " + err.Error())
		}
	}

	now := r.s.now()
	if order.ID == "" {
		order.ID = newID()
	}
	order.CreatedAt, order.UpdatedAt = now, now
	r.commitProducts(products)
	r.s.orders[order.ID] = cloneOrder(order)
	if cart, ok := r.s.carts[entity.UserOwner(order.UserID).DocID()]; ok {
		cart.Consume(order.Items, now)
	}
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o, ok := r.s.orders[id]
	if !ok {
		return nil, errors.NotFound("Order", nil)
	}
	return cloneOrder(o), nil
}

func (r *orderRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.Order, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var orders []*entity.Order
	for _, o := range r.s.orders {
		if o.UserID == userID {
			orders = append(orders, cloneOrder(o))
		}
	}
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	start, end := utils.Bounds(len(orders), limit, offset)
	return orders[start:end], int64(len(orders)), nil
}

func (r *orderRepository) Cancel(ctx context.Context, userID, id string) (*entity.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o, ok := r.s.orders[id]
	if !ok || o.UserID != userID {
		return nil, errors.NotFound("Order", nil)
	}
	if o.Status != entity.OrderStatusPending {
		return nil, errors.Conflict("Only pending orders can be cancelled")
	}
	changes := o.StockChanges(1)
	products := r.workingProducts(changes)
	entity.ApplyStockChanges(products, changes, false)
	r.commitProducts(products)

	o.Status = entity.OrderStatusCancelled
	o.UpdatedAt = r.s.now()
	return cloneOrder(o), nil
}
