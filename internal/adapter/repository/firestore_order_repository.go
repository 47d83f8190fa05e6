package repository

import (
	"context"
	stderrors "errors"
	"sort"
	"time"

	"cloud.google.com/go/firestore"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
	"storefront/pkg/errors"
	"storefront/pkg/utils"
)

type firestoreOrderRepository struct {
	client      *firestore.Client
	maxAttempts int
}

func NewFirestoreOrderRepository(client *firestore.Client, maxAttempts int) repository.OrderRepository {
	return &firestoreOrderRepository{
		client:      client,
		maxAttempts: maxAttempts,
	}
}

func (r *firestoreOrderRepository) col() *firestore.CollectionRef {
	return r.client.Collection(ordersCollection)
}

// readProducts loads every product touched by changes inside tx; missing
// products are left out of the map.
func (r *firestoreOrderRepository) readProducts(tx *firestore.Transaction, changes []entity.StockChange) (map[string]*entity.Product, error) {
	products := make(map[string]*entity.Product)
	for _, id := range entity.ProductIDs(changes) {
		doc, err := tx.Get(r.client.Collection(productsCollection).Doc(id))
		if err != nil {
			if IsNotFound(err) {
				continue
			}
			return nil, err
		}
		var p entity.Product
		if err := doc.DataTo(&p); err != nil {
			return nil, err
		}
		p.ID = doc.Ref.ID
		products[p.ID] = &p
	}
	return products, nil
}

func (r *firestoreOrderRepository) writeStock(tx *firestore.Transaction, products map[string]*entity.Product, now time.Time) error {
	for id, p := range products {
		err := tx.Update(r.client.Collection(productsCollection).Doc(id), []firestore.Update{
			{Path: "stock", Value: p.Stock},
			{Path: "variants", Value: p.Variants},
			{Path: "updatedAt", Value: now},
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func stockError(err error) error {
	switch {
	case stderrors.Is(err, entity.ErrInsufficientStock):
		return errors.Conflict("Insufficient stock: " + err.Error())
	case stderrors.Is(err, entity.ErrUnknownVariant), stderrors.Is(err, entity.ErrProductUnavailable):
		return errors.Conflict("Product no longer available: " + err.Error())
	}
	return err
}

func (r *firestoreOrderRepository) Place(ctx context.Context, order *entity.Order) error {
	if order.ID == "" {
		order.ID = r.col().NewDoc().ID
	}
	orderRef := r.col().Doc(order.ID)
	cartRef := r.client.Collection(cartsCollection).Doc(entity.UserOwner(order.UserID).DocID())
	changes := order.StockChanges(-1)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		now := time.Now()
		products, err := r.readProducts(tx, changes)
		if err != nil {
			return err
		}
		cart, err := readCart(tx, cartRef)
		if err != nil {
			return err
		}
		if err := entity.ApplyStockChanges(products, changes, true); err != nil {
			return stockError(err)
		}

		if err := r.writeStock(tx, products, now); err != nil {
			return err
		}
		order.CreatedAt, order.UpdatedAt = now, now
		if err := tx.Create(orderRef, order); err != nil {
			return err
		}
		if cart != nil {
			cart.Consume(order.Items, now)
			return tx.Set(cartRef, cart)
		}
		return nil
	}, txOptions(r.maxAttempts)...)
	return storeError(err, "Failed to place order")
}

func (r *firestoreOrderRepository) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	doc, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		if IsNotFound(err) {
			return nil, errors.NotFound("Order", err)
		}
		return nil, storeError(err, "Failed to get order")
	}
	var order entity.Order
	if err := doc.DataTo(&order); err != nil {
		return nil, errors.Internal("Failed to parse order data", err)
	}
	order.ID = doc.Ref.ID
	return &order, nil
}

func (r *firestoreOrderRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.Order, int64, error) {
	// Simple query without OrderBy to avoid composite index requirement
	docs, err := r.col().Where("userId", "==", userID).Documents(ctx).GetAll()
	if err != nil {
		return nil, 0, storeError(err, "Failed to list orders")
	}
	orders := make([]*entity.Order, 0, len(docs))
	for _, doc := range docs {
		var order entity.Order
		if err := doc.DataTo(&order); err != nil {
			continue
		}
		order.ID = doc.Ref.ID
		orders = append(orders, &order)
	}
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	start, end := utils.Bounds(len(orders), limit, offset)
	return orders[start:end], int64(len(orders)), nil
}

func (r *firestoreOrderRepository) Cancel(ctx context.Context, userID, id string) (*entity.Order, error) {
	ref := r.col().Doc(id)
	var result *entity.Order
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		now := time.Now()
		doc, err := tx.Get(ref)
		if err != nil {
			if IsNotFound(err) {
				return errors.NotFound("Order", err)
			}
			return err
		}
		var order entity.Order
		if err := doc.DataTo(&order); err != nil {
			return err
		}
		order.ID = doc.Ref.ID
		if order.UserID != userID {
			return errors.NotFound("Order", nil)
		}
		if order.Status != entity.OrderStatusPending {
			return errors.Conflict("Only pending orders can be cancelled")
		}
		changes := order.StockChanges(1)
		products, err := r.readProducts(tx, changes)
		if err != nil {
			return err
		}
		entity.ApplyStockChanges(products, changes, false)

		if err := r.writeStock(tx, products, now); err != nil {
			return err
		}
		order.Status = entity.OrderStatusCancelled
		order.UpdatedAt = now
		result = &order
		return tx.Update(ref, []firestore.Update{
			{Path: "status", Value: order.Status},
			{Path: "updatedAt", Value: now},
		})
	}, txOptions(r.maxAttempts)...)
	if err != nil {
		return nil, storeError(err, "Failed to cancel order")
	}
	return result, nil
}
