package entity

import (
	"errors"
	"fmt"
	"time"
)

var ErrProductUnavailable = errors.New("product: unavailable")

const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

type OrderItem struct {
	ProductID string  `json:"product_id" firestore:"productId"`
	VariantID *string `json:"variant_id" firestore:"variantId"`
	Name      string  `json:"name" firestore:"name"`
	SKU       string  `json:"sku,omitempty" firestore:"sku,omitempty"`
	Image     string  `json:"image,omitempty" firestore:"image,omitempty"`
	UnitPrice float64 `json:"unit_price" firestore:"unitPrice"`
	Quantity  int     `json:"quantity" firestore:"quantity"`
	LineTotal float64 `json:"line_total" firestore:"lineTotal"`
}

type Order struct {
	ID              string      `json:"id" firestore:"id"`
	UserID          string      `json:"user_id" firestore:"userId"`
	Items           []OrderItem `json:"items" firestore:"items"`
	Subtotal        float64     `json:"subtotal" firestore:"subtotal"`
	ShippingFee     float64     `json:"shipping_fee" firestore:"shippingFee"`
	Total           float64     `json:"total" firestore:"total"`
	Currency        string      `json:"currency" firestore:"currency"`
	Status          string      `json:"status" firestore:"status"`
	ShippingAddress *Address    `json:"shipping_address,omitempty" firestore:"shippingAddress,omitempty"`
	CreatedAt       time.Time   `json:"created_at" firestore:"createdAt"`
	UpdatedAt       time.Time   `json:"updated_at" firestore:"updatedAt"`
}

// StockChange is a stock delta applied to a product or one of its variants.
type StockChange struct {
	ProductID string
	VariantID *string
	Delta     int
}

// StockChanges returns the deltas that placing (sign -1) or cancelling
// (sign +1) this order applies.
func (o *Order) StockChanges(sign int) []StockChange {
	changes := make([]StockChange, 0, len(o.Items))
	for _, it := range o.Items {
		changes = append(changes, StockChange{
			ProductID: it.ProductID,
			VariantID: it.VariantID,
			Delta:     sign * it.Quantity,
		})
	}
	return changes
}

// ProductIDs returns the distinct product ids referenced by changes.
func ProductIDs(changes []StockChange) []string {
	seen := make(map[string]bool, len(changes))
	ids := make([]string, 0, len(changes))
	for _, c := range changes {
		if !seen[c.ProductID] {
			seen[c.ProductID] = true
			ids = append(ids, c.ProductID)
		}
	}
	return ids
}

// ApplyStockChanges applies changes to products keyed by id. In strict mode a
// missing product or variant, or a shortfall, fails the whole batch; otherwise
// changes that cannot be applied are skipped.
func ApplyStockChanges(products map[string]*Product, changes []StockChange, strict bool) error {
	for _, c := range changes {
		p, ok := products[c.ProductID]
		if !ok {
			if strict {
				return fmt.Errorf("%w: %s", ErrProductUnavailable, c.ProductID)
			}
			continue
		}
		if err := p.ApplyStock(c.VariantID, c.Delta); err != nil {
			if strict {
				return fmt.Errorf("%w: %s", err, p.Name)
			}
		}
	}
	return nil
}
