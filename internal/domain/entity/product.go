package entity

import (
	"errors"
	"sort"
	"strings"
	"time"

	"storefront/internal/domain/match"
)

const (
	ProductSortNewest    = "newest"
	ProductSortPriceAsc  = "price_asc"
	ProductSortPriceDesc = "price_desc"
	ProductSortRating    = "rating"
	ProductSortName      = "name"
)

const (
	ProductStatusActive   = "active"
	ProductStatusDraft    = "draft"
	ProductStatusArchived = "archived"
)

var (
	ErrInsufficientStock = errors.New("product: insufficient stock")
	ErrUnknownVariant    = errors.New("product: unknown variant")
)

// ProductVariant lives inside the product document; it is addressed by its
// _id or, for older documents, by sku.
type ProductVariant struct {
	ID         string            `json:"_id" firestore:"_id"`
	SKU        string            `json:"sku" firestore:"sku"`
	Label      string            `json:"label" firestore:"label"`
	Price      *float64          `json:"price,omitempty" firestore:"price,omitempty"`
	Stock      int               `json:"stock" firestore:"stock"`
	Image      string            `json:"image,omitempty" firestore:"image,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty" firestore:"attributes,omitempty"`
}

type Product struct {
	ID            string           `json:"id" firestore:"id"`
	Name          string           `json:"name" firestore:"name"`
	Slug          string           `json:"slug" firestore:"slug"`
	Description   string           `json:"description" firestore:"description"`
	Category      string           `json:"category" firestore:"category"`
	Brand         string           `json:"brand" firestore:"brand"`
	Price         float64          `json:"price" firestore:"price"`
	SalePrice     *float64         `json:"sale_price,omitempty" firestore:"salePrice,omitempty"`
	Images        []string         `json:"images" firestore:"images"`
	Status        string           `json:"status" firestore:"status"`
	Stock         int              `json:"stock" firestore:"stock"`
	Variants      []ProductVariant `json:"variants" firestore:"variants"`
	RatingAverage float64          `json:"rating_average" firestore:"ratingAverage"`
	RatingCount   int              `json:"rating_count" firestore:"ratingCount"`
	RatingSum     int              `json:"-" firestore:"ratingSum"`
	CreatedAt     time.Time        `json:"created_at" firestore:"createdAt"`
	UpdatedAt     time.Time        `json:"updated_at" firestore:"updatedAt"`
}

func (p *Product) IsActive() bool {
	return p != nil && p.Status == ProductStatusActive
}

// FindVariant looks a variant up by _id, then by sku.
func (p *Product) FindVariant(variantID *string) (*ProductVariant, bool) {
	v := match.NormalizeVariantID(variantID)
	if v == nil {
		return nil, false
	}
	for i := range p.Variants {
		if p.Variants[i].ID == *v {
			return &p.Variants[i], true
		}
	}
	for i := range p.Variants {
		if p.Variants[i].SKU != "" && p.Variants[i].SKU == *v {
			return &p.Variants[i], true
		}
	}
	return nil, false
}

// UnitPrice is the variant price when set, otherwise the product price; a
// lower sale price wins.
func (p *Product) UnitPrice(variant *ProductVariant) float64 {
	price := p.Price
	if variant != nil && variant.Price != nil {
		price = *variant.Price
	}
	if p.SalePrice != nil && *p.SalePrice < price {
		price = *p.SalePrice
	}
	return price
}

// Available is the stock for the variant, or the product when variant is nil.
func (p *Product) Available(variant *ProductVariant) int {
	if variant != nil {
		return variant.Stock
	}
	return p.Stock
}

func (p *Product) Thumbnail(variant *ProductVariant) string {
	if variant != nil && variant.Image != "" {
		return variant.Image
	}
	if len(p.Images) > 0 {
		return p.Images[0]
	}
	return ""
}

// ApplyStock adds delta to the variant stock (or product stock for a nil
// variant). Stock never goes negative.
func (p *Product) ApplyStock(variantID *string, delta int) error {
	if match.NormalizeVariantID(variantID) == nil {
		if p.Stock+delta < 0 {
			return ErrInsufficientStock
		}
		p.Stock += delta
		return nil
	}
	v, ok := p.FindVariant(variantID)
	if !ok {
		return ErrUnknownVariant
	}
	if v.Stock+delta < 0 {
		return ErrInsufficientStock
	}
	v.Stock += delta
	return nil
}

// MatchesQuery is a case-insensitive substring match over name, brand,
// category and variant SKUs.
func (p *Product) MatchesQuery(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	fields := []string{p.Name, p.Brand, p.Category, p.Slug}
	for _, v := range p.Variants {
		fields = append(fields, v.SKU)
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// SortProducts orders products in place. Unknown keys sort newest first.
func SortProducts(products []*Product, key string) {
	var less func(a, b *Product) bool
	switch key {
	case ProductSortPriceAsc:
		less = func(a, b *Product) bool { return a.UnitPrice(nil) < b.UnitPrice(nil) }
	case ProductSortPriceDesc:
		less = func(a, b *Product) bool { return a.UnitPrice(nil) > b.UnitPrice(nil) }
	case ProductSortRating:
		less = func(a, b *Product) bool {
			if a.RatingAverage != b.RatingAverage {
				return a.RatingAverage > b.RatingAverage
			}
			return a.RatingCount > b.RatingCount
		}
	case ProductSortName:
		less = func(a, b *Product) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
	default:
		less = func(a, b *Product) bool { return a.CreatedAt.After(b.CreatedAt) }
	}
	sort.SliceStable(products, func(i, j int) bool { return less(products[i], products[j]) })
}
