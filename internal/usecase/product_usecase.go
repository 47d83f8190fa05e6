package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
	"storefront/internal/infrastructure/cache"
	"storefront/pkg/errors"
	"storefront/pkg/logger"
	"storefront/pkg/utils"
)

const catalogTag = "catalog"

type ProductUseCase struct {
	productRepo repository.ProductRepository
	cache       *cache.Store
	cacheTTL    time.Duration
	now         func() time.Time
}

func NewProductUseCase(productRepo repository.ProductRepository, cacheStore *cache.Store, cacheTTL time.Duration) *ProductUseCase {
	return &ProductUseCase{
		productRepo: productRepo,
		cache:       cacheStore,
		cacheTTL:    cacheTTL,
		now:         time.Now,
	}
}

type ProductVariantInput struct {
	ID         string            `json:"_id"`
	SKU        string            `json:"sku" validate:"required,max=64"`
	Label      string            `json:"label" validate:"max=120"`
	Price      *float64          `json:"price" validate:"omitempty,gte=0"`
	Stock      int               `json:"stock" validate:"gte=0"`
	Image      string            `json:"image"`
	Attributes map[string]string `json:"attributes"`
}

type ProductInput struct {
	Name        string                `json:"name" validate:"required,max=200"`
	Slug        string                `json:"slug" validate:"max=200"`
	Description string                `json:"description" validate:"max=5000"`
	Category    string                `json:"category" validate:"required,max=80"`
	Brand       string                `json:"brand" validate:"max=80"`
	Price       float64               `json:"price" validate:"gte=0"`
	SalePrice   *float64              `json:"sale_price" validate:"omitempty,gte=0"`
	Images      []string              `json:"images" validate:"max=12"`
	Status      string                `json:"status" validate:"omitempty,oneof=active draft archived"`
	Stock       int                   `json:"stock" validate:"gte=0"`
	Variants    []ProductVariantInput `json:"variants" validate:"max=100,dive"`
}

type ProductQuery struct {
	Category string
	Brand    string
	Sort     string
	Page     int
	Limit    int
}

type ProductPage struct {
	Products []*entity.Product `json:"products"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	Limit    int               `json:"limit"`
}

var slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(s string) string {
	return strings.Trim(slugInvalid.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

func (uc *ProductUseCase) ListProducts(ctx context.Context, q ProductQuery) (*ProductPage, error) {
	p := utils.NewPagination(q.Page, q.Limit)
	filter := repository.ProductFilter{
		Category: strings.TrimSpace(q.Category),
		Brand:    strings.TrimSpace(q.Brand),
		Status:   entity.ProductStatusActive,
	}

	key := fmt.Sprintf("catalog:list:%s:%s:%s:%d:%d", filter.Category, filter.Brand, q.Sort, p.Page, p.PageSize)
	page, err := cache.GetOrCompute(uc.cache, key, uc.cacheTTL, []string{catalogTag}, func() (*ProductPage, error) {
		products, total, err := uc.productRepo.List(ctx, filter, q.Sort, p.PageSize, p.Offset)
		if err != nil {
			return nil, err
		}
		return &ProductPage{Products: products, Total: total, Page: p.Page, Limit: p.PageSize}, nil
	})
	if err != nil {
		return nil, fail(err, "Failed to list products")
	}
	return page, nil
}

// SearchProducts is a case-insensitive substring search over active products.
func (uc *ProductUseCase) SearchProducts(ctx context.Context, query string, page, limit int) (*ProductPage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.Validation("q is required", nil)
	}
	p := utils.NewPagination(page, limit)

	products, total, err := uc.productRepo.Search(ctx, query, repository.ProductFilter{Status: entity.ProductStatusActive}, p.PageSize, p.Offset)
	if err != nil {
		return nil, fail(err, "Failed to search products")
	}
	return &ProductPage{Products: products, Total: total, Page: p.Page, Limit: p.PageSize}, nil
}

// GetProduct resolves an id or a slug. Inactive products are only visible to
// admins.
func (uc *ProductUseCase) GetProduct(ctx context.Context, idOrSlug string, admin bool) (*entity.Product, error) {
	idOrSlug = strings.TrimSpace(idOrSlug)
	if idOrSlug == "" {
		return nil, errors.NotFound("Product", nil)
	}

	product, err := cache.GetOrCompute(uc.cache, "catalog:product:"+idOrSlug, uc.cacheTTL, []string{catalogTag}, func() (*entity.Product, error) {
		product, err := uc.productRepo.GetByID(ctx, idOrSlug)
		if errors.Is(err, errors.CodeNotFound) {
			return uc.productRepo.GetBySlug(ctx, idOrSlug)
		}
		return product, err
	})
	if err != nil {
		return nil, fail(err, "Failed to load product")
	}
	if !product.IsActive() && !admin {
		return nil, errors.NotFound("Product", nil)
	}
	return product, nil
}

func (uc *ProductUseCase) CreateProduct(ctx context.Context, input ProductInput) (*entity.Product, error) {
	logger.Info("Creating product %q", input.Name)

	product, err := uc.build(input)
	if err != nil {
		return nil, err
	}
	if _, err := uc.productRepo.GetBySlug(ctx, product.Slug); err == nil {
		return nil, errors.Conflict("A product with this slug already exists")
	}

	now := uc.now()
	product.CreatedAt = now
	product.UpdatedAt = now
	if err := uc.productRepo.Create(ctx, product); err != nil {
		logger.Op("product.create", "admin", err)
		return nil, fail(err, "Failed to create product")
	}
	uc.cache.Invalidate(catalogTag)
	return product, nil
}

// UpdateProduct replaces the editable fields. Rating aggregates and the
// creation time are kept.
func (uc *ProductUseCase) UpdateProduct(ctx context.Context, id string, input ProductInput) (*entity.Product, error) {
	logger.Info("Updating product %s", id)

	existing, err := uc.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fail(err, "Failed to load product")
	}
	product, err := uc.build(input)
	if err != nil {
		return nil, err
	}
	if other, err := uc.productRepo.GetBySlug(ctx, product.Slug); err == nil && other.ID != existing.ID {
		return nil, errors.Conflict("A product with this slug already exists")
	}

	product.ID = existing.ID
	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = uc.now()
	product.RatingAverage = existing.RatingAverage
	product.RatingCount = existing.RatingCount
	product.RatingSum = existing.RatingSum
	if err := uc.productRepo.Update(ctx, product); err != nil {
		logger.Op("product.update", "admin", err)
		return nil, fail(err, "Failed to update product")
	}
	uc.cache.Invalidate(catalogTag)
	return product, nil
}

func (uc *ProductUseCase) build(input ProductInput) (*entity.Product, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if input.SalePrice != nil && *input.SalePrice > input.Price {
		return nil, errors.Validation("sale_price must not exceed price", nil)
	}

	slug := slugify(input.Slug)
	if slug == "" {
		slug = slugify(input.Name)
	}
	if slug == "" {
		return nil, errors.Validation("slug is invalid", nil)
	}
	status := input.Status
	if status == "" {
		status = entity.ProductStatusDraft
	}

	variants := make([]entity.ProductVariant, 0, len(input.Variants))
	skus := make(map[string]bool, len(input.Variants))
	for _, v := range input.Variants {
		sku := strings.TrimSpace(v.SKU)
		if skus[sku] {
			return nil, errors.Validation("duplicate variant sku "+sku, nil)
		}
		skus[sku] = true
		id := strings.TrimSpace(v.ID)
		if id == "" {
			id = uuid.New().String()
		}
		variants = append(variants, entity.ProductVariant{
			ID:         id,
			SKU:        sku,
			Label:      strings.TrimSpace(v.Label),
			Price:      v.Price,
			Stock:      v.Stock,
			Image:      v.Image,
			Attributes: v.Attributes,
		})
	}
	images := input.Images
	if images == nil {
		images = []string{}
	}

	return &entity.Product{
		Name:        strings.TrimSpace(input.Name),
		Slug:        slug,
		Description: input.Description,
		Category:    strings.TrimSpace(input.Category),
		Brand:       strings.TrimSpace(input.Brand),
		Price:       input.Price,
		SalePrice:   input.SalePrice,
		Images:      images,
		Status:      status,
		Stock:       input.Stock,
		Variants:    variants,
	}, nil
}
