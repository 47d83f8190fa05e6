package memory

import (
	"context"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
	"storefront/pkg/errors"
	"storefront/pkg/utils"
)

type productRepository struct {
	s *Store
}

func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if product.ID == "" {
		product.ID = newID()
	}
	if _, exists := r.s.products[product.ID]; exists {
		return errors.Conflict("Product already exists")
	}
	now := r.s.now()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now
	r.s.products[product.ID] = cloneProduct(product)
	return nil
}

func (r *productRepository) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.products[id]
	if !ok {
		return nil, errors.NotFound("Product", nil)
	}
	return cloneProduct(p), nil
}

func (r *productRepository) GetBySlug(ctx context.Context, slug string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, p := range r.s.products {
		if p.Slug == slug {
			return cloneProduct(p), nil
		}
	}
	return nil, errors.NotFound("Product", nil)
}

func (r *productRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	result := make(map[string]*entity.Product, len(ids))
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok {
			result[id] = cloneProduct(p)
		}
	}
	return result, nil
}

func (r *productRepository) filtered(filter repository.ProductFilter, keep func(*entity.Product) bool) []*entity.Product {
	var products []*entity.Product
	for _, p := range r.s.products {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.Brand != "" && p.Brand != filter.Brand {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if keep != nil && !keep(p) {
			continue
		}
		products = append(products, cloneProduct(p))
	}
	return products
}

func (r *productRepository) List(ctx context.Context, filter repository.ProductFilter, sort string, limit, offset int) ([]*entity.Product, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	products := r.filtered(filter, nil)
	entity.SortProducts(products, sort)
	start, end := utils.Bounds(len(products), limit, offset)
	return products[start:end], int64(len(products)), nil
}

func (r *productRepository) Search(ctx context.Context, query string, filter repository.ProductFilter, limit, offset int) ([]*entity.Product, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	products := r.filtered(filter, func(p *entity.Product) bool { return p.MatchesQuery(query) })
	entity.SortProducts(products, entity.ProductSortName)
	start, end := utils.Bounds(len(products), limit, offset)
	return products[start:end], int64(len(products)), nil
}

func (r *productRepository) Update(ctx context.Context, product *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.products[product.ID]; !ok {
		return errors.NotFound("Product", nil)
	}
	product.UpdatedAt = r.s.now()
	r.s.products[product.ID] = cloneProduct(product)
	return nil
}
