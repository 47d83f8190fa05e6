package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
	"storefront/pkg/errors"
	"storefront/pkg/utils"
)

type firestoreProductRepository struct {
	client *firestore.Client
}

func NewFirestoreProductRepository(client *firestore.Client) repository.ProductRepository {
	return &firestoreProductRepository{
		client: client,
	}
}

func (r *firestoreProductRepository) Create(ctx context.Context, product *entity.Product) error {
	// Generate ID if not provided
	if product.ID == "" {
		doc := r.client.Collection(productsCollection).NewDoc()
		product.ID = doc.ID
	}

	now := time.Now()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now

	_, err := r.client.Collection(productsCollection).Doc(product.ID).Create(ctx, product)
	if err != nil {
		return storeError(err, "Failed to create product")
	}
	return nil
}

func (r *firestoreProductRepository) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	doc, err := r.client.Collection(productsCollection).Doc(id).Get(ctx)
	if err != nil {
		if IsNotFound(err) {
			return nil, errors.NotFound("Product", err)
		}
		return nil, storeError(err, "Failed to get product")
	}

	var product entity.Product
	if err := doc.DataTo(&product); err != nil {
		return nil, errors.Internal("Failed to parse product data", err)
	}
	product.ID = doc.Ref.ID
	return &product, nil
}

func (r *firestoreProductRepository) GetBySlug(ctx context.Context, slug string) (*entity.Product, error) {
	iter := r.client.Collection(productsCollection).Where("slug", "==", slug).Limit(1).Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, errors.NotFound("Product", nil)
	}
	if err != nil {
		return nil, storeError(err, "Failed to get product")
	}
	var product entity.Product
	if err := doc.DataTo(&product); err != nil {
		return nil, errors.Internal("Failed to parse product data", err)
	}
	product.ID = doc.Ref.ID
	return &product, nil
}

func (r *firestoreProductRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*entity.Product, error) {
	result := make(map[string]*entity.Product, len(ids))
	seen := make(map[string]bool, len(ids))

	var refs []*firestore.DocumentRef
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		refs = append(refs, r.client.Collection(productsCollection).Doc(id))
	}

	// Batched in groups of 30, the same size as an "in" query.
	const batchSize = 30
	for start := 0; start < len(refs); start += batchSize {
		end := start + batchSize
		if end > len(refs) {
			end = len(refs)
		}
		docs, err := r.client.GetAll(ctx, refs[start:end])
		if err != nil {
			return nil, storeError(err, "Failed to get products")
		}
		for _, doc := range docs {
			if !doc.Exists() {
				continue
			}
			var product entity.Product
			if err := doc.DataTo(&product); err != nil {
				continue
			}
			product.ID = doc.Ref.ID
			result[product.ID] = &product
		}
	}
	return result, nil
}

func (r *firestoreProductRepository) query(filter repository.ProductFilter) firestore.Query {
	query := r.client.Collection(productsCollection).Query
	if filter.Category != "" {
		query = query.Where("category", "==", filter.Category)
	}
	if filter.Brand != "" {
		query = query.Where("brand", "==", filter.Brand)
	}
	if filter.Status != "" {
		query = query.Where("status", "==", filter.Status)
	}
	return query
}

func (r *firestoreProductRepository) fetch(ctx context.Context, query firestore.Query, keep func(*entity.Product) bool) ([]*entity.Product, error) {
	iter := query.Documents(ctx)
	defer iter.Stop()

	var products []*entity.Product
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var product entity.Product
		if err := doc.DataTo(&product); err != nil {
			continue
		}
		product.ID = doc.Ref.ID
		if keep == nil || keep(&product) {
			products = append(products, &product)
		}
	}
	return products, nil
}

// List filters by equality in Firestore and sorts in memory, so no composite
// index is needed per sort key.
func (r *firestoreProductRepository) List(ctx context.Context, filter repository.ProductFilter, sort string, limit, offset int) ([]*entity.Product, int64, error) {
	products, err := r.fetch(ctx, r.query(filter), nil)
	if err != nil {
		return nil, 0, storeError(err, "Failed to list products")
	}
	entity.SortProducts(products, sort)
	start, end := utils.Bounds(len(products), limit, offset)
	return products[start:end], int64(len(products)), nil
}

// Search is a substring match; Firestore has no full-text search.
func (r *firestoreProductRepository) Search(ctx context.Context, query string, filter repository.ProductFilter, limit, offset int) ([]*entity.Product, int64, error) {
	products, err := r.fetch(ctx, r.query(filter), func(p *entity.Product) bool {
		return p.MatchesQuery(query)
	})
	if err != nil {
		return nil, 0, storeError(err, "Failed to search products")
	}
	entity.SortProducts(products, entity.ProductSortName)
	start, end := utils.Bounds(len(products), limit, offset)
	return products[start:end], int64(len(products)), nil
}

func (r *firestoreProductRepository) Update(ctx context.Context, product *entity.Product) error {
	product.UpdatedAt = time.Now()
	_, err := r.client.Collection(productsCollection).Doc(product.ID).Set(ctx, product)
	if err != nil {
		return storeError(err, "Failed to update product")
	}
	return nil
}
