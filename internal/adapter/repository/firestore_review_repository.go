package repository

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
	"storefront/pkg/errors"
	"storefront/pkg/utils"
)

type firestoreReviewRepository struct {
	client      *firestore.Client
	maxAttempts int
}

func NewFirestoreReviewRepository(client *firestore.Client, maxAttempts int) repository.ReviewRepository {
	return &firestoreReviewRepository{
		client:      client,
		maxAttempts: maxAttempts,
	}
}

func (r *firestoreReviewRepository) col() *firestore.CollectionRef {
	return r.client.Collection(reviewsCollection)
}

func (r *firestoreReviewRepository) readProduct(tx *firestore.Transaction, productID string) (*firestore.DocumentRef, *entity.Product, error) {
	ref := r.client.Collection(productsCollection).Doc(productID)
	doc, err := tx.Get(ref)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil, errors.NotFound("Product", err)
		}
		return nil, nil, err
	}
	var product entity.Product
	if err := doc.DataTo(&product); err != nil {
		return nil, nil, err
	}
	return ref, &product, nil
}

func (r *firestoreReviewRepository) readReview(tx *firestore.Transaction, ref *firestore.DocumentRef) (*entity.Review, error) {
	doc, err := tx.Get(ref)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	var review entity.Review
	if err := doc.DataTo(&review); err != nil {
		return nil, err
	}
	review.ID = doc.Ref.ID
	return &review, nil
}

func ratingUpdates(p *entity.Product, now time.Time) []firestore.Update {
	return []firestore.Update{
		{Path: "ratingAverage", Value: p.RatingAverage},
		{Path: "ratingCount", Value: p.RatingCount},
		{Path: "ratingSum", Value: p.RatingSum},
		{Path: "updatedAt", Value: now},
	}
}

func (r *firestoreReviewRepository) Upsert(ctx context.Context, review *entity.Review) (bool, error) {
	review.ID = entity.ReviewID(review.ProductID, review.UserID)
	ref := r.col().Doc(review.ID)
	var created bool
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		now := time.Now()
		productRef, product, err := r.readProduct(tx, review.ProductID)
		if err != nil {
			return err
		}
		existing, err := r.readReview(tx, ref)
		if err != nil {
			return err
		}
		previous := 0
		review.CreatedAt = now
		if existing != nil {
			previous = existing.Rating
			review.CreatedAt = existing.CreatedAt
		}
		created = existing == nil
		review.UpdatedAt = now
		product.ApplyRating(previous, review.Rating)

		if err := tx.Set(ref, review); err != nil {
			return err
		}
		return tx.Update(productRef, ratingUpdates(product, now))
	}, txOptions(r.maxAttempts)...)
	if err != nil {
		return false, storeError(err, "Failed to save review")
	}
	return created, nil
}

func (r *firestoreReviewRepository) Get(ctx context.Context, productID, userID string) (*entity.Review, error) {
	doc, err := r.col().Doc(entity.ReviewID(productID, userID)).Get(ctx)
	if err != nil {
		if IsNotFound(err) {
			return nil, errors.NotFound("Review", err)
		}
		return nil, storeError(err, "Failed to get review")
	}
	var review entity.Review
	if err := doc.DataTo(&review); err != nil {
		return nil, errors.Internal("Failed to parse review data", err)
	}
	review.ID = doc.Ref.ID
	return &review, nil
}

func (r *firestoreReviewRepository) ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.Review, int64, error) {
	docs, err := r.col().Where("productId", "==", productID).Documents(ctx).GetAll()
	if err != nil {
		return nil, 0, storeError(err, "Failed to list reviews")
	}
	reviews := make([]*entity.Review, 0, len(docs))
	for _, doc := range docs {
		var review entity.Review
		if err := doc.DataTo(&review); err != nil {
			continue
		}
		review.ID = doc.Ref.ID
		reviews = append(reviews, &review)
	}
	sort.SliceStable(reviews, func(i, j int) bool {
		return reviews[i].UpdatedAt.After(reviews[j].UpdatedAt)
	})
	start, end := utils.Bounds(len(reviews), limit, offset)
	return reviews[start:end], int64(len(reviews)), nil
}

func (r *firestoreReviewRepository) Delete(ctx context.Context, productID, userID string) error {
	ref := r.col().Doc(entity.ReviewID(productID, userID))
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		now := time.Now()
		existing, err := r.readReview(tx, ref)
		if err != nil {
			return err
		}
		if existing == nil {
			return errors.NotFound("Review", nil)
		}
		productRef, product, err := r.readProduct(tx, productID)
		if err != nil && !errors.Is(err, errors.CodeNotFound) {
			return err
		}
		if err := tx.Delete(ref); err != nil {
			return err
		}
		if product == nil {
			return nil
		}
		product.ApplyRating(existing.Rating, 0)
		return tx.Update(productRef, ratingUpdates(product, now))
	}, txOptions(r.maxAttempts)...)
	return storeError(err, "Failed to delete review")
}
