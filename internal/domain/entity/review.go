package entity

import (
	"math"
	"time"
)

// Review is one user's rating of one product; the document id is
// <productId>_<userId>.
type Review struct {
	ID        string    `json:"id" firestore:"id"`
	ProductID string    `json:"product_id" firestore:"productId"`
	UserID    string    `json:"user_id" firestore:"userId"`
	Rating    int       `json:"rating" firestore:"rating"`
	Title     string    `json:"title" firestore:"title"`
	Body      string    `json:"body" firestore:"body"`
	Images    []string  `json:"images" firestore:"images"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}

func ReviewID(productID, userID string) string {
	return productID + "_" + userID
}

// ApplyRating folds a rating change into the product aggregates. previous is
// 0 for a new review; next is 0 for a deleted one.
func (p *Product) ApplyRating(previous, next int) {
	if previous > 0 {
		p.RatingSum -= previous
		p.RatingCount--
	}
	if next > 0 {
		p.RatingSum += next
		p.RatingCount++
	}
	if p.RatingCount <= 0 {
		p.RatingCount = 0
		p.RatingSum = 0
		p.RatingAverage = 0
		return
	}
	p.RatingAverage = math.Round(float64(p.RatingSum)/float64(p.RatingCount)*100) / 100
}
