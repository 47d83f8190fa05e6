package entity

import (
	"sort"
	"time"
)

type Address struct {
	ID         string    `json:"id" firestore:"id"`
	UserID     string    `json:"user_id" firestore:"userId"`
	FullName   string    `json:"full_name" firestore:"fullName"`
	Phone      string    `json:"phone" firestore:"phone"`
	Line1      string    `json:"line1" firestore:"line1"`
	Line2      string    `json:"line2,omitempty" firestore:"line2,omitempty"`
	City       string    `json:"city" firestore:"city"`
	State      string    `json:"state,omitempty" firestore:"state,omitempty"`
	PostalCode string    `json:"postal_code" firestore:"postalCode"`
	Country    string    `json:"country" firestore:"country"`
	IsDefault  bool      `json:"is_default" firestore:"isDefault"`
	CreatedAt  time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt  time.Time `json:"updated_at" firestore:"updatedAt"`
}

// SortAddresses puts the default first, then the most recently updated.
func SortAddresses(addresses []*Address) {
	sort.SliceStable(addresses, func(i, j int) bool {
		if addresses[i].IsDefault != addresses[j].IsDefault {
			return addresses[i].IsDefault
		}
		return addresses[i].UpdatedAt.After(addresses[j].UpdatedAt)
	})
}
