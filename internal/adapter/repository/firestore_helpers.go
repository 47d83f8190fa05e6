package repository

import (
	stderrors "errors"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"storefront/pkg/errors"
)

const (
	productsCollection       = "products"
	savedListsCollection     = "saved_lists"
	savedListOwnerCollection = "saved_list_owners"
	cartsCollection          = "carts"
	addressesCollection      = "addresses"
	ordersCollection         = "orders"
	reviewsCollection        = "reviews"
)

func IsNotFound(err error) bool {
	return err != nil && status.Code(err) == codes.NotFound
}

// storeError maps a Firestore failure to an AppError. AppErrors raised inside
// a transaction callback pass through untouched.
func storeError(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	switch status.Code(err) {
	case codes.Aborted:
		return errors.Transient(message+": concurrent update, please retry", err)
	case codes.Unavailable, codes.DeadlineExceeded:
		return errors.Transient(message+": store unavailable", err)
	case codes.AlreadyExists:
		return errors.Conflict(message + ": already exists")
	}
	return errors.Internal(message, err)
}

func txOptions(maxAttempts int) []firestore.TransactionOption {
	if maxAttempts <= 0 {
		return nil
	}
	return []firestore.TransactionOption{firestore.MaxAttempts(maxAttempts)}
}

