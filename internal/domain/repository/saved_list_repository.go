package repository

import (
	"context"

	"storefront/internal/domain/entity"
)

// SavedListRepository is the persistence contract of the saved-list engine.
// Every item mutation is a single atomic check-and-set on one list document;
// operations touching several lists of a user run in one transaction.
type SavedListRepository interface {
	// Create inserts list in a transaction that enforces the per-user cap and
	// name uniqueness. When the user has no active list, or list.IsDefault is
	// set, the user's other defaults are cleared before the insert.
	Create(ctx context.Context, list *entity.SavedList, maxLists int) error

	GetByID(ctx context.Context, id string) (*entity.SavedList, error)

	// ListByUser returns the user's lists, default first then most recently
	// updated, and the total before paging.
	ListByUser(ctx context.Context, userID string, includeArchived bool, limit, offset int) ([]*entity.SavedList, int64, error)

	Update(ctx context.Context, userID, listID string, name *string, isPrivate *bool) (*entity.SavedList, error)

	// PullItems removes every item matching the removal rule and reports
	// whether the document was modified, with the resulting item count.
	PullItems(ctx context.Context, userID, listID, productID string, variantID *string) (bool, int, error)

	// PushItemIfAbsent prepends item unless the exact (product, variant) slot
	// is already taken at write time.
	PushItemIfAbsent(ctx context.Context, userID, listID string, item entity.SavedItem) (bool, int, error)

	// EnsureDefault returns the user's default list, creating or promoting
	// one when none exists.
	EnsureDefault(ctx context.Context, userID string, maxLists int) (*entity.SavedList, error)

	SetDefault(ctx context.Context, userID, listID string) (alreadyDefault bool, err error)

	Archive(ctx context.Context, userID, listID string) error

	// Delete removes the document. Default lists are refused.
	Delete(ctx context.Context, userID, listID string) error

	MoveItem(ctx context.Context, userID, fromListID, toListID, productID string, variantID *string) (bool, error)

	// CountItems sums the items of the user's active lists.
	CountItems(ctx context.Context, userID string) (int, error)
}
