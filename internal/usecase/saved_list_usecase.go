package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/match"
	"storefront/internal/domain/repository"
	"storefront/internal/infrastructure/cache"
	"storefront/pkg/errors"
	"storefront/pkg/logger"
	"storefront/pkg/utils"
)

type SavedListUseCase struct {
	savedListRepo repository.SavedListRepository
	productRepo   repository.ProductRepository
	cache         *cache.Store
	cacheTTL      time.Duration
	maxLists      int
	now           func() time.Time
}

func NewSavedListUseCase(
	savedListRepo repository.SavedListRepository,
	productRepo repository.ProductRepository,
	cacheStore *cache.Store,
	maxLists int,
	cacheTTL time.Duration,
) *SavedListUseCase {
	return &SavedListUseCase{
		savedListRepo: savedListRepo,
		productRepo:   productRepo,
		cache:         cacheStore,
		cacheTTL:      cacheTTL,
		maxLists:      maxLists,
		now:           time.Now,
	}
}

type CreateSavedListInput struct {
	Name      string `json:"name" validate:"required,max=120"`
	IsPrivate bool   `json:"is_private"`
	IsDefault bool   `json:"is_default"`
}

type UpdateSavedListInput struct {
	Name      *string `json:"name" validate:"omitempty,min=1,max=120"`
	IsPrivate *bool   `json:"is_private"`
}

// SavedItemInput names the (product, variant) slot and optional snapshot
// fields. Missing snapshot fields are filled from the product when it can be
// loaded.
type SavedItemInput struct {
	ProductID     string                   `json:"product_id" validate:"required"`
	VariantID     *string                  `json:"variant_id"`
	PriceSnapshot *float64                 `json:"price_snapshot" validate:"omitempty,gte=0"`
	Thumbnail     string                   `json:"thumbnail"`
	Note          string                   `json:"note" validate:"max=300"`
	Variant       *entity.SavedItemVariant `json:"variant"`
}

type ToggleResult struct {
	Added  bool   `json:"added"`
	ListID string `json:"list_id"`
	Count  int    `json:"count"`
}

type RemoveResult struct {
	Removed bool `json:"removed"`
	Count   int  `json:"count"`
}

type SetDefaultResult struct {
	ListID         string `json:"list_id"`
	AlreadyDefault bool   `json:"already_default"`
}

type SavedListPage struct {
	Lists []*entity.SavedList `json:"lists"`
	Total int64               `json:"total"`
	Page  int                 `json:"page"`
	Limit int                 `json:"limit"`
}

type SavedStatusResult struct {
	Saved   bool     `json:"saved"`
	ListIDs []string `json:"list_ids"`
}

func savedListTag(userID string) string {
	return "savedlists:" + userID
}

func (u *SavedListUseCase) invalidate(userID string) {
	u.cache.Invalidate(savedListTag(userID))
}

func (u *SavedListUseCase) CreateList(ctx context.Context, userID string, input CreateSavedListInput) (*entity.SavedList, error) {
	logger.Info("Creating saved list %q for user %s", input.Name, userID)

	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	list := entity.NewSavedList(userID, input.Name, input.IsPrivate, input.IsDefault, u.now())
	if list.Name == "" {
		return nil, errors.Validation("name is required", nil)
	}
	if err := u.savedListRepo.Create(ctx, list, u.maxLists); err != nil {
		logger.Op("saved_list.create", userID, err)
		return nil, fail(err, "Failed to create saved list")
	}
	u.invalidate(userID)
	return list, nil
}

// GetList returns the list to its owner, or to anyone when it is public and
// not archived.
func (u *SavedListUseCase) GetList(ctx context.Context, viewerID, listID string) (*entity.SavedList, error) {
	list, err := u.savedListRepo.GetByID(ctx, listID)
	if err != nil {
		return nil, fail(err, "Failed to load saved list")
	}
	if !list.VisibleTo(viewerID) {
		return nil, errors.NotFound("Saved list", nil)
	}
	return list, nil
}

func (u *SavedListUseCase) UpdateList(ctx context.Context, userID, listID string, input UpdateSavedListInput) (*entity.SavedList, error) {
	logger.Info("Updating saved list %s for user %s", listID, userID)

	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if input.Name == nil && input.IsPrivate == nil {
		return nil, errors.BadRequest("Nothing to update", nil)
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, errors.Validation("name is required", nil)
		}
		input.Name = &name
	}

	list, err := u.savedListRepo.Update(ctx, userID, listID, input.Name, input.IsPrivate)
	if err != nil {
		logger.Op("saved_list.update", userID, err)
		return nil, fail(err, "Failed to update saved list")
	}
	u.invalidate(userID)
	return list, nil
}

func (u *SavedListUseCase) ListSavedLists(ctx context.Context, userID string, page, limit int, includeArchived bool) (*SavedListPage, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	p := utils.NewPagination(page, limit)

	key := fmt.Sprintf("savedlists:%s:list:%d:%d:%t", userID, p.Page, p.PageSize, includeArchived)
	result, err := cache.GetOrCompute(u.cache, key, u.cacheTTL, []string{savedListTag(userID)}, func() (*SavedListPage, error) {
		lists, total, err := u.savedListRepo.ListByUser(ctx, userID, includeArchived, p.PageSize, p.Offset)
		if err != nil {
			return nil, err
		}
		return &SavedListPage{Lists: lists, Total: total, Page: p.Page, Limit: p.PageSize}, nil
	})
	if err != nil {
		return nil, fail(err, "Failed to list saved lists")
	}
	return result, nil
}

// GetSavedItemCount sums the items across the user's active lists.
func (u *SavedListUseCase) GetSavedItemCount(ctx context.Context, userID string) (int, error) {
	if err := requireUser(userID); err != nil {
		return 0, err
	}
	count, err := cache.GetOrCompute(u.cache, "savedlists:"+userID+":count", u.cacheTTL, []string{savedListTag(userID)}, func() (int, error) {
		return u.savedListRepo.CountItems(ctx, userID)
	})
	if err != nil {
		return 0, fail(err, "Failed to count saved items")
	}
	return count, nil
}

// ToggleSavedItem removes the item when any matching row exists, otherwise
// inserts it at the front of the list. The insert is conditional on the slot
// still being free, so concurrent toggles never duplicate a row; a call whose
// insert lost that race reports added=false.
func (u *SavedListUseCase) ToggleSavedItem(ctx context.Context, userID, listID string, input SavedItemInput) (*ToggleResult, error) {
	logger.Info("Toggling product %s in saved list %s for user %s", input.ProductID, listID, userID)

	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}
	result, err := u.toggle(ctx, userID, listID, input)
	if err != nil {
		logger.Op("saved_list.toggle", userID, err)
		return nil, fail(err, "Failed to toggle saved item")
	}
	return result, nil
}

// AddToDefaultList toggles the item on the user's default list, creating the
// default list first when there is none.
func (u *SavedListUseCase) AddToDefaultList(ctx context.Context, userID string, input SavedItemInput) (*ToggleResult, error) {
	logger.Info("Toggling product %s in default saved list for user %s", input.ProductID, userID)

	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}
	list, err := u.savedListRepo.EnsureDefault(ctx, userID, u.maxLists)
	if err != nil {
		logger.Op("saved_list.ensure_default", userID, err)
		u.invalidate(userID)
		return nil, fail(err, "Failed to resolve default saved list")
	}
	result, err := u.toggle(ctx, userID, list.ID, input)
	if err != nil {
		logger.Op("saved_list.toggle_default", userID, err)
		u.invalidate(userID)
		return nil, fail(err, "Failed to toggle saved item")
	}
	return result, nil
}

func (u *SavedListUseCase) toggle(ctx context.Context, userID, listID string, input SavedItemInput) (*ToggleResult, error) {
	productID := match.NormalizeID(input.ProductID)
	variantID := u.canonicalVariant(ctx, productID, input.VariantID)

	removed, count, err := u.savedListRepo.PullItems(ctx, userID, listID, productID, variantID)
	if err != nil {
		return nil, err
	}
	if removed {
		u.invalidate(userID)
		return &ToggleResult{Added: false, ListID: listID, Count: count}, nil
	}

	item := u.snapshot(ctx, productID, variantID, input)
	added, count, err := u.savedListRepo.PushItemIfAbsent(ctx, userID, listID, item)
	if err != nil {
		return nil, err
	}
	u.invalidate(userID)
	return &ToggleResult{Added: added, ListID: listID, Count: count}, nil
}

// canonicalVariant maps a variant sku to the variant _id when the product is
// known, so both spellings land on the same slot.
func (u *SavedListUseCase) canonicalVariant(ctx context.Context, productID string, variantID *string) *string {
	variantID = match.NormalizeVariantID(variantID)
	if variantID == nil || u.productRepo == nil {
		return variantID
	}
	product, err := u.productRepo.GetByID(ctx, productID)
	if err != nil {
		return variantID
	}
	if v, ok := product.FindVariant(variantID); ok && v.ID != "" {
		return &v.ID
	}
	return variantID
}

// snapshot builds the item to insert. Product lookup is best effort: an
// unknown or unreachable product still gets saved with what the caller sent.
func (u *SavedListUseCase) snapshot(ctx context.Context, productID string, variantID *string, input SavedItemInput) entity.SavedItem {
	item := entity.SavedItem{
		ProductID:     productID,
		VariantID:     variantID,
		AddedAt:       u.now(),
		PriceSnapshot: input.PriceSnapshot,
		Thumbnail:     input.Thumbnail,
		Note:          input.Note,
		Variant:       input.Variant,
	}
	if u.productRepo == nil || (item.PriceSnapshot != nil && item.Thumbnail != "") {
		return item
	}

	product, err := u.productRepo.GetByID(ctx, productID)
	if err != nil {
		logger.Debug("No product snapshot for %s: %v", productID, err)
		return item
	}
	variant, _ := product.FindVariant(variantID)
	if item.PriceSnapshot == nil {
		price := product.UnitPrice(variant)
		item.PriceSnapshot = &price
	}
	if item.Thumbnail == "" {
		item.Thumbnail = product.Thumbnail(variant)
	}
	if item.Variant == nil && variant != nil {
		item.Variant = &entity.SavedItemVariant{ID: variant.ID, SKU: variant.SKU, Label: variant.Label}
	}
	return item
}

func (u *SavedListUseCase) RemoveSavedItem(ctx context.Context, userID, listID, productID string, variantID *string) (*RemoveResult, error) {
	logger.Info("Removing product %s from saved list %s for user %s", productID, listID, userID)

	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if match.NormalizeID(productID) == "" {
		return nil, errors.Validation("product_id is required", nil)
	}
	productID = match.NormalizeID(productID)
	removed, count, err := u.savedListRepo.PullItems(ctx, userID, listID, productID, u.canonicalVariant(ctx, productID, variantID))
	if err != nil {
		logger.Op("saved_list.remove_item", userID, err)
		return nil, fail(err, "Failed to remove saved item")
	}
	u.invalidate(userID)
	return &RemoveResult{Removed: removed, Count: count}, nil
}

func (u *SavedListUseCase) MoveSavedItem(ctx context.Context, userID, fromListID, toListID, productID string, variantID *string) (bool, error) {
	logger.Info("Moving product %s from saved list %s to %s for user %s", productID, fromListID, toListID, userID)

	if err := requireUser(userID); err != nil {
		return false, err
	}
	if match.NormalizeID(productID) == "" {
		return false, errors.Validation("product_id is required", nil)
	}
	productID = match.NormalizeID(productID)
	moved, err := u.savedListRepo.MoveItem(ctx, userID, fromListID, toListID, productID, u.canonicalVariant(ctx, productID, variantID))
	if err != nil {
		logger.Op("saved_list.move_item", userID, err)
		return false, fail(err, "Failed to move saved item")
	}
	u.invalidate(userID)
	return moved, nil
}

func (u *SavedListUseCase) SetDefaultList(ctx context.Context, userID, listID string) (*SetDefaultResult, error) {
	logger.Info("Setting saved list %s as default for user %s", listID, userID)

	if err := requireUser(userID); err != nil {
		return nil, err
	}
	already, err := u.savedListRepo.SetDefault(ctx, userID, listID)
	if err != nil {
		logger.Op("saved_list.set_default", userID, err)
		return nil, fail(err, "Failed to set default saved list")
	}
	if !already {
		u.invalidate(userID)
	}
	return &SetDefaultResult{ListID: listID, AlreadyDefault: already}, nil
}

// DeleteList archives the list, or removes it when hard is set. The default
// list cannot be hard-deleted.
func (u *SavedListUseCase) DeleteList(ctx context.Context, userID, listID string, hard bool) error {
	logger.Info("Deleting saved list %s for user %s (hard=%t)", listID, userID, hard)

	if err := requireUser(userID); err != nil {
		return err
	}
	var err error
	if hard {
		err = u.savedListRepo.Delete(ctx, userID, listID)
	} else {
		err = u.savedListRepo.Archive(ctx, userID, listID)
	}
	if err != nil {
		logger.Op("saved_list.delete", userID, err)
		return fail(err, "Failed to delete saved list")
	}
	u.invalidate(userID)
	return nil
}

// SavedStatus reports which active lists of the user contain the product.
func (u *SavedListUseCase) SavedStatus(ctx context.Context, userID, productID string, variantID *string) (*SavedStatusResult, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	lists, err := cache.GetOrCompute(u.cache, "savedlists:"+userID+":active", u.cacheTTL, []string{savedListTag(userID)}, func() ([]*entity.SavedList, error) {
		lists, _, err := u.savedListRepo.ListByUser(ctx, userID, false, 0, 0)
		return lists, err
	})
	if err != nil {
		return nil, fail(err, "Failed to load saved lists")
	}
	productID = match.NormalizeID(productID)
	variantID = u.canonicalVariant(ctx, productID, variantID)
	result := &SavedStatusResult{ListIDs: []string{}}
	for _, list := range lists {
		if list.Contains(productID, variantID) {
			result.ListIDs = append(result.ListIDs, list.ID)
		}
	}
	result.Saved = len(result.ListIDs) > 0
	return result, nil
}
