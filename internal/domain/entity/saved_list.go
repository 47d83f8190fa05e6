package entity

import (
	"sort"
	"strings"
	"time"

	"storefront/internal/domain/match"
)

const (
	DefaultSavedListName = "Saved items"
	MaxSavedListNameLen  = 120
	MaxSavedItemNoteLen  = 300
)

// SavedItemVariant is the variant snapshot taken when the item was saved.
type SavedItemVariant struct {
	ID    string `json:"_id,omitempty" firestore:"_id,omitempty"`
	SKU   string `json:"sku,omitempty" firestore:"sku,omitempty"`
	Label string `json:"label,omitempty" firestore:"label,omitempty"`
}

type SavedItem struct {
	ProductID     string            `json:"product_id" firestore:"productId"`
	VariantID     *string           `json:"variant_id" firestore:"variantId"`
	AddedAt       time.Time         `json:"added_at" firestore:"addedAt"`
	PriceSnapshot *float64          `json:"price_snapshot,omitempty" firestore:"priceSnapshot,omitempty"`
	Thumbnail     string            `json:"thumbnail,omitempty" firestore:"thumbnail,omitempty"`
	Note          string            `json:"note,omitempty" firestore:"note,omitempty"`
	Variant       *SavedItemVariant `json:"variant,omitempty" firestore:"variant,omitempty"`
}

// VariantKey resolves the variant this item points at, falling back from the
// explicit variant id to the snapshot _id and then the snapshot sku.
func (i SavedItem) VariantKey() *string {
	var snapID, snapSKU string
	if i.Variant != nil {
		snapID, snapSKU = i.Variant.ID, i.Variant.SKU
	}
	return match.VariantKey(match.Deref(i.VariantID), snapID, snapSKU)
}

// VariantRefs lists every reference the item is known by: the explicit
// variant id, the snapshot _id and the snapshot sku.
func (i SavedItem) VariantRefs() []string {
	refs := []string{match.Deref(i.VariantID)}
	if i.Variant != nil {
		refs = append(refs, i.Variant.ID, i.Variant.SKU)
	}
	return refs
}

type SavedListMeta struct {
	Count         int        `json:"count" firestore:"count"`
	LastAddedAt   *time.Time `json:"last_added_at,omitempty" firestore:"lastAddedAt,omitempty"`
	LastRemovedAt *time.Time `json:"last_removed_at,omitempty" firestore:"lastRemovedAt,omitempty"`
}

// SavedList is a named collection of saved items owned by one user.
// Items are ordered newest first.
type SavedList struct {
	ID         string        `json:"id" firestore:"id"`
	UserID     string        `json:"user_id" firestore:"userId"`
	Name       string        `json:"name" firestore:"name"`
	IsPrivate  bool          `json:"is_private" firestore:"isPrivate"`
	IsDefault  bool          `json:"is_default" firestore:"isDefault"`
	Archived   bool          `json:"archived" firestore:"archived"`
	Items      []SavedItem   `json:"items" firestore:"items"`
	Meta       SavedListMeta `json:"meta" firestore:"meta"`
	CreatedAt  time.Time     `json:"created_at" firestore:"createdAt"`
	UpdatedAt  time.Time     `json:"updated_at" firestore:"updatedAt"`
	ArchivedAt *time.Time    `json:"archived_at,omitempty" firestore:"archivedAt,omitempty"`
}

func NewSavedList(userID, name string, isPrivate, isDefault bool, now time.Time) *SavedList {
	return &SavedList{
		UserID:    userID,
		Name:      strings.TrimSpace(name),
		IsPrivate: isPrivate,
		IsDefault: isDefault,
		Items:     []SavedItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NameKey is the case-insensitive form used for per-user name uniqueness.
func NameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// OwnedActive reports whether the list belongs to userID and can be mutated.
func (l *SavedList) OwnedActive(userID string) bool {
	return l != nil && l.UserID == userID && !l.Archived
}

// VisibleTo reports whether viewerID may read the list.
func (l *SavedList) VisibleTo(viewerID string) bool {
	if l == nil {
		return false
	}
	if viewerID != "" && l.UserID == viewerID {
		return true
	}
	return !l.IsPrivate && !l.Archived
}

// PullMatching removes every item matching the removal rule and reports
// whether anything was removed. The count is recomputed either way.
func (l *SavedList) PullMatching(productID string, variantID *string, now time.Time) bool {
	kept := make([]SavedItem, 0, len(l.Items))
	for _, it := range l.Items {
		if match.ForRemovalRefs(it.ProductID, it.VariantRefs(), productID, variantID) {
			continue
		}
		kept = append(kept, it)
	}
	removed := len(kept) != len(l.Items)
	l.Items = kept
	l.RecomputeCount()
	if removed {
		t := now
		l.Meta.LastRemovedAt = &t
		l.UpdatedAt = now
	}
	return removed
}

// PushIfAbsent inserts item at the front unless an item already occupies
// the same (product, variant) slot.
func (l *SavedList) PushIfAbsent(item SavedItem, now time.Time) bool {
	if l.hasRefs(item.ProductID, item.VariantRefs()) {
		l.RecomputeCount()
		return false
	}
	item.ProductID = match.NormalizeID(item.ProductID)
	item.VariantID = match.NormalizeVariantID(item.VariantID)
	if item.AddedAt.IsZero() {
		item.AddedAt = now
	}
	l.Items = append([]SavedItem{item}, l.Items...)
	l.RecomputeCount()
	t := now
	l.Meta.LastAddedAt = &t
	l.UpdatedAt = now
	return true
}

// HasSlot reports whether an item sits in exactly the (product, variant) slot.
func (l *SavedList) HasSlot(productID string, variantID *string) bool {
	for _, it := range l.Items {
		if match.SameSlotRefs(it.ProductID, it.VariantRefs(), productID, variantID) {
			return true
		}
	}
	return false
}

func (l *SavedList) hasRefs(productID string, refs []string) bool {
	for _, it := range l.Items {
		if match.NormalizeID(it.ProductID) == match.NormalizeID(productID) && match.SameVariant(it.VariantRefs(), refs) {
			return true
		}
	}
	return false
}

// Contains uses the removal rule, so a nil variant finds any variant row.
func (l *SavedList) Contains(productID string, variantID *string) bool {
	for _, it := range l.Items {
		if match.ForRemovalRefs(it.ProductID, it.VariantRefs(), productID, variantID) {
			return true
		}
	}
	return false
}

func (l *SavedList) RecomputeCount() {
	if l.Items == nil {
		l.Items = []SavedItem{}
	}
	l.Meta.Count = len(l.Items)
}

func (l *SavedList) Archive(now time.Time) {
	t := now
	l.Archived = true
	l.IsDefault = false
	l.ArchivedAt = &t
	l.UpdatedAt = now
}

// SortSavedLists orders default first, then most recently updated.
func SortSavedLists(lists []*SavedList) {
	sort.SliceStable(lists, func(i, j int) bool {
		if lists[i].IsDefault != lists[j].IsDefault {
			return lists[i].IsDefault
		}
		return lists[i].UpdatedAt.After(lists[j].UpdatedAt)
	})
}

// PickDefaultCandidate returns the active list to promote when the user has
// no default: one already named like the default list, otherwise the most
// recently updated list once the cap leaves no room for a new one. A nil
// result means a fresh default list should be created.
func PickDefaultCandidate(active []*SavedList, maxLists int) *SavedList {
	key := NameKey(DefaultSavedListName)
	var newest *SavedList
	for _, l := range active {
		if NameKey(l.Name) == key {
			return l
		}
		if newest == nil || l.UpdatedAt.After(newest.UpdatedAt) {
			newest = l
		}
	}
	if maxLists > 0 && len(active) >= maxLists {
		return newest
	}
	return nil
}

// MoveItems pulls the items matching the removal rule out of from and pushes
// each into to unless its slot is already taken there. Relative order is
// kept.
func MoveItems(from, to *SavedList, productID string, variantID *string, now time.Time) bool {
	var picked []SavedItem
	for _, it := range from.Items {
		if match.ForRemovalRefs(it.ProductID, it.VariantRefs(), productID, variantID) {
			picked = append(picked, it)
		}
	}
	if len(picked) == 0 {
		return false
	}
	from.PullMatching(productID, variantID, now)
	for i := len(picked) - 1; i >= 0; i-- {
		to.PushIfAbsent(picked[i], now)
	}
	to.UpdatedAt = now
	return true
}
