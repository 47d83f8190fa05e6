package entity

import (
	"errors"
	"fmt"
	"time"

	"storefront/internal/domain/match"
)

var (
	ErrInvalidCartOwner = errors.New("cart: exactly one of user id or guest id is required")
	ErrInvalidQuantity  = errors.New("cart: invalid quantity")
	ErrCartItemNotFound = errors.New("cart: item not found")
)

// GuestCartTTL is how long an untouched guest cart is kept. Firestore TTL is
// configured on expiresAt.
const GuestCartTTL = 30 * 24 * time.Hour

// CartOwner identifies a cart by user id or guest id, never both.
type CartOwner struct {
	UserID  string
	GuestID string
}

func UserOwner(userID string) CartOwner {
	return CartOwner{UserID: match.NormalizeID(userID)}
}

func GuestOwner(guestID string) CartOwner {
	return CartOwner{GuestID: match.NormalizeID(guestID)}
}

func (o CartOwner) Validate() error {
	if (o.UserID == "") == (o.GuestID == "") {
		return ErrInvalidCartOwner
	}
	return nil
}

func (o CartOwner) IsGuest() bool {
	return o.UserID == "" && o.GuestID != ""
}

// DocID is the cart document id, one per identity.
func (o CartOwner) DocID() string {
	if o.IsGuest() {
		return "guest_" + o.GuestID
	}
	return "user_" + o.UserID
}

func (o CartOwner) String() string {
	if o.IsGuest() {
		return "guest:" + o.GuestID
	}
	return "user:" + o.UserID
}

type CartItem struct {
	ProductID string                 `json:"product_id" firestore:"productId"`
	VariantID *string                `json:"variant_id" firestore:"variantId"`
	Quantity  int                    `json:"quantity" firestore:"quantity"`
	Variant   map[string]interface{} `json:"variant,omitempty" firestore:"variant,omitempty"`
	AddedAt   time.Time              `json:"added_at" firestore:"addedAt"`
}

// VariantKey resolves the variant id, falling back to the snapshot _id and sku.
func (i CartItem) VariantKey() *string {
	return match.VariantKey(match.Deref(i.VariantID), snapshotString(i.Variant, "_id"), snapshotString(i.Variant, "sku"))
}

func (i CartItem) normalized() CartItem {
	i.ProductID = match.NormalizeID(i.ProductID)
	i.VariantID = i.VariantKey()
	return i
}

type Cart struct {
	ID        string     `json:"id" firestore:"id"`
	UserID    string     `json:"user_id,omitempty" firestore:"userId,omitempty"`
	GuestID   string     `json:"guest_id,omitempty" firestore:"guestId,omitempty"`
	Items     []CartItem `json:"items" firestore:"items"`
	CreatedAt time.Time  `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time  `json:"updated_at" firestore:"updatedAt"`
	ExpiresAt *time.Time `json:"expires_at,omitempty" firestore:"expiresAt,omitempty"`
}

func NewCart(owner CartOwner, now time.Time) *Cart {
	c := &Cart{
		ID:        owner.DocID(),
		UserID:    owner.UserID,
		GuestID:   owner.GuestID,
		Items:     []CartItem{},
		CreatedAt: now,
	}
	c.touch(now)
	return c
}

func (c *Cart) Owner() CartOwner {
	return CartOwner{UserID: c.UserID, GuestID: c.GuestID}
}

func (c *Cart) find(productID string, variantID *string) int {
	for i := range c.Items {
		if match.SameSlot(c.Items[i].ProductID, c.Items[i].VariantKey(), productID, variantID) {
			return i
		}
	}
	return -1
}

// Find returns the item in the (product, variant) slot.
func (c *Cart) Find(productID string, variantID *string) (CartItem, bool) {
	if idx := c.find(productID, variantID); idx >= 0 {
		return c.Items[idx], true
	}
	return CartItem{}, false
}

// Add increments the quantity of an existing slot and shallow-merges its
// variant snapshot, or appends a new slot.
func (c *Cart) Add(item CartItem, now time.Time) error {
	if item.Quantity < 1 {
		return ErrInvalidQuantity
	}
	c.Items = mergeInto(c.Items, item.normalized(), now)
	c.touch(now)
	return nil
}

// SetQuantity sets the quantity of an existing slot. Zero keeps the row.
func (c *Cart) SetQuantity(productID string, variantID *string, quantity int, now time.Time) error {
	if quantity < 0 {
		return ErrInvalidQuantity
	}
	idx := c.find(productID, variantID)
	if idx < 0 {
		return ErrCartItemNotFound
	}
	c.Items[idx].Quantity = quantity
	c.touch(now)
	return nil
}

// Remove filters out the items in the (product, variant) slot.
func (c *Cart) Remove(productID string, variantID *string, now time.Time) bool {
	kept := make([]CartItem, 0, len(c.Items))
	for _, it := range c.Items {
		if match.SameSlot(it.ProductID, it.VariantKey(), productID, variantID) {
			continue
		}
		kept = append(kept, it)
	}
	removed := len(kept) != len(c.Items)
	c.Items = kept
	c.touch(now)
	return removed
}

func (c *Cart) Clear(now time.Time) {
	c.Items = []CartItem{}
	c.touch(now)
}

func (i CartItem) variantRefs() []string {
	return []string{match.Deref(i.VariantID), snapshotString(i.Variant, "_id"), snapshotString(i.Variant, "sku")}
}

// Consume takes the ordered quantities out of the cart. Rows that reach zero
// are dropped and rows the order did not include are left untouched.
func (c *Cart) Consume(ordered []OrderItem, now time.Time) {
	qty := make([]int, len(c.Items))
	touched := make([]bool, len(c.Items))
	for i := range c.Items {
		qty[i] = c.Items[i].Quantity
	}
	for _, o := range ordered {
		want := o.Quantity
		refs := []string{match.Deref(o.VariantID), o.SKU}
		for i := range c.Items {
			if want <= 0 {
				break
			}
			it := c.Items[i]
			if qty[i] <= 0 || match.NormalizeID(it.ProductID) != match.NormalizeID(o.ProductID) || !match.SameVariant(it.variantRefs(), refs) {
				continue
			}
			take := min(want, qty[i])
			qty[i] -= take
			touched[i] = true
			want -= take
		}
	}
	kept := make([]CartItem, 0, len(c.Items))
	for i, it := range c.Items {
		if qty[i] > 0 || !touched[i] {
			it.Quantity = qty[i]
			kept = append(kept, it)
		}
	}
	c.Items = kept
	c.touch(now)
}

// TotalQuantity sums the quantities of all rows.
func (c *Cart) TotalQuantity() int {
	total := 0
	for _, it := range c.Items {
		total += it.Quantity
	}
	return total
}

// Absorb merges a guest cart's items into this user cart: quantities of
// matching slots are added, unknown slots appended. The guest association
// is dropped.
func (c *Cart) Absorb(guest *Cart, now time.Time) {
	c.Items = MergeItems(c.Items, guestItems(guest), now)
	c.GuestID = ""
	c.touch(now)
}

// MergeItems starts from base (normalized) and folds incoming into it.
func MergeItems(base, incoming []CartItem, now time.Time) []CartItem {
	merged := make([]CartItem, 0, len(base)+len(incoming))
	for _, it := range base {
		merged = append(merged, it.normalized())
	}
	for _, it := range incoming {
		merged = mergeInto(merged, it.normalized(), now)
	}
	return merged
}

func mergeInto(items []CartItem, item CartItem, now time.Time) []CartItem {
	for i := range items {
		if match.SameSlot(items[i].ProductID, items[i].VariantKey(), item.ProductID, item.VariantID) {
			items[i].Quantity += item.Quantity
			items[i].Variant = mergeSnapshot(items[i].Variant, item.Variant)
			return items
		}
	}
	if item.AddedAt.IsZero() {
		item.AddedAt = now
	}
	return append(items, item)
}

func mergeSnapshot(dst, src map[string]interface{}) map[string]interface{} {
	if len(src) == 0 {
		return dst
	}
	out := make(map[string]interface{}, len(dst)+len(src))
	for k, v := range dst {
		out[k] = v
	}
	for k, v := range src {
		out[k] = v
	}
	return out
}

func guestItems(guest *Cart) []CartItem {
	if guest == nil {
		return nil
	}
	return guest.Items
}

func (c *Cart) touch(now time.Time) {
	c.UpdatedAt = now
	if c.IsGuestCart() {
		exp := now.Add(GuestCartTTL)
		c.ExpiresAt = &exp
	} else {
		c.ExpiresAt = nil
	}
	if c.Items == nil {
		c.Items = []CartItem{}
	}
}

func (c *Cart) IsGuestCart() bool {
	return c.UserID == "" && c.GuestID != ""
}

func snapshotString(m map[string]interface{}, key string) string {
	if m == nil {
		return ""
	}
	switch v := m[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
