// Package match holds the identity rules shared by saved lists and carts:
// how product and variant references are normalized and when two entries
// refer to the same slot.
//
// A variant reference points into the embedded variants array of a product
// document, so a stored entry may carry it as an explicit variant id, or only
// inside its variant snapshot (as the snapshot _id or sku). VariantKey picks
// the first non-empty candidate.
package match

import "strings"

// NormalizeID trims surrounding whitespace from a document id.
func NormalizeID(id string) string {
	return strings.TrimSpace(id)
}

// NormalizeVariantID collapses nil, empty and blank variant ids to nil.
func NormalizeVariantID(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return nil
	}
	return &s
}

// VariantID builds a normalized variant reference from a raw string, as
// received from a query parameter or form field.
func VariantID(raw string) *string {
	return NormalizeVariantID(&raw)
}

// VariantKey returns the first non-blank candidate as a normalized variant
// reference, or nil when all candidates are blank.
func VariantKey(candidates ...string) *string {
	for _, c := range candidates {
		if v := VariantID(c); v != nil {
			return v
		}
	}
	return nil
}

// EqualVariant reports whether two normalized variant references are equal.
// Two nil references are equal.
func EqualVariant(a, b *string) bool {
	a, b = NormalizeVariantID(a), NormalizeVariantID(b)
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// SameSlot is the insertion rule: the entry and the requested pair match on
// product and exactly on variant, with nil meaning "the product itself".
func SameSlot(entryProductID string, entryVariant *string, productID string, variantID *string) bool {
	if NormalizeID(entryProductID) != NormalizeID(productID) {
		return false
	}
	return EqualVariant(entryVariant, variantID)
}

// ForRemoval is the removal rule: a nil requested variant matches every
// variant of the product, otherwise it behaves like SameSlot.
func ForRemoval(entryProductID string, entryVariant *string, productID string, variantID *string) bool {
	if NormalizeID(entryProductID) != NormalizeID(productID) {
		return false
	}
	if NormalizeVariantID(variantID) == nil {
		return true
	}
	return EqualVariant(entryVariant, variantID)
}

// SameVariant reports whether two sets of variant references point at the
// same variant: they share a non-blank reference, or neither has one.
func SameVariant(a, b []string) bool {
	seen := make(map[string]struct{}, len(a))
	for _, r := range a {
		if v := VariantID(r); v != nil {
			seen[*v] = struct{}{}
		}
	}
	empty := true
	for _, r := range b {
		v := VariantID(r)
		if v == nil {
			continue
		}
		empty = false
		if _, ok := seen[*v]; ok {
			return true
		}
	}
	return empty && len(seen) == 0
}

// SameSlotRefs is SameSlot for an entry known by several variant references,
// such as an explicit id plus the snapshot _id and sku.
func SameSlotRefs(entryProductID string, entryRefs []string, productID string, variantID *string) bool {
	if NormalizeID(entryProductID) != NormalizeID(productID) {
		return false
	}
	return SameVariant(entryRefs, []string{Deref(variantID)})
}

// ForRemovalRefs is ForRemoval for an entry known by several variant
// references.
func ForRemovalRefs(entryProductID string, entryRefs []string, productID string, variantID *string) bool {
	if NormalizeID(entryProductID) != NormalizeID(productID) {
		return false
	}
	if NormalizeVariantID(variantID) == nil {
		return true
	}
	return SameVariant(entryRefs, []string{*variantID})
}

// Deref returns the string behind v or "" for nil.
func Deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
