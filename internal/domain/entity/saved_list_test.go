package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestSavedListPushIfAbsent(t *testing.T) {
	now := time.Now()
	l := NewSavedList("u1", "Gifts", false, false, now)

	assert.True(t, l.PushIfAbsent(SavedItem{ProductID: "p1"}, now))
	assert.True(t, l.PushIfAbsent(SavedItem{ProductID: "p2", VariantID: strPtr("v1")}, now))
	assert.False(t, l.PushIfAbsent(SavedItem{ProductID: "p1"}, now))
	assert.False(t, l.PushIfAbsent(SavedItem{ProductID: "p2", VariantID: strPtr(" v1 ")}, now))

	assert.Equal(t, 2, l.Meta.Count)
	assert.Equal(t, "p2", l.Items[0].ProductID, "newest first")
	assert.NotNil(t, l.Meta.LastAddedAt)
}

func TestSavedListPushTreatsNilVariantAsItsOwnSlot(t *testing.T) {
	now := time.Now()
	l := NewSavedList("u1", "Gifts", false, false, now)

	assert.True(t, l.PushIfAbsent(SavedItem{ProductID: "p1", VariantID: strPtr("v1")}, now))
	assert.True(t, l.PushIfAbsent(SavedItem{ProductID: "p1"}, now))
	assert.Equal(t, 2, l.Meta.Count)
}

func TestSavedListPullMatchingNilVariantRemovesAllVariants(t *testing.T) {
	now := time.Now()
	l := NewSavedList("u1", "Gifts", false, false, now)
	for _, v := range []string{"a", "b", "c"} {
		l.PushIfAbsent(SavedItem{ProductID: "p1", VariantID: strPtr(v)}, now)
	}
	l.PushIfAbsent(SavedItem{ProductID: "p2"}, now)

	assert.True(t, l.PullMatching("p1", nil, now))
	assert.Equal(t, 1, l.Meta.Count)
	assert.Equal(t, len(l.Items), l.Meta.Count)
	assert.Equal(t, "p2", l.Items[0].ProductID)
	assert.NotNil(t, l.Meta.LastRemovedAt)
}

func TestSavedListPullMatchingSpecificVariant(t *testing.T) {
	now := time.Now()
	l := NewSavedList("u1", "Gifts", false, false, now)
	for _, v := range []string{"a", "b", "c"} {
		l.PushIfAbsent(SavedItem{ProductID: "p1", VariantID: strPtr(v)}, now)
	}

	assert.True(t, l.PullMatching("p1", strPtr("b"), now))
	assert.False(t, l.PullMatching("p1", strPtr("b"), now))
	assert.Equal(t, 2, l.Meta.Count)
	assert.False(t, l.Contains("p1", strPtr("b")))
	assert.True(t, l.Contains("p1", nil))
}

func TestSavedItemVariantKeyUsesSnapshotFallback(t *testing.T) {
	now := time.Now()
	l := NewSavedList("u1", "Gifts", false, false, now)
	l.Items = []SavedItem{
		{ProductID: "p1", Variant: &SavedItemVariant{SKU: "SKU-9"}},
		{ProductID: "p2", Variant: &SavedItemVariant{ID: "v7", SKU: "SKU-7"}},
	}
	l.RecomputeCount()

	assert.True(t, l.HasSlot("p1", strPtr("SKU-9")))
	assert.True(t, l.HasSlot("p2", strPtr("v7")))
	assert.False(t, l.HasSlot("p1", nil))
	assert.True(t, l.PullMatching("p2", strPtr("v7"), now))
	assert.Equal(t, 1, l.Meta.Count)
}

func TestSavedItemMatchesAnyOfItsVariantReferences(t *testing.T) {
	now := time.Now()
	l := NewSavedList("u1", "Gifts", false, false, now)
	l.Items = []SavedItem{
		{ProductID: "p1", VariantID: strPtr("S1"), Variant: &SavedItemVariant{ID: "v1", SKU: "S1"}},
	}
	l.RecomputeCount()

	assert.True(t, l.HasSlot("p1", strPtr("v1")))
	assert.True(t, l.Contains("p1", strPtr("S1")))
	assert.False(t, l.PushIfAbsent(SavedItem{ProductID: "p1", VariantID: strPtr("v1")}, now))
	assert.Equal(t, 1, l.Meta.Count)

	assert.True(t, l.PullMatching("p1", strPtr("v1"), now))
	assert.Equal(t, 0, l.Meta.Count)
}

func TestSavedListVisibility(t *testing.T) {
	now := time.Now()
	private := NewSavedList("owner", "Mine", true, false, now)
	public := NewSavedList("owner", "Ours", false, false, now)

	assert.True(t, private.VisibleTo("owner"))
	assert.False(t, private.VisibleTo("other"))
	assert.True(t, public.VisibleTo("other"))
	assert.True(t, public.VisibleTo(""))

	public.Archive(now)
	assert.False(t, public.VisibleTo("other"))
	assert.True(t, public.VisibleTo("owner"))
	assert.False(t, public.OwnedActive("owner"))
	assert.False(t, public.IsDefault)
}
