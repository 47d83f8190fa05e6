package repository

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain/entity"
	"storefront/pkg/errors"
)

// These tests talk to the Firestore emulator and are skipped without it.
func emulatorClient(t *testing.T) *firestore.Client {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST is not set")
	}
	client, err := firestore.NewClient(context.Background(), "demo-storefront")
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func strPtr(s string) *string { return &s }

func TestFirestoreSavedListDefaults(t *testing.T) {
	ctx := context.Background()
	repo := NewFirestoreSavedListRepository(emulatorClient(t), 5)
	uid := "u-" + uuid.NewString()

	first := entity.NewSavedList(uid, "Gifts", false, false, time.Now())
	require.NoError(t, repo.Create(ctx, first, 20))
	assert.True(t, first.IsDefault)

	second := entity.NewSavedList(uid, "Later", false, true, time.Now())
	require.NoError(t, repo.Create(ctx, second, 20))

	dup := entity.NewSavedList(uid, " gifts ", false, false, time.Now())
	assert.True(t, errors.Is(repo.Create(ctx, dup, 20), errors.CodeConflict))

	lists, total, err := repo.ListByUser(ctx, uid, false, 0, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	defaults := 0
	for _, l := range lists {
		if l.IsDefault {
			defaults++
			assert.Equal(t, second.ID, l.ID)
		}
	}
	assert.Equal(t, 1, defaults)

	already, err := repo.SetDefault(ctx, uid, first.ID)
	require.NoError(t, err)
	assert.False(t, already)
	assert.True(t, errors.Is(repo.Delete(ctx, uid, first.ID), errors.CodeConflict))
}

func TestFirestoreCorruptSavedListFailsReads(t *testing.T) {
	ctx := context.Background()
	client := emulatorClient(t)
	repo := NewFirestoreSavedListRepository(client, 5)
	uid := "u-" + uuid.NewString()

	good := entity.NewSavedList(uid, "Gifts", false, false, time.Now())
	require.NoError(t, repo.Create(ctx, good, 20))
	_, err := client.Collection(savedListsCollection).NewDoc().Set(ctx, map[string]interface{}{
		"userId": uid,
		"name":   "Broken",
		"items":  "not-a-list",
	})
	require.NoError(t, err)

	_, _, err = repo.ListByUser(ctx, uid, false, 0, 0)
	assert.True(t, errors.Is(err, errors.CodeInternal))

	_, err = repo.CountItems(ctx, uid)
	assert.True(t, errors.Is(err, errors.CodeInternal))
}

func TestFirestoreConcurrentPushKeepsOneRow(t *testing.T) {
	ctx := context.Background()
	repo := NewFirestoreSavedListRepository(emulatorClient(t), 10)
	uid := "u-" + uuid.NewString()

	list := entity.NewSavedList(uid, "Wishlist", false, false, time.Now())
	require.NoError(t, repo.Create(ctx, list, 20))

	var wg sync.WaitGroup
	var mu sync.Mutex
	added := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, _, err := repo.PushItemIfAbsent(ctx, uid, list.ID, entity.SavedItem{
				ProductID: "p1",
				VariantID: strPtr("v1"),
				AddedAt:   time.Now(),
			})
			if err == nil && ok {
				mu.Lock()
				added++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, added)

	got, err := repo.GetByID(ctx, list.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 1, got.Meta.Count)

	removed, count, err := repo.PullItems(ctx, uid, list.ID, "p1", nil)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, 0, count)

	n, err := repo.CountItems(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestFirestoreCartMerge(t *testing.T) {
	ctx := context.Background()
	repo := NewFirestoreCartRepository(emulatorClient(t), 5)
	uid := "u-" + uuid.NewString()
	gid := uuid.NewString()
	now := time.Now()

	_, err := repo.Mutate(ctx, entity.GuestOwner(gid), func(cart *entity.Cart) error {
		return cart.Add(entity.CartItem{ProductID: "p1", Quantity: 2}, now)
	})
	require.NoError(t, err)
	_, err = repo.Mutate(ctx, entity.UserOwner(uid), func(cart *entity.Cart) error {
		return cart.Add(entity.CartItem{ProductID: "p1", Quantity: 3}, now)
	})
	require.NoError(t, err)

	merged, err := repo.Merge(ctx, uid, gid)
	require.NoError(t, err)
	require.Len(t, merged.Items, 1)
	assert.Equal(t, 5, merged.Items[0].Quantity)
	assert.Empty(t, merged.GuestID)

	guest, err := repo.Get(ctx, entity.GuestOwner(gid))
	require.NoError(t, err)
	assert.Nil(t, guest)

	again, err := repo.Merge(ctx, uid, gid)
	require.NoError(t, err)
	assert.Equal(t, 5, again.Items[0].Quantity)
}
