package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
	"storefront/pkg/errors"
	"storefront/pkg/utils"
)

// savedListOwner is a per-user guard document. Every transaction that can
// change which list is the default, or how many active lists exist, reads and
// rewrites it so concurrent attempts conflict and retry instead of both
// committing.
type savedListOwner struct {
	UserID        string    `firestore:"userId"`
	DefaultListID string    `firestore:"defaultListId"`
	UpdatedAt     time.Time `firestore:"updatedAt"`
}

type firestoreSavedListRepository struct {
	client      *firestore.Client
	maxAttempts int
	now         func() time.Time
}

func NewFirestoreSavedListRepository(client *firestore.Client, maxAttempts int) repository.SavedListRepository {
	return &firestoreSavedListRepository{
		client:      client,
		maxAttempts: maxAttempts,
		now:         time.Now,
	}
}

func (r *firestoreSavedListRepository) lists() *firestore.CollectionRef {
	return r.client.Collection(savedListsCollection)
}

func (r *firestoreSavedListRepository) runTx(ctx context.Context, fn func(context.Context, *firestore.Transaction) error) error {
	return r.client.RunTransaction(ctx, fn, txOptions(r.maxAttempts)...)
}

func (r *firestoreSavedListRepository) readOwner(tx *firestore.Transaction, userID string) (*firestore.DocumentRef, *savedListOwner, error) {
	ref := r.client.Collection(savedListOwnerCollection).Doc(userID)
	doc, err := tx.Get(ref)
	if err != nil {
		if IsNotFound(err) {
			return ref, &savedListOwner{UserID: userID}, nil
		}
		return nil, nil, err
	}
	var owner savedListOwner
	if err := doc.DataTo(&owner); err != nil {
		return nil, nil, err
	}
	return ref, &owner, nil
}

func (r *firestoreSavedListRepository) writeOwner(tx *firestore.Transaction, ref *firestore.DocumentRef, owner *savedListOwner, now time.Time) error {
	owner.UpdatedAt = now
	return tx.Set(ref, owner)
}

// activeLists reads every non-archived list of the user inside tx.
func (r *firestoreSavedListRepository) activeLists(tx *firestore.Transaction, userID string) ([]*entity.SavedList, error) {
	docs, err := tx.Documents(r.lists().Where("userId", "==", userID)).GetAll()
	if err != nil {
		return nil, err
	}
	var lists []*entity.SavedList
	for _, doc := range docs {
		var list entity.SavedList
		if err := doc.DataTo(&list); err != nil {
			return nil, err
		}
		list.ID = doc.Ref.ID
		if !list.Archived {
			lists = append(lists, &list)
		}
	}
	return lists, nil
}

// loadOwned reads one list inside tx; anything not owned by userID reads as
// not found.
func (r *firestoreSavedListRepository) loadOwned(tx *firestore.Transaction, userID, listID string, allowArchived bool) (*firestore.DocumentRef, *entity.SavedList, error) {
	ref := r.lists().Doc(listID)
	doc, err := tx.Get(ref)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil, errors.NotFound("Saved list", err)
		}
		return nil, nil, err
	}
	var list entity.SavedList
	if err := doc.DataTo(&list); err != nil {
		return nil, nil, err
	}
	list.ID = doc.Ref.ID
	if list.UserID != userID || (list.Archived && !allowArchived) {
		return nil, nil, errors.NotFound("Saved list", nil)
	}
	return ref, &list, nil
}

func (r *firestoreSavedListRepository) clearDefaults(tx *firestore.Transaction, lists []*entity.SavedList, keepID string, now time.Time) error {
	for _, l := range lists {
		if l.IsDefault && l.ID != keepID {
			err := tx.Update(r.lists().Doc(l.ID), []firestore.Update{
				{Path: "isDefault", Value: false},
				{Path: "updatedAt", Value: now},
			})
			if err != nil {
				return err
			}
			l.IsDefault = false
		}
	}
	return nil
}

func (r *firestoreSavedListRepository) Create(ctx context.Context, list *entity.SavedList, maxLists int) error {
	ref := r.lists().NewDoc()
	wantDefault := list.IsDefault
	err := r.runTx(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		now := r.now()
		ownerRef, owner, err := r.readOwner(tx, list.UserID)
		if err != nil {
			return err
		}
		active, err := r.activeLists(tx, list.UserID)
		if err != nil {
			return err
		}
		if maxLists > 0 && len(active) >= maxLists {
			return errors.Conflict("Saved list limit reached")
		}
		key := entity.NameKey(list.Name)
		for _, l := range active {
			if entity.NameKey(l.Name) == key {
				return errors.Conflict("A saved list with this name already exists")
			}
		}

		list.ID = ref.ID
		list.IsDefault = wantDefault || len(active) == 0
		list.CreatedAt, list.UpdatedAt = now, now
		list.RecomputeCount()
		if list.IsDefault {
			if err := r.clearDefaults(tx, active, list.ID, now); err != nil {
				return err
			}
			owner.DefaultListID = list.ID
		}
		if err := tx.Create(ref, list); err != nil {
			return err
		}
		return r.writeOwner(tx, ownerRef, owner, now)
	})
	return storeError(err, "Failed to create saved list")
}

func (r *firestoreSavedListRepository) GetByID(ctx context.Context, id string) (*entity.SavedList, error) {
	doc, err := r.lists().Doc(id).Get(ctx)
	if err != nil {
		if IsNotFound(err) {
			return nil, errors.NotFound("Saved list", err)
		}
		return nil, storeError(err, "Failed to get saved list")
	}
	var list entity.SavedList
	if err := doc.DataTo(&list); err != nil {
		return nil, errors.Internal("Failed to parse saved list data", err)
	}
	list.ID = doc.Ref.ID
	list.RecomputeCount()
	return &list, nil
}

func (r *firestoreSavedListRepository) ListByUser(ctx context.Context, userID string, includeArchived bool, limit, offset int) ([]*entity.SavedList, int64, error) {
	// Sorted in memory to avoid a composite index on (userId, isDefault, updatedAt).
	docs, err := r.lists().Where("userId", "==", userID).Documents(ctx).GetAll()
	if err != nil {
		return nil, 0, storeError(err, "Failed to list saved lists")
	}
	lists := make([]*entity.SavedList, 0, len(docs))
	for _, doc := range docs {
		var list entity.SavedList
		if err := doc.DataTo(&list); err != nil {
			return nil, 0, errors.Internal("Failed to parse saved list data", err)
		}
		if list.Archived && !includeArchived {
			continue
		}
		list.ID = doc.Ref.ID
		list.RecomputeCount()
		lists = append(lists, &list)
	}
	entity.SortSavedLists(lists)
	start, end := utils.Bounds(len(lists), limit, offset)
	return lists[start:end], int64(len(lists)), nil
}

func (r *firestoreSavedListRepository) Update(ctx context.Context, userID, listID string, name *string, isPrivate *bool) (*entity.SavedList, error) {
	var updated *entity.SavedList
	err := r.runTx(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		now := r.now()
		ownerRef, owner, err := r.readOwner(tx, userID)
		if err != nil {
			return err
		}
		ref, list, err := r.loadOwned(tx, userID, listID, false)
		if err != nil {
			return err
		}
		if name != nil {
			active, err := r.activeLists(tx, userID)
			if err != nil {
				return err
			}
			key := entity.NameKey(*name)
			for _, l := range active {
				if l.ID != list.ID && entity.NameKey(l.Name) == key {
					return errors.Conflict("A saved list with this name already exists")
				}
			}
			list.Name = *name
		}
		if isPrivate != nil {
			list.IsPrivate = *isPrivate
		}
		list.UpdatedAt = now
		list.RecomputeCount()
		if err := tx.Set(ref, list); err != nil {
			return err
		}
		updated = list
		return r.writeOwner(tx, ownerRef, owner, now)
	})
	if err != nil {
		return nil, storeError(err, "Failed to update saved list")
	}
	return updated, nil
}

func (r *firestoreSavedListRepository) writeItems(tx *firestore.Transaction, ref *firestore.DocumentRef, list *entity.SavedList) error {
	return tx.Update(ref, []firestore.Update{
		{Path: "items", Value: list.Items},
		{Path: "meta", Value: list.Meta},
		{Path: "updatedAt", Value: list.UpdatedAt},
	})
}

func (r *firestoreSavedListRepository) PullItems(ctx context.Context, userID, listID, productID string, variantID *string) (bool, int, error) {
	var removed bool
	var count int
	err := r.runTx(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		ref, list, err := r.loadOwned(tx, userID, listID, false)
		if err != nil {
			return err
		}
		stored := list.Meta.Count
		removed = list.PullMatching(productID, variantID, r.now())
		count = list.Meta.Count
		if removed || stored != count {
			return r.writeItems(tx, ref, list)
		}
		return nil
	})
	if err != nil {
		return false, 0, storeError(err, "Failed to remove saved item")
	}
	return removed, count, nil
}

func (r *firestoreSavedListRepository) PushItemIfAbsent(ctx context.Context, userID, listID string, item entity.SavedItem) (bool, int, error) {
	var added bool
	var count int
	err := r.runTx(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		ref, list, err := r.loadOwned(tx, userID, listID, false)
		if err != nil {
			return err
		}
		stored := list.Meta.Count
		added = list.PushIfAbsent(item, r.now())
		count = list.Meta.Count
		if added || stored != count {
			return r.writeItems(tx, ref, list)
		}
		return nil
	})
	if err != nil {
		return false, 0, storeError(err, "Failed to save item")
	}
	return added, count, nil
}

func (r *firestoreSavedListRepository) EnsureDefault(ctx context.Context, userID string, maxLists int) (*entity.SavedList, error) {
	newRef := r.lists().NewDoc()
	var result *entity.SavedList
	err := r.runTx(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		now := r.now()
		ownerRef, owner, err := r.readOwner(tx, userID)
		if err != nil {
			return err
		}
		active, err := r.activeLists(tx, userID)
		if err != nil {
			return err
		}
		entity.SortSavedLists(active)

		var defaults []*entity.SavedList
		for _, l := range active {
			if l.IsDefault {
				defaults = append(defaults, l)
			}
		}
		if len(defaults) > 0 {
			result = defaults[0]
			if len(defaults) == 1 && owner.DefaultListID == result.ID {
				return nil
			}
			// Repair duplicates left behind by writes outside this guard.
			if err := r.clearDefaults(tx, active, result.ID, now); err != nil {
				return err
			}
			owner.DefaultListID = result.ID
			return r.writeOwner(tx, ownerRef, owner, now)
		}

		promote := entity.PickDefaultCandidate(active, maxLists)
		if promote != nil {
			promote.IsDefault = true
			promote.UpdatedAt = now
			err := tx.Update(r.lists().Doc(promote.ID), []firestore.Update{
				{Path: "isDefault", Value: true},
				{Path: "updatedAt", Value: now},
			})
			if err != nil {
				return err
			}
			result = promote
		} else {
			list := entity.NewSavedList(userID, entity.DefaultSavedListName, true, true, now)
			list.ID = newRef.ID
			if err := tx.Create(newRef, list); err != nil {
				return err
			}
			result = list
		}
		owner.DefaultListID = result.ID
		return r.writeOwner(tx, ownerRef, owner, now)
	})
	if err != nil {
		return nil, storeError(err, "Failed to resolve default saved list")
	}
	result.RecomputeCount()
	return result, nil
}

func (r *firestoreSavedListRepository) SetDefault(ctx context.Context, userID, listID string) (bool, error) {
	var already bool
	err := r.runTx(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		now := r.now()
		ownerRef, owner, err := r.readOwner(tx, userID)
		if err != nil {
			return err
		}
		ref, list, err := r.loadOwned(tx, userID, listID, false)
		if err != nil {
			return err
		}
		active, err := r.activeLists(tx, userID)
		if err != nil {
			return err
		}
		others := 0
		for _, l := range active {
			if l.IsDefault && l.ID != list.ID {
				others++
			}
		}
		already = list.IsDefault && others == 0
		if already {
			return nil
		}
		if err := r.clearDefaults(tx, active, list.ID, now); err != nil {
			return err
		}
		err = tx.Update(ref, []firestore.Update{
			{Path: "isDefault", Value: true},
			{Path: "updatedAt", Value: now},
		})
		if err != nil {
			return err
		}
		owner.DefaultListID = list.ID
		return r.writeOwner(tx, ownerRef, owner, now)
	})
	if err != nil {
		return false, storeError(err, "Failed to set default saved list")
	}
	return already, nil
}

func (r *firestoreSavedListRepository) Archive(ctx context.Context, userID, listID string) error {
	err := r.runTx(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		now := r.now()
		ownerRef, owner, err := r.readOwner(tx, userID)
		if err != nil {
			return err
		}
		ref, list, err := r.loadOwned(tx, userID, listID, false)
		if err != nil {
			return err
		}
		list.Archive(now)
		err = tx.Update(ref, []firestore.Update{
			{Path: "archived", Value: true},
			{Path: "isDefault", Value: false},
			{Path: "archivedAt", Value: now},
			{Path: "updatedAt", Value: now},
		})
		if err != nil {
			return err
		}
		if owner.DefaultListID == list.ID {
			owner.DefaultListID = ""
		}
		return r.writeOwner(tx, ownerRef, owner, now)
	})
	return storeError(err, "Failed to archive saved list")
}

func (r *firestoreSavedListRepository) Delete(ctx context.Context, userID, listID string) error {
	err := r.runTx(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		ownerRef, owner, err := r.readOwner(tx, userID)
		if err != nil {
			return err
		}
		ref, list, err := r.loadOwned(tx, userID, listID, true)
		if err != nil {
			return err
		}
		if list.IsDefault {
			return errors.Conflict("The default saved list cannot be deleted; set another default first")
		}
		if err := tx.Delete(ref); err != nil {
			return err
		}
		return r.writeOwner(tx, ownerRef, owner, r.now())
	})
	return storeError(err, "Failed to delete saved list")
}

func (r *firestoreSavedListRepository) MoveItem(ctx context.Context, userID, fromListID, toListID, productID string, variantID *string) (bool, error) {
	if fromListID == toListID {
		return false, errors.BadRequest("Source and target lists must differ", nil)
	}
	var moved bool
	err := r.runTx(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		now := r.now()
		fromRef, from, err := r.loadOwned(tx, userID, fromListID, false)
		if err != nil {
			return err
		}
		toRef, to, err := r.loadOwned(tx, userID, toListID, false)
		if err != nil {
			return err
		}
		moved = entity.MoveItems(from, to, productID, variantID, now)
		if !moved {
			return nil
		}
		if err := r.writeItems(tx, fromRef, from); err != nil {
			return err
		}
		return r.writeItems(tx, toRef, to)
	})
	if err != nil {
		return false, storeError(err, "Failed to move saved item")
	}
	return moved, nil
}

func (r *firestoreSavedListRepository) CountItems(ctx context.Context, userID string) (int, error) {
	docs, err := r.lists().Where("userId", "==", userID).Documents(ctx).GetAll()
	if err != nil {
		return 0, storeError(err, "Failed to count saved items")
	}
	total := 0
	for _, doc := range docs {
		var list entity.SavedList
		if err := doc.DataTo(&list); err != nil {
			return 0, errors.Internal("Failed to parse saved list data", err)
		}
		if !list.Archived {
			total += len(list.Items)
		}
	}
	return total, nil
}
