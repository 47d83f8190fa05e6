package memory

import (
	"context"

	"storefront/internal/domain/entity"
	"storefront/pkg/errors"
	"storefront/pkg/utils"
)

type savedListRepository struct {
	s *Store
}

// active returns the stored (not cloned) non-archived lists of a user.
func (r *savedListRepository) active(userID string) []*entity.SavedList {
	var lists []*entity.SavedList
	for _, l := range r.s.savedLists {
		if l.UserID == userID && !l.Archived {
			lists = append(lists, l)
		}
	}
	return lists
}

func (r *savedListRepository) owned(userID, listID string, allowArchived bool) (*entity.SavedList, error) {
	l, ok := r.s.savedLists[listID]
	if !ok || l.UserID != userID || (l.Archived && !allowArchived) {
		return nil, errors.NotFound("Saved list", nil)
	}
	return l, nil
}

func (r *savedListRepository) clearDefaults(userID, keepID string) {
	now := r.s.now()
	for _, l := range r.active(userID) {
		if l.IsDefault && l.ID != keepID {
			l.IsDefault = false
			l.UpdatedAt = now
		}
	}
}

func (r *savedListRepository) Create(ctx context.Context, list *entity.SavedList, maxLists int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	active := r.active(list.UserID)
	if maxLists > 0 && len(active) >= maxLists {
		return errors.Conflict("Saved list limit reached")
	}
	key := entity.NameKey(list.Name)
	for _, l := range active {
		if entity.NameKey(l.Name) == key {
			return errors.Conflict("A saved list with this name already exists")
		}
	}

	now := r.s.now()
	list.ID = newID()
	list.IsDefault = list.IsDefault || len(active) == 0
	list.CreatedAt, list.UpdatedAt = now, now
	list.RecomputeCount()
	if list.IsDefault {
		r.clearDefaults(list.UserID, list.ID)
	}
	r.s.savedLists[list.ID] = cloneSavedList(list)
	return nil
}

func (r *savedListRepository) GetByID(ctx context.Context, id string) (*entity.SavedList, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	l, ok := r.s.savedLists[id]
	if !ok {
		return nil, errors.NotFound("Saved list", nil)
	}
	return cloneSavedList(l), nil
}

func (r *savedListRepository) ListByUser(ctx context.Context, userID string, includeArchived bool, limit, offset int) ([]*entity.SavedList, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var lists []*entity.SavedList
	for _, l := range r.s.savedLists {
		if l.UserID != userID || (l.Archived && !includeArchived) {
			continue
		}
		lists = append(lists, cloneSavedList(l))
	}
	entity.SortSavedLists(lists)
	start, end := utils.Bounds(len(lists), limit, offset)
	return lists[start:end], int64(len(lists)), nil
}

func (r *savedListRepository) Update(ctx context.Context, userID, listID string, name *string, isPrivate *bool) (*entity.SavedList, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	l, err := r.owned(userID, listID, false)
	if err != nil {
		return nil, err
	}
	if name != nil {
		key := entity.NameKey(*name)
		for _, other := range r.active(userID) {
			if other.ID != l.ID && entity.NameKey(other.Name) == key {
				return nil, errors.Conflict("A saved list with this name already exists")
			}
		}
		l.Name = *name
	}
	if isPrivate != nil {
		l.IsPrivate = *isPrivate
	}
	l.UpdatedAt = r.s.now()
	return cloneSavedList(l), nil
}

func (r *savedListRepository) PullItems(ctx context.Context, userID, listID, productID string, variantID *string) (bool, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	l, err := r.owned(userID, listID, false)
	if err != nil {
		return false, 0, err
	}
	removed := l.PullMatching(productID, variantID, r.s.now())
	return removed, l.Meta.Count, nil
}

func (r *savedListRepository) PushItemIfAbsent(ctx context.Context, userID, listID string, item entity.SavedItem) (bool, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	l, err := r.owned(userID, listID, false)
	if err != nil {
		return false, 0, err
	}
	item = cloneSavedList(&entity.SavedList{Items: []entity.SavedItem{item}}).Items[0]
	added := l.PushIfAbsent(item, r.s.now())
	return added, l.Meta.Count, nil
}

func (r *savedListRepository) EnsureDefault(ctx context.Context, userID string, maxLists int) (*entity.SavedList, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	active := r.active(userID)
	entity.SortSavedLists(active)
	for _, l := range active {
		if l.IsDefault {
			r.clearDefaults(userID, l.ID)
			return cloneSavedList(l), nil
		}
	}

	now := r.s.now()
	if promote := entity.PickDefaultCandidate(active, maxLists); promote != nil {
		promote.IsDefault = true
		promote.UpdatedAt = now
		return cloneSavedList(promote), nil
	}
	list := entity.NewSavedList(userID, entity.DefaultSavedListName, true, true, now)
	list.ID = newID()
	r.s.savedLists[list.ID] = list
	return cloneSavedList(list), nil
}

func (r *savedListRepository) SetDefault(ctx context.Context, userID, listID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	l, err := r.owned(userID, listID, false)
	if err != nil {
		return false, err
	}
	others := false
	for _, other := range r.active(userID) {
		if other.IsDefault && other.ID != l.ID {
			others = true
		}
	}
	if l.IsDefault && !others {
		return true, nil
	}
	r.clearDefaults(userID, l.ID)
	l.IsDefault = true
	l.UpdatedAt = r.s.now()
	return false, nil
}

func (r *savedListRepository) Archive(ctx context.Context, userID, listID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	l, err := r.owned(userID, listID, false)
	if err != nil {
		return err
	}
	l.Archive(r.s.now())
	return nil
}

func (r *savedListRepository) Delete(ctx context.Context, userID, listID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	l, err := r.owned(userID, listID, true)
	if err != nil {
		return err
	}
	if l.IsDefault {
		return errors.Conflict("The default saved list cannot be deleted; set another default first")
	}
	delete(r.s.savedLists, listID)
	return nil
}

func (r *savedListRepository) MoveItem(ctx context.Context, userID, fromListID, toListID, productID string, variantID *string) (bool, error) {
	if fromListID == toListID {
		return false, errors.BadRequest("Source and target lists must differ", nil)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	from, err := r.owned(userID, fromListID, false)
	if err != nil {
		return false, err
	}
	to, err := r.owned(userID, toListID, false)
	if err != nil {
		return false, err
	}
	return entity.MoveItems(from, to, productID, variantID, r.s.now()), nil
}

func (r *savedListRepository) CountItems(ctx context.Context, userID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	total := 0
	for _, l := range r.active(userID) {
		total += len(l.Items)
	}
	return total, nil
}
