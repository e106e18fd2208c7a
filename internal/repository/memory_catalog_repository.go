package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/shareit-platform/service-booking/internal/domain/item"
	"github.com/shareit-platform/service-booking/internal/domain/user"
	"github.com/shareit-platform/service-booking/internal/platform/domain"
)

// MemoryUserRepository is an in-process UserRepository.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*user.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[uuid.UUID]*user.User)}
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, domain.NewNotFoundError("User", id.String())
	}
	return cloneUser(u), nil
}

func (r *MemoryUserRepository) Save(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[u.ID()]; exists {
		return domain.NewConflictError("user already exists")
	}
	if r.emailTakenLocked(u) {
		return domain.NewConflictError("email is already registered")
	}
	r.users[u.ID()] = cloneUser(u)
	return nil
}

func (r *MemoryUserRepository) Upsert(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.emailTakenLocked(u) {
		return domain.NewConflictError("email is already registered")
	}
	r.users[u.ID()] = cloneUser(u)
	return nil
}

func (r *MemoryUserRepository) emailTakenLocked(u *user.User) bool {
	for id, existing := range r.users {
		if id != u.ID() && existing.Email() == u.Email() {
			return true
		}
	}
	return false
}

func cloneUser(u *user.User) *user.User {
	return user.Reconstruct(u.ID(), u.Name(), u.Email(), u.CreatedAt(), u.UpdatedAt())
}

// MemoryItemRepository is an in-process ItemRepository.
type MemoryItemRepository struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*item.Item
}

func NewMemoryItemRepository() *MemoryItemRepository {
	return &MemoryItemRepository{items: make(map[uuid.UUID]*item.Item)}
}

func (r *MemoryItemRepository) FindByID(_ context.Context, id uuid.UUID) (*item.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	it, ok := r.items[id]
	if !ok {
		return nil, domain.NewNotFoundError("Item", id.String())
	}
	return cloneItem(it), nil
}

func (r *MemoryItemRepository) FindByIDs(_ context.Context, ids []uuid.UUID) ([]*item.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*item.Item
	for _, id := range ids {
		if it, ok := r.items[id]; ok {
			out = append(out, cloneItem(it))
		}
	}
	return out, nil
}

func (r *MemoryItemRepository) FindByOwnerID(_ context.Context, ownerID uuid.UUID, page domain.PageRequest) ([]*item.Item, error) {
	owned := r.selectSorted(func(it *item.Item) bool { return it.IsOwnedBy(ownerID) })
	return window(owned, page.Offset(), page.Limit()), nil
}

func (r *MemoryItemRepository) FindByRequestIDs(_ context.Context, requestIDs []uuid.UUID) ([]*item.Item, error) {
	wanted := make(map[uuid.UUID]struct{}, len(requestIDs))
	for _, id := range requestIDs {
		wanted[id] = struct{}{}
	}
	return r.selectSorted(func(it *item.Item) bool {
		_, ok := wanted[it.RequestID()]
		return ok && it.RequestID() != uuid.Nil
	}), nil
}

func (r *MemoryItemRepository) Search(_ context.Context, text string, page domain.PageRequest) ([]*item.Item, error) {
	found := r.selectSorted(func(it *item.Item) bool { return it.Available() && it.Matches(text) })
	return window(found, page.Offset(), page.Limit()), nil
}

// selectSorted returns copies of the kept items, oldest first.
func (r *MemoryItemRepository) selectSorted(keep func(*item.Item) bool) []*item.Item {
	r.mu.RLock()
	var matched []*item.Item
	for _, it := range r.items {
		if keep(it) {
			matched = append(matched, cloneItem(it))
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.CreatedAt().Equal(b.CreatedAt()) {
			return a.CreatedAt().Before(b.CreatedAt())
		}
		return a.ID().String() < b.ID().String()
	})
	return matched
}

func (r *MemoryItemRepository) Save(_ context.Context, it *item.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[it.ID()]; exists {
		return domain.NewConflictError("item already exists")
	}
	r.items[it.ID()] = cloneItem(it)
	return nil
}

func (r *MemoryItemRepository) Update(_ context.Context, it *item.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.items[it.ID()]
	if !ok || stored.Version() >= it.Version() {
		return domain.NewConflictError("item was modified by another transaction")
	}
	r.items[it.ID()] = cloneItem(it)
	return nil
}

func cloneItem(it *item.Item) *item.Item {
	return item.Reconstruct(it.ID(), it.OwnerID(), it.RequestID(), it.Name(), it.Description(), it.Available(),
		it.Version(), it.CreatedAt(), it.UpdatedAt())
}

// MemoryCommentRepository is an in-process CommentRepository.
type MemoryCommentRepository struct {
	mu       sync.RWMutex
	comments []*item.Comment
}

func NewMemoryCommentRepository() *MemoryCommentRepository {
	return &MemoryCommentRepository{}
}

func (r *MemoryCommentRepository) FindByItemIDs(_ context.Context, itemIDs []uuid.UUID) ([]*item.Comment, error) {
	wanted := make(map[uuid.UUID]struct{}, len(itemIDs))
	for _, id := range itemIDs {
		wanted[id] = struct{}{}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*item.Comment
	for _, c := range r.comments {
		if _, ok := wanted[c.ItemID()]; ok {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt().Before(out[j].CreatedAt()) })
	return out, nil
}

func (r *MemoryCommentRepository) Save(_ context.Context, c *item.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.comments = append(r.comments, c)
	return nil
}
