package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/shareit-platform/service-booking/internal/domain/request"
	"github.com/shareit-platform/service-booking/internal/platform/domain"
)

// MemoryItemRequestRepository is an in-process ItemRequestRepository.
type MemoryItemRequestRepository struct {
	mu       sync.RWMutex
	requests map[uuid.UUID]*request.ItemRequest
}

func NewMemoryItemRequestRepository() *MemoryItemRequestRepository {
	return &MemoryItemRequestRepository{requests: make(map[uuid.UUID]*request.ItemRequest)}
}

func (r *MemoryItemRequestRepository) FindByID(_ context.Context, id uuid.UUID) (*request.ItemRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	req, ok := r.requests[id]
	if !ok {
		return nil, domain.NewNotFoundError("ItemRequest", id.String())
	}
	return req, nil
}

func (r *MemoryItemRequestRepository) FindByRequesterID(_ context.Context, requesterID uuid.UUID) ([]*request.ItemRequest, error) {
	return r.newestFirst(func(req *request.ItemRequest) bool { return req.RequesterID() == requesterID }), nil
}

func (r *MemoryItemRequestRepository) FindOthers(_ context.Context, requesterID uuid.UUID, page domain.PageRequest) ([]*request.ItemRequest, error) {
	others := r.newestFirst(func(req *request.ItemRequest) bool { return req.RequesterID() != requesterID })
	return window(others, page.Offset(), page.Limit()), nil
}

func (r *MemoryItemRequestRepository) Save(_ context.Context, req *request.ItemRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.requests[req.ID()]; exists {
		return domain.NewConflictError("item request already exists")
	}
	r.requests[req.ID()] = req
	return nil
}

func (r *MemoryItemRequestRepository) newestFirst(keep func(*request.ItemRequest) bool) []*request.ItemRequest {
	r.mu.RLock()
	matched := []*request.ItemRequest{}
	for _, req := range r.requests {
		if keep(req) {
			matched = append(matched, req)
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.CreatedAt().Equal(b.CreatedAt()) {
			return a.CreatedAt().After(b.CreatedAt())
		}
		return a.ID().String() > b.ID().String()
	})
	return matched
}
