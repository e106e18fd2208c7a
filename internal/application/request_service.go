package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shareit-platform/service-booking/internal/domain/item"
	"github.com/shareit-platform/service-booking/internal/domain/request"
	"github.com/shareit-platform/service-booking/internal/platform/domain"
)

// CreateRequestRequest holds the body of a new item request.
type CreateRequestRequest struct {
	Description string `json:"description" binding:"required"`
}

// RequestItemDTO is an item listed in answer to a request.
type RequestItemDTO struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"ownerId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Available   bool      `json:"available"`
	RequestID   uuid.UUID `json:"requestId"`
}

// ItemRequestDTO is the response representation of an item request.
type ItemRequestDTO struct {
	ID          uuid.UUID        `json:"id"`
	Description string           `json:"description"`
	RequesterID uuid.UUID        `json:"requesterId"`
	Created     time.Time        `json:"created"`
	Items       []RequestItemDTO `json:"items"`
}

// RequestService lets users ask for items and shows who answered.
type RequestService struct {
	requests request.ItemRequestRepository
	items    item.ItemRepository
	guard    *AccessGuard
	logger   *zap.Logger
	now      func() time.Time
}

// NewRequestService creates a new RequestService.
func NewRequestService(requests request.ItemRequestRepository, items item.ItemRepository, guard *AccessGuard, logger *zap.Logger) *RequestService {
	return &RequestService{
		requests: requests,
		items:    items,
		guard:    guard,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateRequest records a new item request for an existing user.
func (s *RequestService) CreateRequest(ctx context.Context, requesterID uuid.UUID, req CreateRequestRequest) (*ItemRequestDTO, error) {
	if _, err := s.guard.RequireUser(ctx, requesterID); err != nil {
		return nil, err
	}

	r, err := request.NewItemRequest(requesterID, req.Description, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.requests.Save(ctx, r); err != nil {
		return nil, fmt.Errorf("failed to save item request: %w", err)
	}

	s.logger.Info("item request created",
		zap.String("request_id", r.ID().String()),
		zap.String("requester_id", requesterID.String()),
	)

	result := toItemRequestDTO(r, nil)
	return &result, nil
}

// ListOwnRequests returns all of the user's requests, newest first, each with
// the items listed in answer.
func (s *RequestService) ListOwnRequests(ctx context.Context, userID uuid.UUID) ([]ItemRequestDTO, error) {
	if _, err := s.guard.RequireUser(ctx, userID); err != nil {
		return nil, err
	}

	requests, err := s.requests.FindByRequesterID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list item requests: %w", err)
	}
	return s.withItems(ctx, requests)
}

// ListOtherRequests returns one page of requests made by other users,
// newest first.
func (s *RequestService) ListOtherRequests(ctx context.Context, userID uuid.UUID, from, size int) ([]ItemRequestDTO, error) {
	page, err := domain.NewPageRequest(from, size)
	if err != nil {
		return nil, err
	}
	if _, err := s.guard.RequireUser(ctx, userID); err != nil {
		return nil, err
	}

	requests, err := s.requests.FindOthers(ctx, userID, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list item requests: %w", err)
	}
	return s.withItems(ctx, requests)
}

// GetRequest returns any request to any existing user.
func (s *RequestService) GetRequest(ctx context.Context, userID, requestID uuid.UUID) (*ItemRequestDTO, error) {
	if _, err := s.guard.RequireUser(ctx, userID); err != nil {
		return nil, err
	}
	r, err := s.guard.RequireItemRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	dtos, err := s.withItems(ctx, []*request.ItemRequest{r})
	if err != nil {
		return nil, err
	}
	return &dtos[0], nil
}

// withItems attaches answering items with one store query for the whole page.
func (s *RequestService) withItems(ctx context.Context, requests []*request.ItemRequest) ([]ItemRequestDTO, error) {
	ids := make([]uuid.UUID, len(requests))
	for i, r := range requests {
		ids[i] = r.ID()
	}
	answers, err := s.items.FindByRequestIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load request items: %w", err)
	}

	byRequest := make(map[uuid.UUID][]*item.Item, len(requests))
	for _, it := range answers {
		byRequest[it.RequestID()] = append(byRequest[it.RequestID()], it)
	}

	dtos := make([]ItemRequestDTO, len(requests))
	for i, r := range requests {
		dtos[i] = toItemRequestDTO(r, byRequest[r.ID()])
	}
	return dtos, nil
}

func toItemRequestDTO(r *request.ItemRequest, answers []*item.Item) ItemRequestDTO {
	dto := ItemRequestDTO{
		ID:          r.ID(),
		Description: r.Description(),
		RequesterID: r.RequesterID(),
		Created:     r.CreatedAt(),
		Items:       make([]RequestItemDTO, len(answers)),
	}
	for i, it := range answers {
		dto.Items[i] = RequestItemDTO{
			ID:          it.ID(),
			OwnerID:     it.OwnerID(),
			Name:        it.Name(),
			Description: it.Description(),
			Available:   it.Available(),
			RequestID:   it.RequestID(),
		}
	}
	return dto
}
