package request

import (
	"context"

	"github.com/google/uuid"

	"github.com/shareit-platform/service-booking/internal/platform/domain"
)

// ItemRequestRepository defines persistence operations for item requests.
type ItemRequestRepository interface {
	// FindByID retrieves a request, or a NotFoundError.
	FindByID(ctx context.Context, id uuid.UUID) (*ItemRequest, error)

	// FindByRequesterID returns all of a user's requests, newest first.
	FindByRequesterID(ctx context.Context, requesterID uuid.UUID) ([]*ItemRequest, error)

	// FindOthers returns one page of requests made by anyone except
	// requesterID, newest first.
	FindOthers(ctx context.Context, requesterID uuid.UUID, page domain.PageRequest) ([]*ItemRequest, error)

	// Save persists a new request.
	Save(ctx context.Context, r *ItemRequest) error
}
