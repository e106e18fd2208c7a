package request

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shareit-platform/service-booking/internal/platform/domain"
)

// ItemRequest is a user's public ask for an item nobody lists yet. Owners
// answer it by listing an item that carries the request id.
type ItemRequest struct {
	id          uuid.UUID
	requesterID uuid.UUID
	description string
	createdAt   time.Time
}

// NewItemRequest validates and creates an item request.
func NewItemRequest(requesterID uuid.UUID, description string, now time.Time) (*ItemRequest, error) {
	if requesterID == uuid.Nil {
		return nil, domain.NewValidationError("requester ID is required")
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, domain.NewValidationError("request description is required")
	}
	if len(description) > 1000 {
		return nil, domain.NewValidationError("request description must be at most 1000 characters")
	}

	return &ItemRequest{
		id:          uuid.New(),
		requesterID: requesterID,
		description: description,
		createdAt:   now,
	}, nil
}

// ReconstructItemRequest rebuilds an ItemRequest from persistence data (no validation).
func ReconstructItemRequest(id, requesterID uuid.UUID, description string, createdAt time.Time) *ItemRequest {
	return &ItemRequest{id: id, requesterID: requesterID, description: description, createdAt: createdAt}
}

func (r *ItemRequest) ID() uuid.UUID          { return r.id }
func (r *ItemRequest) RequesterID() uuid.UUID { return r.requesterID }
func (r *ItemRequest) Description() string    { return r.description }
func (r *ItemRequest) CreatedAt() time.Time   { return r.createdAt }
