package item

import (
	"context"

	"github.com/google/uuid"

	"github.com/shareit-platform/service-booking/internal/platform/domain"
)

// ItemRepository defines persistence operations for the item catalog.
type ItemRepository interface {
	// FindByID retrieves an item, or a NotFoundError.
	FindByID(ctx context.Context, id uuid.UUID) (*Item, error)

	// FindByIDs retrieves the items that exist among ids, in no particular order.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Item, error)

	// FindByOwnerID returns one page of an owner's items, oldest first.
	FindByOwnerID(ctx context.Context, ownerID uuid.UUID, page domain.PageRequest) ([]*Item, error)

	// FindByRequestIDs returns the items listed in answer to any of the given
	// item requests, oldest first.
	FindByRequestIDs(ctx context.Context, requestIDs []uuid.UUID) ([]*Item, error)

	// Search returns one page of available items whose name or description
	// contains text, ignoring case.
	Search(ctx context.Context, text string, page domain.PageRequest) ([]*Item, error)

	// Save persists a new item.
	Save(ctx context.Context, it *Item) error

	// Update persists changes only if the stored version is older than the
	// item's. Anything else is a ConflictError.
	Update(ctx context.Context, it *Item) error
}

// CommentRepository defines persistence operations for item comments.
type CommentRepository interface {
	// FindByItemIDs returns the comments of the given items, oldest first.
	FindByItemIDs(ctx context.Context, itemIDs []uuid.UUID) ([]*Comment, error)

	// Save persists a new comment.
	Save(ctx context.Context, c *Comment) error
}
