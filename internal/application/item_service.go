package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingDomain "github.com/shareit-platform/service-booking/internal/domain/booking"
	"github.com/shareit-platform/service-booking/internal/domain/item"
	"github.com/shareit-platform/service-booking/internal/platform/domain"
	"github.com/shareit-platform/service-booking/internal/platform/kafka"
	"github.com/shareit-platform/service-booking/internal/proto/events"
)

// CreateItemRequest holds the data needed to list a new item.
type CreateItemRequest struct {
	Name        string     `json:"name" binding:"required"`
	Description string     `json:"description" binding:"required"`
	Available   *bool      `json:"available" binding:"required"`
	RequestID   *uuid.UUID `json:"requestId"`
}

// UpdateItemRequest holds a partial item update.
type UpdateItemRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Available   *bool   `json:"available"`
}

// AddCommentRequest holds a comment body.
type AddCommentRequest struct {
	Text string `json:"text"`
}

// BookingShortDTO is the compact booking shown as an item's last or next booking.
type BookingShortDTO struct {
	ID       uuid.UUID `json:"id"`
	BookerID uuid.UUID `json:"bookerId"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
}

// CommentDTO is the response representation of a comment.
type CommentDTO struct {
	ID         uuid.UUID `json:"id"`
	Text       string    `json:"text"`
	AuthorName string    `json:"authorName"`
	Created    time.Time `json:"created"`
}

// ItemDTO is the response representation of an item.
type ItemDTO struct {
	ID          uuid.UUID        `json:"id"`
	OwnerID     uuid.UUID        `json:"ownerId"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Available   bool             `json:"available"`
	RequestID   *uuid.UUID       `json:"requestId,omitempty"`
	LastBooking *BookingShortDTO `json:"lastBooking"`
	NextBooking *BookingShortDTO `json:"nextBooking"`
	Comments    []CommentDTO     `json:"comments"`
}

// ItemService serves the item catalog and its comments.
type ItemService struct {
	items     item.ItemRepository
	comments  item.CommentRepository
	bookings  bookingDomain.BookingRepository
	guard     *AccessGuard
	publisher kafka.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewItemService creates a new ItemService.
func NewItemService(
	items item.ItemRepository,
	comments item.CommentRepository,
	bookings bookingDomain.BookingRepository,
	guard *AccessGuard,
	publisher kafka.Publisher,
	logger *zap.Logger,
) *ItemService {
	return &ItemService{
		items:     items,
		comments:  comments,
		bookings:  bookings,
		guard:     guard,
		publisher: publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateItem lists a new item for its owner.
func (s *ItemService) CreateItem(ctx context.Context, ownerID uuid.UUID, req CreateItemRequest) (*ItemDTO, error) {
	if _, err := s.guard.RequireUser(ctx, ownerID); err != nil {
		return nil, err
	}
	if req.Available == nil {
		return nil, domain.NewValidationError("item availability is required")
	}

	it, err := item.NewItem(uuid.Nil, ownerID, req.Name, req.Description, *req.Available)
	if err != nil {
		return nil, err
	}
	if req.RequestID != nil {
		answered, err := s.guard.RequireItemRequest(ctx, *req.RequestID)
		if err != nil {
			return nil, err
		}
		it.LinkRequest(answered.ID())
	}
	if err := s.items.Save(ctx, it); err != nil {
		return nil, fmt.Errorf("failed to save item: %w", err)
	}

	s.logger.Info("item created", zap.String("item_id", it.ID().String()), zap.String("owner_id", ownerID.String()))
	s.publishUpserted(ctx, it)

	result := toItemDTO(it, bookingDomain.LastNext{}, nil)
	return &result, nil
}

// UpdateItem applies a partial update. Only the owner may change an item.
func (s *ItemService) UpdateItem(ctx context.Context, actorID, itemID uuid.UUID, req UpdateItemRequest) (*ItemDTO, error) {
	it, err := s.guard.RequireItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !it.IsOwnedBy(actorID) {
		return nil, domain.NewForbiddenError("only the owner can edit an item")
	}

	if err := it.Apply(item.Patch{Name: req.Name, Description: req.Description, Available: req.Available}); err != nil {
		return nil, err
	}
	if err := s.items.Update(ctx, it); err != nil {
		return nil, err
	}

	s.publishUpserted(ctx, it)

	result := toItemDTO(it, bookingDomain.LastNext{}, nil)
	return &result, nil
}

// GetItem returns an item with its comments. The last and next approved
// bookings are shown to the owner only.
func (s *ItemService) GetItem(ctx context.Context, viewerID, itemID uuid.UUID) (*ItemDTO, error) {
	it, err := s.guard.RequireItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	comments, err := s.comments.FindByItemIDs(ctx, []uuid.UUID{it.ID()})
	if err != nil {
		return nil, fmt.Errorf("failed to load comments: %w", err)
	}

	var ln bookingDomain.LastNext
	if it.IsOwnedBy(viewerID) {
		approved, err := s.bookings.FindApprovedByItemIDs(ctx, []uuid.UUID{it.ID()})
		if err != nil {
			return nil, fmt.Errorf("failed to load bookings: %w", err)
		}
		ln = bookingDomain.ProjectLastNext(approved, it.ID(), s.now())
	}

	result := toItemDTO(it, ln, comments)
	return &result, nil
}

// ListOwnerItems returns one page of an owner's items, each with its last and
// next approved booking. Bookings and comments are loaded once for the page.
func (s *ItemService) ListOwnerItems(ctx context.Context, ownerID uuid.UUID, from, size int) ([]ItemDTO, error) {
	page, err := domain.NewPageRequest(from, size)
	if err != nil {
		return nil, err
	}
	if _, err := s.guard.RequireUser(ctx, ownerID); err != nil {
		return nil, err
	}

	items, err := s.items.FindByOwnerID(ctx, ownerID, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	if len(items) == 0 {
		return []ItemDTO{}, nil
	}

	ids := make([]uuid.UUID, len(items))
	for i, it := range items {
		ids[i] = it.ID()
	}

	approved, err := s.bookings.FindApprovedByItemIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings: %w", err)
	}
	projections := bookingDomain.ProjectLastNextBatch(approved, s.now())

	comments, err := s.comments.FindByItemIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load comments: %w", err)
	}
	byItem := make(map[uuid.UUID][]*item.Comment)
	for _, c := range comments {
		byItem[c.ItemID()] = append(byItem[c.ItemID()], c)
	}

	dtos := make([]ItemDTO, len(items))
	for i, it := range items {
		dtos[i] = toItemDTO(it, projections[it.ID()], byItem[it.ID()])
	}
	return dtos, nil
}

// SearchItems finds available items by text. Blank text finds nothing.
func (s *ItemService) SearchItems(ctx context.Context, text string, from, size int) ([]ItemDTO, error) {
	page, err := domain.NewPageRequest(from, size)
	if err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return []ItemDTO{}, nil
	}

	items, err := s.items.Search(ctx, text, page)
	if err != nil {
		return nil, fmt.Errorf("failed to search items: %w", err)
	}

	dtos := make([]ItemDTO, len(items))
	for i, it := range items {
		dtos[i] = toItemDTO(it, bookingDomain.LastNext{}, nil)
	}
	return dtos, nil
}

// AddComment lets a user comment on an item they have finished renting.
func (s *ItemService) AddComment(ctx context.Context, authorID, itemID uuid.UUID, req AddCommentRequest) (*CommentDTO, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, domain.NewValidationError("comment text is required")
	}
	author, err := s.guard.RequireUser(ctx, authorID)
	if err != nil {
		return nil, err
	}
	it, err := s.guard.RequireItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	completed, err := s.bookings.HasCompletedBooking(ctx, authorID, it.ID(), now)
	if err != nil {
		return nil, fmt.Errorf("failed to check bookings: %w", err)
	}
	if !completed {
		return nil, domain.NewValidationError("only users who have finished renting the item can comment on it")
	}

	c, err := item.NewComment(it.ID(), authorID, author.Name(), req.Text, now)
	if err != nil {
		return nil, err
	}
	if err := s.comments.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to save comment: %w", err)
	}

	result := toCommentDTO(c)
	return &result, nil
}

// UpsertFromCatalog applies an item announced on the catalog topic. A known
// item only moves forward: revisions at or below its version are ignored, so
// replays of older events, including this service's own, never undo a newer
// change. Owner and request link are fixed at creation.
func (s *ItemService) UpsertFromCatalog(ctx context.Context, evt events.ItemUpsertedEvent) error {
	rev := item.Revision{Name: evt.Name, Description: evt.Description, Available: evt.Available, Version: evt.Version}

	existing, err := s.items.FindByID(ctx, evt.ItemID)
	if err != nil {
		if !domain.IsNotFound(err) {
			return err
		}
		it, err := item.NewItem(evt.ItemID, evt.OwnerID, evt.Name, evt.Description, evt.Available)
		if err != nil {
			return err
		}
		if evt.RequestID != nil {
			it.LinkRequest(*evt.RequestID)
		}
		if _, err := it.Sync(rev); err != nil {
			return err
		}
		return s.items.Save(ctx, it)
	}

	if existing.OwnerID() != evt.OwnerID {
		s.logger.Warn("ignoring owner change for catalog item",
			zap.String("item_id", evt.ItemID.String()),
			zap.String("owner_id", existing.OwnerID().String()),
			zap.String("announced_owner_id", evt.OwnerID.String()),
		)
	}

	changed, err := existing.Sync(rev)
	if err != nil {
		return err
	}
	if !changed {
		s.logger.Debug("ignoring stale catalog item revision",
			zap.String("item_id", evt.ItemID.String()),
			zap.Int64("version", existing.Version()),
			zap.Int64("announced_version", evt.Version),
		)
		return nil
	}
	if err := s.items.Update(ctx, existing); err != nil {
		if domain.IsConflict(err) {
			// A newer version landed meanwhile.
			return nil
		}
		return err
	}
	return nil
}

// --- Helpers ---

func (s *ItemService) publishUpserted(ctx context.Context, it *item.Item) {
	evt := events.ItemUpsertedEvent{
		ItemID:      it.ID(),
		OwnerID:     it.OwnerID(),
		Name:        it.Name(),
		Description: it.Description(),
		Available:   it.Available(),
		RequestID:   requestIDRef(it.RequestID()),
		Version:     it.Version(),
	}
	publishEvent(ctx, s.publisher, s.logger, events.TopicCatalogEvents, events.ItemUpserted, it.ID().String(), evt)
}

func toItemDTO(it *item.Item, ln bookingDomain.LastNext, comments []*item.Comment) ItemDTO {
	dto := ItemDTO{
		ID:          it.ID(),
		OwnerID:     it.OwnerID(),
		Name:        it.Name(),
		Description: it.Description(),
		Available:   it.Available(),
		RequestID:   requestIDRef(it.RequestID()),
		LastBooking: toBookingShortDTO(ln.Last),
		NextBooking: toBookingShortDTO(ln.Next),
		Comments:    make([]CommentDTO, len(comments)),
	}
	for i, c := range comments {
		dto.Comments[i] = toCommentDTO(c)
	}
	return dto
}

func requestIDRef(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}

func toBookingShortDTO(bk *bookingDomain.Booking) *BookingShortDTO {
	if bk == nil {
		return nil
	}
	return &BookingShortDTO{ID: bk.ID(), BookerID: bk.BookerID(), Start: bk.Start(), End: bk.End()}
}

func toCommentDTO(c *item.Comment) CommentDTO {
	return CommentDTO{ID: c.ID(), Text: c.Text(), AuthorName: c.AuthorName(), Created: c.CreatedAt()}
}
