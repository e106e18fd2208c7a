package application

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shareit-platform/service-booking/internal/config"
	bookingDomain "github.com/shareit-platform/service-booking/internal/domain/booking"
	"github.com/shareit-platform/service-booking/internal/domain/item"
	"github.com/shareit-platform/service-booking/internal/platform/domain"
	"github.com/shareit-platform/service-booking/internal/platform/kafka"
	"github.com/shareit-platform/service-booking/internal/proto/events"
)

const eventSource = "service-booking"

// CreateBookingRequest holds the data needed to request a booking. Start and
// end accept RFC3339 or a zone-less local date-time, which is read as UTC.
type CreateBookingRequest struct {
	Start  *time.Time `json:"start"`
	End    *time.Time `json:"end"`
	ItemID uuid.UUID  `json:"itemId" binding:"required"`
}

var bookingTimeLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04"}

func (r *CreateBookingRequest) UnmarshalJSON(data []byte) error {
	var raw struct {
		Start  *string   `json:"start"`
		End    *string   `json:"end"`
		ItemID uuid.UUID `json:"itemId"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	start, err := parseBookingTime("start", raw.Start)
	if err != nil {
		return err
	}
	end, err := parseBookingTime("end", raw.End)
	if err != nil {
		return err
	}
	r.Start, r.End, r.ItemID = start, end, raw.ItemID
	return nil
}

func parseBookingTime(field string, raw *string) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	for _, layout := range bookingTimeLayouts {
		if t, err := time.Parse(layout, *raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%s: %q is not a date-time", field, *raw)
}

// ItemRefDTO is the item summary embedded in a booking.
type ItemRefDTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// UserRefDTO is the user reference embedded in a booking.
type UserRefDTO struct {
	ID uuid.UUID `json:"id"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID     uuid.UUID  `json:"id"`
	Start  time.Time  `json:"start"`
	End    time.Time  `json:"end"`
	Item   ItemRefDTO `json:"item"`
	Booker UserRefDTO `json:"booker"`
	Status string     `json:"status"`
}

// TransitionRecorder counts status transitions.
type TransitionRecorder interface {
	RecordBookingTransition(status string)
}

// BookingService is the application service orchestrating booking use cases.
type BookingService struct {
	repo      bookingDomain.BookingRepository
	items     item.ItemRepository
	guard     *AccessGuard
	publisher kafka.Publisher
	recorder  TransitionRecorder
	policy    config.BookingPolicy
	logger    *zap.Logger
	now       func() time.Time
}

// NewBookingService creates a new BookingService. recorder may be nil.
func NewBookingService(
	repo bookingDomain.BookingRepository,
	items item.ItemRepository,
	guard *AccessGuard,
	publisher kafka.Publisher,
	recorder TransitionRecorder,
	policy config.BookingPolicy,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		repo:      repo,
		items:     items,
		guard:     guard,
		publisher: publisher,
		recorder:  recorder,
		policy:    policy,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateBooking requests a booking of an item for a time window.
func (s *BookingService) CreateBooking(ctx context.Context, bookerID uuid.UUID, req CreateBookingRequest) (*BookingDTO, error) {
	period, err := bookingDomain.NewPeriod(req.Start, req.End)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if s.policy.RejectPastStart {
		if err := period.RequireNotPast(now); err != nil {
			return nil, err
		}
	}

	it, err := s.guard.RequireItem(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}
	if !it.Available() {
		return nil, domain.NewValidationError(fmt.Sprintf("item %s is not available for booking", it.ID()))
	}
	if err := s.guard.RequireNotOwner(it, bookerID); err != nil {
		return nil, err
	}
	if _, err := s.guard.RequireUser(ctx, bookerID); err != nil {
		return nil, err
	}

	bk, err := bookingDomain.NewBooking(it.ID(), it.OwnerID(), bookerID, period, now)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, bk); err != nil {
		return nil, fmt.Errorf("failed to save booking: %w", err)
	}

	s.logger.Info("booking created",
		zap.String("booking_id", bk.ID().String()),
		zap.String("item_id", it.ID().String()),
		zap.String("booker_id", bookerID.String()),
	)
	s.record(bk.Status())

	evt := events.BookingCreatedEvent{
		BookingID:   bk.ID(),
		ItemID:      bk.ItemID(),
		ItemOwnerID: bk.ItemOwnerID(),
		BookerID:    bk.BookerID(),
		Start:       bk.Start(),
		End:         bk.End(),
		OccurredAt:  now,
	}
	s.publishEvent(ctx, events.TopicBookingEvents, events.BookingCreated, bk.ID().String(), evt)

	result := toBookingDTO(bk, it.Name())
	return &result, nil
}

// ApproveBooking lets the item owner approve or reject a waiting booking.
func (s *BookingService) ApproveBooking(ctx context.Context, actorID, bookingID uuid.UUID, approved bool) (*BookingDTO, error) {
	bk, err := s.guard.RequireBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.RequireItemOwner(bk, actorID); err != nil {
		return nil, err
	}

	now := s.now()
	from := bk.Status()
	if err := bk.Decide(approved, now); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.repo.UpdateStatus(ctx, bk, from); err != nil {
		if domain.IsConflict(err) {
			return nil, domain.NewValidationError("booking has already been decided")
		}
		return nil, err
	}

	s.logger.Info("booking decided",
		zap.String("booking_id", bk.ID().String()),
		zap.String("status", bk.Status().String()),
		zap.String("decided_by", actorID.String()),
	)
	s.record(bk.Status())

	eventType := events.BookingRejected
	if bk.Status() == bookingDomain.StatusApproved {
		eventType = events.BookingApproved
	}
	evt := events.BookingDecidedEvent{
		BookingID:  bk.ID(),
		ItemID:     bk.ItemID(),
		BookerID:   bk.BookerID(),
		DecidedBy:  actorID,
		Status:     bk.Status().String(),
		OccurredAt: now,
	}
	s.publishEvent(ctx, events.TopicBookingEvents, eventType, bk.ID().String(), evt)

	return s.withItemName(ctx, bk)
}

// GetBooking returns a booking to its booker or to the item owner.
func (s *BookingService) GetBooking(ctx context.Context, viewerID, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.guard.RequireBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if _, err := s.guard.RequireUser(ctx, viewerID); err != nil {
		return nil, err
	}
	if err := s.guard.RequireParticipant(bk, viewerID); err != nil {
		return nil, err
	}
	return s.withItemName(ctx, bk)
}

// ListBookings returns one page of the actor's bookings, as booker or as
// item owner, filtered by a state token and ordered by start descending.
func (s *BookingService) ListBookings(ctx context.Context, actorID uuid.UUID, role bookingDomain.Role, state string, from, size int) ([]BookingDTO, error) {
	if _, err := s.guard.RequireUser(ctx, actorID); err != nil {
		return nil, err
	}
	st, err := bookingDomain.ParseState(state)
	if err != nil {
		return nil, err
	}
	page, err := domain.NewPageRequest(from, size)
	if err != nil {
		return nil, err
	}

	bookings, err := s.repo.List(ctx, bookingDomain.ListQuery{
		ActorID: actorID,
		Role:    role,
		State:   st,
		Now:     s.now(),
		Page:    page,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return s.toBookingDTOs(ctx, bookings)
}

// --- Admin methods ---

// BookingStatsDTO holds booking statistics for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"totalBookings"`
	ByStatus      map[string]int64 `json:"byStatus"`
}

// ListAllBookings returns a paginated list of all bookings (admin).
func (s *BookingService) ListAllBookings(ctx context.Context, page, limit int) ([]BookingDTO, int64, error) {
	bookings, total, err := s.repo.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	dtos, err := s.toBookingDTOs(ctx, bookings)
	if err != nil {
		return nil, 0, err
	}
	return dtos, total, nil
}

// GetBookingStats returns aggregate booking statistics (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}

	return &BookingStatsDTO{
		TotalBookings: total,
		ByStatus:      counts,
	}, nil
}

// --- Helpers ---

func toBookingDTO(bk *bookingDomain.Booking, itemName string) BookingDTO {
	return BookingDTO{
		ID:     bk.ID(),
		Start:  bk.Start(),
		End:    bk.End(),
		Item:   ItemRefDTO{ID: bk.ItemID(), Name: itemName},
		Booker: UserRefDTO{ID: bk.BookerID()},
		Status: bk.Status().String(),
	}
}

func (s *BookingService) withItemName(ctx context.Context, bk *bookingDomain.Booking) (*BookingDTO, error) {
	it, err := s.items.FindByID(ctx, bk.ItemID())
	if err != nil {
		return nil, err
	}
	result := toBookingDTO(bk, it.Name())
	return &result, nil
}

// toBookingDTOs resolves item names with a single lookup for the whole page.
func (s *BookingService) toBookingDTOs(ctx context.Context, bookings []*bookingDomain.Booking) ([]BookingDTO, error) {
	dtos := make([]BookingDTO, 0, len(bookings))
	if len(bookings) == 0 {
		return dtos, nil
	}

	seen := make(map[uuid.UUID]struct{}, len(bookings))
	ids := make([]uuid.UUID, 0, len(bookings))
	for _, bk := range bookings {
		if _, ok := seen[bk.ItemID()]; !ok {
			seen[bk.ItemID()] = struct{}{}
			ids = append(ids, bk.ItemID())
		}
	}

	found, err := s.items.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load booked items: %w", err)
	}
	names := make(map[uuid.UUID]string, len(found))
	for _, it := range found {
		names[it.ID()] = it.Name()
	}

	for _, bk := range bookings {
		dtos = append(dtos, toBookingDTO(bk, names[bk.ItemID()]))
	}
	return dtos, nil
}

func (s *BookingService) record(status bookingDomain.BookingStatus) {
	if s.recorder != nil {
		s.recorder.RecordBookingTransition(status.String())
	}
}

func (s *BookingService) publishEvent(ctx context.Context, topic, eventType, key string, data interface{}) {
	publishEvent(ctx, s.publisher, s.logger, topic, eventType, key, data)
}

func publishEvent(ctx context.Context, publisher kafka.Publisher, logger *zap.Logger, topic, eventType, key string, data interface{}) {
	cloudEvent, err := kafka.NewCloudEvent(eventSource, eventType, key, data)
	if err != nil {
		logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := publisher.PublishEvent(ctx, topic, cloudEvent); err != nil {
		logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
