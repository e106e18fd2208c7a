package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	bookingDomain "github.com/shareit-platform/service-booking/internal/domain/booking"
	"github.com/shareit-platform/service-booking/internal/platform/domain"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	ItemID      uuid.UUID `gorm:"type:uuid;not null;index:idx_bookings_item_status,priority:1"`
	ItemOwnerID uuid.UUID `gorm:"type:uuid;not null;index:idx_bookings_owner_start,priority:1"`
	BookerID    uuid.UUID `gorm:"type:uuid;not null;index:idx_bookings_booker_start,priority:1"`
	StartAt     time.Time `gorm:"not null;index:idx_bookings_owner_start,priority:2,sort:desc;index:idx_bookings_booker_start,priority:2,sort:desc"`
	EndAt       time.Time `gorm:"not null"`
	Status      string    `gorm:"not null;size:20;index:idx_bookings_item_status,priority:2"`
	Version     int64     `gorm:"not null;default:1"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// List returns one page of role-scoped, state-filtered bookings.
func (r *GormBookingRepository) List(ctx context.Context, q bookingDomain.ListQuery) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Scopes(roleScope(q.Role, q.ActorID), stateScope(q.State, q.Now)).
		Order("start_at DESC").
		Order("id DESC").
		Offset(q.Page.Offset()).
		Limit(q.Page.Limit()).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list %s bookings: %w", q.Role, err)
	}
	return toDomainBookings(models)
}

// FindApprovedByItemIDs returns every APPROVED booking of the given items.
func (r *GormBookingRepository) FindApprovedByItemIDs(ctx context.Context, itemIDs []uuid.UUID) ([]*bookingDomain.Booking, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Where("item_id IN ? AND status = ?", itemIDs, string(bookingDomain.StatusApproved)).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find approved bookings: %w", err)
	}
	return toDomainBookings(models)
}

// HasCompletedBooking reports whether the booker finished an approved booking of the item.
func (r *GormBookingRepository) HasCompletedBooking(ctx context.Context, bookerID, itemID uuid.UUID, now time.Time) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Where("booker_id = ? AND item_id = ? AND status = ? AND end_at < ?",
			bookerID, itemID, string(bookingDomain.StatusApproved), now).
		Limit(1).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check completed bookings: %w", err)
	}
	return count > 0, nil
}

// Save persists a new booking.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	if err := r.db.WithContext(ctx).Create(toBookingModel(bk)).Error; err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// UpdateStatus is a compare-and-set on (status, version). Exactly one of
// several concurrent deciders can succeed.
func (r *GormBookingRepository) UpdateStatus(ctx context.Context, bk *bookingDomain.Booking, from bookingDomain.BookingStatus) error {
	expectedVersion := bk.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND status = ? AND version = ?", bk.ID(), string(from), expectedVersion).
		Updates(map[string]interface{}{
			"status":     string(bk.Status()),
			"version":    bk.Version(),
			"updated_at": bk.UpdatedAt(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update booking status: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another transaction")
	}

	return nil
}

// ListAll retrieves all bookings with pagination (admin).
func (r *GormBookingRepository) ListAll(ctx context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	bookings, err := toDomainBookings(models)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// CountByStatus returns booking counts grouped by status (admin).
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// --- Query scopes ---

func roleScope(role bookingDomain.Role, actorID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch role {
		case bookingDomain.RoleOwner:
			return db.Where("item_owner_id = ?", actorID)
		case bookingDomain.RoleBooker:
			return db.Where("booker_id = ?", actorID)
		default:
			// Unknown roles match nothing rather than everything.
			return db.Where("1 = 0")
		}
	}
}

// stateScope mirrors bookingDomain.State.Matches in SQL.
func stateScope(state bookingDomain.State, now time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch state {
		case bookingDomain.StateCurrent:
			return db.Where("start_at <= ? AND end_at > ?", now, now)
		case bookingDomain.StatePast:
			return db.Where("end_at < ?", now)
		case bookingDomain.StateFuture:
			return db.Where("start_at > ?", now)
		case bookingDomain.StateWaiting:
			return db.Where("status = ?", string(bookingDomain.StatusWaiting))
		case bookingDomain.StateRejected:
			return db.Where("status = ?", string(bookingDomain.StatusRejected))
		default:
			return db
		}
	}
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
		ID:          bk.ID(),
		ItemID:      bk.ItemID(),
		ItemOwnerID: bk.ItemOwnerID(),
		BookerID:    bk.BookerID(),
		StartAt:     bk.Start(),
		EndAt:       bk.End(),
		Status:      string(bk.Status()),
		Version:     bk.Version(),
		CreatedAt:   bk.CreatedAt(),
		UpdatedAt:   bk.UpdatedAt(),
	}
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	status, err := bookingDomain.ParseBookingStatus(m.Status)
	if err != nil {
		return nil, err
	}

	return bookingDomain.ReconstructBooking(
		m.ID,
		m.ItemID,
		m.ItemOwnerID,
		m.BookerID,
		m.StartAt.UTC(),
		m.EndAt.UTC(),
		status,
		m.Version,
		m.CreatedAt.UTC(),
		m.UpdatedAt.UTC(),
	), nil
}

func toDomainBookings(models []BookingModel) ([]*bookingDomain.Booking, error) {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i := range models {
		bk, err := toDomainBooking(&models[i])
		if err != nil {
			return nil, err
		}
		bookings[i] = bk
	}
	return bookings, nil
}
