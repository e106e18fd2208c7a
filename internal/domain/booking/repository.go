package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// BookingRepository defines the persistence contract for booking aggregates.
type BookingRepository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// List returns one page of the role-scoped, state-filtered bookings
	// ordered by start descending.
	List(ctx context.Context, q ListQuery) ([]*Booking, error)

	// FindApprovedByItemIDs returns every APPROVED booking of the given items.
	FindApprovedByItemIDs(ctx context.Context, itemIDs []uuid.UUID) ([]*Booking, error)

	// HasCompletedBooking reports whether bookerID holds an APPROVED booking
	// of itemID that ended before now.
	HasCompletedBooking(ctx context.Context, bookerID, itemID uuid.UUID, now time.Time) (bool, error)

	// ListAll retrieves all bookings with page/limit pagination (admin).
	ListAll(ctx context.Context, page, limit int) ([]*Booking, int64, error)

	// CountByStatus returns booking counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// Save persists a new booking.
	Save(ctx context.Context, booking *Booking) error

	// UpdateStatus persists a status change only if the stored row still has
	// status from and the previous version. A lost race is a ConflictError.
	UpdateStatus(ctx context.Context, booking *Booking, from BookingStatus) error
}
