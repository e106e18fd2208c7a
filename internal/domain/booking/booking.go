package booking

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shareit-platform/service-booking/internal/platform/domain"
)

// Booking is the aggregate root for the booking domain.
type Booking struct {
	id          uuid.UUID
	itemID      uuid.UUID
	itemOwnerID uuid.UUID
	bookerID    uuid.UUID
	period      Period
	status      BookingStatus

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewBooking creates a new Booking aggregate with status=WAITING. itemOwnerID
// is the owner of the item at creation time; item ownership never changes.
func NewBooking(itemID, itemOwnerID, bookerID uuid.UUID, period Period, now time.Time) (*Booking, error) {
	if itemID == uuid.Nil {
		return nil, domain.NewValidationError("item ID is required")
	}
	if bookerID == uuid.Nil {
		return nil, domain.NewValidationError("booker ID is required")
	}
	if !period.Start.Before(period.End) {
		return nil, domain.NewValidationError("start date must be before end date")
	}

	now = now.UTC()
	return &Booking{
		id:          uuid.New(),
		itemID:      itemID,
		itemOwnerID: itemOwnerID,
		bookerID:    bookerID,
		period:      period,
		status:      StatusWaiting,
		version:     1,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id, itemID, itemOwnerID, bookerID uuid.UUID,
	start, end time.Time,
	status BookingStatus,
	version int64,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:          id,
		itemID:      itemID,
		itemOwnerID: itemOwnerID,
		bookerID:    bookerID,
		period:      Period{Start: start, End: end},
		status:      status,
		version:     version,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// ItemID returns the booked item's identifier.
func (b *Booking) ItemID() uuid.UUID { return b.itemID }

// ItemOwnerID returns the user who owns the booked item.
func (b *Booking) ItemOwnerID() uuid.UUID { return b.itemOwnerID }

// BookerID returns the user who requested the booking.
func (b *Booking) BookerID() uuid.UUID { return b.bookerID }

func (b *Booking) Start() time.Time      { return b.period.Start }
func (b *Booking) End() time.Time        { return b.period.End }
func (b *Booking) Period() Period        { return b.period }
func (b *Booking) Status() BookingStatus { return b.status }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

func (b *Booking) CreatedAt() time.Time { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// --- Behavior ---

// IsOwnedBy reports whether userID owns the booked item.
func (b *Booking) IsOwnedBy(userID uuid.UUID) bool {
	return b.itemOwnerID == userID
}

// IsParticipant reports whether userID is the booker or the item owner.
func (b *Booking) IsParticipant(userID uuid.UUID) bool {
	return b.bookerID == userID || b.itemOwnerID == userID
}

// Decide moves a WAITING booking to APPROVED or REJECTED. A booking that
// was already decided cannot be decided again.
func (b *Booking) Decide(approved bool, now time.Time) error {
	if b.status == StatusApproved {
		return domain.NewValidationError("booking has already been approved")
	}

	target := StatusRejected
	if approved {
		target = StatusApproved
	}
	if !b.status.CanTransitionTo(target) {
		return domain.NewValidationError(fmt.Sprintf("booking cannot move from %s to %s", b.status, target))
	}

	b.status = target
	b.updatedAt = now.UTC()
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
}
