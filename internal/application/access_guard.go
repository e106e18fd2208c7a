package application

import (
	"context"

	"github.com/google/uuid"

	bookingDomain "github.com/shareit-platform/service-booking/internal/domain/booking"
	"github.com/shareit-platform/service-booking/internal/domain/item"
	"github.com/shareit-platform/service-booking/internal/domain/request"
	"github.com/shareit-platform/service-booking/internal/domain/user"
	"github.com/shareit-platform/service-booking/internal/platform/domain"
)

// AccessGuard resolves the entities a use case needs and decides whether the
// acting user may see or change them. Every refusal is a NotFoundError so a
// caller cannot discover bookings they have no part in.
type AccessGuard struct {
	users    user.UserRepository
	items    item.ItemRepository
	bookings bookingDomain.BookingRepository
	requests request.ItemRequestRepository
}

// NewAccessGuard creates an AccessGuard.
func NewAccessGuard(
	users user.UserRepository,
	items item.ItemRepository,
	bookings bookingDomain.BookingRepository,
	requests request.ItemRequestRepository,
) *AccessGuard {
	return &AccessGuard{users: users, items: items, bookings: bookings, requests: requests}
}

func (g *AccessGuard) RequireUser(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return g.users.FindByID(ctx, id)
}

func (g *AccessGuard) RequireItem(ctx context.Context, id uuid.UUID) (*item.Item, error) {
	return g.items.FindByID(ctx, id)
}

func (g *AccessGuard) RequireBooking(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	return g.bookings.FindByID(ctx, id)
}

func (g *AccessGuard) RequireItemRequest(ctx context.Context, id uuid.UUID) (*request.ItemRequest, error) {
	return g.requests.FindByID(ctx, id)
}

// RequireItemOwner fails unless userID owns the booked item.
func (g *AccessGuard) RequireItemOwner(bk *bookingDomain.Booking, userID uuid.UUID) error {
	if !bk.IsOwnedBy(userID) {
		return domain.NewNotFoundError("Booking", bk.ID().String())
	}
	return nil
}

// RequireParticipant fails unless userID is the booker or the item owner.
func (g *AccessGuard) RequireParticipant(bk *bookingDomain.Booking, userID uuid.UUID) error {
	if !bk.IsParticipant(userID) {
		return domain.NewNotFoundError("Booking", bk.ID().String())
	}
	return nil
}

// RequireNotOwner fails when a user tries to book their own item.
func (g *AccessGuard) RequireNotOwner(it *item.Item, userID uuid.UUID) error {
	if it.IsOwnedBy(userID) {
		return domain.NewNotFoundError("Item", it.ID().String())
	}
	return nil
}
