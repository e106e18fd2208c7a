package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	bookingDomain "github.com/shareit-platform/service-booking/internal/domain/booking"
	"github.com/shareit-platform/service-booking/internal/platform/domain"
)

// MemoryBookingRepository is an in-process BookingRepository with the same
// filtering, ordering and compare-and-set semantics as the GORM one.
type MemoryBookingRepository struct {
	mu       sync.RWMutex
	bookings map[uuid.UUID]*bookingDomain.Booking
}

// NewMemoryBookingRepository creates an empty store.
func NewMemoryBookingRepository() *MemoryBookingRepository {
	return &MemoryBookingRepository{bookings: make(map[uuid.UUID]*bookingDomain.Booking)}
}

func (r *MemoryBookingRepository) FindByID(_ context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bk, ok := r.bookings[id]
	if !ok {
		return nil, domain.NewNotFoundError("Booking", id.String())
	}
	return cloneBooking(bk), nil
}

func (r *MemoryBookingRepository) List(_ context.Context, q bookingDomain.ListQuery) ([]*bookingDomain.Booking, error) {
	r.mu.RLock()
	matched := make([]*bookingDomain.Booking, 0)
	for _, bk := range r.bookings {
		if q.Accepts(bk) {
			matched = append(matched, cloneBooking(bk))
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.Start().Equal(b.Start()) {
			return a.Start().After(b.Start())
		}
		return a.ID().String() > b.ID().String()
	})

	return window(matched, q.Page.Offset(), q.Page.Limit()), nil
}

func (r *MemoryBookingRepository) FindApprovedByItemIDs(_ context.Context, itemIDs []uuid.UUID) ([]*bookingDomain.Booking, error) {
	wanted := make(map[uuid.UUID]struct{}, len(itemIDs))
	for _, id := range itemIDs {
		wanted[id] = struct{}{}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*bookingDomain.Booking
	for _, bk := range r.bookings {
		if _, ok := wanted[bk.ItemID()]; ok && bk.Status() == bookingDomain.StatusApproved {
			out = append(out, cloneBooking(bk))
		}
	}
	return out, nil
}

func (r *MemoryBookingRepository) HasCompletedBooking(_ context.Context, bookerID, itemID uuid.UUID, now time.Time) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, bk := range r.bookings {
		if bk.BookerID() == bookerID && bk.ItemID() == itemID &&
			bk.Status() == bookingDomain.StatusApproved && bk.End().Before(now) {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryBookingRepository) ListAll(_ context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	r.mu.RLock()
	all := make([]*bookingDomain.Booking, 0, len(r.bookings))
	for _, bk := range r.bookings {
		all = append(all, cloneBooking(bk))
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt().After(all[j].CreatedAt()) })
	return window(all, (page-1)*limit, limit), int64(len(all)), nil
}

func (r *MemoryBookingRepository) CountByStatus(_ context.Context) (map[string]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[string]int64)
	for _, bk := range r.bookings {
		counts[bk.Status().String()]++
	}
	return counts, nil
}

func (r *MemoryBookingRepository) Save(_ context.Context, bk *bookingDomain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.bookings[bk.ID()]; exists {
		return domain.NewConflictError("booking already exists")
	}
	r.bookings[bk.ID()] = cloneBooking(bk)
	return nil
}

func (r *MemoryBookingRepository) UpdateStatus(_ context.Context, bk *bookingDomain.Booking, from bookingDomain.BookingStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.bookings[bk.ID()]
	if !ok {
		return domain.NewNotFoundError("Booking", bk.ID().String())
	}
	if stored.Status() != from || stored.Version() != bk.Version()-1 {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	r.bookings[bk.ID()] = cloneBooking(bk)
	return nil
}

func cloneBooking(b *bookingDomain.Booking) *bookingDomain.Booking {
	return bookingDomain.ReconstructBooking(
		b.ID(), b.ItemID(), b.ItemOwnerID(), b.BookerID(),
		b.Start(), b.End(),
		b.Status(), b.Version(),
		b.CreatedAt(), b.UpdatedAt(),
	)
}

func window[T any](all []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(all) {
		return []T{}
	}
	end := offset + limit
	if limit < 0 || end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}
