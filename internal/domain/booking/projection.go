package booking

import (
	"time"

	"github.com/google/uuid"
)

// LastNext is the derived view of an item's bookings around now.
type LastNext struct {
	Last *Booking
	Next *Booking
}

// isLastCandidate and isNextCandidate are the only definitions of the
// last/next predicates; both projection paths go through offer.
func isLastCandidate(b *Booking, now time.Time) bool {
	return b.status == StatusApproved && !b.Start().After(now)
}

func isNextCandidate(b *Booking, now time.Time) bool {
	return b.status == StatusApproved && b.Start().After(now)
}

func (ln *LastNext) offer(b *Booking, now time.Time) {
	switch {
	case isLastCandidate(b, now):
		if ln.Last == nil || laterStart(b, ln.Last) {
			ln.Last = b
		}
	case isNextCandidate(b, now):
		if ln.Next == nil || laterStart(ln.Next, b) {
			ln.Next = b
		}
	}
}

// laterStart orders by start, breaking ties by id so the result does not
// depend on input order.
func laterStart(a, b *Booking) bool {
	if !a.Start().Equal(b.Start()) {
		return a.Start().After(b.Start())
	}
	return a.id.String() > b.id.String()
}

// ProjectLastNext computes last/next for a single item.
func ProjectLastNext(bookings []*Booking, itemID uuid.UUID, now time.Time) LastNext {
	var ln LastNext
	for _, b := range bookings {
		if b.itemID == itemID {
			ln.offer(b, now)
		}
	}
	return ln
}

// ProjectLastNextBatch groups bookings by item once and computes last/next
// per item. Items with no approved bookings are absent from the map.
func ProjectLastNextBatch(bookings []*Booking, now time.Time) map[uuid.UUID]LastNext {
	out := make(map[uuid.UUID]LastNext)
	for _, b := range bookings {
		if b.status != StatusApproved {
			continue
		}
		ln := out[b.itemID]
		ln.offer(b, now)
		out[b.itemID] = ln
	}
	return out
}
