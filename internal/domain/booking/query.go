package booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shareit-platform/service-booking/internal/platform/domain"
)

// State selects a subset of a user's bookings relative to a reference instant.
type State string

const (
	StateAll      State = "ALL"
	StateCurrent  State = "CURRENT"
	StatePast     State = "PAST"
	StateFuture   State = "FUTURE"
	StateWaiting  State = "WAITING"
	StateRejected State = "REJECTED"
)

var knownStates = map[State]struct{}{
	StateAll:      {},
	StateCurrent:  {},
	StatePast:     {},
	StateFuture:   {},
	StateWaiting:  {},
	StateRejected: {},
}

// ParseState matches token case-insensitively and exactly. Unknown tokens are a
// validation error that echoes the token back.
func ParseState(token string) (State, error) {
	s := State(strings.ToUpper(token))
	if _, ok := knownStates[s]; !ok {
		return "", domain.NewValidationError(fmt.Sprintf("Unknown state: %s", token))
	}
	return s, nil
}

// Matches evaluates the state predicate for one booking. CURRENT, PAST and
// FUTURE look only at the window; WAITING and REJECTED only at the status.
// A booking ending exactly at now is neither CURRENT nor PAST.
func (s State) Matches(b *Booking, now time.Time) bool {
	switch s {
	case StateAll:
		return true
	case StateCurrent:
		return !b.Start().After(now) && b.End().After(now)
	case StatePast:
		return b.End().Before(now)
	case StateFuture:
		return b.Start().After(now)
	case StateWaiting:
		return b.status == StatusWaiting
	case StateRejected:
		return b.status == StatusRejected
	default:
		return false
	}
}

// Role scopes a listing to one side of the booking.
type Role string

const (
	RoleBooker Role = "BOOKER"
	RoleOwner  Role = "OWNER"
)

// Includes reports whether actorID is on the role's side of b.
func (r Role) Includes(b *Booking, actorID uuid.UUID) bool {
	switch r {
	case RoleBooker:
		return b.bookerID == actorID
	case RoleOwner:
		return b.itemOwnerID == actorID
	default:
		return false
	}
}

// ListQuery is a role-scoped, state-filtered page request. Results are
// ordered by start descending, then id descending.
type ListQuery struct {
	ActorID uuid.UUID
	Role    Role
	State   State
	Now     time.Time
	Page    domain.PageRequest
}

// Accepts combines the role scope and state predicate.
func (q ListQuery) Accepts(b *Booking) bool {
	return q.Role.Includes(b, q.ActorID) && q.State.Matches(b, q.Now)
}
