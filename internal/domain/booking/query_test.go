package booking

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shareit-platform/service-booking/internal/platform/domain"
)

func TestParseState(t *testing.T) {
	for _, token := range []string{"ALL", "current", "Past", "future", "WAITING", "rejected"} {
		_, err := ParseState(token)
		assert.NoError(t, err, token)
	}

	_, err := ParseState("UNSUPPORTED_STATUS")
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
	assert.Contains(t, err.Error(), "UNSUPPORTED_STATUS")

	for _, token := range []string{" ALL", "ALL ", "", "ALL\n"} {
		_, err := ParseState(token)
		assert.True(t, domain.IsValidation(err), "%q", token)
	}
}

func TestState_Matches(t *testing.T) {
	past := mustBooking(t, at(-5), at(-4))
	current := mustBooking(t, at(-1), at(1))
	future := mustBooking(t, at(1), at(2))
	endsNow := mustBooking(t, at(-1), refNow)
	startsNow := mustBooking(t, refNow, at(1))

	cases := []struct {
		state State
		b     *Booking
		want  bool
	}{
		{StatePast, past, true},
		{StateCurrent, past, false},
		{StateCurrent, current, true},
		{StateFuture, future, true},
		{StateFuture, startsNow, false},
		{StateCurrent, startsNow, true},
		{StateCurrent, endsNow, false},
		{StatePast, endsNow, false},
		{StateAll, endsNow, true},
		{StateWaiting, future, true},
		{StateRejected, future, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.state.Matches(tc.b, refNow), "%s start=%s end=%s", tc.state, tc.b.Start(), tc.b.End())
	}
}

func TestState_TimePartition(t *testing.T) {
	// Every booking not ending exactly at now falls in exactly one of PAST, CURRENT, FUTURE.
	for _, w := range [][2]int{{-10, -9}, {-3, 2}, {0, 1}, {4, 8}, {-2, -1}} {
		b := mustBooking(t, at(w[0]), at(w[1]))
		n := 0
		for _, s := range []State{StatePast, StateCurrent, StateFuture} {
			if s.Matches(b, refNow) {
				n++
			}
		}
		assert.Equal(t, 1, n, "window %v", w)
	}
}

func TestState_StatusFilters(t *testing.T) {
	b := mustBooking(t, at(1), at(2))
	require.NoError(t, b.Decide(false, refNow))

	assert.True(t, StateRejected.Matches(b, refNow))
	assert.False(t, StateWaiting.Matches(b, refNow))
}

func TestListQuery_Accepts(t *testing.T) {
	itemID, owner, booker := uuid.New(), uuid.New(), uuid.New()
	b, err := NewBooking(itemID, owner, booker, Period{Start: at(1), End: at(2)}, refNow)
	require.NoError(t, err)

	page, err := domain.NewPageRequest(0, 10)
	require.NoError(t, err)

	q := ListQuery{ActorID: booker, Role: RoleBooker, State: StateFuture, Now: refNow, Page: page}
	assert.True(t, q.Accepts(b))

	q.Role = RoleOwner
	assert.False(t, q.Accepts(b))

	q.ActorID = owner
	assert.True(t, q.Accepts(b))

	q.State = StatePast
	assert.False(t, q.Accepts(b))
}
