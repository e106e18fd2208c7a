package booking

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shareit-platform/service-booking/internal/platform/domain"
)

var refNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func at(hours int) time.Time { return refNow.Add(time.Duration(hours) * time.Hour) }

func ptr(t time.Time) *time.Time { return &t }

func mustBooking(t *testing.T, start, end time.Time) *Booking {
	t.Helper()
	b, err := NewBooking(uuid.New(), uuid.New(), uuid.New(), Period{Start: start, End: end}, refNow)
	require.NoError(t, err)
	return b
}

func TestBookingStatus_Transitions(t *testing.T) {
	assert.True(t, StatusWaiting.CanTransitionTo(StatusApproved))
	assert.True(t, StatusWaiting.CanTransitionTo(StatusRejected))
	assert.False(t, StatusApproved.CanTransitionTo(StatusRejected))
	assert.False(t, StatusRejected.CanTransitionTo(StatusApproved))
	assert.False(t, StatusWaiting.CanTransitionTo(StatusWaiting))

	assert.False(t, StatusWaiting.IsTerminal())
	assert.True(t, StatusApproved.IsTerminal())
	assert.True(t, StatusRejected.IsTerminal())
}

func TestParseBookingStatus(t *testing.T) {
	s, err := ParseBookingStatus("APPROVED")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, s)

	_, err = ParseBookingStatus("CANCELED")
	assert.Error(t, err)
}

func TestNewPeriod(t *testing.T) {
	t.Run("missing bound", func(t *testing.T) {
		_, err := NewPeriod(nil, ptr(at(1)))
		assert.True(t, domain.IsValidation(err))
		_, err = NewPeriod(ptr(at(1)), nil)
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("equal bounds", func(t *testing.T) {
		_, err := NewPeriod(ptr(at(1)), ptr(at(1)))
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("inverted bounds", func(t *testing.T) {
		_, err := NewPeriod(ptr(at(2)), ptr(at(1)))
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("valid", func(t *testing.T) {
		p, err := NewPeriod(ptr(at(1)), ptr(at(2)))
		require.NoError(t, err)
		assert.Equal(t, at(1), p.Start)
	})
}

func TestPeriod_RequireNotPast(t *testing.T) {
	assert.NoError(t, Period{Start: refNow, End: at(1)}.RequireNotPast(refNow))
	assert.True(t, domain.IsValidation(Period{Start: at(-1), End: at(1)}.RequireNotPast(refNow)))
}

func TestNewBooking_StartsWaiting(t *testing.T) {
	b := mustBooking(t, at(1), at(2))

	assert.Equal(t, StatusWaiting, b.Status())
	assert.Equal(t, int64(1), b.Version())
	assert.NotEqual(t, uuid.Nil, b.ID())
}

func TestBooking_Decide(t *testing.T) {
	t.Run("approve", func(t *testing.T) {
		b := mustBooking(t, at(1), at(2))
		require.NoError(t, b.Decide(true, refNow))
		assert.Equal(t, StatusApproved, b.Status())
	})

	t.Run("reject", func(t *testing.T) {
		b := mustBooking(t, at(1), at(2))
		require.NoError(t, b.Decide(false, refNow))
		assert.Equal(t, StatusRejected, b.Status())
	})

	t.Run("approved cannot be decided again", func(t *testing.T) {
		for _, approved := range []bool{true, false} {
			b := mustBooking(t, at(1), at(2))
			require.NoError(t, b.Decide(true, refNow))

			err := b.Decide(approved, refNow)
			assert.True(t, domain.IsValidation(err))
			assert.Equal(t, StatusApproved, b.Status())
		}
	})

	t.Run("rejected is terminal", func(t *testing.T) {
		b := mustBooking(t, at(1), at(2))
		require.NoError(t, b.Decide(false, refNow))

		err := b.Decide(true, refNow)
		assert.True(t, domain.IsValidation(err))
		assert.Equal(t, StatusRejected, b.Status())
	})
}

func TestBooking_Participants(t *testing.T) {
	itemID, owner, booker := uuid.New(), uuid.New(), uuid.New()
	b, err := NewBooking(itemID, owner, booker, Period{Start: at(1), End: at(2)}, refNow)
	require.NoError(t, err)

	assert.True(t, b.IsOwnedBy(owner))
	assert.False(t, b.IsOwnedBy(booker))
	assert.True(t, b.IsParticipant(owner))
	assert.True(t, b.IsParticipant(booker))
	assert.False(t, b.IsParticipant(uuid.New()))
}
