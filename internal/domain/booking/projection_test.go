package booking

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func approvedFor(t *testing.T, itemID uuid.UUID, start, end time.Time) *Booking {
	t.Helper()
	b, err := NewBooking(itemID, uuid.New(), uuid.New(), Period{Start: start, End: end}, refNow)
	require.NoError(t, err)
	require.NoError(t, b.Decide(true, refNow))
	return b
}

func TestProjectLastNext(t *testing.T) {
	itemID := uuid.New()
	older := approvedFor(t, itemID, at(-48), at(-47))
	last := approvedFor(t, itemID, at(-2), at(3))
	next := approvedFor(t, itemID, at(5), at(6))
	later := approvedFor(t, itemID, at(24), at(25))

	waiting, err := NewBooking(itemID, uuid.New(), uuid.New(), Period{Start: at(1), End: at(2)}, refNow)
	require.NoError(t, err)

	other := approvedFor(t, uuid.New(), at(-1), at(1))

	ln := ProjectLastNext([]*Booking{later, older, waiting, next, other, last}, itemID, refNow)

	require.NotNil(t, ln.Last)
	require.NotNil(t, ln.Next)
	assert.Equal(t, last.ID(), ln.Last.ID())
	assert.Equal(t, next.ID(), ln.Next.ID())
}

func TestProjectLastNext_StartAtNowIsLast(t *testing.T) {
	itemID := uuid.New()
	b := approvedFor(t, itemID, refNow, at(1))

	ln := ProjectLastNext([]*Booking{b}, itemID, refNow)
	assert.Equal(t, b, ln.Last)
	assert.Nil(t, ln.Next)
}

func TestProjectLastNext_IgnoresUndecided(t *testing.T) {
	itemID := uuid.New()
	rejected, err := NewBooking(itemID, uuid.New(), uuid.New(), Period{Start: at(-2), End: at(-1)}, refNow)
	require.NoError(t, err)
	require.NoError(t, rejected.Decide(false, refNow))

	ln := ProjectLastNext([]*Booking{rejected}, itemID, refNow)
	assert.Nil(t, ln.Last)
	assert.Nil(t, ln.Next)
}

func TestProjectLastNextBatch_AgreesWithSingle(t *testing.T) {
	items := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	var all []*Booking
	for i, itemID := range items {
		all = append(all,
			approvedFor(t, itemID, at(-10-i), at(-9-i)),
			approvedFor(t, itemID, at(-1), at(1+i)),
			approvedFor(t, itemID, at(2+i), at(3+i)),
			approvedFor(t, itemID, at(30), at(31)),
		)
	}
	lonely := uuid.New()

	batch := ProjectLastNextBatch(all, refNow)

	for _, itemID := range append(items, lonely) {
		single := ProjectLastNext(all, itemID, refNow)
		assert.Equal(t, single, batch[itemID], "item %s", itemID)
	}
	_, ok := batch[lonely]
	assert.False(t, ok)
}

func TestProjectLastNext_TieBreakIsOrderIndependent(t *testing.T) {
	itemID := uuid.New()
	a := approvedFor(t, itemID, at(3), at(4))
	b := approvedFor(t, itemID, at(3), at(5))

	first := ProjectLastNext([]*Booking{a, b}, itemID, refNow)
	second := ProjectLastNext([]*Booking{b, a}, itemID, refNow)
	assert.Equal(t, first.Next.ID(), second.Next.ID())
}
