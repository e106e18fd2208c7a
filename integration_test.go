//go:build integration

package main_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shareit-platform/service-booking/internal/application"
	bookingDomain "github.com/shareit-platform/service-booking/internal/domain/booking"
	"github.com/shareit-platform/service-booking/internal/domain/item"
	"github.com/shareit-platform/service-booking/internal/domain/request"
	"github.com/shareit-platform/service-booking/internal/domain/user"
	"github.com/shareit-platform/service-booking/internal/platform/domain"
	"github.com/shareit-platform/service-booking/internal/proto/events"
	"github.com/shareit-platform/service-booking/internal/repository"
)

// TestCatalogEvents_ThenBookingLifecycle verifies that users and items
// announced on catalog.events land in the read model, and that booking and
// deciding against them publishes booking.created and booking.approved.
func TestCatalogEvents_ThenBookingLifecycle(t *testing.T) {
	db := setupPostgres(t)
	brokers := setupKafka(t)

	stack := setupBookingStack(t, db, brokers)
	defer stack.CleanupProducer()
	defer func() { _ = stack.Consumer.Close() }()

	// Start the consumer.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = stack.Consumer.Start(ctx) }()
	time.Sleep(3 * time.Second) // Wait for consumer group join.

	owner := events.UserRegisteredEvent{UserID: uuid.New(), Name: "Owner", Email: "owner@example.com"}
	booker := events.UserRegisteredEvent{UserID: uuid.New(), Name: "Booker", Email: "booker@example.com"}
	drill := events.ItemUpsertedEvent{ItemID: uuid.New(), OwnerID: owner.UserID, Name: "Drill", Description: "Cordless drill", Available: true, Version: 1}

	publishTestEvent(t, brokers, events.TopicCatalogEvents, "service-catalog", events.UserRegistered, owner.UserID.String(), owner)
	publishTestEvent(t, brokers, events.TopicCatalogEvents, "service-catalog", events.UserRegistered, booker.UserID.String(), booker)
	publishTestEvent(t, brokers, events.TopicCatalogEvents, "service-catalog", events.ItemUpserted, drill.ItemID.String(), drill)

	require.Eventually(t, func() bool {
		_, err := stack.Items.GetItem(ctx, owner.UserID, drill.ItemID)
		if err != nil {
			return false
		}
		_, err = stack.Users.GetUser(ctx, booker.UserID)
		return err == nil
	}, 15*time.Second, 200*time.Millisecond, "catalog events were not applied")

	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Second)
	end := start.Add(48 * time.Hour)
	created, err := stack.Bookings.CreateBooking(ctx, booker.UserID, application.CreateBookingRequest{
		Start: &start, End: &end, ItemID: drill.ItemID,
	})
	require.NoError(t, err)
	assert.Equal(t, "WAITING", created.Status)

	ce := consumeEvent(t, brokers, events.TopicBookingEvents, events.BookingCreated, created.ID.String(), 15*time.Second)
	var createdEvt events.BookingCreatedEvent
	require.NoError(t, ce.ParseData(&createdEvt))
	assert.Equal(t, owner.UserID, createdEvt.ItemOwnerID)
	assert.Equal(t, booker.UserID, createdEvt.BookerID)

	approved, err := stack.Bookings.ApproveBooking(ctx, owner.UserID, created.ID, true)
	require.NoError(t, err)
	assert.Equal(t, "APPROVED", approved.Status)

	ce = consumeEvent(t, brokers, events.TopicBookingEvents, events.BookingApproved, created.ID.String(), 15*time.Second)
	var decided events.BookingDecidedEvent
	require.NoError(t, ce.ParseData(&decided))
	assert.Equal(t, "APPROVED", decided.Status)
	assert.Equal(t, owner.UserID, decided.DecidedBy)

	_, err = stack.Bookings.ApproveBooking(ctx, owner.UserID, created.ID, false)
	assert.True(t, domain.IsValidation(err))

	view, err := stack.Items.GetItem(ctx, owner.UserID, drill.ItemID)
	require.NoError(t, err)
	require.NotNil(t, view.NextBooking)
	assert.Equal(t, created.ID, view.NextBooking.ID)
}

// TestGormBookingRepository_Queries checks the SQL role and state scopes,
// ordering, paging and the compare-and-set update against PostgreSQL.
func TestGormBookingRepository_Queries(t *testing.T) {
	db := setupPostgres(t)
	ctx := context.Background()

	users := repository.NewGormUserRepository(db)
	items := repository.NewGormItemRepository(db)
	repo := repository.NewGormBookingRepository(db)

	owner, err := user.NewUser(uuid.Nil, "Owner", "owner@example.com")
	require.NoError(t, err)
	booker, err := user.NewUser(uuid.Nil, "Booker", "booker@example.com")
	require.NoError(t, err)
	require.NoError(t, users.Save(ctx, owner))
	require.NoError(t, users.Save(ctx, booker))

	dup, err := user.NewUser(uuid.Nil, "Again", "owner@example.com")
	require.NoError(t, err)
	assert.True(t, domain.IsConflict(users.Save(ctx, dup)))

	drill, err := item.NewItem(uuid.Nil, owner.ID(), "Drill", "100% cordless", true)
	require.NoError(t, err)
	require.NoError(t, items.Save(ctx, drill))

	now := time.Now().UTC().Truncate(time.Microsecond)
	at := func(h int) time.Time { return now.Add(time.Duration(h) * time.Hour) }
	seed := func(startH, endH int, status bookingDomain.BookingStatus) *bookingDomain.Booking {
		bk := bookingDomain.ReconstructBooking(uuid.New(), drill.ID(), owner.ID(), booker.ID(),
			at(startH), at(endH), status, 1, now, now)
		require.NoError(t, repo.Save(ctx, bk))
		return bk
	}

	past := seed(-10, -5, bookingDomain.StatusApproved)
	current := seed(-1, 1, bookingDomain.StatusApproved)
	future := seed(5, 10, bookingDomain.StatusWaiting)
	rejected := seed(20, 30, bookingDomain.StatusRejected)

	list := func(role bookingDomain.Role, actor uuid.UUID, state bookingDomain.State, from, size int) []uuid.UUID {
		page, err := domain.NewPageRequest(from, size)
		require.NoError(t, err)
		got, err := repo.List(ctx, bookingDomain.ListQuery{ActorID: actor, Role: role, State: state, Now: now, Page: page})
		require.NoError(t, err)
		ids := make([]uuid.UUID, len(got))
		for i, b := range got {
			ids[i] = b.ID()
		}
		return ids
	}

	assert.Equal(t, []uuid.UUID{rejected.ID(), future.ID(), current.ID(), past.ID()}, list(bookingDomain.RoleOwner, owner.ID(), bookingDomain.StateAll, 0, 20))
	assert.Equal(t, []uuid.UUID{past.ID()}, list(bookingDomain.RoleBooker, booker.ID(), bookingDomain.StatePast, 0, 20))
	assert.Equal(t, []uuid.UUID{current.ID()}, list(bookingDomain.RoleBooker, booker.ID(), bookingDomain.StateCurrent, 0, 20))
	assert.Equal(t, []uuid.UUID{rejected.ID(), future.ID()}, list(bookingDomain.RoleBooker, booker.ID(), bookingDomain.StateFuture, 0, 20))
	assert.Equal(t, []uuid.UUID{future.ID()}, list(bookingDomain.RoleOwner, owner.ID(), bookingDomain.StateWaiting, 0, 20))
	assert.Equal(t, []uuid.UUID{rejected.ID()}, list(bookingDomain.RoleOwner, owner.ID(), bookingDomain.StateRejected, 0, 20))
	assert.Equal(t, []uuid.UUID{current.ID(), past.ID()}, list(bookingDomain.RoleOwner, owner.ID(), bookingDomain.StateAll, 3, 2))
	assert.Empty(t, list(bookingDomain.RoleOwner, booker.ID(), bookingDomain.StateAll, 0, 20))

	approved, err := repo.FindApprovedByItemIDs(ctx, []uuid.UUID{drill.ID()})
	require.NoError(t, err)
	assert.Len(t, approved, 2)

	done, err := repo.HasCompletedBooking(ctx, booker.ID(), drill.ID(), now)
	require.NoError(t, err)
	assert.True(t, done)

	// Two stale copies race on the same waiting booking.
	var wg sync.WaitGroup
	results := make([]error, 2)
	for i, decision := range []bool{true, false} {
		wg.Add(1)
		go func(i int, decision bool) {
			defer wg.Done()
			bk, err := repo.FindByID(ctx, future.ID())
			if err != nil {
				results[i] = err
				return
			}
			if results[i] = bk.Decide(decision, now); results[i] != nil {
				return
			}
			bk.IncrementVersion()
			results[i] = repo.UpdateStatus(ctx, bk, bookingDomain.StatusWaiting)
		}(i, decision)
	}
	wg.Wait()

	failures := 0
	for _, err := range results {
		if err != nil {
			failures++
		}
	}
	assert.LessOrEqual(t, failures, 1)

	stored, err := repo.FindByID(ctx, future.ID())
	require.NoError(t, err)
	assert.True(t, stored.Status().IsTerminal())
	assert.Equal(t, int64(2), stored.Version())

	stale := bookingDomain.ReconstructBooking(future.ID(), drill.ID(), owner.ID(), booker.ID(),
		at(5), at(10), bookingDomain.StatusApproved, 2, now, now)
	assert.True(t, domain.IsConflict(repo.UpdateStatus(ctx, stale, bookingDomain.StatusWaiting)))

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), counts["APPROVED"]+counts["REJECTED"]+counts["WAITING"])

	page, err := domain.NewPageRequest(0, 20)
	require.NoError(t, err)
	found, err := items.Search(ctx, "100%", page)
	require.NoError(t, err)
	assert.Len(t, found, 1)
	found, err = items.Search(ctx, "10_%", page)
	require.NoError(t, err)
	assert.Empty(t, found, "LIKE wildcards are matched literally")
}

// TestGormItemRequests_LinkedItems covers the request queries and the
// version guard on item updates.
func TestGormItemRequests_LinkedItems(t *testing.T) {
	db := setupPostgres(t)
	ctx := context.Background()

	users := repository.NewGormUserRepository(db)
	items := repository.NewGormItemRepository(db)
	requests := repository.NewGormItemRequestRepository(db)

	asker, err := user.NewUser(uuid.Nil, "Asker", "asker@example.com")
	require.NoError(t, err)
	owner, err := user.NewUser(uuid.Nil, "Owner", "owner@example.com")
	require.NoError(t, err)
	require.NoError(t, users.Save(ctx, asker))
	require.NoError(t, users.Save(ctx, owner))

	now := time.Now().UTC().Truncate(time.Microsecond)
	older, err := request.NewItemRequest(asker.ID(), "Need a ladder", now.Add(-time.Hour))
	require.NoError(t, err)
	newer, err := request.NewItemRequest(asker.ID(), "Need a tent", now)
	require.NoError(t, err)
	require.NoError(t, requests.Save(ctx, older))
	require.NoError(t, requests.Save(ctx, newer))

	own, err := requests.FindByRequesterID(ctx, asker.ID())
	require.NoError(t, err)
	require.Len(t, own, 2)
	assert.Equal(t, newer.ID(), own[0].ID())

	page, err := domain.NewPageRequest(1, 1)
	require.NoError(t, err)
	others, err := requests.FindOthers(ctx, owner.ID(), page)
	require.NoError(t, err)
	require.Len(t, others, 1)
	assert.Equal(t, older.ID(), others[0].ID())

	first, err := domain.NewPageRequest(0, 10)
	require.NoError(t, err)
	others, err = requests.FindOthers(ctx, asker.ID(), first)
	require.NoError(t, err)
	assert.Empty(t, others)

	_, err = requests.FindByID(ctx, uuid.New())
	assert.True(t, domain.IsNotFound(err))

	ladder, err := item.NewItem(uuid.Nil, owner.ID(), "Ladder", "Three metres", true)
	require.NoError(t, err)
	ladder.LinkRequest(older.ID())
	require.NoError(t, items.Save(ctx, ladder))

	linked, err := items.FindByRequestIDs(ctx, []uuid.UUID{older.ID(), newer.ID()})
	require.NoError(t, err)
	require.Len(t, linked, 1)
	assert.Equal(t, older.ID(), linked[0].RequestID())

	changed, err := ladder.Sync(item.Revision{Name: "Ladder", Description: "Four metres", Available: true, Version: 5})
	require.NoError(t, err)
	require.True(t, changed)
	require.NoError(t, items.Update(ctx, ladder))

	stale := item.Reconstruct(ladder.ID(), owner.ID(), older.ID(), "Ladder", "Two metres", true, 3, now, now)
	assert.True(t, domain.IsConflict(items.Update(ctx, stale)))

	stored, err := items.FindByID(ctx, ladder.ID())
	require.NoError(t, err)
	assert.Equal(t, "Four metres", stored.Description())
	assert.Equal(t, int64(5), stored.Version())
}
