package application

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shareit-platform/service-booking/internal/config"
	bookingDomain "github.com/shareit-platform/service-booking/internal/domain/booking"
	"github.com/shareit-platform/service-booking/internal/domain/item"
	"github.com/shareit-platform/service-booking/internal/domain/user"
	"github.com/shareit-platform/service-booking/internal/platform/kafka"
	"github.com/shareit-platform/service-booking/internal/repository"
)

var refNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func hoursFromNow(h int) *time.Time {
	t := refNow.Add(time.Duration(h) * time.Hour)
	return &t
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error {
	return m.Called(ctx, topic, event).Error(0)
}

// publishedTypes lists the CloudEvent types sent so far, in order.
func (m *mockPublisher) publishedTypes() []string {
	var types []string
	for _, call := range m.Calls {
		if call.Method == "PublishEvent" {
			types = append(types, call.Arguments.Get(2).(kafka.CloudEvent).Type)
		}
	}
	return types
}

type transitionCounter struct {
	counts map[string]int
}

func (c *transitionCounter) RecordBookingTransition(status string) {
	c.counts[status]++
}

type fixture struct {
	users     *repository.MemoryUserRepository
	items     *repository.MemoryItemRepository
	comments  *repository.MemoryCommentRepository
	bookings  *repository.MemoryBookingRepository
	requests  *repository.MemoryItemRequestRepository
	publisher *mockPublisher
	counter   *transitionCounter

	bookingSvc *BookingService
	itemSvc    *ItemService
	userSvc    *UserService
	requestSvc *RequestService

	owner    *user.User
	booker   *user.User
	stranger *user.User
	drill    *item.Item
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithPolicy(t, config.BookingPolicy{RejectPastStart: true})
}

func newFixtureWithPolicy(t *testing.T, policy config.BookingPolicy) *fixture {
	t.Helper()
	f := &fixture{
		users:     repository.NewMemoryUserRepository(),
		items:     repository.NewMemoryItemRepository(),
		comments:  repository.NewMemoryCommentRepository(),
		bookings:  repository.NewMemoryBookingRepository(),
		requests:  repository.NewMemoryItemRequestRepository(),
		publisher: new(mockPublisher),
		counter:   &transitionCounter{counts: make(map[string]int)},
	}
	f.publisher.On("PublishEvent", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	logger := zap.NewNop()
	guard := NewAccessGuard(f.users, f.items, f.bookings, f.requests)
	f.bookingSvc = NewBookingService(f.bookings, f.items, guard, f.publisher, f.counter, policy, logger)
	f.bookingSvc.now = func() time.Time { return refNow }
	f.itemSvc = NewItemService(f.items, f.comments, f.bookings, guard, f.publisher, logger)
	f.itemSvc.now = func() time.Time { return refNow }
	f.userSvc = NewUserService(f.users, f.publisher, logger)
	f.requestSvc = NewRequestService(f.requests, f.items, guard, logger)
	f.requestSvc.now = func() time.Time { return refNow }

	f.owner = f.addUser(t, "Owner", "owner@example.com")
	f.booker = f.addUser(t, "Booker", "booker@example.com")
	f.stranger = f.addUser(t, "Stranger", "stranger@example.com")
	f.drill = f.addItem(t, f.owner.ID(), "Drill", true)
	return f
}

func (f *fixture) addUser(t *testing.T, name, email string) *user.User {
	t.Helper()
	u, err := user.NewUser(uuid.Nil, name, email)
	require.NoError(t, err)
	require.NoError(t, f.users.Save(context.Background(), u))
	return u
}

func (f *fixture) addItem(t *testing.T, ownerID uuid.UUID, name string, available bool) *item.Item {
	t.Helper()
	it, err := item.NewItem(uuid.Nil, ownerID, name, name+" for rent", available)
	require.NoError(t, err)
	require.NoError(t, f.items.Save(context.Background(), it))
	return it
}

// addBooking stores a booking directly, bypassing creation rules.
func (f *fixture) addBooking(t *testing.T, it *item.Item, bookerID uuid.UUID, startH, endH int, status bookingDomain.BookingStatus) *bookingDomain.Booking {
	t.Helper()
	bk := bookingDomain.ReconstructBooking(uuid.New(), it.ID(), it.OwnerID(), bookerID,
		*hoursFromNow(startH), *hoursFromNow(endH), status, 1, refNow, refNow)
	require.NoError(t, f.bookings.Save(context.Background(), bk))
	return bk
}

func (f *fixture) request(startH, endH int) CreateBookingRequest {
	return CreateBookingRequest{Start: hoursFromNow(startH), End: hoursFromNow(endH), ItemID: f.drill.ID()}
}
