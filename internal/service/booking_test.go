package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dholimara/homestay-api/internal/apperr"
	"github.com/dholimara/homestay-api/internal/logger"
	"github.com/dholimara/homestay-api/internal/model"
	"github.com/dholimara/homestay-api/internal/queue"
	"github.com/dholimara/homestay-api/internal/repository"
)

// memStore is an in-memory BookingStore. Reserve and Reschedule hold a
// single mutex the way the MySQL store holds the room row lock.
type memStore struct {
	mu       sync.Mutex
	rooms    map[uint64]*model.Room
	bookings map[uint64]*model.Booking
	nextID   uint64
}

func newMemStore(rooms ...model.Room) *memStore {
	s := &memStore{rooms: map[uint64]*model.Room{}, bookings: map[uint64]*model.Booking{}}
	for i := range rooms {
		s.rooms[rooms[i].ID] = &rooms[i]
	}
	return s
}

func (s *memStore) overlapping(roomID uint64, stay model.Stay, exclude uint64) []model.Booking {
	var out []model.Booking
	for _, b := range s.bookings {
		if b.RoomID == roomID && b.ID != exclude && b.IsActive() && b.Stay().Overlaps(stay) {
			out = append(out, *b)
		}
	}
	return out
}

func (s *memStore) List(_ context.Context, f repository.BookingFilter) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Booking{}
	for _, b := range s.bookings {
		if f.UserID != nil && b.UserID != *f.UserID {
			continue
		}
		out = append(out, *b)
	}
	return out, nil
}

func (s *memStore) GetByID(_ context.Context, id uint64) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *memStore) Reserve(_ context.Context, b *model.Booking, decide repository.Decide) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[b.RoomID]
	if !ok {
		return repository.ErrRoomNotFound
	}
	if err := decide(room, s.overlapping(b.RoomID, b.Stay(), 0)); err != nil {
		return err
	}
	s.nextID++
	b.ID = s.nextID
	cp := *b
	s.bookings[b.ID] = &cp
	return nil
}

func (s *memStore) Reschedule(_ context.Context, b *model.Booking, decide repository.Decide) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[b.RoomID]
	if !ok {
		return repository.ErrRoomNotFound
	}
	if err := decide(room, s.overlapping(b.RoomID, b.Stay(), b.ID)); err != nil {
		return err
	}
	cp := *b
	s.bookings[b.ID] = &cp
	return nil
}

func (s *memStore) Cancel(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return repository.ErrBookingNotFound
	}
	if !b.IsActive() {
		return model.ErrNotCancellable
	}
	b.Status = model.BookingCancelled
	return nil
}

func (s *memStore) Delete(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[id]; !ok {
		return repository.ErrBookingNotFound
	}
	delete(s.bookings, id)
	return nil
}

type mockRooms struct {
	listAvailable func(ctx context.Context, stay model.Stay) ([]model.Room, error)
}

func (m *mockRooms) ListAvailable(ctx context.Context, stay model.Stay) ([]model.Room, error) {
	return m.listAvailable(ctx, stay)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.BookingEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, q string, ev queue.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func d(y int, m time.Month, day int) model.Date { return model.NewDate(y, m, day) }

func setup(t *testing.T) (*memStore, *recordingPublisher, BookingService) {
	t.Helper()
	store := newMemStore(model.Room{ID: 1, Name: "Garden room", Capacity: 2, PricePerNightCents: 10000, IsAvailable: true})
	pub := &recordingPublisher{}
	return store, pub, NewBookingService(store, &mockRooms{}, pub, logger.Discard())
}

var guest = Actor{UserID: 10}

func TestCreate_ComputesTotalAndPublishes(t *testing.T) {
	_, pub, svc := setup(t)

	b, err := svc.Create(context.Background(), guest, BookingInput{
		RoomID: 1, CheckInDate: d(2024, 1, 1), CheckOutDate: d(2024, 1, 4), NumberOfGuests: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, model.BookingPending, b.Status)
	assert.Equal(t, int64(30000), b.TotalPriceCents)
	assert.Equal(t, 300.0, b.TotalPrice)
	assert.Equal(t, uint64(10), b.UserID)

	require.Len(t, pub.events, 1)
	assert.Equal(t, queue.BookingCreatedQueue, pub.events[0].Type)
	assert.Equal(t, 3, pub.events[0].Nights)
}

func TestCreate_OverlapRules(t *testing.T) {
	tests := []struct {
		name      string
		in, out   model.Date
		wantError bool
	}{
		{"overlapping tail", d(2024, 1, 3), d(2024, 1, 6), true},
		{"contained", d(2024, 1, 2), d(2024, 1, 3), true},
		{"covering", d(2023, 12, 30), d(2024, 1, 10), true},
		{"adjacent after", d(2024, 1, 5), d(2024, 1, 7), false},
		{"adjacent before", d(2023, 12, 28), d(2024, 1, 1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, _, svc := setup(t)
			store.bookings[99] = &model.Booking{ID: 99, RoomID: 1, CheckInDate: d(2024, 1, 1), CheckOutDate: d(2024, 1, 5),
				Status: model.BookingConfirmed}

			_, err := svc.Create(context.Background(), guest, BookingInput{
				RoomID: 1, CheckInDate: tt.in, CheckOutDate: tt.out, NumberOfGuests: 1,
			})
			if !tt.wantError {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			ae := apperr.As(err)
			assert.Equal(t, 400, ae.HTTPStatus)
			assert.Equal(t, "This room is not available for the selected dates.", ae.Fields["room"])
		})
	}
}

func TestCreate_CancelledBookingDoesNotBlock(t *testing.T) {
	store, _, svc := setup(t)
	store.bookings[99] = &model.Booking{ID: 99, RoomID: 1, CheckInDate: d(2024, 1, 1), CheckOutDate: d(2024, 1, 5),
		Status: model.BookingCancelled}

	_, err := svc.Create(context.Background(), guest, BookingInput{
		RoomID: 1, CheckInDate: d(2024, 1, 2), CheckOutDate: d(2024, 1, 3), NumberOfGuests: 1,
	})
	assert.NoError(t, err)
}

func TestCreate_Validation(t *testing.T) {
	_, pub, svc := setup(t)

	_, err := svc.Create(context.Background(), guest, BookingInput{
		RoomID: 1, CheckInDate: d(2024, 1, 4), CheckOutDate: d(2024, 1, 4), NumberOfGuests: 1,
	})
	require.Error(t, err)
	assert.Equal(t, "Check out date must be after check in date.", apperr.As(err).Fields["check_out_date"])

	_, err = svc.Create(context.Background(), guest, BookingInput{
		RoomID: 404, CheckInDate: d(2024, 1, 1), CheckOutDate: d(2024, 1, 2), NumberOfGuests: 1,
	})
	require.Error(t, err)
	assert.Contains(t, apperr.As(err).Fields, "room")
	assert.Empty(t, pub.events)
}

func TestCreate_MissingDates(t *testing.T) {
	_, _, svc := setup(t)

	tests := []struct {
		name   string
		in     BookingInput
		fields map[string]string
	}{
		{
			name:   "no check-in",
			in:     BookingInput{RoomID: 1, CheckOutDate: d(2024, 1, 4), NumberOfGuests: 1},
			fields: map[string]string{"check_in_date": "This field is required."},
		},
		{
			name:   "no check-out",
			in:     BookingInput{RoomID: 1, CheckInDate: d(2024, 1, 4), NumberOfGuests: 1},
			fields: map[string]string{"check_out_date": "This field is required."},
		},
		{
			name: "no dates",
			in:   BookingInput{RoomID: 1, NumberOfGuests: 1},
			fields: map[string]string{
				"check_in_date":  "This field is required.",
				"check_out_date": "This field is required.",
			},
		},
		{
			name:   "check-out before check-in",
			in:     BookingInput{RoomID: 1, CheckInDate: d(2024, 1, 4), CheckOutDate: d(2024, 1, 2), NumberOfGuests: 1},
			fields: map[string]string{"check_out_date": "Check out date must be after check in date."},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), guest, tt.in)
			require.Error(t, err)
			ae := apperr.As(err)
			assert.Equal(t, apperr.CodeValidation, ae.Code)
			assert.Equal(t, tt.fields, ae.Fields)
		})
	}
}

func TestCreate_ConcurrentOverlappingRequests(t *testing.T) {
	store, _, svc := setup(t)

	const n = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Create(context.Background(), Actor{UserID: uint64(100 + i)}, BookingInput{
				RoomID: 1, CheckInDate: d(2024, 3, 1), CheckOutDate: d(2024, 3, 3), NumberOfGuests: 1,
			})
			if err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, success)
	assert.Len(t, store.bookings, 1)
}

func TestUpdate_ExcludesItselfAndKeepsTotal(t *testing.T) {
	_, _, svc := setup(t)
	ctx := context.Background()

	b, err := svc.Create(ctx, guest, BookingInput{RoomID: 1, CheckInDate: d(2024, 1, 1), CheckOutDate: d(2024, 1, 4), NumberOfGuests: 1})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, guest, b.ID, BookingInput{
		RoomID: 1, CheckInDate: d(2024, 1, 2), CheckOutDate: d(2024, 1, 6), NumberOfGuests: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, d(2024, 1, 6), updated.CheckOutDate)
	assert.Equal(t, int64(30000), updated.TotalPriceCents)
	assert.Equal(t, model.BookingPending, updated.Status)
}

func TestUpdate_RejectsOverlapWithOthers(t *testing.T) {
	store, _, svc := setup(t)
	ctx := context.Background()
	store.bookings[50] = &model.Booking{ID: 50, UserID: 11, RoomID: 1, CheckInDate: d(2024, 1, 10), CheckOutDate: d(2024, 1, 12),
		Status: model.BookingPending}

	b, err := svc.Create(ctx, guest, BookingInput{RoomID: 1, CheckInDate: d(2024, 1, 1), CheckOutDate: d(2024, 1, 4), NumberOfGuests: 1})
	require.NoError(t, err)

	_, err = svc.Update(ctx, guest, b.ID, BookingInput{RoomID: 1, CheckInDate: d(2024, 1, 3), CheckOutDate: d(2024, 1, 11), NumberOfGuests: 1})
	require.Error(t, err)
	assert.Contains(t, apperr.As(err).Fields, "room")
}

func TestCancel_StateMachine(t *testing.T) {
	tests := []struct {
		from    string
		wantErr bool
	}{
		{model.BookingPending, false},
		{model.BookingConfirmed, false},
		{model.BookingCancelled, true},
		{model.BookingCompleted, true},
	}
	for _, tt := range tests {
		t.Run(tt.from, func(t *testing.T) {
			store, pub, svc := setup(t)
			store.bookings[1] = &model.Booking{ID: 1, UserID: guest.UserID, RoomID: 1,
				CheckInDate: d(2024, 1, 1), CheckOutDate: d(2024, 1, 2), Status: tt.from}

			b, err := svc.Cancel(context.Background(), guest, 1)
			if tt.wantErr {
				require.Error(t, err)
				ae := apperr.As(err)
				assert.Equal(t, 400, ae.HTTPStatus)
				assert.Equal(t, "Only pending or confirmed bookings can be cancelled", ae.Message)
				assert.Equal(t, tt.from, store.bookings[1].Status)
				assert.Empty(t, pub.events)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, model.BookingCancelled, b.Status)
			assert.Equal(t, model.BookingCancelled, store.bookings[1].Status)
			require.Len(t, pub.events, 1)
			assert.Equal(t, queue.BookingCancelledQueue, pub.events[0].Type)
		})
	}
}

func TestCancel_ConcurrentCancelsSucceedOnce(t *testing.T) {
	store, pub, svc := setup(t)
	store.bookings[1] = &model.Booking{ID: 1, UserID: guest.UserID, RoomID: 1,
		CheckInDate: d(2024, 1, 1), CheckOutDate: d(2024, 1, 2), Status: model.BookingPending}

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Cancel(context.Background(), guest, 1)
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.True(t, apperr.Is(err, apperr.CodeValidation), err)
	}
	assert.Equal(t, 1, ok)
	pub.mu.Lock()
	defer pub.mu.Unlock()
	assert.Len(t, pub.events, 1, "one cancellation event")
}

func TestCancel_PublishFailureDoesNotFail(t *testing.T) {
	store, pub, svc := setup(t)
	pub.err = errors.New("broker down")
	store.bookings[1] = &model.Booking{ID: 1, UserID: guest.UserID, RoomID: 1, Status: model.BookingPending}

	_, err := svc.Cancel(context.Background(), guest, 1)
	assert.NoError(t, err)
}

func TestAccess_OwnerOrStaff(t *testing.T) {
	store, _, svc := setup(t)
	ctx := context.Background()
	store.bookings[1] = &model.Booking{ID: 1, UserID: 10, RoomID: 1, Status: model.BookingPending}
	store.bookings[2] = &model.Booking{ID: 2, UserID: 20, RoomID: 1, Status: model.BookingPending}

	_, err := svc.Get(ctx, Actor{UserID: 20}, 1)
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))

	_, err = svc.Cancel(ctx, Actor{UserID: 20}, 1)
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
	assert.Equal(t, model.BookingPending, store.bookings[1].Status)

	_, err = svc.Get(ctx, Actor{UserID: 99, Staff: true}, 1)
	assert.NoError(t, err)

	own, err := svc.List(ctx, Actor{UserID: 10}, repository.BookingFilter{})
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, uint64(1), own[0].ID)

	all, err := svc.List(ctx, Actor{UserID: 99, Staff: true}, repository.BookingFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	assert.True(t, apperr.Is(svc.Delete(ctx, Actor{UserID: 20}, 1), apperr.CodeNotFound))
	assert.NoError(t, svc.Delete(ctx, Actor{UserID: 10}, 1))
}

func TestCheckAvailability(t *testing.T) {
	var gotStay model.Stay
	rooms := &mockRooms{listAvailable: func(_ context.Context, stay model.Stay) ([]model.Room, error) {
		gotStay = stay
		return []model.Room{{ID: 1, Capacity: 2}, {ID: 2, Capacity: 4}}, nil
	}}
	svc := NewBookingService(newMemStore(), rooms, nil, logger.Discard())
	stay := model.Stay{CheckIn: d(2024, 1, 1), CheckOut: d(2024, 1, 3)}

	out, err := svc.CheckAvailability(context.Background(), stay, 3)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, uint64(2), out[0].ID)
	assert.Equal(t, stay, gotStay)

	all, err := svc.CheckAvailability(context.Background(), stay, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = svc.CheckAvailability(context.Background(), model.Stay{CheckIn: d(2024, 1, 3), CheckOut: d(2024, 1, 1)}, 0)
	require.Error(t, err)
	assert.Equal(t, "Check-out date must be after check-in date", apperr.As(err).Message)
}
