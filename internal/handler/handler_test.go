package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/dholimara/homestay-api/internal/apperr"
	"github.com/dholimara/homestay-api/internal/config"
	"github.com/dholimara/homestay-api/internal/middleware"
	"github.com/dholimara/homestay-api/internal/model"
	"github.com/dholimara/homestay-api/internal/repository"
	"github.com/dholimara/homestay-api/internal/service"
	"github.com/dholimara/homestay-api/internal/utils"
)

const testSecret = "handler-test-secret"

var testCfg = config.Config{
	JWTSecret:      testSecret,
	AccessTTLMin:   15,
	RefreshTTLDays: 7,
	BcryptCost:     4,
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = apperr.HTTPErrorHandler
	e.Validator = NewValidator()
	e.Use(middleware.Authenticate(testSecret))
	return e
}

func bearer(t *testing.T, id uint64, role string) string {
	t.Helper()
	tok, err := utils.NewAccessToken(testSecret, id, role, 5)
	require.NoError(t, err)
	return "Bearer " + tok.Token
}

func call(e *echo.Echo, method, path, auth, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if auth != "" {
		req.Header.Set(echo.HeaderAuthorization, auth)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// ---- users and tokens ----

type fakeUsers struct {
	mu      sync.Mutex
	byID    map[uint64]*model.User
	nextID  uint64
	updated []model.User
	deleted []uint64
}

func newFakeUsers(users ...model.User) *fakeUsers {
	f := &fakeUsers{byID: map[uint64]*model.User{}, nextID: 100}
	for i := range users {
		u := users[i]
		f.byID[u.ID] = &u
	}
	return f
}

func (f *fakeUsers) Create(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, x := range f.byID {
		if strings.EqualFold(x.Email, u.Email) {
			return repository.ErrEmailExists
		}
		if x.Username == u.Username {
			return repository.ErrUsernameExists
		}
	}
	f.nextID++
	u.ID = f.nextID
	u.IsActive = true
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id uint64) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) List(context.Context) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.User{}
	for _, u := range f.byID {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUsers) UpdateProfile(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[u.ID]; !ok {
		return repository.ErrUserNotFound
	}
	cp := *u
	f.byID[u.ID] = &cp
	f.updated = append(f.updated, cp)
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(f.byID, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeTokens struct {
	mu      sync.Mutex
	live    map[string]uint64
	revoked []string
}

func newFakeTokens() *fakeTokens { return &fakeTokens{live: map[string]uint64{}} }

func (f *fakeTokens) StoreRefresh(_ context.Context, userID uint64, hash string, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.live[hash] = userID
	return nil
}

func (f *fakeTokens) ValidateRefresh(_ context.Context, hash string) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.live[hash]
	if !ok {
		return 0, repository.ErrTokenInvalid
	}
	return id, nil
}

func (f *fakeTokens) Rotate(_ context.Context, oldHash, newHash string, _ time.Time) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.live[oldHash]
	if !ok {
		return 0, repository.ErrTokenInvalid
	}
	delete(f.live, oldHash)
	f.live[newHash] = id
	return id, nil
}

func (f *fakeTokens) RevokeByHash(_ context.Context, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.live, hash)
	f.revoked = append(f.revoked, hash)
	return nil
}

func (f *fakeTokens) RevokeAllForUser(_ context.Context, userID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for h, id := range f.live {
		if id == userID {
			delete(f.live, h)
			f.revoked = append(f.revoked, h)
		}
	}
	return nil
}

// ---- bookings ----

// fakeBookings records what handlers pass to the booking service.
type fakeBookings struct {
	lastActor  service.Actor
	lastFilter repository.BookingFilter
	lastInput  service.BookingInput
	lastStay   model.Stay
	lastCap    int
	stored     map[uint64]*model.Booking
	err        error
}

func (f *fakeBookings) List(_ context.Context, a service.Actor, flt repository.BookingFilter) ([]model.Booking, error) {
	f.lastActor, f.lastFilter = a, flt
	return []model.Booking{}, f.err
}

func (f *fakeBookings) Get(_ context.Context, a service.Actor, id uint64) (*model.Booking, error) {
	f.lastActor = a
	b, ok := f.stored[id]
	if !ok || (!a.Staff && b.UserID != a.UserID) {
		return nil, apperr.NotFound("Booking")
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBookings) Create(_ context.Context, a service.Actor, in service.BookingInput) (*model.Booking, error) {
	f.lastActor, f.lastInput = a, in
	if f.err != nil {
		return nil, f.err
	}
	return &model.Booking{ID: 1, UserID: a.UserID, RoomID: in.RoomID, CheckInDate: in.CheckInDate,
		CheckOutDate: in.CheckOutDate, NumberOfGuests: in.NumberOfGuests, Status: model.BookingPending}, nil
}

func (f *fakeBookings) Update(_ context.Context, a service.Actor, id uint64, in service.BookingInput) (*model.Booking, error) {
	f.lastActor, f.lastInput = a, in
	if f.err != nil {
		return nil, f.err
	}
	return &model.Booking{ID: id, UserID: a.UserID, RoomID: in.RoomID, CheckInDate: in.CheckInDate,
		CheckOutDate: in.CheckOutDate, NumberOfGuests: in.NumberOfGuests}, nil
}

func (f *fakeBookings) Cancel(ctx context.Context, a service.Actor, id uint64) (*model.Booking, error) {
	b, err := f.Get(ctx, a, id)
	if err != nil {
		return nil, err
	}
	if err := b.Cancel(); err != nil {
		return nil, apperr.Validation(err.Error(), nil)
	}
	return b, nil
}

func (f *fakeBookings) Delete(ctx context.Context, a service.Actor, id uint64) error {
	_, err := f.Get(ctx, a, id)
	return err
}

func (f *fakeBookings) CheckAvailability(_ context.Context, stay model.Stay, capacity int) ([]model.Room, error) {
	f.lastStay, f.lastCap = stay, capacity
	if err := stay.Validate(); err != nil {
		return nil, apperr.BadRequest("Check-out date must be after check-in date")
	}
	return []model.Room{{ID: 3, Name: "Loft", Capacity: 4, FeaturedImage: "room_images/loft.jpg"}}, nil
}

func date(s string) model.Date {
	d, err := model.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}
