package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dholimara/homestay-api/internal/logger"
	"github.com/dholimara/homestay-api/internal/model"
	"github.com/dholimara/homestay-api/internal/repository"
)

type fakeReviews struct {
	filter  repository.ReviewFilter
	stored  map[uint64]*model.Review
	written *model.Review
	err     error
}

func (f *fakeReviews) List(_ context.Context, flt repository.ReviewFilter) ([]model.Review, error) {
	f.filter = flt
	return nil, nil
}

func (f *fakeReviews) GetByID(_ context.Context, id uint64) (*model.Review, error) {
	rv, ok := f.stored[id]
	if !ok {
		return nil, repository.ErrReviewNotFound
	}
	cp := *rv
	return &cp, nil
}

func (f *fakeReviews) Create(_ context.Context, rv *model.Review) error {
	if f.err != nil {
		return f.err
	}
	rv.ID = 10
	cp := *rv
	f.written = &cp
	return nil
}

func (f *fakeReviews) Update(_ context.Context, rv *model.Review) error {
	cp := *rv
	f.written = &cp
	return nil
}

func (f *fakeReviews) Delete(context.Context, uint64) error { return nil }

func reviewServer(reviews *fakeReviews, bookings *fakeBookings) *echo.Echo {
	h := NewReviewHandler(reviews, bookings, logger.Discard())
	e := newEcho()
	e.GET("/reviews/", h.List)
	e.POST("/reviews/", h.Create)
	e.PATCH("/reviews/:id/", h.Update)
	e.DELETE("/reviews/:id/", h.Delete)
	return e
}

func TestReviews_List(t *testing.T) {
	reviews := &fakeReviews{}
	e := reviewServer(reviews, &fakeBookings{})

	rec := call(e, http.MethodGet, "/reviews/?homestay=3&rating=5", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"items":[]}`, rec.Body.String())
	assert.Equal(t, repository.ReviewFilter{HomestayID: 3, Rating: 5}, reviews.filter)
}

func TestReviews_Create(t *testing.T) {
	bookings := &fakeBookings{stored: map[uint64]*model.Booking{
		20: {ID: 20, UserID: 4, HomestayID: 3},
		21: {ID: 21, UserID: 8, HomestayID: 3},
	}}
	auth := bearer(t, 4, model.RoleCustomer)

	tests := []struct {
		name     string
		body     string
		storeErr error
		wantCode int
	}{
		{"ok", `{"homestay":3,"booking":20,"rating":5,"comment":"lovely","user":99}`, nil, http.StatusCreated},
		{"no booking", `{"homestay":3,"rating":4,"comment":"fine"}`, nil, http.StatusCreated},
		{"rating out of range", `{"homestay":3,"rating":6,"comment":"x"}`, nil, http.StatusBadRequest},
		{"someone else's booking", `{"homestay":3,"booking":21,"rating":5,"comment":"x"}`, nil, http.StatusBadRequest},
		{"booking for another homestay", `{"homestay":4,"booking":20,"rating":5,"comment":"x"}`, nil, http.StatusBadRequest},
		{"duplicate", `{"homestay":3,"booking":20,"rating":5,"comment":"x"}`, repository.ErrReviewExists, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reviews := &fakeReviews{err: tt.storeErr}
			e := reviewServer(reviews, bookings)

			rec := call(e, http.MethodPost, "/reviews/", auth, tt.body)
			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			if tt.wantCode == http.StatusCreated {
				assert.Equal(t, uint64(4), reviews.written.UserID, "author is always the caller")
			}
		})
	}

	e := reviewServer(&fakeReviews{}, bookings)
	assert.Equal(t, http.StatusUnauthorized, call(e, http.MethodPost, "/reviews/", "", `{}`).Code)
}

func TestReviews_WritesOwnerOrStaff(t *testing.T) {
	reviews := &fakeReviews{stored: map[uint64]*model.Review{
		1: {ID: 1, UserID: 4, HomestayID: 3, Rating: 3, Comment: "ok"},
	}}
	e := reviewServer(reviews, &fakeBookings{})

	rec := call(e, http.MethodPatch, "/reviews/1/", bearer(t, 5, model.RoleCustomer), `{"rating":1}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = call(e, http.MethodPatch, "/reviews/1/", bearer(t, 4, model.RoleCustomer), `{"rating":5}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 5, reviews.written.Rating)
	assert.Equal(t, "ok", reviews.written.Comment)

	assert.Equal(t, http.StatusNoContent, call(e, http.MethodDelete, "/reviews/1/", bearer(t, 9, model.RoleStaff), "").Code)
	assert.Equal(t, http.StatusNotFound, call(e, http.MethodDelete, "/reviews/2/", bearer(t, 9, model.RoleStaff), "").Code)
}
