package handler

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dholimara/homestay-api/internal/apperr"
	"github.com/dholimara/homestay-api/internal/model"
	"github.com/dholimara/homestay-api/internal/service"
)

func bookingServer(svc *fakeBookings) *echo.Echo {
	h := NewBookingHandler(svc)
	e := newEcho()
	e.GET("/bookings/", h.List)
	e.POST("/bookings/", h.Create)
	e.GET("/bookings/:id/", h.Get)
	e.PUT("/bookings/:id/", h.Update)
	e.PATCH("/bookings/:id/", h.Update)
	e.DELETE("/bookings/:id/", h.Delete)
	e.POST("/bookings/:id/cancel/", h.Cancel)
	return e
}

func TestBookings_CreateIgnoresReadOnlyFields(t *testing.T) {
	svc := &fakeBookings{}
	e := bookingServer(svc)

	rec := call(e, http.MethodPost, "/bookings/", bearer(t, 4, model.RoleCustomer),
		`{"room":3,"check_in_date":"2024-01-01","check_out_date":"2024-01-04","number_of_guests":2,
		  "total_price":1,"status":"confirmed","user":99}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	assert.Equal(t, service.Actor{UserID: 4}, svc.lastActor)
	assert.Equal(t, service.BookingInput{
		RoomID:         3,
		CheckInDate:    date("2024-01-01"),
		CheckOutDate:   date("2024-01-04"),
		NumberOfGuests: 2,
	}, svc.lastInput)
	assert.Equal(t, model.BookingPending, decode[model.Booking](t, rec).Status)
}

func TestBookings_BadDateAndUnavailable(t *testing.T) {
	svc := &fakeBookings{}
	e := bookingServer(svc)
	auth := bearer(t, 4, model.RoleCustomer)

	rec := call(e, http.MethodPost, "/bookings/", auth, `{"room":3,"check_in_date":"Jan 1","check_out_date":"2024-01-04"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid date format. Use YYYY-MM-DD", decode[apperr.Response](t, rec).Error)

	svc.err = apperr.Field("room", model.ErrRoomUnavailable.Error())
	rec = call(e, http.MethodPost, "/bookings/", auth, `{"room":3,"check_in_date":"2024-01-03","check_out_date":"2024-01-06","number_of_guests":1}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, model.ErrRoomUnavailable.Error(), decode[apperr.Response](t, rec).Fields["room"])
}

func TestBookings_RequireAuthenticatedActor(t *testing.T) {
	e := bookingServer(&fakeBookings{})
	rec := call(e, http.MethodGet, "/bookings/", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBookings_ListFilters(t *testing.T) {
	svc := &fakeBookings{}
	e := bookingServer(svc)
	auth := bearer(t, 4, model.RoleStaff)

	rec := call(e, http.MethodGet, "/bookings/?status=confirmed&room=3&check_in_date=2024-02-01", auth, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"items":[]}`, rec.Body.String())
	assert.Equal(t, "confirmed", svc.lastFilter.Status)
	assert.Equal(t, uint64(3), svc.lastFilter.RoomID)
	assert.Equal(t, date("2024-02-01"), svc.lastFilter.CheckInDate)
	assert.True(t, svc.lastActor.Staff)

	assert.Equal(t, http.StatusBadRequest, call(e, http.MethodGet, "/bookings/?status=lost", auth, "").Code)
	assert.Equal(t, http.StatusBadRequest, call(e, http.MethodGet, "/bookings/?check_out_date=tomorrow", auth, "").Code)
}

func TestBookings_PatchMergesStoredFields(t *testing.T) {
	svc := &fakeBookings{stored: map[uint64]*model.Booking{
		8: {ID: 8, UserID: 4, RoomID: 3, CheckInDate: date("2024-01-01"), CheckOutDate: date("2024-01-04"),
			NumberOfGuests: 2, SpecialRequests: "late arrival", Status: model.BookingPending},
	}}
	e := bookingServer(svc)
	auth := bearer(t, 4, model.RoleCustomer)

	rec := call(e, http.MethodPatch, "/bookings/8/", auth, `{"check_out_date":"2024-01-05"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, service.BookingInput{
		RoomID:          3,
		CheckInDate:     date("2024-01-01"),
		CheckOutDate:    date("2024-01-05"),
		NumberOfGuests:  2,
		SpecialRequests: "late arrival",
	}, svc.lastInput)

	rec = call(e, http.MethodPut, "/bookings/8/", auth, `{"check_out_date":"2024-01-05"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint64(0), svc.lastInput.RoomID, "PUT starts from an empty booking")

	rec = call(e, http.MethodPatch, "/bookings/8/", bearer(t, 5, model.RoleCustomer), `{"number_of_guests":1}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBookings_Cancel(t *testing.T) {
	svc := &fakeBookings{stored: map[uint64]*model.Booking{
		1: {ID: 1, UserID: 4, Status: model.BookingConfirmed},
		2: {ID: 2, UserID: 4, Status: model.BookingCompleted},
	}}
	e := bookingServer(svc)
	auth := bearer(t, 4, model.RoleCustomer)

	rec := call(e, http.MethodPost, "/bookings/1/cancel/", auth, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.BookingCancelled, decode[model.Booking](t, rec).Status)

	rec = call(e, http.MethodPost, "/bookings/2/cancel/", auth, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Only pending or confirmed bookings can be cancelled", decode[apperr.Response](t, rec).Error)

	assert.Equal(t, http.StatusNotFound, call(e, http.MethodPost, "/bookings/1/cancel/", bearer(t, 5, model.RoleCustomer), "").Code)
	assert.Equal(t, http.StatusNoContent, call(e, http.MethodDelete, "/bookings/1/", auth, "").Code)
}
