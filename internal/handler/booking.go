package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/dholimara/homestay-api/internal/apperr"
	"github.com/dholimara/homestay-api/internal/model"
	"github.com/dholimara/homestay-api/internal/repository"
	"github.com/dholimara/homestay-api/internal/service"
)

// BookingHandler serves /bookings/. Every route sits behind RequireAuth.
type BookingHandler struct {
	svc service.BookingService
}

func NewBookingHandler(svc service.BookingService) *BookingHandler {
	if svc == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{svc: svc}
}

// bookingReq holds the writable fields. total_price, status and
// booking_date are read-only and silently ignored.
type bookingReq struct {
	Room            *uint64     `json:"room"`
	CheckInDate     *model.Date `json:"check_in_date"`
	CheckOutDate    *model.Date `json:"check_out_date"`
	NumberOfGuests  *int        `json:"number_of_guests"`
	SpecialRequests *string     `json:"special_requests"`
}

// merge overlays the fields present in the request onto in.
func (r bookingReq) merge(in service.BookingInput) service.BookingInput {
	if r.Room != nil {
		in.RoomID = *r.Room
	}
	if r.CheckInDate != nil {
		in.CheckInDate = *r.CheckInDate
	}
	if r.CheckOutDate != nil {
		in.CheckOutDate = *r.CheckOutDate
	}
	if r.NumberOfGuests != nil {
		in.NumberOfGuests = *r.NumberOfGuests
	}
	if r.SpecialRequests != nil {
		in.SpecialRequests = strings.TrimSpace(*r.SpecialRequests)
	}
	return in
}

func (h *BookingHandler) List(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return fail(c, err)
	}
	f := repository.BookingFilter{Status: strings.TrimSpace(c.QueryParam("status"))}
	if f.Status != "" && !model.ValidStatus(f.Status) {
		return fail(c, apperr.Field("status", "Select a valid choice. "+f.Status+" is not one of the available choices."))
	}
	if f.RoomID, err = queryUint(c, "room"); err != nil {
		return fail(c, err)
	}
	if f.CheckInDate, err = queryDate(c, "check_in_date"); err != nil {
		return fail(c, err)
	}
	if f.CheckOutDate, err = queryDate(c, "check_out_date"); err != nil {
		return fail(c, err)
	}

	ctx, cancel := dbCtx(c)
	defer cancel()
	out, err := h.svc.List(ctx, a, f)
	if err != nil {
		return fail(c, err)
	}
	return items(c, out)
}

func (h *BookingHandler) Create(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return fail(c, err)
	}
	var req bookingReq
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	b, err := h.svc.Create(ctx, a, req.merge(service.BookingInput{}))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, b)
}

func (h *BookingHandler) Get(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	b, err := h.svc.Get(ctx, a, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// Update serves PUT and PATCH. PATCH keeps the stored value of every field
// the body leaves out; PUT requires them all.
func (h *BookingHandler) Update(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}
	var req bookingReq
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	var base service.BookingInput
	if c.Request().Method == http.MethodPatch {
		cur, err := h.svc.Get(ctx, a, id)
		if err != nil {
			return fail(c, err)
		}
		base = service.BookingInput{
			RoomID:          cur.RoomID,
			CheckInDate:     cur.CheckInDate,
			CheckOutDate:    cur.CheckOutDate,
			NumberOfGuests:  cur.NumberOfGuests,
			SpecialRequests: cur.SpecialRequests,
		}
	}
	b, err := h.svc.Update(ctx, a, id, req.merge(base))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) Delete(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.svc.Delete(ctx, a, id); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Cancel returns the cancelled booking.
func (h *BookingHandler) Cancel(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	b, err := h.svc.Cancel(ctx, a, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, b)
}
