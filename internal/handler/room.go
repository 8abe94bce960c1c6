package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/dholimara/homestay-api/internal/apperr"
	"github.com/dholimara/homestay-api/internal/logger"
	"github.com/dholimara/homestay-api/internal/media"
	"github.com/dholimara/homestay-api/internal/middleware"
	"github.com/dholimara/homestay-api/internal/model"
	"github.com/dholimara/homestay-api/internal/repository"
	"github.com/dholimara/homestay-api/internal/service"
)

type RoomStore interface {
	List(ctx context.Context, f repository.RoomFilter) ([]model.Room, error)
	GetByID(ctx context.Context, id uint64, availableOnly bool) (*model.Room, error)
	Create(ctx context.Context, rm *model.Room) error
	Update(ctx context.Context, rm *model.Room) error
	Delete(ctx context.Context, id uint64) error
}

// RoomHandler serves /rooms/. Non-staff callers only see rooms that are
// open for booking.
type RoomHandler struct {
	rooms    RoomStore
	bookings service.BookingService
	media    media.Resolver
	log      *logger.Logger
}

func NewRoomHandler(rooms RoomStore, bookings service.BookingService, resolver media.Resolver, log *logger.Logger) *RoomHandler {
	if rooms == nil || bookings == nil || log == nil {
		panic("nil dependency passed to NewRoomHandler")
	}
	return &RoomHandler{rooms: rooms, bookings: bookings, media: resolver, log: log}
}

func (h *RoomHandler) List(c echo.Context) error {
	homestay, err := queryUint(c, "homestay")
	if err != nil {
		return fail(c, err)
	}
	capacity, err := queryUint(c, "capacity")
	if err != nil {
		return fail(c, err)
	}
	avail, err := queryBool(c, "is_available")
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	out, err := h.rooms.List(ctx, repository.RoomFilter{
		HomestayID:    homestay,
		Capacity:      int(capacity),
		AvailableOnly: !middleware.IsStaff(c),
		IsAvailable:   avail,
		Search:        c.QueryParam("search"),
	})
	if err != nil {
		return fail(c, err)
	}
	return items(c, h.resolveAll(c, out))
}

func (h *RoomHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	rm, err := h.rooms.GetByID(ctx, id, !middleware.IsStaff(c))
	if err != nil {
		return fail(c, err)
	}
	rm.ResolveMedia(h.media.ForRequest(c))
	return c.JSON(http.StatusOK, rm)
}

// flexInt accepts a JSON number or a numeric string.
type flexInt int

func (n *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		var f float64
		if jerr := json.Unmarshal([]byte(s), &f); jerr != nil {
			return err
		}
		v = int(f)
	}
	*n = flexInt(v)
	return nil
}

type availabilityReq struct {
	CheckInDate  string  `json:"check_in_date" form:"check_in_date"`
	CheckOutDate string  `json:"check_out_date" form:"check_out_date"`
	Capacity     flexInt `json:"capacity" form:"capacity"`
}

// CheckAvailability lists rooms free for the whole requested stay.
func (h *RoomHandler) CheckAvailability(c echo.Context) error {
	var req availabilityReq
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	if strings.TrimSpace(req.CheckInDate) == "" || strings.TrimSpace(req.CheckOutDate) == "" {
		return fail(c, apperr.BadRequest("Please provide both check_in_date and check_out_date"))
	}
	in, err := model.ParseDate(req.CheckInDate)
	if err != nil {
		return fail(c, apperr.BadRequest(err.Error()))
	}
	out, err := model.ParseDate(req.CheckOutDate)
	if err != nil {
		return fail(c, apperr.BadRequest(err.Error()))
	}

	ctx, cancel := dbCtx(c)
	defer cancel()
	rooms, err := h.bookings.CheckAvailability(ctx, model.Stay{CheckIn: in, CheckOut: out}, int(req.Capacity))
	if err != nil {
		return fail(c, err)
	}
	return items(c, h.resolveAll(c, rooms))
}

func (h *RoomHandler) Create(c echo.Context) error {
	rm := model.Room{IsAvailable: true}
	if err := bindValid(c, &rm); err != nil {
		return fail(c, err)
	}
	if err := h.prepare(&rm); err != nil {
		return fail(c, err)
	}
	rm.ID = 0

	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.rooms.Create(ctx, &rm); err != nil {
		return fail(c, roomWriteError(err))
	}
	h.log.Info("room created", "room_id", rm.ID, "homestay_id", rm.HomestayID)
	rm.ResolveMedia(h.media.ForRequest(c))
	return c.JSON(http.StatusCreated, rm)
}

// Update serves PUT and PATCH. Totals of existing bookings are never
// recomputed when the nightly rate changes.
func (h *RoomHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	current, err := h.rooms.GetByID(ctx, id, false)
	if err != nil {
		return fail(c, err)
	}
	next := model.Room{IsAvailable: true}
	if c.Request().Method == http.MethodPatch {
		next = *current
		next.GalleryIDs = galleryIDs(current.Gallery)
		// a patched decimal price must not lose to the stored cents
		next.PricePerNightCents = 0
	}
	if err := bindValid(c, &next); err != nil {
		return fail(c, err)
	}
	if err := h.prepare(&next); err != nil {
		return fail(c, err)
	}
	next.ID = id
	if err := h.rooms.Update(ctx, &next); err != nil {
		return fail(c, roomWriteError(err))
	}
	if next.PricePerNightCents != current.PricePerNightCents {
		h.log.Info("room price changed", "room_id", id,
			"old_cents", current.PricePerNightCents, "new_cents", next.PricePerNightCents)
	}
	next.ResolveMedia(h.media.ForRequest(c))
	return c.JSON(http.StatusOK, next)
}

func (h *RoomHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.rooms.Delete(ctx, id); err != nil {
		return fail(c, err)
	}
	h.log.Info("room deleted", "room_id", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *RoomHandler) prepare(rm *model.Room) error {
	rm.SyncPrice()
	if rm.PricePerNightCents <= 0 {
		return apperr.Field("price_per_night", "This field is required.")
	}
	rm.FeaturedImage = h.media.Stored(rm.FeaturedImage)
	return nil
}

func (h *RoomHandler) resolveAll(c echo.Context, in []model.Room) []model.Room {
	fn := h.media.ForRequest(c)
	for i := range in {
		in[i].ResolveMedia(fn)
	}
	return in
}

// roomWriteError reports an unknown homestay against the homestay field.
func roomWriteError(err error) error {
	if errors.Is(err, repository.ErrInvalidReference) {
		return apperr.Field("homestay", "Invalid homestay.")
	}
	return err
}
