package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dholimara/homestay-api/internal/apperr"
	"github.com/dholimara/homestay-api/internal/logger"
	"github.com/dholimara/homestay-api/internal/model"
	"github.com/dholimara/homestay-api/internal/repository"
	"github.com/dholimara/homestay-api/internal/service"
)

type ReviewStore interface {
	List(ctx context.Context, f repository.ReviewFilter) ([]model.Review, error)
	GetByID(ctx context.Context, id uint64) (*model.Review, error)
	Create(ctx context.Context, rv *model.Review) error
	Update(ctx context.Context, rv *model.Review) error
	Delete(ctx context.Context, id uint64) error
}

// ReviewHandler serves /reviews/. Reads are public, writes belong to the
// author or staff.
type ReviewHandler struct {
	reviews  ReviewStore
	bookings service.BookingService
	log      *logger.Logger
}

func NewReviewHandler(reviews ReviewStore, bookings service.BookingService, log *logger.Logger) *ReviewHandler {
	if reviews == nil || bookings == nil || log == nil {
		panic("nil dependency passed to NewReviewHandler")
	}
	return &ReviewHandler{reviews: reviews, bookings: bookings, log: log}
}

func (h *ReviewHandler) List(c echo.Context) error {
	homestay, err := queryUint(c, "homestay")
	if err != nil {
		return fail(c, err)
	}
	rating, err := queryUint(c, "rating")
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	out, err := h.reviews.List(ctx, repository.ReviewFilter{HomestayID: homestay, Rating: int(rating)})
	if err != nil {
		return fail(c, err)
	}
	return items(c, out)
}

func (h *ReviewHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	rv, err := h.reviews.GetByID(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, rv)
}

type reviewReq struct {
	Homestay *uint64 `json:"homestay"`
	Booking  *uint64 `json:"booking"`
	Rating   *int    `json:"rating"`
	Comment  *string `json:"comment"`
}

func (r reviewReq) apply(rv *model.Review) {
	if r.Homestay != nil {
		rv.HomestayID = *r.Homestay
	}
	if r.Booking != nil {
		rv.BookingID = r.Booking
		if *r.Booking == 0 {
			rv.BookingID = nil
		}
	}
	if r.Rating != nil {
		rv.Rating = *r.Rating
	}
	if r.Comment != nil {
		rv.Comment = *r.Comment
	}
}

// Create records a review by the caller.
func (h *ReviewHandler) Create(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return fail(c, err)
	}
	var req reviewReq
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	rv := model.Review{UserID: a.UserID}
	req.apply(&rv)

	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.check(ctx, c, &rv); err != nil {
		return fail(c, err)
	}
	if err := h.reviews.Create(ctx, &rv); err != nil {
		return fail(c, reviewWriteError(err))
	}
	h.log.Info("review created", "review_id", rv.ID, "homestay_id", rv.HomestayID, "user_id", a.UserID)
	return c.JSON(http.StatusCreated, rv)
}

func (h *ReviewHandler) Update(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}
	var req reviewReq
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}

	ctx, cancel := dbCtx(c)
	defer cancel()
	rv, err := h.owned(ctx, a, id)
	if err != nil {
		return fail(c, err)
	}
	if c.Request().Method == http.MethodPut {
		*rv = model.Review{ID: rv.ID, UserID: rv.UserID}
	}
	req.apply(rv)
	if err := h.check(ctx, c, rv); err != nil {
		return fail(c, err)
	}
	if err := h.reviews.Update(ctx, rv); err != nil {
		return fail(c, reviewWriteError(err))
	}
	return c.JSON(http.StatusOK, rv)
}

func (h *ReviewHandler) Delete(c echo.Context) error {
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
	if _, err := h.owned(ctx, a, id); err != nil {
		return fail(c, err)
	}
	if err := h.reviews.Delete(ctx, id); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ReviewHandler) owned(ctx context.Context, a service.Actor, id uint64) (*model.Review, error) {
	rv, err := h.reviews.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rv.UserID != a.UserID && !a.Staff {
		return nil, apperr.Forbidden("You do not have permission to perform this action.")
	}
	return rv, nil
}

// check validates rv and makes sure a referenced booking belongs to the
// review's author and homestay.
func (h *ReviewHandler) check(ctx context.Context, c echo.Context, rv *model.Review) error {
	if err := c.Validate(rv); err != nil {
		return err
	}
	if rv.BookingID == nil {
		return nil
	}
	b, err := h.bookings.Get(ctx, service.Actor{UserID: rv.UserID}, *rv.BookingID)
	if apperr.Is(err, apperr.CodeNotFound) {
		return apperr.Field("booking", "Invalid booking.")
	}
	if err != nil {
		return err
	}
	if b.HomestayID != rv.HomestayID {
		return apperr.Field("booking", "The booking is not for this homestay.")
	}
	return nil
}

func reviewWriteError(err error) error {
	if errors.Is(err, repository.ErrInvalidReference) {
		return apperr.Field("homestay", "Invalid homestay.")
	}
	return err
}
