// Package handler contains the echo handlers. Handlers depend on small
// interfaces declared next to them and are built with New* constructors
// that panic on missing dependencies.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dholimara/homestay-api/internal/apperr"
	"github.com/dholimara/homestay-api/internal/middleware"
	"github.com/dholimara/homestay-api/internal/model"
	"github.com/dholimara/homestay-api/internal/repository"
	"github.com/dholimara/homestay-api/internal/service"
)

// dbTimeout bounds the database work of a single request.
const dbTimeout = 5 * time.Second

func dbCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// list is the envelope of every collection response.
type list[T any] struct {
	Items []T `json:"items"`
}

func items[T any](c echo.Context, in []T) error {
	if in == nil {
		in = []T{}
	}
	return c.JSON(http.StatusOK, list[T]{Items: in})
}

// pathID parses the :id path parameter.
func pathID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.NotFound("Resource")
	}
	return id, nil
}

// queryUint parses an optional unsigned query parameter.
func queryUint(c echo.Context, name string) (uint64, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, apperr.Field(name, "A valid integer is required.")
	}
	return n, nil
}

// queryBool parses an optional boolean query parameter.
func queryBool(c echo.Context, name string) (*bool, error) {
	raw := strings.ToLower(strings.TrimSpace(c.QueryParam(name)))
	switch raw {
	case "":
		return nil, nil
	case "true", "1", "yes":
		v := true
		return &v, nil
	case "false", "0", "no":
		v := false
		return &v, nil
	}
	return nil, apperr.Field(name, "Must be a valid boolean.")
}

func queryDate(c echo.Context, name string) (model.Date, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return model.Date{}, nil
	}
	d, err := model.ParseDate(raw)
	if err != nil {
		return model.Date{}, apperr.Field(name, err.Error())
	}
	return d, nil
}

// bind decodes the request body into dst. Decoding errors surface as 400.
func bind(c echo.Context, dst any) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, dst); err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			if errors.Is(he.Internal, model.ErrInvalidDate) {
				return apperr.BadRequest(model.ErrInvalidDate.Error())
			}
			return apperr.BadRequest("invalid body")
		}
		return apperr.BadRequest(err.Error())
	}
	return nil
}

// bindValid decodes and validates dst.
func bindValid(c echo.Context, dst any) error {
	if err := bind(c, dst); err != nil {
		return err
	}
	return c.Validate(dst)
}

// actor is the authenticated caller. Routes using it sit behind RequireAuth.
func actor(c echo.Context) (service.Actor, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return service.Actor{}, apperr.Unauthorized("authentication credentials were not provided")
	}
	return service.Actor{UserID: id, Staff: middleware.IsStaff(c)}, nil
}

// fail translates repository sentinels and hands the result back to echo,
// whose HTTPErrorHandler renders it after the request logger has seen it.
func fail(_ echo.Context, err error) error {
	return translate(err)
}

func translate(err error) error {
	var ae *apperr.Error
	switch {
	case errors.As(err, &ae):
		return ae
	case errors.Is(err, context.DeadlineExceeded):
		return apperr.Internal("database timeout", err)
	case errors.Is(err, repository.ErrUserNotFound):
		return apperr.NotFound("User")
	case errors.Is(err, repository.ErrHomestayNotFound):
		return apperr.NotFound("Homestay")
	case errors.Is(err, repository.ErrImageNotFound):
		return apperr.NotFound("Image")
	case errors.Is(err, repository.ErrRoomNotFound):
		return apperr.NotFound("Room")
	case errors.Is(err, repository.ErrBookingNotFound):
		return apperr.NotFound("Booking")
	case errors.Is(err, repository.ErrReviewNotFound):
		return apperr.NotFound("Review")
	case errors.Is(err, repository.ErrContentNotFound):
		return apperr.NotFound("Content")
	case errors.Is(err, repository.ErrEmailExists):
		return apperr.Conflict("A user with that email already exists.")
	case errors.Is(err, repository.ErrUsernameExists):
		return apperr.Conflict("A user with that username already exists.")
	case errors.Is(err, repository.ErrReviewExists):
		return apperr.Conflict("This booking already has a review.")
	case errors.Is(err, repository.ErrConflict):
		return apperr.Conflict("A record with these values already exists.")
	case errors.Is(err, repository.ErrInvalidReference):
		return apperr.BadRequest("A referenced record does not exist.")
	case errors.Is(err, repository.ErrInvalidFilter):
		return apperr.BadRequest(err.Error())
	}
	return apperr.Internal("internal server error", err)
}
