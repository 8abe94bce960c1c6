package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dholimara/homestay-api/internal/logger"
	"github.com/dholimara/homestay-api/internal/media"
	"github.com/dholimara/homestay-api/internal/model"
	"github.com/dholimara/homestay-api/internal/repository"
)

// ContentStore is the CRUD surface of one village content table.
type ContentStore[T any] interface {
	List(ctx context.Context, q repository.ContentQuery) ([]*T, error)
	GetByID(ctx context.Context, id uint64) (*T, error)
	Create(ctx context.Context, item *T) (*T, error)
	Update(ctx context.Context, id uint64, item *T) (*T, error)
	Delete(ctx context.Context, id uint64) error
}

type preparer interface{ Prepare() }

type mediaHolder interface {
	ResolveMedia(fn func(model.Image) model.Image)
}

// ContentHandler serves one /village/<kind>/ collection.
type ContentHandler[T any] struct {
	kind  string
	store ContentStore[T]
	media media.Resolver
	log   *logger.Logger
}

func NewContentHandler[T any](kind string, store ContentStore[T], resolver media.Resolver, log *logger.Logger) *ContentHandler[T] {
	if store == nil || log == nil {
		panic("nil dependency passed to NewContentHandler")
	}
	return &ContentHandler[T]{kind: kind, store: store, media: resolver, log: log}
}

func (h *ContentHandler[T]) List(c echo.Context) error {
	q := repository.ContentQuery{Search: c.QueryParam("search"), Filters: map[string]string{}}
	for k, v := range c.QueryParams() {
		if k != "search" && len(v) > 0 {
			q.Filters[k] = v[0]
		}
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	out, err := h.store.List(ctx, q)
	if err != nil {
		return fail(c, err)
	}
	fn := h.media.ForRequest(c)
	for _, item := range out {
		resolve(item, fn)
	}
	return items(c, out)
}

func (h *ContentHandler[T]) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	item, err := h.store.GetByID(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	resolve(item, h.media.ForRequest(c))
	return c.JSON(http.StatusOK, item)
}

func (h *ContentHandler[T]) Create(c echo.Context) error {
	item := new(T)
	if err := h.decode(c, item); err != nil {
		return fail(c, err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	saved, err := h.store.Create(ctx, item)
	if err != nil {
		return fail(c, err)
	}
	h.log.Info("village content created", "kind", h.kind)
	resolve(saved, h.media.ForRequest(c))
	return c.JSON(http.StatusCreated, saved)
}

// Update serves PUT and PATCH; PATCH decodes onto the stored record.
func (h *ContentHandler[T]) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	item := new(T)
	if c.Request().Method == http.MethodPatch {
		if item, err = h.store.GetByID(ctx, id); err != nil {
			return fail(c, err)
		}
	}
	if err := h.decode(c, item); err != nil {
		return fail(c, err)
	}
	saved, err := h.store.Update(ctx, id, item)
	if err != nil {
		return fail(c, err)
	}
	resolve(saved, h.media.ForRequest(c))
	return c.JSON(http.StatusOK, saved)
}

func (h *ContentHandler[T]) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.store.Delete(ctx, id); err != nil {
		return fail(c, err)
	}
	h.log.Info("village content deleted", "kind", h.kind, "id", id)
	return c.NoContent(http.StatusNoContent)
}

// decode binds, derives slugs, validates and turns echoed image URLs back
// into stored paths.
func (h *ContentHandler[T]) decode(c echo.Context, item *T) error {
	if err := bind(c, item); err != nil {
		return err
	}
	if p, ok := any(item).(preparer); ok {
		p.Prepare()
	}
	if err := c.Validate(item); err != nil {
		return err
	}
	resolve(item, h.media.Stored)
	return nil
}

func resolve[T any](item *T, fn func(model.Image) model.Image) {
	if m, ok := any(item).(mediaHolder); ok {
		m.ResolveMedia(fn)
	}
}
