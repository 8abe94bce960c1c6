package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dholimara/homestay-api/internal/logger"
	"github.com/dholimara/homestay-api/internal/media"
	"github.com/dholimara/homestay-api/internal/model"
	"github.com/dholimara/homestay-api/internal/repository"
)

type fakeContent[T any] struct {
	query   repository.ContentQuery
	stored  map[uint64]*T
	written *T
	id      uint64
}

func (f *fakeContent[T]) List(_ context.Context, q repository.ContentQuery) ([]*T, error) {
	f.query = q
	out := []*T{}
	for _, v := range f.stored {
		cp := *v
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeContent[T]) GetByID(_ context.Context, id uint64) (*T, error) {
	v, ok := f.stored[id]
	if !ok {
		return nil, repository.ErrContentNotFound
	}
	cp := *v
	return &cp, nil
}

func (f *fakeContent[T]) Create(_ context.Context, item *T) (*T, error) {
	cp := *item
	f.written = &cp
	return item, nil
}

func (f *fakeContent[T]) Update(_ context.Context, id uint64, item *T) (*T, error) {
	if _, ok := f.stored[id]; !ok {
		return nil, repository.ErrContentNotFound
	}
	cp := *item
	f.written, f.id = &cp, id
	return item, nil
}

func (f *fakeContent[T]) Delete(_ context.Context, id uint64) error {
	if _, ok := f.stored[id]; !ok {
		return repository.ErrContentNotFound
	}
	delete(f.stored, id)
	return nil
}

func eventServer(store *fakeContent[model.CulturalEvent]) *echo.Echo {
	h := NewContentHandler[model.CulturalEvent]("cultural-events", store, media.NewResolver("/media/"), logger.Discard())
	e := newEcho()
	e.GET("/village/cultural-events/", h.List)
	e.GET("/village/cultural-events/:id/", h.Get)
	e.POST("/village/cultural-events/", h.Create)
	e.PUT("/village/cultural-events/:id/", h.Update)
	e.PATCH("/village/cultural-events/:id/", h.Update)
	e.DELETE("/village/cultural-events/:id/", h.Delete)
	return e
}

func TestContent_ListPassesFiltersAndResolvesImages(t *testing.T) {
	store := &fakeContent[model.CulturalEvent]{stored: map[uint64]*model.CulturalEvent{
		1: {ID: 1, Title: "Tihar", FeaturedImage: "cultural_events/tihar.jpg"},
	}}
	e := eventServer(store)

	rec := call(e, http.MethodGet, "/village/cultural-events/?search=festival&category=2&is_featured=true", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "festival", store.query.Search)
	assert.Equal(t, map[string]string{"category": "2", "is_featured": "true"}, store.query.Filters)

	got := decode[list[model.CulturalEvent]](t, rec)
	require.Len(t, got.Items, 1)
	assert.Equal(t, model.Image("http://example.com/media/cultural_events/tihar.jpg"), got.Items[0].FeaturedImage)
}

func TestContent_CreateDerivesSlugAndStoresPath(t *testing.T) {
	store := &fakeContent[model.CulturalEvent]{}
	e := eventServer(store)

	rec := call(e, http.MethodPost, "/village/cultural-events/", bearer(t, 1, model.RoleStaff),
		`{"title":"Maghe Sankranti Fair","category":2,"description":"d","featured_image":"/media/cultural_events/m.jpg"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "maghe-sankranti-fair", store.written.Slug)
	assert.Equal(t, model.Image("cultural_events/m.jpg"), store.written.FeaturedImage)

	rec = call(e, http.MethodPost, "/village/cultural-events/", bearer(t, 1, model.RoleStaff), `{"title":"No category"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestContent_PatchAndDelete(t *testing.T) {
	store := &fakeContent[model.CulturalEvent]{stored: map[uint64]*model.CulturalEvent{
		3: {ID: 3, Title: "Tihar", Slug: "tihar", CategoryID: 2, Description: "lights", FeaturedImage: "cultural_events/t.jpg"},
	}}
	e := eventServer(store)
	staff := bearer(t, 1, model.RoleStaff)

	rec := call(e, http.MethodPatch, "/village/cultural-events/3/", staff, `{"is_featured":true}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, uint64(3), store.id)
	assert.True(t, store.written.IsFeatured)
	assert.Equal(t, "lights", store.written.Description)

	assert.Equal(t, http.StatusNotFound, call(e, http.MethodPatch, "/village/cultural-events/9/", staff, `{}`).Code)
	assert.Equal(t, http.StatusNoContent, call(e, http.MethodDelete, "/village/cultural-events/3/", staff, "").Code)
	assert.Equal(t, http.StatusNotFound, call(e, http.MethodGet, "/village/cultural-events/3/", "", "").Code)
}
