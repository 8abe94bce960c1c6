package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dholimara/homestay-api/internal/logger"
	"github.com/dholimara/homestay-api/internal/media"
	"github.com/dholimara/homestay-api/internal/middleware"
	"github.com/dholimara/homestay-api/internal/model"
	"github.com/dholimara/homestay-api/internal/repository"
)

// featuredLimit is the size of the featured homestay list.
const featuredLimit = 5

type HomestayStore interface {
	List(ctx context.Context, f repository.HomestayFilter) ([]model.HomestayFamily, error)
	Featured(ctx context.Context, limit int) ([]model.HomestayFamily, error)
	GetByID(ctx context.Context, id uint64, activeOnly bool) (*model.HomestayFamily, error)
	Create(ctx context.Context, h *model.HomestayFamily) error
	Update(ctx context.Context, h *model.HomestayFamily) error
	Delete(ctx context.Context, id uint64) error
}

type ImageStore interface {
	List(ctx context.Context) ([]model.HomestayImage, error)
	GetByID(ctx context.Context, id uint64) (*model.HomestayImage, error)
	Create(ctx context.Context, img *model.HomestayImage) error
	Update(ctx context.Context, img *model.HomestayImage) error
	Delete(ctx context.Context, id uint64) error
}

// HomestayHandler serves /families/. Anonymous and customer callers only
// see active homestays.
type HomestayHandler struct {
	homestays HomestayStore
	media     media.Resolver
	log       *logger.Logger
}

func NewHomestayHandler(homestays HomestayStore, resolver media.Resolver, log *logger.Logger) *HomestayHandler {
	if homestays == nil || log == nil {
		panic("nil dependency passed to NewHomestayHandler")
	}
	return &HomestayHandler{homestays: homestays, media: resolver, log: log}
}

func (h *HomestayHandler) List(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()
	out, err := h.homestays.List(ctx, repository.HomestayFilter{
		ActiveOnly: !middleware.IsStaff(c),
		Search:     c.QueryParam("search"),
	})
	if err != nil {
		return fail(c, err)
	}
	return items(c, h.resolveAll(c, out))
}

// Featured lists the best rated active homestays.
func (h *HomestayHandler) Featured(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()
	out, err := h.homestays.Featured(ctx, featuredLimit)
	if err != nil {
		return fail(c, err)
	}
	return items(c, h.resolveAll(c, out))
}

func (h *HomestayHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	hs, err := h.homestays.GetByID(ctx, id, !middleware.IsStaff(c))
	if err != nil {
		return fail(c, err)
	}
	hs.ResolveMedia(h.media.ForRequest(c))
	return c.JSON(http.StatusOK, hs)
}

func (h *HomestayHandler) Create(c echo.Context) error {
	hs := model.HomestayFamily{IsActive: true}
	if err := bindValid(c, &hs); err != nil {
		return fail(c, err)
	}
	hs.ID = 0
	hs.FeaturedImage = h.media.Stored(hs.FeaturedImage)

	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.homestays.Create(ctx, &hs); err != nil {
		return fail(c, err)
	}
	h.log.Info("homestay created", "homestay_id", hs.ID, "request_id", middleware.RequestID(c))
	hs.ResolveMedia(h.media.ForRequest(c))
	return c.JSON(http.StatusCreated, hs)
}

// Update serves PUT and PATCH. PATCH decodes onto the stored record so
// that absent fields keep their values.
func (h *HomestayHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	current, err := h.homestays.GetByID(ctx, id, false)
	if err != nil {
		return fail(c, err)
	}
	next := model.HomestayFamily{IsActive: true}
	if c.Request().Method == http.MethodPatch {
		next = *current
		next.GalleryIDs = galleryIDs(current.Gallery)
	}
	if err := bindValid(c, &next); err != nil {
		return fail(c, err)
	}
	next.ID = id
	next.FeaturedImage = h.media.Stored(next.FeaturedImage)

	if err := h.homestays.Update(ctx, &next); err != nil {
		return fail(c, err)
	}
	next.ResolveMedia(h.media.ForRequest(c))
	return c.JSON(http.StatusOK, next)
}

func (h *HomestayHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.homestays.Delete(ctx, id); err != nil {
		return fail(c, err)
	}
	h.log.Info("homestay deleted", "homestay_id", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *HomestayHandler) resolveAll(c echo.Context, in []model.HomestayFamily) []model.HomestayFamily {
	fn := h.media.ForRequest(c)
	for i := range in {
		in[i].ResolveMedia(fn)
	}
	return in
}

func galleryIDs(imgs []model.HomestayImage) []uint64 {
	ids := make([]uint64, 0, len(imgs))
	for _, img := range imgs {
		ids = append(ids, img.ID)
	}
	return ids
}

// ImageHandler serves the staff-only /images/ gallery pool.
type ImageHandler struct {
	images ImageStore
	media  media.Resolver
}

func NewImageHandler(images ImageStore, resolver media.Resolver) *ImageHandler {
	if images == nil {
		panic("nil dependency passed to NewImageHandler")
	}
	return &ImageHandler{images: images, media: resolver}
}

func (h *ImageHandler) List(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()
	out, err := h.images.List(ctx)
	if err != nil {
		return fail(c, err)
	}
	fn := h.media.ForRequest(c)
	for i := range out {
		out[i].ResolveMedia(fn)
	}
	return items(c, out)
}

func (h *ImageHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	img, err := h.images.GetByID(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	img.ResolveMedia(h.media.ForRequest(c))
	return c.JSON(http.StatusOK, img)
}

func (h *ImageHandler) Create(c echo.Context) error {
	var img model.HomestayImage
	if err := bindValid(c, &img); err != nil {
		return fail(c, err)
	}
	img.ID = 0
	img.Image = h.media.Stored(img.Image)

	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.images.Create(ctx, &img); err != nil {
		return fail(c, err)
	}
	img.ResolveMedia(h.media.ForRequest(c))
	return c.JSON(http.StatusCreated, img)
}

func (h *ImageHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	current, err := h.images.GetByID(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	var next model.HomestayImage
	if c.Request().Method == http.MethodPatch {
		next = *current
	}
	if err := bindValid(c, &next); err != nil {
		return fail(c, err)
	}
	next.ID = id
	next.CreatedAt = current.CreatedAt
	next.Image = h.media.Stored(next.Image)
	if err := h.images.Update(ctx, &next); err != nil {
		return fail(c, err)
	}
	next.ResolveMedia(h.media.ForRequest(c))
	return c.JSON(http.StatusOK, next)
}

func (h *ImageHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.images.Delete(ctx, id); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
