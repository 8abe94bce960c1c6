package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dholimara/homestay-api/internal/apperr"
	"github.com/dholimara/homestay-api/internal/logger"
	"github.com/dholimara/homestay-api/internal/media"
	"github.com/dholimara/homestay-api/internal/middleware"
	"github.com/dholimara/homestay-api/internal/model"
)

// UploadHandler accepts staff image uploads. The returned path is what
// image fields of other resources expect.
type UploadHandler struct {
	storage *media.Storage
	media   media.Resolver
	log     *logger.Logger
}

func NewUploadHandler(storage *media.Storage, resolver media.Resolver, log *logger.Logger) *UploadHandler {
	if storage == nil || log == nil {
		panic("nil dependency passed to NewUploadHandler")
	}
	return &UploadHandler{storage: storage, media: resolver, log: log}
}

type uploadResp struct {
	Path string      `json:"path"`
	URL  model.Image `json:"url"`
}

// Upload stores the multipart "file" field under the "folder" form value.
func (h *UploadHandler) Upload(c echo.Context) error {
	folder := c.FormValue("folder")
	if folder == "" {
		return fail(c, apperr.Field("folder", "This field is required."))
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return fail(c, apperr.Field("file", "No file was submitted."))
	}
	rel, err := h.storage.Save(folder, fh)
	if err != nil {
		return fail(c, uploadError("file", err))
	}
	h.log.Info("media uploaded", "path", rel, "size", fh.Size, "request_id", middleware.RequestID(c))
	return c.JSON(http.StatusCreated, uploadResp{
		Path: rel,
		URL:  h.media.ForRequest(c)(model.Image(rel)),
	})
}
