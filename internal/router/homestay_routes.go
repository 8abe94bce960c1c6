package router

import (
	"github.com/labstack/echo/v4"

	"github.com/dholimara/homestay-api/internal/handler"
	"github.com/dholimara/homestay-api/internal/middleware"
)

// RegisterHomestays registers families, the image pool and rooms. Reads of
// families and rooms are public; every write is staff only.
func RegisterHomestays(e *echo.Echo, h *handler.HomestayHandler, img *handler.ImageHandler, r *handler.RoomHandler) {
	writes := middleware.SafeMethodsOr(staffOnly())

	// ---- Families ----
	f := e.Group("/families", writes)
	f.GET("/", h.List)
	f.GET("/featured/", h.Featured)
	f.GET("/:id/", h.Get)
	f.POST("/", h.Create)
	f.PUT("/:id/", h.Update)
	f.PATCH("/:id/", h.Update)
	f.DELETE("/:id/", h.Delete)

	// ---- Images ----
	i := e.Group("/images", staffOnly())
	i.GET("/", img.List)
	i.GET("/:id/", img.Get)
	i.POST("/", img.Create)
	i.PUT("/:id/", img.Update)
	i.PATCH("/:id/", img.Update)
	i.DELETE("/:id/", img.Delete)

	// ---- Rooms ----
	// check_availability is a read despite being a POST
	e.POST("/rooms/check_availability/", r.CheckAvailability)
	g := e.Group("/rooms", writes)
	g.GET("/", r.List)
	g.GET("/:id/", r.Get)
	g.POST("/", r.Create)
	g.PUT("/:id/", r.Update)
	g.PATCH("/:id/", r.Update)
	g.DELETE("/:id/", r.Delete)
}
