package router

import (
	"github.com/labstack/echo/v4"

	"github.com/dholimara/homestay-api/internal/middleware"
)

// ReadHandler serves a read-only collection.
type ReadHandler interface {
	List(c echo.Context) error
	Get(c echo.Context) error
}

// CRUDHandler serves a collection staff can edit.
type CRUDHandler interface {
	ReadHandler
	Create(c echo.Context) error
	Update(c echo.Context) error
	Delete(c echo.Context) error
}

// VillageSection binds a CRUD handler to its path below /village.
type VillageSection struct {
	Path    string // e.g. "/cultural-events"
	Handler CRUDHandler
}

// RegisterVillage registers the read-only categories and every editable
// content section.
func RegisterVillage(e *echo.Echo, categories ReadHandler, sections []VillageSection) {
	v := e.Group("/village")
	v.GET("/categories/", categories.List)
	v.GET("/categories/:id/", categories.Get)

	for _, s := range sections {
		g := v.Group(s.Path, middleware.SafeMethodsOr(staffOnly()))
		g.GET("/", s.Handler.List)
		g.GET("/:id/", s.Handler.Get)
		g.POST("/", s.Handler.Create)
		g.PUT("/:id/", s.Handler.Update)
		g.PATCH("/:id/", s.Handler.Update)
		g.DELETE("/:id/", s.Handler.Delete)
	}
}
