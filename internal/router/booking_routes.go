package router

import (
	"github.com/labstack/echo/v4"

	"github.com/dholimara/homestay-api/internal/handler"
	"github.com/dholimara/homestay-api/internal/middleware"
)

// RegisterBookings registers bookings and reviews. Ownership is checked in
// the handlers and the booking service.
func RegisterBookings(e *echo.Echo, b *handler.BookingHandler, rv *handler.ReviewHandler) {
	g := e.Group("/bookings", middleware.RequireAuth())
	g.GET("/", b.List)
	g.POST("/", b.Create)
	g.GET("/:id/", b.Get)
	g.PUT("/:id/", b.Update)
	g.PATCH("/:id/", b.Update)
	g.DELETE("/:id/", b.Delete)
	g.POST("/:id/cancel/", b.Cancel)

	r := e.Group("/reviews", middleware.SafeMethodsOr(middleware.RequireAuth()))
	r.GET("/", rv.List)
	r.GET("/:id/", rv.Get)
	r.POST("/", rv.Create)
	r.PUT("/:id/", rv.Update)
	r.PATCH("/:id/", rv.Update)
	r.DELETE("/:id/", rv.Delete)
}
