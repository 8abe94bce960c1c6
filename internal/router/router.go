package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/dholimara/homestay-api/internal/handler"    // handlers implementing each endpoint
	"github.com/dholimara/homestay-api/internal/middleware" // auth and role guards
	"github.com/dholimara/homestay-api/internal/model"
)

// Every path ends with a slash. main installs echo's AddTrailingSlash
// pre-middleware so "/rooms" and "/rooms/" reach the same handler.

// staffOnly guards staff resources; anonymous callers get 403.
func staffOnly() echo.MiddlewareFunc { return middleware.RequireRole(model.RoleStaff) }

// RegisterRoutes registers the health check.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz/", handler.Health(db))
}

// RegisterAuth registers token and account routes. Login, refresh and
// register are open; profiles need a signed-in caller.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, u *handler.UserHandler) {
	g := e.Group("/auth")
	g.POST("/login/", a.Login)
	g.POST("/refresh/", a.Refresh)
	// logout accepts a refresh token in the body, or revokes every token
	// of the authenticated caller when the body has none
	g.POST("/logout/", a.Logout)

	e.POST("/users/register/", a.Register)

	p := e.Group("/users/profiles", middleware.RequireAuth())
	p.GET("/", u.List)
	p.GET("/me/", u.Me)
	p.GET("/:id/", u.Get)
	p.PUT("/:id/", u.Update)
	p.PATCH("/:id/", u.Update)
	p.DELETE("/:id/", u.Delete)
}

// RegisterMedia registers the staff upload endpoint.
func RegisterMedia(e *echo.Echo, up *handler.UploadHandler) {
	e.POST("/media/uploads/", up.Upload, staffOnly())
}
