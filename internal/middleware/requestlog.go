package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dholimara/homestay-api/internal/logger"
)

// RequestLogger tags every request with an X-Request-ID, logs its outcome
// and turns panics into 500 responses.
func RequestLogger(log *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			start := time.Now()
			req := c.Request()
			rid := req.Header.Get(echo.HeaderXRequestID)
			if rid == "" {
				rid = uuid.NewString()
			}
			c.Set(ctxRequestID, rid)
			c.Response().Header().Set(echo.HeaderXRequestID, rid)

			defer func() {
				if r := recover(); r != nil {
					buf := make([]byte, 4<<10)
					buf = buf[:runtime.Stack(buf, false)]
					log.Error("panic recovered", "request_id", rid, "panic", fmt.Sprint(r), "stack", string(buf))
					err = c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
				}
			}()

			err = next(c)
			if err != nil {
				c.Error(err)
			}

			status := c.Response().Status
			attrs := []any{
				"request_id", rid,
				"method", req.Method,
				"path", req.URL.Path,
				"status", status,
				"duration_ms", time.Since(start).Milliseconds(),
				"ip", c.RealIP(),
			}
			if id, ok := UserID(c); ok {
				attrs = append(attrs, "user_id", id)
			}
			switch {
			case status >= 500:
				if err != nil {
					attrs = append(attrs, "error", err.Error())
					if cause := errors.Unwrap(err); cause != nil {
						attrs = append(attrs, "cause", cause.Error())
					}
				}
				log.Error("request failed", attrs...)
			case status >= 400:
				log.Warn("request rejected", attrs...)
			default:
				log.Info("request completed", attrs...)
			}
			return nil
		}
	}
}
