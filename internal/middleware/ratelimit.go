package middleware

import (
	"net/http"

	"minecraft-store/internal/dto"
	"minecraft-store/internal/ratelimit"

	"github.com/labstack/echo/v4"
)

// RateLimit rejects callers over the limiter's budget, keyed by prefix and
// client IP.
func RateLimit(limiter ratelimit.Limiter, prefix string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !limiter.Allow(c.Request().Context(), prefix+":"+c.RealIP()) {
				return c.JSON(http.StatusTooManyRequests, dto.Result{
					Success: false,
					Error:   "Too many requests. Please try again later.",
				})
			}
			return next(c)
		}
	}
}
