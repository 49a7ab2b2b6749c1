package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/kyberos/mission-control/pkg/tracing"
)

const (
	// AuthCookieName is the session cookie issued by the login endpoint
	AuthCookieName = "mc-auth"
	// AuthCookieValue marks an authenticated session
	AuthCookieValue = "authenticated"
	// AuthCookieMaxAge is 7 days
	AuthCookieMaxAge = 7 * 24 * time.Hour
)

// SetAuthCookie attaches the session cookie to the response.
func SetAuthCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     AuthCookieName,
		Value:    AuthCookieValue,
		Path:     "/",
		MaxAge:   int(AuthCookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Authentication gates every route behind the shared-secret password. A
// request passes when it carries the session cookie, or when it carries the
// password in the `pw` query parameter (email-link access), in which case the
// cookie is issued on the way through. Login, health and metrics endpoints
// are exempt.
func Authentication(logger ectologger.Logger, password string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			ctx, span := tracing.StartSpan(ctx, "middleware.Authentication")
			defer span.End()

			path := c.Request().URL.Path
			if path == "/api/login" || path == "/metrics" || strings.HasPrefix(path, "/api/v1/health") {
				return next(c)
			}

			if cookie, err := c.Cookie(AuthCookieName); err == nil && cookie.Value == AuthCookieValue {
				return next(c)
			}

			pw := c.QueryParam("pw")
			if pw != "" && password != "" && subtle.ConstantTimeCompare([]byte(pw), []byte(password)) == 1 {
				SetAuthCookie(c)
				return next(c)
			}

			logger.WithContext(ctx).Warn("request is not authenticated")
			return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
		}
	}
}
