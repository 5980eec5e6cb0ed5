package middleware

import (
	"errors"
	"net/http"
	"strings"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/disparabot/admin/internal/common"
	"github.com/disparabot/admin/internal/services"
	"github.com/disparabot/admin/internal/upstream"
)

// SessionMiddleware guards the HTML pages. A missing or stale session cookie
// redirects to the login page instead of answering 401.
func SessionMiddleware(auth services.AuthService, cookieName string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				return c.Redirect(http.StatusFound, "/login")
			}

			session, err := auth.Authenticate(c.Request().Context(), cookie.Value)
			if err != nil {
				ClearSessionCookie(c, cookieName)
				return c.Redirect(http.StatusFound, "/login")
			}

			c.SetRequest(c.Request().WithContext(common.WithSession(c.Request().Context(), session)))
			return next(c)
		}
	}
}

// APIJWTMiddleware validates the session cookie on the JSON routes via
// echo-jwt, answering 401 instead of redirecting.
func APIJWTMiddleware(jwtSecret, cookieName string) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(jwtSecret),
		TokenLookup: "cookie:" + cookieName,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(services.SessionClaims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "sessão expirada")
		},
	})
}

// ResolveSession runs after APIJWTMiddleware and swaps the validated cookie
// for the server-side session.
func ResolveSession(auth services.AuthService, cookieName string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(cookieName)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "sessão expirada")
			}
			session, err := auth.Authenticate(c.Request().Context(), cookie.Value)
			if err != nil {
				if errors.Is(err, services.ErrInvalidSession) || errors.Is(err, upstream.ErrUnauthorized) {
					return echo.NewHTTPError(http.StatusUnauthorized, "sessão expirada")
				}
				return echo.NewHTTPError(http.StatusInternalServerError, "Erro ao validar sessão")
			}
			c.SetRequest(c.Request().WithContext(common.WithSession(c.Request().Context(), session)))
			return next(c)
		}
	}
}

// ClearSessionCookie expires the session cookie in the browser.
func ClearSessionCookie(c echo.Context, cookieName string) {
	c.SetCookie(&http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// HostPrefix serves the given handler for every request whose Host starts
// with prefix (the "linktree." subdomain), bypassing the admin routes.
func HostPrefix(prefix string, handler echo.HandlerFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			host := c.Request().Host
			if i := strings.IndexByte(host, ':'); i >= 0 {
				host = host[:i]
			}
			if strings.HasPrefix(host, prefix) {
				return handler(c)
			}
			return next(c)
		}
	}
}
