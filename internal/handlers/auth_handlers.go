package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/disparabot/admin/internal/middleware"
	"github.com/disparabot/admin/internal/services"
)

// AuthHandlers serves the login page and the session lifecycle.
type AuthHandlers struct {
	Base
	auth       services.AuthService
	sessionTTL time.Duration
}

func NewAuthHandlers(base Base, auth services.AuthService, sessionTTL time.Duration) *AuthHandlers {
	return &AuthHandlers{Base: base, auth: auth, sessionTTL: sessionTTL}
}

type loginPageData struct {
	Title string
	Error string
	Email string
}

// LoginPage renders the sign-in form. An already authenticated browser goes
// straight to the dashboard.
func (h *AuthHandlers) LoginPage(c echo.Context) error {
	if cookie, err := c.Cookie(h.CookieName); err == nil && cookie.Value != "" {
		if _, err := h.auth.Authenticate(c.Request().Context(), cookie.Value); err == nil {
			return c.Redirect(http.StatusFound, "/dashboard")
		}
	}
	return c.Render(http.StatusOK, "login.html", loginPageData{Title: "Login"})
}

// Login exchanges the posted credentials for a session cookie. Failures
// re-render the form with the upstream message and the typed email kept.
func (h *AuthHandlers) Login(c echo.Context) error {
	email := c.FormValue("email")
	password := c.FormValue("password")
	if email == "" || password == "" {
		return c.Render(http.StatusBadRequest, "login.html", loginPageData{
			Title: "Login",
			Error: "Email e senha são obrigatórios",
			Email: email,
		})
	}

	token, _, err := h.auth.Login(c.Request().Context(), email, password)
	if err != nil {
		return c.Render(http.StatusUnauthorized, "login.html", loginPageData{
			Title: "Login",
			Error: err.Error(),
			Email: email,
		})
	}

	c.SetCookie(&http.Cookie{
		Name:     h.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.sessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return c.Redirect(http.StatusFound, "/dashboard")
}

// Logout drops the local session only; the upstream token is simply
// forgotten.
func (h *AuthHandlers) Logout(c echo.Context) error {
	if cookie, err := c.Cookie(h.CookieName); err == nil && cookie.Value != "" {
		_ = h.auth.Logout(c.Request().Context(), cookie.Value)
	}
	middleware.ClearSessionCookie(c, h.CookieName)
	return c.Redirect(http.StatusFound, "/login")
}
