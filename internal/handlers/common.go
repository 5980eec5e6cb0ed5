// Package handlers serves the admin panel: one page handler per entity plus
// the auth, dashboard, upload and health endpoints. Pages render server-side;
// mutations are plain form posts answered with a redirect and a flash.
package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/disparabot/admin/internal/caching"
	"github.com/disparabot/admin/internal/common"
	"github.com/disparabot/admin/internal/middleware"
	"github.com/disparabot/admin/internal/models"
	"github.com/disparabot/admin/internal/toast"
	"github.com/disparabot/admin/internal/upstream"
	"github.com/disparabot/admin/internal/view"
)

// PageData is what every admin template renders.
type PageData struct {
	Title      string
	Active     string
	BasePath   string
	ViewToggle bool
	Flash      *toast.Message
	Table      *view.TableData
	Form       *view.Form
}

const flashTTL = time.Minute

// Base carries what every page handler shares: the flash store and the
// session cookie teardown.
type Base struct {
	Cache      caching.CacheService
	CookieName string
}

func requireSession(c echo.Context) (*models.Session, error) {
	session, ok := common.GetSessionFromContext(c.Request().Context())
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "sessão expirada")
	}
	return session, nil
}

// Flash queues a one-shot toast for the session's next page load.
func (b *Base) Flash(c echo.Context, sessionID, text string, severity toast.Severity) {
	payload, err := json.Marshal(toast.Message{Text: text, Severity: severity})
	if err != nil {
		return
	}
	if err := b.Cache.SetFlash(c.Request().Context(), sessionID, string(payload), flashTTL); err != nil {
		log.Printf("WARN: failed to store flash for session %s: %v", sessionID, err)
	}
}

// TakeFlash pops the pending toast, if any.
func (b *Base) TakeFlash(c echo.Context, sessionID string) *toast.Message {
	payload, err := b.Cache.TakeFlash(c.Request().Context(), sessionID)
	if err != nil {
		log.Printf("WARN: failed to read flash for session %s: %v", sessionID, err)
		return nil
	}
	if payload == "" {
		return nil
	}
	var msg toast.Message
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		return nil
	}
	return &msg
}

// Fail turns an operation error into the page response: an upstream 401
// tears the session down and lands on the login page, anything else flashes
// the upstream message and returns to the caller's page.
func (b *Base) Fail(c echo.Context, session *models.Session, err error, redirectTo string) error {
	if errors.Is(err, upstream.ErrUnauthorized) {
		if delErr := b.Cache.DeleteSession(c.Request().Context(), session.ID); delErr != nil {
			log.Printf("WARN: failed to delete session %s: %v", session.ID, delErr)
		}
		middleware.ClearSessionCookie(c, b.CookieName)
		return c.Redirect(http.StatusFound, "/login")
	}
	b.Flash(c, session.ID, upstream.ErrorMessage(err), toast.SeverityError)
	return c.Redirect(http.StatusFound, redirectTo)
}

// Succeed flashes a success message and returns to the entity page.
func (b *Base) Succeed(c echo.Context, sessionID, text, redirectTo string) error {
	b.Flash(c, sessionID, text, toast.SeveritySuccess)
	return c.Redirect(http.StatusFound, redirectTo)
}

func paramID(c echo.Context) (int64, error) {
	var id int64
	if err := echo.PathParamsBinder(c).Int64("id", &id).BindError(); err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "ID inválido")
	}
	return id, nil
}
