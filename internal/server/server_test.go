package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/disparabot/admin/internal/caching"
	"github.com/disparabot/admin/internal/config"
	"github.com/disparabot/admin/internal/models"
	"github.com/disparabot/admin/internal/poller"
	"github.com/disparabot/admin/internal/resources"
	"github.com/disparabot/admin/internal/scraper"
	"github.com/disparabot/admin/internal/services"
	"github.com/disparabot/admin/internal/toast"
	"github.com/disparabot/admin/internal/upstream"
)

// ServerTestSuite boots the full panel against a fake upstream API and a
// miniredis instance, then drives it through plain HTTP requests.
type ServerTestSuite struct {
	suite.Suite
	app      *echo.Echo
	upstream *httptest.Server
}

func TestServerTestSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

func (s *ServerTestSuite) SetupTest() {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Write([]byte(`{"data":{"token":"upstream-tok","user":{"id":1,"name":"Ana","email":"ana@example.com","active":true}}}`))
	})
	mux.HandleFunc("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"user":{"id":1,"name":"Ana","email":"ana@example.com","active":true}}}`))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		// every collection answers empty
		w.Write([]byte(`{"data":[]}`))
	})
	s.upstream = httptest.NewServer(mux)
	s.T().Cleanup(s.upstream.Close)

	mr := miniredis.RunT(s.T())
	cache := caching.NewCacheServiceWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	cfg := &config.Config{}
	cfg.Session.JWTSecret = "test-secret-test-secret-test-1234"
	cfg.Session.CookieName = "disparabot_session"
	cfg.Session.TTLMinutes = 60
	cfg.Upstream.ServiceToken = "svc-tok"
	cfg.Linktree.HostPrefix = "linktree."
	cfg.Cache.ListTTLSeconds = 60

	api := upstream.NewClient(s.upstream.URL, 5*time.Second)
	auth := services.NewAuthService(api, cache, cfg.Session.JWTSecret, cfg.SessionTTL())
	notifier := toast.NewNotifier(0)
	s.T().Cleanup(notifier.Close)

	products := resources.NewProducts(api, cache, cfg.ListTTL())
	watcher, err := poller.NewWatcher(
		func(ctx context.Context, instanceID int64) (*models.InstanceStatus, error) {
			return &models.InstanceStatus{State: "open"}, nil
		},
		func(instanceID int64, connection, qrCode string) {},
		time.Minute,
	)
	require.NoError(s.T(), err)
	s.T().Cleanup(func() { watcher.Stop() })

	app, err := New(Deps{
		Config:     cfg,
		Cache:      cache,
		Auth:       auth,
		Notifier:   notifier,
		Watcher:    watcher,
		Runner:     scraper.NewRunner(products, "test-agent", 10, nil),
		Categories: resources.NewCategories(api, cache, cfg.ListTTL()),
		Groups:     resources.NewGroups(api, cache, cfg.ListTTL()),
		Products:   products,
		Instances:  resources.NewInstances(api, cache, cfg.ListTTL()),
		Scrappings: resources.NewScrappings(api, cache, cfg.ListTTL()),
		Schedules:  resources.NewSchedules(api, cache, cfg.ListTTL()),
		Templates:  resources.NewTemplates(api, cache, cfg.ListTTL()),
		Linktree:   resources.NewLinktree(api, cache, cfg.ListTTL()),
		Users:      resources.NewUsers(api, cache, cfg.ListTTL()),
	})
	require.NoError(s.T(), err)
	s.app = app
}

func (s *ServerTestSuite) login() *http.Cookie {
	form := url.Values{"email": {"ana@example.com"}, "password": {"senha"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	s.app.ServeHTTP(rec, req)

	require.Equal(s.T(), http.StatusFound, rec.Code)
	require.Equal(s.T(), "/dashboard", rec.Header().Get(echo.HeaderLocation))
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == "disparabot_session" {
			return cookie
		}
	}
	s.T().Fatal("login did not set a session cookie")
	return nil
}

func (s *ServerTestSuite) TestUnauthenticatedDashboardRedirectsToLogin() {
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()
	s.app.ServeHTTP(rec, req)

	assert.Equal(s.T(), http.StatusFound, rec.Code)
	assert.Equal(s.T(), "/login", rec.Header().Get(echo.HeaderLocation))
}

func (s *ServerTestSuite) TestRootRedirectsToDashboard() {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	s.app.ServeHTTP(rec, req)

	assert.Equal(s.T(), http.StatusFound, rec.Code)
	assert.Equal(s.T(), "/dashboard", rec.Header().Get(echo.HeaderLocation))
}

func (s *ServerTestSuite) TestLoginThenDashboard() {
	cookie := s.login()

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	s.app.ServeHTTP(rec, req)

	assert.Equal(s.T(), http.StatusOK, rec.Code)
	assert.Contains(s.T(), rec.Body.String(), "Olá, Ana")
}

func (s *ServerTestSuite) TestLoginRejectsBadCredentials() {
	form := url.Values{"email": {"ana@example.com"}, "password": {""}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	s.app.ServeHTTP(rec, req)

	assert.Equal(s.T(), http.StatusBadRequest, rec.Code)
	assert.Contains(s.T(), rec.Body.String(), "Email e senha são obrigatórios")
}

func (s *ServerTestSuite) TestLogoutInvalidatesSession() {
	cookie := s.login()

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	s.app.ServeHTTP(rec, req)
	require.Equal(s.T(), http.StatusFound, rec.Code)
	assert.Equal(s.T(), "/login", rec.Header().Get(echo.HeaderLocation))

	// the old cookie no longer opens the dashboard
	req = httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	s.app.ServeHTTP(rec, req)
	assert.Equal(s.T(), http.StatusFound, rec.Code)
	assert.Equal(s.T(), "/login", rec.Header().Get(echo.HeaderLocation))
}

func (s *ServerTestSuite) TestCategoryPageAndCreateFlow() {
	cookie := s.login()

	req := httptest.NewRequest(http.MethodGet, "/categorias?modal=create", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	s.app.ServeHTTP(rec, req)
	assert.Equal(s.T(), http.StatusOK, rec.Code)
	assert.Contains(s.T(), rec.Body.String(), "Categorias")

	form := url.Values{"name": {"Ofertas"}, "slug": {"ofertas"}, "active": {"ativo"}}
	req = httptest.NewRequest(http.MethodPost, "/categorias", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	s.app.ServeHTTP(rec, req)

	assert.Equal(s.T(), http.StatusFound, rec.Code)
	assert.Equal(s.T(), "/categorias", rec.Header().Get(echo.HeaderLocation))

	// the success flash shows up once on the next page view
	req = httptest.NewRequest(http.MethodGet, "/categorias", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	s.app.ServeHTTP(rec, req)
	assert.Contains(s.T(), rec.Body.String(), "Categoria criada com sucesso")
}

func (s *ServerTestSuite) TestPublicLinktreePage() {
	req := httptest.NewRequest(http.MethodGet, "/links", nil)
	rec := httptest.NewRecorder()
	s.app.ServeHTTP(rec, req)

	assert.Equal(s.T(), http.StatusOK, rec.Code)
	assert.Contains(s.T(), rec.Body.String(), "Nenhum link disponível")
}

func (s *ServerTestSuite) TestLinktreeSubdomainServesPublicPage() {
	req := httptest.NewRequest(http.MethodGet, "/qualquer-coisa", nil)
	req.Host = "linktree.example.com"
	rec := httptest.NewRecorder()
	s.app.ServeHTTP(rec, req)

	assert.Equal(s.T(), http.StatusOK, rec.Code)
	assert.Contains(s.T(), rec.Body.String(), "Nenhum link disponível")
}

func (s *ServerTestSuite) TestHealthEndpoint() {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.app.ServeHTTP(rec, req)

	assert.Equal(s.T(), http.StatusOK, rec.Code)
	assert.Contains(s.T(), rec.Body.String(), `"status":"ok"`)

	req = httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec = httptest.NewRecorder()
	s.app.ServeHTTP(rec, req)
	assert.Equal(s.T(), http.StatusOK, rec.Code)
	assert.Contains(s.T(), rec.Body.String(), `"status":"ready"`)
}

func (s *ServerTestSuite) TestUnknownPathRedirectsToDashboard() {
	cookie := s.login()

	req := httptest.NewRequest(http.MethodGet, "/nao-existe", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	s.app.ServeHTTP(rec, req)

	assert.Equal(s.T(), http.StatusFound, rec.Code)
	assert.Equal(s.T(), "/dashboard", rec.Header().Get(echo.HeaderLocation))
}

func (s *ServerTestSuite) TestUnknownPathWithoutSessionRedirectsToLogin() {
	req := httptest.NewRequest(http.MethodGet, "/nao-existe", nil)
	rec := httptest.NewRecorder()
	s.app.ServeHTTP(rec, req)

	assert.Equal(s.T(), http.StatusFound, rec.Code)
	assert.Equal(s.T(), "/login", rec.Header().Get(echo.HeaderLocation))
}

func (s *ServerTestSuite) TestAPIRequiresSessionCookie() {
	req := httptest.NewRequest(http.MethodGet, "/api/instances/1/status", nil)
	rec := httptest.NewRecorder()
	s.app.ServeHTTP(rec, req)

	assert.Equal(s.T(), http.StatusUnauthorized, rec.Code)
}
