// Package server assembles the echo application: renderer, middleware and
// the full route table. Keeping it apart from main lets the tests boot the
// whole panel against fake backends.
package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/disparabot/admin/internal/caching"
	"github.com/disparabot/admin/internal/config"
	"github.com/disparabot/admin/internal/handlers"
	"github.com/disparabot/admin/internal/middleware"
	"github.com/disparabot/admin/internal/poller"
	"github.com/disparabot/admin/internal/resources"
	"github.com/disparabot/admin/internal/scraper"
	"github.com/disparabot/admin/internal/services"
	"github.com/disparabot/admin/internal/toast"
	"github.com/disparabot/admin/internal/view"
)

// Deps is everything the route table needs.
type Deps struct {
	Config   *config.Config
	Cache    caching.CacheService
	Auth     services.AuthService
	Media    services.MediaService
	Notifier *toast.Notifier
	Watcher  *poller.Watcher
	Runner   *scraper.Runner

	Categories *resources.Categories
	Groups     *resources.Groups
	Products   *resources.Products
	Instances  *resources.Instances
	Scrappings *resources.Scrappings
	Schedules  *resources.Schedules
	Templates  *resources.Templates
	Linktree   *resources.Linktree
	Users      *resources.Users
}

// New builds the echo instance with every route registered.
func New(deps Deps) (*echo.Echo, error) {
	renderer, err := view.NewRenderer()
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.Renderer = renderer

	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	base := handlers.Base{Cache: deps.Cache, CookieName: deps.Config.Session.CookieName}

	authHandlers := handlers.NewAuthHandlers(base, deps.Auth, deps.Config.SessionTTL())
	dashboardHandlers := handlers.NewDashboardHandlers(base, deps.Auth, deps.Notifier,
		deps.Categories, deps.Groups, deps.Products, deps.Instances, deps.Scrappings,
		deps.Schedules, deps.Templates, deps.Linktree, deps.Users)
	categoryHandlers := handlers.NewCategoryHandlers(base, deps.Categories)
	groupHandlers := handlers.NewGroupHandlers(base, deps.Groups, deps.Categories, deps.Instances)
	productHandlers := handlers.NewProductHandlers(base, deps.Products, deps.Categories)
	instanceHandlers := handlers.NewInstanceHandlers(base, deps.Instances, deps.Watcher)
	scrappingHandlers := handlers.NewScrappingHandlers(base, deps.Scrappings, deps.Runner)
	scheduleHandlers := handlers.NewScheduleHandlers(base, deps.Schedules, deps.Groups, deps.Categories, deps.Templates)
	templateHandlers := handlers.NewTemplateHandlers(base, deps.Templates)
	linktreeHandlers := handlers.NewLinktreeHandlers(base, deps.Linktree, deps.Config.Upstream.ServiceToken)
	healthHandlers := handlers.NewHealthHandlers(deps.Cache)

	// the linktree subdomain serves only the public landing page
	e.Pre(middleware.HostPrefix(deps.Config.Linktree.HostPrefix, linktreeHandlers.Public))

	e.GET("/health", healthHandlers.Health)
	e.GET("/health/ready", healthHandlers.Ready)
	e.GET("/login", authHandlers.LoginPage)
	e.POST("/login", authHandlers.Login)
	e.POST("/logout", authHandlers.Logout)
	e.GET("/links", linktreeHandlers.Public)
	e.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusFound, "/dashboard")
	})
	admin := e.Group("", middleware.SessionMiddleware(deps.Auth, deps.Config.Session.CookieName))
	// unknown paths land on the dashboard; the session middleware has
	// already bounced unauthenticated requests to /login at this point
	admin.RouteNotFound("/*", func(c echo.Context) error {
		return c.Redirect(http.StatusFound, "/dashboard")
	})
	admin.GET("/dashboard", dashboardHandlers.Page)

	admin.GET("/categorias", categoryHandlers.Page)
	admin.POST("/categorias", categoryHandlers.Create)
	admin.POST("/categorias/:id", categoryHandlers.Update)
	admin.POST("/categorias/:id/delete", categoryHandlers.Delete)

	admin.GET("/grupos", groupHandlers.Page)
	admin.POST("/grupos", groupHandlers.Create)
	admin.POST("/grupos/:id", groupHandlers.Update)
	admin.POST("/grupos/:id/delete", groupHandlers.Delete)
	admin.POST("/grupos/:id/mensagem", groupHandlers.SendMessage)
	admin.POST("/grupos/:id/disparo", groupHandlers.Dispatch)

	admin.GET("/produtos", productHandlers.Page)
	admin.POST("/produtos", productHandlers.Create)
	admin.POST("/produtos/:id", productHandlers.Update)
	admin.POST("/produtos/:id/delete", productHandlers.Delete)

	admin.GET("/instancias", instanceHandlers.Page)
	admin.POST("/instancias", instanceHandlers.Create)
	admin.POST("/instancias/:id", instanceHandlers.Update)
	admin.POST("/instancias/:id/delete", instanceHandlers.Delete)

	admin.GET("/scrappings", scrappingHandlers.Page)
	admin.POST("/scrappings", scrappingHandlers.Create)
	admin.POST("/scrappings/:id", scrappingHandlers.Update)
	admin.POST("/scrappings/:id/delete", scrappingHandlers.Delete)
	admin.POST("/scrappings/:id/executar", scrappingHandlers.Execute)

	admin.GET("/agendamentos", scheduleHandlers.Page)
	admin.POST("/agendamentos", scheduleHandlers.Create)
	admin.POST("/agendamentos/:id", scheduleHandlers.Update)
	admin.POST("/agendamentos/:id/delete", scheduleHandlers.Delete)
	admin.POST("/agendamentos/:id/toggle", scheduleHandlers.Toggle)

	admin.GET("/templates", templateHandlers.Page)
	admin.POST("/templates", templateHandlers.Create)
	admin.POST("/templates/:id", templateHandlers.Update)
	admin.POST("/templates/:id/delete", templateHandlers.Delete)

	admin.GET("/linktree", linktreeHandlers.Page)
	admin.POST("/linktree", linktreeHandlers.Create)
	admin.POST("/linktree/:id", linktreeHandlers.Update)
	admin.POST("/linktree/:id/delete", linktreeHandlers.Delete)

	api := e.Group("/api",
		middleware.APIJWTMiddleware(deps.Config.Session.JWTSecret, deps.Config.Session.CookieName),
		middleware.ResolveSession(deps.Auth, deps.Config.Session.CookieName),
	)
	api.GET("/instances/:id/status", instanceHandlers.Status)
	if deps.Media != nil {
		uploadHandlers := handlers.NewUploadHandlers(deps.Media)
		api.POST("/uploads/image", uploadHandlers.UploadImage)
	}

	return e, nil
}
