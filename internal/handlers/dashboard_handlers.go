package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/disparabot/admin/internal/models"
	"github.com/disparabot/admin/internal/resources"
	"github.com/disparabot/admin/internal/services"
	"github.com/disparabot/admin/internal/toast"
	"github.com/disparabot/admin/internal/upstream"
)

// DashboardHandlers renders the landing page: entity counts, instance
// connection badges, the operator list and the transient status notice.
type DashboardHandlers struct {
	Base
	auth       services.AuthService
	notifier   *toast.Notifier
	categories *resources.Categories
	groups     *resources.Groups
	products   *resources.Products
	instances  *resources.Instances
	scrappings *resources.Scrappings
	schedules  *resources.Schedules
	templates  *resources.Templates
	linktree   *resources.Linktree
	users      *resources.Users
}

func NewDashboardHandlers(
	base Base,
	auth services.AuthService,
	notifier *toast.Notifier,
	categories *resources.Categories,
	groups *resources.Groups,
	products *resources.Products,
	instances *resources.Instances,
	scrappings *resources.Scrappings,
	schedules *resources.Schedules,
	templates *resources.Templates,
	linktree *resources.Linktree,
	users *resources.Users,
) *DashboardHandlers {
	return &DashboardHandlers{
		Base:       base,
		auth:       auth,
		notifier:   notifier,
		categories: categories,
		groups:     groups,
		products:   products,
		instances:  instances,
		scrappings: scrappings,
		schedules:  schedules,
		templates:  templates,
		linktree:   linktree,
		users:      users,
	}
}

type countCard struct {
	Label string
	Value int
	Href  string
}

type dashboardData struct {
	Title     string
	Active    string
	Flash     *toast.Message
	Notice    *toast.Message
	User      *models.User
	Counts    []countCard
	Instances []models.Instance
	Users     []models.User
}

// Page assembles the dashboard. The upstream token is re-checked against
// /auth/me so a revoked token is caught here rather than on the next
// mutation.
func (h *DashboardHandlers) Page(c echo.Context) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	user, err := h.auth.CurrentUser(ctx, session)
	if err != nil {
		if errors.Is(err, upstream.ErrUnauthorized) {
			return h.Fail(c, session, err, "/login")
		}
		log.Printf("WARN: /auth/me check failed: %v", err)
		user = &session.User
	}

	data := dashboardData{
		Title:  "Dashboard",
		Active: "dashboard",
		Flash:  h.TakeFlash(c, session.ID),
		Notice: h.notifier.Current(),
		User:   user,
	}

	token := session.UpstreamToken
	counts := []struct {
		label string
		href  string
		count func() (int, error)
	}{
		{"Grupos", "/grupos", func() (int, error) { items, err := h.groups.List(ctx, token); return len(items), err }},
		{"Produtos", "/produtos", func() (int, error) { items, err := h.products.List(ctx, token); return len(items), err }},
		{"Instâncias", "/instancias", func() (int, error) {
			items, err := h.instances.List(ctx, token)
			data.Instances = items
			return len(items), err
		}},
		{"Scrappings", "/scrappings", func() (int, error) { items, err := h.scrappings.List(ctx, token); return len(items), err }},
		{"Categorias", "/categorias", func() (int, error) { items, err := h.categories.List(ctx, token); return len(items), err }},
		{"Agendamentos", "/agendamentos", func() (int, error) { items, err := h.schedules.List(ctx, token); return len(items), err }},
		{"Templates", "/templates", func() (int, error) { items, err := h.templates.List(ctx, token); return len(items), err }},
		{"Linktree", "/linktree", func() (int, error) { items, err := h.linktree.List(ctx, token); return len(items), err }},
	}
	for _, card := range counts {
		n, err := card.count()
		if err != nil {
			if errors.Is(err, upstream.ErrUnauthorized) {
				return h.Fail(c, session, err, "/login")
			}
			log.Printf("WARN: dashboard count for %s failed: %v", card.href, err)
		}
		data.Counts = append(data.Counts, countCard{Label: card.label, Value: n, Href: card.href})
	}

	if operators, err := h.users.List(ctx, token); err != nil {
		log.Printf("WARN: dashboard user list failed: %v", err)
	} else {
		data.Users = operators
	}

	return c.Render(http.StatusOK, "dashboard.html", data)
}
