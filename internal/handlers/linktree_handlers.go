package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/disparabot/admin/internal/models"
	"github.com/disparabot/admin/internal/resources"
	"github.com/disparabot/admin/internal/view"
)

// LinktreeHandlers serves the admin linktree page and the public landing
// page. The public route authenticates upstream with the service token since
// visitors carry no session.
type LinktreeHandlers struct {
	Base
	linktree     *resources.Linktree
	serviceToken string
}

func NewLinktreeHandlers(base Base, linktree *resources.Linktree, serviceToken string) *LinktreeHandlers {
	return &LinktreeHandlers{Base: base, linktree: linktree, serviceToken: serviceToken}
}

var linktreeTable = &view.Table{
	Entity: "linktree",
	Columns: []view.Column{
		{Key: "Icon", Label: ""},
		{Key: "Title", Label: "Título"},
		{Key: "URL", Label: "URL"},
		{Key: "Order", Label: "Ordem"},
		{Key: "Status", Label: "Status"},
	},
	CardFields: []view.CardField{
		{Column: view.Column{Key: "Title", Label: "Título"}, Primary: true},
		{Column: view.Column{Key: "URL", Label: "URL"}, Secondary: true},
		{Column: view.Column{Key: "Order", Label: "Ordem"}},
		{Column: view.Column{Key: "Status", Label: "Status"}},
	},
	Actions: map[view.Action]bool{
		view.ActionView:   true,
		view.ActionEdit:   true,
		view.ActionDelete: true,
	},
	DefaultMode: view.ModeTable,
}

func linktreeFields() []view.Field {
	return []view.Field{
		{Name: "title", Label: "Título", Type: view.FieldText, Required: true},
		{Name: "url", Label: "URL", Type: view.FieldText, Required: true},
		{Name: "icon", Label: "Ícone", Type: view.FieldText},
		{Name: "order", Label: "Ordem", Type: view.FieldNumber},
		{Name: "active", Label: "Status", Type: view.FieldSelect, Options: []view.Option{
			{Value: "ativo", Label: "Ativo"},
			{Value: "inativo", Label: "Inativo"},
		}},
	}
}

func (h *LinktreeHandlers) Page(c echo.Context) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}

	items, err := h.linktree.List(c.Request().Context(), session.UpstreamToken)
	if err != nil {
		return h.Fail(c, session, err, "/dashboard")
	}

	table, err := linktreeTable.Build(items, c.QueryParam("view"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Erro ao montar listagem")
	}

	data := PageData{
		Title:      "Linktree",
		Active:     "linktree",
		BasePath:   "/linktree",
		ViewToggle: true,
		Flash:      h.TakeFlash(c, session.ID),
		Table:      table,
	}

	if modal := c.QueryParam("modal"); modal != "" {
		mode := view.FormMode(modal)
		form := &view.Form{
			Entity: "linktree",
			Title:  view.ModalTitle(mode, "Link"),
			Mode:   mode,
			Fields: linktreeFields(),
			Action: "/linktree",
		}
		if mode != view.FormCreate {
			id, _ := strconv.ParseInt(c.QueryParam("id"), 10, 64)
			for _, item := range items {
				if item.ID == id {
					form.Values = view.ValuesFrom(item, form.Fields)
					break
				}
			}
			form.Action = fmt.Sprintf("/linktree/%d", id)
		}
		data.Form = form
	}

	return c.Render(http.StatusOK, "page.html", data)
}

type publicLinksData struct {
	Items []models.LinktreeItem
}

// Public renders the visitor-facing landing page: active links only, sorted
// by their configured order.
func (h *LinktreeHandlers) Public(c echo.Context) error {
	items, err := h.linktree.Public(c.Request().Context(), h.serviceToken)
	if err != nil {
		// an empty landing page beats an error screen for visitors
		items = nil
	}
	return c.Render(http.StatusOK, "links.html", publicLinksData{Items: items})
}

func (h *LinktreeHandlers) linktreeInput(c echo.Context) resources.LinktreeInput {
	values := view.BindForm(c, linktreeFields())
	return resources.LinktreeInput{
		Title:  values["title"],
		URL:    values["url"],
		Icon:   values["icon"],
		Order:  int(view.FormInt64(values, "order")),
		Active: view.FormBool(values, "active"),
	}
}

func (h *LinktreeHandlers) Create(c echo.Context) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	in := h.linktreeInput(c)
	if in.Title == "" || in.URL == "" {
		h.Flash(c, session.ID, "Título e URL são obrigatórios", "error")
		return c.Redirect(http.StatusFound, "/linktree?modal=create")
	}
	if err := h.linktree.Create(c.Request().Context(), session.UpstreamToken, in); err != nil {
		return h.Fail(c, session, err, "/linktree")
	}
	return h.Succeed(c, session.ID, "Link criado com sucesso", "/linktree")
}

func (h *LinktreeHandlers) Update(c echo.Context) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.linktree.Update(c.Request().Context(), session.UpstreamToken, id, h.linktreeInput(c)); err != nil {
		return h.Fail(c, session, err, "/linktree")
	}
	return h.Succeed(c, session.ID, "Link atualizado com sucesso", "/linktree")
}

func (h *LinktreeHandlers) Delete(c echo.Context) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.linktree.Delete(c.Request().Context(), session.UpstreamToken, id); err != nil {
		return h.Fail(c, session, err, "/linktree")
	}
	return h.Succeed(c, session.ID, "Link excluído com sucesso", "/linktree")
}
