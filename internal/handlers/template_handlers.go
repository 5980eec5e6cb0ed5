package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/disparabot/admin/internal/resources"
	"github.com/disparabot/admin/internal/view"
)

// TemplateHandlers serves the message template page and its mutations.
type TemplateHandlers struct {
	Base
	templates *resources.Templates
}

func NewTemplateHandlers(base Base, templates *resources.Templates) *TemplateHandlers {
	return &TemplateHandlers{Base: base, templates: templates}
}

var templateTable = &view.Table{
	Entity: "templates",
	Columns: []view.Column{
		{Key: "Name", Label: "Nome"},
		{Key: "Length", Label: "Tamanho"},
		{Key: "TimesUsed", Label: "Usos"},
	},
	CardFields: []view.CardField{
		{Column: view.Column{Key: "Name", Label: "Nome"}, Primary: true},
		{Column: view.Column{Key: "Content", Label: "Conteúdo"}, Secondary: true},
		{Column: view.Column{Key: "Length", Label: "Tamanho"}},
		{Column: view.Column{Key: "TimesUsed", Label: "Usos"}},
	},
	Actions: map[view.Action]bool{
		view.ActionView:   true,
		view.ActionEdit:   true,
		view.ActionDelete: true,
	},
	DefaultMode: view.ModeTable,
}

func templateFields() []view.Field {
	return []view.Field{
		{Name: "name", Label: "Nome", Type: view.FieldText, Required: true},
		{Name: "content", Label: "Conteúdo", Type: view.FieldTextarea, Required: true},
	}
}

func (h *TemplateHandlers) Page(c echo.Context) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}

	items, err := h.templates.List(c.Request().Context(), session.UpstreamToken)
	if err != nil {
		return h.Fail(c, session, err, "/dashboard")
	}

	table, err := templateTable.Build(items, c.QueryParam("view"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Erro ao montar listagem")
	}

	data := PageData{
		Title:      "Templates",
		Active:     "templates",
		BasePath:   "/templates",
		ViewToggle: true,
		Flash:      h.TakeFlash(c, session.ID),
		Table:      table,
	}

	if modal := c.QueryParam("modal"); modal != "" {
		mode := view.FormMode(modal)
		form := &view.Form{
			Entity: "templates",
			Title:  view.ModalTitle(mode, "Template"),
			Mode:   mode,
			Fields: templateFields(),
			Action: "/templates",
		}
		if mode != view.FormCreate {
			id, _ := strconv.ParseInt(c.QueryParam("id"), 10, 64)
			for _, tmpl := range items {
				if tmpl.ID == id {
					form.Values = view.ValuesFrom(tmpl, form.Fields)
					form.Extra = []view.LabeledValue{
						{Label: "Tamanho", Value: strconv.Itoa(tmpl.Length)},
						{Label: "Criado em", Value: tmpl.CreatedAt},
					}
					break
				}
			}
			form.Action = fmt.Sprintf("/templates/%d", id)
		}
		data.Form = form
	}

	return c.Render(http.StatusOK, "page.html", data)
}

func (h *TemplateHandlers) templateInput(c echo.Context) resources.TemplateInput {
	values := view.BindForm(c, templateFields())
	return resources.TemplateInput{
		Name:    values["name"],
		Content: values["content"],
	}
}

func (h *TemplateHandlers) Create(c echo.Context) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	in := h.templateInput(c)
	if in.Name == "" || in.Content == "" {
		h.Flash(c, session.ID, "Nome e conteúdo são obrigatórios", "error")
		return c.Redirect(http.StatusFound, "/templates?modal=create")
	}
	if err := h.templates.Create(c.Request().Context(), session.UpstreamToken, in); err != nil {
		return h.Fail(c, session, err, "/templates")
	}
	return h.Succeed(c, session.ID, "Template criado com sucesso", "/templates")
}

func (h *TemplateHandlers) Update(c echo.Context) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.templates.Update(c.Request().Context(), session.UpstreamToken, id, h.templateInput(c)); err != nil {
		return h.Fail(c, session, err, "/templates")
	}
	return h.Succeed(c, session.ID, "Template atualizado com sucesso", "/templates")
}

func (h *TemplateHandlers) Delete(c echo.Context) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.templates.Delete(c.Request().Context(), session.UpstreamToken, id); err != nil {
		return h.Fail(c, session, err, "/templates")
	}
	return h.Succeed(c, session.ID, "Template excluído com sucesso", "/templates")
}
