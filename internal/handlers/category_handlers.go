package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/disparabot/admin/internal/resources"
	"github.com/disparabot/admin/internal/view"
)

// CategoryHandlers serves the category page and its mutations.
type CategoryHandlers struct {
	Base
	categories *resources.Categories
}

func NewCategoryHandlers(base Base, categories *resources.Categories) *CategoryHandlers {
	return &CategoryHandlers{Base: base, categories: categories}
}

var categoryTable = &view.Table{
	Entity: "categorias",
	Columns: []view.Column{
		{Key: "Icon", Label: ""},
		{Key: "Name", Label: "Nome"},
		{Key: "Description", Label: "Descrição"},
		{Key: "ProductsCount", Label: "Produtos"},
		{Key: "Status", Label: "Status"},
	},
	CardFields: []view.CardField{
		{Column: view.Column{Key: "Name", Label: "Nome"}, Primary: true},
		{Column: view.Column{Key: "Description", Label: "Descrição"}, Secondary: true},
		{Column: view.Column{Key: "Icon", Label: "Ícone"}},
		{Column: view.Column{Key: "ProductsCount", Label: "Produtos"}},
		{Column: view.Column{Key: "Status", Label: "Status"}},
	},
	Actions: map[view.Action]bool{
		view.ActionView:   true,
		view.ActionEdit:   true,
		view.ActionDelete: true,
	},
	DefaultMode: view.ModeCards,
}

var categoryIconPalette = []string{"📦", "🛒", "🎁", "💄", "👕", "📱", "🏠", "🍔", "⚽", "🎮", "📚", "✈️"}

var categoryColorPalette = []string{"#3b82f6", "#ef4444", "#10b981", "#f59e0b", "#8b5cf6", "#ec4899"}

func categoryFields() []view.Field {
	return []view.Field{
		{Name: "name", Label: "Nome", Type: view.FieldText, Required: true},
		{Name: "slug", Label: "Slug", Type: view.FieldText},
		{Name: "description", Label: "Descrição", Type: view.FieldTextarea},
		{Name: "color", Label: "Cor", Type: view.FieldText, Palette: categoryColorPalette},
		{Name: "icon", Label: "Ícone", Type: view.FieldText, Palette: categoryIconPalette},
		{Name: "active", Label: "Status", Type: view.FieldSelect, Options: []view.Option{
			{Value: "ativo", Label: "Ativo"},
			{Value: "inativo", Label: "Inativo"},
		}},
	}
}

func (h *CategoryHandlers) Page(c echo.Context) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}

	items, err := h.categories.List(c.Request().Context(), session.UpstreamToken)
	if err != nil {
		return h.Fail(c, session, err, "/dashboard")
	}

	table, err := categoryTable.Build(items, c.QueryParam("view"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Erro ao montar listagem")
	}

	data := PageData{
		Title:      "Categorias",
		Active:     "categorias",
		BasePath:   "/categorias",
		ViewToggle: true,
		Flash:      h.TakeFlash(c, session.ID),
		Table:      table,
	}

	if modal := c.QueryParam("modal"); modal != "" {
		mode := view.FormMode(modal)
		form := &view.Form{
			Entity: "categorias",
			Title:  view.ModalTitle(mode, "Categoria"),
			Mode:   mode,
			Fields: categoryFields(),
			Action: "/categorias",
		}
		if mode != view.FormCreate {
			id, _ := strconv.ParseInt(c.QueryParam("id"), 10, 64)
			for _, cat := range items {
				if cat.ID == id {
					form.Values = view.ValuesFrom(cat, form.Fields)
					form.Extra = []view.LabeledValue{
						{Label: "Produtos", Value: strconv.Itoa(cat.ProductsCount)},
						{Label: "Criada em", Value: cat.CreatedAt},
					}
					break
				}
			}
			form.Action = fmt.Sprintf("/categorias/%d", id)
		}
		data.Form = form
	}

	return c.Render(http.StatusOK, "page.html", data)
}

func (h *CategoryHandlers) categoryInput(c echo.Context) resources.CategoryInput {
	values := view.BindForm(c, categoryFields())
	return resources.CategoryInput{
		Name:        values["name"],
		Slug:        values["slug"],
		Description: values["description"],
		Color:       values["color"],
		Icon:        values["icon"],
		Active:      view.FormBool(values, "active"),
	}
}

func (h *CategoryHandlers) Create(c echo.Context) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	in := h.categoryInput(c)
	if in.Name == "" {
		h.Flash(c, session.ID, "Nome é obrigatório", "error")
		return c.Redirect(http.StatusFound, "/categorias?modal=create")
	}
	if err := h.categories.Create(c.Request().Context(), session.UpstreamToken, in); err != nil {
		return h.Fail(c, session, err, "/categorias")
	}
	return h.Succeed(c, session.ID, "Categoria criada com sucesso", "/categorias")
}

func (h *CategoryHandlers) Update(c echo.Context) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.categories.Update(c.Request().Context(), session.UpstreamToken, id, h.categoryInput(c)); err != nil {
		return h.Fail(c, session, err, "/categorias")
	}
	return h.Succeed(c, session.ID, "Categoria atualizada com sucesso", "/categorias")
}

func (h *CategoryHandlers) Delete(c echo.Context) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.categories.Delete(c.Request().Context(), session.UpstreamToken, id); err != nil {
		return h.Fail(c, session, err, "/categorias")
	}
	return h.Succeed(c, session.ID, "Categoria excluída com sucesso", "/categorias")
}
