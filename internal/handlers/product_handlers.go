package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/disparabot/admin/internal/models"
	"github.com/disparabot/admin/internal/resources"
	"github.com/disparabot/admin/internal/view"
)

// ProductHandlers serves the product page and its mutations.
type ProductHandlers struct {
	Base
	products   *resources.Products
	categories *resources.Categories
}

func NewProductHandlers(base Base, products *resources.Products, categories *resources.Categories) *ProductHandlers {
	return &ProductHandlers{Base: base, products: products, categories: categories}
}

// FormatPrice renders a price in the panel's currency notation.
func FormatPrice(price float64) string {
	text := strconv.FormatFloat(price, 'f', 2, 64)
	text = strings.Replace(text, ".", ",", 1)
	return "R$ " + text
}

func productTable(categoryNames map[int64]string) *view.Table {
	return &view.Table{
		Entity: "produtos",
		Columns: []view.Column{
			{Key: "Name", Label: "Nome"},
			{Key: "Price", Label: "Preço", Format: func(record interface{}) string {
				return FormatPrice(record.(models.Product).Price)
			}},
			{Key: "CategoryID", Label: "Categoria", Format: func(record interface{}) string {
				return categoryNames[record.(models.Product).CategoryID]
			}},
			{Key: "Source", Label: "Fonte"},
			{Key: "Status", Label: "Status"},
		},
		CardFields: []view.CardField{
			{Column: view.Column{Key: "Name", Label: "Nome"}, Primary: true},
			{Column: view.Column{Key: "Price", Label: "Preço", Format: func(record interface{}) string {
				return FormatPrice(record.(models.Product).Price)
			}}, Secondary: true},
			{Column: view.Column{Key: "CategoryID", Label: "Categoria", Format: func(record interface{}) string {
				return categoryNames[record.(models.Product).CategoryID]
			}}},
			{Column: view.Column{Key: "Source", Label: "Fonte"}},
			{Column: view.Column{Key: "Status", Label: "Status"}},
		},
		Actions: map[view.Action]bool{
			view.ActionView:   true,
			view.ActionEdit:   true,
			view.ActionDelete: true,
		},
		DefaultMode: view.ModeTable,
	}
}

func productFields(categories []models.Category) []view.Field {
	options := make([]view.Option, 0, len(categories))
	for _, cat := range categories {
		options = append(options, view.Option{Value: strconv.FormatInt(cat.ID, 10), Label: cat.Name})
	}
	return []view.Field{
		{Name: "name", Label: "Nome", Type: view.FieldText, Required: true},
		{Name: "description", Label: "Descrição", Type: view.FieldTextarea},
		{Name: "price", Label: "Preço", Type: view.FieldNumber, Required: true},
		{Name: "url", Label: "URL do Produto", Type: view.FieldText, Required: true},
		{Name: "image_url", Label: "URL da Imagem", Type: view.FieldText},
		{Name: "category_id", Label: "Categoria", Type: view.FieldSelect, Options: options},
		{Name: "source", Label: "Fonte", Type: view.FieldText},
		{Name: "affiliate_code", Label: "Código de Afiliado", Type: view.FieldText},
		{Name: "active", Label: "Status", Type: view.FieldSelect, Options: []view.Option{
			{Value: "ativo", Label: "Ativo"},
			{Value: "inativo", Label: "Inativo"},
		}},
	}
}

func (h *ProductHandlers) Page(c echo.Context) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	items, err := h.products.List(ctx, session.UpstreamToken)
	if err != nil {
		return h.Fail(c, session, err, "/dashboard")
	}
	categories, err := h.categories.List(ctx, session.UpstreamToken)
	if err != nil {
		return h.Fail(c, session, err, "/dashboard")
	}
	categoryNames := make(map[int64]string, len(categories))
	for _, cat := range categories {
		categoryNames[cat.ID] = cat.Name
	}

	table, err := productTable(categoryNames).Build(items, c.QueryParam("view"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Erro ao montar listagem")
	}

	data := PageData{
		Title:      "Produtos",
		Active:     "produtos",
		BasePath:   "/produtos",
		ViewToggle: true,
		Flash:      h.TakeFlash(c, session.ID),
		Table:      table,
	}

	if modal := c.QueryParam("modal"); modal != "" {
		mode := view.FormMode(modal)
		form := &view.Form{
			Entity: "produtos",
			Title:  view.ModalTitle(mode, "Produto"),
			Mode:   mode,
			Fields: productFields(categories),
			Action: "/produtos",
		}
		if mode != view.FormCreate {
			id, _ := strconv.ParseInt(c.QueryParam("id"), 10, 64)
			for _, product := range items {
				if product.ID == id {
					form.Values = view.ValuesFrom(product, form.Fields)
					form.Extra = []view.LabeledValue{
						{Label: "Categoria", Value: categoryNames[product.CategoryID]},
						{Label: "Criado em", Value: product.CreatedAt},
					}
					break
				}
			}
			form.Action = fmt.Sprintf("/produtos/%d", id)
		}
		data.Form = form
	}

	return c.Render(http.StatusOK, "page.html", data)
}

func (h *ProductHandlers) productInput(c echo.Context) models.ProductInput {
	values := view.BindForm(c, productFields(nil))
	return models.ProductInput{
		Name:          values["name"],
		Description:   values["description"],
		ImageURL:      values["image_url"],
		Price:         view.FormFloat(values, "price"),
		URL:           values["url"],
		CategoryID:    view.FormInt64(values, "category_id"),
		Source:        values["source"],
		AffiliateCode: values["affiliate_code"],
		IsActive:      view.FormBool(values, "active"),
	}
}

func (h *ProductHandlers) Create(c echo.Context) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	in := h.productInput(c)
	if in.Name == "" || in.URL == "" {
		h.Flash(c, session.ID, "Nome e URL são obrigatórios", "error")
		return c.Redirect(http.StatusFound, "/produtos?modal=create")
	}
	if err := h.products.Create(c.Request().Context(), session.UpstreamToken, in); err != nil {
		return h.Fail(c, session, err, "/produtos")
	}
	return h.Succeed(c, session.ID, "Produto criado com sucesso", "/produtos")
}

func (h *ProductHandlers) Update(c echo.Context) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.products.Update(c.Request().Context(), session.UpstreamToken, id, h.productInput(c)); err != nil {
		return h.Fail(c, session, err, "/produtos")
	}
	return h.Succeed(c, session.ID, "Produto atualizado com sucesso", "/produtos")
}

func (h *ProductHandlers) Delete(c echo.Context) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.products.Delete(c.Request().Context(), session.UpstreamToken, id); err != nil {
		return h.Fail(c, session, err, "/produtos")
	}
	return h.Succeed(c, session.ID, "Produto excluído com sucesso", "/produtos")
}
