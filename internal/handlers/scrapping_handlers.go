package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/disparabot/admin/internal/models"
	"github.com/disparabot/admin/internal/resources"
	"github.com/disparabot/admin/internal/scraper"
	"github.com/disparabot/admin/internal/view"
)

// ScrappingHandlers serves the product source page, its mutations and the
// collection trigger.
type ScrappingHandlers struct {
	Base
	scrappings *resources.Scrappings
	runner     *scraper.Runner
}

func NewScrappingHandlers(base Base, scrappings *resources.Scrappings, runner *scraper.Runner) *ScrappingHandlers {
	return &ScrappingHandlers{Base: base, scrappings: scrappings, runner: runner}
}

func (h *ScrappingHandlers) scrappingTable() *view.Table {
	// Execution status merges the local runner registry over the upstream
	// value, so a run started here shows immediately.
	execution := func(record interface{}) string {
		source := record.(models.Scrapping)
		return h.runner.Status(source.ID, source.Execution).Label()
	}
	return &view.Table{
		Entity: "scrappings",
		Columns: []view.Column{
			{Key: "Name", Label: "Nome"},
			{Key: "TypeName", Label: "Tipo"},
			{Key: "Execution", Label: "Execução", Format: execution},
			{Key: "ProductsCount", Label: "Produtos"},
			{Key: "Status", Label: "Status"},
		},
		CardFields: []view.CardField{
			{Column: view.Column{Key: "Name", Label: "Nome"}, Primary: true},
			{Column: view.Column{Key: "TypeName", Label: "Tipo"}, Secondary: true},
			{Column: view.Column{Key: "Execution", Label: "Execução", Format: execution}},
			{Column: view.Column{Key: "ProductsCount", Label: "Produtos"}},
			{Column: view.Column{Key: "Status", Label: "Status"}},
		},
		Actions: map[view.Action]bool{
			view.ActionView:   true,
			view.ActionEdit:   true,
			view.ActionDelete: true,
		},
		Extra: []view.ExtraAction{
			{Name: "execute", Label: "▶", Confirm: "Iniciar a coleta desta fonte?", URL: func(id int64) string {
				return fmt.Sprintf("/scrappings/%d/executar", id)
			}},
		},
		DefaultMode: view.ModeTable,
	}
}

func scrappingFields() []view.Field {
	return []view.Field{
		{Name: "name", Label: "Nome", Type: view.FieldText, Required: true},
		{Name: "type", Label: "Tipo", Type: view.FieldSelect, Required: true, Options: []view.Option{
			{Value: models.TypeScraping, Label: "Scrapping"},
			{Value: models.TypeAPI, Label: "API"},
		}},
		{Name: "type_name", Label: "Nome do Tipo", Type: view.FieldText},
		{Name: "url", Label: "URL", Type: view.FieldText, Required: true},
		{Name: "login", Label: "Login", Type: view.FieldText},
		{Name: "password", Label: "Senha", Type: view.FieldPassword},
		{Name: "key1", Label: "Chave 1", Type: view.FieldText},
		{Name: "key2", Label: "Chave 2", Type: view.FieldText},
		{Name: "active", Label: "Status", Type: view.FieldSelect, Options: []view.Option{
			{Value: "ativo", Label: "Ativo"},
			{Value: "inativo", Label: "Inativo"},
		}},
	}
}

func (h *ScrappingHandlers) Page(c echo.Context) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}

	items, err := h.scrappings.List(c.Request().Context(), session.UpstreamToken)
	if err != nil {
		return h.Fail(c, session, err, "/dashboard")
	}

	table, err := h.scrappingTable().Build(items, c.QueryParam("view"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Erro ao montar listagem")
	}

	data := PageData{
		Title:      "Scrappings",
		Active:     "scrappings",
		BasePath:   "/scrappings",
		ViewToggle: true,
		Flash:      h.TakeFlash(c, session.ID),
		Table:      table,
	}

	if modal := c.QueryParam("modal"); modal != "" {
		mode := view.FormMode(modal)
		form := &view.Form{
			Entity: "scrappings",
			Title:  view.ModalTitle(mode, "Scrapping"),
			Mode:   mode,
			Fields: scrappingFields(),
			Action: "/scrappings",
		}
		if mode != view.FormCreate {
			id, _ := strconv.ParseInt(c.QueryParam("id"), 10, 64)
			for _, source := range items {
				if source.ID == id {
					form.Values = view.ValuesFrom(source, form.Fields)
					form.Extra = []view.LabeledValue{
						{Label: "Execução", Value: h.runner.Status(source.ID, source.Execution).Label()},
						{Label: "Produtos", Value: strconv.Itoa(source.ProductsCount)},
						{Label: "Última Execução", Value: source.LastExecution},
					}
					break
				}
			}
			form.Action = fmt.Sprintf("/scrappings/%d", id)
		}
		data.Form = form
	}

	return c.Render(http.StatusOK, "page.html", data)
}

func (h *ScrappingHandlers) scrappingInput(c echo.Context) resources.ScrappingInput {
	values := view.BindForm(c, scrappingFields())
	if values["type"] == models.TypeAPI {
		// API sources authenticate with login/password; stale keys from a
		// previous scrapping-type edit are dropped
		values["key1"] = ""
		values["key2"] = ""
	}
	return resources.ScrappingInput{
		Name:     values["name"],
		Type:     values["type"],
		TypeName: values["type_name"],
		URL:      values["url"],
		Login:    values["login"],
		Password: values["password"],
		Key1:     values["key1"],
		Key2:     values["key2"],
		Active:   view.FormBool(values, "active"),
	}
}

func (h *ScrappingHandlers) Create(c echo.Context) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	in := h.scrappingInput(c)
	if in.Name == "" || in.URL == "" {
		h.Flash(c, session.ID, "Nome e URL são obrigatórios", "error")
		return c.Redirect(http.StatusFound, "/scrappings?modal=create")
	}
	if err := h.scrappings.Create(c.Request().Context(), session.UpstreamToken, in); err != nil {
		return h.Fail(c, session, err, "/scrappings")
	}
	return h.Succeed(c, session.ID, "Scrapping criado com sucesso", "/scrappings")
}

func (h *ScrappingHandlers) Update(c echo.Context) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.scrappings.Update(c.Request().Context(), session.UpstreamToken, id, h.scrappingInput(c)); err != nil {
		return h.Fail(c, session, err, "/scrappings")
	}
	return h.Succeed(c, session.ID, "Scrapping atualizado com sucesso", "/scrappings")
}

func (h *ScrappingHandlers) Delete(c echo.Context) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.scrappings.Delete(c.Request().Context(), session.UpstreamToken, id); err != nil {
		return h.Fail(c, session, err, "/scrappings")
	}
	return h.Succeed(c, session.ID, "Scrapping excluído com sucesso", "/scrappings")
}

// Execute kicks off an asynchronous collection run for the source.
func (h *ScrappingHandlers) Execute(c echo.Context) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}

	items, err := h.scrappings.List(c.Request().Context(), session.UpstreamToken)
	if err != nil {
		return h.Fail(c, session, err, "/scrappings")
	}
	var source *models.Scrapping
	for i := range items {
		if items[i].ID == id {
			source = &items[i]
			break
		}
	}
	if source == nil {
		h.Flash(c, session.ID, "Scrapping não encontrado", "error")
		return c.Redirect(http.StatusFound, "/scrappings")
	}

	err = h.runner.Execute(c.Request().Context(), session.UpstreamToken, *source)
	switch {
	case errors.Is(err, scraper.ErrAlreadyRunning):
		h.Flash(c, session.ID, "Esta fonte já está em execução", "error")
		return c.Redirect(http.StatusFound, "/scrappings")
	case errors.Is(err, scraper.ErrSourceInactive):
		h.Flash(c, session.ID, "Ative a fonte antes de executar", "error")
		return c.Redirect(http.StatusFound, "/scrappings")
	case errors.Is(err, scraper.ErrNotScrapable):
		h.Flash(c, session.ID, "Fontes do tipo API não são coletadas pelo painel", "error")
		return c.Redirect(http.StatusFound, "/scrappings")
	case err != nil:
		return h.Fail(c, session, err, "/scrappings")
	}
	return h.Succeed(c, session.ID, "Coleta iniciada", "/scrappings")
}
