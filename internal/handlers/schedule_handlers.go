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

// ScheduleHandlers serves the schedule page, its mutations and the
// activate/deactivate toggle.
type ScheduleHandlers struct {
	Base
	schedules  *resources.Schedules
	groups     *resources.Groups
	categories *resources.Categories
	templates  *resources.Templates
}

func NewScheduleHandlers(base Base, schedules *resources.Schedules, groups *resources.Groups, categories *resources.Categories, templates *resources.Templates) *ScheduleHandlers {
	return &ScheduleHandlers{Base: base, schedules: schedules, groups: groups, categories: categories, templates: templates}
}

var scheduleTable = &view.Table{
	Entity: "agendamentos",
	Columns: []view.Column{
		{Key: "Name", Label: "Nome"},
		{Key: "Time", Label: "Horário"},
		{Key: "CategoryName", Label: "Categoria"},
		{Key: "Status", Label: "Status"},
	},
	CardFields: []view.CardField{
		{Column: view.Column{Key: "Name", Label: "Nome"}, Primary: true},
		{Column: view.Column{Key: "Time", Label: "Horário"}, Secondary: true},
		{Column: view.Column{Key: "CategoryName", Label: "Categoria"}},
		{Column: view.Column{Key: "Status", Label: "Status"}},
	},
	Actions: map[view.Action]bool{
		view.ActionView:   true,
		view.ActionEdit:   true,
		view.ActionDelete: true,
	},
	Extra: []view.ExtraAction{
		{Name: "toggle", Label: "⏯", Confirm: "Alterar o status deste agendamento?", URL: func(id int64) string {
			return fmt.Sprintf("/agendamentos/%d/toggle", id)
		}},
	},
	DefaultMode: view.ModeTable,
}

func scheduleFields(groups []models.Group, categories []models.Category, templates []models.Template) []view.Field {
	groupOptions := make([]view.Option, 0, len(groups))
	for _, group := range groups {
		groupOptions = append(groupOptions, view.Option{Value: strconv.FormatInt(group.ID, 10), Label: group.Name})
	}
	categoryOptions := make([]view.Option, 0, len(categories))
	for _, cat := range categories {
		categoryOptions = append(categoryOptions, view.Option{Value: strconv.FormatInt(cat.ID, 10), Label: cat.Name})
	}
	templateOptions := make([]view.Option, 0, len(templates))
	for _, tmpl := range templates {
		templateOptions = append(templateOptions, view.Option{Value: strconv.FormatInt(tmpl.ID, 10), Label: tmpl.Name})
	}
	return []view.Field{
		{Name: "group_id", Label: "Grupo", Type: view.FieldSelect, Required: true, Options: groupOptions},
		{Name: "category_id", Label: "Categoria", Type: view.FieldSelect, Required: true, Options: categoryOptions},
		{Name: "template_id", Label: "Template", Type: view.FieldSelect, Required: true, Options: templateOptions},
		{Name: "time", Label: "Horário", Type: view.FieldTime, Required: true},
		{Name: "active", Label: "Status", Type: view.FieldSelect, Options: []view.Option{
			{Value: "ativo", Label: "Ativo"},
			{Value: "inativo", Label: "Inativo"},
		}},
	}
}

func (h *ScheduleHandlers) Page(c echo.Context) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	items, err := h.schedules.List(ctx, session.UpstreamToken)
	if err != nil {
		return h.Fail(c, session, err, "/dashboard")
	}

	table, err := scheduleTable.Build(items, c.QueryParam("view"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Erro ao montar listagem")
	}

	data := PageData{
		Title:      "Agendamentos",
		Active:     "agendamentos",
		BasePath:   "/agendamentos",
		ViewToggle: true,
		Flash:      h.TakeFlash(c, session.ID),
		Table:      table,
	}

	if modal := c.QueryParam("modal"); modal != "" {
		groups, err := h.groups.List(ctx, session.UpstreamToken)
		if err != nil {
			return h.Fail(c, session, err, "/agendamentos")
		}
		categories, err := h.categories.List(ctx, session.UpstreamToken)
		if err != nil {
			return h.Fail(c, session, err, "/agendamentos")
		}
		templates, err := h.templates.List(ctx, session.UpstreamToken)
		if err != nil {
			return h.Fail(c, session, err, "/agendamentos")
		}

		mode := view.FormMode(modal)
		form := &view.Form{
			Entity: "agendamentos",
			Title:  view.ModalTitle(mode, "Agendamento"),
			Mode:   mode,
			Fields: scheduleFields(groups, categories, templates),
			Action: "/agendamentos",
		}
		if mode != view.FormCreate {
			id, _ := strconv.ParseInt(c.QueryParam("id"), 10, 64)
			for _, schedule := range items {
				if schedule.ID == id {
					form.Values = view.ValuesFrom(schedule, form.Fields)
					form.Extra = []view.LabeledValue{
						{Label: "Grupo", Value: schedule.GroupName},
						{Label: "Template", Value: schedule.TemplateName},
						{Label: "Criado em", Value: schedule.CreatedAt},
					}
					break
				}
			}
			form.Action = fmt.Sprintf("/agendamentos/%d", id)
		}
		data.Form = form
	}

	return c.Render(http.StatusOK, "page.html", data)
}

func (h *ScheduleHandlers) scheduleInput(c echo.Context) resources.ScheduleInput {
	values := view.BindForm(c, scheduleFields(nil, nil, nil))
	return resources.ScheduleInput{
		GroupID:    view.FormInt64(values, "group_id"),
		CategoryID: view.FormInt64(values, "category_id"),
		TemplateID: view.FormInt64(values, "template_id"),
		Time:       values["time"],
		Active:     view.FormBool(values, "active"),
	}
}

func (h *ScheduleHandlers) Create(c echo.Context) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	in := h.scheduleInput(c)
	if in.GroupID == 0 || in.TemplateID == 0 || in.Time == "" {
		h.Flash(c, session.ID, "Grupo, template e horário são obrigatórios", "error")
		return c.Redirect(http.StatusFound, "/agendamentos?modal=create")
	}
	if err := h.schedules.Create(c.Request().Context(), session.UpstreamToken, in); err != nil {
		return h.Fail(c, session, err, "/agendamentos")
	}
	return h.Succeed(c, session.ID, "Agendamento criado com sucesso", "/agendamentos")
}

func (h *ScheduleHandlers) Update(c echo.Context) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.schedules.Update(c.Request().Context(), session.UpstreamToken, id, h.scheduleInput(c)); err != nil {
		return h.Fail(c, session, err, "/agendamentos")
	}
	return h.Succeed(c, session.ID, "Agendamento atualizado com sucesso", "/agendamentos")
}

// Toggle flips the schedule's active flag.
func (h *ScheduleHandlers) Toggle(c echo.Context) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}

	items, err := h.schedules.List(c.Request().Context(), session.UpstreamToken)
	if err != nil {
		return h.Fail(c, session, err, "/agendamentos")
	}
	var current *models.Schedule
	for i := range items {
		if items[i].ID == id {
			current = &items[i]
			break
		}
	}
	if current == nil {
		h.Flash(c, session.ID, "Agendamento não encontrado", "error")
		return c.Redirect(http.StatusFound, "/agendamentos")
	}

	if err := h.schedules.SetActive(c.Request().Context(), session.UpstreamToken, id, !current.Active); err != nil {
		return h.Fail(c, session, err, "/agendamentos")
	}
	if current.Active {
		return h.Succeed(c, session.ID, "Agendamento desativado", "/agendamentos")
	}
	return h.Succeed(c, session.ID, "Agendamento ativado", "/agendamentos")
}

func (h *ScheduleHandlers) Delete(c echo.Context) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.schedules.Delete(c.Request().Context(), session.UpstreamToken, id); err != nil {
		return h.Fail(c, session, err, "/agendamentos")
	}
	return h.Succeed(c, session.ID, "Agendamento excluído com sucesso", "/agendamentos")
}
