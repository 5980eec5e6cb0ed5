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

// GroupHandlers serves the group page, its mutations and the two per-group
// operations: sending an ad-hoc message and firing a dispatch through a
// chosen instance.
type GroupHandlers struct {
	Base
	groups     *resources.Groups
	categories *resources.Categories
	instances  *resources.Instances
}

func NewGroupHandlers(base Base, groups *resources.Groups, categories *resources.Categories, instances *resources.Instances) *GroupHandlers {
	return &GroupHandlers{Base: base, groups: groups, categories: categories, instances: instances}
}

var groupTable = &view.Table{
	Entity: "grupos",
	Columns: []view.Column{
		{Key: "Name", Label: "Nome"},
		{Key: "Description", Label: "Descrição"},
		{Key: "Members", Label: "Membros"},
		{Key: "Status", Label: "Status"},
	},
	CardFields: []view.CardField{
		{Column: view.Column{Key: "Name", Label: "Nome"}, Primary: true},
		{Column: view.Column{Key: "Description", Label: "Descrição"}, Secondary: true},
		{Column: view.Column{Key: "Members", Label: "Membros"}},
		{Column: view.Column{Key: "Status", Label: "Status"}},
	},
	Actions: map[view.Action]bool{
		view.ActionView:   true,
		view.ActionEdit:   true,
		view.ActionDelete: true,
	},
	Extra: []view.ExtraAction{
		{Name: "message", Label: "💬", Link: true, URL: func(id int64) string {
			return fmt.Sprintf("/grupos?modal=message&id=%d", id)
		}},
		{Name: "disparo", Label: "🚀", Link: true, URL: func(id int64) string {
			return fmt.Sprintf("/grupos?modal=disparo&id=%d", id)
		}},
	},
	DefaultMode: view.ModeCards,
}

func groupFields(categories []models.Category) []view.Field {
	options := make([]view.Option, 0, len(categories))
	for _, cat := range categories {
		options = append(options, view.Option{Value: strconv.FormatInt(cat.ID, 10), Label: cat.Name})
	}
	return []view.Field{
		{Name: "name", Label: "Nome", Type: view.FieldText, Required: true},
		{Name: "group_id", Label: "ID do Grupo (WhatsApp)", Type: view.FieldText, Required: true},
		{Name: "description", Label: "Descrição", Type: view.FieldTextarea},
		{Name: "invite_code", Label: "Código de Convite", Type: view.FieldText},
		{Name: "image_url", Label: "URL da Imagem", Type: view.FieldText},
		{Name: "category_id", Label: "Categoria", Type: view.FieldSelect, Options: options},
		{Name: "active", Label: "Status", Type: view.FieldSelect, Options: []view.Option{
			{Value: "ativo", Label: "Ativo"},
			{Value: "inativo", Label: "Inativo"},
		}},
	}
}

func (h *GroupHandlers) Page(c echo.Context) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	items, err := h.groups.List(ctx, session.UpstreamToken)
	if err != nil {
		return h.Fail(c, session, err, "/dashboard")
	}

	table, err := groupTable.Build(items, c.QueryParam("view"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Erro ao montar listagem")
	}

	data := PageData{
		Title:      "Grupos",
		Active:     "grupos",
		BasePath:   "/grupos",
		ViewToggle: true,
		Flash:      h.TakeFlash(c, session.ID),
		Table:      table,
	}

	switch modal := c.QueryParam("modal"); modal {
	case "":
	case "message":
		id, _ := strconv.ParseInt(c.QueryParam("id"), 10, 64)
		data.Form = &view.Form{
			Entity: "grupos",
			Title:  "Enviar Mensagem",
			Mode:   view.FormCreate,
			Fields: []view.Field{
				{Name: "message", Label: "Mensagem", Type: view.FieldTextarea, Required: true},
			},
			Action: fmt.Sprintf("/grupos/%d/mensagem", id),
		}
	case "disparo":
		id, _ := strconv.ParseInt(c.QueryParam("id"), 10, 64)
		instances, err := h.instances.List(ctx, session.UpstreamToken)
		if err != nil {
			return h.Fail(c, session, err, "/grupos")
		}
		options := make([]view.Option, 0, len(instances))
		for _, inst := range instances {
			options = append(options, view.Option{Value: strconv.FormatInt(inst.ID, 10), Label: inst.Name})
		}
		data.Form = &view.Form{
			Entity: "grupos",
			Title:  "Disparar para o Grupo",
			Mode:   view.FormCreate,
			Fields: []view.Field{
				{Name: "instance_id", Label: "Instância", Type: view.FieldSelect, Required: true, Options: options},
			},
			Action: fmt.Sprintf("/grupos/%d/disparo", id),
		}
	default:
		categories, err := h.categories.List(ctx, session.UpstreamToken)
		if err != nil {
			return h.Fail(c, session, err, "/grupos")
		}
		mode := view.FormMode(modal)
		form := &view.Form{
			Entity: "grupos",
			Title:  view.ModalTitle(mode, "Grupo"),
			Mode:   mode,
			Fields: groupFields(categories),
			Action: "/grupos",
		}
		if mode != view.FormCreate {
			id, _ := strconv.ParseInt(c.QueryParam("id"), 10, 64)
			for _, group := range items {
				if group.ID == id {
					form.Values = view.ValuesFrom(group, form.Fields)
					form.Extra = []view.LabeledValue{
						{Label: "Membros", Value: strconv.Itoa(group.Members)},
						{Label: "Criado em", Value: group.CreatedAt},
					}
					break
				}
			}
			form.Action = fmt.Sprintf("/grupos/%d", id)
		}
		data.Form = form
	}

	return c.Render(http.StatusOK, "page.html", data)
}

func (h *GroupHandlers) groupInput(c echo.Context) resources.GroupInput {
	values := view.BindForm(c, groupFields(nil))
	return resources.GroupInput{
		Name:        values["name"],
		GroupID:     values["group_id"],
		Description: values["description"],
		InviteCode:  values["invite_code"],
		ImageURL:    values["image_url"],
		CategoryID:  view.FormInt64(values, "category_id"),
		Active:      view.FormBool(values, "active"),
	}
}

func (h *GroupHandlers) Create(c echo.Context) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	in := h.groupInput(c)
	if in.Name == "" || in.GroupID == "" {
		h.Flash(c, session.ID, "Nome e ID do grupo são obrigatórios", "error")
		return c.Redirect(http.StatusFound, "/grupos?modal=create")
	}
	if err := h.groups.Create(c.Request().Context(), session.UpstreamToken, in); err != nil {
		return h.Fail(c, session, err, "/grupos")
	}
	return h.Succeed(c, session.ID, "Grupo criado com sucesso", "/grupos")
}

func (h *GroupHandlers) Update(c echo.Context) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.groups.Update(c.Request().Context(), session.UpstreamToken, id, h.groupInput(c)); err != nil {
		return h.Fail(c, session, err, "/grupos")
	}
	return h.Succeed(c, session.ID, "Grupo atualizado com sucesso", "/grupos")
}

func (h *GroupHandlers) Delete(c echo.Context) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.groups.Delete(c.Request().Context(), session.UpstreamToken, id); err != nil {
		return h.Fail(c, session, err, "/grupos")
	}
	return h.Succeed(c, session.ID, "Grupo excluído com sucesso", "/grupos")
}

// SendMessage posts an ad-hoc message into the group. The list cache stays
// untouched: nothing about the group itself changed.
func (h *GroupHandlers) SendMessage(c echo.Context) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	message := c.FormValue("message")
	if message == "" {
		h.Flash(c, session.ID, "Mensagem é obrigatória", "error")
		return c.Redirect(http.StatusFound, fmt.Sprintf("/grupos?modal=message&id=%d", id))
	}
	if err := h.groups.SendMessage(c.Request().Context(), session.UpstreamToken, id, message); err != nil {
		return h.Fail(c, session, err, "/grupos")
	}
	return h.Succeed(c, session.ID, "Mensagem enviada com sucesso", "/grupos")
}

// Dispatch points the group's trigger at the chosen instance.
func (h *GroupHandlers) Dispatch(c echo.Context) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	instanceID, err := strconv.ParseInt(c.FormValue("instance_id"), 10, 64)
	if err != nil || instanceID <= 0 {
		h.Flash(c, session.ID, "Selecione uma instância", "error")
		return c.Redirect(http.StatusFound, fmt.Sprintf("/grupos?modal=disparo&id=%d", id))
	}
	if err := h.groups.UpdateTrigger(c.Request().Context(), session.UpstreamToken, id, instanceID); err != nil {
		return h.Fail(c, session, err, "/grupos")
	}
	return h.Succeed(c, session.ID, "Disparo configurado com sucesso", "/grupos")
}
