package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/disparabot/admin/internal/poller"
	"github.com/disparabot/admin/internal/resources"
	"github.com/disparabot/admin/internal/view"
)

// InstanceHandlers serves the instance page, its mutations, the reconnect QR
// modal and the JSON status probe.
type InstanceHandlers struct {
	Base
	instances *resources.Instances
	watcher   *poller.Watcher
}

func NewInstanceHandlers(base Base, instances *resources.Instances, watcher *poller.Watcher) *InstanceHandlers {
	return &InstanceHandlers{Base: base, instances: instances, watcher: watcher}
}

var instanceTable = &view.Table{
	Entity: "instancias",
	Columns: []view.Column{
		{Key: "Name", Label: "Nome"},
		{Key: "Phone", Label: "Telefone"},
		{Key: "Connection", Label: "Conexão"},
	},
	CardFields: []view.CardField{
		{Column: view.Column{Key: "Name", Label: "Nome"}, Primary: true},
		{Column: view.Column{Key: "Phone", Label: "Telefone"}, Secondary: true},
		{Column: view.Column{Key: "Connection", Label: "Conexão"}},
	},
	Actions: map[view.Action]bool{
		view.ActionView:   true,
		view.ActionEdit:   true,
		view.ActionDelete: true,
	},
	Extra: []view.ExtraAction{
		{Name: "qr", Label: "🔄", Link: true, URL: func(id int64) string {
			return fmt.Sprintf("/instancias?modal=qr&id=%d", id)
		}},
	},
	DefaultMode: view.ModeCards,
}

func instanceFields() []view.Field {
	return []view.Field{
		{Name: "name", Label: "Nome", Type: view.FieldText, Required: true},
		{Name: "phone", Label: "Telefone", Type: view.FieldText},
	}
}

func (h *InstanceHandlers) Page(c echo.Context) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	items, err := h.instances.List(ctx, session.UpstreamToken)
	if err != nil {
		return h.Fail(c, session, err, "/dashboard")
	}

	table, err := instanceTable.Build(items, c.QueryParam("view"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Erro ao montar listagem")
	}

	data := PageData{
		Title:      "Instâncias",
		Active:     "instancias",
		BasePath:   "/instancias",
		ViewToggle: true,
		Flash:      h.TakeFlash(c, session.ID),
		Table:      table,
	}

	switch modal := c.QueryParam("modal"); modal {
	case "":
	case "qr":
		id, _ := strconv.ParseInt(c.QueryParam("id"), 10, 64)
		status, err := h.instances.Status(ctx, session.UpstreamToken, id)
		if err != nil {
			return h.Fail(c, session, err, "/instancias")
		}
		form := &view.Form{
			Entity: "instancias",
			Title:  "Reconectar Instância",
			Mode:   view.FormView,
			Extra: []view.LabeledValue{
				{Label: "Instância", Value: status.InstanceName},
				{Label: "Conexão", Value: status.Connection()},
			},
			Action: "/instancias",
		}
		if status.PairingCode != "" {
			form.Extra = append(form.Extra, view.LabeledValue{Label: "Código de Pareamento", Value: status.PairingCode})
		}
		if status.QRCodeBase64 != "" {
			form.Image = qrDataURL(status.QRCodeBase64)
		}
		data.Form = form
	default:
		mode := view.FormMode(modal)
		form := &view.Form{
			Entity: "instancias",
			Title:  view.ModalTitle(mode, "Instância"),
			Mode:   mode,
			Fields: instanceFields(),
			Action: "/instancias",
		}
		if mode != view.FormCreate {
			id, _ := strconv.ParseInt(c.QueryParam("id"), 10, 64)
			for _, inst := range items {
				if inst.ID == id {
					form.Values = view.ValuesFrom(inst, form.Fields)
					form.Extra = []view.LabeledValue{
						{Label: "Conexão", Value: inst.Connection},
						{Label: "Criada em", Value: inst.CreatedAt},
					}
					break
				}
			}
			form.Action = fmt.Sprintf("/instancias/%d", id)
		}
		data.Form = form
	}

	return c.Render(http.StatusOK, "page.html", data)
}

// qrDataURL wraps the upstream QR material into an img-ready URL; some
// responses already carry the data: prefix.
func qrDataURL(qr string) string {
	if strings.HasPrefix(qr, "data:") {
		return qr
	}
	return "data:image/png;base64," + qr
}

func (h *InstanceHandlers) instanceInput(c echo.Context) resources.InstanceInput {
	values := view.BindForm(c, instanceFields())
	return resources.InstanceInput{
		Name:  values["name"],
		Phone: values["phone"],
	}
}

func (h *InstanceHandlers) Create(c echo.Context) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	in := h.instanceInput(c)
	if in.Name == "" {
		h.Flash(c, session.ID, "Nome é obrigatório", "error")
		return c.Redirect(http.StatusFound, "/instancias?modal=create")
	}
	if err := h.instances.Create(c.Request().Context(), session.UpstreamToken, in); err != nil {
		return h.Fail(c, session, err, "/instancias")
	}
	return h.Succeed(c, session.ID, "Instância criada com sucesso", "/instancias")
}

func (h *InstanceHandlers) Update(c echo.Context) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.instances.Update(c.Request().Context(), session.UpstreamToken, id, h.instanceInput(c)); err != nil {
		return h.Fail(c, session, err, "/instancias")
	}
	return h.Succeed(c, session.ID, "Instância atualizada com sucesso", "/instancias")
}

func (h *InstanceHandlers) Delete(c echo.Context) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.instances.Delete(c.Request().Context(), session.UpstreamToken, id); err != nil {
		return h.Fail(c, session, err, "/instancias")
	}
	h.watcher.Unwatch(id)
	return h.Succeed(c, session.ID, "Instância excluída com sucesso", "/instancias")
}

// Status is the JSON probe polled by the instance page while a reconnect
// modal is open.
func (h *InstanceHandlers) Status(c echo.Context) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	status, err := h.instances.Status(c.Request().Context(), session.UpstreamToken, id)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "Erro ao consultar status da instância")
	}
	return c.JSON(http.StatusOK, status)
}
