package view

import (
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/disparabot/admin/internal/models"
)

func TestFormViewModeSuppressesSubmit(t *testing.T) {
	form := &Form{Mode: FormView}
	assert.False(t, form.CanSubmit())
	assert.True(t, form.ReadOnly())

	form.Mode = FormEdit
	assert.True(t, form.CanSubmit())
	assert.False(t, form.ReadOnly())
}

func TestSubmitLabelPerMode(t *testing.T) {
	assert.Equal(t, "Criar", (&Form{Mode: FormCreate}).SubmitLabel())
	assert.Equal(t, "Salvar", (&Form{Mode: FormEdit}).SubmitLabel())
}

func TestModalTitle(t *testing.T) {
	assert.Equal(t, "Criar Categoria", ModalTitle(FormCreate, "Categoria"))
	assert.Equal(t, "Editar Grupo", ModalTitle(FormEdit, "Grupo"))
	assert.Equal(t, "Visualizar Produto", ModalTitle(FormView, "Produto"))
}

func TestBindFormReadsOnlyDeclaredFields(t *testing.T) {
	e := echo.New()
	body := url.Values{}
	body.Set("name", "Ofertas")
	body.Set("active", "ativo")
	body.Set("injected", "evil")

	req := httptest.NewRequest("POST", "/", strings.NewReader(body.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	c := e.NewContext(req, httptest.NewRecorder())

	values := BindForm(c, []Field{
		{Name: "name"},
		{Name: "active"},
	})
	assert.Equal(t, "Ofertas", values["name"])
	assert.Equal(t, "ativo", values["active"])
	_, present := values["injected"]
	assert.False(t, present)
}

func TestFormValueHelpers(t *testing.T) {
	values := map[string]string{
		"price":       "19.90",
		"category_id": "3",
		"active":      "ativo",
		"broken":      "abc",
	}
	assert.Equal(t, 19.90, FormFloat(values, "price"))
	assert.Equal(t, int64(3), FormInt64(values, "category_id"))
	assert.True(t, FormBool(values, "active"))
	assert.False(t, FormBool(values, "missing"))
	assert.Equal(t, int64(0), FormInt64(values, "broken"))
	assert.Equal(t, 0.0, FormFloat(values, "missing"))
}

func TestValuesFromProjectsRecord(t *testing.T) {
	group := models.Group{
		Name:     "Ofertas VIP",
		ImageURL: "https://cdn.example.com/g.png",
		Active:   true,
	}
	values := ValuesFrom(group, groupProjectionFields())
	assert.Equal(t, "Ofertas VIP", values["name"])
	assert.Equal(t, "https://cdn.example.com/g.png", values["image_url"])
	assert.Equal(t, "ativo", values["active"])
	assert.Equal(t, "", values["unset_field"])
}

func groupProjectionFields() []Field {
	return []Field{
		{Name: "name"},
		{Name: "image_url"},
		{Name: "active"},
		{Name: "unset_field"},
	}
}

func TestValuesFromFloatFormatting(t *testing.T) {
	product := models.Product{Price: 19.9}
	values := ValuesFrom(product, []Field{{Name: "price"}})
	assert.Equal(t, "19.9", values["price"])
}

func TestFieldKeyInitialisms(t *testing.T) {
	require.Equal(t, "ImageURL", fieldKey("image_url"))
	require.Equal(t, "CategoryID", fieldKey("category_id"))
	require.Equal(t, "Name", fieldKey("name"))
}
