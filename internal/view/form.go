package view

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// FieldType is the tagged variant behind each form input.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldTextarea FieldType = "textarea"
	FieldSelect   FieldType = "select"
	FieldNumber   FieldType = "number"
	FieldEmail    FieldType = "email"
	FieldPassword FieldType = "password"
	FieldDate     FieldType = "date"
	FieldTime     FieldType = "time"
)

// FormMode mirrors the three modal modes.
type FormMode string

const (
	FormCreate FormMode = "create"
	FormEdit   FormMode = "edit"
	FormView   FormMode = "view"
)

// Option is one select choice.
type Option struct {
	Value string
	Label string
}

// Field describes one form input. Palette, when set, offers a fixed quick-pick
// row (emoji icons) that overwrites the field's value on click.
type Field struct {
	Name     string
	Label    string
	Type     FieldType
	Required bool
	ReadOnly bool
	Options  []Option
	Palette  []string
}

// Form is the single-record modal: a field list bound to a partial record.
type Form struct {
	Entity string
	Title  string
	Mode   FormMode
	Fields []Field
	Values map[string]string
	// Extra surfaces derived/server-only attributes, view mode only.
	Extra []LabeledValue
	// Image, when set, renders above the fields (the reconnect QR code).
	Image  string
	Action string
}

// ReadOnly reports whether every input renders disabled.
func (f *Form) ReadOnly() bool {
	return f.Mode == FormView
}

// CanSubmit reports whether the form accepts submission at all. View mode
// suppresses the submit action entirely.
func (f *Form) CanSubmit() bool {
	return f.Mode != FormView
}

// Value returns the current value bound to a field name.
func (f *Form) Value(name string) string {
	return f.Values[name]
}

// SubmitLabel is the action button text per mode.
func (f *Form) SubmitLabel() string {
	if f.Mode == FormCreate {
		return "Criar"
	}
	return "Salvar"
}

// ModalTitle composes the title the way every page names its modal.
func ModalTitle(mode FormMode, entityName string) string {
	switch mode {
	case FormCreate:
		return "Criar " + entityName
	case FormEdit:
		return "Editar " + entityName
	case FormView:
		return "Visualizar " + entityName
	default:
		return entityName
	}
}

// BindForm reads only the declared field names out of a submitted form,
// ignoring anything else the request carries.
func BindForm(c echo.Context, fields []Field) map[string]string {
	values := make(map[string]string, len(fields))
	for _, field := range fields {
		values[field.Name] = c.FormValue(field.Name)
	}
	return values
}

// FormInt64 parses a numeric form value, zero when absent or malformed.
func FormInt64(values map[string]string, name string) int64 {
	n, err := strconv.ParseInt(values[name], 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// FormFloat parses a decimal form value, zero when absent or malformed.
func FormFloat(values map[string]string, name string) float64 {
	f, err := strconv.ParseFloat(values[name], 64)
	if err != nil {
		return 0
	}
	return f
}

// FormBool reads checkbox-style values ("on", "true", "1", "ativo").
func FormBool(values map[string]string, name string) bool {
	switch values[name] {
	case "on", "true", "1", "ativo":
		return true
	}
	return false
}

// ValuesFrom projects a record into the string map a form binds to, one entry
// per declared field, using the same lookup contract as table columns.
func ValuesFrom(record interface{}, fields []Field) map[string]string {
	values := make(map[string]string, len(fields))
	for _, field := range fields {
		value, ok := Lookup(record, fieldKey(field.Name))
		if !ok || value == nil {
			values[field.Name] = ""
			continue
		}
		switch v := value.(type) {
		case string:
			values[field.Name] = v
		case bool:
			if v {
				values[field.Name] = "ativo"
			} else {
				values[field.Name] = "inativo"
			}
		case float64:
			values[field.Name] = strconv.FormatFloat(v, 'f', -1, 64)
		default:
			values[field.Name] = fmt.Sprintf("%v", v)
		}
	}
	return values
}

// fieldKey maps a lower-case form name onto the exported struct key.
func fieldKey(name string) string {
	if name == "" {
		return name
	}
	// form names are snake_case; struct keys are exported CamelCase
	parts := []byte(name)
	out := make([]byte, 0, len(parts))
	upper := true
	for _, ch := range parts {
		if ch == '_' {
			upper = true
			continue
		}
		if upper && ch >= 'a' && ch <= 'z' {
			ch -= 'a' - 'A'
		}
		upper = false
		out = append(out, ch)
	}
	return initialisms.Replace(string(out))
}

var initialisms = strings.NewReplacer("Url", "URL", "Id", "ID")
