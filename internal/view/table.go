// Package view renders the generic CRUD surfaces every entity page shares: a
// collection as a row table or card grid, and a single-record form modal
// driven by a declarative field list.
package view

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/disparabot/admin/internal/models"
)

// Action is one of the per-record operations a table can enable.
type Action string

const (
	ActionView   Action = "view"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

// Mode of presentation for a collection.
const (
	ModeTable = "table"
	ModeCards = "cards"
)

// Column pairs a record key with its header label. Key may be a dotted path
// ("Category.Name"); a missing segment renders as an empty cell. Format, when
// set, overrides the default rendering of the looked-up value.
type Column struct {
	Key    string
	Label  string
	Format func(record interface{}) string
}

// CardField is a column plus its card placement: the primary field renders as
// the card title, the secondary as subtitle, the rest as label/value rows.
type CardField struct {
	Column
	Primary   bool
	Secondary bool
}

// ExtraAction is an entity-specific row action (send message, execute,
// reconnect) posted to its own route.
type ExtraAction struct {
	Name    string
	Label   string
	URL     func(id int64) string
	Confirm string
	// Link renders the action as a plain link (opening a modal) instead of a
	// form post.
	Link bool
}

// Table describes how one entity's collection renders.
type Table struct {
	Entity      string
	Columns     []Column
	CardFields  []CardField
	Actions     map[Action]bool
	Extra       []ExtraAction
	DefaultMode string
}

// TableData is the resolved, template-ready form of a Table over a slice.
type TableData struct {
	Entity     string
	Mode       string
	Headers    []string
	Rows       []Row
	HasActions bool
	CanView    bool
	CanEdit    bool
	CanDelete  bool
}

// Row is one resolved record.
type Row struct {
	ID       int64
	Cells    []string
	Title    string
	Subtitle string
	Fields   []LabeledValue
	Extra    []ResolvedAction
}

// LabeledValue is a label/value pair, used by card rows and by the extra
// view-only fields under a form.
type LabeledValue struct {
	Label string
	Value string
}

// ResolvedAction is an ExtraAction bound to a record.
type ResolvedAction struct {
	Name    string
	Label   string
	URL     string
	Confirm string
	Link    bool
}

// Build resolves the descriptor over a record slice. mode overrides the
// default presentation when non-empty.
func (t *Table) Build(items interface{}, mode string) (*TableData, error) {
	v := reflect.ValueOf(items)
	if v.Kind() != reflect.Slice {
		return nil, fmt.Errorf("table data must be a slice, got %T", items)
	}

	if mode != ModeTable && mode != ModeCards {
		mode = t.DefaultMode
	}
	if mode == "" {
		mode = ModeTable
	}

	data := &TableData{
		Entity:    t.Entity,
		Mode:      mode,
		CanView:   t.Actions[ActionView],
		CanEdit:   t.Actions[ActionEdit],
		CanDelete: t.Actions[ActionDelete],
	}
	data.HasActions = data.CanView || data.CanEdit || data.CanDelete || len(t.Extra) > 0

	for _, col := range t.Columns {
		data.Headers = append(data.Headers, col.Label)
	}

	for i := 0; i < v.Len(); i++ {
		record := v.Index(i).Interface()
		row := Row{ID: recordID(record)}

		for _, col := range t.Columns {
			row.Cells = append(row.Cells, col.render(record))
		}
		for _, field := range t.CardFields {
			value := field.render(record)
			switch {
			case field.Primary:
				row.Title = value
			case field.Secondary:
				row.Subtitle = value
			default:
				row.Fields = append(row.Fields, LabeledValue{Label: field.Label, Value: value})
			}
		}
		for _, extra := range t.Extra {
			row.Extra = append(row.Extra, ResolvedAction{
				Name:    extra.Name,
				Label:   extra.Label,
				URL:     extra.URL(row.ID),
				Confirm: extra.Confirm,
				Link:    extra.Link,
			})
		}
		data.Rows = append(data.Rows, row)
	}
	return data, nil
}

func (c Column) render(record interface{}) string {
	if c.Format != nil {
		return c.Format(record)
	}
	value, ok := Lookup(record, c.Key)
	if !ok || value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	case bool:
		return models.StatusLabel(v)
	case float64:
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Lookup resolves a possibly dotted key against a record, traversing struct
// fields (and map keys) segment by segment. Any absent segment yields
// (nil, false) instead of an error.
func Lookup(record interface{}, key string) (interface{}, bool) {
	value := reflect.ValueOf(record)
	for _, segment := range strings.Split(key, ".") {
		for value.Kind() == reflect.Pointer || value.Kind() == reflect.Interface {
			if value.IsNil() {
				return nil, false
			}
			value = value.Elem()
		}
		switch value.Kind() {
		case reflect.Struct:
			field := value.FieldByName(segment)
			if !field.IsValid() {
				// fall back to the record's own accessor methods
				method := methodByName(value, segment)
				if !method.IsValid() {
					return nil, false
				}
				results := method.Call(nil)
				if len(results) == 0 {
					return nil, false
				}
				value = results[0]
				continue
			}
			value = field
		case reflect.Map:
			entry := value.MapIndex(reflect.ValueOf(segment))
			if !entry.IsValid() {
				return nil, false
			}
			value = entry
		default:
			return nil, false
		}
	}
	for value.Kind() == reflect.Pointer || value.Kind() == reflect.Interface {
		if value.IsNil() {
			return nil, false
		}
		value = value.Elem()
	}
	if !value.IsValid() {
		return nil, false
	}
	return value.Interface(), true
}

func methodByName(value reflect.Value, name string) reflect.Value {
	method := value.MethodByName(name)
	if method.IsValid() && method.Type().NumIn() == 0 && method.Type().NumOut() >= 1 {
		return method
	}
	if value.CanAddr() {
		method = value.Addr().MethodByName(name)
		if method.IsValid() && method.Type().NumIn() == 0 && method.Type().NumOut() >= 1 {
			return method
		}
	}
	return reflect.Value{}
}

func recordID(record interface{}) int64 {
	value, ok := Lookup(record, "ID")
	if !ok {
		return 0
	}
	switch id := value.(type) {
	case int64:
		return id
	case int:
		return int64(id)
	default:
		return 0
	}
}
