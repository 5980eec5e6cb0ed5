package models

import "fmt"

// Schedule fires a template into a group at a fixed time of day. The
// denormalized names come from the upstream list endpoint and exist only for
// display.
type Schedule struct {
	ID         int64  `json:"id"`
	GroupID    int64  `json:"group_id"`
	CategoryID int64  `json:"category_id"`
	TemplateID int64  `json:"template_id"`
	Time       string `json:"time"`
	Active     bool   `json:"active"`

	GroupName    string `json:"group_name"`
	CategoryName string `json:"category_name"`
	TemplateName string `json:"template_name"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func (s Schedule) Status() string {
	return StatusLabel(s.Active)
}

// Name is the display label used by listings.
func (s Schedule) Name() string {
	return fmt.Sprintf("%s - %s", s.TemplateName, s.GroupName)
}
