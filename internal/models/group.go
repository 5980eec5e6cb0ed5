package models

// Group is a WhatsApp group managed by the operation. GroupID is the external
// WhatsApp identifier, CategoryID links it to a Category.
type Group struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	GroupID     string `json:"group_id"`
	Description string `json:"description"`
	InviteCode  string `json:"invite_code"`
	ImageURL    string `json:"image_url"`
	Active      bool   `json:"active"`
	CategoryID  int64  `json:"category_id"`
	// Members is not populated by the upstream API yet.
	Members   int    `json:"members"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func (g Group) Status() string {
	return StatusLabel(g.Active)
}
