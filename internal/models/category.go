package models

// Category groups products and schedules. Icon is a single emoji picked from
// the palette offered by the category form.
type Category struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Slug          string `json:"slug"`
	Description   string `json:"description"`
	Color         string `json:"color"`
	Icon          string `json:"icon"`
	Active        bool   `json:"active"`
	ProductsCount int    `json:"products_count"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

func (c Category) Status() string {
	return StatusLabel(c.Active)
}

// StatusLabel renders an active flag the way every listing displays it.
func StatusLabel(active bool) string {
	if active {
		return "ativo"
	}
	return "inativo"
}
