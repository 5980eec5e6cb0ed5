package models

// LinktreeItem is one entry of the public landing page. Items render sorted
// by Order; only active items appear on the public route.
type LinktreeItem struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	Icon      string `json:"icon"`
	Order     int    `json:"order"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func (l LinktreeItem) Status() string {
	return StatusLabel(l.Active)
}
