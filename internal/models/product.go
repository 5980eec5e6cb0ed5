package models

// Product is an affiliate product pushed to groups.
type Product struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	ImageURL      string  `json:"image_url"`
	Price         float64 `json:"price"`
	URL           string  `json:"url"`
	CategoryID    int64   `json:"category_id"`
	AffiliateID   int64   `json:"affiliate_id"`
	Source        string  `json:"source"`
	AffiliateCode string  `json:"affiliate_code"`
	Active        bool    `json:"active"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

func (p Product) Status() string {
	return StatusLabel(p.Active)
}

// ProductInput is the payload accepted by the upstream product endpoints.
type ProductInput struct {
	Name          string  `json:"name"`
	Description   string  `json:"description,omitempty"`
	ImageURL      string  `json:"image_url,omitempty"`
	Price         float64 `json:"price"`
	URL           string  `json:"url"`
	CategoryID    int64   `json:"category_id,omitempty"`
	AffiliateID   int64   `json:"affiliate_id,omitempty"`
	Source        string  `json:"source,omitempty"`
	AffiliateCode string  `json:"affiliate_code,omitempty"`
	IsActive      bool    `json:"is_active"`
}
