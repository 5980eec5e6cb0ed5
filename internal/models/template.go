package models

// Template is a reusable message body. Length is derived from Content;
// TimesUsed is not populated by the upstream API yet.
type Template struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Content   string `json:"content"`
	Length    int    `json:"length"`
	TimesUsed int    `json:"times_used"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}
