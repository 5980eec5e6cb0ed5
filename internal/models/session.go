package models

// Session is the server-side state behind one login: the bearer token issued
// by the upstream API plus the user it belongs to. The browser only carries a
// signed reference to it.
type Session struct {
	ID            string `json:"id"`
	UpstreamToken string `json:"upstream_token"`
	User          User   `json:"user"`
}
