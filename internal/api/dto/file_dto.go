package dto

// FileResponse is the public shape of an uploaded file. URL is derived from
// the configured base URL.
type FileResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
	URL  string `json:"url"`
}
