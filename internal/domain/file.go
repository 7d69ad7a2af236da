package domain

import "time"

// File is an uploaded avatar image stored on local disk.
type File struct {
	ID        string
	Name      string
	Path      string
	CreatedAt time.Time
}

// URL derives the public address of the file from the configured base URL.
// Computed on demand, never stored.
func (f *File) URL(baseURL string) string {
	return baseURL + "/files/" + f.Path
}
