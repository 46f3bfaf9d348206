package models

import (
	"strings"
	"time"
)

type Folder struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Path      string    `json:"path" db:"path"` // normalized: lower-case, no leading/trailing slash
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Name returns the display name of the folder (last path segment).
func (f *Folder) Name() string {
	segments := strings.Split(f.Path, "/")
	return segments[len(segments)-1]
}

type FolderSummary struct {
	ID   string `json:"id"`
	Path string `json:"path"`
	Name string `json:"name"`
}
