package models

import (
	"time"
)

type File struct {
	ID           string    `json:"id" db:"id"`
	FolderID     string    `json:"folder_id" db:"folder_id"`
	UserID       string    `json:"user_id" db:"user_id"`
	Filename     string    `json:"filename" db:"filename"` // stored name, may carry a _vN suffix
	PhysicalPath string    `json:"file_path" db:"physical_path"`
	Revision     int       `json:"revision" db:"revision"`
	UploadedAt   time.Time `json:"uploaded_at" db:"uploaded_at"`
}

type FileSummary struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	FilePath   string    `json:"file_path"`
	UploadedAt time.Time `json:"uploaded_at"`
	Revision   int       `json:"revision"`
}
