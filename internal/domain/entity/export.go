package entity

import "time"

// ExportRecord logs one report export attempt
type ExportRecord struct {
	ID           string    `json:"id"`
	ReportKind   string    `json:"report_kind"`
	Format       string    `json:"format"`
	Filename     string    `json:"filename"`
	SizeBytes    int64     `json:"size_bytes"`
	StoragePath  string    `json:"storage_path,omitempty"`
	PreviewPath  string    `json:"preview_path,omitempty"`
	Status       string    `json:"status"`
	ErrorMessage string    `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
