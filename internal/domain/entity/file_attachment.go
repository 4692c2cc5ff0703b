package entity

import "time"

// FileAttachment is a document embedded inline in an Incident.
// URL holds the whole file content as a data URL, so no external storage is referenced.
type FileAttachment struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	Type       string    `json:"type"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// CloneFiles copies an attachment list. A nil list becomes an empty one.
func CloneFiles(files []FileAttachment) []FileAttachment {
	out := make([]FileAttachment, len(files))
	copy(out, files)
	return out
}
