package domain

import "time"

// Document is an attachment stored for a claim.
type Document struct {
	Key          string    `json:"key"`
	FileName     string    `json:"fileName"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"contentType,omitempty"`
	LastModified time.Time `json:"lastModified"`
}

// UploadResult is returned after a document upload.
type UploadResult struct {
	DocumentKey string `json:"documentKey"`
	Size        int64  `json:"size"`
}
