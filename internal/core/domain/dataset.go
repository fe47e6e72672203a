package domain

import (
	"errors"
	"time"
)

var ErrDatasetNotFound = errors.New("dataset not found")
var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrUnsupportedDatasetType = errors.New("unsupported dataset type")
var ErrJobNotFound = errors.New("ingestion job not found")

// Dataset is a named collection of coding records uploaded by an admin.
// Names are not unique: re-uploading a new revision of a code set under the
// same name is allowed.
type Dataset struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	FilePath    string    `json:"file_path,omitempty"`
	Type        string    `json:"type"`
	UploadedBy  string    `json:"uploaded_by"`
	UploadedAt  time.Time `json:"uploaded_at"`
	// EntryCount is populated on list queries, not stored.
	EntryCount int64 `json:"entry_count"`
}

// Entry is one structured record belonging to a dataset. The shape of Data
// depends on the dataset type; every supported type carries at least a code
// and a description-like field.
type Entry struct {
	ID        string         `json:"id"`
	DatasetID string         `json:"dataset_id"`
	Data      map[string]any `json:"data"`
	CreatedAt time.Time      `json:"created_at"`
}
