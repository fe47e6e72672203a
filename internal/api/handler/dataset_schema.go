package handler

import (
	"time"

	"github.com/medidata/dataset-system/internal/core/domain"
)

type uploadRequest struct {
	Name        string `form:"name"        validate:"required"`
	Description string `form:"description"`
	DatasetType string `form:"datasetType" validate:"required"`
}

type uploadAcceptedResponse struct {
	Message  string `json:"message"`
	Filename string `json:"filename"`
	JobID    string `json:"job_id"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type datasetResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	UploadedBy  string    `json:"uploaded_by"`
	UploadedAt  time.Time `json:"uploaded_at"`
	EntryCount  int64     `json:"entry_count"`
}

type entriesResponse struct {
	Entries     []*domain.Entry `json:"entries"`
	Count       int64           `json:"count"`
	CurrentPage int             `json:"currentPage"`
	TotalPages  int             `json:"totalPages"`
}
