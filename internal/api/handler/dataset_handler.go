package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medidata/dataset-system/internal/core/domain"
	"github.com/medidata/dataset-system/internal/core/ports"
	"github.com/medidata/dataset-system/internal/ingest"
)

// JobDispatcher is the interface the handler uses to enqueue ingestion jobs.
type JobDispatcher interface {
	Enqueue(job ports.IngestJob)
}

// DatasetHandler handles HTTP requests for dataset operations.
type DatasetHandler struct {
	service    ports.DatasetService
	dispatcher JobDispatcher
	jobs       ports.JobStore
	uploadDir  string
}

func NewDatasetHandler(service ports.DatasetService, dispatcher JobDispatcher, jobs ports.JobStore, uploadDir string) *DatasetHandler {
	return &DatasetHandler{service: service, dispatcher: dispatcher, jobs: jobs, uploadDir: uploadDir}
}

// Upload accepts a multipart dataset upload and acknowledges it with 202
// before any processing happens. The heavy work (cleaning, parsing, entry
// insertion) runs on the ingestion worker pool; progress is queryable via
// the job status endpoint.
//
// @Summary      Upload a dataset file
// @Tags         datasets
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        name         formData  string  true   "Dataset name"
// @Param        description  formData  string  false  "Dataset description"
// @Param        datasetType  formData  string  true   "Dataset type (e.g. ICD-10-CM)"
// @Param        file         formData  file    true   "Plain-text dataset file"
// @Success     202  {object}  uploadAcceptedResponse
// @Failure     400  {object}  errorResponse
// @Router       /datasets/upload [post]
func (h *DatasetHandler) Upload(c echo.Context) error {
	var req uploadRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	// Unsupported types fail here, synchronously: the client must see
	// input-validation errors before the acknowledgment, not in a log.
	if !ingest.SupportedType(req.DatasetType) {
		return echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("unsupported dataset type: %s", req.DatasetType))
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	if ct := fileHeader.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "text/plain") {
		return echo.NewHTTPError(http.StatusBadRequest, "only plain text files are accepted")
	}

	storedPath, err := h.saveUpload(fileHeader)
	if err != nil {
		return fmt.Errorf("store upload: %w", err)
	}
	if _, err := os.Stat(storedPath); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "uploaded file not found on server")
	}

	userID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	job := ports.IngestJob{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		DatasetType: req.DatasetType,
		FilePath:    storedPath,
		Filename:    fileHeader.Filename,
		UploadedBy:  userID,
	}

	// The 202 promises a pollable job, so the queued state must be visible
	// before the acknowledgment goes out. Nothing has been processed yet, so
	// a failed write rejects the upload instead of acknowledging a job the
	// status endpoint cannot see.
	if err := h.jobs.Set(c.Request().Context(), ports.JobStatus{JobID: job.ID, State: ports.JobQueued}); err != nil {
		return fmt.Errorf("record queued job: %w", err)
	}
	h.dispatcher.Enqueue(job)

	return c.JSON(http.StatusAccepted, uploadAcceptedResponse{
		Message:  "dataset upload accepted for processing",
		Filename: fileHeader.Filename,
		JobID:    job.ID,
	})
}

// saveUpload copies the multipart file into the upload directory under a
// timestamp-prefixed name so repeated uploads never collide.
func (h *DatasetHandler) saveUpload(fileHeader *multipart.FileHeader) (string, error) {
	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	src, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	path := filepath.Join(h.uploadDir, storedFilename(fileHeader.Filename))
	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return path, nil
}

// List returns all dataset metadata, newest upload first.
//
// @Summary      List datasets
// @Tags         datasets
// @Produce      json
// @Success      200  {array}  datasetResponse
// @Router       /datasets [get]
func (h *DatasetHandler) List(c echo.Context) error {
	datasets, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}

	resp := make([]datasetResponse, 0, len(datasets))
	for _, d := range datasets {
		resp = append(resp, toDatasetResponse(d))
	}
	return c.JSON(http.StatusOK, resp)
}

// Entries returns one page of a dataset's entries, optionally filtered by a
// search term (code prefix or description substring, case-insensitive).
//
// @Summary      Fetch dataset entries
// @Tags         datasets
// @Produce      json
// @Security     BearerAuth
// @Param        datasetId   path   string  true   "Dataset ID"
// @Param        searchTerm  query  string  false  "Search term"
// @Param        page        query  int     false  "Page (1-based)"
// @Param        limit       query  int     false  "Rows per page"
// @Success      200  {object}  entriesResponse
// @Failure      404  {object}  errorResponse
// @Router       /datasets/{datasetId}/entries [get]
func (h *DatasetHandler) Entries(c echo.Context) error {
	userID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	result, err := h.service.Entries(c.Request().Context(), ports.EntriesInput{
		DatasetID:  c.Param("datasetId"),
		SearchTerm: c.QueryParam("searchTerm"),
		Page:       page,
		Limit:      limit,
		UserID:     userID,
		IP:         c.RealIP(),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, entriesResponse{
		Entries:     result.Entries,
		Count:       result.Count,
		CurrentPage: result.Page,
		TotalPages:  result.TotalPages,
	})
}

// Delete removes a dataset with its entries and usage logs.
//
// @Summary      Delete a dataset
// @Tags         datasets
// @Produce      json
// @Security     BearerAuth
// @Param        datasetId  path  string  true  "Dataset ID"
// @Success      200  {object}  messageResponse
// @Failure      404  {object}  errorResponse
// @Router       /datasets/{datasetId} [delete]
func (h *DatasetHandler) Delete(c echo.Context) error {
	userID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	err = h.service.Delete(c.Request().Context(), ports.DeleteDatasetInput{
		DatasetID: c.Param("datasetId"),
		UserID:    userID,
		IP:        c.RealIP(),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "dataset deleted successfully"})
}

// JobStatus reports the state of an ingestion job accepted by Upload.
//
// @Summary      Query ingestion job status
// @Tags         datasets
// @Produce      json
// @Security     BearerAuth
// @Param        jobId  path  string  true  "Job ID returned by the upload acknowledgment"
// @Success      200  {object}  ports.JobStatus
// @Failure      404  {object}  errorResponse
// @Router       /datasets/jobs/{jobId} [get]
func (h *DatasetHandler) JobStatus(c echo.Context) error {
	status, err := h.jobs.Get(c.Request().Context(), c.Param("jobId"))
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "ingestion job not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, status)
}

func toDatasetResponse(d *domain.Dataset) datasetResponse {
	return datasetResponse{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Type:        d.Type,
		UploadedBy:  d.UploadedBy,
		UploadedAt:  d.UploadedAt,
		EntryCount:  d.EntryCount,
	}
}

// storedFilename prefixes the original name with upload time in unix
// milliseconds, mirroring the naming scheme of the upload directory.
func storedFilename(originalName string) string {
	return fmt.Sprintf("%d_%s", time.Now().UnixMilli(), filepath.Base(originalName))
}
