package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/medidata/dataset-system/internal/core/domain"
	"github.com/medidata/dataset-system/internal/core/ports"
)

type fakeDatasetService struct {
	datasets  []*domain.Dataset
	listErr   error
	entries   *ports.EntriesResult
	entriesIn ports.EntriesInput
	entrErr   error
	deleteIn  ports.DeleteDatasetInput
	deleteErr error
}

func (f *fakeDatasetService) List(_ context.Context) ([]*domain.Dataset, error) {
	return f.datasets, f.listErr
}

func (f *fakeDatasetService) Entries(_ context.Context, input ports.EntriesInput) (*ports.EntriesResult, error) {
	f.entriesIn = input
	return f.entries, f.entrErr
}

func (f *fakeDatasetService) Delete(_ context.Context, input ports.DeleteDatasetInput) error {
	f.deleteIn = input
	return f.deleteErr
}

type fakeDispatcher struct {
	jobs []ports.IngestJob
}

func (f *fakeDispatcher) Enqueue(job ports.IngestJob) {
	f.jobs = append(f.jobs, job)
}

type fakeJobStore struct {
	set    []ports.JobStatus
	setErr error
	status *ports.JobStatus
	getErr error
}

func (f *fakeJobStore) Set(_ context.Context, st ports.JobStatus) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.set = append(f.set, st)
	return nil
}

func (f *fakeJobStore) Get(_ context.Context, jobID string) (*ports.JobStatus, error) {
	if f.getErr != nil || f.status != nil {
		return f.status, f.getErr
	}
	for i := len(f.set) - 1; i >= 0; i-- {
		if f.set[i].JobID == jobID {
			st := f.set[i]
			return &st, nil
		}
	}
	return nil, domain.ErrJobNotFound
}

func multipartUpload(t *testing.T, fields map[string]string, filename, fileContent string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if filename != "" {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
		header.Set("Content-Type", "text/plain")
		fw, err := w.CreatePart(header)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write([]byte(fileContent)); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/datasets/upload", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func newUploadHandler(t *testing.T) (*DatasetHandler, *fakeDispatcher, *fakeJobStore) {
	t.Helper()
	dispatcher := &fakeDispatcher{}
	store := &fakeJobStore{}
	h := NewDatasetHandler(&fakeDatasetService{}, dispatcher, store, t.TempDir())
	return h, dispatcher, store
}

func authedContext(e *echo.Echo, req *http.Request, rec *httptest.ResponseRecorder) echo.Context {
	c := e.NewContext(req, rec)
	c.Set("user_id", "admin-1")
	c.Set("role", domain.RoleAdmin)
	return c
}

func TestUploadAccepted(t *testing.T) {
	h, dispatcher, _ := newUploadHandler(t)

	e := echo.New()
	e.Validator = NewValidator()
	req := multipartUpload(t, map[string]string{
		"name":        "icd-2026",
		"description": "annual refresh",
		"datasetType": "ICD-10-CM",
	}, "codes.txt", "A01 Typhoid fever caused by Salmonella typhi\n")
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec)

	if err := h.Upload(c); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp uploadAcceptedResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.JobID == "" {
		t.Error("acknowledgment must carry a job id")
	}
	if resp.Filename != "codes.txt" {
		t.Errorf("unexpected filename: %q", resp.Filename)
	}

	if len(dispatcher.jobs) != 1 {
		t.Fatalf("expected 1 enqueued job, got %d", len(dispatcher.jobs))
	}
	job := dispatcher.jobs[0]
	if job.ID != resp.JobID {
		t.Error("enqueued job id does not match acknowledgment")
	}
	if job.UploadedBy != "admin-1" || job.DatasetType != "ICD-10-CM" {
		t.Errorf("unexpected job: %+v", job)
	}

	// The file must already be on disk when the job is enqueued.
	if _, err := os.Stat(job.FilePath); err != nil {
		t.Errorf("stored file missing: %v", err)
	}
}

func TestUploadRecordsQueuedStatusBeforeAck(t *testing.T) {
	h, _, store := newUploadHandler(t)

	e := echo.New()
	e.Validator = NewValidator()
	req := multipartUpload(t, map[string]string{
		"name":        "icd",
		"datasetType": "ICD-10-CM",
	}, "codes.txt", "A01 Typhoid fever caused by Salmonella typhi\n")
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec)

	if err := h.Upload(c); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	var resp uploadAcceptedResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}

	// The acknowledged job must be visible to the status endpoint right away.
	status, err := store.Get(context.Background(), resp.JobID)
	if err != nil {
		t.Fatalf("acknowledged job is invisible to the status store: %v", err)
	}
	if status.State != ports.JobQueued {
		t.Errorf("expected %q, got %q", ports.JobQueued, status.State)
	}
}

func TestUploadFailsWhenStatusCannotBeRecorded(t *testing.T) {
	h, dispatcher, store := newUploadHandler(t)
	store.setErr = errors.New("redis down")

	e := echo.New()
	e.Validator = NewValidator()
	req := multipartUpload(t, map[string]string{
		"name":        "icd",
		"datasetType": "ICD-10-CM",
	}, "codes.txt", "A01 Typhoid fever caused by Salmonella typhi\n")
	c := authedContext(e, req, httptest.NewRecorder())

	if err := h.Upload(c); err == nil {
		t.Fatal("expected error when the queued state cannot be recorded")
	}
	if len(dispatcher.jobs) != 0 {
		t.Error("job must not be enqueued without a visible queued state")
	}
}

func TestUploadUnsupportedType(t *testing.T) {
	h, dispatcher, _ := newUploadHandler(t)

	e := echo.New()
	e.Validator = NewValidator()
	req := multipartUpload(t, map[string]string{
		"name":        "ndc",
		"datasetType": "NDC",
	}, "codes.txt", "x")
	c := authedContext(e, req, httptest.NewRecorder())

	err := h.Upload(c)
	if code := httpErrorCode(t, err); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
	if len(dispatcher.jobs) != 0 {
		t.Error("unsupported type must not enqueue a job")
	}
}

func TestUploadMissingFile(t *testing.T) {
	h, _, _ := newUploadHandler(t)

	e := echo.New()
	e.Validator = NewValidator()
	req := multipartUpload(t, map[string]string{
		"name":        "icd",
		"datasetType": "ICD-10-CM",
	}, "", "")
	c := authedContext(e, req, httptest.NewRecorder())

	err := h.Upload(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
	if he.Message != "file is required" {
		t.Errorf("unexpected message: %v", he.Message)
	}
}

func TestUploadRejectsNonTextFile(t *testing.T) {
	h, dispatcher, _ := newUploadHandler(t)

	e := echo.New()
	e.Validator = NewValidator()

	// CreateFormFile marks the part application/octet-stream.
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("name", "icd"); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteField("datasetType", "ICD-10-CM"); err != nil {
		t.Fatal(err)
	}
	fw, err := w.CreateFormFile("file", "codes.bin")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write([]byte{0x00, 0x01}); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/datasets/upload", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	c := authedContext(e, req, httptest.NewRecorder())

	uploadErr := h.Upload(c)
	if code := httpErrorCode(t, uploadErr); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
	if len(dispatcher.jobs) != 0 {
		t.Error("binary upload must not enqueue a job")
	}
}

func TestUploadMissingName(t *testing.T) {
	h, _, _ := newUploadHandler(t)

	e := echo.New()
	e.Validator = NewValidator()
	req := multipartUpload(t, map[string]string{
		"datasetType": "ICD-10-CM",
	}, "codes.txt", "x")
	c := authedContext(e, req, httptest.NewRecorder())

	err := h.Upload(c)
	if code := httpErrorCode(t, err); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}

func TestListDatasets(t *testing.T) {
	svc := &fakeDatasetService{datasets: []*domain.Dataset{
		{ID: "d1", Name: "icd", Type: "ICD-10-CM", EntryCount: 42, UploadedAt: time.Now()},
	}}
	h := NewDatasetHandler(svc, &fakeDispatcher{}, &fakeJobStore{}, t.TempDir())

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/datasets", nil), rec)

	if err := h.List(c); err != nil {
		t.Fatalf("List: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp []datasetResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp) != 1 || resp[0].EntryCount != 42 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestEntriesPassesQueryParams(t *testing.T) {
	svc := &fakeDatasetService{entries: &ports.EntriesResult{
		Entries:    []*domain.Entry{{ID: "e1", DatasetID: "d1", Data: map[string]any{"code": "A01"}}},
		Count:      1,
		Page:       2,
		TotalPages: 5,
	}}
	h := NewDatasetHandler(svc, &fakeDispatcher{}, &fakeJobStore{}, t.TempDir())

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/datasets/d1/entries?searchTerm=typhoid&page=2&limit=10", nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec)
	c.SetParamNames("datasetId")
	c.SetParamValues("d1")

	if err := h.Entries(c); err != nil {
		t.Fatalf("Entries: %v", err)
	}

	in := svc.entriesIn
	if in.DatasetID != "d1" || in.SearchTerm != "typhoid" || in.Page != 2 || in.Limit != 10 {
		t.Errorf("unexpected input: %+v", in)
	}
	if in.UserID != "admin-1" {
		t.Errorf("expected acting user forwarded, got %q", in.UserID)
	}

	var resp entriesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.CurrentPage != 2 || resp.TotalPages != 5 || resp.Count != 1 {
		t.Errorf("unexpected page envelope: %+v", resp)
	}
}

func TestEntriesUnknownDatasetPropagates(t *testing.T) {
	svc := &fakeDatasetService{entrErr: domain.ErrDatasetNotFound}
	h := NewDatasetHandler(svc, &fakeDispatcher{}, &fakeJobStore{}, t.TempDir())

	e := echo.New()
	c := authedContext(e, httptest.NewRequest(http.MethodGet, "/datasets/x/entries", nil), httptest.NewRecorder())
	c.SetParamNames("datasetId")
	c.SetParamValues("x")

	if err := h.Entries(c); err != domain.ErrDatasetNotFound {
		t.Fatalf("expected ErrDatasetNotFound to propagate, got %v", err)
	}
}

func TestDeleteDataset(t *testing.T) {
	svc := &fakeDatasetService{}
	h := NewDatasetHandler(svc, &fakeDispatcher{}, &fakeJobStore{}, t.TempDir())

	e := echo.New()
	rec := httptest.NewRecorder()
	c := authedContext(e, httptest.NewRequest(http.MethodDelete, "/datasets/d1", nil), rec)
	c.SetParamNames("datasetId")
	c.SetParamValues("d1")

	if err := h.Delete(c); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.deleteIn.DatasetID != "d1" || svc.deleteIn.UserID != "admin-1" {
		t.Errorf("unexpected delete input: %+v", svc.deleteIn)
	}
}

func TestJobStatusFound(t *testing.T) {
	store := &fakeJobStore{status: &ports.JobStatus{
		JobID: "job-1", State: ports.JobCompleted, RowsInserted: 10,
	}}
	h := NewDatasetHandler(&fakeDatasetService{}, &fakeDispatcher{}, store, t.TempDir())

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/datasets/jobs/job-1", nil), rec)
	c.SetParamNames("jobId")
	c.SetParamValues("job-1")

	if err := h.JobStatus(c); err != nil {
		t.Fatalf("JobStatus: %v", err)
	}

	var resp ports.JobStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.State != ports.JobCompleted || resp.RowsInserted != 10 {
		t.Errorf("unexpected status: %+v", resp)
	}
}

func TestJobStatusNotFound(t *testing.T) {
	store := &fakeJobStore{getErr: domain.ErrJobNotFound}
	h := NewDatasetHandler(&fakeDatasetService{}, &fakeDispatcher{}, store, t.TempDir())

	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/datasets/jobs/x", nil), httptest.NewRecorder())
	c.SetParamNames("jobId")
	c.SetParamValues("x")

	err := h.JobStatus(c)
	if code := httpErrorCode(t, err); code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}
}
