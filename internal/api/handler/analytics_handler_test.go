package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/medidata/dataset-system/internal/core/domain"
	"github.com/medidata/dataset-system/internal/core/ports"
)

type fakeAnalyticsService struct {
	activity *ports.UserActivityPage
	usage    *ports.DatasetUsagePage
	lastPage int
	lastLim  int
}

func (f *fakeAnalyticsService) UserActivity(_ context.Context, page, limit int) (*ports.UserActivityPage, error) {
	f.lastPage, f.lastLim = page, limit
	return f.activity, nil
}

func (f *fakeAnalyticsService) DatasetUsage(_ context.Context, page, limit int) (*ports.DatasetUsagePage, error) {
	f.lastPage, f.lastLim = page, limit
	return f.usage, nil
}

func TestUserActivityResponseShape(t *testing.T) {
	svc := &fakeAnalyticsService{activity: &ports.UserActivityPage{
		Total:      1,
		TotalPages: 1,
		Page:       1,
		Data: []*domain.UserActivity{{
			ActionType:    domain.ActionLogin,
			ActionDetails: "User logged in",
			IPAddress:     "10.0.0.1",
			UserEmail:     "a@b.com",
			Timestamp:     time.Now(),
		}},
	}}
	h := NewAnalyticsHandler(svc)

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/analytics/user-activity?page=2&limit=5", nil), rec)

	if err := h.UserActivity(c); err != nil {
		t.Fatalf("UserActivity: %v", err)
	}
	if svc.lastPage != 2 || svc.lastLim != 5 {
		t.Errorf("query params not forwarded: page=%d limit=%d", svc.lastPage, svc.lastLim)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"total", "totalPages", "currentPage", "data"} {
		if _, ok := resp[key]; !ok {
			t.Errorf("missing %q in response envelope", key)
		}
	}
	item := resp["data"].([]any)[0].(map[string]any)
	if item["userEmail"] != "a@b.com" || item["actionType"] != domain.ActionLogin {
		t.Errorf("unexpected item: %v", item)
	}
}

func TestDatasetUsageResponseShape(t *testing.T) {
	svc := &fakeAnalyticsService{usage: &ports.DatasetUsagePage{
		Total:      1,
		TotalPages: 1,
		Page:       1,
		Data: []*domain.DatasetUsage{{
			DatasetName: "icd-2026",
			ActionType:  domain.UsageSearch,
			SearchTerm:  "typhoid",
			UsageCount:  1,
			Timestamp:   time.Now(),
		}},
	}}
	h := NewAnalyticsHandler(svc)

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/analytics/dataset-usage", nil), rec)

	if err := h.DatasetUsage(c); err != nil {
		t.Fatalf("DatasetUsage: %v", err)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	item := resp["data"].([]any)[0].(map[string]any)
	if item["datasetName"] != "icd-2026" || item["searchTerm"] != "typhoid" {
		t.Errorf("unexpected item: %v", item)
	}
}
