package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/medidata/dataset-system/internal/core/ports"
)

// AnalyticsHandler serves the admin dashboard reads.
type AnalyticsHandler struct {
	service ports.AnalyticsService
}

func NewAnalyticsHandler(service ports.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

// UserActivity returns a page of user activity logs, newest first.
//
// @Summary      User activity logs
// @Tags         analytics
// @Produce      json
// @Security     BearerAuth
// @Param        page   query  int  false  "Page (1-based)"
// @Param        limit  query  int  false  "Rows per page"
// @Success      200  {object}  userActivityResponse
// @Failure      403  {object}  errorResponse
// @Router       /analytics/user-activity [get]
func (h *AnalyticsHandler) UserActivity(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	result, err := h.service.UserActivity(c.Request().Context(), page, limit)
	if err != nil {
		return err
	}

	data := make([]userActivityItem, 0, len(result.Data))
	for _, a := range result.Data {
		data = append(data, userActivityItem{
			ActionType:    a.ActionType,
			ActionDetails: a.ActionDetails,
			Timestamp:     a.Timestamp,
			IPAddress:     a.IPAddress,
			UserEmail:     a.UserEmail,
		})
	}

	return c.JSON(http.StatusOK, userActivityResponse{
		Total:       result.Total,
		TotalPages:  result.TotalPages,
		CurrentPage: result.Page,
		Data:        data,
	})
}

// DatasetUsage returns a page of dataset usage logs, newest first.
//
// @Summary      Dataset usage logs
// @Tags         analytics
// @Produce      json
// @Security     BearerAuth
// @Param        page   query  int  false  "Page (1-based)"
// @Param        limit  query  int  false  "Rows per page"
// @Success      200  {object}  datasetUsageResponse
// @Failure      403  {object}  errorResponse
// @Router       /analytics/dataset-usage [get]
func (h *AnalyticsHandler) DatasetUsage(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	result, err := h.service.DatasetUsage(c.Request().Context(), page, limit)
	if err != nil {
		return err
	}

	data := make([]datasetUsageItem, 0, len(result.Data))
	for _, u := range result.Data {
		data = append(data, datasetUsageItem{
			DatasetName: u.DatasetName,
			ActionType:  u.ActionType,
			SearchTerm:  u.SearchTerm,
			UsageCount:  u.UsageCount,
			Timestamp:   u.Timestamp,
		})
	}

	return c.JSON(http.StatusOK, datasetUsageResponse{
		Total:       result.Total,
		TotalPages:  result.TotalPages,
		CurrentPage: result.Page,
		Data:        data,
	})
}
