package handler

import "time"

type userActivityItem struct {
	ActionType    string    `json:"actionType"`
	ActionDetails string    `json:"actionDetails"`
	Timestamp     time.Time `json:"timestamp"`
	IPAddress     string    `json:"ipAddress"`
	UserEmail     string    `json:"userEmail"`
}

type userActivityResponse struct {
	Total       int64              `json:"total"`
	TotalPages  int                `json:"totalPages"`
	CurrentPage int                `json:"currentPage"`
	Data        []userActivityItem `json:"data"`
}

type datasetUsageItem struct {
	DatasetName string    `json:"datasetName"`
	ActionType  string    `json:"actionType"`
	SearchTerm  string    `json:"searchTerm,omitempty"`
	UsageCount  int       `json:"usageCount"`
	Timestamp   time.Time `json:"timestamp"`
}

type datasetUsageResponse struct {
	Total       int64              `json:"total"`
	TotalPages  int                `json:"totalPages"`
	CurrentPage int                `json:"currentPage"`
	Data        []datasetUsageItem `json:"data"`
}
