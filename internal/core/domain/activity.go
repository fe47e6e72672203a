package domain

import "time"

// User activity action types.
const (
	ActionRegister      = "register"
	ActionLogin         = "login"
	ActionDatasetDelete = "dataset_delete"
	ActionViewDataset   = "view_dataset"
)

// Dataset usage action types. Plain entry views are recorded as user
// activity (ActionViewDataset), not as dataset usage.
const (
	UsageUpload = "upload"
	UsageSearch = "search"
)

// UserActivity is an append-only audit record of a user-level action.
type UserActivity struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	ActionType    string    `json:"action_type"`
	ActionDetails string    `json:"action_details"`
	IPAddress     string    `json:"ip_address"`
	Timestamp     time.Time `json:"timestamp"`
	// UserEmail is resolved by join on analytics reads.
	UserEmail string `json:"user_email,omitempty"`
}

// DatasetUsage is an append-only audit record of a dataset-level action.
// UserID is empty when the action was not attributable to a user.
type DatasetUsage struct {
	ID         string    `json:"id"`
	DatasetID  string    `json:"dataset_id"`
	UserID     string    `json:"user_id,omitempty"`
	ActionType string    `json:"action_type"`
	SearchTerm string    `json:"search_term,omitempty"`
	UsageCount int       `json:"usage_count"`
	Timestamp  time.Time `json:"timestamp"`
	// DatasetName is resolved by join on analytics reads.
	DatasetName string `json:"dataset_name,omitempty"`
}
