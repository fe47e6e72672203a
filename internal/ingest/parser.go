package ingest

import (
	"fmt"

	"github.com/medidata/dataset-system/internal/core/domain"
)

// typeSchemas maps each recognized dataset type to its positional field
// names. ICD-10-CM and HCPCS follow the published code/description layout;
// the remaining schemas are best-effort and have not been verified against
// authoritative files.
var typeSchemas = map[string][]string{
	"ICD-10-CM":    {"code", "description"},
	"HCPCS":        {"code", "description"},
	"RVU":          {"code", "value", "description"},
	"FeeSchedules": {"code", "fee", "description"},
	"MUE Edits":    {"code", "units", "edits"},
	"LMRP":         {"policyId", "description"},
}

// SupportedType reports whether datasetType has a parsing schema.
func SupportedType(datasetType string) bool {
	_, ok := typeSchemas[datasetType]
	return ok
}

// ParseDataset maps delimiter-split rows to structured records according to
// the declared dataset type. Fields are assigned positionally; rows shorter
// than the schema simply omit the trailing fields. An unrecognized type
// returns domain.ErrUnsupportedDatasetType and must be treated as a fatal
// input-validation error, not retried.
func ParseDataset(datasetType string, rows [][]string) ([]map[string]any, error) {
	schema, ok := typeSchemas[datasetType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedDatasetType, datasetType)
	}

	records := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		record := make(map[string]any, len(schema))
		for i, field := range schema {
			if i < len(row) {
				record[field] = row[i]
			}
		}
		records = append(records, record)
	}
	return records, nil
}
