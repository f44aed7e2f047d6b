package models

import "time"

// ImportKind defines what entity a CSV import targets
type ImportKind string

const (
	ImportKindBorrowers ImportKind = "BORROWERS"
	ImportKindLoans     ImportKind = "LOANS"
	ImportKindPayments  ImportKind = "PAYMENTS"
)

// ImportBatch summarizes one CSV import run
type ImportBatch struct {
	ID             string     `json:"id" db:"id"`
	OrganizationID int        `json:"organization_id" db:"organization_id"`
	Kind           ImportKind `json:"kind" db:"kind"`
	FileName       string     `json:"file_name" db:"file_name"`
	RowsTotal      int        `json:"rows_total" db:"rows_total"`
	RowsImported   int        `json:"rows_imported" db:"rows_imported"`
	RowsFailed     int        `json:"rows_failed" db:"rows_failed"`
	CreatedBy      int        `json:"created_by" db:"created_by"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}

// ImportRowError reports a single CSV row that could not be imported
type ImportRowError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// ImportResult is returned to the caller after an import run
type ImportResult struct {
	Batch  *ImportBatch     `json:"batch"`
	Errors []ImportRowError `json:"errors,omitempty"`
}
