package bulk

import (
	"fmt"
)

// ImportResult is the outcome of one product import.
// SuccessfulImports + Rejected() == TotalProcessed at all times.
type ImportResult struct {
	TotalProcessed    int      `json:"total_processed"`
	SuccessfulImports int      `json:"successful_imports"`
	CategoriesCreated int      `json:"categories_created"`
	Created           int      `json:"created"`
	Updated           int      `json:"updated"`
	Errors            []string `json:"errors"`
	Warnings          []string `json:"warnings"`
	Summary           string   `json:"summary"`

	details []ImportErrorDetail
}

// NewImportResult returns an empty result
func NewImportResult() *ImportResult {
	return &ImportResult{
		Errors:   make([]string, 0),
		Warnings: make([]string, 0),
	}
}

// RecordSuccess counts a row that was written
func (r *ImportResult) RecordSuccess(created bool) {
	r.TotalProcessed++
	r.SuccessfulImports++
	if created {
		r.Created++
	} else {
		r.Updated++
	}
}

// RecordFailure counts a rejected row and keeps its message
func (r *ImportResult) RecordFailure(row int, field, msg string) {
	r.TotalProcessed++
	r.Errors = append(r.Errors, fmt.Sprintf("row %d: %s", row, msg))
	r.details = append(r.details, ImportErrorDetail{Row: row, Column: field, Message: msg})
}

// Warn records an edge case on a row that still succeeded
func (r *ImportResult) Warn(row int, msg string) {
	r.Warnings = append(r.Warnings, fmt.Sprintf("row %d: %s", row, msg))
}

// CategoryCreated counts a category provisioned by the import
func (r *ImportResult) CategoryCreated() {
	r.CategoriesCreated++
}

// Rejected returns the number of rows that failed
func (r *ImportResult) Rejected() int {
	return r.TotalProcessed - r.SuccessfulImports
}

// ErrorDetails returns structured errors for the rejected rows
func (r *ImportResult) ErrorDetails() []ImportErrorDetail {
	return r.details
}

// Outcome classifies the result for the caller
func (r *ImportResult) Outcome() ImportStatus {
	switch {
	case r.TotalProcessed == 0:
		return ImportStatusCompleted
	case r.SuccessfulImports == 0:
		return ImportStatusFailed
	case r.Rejected() > 0:
		return ImportStatusPartial
	}
	return ImportStatusCompleted
}

// Finish fills in the summary text
func (r *ImportResult) Finish() {
	switch r.Outcome() {
	case ImportStatusFailed:
		r.Summary = fmt.Sprintf("Import failed: none of %d rows could be imported", r.TotalProcessed)
	case ImportStatusPartial:
		r.Summary = fmt.Sprintf("Imported %d of %d rows (%d created, %d updated); %d rows had errors",
			r.SuccessfulImports, r.TotalProcessed, r.Created, r.Updated, r.Rejected())
	default:
		r.Summary = fmt.Sprintf("Imported %d rows (%d created, %d updated)", r.SuccessfulImports, r.Created, r.Updated)
	}
	if r.CategoriesCreated > 0 {
		r.Summary += fmt.Sprintf(", %d new categories", r.CategoriesCreated)
	}
	if len(r.Warnings) > 0 {
		r.Summary += fmt.Sprintf(", %d warnings", len(r.Warnings))
	}
}
