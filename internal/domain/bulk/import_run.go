package bulk

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sicua/backend/internal/domain/shared"
)

// ImportSource tells where the rows of an import came from
type ImportSource string

const (
	ImportSourceCSV  ImportSource = "csv"
	ImportSourceXLSX ImportSource = "xlsx"
	ImportSourceAPI  ImportSource = "api"
)

// IsValid checks if the source is known
func (s ImportSource) IsValid() bool {
	switch s {
	case ImportSourceCSV, ImportSourceXLSX, ImportSourceAPI:
		return true
	}
	return false
}

// ImportStatus represents the status of an import run
type ImportStatus string

const (
	ImportStatusProcessing ImportStatus = "processing"
	ImportStatusCompleted  ImportStatus = "completed"
	ImportStatusPartial    ImportStatus = "partial"
	ImportStatusFailed     ImportStatus = "failed"
)

// IsTerminal returns true if this is a terminal state
func (s ImportStatus) IsTerminal() bool {
	return s != ImportStatusProcessing
}

// ImportErrorDetail represents a detailed error for a specific row
type ImportErrorDetail struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Message string `json:"message"`
}

// ImportRun keeps the history of one bulk import
type ImportRun struct {
	ID                uuid.UUID
	Source            ImportSource
	FileName          string
	FileSize          int64
	Status            ImportStatus
	TotalRows         int
	SuccessRows       int
	ErrorRows         int
	CategoriesCreated int
	Warnings          int
	ErrorDetails      []ImportErrorDetail
	Summary           string
	StartedAt         time.Time
	CompletedAt       *time.Time
}

// NewImportRun starts a run record
func NewImportRun(source ImportSource, fileName string, fileSize int64) (*ImportRun, error) {
	if !source.IsValid() {
		return nil, shared.NewValidationError("source", fmt.Sprintf("unknown import source %q", source))
	}
	if fileSize < 0 {
		return nil, shared.NewValidationError("file_size", "file size cannot be negative")
	}
	return &ImportRun{
		ID:           uuid.New(),
		Source:       source,
		FileName:     fileName,
		FileSize:     fileSize,
		Status:       ImportStatusProcessing,
		ErrorDetails: make([]ImportErrorDetail, 0),
		StartedAt:    time.Now(),
	}, nil
}

// Complete copies the counters of result into the run
func (h *ImportRun) Complete(result *ImportResult) error {
	if h.Status.IsTerminal() {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot complete import from state: %s", h.Status))
	}
	h.Status = result.Outcome()
	h.TotalRows = result.TotalProcessed
	h.SuccessRows = result.SuccessfulImports
	h.ErrorRows = result.Rejected()
	h.CategoriesCreated = result.CategoriesCreated
	h.Warnings = len(result.Warnings)
	h.Summary = result.Summary
	if d := result.ErrorDetails(); d != nil {
		h.ErrorDetails = d
	}
	now := time.Now()
	h.CompletedAt = &now
	return nil
}

// Fail marks a run that could not read its input at all
func (h *ImportRun) Fail(reason string) error {
	if h.Status.IsTerminal() {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot fail import from state: %s", h.Status))
	}
	h.Status = ImportStatusFailed
	h.Summary = reason
	now := time.Now()
	h.CompletedAt = &now
	return nil
}

// SuccessRate returns the success rate as a percentage (0-100)
func (h *ImportRun) SuccessRate() float64 {
	if h.TotalRows == 0 {
		return 0
	}
	return float64(h.SuccessRows) / float64(h.TotalRows) * 100
}

// Duration returns how long the run took, or has taken so far
func (h *ImportRun) Duration() time.Duration {
	end := time.Now()
	if h.CompletedAt != nil {
		end = *h.CompletedAt
	}
	return end.Sub(h.StartedAt)
}

// ErrorDetailsJSON returns the error details as a JSON string
func (h *ImportRun) ErrorDetailsJSON() (string, error) {
	if len(h.ErrorDetails) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(h.ErrorDetails)
	if err != nil {
		return "", fmt.Errorf("failed to marshal error details: %w", err)
	}
	return string(data), nil
}

// SetErrorDetailsFromJSON parses error details from a JSON string
func (h *ImportRun) SetErrorDetailsFromJSON(jsonStr string) error {
	if jsonStr == "" || jsonStr == "[]" {
		h.ErrorDetails = make([]ImportErrorDetail, 0)
		return nil
	}
	var details []ImportErrorDetail
	if err := json.Unmarshal([]byte(jsonStr), &details); err != nil {
		return fmt.Errorf("failed to unmarshal error details: %w", err)
	}
	h.ErrorDetails = details
	return nil
}
