package importapp

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sicua/backend/internal/domain/bulk"
	"github.com/sicua/backend/internal/domain/shared"
	"github.com/sicua/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ImportRunService runs product imports and keeps their history
type ImportRunService struct {
	importer  *ProductImportService
	runRepo   bulk.ImportRunRepository
	logger    *zap.Logger
	maxErrors int
}

// NewImportRunService creates a new ImportRunService
func NewImportRunService(importer *ProductImportService, runRepo bulk.ImportRunRepository, logger *zap.Logger) *ImportRunService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportRunService{
		importer: importer,
		runRepo:  runRepo,
		logger:   logger,
	}
}

// SetMaxStoredErrors caps the error details kept on a stored run. The
// result returned to the caller is never truncated. Zero keeps all.
func (s *ImportRunService) SetMaxStoredErrors(n int) {
	s.maxErrors = n
}

// RunRequest describes where a batch of rows came from
type RunRequest struct {
	Source   bulk.ImportSource
	FileName string
	FileSize int64
	Rows     []bulk.RawRow
}

// RunResponse pairs the import result with the stored run
type RunResponse struct {
	RunID  uuid.UUID          `json:"run_id"`
	Status bulk.ImportStatus  `json:"status"`
	Result *bulk.ImportResult `json:"result"`
}

// Run imports the rows and records the run. A failure to store the run is
// logged; the rows have been imported regardless.
func (s *ImportRunService) Run(ctx context.Context, req RunRequest) (*RunResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "import", "Run",
		telemetry.WithAttribute(telemetry.SpanAttrImportSource, string(req.Source)))
	defer span.End()

	run, err := bulk.NewImportRun(req.Source, req.FileName, req.FileSize)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	result := s.importer.ImportProducts(ctx, req.Rows)
	if err := run.Complete(result); err != nil {
		return nil, err
	}
	s.importer.metrics.RecordImport(ctx, string(run.Source), string(run.Status), result.TotalProcessed, result.Rejected())
	if s.maxErrors > 0 && len(run.ErrorDetails) > s.maxErrors {
		run.ErrorDetails = run.ErrorDetails[:s.maxErrors]
	}

	if err := s.runRepo.Save(ctx, run); err != nil {
		s.logger.Error("Failed to save import run",
			zap.String("run_id", run.ID.String()),
			zap.Error(err))
	}

	return &RunResponse{RunID: run.ID, Status: run.Status, Result: result}, nil
}

// RecordUnreadable stores a run for input that produced no rows at all
func (s *ImportRunService) RecordUnreadable(ctx context.Context, source bulk.ImportSource, fileName string, fileSize int64, cause error) {
	run, err := bulk.NewImportRun(source, fileName, fileSize)
	if err != nil {
		return
	}
	if err := run.Fail(cause.Error()); err != nil {
		return
	}
	s.importer.metrics.RecordImport(ctx, string(source), string(run.Status), 0, 0)
	if err := s.runRepo.Save(ctx, run); err != nil {
		s.logger.Error("Failed to save import run", zap.Error(err))
	}
}

// ImportRunResponse is an import run in API responses
type ImportRunResponse struct {
	ID                uuid.UUID                `json:"id"`
	Source            bulk.ImportSource        `json:"source"`
	FileName          string                   `json:"file_name"`
	FileSize          int64                    `json:"file_size"`
	Status            bulk.ImportStatus        `json:"status"`
	TotalRows         int                      `json:"total_rows"`
	SuccessRows       int                      `json:"success_rows"`
	ErrorRows         int                      `json:"error_rows"`
	CategoriesCreated int                      `json:"categories_created"`
	Warnings          int                      `json:"warnings"`
	SuccessRate       float64                  `json:"success_rate"`
	Summary           string                   `json:"summary"`
	ErrorDetails      []bulk.ImportErrorDetail `json:"error_details,omitempty"`
	StartedAt         time.Time                `json:"started_at"`
	DurationMs        int64                    `json:"duration_ms"`
}

// ToImportRunResponse converts a domain ImportRun
func ToImportRunResponse(r *bulk.ImportRun) ImportRunResponse {
	return ImportRunResponse{
		ID:                r.ID,
		Source:            r.Source,
		FileName:          r.FileName,
		FileSize:          r.FileSize,
		Status:            r.Status,
		TotalRows:         r.TotalRows,
		SuccessRows:       r.SuccessRows,
		ErrorRows:         r.ErrorRows,
		CategoriesCreated: r.CategoriesCreated,
		Warnings:          r.Warnings,
		SuccessRate:       r.SuccessRate(),
		Summary:           r.Summary,
		ErrorDetails:      r.ErrorDetails,
		StartedAt:         r.StartedAt,
		DurationMs:        r.Duration().Milliseconds(),
	}
}

// GetRun retrieves one import run
func (s *ImportRunService) GetRun(ctx context.Context, id uuid.UUID) (*ImportRunResponse, error) {
	run, err := s.runRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToImportRunResponse(run)
	return &response, nil
}

// ListRuns lists import runs, newest first
func (s *ImportRunService) ListRuns(ctx context.Context, page, pageSize int) ([]ImportRunResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	filter := shared.Filter{Page: page, PageSize: pageSize, OrderBy: "started_at", OrderDir: "desc"}

	runs, err := s.runRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list import runs: %w", err)
	}
	total, err := s.runRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count import runs: %w", err)
	}

	out := make([]ImportRunResponse, len(runs))
	for i := range runs {
		out[i] = ToImportRunResponse(&runs[i])
	}
	return out, total, nil
}
