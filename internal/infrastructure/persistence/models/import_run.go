package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/sicua/backend/internal/domain/bulk"
)

// ImportRunModel is the persistence model for the ImportRun domain entity.
type ImportRunModel struct {
	ID                uuid.UUID         `gorm:"type:uuid;primaryKey"`
	Source            bulk.ImportSource `gorm:"type:varchar(10);not null"`
	FileName          string            `gorm:"type:varchar(255);not null;default:''"`
	FileSize          int64             `gorm:"not null;default:0"`
	Status            bulk.ImportStatus `gorm:"type:varchar(20);not null;index"`
	TotalRows         int               `gorm:"not null;default:0"`
	SuccessRows       int               `gorm:"not null;default:0"`
	ErrorRows         int               `gorm:"not null;default:0"`
	CategoriesCreated int               `gorm:"not null;default:0"`
	Warnings          int               `gorm:"not null;default:0"`
	ErrorDetails      string            `gorm:"type:text;not null;default:'[]'"`
	Summary           string            `gorm:"type:text;not null;default:''"`
	StartedAt         time.Time         `gorm:"not null;index"`
	CompletedAt       *time.Time
}

// TableName returns the table name for GORM
func (ImportRunModel) TableName() string {
	return "import_runs"
}

// ToDomain converts the persistence model to a domain ImportRun entity.
func (m *ImportRunModel) ToDomain() (*bulk.ImportRun, error) {
	run := &bulk.ImportRun{
		ID:                m.ID,
		Source:            m.Source,
		FileName:          m.FileName,
		FileSize:          m.FileSize,
		Status:            m.Status,
		TotalRows:         m.TotalRows,
		SuccessRows:       m.SuccessRows,
		ErrorRows:         m.ErrorRows,
		CategoriesCreated: m.CategoriesCreated,
		Warnings:          m.Warnings,
		Summary:           m.Summary,
		StartedAt:         m.StartedAt,
		CompletedAt:       m.CompletedAt,
	}
	if err := run.SetErrorDetailsFromJSON(m.ErrorDetails); err != nil {
		return nil, err
	}
	return run, nil
}

// FromDomain populates the persistence model from a domain ImportRun entity.
func (m *ImportRunModel) FromDomain(run *bulk.ImportRun) error {
	details, err := run.ErrorDetailsJSON()
	if err != nil {
		return err
	}
	m.ID = run.ID
	m.Source = run.Source
	m.FileName = run.FileName
	m.FileSize = run.FileSize
	m.Status = run.Status
	m.TotalRows = run.TotalRows
	m.SuccessRows = run.SuccessRows
	m.ErrorRows = run.ErrorRows
	m.CategoriesCreated = run.CategoriesCreated
	m.Warnings = run.Warnings
	m.ErrorDetails = details
	m.Summary = run.Summary
	m.StartedAt = run.StartedAt
	m.CompletedAt = run.CompletedAt
	return nil
}

// AllModels lists every model, in dependency order, for AutoMigrate in tests
// and the sqlite driver.
func AllModels() []any {
	return []any{
		&CategoryModel{},
		&ProductModel{},
		&SaleModel{},
		&SaleItemModel{},
		&ImportRunModel{},
	}
}
