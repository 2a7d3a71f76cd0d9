// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Structure:
// - base.go: shared version and timestamp columns
// - catalog.go: products and categories
// - sales.go: sales and their item snapshots
// - import_run.go: bulk import history
package models
