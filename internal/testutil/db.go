// Package testutil provides the in-memory database harness used by
// service and repository tests.
package testutil

import (
	"testing"

	"github.com/solhaus/portal-api/internal/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens an in-memory sqlite database with the full schema.
// Each call returns an isolated database.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get database instance: %v", err)
	}
	// A single connection keeps every query on the same :memory: database
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&domain.Lead{},
		&domain.Quote{},
		&domain.QuoteItem{},
		&domain.ApprovalDrawing{},
		&domain.Contract{},
		&domain.Payment{},
		&domain.Order{},
		&domain.OrderTracking{},
		&domain.FollowUpEntry{},
		&domain.NumberSequence{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}
