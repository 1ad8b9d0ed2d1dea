// Package testutil provides test helpers for setting up in-memory databases,
// creating fixtures, and making assertions.
package testutil

import (
	"testing"

	"khata/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// allModels is the list of all GORM models to auto-migrate in tests.
var allModels = []interface{}{
	&models.LedgerEntry{},
	&models.UserOverride{},
}

// SetupTestDB creates an in-memory SQLite database with all models migrated.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// ApplyContentHashIndex recreates the production partial unique index: one
// live row per content hash, soft-deleted rows and blank hashes exempt.
// AutoMigrate cannot express the predicate, so tests exercising uniqueness
// behavior apply it explicitly.
func ApplyContentHashIndex(t *testing.T, db *gorm.DB) {
	t.Helper()

	err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_ledger_entries_content_hash_live
		ON ledger_entries (content_hash)
		WHERE deleted_at IS NULL AND content_hash <> ''`).Error
	if err != nil {
		t.Fatalf("failed to apply content hash index: %v", err)
	}
}

// TeardownTestDB closes the underlying database connection.
func TeardownTestDB(t *testing.T, db *gorm.DB) {
	t.Helper()

	sqlDB, err := db.DB()
	if err != nil {
		t.Errorf("failed to get underlying DB for teardown: %v", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		t.Errorf("failed to close test database: %v", err)
	}
}
