package database

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const migrationsDir = "../../migrations"

func TestMigrationFilesHaveUpAndDown(t *testing.T) {
	files, err := os.ReadDir(migrationsDir)
	if err != nil {
		t.Fatalf("Failed to read migrations directory: %v", err)
	}

	sqlFileCount := 0
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		sqlFileCount++
		content, err := os.ReadFile(filepath.Join(migrationsDir, file.Name()))
		if err != nil {
			t.Errorf("Failed to read migration file %s: %v", file.Name(), err)
			continue
		}

		for _, directive := range []string{
			"-- +goose Up",
			"-- +goose Down",
			"-- +goose StatementBegin",
			"-- +goose StatementEnd",
		} {
			if !strings.Contains(string(content), directive) {
				t.Errorf("Migration file %s missing '%s' directive", file.Name(), directive)
			}
		}
	}

	if sqlFileCount == 0 {
		t.Error("No SQL migration files found")
	}
}

func TestCatalogSnapshotsMigration(t *testing.T) {
	content, err := os.ReadFile(filepath.Join(migrationsDir, "00001_create_catalog_snapshots_table.sql"))
	if err != nil {
		t.Fatalf("Failed to read catalog snapshots migration: %v", err)
	}

	contentStr := string(content)
	for _, fragment := range []string{
		"CREATE TABLE IF NOT EXISTS catalog_snapshots",
		"storage_key VARCHAR(100) PRIMARY KEY",
		"payload JSONB NOT NULL",
		"updated_at TIMESTAMP",
		"DROP TABLE IF EXISTS catalog_snapshots",
	} {
		if !strings.Contains(contentStr, fragment) {
			t.Errorf("Catalog snapshots migration missing %q", fragment)
		}
	}
}
