package repository

import (
	"database/sql"
	"os"
	"path/filepath"
	"sort"

	"github.com/charmbracelet/log"
)

func RunMigrations(db *sql.DB, logger *log.Logger) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	if err != nil {
		return err
	}

	dirs := []string{"migrations", "./migrations", "/app/migrations"}
	var migrationDir string
	for _, d := range dirs {
		if _, err := os.Stat(d); err == nil {
			migrationDir = d
			break
		}
	}
	if migrationDir == "" {
		logger.Warn("no migrations directory found, skipping")
		return nil
	}

	files, err := filepath.Glob(filepath.Join(migrationDir, "*.sql"))
	if err != nil {
		return err
	}
	sort.Strings(files)

	for _, f := range files {
		name := filepath.Base(f)

		var applied bool
		err := db.QueryRow("SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)", name).Scan(&applied)
		if err != nil {
			return err
		}
		if applied {
			continue
		}

		content, err := os.ReadFile(f)
		if err != nil {
			return err
		}

		logger.Info("applying migration", "file", name)
		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return err
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES ($1)", name); err != nil {
			tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
	}

	return nil
}
