package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"dental-center/config"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite" // pure go sqlite driver
)

// NewSQLiteConnection opens (creating if needed) the SQLite file and the `state` table holding slot payloads
func NewSQLiteConnection(cfg config.SQLiteConfig) (*sql.DB, error) {
	path := cfg.Path
	if path == "" {
		path = "dental-center.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create state table: %w", err)
	}

	logrus.Infof("Opened SQLite database at %s", path)

	return db, nil
}
