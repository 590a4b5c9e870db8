package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/dimasjulianto/app-video-cutter/config"
)

// FileName is the database file inside the data directory.
const FileName = "data.db"

// Open opens or creates the SQLite database at the default location,
// ~/.local/share/video-cutter/data.db.
func Open() (*sql.DB, error) {
	dbPath, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return OpenPath(dbPath)
}

// OpenPath opens or creates the SQLite database at dbPath and brings its
// schema up to date. Parent directories are created if they don't exist.
func OpenPath(dbPath string) (*sql.DB, error) {
	// Create parent directories if they don't exist
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	// One writer; avoids SQLITE_BUSY between the run and history writes.
	db.SetMaxOpenConns(1)

	// Verify connection works
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// DefaultPath returns the path to the database file.
func DefaultPath() (string, error) {
	dir, err := config.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}
