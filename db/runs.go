package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DefaultHistoryLimit is how many runs `history` shows by default.
const DefaultHistoryLimit = 20

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// InsertRun records a finished run. An empty ID is filled with a new one.
func InsertRun(db *sql.DB, r *Run) error {
	if r.ID == "" {
		r.ID = NewRunID()
	}
	var finished any
	if r.FinishedAt != nil {
		finished = r.FinishedAt.UTC().Format(timeLayout)
	}
	_, err := db.Exec(InsertRunSQL,
		r.ID, r.InputPath, r.OutputDir, r.Encoder, r.ClipDuration, r.SkipDuration, r.Workers,
		r.Total, r.Succeeded, r.Failed, r.Skipped, r.Status,
		r.StartedAt.UTC().Format(timeLayout), finished,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func RecentRuns(db *sql.DB, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	rows, err := db.Query(SelectRecentRunsSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("select runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun returns the run with the given id, or nil when none exists.
func GetRun(db *sql.DB, id string) (*Run, error) {
	r, err := scanRun(db.QueryRow(SelectRunByIDSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ClearRuns deletes the run history.
func ClearRuns(db *sql.DB) error {
	if _, err := db.Exec(DeleteRunsSQL); err != nil {
		return fmt.Errorf("delete runs: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (Run, error) {
	var r Run
	var started string
	var finished sql.NullString
	err := s.Scan(&r.ID, &r.InputPath, &r.OutputDir, &r.Encoder, &r.ClipDuration, &r.SkipDuration, &r.Workers,
		&r.Total, &r.Succeeded, &r.Failed, &r.Skipped, &r.Status, &started, &finished)
	if errors.Is(err, sql.ErrNoRows) {
		return r, err
	}
	if err != nil {
		return r, fmt.Errorf("scan run: %w", err)
	}
	r.StartedAt, _ = time.Parse(timeLayout, started)
	if finished.Valid {
		if t, err := time.Parse(timeLayout, finished.String); err == nil {
			r.FinishedAt = &t
		}
	}
	return r, nil
}
