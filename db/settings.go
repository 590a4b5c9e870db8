package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// timeLayout is how timestamps are stored in TEXT columns.
const timeLayout = time.RFC3339Nano

// GetSetting returns the value stored under key. ok is false when the key
// has never been set.
func GetSetting(db *sql.DB, key string) (value string, ok bool, err error) {
	err = db.QueryRow(SelectSettingSQL, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("select setting %s: %w", key, err)
	}
	return value, true, nil
}

// SetSetting stores value under key, replacing any previous value.
func SetSetting(db *sql.DB, key, value string) error {
	_, err := db.Exec(UpsertSettingSQL, key, value, time.Now().UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("upsert setting %s: %w", key, err)
	}
	return nil
}

// SetSettings stores several values in one transaction.
func SetSettings(db *sql.DB, values map[string]string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(timeLayout)
	for k, v := range values {
		if _, err := tx.Exec(UpsertSettingSQL, k, v, now); err != nil {
			return fmt.Errorf("upsert setting %s: %w", k, err)
		}
	}
	return tx.Commit()
}

// DeleteSetting removes key. Deleting a missing key is not an error.
func DeleteSetting(db *sql.DB, key string) error {
	if _, err := db.Exec(DeleteSettingSQL, key); err != nil {
		return fmt.Errorf("delete setting %s: %w", key, err)
	}
	return nil
}

// ClearSettings removes every persisted setting.
func ClearSettings(db *sql.DB) error {
	if _, err := db.Exec(ClearSettingsSQL); err != nil {
		return fmt.Errorf("clear settings: %w", err)
	}
	return nil
}

// ListSettings returns every setting ordered by key.
func ListSettings(db *sql.DB) ([]Setting, error) {
	rows, err := db.Query(SelectSettingsSQL)
	if err != nil {
		return nil, fmt.Errorf("select settings: %w", err)
	}
	defer rows.Close()

	var settings []Setting
	for rows.Next() {
		var s Setting
		var updated string
		if err := rows.Scan(&s.Key, &s.Value, &updated); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		s.UpdatedAt, _ = time.Parse(timeLayout, updated)
		settings = append(settings, s)
	}
	return settings, rows.Err()
}
