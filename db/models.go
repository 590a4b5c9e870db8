package db

import "time"

// Keys of the persisted last-used values.
const (
	KeyLastInputVideo   = "last_input_video"
	KeyLastOutputFolder = "last_output_folder"
	KeyLastInputDir     = "last_input_dir"
	KeyLastOutputDir    = "last_output_dir"
)

// Setting represents a row in the settings table.
type Setting struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}

// Run represents a row in the runs table.
type Run struct {
	ID           string
	InputPath    string
	OutputDir    string
	Encoder      string
	ClipDuration float64
	SkipDuration float64
	Workers      int
	Total        int
	Succeeded    int
	Failed       int
	Skipped      int
	Status       string
	StartedAt    time.Time
	FinishedAt   *time.Time
}
