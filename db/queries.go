package db

import (
	_ "embed"
)

// Schema

//go:embed sql/create_tables.sql
var CreateTablesSQL string

// Settings queries

//go:embed sql/upsert_setting.sql
var UpsertSettingSQL string

//go:embed sql/select_setting.sql
var SelectSettingSQL string

//go:embed sql/select_settings.sql
var SelectSettingsSQL string

//go:embed sql/delete_setting.sql
var DeleteSettingSQL string

//go:embed sql/clear_settings.sql
var ClearSettingsSQL string

// Run history queries

//go:embed sql/insert_run.sql
var InsertRunSQL string

//go:embed sql/select_recent_runs.sql
var SelectRecentRunsSQL string

//go:embed sql/select_run_by_id.sql
var SelectRunByIDSQL string

//go:embed sql/delete_runs.sql
var DeleteRunsSQL string
