package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema is kept to the subset of DDL shared by PostgreSQL and SQLite.
// Calendar days are stored as YYYY-MM-DD text so range filters compare
// lexically on both engines.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS class_students (
	class_name  TEXT NOT NULL,
	student_id  TEXT NOT NULL,
	full_name   TEXT NOT NULL,
	roll_number INTEGER NOT NULL DEFAULT 0,
	photo_url   TEXT,
	PRIMARY KEY (class_name, student_id)
)`,
	`CREATE TABLE IF NOT EXISTS attendance_sessions (
	id                    TEXT PRIMARY KEY,
	class_name            TEXT NOT NULL,
	date                  TEXT NOT NULL,
	total_students        INTEGER NOT NULL DEFAULT 0,
	present_count         INTEGER NOT NULL DEFAULT 0,
	absent_count          INTEGER NOT NULL DEFAULT 0,
	late_count            INTEGER NOT NULL DEFAULT 0,
	excused_count         INTEGER NOT NULL DEFAULT 0,
	attendance_percentage INTEGER NOT NULL DEFAULT 0,
	opened_by_user_id     TEXT NOT NULL,
	opened_by_name        TEXT NOT NULL,
	opened_at             TIMESTAMP NOT NULL,
	is_completed          BOOLEAN NOT NULL DEFAULT FALSE,
	completion_notes      TEXT,
	completed_at          TIMESTAMP,
	updated_at            TIMESTAMP NOT NULL,
	UNIQUE (class_name, date)
)`,
	`CREATE INDEX IF NOT EXISTS idx_attendance_sessions_date ON attendance_sessions (date)`,
	`CREATE TABLE IF NOT EXISTS daily_attendance_records (
	id                  TEXT PRIMARY KEY,
	student_id          TEXT NOT NULL,
	student_name        TEXT NOT NULL,
	class_name          TEXT NOT NULL,
	date                TEXT NOT NULL,
	status              TEXT NOT NULL,
	recorded_by_user_id TEXT NOT NULL,
	recorded_by_name    TEXT NOT NULL,
	recorded_at         TIMESTAMP NOT NULL,
	notes               TEXT,
	arrival_time        TEXT,
	parent_notified     BOOLEAN NOT NULL DEFAULT FALSE,
	UNIQUE (student_id, class_name, date)
)`,
	`CREATE INDEX IF NOT EXISTS idx_daily_attendance_records_class_date ON daily_attendance_records (class_name, date)`,
	`CREATE INDEX IF NOT EXISTS idx_daily_attendance_records_date ON daily_attendance_records (date)`,
	`CREATE TABLE IF NOT EXISTS export_jobs (
	id            TEXT PRIMARY KEY,
	format        TEXT NOT NULL,
	params        TEXT NOT NULL,
	status        TEXT NOT NULL,
	progress      INTEGER NOT NULL DEFAULT 0,
	result_url    TEXT,
	created_by    TEXT NOT NULL,
	created_at    TIMESTAMP NOT NULL,
	finished_at   TIMESTAMP,
	error_message TEXT
)`,
	`CREATE INDEX IF NOT EXISTS idx_export_jobs_status ON export_jobs (status, created_at)`,
}

// Migrate applies the attendance schema. Statements are idempotent.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate statement %d: %w", i+1, err)
		}
	}
	return nil
}
