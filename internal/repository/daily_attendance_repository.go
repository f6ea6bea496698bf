package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Junior-NGOY/masomo-sub003/internal/models"
)

const recordColumns = `id, student_id, student_name, class_name, date, status, recorded_by_user_id, recorded_by_name,
recorded_at, notes, arrival_time, parent_notified`

// DailyAttendanceRepository handles persistence for daily attendance records.
type DailyAttendanceRepository struct {
	db sqlx.ExtContext
}

// NewDailyAttendanceRepository constructs the repository.
func NewDailyAttendanceRepository(db sqlx.ExtContext) *DailyAttendanceRepository {
	return &DailyAttendanceRepository{db: db}
}

// Upsert writes the record, replacing any prior record for the same student,
// class and date. The stored id of a replaced row is kept.
func (r *DailyAttendanceRepository) Upsert(ctx context.Context, record *models.DailyAttendanceRecord) (*models.DailyAttendanceRecord, error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.RecordedAt.IsZero() {
		record.RecordedAt = time.Now().UTC()
	}
	query := `INSERT INTO daily_attendance_records (` + recordColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (student_id, class_name, date)
DO UPDATE SET student_name = EXCLUDED.student_name, status = EXCLUDED.status,
recorded_by_user_id = EXCLUDED.recorded_by_user_id, recorded_by_name = EXCLUDED.recorded_by_name,
recorded_at = EXCLUDED.recorded_at, notes = EXCLUDED.notes, arrival_time = EXCLUDED.arrival_time,
parent_notified = EXCLUDED.parent_notified
RETURNING ` + recordColumns
	var stored models.DailyAttendanceRecord
	if err := sqlx.GetContext(ctx, r.db, &stored, r.db.Rebind(query),
		record.ID, record.StudentID, record.StudentName, record.ClassName, record.Date, record.Status,
		record.RecordedByUserID, record.RecordedByName, record.RecordedAt, record.Notes, record.ArrivalTime,
		record.ParentNotified,
	); err != nil {
		return nil, fmt.Errorf("upsert daily attendance record: %w", err)
	}
	return &stored, nil
}

// List returns records ordered by date, class, student name then student id.
func (r *DailyAttendanceRepository) List(ctx context.Context, filter models.RecordFilter) ([]models.DailyAttendanceRecord, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.ClassName != "" {
		where = append(where, "class_name = ?")
		args = append(args, filter.ClassName)
	}
	if filter.DateFrom != "" {
		where = append(where, "date >= ?")
		args = append(args, filter.DateFrom)
	}
	if filter.DateTo != "" {
		where = append(where, "date <= ?")
		args = append(args, filter.DateTo)
	}
	query := fmt.Sprintf(`SELECT %s FROM daily_attendance_records WHERE %s
ORDER BY date ASC, class_name ASC, student_name ASC, student_id ASC`, recordColumns, strings.Join(where, " AND "))

	records := []models.DailyAttendanceRecord{}
	if err := sqlx.SelectContext(ctx, r.db, &records, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list daily attendance records: %w", err)
	}
	return records, nil
}
