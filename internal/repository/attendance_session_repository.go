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

const sessionColumns = `id, class_name, date, total_students, present_count, absent_count, late_count, excused_count,
attendance_percentage, opened_by_user_id, opened_by_name, opened_at, is_completed, completion_notes, completed_at, updated_at`

// AttendanceSessionRepository persists one aggregate per (class_name, date).
// It runs against either the pool or an open transaction.
type AttendanceSessionRepository struct {
	db sqlx.ExtContext
}

// NewAttendanceSessionRepository constructs the repository.
func NewAttendanceSessionRepository(db sqlx.ExtContext) *AttendanceSessionRepository {
	return &AttendanceSessionRepository{db: db}
}

// Create inserts a session. ErrDuplicateSession is returned when the
// (class_name, date) key is taken.
func (r *AttendanceSessionRepository) Create(ctx context.Context, session *models.ClassDailyAttendance) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if session.OpenedAt.IsZero() {
		session.OpenedAt = now
	}
	if session.UpdatedAt.IsZero() {
		session.UpdatedAt = session.OpenedAt
	}
	query := `INSERT INTO attendance_sessions (` + sessionColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (class_name, date) DO NOTHING`
	res, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		session.ID, session.ClassName, session.Date, session.TotalStudents,
		session.PresentCount, session.AbsentCount, session.LateCount, session.ExcusedCount,
		session.AttendancePercentage, session.OpenedByUserID, session.OpenedByName, session.OpenedAt,
		session.IsCompleted, session.CompletionNotes, session.CompletedAt, session.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create attendance session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("create attendance session: %w", err)
	}
	if affected == 0 {
		return ErrDuplicateSession
	}
	return nil
}

// GetByID returns a session by identifier or sql.ErrNoRows.
func (r *AttendanceSessionRepository) GetByID(ctx context.Context, id string) (*models.ClassDailyAttendance, error) {
	query := `SELECT ` + sessionColumns + ` FROM attendance_sessions WHERE id = ?`
	var session models.ClassDailyAttendance
	if err := sqlx.GetContext(ctx, r.db, &session, r.db.Rebind(query), id); err != nil {
		return nil, fmt.Errorf("get attendance session: %w", err)
	}
	return &session, nil
}

// GetByClassDate returns the session for a class on a day or sql.ErrNoRows.
func (r *AttendanceSessionRepository) GetByClassDate(ctx context.Context, className, date string) (*models.ClassDailyAttendance, error) {
	query := `SELECT ` + sessionColumns + ` FROM attendance_sessions WHERE class_name = ? AND date = ?`
	var session models.ClassDailyAttendance
	if err := sqlx.GetContext(ctx, r.db, &session, r.db.Rebind(query), className, date); err != nil {
		return nil, fmt.Errorf("get attendance session by class: %w", err)
	}
	return &session, nil
}

// Update overwrites the mutable counters and completion fields.
func (r *AttendanceSessionRepository) Update(ctx context.Context, session *models.ClassDailyAttendance) error {
	session.UpdatedAt = time.Now().UTC()
	query := `UPDATE attendance_sessions SET total_students = ?, present_count = ?, absent_count = ?, late_count = ?,
excused_count = ?, attendance_percentage = ?, is_completed = ?, completion_notes = ?, completed_at = ?, updated_at = ?
WHERE id = ?`
	res, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		session.TotalStudents, session.PresentCount, session.AbsentCount, session.LateCount,
		session.ExcusedCount, session.AttendancePercentage, session.IsCompleted, session.CompletionNotes,
		session.CompletedAt, session.UpdatedAt, session.ID,
	)
	if err != nil {
		return fmt.Errorf("update attendance session: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("update attendance session %s: no rows affected", session.ID)
	}
	return nil
}

// List returns sessions matching the filter ordered by date then class.
func (r *AttendanceSessionRepository) List(ctx context.Context, filter models.SessionFilter) ([]models.ClassDailyAttendance, error) {
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
	if filter.CompletedOnly {
		where = append(where, "is_completed = ?")
		args = append(args, true)
	}
	query := fmt.Sprintf(`SELECT %s FROM attendance_sessions WHERE %s ORDER BY date ASC, class_name ASC`,
		sessionColumns, strings.Join(where, " AND "))

	sessions := []models.ClassDailyAttendance{}
	if err := sqlx.SelectContext(ctx, r.db, &sessions, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list attendance sessions: %w", err)
	}
	return sessions, nil
}
