package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Junior-NGOY/masomo-sub003/internal/models"
)

// AttendanceReader exposes the read side shared by the pool and transactions.
// Missing sessions are reported as sql.ErrNoRows.
type AttendanceReader interface {
	GetSessionByID(ctx context.Context, id string) (*models.ClassDailyAttendance, error)
	GetSessionByKey(ctx context.Context, className, date string) (*models.ClassDailyAttendance, error)
	ListSessions(ctx context.Context, filter models.SessionFilter) ([]models.ClassDailyAttendance, error)
	ListRecords(ctx context.Context, filter models.RecordFilter) ([]models.DailyAttendanceRecord, error)
}

// AttendanceTx is one unit of work over sessions and records.
type AttendanceTx interface {
	AttendanceReader
	CreateSession(ctx context.Context, session *models.ClassDailyAttendance) error
	UpdateSession(ctx context.Context, session *models.ClassDailyAttendance) error
	UpsertRecord(ctx context.Context, record *models.DailyAttendanceRecord) (*models.DailyAttendanceRecord, error)
}

// attendanceOps binds both repositories to one executor.
type attendanceOps struct {
	sessions *AttendanceSessionRepository
	records  *DailyAttendanceRepository
}

func newAttendanceOps(db sqlx.ExtContext) attendanceOps {
	return attendanceOps{
		sessions: NewAttendanceSessionRepository(db),
		records:  NewDailyAttendanceRepository(db),
	}
}

func (o attendanceOps) GetSessionByID(ctx context.Context, id string) (*models.ClassDailyAttendance, error) {
	return o.sessions.GetByID(ctx, id)
}

func (o attendanceOps) GetSessionByKey(ctx context.Context, className, date string) (*models.ClassDailyAttendance, error) {
	return o.sessions.GetByClassDate(ctx, className, date)
}

func (o attendanceOps) ListSessions(ctx context.Context, filter models.SessionFilter) ([]models.ClassDailyAttendance, error) {
	return o.sessions.List(ctx, filter)
}

func (o attendanceOps) ListRecords(ctx context.Context, filter models.RecordFilter) ([]models.DailyAttendanceRecord, error) {
	return o.records.List(ctx, filter)
}

func (o attendanceOps) CreateSession(ctx context.Context, session *models.ClassDailyAttendance) error {
	return o.sessions.Create(ctx, session)
}

func (o attendanceOps) UpdateSession(ctx context.Context, session *models.ClassDailyAttendance) error {
	return o.sessions.Update(ctx, session)
}

func (o attendanceOps) UpsertRecord(ctx context.Context, record *models.DailyAttendanceRecord) (*models.DailyAttendanceRecord, error) {
	return o.records.Upsert(ctx, record)
}

// AttendanceStore is the SQL backed attendance store. Reads go straight to
// the pool; writes go through WithinTx.
type AttendanceStore struct {
	attendanceOps
	db *sqlx.DB
}

// NewAttendanceStore constructs the store.
func NewAttendanceStore(db *sqlx.DB) *AttendanceStore {
	return &AttendanceStore{attendanceOps: newAttendanceOps(db), db: db}
}

// WithinTx runs fn inside a transaction, committing when fn returns nil.
func (s *AttendanceStore) WithinTx(ctx context.Context, fn func(tx AttendanceTx) error) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin attendance tx: %w", err)
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			err = errors.Join(err, fmt.Errorf("rollback attendance tx: %w", rbErr))
		}
	}()

	if err := fn(newAttendanceOps(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit attendance tx: %w", err)
	}
	committed = true
	return nil
}
