package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Junior-NGOY/masomo-sub003/internal/models"
)

type memoryTables struct {
	sessions map[string]models.ClassDailyAttendance
	records  map[string]models.DailyAttendanceRecord
}

func (t memoryTables) clone() memoryTables {
	c := memoryTables{
		sessions: make(map[string]models.ClassDailyAttendance, len(t.sessions)),
		records:  make(map[string]models.DailyAttendanceRecord, len(t.records)),
	}
	for k, v := range t.sessions {
		c.sessions[k] = v
	}
	for k, v := range t.records {
		c.records[k] = v
	}
	return c
}

func recordKey(studentID, className, date string) string {
	return studentID + "\x00" + className + "\x00" + date
}

// MemoryStore keeps sessions, records and rosters in process memory. It
// satisfies the same contracts as the SQL store and is used for single-node
// demos and service tests. Transactions work on a copy that replaces the
// tables on commit.
type MemoryStore struct {
	mu     sync.RWMutex
	tables memoryTables

	rosterMu sync.RWMutex
	rosters  map[string][]models.ClassStudent
}

// NewMemoryStore builds an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tables: memoryTables{
			sessions: map[string]models.ClassDailyAttendance{},
			records:  map[string]models.DailyAttendanceRecord{},
		},
		rosters: map[string][]models.ClassStudent{},
	}
}

// SetRoster replaces the roster of a class.
func (m *MemoryStore) SetRoster(className string, students ...models.ClassStudent) {
	m.rosterMu.Lock()
	defer m.rosterMu.Unlock()
	cp := make([]models.ClassStudent, len(students))
	for i, s := range students {
		s.ClassName = className
		cp[i] = s
	}
	m.rosters[className] = cp
}

// GetStudentsInClass returns the roster ordered by roll number then name.
func (m *MemoryStore) GetStudentsInClass(_ context.Context, className string) ([]models.ClassStudent, error) {
	m.rosterMu.RLock()
	defer m.rosterMu.RUnlock()
	students := append([]models.ClassStudent(nil), m.rosters[className]...)
	sort.SliceStable(students, func(i, j int) bool {
		if students[i].RollNumber != students[j].RollNumber {
			return students[i].RollNumber < students[j].RollNumber
		}
		return students[i].Name < students[j].Name
	})
	return students, nil
}

// GetSessionByID returns a copy of the session; unknown ids wrap sql.ErrNoRows.
func (m *MemoryStore) GetSessionByID(ctx context.Context, id string) (*models.ClassDailyAttendance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return memTx{t: m.tables}.GetSessionByID(ctx, id)
}

// GetSessionByKey looks a session up by class and day; a miss wraps sql.ErrNoRows.
func (m *MemoryStore) GetSessionByKey(ctx context.Context, className, date string) (*models.ClassDailyAttendance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return memTx{t: m.tables}.GetSessionByKey(ctx, className, date)
}

// ListSessions returns the sessions matching filter ordered by date then class.
func (m *MemoryStore) ListSessions(ctx context.Context, filter models.SessionFilter) ([]models.ClassDailyAttendance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return memTx{t: m.tables}.ListSessions(ctx, filter)
}

// ListRecords returns the records matching filter ordered by date, class and student.
func (m *MemoryStore) ListRecords(ctx context.Context, filter models.RecordFilter) ([]models.DailyAttendanceRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return memTx{t: m.tables}.ListRecords(ctx, filter)
}

// WithinTx runs fn against a private copy of the tables and publishes it when
// fn succeeds. Writers are serialised.
func (m *MemoryStore) WithinTx(ctx context.Context, fn func(tx AttendanceTx) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("begin attendance tx: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	working := m.tables.clone()
	if err := fn(memTx{t: working}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("commit attendance tx: %w", err)
	}
	m.tables = working
	return nil
}

type memTx struct {
	t memoryTables
}

func (tx memTx) GetSessionByID(_ context.Context, id string) (*models.ClassDailyAttendance, error) {
	s, ok := tx.t.sessions[id]
	if !ok {
		return nil, fmt.Errorf("get attendance session: %w", sql.ErrNoRows)
	}
	return &s, nil
}

func (tx memTx) GetSessionByKey(_ context.Context, className, date string) (*models.ClassDailyAttendance, error) {
	for _, s := range tx.t.sessions {
		if s.ClassName == className && s.Date == date {
			s := s
			return &s, nil
		}
	}
	return nil, fmt.Errorf("get attendance session by class: %w", sql.ErrNoRows)
}

func (tx memTx) ListSessions(_ context.Context, filter models.SessionFilter) ([]models.ClassDailyAttendance, error) {
	out := []models.ClassDailyAttendance{}
	for _, s := range tx.t.sessions {
		if filter.ClassName != "" && s.ClassName != filter.ClassName {
			continue
		}
		if filter.DateFrom != "" && s.Date < filter.DateFrom {
			continue
		}
		if filter.DateTo != "" && s.Date > filter.DateTo {
			continue
		}
		if filter.CompletedOnly && !s.IsCompleted {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].ClassName < out[j].ClassName
	})
	return out, nil
}

func (tx memTx) ListRecords(_ context.Context, filter models.RecordFilter) ([]models.DailyAttendanceRecord, error) {
	out := []models.DailyAttendanceRecord{}
	for _, r := range tx.t.records {
		if filter.ClassName != "" && r.ClassName != filter.ClassName {
			continue
		}
		if filter.DateFrom != "" && r.Date < filter.DateFrom {
			continue
		}
		if filter.DateTo != "" && r.Date > filter.DateTo {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case a.Date != b.Date:
			return a.Date < b.Date
		case a.ClassName != b.ClassName:
			return a.ClassName < b.ClassName
		case a.StudentName != b.StudentName:
			return a.StudentName < b.StudentName
		default:
			return a.StudentID < b.StudentID
		}
	})
	return out, nil
}

func (tx memTx) CreateSession(_ context.Context, session *models.ClassDailyAttendance) error {
	for _, s := range tx.t.sessions {
		if s.ClassName == session.ClassName && s.Date == session.Date {
			return ErrDuplicateSession
		}
	}
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.OpenedAt.IsZero() {
		session.OpenedAt = time.Now().UTC()
	}
	if session.UpdatedAt.IsZero() {
		session.UpdatedAt = session.OpenedAt
	}
	tx.t.sessions[session.ID] = *session
	return nil
}

func (tx memTx) UpdateSession(_ context.Context, session *models.ClassDailyAttendance) error {
	if _, ok := tx.t.sessions[session.ID]; !ok {
		return fmt.Errorf("update attendance session %s: no rows affected", session.ID)
	}
	session.UpdatedAt = time.Now().UTC()
	tx.t.sessions[session.ID] = *session
	return nil
}

func (tx memTx) UpsertRecord(_ context.Context, record *models.DailyAttendanceRecord) (*models.DailyAttendanceRecord, error) {
	key := recordKey(record.StudentID, record.ClassName, record.Date)
	stored := *record
	if prev, ok := tx.t.records[key]; ok {
		stored.ID = prev.ID
	}
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.RecordedAt.IsZero() {
		stored.RecordedAt = time.Now().UTC()
	}
	tx.t.records[key] = stored
	return &stored, nil
}
