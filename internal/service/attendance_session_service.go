package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Junior-NGOY/masomo-sub003/internal/models"
	"github.com/Junior-NGOY/masomo-sub003/internal/repository"
	appErrors "github.com/Junior-NGOY/masomo-sub003/pkg/errors"
	"github.com/Junior-NGOY/masomo-sub003/pkg/locker"
)

const dateLayout = "2006-01-02"

var hhmmPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

type attendanceStore interface {
	repository.AttendanceReader
	WithinTx(ctx context.Context, fn func(tx repository.AttendanceTx) error) error
}

type rosterProvider interface {
	GetStudentsInClass(ctx context.Context, className string) ([]models.ClassStudent, error)
}

type statsInvalidator interface {
	InvalidateMonth(ctx context.Context, date string)
}

// AttendanceSessionConfig tunes lifecycle operations.
type AttendanceSessionConfig struct {
	Location         *time.Location
	OperationTimeout time.Duration
	RetryBackoff     time.Duration
}

// AttendanceSessionService drives the open -> record -> complete lifecycle of
// a class's daily attendance session. Every mutation of a session runs under
// that session's lock and inside a single store transaction.
type AttendanceSessionService struct {
	store       attendanceStore
	roster      rosterProvider
	locks       locker.Locker
	invalidator statsInvalidator
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
	cfg         AttendanceSessionConfig
	now         func() time.Time
}

// NewAttendanceSessionService constructs the lifecycle service.
func NewAttendanceSessionService(
	store attendanceStore,
	roster rosterProvider,
	locks locker.Locker,
	invalidator statsInvalidator,
	metrics *MetricsService,
	cfg AttendanceSessionConfig,
	validate *validator.Validate,
	logger *zap.Logger,
) *AttendanceSessionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if locks == nil {
		locks = locker.NewLocal()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.OperationTimeout <= 0 {
		cfg.OperationTimeout = 5 * time.Second
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 100 * time.Millisecond
	}
	RegisterAttendanceValidations(validate)
	return &AttendanceSessionService{
		store:       store,
		roster:      roster,
		locks:       locks,
		invalidator: invalidator,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
		cfg:         cfg,
		now:         time.Now,
	}
}

// RegisterAttendanceValidations installs the attendance_status, hhmm and
// calendar_date tags on validate.
func RegisterAttendanceValidations(validate *validator.Validate) {
	_ = validate.RegisterValidation("attendance_status", func(fl validator.FieldLevel) bool {
		_, ok := models.ParseAttendanceStatus(fl.Field().String())
		return ok
	})
	_ = validate.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return hhmmPattern.MatchString(fl.Field().String())
	})
	_ = validate.RegisterValidation("calendar_date", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(dateLayout, fl.Field().String())
		return err == nil
	})
}

// OpenSessionRequest opens a session for a class on a day (today by default).
type OpenSessionRequest struct {
	ClassName   string `json:"className" validate:"required,max=64"`
	TeacherID   string `json:"teacherId" validate:"required"`
	TeacherName string `json:"teacherName" validate:"required"`
	Date        string `json:"date" validate:"omitempty,calendar_date"`
}

// RecordStatusRequest writes one student's status into a session. SessionID
// decides the session; ClassName and Date, when supplied, must agree with it.
type RecordStatusRequest struct {
	SessionID   string  `json:"sessionId" validate:"required"`
	StudentID   string  `json:"studentId" validate:"required"`
	StudentName string  `json:"studentName"`
	ClassName   string  `json:"className"`
	Date        string  `json:"date" validate:"omitempty,calendar_date"`
	Status      string  `json:"status" validate:"required,attendance_status"`
	TeacherID   string  `json:"teacherId" validate:"required"`
	TeacherName string  `json:"teacherName" validate:"required"`
	Notes       *string `json:"notes" validate:"omitempty,max=500"`
	ArrivalTime *string `json:"arrivalTime" validate:"omitempty,hhmm"`
}

// BulkRecordItem is one entry of a bulk write.
type BulkRecordItem struct {
	StudentID   string  `json:"studentId" validate:"required"`
	StudentName string  `json:"studentName"`
	Status      string  `json:"status" validate:"required,attendance_status"`
	Notes       *string `json:"notes" validate:"omitempty,max=500"`
	ArrivalTime *string `json:"arrivalTime" validate:"omitempty,hhmm"`
}

// RecordBulkRequest writes several students in one transaction.
type RecordBulkRequest struct {
	SessionID   string           `json:"sessionId" validate:"required"`
	TeacherID   string           `json:"teacherId" validate:"required"`
	TeacherName string           `json:"teacherName" validate:"required"`
	Items       []BulkRecordItem `json:"items" validate:"required,min=1,max=500,dive"`
}

// CompleteSessionRequest finalises a session. MarkUnmarkedAsAbsent defaults
// to true when omitted.
type CompleteSessionRequest struct {
	SessionID            string  `json:"sessionId" validate:"required"`
	MarkUnmarkedAsAbsent *bool   `json:"markUnmarkedAsAbsent"`
	Notes                *string `json:"notes" validate:"omitempty,max=1000"`
}

// BulkRecordResult summarises a bulk write.
type BulkRecordResult struct {
	Session *models.ClassDailyAttendance   `json:"session"`
	Records []models.DailyAttendanceRecord `json:"records"`
}

// Today returns the current calendar day in the school's time zone.
func (s *AttendanceSessionService) Today() string {
	return s.now().In(s.cfg.Location).Format(dateLayout)
}

// OpenSession creates the session for (className, date), snapshotting the
// roster size. A second open for the same key fails with
// SESSION_ALREADY_EXISTS.
func (s *AttendanceSessionService) OpenSession(ctx context.Context, req OpenSessionRequest) (*models.ClassDailyAttendance, error) {
	req.ClassName = strings.TrimSpace(req.ClassName)
	if err := s.validate(req); err != nil {
		return nil, err
	}
	date := req.Date
	if date == "" {
		date = s.Today()
	}

	var created models.ClassDailyAttendance
	err := s.mutate(ctx, "open_session", req.ClassName, date, func(ctx context.Context) error {
		roster, err := s.loadRoster(ctx, req.ClassName)
		if err != nil {
			return err
		}
		return s.inTx(ctx, "open_session", func(tx repository.AttendanceTx) error {
			if _, err := tx.GetSessionByKey(ctx, req.ClassName, date); err == nil {
				return appErrors.ErrSessionAlreadyExists
			} else if !errors.Is(err, sql.ErrNoRows) {
				return storeError(err, "failed to look up attendance session")
			}
			now := s.now().UTC()
			session := models.ClassDailyAttendance{
				ClassName:      req.ClassName,
				Date:           date,
				TotalStudents:  len(roster),
				OpenedByUserID: req.TeacherID,
				OpenedByName:   req.TeacherName,
				OpenedAt:       now,
				UpdatedAt:      now,
			}
			session = Recompute(session, nil)
			if err := tx.CreateSession(ctx, &session); err != nil {
				return storeError(err, "failed to create attendance session")
			}
			created = session
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.SessionOpened()
	s.logger.Info("attendance session opened",
		zap.String("session_id", created.ID),
		zap.String("class_name", created.ClassName),
		zap.String("date", created.Date),
		zap.Int("total_students", created.TotalStudents),
		zap.String("opened_by", created.OpenedByUserID),
	)
	return &created, nil
}

// RecordStatus upserts one student's record and recomputes the session.
func (s *AttendanceSessionService) RecordStatus(ctx context.Context, req RecordStatusRequest) (*models.DailyAttendanceRecord, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	status, _ := models.ParseAttendanceStatus(req.Status)
	if err := checkArrivalTime(status, req.ArrivalTime); err != nil {
		return nil, err
	}

	session, err := s.GetSessionByID(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	if req.ClassName != "" && strings.TrimSpace(req.ClassName) != session.ClassName {
		return nil, appErrors.Clone(appErrors.ErrRecordValidation, fmt.Sprintf("className %q does not match session class %q", req.ClassName, session.ClassName))
	}
	if req.Date != "" && req.Date != session.Date {
		return nil, appErrors.Clone(appErrors.ErrRecordValidation, fmt.Sprintf("date %s does not match session date %s", req.Date, session.Date))
	}

	actor := models.Actor{UserID: req.TeacherID, Name: req.TeacherName}
	item := BulkRecordItem{
		StudentID:   req.StudentID,
		StudentName: req.StudentName,
		Status:      string(status),
		Notes:       req.Notes,
		ArrivalTime: req.ArrivalTime,
	}
	result, err := s.writeRecords(ctx, "record_status", session, actor, []BulkRecordItem{item})
	if err != nil {
		return nil, err
	}
	stored := result.Records[0]
	s.logger.Debug("attendance recorded",
		zap.String("session_id", session.ID),
		zap.String("student_id", stored.StudentID),
		zap.String("status", string(stored.Status)),
		zap.Int("marked", result.Session.MarkedCount()),
	)
	return &stored, nil
}

// RecordBulk writes many students into one session with a single recompute.
func (s *AttendanceSessionService) RecordBulk(ctx context.Context, req RecordBulkRequest) (*BulkRecordResult, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(req.Items))
	for i := range req.Items {
		item := &req.Items[i]
		if _, dup := seen[item.StudentID]; dup {
			return nil, appErrors.Clone(appErrors.ErrRecordValidation, fmt.Sprintf("student %s appears more than once", item.StudentID))
		}
		seen[item.StudentID] = struct{}{}
		status, _ := models.ParseAttendanceStatus(item.Status)
		if err := checkArrivalTime(status, item.ArrivalTime); err != nil {
			return nil, err
		}
		item.Status = string(status)
	}

	session, err := s.GetSessionByID(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	return s.writeRecords(ctx, "record_bulk", session, models.Actor{UserID: req.TeacherID, Name: req.TeacherName}, req.Items)
}

func (s *AttendanceSessionService) writeRecords(ctx context.Context, op string, session *models.ClassDailyAttendance, actor models.Actor, items []BulkRecordItem) (*BulkRecordResult, error) {
	result := &BulkRecordResult{}
	err := s.mutate(ctx, op, session.ClassName, session.Date, func(ctx context.Context) error {
		roster, err := s.loadRoster(ctx, session.ClassName)
		if err != nil {
			return err
		}
		enrolled := make(map[string]models.ClassStudent, len(roster))
		for _, st := range roster {
			enrolled[st.ID] = st
		}
		for _, item := range items {
			if _, ok := enrolled[item.StudentID]; !ok {
				return appErrors.Clone(appErrors.ErrRecordValidation, fmt.Sprintf("student %s is not enrolled in class %s", item.StudentID, session.ClassName))
			}
		}

		return s.inTx(ctx, op, func(tx repository.AttendanceTx) error {
			current, err := tx.GetSessionByID(ctx, session.ID)
			if err != nil {
				return storeError(err, "failed to load attendance session")
			}
			if current.IsCompleted {
				return appErrors.ErrSessionCompleted
			}

			now := s.now().UTC()
			written := make([]models.DailyAttendanceRecord, 0, len(items))
			for _, item := range items {
				name := strings.TrimSpace(item.StudentName)
				if name == "" {
					name = enrolled[item.StudentID].Name
				}
				status := models.AttendanceStatus(item.Status)
				stored, err := tx.UpsertRecord(ctx, &models.DailyAttendanceRecord{
					StudentID:        item.StudentID,
					StudentName:      name,
					ClassName:        current.ClassName,
					Date:             current.Date,
					Status:           status,
					RecordedByUserID: actor.UserID,
					RecordedByName:   actor.Name,
					RecordedAt:       now,
					Notes:            trimmedOrNil(item.Notes),
					ArrivalTime:      trimmedOrNil(item.ArrivalTime),
					ParentNotified:   models.ParentNotificationRequired(status),
				})
				if err != nil {
					return storeError(err, "failed to write attendance record")
				}
				written = append(written, *stored)
			}

			updated, err := s.recompute(ctx, tx, *current)
			if err != nil {
				return err
			}
			result.Session = &updated
			result.Records = written
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	for _, r := range result.Records {
		s.metrics.RecordWritten(r.Status)
	}
	return result, nil
}

// CompleteSession finalises a session, by default synthesising ABSENT records
// for roster students nobody marked.
func (s *AttendanceSessionService) CompleteSession(ctx context.Context, req CompleteSessionRequest) (*models.ClassDailyAttendance, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	markUnmarked := true
	if req.MarkUnmarkedAsAbsent != nil {
		markUnmarked = *req.MarkUnmarkedAsAbsent
	}

	session, err := s.GetSessionByID(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	if session.IsCompleted {
		return nil, appErrors.ErrSessionCompleted
	}

	var (
		completed  models.ClassDailyAttendance
		autoMarked int
	)
	err = s.mutate(ctx, "complete_session", session.ClassName, session.Date, func(ctx context.Context) error {
		var roster []models.ClassStudent
		if markUnmarked {
			var err error
			if roster, err = s.loadRoster(ctx, session.ClassName); err != nil {
				return err
			}
		}
		return s.inTx(ctx, "complete_session", func(tx repository.AttendanceTx) error {
			current, err := tx.GetSessionByID(ctx, session.ID)
			if err != nil {
				return storeError(err, "failed to load attendance session")
			}
			if current.IsCompleted {
				return appErrors.ErrSessionCompleted
			}

			now := s.now().UTC()
			synthesised := 0
			if markUnmarked {
				records, err := tx.ListRecords(ctx, models.RecordFilter{ClassName: current.ClassName, DateFrom: current.Date, DateTo: current.Date})
				if err != nil {
					return storeError(err, "failed to list attendance records")
				}
				marked := make(map[string]struct{}, len(records))
				for _, r := range records {
					marked[r.StudentID] = struct{}{}
				}
				note := models.AutoMarkedAbsentNote
				for _, st := range roster {
					if _, ok := marked[st.ID]; ok {
						continue
					}
					if _, err := tx.UpsertRecord(ctx, &models.DailyAttendanceRecord{
						StudentID:        st.ID,
						StudentName:      st.Name,
						ClassName:        current.ClassName,
						Date:             current.Date,
						Status:           models.AttendanceStatusAbsent,
						RecordedByUserID: models.SystemActor.UserID,
						RecordedByName:   models.SystemActor.Name,
						RecordedAt:       now,
						Notes:            &note,
						ParentNotified:   models.ParentNotificationRequired(models.AttendanceStatusAbsent),
					}); err != nil {
						return storeError(err, "failed to auto-mark absent student")
					}
					synthesised++
				}
			}

			current.IsCompleted = true
			current.CompletionNotes = trimmedOrNil(req.Notes)
			current.CompletedAt = &now
			updated, err := s.recompute(ctx, tx, *current)
			if err != nil {
				return err
			}
			completed = updated
			autoMarked = synthesised
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.SessionCompleted(autoMarked)
	if s.invalidator != nil {
		s.invalidator.InvalidateMonth(ctx, completed.Date)
	}
	s.logger.Info("attendance session completed",
		zap.String("session_id", completed.ID),
		zap.String("class_name", completed.ClassName),
		zap.String("date", completed.Date),
		zap.Int("auto_marked_absent", autoMarked),
		zap.Int("attendance_percentage", completed.AttendancePercentage),
	)
	return &completed, nil
}

// GetSession returns the session of a class on a day (today by default), or
// nil when none was opened.
func (s *AttendanceSessionService) GetSession(ctx context.Context, className, date string) (*models.ClassDailyAttendance, error) {
	className = strings.TrimSpace(className)
	if className == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "className is required")
	}
	date, err := s.resolveDate(date)
	if err != nil {
		return nil, err
	}
	var session *models.ClassDailyAttendance
	err = s.read(ctx, "get_session", func(ctx context.Context) error {
		found, err := s.store.GetSessionByKey(ctx, className, date)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return storeError(err, "failed to load attendance session")
		}
		session = found
		return nil
	})
	return session, err
}

// GetSessionByID returns a session or SESSION_NOT_FOUND.
func (s *AttendanceSessionService) GetSessionByID(ctx context.Context, id string) (*models.ClassDailyAttendance, error) {
	if strings.TrimSpace(id) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "sessionId is required")
	}
	var session *models.ClassDailyAttendance
	err := s.read(ctx, "get_session", func(ctx context.Context) error {
		found, err := s.store.GetSessionByID(ctx, id)
		if err != nil {
			return storeError(err, "failed to load attendance session")
		}
		session = found
		return nil
	})
	return session, err
}

// GetRecords lists a class's records for one day (today by default).
func (s *AttendanceSessionService) GetRecords(ctx context.Context, className, date string) ([]models.DailyAttendanceRecord, error) {
	className = strings.TrimSpace(className)
	if className == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "className is required")
	}
	date, err := s.resolveDate(date)
	if err != nil {
		return nil, err
	}
	var records []models.DailyAttendanceRecord
	err = s.read(ctx, "get_records", func(ctx context.Context) error {
		list, err := s.store.ListRecords(ctx, models.RecordFilter{ClassName: className, DateFrom: date, DateTo: date})
		if err != nil {
			return storeError(err, "failed to list attendance records")
		}
		records = list
		return nil
	})
	return records, err
}

// recompute rebuilds the counters from every record of the session, checks
// the marked count against the roster snapshot and persists the result.
func (s *AttendanceSessionService) recompute(ctx context.Context, tx repository.AttendanceTx, session models.ClassDailyAttendance) (models.ClassDailyAttendance, error) {
	records, err := tx.ListRecords(ctx, models.RecordFilter{ClassName: session.ClassName, DateFrom: session.Date, DateTo: session.Date})
	if err != nil {
		return session, storeError(err, "failed to list attendance records")
	}
	updated := Recompute(session, records)
	if updated.MarkedCount() > updated.TotalStudents {
		return session, appErrors.Clone(appErrors.ErrRecordValidation,
			fmt.Sprintf("%d students marked but session roster has %d", updated.MarkedCount(), updated.TotalStudents))
	}
	if err := tx.UpdateSession(ctx, &updated); err != nil {
		return session, storeError(err, "failed to update attendance session")
	}
	return updated, nil
}

// mutate serialises fn on the session key under the operation timeout and
// retries it once when it fails transiently.
func (s *AttendanceSessionService) mutate(ctx context.Context, op, className, date string, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.OperationTimeout)
	defer cancel()

	waitStart := time.Now()
	unlock, err := s.locks.Lock(ctx, locker.SessionKey(className, date))
	if err != nil {
		s.logger.Warn("attendance session lock not acquired", zap.String("operation", op), zap.String("class_name", className), zap.String("date", date), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "attendance session busy")
	}
	defer unlock()
	s.metrics.ObserveLockWait(time.Since(waitStart))

	return s.withRetry(ctx, op, fn)
}

// read applies the timeout and retry policy to a read-only operation.
func (s *AttendanceSessionService) read(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.OperationTimeout)
	defer cancel()
	return s.withRetry(ctx, op, fn)
}

func (s *AttendanceSessionService) withRetry(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	err := fn(ctx)
	if err == nil || !appErrors.Transient(err) || ctx.Err() != nil {
		return err
	}
	s.metrics.OperationRetried(op)
	s.logger.Warn("attendance operation failed, retrying", zap.String("operation", op), zap.Error(err))

	timer := time.NewTimer(s.cfg.RetryBackoff)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return err
	case <-timer.C:
	}
	return fn(ctx)
}

func (s *AttendanceSessionService) inTx(ctx context.Context, op string, fn func(tx repository.AttendanceTx) error) error {
	start := time.Now()
	err := s.store.WithinTx(ctx, fn)
	s.metrics.ObserveDBQuery(op, time.Since(start))
	if err != nil {
		return storeError(err, "attendance transaction failed")
	}
	return nil
}

func (s *AttendanceSessionService) loadRoster(ctx context.Context, className string) ([]models.ClassStudent, error) {
	roster, err := s.roster.GetStudentsInClass(ctx, className)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrRosterUnavailable.Code, appErrors.ErrRosterUnavailable.Status, "failed to load class roster")
	}
	if len(roster) == 0 {
		return nil, appErrors.Clone(appErrors.ErrRosterUnavailable, fmt.Sprintf("roster for class %s is empty", className))
	}
	return roster, nil
}

func (s *AttendanceSessionService) resolveDate(date string) (string, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return s.Today(), nil
	}
	if _, err := time.Parse(dateLayout, date); err != nil {
		return "", appErrors.Clone(appErrors.ErrValidation, "invalid date format, expected YYYY-MM-DD")
	}
	return date, nil
}

// validate maps validator failures onto error kinds: bad statuses and arrival
// times are record errors, everything else is a request error.
func (s *AttendanceSessionService) validate(req interface{}) error {
	err := s.validator.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			switch fe.Tag() {
			case "attendance_status":
				return appErrors.Wrap(err, appErrors.ErrRecordValidation.Code, appErrors.ErrRecordValidation.Status,
					fmt.Sprintf("status %q is not one of PRESENT, ABSENT, LATE, EXCUSED", fe.Value()))
			case "hhmm":
				return appErrors.Wrap(err, appErrors.ErrRecordValidation.Code, appErrors.ErrRecordValidation.Status, "arrivalTime must be HH:MM")
			}
		}
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
}

func checkArrivalTime(status models.AttendanceStatus, arrival *string) error {
	if arrival != nil && strings.TrimSpace(*arrival) != "" && status != models.AttendanceStatusLate {
		return appErrors.Clone(appErrors.ErrRecordValidation, "arrivalTime is only allowed when status is LATE")
	}
	return nil
}

// storeError keeps typed errors and classifies raw store failures.
func storeError(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *appErrors.Error
	switch {
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, sql.ErrNoRows):
		return appErrors.Wrap(err, appErrors.ErrSessionNotFound.Code, appErrors.ErrSessionNotFound.Status, appErrors.ErrSessionNotFound.Message)
	case errors.Is(err, repository.ErrDuplicateSession):
		return appErrors.Wrap(err, appErrors.ErrSessionAlreadyExists.Code, appErrors.ErrSessionAlreadyExists.Status, appErrors.ErrSessionAlreadyExists.Message)
	default:
		return appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, message)
	}
}

func trimmedOrNil(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
