package models

import (
	"strings"
	"time"
)

// AttendanceStatus is the closed set of outcomes for one student on one day.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "PRESENT"
	AttendanceStatusAbsent  AttendanceStatus = "ABSENT"
	AttendanceStatusLate    AttendanceStatus = "LATE"
	AttendanceStatusExcused AttendanceStatus = "EXCUSED"
)

// AttendanceStatuses lists every status in display order.
var AttendanceStatuses = []AttendanceStatus{
	AttendanceStatusPresent,
	AttendanceStatusAbsent,
	AttendanceStatusLate,
	AttendanceStatusExcused,
}

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusAbsent, AttendanceStatusLate, AttendanceStatusExcused:
		return true
	default:
		return false
	}
}

// ParseAttendanceStatus accepts any casing and surrounding whitespace.
func ParseAttendanceStatus(raw string) (AttendanceStatus, bool) {
	s := AttendanceStatus(strings.ToUpper(strings.TrimSpace(raw)))
	return s, s.Valid()
}

// ParentNotificationRequired reports whether a record with this status must
// be flagged for parent notification.
func ParentNotificationRequired(s AttendanceStatus) bool {
	return s == AttendanceStatusAbsent
}

// Actor identifies who performed a write.
type Actor struct {
	UserID string
	Name   string
}

// SystemActor is credited with records synthesised on completion.
var SystemActor = Actor{UserID: "system", Name: "System"}

// AutoMarkedAbsentNote annotates synthesised ABSENT records.
const AutoMarkedAbsentNote = "auto-marked absent"

// ClassStudent is a roster entry supplied by the profile-management system.
type ClassStudent struct {
	ID         string  `db:"student_id" json:"id"`
	Name       string  `db:"full_name" json:"name"`
	RollNumber int     `db:"roll_number" json:"rollNumber"`
	PhotoURL   *string `db:"photo_url" json:"photoUrl,omitempty"`
	ClassName  string  `db:"class_name" json:"-"`
}

// DailyAttendanceRecord is one student's outcome for one class on one day.
// (StudentID, ClassName, Date) is unique.
type DailyAttendanceRecord struct {
	ID               string           `db:"id" json:"id"`
	StudentID        string           `db:"student_id" json:"studentId"`
	StudentName      string           `db:"student_name" json:"studentName"`
	ClassName        string           `db:"class_name" json:"className"`
	Date             string           `db:"date" json:"date"`
	Status           AttendanceStatus `db:"status" json:"status"`
	RecordedByUserID string           `db:"recorded_by_user_id" json:"recordedByUserId"`
	RecordedByName   string           `db:"recorded_by_name" json:"recordedByName"`
	RecordedAt       time.Time        `db:"recorded_at" json:"recordedAt"`
	Notes            *string          `db:"notes" json:"notes,omitempty"`
	ArrivalTime      *string          `db:"arrival_time" json:"arrivalTime,omitempty"`
	ParentNotified   bool             `db:"parent_notified" json:"parentNotified"`
}

// ClassDailyAttendance is the session aggregate for one class on one day.
type ClassDailyAttendance struct {
	ID                   string     `db:"id" json:"id"`
	ClassName            string     `db:"class_name" json:"className"`
	Date                 string     `db:"date" json:"date"`
	TotalStudents        int        `db:"total_students" json:"totalStudents"`
	PresentCount         int        `db:"present_count" json:"presentCount"`
	AbsentCount          int        `db:"absent_count" json:"absentCount"`
	LateCount            int        `db:"late_count" json:"lateCount"`
	ExcusedCount         int        `db:"excused_count" json:"excusedCount"`
	AttendancePercentage int        `db:"attendance_percentage" json:"attendancePercentage"`
	OpenedByUserID       string     `db:"opened_by_user_id" json:"openedByUserId"`
	OpenedByName         string     `db:"opened_by_name" json:"openedByName"`
	OpenedAt             time.Time  `db:"opened_at" json:"openedAt"`
	IsCompleted          bool       `db:"is_completed" json:"isCompleted"`
	CompletionNotes      *string    `db:"completion_notes" json:"completionNotes,omitempty"`
	CompletedAt          *time.Time `db:"completed_at" json:"completedAt,omitempty"`
	UpdatedAt            time.Time  `db:"updated_at" json:"updatedAt"`
}

// MarkedCount is the number of students holding a record in the session.
func (s ClassDailyAttendance) MarkedCount() int {
	return s.PresentCount + s.AbsentCount + s.LateCount + s.ExcusedCount
}

// SessionFilter scopes session listing. Dates are inclusive YYYY-MM-DD bounds.
type SessionFilter struct {
	ClassName     string
	DateFrom      string
	DateTo        string
	CompletedOnly bool
}

// RecordFilter scopes record listing. Dates are inclusive YYYY-MM-DD bounds.
type RecordFilter struct {
	ClassName string
	DateFrom  string
	DateTo    string
}

// MonthlyAttendanceStats summarises completed sessions of one month.
type MonthlyAttendanceStats struct {
	Month                    string  `json:"month"`
	ClassName                *string `json:"className,omitempty"`
	TotalDays                int     `json:"totalDays"`
	AverageAttendance        int     `json:"averageAttendance"`
	ClassesWithLowAttendance int     `json:"classesWithLowAttendance"`
	PerfectAttendanceDays    int     `json:"perfectAttendanceDays"`
}

// AttendanceExportRow is a record flattened with human-readable labels.
type AttendanceExportRow struct {
	Date           string `json:"date"`
	ClassName      string `json:"className"`
	StudentID      string `json:"studentId"`
	StudentName    string `json:"studentName"`
	Status         string `json:"status"`
	ArrivalTime    string `json:"arrivalTime"`
	Notes          string `json:"notes"`
	RecordedBy     string `json:"recordedBy"`
	RecordedAt     string `json:"recordedAt"`
	ParentNotified string `json:"parentNotified"`
}
