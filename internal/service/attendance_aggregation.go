package service

import "github.com/Junior-NGOY/masomo-sub003/internal/models"

// Attendance percentage thresholds used by the monthly rollup.
const (
	LowAttendanceThreshold   = 80
	PerfectAttendancePercent = 100
)

// RoundedPercent returns round(100*num/den) with halves rounded up, or 0 when
// den is not positive. Integer arithmetic keeps .5 boundaries exact.
func RoundedPercent(num, den int) int {
	if den <= 0 || num <= 0 {
		return 0
	}
	return (200*num + den) / (2 * den)
}

// AttendancePercentage is the share of marked students who were in class,
// counting late arrivals as attended.
func AttendancePercentage(present, late, marked int) int {
	return RoundedPercent(present+late, marked)
}

// Recompute derives the session counters from the full record set. Only
// records for the session's class and day count, one per student; when a
// student appears twice the most recent write wins.
func Recompute(session models.ClassDailyAttendance, records []models.DailyAttendanceRecord) models.ClassDailyAttendance {
	latest := make(map[string]models.DailyAttendanceRecord, len(records))
	for _, r := range records {
		if r.ClassName != session.ClassName || r.Date != session.Date {
			continue
		}
		if prev, ok := latest[r.StudentID]; ok && prev.RecordedAt.After(r.RecordedAt) {
			continue
		}
		latest[r.StudentID] = r
	}

	session.PresentCount, session.AbsentCount, session.LateCount, session.ExcusedCount = 0, 0, 0, 0
	for _, r := range latest {
		switch r.Status {
		case models.AttendanceStatusPresent:
			session.PresentCount++
		case models.AttendanceStatusAbsent:
			session.AbsentCount++
		case models.AttendanceStatusLate:
			session.LateCount++
		case models.AttendanceStatusExcused:
			session.ExcusedCount++
		}
	}
	session.AttendancePercentage = AttendancePercentage(session.PresentCount, session.LateCount, session.MarkedCount())
	return session
}

// SummarizeMonth folds completed sessions into monthly statistics. Sessions
// still open are ignored.
func SummarizeMonth(sessions []models.ClassDailyAttendance) models.MonthlyAttendanceStats {
	var stats models.MonthlyAttendanceStats
	attended, enrolled := 0, 0
	for _, s := range sessions {
		if !s.IsCompleted {
			continue
		}
		stats.TotalDays++
		attended += s.PresentCount + s.LateCount
		enrolled += s.TotalStudents
		if s.AttendancePercentage < LowAttendanceThreshold {
			stats.ClassesWithLowAttendance++
		}
		if s.AttendancePercentage == PerfectAttendancePercent {
			stats.PerfectAttendanceDays++
		}
	}
	stats.AverageAttendance = RoundedPercent(attended, enrolled)
	return stats
}
