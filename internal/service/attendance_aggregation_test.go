package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Junior-NGOY/masomo-sub003/internal/models"
)

func TestRoundedPercent(t *testing.T) {
	cases := []struct {
		num, den, want int
	}{
		{20, 25, 80},
		{1, 3, 33},
		{2, 3, 67},
		{1, 8, 13},
		{0, 10, 0},
		{5, 0, 0},
		{7, 7, 100},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, RoundedPercent(tc.num, tc.den), "%d/%d", tc.num, tc.den)
	}
}

func TestRecomputeKeepsLatestRecordPerStudent(t *testing.T) {
	base := time.Date(2024, 3, 11, 8, 0, 0, 0, time.UTC)
	session := models.ClassDailyAttendance{ClassName: "6A", Date: "2024-03-11", TotalStudents: 4, PresentCount: 9}
	records := []models.DailyAttendanceRecord{
		{StudentID: "a", ClassName: "6A", Date: "2024-03-11", Status: models.AttendanceStatusAbsent, RecordedAt: base},
		{StudentID: "a", ClassName: "6A", Date: "2024-03-11", Status: models.AttendanceStatusLate, RecordedAt: base.Add(time.Minute)},
		{StudentID: "b", ClassName: "6A", Date: "2024-03-11", Status: models.AttendanceStatusExcused, RecordedAt: base},
		{StudentID: "c", ClassName: "6B", Date: "2024-03-11", Status: models.AttendanceStatusPresent, RecordedAt: base},
		{StudentID: "d", ClassName: "6A", Date: "2024-03-12", Status: models.AttendanceStatusPresent, RecordedAt: base},
	}

	got := Recompute(session, records)
	assert.Equal(t, 0, got.PresentCount)
	assert.Equal(t, 0, got.AbsentCount)
	assert.Equal(t, 1, got.LateCount)
	assert.Equal(t, 1, got.ExcusedCount)
	assert.Equal(t, 2, got.MarkedCount())
	assert.Equal(t, 50, got.AttendancePercentage)
}

func TestRecomputeEmptyIsZero(t *testing.T) {
	got := Recompute(models.ClassDailyAttendance{ClassName: "6A", Date: "2024-03-11", TotalStudents: 10}, nil)
	assert.Zero(t, got.MarkedCount())
	assert.Zero(t, got.AttendancePercentage)
}

func TestSummarizeMonthIgnoresOpenSessions(t *testing.T) {
	stats := SummarizeMonth([]models.ClassDailyAttendance{
		{TotalStudents: 10, PresentCount: 10, AttendancePercentage: 100},
	})
	assert.Equal(t, models.MonthlyAttendanceStats{}, stats)
}
