package service

import (
	"context"
	"encoding/json"
	"path"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Junior-NGOY/masomo-sub003/internal/models"
	appErrors "github.com/Junior-NGOY/masomo-sub003/pkg/errors"
)

type memoryCacheRepo struct {
	mu    sync.Mutex
	store map[string][]byte
}

func (m *memoryCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	payload, ok := m.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (m *memoryCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.store == nil {
		m.store = map[string][]byte{}
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.store[key] = payload
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(_ context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.store {
		if ok, _ := path.Match(pattern, key); ok {
			delete(m.store, key)
		}
	}
	return nil
}

type countingLister struct {
	sessions []models.ClassDailyAttendance
	calls    int
	filters  []models.SessionFilter
}

func (c *countingLister) ListSessions(_ context.Context, filter models.SessionFilter) ([]models.ClassDailyAttendance, error) {
	c.calls++
	c.filters = append(c.filters, filter)
	return c.sessions, nil
}

func completedSession(className, date string, total, present, late, pct int) models.ClassDailyAttendance {
	return models.ClassDailyAttendance{
		ClassName: className, Date: date, TotalStudents: total,
		PresentCount: present, LateCount: late, AbsentCount: total - present - late,
		AttendancePercentage: pct, IsCompleted: true,
	}
}

func TestMonthlyStatsCountsCompletedOnly(t *testing.T) {
	lister := &countingLister{sessions: []models.ClassDailyAttendance{
		completedSession("6A", "2024-03-04", 20, 20, 0, 100),
		completedSession("6A", "2024-03-05", 20, 14, 1, 75),
		{ClassName: "6A", Date: "2024-03-06", TotalStudents: 20, PresentCount: 3, AttendancePercentage: 100},
	}}
	svc := NewAttendanceRollupService(lister, nil, nil, time.UTC, time.Minute, zap.NewNop())

	stats, hit, err := svc.MonthlyStats(context.Background(), "6A", "2024-03")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "2024-03", stats.Month)
	require.NotNil(t, stats.ClassName)
	assert.Equal(t, "6A", *stats.ClassName)
	assert.Equal(t, 2, stats.TotalDays)
	assert.Equal(t, 88, stats.AverageAttendance)
	assert.Equal(t, 1, stats.ClassesWithLowAttendance)
	assert.Equal(t, 1, stats.PerfectAttendanceDays)

	require.Len(t, lister.filters, 1)
	assert.Equal(t, models.SessionFilter{ClassName: "6A", DateFrom: "2024-03-01", DateTo: "2024-03-31", CompletedOnly: true}, lister.filters[0])
}

func TestMonthlyStatsEmptyMonthIsZero(t *testing.T) {
	svc := NewAttendanceRollupService(&countingLister{}, nil, nil, time.UTC, time.Minute, zap.NewNop())

	stats, _, err := svc.MonthlyStats(context.Background(), "", "2024-02")
	require.NoError(t, err)
	assert.Nil(t, stats.ClassName)
	assert.Zero(t, stats.TotalDays)
	assert.Zero(t, stats.AverageAttendance)
	assert.Zero(t, stats.ClassesWithLowAttendance)
	assert.Zero(t, stats.PerfectAttendanceDays)
}

func TestMonthlyStatsDefaultsToCurrentMonth(t *testing.T) {
	lister := &countingLister{}
	svc := NewAttendanceRollupService(lister, nil, nil, time.UTC, time.Minute, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC) }

	stats, _, err := svc.MonthlyStats(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, "2024-02", stats.Month)
	assert.Equal(t, "2024-02-29", lister.filters[0].DateTo)
}

func TestMonthlyStatsRejectsBadMonth(t *testing.T) {
	svc := NewAttendanceRollupService(&countingLister{}, nil, nil, time.UTC, time.Minute, zap.NewNop())
	_, _, err := svc.MonthlyStats(context.Background(), "", "2024-13")
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestMonthlyStatsCachingAndInvalidation(t *testing.T) {
	lister := &countingLister{sessions: []models.ClassDailyAttendance{completedSession("6A", "2024-03-04", 10, 9, 0, 90)}}
	cache := NewCacheService(&memoryCacheRepo{}, nil, time.Minute, zap.NewNop(), true)
	svc := NewAttendanceRollupService(lister, cache, nil, time.UTC, time.Minute, zap.NewNop())
	ctx := context.Background()

	first, hit, err := svc.MonthlyStats(ctx, "6A", "2024-03")
	require.NoError(t, err)
	assert.False(t, hit)

	second, hit, err := svc.MonthlyStats(ctx, "6A", "2024-03")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, lister.calls)

	svc.InvalidateMonth(ctx, "2024-03-18")
	_, hit, err = svc.MonthlyStats(ctx, "6A", "2024-03")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, lister.calls)
}

type classFilteringLister struct {
	sessions []models.ClassDailyAttendance
}

func (l classFilteringLister) ListSessions(_ context.Context, filter models.SessionFilter) ([]models.ClassDailyAttendance, error) {
	out := []models.ClassDailyAttendance{}
	for _, s := range l.sessions {
		if filter.ClassName == "" || s.ClassName == filter.ClassName {
			out = append(out, s)
		}
	}
	return out, nil
}

func TestMonthlyStatsClassNamedAllDoesNotShareSchoolWideEntry(t *testing.T) {
	lister := classFilteringLister{sessions: []models.ClassDailyAttendance{
		completedSession("6A", "2024-03-04", 10, 10, 0, 100),
		completedSession("all", "2024-03-05", 10, 5, 0, 50),
	}}
	cache := NewCacheService(&memoryCacheRepo{}, nil, time.Minute, zap.NewNop(), true)
	svc := NewAttendanceRollupService(lister, cache, nil, time.UTC, time.Minute, zap.NewNop())
	ctx := context.Background()

	school, hit, err := svc.MonthlyStats(ctx, "", "2024-03")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, school.TotalDays)

	class, hit, err := svc.MonthlyStats(ctx, "all", "2024-03")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 1, class.TotalDays)
	assert.Equal(t, 50, class.AverageAttendance)

	svc.InvalidateMonth(ctx, "2024-03-20")
	_, hit, err = svc.MonthlyStats(ctx, "all", "2024-03")
	require.NoError(t, err)
	assert.False(t, hit)
	_, hit, err = svc.MonthlyStats(ctx, "", "2024-03")
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestStatsCacheKeyNamespaces(t *testing.T) {
	assert.Equal(t, "attendance:stats:monthly:2024-03:all", statsCacheKey("2024-03", ""))
	assert.Equal(t, "attendance:stats:monthly:2024-03:class:all", statsCacheKey("2024-03", "all"))
	assert.Equal(t, "attendance:stats:monthly:2024-03:class:6A", statsCacheKey("2024-03", "6A"))
}
