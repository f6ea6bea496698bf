package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Junior-NGOY/masomo-sub003/internal/models"
	appErrors "github.com/Junior-NGOY/masomo-sub003/pkg/errors"
)

const (
	monthLayout        = "2006-01"
	statsCachePrefix   = "attendance:stats:monthly"
	statsCacheAllClass = "all"
)

type sessionLister interface {
	ListSessions(ctx context.Context, filter models.SessionFilter) ([]models.ClassDailyAttendance, error)
}

// AttendanceRollupService computes monthly statistics over completed
// sessions, caching results per (month, class).
type AttendanceRollupService struct {
	sessions sessionLister
	cache    *CacheService
	metrics  *MetricsService
	logger   *zap.Logger
	loc      *time.Location
	cacheTTL time.Duration
	now      func() time.Time
}

// NewAttendanceRollupService constructs the rollup service. cache may be nil.
func NewAttendanceRollupService(sessions sessionLister, cache *CacheService, metrics *MetricsService, loc *time.Location, cacheTTL time.Duration, logger *zap.Logger) *AttendanceRollupService {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceRollupService{
		sessions: sessions,
		cache:    cache,
		metrics:  metrics,
		logger:   logger,
		loc:      loc,
		cacheTTL: cacheTTL,
		now:      time.Now,
	}
}

// MonthlyStats summarises completed sessions of month (YYYY-MM, current
// month when empty), optionally for one class. The boolean reports a cache
// hit.
func (s *AttendanceRollupService) MonthlyStats(ctx context.Context, className, month string) (*models.MonthlyAttendanceStats, bool, error) {
	className = strings.TrimSpace(className)
	month = strings.TrimSpace(month)
	if month == "" {
		month = s.now().In(s.loc).Format(monthLayout)
	}
	first, err := time.ParseInLocation(monthLayout, month, s.loc)
	if err != nil {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "invalid month format, expected YYYY-MM")
	}

	key := statsCacheKey(month, className)
	var cached models.MonthlyAttendanceStats
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, true, nil
	}

	last := first.AddDate(0, 1, -1)
	start := time.Now()
	sessions, err := s.sessions.ListSessions(ctx, models.SessionFilter{
		ClassName:     className,
		DateFrom:      first.Format(dateLayout),
		DateTo:        last.Format(dateLayout),
		CompletedOnly: true,
	})
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to list attendance sessions")
	}
	s.metrics.ObserveDBQuery("attendance_monthly_stats", time.Since(start))

	stats := SummarizeMonth(sessions)
	stats.Month = month
	if className != "" {
		stats.ClassName = &className
	}

	if err := s.cache.Set(ctx, key, stats, s.cacheTTL); err != nil {
		s.logger.Warn("cache monthly attendance stats", zap.String("key", key), zap.Error(err))
	}
	return &stats, false, nil
}

// InvalidateMonth drops every cached rollup of the month containing date
// (YYYY-MM-DD).
func (s *AttendanceRollupService) InvalidateMonth(ctx context.Context, date string) {
	if len(date) < len(monthLayout) {
		return
	}
	pattern := fmt.Sprintf("%s:%s:*", statsCachePrefix, date[:len(monthLayout)])
	if err := s.cache.Invalidate(ctx, pattern); err != nil {
		s.logger.Warn("invalidate monthly attendance stats", zap.String("pattern", pattern), zap.Error(err))
	}
}

// statsCacheKey keeps whole-school and per-class entries in separate
// namespaces so no class name can alias the school-wide key.
func statsCacheKey(month, className string) string {
	if className == "" {
		return fmt.Sprintf("%s:%s:%s", statsCachePrefix, month, statsCacheAllClass)
	}
	return fmt.Sprintf("%s:%s:class:%s", statsCachePrefix, month, className)
}
