package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/vladimiradmaev/nutrition-diary/internal/domain"
	apperrors "github.com/vladimiradmaev/nutrition-diary/internal/errors"
	"github.com/vladimiradmaev/nutrition-diary/internal/utils"
)

const (
	DefaultWeightUnit = "kg"
	MinSleepQuality   = 1
	MaxSleepQuality   = 10
)

// MetricsService records weight, sleep and exercise observations
type MetricsService struct {
	repo    domain.MetricRepository
	streaks *StreakService
	loc     *time.Location
	now     func() time.Time
}

func NewMetricsService(repo domain.MetricRepository, streaks *StreakService, loc *time.Location) *MetricsService {
	if loc == nil {
		loc = time.Local
	}
	return &MetricsService{
		repo:    repo,
		streaks: streaks,
		loc:     loc,
		now:     time.Now,
	}
}

// SetClock replaces the time source
func (s *MetricsService) SetClock(now func() time.Time) {
	s.now = now
}

// AddMetric stores a metric dated now and updates the user's streak
func (s *MetricsService) AddMetric(ctx context.Context, userID string, metricType domain.MetricType, value float64, details domain.MetricDetails) (domain.WriteResult, error) {
	if userID == "" {
		return domain.WriteResult{}, apperrors.NewValidationError("user id is required")
	}
	if !metricType.Valid() {
		return domain.WriteResult{}, apperrors.NewValidationError("unknown metric type").
			WithContext("type", string(metricType))
	}
	if !utils.IsFinite(value) || value < 0 {
		return domain.WriteResult{}, apperrors.NewValidationError("metric value must be a non-negative number").
			WithContext("value", value)
	}
	if !utils.IsFinite(details.Duration) || !utils.IsFinite(details.Calories) {
		return domain.WriteResult{}, apperrors.NewValidationError("metric details must be numbers")
	}

	now := s.now()
	metric := &domain.UserMetric{
		UserID:    userID,
		Type:      metricType,
		Date:      &now,
		Value:     value,
		Details:   details,
		CreatedAt: now,
	}

	id, err := s.repo.CreateMetric(ctx, metric)
	if err != nil {
		return domain.WriteResult{}, apperrors.NewDatabaseError(err).
			WithContext("user_id", userID).
			WithContext("type", string(metricType))
	}

	return domain.WriteResult{
		ID:            id,
		StreakUpdated: s.streaks.Touch(ctx, userID),
	}, nil
}

// TrackWeight records a weight in unit (kg when empty)
func (s *MetricsService) TrackWeight(ctx context.Context, userID string, weight float64, unit string) (domain.WriteResult, error) {
	unit = strings.TrimSpace(unit)
	if unit == "" {
		unit = DefaultWeightUnit
	}
	return s.AddMetric(ctx, userID, domain.MetricWeight, weight, domain.MetricDetails{Unit: unit})
}

// TrackSleep records a night of sleep. bedtime and wakeup are ISO-like
// timestamps; a wakeup earlier than bedtime is taken as the next morning.
func (s *MetricsService) TrackSleep(ctx context.Context, userID, bedtime, wakeup string, quality int) (domain.WriteResult, error) {
	bed, err := utils.ParseTime(bedtime, s.loc)
	if err != nil {
		return domain.WriteResult{}, apperrors.NewValidationError("invalid bedtime").WithContext("bedtime", bedtime)
	}
	wake, err := utils.ParseTime(wakeup, s.loc)
	if err != nil {
		return domain.WriteResult{}, apperrors.NewValidationError("invalid wakeup time").WithContext("wakeup", wakeup)
	}

	details := domain.MetricDetails{
		Bedtime: bed.Format(time.RFC3339),
		Wakeup:  wake.Format(time.RFC3339),
		Quality: clampQuality(quality),
	}
	return s.AddMetric(ctx, userID, domain.MetricSleep, SleepMinutes(bed, wake), details)
}

// TrackExercise records an exercise session of duration minutes
func (s *MetricsService) TrackExercise(ctx context.Context, userID, category string, duration float64, intensity string, calories float64) (domain.WriteResult, error) {
	details := domain.MetricDetails{
		Category:  strings.TrimSpace(category),
		Intensity: strings.TrimSpace(intensity),
		Calories:  calories,
		Duration:  duration,
	}
	return s.AddMetric(ctx, userID, domain.MetricExercise, duration, details)
}

// ListMetrics returns the user's metrics of metricType, or of every type when
// it is empty, newest first.
func (s *MetricsService) ListMetrics(ctx context.Context, userID string, metricType domain.MetricType) ([]domain.UserMetric, error) {
	return s.list(ctx, domain.MetricQuery{UserID: userID, Type: metricType})
}

// ListMetricsByDate returns the user's metrics dated within day
func (s *MetricsService) ListMetricsByDate(ctx context.Context, userID string, day time.Time) ([]domain.UserMetric, error) {
	from, to := utils.DayRange(day.In(s.loc))
	return s.list(ctx, domain.MetricQuery{UserID: userID, From: &from, To: &to})
}

// LatestMetric returns the newest metric of metricType, or nil
func (s *MetricsService) LatestMetric(ctx context.Context, userID string, metricType domain.MetricType) (*domain.UserMetric, error) {
	metrics, err := s.ListMetrics(ctx, userID, metricType)
	if err != nil {
		return nil, err
	}
	for i := range metrics {
		if metrics[i].Date != nil {
			return &metrics[i], nil
		}
	}
	return nil, nil
}

// UpdateMetric merges patch into the metric and updates the owner's streak
func (s *MetricsService) UpdateMetric(ctx context.Context, id string, patch domain.MetricPatch) (domain.WriteResult, error) {
	if patch.Value != nil && (!utils.IsFinite(*patch.Value) || *patch.Value < 0) {
		return domain.WriteResult{}, apperrors.NewValidationError("metric value must be a non-negative number").
			WithContext("metric_id", id)
	}

	metric, err := s.repo.GetMetric(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.WriteResult{}, apperrors.NewNotFoundError("metric", id)
	}
	if err != nil {
		return domain.WriteResult{}, apperrors.NewDatabaseError(err).WithContext("metric_id", id)
	}

	if patch.Details != nil && metric.Type == domain.MetricSleep {
		details := *patch.Details
		details.Quality = clampQuality(details.Quality)
		patch.Details = &details
	}

	err = s.repo.UpdateMetric(ctx, id, patch)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.WriteResult{}, apperrors.NewNotFoundError("metric", id)
	}
	if err != nil {
		return domain.WriteResult{}, apperrors.NewDatabaseError(err).WithContext("metric_id", id)
	}

	return domain.WriteResult{
		ID:            id,
		StreakUpdated: s.streaks.Touch(ctx, metric.UserID),
	}, nil
}

// DeleteMetric removes the metric
func (s *MetricsService) DeleteMetric(ctx context.Context, id string) error {
	if err := s.repo.DeleteMetric(ctx, id); err != nil {
		return apperrors.NewDatabaseError(err).WithContext("metric_id", id)
	}
	return nil
}

func (s *MetricsService) list(ctx context.Context, query domain.MetricQuery) ([]domain.UserMetric, error) {
	if query.UserID == "" {
		return nil, apperrors.NewValidationError("user id is required")
	}
	if query.Type != "" && !query.Type.Valid() {
		return nil, apperrors.NewValidationError("unknown metric type").WithContext("type", string(query.Type))
	}

	metrics, err := s.repo.ListMetrics(ctx, query)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err).WithContext("user_id", query.UserID)
	}
	return metrics, nil
}

// SleepMinutes returns whole minutes from bed to wake. A negative difference
// means an overnight clock pair and gains 24 hours; the result is never negative.
func SleepMinutes(bed, wake time.Time) float64 {
	ms := wake.Sub(bed).Milliseconds()
	if ms < 0 {
		ms += (24 * time.Hour).Milliseconds()
	}
	if ms < 0 {
		return 0
	}
	return float64(ms / 60000)
}

func clampQuality(q int) int {
	if q < MinSleepQuality {
		return MinSleepQuality
	}
	if q > MaxSleepQuality {
		return MaxSleepQuality
	}
	return q
}
