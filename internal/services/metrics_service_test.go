package services

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vladimiradmaev/nutrition-diary/internal/domain"
	apperrors "github.com/vladimiradmaev/nutrition-diary/internal/errors"
)

func TestSleepMinutes(t *testing.T) {
	at := func(s string) time.Time {
		v, err := time.Parse("2006-01-02T15:04", s)
		require.NoError(t, err)
		return v
	}

	tests := []struct {
		name      string
		bed, wake string
		want      float64
	}{
		{"across midnight", "2024-01-01T23:00", "2024-01-02T06:00", 420},
		{"same-day clock pair", "2024-01-02T23:00", "2024-01-02T06:00", 420},
		{"nap", "2024-01-02T13:15", "2024-01-02T14:00", 45},
		{"zero", "2024-01-02T22:00", "2024-01-02T22:00", 0},
		{"more than a day backwards", "2024-01-05T22:00", "2024-01-02T06:00", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SleepMinutes(at(tt.bed), at(tt.wake)))
		})
	}

	// partial minutes are floored
	assert.Equal(t, 1.0, SleepMinutes(at("2024-01-02T10:00"), at("2024-01-02T10:01").Add(59*time.Second)))
}

func TestMetricsService_TrackSleep(t *testing.T) {
	env := newTestEnv(t, OrphanSkip)
	ctx := context.Background()

	res, err := env.metrics.TrackSleep(ctx, "u1", "2024-01-02T23:00", "2024-01-02T06:00", 14)
	require.NoError(t, err)
	assert.True(t, res.StreakUpdated)

	m, err := env.store.GetMetric(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MetricSleep, m.Type)
	assert.Equal(t, 420.0, m.Value)
	assert.Equal(t, MaxSleepQuality, m.Details.Quality)
	assert.Equal(t, "2024-01-02T23:00:00Z", m.Details.Bedtime)

	res, err = env.metrics.TrackSleep(ctx, "u1", "2024-01-02T23:00:00Z", "2024-01-03T07:30:00Z", 0)
	require.NoError(t, err)
	m, err = env.store.GetMetric(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, 510.0, m.Value)
	assert.Equal(t, MinSleepQuality, m.Details.Quality)

	_, err = env.metrics.TrackSleep(ctx, "u1", "late", "2024-01-02T06:00", 5)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}

func TestMetricsService_TrackWeightAndExercise(t *testing.T) {
	env := newTestEnv(t, OrphanSkip)
	ctx := context.Background()

	res, err := env.metrics.TrackWeight(ctx, "u1", 72.4, "")
	require.NoError(t, err)
	m, err := env.store.GetMetric(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, 72.4, m.Value)
	assert.Equal(t, domain.MetricDetails{Unit: "kg"}, m.Details)

	res, err = env.metrics.TrackExercise(ctx, "u1", "running", 30, "high", 0)
	require.NoError(t, err)
	m, err = env.store.GetMetric(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, 30.0, m.Value)
	assert.Equal(t, domain.MetricDetails{Category: "running", Intensity: "high", Duration: 30}, m.Details)
}

func TestMetricsService_AddMetric_Errors(t *testing.T) {
	env := newTestEnv(t, OrphanSkip)
	ctx := context.Background()

	_, err := env.metrics.AddMetric(ctx, "", domain.MetricWeight, 70, domain.MetricDetails{})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))

	_, err = env.metrics.AddMetric(ctx, "u1", "mood", 7, domain.MetricDetails{})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))

	for _, v := range []float64{math.NaN(), math.Inf(1), -1} {
		_, err = env.metrics.TrackWeight(ctx, "u1", v, "kg")
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation), v)
	}
	_, err = env.metrics.TrackExercise(ctx, "u1", "running", 30, "high", math.NaN())
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	_, err = env.metrics.UpdateMetric(ctx, "missing", domain.MetricPatch{Value: ptr(math.Inf(-1))})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))

	env.store.Fail("CreateMetric", errors.New("unavailable"))
	_, err = env.metrics.AddMetric(ctx, "u1", domain.MetricWeight, 70, domain.MetricDetails{})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeDatabase))

	streak, err := env.streaks.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, streak, "failed writes must not touch the streak")
}

func TestMetricsService_ListMetrics(t *testing.T) {
	env := newTestEnv(t, OrphanSkip)
	ctx := context.Background()

	for i, v := range []float64{70, 71, 72} {
		env.clock.now = time.Date(2024, 3, 10+i, 8, 0, 0, 0, env.loc)
		_, err := env.metrics.TrackWeight(ctx, "u1", v, "kg")
		require.NoError(t, err)
	}
	_, err := env.metrics.TrackExercise(ctx, "u1", "yoga", 20, "low", 60)
	require.NoError(t, err)
	_, err = env.metrics.TrackWeight(ctx, "u2", 90, "kg")
	require.NoError(t, err)

	weights, err := env.metrics.ListMetrics(ctx, "u1", domain.MetricWeight)
	require.NoError(t, err)
	require.Len(t, weights, 3)
	assert.Equal(t, []float64{72, 71, 70}, []float64{weights[0].Value, weights[1].Value, weights[2].Value})

	all, err := env.metrics.ListMetrics(ctx, "u1", "")
	require.NoError(t, err)
	assert.Len(t, all, 4)

	again, err := env.metrics.ListMetrics(ctx, "u1", "")
	require.NoError(t, err)
	assert.Equal(t, all, again)

	byDay, err := env.metrics.ListMetricsByDate(ctx, "u1", time.Date(2024, 3, 12, 23, 0, 0, 0, env.loc))
	require.NoError(t, err)
	assert.Len(t, byDay, 2)

	latest, err := env.metrics.LatestMetric(ctx, "u1", domain.MetricWeight)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 72.0, latest.Value)

	none, err := env.metrics.LatestMetric(ctx, "u1", domain.MetricSleep)
	require.NoError(t, err)
	assert.Nil(t, none)

	_, err = env.metrics.ListMetrics(ctx, "u1", "mood")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}

func TestMetricsService_UpdateAndDelete(t *testing.T) {
	env := newTestEnv(t, OrphanSkip)
	ctx := context.Background()

	res, err := env.metrics.TrackWeight(ctx, "u1", 70, "kg")
	require.NoError(t, err)

	env.clock.Advance(24 * time.Hour)
	upd, err := env.metrics.UpdateMetric(ctx, res.ID, domain.MetricPatch{Value: ptr(69.5)})
	require.NoError(t, err)
	assert.True(t, upd.StreakUpdated)

	m, err := env.store.GetMetric(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, 69.5, m.Value)
	assert.Equal(t, "kg", m.Details.Unit)

	streak, err := env.streaks.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, streak.CurrentStreak)

	_, err = env.metrics.UpdateMetric(ctx, "missing", domain.MetricPatch{Value: ptr(1.0)})
	assert.True(t, apperrors.IsNotFound(err))

	require.NoError(t, env.metrics.DeleteMetric(ctx, res.ID))
	left, err := env.metrics.ListMetrics(ctx, "u1", "")
	require.NoError(t, err)
	assert.Empty(t, left)
}
