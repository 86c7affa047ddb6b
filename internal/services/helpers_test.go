package services

import (
	"testing"
	"time"

	"github.com/vladimiradmaev/nutrition-diary/internal/repository/memory"
)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type testEnv struct {
	store   *memory.Store
	clock   *testClock
	loc     *time.Location
	streaks *StreakService
	meals   *MealService
	diary   *DiaryService
	metrics *MetricsService
}

func newTestEnv(t *testing.T, policy OrphanPolicy) *testEnv {
	t.Helper()

	loc := time.UTC
	env := &testEnv{
		store: memory.New(),
		clock: &testClock{now: time.Date(2024, 3, 10, 12, 0, 0, 0, loc)},
		loc:   loc,
	}
	env.streaks = NewStreakService(env.store, loc)
	env.streaks.SetClock(env.clock.Now)
	env.meals = NewMealService(env.store)
	env.meals.SetClock(env.clock.Now)
	env.diary = NewDiaryService(env.store, env.meals, env.streaks, policy, loc)
	env.diary.SetClock(env.clock.Now)
	env.metrics = NewMetricsService(env.store, env.streaks, loc)
	env.metrics.SetClock(env.clock.Now)
	return env
}

func ptr[T any](v T) *T { return &v }
