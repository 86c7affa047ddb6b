package domain

import (
	"context"
	"time"
)

// MealRepository stores meal definitions ("meals")
type MealRepository interface {
	CreateMeal(ctx context.Context, meal *MealDefinition) (string, error)
	GetMeal(ctx context.Context, id string) (*MealDefinition, error)
	UpdateMeal(ctx context.Context, id string, patch MealPatch) error
	DeleteMeal(ctx context.Context, id string) error
	FindMealByFdcID(ctx context.Context, fdcID string) (*MealDefinition, error)
	FindMealByName(ctx context.Context, name string) (*MealDefinition, error)
	FindMealByLegacyID(ctx context.Context, legacyID string) (*MealDefinition, error)
}

// DiaryRepository stores diary entries ("userMeals")
type DiaryRepository interface {
	CreateEntry(ctx context.Context, entry *DiaryEntry) (string, error)
	GetEntry(ctx context.Context, id string) (*DiaryEntry, error)
	// ListEntries returns a user's entries newest first; a nil bound is open.
	ListEntries(ctx context.Context, userID string, from, to *time.Time) ([]DiaryEntry, error)
	UpdateEntry(ctx context.Context, id string, patch DiaryPatch) error
	DeleteEntry(ctx context.Context, id string) error
}

// MetricRepository stores user metrics ("userMetrics")
type MetricRepository interface {
	CreateMetric(ctx context.Context, metric *UserMetric) (string, error)
	GetMetric(ctx context.Context, id string) (*UserMetric, error)
	// ListMetrics returns matching metrics ordered by date descending.
	ListMetrics(ctx context.Context, query MetricQuery) ([]UserMetric, error)
	UpdateMetric(ctx context.Context, id string, patch MetricPatch) error
	DeleteMetric(ctx context.Context, id string) error
}

// StreakRepository stores one streak document per user ("userStreaks")
type StreakRepository interface {
	GetStreak(ctx context.Context, userID string) (*UserStreak, error)
	SaveStreak(ctx context.Context, streak *UserStreak) error
}

// CachedFoodRepository is the read-through cache of external lookups ("cachedFoods")
type CachedFoodRepository interface {
	// FindCachedFood returns the first row cached for foodID.
	FindCachedFood(ctx context.Context, foodID string) (*CachedFood, error)
	CreateCachedFood(ctx context.Context, food *CachedFood) error
}

// UserRepository stores user profiles ("users")
type UserRepository interface {
	GetUser(ctx context.Context, userID string) (*UserProfile, error)
	SaveUser(ctx context.Context, user *UserProfile) error
}

// LegacyMealRepository reads combined meal documents from the old schema
type LegacyMealRepository interface {
	ListLegacyMeals(ctx context.Context, userID string) ([]LegacyMeal, error)
}
