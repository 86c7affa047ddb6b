package interfaces

import (
	"context"
	"time"

	"github.com/vladimiradmaev/nutrition-diary/internal/domain"
	"github.com/vladimiradmaev/nutrition-diary/internal/fooddata"
	"github.com/vladimiradmaev/nutrition-diary/internal/services"
)

// UserServiceInterface defines the contract for user operations
type UserServiceInterface interface {
	Register(ctx context.Context, userID, username, displayName string) (*domain.UserProfile, error)
	Get(ctx context.Context, userID string) (*domain.UserProfile, error)
}

// DiaryServiceInterface defines the contract for diary entry operations
type DiaryServiceInterface interface {
	AddEntry(ctx context.Context, userID, mealID string, amount float64, category string) (domain.WriteResult, error)
	GetEntry(ctx context.Context, id string) (*domain.DiaryEntry, error)
	DeleteEntry(ctx context.Context, id string) error
	GroupByCategory(ctx context.Context, userID string, day time.Time) (map[string][]domain.ResolvedEntry, error)
	DailyTotals(ctx context.Context, userID string, day time.Time) (domain.Nutrients, error)
}

// MealServiceInterface defines the contract for meal definition lookups
type MealServiceInterface interface {
	FindByName(ctx context.Context, name string) (*domain.MealDefinition, error)
}

// FoodLogServiceInterface defines the contract for searching and logging external foods
type FoodLogServiceInterface interface {
	Search(ctx context.Context, query string, pageSize int) []fooddata.FoodSummary
	LogFood(ctx context.Context, userID string, candidate fooddata.FoodSummary, amount float64, category string) (*domain.MealDefinition, domain.WriteResult, error)
}

// MetricsServiceInterface defines the contract for metric tracking
type MetricsServiceInterface interface {
	TrackWeight(ctx context.Context, userID string, weight float64, unit string) (domain.WriteResult, error)
	TrackSleep(ctx context.Context, userID, bedtime, wakeup string, quality int) (domain.WriteResult, error)
	TrackExercise(ctx context.Context, userID, category string, duration float64, intensity string, calories float64) (domain.WriteResult, error)
	ListMetrics(ctx context.Context, userID string, metricType domain.MetricType) ([]domain.UserMetric, error)
}

// StreakServiceInterface defines the contract for reading streaks
type StreakServiceInterface interface {
	Get(ctx context.Context, userID string) (*domain.UserStreak, error)
}

// SetupServiceInterface defines the contract for seeding and migration
type SetupServiceInterface interface {
	SetupDatabase(ctx context.Context, userID string) services.SetupResult
	MigrateDatabase(ctx context.Context, userID string) services.MigrationResult
}

var (
	_ UserServiceInterface    = (*services.UserService)(nil)
	_ DiaryServiceInterface   = (*services.DiaryService)(nil)
	_ MealServiceInterface    = (*services.MealService)(nil)
	_ FoodLogServiceInterface = (*services.FoodLogService)(nil)
	_ MetricsServiceInterface = (*services.MetricsService)(nil)
	_ StreakServiceInterface  = (*services.StreakService)(nil)
	_ SetupServiceInterface   = (*services.SetupService)(nil)
)
