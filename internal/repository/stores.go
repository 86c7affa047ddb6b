package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/vladimiradmaev/nutrition-diary/internal/config"
	"github.com/vladimiradmaev/nutrition-diary/internal/database"
	"github.com/vladimiradmaev/nutrition-diary/internal/domain"
	"github.com/vladimiradmaev/nutrition-diary/internal/logger"
	"github.com/vladimiradmaev/nutrition-diary/internal/repository/memory"
	"github.com/vladimiradmaev/nutrition-diary/internal/repository/mongodb"
)

// Stores groups the repositories of one storage backend
type Stores struct {
	Meals       domain.MealRepository
	Diary       domain.DiaryRepository
	Metrics     domain.MetricRepository
	Streaks     domain.StreakRepository
	CachedFoods domain.CachedFoodRepository
	Users       domain.UserRepository
	Legacy      domain.LegacyMealRepository
}

// Open connects the backend selected by cfg.Store.Driver. The returned func
// releases the connection and is safe to call once.
func Open(ctx context.Context, cfg *config.Config, loc *time.Location) (Stores, func(), error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		db, err := NewPostgresDB(cfg.DB)
		if err != nil {
			return Stores{}, nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		closeFn := func() {
			if err := db.Close(); err != nil {
				logger.Error("Failed to close database", "error", err)
			}
		}
		return db.Stores(), closeFn, nil

	case config.DriverMongo:
		client, db, err := database.NewMongoDB(ctx, cfg.Mongo)
		if err != nil {
			return Stores{}, nil, err
		}
		store := mongodb.New(db, loc)
		closeFn := func() {
			if err := client.Disconnect(context.Background()); err != nil {
				logger.Error("Failed to disconnect MongoDB", "error", err)
			}
		}
		return storesOf(store), closeFn, nil

	case config.DriverMemory:
		logger.Warn("Using in-memory store, data will not survive a restart")
		return storesOf(memory.New()), func() {}, nil
	}
	return Stores{}, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

type allRepositories interface {
	domain.MealRepository
	domain.DiaryRepository
	domain.MetricRepository
	domain.StreakRepository
	domain.CachedFoodRepository
	domain.UserRepository
	domain.LegacyMealRepository
}

func storesOf(r allRepositories) Stores {
	return Stores{
		Meals:       r,
		Diary:       r,
		Metrics:     r,
		Streaks:     r,
		CachedFoods: r,
		Users:       r,
		Legacy:      r,
	}
}
