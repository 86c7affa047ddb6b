// Package app wires configuration, storage and services together for the
// bot and the command line tools.
package app

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vladimiradmaev/nutrition-diary/internal/config"
	"github.com/vladimiradmaev/nutrition-diary/internal/database"
	"github.com/vladimiradmaev/nutrition-diary/internal/fooddata"
	"github.com/vladimiradmaev/nutrition-diary/internal/logger"
	"github.com/vladimiradmaev/nutrition-diary/internal/repository"
	"github.com/vladimiradmaev/nutrition-diary/internal/services"
)

type App struct {
	Config   *config.Config
	Location *time.Location
	Stores   repository.Stores
	// Redis is nil unless enabled and reachable
	Redis *redis.Client

	Foods   *fooddata.Service
	Streaks *services.StreakService
	Meals   *services.MealService
	Diary   *services.DiaryService
	Metrics *services.MetricsService
	Users   *services.UserService
	Setup   *services.SetupService
	FoodLog *services.FoodLogService

	closers []func()
}

// New opens the configured store and builds every service on top of it.
// Redis is optional: a failed connection is logged and the app runs without it.
func New(ctx context.Context, cfg *config.Config, loc *time.Location) (*App, error) {
	if loc == nil {
		loc = time.Local
	}

	stores, closeStores, err := repository.Open(ctx, cfg, loc)
	if err != nil {
		return nil, err
	}
	a := &App{Config: cfg, Location: loc, Stores: stores, closers: []func(){closeStores}}
	logger.Info("Store opened", "driver", cfg.Store.Driver)

	var searchCache fooddata.SearchCache
	if cfg.Redis.Enabled {
		client, err := database.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			logger.Warn("Redis unavailable, continuing without it", "error", err)
		} else {
			a.Redis = client
			searchCache = fooddata.NewRedisSearchCache(client, cfg.Redis.SearchCacheTTL)
			a.closers = append(a.closers, func() {
				if err := client.Close(); err != nil {
					logger.Error("Failed to close Redis client", "error", err)
				}
			})
		}
	}

	if cfg.MockMode() {
		logger.Warn("FDC_API_KEY is not set, food lookups return mock data")
	}
	client := fooddata.NewClient(cfg.FDC.BaseURL, cfg.FDC.APIKey, cfg.FDC.Timeout)
	a.Foods = fooddata.NewService(client, stores.CachedFoods, searchCache)

	a.Streaks = services.NewStreakService(stores.Streaks, loc)
	a.Meals = services.NewMealService(stores.Meals)
	a.Diary = services.NewDiaryService(stores.Diary, a.Meals, a.Streaks, services.OrphanPolicy(cfg.Diary.OrphanPolicy), loc)
	a.Metrics = services.NewMetricsService(stores.Metrics, a.Streaks, loc)
	a.Users = services.NewUserService(stores.Users, loc)
	a.Setup = services.NewSetupService(stores.Users, stores.Streaks, stores.Diary, stores.Legacy,
		a.Meals, a.Foods, cfg.Populate.Delay, cfg.Populate.Limit, loc)
	a.FoodLog = services.NewFoodLogService(a.Foods, a.Meals, a.Diary)

	logger.Info("Services initialized")
	return a, nil
}

// Close releases connections in reverse order of opening
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
