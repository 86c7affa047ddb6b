package fooddata

import (
	"context"
	"errors"
	"time"

	"github.com/tidwall/gjson"
	"github.com/vladimiradmaev/nutrition-diary/internal/domain"
	"github.com/vladimiradmaev/nutrition-diary/internal/logger"
	"github.com/vladimiradmaev/nutrition-diary/internal/nutrients"
)

// DefaultPageSize is used when callers pass a non-positive page size
const DefaultPageSize = 10

// Nutrients extracts the canonical nutrient bundle from the raw payload
func (f *Food) Nutrients() nutrients.Bundle {
	return nutrients.Extract(f.Raw)
}

// Service is the read-through lookup over the FDC API. Lookups never fail: any
// upstream problem degrades to the fixed mock payloads.
type Service struct {
	api         API
	cache       domain.CachedFoodRepository
	searchCache SearchCache
	now         func() time.Time
}

// NewService creates a lookup service; searchCache may be nil
func NewService(api API, cache domain.CachedFoodRepository, searchCache SearchCache) *Service {
	return &Service{
		api:         api,
		cache:       cache,
		searchCache: searchCache,
		now:         time.Now,
	}
}

// Search returns candidate foods for query
func (s *Service) Search(ctx context.Context, query string, pageSize int) []FoodSummary {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	if s.searchCache != nil {
		foods, ok, err := s.searchCache.GetSearch(ctx, query, pageSize)
		if err != nil {
			logger.Warn("Search cache read failed", "query", query, "error", err)
		} else if ok {
			return foods
		}
	}

	foods, err := s.api.SearchFoods(ctx, query, pageSize)
	if err != nil {
		logFallback("search", query, err)
		return MockSearchResults()
	}

	if s.searchCache != nil {
		if err := s.searchCache.SetSearch(ctx, query, pageSize, foods); err != nil {
			logger.Warn("Search cache write failed", "query", query, "error", err)
		}
	}
	return foods
}

// GetDetails returns the detail record for fdcID, consulting the cachedFoods
// collection first and populating it on a miss.
func (s *Service) GetDetails(ctx context.Context, fdcID string) *Food {
	cached, err := s.cache.FindCachedFood(ctx, fdcID)
	switch {
	case err == nil && gjson.ValidBytes(cached.Payload):
		return ParseFood(cached.Payload)
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		logger.Warn("Cached food read failed", "fdc_id", fdcID, "error", err)
	}

	food, err := s.api.GetFood(ctx, fdcID)
	if err != nil {
		logFallback("details", fdcID, err)
		return MockFood()
	}

	row := &domain.CachedFood{
		FoodID:      fdcID,
		Description: food.Description,
		Payload:     food.Raw,
		CachedAt:    s.now(),
	}
	if err := s.cache.CreateCachedFood(ctx, row); err != nil {
		logger.Warn("Failed to cache food details", "fdc_id", fdcID, "error", err)
	}
	return food
}

func logFallback(op, subject string, err error) {
	if errors.Is(err, ErrMissingAPIKey) {
		logger.Debug("FDC API key missing, serving mock data", "operation", op, "subject", subject)
		return
	}
	logger.Warn("FDC lookup failed, serving mock data", "operation", op, "subject", subject, "error", err)
}
