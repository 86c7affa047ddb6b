package fooddata

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vladimiradmaev/nutrition-diary/internal/repository/memory"
)

type fakeAPI struct {
	searchCalls int
	foodCalls   int
	searchErr   error
	foodErr     error
}

func (f *fakeAPI) SearchFoods(_ context.Context, query string, _ int) ([]FoodSummary, error) {
	f.searchCalls++
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return []FoodSummary{{FdcID: "42", Description: query}}, nil
}

func (f *fakeAPI) GetFood(_ context.Context, fdcID string) (*Food, error) {
	f.foodCalls++
	if f.foodErr != nil {
		return nil, f.foodErr
	}
	return ParseFood([]byte(`{"fdcId": ` + fdcID + `, "description": "Oats", "foodNutrients": [
		{"nutrient": {"id": 1008, "name": "Energy", "unitName": "kcal"}, "amount": 389}
	]}`)), nil
}

type mapSearchCache struct {
	data map[string][]FoodSummary
	sets int
}

func (m *mapSearchCache) GetSearch(_ context.Context, query string, pageSize int) ([]FoodSummary, bool, error) {
	foods, ok := m.data[searchKey(query, pageSize)]
	return foods, ok, nil
}

func (m *mapSearchCache) SetSearch(_ context.Context, query string, pageSize int, foods []FoodSummary) error {
	m.sets++
	m.data[searchKey(query, pageSize)] = foods
	return nil
}

func TestService_GetDetails_CachesOnMiss(t *testing.T) {
	api := &fakeAPI{}
	store := memory.New()
	svc := NewService(api, store, nil)
	ctx := context.Background()

	first := svc.GetDetails(ctx, "173904")
	require.NotNil(t, first)
	assert.Equal(t, "Oats", first.Description)
	assert.Equal(t, 1, store.CachedFoodCount("173904"))

	second := svc.GetDetails(ctx, "173904")
	assert.Equal(t, "Oats", second.Description)
	assert.Equal(t, 389.0, second.Nutrients().Calories)
	assert.Equal(t, 1, api.foodCalls, "second lookup should be served from the cache")
	assert.Equal(t, 1, store.CachedFoodCount("173904"))
}

func TestService_GetDetails_CacheWriteFailureIsSwallowed(t *testing.T) {
	api := &fakeAPI{}
	store := memory.New()
	store.Fail("CreateCachedFood", errors.New("disk full"))
	svc := NewService(api, store, nil)

	food := svc.GetDetails(context.Background(), "173904")
	require.NotNil(t, food)
	assert.Equal(t, "Oats", food.Description)
	assert.Equal(t, 0, store.CachedFoodCount("173904"))
}

func TestService_GetDetails_FallsBackToMock(t *testing.T) {
	for name, apiErr := range map[string]error{
		"missing key":     ErrMissingAPIKey,
		"upstream failed": errors.New("connection refused"),
	} {
		t.Run(name, func(t *testing.T) {
			store := memory.New()
			svc := NewService(&fakeAPI{foodErr: apiErr}, store, nil)

			food := svc.GetDetails(context.Background(), "999")
			require.NotNil(t, food)
			assert.Equal(t, "171688", food.FdcID)
			assert.Equal(t, 0, store.CachedFoodCount("999"), "mock data must not be cached")
			assert.Equal(t, 0, store.CachedFoodCount("171688"))
		})
	}
}

func TestService_GetDetails_CacheReadFailureGoesUpstream(t *testing.T) {
	api := &fakeAPI{}
	store := memory.New()
	store.Fail("FindCachedFood", errors.New("timeout"))
	svc := NewService(api, store, nil)

	food := svc.GetDetails(context.Background(), "173904")
	assert.Equal(t, "Oats", food.Description)
	assert.Equal(t, 1, api.foodCalls)
}

func TestService_Search(t *testing.T) {
	ctx := context.Background()

	t.Run("uses search cache", func(t *testing.T) {
		api := &fakeAPI{}
		cache := &mapSearchCache{data: map[string][]FoodSummary{}}
		svc := NewService(api, memory.New(), cache)

		first := svc.Search(ctx, "Oats", 0)
		second := svc.Search(ctx, " oats ", DefaultPageSize)
		assert.Equal(t, first, second)
		assert.Equal(t, 1, api.searchCalls)
		assert.Equal(t, 1, cache.sets)
	})

	t.Run("falls back to mock", func(t *testing.T) {
		cache := &mapSearchCache{data: map[string][]FoodSummary{}}
		svc := NewService(&fakeAPI{searchErr: ErrMissingAPIKey}, memory.New(), cache)

		foods := svc.Search(ctx, "anything", 5)
		assert.Equal(t, MockSearchResults(), foods)
		assert.Zero(t, cache.sets)
	})
}
