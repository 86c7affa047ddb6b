package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vladimiradmaev/nutrition-diary/internal/config"
	"github.com/vladimiradmaev/nutrition-diary/internal/domain"
)

func TestOpenMemory(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{Driver: config.DriverMemory}}

	stores, closeFn, err := Open(context.Background(), cfg, time.UTC)
	require.NoError(t, err)
	defer closeFn()

	ctx := context.Background()
	id, err := stores.Meals.CreateMeal(ctx, &domain.MealDefinition{Name: "Apple", BaseAmount: 100})
	require.NoError(t, err)

	meal, err := stores.Meals.GetMeal(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Apple", meal.Name)

	_, err = stores.Streaks.GetStreak(ctx, "u1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOpenUnknownDriver(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{Driver: "sqlite"}}

	_, _, err := Open(context.Background(), cfg, time.UTC)
	assert.ErrorContains(t, err, "sqlite")
}
