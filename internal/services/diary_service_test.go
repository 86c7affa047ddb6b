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

func createMeal(t *testing.T, env *testEnv, input domain.MealInput) string {
	t.Helper()
	id, err := env.meals.Create(context.Background(), input, "u1")
	require.NoError(t, err)
	return id
}

func bananaInput() domain.MealInput {
	return domain.MealInput{
		Name:      "Banana",
		Nutrients: domain.Nutrients{Calories: 89, Protein: 1.1, Carbs: 22.8, Fat: 0.3, Sodium: 1},
	}
}

func TestDiaryService_AddEntry_Multiplier(t *testing.T) {
	env := newTestEnv(t, OrphanSkip)
	ctx := context.Background()

	for _, tc := range []struct {
		base, amount float64
	}{
		{100, 200}, {100, 33}, {250, 75}, {30, 45.5},
	} {
		in := bananaInput()
		in.BaseAmount = tc.base
		mealID := createMeal(t, env, in)

		res, err := env.diary.AddEntry(ctx, "u1", mealID, tc.amount, "lunch")
		require.NoError(t, err)
		require.NotEmpty(t, res.ID)

		entry, err := env.store.GetEntry(ctx, res.ID)
		require.NoError(t, err)
		assert.InDelta(t, tc.amount/tc.base, entry.Multiplier, 1e-12)
		assert.Equal(t, tc.base, entry.BaseAmount)
		assert.Equal(t, tc.amount, entry.Amount)
	}
}

func TestDiaryService_AddEntry_ScaledListing(t *testing.T) {
	env := newTestEnv(t, OrphanSkip)
	ctx := context.Background()
	mealID := createMeal(t, env, bananaInput())

	res, err := env.diary.AddEntry(ctx, "u1", mealID, 200, "Breakfast ")
	require.NoError(t, err)
	assert.True(t, res.StreakUpdated)

	day := env.clock.Now()
	entries, err := env.diary.ListEntries(ctx, "u1", &day)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, "Banana", e.Name)
	assert.Equal(t, "g", e.ServingUnit)
	assert.Equal(t, domain.CategoryBreakfast, e.Category)
	assert.Equal(t, 178.0, e.Nutrients.Calories)
	assert.Equal(t, 2.2, e.Nutrients.Protein)
	assert.Equal(t, 45.6, e.Nutrients.Carbs)
	assert.Equal(t, 2.0, e.Nutrients.Sodium)
	assert.False(t, e.Orphaned)
}

func TestDiaryService_AddEntry_CategoryNormalization(t *testing.T) {
	env := newTestEnv(t, OrphanSkip)
	ctx := context.Background()
	mealID := createMeal(t, env, bananaInput())

	for raw, want := range map[string]string{
		"Breakfast ": "breakfast",
		"BREAKFAST":  "breakfast",
		"":           "uncategorized",
		"  ":         "uncategorized",
		"weird":      "uncategorized",
		"Snack":      "snack",
	} {
		res, err := env.diary.AddEntry(ctx, "u1", mealID, 100, raw)
		require.NoError(t, err)
		entry, err := env.store.GetEntry(ctx, res.ID)
		require.NoError(t, err)
		assert.Equal(t, want, entry.Category, "input %q", raw)
	}
}

func TestDiaryService_AddEntry_Errors(t *testing.T) {
	env := newTestEnv(t, OrphanSkip)
	ctx := context.Background()
	mealID := createMeal(t, env, bananaInput())

	_, err := env.diary.AddEntry(ctx, "", mealID, 100, "lunch")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))

	_, err = env.diary.AddEntry(ctx, "u1", "", 100, "lunch")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))

	for _, amount := range []float64{0, -5, math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err = env.diary.AddEntry(ctx, "u1", mealID, amount, "lunch")
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation), amount)
	}

	_, err = env.diary.AddEntry(ctx, "u1", "missing", 100, "lunch")
	assert.True(t, apperrors.IsNotFound(err))

	env.store.Fail("CreateEntry", errors.New("unavailable"))
	_, err = env.diary.AddEntry(ctx, "u1", mealID, 100, "lunch")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeDatabase))
}

func TestDiaryService_AddEntry_StreakFailureKeepsEntry(t *testing.T) {
	env := newTestEnv(t, OrphanSkip)
	ctx := context.Background()
	mealID := createMeal(t, env, bananaInput())
	env.store.Fail("SaveStreak", errors.New("unavailable"))

	res, err := env.diary.AddEntry(ctx, "u1", mealID, 100, "lunch")
	require.NoError(t, err)
	assert.False(t, res.StreakUpdated)

	_, err = env.store.GetEntry(ctx, res.ID)
	assert.NoError(t, err)
}

func TestDiaryService_ListEntries_Orphans(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T, policy OrphanPolicy) *testEnv {
		env := newTestEnv(t, policy)
		keep := createMeal(t, env, bananaInput())
		gone := createMeal(t, env, domain.MealInput{Name: "Toast", Nutrients: domain.Nutrients{Calories: 265}})

		_, err := env.diary.AddEntry(ctx, "u1", keep, 100, "lunch")
		require.NoError(t, err)
		env.clock.Advance(time.Minute)
		_, err = env.diary.AddEntry(ctx, "u1", gone, 50, "breakfast")
		require.NoError(t, err)

		require.NoError(t, env.meals.Delete(ctx, gone))
		return env
	}

	t.Run("skip", func(t *testing.T) {
		env := setup(t, OrphanSkip)
		entries, err := env.diary.ListEntries(ctx, "u1", nil)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "Banana", entries[0].Name)
	})

	t.Run("tombstone", func(t *testing.T) {
		env := setup(t, OrphanTombstone)
		entries, err := env.diary.ListEntries(ctx, "u1", nil)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.True(t, entries[0].Orphaned)
		assert.Equal(t, TombstoneName, entries[0].Name)
		assert.Equal(t, domain.Nutrients{}, entries[0].Nutrients)
		assert.False(t, entries[1].Orphaned)
	})
}

func TestDiaryService_ListEntries_DayAndOrder(t *testing.T) {
	env := newTestEnv(t, OrphanSkip)
	ctx := context.Background()
	mealID := createMeal(t, env, bananaInput())

	env.clock.now = time.Date(2024, 3, 9, 23, 59, 0, 0, env.loc)
	_, err := env.diary.AddEntry(ctx, "u1", mealID, 100, "dinner")
	require.NoError(t, err)

	env.clock.now = time.Date(2024, 3, 10, 0, 0, 0, 0, env.loc)
	first, err := env.diary.AddEntry(ctx, "u1", mealID, 100, "breakfast")
	require.NoError(t, err)
	env.clock.now = time.Date(2024, 3, 10, 19, 0, 0, 0, env.loc)
	second, err := env.diary.AddEntry(ctx, "u1", mealID, 100, "dinner")
	require.NoError(t, err)

	_, err = env.diary.AddEntry(ctx, "u2", mealID, 100, "dinner")
	require.NoError(t, err)

	day := time.Date(2024, 3, 10, 8, 0, 0, 0, env.loc)
	entries, err := env.diary.ListEntries(ctx, "u1", &day)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, second.ID, entries[0].ID)
	assert.Equal(t, first.ID, entries[1].ID)

	all, err := env.diary.ListEntries(ctx, "u1", nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestDiaryService_UpdateEntry(t *testing.T) {
	env := newTestEnv(t, OrphanSkip)
	ctx := context.Background()
	mealID := createMeal(t, env, bananaInput())

	res, err := env.diary.AddEntry(ctx, "u1", mealID, 100, "lunch")
	require.NoError(t, err)

	// later edits to the definition do not change the frozen base
	require.NoError(t, env.meals.Update(ctx, mealID, domain.MealPatch{BaseAmount: ptr(50.0)}))

	_, err = env.diary.UpdateEntry(ctx, res.ID, domain.DiaryPatch{Amount: ptr(300.0), Category: ptr("DINNER")})
	require.NoError(t, err)

	entry, err := env.store.GetEntry(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, 300.0, entry.Amount)
	assert.InDelta(t, 3.0, entry.Multiplier, 1e-12)
	assert.Equal(t, domain.CategoryDinner, entry.Category)

	_, err = env.diary.UpdateEntry(ctx, "missing", domain.DiaryPatch{Amount: ptr(1.0)})
	assert.True(t, apperrors.IsNotFound(err))

	_, err = env.diary.UpdateEntry(ctx, res.ID, domain.DiaryPatch{Amount: ptr(-1.0)})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	_, err = env.diary.UpdateEntry(ctx, res.ID, domain.DiaryPatch{Amount: ptr(math.NaN())})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))

	entry, err = env.store.GetEntry(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, 300.0, entry.Amount)
}

func TestDiaryService_UpdateEntry_WithoutSnapshotUsesCurrentBase(t *testing.T) {
	env := newTestEnv(t, OrphanSkip)
	ctx := context.Background()
	in := bananaInput()
	in.BaseAmount = 40
	mealID := createMeal(t, env, in)

	id, err := env.store.CreateEntry(ctx, &domain.DiaryEntry{
		UserID: "u1", MealID: mealID, Date: env.clock.Now(), Category: "lunch", Amount: 40, Multiplier: 1,
	})
	require.NoError(t, err)

	_, err = env.diary.UpdateEntry(ctx, id, domain.DiaryPatch{Amount: ptr(100.0)})
	require.NoError(t, err)

	entry, err := env.store.GetEntry(ctx, id)
	require.NoError(t, err)
	assert.InDelta(t, 2.5, entry.Multiplier, 1e-12)
}

func TestDiaryService_DeleteEntryKeepsMeal(t *testing.T) {
	env := newTestEnv(t, OrphanSkip)
	ctx := context.Background()
	mealID := createMeal(t, env, bananaInput())

	res, err := env.diary.AddEntry(ctx, "u1", mealID, 100, "lunch")
	require.NoError(t, err)
	require.NoError(t, env.diary.DeleteEntry(ctx, res.ID))

	entries, err := env.diary.ListEntries(ctx, "u1", nil)
	require.NoError(t, err)
	assert.Empty(t, entries)

	meal, err := env.meals.Get(ctx, mealID)
	require.NoError(t, err)
	assert.NotNil(t, meal)
}

func TestDiaryService_GroupByCategoryAndTotals(t *testing.T) {
	env := newTestEnv(t, OrphanSkip)
	ctx := context.Background()
	banana := createMeal(t, env, bananaInput())
	oats := createMeal(t, env, domain.MealInput{Name: "Oats", Nutrients: domain.Nutrients{Calories: 389, Protein: 17}})

	_, err := env.diary.AddEntry(ctx, "u1", banana, 100, "breakfast")
	require.NoError(t, err)
	_, err = env.diary.AddEntry(ctx, "u1", oats, 50, "breakfast")
	require.NoError(t, err)
	_, err = env.diary.AddEntry(ctx, "u1", banana, 200, "whatever")
	require.NoError(t, err)

	groups, err := env.diary.GroupByCategory(ctx, "u1", env.clock.Now())
	require.NoError(t, err)
	assert.Len(t, groups, len(domain.Categories))
	assert.Len(t, groups[domain.CategoryBreakfast], 2)
	assert.Len(t, groups[domain.CategoryUncategorized], 1)
	assert.NotNil(t, groups[domain.CategoryLunch])
	assert.Empty(t, groups[domain.CategoryLunch])

	totals, err := env.diary.DailyTotals(ctx, "u1", env.clock.Now())
	require.NoError(t, err)
	assert.Equal(t, 462.0, totals.Calories)
	assert.InDelta(t, 11.8, totals.Protein, 1e-9)
}

func TestDiaryService_RenameEntryMeal(t *testing.T) {
	env := newTestEnv(t, OrphanSkip)
	ctx := context.Background()
	mealID := createMeal(t, env, bananaInput())

	a, err := env.diary.AddEntry(ctx, "u1", mealID, 100, "lunch")
	require.NoError(t, err)
	_, err = env.diary.AddEntry(ctx, "u1", mealID, 50, "snack")
	require.NoError(t, err)

	require.NoError(t, env.diary.RenameEntryMeal(ctx, a.ID, "Plantain", "u1"))

	entries, err := env.diary.ListEntries(ctx, "u1", nil)
	require.NoError(t, err)
	for _, e := range entries {
		assert.Equal(t, "Plantain", e.Name)
	}

	assert.True(t, apperrors.IsType(env.diary.RenameEntryMeal(ctx, a.ID, " ", "u1"), apperrors.ErrorTypeValidation))
	assert.True(t, apperrors.IsNotFound(env.diary.RenameEntryMeal(ctx, "missing", "x", "u1")))
}

func TestDiaryService_LogNewMeal(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		env := newTestEnv(t, OrphanSkip)
		mealID, res, err := env.diary.LogNewMeal(ctx, "u1", bananaInput(), 150, "snack")
		require.NoError(t, err)
		assert.NotEmpty(t, mealID)
		assert.True(t, res.StreakUpdated)

		entry, err := env.store.GetEntry(ctx, res.ID)
		require.NoError(t, err)
		assert.Equal(t, mealID, entry.MealID)
	})

	t.Run("non-finite amount creates nothing", func(t *testing.T) {
		env := newTestEnv(t, OrphanSkip)
		for _, amount := range []float64{math.NaN(), math.Inf(1)} {
			_, _, err := env.diary.LogNewMeal(ctx, "u1", bananaInput(), amount, "snack")
			assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation), amount)
		}

		meal, err := env.meals.FindByName(ctx, "Banana")
		require.NoError(t, err)
		assert.Nil(t, meal)
	})

	t.Run("entry failure removes meal", func(t *testing.T) {
		env := newTestEnv(t, OrphanSkip)
		env.store.Fail("CreateEntry", errors.New("unavailable"))

		_, _, err := env.diary.LogNewMeal(ctx, "u1", bananaInput(), 150, "snack")
		require.Error(t, err)

		meal, err := env.meals.FindByName(ctx, "Banana")
		require.NoError(t, err)
		assert.Nil(t, meal)
	})

	t.Run("compensation failure names the meal", func(t *testing.T) {
		env := newTestEnv(t, OrphanSkip)
		env.store.Fail("CreateEntry", errors.New("unavailable"))
		env.store.Fail("DeleteMeal", errors.New("unavailable"))

		_, _, err := env.diary.LogNewMeal(ctx, "u1", bananaInput(), 150, "snack")
		require.Error(t, err)

		meal, findErr := env.meals.FindByName(ctx, "Banana")
		require.NoError(t, findErr)
		require.NotNil(t, meal)
		assert.Contains(t, err.Error(), meal.ID)

		var appErr *apperrors.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, meal.ID, appErr.Context["orphaned_meal_id"])
	})
}
