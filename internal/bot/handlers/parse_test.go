package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vladimiradmaev/nutrition-diary/internal/domain"
	"github.com/vladimiradmaev/nutrition-diary/internal/fooddata"
)

func TestParsePick(t *testing.T) {
	args, err := ParsePick("2 150,5 Lunch", 3)
	require.NoError(t, err)
	assert.Equal(t, PickArgs{Index: 2, Amount: 150.5, Category: "Lunch"}, args)

	for _, text := range []string{"", "1", "4 100", "0 100", "x 100", "1 -5", "1 NaN", "1 Inf", "1 100 lunch extra"} {
		_, err := ParsePick(text, 3)
		assert.Error(t, err, text)
	}
}

func TestParseLogArgs(t *testing.T) {
	args, err := ParseLogArgs("Grilled Chicken Breast 200 DINNER")
	require.NoError(t, err)
	assert.Equal(t, LogArgs{Meal: "Grilled Chicken Breast", Amount: 200, Category: "dinner"}, args)

	args, err = ParseLogArgs("abc123 50")
	require.NoError(t, err)
	assert.Equal(t, LogArgs{Meal: "abc123", Amount: 50}, args)

	_, err = ParseLogArgs("Banana lunch")
	assert.ErrorContains(t, err, "usage")
	_, err = ParseLogArgs("Banana lots")
	assert.ErrorContains(t, err, "positive number")

	for _, amount := range []string{"NaN", "+Inf", "inf", "1e400"} {
		_, err = ParseLogArgs("Banana " + amount)
		assert.ErrorContains(t, err, "positive number", amount)
	}
}

func TestParseWeightArgs(t *testing.T) {
	value, unit, err := ParseWeightArgs("160 LB")
	require.NoError(t, err)
	assert.Equal(t, 160.0, value)
	assert.Equal(t, "lb", unit)

	value, unit, err = ParseWeightArgs("72,4")
	require.NoError(t, err)
	assert.Equal(t, 72.4, value)
	assert.Empty(t, unit)

	_, _, err = ParseWeightArgs("-3")
	assert.Error(t, err)
	_, _, err = ParseWeightArgs("NaN kg")
	assert.Error(t, err)
	_, _, err = ParseWeightArgs("Inf")
	assert.Error(t, err)
	_, _, err = ParseWeightArgs("")
	assert.Error(t, err)
}

func TestParseSleepArgs(t *testing.T) {
	args, err := ParseSleepArgs("23:15 06:45")
	require.NoError(t, err)
	assert.Equal(t, SleepArgs{Bedtime: "23:15", Wakeup: "06:45", Quality: DefaultSleepQuality}, args)

	args, err = ParseSleepArgs("22:00 06:00 9")
	require.NoError(t, err)
	assert.Equal(t, 9, args.Quality)

	_, err = ParseSleepArgs("late 06:00")
	assert.ErrorContains(t, err, `"late" is not a HH:MM time`)
	_, err = ParseSleepArgs("22:00 06:00 good")
	assert.Error(t, err)
}

func TestParseExerciseArgs(t *testing.T) {
	args, err := ParseExerciseArgs("Cycling 45 moderate 400")
	require.NoError(t, err)
	assert.Equal(t, ExerciseArgs{Category: "cycling", Minutes: 45, Intensity: "moderate", Calories: 400}, args)

	args, err = ParseExerciseArgs("yoga 30")
	require.NoError(t, err)
	assert.Empty(t, args.Intensity)
	assert.Zero(t, args.Calories)

	_, err = ParseExerciseArgs("run 0")
	assert.Error(t, err)
	_, err = ParseExerciseArgs("run 30 easy -10")
	assert.ErrorContains(t, err, "negative")
	_, err = ParseExerciseArgs("run 30 easy NaN")
	assert.ErrorContains(t, err, "calories must be a number")
	_, err = ParseExerciseArgs("run NaN")
	assert.ErrorContains(t, err, "minutes")
}

func TestParseDayAndMetricType(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	day, err := ParseDay("", now, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, now, day)

	day, err = ParseDay("2024-02-29", now, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), day)

	_, err = ParseDay("29.02.2024", now, time.UTC)
	assert.Error(t, err)

	metricType, err := ParseMetricType(" Sleep ")
	require.NoError(t, err)
	assert.Equal(t, domain.MetricSleep, metricType)
	metricType, err = ParseMetricType("")
	require.NoError(t, err)
	assert.Empty(t, metricType)
}

func TestSleepWindow(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	bed, wake, err := SleepWindow("23:30", "07:00", now, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 9, 23, 30, 0, 0, time.UTC), bed)
	assert.Equal(t, time.Date(2024, 3, 10, 7, 0, 0, 0, time.UTC), wake)

	// A wake time later than now belongs to yesterday
	bed, wake, err = SleepWindow("01:00", "10:00", now, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 9, 1, 0, 0, 0, time.UTC), bed)
	assert.Equal(t, time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC), wake)

	_, _, err = SleepWindow("25:00", "07:00", now, time.UTC)
	assert.Error(t, err)
}

func TestFormatDiary(t *testing.T) {
	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	groups := map[string][]domain.ResolvedEntry{
		domain.CategoryLunch: {{
			DiaryEntry:  domain.DiaryEntry{ID: "e1", Amount: 200},
			Name:        "Banana",
			ServingUnit: "g",
			Nutrients:   domain.Nutrients{Calories: 178},
		}},
	}

	text := FormatDiary(day, groups, domain.Nutrients{Calories: 2178.4}, 2000)
	assert.Contains(t, text, "Diary for Sun, 10 Mar 2024")
	assert.Contains(t, text, "🥪 Lunch\n• Banana, 200 g: 178 kcal")
	assert.NotContains(t, text, "Breakfast")
	assert.Contains(t, text, "178.4 kcal over your 2000 goal")

	assert.Contains(t, FormatDiary(day, nil, domain.Nutrients{}, 2000), "Nothing logged yet.")
}

func TestFormatSearchAndStreak(t *testing.T) {
	foods := []fooddata.FoodSummary{{FdcID: "1", Description: "Oats", BrandOwner: "Acme"}}
	assert.Contains(t, FormatSearchResults("oats", foods), "1. Oats (Acme)")
	assert.Equal(t, `No foods found for "kale".`, FormatSearchResults("kale", nil))

	last := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	text := FormatStreak(&domain.UserStreak{CurrentStreak: 3, LongestStreak: 7, LastActive: &last}, time.UTC)
	assert.Contains(t, text, "Current streak: 3 day(s)")
	assert.Contains(t, text, "Longest streak: 7 day(s)")
	assert.Contains(t, FormatStreak(&domain.UserStreak{CurrentStreak: 2}, time.UTC), "No streak yet")
}

func TestFormatNumberAndUserMessage(t *testing.T) {
	assert.Equal(t, "72", formatNumber(72))
	assert.Equal(t, "72.5", formatNumber(72.46))
	assert.Equal(t, "0", formatNumber(0.01))

	assert.Equal(t, "😕 Something went wrong. Please try again in a moment.", userMessage(assert.AnError))
}
