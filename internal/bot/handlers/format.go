package handlers

import (
	"fmt"
	"strings"
	"time"

	"github.com/vladimiradmaev/nutrition-diary/internal/domain"
	"github.com/vladimiradmaev/nutrition-diary/internal/fooddata"
	"github.com/vladimiradmaev/nutrition-diary/internal/services"
)

var categoryTitles = map[string]string{
	domain.CategoryBreakfast:     "🍳 Breakfast",
	domain.CategoryLunch:         "🥪 Lunch",
	domain.CategoryDinner:        "🍝 Dinner",
	domain.CategorySnack:         "🍎 Snack",
	domain.CategoryUncategorized: "📦 Other",
}

// FormatDiary renders a day's grouped entries followed by the totals. Empty
// categories are left out.
func FormatDiary(day time.Time, groups map[string][]domain.ResolvedEntry, totals domain.Nutrients, calorieGoal int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📒 Diary for %s\n", day.Format("Mon, 02 Jan 2006"))

	empty := true
	for _, c := range domain.Categories {
		entries := groups[c]
		if len(entries) == 0 {
			continue
		}
		empty = false
		fmt.Fprintf(&b, "\n%s\n", categoryTitles[c])
		for _, e := range entries {
			fmt.Fprintf(&b, "• %s, %g %s: %g kcal\n", e.Name, e.Amount, e.ServingUnit, e.Nutrients.Calories)
		}
	}
	if empty {
		b.WriteString("\nNothing logged yet.\n")
		return b.String()
	}

	b.WriteString("\nTotals\n")
	b.WriteString(FormatNutrients(totals))
	if calorieGoal > 0 {
		left := float64(calorieGoal) - totals.Calories
		if left >= 0 {
			fmt.Fprintf(&b, "\n🎯 %s kcal left of %d", formatNumber(left), calorieGoal)
		} else {
			fmt.Fprintf(&b, "\n🎯 %s kcal over your %d goal", formatNumber(-left), calorieGoal)
		}
	}
	return b.String()
}

// FormatNutrients renders a nutrient bundle, one line for energy and macros
// and one for the rest
func FormatNutrients(n domain.Nutrients) string {
	return fmt.Sprintf("%s kcal · P %sg · C %sg · F %sg\nfiber %sg · sugar %sg · sodium %smg · cholesterol %smg",
		formatNumber(n.Calories), formatNumber(n.Protein), formatNumber(n.Carbs), formatNumber(n.Fat),
		formatNumber(n.Fiber), formatNumber(n.Sugar), formatNumber(n.Sodium), formatNumber(n.Cholesterol))
}

func FormatSearchResults(query string, foods []fooddata.FoodSummary) string {
	if len(foods) == 0 {
		return fmt.Sprintf("No foods found for %q.", query)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Results for %q:\n\n", query)
	for i, f := range foods {
		fmt.Fprintf(&b, "%d. %s", i+1, f.Description)
		if f.BrandOwner != "" {
			fmt.Fprintf(&b, " (%s)", f.BrandOwner)
		}
		b.WriteString("\n")
	}
	b.WriteString("\nReply \"<number> <amount> [category]\", e.g. \"1 150 lunch\".")
	return b.String()
}

// FormatMetrics renders metrics newest first; undated ones show a dash
func FormatMetrics(metrics []domain.UserMetric, loc *time.Location) string {
	if len(metrics) == 0 {
		return "No metrics recorded yet."
	}
	var b strings.Builder
	b.WriteString("📈 Recent metrics\n\n")
	for _, m := range metrics {
		date := "—"
		if m.Date != nil {
			date = m.Date.In(loc).Format("02 Jan 15:04")
		}
		fmt.Fprintf(&b, "%s  %s\n", date, describeMetric(m))
	}
	return strings.TrimRight(b.String(), "\n")
}

func describeMetric(m domain.UserMetric) string {
	switch m.Type {
	case domain.MetricWeight:
		unit := m.Details.Unit
		if unit == "" {
			unit = services.DefaultWeightUnit
		}
		return fmt.Sprintf("⚖️ %s %s", formatNumber(m.Value), unit)
	case domain.MetricSleep:
		h, mins := int(m.Value)/60, int(m.Value)%60
		return fmt.Sprintf("😴 %dh %02dm, quality %d/10", h, mins, m.Details.Quality)
	case domain.MetricExercise:
		s := fmt.Sprintf("🏃 %s %s min", m.Details.Category, formatNumber(m.Value))
		if m.Details.Intensity != "" {
			s += ", " + m.Details.Intensity
		}
		if m.Details.Calories > 0 {
			s += fmt.Sprintf(", %s kcal", formatNumber(m.Details.Calories))
		}
		return s
	}
	return fmt.Sprintf("%s %s", m.Type, formatNumber(m.Value))
}

func FormatStreak(streak *domain.UserStreak, loc *time.Location) string {
	if streak == nil || streak.LastActive == nil {
		return "🔥 No streak yet. Log a meal or a metric to start one."
	}
	return fmt.Sprintf("🔥 Current streak: %d day(s)\n🏆 Longest streak: %d day(s)\n📅 Last active: %s",
		streak.CurrentStreak, streak.LongestStreak, streak.LastActive.In(loc).Format("Mon, 02 Jan 2006"))
}

// streakNote is appended to write confirmations when the streak update failed
func streakNote(res domain.WriteResult) string {
	if res.StreakUpdated {
		return ""
	}
	return "\n(streak could not be updated this time)"
}

func formatNumber(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.1f", v), "0"), ".")
}
