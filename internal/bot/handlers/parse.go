package handlers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/vladimiradmaev/nutrition-diary/internal/domain"
	"github.com/vladimiradmaev/nutrition-diary/internal/utils"
)

// PickArgs is a reply to a search result list: "<n> <amount> [category]"
type PickArgs struct {
	Index    int
	Amount   float64
	Category string
}

// ParsePick parses a candidate pick. Index is 1-based and checked against count.
func ParsePick(text string, count int) (PickArgs, error) {
	fields := strings.Fields(text)
	if len(fields) < 2 || len(fields) > 3 {
		return PickArgs{}, fmt.Errorf(`reply with "<number> <amount> [category]", for example "1 150 lunch"`)
	}

	n, err := strconv.Atoi(fields[0])
	if err != nil || n < 1 || n > count {
		return PickArgs{}, fmt.Errorf("pick a number between 1 and %d", count)
	}
	amount, err := parseAmount(fields[1])
	if err != nil {
		return PickArgs{}, err
	}

	args := PickArgs{Index: n, Amount: amount}
	if len(fields) == 3 {
		args.Category = fields[2]
	}
	return args, nil
}

// LogArgs is "/log <meal> <amount> [category]". Meal may span several words.
type LogArgs struct {
	Meal     string
	Amount   float64
	Category string
}

func ParseLogArgs(args string) (LogArgs, error) {
	fields := strings.Fields(args)
	usage := fmt.Errorf("usage: /log <meal> <amount> [category]")
	if len(fields) < 2 {
		return LogArgs{}, usage
	}

	var out LogArgs
	if isCategory(fields[len(fields)-1]) {
		out.Category = strings.ToLower(fields[len(fields)-1])
		fields = fields[:len(fields)-1]
	}
	if len(fields) < 2 {
		return LogArgs{}, usage
	}

	amount, err := parseAmount(fields[len(fields)-1])
	if err != nil {
		return LogArgs{}, err
	}
	out.Amount = amount
	out.Meal = strings.Join(fields[:len(fields)-1], " ")
	return out, nil
}

// ParseWeightArgs parses "<value> [unit]"
func ParseWeightArgs(args string) (float64, string, error) {
	fields := strings.Fields(args)
	if len(fields) == 0 || len(fields) > 2 {
		return 0, "", fmt.Errorf("usage: /weight <value> [kg|lb]")
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(fields[0], ",", "."), 64)
	if err != nil || !utils.IsPositive(value) {
		return 0, "", fmt.Errorf("weight must be a positive number")
	}
	unit := ""
	if len(fields) == 2 {
		unit = strings.ToLower(fields[1])
	}
	return value, unit, nil
}

// SleepArgs is "<bedtime HH:MM> <wakeup HH:MM> [quality]"
type SleepArgs struct {
	Bedtime string
	Wakeup  string
	Quality int
}

// DefaultSleepQuality is used when the quality is omitted
const DefaultSleepQuality = 5

func ParseSleepArgs(args string) (SleepArgs, error) {
	fields := strings.Fields(args)
	if len(fields) < 2 || len(fields) > 3 {
		return SleepArgs{}, fmt.Errorf("usage: /sleep <HH:MM> <HH:MM> [quality 1-10]")
	}
	for _, clock := range fields[:2] {
		if _, err := time.Parse("15:04", clock); err != nil {
			return SleepArgs{}, fmt.Errorf("%q is not a HH:MM time", clock)
		}
	}

	out := SleepArgs{Bedtime: fields[0], Wakeup: fields[1], Quality: DefaultSleepQuality}
	if len(fields) == 3 {
		q, err := strconv.Atoi(fields[2])
		if err != nil {
			return SleepArgs{}, fmt.Errorf("quality must be a whole number from 1 to 10")
		}
		out.Quality = q
	}
	return out, nil
}

// ExerciseArgs is "<category> <minutes> [intensity] [calories]"
type ExerciseArgs struct {
	Category  string
	Minutes   float64
	Intensity string
	Calories  float64
}

func ParseExerciseArgs(args string) (ExerciseArgs, error) {
	fields := strings.Fields(args)
	if len(fields) < 2 || len(fields) > 4 {
		return ExerciseArgs{}, fmt.Errorf("usage: /exercise <category> <minutes> [intensity] [calories]")
	}

	minutes, err := parseAmount(fields[1])
	if err != nil {
		return ExerciseArgs{}, fmt.Errorf("minutes must be a positive number")
	}
	out := ExerciseArgs{Category: strings.ToLower(fields[0]), Minutes: minutes}

	for _, f := range fields[2:] {
		if v, err := strconv.ParseFloat(f, 64); err == nil {
			if v < 0 {
				return ExerciseArgs{}, fmt.Errorf("calories must not be negative")
			}
			if !utils.IsFinite(v) {
				return ExerciseArgs{}, fmt.Errorf("calories must be a number")
			}
			out.Calories = v
			continue
		}
		out.Intensity = strings.ToLower(f)
	}
	return out, nil
}

// ParseDay parses an optional YYYY-MM-DD argument; empty means today
func ParseDay(args string, now time.Time, loc *time.Location) (time.Time, error) {
	args = strings.TrimSpace(args)
	if args == "" {
		return now.In(loc), nil
	}
	day, err := time.ParseInLocation("2006-01-02", args, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("dates look like 2024-03-10")
	}
	return day, nil
}

// ParseMetricType parses an optional metric type filter
func ParseMetricType(args string) (domain.MetricType, error) {
	t := domain.MetricType(strings.ToLower(strings.TrimSpace(args)))
	if t == "" || t.Valid() {
		return t, nil
	}
	return "", fmt.Errorf("metric type must be weight, sleep or exercise")
}

func parseAmount(s string) (float64, error) {
	amount, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil || !utils.IsPositive(amount) {
		return 0, fmt.Errorf("amount must be a positive number")
	}
	return amount, nil
}

func isCategory(s string) bool {
	c := strings.ToLower(s)
	for _, known := range domain.Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseAmountReply parses "<amount> [category]", the reply after a result
// button was pressed
func ParseAmountReply(text string) (float64, string, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 || len(fields) > 2 {
		return 0, "", fmt.Errorf(`reply with "<amount> [category]", for example "150 lunch"`)
	}
	amount, err := parseAmount(fields[0])
	if err != nil {
		return 0, "", err
	}
	category := ""
	if len(fields) == 2 {
		category = fields[1]
	}
	return amount, category, nil
}
