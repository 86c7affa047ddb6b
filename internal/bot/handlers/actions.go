package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/vladimiradmaev/nutrition-diary/internal/bot/keyboards"
	"github.com/vladimiradmaev/nutrition-diary/internal/bot/menus"
	"github.com/vladimiradmaev/nutrition-diary/internal/bot/state"
	"github.com/vladimiradmaev/nutrition-diary/internal/domain"
	apperrors "github.com/vladimiradmaev/nutrition-diary/internal/errors"
	"github.com/vladimiradmaev/nutrition-diary/internal/logger"
	"github.com/vladimiradmaev/nutrition-diary/internal/services"
	"github.com/vladimiradmaev/nutrition-diary/internal/utils"
)

const (
	searchPageSize = 5
	pickedTempKey  = "picked"
)

// actions are the conversation flows shared by commands, text replies and buttons
type actions struct {
	api    menus.Sender
	deps   Dependencies
	states state.StateManager
	errs   *apperrors.Handler
}

func newActions(api menus.Sender, deps Dependencies, states state.StateManager) *actions {
	if deps.Location == nil {
		deps.Location = time.Local
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &actions{
		api:    api,
		deps:   deps,
		states: states,
		errs:   apperrors.NewHandler(logger.GetLogger()),
	}
}

func (a *actions) reply(chatID int64, text string, markup interface{}) error {
	return menus.SendText(a.api, chatID, text, markup)
}

// fail logs err and tells the user what went wrong in plain words
func (a *actions) fail(ctx context.Context, chatID int64, err error) error {
	a.errs.Handle(ctx, err)
	return a.reply(chatID, userMessage(err), keyboards.BackToMenu())
}

func userMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case apperrors.ErrorTypeValidation:
			return "⚠️ " + capitalize(appErr.Message) + "."
		case apperrors.ErrorTypeNotFound:
			return "🤷 " + capitalize(appErr.Message) + "."
		}
	}
	return "😕 Something went wrong. Please try again in a moment."
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func (a *actions) showMainMenu(s session) error {
	state.Reset(a.states, s.TelegramID)
	return menus.SendMainMenu(a.api, s.ChatID)
}

func (a *actions) promptSearch(s session) error {
	state.Reset(a.states, s.TelegramID)
	a.states.SetUserState(s.TelegramID, state.WaitingForSearch)
	return a.reply(s.ChatID, "🔍 What did you eat? Send a food name, e.g. \"banana\".", keyboards.BackToMenu())
}

func (a *actions) search(ctx context.Context, s session, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return a.promptSearch(s)
	}

	foods := a.deps.Foods.Search(ctx, query, searchPageSize)
	if len(foods) == 0 {
		a.states.SetUserState(s.TelegramID, state.WaitingForSearch)
		return a.reply(s.ChatID, FormatSearchResults(query, nil)+" Try another name.", keyboards.BackToMenu())
	}

	a.states.ClearTempData(s.TelegramID)
	state.SetCandidates(a.states, s.TelegramID, foods)
	a.states.SetUserState(s.TelegramID, state.WaitingForPick)
	return a.reply(s.ChatID, FormatSearchResults(query, foods), keyboards.SearchResults(foods))
}

// choose remembers a result picked with a button; the amount follows as text
func (a *actions) choose(s session, index int) error {
	foods := state.Candidates(a.states, s.TelegramID)
	if index < 1 || index > len(foods) {
		return a.reply(s.ChatID, "That search has expired. Use /search to look again.", keyboards.BackToMenu())
	}
	a.states.SetTempData(s.TelegramID, pickedTempKey, strconv.Itoa(index))
	a.states.SetUserState(s.TelegramID, state.WaitingForPick)
	text := fmt.Sprintf("How much %s? Reply \"<amount> [category]\", e.g. \"150 lunch\".", foods[index-1].Description)
	return a.reply(s.ChatID, text, keyboards.BackToMenu())
}

func (a *actions) pick(ctx context.Context, s session, text string) error {
	foods := state.Candidates(a.states, s.TelegramID)
	if len(foods) == 0 {
		state.Reset(a.states, s.TelegramID)
		return a.reply(s.ChatID, "That search has expired. Use /search to look again.", keyboards.BackToMenu())
	}

	args, err := ParsePick(text, len(foods))
	if err != nil {
		picked, ok := a.states.GetTempData(s.TelegramID, pickedTempKey)
		if !ok {
			return a.reply(s.ChatID, "⚠️ "+capitalize(err.Error())+".", nil)
		}
		amount, category, replyErr := ParseAmountReply(text)
		if replyErr != nil {
			return a.reply(s.ChatID, "⚠️ "+capitalize(replyErr.Error())+".", nil)
		}
		index, _ := strconv.Atoi(picked)
		if index < 1 || index > len(foods) {
			state.Reset(a.states, s.TelegramID)
			return a.reply(s.ChatID, "That search has expired. Use /search to look again.", keyboards.BackToMenu())
		}
		args = PickArgs{Index: index, Amount: amount, Category: category}
	}

	meal, res, err := a.deps.Foods.LogFood(ctx, s.userID(), foods[args.Index-1], args.Amount, args.Category)
	if err != nil {
		return a.fail(ctx, s.ChatID, err)
	}
	state.Reset(a.states, s.TelegramID)
	return a.reply(s.ChatID, loggedText(meal, args.Amount, args.Category)+streakNote(res), keyboards.MainMenu())
}

func (a *actions) logMeal(ctx context.Context, s session, rawArgs string) error {
	args, err := ParseLogArgs(rawArgs)
	if err != nil {
		return a.reply(s.ChatID, "⚠️ "+capitalize(err.Error()), nil)
	}

	meal, err := a.deps.Meals.FindByName(ctx, args.Meal)
	if err != nil {
		return a.fail(ctx, s.ChatID, err)
	}
	mealID := args.Meal
	if meal != nil {
		mealID = meal.ID
	}

	res, err := a.deps.Diary.AddEntry(ctx, s.userID(), mealID, args.Amount, args.Category)
	if err != nil {
		return a.fail(ctx, s.ChatID, err)
	}
	if meal == nil {
		return a.reply(s.ChatID, fmt.Sprintf("✅ Logged %g of meal %s.", args.Amount, mealID)+streakNote(res), nil)
	}
	return a.reply(s.ChatID, loggedText(meal, args.Amount, args.Category)+streakNote(res), nil)
}

func loggedText(meal *domain.MealDefinition, amount float64, category string) string {
	scaled := meal.Nutrients.Scale(amount / meal.EffectiveBaseAmount())
	return fmt.Sprintf("✅ Logged %g %s of %s as %s (%s kcal).",
		amount, meal.ServingUnit, meal.Name, domain.NormalizeCategory(category), formatNumber(scaled.Calories))
}

func (a *actions) diary(ctx context.Context, s session, rawDay string) error {
	day, err := ParseDay(rawDay, a.deps.Now(), a.deps.Location)
	if err != nil {
		return a.reply(s.ChatID, "⚠️ "+capitalize(err.Error())+".", nil)
	}

	groups, err := a.deps.Diary.GroupByCategory(ctx, s.userID(), day)
	if err != nil {
		return a.fail(ctx, s.ChatID, err)
	}
	totals, err := a.deps.Diary.DailyTotals(ctx, s.userID(), day)
	if err != nil {
		return a.fail(ctx, s.ChatID, err)
	}

	var entries []domain.ResolvedEntry
	for _, c := range domain.Categories {
		entries = append(entries, groups[c]...)
	}
	return a.reply(s.ChatID, FormatDiary(day, groups, totals, s.User.DailyCalorieGoal), keyboards.DiaryEntries(entries))
}

func (a *actions) deleteEntry(ctx context.Context, s session, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return a.reply(s.ChatID, "⚠️ Usage: /delete <entry id>", nil)
	}

	entry, err := a.deps.Diary.GetEntry(ctx, id)
	if err != nil {
		return a.fail(ctx, s.ChatID, err)
	}
	if entry == nil || entry.UserID != s.userID() {
		return a.fail(ctx, s.ChatID, apperrors.NewNotFoundError("entry", id))
	}
	if err := a.deps.Diary.DeleteEntry(ctx, id); err != nil {
		return a.fail(ctx, s.ChatID, err)
	}
	return a.reply(s.ChatID, "🗑️ Entry deleted.", keyboards.MainMenu())
}

func (a *actions) promptWeight(s session) error {
	state.Reset(a.states, s.TelegramID)
	a.states.SetUserState(s.TelegramID, state.WaitingForWeight)
	return a.reply(s.ChatID, "⚖️ Send your weight, e.g. \"72.5\" or \"160 lb\".", keyboards.BackToMenu())
}

func (a *actions) weight(ctx context.Context, s session, rawArgs string) error {
	value, unit, err := ParseWeightArgs(rawArgs)
	if err != nil {
		return a.reply(s.ChatID, "⚠️ "+capitalize(err.Error())+".", nil)
	}
	if unit == "" {
		unit = s.User.WeightUnit
	}

	res, err := a.deps.Metrics.TrackWeight(ctx, s.userID(), value, unit)
	if err != nil {
		return a.fail(ctx, s.ChatID, err)
	}
	state.Reset(a.states, s.TelegramID)
	if unit == "" {
		unit = services.DefaultWeightUnit
	}
	return a.reply(s.ChatID, fmt.Sprintf("✅ Weight %s %s saved.", formatNumber(value), unit)+streakNote(res), keyboards.MainMenu())
}

func (a *actions) promptSleep(s session) error {
	state.Reset(a.states, s.TelegramID)
	a.states.SetUserState(s.TelegramID, state.WaitingForSleep)
	return a.reply(s.ChatID, "😴 When did you go to bed and wake up? e.g. \"23:30 07:15 8\" (quality 1-10 is optional).", keyboards.BackToMenu())
}

func (a *actions) sleep(ctx context.Context, s session, rawArgs string) error {
	args, err := ParseSleepArgs(rawArgs)
	if err != nil {
		return a.reply(s.ChatID, "⚠️ "+capitalize(err.Error())+".", nil)
	}

	bed, wake, err := SleepWindow(args.Bedtime, args.Wakeup, a.deps.Now(), a.deps.Location)
	if err != nil {
		return a.reply(s.ChatID, "⚠️ "+capitalize(err.Error())+".", nil)
	}

	const layout = "2006-01-02T15:04"
	res, err := a.deps.Metrics.TrackSleep(ctx, s.userID(), bed.Format(layout), wake.Format(layout), args.Quality)
	if err != nil {
		return a.fail(ctx, s.ChatID, err)
	}
	state.Reset(a.states, s.TelegramID)

	minutes := int(wake.Sub(bed).Minutes())
	return a.reply(s.ChatID, fmt.Sprintf("✅ Sleep saved: %dh %02dm.", minutes/60, minutes%60)+streakNote(res), keyboards.MainMenu())
}

// SleepWindow places "HH:MM" bed and wake clocks on the most recent night
// before now. Times later than now are moved to the previous day.
func SleepWindow(bedClock, wakeClock string, now time.Time, loc *time.Location) (time.Time, time.Time, error) {
	wake, err := utils.ClockToday(wakeClock, now, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if wake.After(now) {
		wake = wake.AddDate(0, 0, -1)
	}
	bed, err := utils.ClockToday(bedClock, wake, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if !bed.Before(wake) {
		bed = bed.AddDate(0, 0, -1)
	}
	return bed, wake, nil
}

func (a *actions) exercise(ctx context.Context, s session, rawArgs string) error {
	args, err := ParseExerciseArgs(rawArgs)
	if err != nil {
		return a.reply(s.ChatID, "⚠️ "+capitalize(err.Error())+".", nil)
	}

	res, err := a.deps.Metrics.TrackExercise(ctx, s.userID(), args.Category, args.Minutes, args.Intensity, args.Calories)
	if err != nil {
		return a.fail(ctx, s.ChatID, err)
	}
	return a.reply(s.ChatID, fmt.Sprintf("✅ %s for %s min saved.", capitalize(args.Category), formatNumber(args.Minutes))+streakNote(res), nil)
}

func (a *actions) metrics(ctx context.Context, s session, rawArgs string) error {
	metricType, err := ParseMetricType(rawArgs)
	if err != nil {
		return a.reply(s.ChatID, "⚠️ "+capitalize(err.Error())+".", nil)
	}

	metrics, err := a.deps.Metrics.ListMetrics(ctx, s.userID(), metricType)
	if err != nil {
		return a.fail(ctx, s.ChatID, err)
	}
	const maxShown = 15
	if len(metrics) > maxShown {
		metrics = metrics[:maxShown]
	}
	return a.reply(s.ChatID, FormatMetrics(metrics, a.deps.Location), nil)
}

func (a *actions) streak(ctx context.Context, s session) error {
	streak, err := a.deps.Streaks.Get(ctx, s.userID())
	if err != nil {
		return a.fail(ctx, s.ChatID, err)
	}
	return a.reply(s.ChatID, FormatStreak(streak, a.deps.Location), keyboards.BackToMenu())
}

func (a *actions) setup(ctx context.Context, s session) error {
	res := a.deps.Setup.SetupDatabase(ctx, s.userID())
	text := fmt.Sprintf("✅ Setup complete. %d example meal(s) added.", res.MealsCreated)
	if !res.Success {
		text = fmt.Sprintf("⚠️ Setup finished with problems. %d example meal(s) added.\n%s",
			res.MealsCreated, strings.Join(res.Errors, "\n"))
	}
	return a.reply(s.ChatID, text, keyboards.MainMenu())
}

func (a *actions) migrate(ctx context.Context, s session) error {
	res := a.deps.Setup.MigrateDatabase(ctx, s.userID())
	text := fmt.Sprintf("✅ Migration complete. %d meal(s) converted into %d diary entries, %d already done.",
		res.MealsMigrated, res.EntriesCreated, res.Skipped)
	if !res.Success {
		text = fmt.Sprintf("⚠️ Migration finished with problems. %d meal(s) converted, %d already done.\n%s",
			res.MealsMigrated, res.Skipped, strings.Join(res.Errors, "\n"))
	}
	return a.reply(s.ChatID, text, nil)
}
