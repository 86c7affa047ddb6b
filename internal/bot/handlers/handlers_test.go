package handlers

import (
	"context"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vladimiradmaev/nutrition-diary/internal/bot/state"
	"github.com/vladimiradmaev/nutrition-diary/internal/domain"
	"github.com/vladimiradmaev/nutrition-diary/internal/fooddata"
	"github.com/vladimiradmaev/nutrition-diary/internal/repository/memory"
	"github.com/vladimiradmaev/nutrition-diary/internal/services"
)

const testUser int64 = 42

type fakeSender struct {
	sent     []tgbotapi.Chattable
	requests int
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.requests++
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeSender) lastText(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, f.sent)
	msg, ok := f.sent[len(f.sent)-1].(tgbotapi.MessageConfig)
	require.True(t, ok)
	return msg.Text
}

func (f *fakeSender) lastMarkup(t *testing.T) tgbotapi.InlineKeyboardMarkup {
	t.Helper()
	msg, ok := f.sent[len(f.sent)-1].(tgbotapi.MessageConfig)
	require.True(t, ok)
	markup, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	return markup
}

type stubLookup struct{}

func (stubLookup) Search(context.Context, string, int) []fooddata.FoodSummary {
	return fooddata.MockSearchResults()
}

func (stubLookup) GetDetails(context.Context, string) *fooddata.Food {
	return fooddata.MockFood()
}

type botEnv struct {
	store   *memory.Store
	sender  *fakeSender
	states  *state.Manager
	handler *UpdateHandler
	meals   *services.MealService
	now     time.Time
}

func newBotEnv(t *testing.T) *botEnv {
	t.Helper()
	loc := time.UTC
	env := &botEnv{
		store:  memory.New(),
		sender: &fakeSender{},
		states: state.NewManager(),
		now:    time.Date(2024, 3, 10, 9, 0, 0, 0, loc),
	}
	clock := func() time.Time { return env.now }

	streaks := services.NewStreakService(env.store, loc)
	streaks.SetClock(clock)
	env.meals = services.NewMealService(env.store)
	env.meals.SetClock(clock)
	diary := services.NewDiaryService(env.store, env.meals, streaks, services.OrphanSkip, loc)
	diary.SetClock(clock)
	metrics := services.NewMetricsService(env.store, streaks, loc)
	metrics.SetClock(clock)
	users := services.NewUserService(env.store, loc)
	users.SetClock(clock)
	setup := services.NewSetupService(env.store, env.store, env.store, env.store, env.meals, stubLookup{}, 0, 10, loc)
	setup.SetClock(clock)

	deps := Dependencies{
		Users:    users,
		Diary:    diary,
		Meals:    env.meals,
		Foods:    services.NewFoodLogService(stubLookup{}, env.meals, diary),
		Metrics:  metrics,
		Streaks:  streaks,
		Setup:    setup,
		Location: loc,
		Now:      clock,
	}
	env.handler = NewUpdateHandler(env.sender, deps, env.states)
	return env
}

func (e *botEnv) send(t *testing.T, text string) string {
	t.Helper()
	msg := &tgbotapi.Message{
		From: &tgbotapi.User{ID: testUser, UserName: "jane", FirstName: "Jane"},
		Chat: &tgbotapi.Chat{ID: testUser},
		Text: text,
	}
	if len(text) > 0 && text[0] == '/' {
		length := len(text)
		for i, r := range text {
			if r == ' ' {
				length = i
				break
			}
		}
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: length}}
	}
	require.NoError(t, e.handler.Handle(context.Background(), tgbotapi.Update{Message: msg}))
	return e.sender.lastText(t)
}

func (e *botEnv) press(t *testing.T, data string) string {
	t.Helper()
	query := &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: testUser},
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: testUser}},
		Data:    data,
	}
	require.NoError(t, e.handler.Handle(context.Background(), tgbotapi.Update{CallbackQuery: query}))
	return e.sender.lastText(t)
}

func TestStartRegistersUser(t *testing.T) {
	env := newBotEnv(t)

	text := env.send(t, "/start")
	assert.Contains(t, text, "Nutrition Diary")

	user, err := env.store.GetUser(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, "jane", user.Username)
	assert.Equal(t, "Jane", user.DisplayName)
}

func TestSearchAndPickLogsFood(t *testing.T) {
	env := newBotEnv(t)

	text := env.send(t, "/search apple")
	assert.Contains(t, text, "1. Apples, raw, with skin")
	assert.Equal(t, state.WaitingForPick, env.states.GetUserState(testUser))

	text = env.send(t, "1 200 snack")
	assert.Contains(t, text, "Logged 200 g of Apples, raw, with skin as snack (104 kcal)")
	assert.Equal(t, state.None, env.states.GetUserState(testUser))

	text = env.send(t, "/diary")
	assert.Contains(t, text, "🍎 Snack")
	assert.Contains(t, text, "Apples, raw, with skin, 200 g: 104 kcal")
	assert.Contains(t, text, "1896 kcal left of 2000")

	streak, err := env.store.GetStreak(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, 1, streak.CurrentStreak)
}

func TestPickWithButtonThenAmount(t *testing.T) {
	env := newBotEnv(t)
	env.send(t, "/search banana")

	text := env.press(t, "pick:2")
	assert.Contains(t, text, "How much Bananas, raw?")

	text = env.send(t, "abc")
	assert.Contains(t, text, "Amount must be a positive number")

	text = env.send(t, "100 breakfast")
	assert.Contains(t, text, "Logged 100 g")
	assert.Equal(t, state.None, env.states.GetUserState(testUser))
}

func TestPickWithoutSearchExpires(t *testing.T) {
	env := newBotEnv(t)
	env.states.SetUserState(testUser, state.WaitingForPick)

	text := env.send(t, "1 100")
	assert.Contains(t, text, "expired")
	assert.Equal(t, state.None, env.states.GetUserState(testUser))
}

func TestLogByNameAndDelete(t *testing.T) {
	env := newBotEnv(t)
	assert.Contains(t, env.send(t, "/setup"), "5 example meal(s) added")

	text := env.send(t, "/log Greek Yogurt 150 breakfast")
	assert.Contains(t, text, "Logged 150 g of Greek Yogurt as breakfast (88.5 kcal)")

	env.send(t, "/diary")
	markup := env.sender.lastMarkup(t)
	require.Len(t, markup.InlineKeyboard, 2, "one delete button plus the menu button")
	data := *markup.InlineKeyboard[0][0].CallbackData

	text = env.press(t, data)
	assert.Contains(t, text, "Entry deleted")

	text = env.send(t, "/diary")
	assert.Contains(t, text, "Nothing logged yet")
}

func TestLogUnknownMeal(t *testing.T) {
	env := newBotEnv(t)

	text := env.send(t, "/log Unicorn 100")
	assert.Contains(t, text, "Meal Unicorn not found")
}

func TestDeleteOtherUsersEntryIsNotFound(t *testing.T) {
	env := newBotEnv(t)
	id, err := env.store.CreateEntry(context.Background(), &domain.DiaryEntry{UserID: "someone-else", Date: env.now})
	require.NoError(t, err)

	text := env.send(t, "/delete "+id)
	assert.Contains(t, text, "not found")

	_, err = env.store.GetEntry(context.Background(), id)
	assert.NoError(t, err)
}

func TestWeightPromptFlow(t *testing.T) {
	env := newBotEnv(t)

	env.press(t, "track_weight")
	assert.Equal(t, state.WaitingForWeight, env.states.GetUserState(testUser))

	text := env.send(t, "72,5")
	assert.Contains(t, text, "Weight 72.5 kg saved")

	metrics, err := env.store.ListMetrics(context.Background(), domain.MetricQuery{UserID: "42"})
	require.NoError(t, err)
	require.Len(t, metrics, 1)
	assert.Equal(t, 72.5, metrics[0].Value)
	assert.Equal(t, "kg", metrics[0].Details.Unit)
}

func TestSleepCommand(t *testing.T) {
	env := newBotEnv(t)

	text := env.send(t, "/sleep 23:30 07:00 8")
	assert.Contains(t, text, "Sleep saved: 7h 30m")

	metrics, err := env.store.ListMetrics(context.Background(), domain.MetricQuery{UserID: "42", Type: domain.MetricSleep})
	require.NoError(t, err)
	require.Len(t, metrics, 1)
	assert.Equal(t, 450.0, metrics[0].Value)
	assert.Equal(t, 8, metrics[0].Details.Quality)
	assert.Equal(t, "2024-03-09T23:30:00Z", metrics[0].Details.Bedtime)
}

func TestExerciseAndMetrics(t *testing.T) {
	env := newBotEnv(t)

	assert.Contains(t, env.send(t, "/exercise running 30 high 320"), "Running for 30 min saved")
	env.send(t, "/weight 80 kg")

	text := env.send(t, "/metrics exercise")
	assert.Contains(t, text, "running 30 min, high, 320 kcal")
	assert.NotContains(t, text, "⚖️")

	text = env.send(t, "/metrics nonsense")
	assert.Contains(t, text, "Metric type must be")
}

func TestStreakCommand(t *testing.T) {
	env := newBotEnv(t)
	assert.Contains(t, env.send(t, "/streak"), "No streak yet")

	env.send(t, "/weight 70")
	env.now = env.now.AddDate(0, 0, 1)
	env.send(t, "/weight 69.8")

	text := env.send(t, "/streak")
	assert.Contains(t, text, "Current streak: 2 day(s)")
	assert.Contains(t, text, "Last active: Mon, 11 Mar 2024")
}

func TestUnknownInputs(t *testing.T) {
	env := newBotEnv(t)

	assert.Contains(t, env.send(t, "/frobnicate"), "Unknown command")
	assert.Contains(t, env.send(t, "hello"), "use the menu")
	assert.Contains(t, env.press(t, "legacy_button"), "no longer supported")
	assert.Equal(t, 1, env.sender.requests)
}
