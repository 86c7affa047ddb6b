package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/vladimiradmaev/nutrition-diary/internal/app"
	"github.com/vladimiradmaev/nutrition-diary/internal/bot"
	"github.com/vladimiradmaev/nutrition-diary/internal/bot/handlers"
	"github.com/vladimiradmaev/nutrition-diary/internal/bot/state"
	"github.com/vladimiradmaev/nutrition-diary/internal/config"
	"github.com/vladimiradmaev/nutrition-diary/internal/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Warn(".env file not found", "error", err)
	}

	cfg, err := config.Load()
	if err == nil {
		cfg.RequireTelegram = true
		err = cfg.Validate()
	}
	if err != nil {
		logger.Fatal("Failed to load config", "error", err)
	}

	if err := logger.InitWithConfig(logger.Config{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	}); err != nil {
		logger.Fatal("Failed to initialize logger", "error", err)
	}
	logger.Info("Starting Nutrition Diary Bot", "store", cfg.Store.Driver, "mock_food_data", cfg.MockMode())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, time.Local)
	if err != nil {
		logger.Fatal("Failed to initialize application", "error", err)
	}
	defer a.Close()

	var states state.StateManager = state.NewManager()
	if a.Redis != nil {
		states = state.NewRedisManager(a.Redis, state.DefaultStateTTL)
		logger.Info("Conversation state is kept in Redis")
	}

	deps := handlers.Dependencies{
		Users:    a.Users,
		Diary:    a.Diary,
		Meals:    a.Meals,
		Foods:    a.FoodLog,
		Metrics:  a.Metrics,
		Streaks:  a.Streaks,
		Setup:    a.Setup,
		Location: a.Location,
	}

	telegramBot, err := bot.NewBot(cfg.TelegramToken, deps, states)
	if err != nil {
		logger.Fatal("Failed to create bot", "error", err)
	}

	logger.Info("Bot is running. Press Ctrl+C to stop.")
	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Bot stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Bot stopped")
}
