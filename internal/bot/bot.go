package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/nutrition-diary/internal/bot/handlers"
	"github.com/vladimiradmaev/nutrition-diary/internal/bot/state"
	apperrors "github.com/vladimiradmaev/nutrition-diary/internal/errors"
	"github.com/vladimiradmaev/nutrition-diary/internal/logger"
)

const updateTimeout = 60

type Bot struct {
	api     *tgbotapi.BotAPI
	handler *handlers.UpdateHandler
	errs    *apperrors.Handler
}

func NewBot(token string, deps handlers.Dependencies, states state.StateManager) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	logger.Info("Bot authorized", "account", api.Self.UserName)

	if _, err := api.Request(tgbotapi.NewSetMyCommands(handlers.Commands...)); err != nil {
		logger.Warn("Failed to register bot commands", "error", err)
	}

	return &Bot{
		api:     api,
		handler: handlers.NewUpdateHandler(api, deps, states),
		errs:    apperrors.NewHandler(logger.GetLogger()),
	}, nil
}

// Start polls for updates until ctx is cancelled. Updates are handled one at
// a time so a user's replies are processed in order.
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = updateTimeout

	updates := b.api.GetUpdatesChan(u)
	logger.Info("Bot is now listening for updates")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Bot is shutting down")
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message != nil && update.Message.From != nil {
				logger.Debug("Received message", "user_id", update.Message.From.ID, "text", update.Message.Text)
			}
			if err := b.handler.Handle(ctx, update); err != nil {
				b.errs.Handle(ctx, apperrors.NewInternalError(err).WithContext("update_id", update.UpdateID))
			}
		}
	}
}
