package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/nutrition-diary/internal/bot/menus"
	"github.com/vladimiradmaev/nutrition-diary/internal/bot/state"
	"github.com/vladimiradmaev/nutrition-diary/internal/logger"
)

// UpdateHandler handles telegram updates and coordinates other handlers
type UpdateHandler struct {
	deps            Dependencies
	callbackHandler *CallbackHandler
	commandHandler  *CommandHandler
	textHandler     *TextHandler
}

// NewUpdateHandler creates a new update handler
func NewUpdateHandler(api menus.Sender, deps Dependencies, stateManager state.StateManager) *UpdateHandler {
	acts := newActions(api, deps, stateManager)
	return &UpdateHandler{
		deps:            acts.deps,
		callbackHandler: NewCallbackHandler(api, acts),
		commandHandler:  NewCommandHandler(acts),
		textHandler:     NewTextHandler(stateManager, acts),
	}
}

// Handle processes a telegram update
func (h *UpdateHandler) Handle(ctx context.Context, update tgbotapi.Update) error {
	var from *tgbotapi.User
	var chatID int64

	switch {
	case update.CallbackQuery != nil:
		from = update.CallbackQuery.From
		if update.CallbackQuery.Message != nil {
			chatID = update.CallbackQuery.Message.Chat.ID
		}
	case update.Message != nil:
		from = update.Message.From
		chatID = update.Message.Chat.ID
	}
	if from == nil || chatID == 0 {
		return nil
	}

	displayName := strings.TrimSpace(from.FirstName + " " + from.LastName)
	user, err := h.deps.Users.Register(ctx, strconv.FormatInt(from.ID, 10), from.UserName, displayName)
	if err != nil {
		return fmt.Errorf("failed to get/create user: %w", err)
	}
	s := session{TelegramID: from.ID, ChatID: chatID, User: user}

	if update.CallbackQuery != nil {
		return h.callbackHandler.Handle(ctx, update.CallbackQuery, s)
	}
	if update.Message.IsCommand() {
		return h.commandHandler.Handle(ctx, update.Message, s)
	}
	if update.Message.Text != "" {
		return h.textHandler.Handle(ctx, update.Message, s)
	}

	logger.Debug("Ignoring non-text message", "user_id", user.UserID)
	return nil
}
