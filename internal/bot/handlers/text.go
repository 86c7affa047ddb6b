package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/nutrition-diary/internal/bot/keyboards"
	"github.com/vladimiradmaev/nutrition-diary/internal/bot/state"
)

// TextHandler handles text messages according to the conversation state
type TextHandler struct {
	stateManager state.StateManager
	acts         *actions
}

// NewTextHandler creates a new text handler
func NewTextHandler(stateManager state.StateManager, acts *actions) *TextHandler {
	return &TextHandler{stateManager: stateManager, acts: acts}
}

// Handle processes a text message
func (h *TextHandler) Handle(ctx context.Context, message *tgbotapi.Message, s session) error {
	switch h.stateManager.GetUserState(s.TelegramID) {
	case state.WaitingForSearch:
		return h.acts.search(ctx, s, message.Text)
	case state.WaitingForPick:
		return h.acts.pick(ctx, s, message.Text)
	case state.WaitingForWeight:
		return h.acts.weight(ctx, s, message.Text)
	case state.WaitingForSleep:
		return h.acts.sleep(ctx, s, message.Text)
	default:
		return h.acts.reply(s.ChatID, "Please use the menu or /help to choose an action.", keyboards.MainMenu())
	}
}
