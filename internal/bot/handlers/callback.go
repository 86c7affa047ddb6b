package handlers

import (
	"context"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/nutrition-diary/internal/bot/keyboards"
	"github.com/vladimiradmaev/nutrition-diary/internal/bot/menus"
	"github.com/vladimiradmaev/nutrition-diary/internal/logger"
)

// CallbackHandler handles callback query messages
type CallbackHandler struct {
	api  menus.Sender
	acts *actions
}

// NewCallbackHandler creates a new callback handler
func NewCallbackHandler(api menus.Sender, acts *actions) *CallbackHandler {
	return &CallbackHandler{api: api, acts: acts}
}

// Handle processes a callback query
func (h *CallbackHandler) Handle(ctx context.Context, query *tgbotapi.CallbackQuery, s session) error {
	// Answer first so the client stops showing a spinner
	if _, err := h.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		logger.Warn("Failed to answer callback query", "error", err)
	}

	data := query.Data
	switch {
	case data == keyboards.DataMainMenu:
		return h.acts.showMainMenu(s)
	case data == keyboards.DataSearchFood:
		return h.acts.promptSearch(s)
	case data == keyboards.DataDiary:
		return h.acts.diary(ctx, s, "")
	case data == keyboards.DataTrackWeight:
		return h.acts.promptWeight(s)
	case data == keyboards.DataTrackSleep:
		return h.acts.promptSleep(s)
	case data == keyboards.DataStreak:
		return h.acts.streak(ctx, s)
	case data == keyboards.DataHelp:
		return menus.SendHelp(h.api, s.ChatID)
	case strings.HasPrefix(data, keyboards.DeleteEntryPrefix):
		return h.acts.deleteEntry(ctx, s, strings.TrimPrefix(data, keyboards.DeleteEntryPrefix))
	case strings.HasPrefix(data, keyboards.PickFoodPrefix):
		index, err := strconv.Atoi(strings.TrimPrefix(data, keyboards.PickFoodPrefix))
		if err != nil {
			index = 0
		}
		return h.acts.choose(s, index)
	default:
		logger.Warn("Unknown callback data", "data", data, "user_id", s.userID())
		return h.acts.reply(s.ChatID, "This button is no longer supported.", keyboards.MainMenu())
	}
}
