package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/nutrition-diary/internal/bot/menus"
	"github.com/vladimiradmaev/nutrition-diary/internal/logger"
)

// Commands are registered with Telegram so clients can suggest them
var Commands = []tgbotapi.BotCommand{
	{Command: "start", Description: "Show the main menu"},
	{Command: "search", Description: "Find a food and log it"},
	{Command: "log", Description: "Log a saved meal"},
	{Command: "diary", Description: "Show a day's diary"},
	{Command: "weight", Description: "Record your weight"},
	{Command: "sleep", Description: "Record last night's sleep"},
	{Command: "exercise", Description: "Record a workout"},
	{Command: "metrics", Description: "List recent metrics"},
	{Command: "streak", Description: "Show your streak"},
	{Command: "setup", Description: "Add example meals"},
	{Command: "help", Description: "List every command"},
}

// CommandHandler handles bot commands
type CommandHandler struct {
	acts *actions
}

// NewCommandHandler creates a new command handler
func NewCommandHandler(acts *actions) *CommandHandler {
	return &CommandHandler{acts: acts}
}

// Handle processes a command message
func (h *CommandHandler) Handle(ctx context.Context, message *tgbotapi.Message, s session) error {
	logger.Info("Handling command", "command", message.Command(), "user_id", s.userID())
	args := message.CommandArguments()

	switch message.Command() {
	case "start":
		return h.acts.showMainMenu(s)
	case "help":
		return menus.SendHelp(h.acts.api, s.ChatID)
	case "search":
		return h.acts.search(ctx, s, args)
	case "log":
		return h.acts.logMeal(ctx, s, args)
	case "diary":
		return h.acts.diary(ctx, s, args)
	case "delete":
		return h.acts.deleteEntry(ctx, s, args)
	case "weight":
		if args == "" {
			return h.acts.promptWeight(s)
		}
		return h.acts.weight(ctx, s, args)
	case "sleep":
		if args == "" {
			return h.acts.promptSleep(s)
		}
		return h.acts.sleep(ctx, s, args)
	case "exercise":
		return h.acts.exercise(ctx, s, args)
	case "metrics":
		return h.acts.metrics(ctx, s, args)
	case "streak":
		return h.acts.streak(ctx, s)
	case "setup":
		return h.acts.setup(ctx, s)
	case "migrate":
		return h.acts.migrate(ctx, s)
	default:
		return h.acts.reply(s.ChatID, "Unknown command. Use /help to see what I can do.", nil)
	}
}
