package keyboards

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/nutrition-diary/internal/domain"
	"github.com/vladimiradmaev/nutrition-diary/internal/fooddata"
)

// Callback data values
const (
	DataMainMenu    = "main_menu"
	DataSearchFood  = "search_food"
	DataDiary       = "diary"
	DataTrackWeight = "track_weight"
	DataTrackSleep  = "track_sleep"
	DataStreak      = "streak"
	DataHelp        = "help"

	// DeleteEntryPrefix is followed by the entry id
	DeleteEntryPrefix = "del:"
	// PickFoodPrefix is followed by the 1-based candidate index
	PickFoodPrefix = "pick:"
)

// MainMenu creates the main menu keyboard
func MainMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔍 Find food", DataSearchFood),
			tgbotapi.NewInlineKeyboardButtonData("📒 Today", DataDiary),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⚖️ Weight", DataTrackWeight),
			tgbotapi.NewInlineKeyboardButtonData("😴 Sleep", DataTrackSleep),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔥 Streak", DataStreak),
			tgbotapi.NewInlineKeyboardButtonData("❓ Help", DataHelp),
		),
	)
}

// BackToMenu is a single-button keyboard returning to the main menu
func BackToMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀️ Main menu", DataMainMenu),
		),
	)
}

// DiaryEntries adds a delete button per entry. Orphaned entries can still be deleted.
func DiaryEntries(entries []domain.ResolvedEntry) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(entries)+1)
	for _, e := range entries {
		label := fmt.Sprintf("🗑️ %s (%g %s)", truncate(e.Name, 24), e.Amount, e.ServingUnit)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, DeleteEntryPrefix+e.ID),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("◀️ Main menu", DataMainMenu),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// SearchResults lists candidates as numbered buttons
func SearchResults(foods []fooddata.FoodSummary) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(foods)+1)
	for i, f := range foods {
		label := fmt.Sprintf("%d. %s", i+1, truncate(f.Description, 40))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("%s%d", PickFoodPrefix, i+1)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("◀️ Cancel", DataMainMenu),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
