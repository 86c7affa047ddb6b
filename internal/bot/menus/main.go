package menus

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/nutrition-diary/internal/bot/keyboards"
)

// Sender is the part of the Telegram API the bot sends through
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// HelpText lists the supported commands
const HelpText = `Available commands:
/start - show the main menu
/search <query> - find a food, then reply "<n> <amount> [category]"
/log <meal> <amount> [category] - log a saved meal by name or id
/diary [YYYY-MM-DD] - show a day's diary with totals
/delete <entry id> - remove a diary entry
/weight <value> [kg|lb] - record your weight
/sleep <HH:MM> <HH:MM> [quality 1-10] - record last night's sleep
/exercise <category> <minutes> [intensity] [calories] - record a workout
/metrics [weight|sleep|exercise] - list recent metrics
/streak - show your activity streak
/setup - add example meals and default settings
/migrate - convert meals logged in the old format

Categories: breakfast, lunch, dinner, snack. Amounts are in grams unless the meal says otherwise.`

// SendMainMenu sends the main menu to a chat
func SendMainMenu(api Sender, chatID int64) error {
	text := `🥗 *Nutrition Diary*

Log what you eat, track weight, sleep and workouts, and keep your streak going.

Choose an action:`

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = keyboards.MainMenu()
	_, err := api.Send(msg)
	return err
}

// SendHelp sends the command reference
func SendHelp(api Sender, chatID int64) error {
	msg := tgbotapi.NewMessage(chatID, HelpText)
	msg.ReplyMarkup = keyboards.BackToMenu()
	_, err := api.Send(msg)
	return err
}

// SendText sends plain text with an optional keyboard
func SendText(api Sender, chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	_, err := api.Send(msg)
	return err
}
