package handlers

import (
	"time"

	"github.com/vladimiradmaev/nutrition-diary/internal/domain"
	"github.com/vladimiradmaev/nutrition-diary/internal/interfaces"
)

// Dependencies holds all service dependencies for handlers
type Dependencies struct {
	Users   interfaces.UserServiceInterface
	Diary   interfaces.DiaryServiceInterface
	Meals   interfaces.MealServiceInterface
	Foods   interfaces.FoodLogServiceInterface
	Metrics interfaces.MetricsServiceInterface
	Streaks interfaces.StreakServiceInterface
	Setup   interfaces.SetupServiceInterface

	// Location is used for day boundaries and clock times; nil means time.Local.
	Location *time.Location
	// Now defaults to time.Now.
	Now func() time.Time
}

// session identifies who an update came from
type session struct {
	TelegramID int64
	ChatID     int64
	User       *domain.UserProfile
}

func (s session) userID() string { return s.User.UserID }
