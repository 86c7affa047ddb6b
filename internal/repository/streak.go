package repository

import (
	"context"

	"github.com/vladimiradmaev/nutrition-diary/internal/database"
	"github.com/vladimiradmaev/nutrition-diary/internal/domain"
	"gorm.io/gorm"
)

// StreakRepository keeps one user_streaks row per user
type StreakRepository struct {
	db *gorm.DB
}

var _ domain.StreakRepository = (*StreakRepository)(nil)

func NewStreakRepository(db *gorm.DB) *StreakRepository {
	return &StreakRepository{db: db}
}

func (r *StreakRepository) GetStreak(ctx context.Context, userID string) (*domain.UserStreak, error) {
	var row database.UserStreak
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error; err != nil {
		return nil, translate(err, "streak", userID)
	}
	return &domain.UserStreak{
		UserID:        row.UserID,
		CurrentStreak: row.CurrentStreak,
		LongestStreak: row.LongestStreak,
		LastActive:    row.LastActive,
		UpdatedAt:     row.UpdatedAt,
	}, nil
}

// SaveStreak upserts the row; concurrent writers are last-write-wins
func (r *StreakRepository) SaveStreak(ctx context.Context, streak *domain.UserStreak) error {
	row := database.UserStreak{
		UserID:        streak.UserID,
		CurrentStreak: streak.CurrentStreak,
		LongestStreak: streak.LongestStreak,
		LastActive:    streak.LastActive,
		UpdatedAt:     streak.UpdatedAt,
	}
	return r.db.WithContext(ctx).Save(&row).Error
}
