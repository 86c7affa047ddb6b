package repository

import (
	"context"

	"github.com/vladimiradmaev/nutrition-diary/internal/database"
	"github.com/vladimiradmaev/nutrition-diary/internal/domain"
	"gorm.io/gorm"
)

// UserRepository handles user profile rows
type UserRepository struct {
	db *gorm.DB
}

var _ domain.UserRepository = (*UserRepository)(nil)

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetUser gets a user by id
func (r *UserRepository) GetUser(ctx context.Context, userID string) (*domain.UserProfile, error) {
	var row database.User
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error; err != nil {
		return nil, translate(err, "user", userID)
	}
	return &domain.UserProfile{
		UserID:           row.UserID,
		Username:         row.Username,
		DisplayName:      row.DisplayName,
		DailyCalorieGoal: row.DailyCalorieGoal,
		WeightUnit:       row.WeightUnit,
		Timezone:         row.Timezone,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}, nil
}

// SaveUser inserts or replaces the user row
func (r *UserRepository) SaveUser(ctx context.Context, user *domain.UserProfile) error {
	row := database.User{
		UserID:           user.UserID,
		Username:         user.Username,
		DisplayName:      user.DisplayName,
		DailyCalorieGoal: user.DailyCalorieGoal,
		WeightUnit:       user.WeightUnit,
		Timezone:         user.Timezone,
		CreatedAt:        user.CreatedAt,
		UpdatedAt:        user.UpdatedAt,
	}
	return r.db.WithContext(ctx).Save(&row).Error
}
