package repository

import (
	"context"

	"github.com/vladimiradmaev/nutrition-diary/internal/database"
	"github.com/vladimiradmaev/nutrition-diary/internal/domain"
	"gorm.io/gorm"
)

// LegacyMealRepository reads the pre-split legacy_meals table
type LegacyMealRepository struct {
	db *gorm.DB
}

var _ domain.LegacyMealRepository = (*LegacyMealRepository)(nil)

func NewLegacyMealRepository(db *gorm.DB) *LegacyMealRepository {
	return &LegacyMealRepository{db: db}
}

func (r *LegacyMealRepository) ListLegacyMeals(ctx context.Context, userID string) ([]domain.LegacyMeal, error) {
	var rows []database.LegacyMeal
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	meals := make([]domain.LegacyMeal, 0, len(rows))
	for _, row := range rows {
		meals = append(meals, domain.LegacyMeal{
			ID:          row.ID,
			UserID:      row.UserID,
			Name:        row.Name,
			Date:        row.Date,
			Category:    row.Category,
			Amount:      row.Amount,
			ServingUnit: row.ServingUnit,
			Nutrients:   row.Nutrients,
		})
	}
	return meals, nil
}
