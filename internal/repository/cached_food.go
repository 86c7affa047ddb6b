package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/vladimiradmaev/nutrition-diary/internal/database"
	"github.com/vladimiradmaev/nutrition-diary/internal/domain"
	"gorm.io/gorm"
)

// CachedFoodRepository is the append-only cached_foods table
type CachedFoodRepository struct {
	db *gorm.DB
}

var _ domain.CachedFoodRepository = (*CachedFoodRepository)(nil)

func NewCachedFoodRepository(db *gorm.DB) *CachedFoodRepository {
	return &CachedFoodRepository{db: db}
}

func (r *CachedFoodRepository) FindCachedFood(ctx context.Context, foodID string) (*domain.CachedFood, error) {
	var row database.CachedFood
	if err := r.db.WithContext(ctx).Where("food_id = ?", foodID).Order("cached_at ASC").First(&row).Error; err != nil {
		return nil, translate(err, "cached food", foodID)
	}
	return &domain.CachedFood{
		ID:          row.ID,
		FoodID:      row.FoodID,
		Description: row.Description,
		Payload:     json.RawMessage(row.Payload),
		CachedAt:    row.CachedAt,
	}, nil
}

func (r *CachedFoodRepository) CreateCachedFood(ctx context.Context, food *domain.CachedFood) error {
	row := database.CachedFood{
		ID:          uuid.NewString(),
		FoodID:      food.FoodID,
		Description: food.Description,
		Payload:     string(food.Payload),
		CachedAt:    food.CachedAt,
	}
	return r.db.WithContext(ctx).Create(&row).Error
}
