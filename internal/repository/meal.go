package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/vladimiradmaev/nutrition-diary/internal/database"
	"github.com/vladimiradmaev/nutrition-diary/internal/domain"
	"gorm.io/gorm"
)

// MealRepository stores meal definitions in the meals table
type MealRepository struct {
	db *gorm.DB
}

var _ domain.MealRepository = (*MealRepository)(nil)

func NewMealRepository(db *gorm.DB) *MealRepository {
	return &MealRepository{db: db}
}

func (r *MealRepository) CreateMeal(ctx context.Context, meal *domain.MealDefinition) (string, error) {
	row := mealRow(meal)
	row.ID = uuid.NewString()
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return "", err
	}
	return row.ID, nil
}

func (r *MealRepository) GetMeal(ctx context.Context, id string) (*domain.MealDefinition, error) {
	var row database.Meal
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, translate(err, "meal", id)
	}
	return mealFromRow(row), nil
}

func (r *MealRepository) UpdateMeal(ctx context.Context, id string, patch domain.MealPatch) error {
	fields := make(map[string]interface{})
	setField(fields, "name", patch.Name)
	setField(fields, "base_amount", patch.BaseAmount)
	setField(fields, "serving_unit", patch.ServingUnit)
	setField(fields, "calories", patch.Calories)
	setField(fields, "protein", patch.Protein)
	setField(fields, "carbs", patch.Carbs)
	setField(fields, "fat", patch.Fat)
	setField(fields, "fiber", patch.Fiber)
	setField(fields, "sugar", patch.Sugar)
	setField(fields, "sodium", patch.Sodium)
	setField(fields, "cholesterol", patch.Cholesterol)
	setField(fields, "updated_by", patch.UpdatedBy)
	if !patch.UpdatedAt.IsZero() {
		fields["updated_at"] = patch.UpdatedAt
	}
	return updateByID(r.db.WithContext(ctx), &database.Meal{}, "meal", id, fields)
}

func (r *MealRepository) DeleteMeal(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&database.Meal{}).Error
}

func (r *MealRepository) FindMealByFdcID(ctx context.Context, fdcID string) (*domain.MealDefinition, error) {
	return r.findBy(ctx, "fdc_id = ?", fdcID)
}

func (r *MealRepository) FindMealByName(ctx context.Context, name string) (*domain.MealDefinition, error) {
	return r.findBy(ctx, "name = ?", name)
}

func (r *MealRepository) FindMealByLegacyID(ctx context.Context, legacyID string) (*domain.MealDefinition, error) {
	return r.findBy(ctx, "legacy_id = ?", legacyID)
}

func (r *MealRepository) findBy(ctx context.Context, where, value string) (*domain.MealDefinition, error) {
	if value == "" {
		return nil, translate(gorm.ErrRecordNotFound, "meal", value)
	}
	var row database.Meal
	if err := r.db.WithContext(ctx).Where(where, value).Order("created_at ASC").First(&row).Error; err != nil {
		return nil, translate(err, "meal", value)
	}
	return mealFromRow(row), nil
}

func mealRow(m *domain.MealDefinition) database.Meal {
	return database.Meal{
		ID:          m.ID,
		Name:        m.Name,
		BaseAmount:  m.BaseAmount,
		ServingUnit: m.ServingUnit,
		Nutrients:   m.Nutrients,
		Source:      m.Source,
		FdcID:       m.SourceDetails.FdcID,
		DataType:    m.SourceDetails.DataType,
		LegacyID:    m.SourceDetails.LegacyID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
		CreatedBy:   m.CreatedBy,
		UpdatedBy:   m.UpdatedBy,
	}
}

func mealFromRow(row database.Meal) *domain.MealDefinition {
	return &domain.MealDefinition{
		ID:          row.ID,
		Name:        row.Name,
		BaseAmount:  row.BaseAmount,
		ServingUnit: row.ServingUnit,
		Nutrients:   row.Nutrients,
		Source:      row.Source,
		SourceDetails: domain.SourceDetails{
			FdcID:    row.FdcID,
			DataType: row.DataType,
			LegacyID: row.LegacyID,
		},
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
		CreatedBy: row.CreatedBy,
		UpdatedBy: row.UpdatedBy,
	}
}

func setField[T any](fields map[string]interface{}, column string, v *T) {
	if v != nil {
		fields[column] = *v
	}
}
