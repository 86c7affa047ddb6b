package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/vladimiradmaev/nutrition-diary/internal/domain"
	apperrors "github.com/vladimiradmaev/nutrition-diary/internal/errors"
)

// DefaultServingUnit is used when a definition names no unit
const DefaultServingUnit = "g"

// MealService manages meal definitions
type MealService struct {
	repo domain.MealRepository
	now  func() time.Time
}

func NewMealService(repo domain.MealRepository) *MealService {
	return &MealService{repo: repo, now: time.Now}
}

// SetClock replaces the time source
func (s *MealService) SetClock(now func() time.Time) {
	s.now = now
}

// Create normalizes input and stores a new definition. createdBy may be empty
// for system-created definitions.
func (s *MealService) Create(ctx context.Context, input domain.MealInput, createdBy string) (string, error) {
	meal := BuildMeal(input, createdBy, s.now())
	if meal.Name == "" {
		return "", apperrors.NewValidationError("meal name is required")
	}

	id, err := s.repo.CreateMeal(ctx, meal)
	if err != nil {
		return "", apperrors.NewDatabaseError(err).WithContext("meal", meal.Name)
	}
	return id, nil
}

// Get returns the definition, or nil when it does not exist
func (s *MealService) Get(ctx context.Context, id string) (*domain.MealDefinition, error) {
	meal, err := s.repo.GetMeal(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError(err).WithContext("meal_id", id)
	}
	return meal, nil
}

// Update merges patch into the stored definition. Fields left nil are not
// touched, and the passed values are stored as given.
func (s *MealService) Update(ctx context.Context, id string, patch domain.MealPatch) error {
	patch.UpdatedAt = s.now()
	err := s.repo.UpdateMeal(ctx, id, patch)
	if errors.Is(err, domain.ErrNotFound) {
		return apperrors.NewNotFoundError("meal", id)
	}
	if err != nil {
		return apperrors.NewDatabaseError(err).WithContext("meal_id", id)
	}
	return nil
}

// Delete removes the definition. Diary entries that reference it are left in place.
func (s *MealService) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteMeal(ctx, id); err != nil {
		return apperrors.NewDatabaseError(err).WithContext("meal_id", id)
	}
	return nil
}

// FindByFdcID returns the definition imported from an FDC food, or nil
func (s *MealService) FindByFdcID(ctx context.Context, fdcID string) (*domain.MealDefinition, error) {
	return s.find(ctx, s.repo.FindMealByFdcID, fdcID)
}

// FindByName returns the first definition with exactly this name, or nil
func (s *MealService) FindByName(ctx context.Context, name string) (*domain.MealDefinition, error) {
	return s.find(ctx, s.repo.FindMealByName, name)
}

// FindByLegacyID returns the definition migrated from a legacy meal, or nil
func (s *MealService) FindByLegacyID(ctx context.Context, legacyID string) (*domain.MealDefinition, error) {
	return s.find(ctx, s.repo.FindMealByLegacyID, legacyID)
}

func (s *MealService) find(ctx context.Context, lookup func(context.Context, string) (*domain.MealDefinition, error), key string) (*domain.MealDefinition, error) {
	meal, err := lookup(ctx, key)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return meal, nil
}

// BuildMeal applies creation defaults and rounding to input
func BuildMeal(input domain.MealInput, createdBy string, now time.Time) *domain.MealDefinition {
	meal := &domain.MealDefinition{
		Name:          strings.TrimSpace(input.Name),
		BaseAmount:    input.BaseAmount,
		ServingUnit:   strings.TrimSpace(input.ServingUnit),
		Nutrients:     input.Nutrients.Normalized(),
		Source:        input.Source,
		SourceDetails: input.SourceDetails,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if meal.BaseAmount <= 0 {
		meal.BaseAmount = domain.DefaultBaseAmount
	}
	if meal.ServingUnit == "" {
		meal.ServingUnit = DefaultServingUnit
	}
	if meal.Source == "" {
		meal.Source = domain.SourceUserCreated
	}
	if createdBy != "" {
		by := createdBy
		meal.CreatedBy = &by
		updatedBy := createdBy
		meal.UpdatedBy = &updatedBy
	}
	return meal
}
