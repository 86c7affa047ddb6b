package services

import (
	"context"
	"strings"

	"github.com/vladimiradmaev/nutrition-diary/internal/domain"
	apperrors "github.com/vladimiradmaev/nutrition-diary/internal/errors"
	"github.com/vladimiradmaev/nutrition-diary/internal/fooddata"
	"github.com/vladimiradmaev/nutrition-diary/internal/logger"
)

// FoodLogService logs looked-up foods to the diary, importing the definition
// on first use
type FoodLogService struct {
	foods FoodLookup
	meals *MealService
	diary *DiaryService
}

func NewFoodLogService(foods FoodLookup, meals *MealService, diary *DiaryService) *FoodLogService {
	return &FoodLogService{foods: foods, meals: meals, diary: diary}
}

// Search proxies the lookup so callers need a single dependency
func (s *FoodLogService) Search(ctx context.Context, query string, pageSize int) []fooddata.FoodSummary {
	return s.foods.Search(ctx, query, pageSize)
}

// LogFood adds an entry for candidate. An existing definition with the same
// FDC id as the candidate or the fetched record is reused; otherwise one is
// created together with the entry.
func (s *FoodLogService) LogFood(ctx context.Context, userID string, candidate fooddata.FoodSummary, amount float64, category string) (*domain.MealDefinition, domain.WriteResult, error) {
	if candidate.FdcID == "" {
		return nil, domain.WriteResult{}, apperrors.NewValidationError("food id is required")
	}

	meal, err := s.meals.FindByFdcID(ctx, candidate.FdcID)
	if err != nil {
		return nil, domain.WriteResult{}, err
	}
	if meal != nil {
		res, err := s.diary.AddEntry(ctx, userID, meal.ID, amount, category)
		return meal, res, err
	}

	food := s.foods.GetDetails(ctx, candidate.FdcID)
	if food == nil {
		return nil, domain.WriteResult{}, apperrors.NewNotFoundError("food", candidate.FdcID)
	}
	input, ok := MealInputFromFood(food, candidate)
	if !ok {
		return nil, domain.WriteResult{}, apperrors.NewValidationError("food has no nutrient data").
			WithContext("fdc_id", candidate.FdcID)
	}

	// the record may carry another id than the candidate, e.g. mock data
	if input.SourceDetails.FdcID != candidate.FdcID {
		existing, err := s.meals.FindByFdcID(ctx, input.SourceDetails.FdcID)
		if err != nil {
			return nil, domain.WriteResult{}, err
		}
		if existing != nil {
			res, err := s.diary.AddEntry(ctx, userID, existing.ID, amount, category)
			return existing, res, err
		}
	}

	mealID, res, err := s.diary.LogNewMeal(ctx, userID, input, amount, category)
	if err != nil {
		return nil, res, err
	}
	logger.Info("Imported food on first log", "user_id", userID, "fdc_id", input.SourceDetails.FdcID, "meal_id", mealID)

	meal, err = s.meals.Get(ctx, mealID)
	if err != nil || meal == nil {
		meal = BuildMeal(input, userID, s.diary.now())
		meal.ID = mealID
	}
	return meal, res, nil
}

// MealInputFromFood builds a per-100 g definition from an FDC record. It
// reports false when the record carries no usable nutrients.
func MealInputFromFood(food *fooddata.Food, candidate fooddata.FoodSummary) (domain.MealInput, bool) {
	bundle := food.Nutrients()
	if bundle.IsZero() {
		return domain.MealInput{}, false
	}

	fdcID := food.FdcID
	if fdcID == "" {
		fdcID = candidate.FdcID
	}
	name := strings.TrimSpace(food.Description)
	if name == "" {
		name = candidate.Description
	}
	dataType := food.DataType
	if dataType == "" {
		dataType = candidate.DataType
	}

	return domain.MealInput{
		Name:          name,
		BaseAmount:    domain.DefaultBaseAmount,
		ServingUnit:   DefaultServingUnit,
		Nutrients:     bundle.Nutrients,
		Source:        domain.SourceUSDA,
		SourceDetails: domain.SourceDetails{FdcID: fdcID, DataType: dataType},
	}, true
}
