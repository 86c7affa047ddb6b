package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vladimiradmaev/nutrition-diary/internal/domain"
	"github.com/vladimiradmaev/nutrition-diary/internal/fooddata"
	"github.com/vladimiradmaev/nutrition-diary/internal/logger"
	"golang.org/x/time/rate"
)

// FoodLookup is the external food-facts lookup used by population and search
type FoodLookup interface {
	Search(ctx context.Context, query string, pageSize int) []fooddata.FoodSummary
	GetDetails(ctx context.Context, fdcID string) *fooddata.Food
}

// PopulateKeywords are searched, in order, by PopulateDatabase
var PopulateKeywords = []string{
	"apple", "banana", "orange", "strawberries", "broccoli", "spinach", "carrot",
	"potato", "rice", "oats", "bread", "pasta", "chicken breast", "salmon", "beef",
	"egg", "milk", "yogurt", "cheddar cheese", "almonds", "peanut butter", "lentils",
	"black beans", "tofu", "avocado", "olive oil",
}

// exampleMeals are seeded for every new user; values are per 100 g
var exampleMeals = []domain.MealInput{
	{Name: "Oatmeal", BaseAmount: 100, ServingUnit: "g", Nutrients: domain.Nutrients{Calories: 71, Protein: 2.5, Carbs: 12, Fat: 1.5, Fiber: 1.7, Sugar: 0.5, Sodium: 49}},
	{Name: "Banana", BaseAmount: 100, ServingUnit: "g", Nutrients: domain.Nutrients{Calories: 89, Protein: 1.1, Carbs: 22.8, Fat: 0.3, Fiber: 2.6, Sugar: 12.2, Sodium: 1}},
	{Name: "Grilled Chicken Breast", BaseAmount: 100, ServingUnit: "g", Nutrients: domain.Nutrients{Calories: 165, Protein: 31, Fat: 3.6, Sodium: 74, Cholesterol: 85}},
	{Name: "Greek Yogurt", BaseAmount: 100, ServingUnit: "g", Nutrients: domain.Nutrients{Calories: 59, Protein: 10.2, Carbs: 3.6, Fat: 0.4, Sugar: 3.2, Sodium: 36, Cholesterol: 5}},
	{Name: "Brown Rice", BaseAmount: 100, ServingUnit: "g", Nutrients: domain.Nutrients{Calories: 112, Protein: 2.3, Carbs: 23.5, Fat: 0.8, Fiber: 1.8, Sugar: 0.4, Sodium: 5}},
}

const populatePageSize = 5

type SetupResult struct {
	Success      bool     `json:"success"`
	MealsCreated int      `json:"mealsCreated"`
	Errors       []string `json:"errors,omitempty"`
}

type MigrationResult struct {
	Success        bool     `json:"success"`
	MealsMigrated  int      `json:"mealsMigrated"`
	EntriesCreated int      `json:"entriesCreated"`
	Skipped        int      `json:"skipped"`
	Errors         []string `json:"errors,omitempty"`
}

type PopulateResult struct {
	Success bool     `json:"success"`
	Added   int      `json:"added"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}

// SetupService seeds, migrates and bulk-populates the store. Every batch
// collects per-item failures and keeps partial progress.
type SetupService struct {
	users   domain.UserRepository
	streaks domain.StreakRepository
	entries domain.DiaryRepository
	legacy  domain.LegacyMealRepository
	meals   *MealService
	foods   FoodLookup
	limiter *rate.Limiter
	limit   int
	loc     *time.Location
	now     func() time.Time
}

func NewSetupService(
	users domain.UserRepository,
	streaks domain.StreakRepository,
	entries domain.DiaryRepository,
	legacy domain.LegacyMealRepository,
	meals *MealService,
	foods FoodLookup,
	delay time.Duration,
	limit int,
	loc *time.Location,
) *SetupService {
	if loc == nil {
		loc = time.Local
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if delay > 0 {
		limiter = rate.NewLimiter(rate.Every(delay), 1)
	}
	return &SetupService{
		users:   users,
		streaks: streaks,
		entries: entries,
		legacy:  legacy,
		meals:   meals,
		foods:   foods,
		limiter: limiter,
		limit:   limit,
		loc:     loc,
		now:     time.Now,
	}
}

// SetClock replaces the time source
func (s *SetupService) SetClock(now func() time.Time) {
	s.now = now
}

// SetupDatabase prepares a user: default settings, an empty streak and the
// example meal definitions. Running it again changes nothing.
func (s *SetupService) SetupDatabase(ctx context.Context, userID string) SetupResult {
	var result SetupResult
	if userID == "" {
		result.Errors = append(result.Errors, "user id is required")
		return result
	}

	if err := s.ensureProfile(ctx, userID); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("user settings: %v", err))
	}
	if err := s.ensureStreak(ctx, userID); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("streak: %v", err))
	}

	for _, input := range exampleMeals {
		existing, err := s.meals.FindByName(ctx, input.Name)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("meal %q: %v", input.Name, err))
			continue
		}
		if existing != nil {
			continue
		}

		input.Source = domain.SourceSystem
		if _, err := s.meals.Create(ctx, input, ""); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("meal %q: %v", input.Name, err))
			continue
		}
		result.MealsCreated++
	}

	result.Success = len(result.Errors) == 0
	logger.Info("Database setup finished",
		"user_id", userID, "meals_created", result.MealsCreated, "errors", len(result.Errors))
	return result
}

// MigrateDatabase converts the user's legacy combined meal documents into a
// definition plus a diary entry each. Records migrated earlier are skipped.
func (s *SetupService) MigrateDatabase(ctx context.Context, userID string) MigrationResult {
	var result MigrationResult
	if userID == "" {
		result.Errors = append(result.Errors, "user id is required")
		return result
	}

	log := logger.WithFields("user_id", userID)
	legacy, err := s.legacy.ListLegacyMeals(ctx, userID)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("list legacy meals: %v", err))
		return result
	}

	for _, old := range legacy {
		if err := ctx.Err(); err != nil {
			result.Errors = append(result.Errors, err.Error())
			break
		}

		migrated, err := s.migrateOne(ctx, userID, old)
		switch {
		case err != nil:
			log.Warn("Failed to migrate legacy meal", "legacy_id", old.ID, "error", err)
			result.Errors = append(result.Errors, fmt.Sprintf("legacy meal %s: %v", old.ID, err))
		case migrated:
			result.MealsMigrated++
			result.EntriesCreated++
		default:
			result.Skipped++
		}
	}

	if err := s.ensureStreak(ctx, userID); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("streak: %v", err))
	}

	result.Success = len(result.Errors) == 0
	log.Info("Legacy migration finished",
		"migrated", result.MealsMigrated,
		"skipped", result.Skipped,
		"errors", len(result.Errors))
	return result
}

func (s *SetupService) migrateOne(ctx context.Context, userID string, old domain.LegacyMeal) (bool, error) {
	existing, err := s.meals.FindByLegacyID(ctx, old.ID)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}

	mealID, err := s.meals.Create(ctx, domain.MealInput{
		Name:          old.Name,
		BaseAmount:    old.Amount,
		ServingUnit:   old.ServingUnit,
		Nutrients:     old.Nutrients,
		Source:        domain.SourceMigrated,
		SourceDetails: domain.SourceDetails{LegacyID: old.ID},
	}, userID)
	if err != nil {
		return false, err
	}

	now := s.now()
	date := now
	if old.Date != nil {
		date = *old.Date
	}
	amount := old.Amount
	if amount <= 0 {
		amount = domain.DefaultBaseAmount
	}

	entry := &domain.DiaryEntry{
		UserID:     userID,
		MealID:     mealID,
		Date:       date,
		Category:   domain.NormalizeCategory(old.Category),
		Amount:     amount,
		Multiplier: 1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := s.entries.CreateEntry(ctx, entry); err != nil {
		// without the definition a re-run retries this record
		if delErr := s.meals.Delete(ctx, mealID); delErr != nil {
			return false, errors.Join(err, fmt.Errorf("meal %s left behind: %w", mealID, delErr))
		}
		return false, err
	}
	return true, nil
}

// PopulateDatabase imports up to limit FDC foods as meal definitions, searching
// PopulateKeywords in order. External calls are throttled. Candidates that are
// already present or carry no usable nutrients are skipped.
func (s *SetupService) PopulateDatabase(ctx context.Context, userID string, limit int) PopulateResult {
	var result PopulateResult
	if limit <= 0 {
		limit = s.limit
	}

	seen := make(map[string]bool)
	for _, keyword := range PopulateKeywords {
		if result.Added >= limit {
			break
		}
		if err := s.limiter.Wait(ctx); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("search %q: %v", keyword, err))
			break
		}

		for _, candidate := range s.foods.Search(ctx, keyword, populatePageSize) {
			if result.Added >= limit || ctx.Err() != nil {
				break
			}
			if candidate.FdcID == "" || seen[candidate.FdcID] {
				continue
			}
			seen[candidate.FdcID] = true

			added, err := s.importFood(ctx, userID, candidate)
			switch {
			case err != nil:
				result.Errors = append(result.Errors, fmt.Sprintf("food %s: %v", candidate.FdcID, err))
			case added:
				result.Added++
			default:
				result.Skipped++
			}
		}

		if err := ctx.Err(); err != nil {
			result.Errors = append(result.Errors, err.Error())
			break
		}
	}

	result.Success = len(result.Errors) == 0
	logger.Info("Database population finished",
		"user_id", userID, "added", result.Added, "skipped", result.Skipped, "errors", len(result.Errors))
	return result
}

func (s *SetupService) importFood(ctx context.Context, userID string, candidate fooddata.FoodSummary) (bool, error) {
	existing, err := s.meals.FindByFdcID(ctx, candidate.FdcID)
	if err != nil || existing != nil {
		return false, err
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return false, err
	}
	food := s.foods.GetDetails(ctx, candidate.FdcID)
	if food == nil {
		return false, nil
	}

	input, ok := MealInputFromFood(food, candidate)
	if !ok {
		logger.Debug("Skipping food without nutrients", "fdc_id", candidate.FdcID)
		return false, nil
	}

	if input.SourceDetails.FdcID != candidate.FdcID {
		if existing, err := s.meals.FindByFdcID(ctx, input.SourceDetails.FdcID); err != nil || existing != nil {
			return false, err
		}
	}
	if existing, err := s.meals.FindByName(ctx, input.Name); err != nil || existing != nil {
		return false, err
	}

	if _, err := s.meals.Create(ctx, input, userID); err != nil {
		return false, err
	}
	return true, nil
}

func (s *SetupService) ensureProfile(ctx context.Context, userID string) error {
	user, err := s.users.GetUser(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		user = &domain.UserProfile{UserID: userID}
	} else if err != nil {
		return err
	}

	if !MergeProfileDefaults(user, s.loc, s.now()) {
		return nil
	}
	return s.users.SaveUser(ctx, user)
}

func (s *SetupService) ensureStreak(ctx context.Context, userID string) error {
	_, err := s.streaks.GetStreak(ctx, userID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return s.streaks.SaveStreak(ctx, &domain.UserStreak{
		UserID:    userID,
		UpdatedAt: s.now(),
	})
}
