package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vladimiradmaev/nutrition-diary/internal/domain"
	apperrors "github.com/vladimiradmaev/nutrition-diary/internal/errors"
	"github.com/vladimiradmaev/nutrition-diary/internal/logger"
	"github.com/vladimiradmaev/nutrition-diary/internal/utils"
)

// OrphanPolicy decides how listings present entries whose meal definition is gone
type OrphanPolicy string

const (
	OrphanSkip      OrphanPolicy = "skip"
	OrphanTombstone OrphanPolicy = "tombstone"
)

// TombstoneName is shown for entries whose meal definition was deleted
const TombstoneName = "(deleted meal)"

// DiaryService manages diary entries and joins them back to meal definitions
type DiaryService struct {
	entries domain.DiaryRepository
	meals   *MealService
	streaks *StreakService
	policy  OrphanPolicy
	loc     *time.Location
	now     func() time.Time
}

func NewDiaryService(entries domain.DiaryRepository, meals *MealService, streaks *StreakService, policy OrphanPolicy, loc *time.Location) *DiaryService {
	if policy != OrphanTombstone {
		policy = OrphanSkip
	}
	if loc == nil {
		loc = time.Local
	}
	return &DiaryService{
		entries: entries,
		meals:   meals,
		streaks: streaks,
		policy:  policy,
		loc:     loc,
		now:     time.Now,
	}
}

// SetClock replaces the time source
func (s *DiaryService) SetClock(now func() time.Time) {
	s.now = now
}

// AddEntry logs amount of meal mealID for the user now. The multiplier and the
// definition's base amount are frozen onto the entry.
func (s *DiaryService) AddEntry(ctx context.Context, userID, mealID string, amount float64, category string) (domain.WriteResult, error) {
	if userID == "" {
		return domain.WriteResult{}, apperrors.NewValidationError("user id is required")
	}
	if mealID == "" {
		return domain.WriteResult{}, apperrors.NewValidationError("meal id is required")
	}
	if !utils.IsPositive(amount) {
		return domain.WriteResult{}, apperrors.NewValidationError("amount must be positive").
			WithContext("amount", amount)
	}

	meal, err := s.meals.Get(ctx, mealID)
	if err != nil {
		return domain.WriteResult{}, err
	}
	if meal == nil {
		return domain.WriteResult{}, apperrors.NewNotFoundError("meal", mealID)
	}

	now := s.now()
	base := meal.EffectiveBaseAmount()
	entry := &domain.DiaryEntry{
		UserID:     userID,
		MealID:     mealID,
		Date:       now,
		Category:   domain.NormalizeCategory(category),
		Amount:     amount,
		Multiplier: amount / base,
		BaseAmount: base,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	id, err := s.entries.CreateEntry(ctx, entry)
	if err != nil {
		return domain.WriteResult{}, apperrors.NewDatabaseError(err).WithContext("meal_id", mealID)
	}

	return domain.WriteResult{
		ID:            id,
		StreakUpdated: s.streaks.Touch(ctx, userID),
	}, nil
}

// LogNewMeal creates a definition from input and logs an entry against it. If
// the entry cannot be written the new definition is deleted again.
func (s *DiaryService) LogNewMeal(ctx context.Context, userID string, input domain.MealInput, amount float64, category string) (string, domain.WriteResult, error) {
	if userID == "" {
		return "", domain.WriteResult{}, apperrors.NewValidationError("user id is required")
	}
	if !utils.IsPositive(amount) {
		return "", domain.WriteResult{}, apperrors.NewValidationError("amount must be positive")
	}

	mealID, err := s.meals.Create(ctx, input, userID)
	if err != nil {
		return "", domain.WriteResult{}, err
	}

	result, err := s.AddEntry(ctx, userID, mealID, amount, category)
	if err == nil {
		return mealID, result, nil
	}

	if delErr := s.meals.Delete(ctx, mealID); delErr != nil {
		logger.Error("Failed to remove meal after entry write failed",
			"meal_id", mealID, "user_id", userID, "error", delErr)
		return "", domain.WriteResult{}, apperrors.Wrap(errors.Join(err, delErr), apperrors.ErrorTypeDatabase,
			"COMPENSATION_FAILED", fmt.Sprintf("entry not logged and meal %s was left behind", mealID)).
			WithContext("orphaned_meal_id", mealID)
	}
	return "", domain.WriteResult{}, err
}

// ListEntries returns the user's resolved entries newest first. A non-nil day
// restricts the listing to that calendar day.
func (s *DiaryService) ListEntries(ctx context.Context, userID string, day *time.Time) ([]domain.ResolvedEntry, error) {
	if userID == "" {
		return nil, apperrors.NewValidationError("user id is required")
	}

	var from, to *time.Time
	if day != nil {
		start, end := utils.DayRange(day.In(s.loc))
		from, to = &start, &end
	}

	entries, err := s.entries.ListEntries(ctx, userID, from, to)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err).WithContext("user_id", userID)
	}

	meals := make(map[string]*domain.MealDefinition)
	resolved := make([]domain.ResolvedEntry, 0, len(entries))
	for _, entry := range entries {
		meal, seen := meals[entry.MealID]
		if !seen {
			meal, err = s.meals.Get(ctx, entry.MealID)
			if err != nil {
				logger.Warn("Failed to resolve meal for diary entry",
					"entry_id", entry.ID, "meal_id", entry.MealID, "error", err)
				continue
			}
			meals[entry.MealID] = meal
		}

		if meal == nil {
			if s.policy == OrphanSkip {
				logger.Debug("Skipping diary entry with deleted meal", "entry_id", entry.ID, "meal_id", entry.MealID)
				continue
			}
			resolved = append(resolved, domain.ResolvedEntry{
				DiaryEntry: entry,
				Name:       TombstoneName,
				Orphaned:   true,
			})
			continue
		}

		resolved = append(resolved, domain.ResolvedEntry{
			DiaryEntry:  entry,
			Name:        meal.Name,
			ServingUnit: meal.ServingUnit,
			Nutrients:   meal.Nutrients.Scale(entry.Multiplier),
		})
	}
	return resolved, nil
}

// UpdateEntry merges patch into the entry. A new amount recomputes the
// multiplier against the base amount frozen at creation, or the definition's
// current base amount for entries without one.
func (s *DiaryService) UpdateEntry(ctx context.Context, id string, patch domain.DiaryPatch) (domain.WriteResult, error) {
	entry, err := s.getEntry(ctx, id)
	if err != nil {
		return domain.WriteResult{}, err
	}

	if patch.Amount != nil {
		if !utils.IsPositive(*patch.Amount) {
			return domain.WriteResult{}, apperrors.NewValidationError("amount must be positive").
				WithContext("entry_id", id)
		}
		base := entry.BaseAmount
		if base <= 0 {
			meal, err := s.meals.Get(ctx, entry.MealID)
			if err != nil {
				return domain.WriteResult{}, err
			}
			if meal == nil {
				return domain.WriteResult{}, apperrors.NewNotFoundError("meal", entry.MealID)
			}
			base = meal.EffectiveBaseAmount()
		}
		multiplier := *patch.Amount / base
		patch.Multiplier = &multiplier
	}
	if patch.Category != nil {
		category := domain.NormalizeCategory(*patch.Category)
		patch.Category = &category
	}
	patch.UpdatedAt = s.now()

	err = s.entries.UpdateEntry(ctx, id, patch)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.WriteResult{}, apperrors.NewNotFoundError("entry", id)
	}
	if err != nil {
		return domain.WriteResult{}, apperrors.NewDatabaseError(err).WithContext("entry_id", id)
	}

	return domain.WriteResult{
		ID:            id,
		StreakUpdated: s.streaks.Touch(ctx, entry.UserID),
	}, nil
}

// DeleteEntry removes the entry; its meal definition is kept
func (s *DiaryService) DeleteEntry(ctx context.Context, id string) error {
	if err := s.entries.DeleteEntry(ctx, id); err != nil {
		return apperrors.NewDatabaseError(err).WithContext("entry_id", id)
	}
	return nil
}

// GetEntry returns the stored entry
func (s *DiaryService) GetEntry(ctx context.Context, id string) (*domain.DiaryEntry, error) {
	return s.getEntry(ctx, id)
}

// RenameEntryMeal renames the meal definition behind an entry. Names live on
// definitions, so every entry referencing it shows the new name.
func (s *DiaryService) RenameEntryMeal(ctx context.Context, entryID, name, updatedBy string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return apperrors.NewValidationError("meal name is required")
	}

	entry, err := s.getEntry(ctx, entryID)
	if err != nil {
		return err
	}

	patch := domain.MealPatch{Name: &name}
	if updatedBy != "" {
		patch.UpdatedBy = &updatedBy
	}
	return s.meals.Update(ctx, entry.MealID, patch)
}

// GroupByCategory partitions a day's entries by category. Every known
// category is present in the result, possibly with no entries.
func (s *DiaryService) GroupByCategory(ctx context.Context, userID string, day time.Time) (map[string][]domain.ResolvedEntry, error) {
	entries, err := s.ListEntries(ctx, userID, &day)
	if err != nil {
		return nil, err
	}

	groups := make(map[string][]domain.ResolvedEntry, len(domain.Categories))
	for _, c := range domain.Categories {
		groups[c] = []domain.ResolvedEntry{}
	}
	for _, e := range entries {
		c := domain.NormalizeCategory(e.Category)
		groups[c] = append(groups[c], e)
	}
	return groups, nil
}

// DailyTotals sums the scaled nutrients of a day's entries
func (s *DiaryService) DailyTotals(ctx context.Context, userID string, day time.Time) (domain.Nutrients, error) {
	entries, err := s.ListEntries(ctx, userID, &day)
	if err != nil {
		return domain.Nutrients{}, err
	}

	var total domain.Nutrients
	for _, e := range entries {
		total = total.Add(e.Nutrients)
	}
	return total, nil
}

func (s *DiaryService) getEntry(ctx context.Context, id string) (*domain.DiaryEntry, error) {
	if id == "" {
		return nil, apperrors.NewValidationError("entry id is required")
	}
	entry, err := s.entries.GetEntry(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, apperrors.NewNotFoundError("entry", id)
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError(err).WithContext("entry_id", id)
	}
	return entry, nil
}
