package services

import (
	"context"
	"errors"
	"time"

	"github.com/vladimiradmaev/nutrition-diary/internal/domain"
	apperrors "github.com/vladimiradmaev/nutrition-diary/internal/errors"
	"github.com/vladimiradmaev/nutrition-diary/internal/logger"
	"github.com/vladimiradmaev/nutrition-diary/internal/utils"
)

// StreakService keeps the consecutive-day activity counter of each user
type StreakService struct {
	repo domain.StreakRepository
	loc  *time.Location
	now  func() time.Time
}

func NewStreakService(repo domain.StreakRepository, loc *time.Location) *StreakService {
	if loc == nil {
		loc = time.Local
	}
	return &StreakService{
		repo: repo,
		loc:  loc,
		now:  time.Now,
	}
}

// SetClock replaces the time source
func (s *StreakService) SetClock(now func() time.Time) {
	s.now = now
}

// Get returns the user's streak, or nil when none has been recorded yet
func (s *StreakService) Get(ctx context.Context, userID string) (*domain.UserStreak, error) {
	streak, err := s.repo.GetStreak(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError(err).WithContext("user_id", userID)
	}
	return streak, nil
}

// Update records activity for today and returns the resulting streak.
//
// The day difference is signed: activity dated before lastActive leaves the
// document untouched. A missing or unreadable lastActive starts over at 1.
func (s *StreakService) Update(ctx context.Context, userID string) (*domain.UserStreak, error) {
	if userID == "" {
		return nil, apperrors.NewValidationError("user id is required")
	}

	now := s.now().In(s.loc)
	today := utils.StartOfDay(now)

	current, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	next := &domain.UserStreak{
		UserID:        userID,
		CurrentStreak: 1,
		LongestStreak: 1,
		LastActive:    &today,
		UpdatedAt:     now,
	}

	if current != nil && current.LastActive != nil {
		diff := utils.DaysBetween(*current.LastActive, today, s.loc)
		switch {
		case diff <= 0:
			return current, nil
		case diff == 1:
			next.CurrentStreak = current.CurrentStreak + 1
		}
	}
	if current != nil && current.LongestStreak > next.CurrentStreak {
		next.LongestStreak = current.LongestStreak
	} else {
		next.LongestStreak = next.CurrentStreak
	}

	if err := s.repo.SaveStreak(ctx, next); err != nil {
		return nil, apperrors.NewDatabaseError(err).WithContext("user_id", userID)
	}
	return next, nil
}

// Touch runs Update as a side effect of another write. Failures are logged and
// reported as false; they never propagate.
func (s *StreakService) Touch(ctx context.Context, userID string) bool {
	if _, err := s.Update(ctx, userID); err != nil {
		logger.Warn("Failed to update streak", "user_id", userID, "error", err)
		return false
	}
	return true
}
