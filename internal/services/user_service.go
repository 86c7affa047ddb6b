package services

import (
	"context"
	"errors"
	"time"

	"github.com/vladimiradmaev/nutrition-diary/internal/domain"
	apperrors "github.com/vladimiradmaev/nutrition-diary/internal/errors"
)

const DefaultCalorieGoal = 2000

type UserService struct {
	repo domain.UserRepository
	loc  *time.Location
	now  func() time.Time
}

func NewUserService(repo domain.UserRepository, loc *time.Location) *UserService {
	if loc == nil {
		loc = time.Local
	}
	return &UserService{repo: repo, loc: loc, now: time.Now}
}

// SetClock replaces the time source
func (s *UserService) SetClock(now func() time.Time) {
	s.now = now
}

// Register returns the user's profile, creating it with defaults on first contact
func (s *UserService) Register(ctx context.Context, userID, username, displayName string) (*domain.UserProfile, error) {
	if userID == "" {
		return nil, apperrors.NewValidationError("user id is required")
	}

	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	user = &domain.UserProfile{
		UserID:      userID,
		Username:    username,
		DisplayName: displayName,
	}
	MergeProfileDefaults(user, s.loc, s.now())
	if err := s.repo.SaveUser(ctx, user); err != nil {
		return nil, apperrors.NewDatabaseError(err).WithContext("user_id", userID)
	}
	return user, nil
}

// Get returns the profile, or nil when the user is unknown
func (s *UserService) Get(ctx context.Context, userID string) (*domain.UserProfile, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError(err).WithContext("user_id", userID)
	}
	return user, nil
}

// MergeProfileDefaults fills the empty settings of user. It reports whether
// anything changed.
func MergeProfileDefaults(user *domain.UserProfile, loc *time.Location, now time.Time) bool {
	changed := false
	if user.DailyCalorieGoal <= 0 {
		user.DailyCalorieGoal = DefaultCalorieGoal
		changed = true
	}
	if user.WeightUnit == "" {
		user.WeightUnit = DefaultWeightUnit
		changed = true
	}
	if user.Timezone == "" && loc != nil {
		user.Timezone = loc.String()
		changed = true
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
		changed = true
	}
	if changed {
		user.UpdatedAt = now
	}
	return changed
}
