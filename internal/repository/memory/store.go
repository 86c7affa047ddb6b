// Package memory is an in-process implementation of every repository contract.
// It is safe for concurrent use and backs tests and STORE_DRIVER=memory.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vladimiradmaev/nutrition-diary/internal/domain"
)

// Store holds every collection in maps keyed by document id
type Store struct {
	mu          sync.RWMutex
	meals       map[string]domain.MealDefinition
	entries     map[string]domain.DiaryEntry
	metrics     map[string]domain.UserMetric
	streaks     map[string]domain.UserStreak
	cachedFoods []domain.CachedFood
	users       map[string]domain.UserProfile
	legacy      map[string]domain.LegacyMeal
	faults      map[string]error
	now         func() time.Time
}

var _ domain.MealRepository = (*Store)(nil)
var _ domain.DiaryRepository = (*Store)(nil)
var _ domain.MetricRepository = (*Store)(nil)
var _ domain.StreakRepository = (*Store)(nil)
var _ domain.CachedFoodRepository = (*Store)(nil)
var _ domain.UserRepository = (*Store)(nil)
var _ domain.LegacyMealRepository = (*Store)(nil)

// New creates an empty store
func New() *Store {
	return &Store{
		meals:   make(map[string]domain.MealDefinition),
		entries: make(map[string]domain.DiaryEntry),
		metrics: make(map[string]domain.UserMetric),
		streaks: make(map[string]domain.UserStreak),
		users:   make(map[string]domain.UserProfile),
		legacy:  make(map[string]domain.LegacyMeal),
		faults:  make(map[string]error),
		now:     time.Now,
	}
}

// Fail makes every call of the named method return err until cleared with a nil err
func (s *Store) Fail(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.faults, method)
		return
	}
	s.faults[method] = err
}

func (s *Store) faultLocked(method string) error {
	return s.faults[method]
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, domain.ErrNotFound)
}

// MealRepository -------------------------------------------------------------

func (s *Store) CreateMeal(_ context.Context, meal *domain.MealDefinition) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.faultLocked("CreateMeal"); err != nil {
		return "", err
	}

	m := cloneMeal(*meal)
	m.ID = uuid.NewString()
	now := s.now()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = now
	}
	s.meals[m.ID] = m
	return m.ID, nil
}

func (s *Store) GetMeal(_ context.Context, id string) (*domain.MealDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.faultLocked("GetMeal"); err != nil {
		return nil, err
	}

	m, ok := s.meals[id]
	if !ok {
		return nil, notFound("meal", id)
	}
	out := cloneMeal(m)
	return &out, nil
}

func (s *Store) UpdateMeal(_ context.Context, id string, patch domain.MealPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.faultLocked("UpdateMeal"); err != nil {
		return err
	}

	m, ok := s.meals[id]
	if !ok {
		return notFound("meal", id)
	}
	patch.Apply(&m)
	s.meals[id] = cloneMeal(m)
	return nil
}

func (s *Store) DeleteMeal(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.faultLocked("DeleteMeal"); err != nil {
		return err
	}
	delete(s.meals, id)
	return nil
}

func (s *Store) FindMealByFdcID(_ context.Context, fdcID string) (*domain.MealDefinition, error) {
	return s.findMeal("FindMealByFdcID", fdcID, func(m domain.MealDefinition) bool {
		return m.SourceDetails.FdcID == fdcID
	})
}

func (s *Store) FindMealByName(_ context.Context, name string) (*domain.MealDefinition, error) {
	return s.findMeal("FindMealByName", name, func(m domain.MealDefinition) bool {
		return m.Name == name
	})
}

func (s *Store) FindMealByLegacyID(_ context.Context, legacyID string) (*domain.MealDefinition, error) {
	return s.findMeal("FindMealByLegacyID", legacyID, func(m domain.MealDefinition) bool {
		return m.SourceDetails.LegacyID == legacyID
	})
}

// findMeal returns the oldest matching definition
func (s *Store) findMeal(method, key string, match func(domain.MealDefinition) bool) (*domain.MealDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.faultLocked(method); err != nil {
		return nil, err
	}
	if key == "" {
		return nil, notFound("meal", key)
	}

	var found *domain.MealDefinition
	for _, m := range s.meals {
		if !match(m) {
			continue
		}
		if found == nil || m.CreatedAt.Before(found.CreatedAt) {
			c := cloneMeal(m)
			found = &c
		}
	}
	if found == nil {
		return nil, notFound("meal", key)
	}
	return found, nil
}

// DiaryRepository ------------------------------------------------------------

func (s *Store) CreateEntry(_ context.Context, entry *domain.DiaryEntry) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.faultLocked("CreateEntry"); err != nil {
		return "", err
	}

	e := *entry
	e.ID = uuid.NewString()
	now := s.now()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = now
	}
	s.entries[e.ID] = e
	return e.ID, nil
}

func (s *Store) GetEntry(_ context.Context, id string) (*domain.DiaryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.faultLocked("GetEntry"); err != nil {
		return nil, err
	}

	e, ok := s.entries[id]
	if !ok {
		return nil, notFound("entry", id)
	}
	return &e, nil
}

func (s *Store) ListEntries(_ context.Context, userID string, from, to *time.Time) ([]domain.DiaryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.faultLocked("ListEntries"); err != nil {
		return nil, err
	}

	var out []domain.DiaryEntry
	for _, e := range s.entries {
		if e.UserID != userID || !inRange(e.Date, from, to) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Store) UpdateEntry(_ context.Context, id string, patch domain.DiaryPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.faultLocked("UpdateEntry"); err != nil {
		return err
	}

	e, ok := s.entries[id]
	if !ok {
		return notFound("entry", id)
	}
	patch.Apply(&e)
	s.entries[id] = e
	return nil
}

func (s *Store) DeleteEntry(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.faultLocked("DeleteEntry"); err != nil {
		return err
	}
	delete(s.entries, id)
	return nil
}

// MetricRepository -----------------------------------------------------------

func (s *Store) CreateMetric(_ context.Context, metric *domain.UserMetric) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.faultLocked("CreateMetric"); err != nil {
		return "", err
	}

	m := cloneMetric(*metric)
	m.ID = uuid.NewString()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = s.now()
	}
	s.metrics[m.ID] = m
	return m.ID, nil
}

func (s *Store) GetMetric(_ context.Context, id string) (*domain.UserMetric, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.faultLocked("GetMetric"); err != nil {
		return nil, err
	}

	m, ok := s.metrics[id]
	if !ok {
		return nil, notFound("metric", id)
	}
	out := cloneMetric(m)
	return &out, nil
}

func (s *Store) ListMetrics(_ context.Context, query domain.MetricQuery) ([]domain.UserMetric, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.faultLocked("ListMetrics"); err != nil {
		return nil, err
	}

	var out []domain.UserMetric
	for _, m := range s.metrics {
		if m.UserID != query.UserID {
			continue
		}
		if query.Type != "" && m.Type != query.Type {
			continue
		}
		if query.From != nil || query.To != nil {
			if m.Date == nil || !inRange(*m.Date, query.From, query.To) {
				continue
			}
		}
		out = append(out, cloneMetric(m))
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Date, out[j].Date
		switch {
		case a == nil && b == nil:
			return out[i].ID > out[j].ID
		case a == nil:
			return false
		case b == nil:
			return true
		case !a.Equal(*b):
			return a.After(*b)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Store) UpdateMetric(_ context.Context, id string, patch domain.MetricPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.faultLocked("UpdateMetric"); err != nil {
		return err
	}

	m, ok := s.metrics[id]
	if !ok {
		return notFound("metric", id)
	}
	patch.Apply(&m)
	s.metrics[id] = cloneMetric(m)
	return nil
}

func (s *Store) DeleteMetric(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.faultLocked("DeleteMetric"); err != nil {
		return err
	}
	delete(s.metrics, id)
	return nil
}

// StreakRepository -----------------------------------------------------------

func (s *Store) GetStreak(_ context.Context, userID string) (*domain.UserStreak, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.faultLocked("GetStreak"); err != nil {
		return nil, err
	}

	st, ok := s.streaks[userID]
	if !ok {
		return nil, notFound("streak", userID)
	}
	out := cloneStreak(st)
	return &out, nil
}

func (s *Store) SaveStreak(_ context.Context, streak *domain.UserStreak) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.faultLocked("SaveStreak"); err != nil {
		return err
	}
	s.streaks[streak.UserID] = cloneStreak(*streak)
	return nil
}

// CachedFoodRepository -------------------------------------------------------

func (s *Store) FindCachedFood(_ context.Context, foodID string) (*domain.CachedFood, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.faultLocked("FindCachedFood"); err != nil {
		return nil, err
	}

	for _, f := range s.cachedFoods {
		if f.FoodID == foodID {
			out := f
			out.Payload = bytes.Clone(f.Payload)
			return &out, nil
		}
	}
	return nil, notFound("cached food", foodID)
}

func (s *Store) CreateCachedFood(_ context.Context, food *domain.CachedFood) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.faultLocked("CreateCachedFood"); err != nil {
		return err
	}

	f := *food
	f.ID = uuid.NewString()
	f.Payload = bytes.Clone(food.Payload)
	s.cachedFoods = append(s.cachedFoods, f)
	return nil
}

// CachedFoodCount returns the number of cache rows for foodID
func (s *Store) CachedFoodCount(foodID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, f := range s.cachedFoods {
		if f.FoodID == foodID {
			n++
		}
	}
	return n
}

// UserRepository -------------------------------------------------------------

func (s *Store) GetUser(_ context.Context, userID string) (*domain.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.faultLocked("GetUser"); err != nil {
		return nil, err
	}

	u, ok := s.users[userID]
	if !ok {
		return nil, notFound("user", userID)
	}
	return &u, nil
}

func (s *Store) SaveUser(_ context.Context, user *domain.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.faultLocked("SaveUser"); err != nil {
		return err
	}
	s.users[user.UserID] = *user
	return nil
}

// LegacyMealRepository -------------------------------------------------------

func (s *Store) ListLegacyMeals(_ context.Context, userID string) ([]domain.LegacyMeal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.faultLocked("ListLegacyMeals"); err != nil {
		return nil, err
	}

	var out []domain.LegacyMeal
	for _, m := range s.legacy {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return strings.Compare(out[i].ID, out[j].ID) < 0 })
	return out, nil
}

// AddLegacyMeal seeds a legacy document and returns its id
func (s *Store) AddLegacyMeal(meal domain.LegacyMeal) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if meal.ID == "" {
		meal.ID = uuid.NewString()
	}
	s.legacy[meal.ID] = meal
	return meal.ID
}

// helpers --------------------------------------------------------------------

func inRange(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && !t.Before(*to) {
		return false
	}
	return true
}

func cloneMeal(m domain.MealDefinition) domain.MealDefinition {
	m.CreatedBy = cloneString(m.CreatedBy)
	m.UpdatedBy = cloneString(m.UpdatedBy)
	return m
}

func cloneMetric(m domain.UserMetric) domain.UserMetric {
	if m.Date != nil {
		d := *m.Date
		m.Date = &d
	}
	return m
}

func cloneStreak(s domain.UserStreak) domain.UserStreak {
	if s.LastActive != nil {
		d := *s.LastActive
		s.LastActive = &d
	}
	return s
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
