package domain

import (
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned (wrapped) by repositories for missing documents
var ErrNotFound = errors.New("document not found")

// Meal definition sources
const (
	SourceUserCreated = "user-created"
	SourceSystem      = "system"
	SourceMigrated    = "migrated"
	SourceUSDA        = "usda"
)

// DefaultBaseAmount is used when a definition has no positive base amount
const DefaultBaseAmount = 100.0

// SourceDetails identifies where a meal definition came from
type SourceDetails struct {
	FdcID    string `json:"fdcId,omitempty"`
	DataType string `json:"dataType,omitempty"`
	LegacyID string `json:"legacyId,omitempty"`
}

// MealDefinition is the nutrition profile of a food per BaseAmount ServingUnit
type MealDefinition struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	BaseAmount    float64       `json:"baseAmount"`
	ServingUnit   string        `json:"servingUnit"`
	Nutrients     Nutrients     `json:"nutrients"`
	Source        string        `json:"source"`
	SourceDetails SourceDetails `json:"sourceDetails"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
	CreatedBy     *string       `json:"createdBy"`
	UpdatedBy     *string       `json:"updatedBy"`
}

// EffectiveBaseAmount returns BaseAmount, or DefaultBaseAmount when it is not positive
func (m *MealDefinition) EffectiveBaseAmount() float64 {
	if m.BaseAmount > 0 {
		return m.BaseAmount
	}
	return DefaultBaseAmount
}

// MealInput carries caller-supplied fields for a new definition
type MealInput struct {
	Name          string
	BaseAmount    float64
	ServingUnit   string
	Nutrients     Nutrients
	Source        string
	SourceDetails SourceDetails
}

// MealPatch is a partial update; nil fields are left untouched
type MealPatch struct {
	Name        *string
	BaseAmount  *float64
	ServingUnit *string
	Calories    *float64
	Protein     *float64
	Carbs       *float64
	Fat         *float64
	Fiber       *float64
	Sugar       *float64
	Sodium      *float64
	Cholesterol *float64
	UpdatedBy   *string
	UpdatedAt   time.Time
}

// Apply merges the patch into m
func (p MealPatch) Apply(m *MealDefinition) {
	if p.Name != nil {
		m.Name = *p.Name
	}
	if p.BaseAmount != nil {
		m.BaseAmount = *p.BaseAmount
	}
	if p.ServingUnit != nil {
		m.ServingUnit = *p.ServingUnit
	}
	setFloat(&m.Nutrients.Calories, p.Calories)
	setFloat(&m.Nutrients.Protein, p.Protein)
	setFloat(&m.Nutrients.Carbs, p.Carbs)
	setFloat(&m.Nutrients.Fat, p.Fat)
	setFloat(&m.Nutrients.Fiber, p.Fiber)
	setFloat(&m.Nutrients.Sugar, p.Sugar)
	setFloat(&m.Nutrients.Sodium, p.Sodium)
	setFloat(&m.Nutrients.Cholesterol, p.Cholesterol)
	if p.UpdatedBy != nil {
		m.UpdatedBy = p.UpdatedBy
	}
	if !p.UpdatedAt.IsZero() {
		m.UpdatedAt = p.UpdatedAt
	}
}

// DiaryEntry is one logged consumption of a meal definition ("userMeals")
type DiaryEntry struct {
	ID       string    `json:"id"`
	UserID   string    `json:"userId"`
	MealID   string    `json:"mealId"`
	Date     time.Time `json:"date"`
	Category string    `json:"category"`
	Amount   float64   `json:"amount"`
	// Multiplier is Amount / BaseAmount, frozen at write time.
	Multiplier float64 `json:"multiplier"`
	// BaseAmount is the definition's base amount when the entry was created. Zero for
	// entries written before snapshots existed.
	BaseAmount float64   `json:"baseAmount,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// DiaryPatch is a partial entry update
type DiaryPatch struct {
	Amount     *float64
	Multiplier *float64
	Category   *string
	Date       *time.Time
	UpdatedAt  time.Time
}

// Apply merges the patch into e
func (p DiaryPatch) Apply(e *DiaryEntry) {
	setFloat(&e.Amount, p.Amount)
	setFloat(&e.Multiplier, p.Multiplier)
	if p.Category != nil {
		e.Category = *p.Category
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if !p.UpdatedAt.IsZero() {
		e.UpdatedAt = p.UpdatedAt
	}
}

// ResolvedEntry is a diary entry joined with its meal definition and scaled
type ResolvedEntry struct {
	DiaryEntry
	Name        string    `json:"name"`
	ServingUnit string    `json:"servingUnit"`
	Nutrients   Nutrients `json:"nutrients"`
	Orphaned    bool      `json:"orphaned,omitempty"`
}

// MetricType enumerates metric kinds
type MetricType string

const (
	MetricWeight   MetricType = "weight"
	MetricSleep    MetricType = "sleep"
	MetricExercise MetricType = "exercise"
)

// Valid reports whether t is a known metric type
func (t MetricType) Valid() bool {
	switch t {
	case MetricWeight, MetricSleep, MetricExercise:
		return true
	}
	return false
}

// MetricDetails holds the type-specific payload of a metric. Only the fields of
// the metric's type are set.
type MetricDetails struct {
	// weight
	Unit string `json:"unit,omitempty"`
	// sleep
	Bedtime string `json:"bedtime,omitempty"`
	Wakeup  string `json:"wakeup,omitempty"`
	Quality int    `json:"quality,omitempty"`
	// exercise
	Category  string  `json:"category,omitempty"`
	Intensity string  `json:"intensity,omitempty"`
	Calories  float64 `json:"calories,omitempty"`
	Duration  float64 `json:"duration,omitempty"`
}

// UserMetric is a dated weight, sleep or exercise observation
type UserMetric struct {
	ID     string     `json:"id"`
	UserID string     `json:"userId"`
	Type   MetricType `json:"type"`
	// Date is nil when the stored value could not be parsed.
	Date      *time.Time    `json:"date"`
	Value     float64       `json:"value"`
	Details   MetricDetails `json:"details"`
	CreatedAt time.Time     `json:"createdAt"`
}

// MetricPatch is a partial metric update
type MetricPatch struct {
	Value   *float64
	Date    *time.Time
	Details *MetricDetails
}

// Apply merges the patch into m
func (p MetricPatch) Apply(m *UserMetric) {
	setFloat(&m.Value, p.Value)
	if p.Date != nil {
		d := *p.Date
		m.Date = &d
	}
	if p.Details != nil {
		m.Details = *p.Details
	}
}

// MetricQuery filters metric listings; zero values mean "any"
type MetricQuery struct {
	UserID string
	Type   MetricType
	From   *time.Time
	To     *time.Time
}

// UserStreak is the per-user consecutive-day activity counter
type UserStreak struct {
	UserID        string `json:"userId"`
	CurrentStreak int    `json:"currentStreak"`
	LongestStreak int    `json:"longestStreak"`
	// LastActive is the truncated day of the last activity; nil when missing or malformed.
	LastActive *time.Time `json:"lastActive"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// CachedFood mirrors an external food-facts record
type CachedFood struct {
	ID          string          `json:"id"`
	FoodID      string          `json:"foodId"`
	Description string          `json:"description"`
	Payload     json.RawMessage `json:"payload"`
	CachedAt    time.Time       `json:"cachedAt"`
}

// UserProfile is the users collection document
type UserProfile struct {
	UserID           string    `json:"userId"`
	Username         string    `json:"username"`
	DisplayName      string    `json:"displayName"`
	DailyCalorieGoal int       `json:"dailyCalorieGoal"`
	WeightUnit       string    `json:"weightUnit"`
	Timezone         string    `json:"timezone"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// LegacyMeal is a combined definition+consumption document from the old schema
type LegacyMeal struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	Name        string     `json:"name"`
	Date        *time.Time `json:"date"`
	Category    string     `json:"category"`
	Amount      float64    `json:"amount"`
	ServingUnit string     `json:"servingUnit"`
	Nutrients   Nutrients  `json:"nutrients"`
}

// WriteResult reports the outcome of a primary write and its streak side effect
type WriteResult struct {
	ID            string `json:"id"`
	StreakUpdated bool   `json:"streakUpdated"`
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}
