package domain

import (
	"math"
	"strings"
)

// Nutrients is the canonical nutrient set of a food or a diary entry
type Nutrients struct {
	Calories    float64 `json:"calories"`
	Protein     float64 `json:"protein"`
	Carbs       float64 `json:"carbs"`
	Fat         float64 `json:"fat"`
	Fiber       float64 `json:"fiber"`
	Sugar       float64 `json:"sugar"`
	Sodium      float64 `json:"sodium"`
	Cholesterol float64 `json:"cholesterol"`
}

// Normalized clamps negatives to zero and applies storage rounding: calories,
// sodium and cholesterol to integers, everything else to one decimal.
func (n Nutrients) Normalized() Nutrients {
	return Nutrients{
		Calories:    math.Round(nonNegative(n.Calories)),
		Protein:     Round1(nonNegative(n.Protein)),
		Carbs:       Round1(nonNegative(n.Carbs)),
		Fat:         Round1(nonNegative(n.Fat)),
		Fiber:       Round1(nonNegative(n.Fiber)),
		Sugar:       Round1(nonNegative(n.Sugar)),
		Sodium:      math.Round(nonNegative(n.Sodium)),
		Cholesterol: math.Round(nonNegative(n.Cholesterol)),
	}
}

// Scale multiplies every field by m and rounds with the same per-field rules as Normalized
func (n Nutrients) Scale(m float64) Nutrients {
	return Nutrients{
		Calories:    math.Round(n.Calories * m),
		Protein:     Round1(n.Protein * m),
		Carbs:       Round1(n.Carbs * m),
		Fat:         Round1(n.Fat * m),
		Fiber:       Round1(n.Fiber * m),
		Sugar:       Round1(n.Sugar * m),
		Sodium:      math.Round(n.Sodium * m),
		Cholesterol: math.Round(n.Cholesterol * m),
	}
}

// Add returns the field-wise sum
func (n Nutrients) Add(o Nutrients) Nutrients {
	return Nutrients{
		Calories:    n.Calories + o.Calories,
		Protein:     Round1(n.Protein + o.Protein),
		Carbs:       Round1(n.Carbs + o.Carbs),
		Fat:         Round1(n.Fat + o.Fat),
		Fiber:       Round1(n.Fiber + o.Fiber),
		Sugar:       Round1(n.Sugar + o.Sugar),
		Sodium:      n.Sodium + o.Sodium,
		Cholesterol: n.Cholesterol + o.Cholesterol,
	}
}

// IsZero reports whether the macro fields carry no information
func (n Nutrients) IsZero() bool {
	return n.Calories == 0 && n.Protein == 0 && n.Carbs == 0 && n.Fat == 0
}

// Round1 rounds to one decimal place
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func nonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return v
}

// Diary categories
const (
	CategoryBreakfast     = "breakfast"
	CategoryLunch         = "lunch"
	CategoryDinner        = "dinner"
	CategorySnack         = "snack"
	CategoryUncategorized = "uncategorized"
)

// Categories lists the diary categories in display order
var Categories = []string{
	CategoryBreakfast,
	CategoryLunch,
	CategoryDinner,
	CategorySnack,
	CategoryUncategorized,
}

// NormalizeCategory trims and lower-cases raw; empty or unknown values become "uncategorized"
func NormalizeCategory(raw string) string {
	c := strings.ToLower(strings.TrimSpace(raw))
	for _, known := range Categories {
		if c == known {
			return c
		}
	}
	return CategoryUncategorized
}
