// Package nutrients turns external food-facts records of varying shape into the
// canonical nutrient bundle.
package nutrients

import (
	"strings"

	"github.com/tidwall/gjson"
	"github.com/vladimiradmaev/nutrition-diary/internal/domain"
)

// FoodData Central nutrient ids
const (
	IDProtein         = 1003
	IDTotalFat        = 1004
	IDCarbohydrate    = 1005
	IDEnergy          = 1008
	IDSugars          = 1063
	IDFiber           = 1079
	IDSodium          = 1093
	IDCholesterol     = 1253
	IDSugarsTotal     = 2000
	IDEnergyAtwaterG  = 2047
	IDEnergyAtwaterSp = 2048
)

type field int

const (
	fieldNone field = iota
	fieldCalories
	fieldProtein
	fieldFat
	fieldCarbs
	fieldFiber
	fieldSugar
	fieldSodium
	fieldCholesterol
)

var idTable = map[int64]field{
	IDEnergy:          fieldCalories,
	IDEnergyAtwaterG:  fieldCalories,
	IDEnergyAtwaterSp: fieldCalories,
	IDProtein:         fieldProtein,
	IDTotalFat:        fieldFat,
	IDCarbohydrate:    fieldCarbs,
	IDFiber:           fieldFiber,
	IDSugars:          fieldSugar,
	IDSugarsTotal:     fieldSugar,
	IDSodium:          fieldSodium,
	IDCholesterol:     fieldCholesterol,
}

// Nutrient is one normalized entry of a food's nutrient list
type Nutrient struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// Bundle is the canonical nutrient set plus every identifiable nutrient
type Bundle struct {
	domain.Nutrients
	All []Nutrient `json:"allNutrients"`
}

type rawNutrient struct {
	Nutrient
	hasID bool
}

// Extract reads the foodNutrients (or nutrients) list of an FDC-like record. It never
// fails: absent or unrecognized data yields zero values. Within the list, a later
// match for a canonical field overwrites an earlier one.
func Extract(record []byte) Bundle {
	var bundle Bundle
	if !gjson.ValidBytes(record) {
		return bundle
	}

	list := gjson.GetBytes(record, "foodNutrients")
	if !list.Exists() {
		list = gjson.GetBytes(record, "nutrients")
	}
	if !list.IsArray() {
		return bundle
	}

	entries := make([]rawNutrient, 0, len(list.Array()))
	list.ForEach(func(_, item gjson.Result) bool {
		n := normalize(item)
		entries = append(entries, n)
		if n.hasID && n.Name != "" {
			bundle.All = append(bundle.All, n.Nutrient)
		}
		return true
	})

	for _, n := range entries {
		var f field
		if n.hasID {
			f = idTable[n.ID]
		} else {
			f = matchName(n.Name)
		}
		bundle.set(f, n.Value)
	}

	return bundle
}

// normalize accepts {nutrient:{id,name,unitName}, amount} and the flattened
// {nutrientId, nutrientName, value, unitName} shape.
func normalize(item gjson.Result) rawNutrient {
	var n rawNutrient

	id := item.Get("nutrient.id")
	if !id.Exists() {
		id = item.Get("nutrientId")
	}
	if id.Exists() && id.Type != gjson.Null {
		n.ID = id.Int()
		n.hasID = true
	}

	n.Name = firstString(item, "nutrient.name", "nutrientName", "name")
	n.Unit = firstString(item, "nutrient.unitName", "unitName", "unit")

	value := item.Get("amount")
	if !value.Exists() {
		value = item.Get("value")
	}
	n.Value = value.Float()

	return n
}

func firstString(item gjson.Result, paths ...string) string {
	for _, p := range paths {
		if v := item.Get(p); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return ""
}

// matchName is the case-sensitive fallback for entries without an id
func matchName(name string) field {
	switch {
	case strings.Contains(name, "Energy") || strings.Contains(name, "Calorie"):
		return fieldCalories
	case strings.Contains(name, "Protein"):
		return fieldProtein
	case strings.Contains(name, "Total lipid") || (strings.Contains(name, "Fat") && !strings.Contains(name, "Fatty")):
		return fieldFat
	case strings.Contains(name, "Carbohydrate"):
		return fieldCarbs
	case strings.Contains(name, "Fiber"):
		return fieldFiber
	case strings.Contains(name, "Sugar"):
		return fieldSugar
	case strings.Contains(name, "Sodium"):
		return fieldSodium
	case strings.Contains(name, "Cholesterol"):
		return fieldCholesterol
	}
	return fieldNone
}

func (b *Bundle) set(f field, v float64) {
	switch f {
	case fieldCalories:
		b.Calories = v
	case fieldProtein:
		b.Protein = v
	case fieldFat:
		b.Fat = v
	case fieldCarbs:
		b.Carbs = v
	case fieldFiber:
		b.Fiber = v
	case fieldSugar:
		b.Sugar = v
	case fieldSodium:
		b.Sodium = v
	case fieldCholesterol:
		b.Cholesterol = v
	}
}
