package fooddata

// Fixed payloads served when the FDC API is unavailable or no key is configured.

var mockSearchResults = []FoodSummary{
	{FdcID: "171688", Description: "Apples, raw, with skin", DataType: "SR Legacy"},
	{FdcID: "173944", Description: "Bananas, raw", DataType: "SR Legacy"},
	{FdcID: "171077", Description: "Chicken, broilers or fryers, breast, meat only, cooked, roasted", DataType: "SR Legacy"},
}

const mockFoodPayload = `{
  "fdcId": 171688,
  "description": "Apples, raw, with skin",
  "dataType": "SR Legacy",
  "servingSize": 100,
  "servingSizeUnit": "g",
  "foodNutrients": [
    {"nutrient": {"id": 1008, "name": "Energy", "unitName": "kcal"}, "amount": 52},
    {"nutrient": {"id": 1003, "name": "Protein", "unitName": "g"}, "amount": 0.26},
    {"nutrient": {"id": 1004, "name": "Total lipid (fat)", "unitName": "g"}, "amount": 0.17},
    {"nutrient": {"id": 1005, "name": "Carbohydrate, by difference", "unitName": "g"}, "amount": 13.8},
    {"nutrient": {"id": 1079, "name": "Fiber, total dietary", "unitName": "g"}, "amount": 2.4},
    {"nutrient": {"id": 2000, "name": "Sugars, total including NLEA", "unitName": "g"}, "amount": 10.4},
    {"nutrient": {"id": 1093, "name": "Sodium, Na", "unitName": "mg"}, "amount": 1},
    {"nutrient": {"id": 1253, "name": "Cholesterol", "unitName": "mg"}, "amount": 0}
  ]
}`

// MockSearchResults returns a copy of the fixed search payload
func MockSearchResults() []FoodSummary {
	out := make([]FoodSummary, len(mockSearchResults))
	copy(out, mockSearchResults)
	return out
}

// MockFood returns the fixed detail payload
func MockFood() *Food {
	return ParseFood([]byte(mockFoodPayload))
}
