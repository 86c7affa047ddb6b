package mongodb

import (
	"context"
	"time"

	"github.com/vladimiradmaev/nutrition-diary/internal/domain"
	"github.com/vladimiradmaev/nutrition-diary/internal/logger"
	"github.com/vladimiradmaev/nutrition-diary/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type sourceDetailsDoc struct {
	FdcID    string `bson:"fdcId,omitempty"`
	DataType string `bson:"dataType,omitempty"`
	LegacyID string `bson:"legacyId,omitempty"`
}

type mealDoc struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Name          string             `bson:"name"`
	BaseAmount    float64            `bson:"baseAmount"`
	ServingUnit   string             `bson:"servingUnit"`
	Nutrients     domain.Nutrients   `bson:",inline"`
	Source        string             `bson:"source"`
	SourceDetails sourceDetailsDoc   `bson:"sourceDetails"`
	CreatedAt     time.Time          `bson:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt"`
	CreatedBy     *string            `bson:"createdBy"`
	UpdatedBy     *string            `bson:"updatedBy"`
}

// legacyMealDoc is the old combined shape that still lives in the meals
// collection, told apart by its userId field
type legacyMealDoc struct {
	ID          primitive.ObjectID `bson:"_id"`
	UserID      string             `bson:"userId"`
	Name        string             `bson:"name"`
	Date        interface{}        `bson:"date"`
	Category    string             `bson:"category"`
	Amount      float64            `bson:"amount"`
	ServingUnit string             `bson:"servingUnit"`
	Nutrients   domain.Nutrients   `bson:",inline"`
}

func (s *Store) CreateMeal(ctx context.Context, meal *domain.MealDefinition) (string, error) {
	doc := mealDoc{
		Name:        meal.Name,
		BaseAmount:  meal.BaseAmount,
		ServingUnit: meal.ServingUnit,
		Nutrients:   meal.Nutrients,
		Source:      meal.Source,
		SourceDetails: sourceDetailsDoc{
			FdcID:    meal.SourceDetails.FdcID,
			DataType: meal.SourceDetails.DataType,
			LegacyID: meal.SourceDetails.LegacyID,
		},
		CreatedAt: meal.CreatedAt,
		UpdatedAt: meal.UpdatedAt,
		CreatedBy: meal.CreatedBy,
		UpdatedBy: meal.UpdatedBy,
	}
	res, err := s.meals().InsertOne(ctx, doc)
	if err != nil {
		return "", err
	}
	return insertedID(res), nil
}

func (s *Store) GetMeal(ctx context.Context, id string) (*domain.MealDefinition, error) {
	oid, err := objectID("meal", id)
	if err != nil {
		return nil, err
	}
	var doc mealDoc
	if err := s.meals().FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, translate(err, "meal", id)
	}
	return doc.toDomain(), nil
}

func (s *Store) UpdateMeal(ctx context.Context, id string, patch domain.MealPatch) error {
	oid, err := objectID("meal", id)
	if err != nil {
		return err
	}

	set := bson.M{}
	setValue(set, "name", patch.Name)
	setValue(set, "baseAmount", patch.BaseAmount)
	setValue(set, "servingUnit", patch.ServingUnit)
	setValue(set, "calories", patch.Calories)
	setValue(set, "protein", patch.Protein)
	setValue(set, "carbs", patch.Carbs)
	setValue(set, "fat", patch.Fat)
	setValue(set, "fiber", patch.Fiber)
	setValue(set, "sugar", patch.Sugar)
	setValue(set, "sodium", patch.Sodium)
	setValue(set, "cholesterol", patch.Cholesterol)
	setValue(set, "updatedBy", patch.UpdatedBy)
	if !patch.UpdatedAt.IsZero() {
		set["updatedAt"] = patch.UpdatedAt
	}
	return s.updateOne(ctx, s.meals().Name(), "meal", id, oid, set)
}

func (s *Store) DeleteMeal(ctx context.Context, id string) error {
	oid, err := objectID("meal", id)
	if err != nil {
		return nil
	}
	_, err = s.meals().DeleteOne(ctx, bson.M{"_id": oid})
	return err
}

func (s *Store) FindMealByFdcID(ctx context.Context, fdcID string) (*domain.MealDefinition, error) {
	return s.findMeal(ctx, bson.M{"sourceDetails.fdcId": fdcID}, fdcID)
}

func (s *Store) FindMealByName(ctx context.Context, name string) (*domain.MealDefinition, error) {
	return s.findMeal(ctx, bson.M{"name": name, "userId": bson.M{"$exists": false}}, name)
}

func (s *Store) FindMealByLegacyID(ctx context.Context, legacyID string) (*domain.MealDefinition, error) {
	return s.findMeal(ctx, bson.M{"sourceDetails.legacyId": legacyID}, legacyID)
}

func (s *Store) findMeal(ctx context.Context, filter bson.M, key string) (*domain.MealDefinition, error) {
	if key == "" {
		return nil, notFound("meal", key)
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	var doc mealDoc
	if err := s.meals().FindOne(ctx, filter, opts).Decode(&doc); err != nil {
		return nil, translate(err, "meal", key)
	}
	return doc.toDomain(), nil
}

func (s *Store) ListLegacyMeals(ctx context.Context, userID string) ([]domain.LegacyMeal, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := s.meals().Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var meals []domain.LegacyMeal
	for cursor.Next(ctx) {
		var doc legacyMealDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		meal := domain.LegacyMeal{
			ID:          doc.ID.Hex(),
			UserID:      doc.UserID,
			Name:        doc.Name,
			Category:    doc.Category,
			Amount:      doc.Amount,
			ServingUnit: doc.ServingUnit,
			Nutrients:   doc.Nutrients,
		}
		if doc.Date != nil {
			date, err := utils.NormalizeTime(doc.Date, s.loc)
			if err != nil {
				logger.Warn("Unreadable legacy meal date", "legacy_id", meal.ID, "error", err)
			}
			meal.Date = date
		}
		meals = append(meals, meal)
	}
	return meals, cursor.Err()
}

func (d mealDoc) toDomain() *domain.MealDefinition {
	return &domain.MealDefinition{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		BaseAmount:  d.BaseAmount,
		ServingUnit: d.ServingUnit,
		Nutrients:   d.Nutrients,
		Source:      d.Source,
		SourceDetails: domain.SourceDetails{
			FdcID:    d.SourceDetails.FdcID,
			DataType: d.SourceDetails.DataType,
			LegacyID: d.SourceDetails.LegacyID,
		},
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
		CreatedBy: d.CreatedBy,
		UpdatedBy: d.UpdatedBy,
	}
}

func setValue[T any](set bson.M, key string, v *T) {
	if v != nil {
		set[key] = *v
	}
}

func (s *Store) updateOne(ctx context.Context, collection, kind, id string, oid primitive.ObjectID, set bson.M) error {
	coll := s.db.Collection(collection)
	if len(set) == 0 {
		n, err := coll.CountDocuments(ctx, bson.M{"_id": oid})
		if err != nil {
			return err
		}
		if n == 0 {
			return notFound(kind, id)
		}
		return nil
	}

	res, err := coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return notFound(kind, id)
	}
	return nil
}
