package mongodb

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vladimiradmaev/nutrition-diary/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// cachedFoodDoc mirrors the upstream payload as a nested document so it stays
// queryable
type cachedFoodDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	FoodID      string             `bson:"foodId"`
	Description string             `bson:"description"`
	Payload     bson.Raw           `bson:"payload"`
	CachedAt    time.Time          `bson:"cachedAt"`
}

func (s *Store) FindCachedFood(ctx context.Context, foodID string) (*domain.CachedFood, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "cachedAt", Value: 1}})
	var doc cachedFoodDoc
	if err := s.cachedFoods().FindOne(ctx, bson.M{"foodId": foodID}, opts).Decode(&doc); err != nil {
		return nil, translate(err, "cached food", foodID)
	}

	payload, err := bson.MarshalExtJSON(doc.Payload, false, false)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cached payload for %s: %w", foodID, err)
	}
	return &domain.CachedFood{
		ID:          doc.ID.Hex(),
		FoodID:      doc.FoodID,
		Description: doc.Description,
		Payload:     json.RawMessage(payload),
		CachedAt:    doc.CachedAt,
	}, nil
}

func (s *Store) CreateCachedFood(ctx context.Context, food *domain.CachedFood) error {
	var payload bson.Raw
	if err := bson.UnmarshalExtJSON(food.Payload, false, &payload); err != nil {
		return fmt.Errorf("failed to decode payload for %s: %w", food.FoodID, err)
	}

	_, err := s.cachedFoods().InsertOne(ctx, cachedFoodDoc{
		FoodID:      food.FoodID,
		Description: food.Description,
		Payload:     payload,
		CachedAt:    food.CachedAt,
	})
	return err
}
