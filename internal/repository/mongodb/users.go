package mongodb

import (
	"context"
	"time"

	"github.com/vladimiradmaev/nutrition-diary/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type userDoc struct {
	UserID           string    `bson:"_id"`
	Username         string    `bson:"username"`
	DisplayName      string    `bson:"displayName"`
	DailyCalorieGoal int       `bson:"dailyCalorieGoal"`
	WeightUnit       string    `bson:"weightUnit"`
	Timezone         string    `bson:"timezone"`
	CreatedAt        time.Time `bson:"createdAt"`
	UpdatedAt        time.Time `bson:"updatedAt"`
}

func (s *Store) GetUser(ctx context.Context, userID string) (*domain.UserProfile, error) {
	var doc userDoc
	if err := s.users().FindOne(ctx, bson.M{"_id": userID}).Decode(&doc); err != nil {
		return nil, translate(err, "user", userID)
	}
	return &domain.UserProfile{
		UserID:           doc.UserID,
		Username:         doc.Username,
		DisplayName:      doc.DisplayName,
		DailyCalorieGoal: doc.DailyCalorieGoal,
		WeightUnit:       doc.WeightUnit,
		Timezone:         doc.Timezone,
		CreatedAt:        doc.CreatedAt,
		UpdatedAt:        doc.UpdatedAt,
	}, nil
}

func (s *Store) SaveUser(ctx context.Context, user *domain.UserProfile) error {
	doc := userDoc{
		UserID:           user.UserID,
		Username:         user.Username,
		DisplayName:      user.DisplayName,
		DailyCalorieGoal: user.DailyCalorieGoal,
		WeightUnit:       user.WeightUnit,
		Timezone:         user.Timezone,
		CreatedAt:        user.CreatedAt,
		UpdatedAt:        user.UpdatedAt,
	}
	_, err := s.users().ReplaceOne(ctx, bson.M{"_id": user.UserID}, doc, options.Replace().SetUpsert(true))
	return err
}
