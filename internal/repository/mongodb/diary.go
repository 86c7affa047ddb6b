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

type entryDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	UserID     string             `bson:"userId"`
	MealID     string             `bson:"mealId"`
	Date       interface{}        `bson:"date"`
	Category   string             `bson:"category"`
	Amount     float64            `bson:"amount"`
	Multiplier float64            `bson:"multiplier"`
	BaseAmount float64            `bson:"baseAmount,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt"`
}

func (s *Store) CreateEntry(ctx context.Context, entry *domain.DiaryEntry) (string, error) {
	doc := entryDoc{
		UserID:     entry.UserID,
		MealID:     entry.MealID,
		Date:       entry.Date,
		Category:   entry.Category,
		Amount:     entry.Amount,
		Multiplier: entry.Multiplier,
		BaseAmount: entry.BaseAmount,
		CreatedAt:  entry.CreatedAt,
		UpdatedAt:  entry.UpdatedAt,
	}
	res, err := s.userMeals().InsertOne(ctx, doc)
	if err != nil {
		return "", err
	}
	return insertedID(res), nil
}

func (s *Store) GetEntry(ctx context.Context, id string) (*domain.DiaryEntry, error) {
	oid, err := objectID("entry", id)
	if err != nil {
		return nil, err
	}
	var doc entryDoc
	if err := s.userMeals().FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, translate(err, "entry", id)
	}
	entry := s.entryFromDoc(doc)
	return &entry, nil
}

func (s *Store) ListEntries(ctx context.Context, userID string, from, to *time.Time) ([]domain.DiaryEntry, error) {
	filter := bson.M{"userId": userID}
	if r := dateRange(from, to); r != nil {
		filter["date"] = r
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: -1}})

	cursor, err := s.userMeals().Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []domain.DiaryEntry
	for cursor.Next(ctx) {
		var doc entryDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		entries = append(entries, s.entryFromDoc(doc))
	}
	return entries, cursor.Err()
}

func (s *Store) UpdateEntry(ctx context.Context, id string, patch domain.DiaryPatch) error {
	oid, err := objectID("entry", id)
	if err != nil {
		return err
	}

	set := bson.M{}
	setValue(set, "amount", patch.Amount)
	setValue(set, "multiplier", patch.Multiplier)
	setValue(set, "category", patch.Category)
	setValue(set, "date", patch.Date)
	if !patch.UpdatedAt.IsZero() {
		set["updatedAt"] = patch.UpdatedAt
	}
	return s.updateOne(ctx, s.userMeals().Name(), "entry", id, oid, set)
}

func (s *Store) DeleteEntry(ctx context.Context, id string) error {
	oid, err := objectID("entry", id)
	if err != nil {
		return nil
	}
	_, err = s.userMeals().DeleteOne(ctx, bson.M{"_id": oid})
	return err
}

func (s *Store) entryFromDoc(doc entryDoc) domain.DiaryEntry {
	entry := domain.DiaryEntry{
		ID:         doc.ID.Hex(),
		UserID:     doc.UserID,
		MealID:     doc.MealID,
		Category:   doc.Category,
		Amount:     doc.Amount,
		Multiplier: doc.Multiplier,
		BaseAmount: doc.BaseAmount,
		CreatedAt:  doc.CreatedAt,
		UpdatedAt:  doc.UpdatedAt,
	}
	date, err := utils.NormalizeTime(doc.Date, s.loc)
	if err != nil {
		logger.Warn("Unreadable diary entry date", "entry_id", entry.ID, "error", err)
		return entry
	}
	entry.Date = *date
	return entry
}

func dateRange(from, to *time.Time) bson.M {
	if from == nil && to == nil {
		return nil
	}
	r := bson.M{}
	if from != nil {
		r["$gte"] = *from
	}
	if to != nil {
		r["$lt"] = *to
	}
	return r
}
