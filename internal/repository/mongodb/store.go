// Package mongodb implements the repository contracts on MongoDB collections.
package mongodb

import (
	"errors"
	"fmt"
	"time"

	"github.com/vladimiradmaev/nutrition-diary/internal/database"
	"github.com/vladimiradmaev/nutrition-diary/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store serves every repository contract from one database
type Store struct {
	db  *mongo.Database
	loc *time.Location
}

var _ domain.MealRepository = (*Store)(nil)
var _ domain.DiaryRepository = (*Store)(nil)
var _ domain.MetricRepository = (*Store)(nil)
var _ domain.StreakRepository = (*Store)(nil)
var _ domain.CachedFoodRepository = (*Store)(nil)
var _ domain.UserRepository = (*Store)(nil)
var _ domain.LegacyMealRepository = (*Store)(nil)

// New wraps db; loc is used to read zone-less date strings
func New(db *mongo.Database, loc *time.Location) *Store {
	if loc == nil {
		loc = time.Local
	}
	return &Store{db: db, loc: loc}
}

func (s *Store) meals() *mongo.Collection { return s.db.Collection(database.CollectionMeals) }

func (s *Store) userMeals() *mongo.Collection { return s.db.Collection(database.CollectionUserMeals) }

func (s *Store) userMetrics() *mongo.Collection {
	return s.db.Collection(database.CollectionUserMetrics)
}

func (s *Store) userStreaks() *mongo.Collection {
	return s.db.Collection(database.CollectionUserStreaks)
}

func (s *Store) cachedFoods() *mongo.Collection {
	return s.db.Collection(database.CollectionCachedFoods)
}

func (s *Store) users() *mongo.Collection { return s.db.Collection(database.CollectionUsers) }

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, domain.ErrNotFound)
}

// objectID parses a hex id; malformed ids cannot exist and read as not found
func objectID(kind, id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, notFound(kind, id)
	}
	return oid, nil
}

func translate(err error, kind, id string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return notFound(kind, id)
	}
	return err
}

func insertedID(res *mongo.InsertOneResult) string {
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		return oid.Hex()
	}
	return fmt.Sprint(res.InsertedID)
}
