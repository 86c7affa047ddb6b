package mongodb

import (
	"context"
	"time"

	"github.com/vladimiradmaev/nutrition-diary/internal/domain"
	"github.com/vladimiradmaev/nutrition-diary/internal/logger"
	"github.com/vladimiradmaev/nutrition-diary/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// streakDoc holds one user's streak. The document is matched on userId; _id is
// left to the server so rows written by other clients keep their own ids.
type streakDoc struct {
	ID            interface{} `bson:"_id,omitempty"`
	UserID        string      `bson:"userId"`
	CurrentStreak int         `bson:"currentStreak"`
	LongestStreak int         `bson:"longestStreak"`
	LastActive    interface{} `bson:"lastActive"`
	UpdatedAt     time.Time   `bson:"updatedAt"`
}

func (s *Store) GetStreak(ctx context.Context, userID string) (*domain.UserStreak, error) {
	var doc streakDoc
	if err := s.userStreaks().FindOne(ctx, bson.M{"userId": userID}).Decode(&doc); err != nil {
		return nil, translate(err, "streak", userID)
	}
	return s.streakFromDoc(doc), nil
}

// SaveStreak replaces the document; concurrent writers are last-write-wins
func (s *Store) SaveStreak(ctx context.Context, streak *domain.UserStreak) error {
	_, err := s.userStreaks().ReplaceOne(ctx, bson.M{"userId": streak.UserID}, streakToDoc(streak), options.Replace().SetUpsert(true))
	return err
}

func streakToDoc(streak *domain.UserStreak) streakDoc {
	doc := streakDoc{
		UserID:        streak.UserID,
		CurrentStreak: streak.CurrentStreak,
		LongestStreak: streak.LongestStreak,
		UpdatedAt:     streak.UpdatedAt,
	}
	if streak.LastActive != nil {
		doc.LastActive = *streak.LastActive
	}
	return doc
}

func (s *Store) streakFromDoc(doc streakDoc) *domain.UserStreak {
	streak := &domain.UserStreak{
		UserID:        doc.UserID,
		CurrentStreak: doc.CurrentStreak,
		LongestStreak: doc.LongestStreak,
		UpdatedAt:     doc.UpdatedAt,
	}
	if doc.LastActive != nil {
		lastActive, err := utils.NormalizeTime(doc.LastActive, s.loc)
		if err != nil {
			logger.Warn("Unreadable streak lastActive", "user_id", doc.UserID, "error", err)
		}
		streak.LastActive = lastActive
	}
	return streak
}
