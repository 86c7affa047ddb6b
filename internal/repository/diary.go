package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/vladimiradmaev/nutrition-diary/internal/database"
	"github.com/vladimiradmaev/nutrition-diary/internal/domain"
	"gorm.io/gorm"
)

// DiaryRepository stores diary entries in the user_meals table
type DiaryRepository struct {
	db *gorm.DB
}

var _ domain.DiaryRepository = (*DiaryRepository)(nil)

func NewDiaryRepository(db *gorm.DB) *DiaryRepository {
	return &DiaryRepository{db: db}
}

func (r *DiaryRepository) CreateEntry(ctx context.Context, entry *domain.DiaryEntry) (string, error) {
	row := database.UserMeal{
		ID:         uuid.NewString(),
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
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return "", err
	}
	return row.ID, nil
}

func (r *DiaryRepository) GetEntry(ctx context.Context, id string) (*domain.DiaryEntry, error) {
	var row database.UserMeal
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, translate(err, "entry", id)
	}
	entry := entryFromRow(row)
	return &entry, nil
}

func (r *DiaryRepository) ListEntries(ctx context.Context, userID string, from, to *time.Time) ([]domain.DiaryEntry, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if from != nil {
		query = query.Where("date >= ?", *from)
	}
	if to != nil {
		query = query.Where("date < ?", *to)
	}

	var rows []database.UserMeal
	if err := query.Order("date DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}

	entries := make([]domain.DiaryEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, entryFromRow(row))
	}
	return entries, nil
}

func (r *DiaryRepository) UpdateEntry(ctx context.Context, id string, patch domain.DiaryPatch) error {
	fields := make(map[string]interface{})
	setField(fields, "amount", patch.Amount)
	setField(fields, "multiplier", patch.Multiplier)
	setField(fields, "category", patch.Category)
	setField(fields, "date", patch.Date)
	if !patch.UpdatedAt.IsZero() {
		fields["updated_at"] = patch.UpdatedAt
	}
	return updateByID(r.db.WithContext(ctx), &database.UserMeal{}, "entry", id, fields)
}

func (r *DiaryRepository) DeleteEntry(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&database.UserMeal{}).Error
}

func entryFromRow(row database.UserMeal) domain.DiaryEntry {
	return domain.DiaryEntry{
		ID:         row.ID,
		UserID:     row.UserID,
		MealID:     row.MealID,
		Date:       row.Date,
		Category:   row.Category,
		Amount:     row.Amount,
		Multiplier: row.Multiplier,
		BaseAmount: row.BaseAmount,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
}
