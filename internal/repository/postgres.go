package repository

import (
	"errors"
	"fmt"

	"github.com/vladimiradmaev/nutrition-diary/internal/config"
	"github.com/vladimiradmaev/nutrition-diary/internal/database"
	"github.com/vladimiradmaev/nutrition-diary/internal/domain"
	"gorm.io/gorm"
)

// PostgresDB represents a PostgreSQL database connection
type PostgresDB struct {
	db *gorm.DB
}

// NewPostgresDB connects and migrates the schema
func NewPostgresDB(cfg config.DBConfig) (*PostgresDB, error) {
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		return nil, err
	}
	return &PostgresDB{db: db}, nil
}

// GetDB returns the underlying GORM database instance
func (p *PostgresDB) GetDB() *gorm.DB {
	return p.db
}

// Close releases the connection pool
func (p *PostgresDB) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Stores returns gorm-backed repositories sharing this connection
func (p *PostgresDB) Stores() Stores {
	return Stores{
		Meals:       NewMealRepository(p.db),
		Diary:       NewDiaryRepository(p.db),
		Metrics:     NewMetricRepository(p.db),
		Streaks:     NewStreakRepository(p.db),
		CachedFoods: NewCachedFoodRepository(p.db),
		Users:       NewUserRepository(p.db),
		Legacy:      NewLegacyMealRepository(p.db),
	}
}

// translate maps gorm's missing-record error to domain.ErrNotFound
func translate(err error, kind, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %s: %w", kind, id, domain.ErrNotFound)
	}
	return err
}

func updateByID(db *gorm.DB, model interface{}, kind, id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		var count int64
		if err := db.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return fmt.Errorf("%s %s: %w", kind, id, domain.ErrNotFound)
		}
		return nil
	}

	result := db.Model(model).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, domain.ErrNotFound)
	}
	return nil
}
