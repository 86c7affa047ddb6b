package database

import (
	"fmt"
	"time"

	"github.com/vladimiradmaev/nutrition-diary/internal/config"
	"github.com/vladimiradmaev/nutrition-diary/internal/database/migrations"
	"github.com/vladimiradmaev/nutrition-diary/internal/domain"
	"github.com/vladimiradmaev/nutrition-diary/internal/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Meal struct {
	ID          string `gorm:"primaryKey;type:varchar(36)"`
	Name        string `gorm:"index"`
	BaseAmount  float64
	ServingUnit string
	Nutrients   domain.Nutrients `gorm:"embedded"`
	Source      string
	FdcID       string `gorm:"column:fdc_id;index"`
	DataType    string
	LegacyID    string `gorm:"index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CreatedBy   *string
	UpdatedBy   *string
}

func (Meal) TableName() string { return "meals" }

type UserMeal struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)"`
	UserID     string    `gorm:"index"`
	MealID     string    `gorm:"index"`
	Date       time.Time `gorm:"index"`
	Category   string
	Amount     float64
	Multiplier float64
	BaseAmount float64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (UserMeal) TableName() string { return "user_meals" }

type UserMetric struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	UserID    string `gorm:"index"`
	Type      string `gorm:"index"`
	Date      *time.Time
	Value     float64
	Details   domain.MetricDetails `gorm:"embedded;embeddedPrefix:detail_"`
	CreatedAt time.Time
}

func (UserMetric) TableName() string { return "user_metrics" }

type UserStreak struct {
	UserID        string `gorm:"primaryKey"`
	CurrentStreak int
	LongestStreak int
	LastActive    *time.Time
	UpdatedAt     time.Time
}

func (UserStreak) TableName() string { return "user_streaks" }

type CachedFood struct {
	ID          string `gorm:"primaryKey;type:varchar(36)"`
	FoodID      string `gorm:"index"`
	Description string
	Payload     string `gorm:"type:jsonb"`
	CachedAt    time.Time
}

func (CachedFood) TableName() string { return "cached_foods" }

type User struct {
	UserID           string `gorm:"primaryKey"`
	Username         string
	DisplayName      string
	DailyCalorieGoal int
	WeightUnit       string
	Timezone         string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (User) TableName() string { return "users" }

// LegacyMeal is a row of the pre-split schema, read only by the migration
type LegacyMeal struct {
	ID          string `gorm:"primaryKey;type:varchar(36)"`
	UserID      string `gorm:"index"`
	Name        string
	Date        *time.Time
	Category    string
	Amount      float64
	ServingUnit string
	Nutrients   domain.Nutrients `gorm:"embedded"`
}

func (LegacyMeal) TableName() string { return "legacy_meals" }

func NewPostgresDB(cfg config.DBConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Tables first; the SQL migrations only add indexes and constraints on top
	if err := db.AutoMigrate(&Meal{}, &UserMeal{}, &UserMetric{}, &UserStreak{}, &CachedFood{}, &User{}, &LegacyMeal{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	if err := migrations.LoadSQLMigrations(migrations.SQLFiles, migrations.SQLDir); err != nil {
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}

	if err := migrations.RunMigrations(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("Database connection established and migrations completed", "host", cfg.Host, "database", cfg.DBName)
	return db, nil
}
