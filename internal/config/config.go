package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/vladimiradmaev/nutrition-diary/internal/logger"
	"gopkg.in/yaml.v3"
)

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"

	OrphanPolicySkip      = "skip"
	OrphanPolicyTombstone = "tombstone"
)

type Config struct {
	TelegramToken string         `yaml:"telegramToken"`
	FDC           FDCConfig      `yaml:"fdc"`
	Store         StoreConfig    `yaml:"store"`
	DB            DBConfig       `yaml:"db"`
	Mongo         MongoConfig    `yaml:"mongo"`
	Redis         RedisConfig    `yaml:"redis"`
	Logger        LoggerConfig   `yaml:"logger"`
	Diary         DiaryConfig    `yaml:"diary"`
	Populate      PopulateConfig `yaml:"populate"`

	// RequireTelegram makes Validate fail without a bot token. The bot sets it, dbtool does not.
	RequireTelegram bool `yaml:"-"`
}

type FDCConfig struct {
	APIKey  string        `yaml:"apiKey"`
	BaseURL string        `yaml:"baseUrl"`
	Timeout time.Duration `yaml:"timeout"`
}

type StoreConfig struct {
	Driver string `yaml:"driver"`
}

type DBConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"name"`
}

type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

type RedisConfig struct {
	Enabled        bool          `yaml:"enabled"`
	Host           string        `yaml:"host"`
	Port           string        `yaml:"port"`
	Password       string        `yaml:"password"`
	DB             int           `yaml:"db"`
	SearchCacheTTL time.Duration `yaml:"searchCacheTTL"`
}

type LoggerConfig struct {
	Level      logger.LogLevel `yaml:"-"`
	LevelName  string          `yaml:"level"`
	OutputPath string          `yaml:"output"`
	Format     string          `yaml:"format"`
}

type DiaryConfig struct {
	OrphanPolicy string `yaml:"orphanPolicy"`
}

type PopulateConfig struct {
	Delay time.Duration `yaml:"delay"`
	Limit int           `yaml:"limit"`
}

func defaults() *Config {
	return &Config{
		FDC: FDCConfig{
			BaseURL: "https://api.nal.usda.gov/fdc/v1",
			Timeout: 10 * time.Second,
		},
		Store: StoreConfig{Driver: DriverPostgres},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "5432",
			User:     "postgres",
			Password: "postgres",
			DBName:   "nutrition_diary",
		},
		Mongo: MongoConfig{
			URI:      "mongodb://localhost:27017/nutrition_diary",
			Database: "nutrition_diary",
		},
		Redis: RedisConfig{
			Host:           "localhost",
			Port:           "6379",
			SearchCacheTTL: 24 * time.Hour,
		},
		Logger: LoggerConfig{
			LevelName:  "info",
			OutputPath: "stdout",
			Format:     "json",
		},
		Diary:    DiaryConfig{OrphanPolicy: OrphanPolicySkip},
		Populate: PopulateConfig{Delay: time.Second, Limit: 50},
	}
}

// Load builds the configuration from defaults, an optional YAML file named by
// CONFIG_FILE, and environment variables, in increasing order of precedence.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.Logger.Level = logger.ParseLevel(cfg.Logger.LevelName)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to unmarshal yaml: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.TelegramToken, "TELEGRAM_BOT_TOKEN")
	setString(&c.FDC.APIKey, "FDC_API_KEY")
	setString(&c.FDC.BaseURL, "FDC_BASE_URL")
	setString(&c.Store.Driver, "STORE_DRIVER")
	setString(&c.DB.Host, "DB_HOST")
	setString(&c.DB.Port, "DB_PORT")
	setString(&c.DB.User, "DB_USER")
	setString(&c.DB.Password, "DB_PASSWORD")
	setString(&c.DB.DBName, "DB_NAME")
	setString(&c.Mongo.URI, "MONGO_URI")
	setString(&c.Mongo.Database, "MONGO_DATABASE")
	setString(&c.Redis.Host, "REDIS_HOST")
	setString(&c.Redis.Port, "REDIS_PORT")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	setString(&c.Logger.LevelName, "LOG_LEVEL")
	setString(&c.Logger.OutputPath, "LOG_OUTPUT")
	setString(&c.Logger.Format, "LOG_FORMAT")
	setString(&c.Diary.OrphanPolicy, "DIARY_ORPHAN_POLICY")

	var errs []error
	errs = append(errs,
		setDuration(&c.FDC.Timeout, "FDC_TIMEOUT"),
		setDuration(&c.Redis.SearchCacheTTL, "SEARCH_CACHE_TTL"),
		setDuration(&c.Populate.Delay, "POPULATE_DELAY"),
		setBool(&c.Redis.Enabled, "REDIS_ENABLED"),
		setInt(&c.Redis.DB, "REDIS_DB"),
		setInt(&c.Populate.Limit, "POPULATE_LIMIT"),
	)
	return errors.Join(errs...)
}

// Validate checks the loaded configuration for values the application cannot run with
func (c *Config) Validate() error {
	var errs []error

	switch c.Store.Driver {
	case DriverPostgres, DriverMongo, DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver))
	}

	switch c.Diary.OrphanPolicy {
	case OrphanPolicySkip, OrphanPolicyTombstone:
	default:
		errs = append(errs, fmt.Errorf("unknown DIARY_ORPHAN_POLICY %q", c.Diary.OrphanPolicy))
	}

	if c.Populate.Delay <= 0 {
		errs = append(errs, errors.New("POPULATE_DELAY must be positive"))
	}
	if c.Populate.Limit < 0 {
		errs = append(errs, errors.New("POPULATE_LIMIT must not be negative"))
	}
	if c.Store.Driver == DriverMongo && c.Mongo.URI == "" {
		errs = append(errs, errors.New("MONGO_URI is required for the mongo driver"))
	}
	if c.RequireTelegram && c.TelegramToken == "" {
		errs = append(errs, errors.New("TELEGRAM_BOT_TOKEN is required"))
	}

	return errors.Join(errs...)
}

// MockMode reports whether food lookups run without an FDC API key
func (c *Config) MockMode() bool {
	return strings.TrimSpace(c.FDC.APIKey) == ""
}

func setString(dst *string, key string) {
	if value := os.Getenv(key); value != "" {
		*dst = value
	}
}

func setDuration(dst *time.Duration, key string) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = d
	return nil
}

func setBool(dst *bool, key string) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = b
	return nil
}

func setInt(dst *int, key string) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}
