package main

import (
	"fmt"
	"net/url"
	"os"

	"github.com/joho/godotenv"
	"github.com/vladimiradmaev/nutrition-diary/internal/config"
)

func main() {
	fmt.Println("🔍 Checking configuration...")

	if err := godotenv.Load(); err != nil {
		fmt.Printf("⚠️  .env file not found: %v\n", err)
	}

	cfg, err := config.Load()
	if err == nil {
		cfg.RequireTelegram = true
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Printf("❌ Configuration is invalid:\n%v\n", err)
		os.Exit(1)
	}

	fmt.Println("✅ Configuration is valid!")
	fmt.Println("📋 Details:")
	fmt.Printf("  - Telegram Token: %s\n", maskToken(cfg.TelegramToken))
	fmt.Printf("  - FDC API Key: %s (mock mode: %t)\n", maskToken(cfg.FDC.APIKey), cfg.MockMode())
	fmt.Printf("  - FDC Base URL: %s, timeout %s\n", cfg.FDC.BaseURL, cfg.FDC.Timeout)
	fmt.Printf("  - Store Driver: %s\n", cfg.Store.Driver)
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		fmt.Printf("  - DB: %s@%s:%s/%s (password %s)\n",
			cfg.DB.User, cfg.DB.Host, cfg.DB.Port, cfg.DB.DBName, maskToken(cfg.DB.Password))
	case config.DriverMongo:
		fmt.Printf("  - Mongo: %s, database %s\n", maskURI(cfg.Mongo.URI), cfg.Mongo.Database)
	}
	if cfg.Redis.Enabled {
		fmt.Printf("  - Redis: %s:%s db %d (password %s), search cache TTL %s\n",
			cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.DB, maskToken(cfg.Redis.Password), cfg.Redis.SearchCacheTTL)
	} else {
		fmt.Println("  - Redis: disabled")
	}
	fmt.Printf("  - Orphaned entries: %s\n", cfg.Diary.OrphanPolicy)
	fmt.Printf("  - Populate: limit %d, delay %s\n", cfg.Populate.Limit, cfg.Populate.Delay)
	fmt.Printf("  - Log Level: %v\n", cfg.Logger.Level)
	fmt.Printf("  - Log Output: %s\n", cfg.Logger.OutputPath)
	fmt.Printf("  - Log Format: %s\n", cfg.Logger.Format)
}

func maskToken(token string) string {
	if token == "" {
		return "<not set>"
	}
	if len(token) <= 8 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

// maskURI hides the password part of a connection string
func maskURI(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "***"
	}
	return u.Redacted()
}
