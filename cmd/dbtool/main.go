package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/vladimiradmaev/nutrition-diary/internal/app"
	"github.com/vladimiradmaev/nutrition-diary/internal/config"
	"github.com/vladimiradmaev/nutrition-diary/internal/logger"
)

const usage = `Usage: dbtool -user <id> [-limit n] <setup|migrate|populate>

  setup     add example meals and default settings for the user
  migrate   convert the user's old combined meal records into diary entries
  populate  import foods from the FDC search into the meal store
`

func main() {
	var (
		userID = flag.String("user", "", "User id to run the command for")
		limit  = flag.Int("limit", 0, "Maximum foods to import with populate (0 uses POPULATE_LIMIT)")
		env    = flag.String("env", ".env", "Path to an optional .env file")
	)
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 || *userID == "" {
		flag.Usage()
		os.Exit(2)
	}
	command := flag.Arg(0)

	if err := godotenv.Load(*env); err != nil {
		logger.Warn(".env file not found", "path", *env, "error", err)
	}
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", "error", err)
	}
	if err := logger.InitWithConfig(logger.Config{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	}); err != nil {
		logger.Fatal("Failed to initialize logger", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, time.Local)
	if err != nil {
		logger.Fatal("Failed to initialize application", "error", err)
	}
	defer a.Close()

	result, ok, err := run(ctx, a, command, *userID, *limit)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		logger.Fatal("Failed to write result", "error", err)
	}
	if !ok {
		os.Exit(1)
	}
}

// run executes one command and reports whether it finished without errors
func run(ctx context.Context, a *app.App, command, userID string, limit int) (interface{}, bool, error) {
	switch command {
	case "setup":
		res := a.Setup.SetupDatabase(ctx, userID)
		return res, res.Success, nil
	case "migrate":
		res := a.Setup.MigrateDatabase(ctx, userID)
		return res, res.Success, nil
	case "populate":
		res := a.Setup.PopulateDatabase(ctx, userID, limit)
		return res, res.Success, nil
	}
	return nil, false, fmt.Errorf("unknown command %q", command)
}
