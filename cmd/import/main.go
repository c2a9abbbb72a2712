package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/lebraggaa/spool-tracker/internal/importer"
	"github.com/lebraggaa/spool-tracker/internal/spools"
	"github.com/lebraggaa/spool-tracker/pkg/config"
	"github.com/lebraggaa/spool-tracker/pkg/db"
	"github.com/lebraggaa/spool-tracker/pkg/logger"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "import"})

	_ = godotenv.Load()

	file := flag.String("file", "", "path to the .xlsx or .csv file to import")
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "missing -file")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "import",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	svc, err := importer.NewService(importer.ServiceParams{
		SpoolRepo: spools.NewRepository(dbClient.DB()),
		Config:    cfg.Import,
	})
	if err != nil {
		logg.Error(ctx, "failed to create import service", err)
		os.Exit(1)
	}

	f, err := os.Open(*file)
	if err != nil {
		logg.Error(ctx, "failed to open import file", err)
		os.Exit(1)
	}
	defer f.Close()

	summary, err := svc.Import(ctx, filepath.Base(*file), f)
	if err != nil {
		logg.Error(ctx, "import failed", err)
		os.Exit(1)
	}

	ctx = logg.WithFields(ctx, map[string]any{
		"file":     *file,
		"rows":     summary.TotalRows,
		"created":  summary.Created,
		"existing": summary.Existing,
		"skipped":  summary.Skipped,
	})
	logg.Info(ctx, "import complete")
}
