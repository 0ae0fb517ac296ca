package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"nexus/internal/adapter/repo"
	"nexus/internal/infra"
	"nexus/internal/infra/migrations"
	"nexus/internal/legacy"
	"nexus/internal/storage"
)

func main() {
	var (
		schemaFlag bool
		legacyFlag bool
		dryRunFlag bool
		timeout    time.Duration
	)

	flag.BoolVar(&schemaFlag, "schema", false, "apply pending SQL migrations")
	flag.BoolVar(&legacyFlag, "legacy", false, "move startup_data listings into the startups collection")
	flag.BoolVar(&dryRunFlag, "dry-run", false, "with -legacy, report what would be migrated without writing")
	flag.DurationVar(&timeout, "timeout", 2*time.Minute, "overall deadline")
	flag.Parse()

	if !schemaFlag && !legacyFlag {
		exitWithError(errors.New("nothing to do: pass -schema and/or -legacy"))
	}

	_ = godotenv.Load()
	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		exitWithError(errors.New("DATABASE_URL is required"))
	}

	logger := infra.NewLogger("cli").With().Str("cmd", "migrate").Logger()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if schemaFlag {
		db, err := infra.OpenSQLDB(ctx, dbURL)
		if err != nil {
			exitWithError(fmt.Errorf("failed to open database: %w", err))
		}
		err = migrations.Apply(ctx, db)
		_ = db.Close()
		if err != nil {
			exitWithError(fmt.Errorf("failed to apply migrations: %w", err))
		}
		logger.Info().Msg("schema up to date")
	}

	if !legacyFlag {
		return
	}

	pool, err := infra.NewDBPool(ctx, &infra.Config{DatabaseURL: dbURL})
	if err != nil {
		exitWithError(fmt.Errorf("failed to connect database: %w", err))
	}
	defer pool.Close()

	store := storage.NewPostgres(infra.NewSQLRunner(pool, logger))
	migrator := legacy.NewMigrator(
		repo.NewLegacyStartupReader(store),
		repo.NewStartupRepository(store, logger),
		logger,
	)
	report, err := migrator.Run(ctx, dryRunFlag)
	if err != nil {
		exitWithError(fmt.Errorf("legacy migration failed: %w", err))
	}

	verb := "migrated"
	if dryRunFlag {
		verb = "would migrate"
	}
	fmt.Printf("%s %d listing(s), skipped %d already migrated, %d invalid\n",
		verb, len(report.Migrated), len(report.Skipped), len(report.Invalid))
	ids := make([]string, 0, len(report.Invalid))
	for id := range report.Invalid {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		fmt.Printf("  invalid %s: %s\n", id, report.Invalid[id])
	}
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
