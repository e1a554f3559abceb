package main

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strings"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/trucksigns/truck-signs-api/app/config"
	"github.com/trucksigns/truck-signs-api/app/database"
)

//go:embed sql/*.sql
var seedFiles embed.FS

func seedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the schema and load the starter catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			slog.SetDefault(cfg.Log.Logger())
			return seed(cmd.Context(), cfg.Database)
		},
	}
}

// seed migrates the schema through gorm, then runs every embedded SQL file in
// name order. The files are idempotent.
func seed(ctx context.Context, cfg database.Config) error {
	cfg.AutoMigrate = true
	gdb, err := database.Open(cfg)
	if err != nil {
		return err
	}
	defer database.Close(gdb)

	db, err := gdb.DB()
	if err != nil {
		return err
	}
	if cfg.Driver == database.DriverPostgres || cfg.Driver == "" {
		// Plain lib/pq connection, outside gorm's pgx pool.
		if db, err = sql.Open("postgres", cfg.DSN); err != nil {
			return err
		}
		defer db.Close()
	}

	names, err := fs.Glob(seedFiles, "sql/*.sql")
	if err != nil {
		return err
	}
	sort.Strings(names)

	for _, name := range names {
		data, err := seedFiles.ReadFile(name)
		if err != nil {
			return err
		}
		if err := execScript(ctx, db, string(data)); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		slog.Info("applied seed file", "file", name)
	}
	return nil
}

func execScript(ctx context.Context, db *sql.DB, script string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range strings.Split(script, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return tx.Commit()
}
