package cli

import (
	"fmt"
	"os"

	"github.com/ewillweb/internal/config"
	"github.com/ewillweb/internal/content"
	"github.com/ewillweb/internal/db"
	"github.com/ewillweb/internal/service"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func addDatabaseFlag(cmd *cobra.Command, dsn *string) {
	cmd.Flags().StringVar(dsn, "db", "", "Database url, defaults to DATABASE_URL")
}

func openDatabase(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		dsn = config.Load().DatabaseURL
	}
	if dsn == "" {
		return nil, fmt.Errorf("no database configured: set DATABASE_URL or pass --db")
	}
	gdb, err := db.Open(dsn, nil)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(gdb); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return gdb, nil
}

func closeDatabase(gdb *gorm.DB) {
	if sqlDB, err := gdb.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func newSeedCommand(opts *options) *cobra.Command {
	var (
		target string
		dsn    string
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Upsert built pages (excluding header/footer) and assets into the database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.buildConfig(target)
			if err != nil {
				return err
			}
			gdb, err := openDatabase(dsn)
			if err != nil {
				return err
			}
			defer closeDatabase(gdb)

			result, err := content.Seed(cmd.Context(), gdb, cfg, opts.log)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d pages, %d assets\n", result.Pages, result.Assets)
			return nil
		},
	}
	addTargetFlags(cmd, &target)
	addDatabaseFlag(cmd, &dsn)
	return cmd
}

func newSeedEventsCommand(opts *options) *cobra.Command {
	var (
		file string
		dsn  string
	)
	cmd := &cobra.Command{
		Use:   "seed-events",
		Short: "Upsert events from a YAML file by event_id",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			gdb, err := openDatabase(dsn)
			if err != nil {
				return err
			}
			defer closeDatabase(gdb)

			svc := service.NewEventService(service.NewGormEventStore(gdb), opts.log)
			result, err := svc.SeedEvents(cmd.Context(), f)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "upserted %d events\n", result.Upserted)
			for _, id := range result.Failed {
				fmt.Fprintf(out, "  failed %s\n", id)
			}
			if len(result.Failed) > 0 {
				return errFailed
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "YAML file with an events: list")
	_ = cmd.MarkFlagRequired("file")
	addDatabaseFlag(cmd, &dsn)
	return cmd
}
