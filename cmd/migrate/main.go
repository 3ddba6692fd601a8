package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/thouesa/thouesa-backend/internal/settings"
	"github.com/thouesa/thouesa-backend/pkg/config"
	"github.com/thouesa/thouesa-backend/pkg/db"
	"github.com/thouesa/thouesa-backend/pkg/logger"
	"github.com/thouesa/thouesa-backend/pkg/migrate"
)

type options struct {
	cmd     string
	dir     string
	name    string
	version string
}

func main() {
	_ = godotenv.Load()

	opts := options{}
	flag.StringVar(&opts.cmd, "cmd", "up", "up|down|status|version|create|validate|seed")
	flag.StringVar(&opts.dir, "dir", migrate.SourceDir, "migrations directory for -cmd=create")
	flag.StringVar(&opts.name, "name", "", "migration name for -cmd=create")
	flag.StringVar(&opts.version, "version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	flag.Parse()

	// create and validate never touch the database.
	switch opts.cmd {
	case "create":
		if opts.name == "" {
			exitOn(errors.New("missing -name for create"))
		}
		path, err := migrate.CreateSQLMigration(opts.dir, opts.name, time.Now())
		exitOn(err)
		fmt.Println("created migration:", path)
		return
	case "validate":
		exitOn(migrate.Validate(migrate.Migrations()))
		fmt.Println("migration validation passed")
		return
	}

	cfg, err := config.Load()
	exitOn(err)
	logg := logger.New(logger.Options{
		ServiceName: config.ServiceKindMigrate,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{"env": cfg.App.Env, "cmd": opts.cmd})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	exitOn(err)
	defer dbClient.Close()

	if err := run(ctx, opts, cfg, dbClient, logg); err != nil {
		logg.Error(ctx, "migrate.failed", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, cfg *config.Config, dbClient *db.Client, logg *logger.Logger) error {
	if opts.cmd == "seed" {
		return seedSettings(ctx, cfg, dbClient)
	}

	sqlDB, err := dbClient.DB().DB()
	if err != nil {
		return err
	}
	runner, err := migrate.NewRunner(sqlDB, nil)
	if err != nil {
		return err
	}

	switch opts.cmd {
	case "up":
		applied, err := runner.Up(ctx)
		if err != nil {
			return err
		}
		logg.Info(logg.WithField(ctx, "applied", applied), "migrate.up_complete")
	case "down":
		version, err := runner.Down(ctx)
		if err != nil {
			return err
		}
		logg.Info(logg.WithField(ctx, "rolled_back", version), "migrate.down_complete")
	case "status":
		statuses, err := runner.Status(ctx)
		if err != nil {
			return err
		}
		for _, s := range statuses {
			state := "pending"
			if s.Applied {
				state = "applied"
			}
			fmt.Printf("%-8s %s\n", state, s.Path)
		}
	case "version":
		if opts.version == "" {
			current, err := runner.Version(ctx)
			if err != nil {
				return err
			}
			fmt.Println(current)
			return nil
		}
		target, err := strconv.ParseInt(opts.version, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid -version %q: %w", opts.version, err)
		}
		moved, err := runner.To(ctx, target)
		if err != nil {
			return err
		}
		logg.Info(logg.WithFields(ctx, map[string]any{"target": target, "migrated": moved}), "migrate.version_complete")
	default:
		return fmt.Errorf("unknown -cmd value %q", opts.cmd)
	}
	return nil
}

// seedSettings creates the singleton settings row from the configured
// pricing defaults. Existing rows are left untouched.
func seedSettings(ctx context.Context, cfg *config.Config, dbClient *db.Client) error {
	jodPerKg, dzdPerKg, commission, err := cfg.Pricing.Defaults()
	if err != nil {
		return err
	}
	svc, err := settings.NewService(settings.NewRepository(dbClient.DB()), settings.Defaults{
		JODPerKgJOToDZ:    jodPerKg,
		DZDPerKgDZToJO:    dzdPerKg,
		CommissionPercent: commission,
	})
	if err != nil {
		return err
	}
	setting, err := svc.Get(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("settings ready: JO_TO_DZ %s JOD/kg, DZ_TO_JO %s DZD/kg, commission %s%%\n",
		setting.ShipJODPerKgJOToDZ, setting.ShipDZDPerKgDZToJO, setting.CommissionPercent)
	return nil
}

func exitOn(err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
