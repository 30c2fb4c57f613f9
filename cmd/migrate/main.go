package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/poojakit/poojakit-backend/pkg/config"
	"github.com/poojakit/poojakit-backend/pkg/db"
	"github.com/poojakit/poojakit-backend/pkg/logger"
	"github.com/poojakit/poojakit-backend/pkg/migrate"
)

const usage = `usage: migrate <command> [args]

commands:
  up                  apply all pending migrations
  down                roll back the most recent migration
  status              print migration status
  version             print current DB version
  up-to <version>     migrate up to the given version
  down-to <version>   roll back to the given version
  migrate-to <ver>    migrate up or down to the given version
  create <name>       create a new SQL migration file
  validate            validate migration filenames and headers
`

func main() {
	_ = godotenv.Load()

	dir := flag.String("dir", migrate.DefaultDir, "migrations directory")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	command, rest := args[0], args[1:]

	// create and validate never touch the database
	switch command {
	case "create":
		if len(rest) != 1 {
			fmt.Fprintln(os.Stderr, "create requires a migration name")
			os.Exit(2)
		}
		path, err := migrate.CreateSQLMigration(*dir, rest[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(path)
		return
	case "validate":
		if err := migrate.ValidateDir(*dir); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println("migrations ok")
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logg := logger.New(logger.Options{
		ServiceName: "poojakit-migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
	})

	ctx := context.Background()

	client, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "database bootstrap failed", err)
		os.Exit(1)
	}
	defer client.Close()

	sqlDB, err := client.DB().DB()
	if err != nil {
		logg.Error(ctx, "extracting sql.DB failed", err)
		os.Exit(1)
	}

	switch command {
	case "up", "down", "status", "version", "redo":
		err = migrate.Run(ctx, sqlDB, *dir, command)
	case "up-to", "down-to":
		err = migrate.Run(ctx, sqlDB, *dir, command, rest...)
	case "migrate-to":
		if len(rest) != 1 {
			fmt.Fprintln(os.Stderr, "migrate-to requires a version")
			os.Exit(2)
		}
		err = migrate.MigrateToVersion(ctx, sqlDB, *dir, rest[0])
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		logg.Error(ctx, "migration command failed", err)
		os.Exit(1)
	}
}
