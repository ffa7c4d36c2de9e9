package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"storefront-functions/internal/database"
	"storefront-functions/internal/migration"
	"storefront-functions/internal/repositories/sqlite"

	kingpin "github.com/alecthomas/kingpin/v2"
	"github.com/sirupsen/logrus"
)

var (
	app = kingpin.New("migrate", "Storefront database migration tool")

	dbPath         = app.Flag("db", "Database file path").Default("./data/storefront.db").Envar("DB_PATH").String()
	migrationsPath = app.Flag("migrations", "Migrations directory, empty for the embedded set").Envar("DB_MIGRATIONS_PATH").String()
	verbose        = app.Flag("verbose", "Enable verbose logging").Short('v').Bool()

	upCmd       = app.Command("up", "Apply all pending migrations")
	downCmd     = app.Command("down", "Roll back the last migration")
	statusCmd   = app.Command("status", "Show the current migration version")
	validateCmd = app.Command("validate", "Check that every expected table exists")
	seedCmd     = app.Command("seed", "Migrate, then load products.json and users.json fixtures")
	seedDir     = seedCmd.Arg("dir", "Directory holding the fixture files").Required().ExistingDir()
)

func main() {
	app.HelpFlag.Short('h')
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	logger := logrus.New()
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	absDBPath, err := filepath.Abs(*dbPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to get absolute database path")
	}

	absMigrationsPath := *migrationsPath
	if absMigrationsPath != "" {
		if absMigrationsPath, err = filepath.Abs(absMigrationsPath); err != nil {
			logger.WithError(err).Fatal("Failed to get absolute migrations path")
		}
	}

	logger.WithFields(logrus.Fields{
		"db_path":         absDBPath,
		"migrations_path": absMigrationsPath,
		"action":          command,
	}).Info("Starting migration tool")

	if err := os.MkdirAll(filepath.Dir(absDBPath), 0755); err != nil {
		logger.WithError(err).Fatal("Failed to create database directory")
	}

	migrations := database.NewMigrationManager(absDBPath, absMigrationsPath, logger)

	switch command {
	case upCmd.FullCommand():
		err = migrations.RunMigrations()
	case downCmd.FullCommand():
		err = migrations.RollbackMigration()
	case statusCmd.FullCommand():
		err = showMigrationStatus(migrations)
	case validateCmd.FullCommand():
		err = validateSchema(absDBPath, logger)
	case seedCmd.FullCommand():
		err = seed(absDBPath, absMigrationsPath, *seedDir, logger)
	}

	if err != nil {
		logger.WithError(err).Fatalf("Migration %s failed", command)
	}

	logger.Info("Migration tool completed successfully")
}

func showMigrationStatus(migrations *database.MigrationManager) error {
	status, err := migrations.GetMigrationStatus()
	if err != nil {
		return fmt.Errorf("failed to get migration status: %w", err)
	}

	fmt.Printf("Migration Status:\n")
	fmt.Printf("  Version: %d\n", status.Version)
	fmt.Printf("  Applied: %t\n", status.Applied)
	fmt.Printf("  Dirty: %t\n", status.Dirty)
	fmt.Printf("  Timestamp: %s\n", status.Timestamp.Format("2006-01-02 15:04:05"))

	return nil
}

func validateSchema(dbPath string, logger *logrus.Logger) error {
	db, err := database.InitializeDatabase(dbPath, "", false, logger)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := database.ValidateSchema(db, logger); err != nil {
		return err
	}

	fmt.Println("Schema validation passed")
	return nil
}

func seed(dbPath, migrationsPath, dir string, logger *logrus.Logger) error {
	db, err := database.InitializeDatabase(dbPath, migrationsPath, true, logger)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	seeder := migration.NewJSONSeeder(sqlite.NewRepositoryContainer(db, logger), dir, logger)
	result, err := seeder.Seed(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("Seeded %d products and %d users (%d skipped)\n", result.ProductsProcessed, result.UsersProcessed, result.Skipped)
	for _, w := range result.Warnings {
		fmt.Printf("  warning: %s\n", w)
	}
	return nil
}
