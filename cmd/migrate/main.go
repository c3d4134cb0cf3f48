package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/joho/godotenv"
	"github.com/meetreminder/meetreminder/internal/config"
	"github.com/meetreminder/meetreminder/internal/database"
	"github.com/meetreminder/meetreminder/internal/logger"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Database migration tool for the reminder store",
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Run all pending migrations",
	RunE:  runUp,
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Rollback the last migration",
	RunE:  runDown,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show migration status",
	RunE:  runStatus,
}

var createCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a new migration file pair for every dialect",
	Args:  cobra.ExactArgs(1),
	RunE:  runCreate,
}

var migrationsDir string

func init() {
	createCmd.Flags().StringVar(&migrationsDir, "dir", "internal/database/migrations", "migrations root holding one directory per dialect")

	rootCmd.AddCommand(upCmd)
	rootCmd.AddCommand(downCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(createCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func getMigrator() (*migrate.Migrate, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	m, err := database.NewMigrator(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return m, nil
}

func runUp(cmd *cobra.Command, args []string) error {
	log := logger.New("info", "text")
	log.Info().Msg("running migrations...")

	m, err := getMigrator()
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}

	log.Info().Msg("migrations completed successfully")
	return nil
}

func runDown(cmd *cobra.Command, args []string) error {
	log := logger.New("info", "text")
	log.Info().Msg("rolling back last migration...")

	m, err := getMigrator()
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Steps(-1); err != nil {
		return fmt.Errorf("rollback failed: %w", err)
	}

	log.Info().Msg("rollback completed successfully")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	m, err := getMigrator()
	if err != nil {
		return err
	}
	defer m.Close()

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get version: %w", err)
	}

	if errors.Is(err, migrate.ErrNilVersion) {
		fmt.Println("No migrations have been applied")
	} else {
		fmt.Printf("Current version: %d\n", version)
		fmt.Printf("Dirty: %v\n", dirty)
	}

	return nil
}

func runCreate(cmd *cobra.Command, args []string) error {
	name := strings.ReplaceAll(strings.TrimSpace(args[0]), " ", "_")

	dialects := []database.Dialect{database.DialectPostgres, database.DialectSQLite}
	version := 1
	for _, d := range dialects {
		if v := nextVersion(filepath.Join(migrationsDir, string(d))); v > version {
			version = v
		}
	}

	for _, d := range dialects {
		dir := filepath.Join(migrationsDir, string(d))
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create migrations directory: %w", err)
		}

		upFile := filepath.Join(dir, fmt.Sprintf("%06d_%s.up.sql", version, name))
		downFile := filepath.Join(dir, fmt.Sprintf("%06d_%s.down.sql", version, name))

		if err := os.WriteFile(upFile, []byte("-- Add migration SQL here\n"), 0644); err != nil {
			return fmt.Errorf("failed to create up migration: %w", err)
		}
		if err := os.WriteFile(downFile, []byte("-- Add rollback SQL here\n"), 0644); err != nil {
			return fmt.Errorf("failed to create down migration: %w", err)
		}
		fmt.Printf("Created migration files:\n  %s\n  %s\n", upFile, downFile)
	}
	return nil
}

// nextVersion returns one past the highest numbered migration in dir.
func nextVersion(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 1
	}
	highest := 0
	for _, entry := range entries {
		var v int
		if _, err := fmt.Sscanf(entry.Name(), "%06d_", &v); err == nil && v > highest {
			highest = v
		}
	}
	return highest + 1
}
