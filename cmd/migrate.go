package cmd

import (
	"fmt"

	"github.com/koopa0/kelp/db"
	"github.com/koopa0/kelp/internal/config"
	"github.com/koopa0/kelp/internal/log"
)

// runMigrate applies pending database migrations and exits.
func runMigrate(logger log.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if err := db.Migrate(cfg.PostgresURL(), logger); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	fmt.Println("Migrations applied.")
	return nil
}
