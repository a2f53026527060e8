package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/koopa0/kelp/internal/app"
	"github.com/koopa0/kelp/internal/config"
	"github.com/koopa0/kelp/internal/log"
	"github.com/koopa0/kelp/internal/version"
)

// runVersions prints the version set of the current chat for a role
// (default: user). Useful for scripting and quick inspection without the TUI.
func runVersions(args []string, logger log.Logger) error {
	role := version.RoleUser
	if len(args) > 0 {
		role = version.Role(args[0])
		if !role.Valid() {
			return fmt.Errorf("unknown role %q (want user or assistant)", args[0])
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runtime, err := app.NewRuntime(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize runtime: %w", err)
	}
	defer runtime.Close()

	chatID, err := runtime.State.Load()
	if err != nil {
		return fmt.Errorf("no current chat (open one with: kelp chat): %w", err)
	}

	versions, err := runtime.Store.ListVersions(ctx, chatID, role, cfg.FetchLimit)
	if err != nil {
		return err
	}
	if len(versions) == 0 {
		fmt.Printf("No %s versions in the current chat.\n", role)
		return nil
	}

	for _, v := range versions {
		marker := " "
		if v.IsCurrent {
			marker = "*"
		}
		fmt.Printf("%s v%-3d %-80s  %dw %dc  %s\n",
			marker, v.Number, v.Preview, v.WordCount, v.CharCount,
			v.CreatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}
