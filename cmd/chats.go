package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/koopa0/kelp/internal/app"
	"github.com/koopa0/kelp/internal/config"
	"github.com/koopa0/kelp/internal/log"
)

// runChats lists all chats, newest first, marking the current one.
func runChats(logger log.Logger) error {
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

	chats, err := runtime.Store.Chats(ctx, 0)
	if err != nil {
		return err
	}
	if len(chats) == 0 {
		fmt.Println("No chats yet. Start one with: kelp chat new")
		return nil
	}

	currentID, _ := runtime.State.Load() // zero UUID when unset

	for _, c := range chats {
		marker := "  "
		if c.ID == currentID && currentID != uuid.Nil {
			marker = "* "
		}
		title := c.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Printf("%s%s  %-40s  %s\n", marker, c.ID, title, c.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}
