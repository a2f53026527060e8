package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	tea "charm.land/bubbletea/v2"
	"github.com/google/uuid"

	"github.com/koopa0/kelp/internal/app"
	"github.com/koopa0/kelp/internal/chatfile"
	"github.com/koopa0/kelp/internal/config"
	"github.com/koopa0/kelp/internal/log"
	"github.com/koopa0/kelp/internal/tui"
	"github.com/koopa0/kelp/internal/version"
)

// runChat resolves the target chat and starts the interactive TUI.
//
//	kelp chat              resume the current chat, or the most recent one
//	kelp chat new [title]  create a chat and make it current
//	kelp chat <uuid>       open a specific chat
func runChat(args []string, logger log.Logger) error {
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

	chatID, err := resolveChatID(ctx, runtime, args)
	if err != nil {
		return err
	}
	if err := runtime.State.Save(chatID); err != nil {
		logger.Warn("failed to save current chat", "error", err)
	}

	model, err := tui.New(ctx, runtime.Store, chatID, logger, tui.Options{
		Markdown:   cfg.Markdown,
		FetchLimit: cfg.FetchLimit,
	})
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	program := tea.NewProgram(model, tea.WithContext(ctx))

	if _, err = program.Run(); err != nil {
		return fmt.Errorf("TUI exited: %w", err)
	}
	return nil
}

// resolveChatID picks the chat to open from the command arguments, the
// current-chat state file, or the most recent chat, creating one when the
// database is empty.
func resolveChatID(ctx context.Context, runtime *app.Runtime, args []string) (uuid.UUID, error) {
	if len(args) > 0 {
		if args[0] == "new" {
			title := strings.Join(args[1:], " ")
			chat, err := runtime.Store.CreateChat(ctx, title)
			if err != nil {
				return uuid.Nil, fmt.Errorf("failed to create chat: %w", err)
			}
			return chat.ID, nil
		}

		id, err := uuid.Parse(args[0])
		if err != nil {
			return uuid.Nil, fmt.Errorf("invalid chat ID %q: %w", args[0], err)
		}
		if _, err := runtime.Store.Chat(ctx, id); err != nil {
			return uuid.Nil, err
		}
		return id, nil
	}

	// Resume the current chat if it still exists.
	currentID, err := runtime.State.Load()
	switch {
	case err == nil:
		if _, chatErr := runtime.Store.Chat(ctx, currentID); chatErr == nil {
			return currentID, nil
		} else if !errors.Is(chatErr, version.ErrChatNotFound) {
			return uuid.Nil, chatErr
		}
	case !errors.Is(err, chatfile.ErrNoCurrentChat):
		return uuid.Nil, fmt.Errorf("failed to load current chat: %w", err)
	}

	chats, err := runtime.Store.Chats(ctx, 1)
	if err != nil {
		return uuid.Nil, err
	}
	if len(chats) > 0 {
		return chats[0].ID, nil
	}

	chat, err := runtime.Store.CreateChat(ctx, "")
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create chat: %w", err)
	}
	return chat.ID, nil
}
