// Package cmd provides CLI commands for kelp.
//
// Commands:
//   - chat: interactive transcript with version navigation (Bubble Tea TUI)
//   - chats: list chats
//   - versions: print the version set of the current chat
//   - migrate: apply database migrations
//
// Signal handling and graceful shutdown are implemented for all commands
// via context cancellation.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/koopa0/kelp/internal/log"
)

// Execute is the main entry point for the kelp CLI application.
func Execute() error {
	// Initialize logger once at entry point
	level := slog.LevelInfo
	if os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	logger := log.New(log.Config{Level: level})
	slog.SetDefault(logger)

	if len(os.Args) < 2 {
		runHelp()
		return nil
	}

	switch os.Args[1] {
	case "chat":
		return runChat(os.Args[2:], logger)
	case "chats":
		return runChats(logger)
	case "versions":
		return runVersions(os.Args[2:], logger)
	case "migrate":
		return runMigrate(logger)
	case "version", "--version", "-v":
		runVersion()
		return nil
	case "help", "--help", "-h":
		runHelp()
		return nil
	default:
		return fmt.Errorf("unknown command: %s", os.Args[1])
	}
}

// runHelp displays the help message.
func runHelp() {
	fmt.Println("Kelp - Branched chat history in your terminal")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  kelp chat [id|new [title]]  Open a chat (default: most recent)")
	fmt.Println("  kelp chats                  List chats")
	fmt.Println("  kelp versions [role]        Print the version set of the current chat")
	fmt.Println("  kelp migrate                Apply database migrations")
	fmt.Println("  kelp --version              Show version information")
	fmt.Println("  kelp --help                 Show this help")
	fmt.Println()
	fmt.Println("Shortcuts (in chat mode):")
	fmt.Println("  ↑/↓                Select a message")
	fmt.Println("  ←/→                Step through its versions")
	fmt.Println("  v                  Browse versions (d delete, tab compare)")
	fmt.Println("  e                  Edit the latest user message")
	fmt.Println("  y                  Copy to clipboard")
	fmt.Println("  q / Ctrl+C         Quit")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  DATABASE_URL       Optional: overrides the postgres_* settings")
	fmt.Println("  KELP_*             Optional: override any config key")
	fmt.Println("  DEBUG              Optional: Enable debug logging")
	fmt.Println()
	fmt.Println("Learn more: https://github.com/koopa0/kelp")
}
