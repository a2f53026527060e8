// Package chatfile persists the active chat ID to local state so consecutive
// kelp invocations reopen the same conversation.
//
// The state file lives at ~/.kelp/current_chat. Writes are atomic (temp file
// plus rename) and guarded by an advisory file lock so concurrent kelp
// processes cannot interleave partial writes.
package chatfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

// ErrNoCurrentChat indicates no chat has been marked current yet.
var ErrNoCurrentChat = errors.New("no current chat")

const (
	stateDirName  = ".kelp"
	stateFileName = "current_chat"
	lockFileName  = "current_chat.lock"
)

// State reads and writes the current-chat file in one state directory.
type State struct {
	dir string
}

// New creates a State rooted at dir, creating the directory if needed.
func New(dir string) (*State, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	return &State{dir: dir}, nil
}

// Default creates a State rooted at ~/.kelp.
func Default() (*State, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return New(filepath.Join(home, stateDirName))
}

// Save marks chatID as the current chat.
func (s *State) Save(chatID uuid.UUID) error {
	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()

	// Write-then-rename keeps readers from ever seeing a torn file.
	path := s.path()
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(chatID.String()+"\n"), 0600); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}

// Load returns the current chat ID, or ErrNoCurrentChat when none has been
// saved.
func (s *State) Load() (uuid.UUID, error) {
	unlock, err := s.lock()
	if err != nil {
		return uuid.Nil, err
	}
	defer unlock()

	data, err := os.ReadFile(s.path())
	if os.IsNotExist(err) {
		return uuid.Nil, ErrNoCurrentChat
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to read state file: %w", err)
	}

	id, err := uuid.Parse(strings.TrimSpace(string(data)))
	if err != nil {
		return uuid.Nil, fmt.Errorf("corrupt state file %s: %w", s.path(), err)
	}
	return id, nil
}

// Clear removes the state file. Idempotent: clearing when no current chat
// exists is not an error.
func (s *State) Clear() error {
	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()

	if err := os.Remove(s.path()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove state file: %w", err)
	}
	return nil
}

func (s *State) path() string {
	return filepath.Join(s.dir, stateFileName)
}

// lock takes the advisory lock guarding the state file and returns the
// release function.
func (s *State) lock() (func(), error) {
	lock := flock.New(filepath.Join(s.dir, lockFileName))
	if err := lock.Lock(); err != nil {
		return nil, fmt.Errorf("failed to lock state file: %w", err)
	}
	return func() { _ = lock.Unlock() }, nil
}
