package testutil

import (
	"github.com/koopa0/kelp/internal/log"
)

// NewNopLogger returns a logger that discards all output, for use in tests
// that don't inspect log entries.
func NewNopLogger() log.Logger {
	return log.NewNop()
}
