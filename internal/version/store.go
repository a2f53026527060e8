package version

import (
	"context"

	"github.com/google/uuid"
)

// Store is the external version-store contract consumed by [Controller].
// Following Go best practices the interface is defined by the consumer;
// the PostgreSQL implementation lives in internal/postgres.
//
// All methods may fail with store-level errors (network, auth, not-found);
// the controller captures those rather than propagating them.
type Store interface {
	// ListVersions returns the version set for (chatID, role) ordered by
	// version number, capped at limit entries.
	ListVersions(ctx context.Context, chatID uuid.UUID, role Role, limit int) ([]Version, error)

	// SwitchVersion makes version n the current version of the set.
	// Implementations must be idempotent when reissued with the same target.
	SwitchVersion(ctx context.Context, chatID uuid.UUID, n int, role Role) error

	// DeleteVersion removes version n from the set. Refusing to delete the
	// current version is the controller's responsibility; implementations
	// may additionally reject it with ErrDeleteCurrentVersion.
	DeleteVersion(ctx context.Context, chatID uuid.UUID, n int, role Role) error

	// CompareVersions diffs version a against version b.
	CompareVersions(ctx context.Context, chatID uuid.UUID, a, b int, role Role) (*ComparisonResult, error)
}
