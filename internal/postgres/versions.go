package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/koopa0/kelp/internal/diff"
	"github.com/koopa0/kelp/internal/version"
)

// ListVersions implements version.Store.
func (s *Store) ListVersions(ctx context.Context, chatID uuid.UUID, role version.Role, limit int) ([]version.Version, error) {
	if limit <= 0 {
		limit = version.DefaultFetchLimit
	}

	rows, err := s.pool.Query(ctx, `
		SELECT version_number, is_current, content, content_preview, word_count, character_count, created_at
		FROM message_versions
		WHERE chat_id = $1 AND role = $2
		ORDER BY version_number
		LIMIT $3`,
		chatID, role, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}
	defer rows.Close()

	var versions []version.Version
	for rows.Next() {
		var v version.Version
		if err := rows.Scan(&v.Number, &v.IsCurrent, &v.Content, &v.Preview, &v.WordCount, &v.CharCount, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan version: %w", err)
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}
	return versions, nil
}

// SwitchVersion implements version.Store. It flips the current flag to
// version n and rewrites the transcript message content to match, so the
// displayed message always reflects the current version. Reissuing with the
// already-current target is a harmless no-op.
func (s *Store) SwitchVersion(ctx context.Context, chatID uuid.UUID, n int, role version.Role) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var content string
	err = tx.QueryRow(ctx, `
		SELECT content
		FROM message_versions
		WHERE chat_id = $1 AND role = $2 AND version_number = $3
		FOR UPDATE`,
		chatID, role, n,
	).Scan(&content)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: chat %s role %s version %d", version.ErrVersionNotFound, chatID, role, n)
	}
	if err != nil {
		return fmt.Errorf("failed to load target version: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE message_versions SET is_current = FALSE
		WHERE chat_id = $1 AND role = $2 AND is_current AND version_number <> $3`,
		chatID, role, n,
	); err != nil {
		return fmt.Errorf("failed to clear current version: %w", err)
	}
	if _, err := tx.Exec(ctx, `
		UPDATE message_versions SET is_current = TRUE
		WHERE chat_id = $1 AND role = $2 AND version_number = $3`,
		chatID, role, n,
	); err != nil {
		return fmt.Errorf("failed to set current version: %w", err)
	}

	// Mirror the switch into the displayed transcript.
	if _, err := tx.Exec(ctx, `
		UPDATE messages SET content = $1
		WHERE id = (
			SELECT id FROM messages
			WHERE chat_id = $2 AND role = $3 AND active
			ORDER BY position DESC
			LIMIT 1
		)`,
		content, chatID, role,
	); err != nil {
		return fmt.Errorf("failed to update transcript message: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit switch: %w", err)
	}

	s.logger.Debug("switched version", "chat_id", chatID, "role", role, "version", n)
	return nil
}

// DeleteVersion implements version.Store. The current version cannot be
// deleted. Remaining versions above n are renumbered down so the set stays
// dense and 1-based; the unique constraint on version numbers is deferred
// for the duration of the renumbering transaction.
func (s *Store) DeleteVersion(ctx context.Context, chatID uuid.UUID, n int, role version.Role) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var isCurrent bool
	err = tx.QueryRow(ctx, `
		SELECT is_current
		FROM message_versions
		WHERE chat_id = $1 AND role = $2 AND version_number = $3
		FOR UPDATE`,
		chatID, role, n,
	).Scan(&isCurrent)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: chat %s role %s version %d", version.ErrVersionNotFound, chatID, role, n)
	}
	if err != nil {
		return fmt.Errorf("failed to load version: %w", err)
	}
	if isCurrent {
		return fmt.Errorf("%w: chat %s role %s version %d", version.ErrDeleteCurrentVersion, chatID, role, n)
	}

	if _, err := tx.Exec(ctx, `SET CONSTRAINTS message_versions_set_number_key DEFERRED`); err != nil {
		return fmt.Errorf("failed to defer version numbering constraint: %w", err)
	}
	if _, err := tx.Exec(ctx, `
		DELETE FROM message_versions
		WHERE chat_id = $1 AND role = $2 AND version_number = $3`,
		chatID, role, n,
	); err != nil {
		return fmt.Errorf("failed to delete version: %w", err)
	}
	if _, err := tx.Exec(ctx, `
		UPDATE message_versions SET version_number = version_number - 1
		WHERE chat_id = $1 AND role = $2 AND version_number > $3`,
		chatID, role, n,
	); err != nil {
		return fmt.Errorf("failed to renumber versions: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}

	s.logger.Debug("deleted version", "chat_id", chatID, "role", role, "version", n)
	return nil
}

// CompareVersions implements version.Store.
func (s *Store) CompareVersions(ctx context.Context, chatID uuid.UUID, a, b int, role version.Role) (*version.ComparisonResult, error) {
	contentA, err := s.versionContent(ctx, chatID, role, a)
	if err != nil {
		return nil, err
	}
	contentB, err := s.versionContent(ctx, chatID, role, b)
	if err != nil {
		return nil, err
	}
	return diff.Compare(a, b, contentA, contentB), nil
}

func (s *Store) versionContent(ctx context.Context, chatID uuid.UUID, role version.Role, n int) (string, error) {
	var content string
	err := s.pool.QueryRow(ctx, `
		SELECT content
		FROM message_versions
		WHERE chat_id = $1 AND role = $2 AND version_number = $3`,
		chatID, role, n,
	).Scan(&content)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("%w: chat %s role %s version %d", version.ErrVersionNotFound, chatID, role, n)
	}
	if err != nil {
		return "", fmt.Errorf("failed to load version content: %w", err)
	}
	return content, nil
}
