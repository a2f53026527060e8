package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/koopa0/kelp/internal/message"
	"github.com/koopa0/kelp/internal/version"
)

// DefaultChatListLimit caps how many chats List returns by default.
const DefaultChatListLimit = 100

// ErrMessageNotFound indicates no active message exists for the requested
// (chat, role) pair.
var ErrMessageNotFound = errors.New("message not found")

// Store persists chats, transcript messages, and version sets in PostgreSQL.
//
// Store is safe for concurrent use by multiple goroutines.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// New creates a Store on top of an established connection pool.
// logger may be nil.
func New(pool *pgxpool.Pool, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{pool: pool, logger: logger}
}

// CreateChat creates a new conversation.
func (s *Store) CreateChat(ctx context.Context, title string) (*message.Chat, error) {
	var titlePtr *string
	if title != "" {
		titlePtr = &title
	}

	var chat message.Chat
	var storedTitle *string
	err := s.pool.QueryRow(ctx, `
		INSERT INTO chats (title)
		VALUES ($1)
		RETURNING id, title, created_at, updated_at`,
		titlePtr,
	).Scan(&chat.ID, &storedTitle, &chat.CreatedAt, &chat.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat: %w", err)
	}
	if storedTitle != nil {
		chat.Title = *storedTitle
	}

	s.logger.Debug("created chat", "id", chat.ID, "title", chat.Title)
	return &chat, nil
}

// Chat retrieves a chat by ID.
func (s *Store) Chat(ctx context.Context, id uuid.UUID) (*message.Chat, error) {
	var chat message.Chat
	var title *string
	err := s.pool.QueryRow(ctx, `
		SELECT id, title, created_at, updated_at
		FROM chats
		WHERE id = $1`,
		id,
	).Scan(&chat.ID, &title, &chat.CreatedAt, &chat.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", version.ErrChatNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chat: %w", err)
	}
	if title != nil {
		chat.Title = *title
	}
	return &chat, nil
}

// Chats lists chats ordered by most recent activity.
// limit <= 0 falls back to DefaultChatListLimit.
func (s *Store) Chats(ctx context.Context, limit int) ([]message.Chat, error) {
	if limit <= 0 {
		limit = DefaultChatListLimit
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, title, created_at, updated_at
		FROM chats
		ORDER BY updated_at DESC
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}
	defer rows.Close()

	var chats []message.Chat
	for rows.Next() {
		var chat message.Chat
		var title *string
		if err := rows.Scan(&chat.ID, &title, &chat.CreatedAt, &chat.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat: %w", err)
		}
		if title != nil {
			chat.Title = *title
		}
		chats = append(chats, chat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}
	return chats, nil
}

// DeleteChat removes a chat along with its messages and version sets.
func (s *Store) DeleteChat(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM chats WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete chat: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", version.ErrChatNotFound, id)
	}
	return nil
}

// AppendMessage appends an active message to the chat transcript and starts
// the (chat, role) version set over at version 1 seeded with the content.
func (s *Store) AppendMessage(ctx context.Context, chatID uuid.UUID, role version.Role, content string) (*message.Message, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("invalid role %q", role)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Lock the chat row so concurrent appends serialize on position.
	var exists uuid.UUID
	err = tx.QueryRow(ctx, `SELECT id FROM chats WHERE id = $1 FOR UPDATE`, chatID).Scan(&exists)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", version.ErrChatNotFound, chatID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock chat: %w", err)
	}

	var msg message.Message
	err = tx.QueryRow(ctx, `
		INSERT INTO messages (chat_id, role, content, position)
		SELECT $1, $2, $3, COALESCE(MAX(position), 0) + 1
		FROM messages WHERE chat_id = $1
		RETURNING id, chat_id, role, content, active, position, created_at`,
		chatID, role, content,
	).Scan(&msg.ID, &msg.ChatID, &msg.Role, &msg.Content, &msg.Active, &msg.Position, &msg.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert message: %w", err)
	}

	// A new message for the role means a fresh version set.
	if _, err := tx.Exec(ctx, `
		DELETE FROM message_versions WHERE chat_id = $1 AND role = $2`,
		chatID, role,
	); err != nil {
		return nil, fmt.Errorf("failed to reset version set: %w", err)
	}
	if err := insertVersion(ctx, tx, chatID, role, 1, content); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `UPDATE chats SET updated_at = now() WHERE id = $1`, chatID); err != nil {
		return nil, fmt.Errorf("failed to touch chat: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit message: %w", err)
	}

	s.logger.Debug("appended message", "chat_id", chatID, "role", role, "position", msg.Position)
	return &msg, nil
}

// ActiveMessages returns the displayed transcript: active messages in
// position order.
func (s *Store) ActiveMessages(ctx context.Context, chatID uuid.UUID) ([]message.Message, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, chat_id, role, content, active, position, created_at
		FROM messages
		WHERE chat_id = $1 AND active
		ORDER BY position`,
		chatID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var msgs []message.Message
	for rows.Next() {
		var msg message.Message
		if err := rows.Scan(&msg.ID, &msg.ChatID, &msg.Role, &msg.Content, &msg.Active, &msg.Position, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return msgs, nil
}

// EditMessage branches the conversation at the most recent active message of
// the given role: the trimmed new content becomes a new current version of
// the (chat, role) set, the message row takes the new content, and every
// message after it is deactivated. Returns the new version number.
func (s *Store) EditMessage(ctx context.Context, chatID uuid.UUID, role version.Role, content string) (int, error) {
	if !role.Valid() {
		return 0, fmt.Errorf("invalid role %q", role)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var msgID uuid.UUID
	var position int
	err = tx.QueryRow(ctx, `
		SELECT id, position
		FROM messages
		WHERE chat_id = $1 AND role = $2 AND active
		ORDER BY position DESC
		LIMIT 1
		FOR UPDATE`,
		chatID, role,
	).Scan(&msgID, &position)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("%w: chat %s role %s", ErrMessageNotFound, chatID, role)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to find message to edit: %w", err)
	}

	next, err := lockVersionSet(ctx, tx, chatID, role)
	if err != nil {
		return 0, err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE message_versions SET is_current = FALSE
		WHERE chat_id = $1 AND role = $2 AND is_current`,
		chatID, role,
	); err != nil {
		return 0, fmt.Errorf("failed to clear current version: %w", err)
	}
	if err := insertVersion(ctx, tx, chatID, role, next, content); err != nil {
		return 0, err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE messages SET content = $1 WHERE id = $2`,
		content, msgID,
	); err != nil {
		return 0, fmt.Errorf("failed to update message content: %w", err)
	}
	if _, err := tx.Exec(ctx, `
		UPDATE messages SET active = FALSE
		WHERE chat_id = $1 AND position > $2`,
		chatID, position,
	); err != nil {
		return 0, fmt.Errorf("failed to deactivate downstream messages: %w", err)
	}
	if _, err := tx.Exec(ctx, `UPDATE chats SET updated_at = now() WHERE id = $1`, chatID); err != nil {
		return 0, fmt.Errorf("failed to touch chat: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit edit: %w", err)
	}

	s.logger.Debug("edited message", "chat_id", chatID, "role", role, "version", next)
	return next, nil
}

// lockVersionSet locks the (chat, role) version set and returns the next
// free version number.
func lockVersionSet(ctx context.Context, tx pgx.Tx, chatID uuid.UUID, role version.Role) (int, error) {
	rows, err := tx.Query(ctx, `
		SELECT version_number
		FROM message_versions
		WHERE chat_id = $1 AND role = $2
		ORDER BY version_number
		FOR UPDATE`,
		chatID, role,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to lock version set: %w", err)
	}
	defer rows.Close()

	maxNumber := 0
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return 0, fmt.Errorf("failed to scan version number: %w", err)
		}
		if n > maxNumber {
			maxNumber = n
		}
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("failed to lock version set: %w", err)
	}
	return maxNumber + 1, nil
}

// insertVersion writes version n as the current version, deriving preview
// and counts from the content.
func insertVersion(ctx context.Context, tx pgx.Tx, chatID uuid.UUID, role version.Role, n int, content string) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO message_versions
			(chat_id, role, version_number, content, content_preview, word_count, character_count, is_current)
		VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE)`,
		chatID, role, n, content,
		version.ContentPreview(content),
		version.CountWords(content),
		utf8.RuneCountInString(content),
	)
	if err != nil {
		return fmt.Errorf("failed to insert version %d: %w", n, err)
	}
	return nil
}
