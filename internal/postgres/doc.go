// Package postgres implements kelp's state of record: chats, transcript
// messages, and per-message version sets, backed by PostgreSQL via pgx.
//
// [Store] implements the version-store contract consumed by
// internal/version ([Store.ListVersions], [Store.SwitchVersion],
// [Store.DeleteVersion], [Store.CompareVersions]) alongside the chat
// persistence the host view needs ([Store.CreateChat], [Store.Chats],
// [Store.AppendMessage], [Store.ActiveMessages], [Store.EditMessage]).
//
// # Version sets
//
// A version set is keyed by (chat, role) and follows the most recent active
// message of that role: editing that message appends a new version and makes
// it current, while appending a fresh message for the role starts the set
// over at version 1. The schema enforces the set invariants — version
// numbers are unique per set and a partial unique index guarantees exactly
// one current version.
//
// # Branching
//
// [Store.EditMessage] implements the branching contract the UI warns about:
// the new content becomes a new current version and every message after the
// edited one is deactivated. Deactivated messages stay in the table; only
// active rows form the displayed transcript.
//
// # Concurrency
//
// Store is safe for concurrent use. Mutations run in transactions that lock
// the affected version set (SELECT ... FOR UPDATE), so concurrent edits
// cannot produce duplicate version numbers or two current versions.
package postgres
