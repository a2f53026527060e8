//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/koopa0/kelp/internal/testutil"
	"github.com/koopa0/kelp/internal/version"
)

func setupStore(t *testing.T) (*Store, func()) {
	t.Helper()
	db, cleanup := testutil.SetupTestDB(t)
	return New(db.Pool, testutil.NewNopLogger()), cleanup
}

func TestChatLifecycle(t *testing.T) {
	store, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	chat, err := store.CreateChat(ctx, "planning session")
	if err != nil {
		t.Fatalf("CreateChat: %v", err)
	}
	if chat.Title != "planning session" {
		t.Errorf("title = %q", chat.Title)
	}

	got, err := store.Chat(ctx, chat.ID)
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if got.ID != chat.ID {
		t.Errorf("chat ID = %s, want %s", got.ID, chat.ID)
	}

	chats, err := store.Chats(ctx, 0)
	if err != nil {
		t.Fatalf("Chats: %v", err)
	}
	if len(chats) != 1 {
		t.Errorf("chats = %d, want 1", len(chats))
	}

	if err := store.DeleteChat(ctx, chat.ID); err != nil {
		t.Fatalf("DeleteChat: %v", err)
	}
	if _, err := store.Chat(ctx, chat.ID); !errors.Is(err, version.ErrChatNotFound) {
		t.Errorf("Chat after delete = %v, want ErrChatNotFound", err)
	}
}

func TestChat_NotFound(t *testing.T) {
	store, cleanup := setupStore(t)
	defer cleanup()

	_, err := store.Chat(context.Background(), uuid.New())
	if !errors.Is(err, version.ErrChatNotFound) {
		t.Errorf("err = %v, want ErrChatNotFound", err)
	}
}

func TestAppendMessage_SeedsVersionSet(t *testing.T) {
	store, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	chat, err := store.CreateChat(ctx, "")
	if err != nil {
		t.Fatalf("CreateChat: %v", err)
	}

	msg, err := store.AppendMessage(ctx, chat.ID, version.RoleUser, "hello world")
	if err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}
	if msg.Position != 1 || !msg.Active {
		t.Errorf("message = %+v, want position 1 active", msg)
	}

	versions, err := store.ListVersions(ctx, chat.ID, version.RoleUser, 0)
	if err != nil {
		t.Fatalf("ListVersions: %v", err)
	}
	if len(versions) != 1 {
		t.Fatalf("versions = %d, want 1", len(versions))
	}
	v := versions[0]
	if v.Number != 1 || !v.IsCurrent || v.Content != "hello world" {
		t.Errorf("version = %+v", v)
	}
	if v.WordCount != 2 || v.CharCount != 11 {
		t.Errorf("derived counts = %d words %d chars, want 2/11", v.WordCount, v.CharCount)
	}
}

func TestEditMessage_BranchesConversation(t *testing.T) {
	store, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	chat, _ := store.CreateChat(ctx, "")
	if _, err := store.AppendMessage(ctx, chat.ID, version.RoleUser, "original question"); err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}
	if _, err := store.AppendMessage(ctx, chat.ID, version.RoleAssistant, "original answer"); err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}

	newVersion, err := store.EditMessage(ctx, chat.ID, version.RoleUser, "revised question")
	if err != nil {
		t.Fatalf("EditMessage: %v", err)
	}
	if newVersion != 2 {
		t.Errorf("new version = %d, want 2", newVersion)
	}

	// The downstream assistant message is deactivated.
	msgs, err := store.ActiveMessages(ctx, chat.ID)
	if err != nil {
		t.Fatalf("ActiveMessages: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("active messages = %d, want 1", len(msgs))
	}
	if msgs[0].Content != "revised question" {
		t.Errorf("content = %q, want revised content", msgs[0].Content)
	}

	// Version set now holds both versions with the new one current.
	versions, err := store.ListVersions(ctx, chat.ID, version.RoleUser, 0)
	if err != nil {
		t.Fatalf("ListVersions: %v", err)
	}
	if len(versions) != 2 {
		t.Fatalf("versions = %d, want 2", len(versions))
	}
	if versions[0].IsCurrent || !versions[1].IsCurrent {
		t.Errorf("current flags = %v/%v, want false/true", versions[0].IsCurrent, versions[1].IsCurrent)
	}
}

func TestSwitchVersion_FlipsCurrentAndTranscript(t *testing.T) {
	store, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	chat, _ := store.CreateChat(ctx, "")
	_, _ = store.AppendMessage(ctx, chat.ID, version.RoleUser, "take one")
	if _, err := store.EditMessage(ctx, chat.ID, version.RoleUser, "take two"); err != nil {
		t.Fatalf("EditMessage: %v", err)
	}

	if err := store.SwitchVersion(ctx, chat.ID, 1, version.RoleUser); err != nil {
		t.Fatalf("SwitchVersion: %v", err)
	}

	versions, _ := store.ListVersions(ctx, chat.ID, version.RoleUser, 0)
	if !versions[0].IsCurrent || versions[1].IsCurrent {
		t.Errorf("current flags after switch = %v/%v, want true/false", versions[0].IsCurrent, versions[1].IsCurrent)
	}

	msgs, _ := store.ActiveMessages(ctx, chat.ID)
	if len(msgs) != 1 || msgs[0].Content != "take one" {
		t.Errorf("transcript = %+v, want content of version 1", msgs)
	}

	// Idempotent when reissued with the same target.
	if err := store.SwitchVersion(ctx, chat.ID, 1, version.RoleUser); err != nil {
		t.Errorf("reissued switch = %v, want nil", err)
	}
}

func TestSwitchVersion_UnknownTarget(t *testing.T) {
	store, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	chat, _ := store.CreateChat(ctx, "")
	_, _ = store.AppendMessage(ctx, chat.ID, version.RoleUser, "only version")

	err := store.SwitchVersion(ctx, chat.ID, 7, version.RoleUser)
	if !errors.Is(err, version.ErrVersionNotFound) {
		t.Errorf("err = %v, want ErrVersionNotFound", err)
	}
}

func TestDeleteVersion_RenumbersSet(t *testing.T) {
	store, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	chat, _ := store.CreateChat(ctx, "")
	_, _ = store.AppendMessage(ctx, chat.ID, version.RoleUser, "one")
	_, _ = store.EditMessage(ctx, chat.ID, version.RoleUser, "two")
	_, _ = store.EditMessage(ctx, chat.ID, version.RoleUser, "three")

	// Delete the middle version: three (current) stays, set stays dense.
	if err := store.DeleteVersion(ctx, chat.ID, 2, version.RoleUser); err != nil {
		t.Fatalf("DeleteVersion: %v", err)
	}

	versions, err := store.ListVersions(ctx, chat.ID, version.RoleUser, 0)
	if err != nil {
		t.Fatalf("ListVersions: %v", err)
	}
	if len(versions) != 2 {
		t.Fatalf("versions = %d, want 2", len(versions))
	}
	if versions[0].Number != 1 || versions[1].Number != 2 {
		t.Errorf("numbers = %d,%d, want dense 1,2", versions[0].Number, versions[1].Number)
	}
	if versions[0].Content != "one" || versions[1].Content != "three" {
		t.Errorf("contents = %q,%q, want one,three", versions[0].Content, versions[1].Content)
	}
	if !versions[1].IsCurrent {
		t.Error("renumbered current version must stay current")
	}
}

func TestDeleteVersion_RejectsCurrent(t *testing.T) {
	store, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	chat, _ := store.CreateChat(ctx, "")
	_, _ = store.AppendMessage(ctx, chat.ID, version.RoleUser, "one")
	_, _ = store.EditMessage(ctx, chat.ID, version.RoleUser, "two")

	err := store.DeleteVersion(ctx, chat.ID, 2, version.RoleUser)
	if !errors.Is(err, version.ErrDeleteCurrentVersion) {
		t.Errorf("err = %v, want ErrDeleteCurrentVersion", err)
	}
}

func TestCompareVersions(t *testing.T) {
	store, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	chat, _ := store.CreateChat(ctx, "")
	_, _ = store.AppendMessage(ctx, chat.ID, version.RoleUser, "the quick fox")
	_, _ = store.EditMessage(ctx, chat.ID, version.RoleUser, "the slow fox")

	result, err := store.CompareVersions(ctx, chat.ID, 1, 2, version.RoleUser)
	if err != nil {
		t.Fatalf("CompareVersions: %v", err)
	}
	if result.Identical {
		t.Error("differing versions must not be identical")
	}
	if result.VersionA != 1 || result.VersionB != 2 {
		t.Errorf("pair = %d/%d, want 1/2", result.VersionA, result.VersionB)
	}

	_, err = store.CompareVersions(ctx, chat.ID, 1, 9, version.RoleUser)
	if !errors.Is(err, version.ErrVersionNotFound) {
		t.Errorf("err = %v, want ErrVersionNotFound", err)
	}
}

func TestAppendMessage_ResetsVersionSetForRole(t *testing.T) {
	store, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	chat, _ := store.CreateChat(ctx, "")
	_, _ = store.AppendMessage(ctx, chat.ID, version.RoleUser, "first question")
	_, _ = store.EditMessage(ctx, chat.ID, version.RoleUser, "first question, revised")

	// A brand new user message starts the set over.
	if _, err := store.AppendMessage(ctx, chat.ID, version.RoleUser, "second question"); err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}

	versions, _ := store.ListVersions(ctx, chat.ID, version.RoleUser, 0)
	if len(versions) != 1 {
		t.Fatalf("versions = %d, want fresh set of 1", len(versions))
	}
	if versions[0].Content != "second question" || !versions[0].IsCurrent {
		t.Errorf("version = %+v", versions[0])
	}
}
