package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/google/uuid"
	"go.uber.org/goleak"

	"github.com/koopa0/kelp/internal/log"
	"github.com/koopa0/kelp/internal/message"
	"github.com/koopa0/kelp/internal/version"
)

// fakeStore is an in-memory ChatStore for driving the model in tests.
type fakeStore struct {
	chat     message.Chat
	messages []message.Message
	versions []version.Version

	listErr   error
	switchErr error

	switchCalls []int
	deleteCalls []int
	editCalls   []string
}

func (f *fakeStore) ListVersions(_ context.Context, _ uuid.UUID, _ version.Role, _ int) ([]version.Version, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]version.Version, len(f.versions))
	copy(out, f.versions)
	return out, nil
}

func (f *fakeStore) SwitchVersion(_ context.Context, _ uuid.UUID, n int, _ version.Role) error {
	f.switchCalls = append(f.switchCalls, n)
	if f.switchErr != nil {
		return f.switchErr
	}
	for i := range f.versions {
		f.versions[i].IsCurrent = f.versions[i].Number == n
	}
	return nil
}

func (f *fakeStore) DeleteVersion(_ context.Context, _ uuid.UUID, n int, _ version.Role) error {
	f.deleteCalls = append(f.deleteCalls, n)
	return nil
}

func (f *fakeStore) CompareVersions(_ context.Context, _ uuid.UUID, a, b int, _ version.Role) (*version.ComparisonResult, error) {
	return &version.ComparisonResult{VersionA: a, VersionB: b}, nil
}

func (f *fakeStore) Chat(_ context.Context, _ uuid.UUID) (*message.Chat, error) {
	c := f.chat
	return &c, nil
}

func (f *fakeStore) ActiveMessages(_ context.Context, _ uuid.UUID) ([]message.Message, error) {
	out := make([]message.Message, len(f.messages))
	copy(out, f.messages)
	return out, nil
}

func (f *fakeStore) EditMessage(_ context.Context, _ uuid.UUID, _ version.Role, content string) (int, error) {
	f.editCalls = append(f.editCalls, content)
	return len(f.versions) + 1, nil
}

func newFakeStore() *fakeStore {
	chatID := uuid.New()
	now := time.Now()
	return &fakeStore{
		chat: message.Chat{ID: chatID, Title: "test chat", CreatedAt: now, UpdatedAt: now},
		messages: []message.Message{
			{ID: uuid.New(), ChatID: chatID, Role: version.RoleUser, Content: "question", Active: true, Position: 1},
			{ID: uuid.New(), ChatID: chatID, Role: version.RoleAssistant, Content: "answer", Active: true, Position: 2},
		},
		versions: []version.Version{
			{Number: 1, Content: "question v1", Preview: "question v1", CreatedAt: now},
			{Number: 2, Content: "question v2", Preview: "question v2", CreatedAt: now},
			{Number: 3, IsCurrent: true, Content: "question", Preview: "question", CreatedAt: now},
		},
	}
}

// newTestTUI builds a model wired to the fake store with the transcript and
// version controller already loaded, cursor on the user message.
func newTestTUI(t *testing.T, store *fakeStore) *TUI {
	t.Helper()

	tui, err := New(context.Background(), store, store.chat.ID, log.NewNop(), Options{
		WriteClipboard: func(string) error { return nil },
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	loaded := tui.loadMessages()().(messagesLoadedMsg)
	if loaded.err != nil {
		t.Fatalf("loadMessages: %v", loaded.err)
	}
	if _, cmd := tui.Update(loaded); cmd != nil {
		if nav, ok := cmd().(navLoadedMsg); ok {
			tui.Update(nav)
		}
	}
	return tui
}

func keyPress(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func ctrlKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code, Mod: tea.ModCtrl}
}

func TestNew_Validation(t *testing.T) {
	store := newFakeStore()
	ctx := context.Background()

	if _, err := New(ctx, nil, uuid.New(), log.NewNop(), Options{}); err == nil {
		t.Error("expected error for nil store")
	}
	//lint:ignore SA1012 intentionally testing nil context handling
	if _, err := New(nil, store, uuid.New(), log.NewNop(), Options{}); err == nil { //nolint:staticcheck
		t.Error("expected error for nil context")
	}
	if _, err := New(ctx, store, uuid.Nil, log.NewNop(), Options{}); err == nil {
		t.Error("expected error for nil chat ID")
	}
}

func TestTUI_Init(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := newFakeStore()
	tui, err := New(context.Background(), store, store.chat.ID, log.NewNop(), Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if cmd := tui.Init(); cmd == nil {
		t.Error("Init should return a command (spinner tick + load)")
	}
	tui.cleanup()
}

func TestTUI_LoadsTranscriptAndController(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := newFakeStore()
	tui := newTestTUI(t, store)
	defer tui.cleanup()

	if len(tui.messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(tui.messages))
	}
	if tui.ctrl == nil {
		t.Fatal("controller not built for selected message")
	}
	if !tui.nav.Visible || tui.nav.Current != 3 || tui.nav.Total != 3 {
		t.Errorf("nav = %+v, want visible 3/3", tui.nav)
	}
}

func TestTUI_StaleNavLoadIgnored(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := newFakeStore()
	tui := newTestTUI(t, store)
	defer tui.cleanup()

	before := tui.ctrl
	tui.Update(navLoadedMsg{cursor: 5, ctrl: nil})
	if tui.ctrl != before {
		t.Error("stale nav load must not replace the controller")
	}
}

func TestTUI_StepVersion(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := newFakeStore()
	tui := newTestTUI(t, store)
	defer tui.cleanup()

	_, cmd := tui.handleKey(keyPress(tea.KeyRight))
	if !tui.busy {
		t.Fatal("step must mark the model busy")
	}
	if cmd == nil {
		t.Fatal("step must return a command")
	}

	// StepNext from 3/3 wraps to 1 and asks for a transcript reload.
	msgs := drainBatch(t, cmd)
	done := findOpDone(t, msgs)
	if done.snapshot.Current != 1 {
		t.Errorf("current = %d, want wrap to 1", done.snapshot.Current)
	}
	if !done.reload {
		t.Error("successful switch must reload the transcript")
	}
	if len(store.switchCalls) != 1 || store.switchCalls[0] != 1 {
		t.Errorf("switch calls = %v, want [1]", store.switchCalls)
	}
}

func TestTUI_StepVersionFailureKeepsCurrent(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := newFakeStore()
	store.switchErr = errors.New("db down")
	tui := newTestTUI(t, store)
	defer tui.cleanup()

	_, cmd := tui.handleKey(keyPress(tea.KeyLeft))
	done := findOpDone(t, drainBatch(t, cmd))
	if done.snapshot.Current != 3 {
		t.Errorf("current = %d, want unchanged 3", done.snapshot.Current)
	}
	if done.reload {
		t.Error("failed switch must not reload the transcript")
	}
	if done.snapshot.ErrorText == "" {
		t.Error("failure must surface an inline error")
	}
}

func TestTUI_BusyDisablesControls(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := newFakeStore()
	tui := newTestTUI(t, store)
	defer tui.cleanup()
	tui.busy = true

	if _, cmd := tui.handleKey(keyPress(tea.KeyRight)); cmd != nil {
		t.Error("busy model must ignore version keys")
	}
	if _, cmd := tui.handleKey(keyPress('v')); cmd != nil {
		t.Error("busy model must ignore the browser key")
	}
	if len(store.switchCalls) != 0 {
		t.Errorf("store calls while busy = %v", store.switchCalls)
	}
}

func TestTUI_IndicatorSuppressedForSingleVersion(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := newFakeStore()
	store.versions = store.versions[2:] // only the current version remains
	tui := newTestTUI(t, store)
	defer tui.cleanup()

	if tui.nav.Visible {
		t.Error("indicator must be hidden for a single-version set")
	}
	if _, cmd := tui.handleKey(keyPress(tea.KeyRight)); cmd != nil {
		t.Error("hidden indicator must not accept step keys")
	}
}

func TestTUI_BrowserFlow(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := newFakeStore()
	tui := newTestTUI(t, store)
	defer tui.cleanup()

	// Open the browser.
	_, cmd := tui.handleKey(keyPress('v'))
	if tui.state != StateVersions {
		t.Fatalf("state = %v, want StateVersions", tui.state)
	}
	done := findOpDone(t, drainBatch(t, cmd))
	tui.Update(done)
	if !tui.nav.BrowserOpen || len(tui.nav.Versions) != 3 {
		t.Fatalf("nav after open = %+v", tui.nav)
	}

	// Move the cursor and pick a version: normal mode switches and closes.
	tui.handleKey(keyPress('j'))
	if tui.verCursor != 1 {
		t.Fatalf("verCursor = %d, want 1", tui.verCursor)
	}
	_, cmd = tui.handleKey(keyPress(tea.KeyEnter))
	done = findOpDone(t, drainBatch(t, cmd))
	model, _ := tui.Update(done)
	tui = model.(*TUI)
	if tui.nav.Current != 2 {
		t.Errorf("current = %d, want 2", tui.nav.Current)
	}
	if tui.state != StateBrowse || tui.nav.BrowserOpen {
		t.Error("successful selection must close the browser")
	}
}

func TestTUI_BrowserEscapeCloses(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := newFakeStore()
	tui := newTestTUI(t, store)
	defer tui.cleanup()

	_, cmd := tui.handleKey(keyPress('v'))
	tui.Update(findOpDone(t, drainBatch(t, cmd)))

	tui.handleKey(keyPress(tea.KeyEscape))
	if tui.state != StateBrowse || tui.nav.BrowserOpen {
		t.Error("escape must close the browser")
	}
}

func TestTUI_CompareFlow(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := newFakeStore()
	tui := newTestTUI(t, store)
	defer tui.cleanup()

	_, cmd := tui.handleKey(keyPress('v'))
	tui.Update(findOpDone(t, drainBatch(t, cmd)))

	// Enter compare mode and pick two versions.
	tui.handleKey(keyPress(tea.KeyTab))
	if !tui.nav.CompareMode {
		t.Fatal("tab must enable compare mode")
	}

	_, cmd = tui.handleKey(keyPress(tea.KeyEnter)) // v1
	tui.Update(findOpDone(t, drainBatch(t, cmd)))
	tui.handleKey(keyPress('j'))
	_, cmd = tui.handleKey(keyPress(tea.KeyEnter)) // v2
	tui.Update(findOpDone(t, drainBatch(t, cmd)))

	if len(store.switchCalls) != 0 {
		t.Errorf("compare-mode selection must not switch, calls = %v", store.switchCalls)
	}
	if len(tui.nav.Selected) != 2 {
		t.Fatalf("selected = %v, want two picks", tui.nav.Selected)
	}

	// Run the comparison.
	_, cmd = tui.handleKey(keyPress('c'))
	done := findOpDone(t, drainBatch(t, cmd))
	if done.compare == nil {
		t.Fatal("compare must deliver a result")
	}
	tui.Update(done)
	if tui.state != StateCompare {
		t.Errorf("state = %v, want StateCompare", tui.state)
	}

	// Escape returns to the browser.
	tui.handleKey(keyPress(tea.KeyEscape))
	if tui.state != StateVersions || tui.compareResult != nil {
		t.Error("escape must return to the browser and drop the result")
	}
}

func TestTUI_DeleteFromBrowser(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := newFakeStore()
	tui := newTestTUI(t, store)
	defer tui.cleanup()

	_, cmd := tui.handleKey(keyPress('v'))
	tui.Update(findOpDone(t, drainBatch(t, cmd)))

	// Delete the first (non-current) version.
	_, cmd = tui.handleKey(keyPress('d'))
	done := findOpDone(t, drainBatch(t, cmd))
	if done.reload {
		t.Error("delete must not reload the transcript")
	}
	if len(store.deleteCalls) != 1 || store.deleteCalls[0] != 1 {
		t.Errorf("delete calls = %v, want [1]", store.deleteCalls)
	}
}

func TestTUI_EditFlow(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := newFakeStore()
	tui := newTestTUI(t, store)
	defer tui.cleanup()

	tui.handleKey(keyPress('e'))
	if tui.state != StateEditing {
		t.Fatalf("state = %v, want StateEditing", tui.state)
	}
	if tui.input.Value() != "question" {
		t.Errorf("draft = %q, want original content", tui.input.Value())
	}

	tui.input.SetValue("revised question")
	_, cmd := tui.handleKey(ctrlKey('s'))
	if tui.state != StateBrowse {
		t.Fatalf("state after save = %v, want StateBrowse", tui.state)
	}
	if cmd == nil {
		t.Fatal("changed draft must commit")
	}
	done := drainBatch(t, cmd)
	var edit editDoneMsg
	found := false
	for _, m := range done {
		if e, ok := m.(editDoneMsg); ok {
			edit, found = e, true
		}
	}
	if !found {
		t.Fatal("expected editDoneMsg")
	}
	if edit.err != nil {
		t.Fatalf("edit err = %v", edit.err)
	}
	if len(store.editCalls) != 1 || store.editCalls[0] != "revised question" {
		t.Errorf("edit calls = %v", store.editCalls)
	}
}

func TestTUI_EditUnchangedDraftDoesNotCommit(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := newFakeStore()
	tui := newTestTUI(t, store)
	defer tui.cleanup()

	tui.handleKey(keyPress('e'))
	_, cmd := tui.handleKey(ctrlKey('s'))
	if cmd != nil {
		t.Error("unchanged draft must not commit")
	}
	if tui.state != StateBrowse {
		t.Errorf("state = %v, want StateBrowse", tui.state)
	}
	if len(store.editCalls) != 0 {
		t.Errorf("edit calls = %v, want none", store.editCalls)
	}
}

func TestTUI_EditRejectedForAssistant(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := newFakeStore()
	tui := newTestTUI(t, store)
	defer tui.cleanup()

	// Move to the assistant message.
	model, _ := tui.moveCursor(1)
	tui = model.(*TUI)

	tui.handleKey(keyPress('e'))
	if tui.state == StateEditing {
		t.Error("assistant messages must not be editable")
	}
	if tui.statusText == "" {
		t.Error("rejected edit should explain itself")
	}
}

func TestTUI_Versioned(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := newFakeStore()
	tui := newTestTUI(t, store)
	defer tui.cleanup()

	// Both messages are the newest of their role.
	if !tui.versioned(0) || !tui.versioned(1) {
		t.Error("newest messages of each role must be versioned")
	}

	tui.messages = append(tui.messages, message.Message{Role: version.RoleUser, Content: "later", Active: true, Position: 3})
	if tui.versioned(0) {
		t.Error("superseded user message must not be versioned")
	}
	if !tui.versioned(2) {
		t.Error("newest user message must be versioned")
	}
}

// drainBatch executes a command, flattening tea.Batch results into messages.
// Spinner ticks are dropped.
func drainBatch(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}
	var out []tea.Msg
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch m := c().(type) {
		case tea.BatchMsg:
			queue = append(queue, m...)
		default:
			out = append(out, m)
		}
	}
	return out
}

func findOpDone(t *testing.T, msgs []tea.Msg) opDoneMsg {
	t.Helper()
	for _, m := range msgs {
		if done, ok := m.(opDoneMsg); ok {
			return done
		}
	}
	t.Fatal("expected opDoneMsg")
	return opDoneMsg{}
}
