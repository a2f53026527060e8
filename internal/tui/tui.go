// Package tui provides the Bubble Tea terminal interface for kelp.
//
// The transcript of the current chat is rendered in a scrollable viewport.
// The selected message exposes its version controls: cyclic prev/next
// stepping, a version browser dialog with compare mode, and inline editing
// for user messages. All store calls run through tea.Cmd goroutines; the
// controls are disabled while one is in flight, so at most one store call is
// ever active per controller.
package tui

import (
	"context"
	"errors"
	"strings"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"github.com/atotto/clipboard"
	"github.com/google/uuid"

	"github.com/koopa0/kelp/internal/log"
	"github.com/koopa0/kelp/internal/message"
	"github.com/koopa0/kelp/internal/version"
)

// State represents the TUI state machine.
type State int

// TUI state machine states.
const (
	StateBrowse   State = iota // Navigating the transcript
	StateVersions              // Version browser dialog visible
	StateCompare               // Comparison result visible
	StateEditing               // Inline editor active
)

// Layout constants for viewport height calculation.
const (
	separatorLines = 2 // Separator above the context area and below it
	helpLines      = 1 // Help bar height
	contextLines   = 1 // Version indicator line
	minViewport    = 3 // Minimum viewport height
)

// ChatStore is the persistence surface the TUI needs: the version-store
// contract plus transcript access. Implemented by internal/postgres.
type ChatStore interface {
	version.Store

	Chat(ctx context.Context, id uuid.UUID) (*message.Chat, error)
	ActiveMessages(ctx context.Context, chatID uuid.UUID) ([]message.Message, error)
	EditMessage(ctx context.Context, chatID uuid.UUID, role version.Role, content string) (int, error)
}

// TUI is the Bubble Tea model for the kelp terminal interface.
type TUI struct {
	// Dependencies
	store  ChatStore
	logger log.Logger
	chatID uuid.UUID

	// Injected for tests; defaults to the system clipboard.
	writeClipboard func(string) error

	ctx       context.Context
	ctxCancel context.CancelFunc

	// Transcript
	messages []message.Message
	cursor   int
	title    string

	// Version navigation for the selected message. ctrl is nil until the
	// selected message's version set has been loaded; nav is the render
	// snapshot updated on the event loop.
	ctrl *version.Controller
	nav  version.Snapshot

	// Browser-local cursor into nav.Versions.
	verCursor int

	// Comparison result being displayed.
	compareResult *version.ComparisonResult

	// Editing
	editor      *message.Editor
	input       textarea.Model
	pendingEdit string

	// State
	state      State
	busy       bool // A store call is in flight; controls disabled.
	statusText string
	fetchLimit int

	// Widgets
	spinner  spinner.Model
	viewport viewport.Model
	help     help.Model
	keys     keyMap
	styles   Styles
	markdown *markdownRenderer

	width   int
	height  int
	viewBuf strings.Builder
}

// Options configure optional TUI behavior.
type Options struct {
	// Markdown disables glamour rendering of assistant messages when false.
	Markdown bool

	// FetchLimit caps version browser loads; zero uses the default.
	FetchLimit int

	// WriteClipboard overrides the system clipboard writer. Used by tests.
	WriteClipboard func(string) error
}

// New creates a TUI model for the given chat.
//
// ctx MUST be the same context passed to tea.WithContext() so cancellation
// behaves consistently.
func New(ctx context.Context, store ChatStore, chatID uuid.UUID, logger log.Logger, opts Options) (*TUI, error) {
	if store == nil {
		return nil, errors.New("tui.New: store is required")
	}
	if ctx == nil {
		return nil, errors.New("tui.New: ctx is required")
	}
	if chatID == uuid.Nil {
		return nil, errors.New("tui.New: chat ID is required")
	}
	if logger == nil {
		logger = log.NewNop()
	}

	ctx, cancel := context.WithCancel(ctx)

	ta := textarea.New()
	ta.Placeholder = "Edit message..."
	ta.SetHeight(5)
	ta.SetWidth(76)
	ta.ShowLineNumbers = false

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	vp := viewport.New(viewport.WithWidth(80), viewport.WithHeight(20))
	vp.MouseWheelEnabled = true
	vp.SoftWrap = true
	vp.KeyMap = viewport.KeyMap{} // Keys are routed explicitly in handleKey.

	var md *markdownRenderer
	if opts.Markdown {
		md = newMarkdownRenderer(80)
	}

	write := opts.WriteClipboard
	if write == nil {
		write = clipboard.WriteAll
	}

	t := &TUI{
		store:          store,
		logger:         logger,
		chatID:         chatID,
		writeClipboard: write,
		ctx:            ctx,
		ctxCancel:      cancel,
		input:          ta,
		spinner:        sp,
		viewport:       vp,
		help:           help.New(),
		keys:           newKeyMap(),
		styles:         DefaultStyles(),
		markdown:       md,
		width:          80,
		fetchLimit:     opts.FetchLimit,
	}
	return t, nil
}

// Init implements tea.Model.
func (t *TUI) Init() tea.Cmd {
	return tea.Batch(
		t.spinner.Tick,
		t.loadMessages(),
	)
}

// Update implements tea.Model.
func (t *TUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		return t.handleKey(msg)

	case tea.WindowSizeMsg:
		t.width = msg.Width
		t.height = msg.Height

		fixedHeight := separatorLines + contextLines + helpLines
		vpHeight := max(msg.Height-fixedHeight, minViewport)
		t.viewport.SetWidth(msg.Width)
		t.viewport.SetHeight(vpHeight)
		t.input.SetWidth(max(msg.Width-4, 20))
		t.help.SetWidth(msg.Width)
		t.markdown.UpdateWidth(msg.Width)

		t.rebuildViewportContent()
		return t, nil

	case tea.MouseWheelMsg:
		var cmd tea.Cmd
		t.viewport, cmd = t.viewport.Update(msg)
		return t, cmd

	case spinner.TickMsg:
		var cmd tea.Cmd
		t.spinner, cmd = t.spinner.Update(msg)
		return t, cmd

	case messagesLoadedMsg:
		return t.handleMessagesLoaded(msg)

	case navLoadedMsg:
		return t.handleNavLoaded(msg)

	case opDoneMsg:
		return t.handleOpDone(msg)

	case editDoneMsg:
		t.busy = false
		if msg.err != nil {
			t.statusText = "Edit failed: " + msg.err.Error()
			t.rebuildViewportContent()
			return t, nil
		}
		t.statusText = ""
		// The edit branched the conversation; reload everything.
		t.busy = true
		return t, t.loadMessages()
	}

	if t.state == StateEditing {
		var cmd tea.Cmd
		t.input, cmd = t.input.Update(msg)
		return t, cmd
	}
	return t, nil
}

// handleMessagesLoaded installs a freshly loaded transcript and kicks off
// version-set loading for the selected message.
func (t *TUI) handleMessagesLoaded(msg messagesLoadedMsg) (tea.Model, tea.Cmd) {
	t.busy = false
	if msg.err != nil {
		t.statusText = "Failed to load chat: " + msg.err.Error()
		t.rebuildViewportContent()
		return t, nil
	}

	t.messages = msg.messages
	t.title = msg.title
	if t.cursor >= len(t.messages) {
		t.cursor = max(len(t.messages)-1, 0)
	}
	t.rebuildViewportContent()
	t.viewport.GotoBottom()
	return t, t.loadNav()
}

// handleNavLoaded builds the version controller for the selected message.
func (t *TUI) handleNavLoaded(msg navLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.cursor != t.cursor {
		// Stale load for a message the user has already moved away from.
		return t, nil
	}

	t.ctrl = nil
	t.nav = version.Snapshot{}
	if msg.err != nil {
		t.logger.Warn("version set load failed", "chat_id", t.chatID, "error", msg.err)
		t.rebuildViewportContent()
		return t, nil
	}

	if msg.ctrl != nil {
		t.ctrl = msg.ctrl
		t.nav = msg.ctrl.Snapshot()
	}
	t.rebuildViewportContent()
	return t, nil
}

// handleOpDone applies the result of an asynchronous controller operation.
func (t *TUI) handleOpDone(msg opDoneMsg) (tea.Model, tea.Cmd) {
	t.busy = false
	t.nav = msg.snapshot
	t.clampVerCursor()

	if msg.compare != nil {
		t.compareResult = msg.compare
		t.state = StateCompare
	}
	if !t.nav.BrowserOpen && t.state == StateVersions {
		t.state = StateBrowse
	}

	if msg.reload {
		t.busy = true
		return t, t.loadMessages()
	}
	t.rebuildViewportContent()
	return t, nil
}

// selectedMessage returns the message under the cursor, or nil.
func (t *TUI) selectedMessage() *message.Message {
	if t.cursor < 0 || t.cursor >= len(t.messages) {
		return nil
	}
	return &t.messages[t.cursor]
}

// versioned reports whether the message at index i owns the live version set
// of its role, i.e. it is the role's most recent active message.
func (t *TUI) versioned(i int) bool {
	if i < 0 || i >= len(t.messages) {
		return false
	}
	role := t.messages[i].Role
	for j := i + 1; j < len(t.messages); j++ {
		if t.messages[j].Role == role {
			return false
		}
	}
	return true
}

// cleanup cancels the model context and returns the quit command.
func (t *TUI) cleanup() tea.Cmd {
	if t.ctxCancel != nil {
		t.ctxCancel()
		t.ctxCancel = nil
	}
	return tea.Quit
}

func (t *TUI) clampVerCursor() {
	if t.verCursor >= len(t.nav.Versions) {
		t.verCursor = max(len(t.nav.Versions)-1, 0)
	}
}
