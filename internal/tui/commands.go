package tui

import (
	tea "charm.land/bubbletea/v2"

	"github.com/koopa0/kelp/internal/message"
	"github.com/koopa0/kelp/internal/version"
)

// messagesLoadedMsg delivers a freshly loaded transcript.
type messagesLoadedMsg struct {
	title    string
	messages []message.Message
	err      error
}

// navLoadedMsg delivers the version controller built for the message that was
// under the cursor when the load started.
type navLoadedMsg struct {
	cursor int
	ctrl   *version.Controller
	err    error
}

// opDoneMsg delivers the outcome of an asynchronous controller operation.
// snapshot is the controller state after the call; reload asks for a
// transcript refresh because the current version changed.
type opDoneMsg struct {
	snapshot version.Snapshot
	compare  *version.ComparisonResult
	reload   bool
}

// editDoneMsg delivers the result of committing an inline edit.
type editDoneMsg struct {
	newVersion int
	err        error
}

// loadMessages fetches the chat and its active transcript.
func (t *TUI) loadMessages() tea.Cmd {
	return func() tea.Msg {
		chat, err := t.store.Chat(t.ctx, t.chatID)
		if err != nil {
			return messagesLoadedMsg{err: err}
		}
		msgs, err := t.store.ActiveMessages(t.ctx, t.chatID)
		if err != nil {
			return messagesLoadedMsg{err: err}
		}
		return messagesLoadedMsg{title: chat.Title, messages: msgs}
	}
}

// loadNav builds a version controller for the selected message. Only the
// newest active message of a role owns that role's version set; any other
// selection yields a hidden indicator.
func (t *TUI) loadNav() tea.Cmd {
	cursor := t.cursor
	sel := t.selectedMessage()
	if sel == nil || !t.versioned(cursor) {
		return func() tea.Msg { return navLoadedMsg{cursor: cursor} }
	}

	role := sel.Role
	return func() tea.Msg {
		versions, err := t.store.ListVersions(t.ctx, t.chatID, role, t.fetchLimit)
		if err != nil {
			return navLoadedMsg{cursor: cursor, err: err}
		}

		current := 0
		for _, v := range versions {
			if v.IsCurrent {
				current = v.Number
			}
		}
		if len(versions) == 0 || current == 0 {
			return navLoadedMsg{cursor: cursor}
		}

		ctrl, err := version.NewController(t.store, version.Config{
			ChatID:         t.chatID,
			Role:           role,
			CurrentVersion: current,
			TotalVersions:  len(versions),
			FetchLimit:     t.fetchLimit,
			WriteClipboard: t.writeClipboard,
			Logger:         t.logger,
			OnVersionChange: func(n int) {
				t.logger.Debug("switched version", "chat_id", t.chatID, "role", role, "version", n)
			},
		})
		if err != nil {
			return navLoadedMsg{cursor: cursor, err: err}
		}
		return navLoadedMsg{cursor: cursor, ctrl: ctrl}
	}
}

// stepCmd runs a cyclic prev/next step. The transcript is reloaded only when
// the current version actually changed.
func (t *TUI) stepCmd(next bool) tea.Cmd {
	ctrl := t.ctrl
	prev := t.nav.Current
	return func() tea.Msg {
		if next {
			ctrl.StepNext(t.ctx)
		} else {
			ctrl.StepPrevious(t.ctx)
		}
		snap := ctrl.Snapshot()
		return opDoneMsg{snapshot: snap, reload: snap.Current != prev}
	}
}

// openBrowserCmd loads the version list for the browser dialog.
func (t *TUI) openBrowserCmd() tea.Cmd {
	ctrl := t.ctrl
	return func() tea.Msg {
		ctrl.OpenBrowser(t.ctx)
		return opDoneMsg{snapshot: ctrl.Snapshot()}
	}
}

// selectCmd activates a version from the browser. In compare mode the
// controller toggles the selection instead of switching.
func (t *TUI) selectCmd(n int) tea.Cmd {
	ctrl := t.ctrl
	prev := t.nav.Current
	return func() tea.Msg {
		ctrl.SelectVersion(t.ctx, n)
		snap := ctrl.Snapshot()
		return opDoneMsg{snapshot: snap, reload: snap.Current != prev}
	}
}

// deleteCmd removes a non-current version. Deleting never touches the
// transcript, so no reload is requested.
func (t *TUI) deleteCmd(n int) tea.Cmd {
	ctrl := t.ctrl
	return func() tea.Msg {
		ctrl.DeleteVersion(t.ctx, n)

		// Deletion renumbers the set in the store; re-sync the host-known
		// current/total from the refreshed list.
		if vs := ctrl.Versions(); len(vs) > 0 {
			current := ctrl.Current()
			for _, v := range vs {
				if v.IsCurrent {
					current = v.Number
				}
			}
			ctrl.Sync(current, len(vs))
		}
		return opDoneMsg{snapshot: ctrl.Snapshot()}
	}
}

// compareCmd diffs the two selected versions.
func (t *TUI) compareCmd() tea.Cmd {
	ctrl := t.ctrl
	return func() tea.Msg {
		result := ctrl.CompareSelected(t.ctx)
		return opDoneMsg{snapshot: ctrl.Snapshot(), compare: result}
	}
}

// editCmd commits an inline edit, branching the conversation.
func (t *TUI) editCmd(role version.Role, content string) tea.Cmd {
	return func() tea.Msg {
		n, err := t.store.EditMessage(t.ctx, t.chatID, role, content)
		return editDoneMsg{newVersion: n, err: err}
	}
}
