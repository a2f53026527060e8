package tui

import (
	tea "charm.land/bubbletea/v2"

	"github.com/koopa0/kelp/internal/message"
	"github.com/koopa0/kelp/internal/version"
)

// handleKey routes key presses to the handler for the current state.
func (t *TUI) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	k := msg.Key()

	// Ctrl+C quits from any state.
	if k.Mod&tea.ModCtrl != 0 && k.Code == 'c' {
		return t, t.cleanup()
	}

	switch t.state {
	case StateEditing:
		return t.handleEditorKey(msg)
	case StateVersions:
		return t.handleBrowserKey(msg)
	case StateCompare:
		return t.handleCompareKey(msg)
	default:
		return t.handleTranscriptKey(msg)
	}
}

//nolint:gocyclo // Keyboard handler requires branching for all key combinations
func (t *TUI) handleTranscriptKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	k := msg.Key()

	// Scrolling and quitting work even while an operation is in flight.
	switch k.Code {
	case tea.KeyPgUp:
		t.viewport.PageUp()
		return t, nil
	case tea.KeyPgDown:
		t.viewport.PageDown()
		return t, nil
	case 'q':
		return t, t.cleanup()
	}

	if t.busy {
		return t, nil
	}

	switch k.Code {
	case tea.KeyUp:
		return t.moveCursor(-1)

	case tea.KeyDown:
		return t.moveCursor(1)

	case tea.KeyLeft, tea.KeyRight:
		if t.ctrl == nil || !t.nav.Visible || t.nav.Loading {
			return t, nil
		}
		t.busy = true
		return t, tea.Batch(t.spinner.Tick, t.stepCmd(k.Code == tea.KeyRight))

	case 'v':
		if t.ctrl == nil || !t.nav.Visible {
			return t, nil
		}
		t.busy = true
		t.verCursor = 0
		t.state = StateVersions
		return t, tea.Batch(t.spinner.Tick, t.openBrowserCmd())

	case 'e':
		return t.startEdit()

	case 'y':
		return t.copySelected()
	}
	return t, nil
}

// moveCursor changes the selected message and reloads its version set.
func (t *TUI) moveCursor(delta int) (tea.Model, tea.Cmd) {
	if len(t.messages) == 0 {
		return t, nil
	}
	next := t.cursor + delta
	if next < 0 || next >= len(t.messages) {
		return t, nil
	}
	t.cursor = next
	t.ctrl = nil
	t.nav = version.Snapshot{}
	t.statusText = ""
	t.rebuildViewportContent()
	return t, t.loadNav()
}

// startEdit opens the inline editor for the selected message. Editing is
// gated to the newest active user message; anything else shows a hint.
func (t *TUI) startEdit() (tea.Model, tea.Cmd) {
	sel := t.selectedMessage()
	if sel == nil {
		return t, nil
	}

	canEdit := sel.Role == version.RoleUser && t.versioned(t.cursor)
	t.editor = message.NewEditor(canEdit, func(content string) {
		t.pendingEdit = content
	}, t.logger)

	if !t.editor.StartEdit(sel.Content) {
		t.statusText = "Only the latest user message can be edited"
		t.rebuildViewportContent()
		return t, nil
	}

	t.input.SetValue(sel.Content)
	t.input.CursorEnd()
	t.state = StateEditing
	return t, t.input.Focus()
}

// copySelected puts the selected message content on the clipboard. Failures
// are logged and otherwise ignored.
func (t *TUI) copySelected() (tea.Model, tea.Cmd) {
	sel := t.selectedMessage()
	if sel == nil {
		return t, nil
	}
	if err := t.writeClipboard(sel.Content); err != nil {
		t.logger.Warn("clipboard write failed", "chat_id", t.chatID, "error", err)
		return t, nil
	}
	t.statusText = "Copied message to clipboard"
	t.rebuildViewportContent()
	return t, nil
}

//nolint:gocyclo // Keyboard handler requires branching for all key combinations
func (t *TUI) handleBrowserKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	k := msg.Key()

	if t.busy || t.ctrl == nil {
		return t, nil
	}

	switch k.Code {
	case tea.KeyEscape:
		t.ctrl.CloseBrowser()
		t.nav = t.ctrl.Snapshot()
		t.state = StateBrowse
		t.rebuildViewportContent()
		return t, nil

	case tea.KeyUp, 'k':
		if t.verCursor > 0 {
			t.verCursor--
		}

	case tea.KeyDown, 'j':
		if t.verCursor < len(t.nav.Versions)-1 {
			t.verCursor++
		}

	case tea.KeyEnter:
		if v, ok := t.versionAtCursor(); ok {
			t.busy = true
			return t, tea.Batch(t.spinner.Tick, t.selectCmd(v.Number))
		}

	case 'd':
		if v, ok := t.versionAtCursor(); ok {
			t.busy = true
			return t, tea.Batch(t.spinner.Tick, t.deleteCmd(v.Number))
		}

	case tea.KeyTab:
		t.ctrl.ToggleCompareMode()
		t.nav = t.ctrl.Snapshot()

	case 'c':
		if t.nav.CompareMode && len(t.nav.Selected) == 2 {
			t.busy = true
			return t, tea.Batch(t.spinner.Tick, t.compareCmd())
		}

	case 'y':
		if v, ok := t.versionAtCursor(); ok {
			t.ctrl.CopyVersionContent(v.Number)
			t.nav = t.ctrl.Snapshot()
		}
	}
	return t, nil
}

func (t *TUI) handleCompareKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	k := msg.Key()

	switch k.Code {
	case tea.KeyEscape, tea.KeyEnter, 'q':
		t.compareResult = nil
		t.state = StateVersions
	}
	return t, nil
}

func (t *TUI) handleEditorKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	k := msg.Key()

	if k.Mod&tea.ModCtrl != 0 && k.Code == 's' {
		t.pendingEdit = ""
		committed := t.editor.SaveEdit(t.input.Value())

		sel := t.selectedMessage()
		t.state = StateBrowse
		t.input.Reset()
		t.input.Blur()

		if committed && sel != nil {
			t.busy = true
			return t, tea.Batch(t.spinner.Tick, t.editCmd(sel.Role, t.pendingEdit))
		}
		// Empty or unchanged draft: exit without committing anything.
		t.rebuildViewportContent()
		return t, nil
	}

	if k.Code == tea.KeyEscape {
		t.editor.CancelEdit()
		t.state = StateBrowse
		t.input.Reset()
		t.input.Blur()
		t.rebuildViewportContent()
		return t, nil
	}

	var cmd tea.Cmd
	t.input, cmd = t.input.Update(msg)
	t.editor.SetDraft(t.input.Value())
	return t, cmd
}

// versionAtCursor returns the browser row under the cursor.
func (t *TUI) versionAtCursor() (version.Version, bool) {
	if t.verCursor < 0 || t.verCursor >= len(t.nav.Versions) {
		return version.Version{}, false
	}
	return t.nav.Versions[t.verCursor], true
}
