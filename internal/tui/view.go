package tui

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/koopa0/kelp/internal/message"
	"github.com/koopa0/kelp/internal/version"
)

// View implements tea.Model.
// Uses AltScreen with a viewport for the scrollable transcript. The version
// browser and comparison result replace the transcript area while open.
func (t *TUI) View() tea.View {
	t.viewBuf.Reset()

	switch t.state {
	case StateVersions:
		_, _ = t.viewBuf.WriteString(t.renderBrowser())
	case StateCompare:
		_, _ = t.viewBuf.WriteString(t.renderCompare())
	default:
		_, _ = t.viewBuf.WriteString(t.viewport.View())
	}
	_, _ = t.viewBuf.WriteString("\n")
	_, _ = t.viewBuf.WriteString(t.renderSeparator())
	_, _ = t.viewBuf.WriteString("\n")

	if t.state == StateEditing {
		_, _ = t.viewBuf.WriteString(t.styles.Warning.Render(message.EditBranchWarning))
		_, _ = t.viewBuf.WriteString("\n")
		_, _ = t.viewBuf.WriteString(t.input.View())
		_, _ = t.viewBuf.WriteString("\n")
	} else {
		_, _ = t.viewBuf.WriteString(t.renderContextLine())
		_, _ = t.viewBuf.WriteString("\n")
	}

	_, _ = t.viewBuf.WriteString(t.renderSeparator())
	_, _ = t.viewBuf.WriteString("\n")
	_, _ = t.viewBuf.WriteString(t.renderStatusBar())

	v := tea.NewView(t.viewBuf.String())
	v.AltScreen = true
	return v
}

// rebuildViewportContent reconstructs the transcript from messages and the
// navigation snapshot. Called when messages, cursor, or snapshot change.
func (t *TUI) rebuildViewportContent() {
	var b strings.Builder

	_, _ = b.WriteString(t.styles.RenderBanner())
	_, _ = b.WriteString("\n")
	if t.title != "" {
		_, _ = b.WriteString(t.styles.StatusBar.Render(t.title))
		_, _ = b.WriteString("\n\n")
	} else {
		_, _ = b.WriteString(t.styles.RenderWelcomeTips())
		_, _ = b.WriteString("\n")
	}

	for i, msg := range t.messages {
		if i == t.cursor {
			_, _ = b.WriteString(t.styles.SelectedRow.Render("▌ "))
		} else {
			_, _ = b.WriteString("  ")
		}

		switch msg.Role {
		case version.RoleUser:
			_, _ = b.WriteString(t.styles.User.Render("You> "))
			_, _ = b.WriteString(msg.Content)
		case version.RoleAssistant:
			_, _ = b.WriteString(t.styles.Assistant.Render("Kelp> "))
			_, _ = b.WriteString(t.markdown.Render(msg.Content))
		default:
			_, _ = b.WriteString(t.styles.System.Render(msg.Content))
		}
		_, _ = b.WriteString("\n")

		// The indicator is suppressed for single-version sets.
		if i == t.cursor && t.nav.Visible {
			_, _ = b.WriteString("  ")
			_, _ = b.WriteString(t.styles.Indicator.Render(t.indicatorText()))
			_, _ = b.WriteString("\n")
		}
		_, _ = b.WriteString("\n")
	}

	if t.statusText != "" {
		_, _ = b.WriteString(t.styles.System.Render(t.statusText))
		_, _ = b.WriteString("\n")
	}

	t.viewport.SetContent(b.String())
}

// indicatorText renders the cyclic position indicator for the selected
// message, e.g. "‹ version 2/5 ›".
func (t *TUI) indicatorText() string {
	return fmt.Sprintf("‹ version %d/%d ›", t.nav.Current, t.nav.Total)
}

// renderContextLine shows in-flight activity, the navigation indicator, or
// the last inline error under the transcript.
func (t *TUI) renderContextLine() string {
	if t.busy || t.nav.Loading {
		return t.spinner.View() + " " + t.styles.System.Render("Working...")
	}
	if t.nav.ErrorText != "" && !t.nav.BrowserOpen {
		return t.styles.Error.Render(t.nav.ErrorText)
	}
	if t.nav.Visible {
		hint := t.styles.Muted.Render("  ←/→ switch · v browse · e edit")
		return t.styles.Indicator.Render(t.indicatorText()) + hint
	}
	if t.statusText != "" {
		return t.styles.System.Render(t.statusText)
	}
	return ""
}

// renderSeparator returns a horizontal line separator.
func (t *TUI) renderSeparator() string {
	width := t.width
	if width <= 0 {
		width = 80
	}
	return t.styles.Separator.Render(strings.Repeat("─", width))
}

// renderStatusBar returns state-appropriate keyboard shortcut help.
func (t *TUI) renderStatusBar() string {
	var bindings []key.Binding
	switch t.state {
	case StateVersions:
		bindings = []key.Binding{
			t.keys.Cursor, t.keys.Choose, t.keys.Delete,
			t.keys.Compare, t.keys.RunCompare, t.keys.CopyVer, t.keys.Close,
		}
	case StateCompare:
		bindings = []key.Binding{t.keys.Close}
	case StateEditing:
		bindings = []key.Binding{t.keys.Save, t.keys.Cancel}
	default:
		bindings = []key.Binding{
			t.keys.SelectMsg, t.keys.StepVersion, t.keys.Browse,
			t.keys.Edit, t.keys.Copy, t.keys.Scroll, t.keys.Quit,
		}
	}
	return t.help.ShortHelpView(bindings)
}
