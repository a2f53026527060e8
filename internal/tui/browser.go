package tui

import (
	"fmt"
	"slices"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/koopa0/kelp/internal/version"
)

// renderBrowser renders the version browser dialog in place of the
// transcript. Rows show the version number, the current marker, compare
// selection order, the content preview, and derived metadata.
func (t *TUI) renderBrowser() string {
	var b strings.Builder

	title := "Versions"
	if t.nav.CompareMode {
		title = "Versions — compare: pick two"
	}
	_, _ = b.WriteString(t.styles.DialogTitle.Render(title))
	_, _ = b.WriteString("\n\n")

	switch {
	case t.busy || t.nav.Loading:
		_, _ = b.WriteString(t.spinner.View())
		_, _ = b.WriteString(" Loading versions...")
		_, _ = b.WriteString("\n")

	case len(t.nav.Versions) == 0:
		_, _ = b.WriteString(t.styles.Muted.Render("No versions loaded"))
		_, _ = b.WriteString("\n")

	default:
		for i, v := range t.nav.Versions {
			_, _ = b.WriteString(t.renderVersionRow(i, v.Number))
			_, _ = b.WriteString("\n")
		}
	}

	if t.nav.ErrorText != "" {
		_, _ = b.WriteString("\n")
		_, _ = b.WriteString(t.styles.Error.Render(t.nav.ErrorText))
		_, _ = b.WriteString("\n")
	}

	dialog := t.styles.Dialog.Render(b.String())
	return t.placeDialog(dialog)
}

// renderVersionRow formats one browser row.
func (t *TUI) renderVersionRow(i, number int) string {
	v := t.nav.Versions[i]
	var b strings.Builder

	if i == t.verCursor {
		_, _ = b.WriteString(t.styles.SelectedRow.Render("→ "))
	} else {
		_, _ = b.WriteString("  ")
	}

	label := fmt.Sprintf("v%d", number)
	if v.IsCurrent {
		_, _ = b.WriteString(t.styles.CurrentMark.Render("● " + label))
	} else {
		_, _ = b.WriteString("  " + label)
	}

	// Compare selections are marked in pick order.
	if t.nav.CompareMode {
		if pos := slices.Index(t.nav.Selected, v.Number); pos >= 0 {
			_, _ = b.WriteString(t.styles.Indicator.Render(fmt.Sprintf(" [%d]", pos+1)))
		} else {
			_, _ = b.WriteString("    ")
		}
	}

	_, _ = b.WriteString("  ")
	_, _ = b.WriteString(v.Preview)
	_, _ = b.WriteString("  ")
	meta := fmt.Sprintf("%dw · %dc · %s", v.WordCount, v.CharCount, v.CreatedAt.Format("Jan 2 15:04"))
	_, _ = b.WriteString(t.styles.Muted.Render(meta))
	return b.String()
}

// renderCompare renders the diff between the two compared versions.
func (t *TUI) renderCompare() string {
	r := t.compareResult
	if r == nil {
		return t.placeDialog(t.styles.Dialog.Render("No comparison available"))
	}

	var b strings.Builder
	_, _ = b.WriteString(t.styles.DialogTitle.Render(fmt.Sprintf("Comparing v%d → v%d", r.VersionA, r.VersionB)))
	_, _ = b.WriteString("\n")
	_, _ = b.WriteString(t.styles.Muted.Render(fmt.Sprintf("+%d −%d lines", r.LinesAdded, r.LinesDeleted)))
	_, _ = b.WriteString("\n\n")

	if r.Identical {
		_, _ = b.WriteString(t.styles.Muted.Render("Versions are identical"))
	} else {
		for _, seg := range r.Segments {
			switch seg.Op {
			case version.OpInsert:
				_, _ = b.WriteString(t.styles.DiffInsert.Render(seg.Text))
			case version.OpDelete:
				_, _ = b.WriteString(t.styles.DiffDelete.Render(seg.Text))
			default:
				_, _ = b.WriteString(seg.Text)
			}
		}
	}
	_, _ = b.WriteString("\n")

	return t.placeDialog(t.styles.Dialog.Render(b.String()))
}

// placeDialog centers a dialog in the transcript area.
func (t *TUI) placeDialog(dialog string) string {
	width := max(t.width, 20)
	height := max(t.height-(separatorLines+contextLines+helpLines), minViewport)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, dialog)
}
