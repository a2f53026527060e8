package tui

import (
	"charm.land/bubbles/v2/key"
)

// keyMap holds key bindings for help bar display.
type keyMap struct {
	// Transcript navigation
	SelectMsg   key.Binding
	StepVersion key.Binding
	Browse      key.Binding
	Edit        key.Binding
	Copy        key.Binding
	Quit        key.Binding
	Scroll      key.Binding

	// Version browser
	Cursor     key.Binding
	Choose     key.Binding
	Delete     key.Binding
	Compare    key.Binding
	RunCompare key.Binding
	CopyVer    key.Binding
	Close      key.Binding

	// Editor
	Save   key.Binding
	Cancel key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		SelectMsg:   key.NewBinding(key.WithKeys("up", "down"), key.WithHelp("↑/↓", "select message")),
		StepVersion: key.NewBinding(key.WithKeys("left", "right"), key.WithHelp("←/→", "switch version")),
		Browse:      key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "versions")),
		Edit:        key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Copy:        key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Scroll:      key.NewBinding(key.WithKeys("pgup", "pgdown"), key.WithHelp("pgup/pgdn", "scroll")),

		Cursor:     key.NewBinding(key.WithKeys("up", "down", "j", "k"), key.WithHelp("↑/↓", "move")),
		Choose:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		Delete:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Compare:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "compare mode")),
		RunCompare: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "diff selected")),
		CopyVer:    key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy")),
		Close:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),

		Save:   key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}
