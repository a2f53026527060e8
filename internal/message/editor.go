package message

import (
	"log/slog"
	"strings"
)

// EditBranchWarning is shown to the user before an edit is committed.
// The branching itself happens in the version store; this package only
// guarantees the warning reaches the user verbatim before commit.
const EditBranchWarning = "Editing this message creates a new version and deactivates all messages after it in this conversation."

// Editor mediates inline editing of a single message.
//
// StartEdit seeds a draft from the message's current content; SaveEdit
// commits a trimmed, changed draft through the host callback and exits edit
// mode either way. An empty or unchanged draft is silently discarded — the
// host callback is never invoked for it.
//
// Editor is UI-local state and not safe for concurrent use.
type Editor struct {
	// CanEdit is the host-supplied capability: false for messages that
	// cannot be edited at all (for example assistant output).
	CanEdit bool

	// Disabled suppresses editing while the surface is busy
	// (for example mid-generation).
	Disabled bool

	// OnEdit receives the trimmed draft when a save commits.
	OnEdit func(content string)

	logger *slog.Logger

	editing  bool
	original string
	draft    string
}

// NewEditor creates an editing mediator. logger may be nil.
func NewEditor(canEdit bool, onEdit func(string), logger *slog.Logger) *Editor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Editor{
		CanEdit: canEdit,
		OnEdit:  onEdit,
		logger:  logger,
	}
}

// Editing reports whether an edit is in progress.
func (e *Editor) Editing() bool { return e.editing }

// Draft returns the current draft buffer.
func (e *Editor) Draft() string { return e.draft }

// SetDraft replaces the draft buffer while editing.
func (e *Editor) SetDraft(draft string) {
	if e.editing {
		e.draft = draft
	}
}

// StartEdit enters edit mode with a draft seeded from content.
// It reports whether edit mode was entered: editing is permitted only when
// the CanEdit capability is set and the surface is not disabled.
func (e *Editor) StartEdit(content string) bool {
	if !e.CanEdit || e.Disabled {
		e.logger.Debug("edit request rejected", "can_edit", e.CanEdit, "disabled", e.Disabled)
		return false
	}
	e.editing = true
	e.original = content
	e.draft = content
	return true
}

// SaveEdit commits the draft and exits edit mode. It reports whether the
// host callback was invoked: a whitespace-only draft or a draft equal to the
// original content is discarded as if the edit were canceled.
func (e *Editor) SaveEdit(draft string) bool {
	if !e.editing {
		return false
	}

	trimmed := strings.TrimSpace(draft)
	e.editing = false
	e.draft = ""

	if trimmed == "" || trimmed == e.original {
		e.logger.Debug("edit discarded", "empty", trimmed == "", "unchanged", trimmed == e.original)
		return false
	}

	if e.OnEdit != nil {
		e.OnEdit(trimmed)
	}
	return true
}

// CancelEdit discards the draft and exits edit mode unconditionally.
func (e *Editor) CancelEdit() {
	e.editing = false
	e.draft = ""
}
