package version

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/atotto/clipboard"
	"github.com/google/uuid"
)

// DefaultFetchLimit caps how many versions a browser refresh loads.
// Interactive browsing never needs more; deeper history stays in the store.
const DefaultFetchLimit = 50

// maxCompareSelection is the number of versions a comparison operates on.
const maxCompareSelection = 2

// Config carries the host-view inputs for a Controller.
type Config struct {
	// ChatID and Role identify the version set this controller owns.
	ChatID uuid.UUID
	Role   Role

	// CurrentVersion and TotalVersions are the host's knowledge of the set.
	// 1 <= CurrentVersion <= TotalVersions.
	CurrentVersion int
	TotalVersions  int

	// OnVersionChange is invoked with the new current version number after
	// a successful switch. Optional.
	OnVersionChange func(n int)

	// FetchLimit overrides DefaultFetchLimit when positive.
	FetchLimit int

	// WriteClipboard overrides the system clipboard writer. Used by tests.
	WriteClipboard func(text string) error

	// Logger for debugging (nil = slog.Default()).
	Logger *slog.Logger
}

// Controller owns the navigation state for one message's version set and
// mediates between the UI control surface and the external version store.
//
// The zero value is not useful; use NewController.
type Controller struct {
	store          Store
	logger         *slog.Logger
	writeClipboard func(string) error
	onChange       func(int)
	fetchLimit     int

	chatID  uuid.UUID
	role    Role
	current int
	total   int

	// Lazily loaded read-through view of the store's version set.
	versions []Version
	loading  bool
	lastErr  error

	// Dialog-local ephemeral state, scoped to one browser lifetime.
	browserOpen bool
	compareMode bool
	selected    []int
}

// NewController creates a controller for the version set (cfg.ChatID, cfg.Role).
func NewController(store Store, cfg Config) (*Controller, error) {
	if store == nil {
		return nil, errors.New("version.NewController: store is required")
	}
	if !cfg.Role.Valid() {
		return nil, errors.New("version.NewController: invalid role")
	}
	if cfg.TotalVersions < 1 {
		return nil, errors.New("version.NewController: total versions must be >= 1")
	}
	if cfg.CurrentVersion < 1 || cfg.CurrentVersion > cfg.TotalVersions {
		return nil, errors.New("version.NewController: current version out of range")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	write := cfg.WriteClipboard
	if write == nil {
		write = clipboard.WriteAll
	}
	limit := cfg.FetchLimit
	if limit <= 0 {
		limit = DefaultFetchLimit
	}

	return &Controller{
		store:          store,
		logger:         logger,
		writeClipboard: write,
		onChange:       cfg.OnVersionChange,
		fetchLimit:     limit,
		chatID:         cfg.ChatID,
		role:           cfg.Role,
		current:        cfg.CurrentVersion,
		total:          cfg.TotalVersions,
	}, nil
}

// Visible reports whether the navigation control should be rendered at all.
// A single-version message has nothing to navigate: the control is absent,
// not disabled.
func (c *Controller) Visible() bool { return c.total > 1 }

// Current returns the current version number as known by the host.
func (c *Controller) Current() int { return c.current }

// Total returns the size of the version set as known by the host.
func (c *Controller) Total() int { return c.total }

// Loading reports whether a store call is in flight. The UI must disable
// navigation controls while true.
func (c *Controller) Loading() bool { return c.loading }

// LastError returns the most recent store failure, or nil.
func (c *Controller) LastError() error { return c.lastErr }

// BrowserOpen reports whether the version browser dialog is visible.
func (c *Controller) BrowserOpen() bool { return c.browserOpen }

// CompareMode reports whether version selection accumulates a compare pair.
func (c *Controller) CompareMode() bool { return c.compareMode }

// Selected returns the compare selection in selection order.
func (c *Controller) Selected() []int { return slices.Clone(c.selected) }

// Versions returns the lazily loaded version list.
func (c *Controller) Versions() []Version { return slices.Clone(c.versions) }

// Sync updates the controller's knowledge of the set after the host observed
// an external mutation (for example an edit creating a new version).
func (c *Controller) Sync(current, total int) {
	if total < 1 || current < 1 || current > total {
		c.logger.Warn("ignoring out-of-range version sync", "current", current, "total", total)
		return
	}
	c.current = current
	c.total = total
}

// StepPrevious switches to the previous version, wrapping to the last
// version from version 1. Boundary wrap is intentional, not an error.
func (c *Controller) StepPrevious(ctx context.Context) {
	target := c.current - 1
	if c.current <= 1 {
		target = c.total
	}
	c.switchTo(ctx, target)
}

// StepNext switches to the next version, wrapping to version 1 from the
// last version.
func (c *Controller) StepNext(ctx context.Context) {
	target := c.current + 1
	if c.current >= c.total {
		target = 1
	}
	c.switchTo(ctx, target)
}

// OpenBrowser makes the version browser visible and loads the version list.
func (c *Controller) OpenBrowser(ctx context.Context) {
	c.browserOpen = true
	c.Refresh(ctx)
}

// CloseBrowser hides the browser and drops its ephemeral state.
// Compare mode and selection live only as long as the dialog.
func (c *Controller) CloseBrowser() {
	c.browserOpen = false
	c.compareMode = false
	c.selected = nil
}

// Refresh reloads the version list from the store.
//
// On success the cached list is replaced and the last error cleared. On
// failure the previously loaded list stays available (stale but usable) and
// the failure is captured. Loading is cleared on every completion path.
func (c *Controller) Refresh(ctx context.Context) {
	c.loading = true
	defer func() { c.loading = false }()

	versions, err := c.store.ListVersions(ctx, c.chatID, c.role, c.fetchLimit)
	if err != nil {
		c.logger.Warn("version list refresh failed", "chat_id", c.chatID, "role", c.role, "error", err)
		c.lastErr = err
		return
	}

	c.versions = versions
	c.lastErr = nil
}

// SelectVersion handles a tap on version n in the browser.
//
// In normal mode it requests a switch to n; on success the host is notified
// and the browser closes. In compare mode it toggles n's membership in the
// compare selection instead; the selection is capped at two versions,
// first-come-first-served, so selecting a third distinct version is a no-op.
func (c *Controller) SelectVersion(ctx context.Context, n int) {
	if c.compareMode {
		c.toggleSelected(n)
		return
	}

	if !c.switchTo(ctx, n) {
		return
	}
	c.CloseBrowser()
}

func (c *Controller) toggleSelected(n int) {
	if i := slices.Index(c.selected, n); i >= 0 {
		c.selected = slices.Delete(c.selected, i, i+1)
		return
	}
	if len(c.selected) >= maxCompareSelection {
		return
	}
	c.selected = append(c.selected, n)
}

// switchTo requests a switch to version n and reports success.
// On failure the current version is left unchanged (no partial switch).
func (c *Controller) switchTo(ctx context.Context, n int) bool {
	c.loading = true
	defer func() { c.loading = false }()

	if err := c.store.SwitchVersion(ctx, c.chatID, n, c.role); err != nil {
		c.logger.Warn("version switch failed", "chat_id", c.chatID, "role", c.role, "target", n, "error", err)
		c.lastErr = err
		return false
	}

	c.current = n
	c.lastErr = nil
	if c.onChange != nil {
		c.onChange(n)
	}
	return true
}

// DeleteVersion removes version n from the set.
//
// Deleting the current version is rejected before any store call is made;
// the host reflects this by disabling the delete control for the current
// version. After the store delete — successful or not — the list is
// refreshed unconditionally, since deletion may renumber the set in the
// authoritative store. A delete failure stays visible even though the
// refresh succeeded.
func (c *Controller) DeleteVersion(ctx context.Context, n int) {
	if n == c.current {
		c.logger.Debug("refusing to delete current version", "chat_id", c.chatID, "version", n)
		return
	}

	c.loading = true
	deleteErr := c.store.DeleteVersion(ctx, c.chatID, n, c.role)
	c.loading = false

	c.Refresh(ctx)

	if deleteErr != nil {
		c.logger.Warn("version delete failed", "chat_id", c.chatID, "role", c.role, "version", n, "error", deleteErr)
		c.lastErr = deleteErr
	}
}

// ToggleCompareMode flips compare mode. The selection is cleared on every
// toggle, entering or leaving, so no selection leaks across modes.
func (c *Controller) ToggleCompareMode() {
	c.compareMode = !c.compareMode
	c.selected = nil
}

// CompareSelected diffs the two selected versions, in selection order, and
// returns the result for the host to display. It returns nil without calling
// the store unless exactly two versions are selected.
func (c *Controller) CompareSelected(ctx context.Context) *ComparisonResult {
	if len(c.selected) != maxCompareSelection {
		return nil
	}

	c.loading = true
	defer func() { c.loading = false }()

	result, err := c.store.CompareVersions(ctx, c.chatID, c.selected[0], c.selected[1], c.role)
	if err != nil {
		c.logger.Warn("version compare failed", "chat_id", c.chatID, "role", c.role,
			"version_a", c.selected[0], "version_b", c.selected[1], "error", err)
		c.lastErr = err
		return nil
	}

	c.lastErr = nil
	return result
}

// CopyVersionContent copies version n's raw content to the system clipboard.
// Clipboard failure is non-fatal: it is logged and never surfaced as the
// controller's last error.
func (c *Controller) CopyVersionContent(n int) {
	for _, v := range c.versions {
		if v.Number != n {
			continue
		}
		if err := c.writeClipboard(v.Content); err != nil {
			c.logger.Warn("clipboard copy failed", "chat_id", c.chatID, "version", n, "error", err)
		}
		return
	}
	c.logger.Debug("copy requested for unloaded version", "chat_id", c.chatID, "version", n)
}

// Snapshot is an immutable copy of the controller's render state. The TUI
// renders from snapshots taken on the event loop so view code never reads
// fields the controller is mutating.
type Snapshot struct {
	Current     int
	Total       int
	Visible     bool
	Loading     bool
	BrowserOpen bool
	CompareMode bool
	Selected    []int
	Versions    []Version
	ErrorText   string
}

// Snapshot captures the current render state.
func (c *Controller) Snapshot() Snapshot {
	s := Snapshot{
		Current:     c.current,
		Total:       c.total,
		Visible:     c.Visible(),
		Loading:     c.loading,
		BrowserOpen: c.browserOpen,
		CompareMode: c.compareMode,
		Selected:    slices.Clone(c.selected),
		Versions:    slices.Clone(c.versions),
	}
	if c.lastErr != nil {
		s.ErrorText = c.lastErr.Error()
	}
	return s
}
