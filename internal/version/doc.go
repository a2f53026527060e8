// Package version implements navigation over a message's edit history.
//
// A message in a chat can have several immutable snapshots ("versions")
// created by edits. All versions belonging to one (chat, role) pair form a
// version set; exactly one member of the set is current at any time. The
// authoritative set lives in an external store reached through the [Store]
// interface. This package only observes the set and requests mutations.
//
// [Controller] owns the navigation state for a single version set:
//
//   - Cyclic prev/next stepping: [Controller.StepPrevious], [Controller.StepNext]
//   - Version browser: [Controller.OpenBrowser], [Controller.Refresh], [Controller.SelectVersion]
//   - Deletion of non-current versions: [Controller.DeleteVersion]
//   - Pairwise comparison: [Controller.ToggleCompareMode], [Controller.CompareSelected]
//   - Clipboard export: [Controller.CopyVersionContent]
//
// # Concurrency
//
// Controller is not safe for concurrent use. All operations are expected to
// run on the UI event loop; store calls block the calling operation until the
// store responds, with [Controller.Loading] reporting true for the duration.
// The UI must disable controls while Loading is true — at most one store call
// is in flight per controller instance, enforced by disablement rather than
// locking. [Controller.Snapshot] produces an immutable copy of render state
// for use outside the mutating goroutine.
//
// # Errors
//
// Store failures are captured into the controller's last error
// ([Controller.LastError]) and never propagate past the controller boundary.
// Clipboard failures are logged and otherwise swallowed. Precondition
// violations (deleting the current version, comparing without two selected
// versions) silently block the operation without touching the store.
package version
