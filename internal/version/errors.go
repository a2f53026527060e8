package version

import "errors"

// Sentinel errors for version operations. These are part of the package's
// public API and should be checked with errors.Is().
var (
	// ErrVersionNotFound indicates the requested version number does not
	// exist in the version set. Returned by Store implementations.
	ErrVersionNotFound = errors.New("version not found")

	// ErrDeleteCurrentVersion indicates an attempt to delete the version
	// that is currently displayed. Returned by Store implementations;
	// the Controller additionally rejects such requests before they
	// reach the store.
	ErrDeleteCurrentVersion = errors.New("cannot delete current version")

	// ErrChatNotFound indicates the chat owning the version set does not
	// exist. Returned by Store implementations.
	ErrChatNotFound = errors.New("chat not found")
)
