package session

import "errors"

// Sentinel errors for the command surface. None of these are fatal: the
// store always stays usable after returning one.
var (
	// ErrEmptyInput indicates the submitted text was empty after trimming.
	// No message is appended.
	ErrEmptyInput = errors.New("empty input")

	// ErrNotFound indicates an operation referenced an unknown session id.
	// No state changes.
	ErrNotFound = errors.New("session not found")

	// ErrUnsupportedCapability indicates an optional platform feature, such
	// as voice capture, is unavailable. Reported to collaborators as a
	// non-fatal notice.
	ErrUnsupportedCapability = errors.New("capability not supported")
)
