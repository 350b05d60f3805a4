package app

import "errors"

// Sentinel kinds for service errors.
var (
	// ErrLabGone marks a catalog/session inconsistency: a session references
	// a lab definition that no longer resolves. Fatal to that request.
	ErrLabGone = errors.New("lab definition missing for session")
)
