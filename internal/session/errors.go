package session

import "errors"

// Sentinel kinds for session store errors.
var (
	ErrNotFound     = errors.New("session not found")
	ErrInvalidBatch = errors.New("invalid event batch")
)
