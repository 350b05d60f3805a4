package catalog

import "errors"

// Sentinel kinds for catalog errors.
var (
	ErrNotFound   = errors.New("lab not found")
	ErrInvalidLab = errors.New("invalid lab definition")
	ErrNoSource   = errors.New("no lab source configured")
)
