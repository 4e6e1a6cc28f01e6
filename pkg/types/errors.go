package types

import "errors"

// Domain errors for type validation
var (
	// Project errors
	ErrEmptyPath           = errors.New("project path cannot be empty")
	ErrRelativePath        = errors.New("project path must be absolute")
	ErrNegativeAccessCount = errors.New("access count cannot be negative")
	ErrUnknownProvenance   = errors.New("unknown provenance")
)
