//go:build purego || !sqlite_vec

package storage

// Default build: modernc.org/sqlite, no C toolchain needed. Nearest
// project queries load every vector and rank by L2 distance in Go, which
// stays fast at workstation scale.

import (
	_ "modernc.org/sqlite"
)

const (
	DriverName               = "sqlite"
	VectorExtensionAvailable = false
	BuildMode                = "purego"
)
