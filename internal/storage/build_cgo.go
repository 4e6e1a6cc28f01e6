//go:build sqlite_vec

package storage

// Built with CGO_ENABLED=1 -tags sqlite_vec: mattn/go-sqlite3 with the
// sqlite-vec extension registered on every connection, so nearest project
// queries run vec_distance_l2 inside SQLite.

import (
	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"
)

func init() {
	sqlite_vec.Auto()
}

const (
	DriverName               = "sqlite3"
	VectorExtensionAvailable = true
	BuildMode                = "cgo"
)
