// Package scanner discovers project directories and records them in the
// repository.
//
// Discovery has two sources. The filesystem walk visits each configured root
// down to MaxDepth and reports git repositories plus leaf directories that
// directly hold files. The optional system index (Spotlight on macOS) finds
// marker files such as go.mod or Cargo.toml anywhere under its search roots
// and reports their git-backed parent directories.
//
// Environment problems, such as a missing root or a failing mdfind, become
// warnings on the ScanResult. Repository errors are returned.
package scanner
