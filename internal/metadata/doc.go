// Package metadata summarizes a project directory as text.
//
// Extract reads manifests (package.json, Cargo.toml, pyproject.toml,
// pubspec.yaml, composer.json), the README, the directory layout and the
// largest source files, and never fails: unreadable inputs are skipped.
// BuildEmbeddingText flattens the result into the single line that gets
// embedded for semantic search.
package metadata
