// Package types provides shared type definitions for goto.
//
// This package defines the domain types passed between the scanner, the
// repository, the indexer and the ranking pipeline.
//
// # Core Types
//
// Project is a discovered development directory, keyed by its absolute path:
//
//	project := &types.Project{
//	    Path:   "/home/u/src/foyer",
//	    Name:   "foyer",
//	    Source: types.SourceScan,
//	}
//
// ProjectMetadata is the textual summary the indexer embeds for a project.
// It is produced by the metadata package and stored 1:1 with the project.
//
// # Provenance
//
// Every project records how it was discovered. Sources are ordered by
// precedence:
//
//	SourceManual > SourceSpotlight > SourceScan
//
// A project pinned by the user keeps SourceManual forever; re-discovery by a
// scan or a system index query never downgrades it.
//
// # Results
//
// MatchResult pairs a project with a composite score for a single query.
// Resolution is the outcome of resolve mode: a path, or an explicit
// "no match" with a reason distinguishing an empty index from a low
// confidence result.
package types
