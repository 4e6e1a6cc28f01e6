package types

// MatchResult is a project paired with its composite score for one query
type MatchResult struct {
	Project  Project
	Score    float64
	Semantic bool // Score came from vector similarity
}

// ScanResult summarizes a single discovery pass. It is never persisted.
type ScanResult struct {
	FromPaths       int
	FromSystemIndex int
	Pruned          int
	Warnings        []string
}

// Total returns the number of candidates committed from all sources
func (r *ScanResult) Total() int {
	return r.FromPaths + r.FromSystemIndex
}

// Outcome is the result kind of resolve mode
type Outcome int

const (
	OutcomeNoMatch Outcome = iota
	OutcomeResolved
)

// NoMatchReason explains why resolve mode found nothing
type NoMatchReason string

const (
	// ReasonEmptyIndex means no projects are known at all
	ReasonEmptyIndex NoMatchReason = "empty_index"
	// ReasonNoVectors means nothing is indexed and the lexical fallback found nothing
	ReasonNoVectors NoMatchReason = "no_vectors"
	// ReasonBelowThreshold means the best semantic candidate was not confident enough
	ReasonBelowThreshold NoMatchReason = "below_threshold"
	// ReasonEmptyQuery means the query had no non-space characters
	ReasonEmptyQuery NoMatchReason = "empty_query"
)

// Resolution is the outcome of resolving a query to a single project
type Resolution struct {
	Outcome  Outcome
	Project  *Project
	Score    float64
	Semantic bool
	Exact    bool
	Reason   NoMatchReason
	Best     float64 // Best score seen when below threshold
}

// Resolved reports whether the resolution produced a path
func (r *Resolution) Resolved() bool {
	return r != nil && r.Outcome == OutcomeResolved && r.Project != nil
}

// Path returns the resolved path, or an empty string
func (r *Resolution) Path() string {
	if !r.Resolved() {
		return ""
	}
	return r.Project.Path
}
