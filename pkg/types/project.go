package types

import (
	"fmt"
	"path/filepath"
	"time"
)

// Provenance records how a project was discovered.
type Provenance string

const (
	SourceScan      Provenance = "scan"
	SourceSpotlight Provenance = "spotlight"
	SourceManual    Provenance = "manual"
)

// rank orders provenance by precedence, higher wins
func (p Provenance) rank() int {
	switch p {
	case SourceManual:
		return 3
	case SourceSpotlight:
		return 2
	case SourceScan:
		return 1
	default:
		return 0
	}
}

// Outranks reports whether p takes precedence over other.
func (p Provenance) Outranks(other Provenance) bool {
	return p.rank() > other.rank()
}

// ParseProvenance converts a stored source tag back into a Provenance.
func ParseProvenance(s string) (Provenance, error) {
	switch Provenance(s) {
	case SourceScan, SourceSpotlight, SourceManual:
		return Provenance(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownProvenance, s)
	}
}

// Project is a development directory known to the index
type Project struct {
	ID           int64
	Path         string // Absolute, unique
	Name         string // Final path segment
	LastAccessed time.Time
	AccessCount  int64
	LastModified time.Time
	Source       Provenance
}

// ProjectMetadata is the textual summary of a project used for embedding
type ProjectMetadata struct {
	Description    string
	ReadmeExcerpt  string
	Keywords       []string
	TechStack      []string
	StructureHints []string
	TypeNames      []string
	EmbeddedText   string
	LastIndexed    time.Time
}

// IsEmpty reports whether extraction found nothing at all
func (m *ProjectMetadata) IsEmpty() bool {
	return m.Description == "" && m.ReadmeExcerpt == "" &&
		len(m.Keywords) == 0 && len(m.TechStack) == 0 &&
		len(m.StructureHints) == 0 && len(m.TypeNames) == 0
}

// ProjectName derives the display name for a project path.
func ProjectName(path string) string {
	name := filepath.Base(filepath.Clean(path))
	if name == "." || name == string(filepath.Separator) || name == "" {
		return path
	}
	return name
}

// Validate checks if the project is valid
func (p *Project) Validate() error {
	if p.Path == "" {
		return ErrEmptyPath
	}
	if !filepath.IsAbs(p.Path) {
		return ErrRelativePath
	}
	if p.AccessCount < 0 {
		return ErrNegativeAccessCount
	}
	if _, err := ParseProvenance(string(p.Source)); err != nil {
		return err
	}
	return nil
}

