package metadata

import (
	"log/slog"
	"strings"

	"github.com/dshills/goto/pkg/types"
)

// Extractor reads project metadata from disk.
type Extractor struct {
	logger *slog.Logger
}

// New returns an Extractor. A nil logger uses slog.Default().
func New(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

// Extract gathers everything known about the project at path.
func (e *Extractor) Extract(path string) *types.ProjectMetadata {
	meta := &types.ProjectMetadata{}

	m := e.readManifests(path)
	meta.Description = m.description
	meta.Keywords = m.keywords
	meta.ReadmeExcerpt = e.readmeExcerpt(path)
	meta.TechStack = DetectTechStack(path)
	meta.StructureHints = StructureHints(path)
	meta.TypeNames = e.typeNames(path)

	return meta
}

// Extract is a convenience wrapper around New(nil).Extract.
func Extract(path string) *types.ProjectMetadata {
	return New(nil).Extract(path)
}

// BuildEmbeddingText joins the non-empty parts of meta with " | ".
func BuildEmbeddingText(name string, meta *types.ProjectMetadata) string {
	parts := []string{name}
	if meta == nil {
		return name
	}

	if meta.Description != "" {
		parts = append(parts, meta.Description)
	}
	if len(meta.Keywords) > 0 {
		parts = append(parts, strings.Join(meta.Keywords, ", "))
	}
	if meta.ReadmeExcerpt != "" {
		parts = append(parts, meta.ReadmeExcerpt)
	}
	if len(meta.TechStack) > 0 {
		parts = append(parts, "Technologies: "+strings.Join(meta.TechStack, ", "))
	}
	if hints := SemanticHints(meta.TechStack); len(hints) > 0 {
		parts = append(parts, "Type: "+strings.Join(hints, ", "))
	}
	if len(meta.StructureHints) > 0 {
		parts = append(parts, "Structure: "+strings.Join(meta.StructureHints, ", "))
	}
	if len(meta.TypeNames) > 0 {
		parts = append(parts, "Types: "+strings.Join(meta.TypeNames, ", "))
	}

	return strings.Join(parts, " | ")
}
