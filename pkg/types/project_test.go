package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvenanceOutranks(t *testing.T) {
	assert.True(t, SourceManual.Outranks(SourceSpotlight))
	assert.True(t, SourceManual.Outranks(SourceScan))
	assert.True(t, SourceSpotlight.Outranks(SourceScan))
	assert.False(t, SourceScan.Outranks(SourceManual))
	assert.False(t, SourceSpotlight.Outranks(SourceSpotlight))
}

func TestParseProvenance(t *testing.T) {
	p, err := ParseProvenance("manual")
	require.NoError(t, err)
	assert.Equal(t, SourceManual, p)

	_, err = ParseProvenance("bogus")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownProvenance)
}

func TestProjectName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/home/u/src/foyer", "foyer"},
		{"/home/u/src/foyer/", "foyer"},
		{"/", "/"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, ProjectName(tt.path))
		})
	}
}

func TestProjectValidate(t *testing.T) {
	valid := Project{Path: "/tmp/x", Name: "x", Source: SourceScan}
	require.NoError(t, valid.Validate())

	rel := valid
	rel.Path = "x"
	assert.ErrorIs(t, rel.Validate(), ErrRelativePath)

	empty := valid
	empty.Path = ""
	assert.ErrorIs(t, empty.Validate(), ErrEmptyPath)

	neg := valid
	neg.AccessCount = -1
	assert.ErrorIs(t, neg.Validate(), ErrNegativeAccessCount)

	src := valid
	src.Source = "weird"
	assert.ErrorIs(t, src.Validate(), ErrUnknownProvenance)
}

func TestResolutionPath(t *testing.T) {
	var nilRes *Resolution
	assert.False(t, nilRes.Resolved())
	assert.Equal(t, "", nilRes.Path())

	r := &Resolution{Outcome: OutcomeResolved, Project: &Project{Path: "/a/b"}}
	assert.True(t, r.Resolved())
	assert.Equal(t, "/a/b", r.Path())

	none := &Resolution{Outcome: OutcomeNoMatch, Reason: ReasonBelowThreshold}
	assert.Equal(t, "", none.Path())
}

func TestScanResultTotal(t *testing.T) {
	r := ScanResult{FromPaths: 3, FromSystemIndex: 4, Pruned: 9}
	assert.Equal(t, 7, r.Total())
}
