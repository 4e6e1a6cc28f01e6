package frecency

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dshills/goto/pkg/types"
)

func TestScoreZeroAccess(t *testing.T) {
	now := time.Now()
	for _, last := range []time.Time{now, now.Add(-time.Hour), now.Add(-24 * 30 * time.Hour), now.Add(time.Hour)} {
		assert.Equal(t, 0.0, Score(0, last, now))
	}
}

func TestScoreMonotonicInAge(t *testing.T) {
	now := time.Now()
	prev := math.Inf(1)
	for h := 0; h <= 24*21; h += 6 {
		s := Score(5, now.Add(-time.Duration(h)*time.Hour), now)
		assert.LessOrEqual(t, s, prev, "hours=%d", h)
		prev = s
	}
}

func TestScoreHalfLife(t *testing.T) {
	now := time.Now()
	fresh := Score(3, now, now)
	old := Score(3, now.Add(-72*time.Hour), now)
	assert.InDelta(t, fresh/2, old, 1e-9)
	assert.InDelta(t, math.Log(4)*100, fresh, 1e-9)
}

func TestScoreFutureTimestampClamped(t *testing.T) {
	now := time.Now()
	assert.Equal(t, Score(2, now, now), Score(2, now.Add(time.Hour), now))
}

func TestScoreFrequencyOrdering(t *testing.T) {
	now := time.Now()
	hourAgo := now.Add(-time.Hour)
	a := &types.Project{Name: "a", AccessCount: 10, LastAccessed: hourAgo}
	b := &types.Project{Name: "b", AccessCount: 1, LastAccessed: hourAgo}
	assert.Greater(t, ProjectScore(a, now), ProjectScore(b, now))
}

func TestActiveWithin(t *testing.T) {
	now := time.Now()
	week := 7 * 24 * time.Hour

	assert.True(t, ActiveWithin(&types.Project{AccessCount: 1, LastAccessed: now.Add(-time.Hour)}, week, now))
	assert.False(t, ActiveWithin(&types.Project{AccessCount: 1, LastAccessed: now.Add(-8 * 24 * time.Hour)}, week, now))
	assert.False(t, ActiveWithin(&types.Project{AccessCount: 0, LastAccessed: now}, week, now))
}
