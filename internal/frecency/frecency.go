// Package frecency scores projects by how often and how recently they were
// visited.
package frecency

import (
	"math"
	"time"

	"github.com/dshills/goto/pkg/types"
)

// HalfLifeHours is the inactivity period after which recency halves.
const HalfLifeHours = 72.0

// Score returns recency * frequency * 100 where recency decays
// exponentially with a HalfLifeHours half life and frequency is
// ln(accessCount+1). A project that was never accessed scores 0.
func Score(accessCount int64, lastAccessed, now time.Time) float64 {
	if accessCount <= 0 {
		return 0
	}
	hours := now.Sub(lastAccessed).Hours()
	if hours < 0 {
		hours = 0
	}
	recency := math.Pow(0.5, hours/HalfLifeHours)
	frequency := math.Log(float64(accessCount) + 1)
	return recency * frequency * 100
}

// ProjectScore is Score applied to a project row.
func ProjectScore(p *types.Project, now time.Time) float64 {
	return Score(p.AccessCount, p.LastAccessed, now)
}

// ActiveWithin reports whether p was visited at least once within window.
func ActiveWithin(p *types.Project, window time.Duration, now time.Time) bool {
	return p.AccessCount > 0 && p.LastAccessed.After(now.Add(-window))
}
