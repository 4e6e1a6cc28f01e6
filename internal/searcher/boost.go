package searcher

import "strings"

// Boosts are the additive adjustments applied on top of vector similarity
type Boosts struct {
	ExactName     float64 // name equals the query
	Substring     float64 // name contains the query, or every significant word
	Metadata      float64 // embedded text contains every significant word
	Max           float64 // ceiling for boosted scores
	MinConfidence float64 // resolve threshold
	MinWordLen    int     // shorter query words are ignored
}

// DefaultBoosts returns the standard ranking constants
func DefaultBoosts() Boosts {
	return Boosts{
		ExactName:     40,
		Substring:     20,
		Metadata:      10,
		Max:           100,
		MinConfidence: 55,
		MinWordLen:    3,
	}
}

// Boost adjusts a similarity score using the project name and its embedded
// metadata text. queryLower must already be lowercased. The result lies in
// [base, Max] when base <= Max.
func (b Boosts) Boost(name, queryLower string, base float64, embeddedText string) float64 {
	nameLower := strings.ToLower(name)
	score := base

	switch {
	case nameLower == queryLower:
		score += b.ExactName
	case strings.Contains(nameLower, queryLower):
		score += b.Substring
	default:
		words := b.significantWords(queryLower)
		if len(words) == 0 {
			break
		}
		if containsAll(nameLower, words) {
			score += b.Substring
		} else if containsAll(strings.ToLower(embeddedText), words) {
			score += b.Metadata
		}
	}

	return min(score, max(b.Max, base))
}

func (b Boosts) significantWords(query string) []string {
	var words []string
	for _, w := range strings.Fields(query) {
		if len(w) >= b.MinWordLen {
			words = append(words, w)
		}
	}
	return words
}

func containsAll(text string, words []string) bool {
	for _, w := range words {
		if !strings.Contains(text, w) {
			return false
		}
	}
	return true
}
