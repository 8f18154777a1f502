// Package similarity ranks candidate texts by edit distance to a target.
package similarity

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// EmptyCandidate is the score of a candidate with no text. It is larger than any
// attainable normalized distance so empty candidates always rank last.
var EmptyCandidate = math.Inf(1)

// Scorer computes case-insensitive, length-normalized edit distances.
type Scorer struct{}

// NewScorer returns a Scorer.
func NewScorer() *Scorer { return &Scorer{} }

// Distance is the Levenshtein distance between a and b counted in runes.
// It runs in O(len(a)*len(b)) time with a single rolling row of O(min(len(a), len(b))) space.
func (*Scorer) Distance(a, b string) int {
	return levenshtein.ComputeDistance(a, b)
}

// NormalizedDistance is Distance(lower(candidate), lower(target)) divided by the rune
// length of candidate. Lower is better.
func (s *Scorer) NormalizedDistance(candidate, target string) float64 {
	n := utf8.RuneCountInString(candidate)
	if n == 0 {
		return EmptyCandidate
	}
	return float64(s.Distance(strings.ToLower(candidate), strings.ToLower(target))) / float64(n)
}
