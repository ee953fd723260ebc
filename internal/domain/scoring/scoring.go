// Package scoring provides the pure scoring primitives used by the matchers:
// lexical skill overlap, embedding cosine similarity, and their weighted
// combination.
package scoring

import (
	"math"
	"sort"
	"strings"
)

// Default weighting of the two sub-scores.
const (
	DefaultSkillWeight    = 0.6
	DefaultSemanticWeight = 0.4
)

// Weights combines a lexical sub-score and a semantic sub-score into one
// overall relevance score.
type Weights struct {
	Skill    float64
	Semantic float64
}

// DefaultWeights returns the 0.6/0.4 hybrid weighting.
func DefaultWeights() Weights {
	return Weights{Skill: DefaultSkillWeight, Semantic: DefaultSemanticWeight}
}

// Combine returns the weighted sum of the two sub-scores.
func (w Weights) Combine(skill, semantic float64) float64 {
	return w.Skill*skill + w.Semantic*semantic
}

// SkillOverlap computes the fraction of required terms present in the
// candidate's term set, case-insensitively. It returns the matched and
// missing terms lower-cased and sorted ascending so results are
// deterministic. An empty required set scores 0.0.
func SkillOverlap(required, candidate []string) (float64, []string, []string) {
	requiredSet := toLowerSet(required)
	candidateSet := toLowerSet(candidate)

	matched := make([]string, 0, len(requiredSet))
	missing := make([]string, 0, len(requiredSet))
	for term := range requiredSet {
		if _, ok := candidateSet[term]; ok {
			matched = append(matched, term)
		} else {
			missing = append(missing, term)
		}
	}
	sort.Strings(matched)
	sort.Strings(missing)

	if len(requiredSet) == 0 {
		return 0.0, matched, missing
	}
	return float64(len(matched)) / float64(len(requiredSet)), matched, missing
}

// CosineSimilarity computes dot(a,b)/(|a|*|b|). A zero-norm vector on either
// side yields 0.0 rather than dividing by zero. Mismatched dimensions are a
// caller contract violation and return ErrDimensionMismatch.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, ErrDimensionMismatch
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	norm := math.Sqrt(normA) * math.Sqrt(normB)
	if norm == 0 {
		return 0.0, nil
	}
	return dot / norm, nil
}

// toLowerSet builds a lower-cased set from a term list, dropping blanks.
func toLowerSet(terms []string) map[string]struct{} {
	set := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		set[t] = struct{}{}
	}
	return set
}
