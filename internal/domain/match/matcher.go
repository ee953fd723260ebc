// Package match implements the per-population matchers: talent profiles
// against a startup requirement, and investor profiles against a startup.
//
// Both matchers share the same pipeline: score every candidate in the pool,
// drop candidates at or below the inclusion threshold, order the survivors by
// overall score descending with target user id ascending as the tie-breaker,
// and truncate to the configured limit. The tie-break on user id is a
// contract, not an accident of pool iteration order.
package match

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/neplaunch/matchd/internal/domain/model"
	"github.com/neplaunch/matchd/internal/domain/scoring"
)

// Default matcher configuration constants.
const (
	DefaultTalentThreshold   = 0.10
	DefaultInvestorThreshold = 0.05
	DefaultLimit             = 20
)

// Additive rule weights for the investor matcher. The rule score is not
// renormalized; its range is [0, 0.6].
const (
	sectorRuleWeight    = 0.3
	stageRuleWeight     = 0.2
	checkSizeRuleWeight = 0.1
)

// Rule tokens recorded as matched terms by the investor matcher.
const (
	ReasonSectorMatch    = "sector_match"
	ReasonStageMatch     = "stage_match"
	ReasonCheckSizeMatch = "check_size_match"
)

// Config holds the tunable matching policy: sub-score weights, the two
// inclusion thresholds, and the result cap.
type Config struct {
	Weights           scoring.Weights
	TalentThreshold   float64
	InvestorThreshold float64
	Limit             int
}

// DefaultConfig returns the stock 0.6/0.4 weighting with the asymmetric
// 0.10/0.05 thresholds.
func DefaultConfig() Config {
	return Config{
		Weights:           scoring.DefaultWeights(),
		TalentThreshold:   DefaultTalentThreshold,
		InvestorThreshold: DefaultInvestorThreshold,
		Limit:             DefaultLimit,
	}
}

// Result is one scored candidate that cleared the inclusion threshold.
type Result struct {
	TargetUserID  string
	OverallScore  float64
	SkillScore    float64
	SemanticScore float64
	MatchedTerms  []string
	MissingTerms  []string
	RequirementID string
}

// TalentMatcher ranks talent profiles against a single requirement.
type TalentMatcher struct {
	cfg Config
}

// NewTalentMatcher creates a talent matcher with configuration options.
func NewTalentMatcher(opts ...Option) *TalentMatcher {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &TalentMatcher{cfg: cfg}
}

// Match scores every profile in the pool against the requirement. The
// semantic sub-score participates only when both sides carry an embedding;
// otherwise it degrades to 0.0 without error. Mismatched embedding
// dimensions abort the whole call.
func (m *TalentMatcher) Match(ctx context.Context, req model.Requirement, pool []model.TalentProfile) ([]Result, error) {
	results := make([]Result, 0, len(pool))

	for _, candidate := range pool {
		skillScore, matched, missing := scoring.SkillOverlap(req.RequiredSkills, candidate.SkillNames())

		semantic := 0.0
		if req.Embedding != nil && candidate.Embedding != nil {
			var err error
			semantic, err = scoring.CosineSimilarity(req.Embedding, candidate.Embedding)
			if err != nil {
				return nil, err
			}
		}

		overall := m.cfg.Weights.Combine(skillScore, semantic)
		if overall <= m.cfg.TalentThreshold {
			continue
		}

		results = append(results, Result{
			TargetUserID:  candidate.UserID,
			OverallScore:  round3(overall),
			SkillScore:    round3(skillScore),
			SemanticScore: round3(semantic),
			MatchedTerms:  matched,
			MissingTerms:  missing,
			RequirementID: req.ID,
		})
	}

	return rank(results, m.cfg.Limit), nil
}

// InvestorMatcher ranks investor profiles against a single startup using
// additive thesis-alignment rules in place of the lexical overlap.
type InvestorMatcher struct {
	cfg Config
}

// NewInvestorMatcher creates an investor matcher with configuration options.
func NewInvestorMatcher(opts ...Option) *InvestorMatcher {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &InvestorMatcher{cfg: cfg}
}

// Match scores every investor in the pool against the startup. The rule
// score ranges over [0, 0.6] and is fed unnormalized into the weighted
// combination; the looser 0.05 threshold compensates for the sparse signal.
func (m *InvestorMatcher) Match(ctx context.Context, startup model.Startup, pool []model.InvestorProfile) ([]Result, error) {
	results := make([]Result, 0, len(pool))

	for _, inv := range pool {
		ruleScore, reasons := thesisAlignment(startup, inv)

		semantic := 0.0
		if startup.Embedding != nil && inv.Embedding != nil {
			var err error
			semantic, err = scoring.CosineSimilarity(startup.Embedding, inv.Embedding)
			if err != nil {
				return nil, err
			}
		}

		overall := m.cfg.Weights.Combine(ruleScore, semantic)
		if overall <= m.cfg.InvestorThreshold {
			continue
		}

		results = append(results, Result{
			TargetUserID:  inv.UserID,
			OverallScore:  round3(overall),
			SkillScore:    round3(ruleScore),
			SemanticScore: round3(semantic),
			MatchedTerms:  reasons,
			MissingTerms:  []string{},
		})
	}

	return rank(results, m.cfg.Limit), nil
}

// thesisAlignment applies the three additive rules and reports which fired.
func thesisAlignment(startup model.Startup, inv model.InvestorProfile) (float64, []string) {
	score := 0.0
	reasons := make([]string, 0, 3)

	if startup.Industry != "" && containsFold(inv.PreferredSectors, startup.Industry) {
		score += sectorRuleWeight
		reasons = append(reasons, ReasonSectorMatch)
	}

	if startup.Stage != "" && containsFold(inv.PreferredStages, startup.Stage) {
		score += stageRuleWeight
		reasons = append(reasons, ReasonStageMatch)
	}

	// The check-size rule only applies when the investor states a minimum
	// and the startup states an ask. A missing maximum means unbounded.
	if inv.CheckSizeMin > 0 && startup.FundingAsk > 0 {
		maxCheck := inv.CheckSizeMax
		if maxCheck <= 0 {
			maxCheck = math.Inf(1)
		}
		if inv.CheckSizeMin <= startup.FundingAsk && startup.FundingAsk <= maxCheck {
			score += checkSizeRuleWeight
			reasons = append(reasons, ReasonCheckSizeMatch)
		}
	}

	return score, reasons
}

// rank orders results by overall score descending, tie-broken by target
// user id ascending, and truncates to limit.
func rank(results []Result, limit int) []Result {
	sort.Slice(results, func(i, j int) bool {
		if results[i].OverallScore != results[j].OverallScore {
			return results[i].OverallScore > results[j].OverallScore
		}
		return results[i].TargetUserID < results[j].TargetUserID
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// containsFold reports whether needle is in haystack, case-insensitively.
func containsFold(haystack []string, needle string) bool {
	for _, s := range haystack {
		if strings.EqualFold(s, needle) {
			return true
		}
	}
	return false
}

// round3 rounds to three decimal places, the precision persisted on matches.
func round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}
