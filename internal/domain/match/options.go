package match

import "github.com/neplaunch/matchd/internal/domain/scoring"

// Option applies a configuration option to a matcher Config.
type Option func(*Config)

// WithWeights sets the sub-score weighting.
func WithWeights(w scoring.Weights) Option {
	return func(c *Config) {
		if w.Skill >= 0 && w.Semantic >= 0 && w.Skill+w.Semantic > 0 {
			c.Weights = w
		}
	}
}

// WithTalentThreshold sets the exclusive inclusion threshold for the talent
// matcher.
func WithTalentThreshold(t float64) Option {
	return func(c *Config) {
		if t >= 0 {
			c.TalentThreshold = t
		}
	}
}

// WithInvestorThreshold sets the exclusive inclusion threshold for the
// investor matcher.
func WithInvestorThreshold(t float64) Option {
	return func(c *Config) {
		if t >= 0 {
			c.InvestorThreshold = t
		}
	}
}

// WithLimit caps the number of results a single match run can return.
func WithLimit(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.Limit = n
		}
	}
}
