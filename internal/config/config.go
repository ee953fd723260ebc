// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults, Load(ctx) to layer
//   file and environment overrides on top.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"

	"github.com/neplaunch/matchd/internal/domain/match"
	"github.com/neplaunch/matchd/internal/domain/scoring"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Store selects the persistence backend: memory or sqlite.
	Store string `koanf:"store"`

	// SQLitePath is the database file path when Store is sqlite.
	SQLitePath string `koanf:"sqlite_path"`

	// GeminiAPIKey enables the embedding client when set. Without it,
	// matching degrades to skill overlap only.
	GeminiAPIKey string `koanf:"gemini_api_key"`

	// EmbedModel names the embedding model to use.
	EmbedModel string `koanf:"embed_model"`

	// SkillWeight and SemanticWeight blend the two score components.
	SkillWeight    float64 `koanf:"skill_weight"`
	SemanticWeight float64 `koanf:"semantic_weight"`

	// TalentThreshold and InvestorThreshold set the minimum overall score
	// a candidate must exceed to be persisted.
	TalentThreshold   float64 `koanf:"talent_threshold"`
	InvestorThreshold float64 `koanf:"investor_threshold"`

	// MatchLimit caps how many matches one run persists per ranking.
	MatchLimit int `koanf:"match_limit"`

	// QueueSize bounds the in-memory refresh queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of refresh workers.
	WorkerCount int `koanf:"worker_count"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		Addr:              ":9080",
		Store:             StoreMemory,
		SQLitePath:        "matchd.db",
		EmbedModel:        "text-embedding-004",
		SkillWeight:       scoring.DefaultSkillWeight,
		SemanticWeight:    scoring.DefaultSemanticWeight,
		TalentThreshold:   match.DefaultTalentThreshold,
		InvestorThreshold: match.DefaultInvestorThreshold,
		MatchLimit:        match.DefaultLimit,
		QueueSize:         10_000,
		WorkerCount:       runtime.NumCPU() * 2,
	}
}
