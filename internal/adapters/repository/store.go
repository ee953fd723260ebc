// Package repository defines the profile, match, and connection stores plus
// their errors, with in-memory and SQLite implementations.
package repository

import (
	"context"

	"github.com/neplaunch/matchd/internal/domain/model"
)

// UserStore holds user identities.
type UserStore interface {
	PutUser(ctx context.Context, u model.User) error
	// UserByID returns ErrNotFound for unknown ids.
	UserByID(ctx context.Context, id string) (model.User, error)
}

// ProfileStore provides the candidate pools and single-entity lookups the
// matching pipeline reads. The pipeline never writes profiles; the Put
// methods exist for ingestion.
type ProfileStore interface {
	PutTalentProfile(ctx context.Context, p model.TalentProfile) error
	TalentProfileByUser(ctx context.Context, userID string) (model.TalentProfile, error)
	// TalentProfiles returns all profiles ordered by user id ascending.
	TalentProfiles(ctx context.Context) ([]model.TalentProfile, error)

	PutInvestorProfile(ctx context.Context, p model.InvestorProfile) error
	InvestorProfileByUser(ctx context.Context, userID string) (model.InvestorProfile, error)
	// InvestorProfiles returns all profiles ordered by user id ascending.
	InvestorProfiles(ctx context.Context) ([]model.InvestorProfile, error)

	PutStartup(ctx context.Context, s model.Startup) error
	StartupByID(ctx context.Context, id string) (model.Startup, error)
	StartupByFounder(ctx context.Context, founderID string) (model.Startup, error)
	// Startups returns all startups ordered by id ascending.
	Startups(ctx context.Context) ([]model.Startup, error)

	PutRequirement(ctx context.Context, r model.Requirement) error
	// ActiveRequirements returns every active requirement in the system,
	// ordered by id ascending.
	ActiveRequirements(ctx context.Context) ([]model.Requirement, error)
	// ActiveRequirementsByStartup returns a startup's active requirements,
	// ordered by id ascending.
	ActiveRequirementsByStartup(ctx context.Context, startupID string) ([]model.Requirement, error)
}

// MatchStore persists matching run output. The persisted set for a source
// user is always the output of that user's most recent run.
type MatchStore interface {
	// ReplaceMatchesForSource deletes all matches with the given source and
	// inserts the new set as one atomic unit. A failure leaves the previous
	// set intact.
	ReplaceMatchesForSource(ctx context.Context, sourceUserID string, matches []model.Match) error

	// MatchesBySource returns a user's matches ordered by overall score
	// descending, then by target user id ascending.
	MatchesBySource(ctx context.Context, sourceUserID string) ([]model.Match, error)
}

// ConnectionStore persists connection requests and enforces their two
// invariants: at most one pending request per ordered (from, to) pair, and
// transitions only by the addressee, only out of pending.
type ConnectionStore interface {
	// CreateConnectionRequest inserts a pending request, returning
	// ErrPendingExists if one is already pending for the same pair.
	CreateConnectionRequest(ctx context.Context, conn model.ConnectionRequest) error

	// ConnectionRequestsForUser lists requests where the user is on either
	// side, oldest first.
	ConnectionRequestsForUser(ctx context.Context, userID string) ([]model.ConnectionRequest, error)

	// ResolveConnectionRequest transitions a pending request addressed to
	// actorID into the given terminal status. Unknown ids and requests
	// addressed to someone else return ErrNotFound; terminal requests
	// return ErrNotPending.
	ResolveConnectionRequest(ctx context.Context, id, actorID string, status model.ConnectionStatus) (model.ConnectionRequest, error)
}

// Counts summarizes store contents for monitoring.
type Counts struct {
	Users            int `json:"users"`
	TalentProfiles   int `json:"talent_profiles"`
	InvestorProfiles int `json:"investor_profiles"`
	Startups         int `json:"startups"`
	Requirements     int `json:"requirements"`
	Matches          int `json:"matches"`
	Connections      int `json:"connections"`
}

// Store bundles every persistence concern behind one backend.
type Store interface {
	UserStore
	ProfileStore
	MatchStore
	ConnectionStore

	Counts(ctx context.Context) (Counts, error)
	Close() error
}
