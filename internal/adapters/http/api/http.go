// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/neplaunch/matchd/internal/adapters/repository"
	service "github.com/neplaunch/matchd/internal/app"
	"github.com/neplaunch/matchd/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Matching operations.
	ScheduleRefresh(ctx context.Context, userID, reason string) error
	RefreshMatches(ctx context.Context, userID string) error
	CachedMatches(ctx context.Context, userID string) ([]model.Match, error)

	// Ingestion operations populate the candidate pools.
	PutUser(ctx context.Context, u model.User) error
	PutTalentProfile(ctx context.Context, p model.TalentProfile) error
	PutInvestorProfile(ctx context.Context, p model.InvestorProfile) error
	PutStartup(ctx context.Context, st model.Startup) error
	PutRequirement(ctx context.Context, r model.Requirement) error

	// Connection request operations.
	Connect(ctx context.Context, fromUserID, toUserID, matchID, message string) (model.ConnectionRequest, error)
	Connections(ctx context.Context, userID string) ([]model.ConnectionRequest, error)
	AcceptConnection(ctx context.Context, id, actorID string) (model.ConnectionRequest, error)
	DeclineConnection(ctx context.Context, id, actorID string) (model.ConnectionRequest, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	matchingHandler    *MatchingHandler
	connectionsHandler *ConnectionsHandler
	profilesHandler    *ProfilesHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		matchingHandler:    NewMatchingHandler(deps),
		connectionsHandler: NewConnectionsHandler(deps),
		profilesHandler:    NewProfilesHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", MetricsMiddleware(s.healthHandler.HandleHealth, "metrics"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/matching/refresh", MetricsMiddleware(s.matchingHandler.HandleRefresh, "matching_refresh"))
	mux.HandleFunc("/matching/results", MetricsMiddleware(s.matchingHandler.HandleResults, "matching_results"))
	mux.HandleFunc("/connections", MetricsMiddleware(s.connectionsHandler.HandleConnections, "connections"))
	mux.HandleFunc("/connections/", MetricsMiddleware(s.connectionsHandler.HandleResolve, "connections_resolve"))
	mux.HandleFunc("/users", MetricsMiddleware(s.profilesHandler.HandlePutUser, "users"))
	mux.HandleFunc("/profiles/talent", MetricsMiddleware(s.profilesHandler.HandlePutTalent, "profiles_talent"))
	mux.HandleFunc("/profiles/investor", MetricsMiddleware(s.profilesHandler.HandlePutInvestor, "profiles_investor"))
	mux.HandleFunc("/startups", MetricsMiddleware(s.profilesHandler.HandlePutStartup, "startups"))
	mux.HandleFunc("/requirements", MetricsMiddleware(s.profilesHandler.HandlePutRequirement, "requirements"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeDomainError translates service and repository sentinels to HTTP
// statuses; anything unrecognized becomes a 500.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, repository.ErrPendingExists):
		writeError(w, http.StatusConflict, "pending_exists", err)
	case errors.Is(err, repository.ErrNotPending):
		writeError(w, http.StatusConflict, "not_pending", err)
	case errors.Is(err, service.ErrQueueFull):
		writeError(w, http.StatusTooManyRequests, "backpressure", err)
	case errors.Is(err, service.ErrUnknownRole),
		errors.Is(err, service.ErrEmptyUserID),
		errors.Is(err, service.ErrSelfConnect):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
