// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	refreshqueue "github.com/neplaunch/matchd/internal/adapters/mq/queue"
	workerpool "github.com/neplaunch/matchd/internal/adapters/mq/worker"
	"github.com/neplaunch/matchd/internal/adapters/repository"
	"github.com/neplaunch/matchd/internal/domain/coalesce"
	"github.com/neplaunch/matchd/internal/domain/embed"
	"github.com/neplaunch/matchd/internal/domain/match"
	"github.com/neplaunch/matchd/internal/domain/model"
	"github.com/neplaunch/matchd/pkg/logger"
	"github.com/neplaunch/matchd/pkg/metrics"
	"golang.org/x/sync/singleflight"
)

// Connection request outcomes reported to metrics.
const (
	outcomeCreated   = "created"
	outcomeDuplicate = "duplicate"
	outcomeAccepted  = "accepted"
	outcomeDeclined  = "declined"
	outcomeError     = "error"
)

// Service orchestrates matching runs, profile ingestion, and connection
// requests on top of a Store.
type Service struct {
	mu sync.RWMutex

	// Core components
	store           repository.Store
	embedder        embed.Embedder
	talentMatcher   *match.TalentMatcher
	investorMatcher *match.InvestorMatcher
	queue           refreshqueue.Queue
	pool            *workerpool.Pool
	tracker         coalesce.Tracker

	// Collapses concurrent refreshes of the same user into one run.
	refreshGroup singleflight.Group

	// Configuration
	matchOpts   []match.Option
	queueSize   int
	workerCount int

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the persistence backend. Defaults to the in-memory store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithEmbedder sets the embedding client. Without one, semantic scores
// degrade to zero and matching runs on skill overlap and thesis rules alone.
func WithEmbedder(e embed.Embedder) Option {
	return func(s *Service) {
		if e != nil {
			s.embedder = e
		}
	}
}

// WithMatchOptions forwards tuning options to both matchers.
func WithMatchOptions(opts ...match.Option) Option {
	return func(s *Service) {
		s.matchOpts = append(s.matchOpts, opts...)
	}
}

// WithQueueSize sets the maximum size of the refresh queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithWorkerCount sets the number of refresh worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		embedder:    embed.Unavailable{},
		queueSize:   10_000,
		workerCount: runtime.NumCPU() * 2,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting matching service...")

	if s.store == nil {
		s.store = repository.NewMemoryStore()
		s.logger.Info(ctx, "using in-memory store")
	}
	s.talentMatcher = match.NewTalentMatcher(s.matchOpts...)
	s.investorMatcher = match.NewInvestorMatcher(s.matchOpts...)
	s.tracker = coalesce.NewInMemoryTracker()
	s.queue = refreshqueue.NewInMemoryQueue(
		refreshqueue.WithCapacity(s.queueSize),
		refreshqueue.WithBufferSize(s.queueSize),
	)

	s.pool = workerpool.NewPool(s.workerCount, s.queue, s, s.tracker)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "matching service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping matching service...")

	if s.pool != nil {
		_ = s.pool.Shutdown(ctx)
	}
	if s.store != nil {
		_ = s.store.Close()
	}

	s.started = false
	s.logger.Info(ctx, "matching service stopped")
}

// ScheduleRefresh enqueues an asynchronous matching run for the user. A
// refresh already pending for the same user is coalesced into it. Returns
// ErrQueueFull when the queue rejects the job.
func (s *Service) ScheduleRefresh(ctx context.Context, userID, reason string) error {
	if userID == "" {
		return ErrEmptyUserID
	}
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return ErrNotStarted
	}

	if s.tracker.Claim(ctx, userID) {
		s.logger.Debug(ctx, "refresh already pending, coalescing",
			logger.String("user_id", userID),
			logger.String("reason", reason),
		)
		return nil
	}
	metrics.UpdatePendingRefreshes(s.tracker.Size())

	job := refreshqueue.Job{UserID: userID, Reason: reason, EnqueuedAt: time.Now()}
	if !s.queue.Enqueue(ctx, job) {
		s.tracker.Release(ctx, userID)
		metrics.UpdatePendingRefreshes(s.tracker.Size())
		return ErrQueueFull
	}
	return nil
}

// RefreshMatches recomputes and persists the user's matches synchronously.
// Concurrent calls for the same user share one run.
func (s *Service) RefreshMatches(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrEmptyUserID
	}

	_, err, _ := s.refreshGroup.Do(userID, func() (any, error) {
		return nil, s.refreshMatches(ctx, userID)
	})
	return err
}

func (s *Service) refreshMatches(ctx context.Context, userID string) error {
	start := time.Now()

	user, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("load user %s: %w", userID, err)
	}

	defer func() {
		metrics.RecordMatchingRunDuration(float64(time.Since(start).Milliseconds()))
	}()

	var matches []model.Match
	switch user.Role {
	case model.RoleFounder:
		matches, err = s.matchFounder(ctx, user)
	case model.RoleTalent:
		matches, err = s.matchTalent(ctx, user)
	case model.RoleInvestor:
		matches, err = s.matchInvestor(ctx, user)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownRole, user.Role)
	}
	if err != nil {
		metrics.RecordMatchingRunError(string(user.Role))
		return err
	}

	if err := s.store.ReplaceMatchesForSource(ctx, userID, matches); err != nil {
		metrics.RecordMatchingRunError(string(user.Role))
		return fmt.Errorf("persist matches for %s: %w", userID, err)
	}

	metrics.RecordMatchingRun(string(user.Role))
	byType := map[string]int{}
	for _, m := range matches {
		byType[string(m.Type)]++
	}
	for matchType, n := range byType {
		metrics.RecordMatchesProduced(matchType, n)
	}

	s.logger.Debug(ctx, "matching run completed",
		logger.String("user_id", userID),
		logger.String("role", string(user.Role)),
		logger.Int("matches", len(matches)),
	)
	return nil
}

// matchFounder ranks talent against each of the founder's active
// requirements, then investors against the startup. A founder without a
// startup keeps an empty match set.
func (s *Service) matchFounder(ctx context.Context, user model.User) ([]model.Match, error) {
	startup, err := s.store.StartupByFounder(ctx, user.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load startup for founder %s: %w", user.ID, err)
	}

	now := time.Now().UTC()
	var matches []model.Match

	requirements, err := s.store.ActiveRequirementsByStartup(ctx, startup.ID)
	if err != nil {
		return nil, fmt.Errorf("load requirements: %w", err)
	}
	if len(requirements) > 0 {
		pool, err := s.store.TalentProfiles(ctx)
		if err != nil {
			return nil, fmt.Errorf("load talent pool: %w", err)
		}
		metrics.RecordCandidatesEvaluated(len(pool) * len(requirements))
		for _, req := range requirements {
			results, err := s.talentMatcher.Match(ctx, req, pool)
			if err != nil {
				return nil, fmt.Errorf("match requirement %s: %w", req.ID, err)
			}
			for _, r := range results {
				matches = append(matches, resultToMatch(r, user.ID, model.MatchTalentToStartup, now))
			}
		}
	}

	investors, err := s.store.InvestorProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("load investor pool: %w", err)
	}
	metrics.RecordCandidatesEvaluated(len(investors))
	results, err := s.investorMatcher.Match(ctx, startup, investors)
	if err != nil {
		return nil, fmt.Errorf("match investors: %w", err)
	}
	for _, r := range results {
		matches = append(matches, resultToMatch(r, user.ID, model.MatchStartupToInvestor, now))
	}

	return matches, nil
}

// matchTalent scores the talent's own profile against every active
// requirement. The match target is the founder owning the requirement's
// startup; requirements whose startup cannot be resolved are skipped.
func (s *Service) matchTalent(ctx context.Context, user model.User) ([]model.Match, error) {
	profile, err := s.store.TalentProfileByUser(ctx, user.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load talent profile %s: %w", user.ID, err)
	}

	requirements, err := s.store.ActiveRequirements(ctx)
	if err != nil {
		return nil, fmt.Errorf("load requirements: %w", err)
	}
	metrics.RecordCandidatesEvaluated(len(requirements))

	now := time.Now().UTC()
	pool := []model.TalentProfile{profile}
	var matches []model.Match
	for _, req := range requirements {
		results, err := s.talentMatcher.Match(ctx, req, pool)
		if err != nil {
			return nil, fmt.Errorf("match requirement %s: %w", req.ID, err)
		}
		if len(results) == 0 {
			continue
		}

		startup, err := s.store.StartupByID(ctx, req.StartupID)
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn(ctx, "requirement references unknown startup, skipping",
				logger.String("requirement_id", req.ID),
				logger.String("startup_id", req.StartupID),
			)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load startup %s: %w", req.StartupID, err)
		}

		m := resultToMatch(results[0], user.ID, model.MatchTalentToStartup, now)
		m.TargetUserID = startup.FounderID
		matches = append(matches, m)
	}
	return matches, nil
}

// matchInvestor scores every startup against the investor's thesis. The
// match target is the startup's founder.
func (s *Service) matchInvestor(ctx context.Context, user model.User) ([]model.Match, error) {
	profile, err := s.store.InvestorProfileByUser(ctx, user.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load investor profile %s: %w", user.ID, err)
	}

	startups, err := s.store.Startups(ctx)
	if err != nil {
		return nil, fmt.Errorf("load startups: %w", err)
	}
	metrics.RecordCandidatesEvaluated(len(startups))

	now := time.Now().UTC()
	pool := []model.InvestorProfile{profile}
	var matches []model.Match
	for _, startup := range startups {
		results, err := s.investorMatcher.Match(ctx, startup, pool)
		if err != nil {
			return nil, fmt.Errorf("match startup %s: %w", startup.ID, err)
		}
		if len(results) == 0 {
			continue
		}

		m := resultToMatch(results[0], user.ID, model.MatchStartupToInvestor, now)
		m.TargetUserID = startup.FounderID
		matches = append(matches, m)
	}
	return matches, nil
}

func resultToMatch(r match.Result, sourceUserID string, matchType model.MatchType, now time.Time) model.Match {
	return model.Match{
		ID:            uuid.NewString(),
		SourceUserID:  sourceUserID,
		TargetUserID:  r.TargetUserID,
		Type:          matchType,
		OverallScore:  r.OverallScore,
		SkillScore:    r.SkillScore,
		SemanticScore: r.SemanticScore,
		MatchedTerms:  r.MatchedTerms,
		MissingTerms:  r.MissingTerms,
		RequirementID: r.RequirementID,
		CreatedAt:     now,
	}
}

// CachedMatches returns the user's persisted matches from the latest run.
func (s *Service) CachedMatches(ctx context.Context, userID string) ([]model.Match, error) {
	if _, err := s.store.UserByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.MatchesBySource(ctx, userID)
}

// PutUser stores a user identity and schedules a refresh.
func (s *Service) PutUser(ctx context.Context, u model.User) error {
	switch u.Role {
	case model.RoleFounder, model.RoleTalent, model.RoleInvestor:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownRole, u.Role)
	}
	if u.ID == "" {
		return ErrEmptyUserID
	}
	if err := s.store.PutUser(ctx, u); err != nil {
		return err
	}
	s.scheduleAfterWrite(ctx, u.ID, "user_updated")
	return nil
}

// PutTalentProfile stores a talent profile, computing its embedding when an
// embedding client is configured.
func (s *Service) PutTalentProfile(ctx context.Context, p model.TalentProfile) error {
	if p.UserID == "" {
		return ErrEmptyUserID
	}
	if vec := s.embedText(ctx, embed.TalentText(p)); vec != nil {
		p.Embedding = vec
	}
	if err := s.store.PutTalentProfile(ctx, p); err != nil {
		return err
	}
	s.scheduleAfterWrite(ctx, p.UserID, "talent_profile_updated")
	return nil
}

// PutInvestorProfile stores an investor profile with its embedding.
func (s *Service) PutInvestorProfile(ctx context.Context, p model.InvestorProfile) error {
	if p.UserID == "" {
		return ErrEmptyUserID
	}
	if vec := s.embedText(ctx, embed.InvestorText(p)); vec != nil {
		p.Embedding = vec
	}
	if err := s.store.PutInvestorProfile(ctx, p); err != nil {
		return err
	}
	s.scheduleAfterWrite(ctx, p.UserID, "investor_profile_updated")
	return nil
}

// PutStartup stores a startup with its embedding and refreshes the founder.
func (s *Service) PutStartup(ctx context.Context, st model.Startup) error {
	if st.ID == "" || st.FounderID == "" {
		return ErrEmptyUserID
	}
	if vec := s.embedText(ctx, embed.StartupText(st)); vec != nil {
		st.Embedding = vec
	}
	if err := s.store.PutStartup(ctx, st); err != nil {
		return err
	}
	s.scheduleAfterWrite(ctx, st.FounderID, "startup_updated")
	return nil
}

// PutRequirement stores a requirement with its embedding and refreshes the
// owning founder.
func (s *Service) PutRequirement(ctx context.Context, r model.Requirement) error {
	if r.ID == "" {
		return fmt.Errorf("requirement id must not be empty")
	}
	if vec := s.embedText(ctx, embed.RequirementText(r)); vec != nil {
		r.Embedding = vec
	}
	if err := s.store.PutRequirement(ctx, r); err != nil {
		return err
	}
	if startup, err := s.store.StartupByID(ctx, r.StartupID); err == nil {
		s.scheduleAfterWrite(ctx, startup.FounderID, "requirement_updated")
	}
	return nil
}

// embedText computes an embedding, logging failure without blocking the
// write. A nil vector means no embedding is available.
func (s *Service) embedText(ctx context.Context, text string) []float32 {
	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		metrics.RecordEmbedderError()
		s.log().Warn(ctx, "embedding failed, continuing without vector", logger.Error(err))
		return nil
	}
	if vec != nil {
		metrics.RecordEmbedderRequest()
	}
	return vec
}

// scheduleAfterWrite schedules a refresh and downgrades failures to a log
// line: the write itself already succeeded.
func (s *Service) scheduleAfterWrite(ctx context.Context, userID, reason string) {
	if err := s.ScheduleRefresh(ctx, userID, reason); err != nil && !errors.Is(err, ErrNotStarted) {
		s.log().Warn(ctx, "failed to schedule refresh",
			logger.String("user_id", userID),
			logger.String("reason", reason),
			logger.Error(err),
		)
	}
}

// Connect creates a pending connection request from one user to another.
func (s *Service) Connect(ctx context.Context, fromUserID, toUserID, matchID, message string) (model.ConnectionRequest, error) {
	if fromUserID == "" || toUserID == "" {
		return model.ConnectionRequest{}, ErrEmptyUserID
	}
	if fromUserID == toUserID {
		return model.ConnectionRequest{}, ErrSelfConnect
	}
	if _, err := s.store.UserByID(ctx, fromUserID); err != nil {
		return model.ConnectionRequest{}, err
	}
	if _, err := s.store.UserByID(ctx, toUserID); err != nil {
		return model.ConnectionRequest{}, err
	}

	now := time.Now().UTC()
	conn := model.ConnectionRequest{
		ID:         uuid.NewString(),
		FromUserID: fromUserID,
		ToUserID:   toUserID,
		MatchID:    matchID,
		Message:    message,
		Status:     model.ConnectionPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.CreateConnectionRequest(ctx, conn); err != nil {
		if errors.Is(err, repository.ErrPendingExists) {
			metrics.RecordConnectionRequest(outcomeDuplicate)
		} else {
			metrics.RecordConnectionRequest(outcomeError)
		}
		return model.ConnectionRequest{}, err
	}
	metrics.RecordConnectionRequest(outcomeCreated)
	return conn, nil
}

// Connections lists the user's connection requests, oldest first.
func (s *Service) Connections(ctx context.Context, userID string) ([]model.ConnectionRequest, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}
	return s.store.ConnectionRequestsForUser(ctx, userID)
}

// AcceptConnection transitions a pending request to accepted. Only the
// addressed user may accept.
func (s *Service) AcceptConnection(ctx context.Context, id, actorID string) (model.ConnectionRequest, error) {
	conn, err := s.store.ResolveConnectionRequest(ctx, id, actorID, model.ConnectionAccepted)
	if err != nil {
		metrics.RecordConnectionRequest(outcomeError)
		return model.ConnectionRequest{}, err
	}
	metrics.RecordConnectionRequest(outcomeAccepted)
	return conn, nil
}

// DeclineConnection transitions a pending request to declined.
func (s *Service) DeclineConnection(ctx context.Context, id, actorID string) (model.ConnectionRequest, error) {
	conn, err := s.store.ResolveConnectionRequest(ctx, id, actorID, model.ConnectionDeclined)
	if err != nil {
		metrics.RecordConnectionRequest(outcomeError)
		return model.ConnectionRequest{}, err
	}
	metrics.RecordConnectionRequest(outcomeDeclined)
	return conn, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
	}

	if s.started {
		stats["queueLength"] = s.queue.Len(ctx)
		stats["pendingRefreshes"] = s.tracker.Size()
		if counts, err := s.store.Counts(ctx); err == nil {
			stats["counts"] = counts
			metrics.UpdateMatchRowsTotal(counts.Matches)
		}
	}

	return stats
}

func (s *Service) log() logger.Logger {
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	return s.logger
}
