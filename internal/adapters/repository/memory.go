package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/neplaunch/matchd/internal/domain/model"
	"github.com/neplaunch/matchd/pkg/metrics"
)

// MemoryStore is a mutex-guarded in-memory Store. The match replacement for
// a source user happens under a single write lock, so readers either see the
// previous set or the new one, never a mix.
type MemoryStore struct {
	mu sync.RWMutex

	users            map[string]model.User
	talents          map[string]model.TalentProfile
	investors        map[string]model.InvestorProfile
	startups         map[string]model.Startup
	startupByFounder map[string]string
	requirements     map[string]model.Requirement
	matchesBySource  map[string][]model.Match
	connections      map[string]model.ConnectionRequest
	matchRows        int
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:            make(map[string]model.User),
		talents:          make(map[string]model.TalentProfile),
		investors:        make(map[string]model.InvestorProfile),
		startups:         make(map[string]model.Startup),
		startupByFounder: make(map[string]string),
		requirements:     make(map[string]model.Requirement),
		matchesBySource:  make(map[string][]model.Match),
		connections:      make(map[string]model.ConnectionRequest),
	}
}

func (s *MemoryStore) PutUser(ctx context.Context, u model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
	return nil
}

func (s *MemoryStore) UserByID(ctx context.Context, id string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return model.User{}, ErrNotFound
	}
	return u, nil
}

func (s *MemoryStore) PutTalentProfile(ctx context.Context, p model.TalentProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.talents[p.UserID] = p
	return nil
}

func (s *MemoryStore) TalentProfileByUser(ctx context.Context, userID string) (model.TalentProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.talents[userID]
	if !ok {
		return model.TalentProfile{}, ErrNotFound
	}
	return p, nil
}

func (s *MemoryStore) TalentProfiles(ctx context.Context) ([]model.TalentProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.TalentProfile, 0, len(s.talents))
	for _, p := range s.talents {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (s *MemoryStore) PutInvestorProfile(ctx context.Context, p model.InvestorProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.investors[p.UserID] = p
	return nil
}

func (s *MemoryStore) InvestorProfileByUser(ctx context.Context, userID string) (model.InvestorProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.investors[userID]
	if !ok {
		return model.InvestorProfile{}, ErrNotFound
	}
	return p, nil
}

func (s *MemoryStore) InvestorProfiles(ctx context.Context) ([]model.InvestorProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.InvestorProfile, 0, len(s.investors))
	for _, p := range s.investors {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (s *MemoryStore) PutStartup(ctx context.Context, st model.Startup) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startups[st.ID] = st
	s.startupByFounder[st.FounderID] = st.ID
	return nil
}

func (s *MemoryStore) StartupByID(ctx context.Context, id string) (model.Startup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.startups[id]
	if !ok {
		return model.Startup{}, ErrNotFound
	}
	return st, nil
}

func (s *MemoryStore) StartupByFounder(ctx context.Context, founderID string) (model.Startup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.startupByFounder[founderID]
	if !ok {
		return model.Startup{}, ErrNotFound
	}
	return s.startups[id], nil
}

func (s *MemoryStore) Startups(ctx context.Context) ([]model.Startup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Startup, 0, len(s.startups))
	for _, st := range s.startups {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) PutRequirement(ctx context.Context, r model.Requirement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requirements[r.ID] = r
	return nil
}

func (s *MemoryStore) ActiveRequirements(ctx context.Context) ([]model.Requirement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Requirement, 0, len(s.requirements))
	for _, r := range s.requirements {
		if r.Active {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) ActiveRequirementsByStartup(ctx context.Context, startupID string) ([]model.Requirement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Requirement, 0, len(s.requirements))
	for _, r := range s.requirements {
		if r.Active && r.StartupID == startupID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ReplaceMatchesForSource implements the atomic delete-then-insert
// replacement under one write lock.
func (s *MemoryStore) ReplaceMatchesForSource(ctx context.Context, sourceUserID string, matches []model.Match) error {
	start := time.Now()
	defer func() {
		metrics.RecordStoreReplaceLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.matchRows -= len(s.matchesBySource[sourceUserID])
	if len(matches) == 0 {
		delete(s.matchesBySource, sourceUserID)
	} else {
		stored := make([]model.Match, len(matches))
		copy(stored, matches)
		s.matchesBySource[sourceUserID] = stored
		s.matchRows += len(stored)
	}
	metrics.UpdateMatchRowsTotal(s.matchRows)
	return nil
}

func (s *MemoryStore) MatchesBySource(ctx context.Context, sourceUserID string) ([]model.Match, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.matchesBySource[sourceUserID]
	out := make([]model.Match, len(stored))
	copy(out, stored)
	sort.Slice(out, func(i, j int) bool {
		if out[i].OverallScore != out[j].OverallScore {
			return out[i].OverallScore > out[j].OverallScore
		}
		return out[i].TargetUserID < out[j].TargetUserID
	})
	return out, nil
}

func (s *MemoryStore) CreateConnectionRequest(ctx context.Context, conn model.ConnectionRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.connections {
		if existing.FromUserID == conn.FromUserID &&
			existing.ToUserID == conn.ToUserID &&
			existing.Status == model.ConnectionPending {
			return ErrPendingExists
		}
	}
	s.connections[conn.ID] = conn
	return nil
}

func (s *MemoryStore) ConnectionRequestsForUser(ctx context.Context, userID string) ([]model.ConnectionRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.ConnectionRequest, 0)
	for _, conn := range s.connections {
		if conn.FromUserID == userID || conn.ToUserID == userID {
			out = append(out, conn)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) ResolveConnectionRequest(ctx context.Context, id, actorID string, status model.ConnectionStatus) (model.ConnectionRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conn, ok := s.connections[id]
	if !ok || conn.ToUserID != actorID {
		return model.ConnectionRequest{}, ErrNotFound
	}
	if conn.Status != model.ConnectionPending {
		return model.ConnectionRequest{}, ErrNotPending
	}

	conn.Status = status
	conn.UpdatedAt = time.Now().UTC()
	s.connections[id] = conn
	return conn, nil
}

func (s *MemoryStore) Counts(ctx context.Context) (Counts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Counts{
		Users:            len(s.users),
		TalentProfiles:   len(s.talents),
		InvestorProfiles: len(s.investors),
		Startups:         len(s.startups),
		Requirements:     len(s.requirements),
		Matches:          s.matchRows,
		Connections:      len(s.connections),
	}, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}
