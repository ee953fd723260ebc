package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/neplaunch/matchd/internal/domain/model"
	"github.com/neplaunch/matchd/pkg/metrics"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store on a SQLite database. Slices and embeddings
// are stored as JSON text, timestamps as RFC 3339 strings. Pass ":memory:"
// as the path for an ephemeral database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path and ensures the
// schema exists.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// modernc.org/sqlite serializes writes itself; a single connection
	// avoids SQLITE_BUSY on concurrent transactions.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		full_name TEXT NOT NULL,
		role TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS talent_profiles (
		user_id TEXT PRIMARY KEY,
		skills TEXT NOT NULL,               -- JSON array of skill objects
		engagement_pref TEXT,
		looking_for_cofounder INTEGER NOT NULL DEFAULT 0,
		embedding TEXT                      -- JSON array of floats, NULL when absent
	);

	CREATE TABLE IF NOT EXISTS investor_profiles (
		user_id TEXT PRIMARY KEY,
		preferred_sectors TEXT NOT NULL,    -- JSON array
		preferred_stages TEXT NOT NULL,     -- JSON array
		check_size_min REAL NOT NULL DEFAULT 0,
		check_size_max REAL NOT NULL DEFAULT 0,
		check_size_currency TEXT,
		embedding TEXT
	);

	CREATE TABLE IF NOT EXISTS startups (
		id TEXT PRIMARY KEY,
		founder_id TEXT NOT NULL,
		name TEXT NOT NULL,
		industry TEXT,
		stage TEXT,
		funding_ask REAL NOT NULL DEFAULT 0,
		funding_currency TEXT,
		embedding TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_startups_founder ON startups(founder_id);

	CREATE TABLE IF NOT EXISTS requirements (
		id TEXT PRIMARY KEY,
		startup_id TEXT NOT NULL,
		title TEXT NOT NULL,
		required_skills TEXT NOT NULL,      -- JSON array
		nice_to_have_skills TEXT NOT NULL,  -- JSON array
		active INTEGER NOT NULL DEFAULT 1,
		embedding TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_requirements_startup ON requirements(startup_id);
	CREATE INDEX IF NOT EXISTS idx_requirements_active ON requirements(active);

	CREATE TABLE IF NOT EXISTS matches (
		id TEXT PRIMARY KEY,
		source_user_id TEXT NOT NULL,
		target_user_id TEXT NOT NULL,
		match_type TEXT NOT NULL,
		overall_score REAL NOT NULL,
		skill_score REAL NOT NULL,
		semantic_score REAL NOT NULL,
		matched_terms TEXT NOT NULL,        -- JSON array
		missing_terms TEXT NOT NULL,        -- JSON array
		requirement_id TEXT,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_matches_source ON matches(source_user_id);

	CREATE TABLE IF NOT EXISTS connection_requests (
		id TEXT PRIMARY KEY,
		from_user_id TEXT NOT NULL,
		to_user_id TEXT NOT NULL,
		match_id TEXT,
		message TEXT,
		status TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_connections_from ON connection_requests(from_user_id);
	CREATE INDEX IF NOT EXISTS idx_connections_to ON connection_requests(to_user_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) PutUser(ctx context.Context, u model.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, full_name, role) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET full_name = excluded.full_name, role = excluded.role`,
		u.ID, u.FullName, string(u.Role))
	if err != nil {
		metrics.RecordStoreError("put_user")
		return fmt.Errorf("put user: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UserByID(ctx context.Context, id string) (model.User, error) {
	var u model.User
	var role string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, full_name, role FROM users WHERE id = ?", id).
		Scan(&u.ID, &u.FullName, &role)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		metrics.RecordStoreError("user_by_id")
		return model.User{}, fmt.Errorf("get user: %w", err)
	}
	u.Role = model.Role(role)
	return u, nil
}

func (s *SQLiteStore) PutTalentProfile(ctx context.Context, p model.TalentProfile) error {
	skills, err := json.Marshal(p.Skills)
	if err != nil {
		return fmt.Errorf("marshal skills: %w", err)
	}
	embedding, err := marshalEmbedding(p.Embedding)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO talent_profiles (user_id, skills, engagement_pref, looking_for_cofounder, embedding)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			skills = excluded.skills,
			engagement_pref = excluded.engagement_pref,
			looking_for_cofounder = excluded.looking_for_cofounder,
			embedding = excluded.embedding`,
		p.UserID, string(skills), p.EngagementPref, boolToInt(p.LookingForCofounder), embedding)
	if err != nil {
		metrics.RecordStoreError("put_talent_profile")
		return fmt.Errorf("put talent profile: %w", err)
	}
	return nil
}

func (s *SQLiteStore) TalentProfileByUser(ctx context.Context, userID string) (model.TalentProfile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT user_id, skills, engagement_pref, looking_for_cofounder, embedding
		FROM talent_profiles WHERE user_id = ?`, userID)
	p, err := scanTalentProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.TalentProfile{}, ErrNotFound
	}
	if err != nil {
		metrics.RecordStoreError("talent_profile_by_user")
		return model.TalentProfile{}, err
	}
	return p, nil
}

func (s *SQLiteStore) TalentProfiles(ctx context.Context) ([]model.TalentProfile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, skills, engagement_pref, looking_for_cofounder, embedding
		FROM talent_profiles ORDER BY user_id ASC`)
	if err != nil {
		metrics.RecordStoreError("talent_profiles")
		return nil, fmt.Errorf("list talent profiles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]model.TalentProfile, 0)
	for rows.Next() {
		p, err := scanTalentProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) PutInvestorProfile(ctx context.Context, p model.InvestorProfile) error {
	sectors, err := json.Marshal(p.PreferredSectors)
	if err != nil {
		return fmt.Errorf("marshal sectors: %w", err)
	}
	stages, err := json.Marshal(p.PreferredStages)
	if err != nil {
		return fmt.Errorf("marshal stages: %w", err)
	}
	embedding, err := marshalEmbedding(p.Embedding)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO investor_profiles
			(user_id, preferred_sectors, preferred_stages, check_size_min, check_size_max, check_size_currency, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			preferred_sectors = excluded.preferred_sectors,
			preferred_stages = excluded.preferred_stages,
			check_size_min = excluded.check_size_min,
			check_size_max = excluded.check_size_max,
			check_size_currency = excluded.check_size_currency,
			embedding = excluded.embedding`,
		p.UserID, string(sectors), string(stages), p.CheckSizeMin, p.CheckSizeMax, p.CheckSizeCurrency, embedding)
	if err != nil {
		metrics.RecordStoreError("put_investor_profile")
		return fmt.Errorf("put investor profile: %w", err)
	}
	return nil
}

func (s *SQLiteStore) InvestorProfileByUser(ctx context.Context, userID string) (model.InvestorProfile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT user_id, preferred_sectors, preferred_stages, check_size_min, check_size_max, check_size_currency, embedding
		FROM investor_profiles WHERE user_id = ?`, userID)
	p, err := scanInvestorProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.InvestorProfile{}, ErrNotFound
	}
	if err != nil {
		metrics.RecordStoreError("investor_profile_by_user")
		return model.InvestorProfile{}, err
	}
	return p, nil
}

func (s *SQLiteStore) InvestorProfiles(ctx context.Context) ([]model.InvestorProfile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, preferred_sectors, preferred_stages, check_size_min, check_size_max, check_size_currency, embedding
		FROM investor_profiles ORDER BY user_id ASC`)
	if err != nil {
		metrics.RecordStoreError("investor_profiles")
		return nil, fmt.Errorf("list investor profiles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]model.InvestorProfile, 0)
	for rows.Next() {
		p, err := scanInvestorProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) PutStartup(ctx context.Context, st model.Startup) error {
	embedding, err := marshalEmbedding(st.Embedding)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO startups (id, founder_id, name, industry, stage, funding_ask, funding_currency, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			founder_id = excluded.founder_id,
			name = excluded.name,
			industry = excluded.industry,
			stage = excluded.stage,
			funding_ask = excluded.funding_ask,
			funding_currency = excluded.funding_currency,
			embedding = excluded.embedding`,
		st.ID, st.FounderID, st.Name, st.Industry, st.Stage, st.FundingAsk, st.FundingCurrency, embedding)
	if err != nil {
		metrics.RecordStoreError("put_startup")
		return fmt.Errorf("put startup: %w", err)
	}
	return nil
}

func (s *SQLiteStore) StartupByID(ctx context.Context, id string) (model.Startup, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, founder_id, name, industry, stage, funding_ask, funding_currency, embedding
		FROM startups WHERE id = ?`, id)
	st, err := scanStartup(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Startup{}, ErrNotFound
	}
	if err != nil {
		metrics.RecordStoreError("startup_by_id")
		return model.Startup{}, err
	}
	return st, nil
}

func (s *SQLiteStore) StartupByFounder(ctx context.Context, founderID string) (model.Startup, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, founder_id, name, industry, stage, funding_ask, funding_currency, embedding
		FROM startups WHERE founder_id = ? ORDER BY id ASC LIMIT 1`, founderID)
	st, err := scanStartup(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Startup{}, ErrNotFound
	}
	if err != nil {
		metrics.RecordStoreError("startup_by_founder")
		return model.Startup{}, err
	}
	return st, nil
}

func (s *SQLiteStore) Startups(ctx context.Context) ([]model.Startup, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, founder_id, name, industry, stage, funding_ask, funding_currency, embedding
		FROM startups ORDER BY id ASC`)
	if err != nil {
		metrics.RecordStoreError("startups")
		return nil, fmt.Errorf("list startups: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]model.Startup, 0)
	for rows.Next() {
		st, err := scanStartup(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) PutRequirement(ctx context.Context, r model.Requirement) error {
	required, err := json.Marshal(emptyIfNil(r.RequiredSkills))
	if err != nil {
		return fmt.Errorf("marshal required skills: %w", err)
	}
	nice, err := json.Marshal(emptyIfNil(r.NiceToHaveSkills))
	if err != nil {
		return fmt.Errorf("marshal nice-to-have skills: %w", err)
	}
	embedding, err := marshalEmbedding(r.Embedding)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO requirements (id, startup_id, title, required_skills, nice_to_have_skills, active, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			startup_id = excluded.startup_id,
			title = excluded.title,
			required_skills = excluded.required_skills,
			nice_to_have_skills = excluded.nice_to_have_skills,
			active = excluded.active,
			embedding = excluded.embedding`,
		r.ID, r.StartupID, r.Title, string(required), string(nice), boolToInt(r.Active), embedding)
	if err != nil {
		metrics.RecordStoreError("put_requirement")
		return fmt.Errorf("put requirement: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ActiveRequirements(ctx context.Context) ([]model.Requirement, error) {
	return s.queryRequirements(ctx, `
		SELECT id, startup_id, title, required_skills, nice_to_have_skills, active, embedding
		FROM requirements WHERE active = 1 ORDER BY id ASC`)
}

func (s *SQLiteStore) ActiveRequirementsByStartup(ctx context.Context, startupID string) ([]model.Requirement, error) {
	return s.queryRequirements(ctx, `
		SELECT id, startup_id, title, required_skills, nice_to_have_skills, active, embedding
		FROM requirements WHERE active = 1 AND startup_id = ? ORDER BY id ASC`, startupID)
}

func (s *SQLiteStore) queryRequirements(ctx context.Context, query string, args ...any) ([]model.Requirement, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		metrics.RecordStoreError("requirements")
		return nil, fmt.Errorf("list requirements: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]model.Requirement, 0)
	for rows.Next() {
		var r model.Requirement
		var required, nice string
		var active int
		var embedding sql.NullString
		if err := rows.Scan(&r.ID, &r.StartupID, &r.Title, &required, &nice, &active, &embedding); err != nil {
			return nil, fmt.Errorf("scan requirement: %w", err)
		}
		if err := json.Unmarshal([]byte(required), &r.RequiredSkills); err != nil {
			return nil, fmt.Errorf("unmarshal required skills: %w", err)
		}
		if err := json.Unmarshal([]byte(nice), &r.NiceToHaveSkills); err != nil {
			return nil, fmt.Errorf("unmarshal nice-to-have skills: %w", err)
		}
		r.Active = active != 0
		if r.Embedding, err = unmarshalEmbedding(embedding); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) ReplaceMatchesForSource(ctx context.Context, sourceUserID string, matches []model.Match) error {
	start := time.Now()
	defer func() {
		metrics.RecordStoreReplaceLatency(float64(time.Since(start).Milliseconds()))
	}()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		metrics.RecordStoreError("replace_matches")
		return fmt.Errorf("begin replace: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM matches WHERE source_user_id = ?", sourceUserID); err != nil {
		metrics.RecordStoreError("replace_matches")
		return fmt.Errorf("delete matches: %w", err)
	}
	for _, m := range matches {
		matched, err := json.Marshal(emptyIfNil(m.MatchedTerms))
		if err != nil {
			return fmt.Errorf("marshal matched terms: %w", err)
		}
		missing, err := json.Marshal(emptyIfNil(m.MissingTerms))
		if err != nil {
			return fmt.Errorf("marshal missing terms: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO matches
				(id, source_user_id, target_user_id, match_type, overall_score, skill_score, semantic_score,
				 matched_terms, missing_terms, requirement_id, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			m.ID, m.SourceUserID, m.TargetUserID, string(m.Type),
			m.OverallScore, m.SkillScore, m.SemanticScore,
			string(matched), string(missing), m.RequirementID,
			m.CreatedAt.UTC().Format(time.RFC3339Nano))
		if err != nil {
			metrics.RecordStoreError("replace_matches")
			return fmt.Errorf("insert match: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		metrics.RecordStoreError("replace_matches")
		return fmt.Errorf("commit replace: %w", err)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM matches").Scan(&total); err == nil {
		metrics.UpdateMatchRowsTotal(total)
	}
	return nil
}

func (s *SQLiteStore) MatchesBySource(ctx context.Context, sourceUserID string) ([]model.Match, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source_user_id, target_user_id, match_type, overall_score, skill_score, semantic_score,
		       matched_terms, missing_terms, requirement_id, created_at
		FROM matches WHERE source_user_id = ? ORDER BY overall_score DESC, target_user_id ASC`, sourceUserID)
	if err != nil {
		metrics.RecordStoreError("matches_by_source")
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]model.Match, 0)
	for rows.Next() {
		var m model.Match
		var matchType, matched, missing, createdAt string
		var requirementID sql.NullString
		if err := rows.Scan(&m.ID, &m.SourceUserID, &m.TargetUserID, &matchType,
			&m.OverallScore, &m.SkillScore, &m.SemanticScore,
			&matched, &missing, &requirementID, &createdAt); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		m.Type = model.MatchType(matchType)
		if err := json.Unmarshal([]byte(matched), &m.MatchedTerms); err != nil {
			return nil, fmt.Errorf("unmarshal matched terms: %w", err)
		}
		if err := json.Unmarshal([]byte(missing), &m.MissingTerms); err != nil {
			return nil, fmt.Errorf("unmarshal missing terms: %w", err)
		}
		m.RequirementID = requirementID.String
		if m.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("parse match timestamp: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) CreateConnectionRequest(ctx context.Context, conn model.ConnectionRequest) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		metrics.RecordStoreError("create_connection")
		return fmt.Errorf("begin create connection: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var pending int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM connection_requests
		WHERE from_user_id = ? AND to_user_id = ? AND status = ?`,
		conn.FromUserID, conn.ToUserID, string(model.ConnectionPending)).Scan(&pending)
	if err != nil {
		metrics.RecordStoreError("create_connection")
		return fmt.Errorf("check pending: %w", err)
	}
	if pending > 0 {
		return ErrPendingExists
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO connection_requests (id, from_user_id, to_user_id, match_id, message, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		conn.ID, conn.FromUserID, conn.ToUserID, conn.MatchID, conn.Message,
		string(conn.Status),
		conn.CreatedAt.UTC().Format(time.RFC3339Nano),
		conn.UpdatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		metrics.RecordStoreError("create_connection")
		return fmt.Errorf("insert connection: %w", err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) ConnectionRequestsForUser(ctx context.Context, userID string) ([]model.ConnectionRequest, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, from_user_id, to_user_id, match_id, message, status, created_at, updated_at
		FROM connection_requests
		WHERE from_user_id = ? OR to_user_id = ?
		ORDER BY created_at ASC, id ASC`, userID, userID)
	if err != nil {
		metrics.RecordStoreError("connections_for_user")
		return nil, fmt.Errorf("list connections: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]model.ConnectionRequest, 0)
	for rows.Next() {
		conn, err := scanConnection(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, conn)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) ResolveConnectionRequest(ctx context.Context, id, actorID string, status model.ConnectionStatus) (model.ConnectionRequest, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		metrics.RecordStoreError("resolve_connection")
		return model.ConnectionRequest{}, fmt.Errorf("begin resolve: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `
		SELECT id, from_user_id, to_user_id, match_id, message, status, created_at, updated_at
		FROM connection_requests WHERE id = ?`, id)
	conn, err := scanConnection(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ConnectionRequest{}, ErrNotFound
	}
	if err != nil {
		metrics.RecordStoreError("resolve_connection")
		return model.ConnectionRequest{}, err
	}
	if conn.ToUserID != actorID {
		return model.ConnectionRequest{}, ErrNotFound
	}
	if conn.Status != model.ConnectionPending {
		return model.ConnectionRequest{}, ErrNotPending
	}

	conn.Status = status
	conn.UpdatedAt = time.Now().UTC()
	_, err = tx.ExecContext(ctx, `
		UPDATE connection_requests SET status = ?, updated_at = ? WHERE id = ?`,
		string(conn.Status), conn.UpdatedAt.Format(time.RFC3339Nano), conn.ID)
	if err != nil {
		metrics.RecordStoreError("resolve_connection")
		return model.ConnectionRequest{}, fmt.Errorf("update connection: %w", err)
	}
	if err := tx.Commit(); err != nil {
		metrics.RecordStoreError("resolve_connection")
		return model.ConnectionRequest{}, fmt.Errorf("commit resolve: %w", err)
	}
	return conn, nil
}

func (s *SQLiteStore) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	for _, q := range []struct {
		table string
		dst   *int
	}{
		{"users", &c.Users},
		{"talent_profiles", &c.TalentProfiles},
		{"investor_profiles", &c.InvestorProfiles},
		{"startups", &c.Startups},
		{"requirements", &c.Requirements},
		{"matches", &c.Matches},
		{"connection_requests", &c.Connections},
	} {
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+q.table).Scan(q.dst); err != nil {
			metrics.RecordStoreError("counts")
			return Counts{}, fmt.Errorf("count %s: %w", q.table, err)
		}
	}
	return c, nil
}

// Close closes the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTalentProfile(row scanner) (model.TalentProfile, error) {
	var p model.TalentProfile
	var skills string
	var cofounder int
	var embedding sql.NullString
	if err := row.Scan(&p.UserID, &skills, &p.EngagementPref, &cofounder, &embedding); err != nil {
		return model.TalentProfile{}, err
	}
	if err := json.Unmarshal([]byte(skills), &p.Skills); err != nil {
		return model.TalentProfile{}, fmt.Errorf("unmarshal skills: %w", err)
	}
	p.LookingForCofounder = cofounder != 0
	var err error
	if p.Embedding, err = unmarshalEmbedding(embedding); err != nil {
		return model.TalentProfile{}, err
	}
	return p, nil
}

func scanInvestorProfile(row scanner) (model.InvestorProfile, error) {
	var p model.InvestorProfile
	var sectors, stages string
	var embedding sql.NullString
	if err := row.Scan(&p.UserID, &sectors, &stages, &p.CheckSizeMin, &p.CheckSizeMax, &p.CheckSizeCurrency, &embedding); err != nil {
		return model.InvestorProfile{}, err
	}
	if err := json.Unmarshal([]byte(sectors), &p.PreferredSectors); err != nil {
		return model.InvestorProfile{}, fmt.Errorf("unmarshal sectors: %w", err)
	}
	if err := json.Unmarshal([]byte(stages), &p.PreferredStages); err != nil {
		return model.InvestorProfile{}, fmt.Errorf("unmarshal stages: %w", err)
	}
	var err error
	if p.Embedding, err = unmarshalEmbedding(embedding); err != nil {
		return model.InvestorProfile{}, err
	}
	return p, nil
}

func scanStartup(row scanner) (model.Startup, error) {
	var st model.Startup
	var embedding sql.NullString
	if err := row.Scan(&st.ID, &st.FounderID, &st.Name, &st.Industry, &st.Stage,
		&st.FundingAsk, &st.FundingCurrency, &embedding); err != nil {
		return model.Startup{}, err
	}
	var err error
	if st.Embedding, err = unmarshalEmbedding(embedding); err != nil {
		return model.Startup{}, err
	}
	return st, nil
}

func scanConnection(row scanner) (model.ConnectionRequest, error) {
	var conn model.ConnectionRequest
	var matchID sql.NullString
	var status, createdAt, updatedAt string
	if err := row.Scan(&conn.ID, &conn.FromUserID, &conn.ToUserID, &matchID,
		&conn.Message, &status, &createdAt, &updatedAt); err != nil {
		return model.ConnectionRequest{}, err
	}
	conn.MatchID = matchID.String
	conn.Status = model.ConnectionStatus(status)
	var err error
	if conn.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return model.ConnectionRequest{}, fmt.Errorf("parse connection created_at: %w", err)
	}
	if conn.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return model.ConnectionRequest{}, fmt.Errorf("parse connection updated_at: %w", err)
	}
	return conn, nil
}

func marshalEmbedding(v []float32) (sql.NullString, error) {
	if len(v) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("marshal embedding: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func unmarshalEmbedding(v sql.NullString) ([]float32, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	var out []float32
	if err := json.Unmarshal([]byte(v.String), &out); err != nil {
		return nil, fmt.Errorf("unmarshal embedding: %w", err)
	}
	return out, nil
}

func emptyIfNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
