// Package model contains domain models passed between layers.
package model

import "time"

// Role identifies which population a user belongs to.
type Role string

// User roles.
const (
	RoleFounder  Role = "founder"
	RoleTalent   Role = "talent"
	RoleInvestor Role = "investor"
)

// MatchType classifies a match row.
type MatchType string

// Match types. Cofounder exists in the taxonomy but no matcher produces it.
const (
	MatchTalentToStartup   MatchType = "talent_to_startup"
	MatchStartupToInvestor MatchType = "startup_to_investor"
	MatchCofounder         MatchType = "cofounder"
)

// Proficiency is an ordinal skill level. It is carried for display and is
// not consulted by scoring.
type Proficiency string

// Skill proficiency levels.
const (
	ProficiencyBeginner     Proficiency = "beginner"
	ProficiencyIntermediate Proficiency = "intermediate"
	ProficiencyAdvanced     Proficiency = "advanced"
	ProficiencyExpert       Proficiency = "expert"
)

// User is the minimal identity the matching pipeline needs: who the subject
// is and which matcher family applies.
type User struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Role     Role   `json:"role"`
}

// Skill is a named capability on a talent profile. Comparison against
// requirements is case-insensitive on Name.
type Skill struct {
	Name            string      `json:"name"`
	Proficiency     Proficiency `json:"proficiency"`
	YearsExperience float64     `json:"years_experience"`
}

// TalentProfile is a candidate in the talent pool. Embedding is nil when no
// vector has been computed for the profile.
type TalentProfile struct {
	UserID              string    `json:"user_id"`
	Skills              []Skill   `json:"skills"`
	EngagementPref      string    `json:"engagement_preference"`
	LookingForCofounder bool      `json:"looking_for_cofounder"`
	Embedding           []float32 `json:"embedding,omitempty"`
}

// SkillNames returns the plain skill names for overlap scoring.
func (p TalentProfile) SkillNames() []string {
	names := make([]string, 0, len(p.Skills))
	for _, s := range p.Skills {
		names = append(names, s.Name)
	}
	return names
}

// Requirement is an open talent requirement owned by a startup.
type Requirement struct {
	ID               string    `json:"id"`
	StartupID        string    `json:"startup_id"`
	Title            string    `json:"title"`
	RequiredSkills   []string  `json:"required_skills"`
	NiceToHaveSkills []string  `json:"nice_to_have_skills"`
	Active           bool      `json:"active"`
	Embedding        []float32 `json:"embedding,omitempty"`
}

// Startup is a founder-owned company record.
type Startup struct {
	ID              string    `json:"id"`
	FounderID       string    `json:"founder_id"`
	Name            string    `json:"name"`
	Industry        string    `json:"industry"`
	Stage           string    `json:"stage"`
	FundingAsk      float64   `json:"funding_ask"`
	FundingCurrency string    `json:"funding_currency"`
	Embedding       []float32 `json:"embedding,omitempty"`
}

// InvestorProfile describes an investor's thesis. A zero CheckSizeMin means
// no minimum is set; a zero CheckSizeMax means the range is unbounded above.
type InvestorProfile struct {
	UserID            string    `json:"user_id"`
	PreferredSectors  []string  `json:"preferred_sectors"`
	PreferredStages   []string  `json:"preferred_stages"`
	CheckSizeMin      float64   `json:"check_size_min"`
	CheckSizeMax      float64   `json:"check_size_max"`
	CheckSizeCurrency string    `json:"check_size_currency"`
	Embedding         []float32 `json:"embedding,omitempty"`
}

// Match is one row of a subject's ranked results. The set of persisted rows
// for a source user is always the output of that user's most recent
// matching run.
type Match struct {
	ID            string    `json:"id"`
	SourceUserID  string    `json:"source_user_id"`
	TargetUserID  string    `json:"target_user_id"`
	Type          MatchType `json:"match_type"`
	OverallScore  float64   `json:"overall_score"`
	SkillScore    float64   `json:"skill_overlap_score"`
	SemanticScore float64   `json:"semantic_score"`
	MatchedTerms  []string  `json:"matched_skills"`
	MissingTerms  []string  `json:"missing_skills"`
	RequirementID string    `json:"requirement_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// ConnectionStatus is the state of a connection request.
type ConnectionStatus string

// Connection request states. Accepted and declined are terminal.
const (
	ConnectionPending  ConnectionStatus = "pending"
	ConnectionAccepted ConnectionStatus = "accepted"
	ConnectionDeclined ConnectionStatus = "declined"
)

// ConnectionRequest is the social follow-up on a match. It transitions at
// most once, by the addressed user, out of pending.
type ConnectionRequest struct {
	ID         string           `json:"id"`
	FromUserID string           `json:"from_user_id"`
	ToUserID   string           `json:"to_user_id"`
	MatchID    string           `json:"match_id,omitempty"`
	Message    string           `json:"message,omitempty"`
	Status     ConnectionStatus `json:"status"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}
