// Package embed defines the text embedding contract consumed by profile
// ingestion, plus the canonical text renderings of each profile type.
//
// The matching pipeline never calls an embedder; it only reads vectors
// already stored on records. An unavailable embedder is a normal condition
// and simply leaves embeddings absent.
package embed

import (
	"context"
	"fmt"
	"strings"

	"github.com/neplaunch/matchd/internal/domain/model"
)

// Embedder turns text into a vector. A nil vector with a nil error means
// the embedder is unavailable; callers must treat that as "no embedding",
// never as a failure.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Unavailable is an Embedder that never produces vectors. It is the default
// when no embedding backend is configured.
type Unavailable struct{}

// Embed always reports an absent vector.
func (Unavailable) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, nil
}

// TalentText renders a talent profile for embedding.
func TalentText(p model.TalentProfile) string {
	skills := make([]string, 0, len(p.Skills))
	for _, s := range p.Skills {
		skills = append(skills, s.Name)
	}
	parts := []string{
		"Skills: " + strings.Join(skills, ", "),
		"Engagement: " + orNA(p.EngagementPref),
	}
	return strings.Join(parts, ". ")
}

// RequirementText renders a talent requirement for embedding.
func RequirementText(r model.Requirement) string {
	parts := []string{
		"Role: " + orNA(r.Title),
		"Required skills: " + strings.Join(r.RequiredSkills, ", "),
		"Nice to have: " + strings.Join(r.NiceToHaveSkills, ", "),
	}
	return strings.Join(parts, ". ")
}

// StartupText renders a startup for embedding.
func StartupText(s model.Startup) string {
	parts := []string{
		"Name: " + orNA(s.Name),
		"Industry: " + orNA(s.Industry),
		"Stage: " + orNA(s.Stage),
	}
	if s.FundingAsk > 0 {
		parts = append(parts, fmt.Sprintf("Funding ask: %.0f %s", s.FundingAsk, s.FundingCurrency))
	}
	return strings.Join(parts, ". ")
}

// InvestorText renders an investor profile for embedding.
func InvestorText(p model.InvestorProfile) string {
	parts := []string{
		"Sectors: " + strings.Join(p.PreferredSectors, ", "),
		"Stages: " + strings.Join(p.PreferredStages, ", "),
	}
	return strings.Join(parts, ". ")
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
