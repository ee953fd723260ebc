package match_test

import (
	"context"
	"testing"

	"github.com/neplaunch/matchd/internal/domain/match"
	"github.com/neplaunch/matchd/internal/domain/model"
	"github.com/neplaunch/matchd/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func talentWith(userID string, skills ...string) model.TalentProfile {
	p := model.TalentProfile{UserID: userID}
	for _, s := range skills {
		p.Skills = append(p.Skills, model.Skill{Name: s, Proficiency: model.ProficiencyIntermediate})
	}
	return p
}

func TestTalentMatcher(t *testing.T) {
	ctx := context.Background()

	Convey("Given a requirement asking for four skills", t, func() {
		req := model.Requirement{
			ID:             "req-1",
			StartupID:      "startup-1",
			RequiredSkills: []string{"React", "Python", "PostgreSQL", "REST API"},
			Active:         true,
		}
		matcher := match.NewTalentMatcher()

		Convey("When a candidate covers everything plus an extra skill", func() {
			pool := []model.TalentProfile{
				talentWith("talent-1", "React", "Python", "PostgreSQL", "JavaScript", "REST API"),
			}
			results, err := matcher.Match(ctx, req, pool)
			So(err, ShouldBeNil)

			Convey("Then it scores a full skill overlap", func() {
				So(results, ShouldHaveLength, 1)
				So(results[0].TargetUserID, ShouldEqual, "talent-1")
				So(results[0].SkillScore, ShouldEqual, 1.0)
				So(results[0].SemanticScore, ShouldEqual, 0.0)
				So(results[0].OverallScore, ShouldEqual, 0.6)
				So(results[0].MatchedTerms, ShouldResemble, []string{"postgresql", "python", "react", "rest api"})
				So(results[0].MissingTerms, ShouldBeEmpty)
				So(results[0].RequirementID, ShouldEqual, "req-1")
			})
		})

		Convey("When a candidate has no overlapping skills and no embedding", func() {
			pool := []model.TalentProfile{talentWith("talent-2", "Figma")}
			results, err := matcher.Match(ctx, req, pool)
			So(err, ShouldBeNil)

			Convey("Then it is dropped entirely, not merely ranked last", func() {
				So(results, ShouldBeEmpty)
			})
		})

		Convey("When only one side carries an embedding", func() {
			req.Embedding = []float32{1, 0, 0}
			pool := []model.TalentProfile{
				talentWith("talent-3", "React", "Python", "PostgreSQL", "REST API"),
			}
			results, err := matcher.Match(ctx, req, pool)
			So(err, ShouldBeNil)

			Convey("Then the semantic sub-score degrades to zero without error", func() {
				So(results, ShouldHaveLength, 1)
				So(results[0].SemanticScore, ShouldEqual, 0.0)
				So(results[0].OverallScore, ShouldEqual, 0.6)
			})
		})

		Convey("When both sides carry embeddings", func() {
			req.Embedding = []float32{1, 0}
			pool := []model.TalentProfile{
				func() model.TalentProfile {
					p := talentWith("talent-4", "React", "Python", "PostgreSQL", "REST API")
					p.Embedding = []float32{1, 0}
					return p
				}(),
			}
			results, err := matcher.Match(ctx, req, pool)
			So(err, ShouldBeNil)

			Convey("Then the cosine similarity contributes its 0.4 share", func() {
				So(results, ShouldHaveLength, 1)
				So(results[0].SemanticScore, ShouldEqual, 1.0)
				So(results[0].OverallScore, ShouldEqual, 1.0)
			})
		})

		Convey("When embeddings disagree on dimensionality", func() {
			req.Embedding = []float32{1, 0, 0}
			pool := []model.TalentProfile{
				func() model.TalentProfile {
					p := talentWith("talent-5", "React")
					p.Embedding = []float32{1, 0}
					return p
				}(),
			}
			_, err := matcher.Match(ctx, req, pool)

			Convey("Then the whole run fails fast", func() {
				So(err, ShouldEqual, scoring.ErrDimensionMismatch)
			})
		})

		Convey("When two candidates tie on score", func() {
			pool := []model.TalentProfile{
				talentWith("talent-b", "React", "Python"),
				talentWith("talent-a", "Python", "React"),
			}
			results, err := matcher.Match(ctx, req, pool)
			So(err, ShouldBeNil)

			Convey("Then the tie is broken by user id ascending", func() {
				So(results, ShouldHaveLength, 2)
				So(results[0].TargetUserID, ShouldEqual, "talent-a")
				So(results[1].TargetUserID, ShouldEqual, "talent-b")
				So(results[0].OverallScore, ShouldEqual, results[1].OverallScore)
			})
		})

		Convey("When more candidates pass than the configured limit", func() {
			limited := match.NewTalentMatcher(match.WithLimit(2))
			pool := []model.TalentProfile{
				talentWith("talent-1", "React"),
				talentWith("talent-2", "React", "Python"),
				talentWith("talent-3", "React", "Python", "PostgreSQL"),
			}
			results, err := limited.Match(ctx, req, pool)
			So(err, ShouldBeNil)

			Convey("Then only the top entries survive, best first", func() {
				So(results, ShouldHaveLength, 2)
				So(results[0].TargetUserID, ShouldEqual, "talent-3")
				So(results[1].TargetUserID, ShouldEqual, "talent-2")
			})
		})
	})

	Convey("Given an exactly representable threshold", t, func() {
		matcher := match.NewTalentMatcher(
			match.WithWeights(scoring.Weights{Skill: 0.5, Semantic: 0.5}),
			match.WithTalentThreshold(0.5),
		)
		req := model.Requirement{ID: "req-2", RequiredSkills: []string{"go"}}

		Convey("When a candidate lands exactly on the threshold", func() {
			pool := []model.TalentProfile{talentWith("talent-1", "go")}
			results, err := matcher.Match(context.Background(), req, pool)
			So(err, ShouldBeNil)

			Convey("Then it is excluded; the boundary is exclusive", func() {
				So(results, ShouldBeEmpty)
			})
		})
	})
}

func TestInvestorMatcher(t *testing.T) {
	ctx := context.Background()

	Convey("Given a fintech startup at mvp stage asking 50000", t, func() {
		startup := model.Startup{
			ID:         "startup-1",
			FounderID:  "founder-1",
			Industry:   "fintech",
			Stage:      "mvp",
			FundingAsk: 50000,
		}
		matcher := match.NewInvestorMatcher()

		Convey("When an investor's thesis lines up on all three rules", func() {
			pool := []model.InvestorProfile{{
				UserID:           "investor-1",
				PreferredSectors: []string{"Fintech", "edtech"},
				PreferredStages:  []string{"mvp", "early_traction"},
				CheckSizeMin:     10000,
				CheckSizeMax:     50000,
			}}
			results, err := matcher.Match(ctx, startup, pool)
			So(err, ShouldBeNil)

			Convey("Then the additive score is exactly 0.6 with the ask on the inclusive boundary", func() {
				So(results, ShouldHaveLength, 1)
				So(results[0].SkillScore, ShouldEqual, 0.6)
				So(results[0].OverallScore, ShouldEqual, 0.36)
				So(results[0].MatchedTerms, ShouldResemble, []string{
					match.ReasonSectorMatch, match.ReasonStageMatch, match.ReasonCheckSizeMatch,
				})
				So(results[0].MissingTerms, ShouldBeEmpty)
			})
		})

		Convey("When the investor has a minimum but no maximum", func() {
			big := startup
			big.FundingAsk = 5_000_000
			pool := []model.InvestorProfile{{
				UserID:       "investor-2",
				CheckSizeMin: 10000,
			}}
			results, err := matcher.Match(ctx, big, pool)
			So(err, ShouldBeNil)

			Convey("Then the missing maximum is treated as unbounded", func() {
				So(results, ShouldHaveLength, 1)
				So(results[0].MatchedTerms, ShouldResemble, []string{match.ReasonCheckSizeMatch})
				So(results[0].SkillScore, ShouldEqual, 0.1)
				So(results[0].OverallScore, ShouldEqual, 0.06)
			})
		})

		Convey("When the investor has no minimum set", func() {
			pool := []model.InvestorProfile{{
				UserID:       "investor-3",
				CheckSizeMax: 100000,
			}}
			results, err := matcher.Match(ctx, startup, pool)
			So(err, ShouldBeNil)

			Convey("Then the check-size rule is skipped entirely", func() {
				So(results, ShouldBeEmpty)
			})
		})

		Convey("When nothing aligns and no embeddings exist", func() {
			pool := []model.InvestorProfile{{
				UserID:           "investor-4",
				PreferredSectors: []string{"agritech"},
				PreferredStages:  []string{"growth"},
			}}
			results, err := matcher.Match(ctx, startup, pool)
			So(err, ShouldBeNil)

			So(results, ShouldBeEmpty)
		})

		Convey("When only the semantic signal exists", func() {
			withVec := startup
			withVec.Industry = "spacetech"
			withVec.Stage = "idea"
			withVec.FundingAsk = 0
			withVec.Embedding = []float32{0.6, 0.8}
			pool := []model.InvestorProfile{{
				UserID:    "investor-5",
				Embedding: []float32{0.6, 0.8},
			}}
			results, err := matcher.Match(ctx, withVec, pool)
			So(err, ShouldBeNil)

			Convey("Then the match is carried by cosine similarity alone", func() {
				So(results, ShouldHaveLength, 1)
				So(results[0].SkillScore, ShouldEqual, 0.0)
				So(results[0].SemanticScore, ShouldEqual, 1.0)
				So(results[0].OverallScore, ShouldEqual, 0.4)
				So(results[0].MatchedTerms, ShouldBeEmpty)
			})
		})

		Convey("When several investors pass with distinct scores", func() {
			pool := []model.InvestorProfile{
				{UserID: "investor-c", PreferredStages: []string{"mvp"}},
				{UserID: "investor-a", PreferredSectors: []string{"fintech"}},
				{UserID: "investor-b", PreferredSectors: []string{"fintech"}, PreferredStages: []string{"mvp"}},
			}
			results, err := matcher.Match(ctx, startup, pool)
			So(err, ShouldBeNil)

			Convey("Then ordering is score descending", func() {
				So(results, ShouldHaveLength, 3)
				So(results[0].TargetUserID, ShouldEqual, "investor-b")
				So(results[1].TargetUserID, ShouldEqual, "investor-a")
				So(results[2].TargetUserID, ShouldEqual, "investor-c")
			})
		})
	})
}
