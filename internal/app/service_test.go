package service

import (
	"context"
	"errors"
	"testing"

	"github.com/neplaunch/matchd/internal/adapters/repository"
	"github.com/neplaunch/matchd/internal/domain/model"
	"github.com/neplaunch/matchd/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	m.Run()
}

func newStartedService(t *testing.T, store repository.Store) *Service {
	t.Helper()
	svc := New(WithStore(store), WithWorkerCount(1), WithQueueSize(16))
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start service: %v", err)
	}
	t.Cleanup(svc.Stop)
	return svc
}

func seedFounderWithRequirement(ctx context.Context, store repository.Store) {
	_ = store.PutUser(ctx, model.User{ID: "founder-1", FullName: "F", Role: model.RoleFounder})
	_ = store.PutUser(ctx, model.User{ID: "talent-1", FullName: "T", Role: model.RoleTalent})
	_ = store.PutStartup(ctx, model.Startup{
		ID: "startup-1", FounderID: "founder-1", Name: "Acme",
		Industry: "fintech", Stage: "seed", FundingAsk: 50000,
	})
	_ = store.PutRequirement(ctx, model.Requirement{
		ID: "req-1", StartupID: "startup-1", Title: "Backend engineer",
		RequiredSkills: []string{"go", "sql"}, Active: true,
	})
	_ = store.PutTalentProfile(ctx, model.TalentProfile{
		UserID: "talent-1",
		Skills: []model.Skill{
			{Name: "Go", Proficiency: model.ProficiencyExpert},
			{Name: "SQL", Proficiency: model.ProficiencyAdvanced},
		},
	})
}

func TestServiceFounderMatching(t *testing.T) {
	convey.Convey("Given a founder with an active requirement and one matching talent", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		seedFounderWithRequirement(ctx, store)
		svc := newStartedService(t, store)

		convey.Convey("When the founder's matches are refreshed", func() {
			err := svc.RefreshMatches(ctx, "founder-1")

			convey.Convey("Then a talent match is persisted with full skill overlap", func() {
				convey.So(err, convey.ShouldBeNil)

				matches, err := svc.CachedMatches(ctx, "founder-1")
				convey.So(err, convey.ShouldBeNil)
				convey.So(matches, convey.ShouldHaveLength, 1)
				convey.So(matches[0].Type, convey.ShouldEqual, model.MatchTalentToStartup)
				convey.So(matches[0].TargetUserID, convey.ShouldEqual, "talent-1")
				convey.So(matches[0].RequirementID, convey.ShouldEqual, "req-1")
				convey.So(matches[0].SkillScore, convey.ShouldEqual, 1.0)
				convey.So(matches[0].OverallScore, convey.ShouldEqual, 0.6)
				convey.So(matches[0].MatchedTerms, convey.ShouldResemble, []string{"go", "sql"})
				convey.So(matches[0].MissingTerms, convey.ShouldBeEmpty)
			})

			convey.Convey("And rerunning yields the same set instead of accumulating", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(svc.RefreshMatches(ctx, "founder-1"), convey.ShouldBeNil)

				matches, err := svc.CachedMatches(ctx, "founder-1")
				convey.So(err, convey.ShouldBeNil)
				convey.So(matches, convey.ShouldHaveLength, 1)
			})
		})

		convey.Convey("When the only talent loses its overlap", func() {
			_ = store.PutTalentProfile(ctx, model.TalentProfile{
				UserID: "talent-1",
				Skills: []model.Skill{{Name: "Painting"}},
			})
			err := svc.RefreshMatches(ctx, "founder-1")

			convey.Convey("Then the stale match is replaced by an empty set", func() {
				convey.So(err, convey.ShouldBeNil)

				matches, err := svc.CachedMatches(ctx, "founder-1")
				convey.So(err, convey.ShouldBeNil)
				convey.So(matches, convey.ShouldBeEmpty)
			})
		})
	})
}

func TestServiceFounderEdgeCases(t *testing.T) {
	convey.Convey("Given a founder without a startup", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		_ = store.PutUser(ctx, model.User{ID: "founder-1", Role: model.RoleFounder})
		svc := newStartedService(t, store)

		convey.Convey("When their matches are refreshed", func() {
			err := svc.RefreshMatches(ctx, "founder-1")

			convey.Convey("Then the run succeeds with an empty set", func() {
				convey.So(err, convey.ShouldBeNil)

				matches, err := svc.CachedMatches(ctx, "founder-1")
				convey.So(err, convey.ShouldBeNil)
				convey.So(matches, convey.ShouldBeEmpty)
			})
		})
	})

	convey.Convey("Given a founder whose startup aligns with an investor thesis", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		_ = store.PutUser(ctx, model.User{ID: "founder-1", Role: model.RoleFounder})
		_ = store.PutUser(ctx, model.User{ID: "investor-1", Role: model.RoleInvestor})
		_ = store.PutStartup(ctx, model.Startup{
			ID: "startup-1", FounderID: "founder-1", Name: "Acme",
			Industry: "fintech", Stage: "seed", FundingAsk: 50000,
		})
		_ = store.PutInvestorProfile(ctx, model.InvestorProfile{
			UserID:           "investor-1",
			PreferredSectors: []string{"fintech"},
			PreferredStages:  []string{"seed"},
			CheckSizeMin:     25000,
			CheckSizeMax:     100000,
		})
		svc := newStartedService(t, store)

		convey.Convey("When the founder's matches are refreshed with no requirements", func() {
			err := svc.RefreshMatches(ctx, "founder-1")

			convey.Convey("Then only the investor match is persisted", func() {
				convey.So(err, convey.ShouldBeNil)

				matches, err := svc.CachedMatches(ctx, "founder-1")
				convey.So(err, convey.ShouldBeNil)
				convey.So(matches, convey.ShouldHaveLength, 1)
				convey.So(matches[0].Type, convey.ShouldEqual, model.MatchStartupToInvestor)
				convey.So(matches[0].TargetUserID, convey.ShouldEqual, "investor-1")
				convey.So(matches[0].OverallScore, convey.ShouldEqual, 0.36)
				convey.So(matches[0].MatchedTerms, convey.ShouldResemble,
					[]string{"sector_match", "stage_match", "check_size_match"})
			})
		})
	})
}

func TestServiceTalentMatching(t *testing.T) {
	convey.Convey("Given a talent whose skills cover an active requirement", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		seedFounderWithRequirement(ctx, store)
		svc := newStartedService(t, store)

		convey.Convey("When the talent's matches are refreshed", func() {
			err := svc.RefreshMatches(ctx, "talent-1")

			convey.Convey("Then the match targets the startup's founder", func() {
				convey.So(err, convey.ShouldBeNil)

				matches, err := svc.CachedMatches(ctx, "talent-1")
				convey.So(err, convey.ShouldBeNil)
				convey.So(matches, convey.ShouldHaveLength, 1)
				convey.So(matches[0].Type, convey.ShouldEqual, model.MatchTalentToStartup)
				convey.So(matches[0].TargetUserID, convey.ShouldEqual, "founder-1")
				convey.So(matches[0].RequirementID, convey.ShouldEqual, "req-1")
			})
		})

		convey.Convey("When the talent has no profile yet", func() {
			_ = store.PutUser(ctx, model.User{ID: "talent-2", Role: model.RoleTalent})
			err := svc.RefreshMatches(ctx, "talent-2")

			convey.Convey("Then the run succeeds with an empty set", func() {
				convey.So(err, convey.ShouldBeNil)

				matches, err := svc.CachedMatches(ctx, "talent-2")
				convey.So(err, convey.ShouldBeNil)
				convey.So(matches, convey.ShouldBeEmpty)
			})
		})
	})
}

func TestServiceInvestorMatching(t *testing.T) {
	convey.Convey("Given an investor and two startups, one aligned", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		_ = store.PutUser(ctx, model.User{ID: "founder-1", Role: model.RoleFounder})
		_ = store.PutUser(ctx, model.User{ID: "founder-2", Role: model.RoleFounder})
		_ = store.PutUser(ctx, model.User{ID: "investor-1", Role: model.RoleInvestor})
		_ = store.PutStartup(ctx, model.Startup{
			ID: "startup-1", FounderID: "founder-1", Name: "Aligned",
			Industry: "fintech", Stage: "seed",
		})
		_ = store.PutStartup(ctx, model.Startup{
			ID: "startup-2", FounderID: "founder-2", Name: "Other",
			Industry: "gaming", Stage: "series_a",
		})
		_ = store.PutInvestorProfile(ctx, model.InvestorProfile{
			UserID:           "investor-1",
			PreferredSectors: []string{"fintech"},
			PreferredStages:  []string{"seed"},
		})
		svc := newStartedService(t, store)

		convey.Convey("When the investor's matches are refreshed", func() {
			err := svc.RefreshMatches(ctx, "investor-1")

			convey.Convey("Then only the aligned startup's founder is matched", func() {
				convey.So(err, convey.ShouldBeNil)

				matches, err := svc.CachedMatches(ctx, "investor-1")
				convey.So(err, convey.ShouldBeNil)
				convey.So(matches, convey.ShouldHaveLength, 1)
				convey.So(matches[0].Type, convey.ShouldEqual, model.MatchStartupToInvestor)
				convey.So(matches[0].TargetUserID, convey.ShouldEqual, "founder-1")
				convey.So(matches[0].OverallScore, convey.ShouldEqual, 0.3)
			})
		})
	})
}

func TestServiceIngestion(t *testing.T) {
	convey.Convey("Given a started service", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		svc := newStartedService(t, store)

		convey.Convey("When a user with an unknown role is ingested", func() {
			err := svc.PutUser(ctx, model.User{ID: "u1", Role: "wizard"})

			convey.Convey("Then the write is rejected", func() {
				convey.So(errors.Is(err, ErrUnknownRole), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a valid user and profile are ingested", func() {
			convey.So(svc.PutUser(ctx, model.User{ID: "t1", FullName: "T", Role: model.RoleTalent}), convey.ShouldBeNil)
			convey.So(svc.PutTalentProfile(ctx, model.TalentProfile{
				UserID: "t1",
				Skills: []model.Skill{{Name: "Go"}},
			}), convey.ShouldBeNil)

			convey.Convey("Then the profile is stored without an embedding", func() {
				p, err := store.TalentProfileByUser(ctx, "t1")
				convey.So(err, convey.ShouldBeNil)
				convey.So(p.Embedding, convey.ShouldBeNil)
				convey.So(p.Skills, convey.ShouldHaveLength, 1)
			})
		})

		convey.Convey("When matches are requested for an unknown user", func() {
			_, err := svc.CachedMatches(ctx, "ghost")

			convey.Convey("Then the lookup fails with not found", func() {
				convey.So(errors.Is(err, repository.ErrNotFound), convey.ShouldBeTrue)
			})
		})
	})
}

func TestServiceConnections(t *testing.T) {
	convey.Convey("Given two users with a match between them", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		_ = store.PutUser(ctx, model.User{ID: "u1", Role: model.RoleFounder})
		_ = store.PutUser(ctx, model.User{ID: "u2", Role: model.RoleTalent})
		svc := newStartedService(t, store)

		convey.Convey("When a connection request is created", func() {
			conn, err := svc.Connect(ctx, "u1", "u2", "", "let's talk")

			convey.Convey("Then it is pending and visible to both sides", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(conn.Status, convey.ShouldEqual, model.ConnectionPending)

				forU2, err := svc.Connections(ctx, "u2")
				convey.So(err, convey.ShouldBeNil)
				convey.So(forU2, convey.ShouldHaveLength, 1)
			})

			convey.Convey("And a second request for the same pair is rejected", func() {
				convey.So(err, convey.ShouldBeNil)
				_, err := svc.Connect(ctx, "u1", "u2", "", "again")
				convey.So(errors.Is(err, repository.ErrPendingExists), convey.ShouldBeTrue)
			})

			convey.Convey("And only the addressee can accept it", func() {
				convey.So(err, convey.ShouldBeNil)

				_, wrongActor := svc.AcceptConnection(ctx, conn.ID, "u1")
				convey.So(errors.Is(wrongActor, repository.ErrNotFound), convey.ShouldBeTrue)

				accepted, err := svc.AcceptConnection(ctx, conn.ID, "u2")
				convey.So(err, convey.ShouldBeNil)
				convey.So(accepted.Status, convey.ShouldEqual, model.ConnectionAccepted)

				_, terminal := svc.DeclineConnection(ctx, conn.ID, "u2")
				convey.So(errors.Is(terminal, repository.ErrNotPending), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a user tries to connect to themself", func() {
			_, err := svc.Connect(ctx, "u1", "u1", "", "")

			convey.Convey("Then the request is rejected", func() {
				convey.So(errors.Is(err, ErrSelfConnect), convey.ShouldBeTrue)
			})
		})
	})
}

func TestServiceStats(t *testing.T) {
	convey.Convey("Given a started service with seeded data", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		seedFounderWithRequirement(ctx, store)
		svc := newStartedService(t, store)

		convey.Convey("When stats are requested", func() {
			stats := svc.GetStats()

			convey.Convey("Then they report state and store counts", func() {
				convey.So(stats["started"], convey.ShouldEqual, true)
				counts, ok := stats["counts"].(repository.Counts)
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(counts.Users, convey.ShouldEqual, 2)
				convey.So(counts.Startups, convey.ShouldEqual, 1)
			})
		})
	})
}
