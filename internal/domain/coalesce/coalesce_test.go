package coalesce_test

import (
	"context"
	"sync"
	"testing"

	"github.com/neplaunch/matchd/internal/domain/coalesce"
	. "github.com/smartystreets/goconvey/convey"
)

func TestTracker(t *testing.T) {
	ctx := context.Background()

	Convey("Given an empty tracker", t, func() {
		tracker := coalesce.NewInMemoryTracker()

		Convey("When a subject is claimed for the first time", func() {
			seen := tracker.Claim(ctx, "user-1")

			Convey("Then it was not previously pending", func() {
				So(seen, ShouldBeFalse)
				So(tracker.Size(), ShouldEqual, 1)
			})

			Convey("And claiming it again reports a duplicate", func() {
				So(tracker.Claim(ctx, "user-1"), ShouldBeTrue)
				So(tracker.Size(), ShouldEqual, 1)
			})

			Convey("And releasing it allows a fresh claim", func() {
				tracker.Release(ctx, "user-1")
				So(tracker.Size(), ShouldEqual, 0)
				So(tracker.Claim(ctx, "user-1"), ShouldBeFalse)
			})
		})

		Convey("When distinct subjects are claimed", func() {
			So(tracker.Claim(ctx, "user-1"), ShouldBeFalse)
			So(tracker.Claim(ctx, "user-2"), ShouldBeFalse)
			So(tracker.Size(), ShouldEqual, 2)
		})

		Convey("When many goroutines race on one subject", func() {
			var wg sync.WaitGroup
			var mu sync.Mutex
			claimed := 0
			for i := 0; i < 50; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if !tracker.Claim(ctx, "user-1") {
						mu.Lock()
						claimed++
						mu.Unlock()
					}
				}()
			}
			wg.Wait()

			Convey("Then exactly one claim wins", func() {
				So(claimed, ShouldEqual, 1)
				So(tracker.Size(), ShouldEqual, 1)
			})
		})
	})
}
