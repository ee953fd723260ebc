package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given a fresh registry", t, func() {
		registry := prometheus.NewRegistry()

		Convey("When creating a manager with defaults", func() {
			manager := NewManager(WithRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating a manager with custom options", func() {
			manager := NewManager(
				WithNamespace("test-namespace"),
				WithSubsystem("test-subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithRegistry(registry),
			)

			So(manager, ShouldNotBeNil)
		})
	})
}

func TestGlobalHelpers(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording through the package-level helpers", func() {
			So(func() {
				RecordMatchingRun("founder")
				RecordMatchingRunDuration(12.5)
				RecordMatchesProduced("talent_to_startup", 3)
				RecordCandidatesEvaluated(10)
				RecordStoreReplaceLatency(1.0)
				RecordStoreQueryLatency(0.5)
				RecordStoreError("replace")
				UpdateMatchRowsTotal(42)
				RecordConnectionRequest("created")
				RecordEmbedderRequest()
				RecordEmbedderError()
				UpdateQueueSize(5)
				UpdateQueueCapacity(100)
				RecordQueueEnqueue()
				RecordQueueDequeue()
				UpdateWorkerCount(4)
				RecordWorkerProcessingLatency(3.0)
				UpdatePendingRefreshes(2)
				RecordHTTPRequest("results", "GET", "200")
				RecordHTTPRequestDuration("results", "GET", "200", 1.2)
			}, ShouldNotPanic)
		})

		Convey("When fetching the registry", func() {
			So(GetRegistry(), ShouldNotBeNil)
		})
	})
}
