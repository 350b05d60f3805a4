package metrics_test

import (
	"testing"

	"github.com/okian/decoy/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManager(t *testing.T) {
	Convey("Given the metrics package", t, func() {
		Convey("Then the global registry is available", func() {
			So(metrics.GetRegistry(), ShouldNotBeNil)
		})

		Convey("Then a manager can be built on an isolated registry", func() {
			reg := prometheus.NewRegistry()
			m := metrics.NewManager(
				metrics.WithPrometheusRegistry(reg),
				metrics.WithNamespace("test"),
				metrics.WithSubsystem("labs"),
			)
			So(m, ShouldNotBeNil)

			families, err := reg.Gather()
			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)
		})

		Convey("Then package-level helpers do not panic", func() {
			So(func() {
				metrics.RecordSessionStarted()
				metrics.RecordSessionCompleted()
				metrics.RecordSessionsReaped(2)
				metrics.UpdateActiveSessions(3)
				metrics.RecordEventsIngested(5)
				metrics.RecordEventsDropped(1)
				metrics.RecordEvaluationDuration(1.5)
				metrics.RecordTrapsTriggered(2)
				metrics.RecordRiskScore(40)
				metrics.RecordRiskBand("Risky")
				metrics.UpdateLabsLoaded(3)
				metrics.RecordHTTPRequest("labs", "GET", "200")
				metrics.RecordHTTPRequestDuration("labs", "GET", "200", 3.2)
				metrics.UpdateSystemMemoryUsage(1024)
				metrics.UpdateSystemGoroutineCount(8)
				metrics.RecordSystemGCPauseTime(0.3)
			}, ShouldNotPanic)
		})
	})
}
