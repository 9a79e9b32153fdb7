package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry and custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 5, 10}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then collectors are registered under the namespace", func() {
				So(manager, ShouldNotBeNil)
				manager.compareResolutions.WithLabelValues("exact").Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				found := false
				for _, f := range families {
					if f.GetName() == "test_unit_compare_resolutions_total" {
						found = true
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When two managers share a registry", func() {
			registry := prometheus.NewRegistry()
			NewManager(WithPrometheusRegistry(registry))

			Convey("Then the second registration panics", func() {
				So(func() { NewManager(WithPrometheusRegistry(registry)) }, ShouldPanic)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording compare resolutions", func() {
			before := testutil.ToFloat64(globalManager.compareResolutions.WithLabelValues("redirect"))
			RecordCompareResolution("redirect")
			RecordCompareResolution("redirect")

			Convey("Then the counter increases", func() {
				after := testutil.ToFloat64(globalManager.compareResolutions.WithLabelValues("redirect"))
				So(after-before, ShouldEqual, 2)
			})
		})

		Convey("When recording snapshot outcomes", func() {
			RecordSnapshotSave(OutcomeOK, 1_700_000_000)
			RecordSnapshotSave(OutcomeError, 0)

			Convey("Then only successful saves move the timestamp", func() {
				So(testutil.ToFloat64(globalManager.snapshotLastSaveUnix), ShouldEqual, 1_700_000_000)
			})
		})

		Convey("When recording the rest", func() {
			So(func() {
				RecordLeaderboardBuild(OutcomeOK, 1.5)
				UpdateToolsScored(10)
				RecordMetricSubstitution("momentum")
				RecordSnapshotLoad(OutcomeMiss)
				UpdateRegistry(7, 0)
				RecordHTTPRequest("leaderboard", "GET", "200")
				RecordHTTPRequestDuration("leaderboard", "GET", "200", 3)
				RecordErrorByEndpoint("compare", "GET", "not_found")
				RecordErrorByComponent("snapshot", "load_failed")
				UpdateSystemMemoryUsage(1024)
				UpdateSystemGoroutineCount(12)
				RecordSystemGCPauseTime(0.2)
			}, ShouldNotPanic)

			Convey("Then the registry exposes them", func() {
				n, err := testutil.GatherAndCount(GetRegistry())
				So(err, ShouldBeNil)
				So(n, ShouldBeGreaterThan, 0)
				So(testutil.ToFloat64(globalManager.toolsScored), ShouldEqual, 10)
			})
		})
	})
}

func TestMetricNames(t *testing.T) {
	Convey("Given the global registry", t, func() {
		RecordLeaderboardBuild(OutcomeOK, 1)
		families, err := GetRegistry().Gather()
		So(err, ShouldBeNil)

		Convey("Then every metric uses the toolboard namespace", func() {
			for _, f := range families {
				So(strings.HasPrefix(f.GetName(), "toolboard_"), ShouldBeTrue)
			}
		})
	})
}
