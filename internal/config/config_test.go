package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/toolboard/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.SnapshotBackend, convey.ShouldEqual, config.SnapshotBackendFile)
			convey.So(cfg.SnapshotInterval, convey.ShouldEqual, time.Hour)
			convey.So(cfg.MoversLimit, convey.ShouldEqual, 5)
			convey.So(cfg.MaxMoversLimit, convey.ShouldEqual, 50)
			convey.So(cfg.MetricWeights, convey.ShouldBeNil)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})

	convey.Convey("Given configs violating constraints", t, func() {
		cases := map[string]func(c *config.Config){
			"empty addr":        func(c *config.Config) { c.Addr = "" },
			"unknown backend":   func(c *config.Config) { c.SnapshotBackend = "redis" },
			"empty path":        func(c *config.Config) { c.SnapshotPath = "" },
			"negative interval": func(c *config.Config) { c.SnapshotInterval = -time.Second },
			"negative movers":   func(c *config.Config) { c.MoversLimit = -1 },
			"max below default": func(c *config.Config) { c.MaxMoversLimit = 1 },
		}
		for name, mutate := range cases {
			cfg := config.New()
			mutate(cfg)
			err := cfg.Validate()
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			_ = name
		}
	})
}
