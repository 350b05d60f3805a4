package config_test

import (
	"context"
	"os"
	"testing"

	"github.com/okian/decoy/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.LabsDir, convey.ShouldEqual, "data/labs")
				convey.So(cfg.ReaperIntervalMinutes, convey.ShouldEqual, 10)
				convey.So(cfg.CompletedTTLHours, convey.ShouldEqual, 24)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("DECOY_ADDR", ":8080")
			_ = os.Setenv("DECOY_LABS_DIR", "/srv/labs")
			_ = os.Setenv("DECOY_REAPER_INTERVAL_MINUTES", "5")
			_ = os.Setenv("DECOY_COMPLETED_TTL_HOURS", "48")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.LabsDir, convey.ShouldEqual, "/srv/labs")
				convey.So(cfg.ReaperIntervalMinutes, convey.ShouldEqual, 5)
				convey.So(cfg.CompletedTTLHours, convey.ShouldEqual, 48)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":9090"
labs_dir: "fixtures/labs"
reaper_interval_minutes: 15
completed_ttl_hours: 12
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("DECOY_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.LabsDir, convey.ShouldEqual, "fixtures/labs")
				convey.So(cfg.ReaperIntervalMinutes, convey.ShouldEqual, 15)
				convey.So(cfg.CompletedTTLHours, convey.ShouldEqual, 12)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
addr: ":9090"
labs_dir: "fixtures/labs"
reaper_interval_minutes: 15
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("DECOY_CONFIG", tmpFile)
			_ = os.Setenv("DECOY_ADDR", ":8080") // This should override the file
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")              // Overridden by env
				convey.So(cfg.LabsDir, convey.ShouldEqual, "fixtures/labs")   // From file
				convey.So(cfg.ReaperIntervalMinutes, convey.ShouldEqual, 15)  // From file
				convey.So(cfg.CompletedTTLHours, convey.ShouldEqual, 24)      // From defaults
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			invalidYaml := `invalid: yaml: content: [`
			tmpFile := createTempConfigFile(invalidYaml)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("DECOY_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("DECOY_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("DECOY_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with a negative reaper interval", func() {
			_ = os.Setenv("DECOY_REAPER_INTERVAL_MINUTES", "-3")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with partial YAML file", func() {
			yamlContent := `
addr: ":9090"
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("DECOY_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should merge with defaults for missing fields", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")            // From file
				convey.So(cfg.LabsDir, convey.ShouldEqual, "data/labs")     // From defaults
				convey.So(cfg.ReaperIntervalMinutes, convey.ShouldEqual, 10)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("DECOY_COMPLETED_TTL_HOURS", "not_a_number")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When disabling the reaper via env", func() {
			_ = os.Setenv("DECOY_REAPER_INTERVAL_MINUTES", "0")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then zero is accepted", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.ReaperIntervalMinutes, convey.ShouldEqual, 0)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"DECOY_CONFIG",
		"DECOY_ADDR",
		"DECOY_LABS_DIR",
		"DECOY_REAPER_INTERVAL_MINUTES",
		"DECOY_COMPLETED_TTL_HOURS",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "decoy-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
