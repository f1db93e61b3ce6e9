package config

import (
	"flag"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

// explicitFlags returns the names of the flags given on the command line.
func explicitFlags(fs *flag.FlagSet) map[string]bool {
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

// envOverride binds HEDGESWEEP_<envKey> to the flag spellings it stands in for.
type envOverride struct {
	envKey string
	flags  []string
	axis   bool
	apply  func(*AppConfig, string) error
}

// envOverrides lists every HEDGESWEEP_ variable. Unparseable scalars are
// ignored; out-of-range axis values are errors, as they are for flags.
var envOverrides = []envOverride{
	// Axis overrides (comma separated)
	{envKey: "PORTFOLIO_SIZE", axis: true, flags: []string{"portfolio-size", "p"}, apply: func(c *AppConfig, v string) error {
		return (&boundedIntList{axis: "portfolio-size", min: MinPortfolioSize, max: MaxPortfolioSize, values: &c.PortfolioSizes}).Set(v)
	}},
	{envKey: "SCHEDULE", axis: true, flags: []string{"schedule", "s"}, apply: func(c *AppConfig, v string) error {
		return (&boundedIntList{axis: "schedule", min: MinSchedule, max: MaxSchedule, values: &c.Schedules}).Set(v)
	}},
	{envKey: "HEDGE_TYPE", axis: true, flags: []string{"hedge-type", "h"}, apply: func(c *AppConfig, v string) error {
		return (&stringList{values: &c.HedgeTypes}).Set(v)
	}},
	{envKey: "DATASET", axis: true, flags: []string{"dataset"}, apply: func(c *AppConfig, v string) error {
		return (&stringList{values: &c.Datasets}).Set(v)
	}},

	// Numeric overrides
	{envKey: "WORKERS", flags: []string{"workers"}, apply: func(c *AppConfig, v string) error {
		if parsed, err := strconv.Atoi(v); err == nil {
			c.Workers = parsed
		}
		return nil
	}},
	{envKey: "SEED", flags: []string{"seed"}, apply: func(c *AppConfig, v string) error {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Seed = parsed
		}
		return nil
	}},

	// Duration overrides
	{envKey: "TIMEOUT", flags: []string{"timeout"}, apply: func(c *AppConfig, v string) error {
		if parsed, err := time.ParseDuration(v); err == nil {
			c.Timeout = parsed
		}
		return nil
	}},

	// String overrides
	{envKey: "DATA_DIR", flags: []string{"data-dir"}, apply: func(c *AppConfig, v string) error {
		c.DataDir = v
		return nil
	}},
	{envKey: "FAILURE_POLICY", flags: []string{"failure-policy"}, apply: func(c *AppConfig, v string) error {
		c.FailurePolicy = v
		return nil
	}},
	{envKey: "OUTPUT", flags: []string{"output", "o"}, apply: func(c *AppConfig, v string) error {
		c.OutputFile = v
		return nil
	}},
	{envKey: "LOG_LEVEL", flags: []string{"log-level"}, apply: func(c *AppConfig, v string) error {
		c.LogLevel = v
		return nil
	}},
	{envKey: "METRICS_ADDR", flags: []string{"metrics-addr"}, apply: func(c *AppConfig, v string) error {
		c.MetricsAddr = v
		return nil
	}},
	{envKey: "STORE_DSN", flags: []string{"store-dsn"}, apply: func(c *AppConfig, v string) error {
		c.StoreDSN = v
		return nil
	}},
	{envKey: "PUBLISH_URL", flags: []string{"publish-url"}, apply: func(c *AppConfig, v string) error {
		c.PublishURL = v
		return nil
	}},

	// Boolean overrides
	{envKey: "QUIET", flags: []string{"quiet", "q"}, apply: func(c *AppConfig, v string) error {
		c.Quiet = parseBoolEnv(v, c.Quiet)
		return nil
	}},
	{envKey: "VERBOSE", flags: []string{"verbose", "v"}, apply: func(c *AppConfig, v string) error {
		c.Verbose = parseBoolEnv(v, c.Verbose)
		return nil
	}},
	{envKey: "NO_COLOR", flags: []string{"no-color"}, apply: func(c *AppConfig, v string) error {
		c.NoColor = parseBoolEnv(v, c.NoColor)
		return nil
	}},
	{envKey: "TUI", flags: []string{"tui"}, apply: func(c *AppConfig, v string) error {
		c.TUI = parseBoolEnv(v, c.TUI)
		return nil
	}},
}

// parseBoolEnv reads true/1/yes and false/0/no, case-insensitively, and
// keeps defaultVal for anything else.
func parseBoolEnv(val string, defaultVal bool) bool {
	switch strings.ToLower(val) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	return defaultVal
}

// envConfiguresAxes reports whether the environment selects any sweep axis,
// which makes a bare invocation a run rather than a request for usage.
func envConfiguresAxes() bool {
	for _, o := range envOverrides {
		if o.axis && os.Getenv(EnvPrefix+o.envKey) != "" {
			return true
		}
	}
	return false
}

// applyEnvOverrides fills every option not given on the command line from
// its HEDGESWEEP_ variable. Flags win over the environment, which wins over
// defaults.
func applyEnvOverrides(config *AppConfig, fs *flag.FlagSet) error {
	explicit := explicitFlags(fs)
	for _, o := range envOverrides {
		if slices.ContainsFunc(o.flags, func(name string) bool { return explicit[name] }) {
			continue
		}
		if val := os.Getenv(EnvPrefix + o.envKey); val != "" {
			if err := o.apply(config, val); err != nil {
				return err
			}
		}
	}
	return nil
}
