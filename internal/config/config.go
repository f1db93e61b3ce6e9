// Package config parses and validates the hedgesweep command line.
//
// Values come from three layers, highest priority first: command-line flags,
// HEDGESWEEP_* environment variables, and the defaults declared here.
package config

import (
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/agbru/hedgesweep/internal/errors"
)

// EnvPrefix is prepended to every environment variable read by this package.
const EnvPrefix = "HEDGESWEEP_"

// Axis bounds accepted on the command line.
const (
	MinPortfolioSize = 1
	MaxPortfolioSize = 5
	MinSchedule      = 1
	MaxSchedule      = 10
)

// Failure policies understood by the dispatcher.
const (
	PolicyFailFast   = "fail-fast"
	PolicyCollectAll = "collect-all"
)

// DefaultSeed drives the synthetic options data when no --data-dir is given.
const DefaultSeed int64 = 2010

// AppConfig aggregates the configuration of one hedgesweep invocation.
type AppConfig struct {
	// Sweep axes. Each may be empty, which yields an empty grid.
	PortfolioSizes []int
	Schedules      []int
	HedgeTypes     []string
	Datasets       []string

	// DataDir points at a directory of CSV sheets. Empty means synthetic data.
	DataDir string
	Seed    int64

	// Workers is the pool size; 0 selects runtime.NumCPU().
	Workers int
	// Timeout bounds the whole run; 0 disables it.
	Timeout       time.Duration
	FailurePolicy string

	OutputFile string
	Quiet      bool
	Verbose    bool
	NoColor    bool
	LogLevel   string
	// TUI runs the sweep under the interactive dashboard.
	TUI bool

	MetricsAddr string
	StoreDSN    string
	PublishURL  string

	Completion string
	// Version prints the build version and exits.
	Version bool
}

// boundedIntList is a repeatable flag.Value collecting integers within [min, max].
// Values may also be given comma separated in a single occurrence.
type boundedIntList struct {
	axis     string
	min, max int
	values   *[]int
	// failure keeps the typed error, since flag.FlagSet flattens Set errors to text.
	failure *error
}

func (b *boundedIntList) String() string {
	if b.values == nil {
		return ""
	}
	parts := make([]string, len(*b.values))
	for i, v := range *b.values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

func (b *boundedIntList) Set(s string) error {
	for _, raw := range splitList(s) {
		v, err := strconv.Atoi(raw)
		if err != nil || v < b.min || v > b.max {
			axisErr := apperrors.InvalidAxisValueError{Axis: b.axis, Value: raw, Min: b.min, Max: b.max}
			if b.failure != nil && *b.failure == nil {
				*b.failure = axisErr
			}
			return axisErr
		}
		*b.values = append(*b.values, v)
	}
	return nil
}

// stringList is a repeatable flag.Value collecting free-form names.
type stringList struct {
	values *[]string
}

func (l *stringList) String() string {
	if l.values == nil {
		return ""
	}
	return strings.Join(*l.values, ",")
}

func (l *stringList) Set(s string) error {
	*l.values = append(*l.values, splitList(s)...)
	return nil
}

// splitList splits a comma separated value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ParseConfig parses the command-line arguments into an AppConfig.
//
// Calling it without arguments prints the usage and returns flag.ErrHelp, so
// callers can treat a bare invocation like --help.
//
// Parameters:
//   - programName: name shown in the usage header.
//   - args: the arguments without the program name.
//   - errWriter: destination of usage and parse errors.
//
// Returns:
//   - AppConfig: the parsed configuration, with environment overrides applied.
//   - error: flag.ErrHelp, an InvalidAxisValueError or a ConfigError.
func ParseConfig(programName string, args []string, errWriter io.Writer) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errWriter)

	config := AppConfig{}
	var axisErr error

	sizes := &boundedIntList{axis: "portfolio-size", min: MinPortfolioSize, max: MaxPortfolioSize, values: &config.PortfolioSizes, failure: &axisErr}
	schedules := &boundedIntList{axis: "schedule", min: MinSchedule, max: MaxSchedule, values: &config.Schedules, failure: &axisErr}
	hedgeTypes := &stringList{values: &config.HedgeTypes}
	datasets := &stringList{values: &config.Datasets}

	fs.Var(sizes, "portfolio-size", fmt.Sprintf("Portfolio size to evaluate, repeatable (%d-%d).", MinPortfolioSize, MaxPortfolioSize))
	fs.Var(sizes, "p", "Shorthand for --portfolio-size.")
	fs.Var(schedules, "schedule", fmt.Sprintf("Rebalancing interval in trading days, repeatable (%d-%d).", MinSchedule, MaxSchedule))
	fs.Var(schedules, "s", "Shorthand for --schedule.")
	fs.Var(hedgeTypes, "hedge-type", "Hedge strategy to evaluate, repeatable (delta, delta-vega).")
	fs.Var(hedgeTypes, "h", "Shorthand for --hedge-type.")
	fs.Var(datasets, "dataset", "Restrict the sweep to these sheets, repeatable (default: all sheets).")

	fs.StringVar(&config.DataDir, "data-dir", "", "Directory of CSV option sheets (default: synthetic data).")
	fs.Int64Var(&config.Seed, "seed", DefaultSeed, "Seed for the synthetic options data.")
	fs.IntVar(&config.Workers, "workers", 0, "Number of parallel workers (0 = number of CPUs).")
	fs.DurationVar(&config.Timeout, "timeout", 0, "Maximum run time, e.g. 30s or 5m (0 = no limit).")
	fs.StringVar(&config.FailurePolicy, "failure-policy", PolicyFailFast, "Task failure policy: fail-fast or collect-all.")
	fs.StringVar(&config.OutputFile, "output", "", "Write results to a .json or .csv file.")
	fs.StringVar(&config.OutputFile, "o", "", "Shorthand for --output.")
	fs.BoolVar(&config.Quiet, "quiet", false, "Print one line per result and no decorations.")
	fs.BoolVar(&config.Quiet, "q", false, "Shorthand for --quiet.")
	fs.BoolVar(&config.Verbose, "verbose", false, "Print per-task timings and a resource summary.")
	fs.BoolVar(&config.Verbose, "v", false, "Shorthand for --verbose.")
	fs.BoolVar(&config.NoColor, "no-color", false, "Disable colored output.")
	fs.BoolVar(&config.TUI, "tui", false, "Follow the sweep in an interactive dashboard.")
	fs.StringVar(&config.LogLevel, "log-level", "info", "Log level: debug, info, warn, error or disabled.")
	fs.StringVar(&config.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090.")
	fs.StringVar(&config.StoreDSN, "store-dsn", "", "PostgreSQL connection string for persisting results.")
	fs.StringVar(&config.PublishURL, "publish-url", "", "AMQP URL for publishing result events.")
	fs.StringVar(&config.Completion, "completion", "", "Print a shell completion script (bash, zsh, fish, powershell).")
	fs.BoolVar(&config.Version, "version", false, "Print version information.")
	fs.BoolVar(&config.Version, "V", false, "Shorthand for --version.")

	fs.Usage = func() {
		out := fs.Output()
		fmt.Fprintf(out, "Usage: %s [options]\n\n", programName)
		fmt.Fprintln(out, "Evaluates hedge strategies over every combination of the selected axes.")
		fmt.Fprintf(out, "\nExample:\n  %s -h delta -h delta-vega -p 1 -p 3 -s 5\n\nOptions:\n", programName)
		fs.PrintDefaults()
		fmt.Fprintf(out, "\nEnvironment variables prefixed with %s override unset flags;\n", EnvPrefix)
		fmt.Fprintf(out, "setting an axis variable (%sHEDGE_TYPE, ...) runs without arguments.\n", EnvPrefix)
	}

	if len(args) == 0 && !envConfiguresAxes() {
		fs.Usage()
		return config, flag.ErrHelp
	}

	if err := fs.Parse(args); err != nil {
		if axisErr != nil {
			return config, axisErr
		}
		if err == flag.ErrHelp {
			return config, err
		}
		return config, apperrors.NewConfigError("%v", err)
	}
	if fs.NArg() > 0 {
		return config, apperrors.NewConfigError("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	if err := applyEnvOverrides(&config, fs); err != nil {
		return config, err
	}
	if err := config.Validate(); err != nil {
		return config, err
	}
	return config, nil
}

// Validate checks the cross-field constraints that flag parsing cannot express.
func (c AppConfig) Validate() error {
	if c.Workers < 0 {
		return apperrors.NewConfigError("--workers must be >= 0, got %d", c.Workers)
	}
	if c.Timeout < 0 {
		return apperrors.NewConfigError("--timeout must not be negative, got %s", c.Timeout)
	}
	if !slices.Contains([]string{PolicyFailFast, PolicyCollectAll}, c.FailurePolicy) {
		return apperrors.NewConfigError("unknown failure policy %q (accepted values: %s, %s)", c.FailurePolicy, PolicyFailFast, PolicyCollectAll)
	}
	if c.OutputFile != "" {
		switch strings.ToLower(filepath.Ext(c.OutputFile)) {
		case ".json", ".csv":
		default:
			return apperrors.NewConfigError("unsupported output format %q: use a .json or .csv file", c.OutputFile)
		}
	}
	if c.Quiet && c.Verbose {
		return apperrors.NewConfigError("--quiet and --verbose are mutually exclusive")
	}
	if c.TUI && c.Quiet {
		return apperrors.NewConfigError("--tui and --quiet are mutually exclusive")
	}
	return nil
}
