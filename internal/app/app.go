package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/agbru/hedgesweep/internal/cli"
	"github.com/agbru/hedgesweep/internal/config"
	apperrors "github.com/agbru/hedgesweep/internal/errors"
	"github.com/agbru/hedgesweep/internal/hedging"
	"github.com/agbru/hedgesweep/internal/logging"
	"github.com/agbru/hedgesweep/internal/optionsdata"
	"github.com/agbru/hedgesweep/internal/orchestration"
	"github.com/agbru/hedgesweep/internal/ui"
)

// Application represents the hedgesweep application instance.
type Application struct {
	Config    config.AppConfig
	ErrWriter io.Writer

	// Source replaces the synthetic or CSV data source when set.
	Source optionsdata.Source
	// Resolve replaces the strategy to routine binding when set.
	Resolve orchestration.RoutineResolver

	tuiOptions []tea.ProgramOption
	logger     *logging.ZerologAdapter
}

// AppOption configures an Application during construction.
type AppOption func(*Application)

// WithSource sets the options data shared by every task.
func WithSource(src optionsdata.Source) AppOption {
	return func(a *Application) { a.Source = src }
}

// WithRoutineResolver overrides how strategies are bound to routines.
func WithRoutineResolver(r orchestration.RoutineResolver) AppOption {
	return func(a *Application) { a.Resolve = r }
}

// WithTUIProgramOptions replaces the dashboard's program options, which
// default to the alternate screen.
func WithTUIProgramOptions(opts ...tea.ProgramOption) AppOption {
	return func(a *Application) { a.tuiOptions = opts }
}

// New creates a new Application by parsing command-line arguments. args[0]
// is the program name.
func New(args []string, errWriter io.Writer, opts ...AppOption) (*Application, error) {
	app := &Application{ErrWriter: errWriter, tuiOptions: []tea.ProgramOption{tea.WithAltScreen()}}
	for _, opt := range opts {
		opt(app)
	}

	programName := "hedgesweep"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter)
	if err != nil {
		return nil, err
	}
	app.Config = cfg
	return app, nil
}

// Run executes the application based on the configured mode and returns the
// process exit code.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	if a.Config.Version {
		PrintVersion(out)
		return apperrors.ExitSuccess
	}
	if a.Config.Completion != "" {
		return a.runCompletion(out)
	}

	ui.InitTheme(a.Config.NoColor)
	a.logger = a.newLogger()
	return a.runSweep(ctx, out)
}

// newLogger builds the console logger on ErrWriter at the configured level.
func (a *Application) newLogger() *logging.ZerologAdapter {
	logOut := a.ErrWriter
	if a.Config.TUI {
		logOut = io.Discard
	}
	writer := zerolog.ConsoleWriter{Out: logOut, NoColor: ui.GetCurrentTheme().Name == ui.NoColorTheme.Name}
	zl := zerolog.New(writer).Level(logging.ParseLevel(a.Config.LogLevel)).With().Timestamp().Logger()
	return logging.NewZerologAdapter(zl)
}

// runCompletion generates shell completion scripts.
func (a *Application) runCompletion(out io.Writer) int {
	names := make([]string, 0, len(hedging.Strategies()))
	for _, s := range hedging.Strategies() {
		names = append(names, s.String())
	}
	if err := cli.GenerateCompletion(out, a.Config.Completion, names); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error generating completion: %v\n", err)
		return apperrors.ExitErrorConfig
	}
	return apperrors.ExitSuccess
}

// IsHelpError checks if the error is a help request (--help or no arguments).
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}
