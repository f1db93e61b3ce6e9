package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/agbru/hedgesweep/internal/cli"
	"github.com/agbru/hedgesweep/internal/config"
	apperrors "github.com/agbru/hedgesweep/internal/errors"
	"github.com/agbru/hedgesweep/internal/logging"
	"github.com/agbru/hedgesweep/internal/metrics"
	"github.com/agbru/hedgesweep/internal/optionsdata"
	"github.com/agbru/hedgesweep/internal/orchestration"
	"github.com/agbru/hedgesweep/internal/store"
	"github.com/agbru/hedgesweep/internal/sweep"
	"github.com/agbru/hedgesweep/internal/sysmon"
	"github.com/agbru/hedgesweep/internal/tui"
)

// syntheticYear is the calendar year of the generated sheets.
const syntheticYear = 2010

// runSweep builds the grid, runs it and reports the outcome.
func (a *Application) runSweep(ctx context.Context, out io.Writer) int {
	start := time.Now()
	runID := uuid.New()
	logger := a.logger.With(logging.String("run_id", runID.String()))

	if a.Config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.Config.Timeout)
		defer cancel()
	}
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	fail := func(err error) int {
		return apperrors.HandleSweepError(err, time.Since(start), out, cli.CLIColorProvider{})
	}

	src, err := a.loadSource()
	if err != nil {
		return fail(err)
	}
	axes, err := sweep.Normalize(a.Config.HedgeTypes, src.SheetNames(), a.Config.PortfolioSizes, a.Config.Schedules)
	if err != nil {
		return fail(err)
	}
	policy, err := orchestration.ParseFailurePolicy(a.Config.FailurePolicy)
	if err != nil {
		return fail(err)
	}

	sink, err := a.openSinks(ctx, logger)
	if err != nil {
		return fail(err)
	}
	if sink != nil {
		defer func() {
			if err := sink.Close(); err != nil {
				logger.Error("closing result sinks", err)
			}
		}()
	}

	var observer orchestration.Observer = orchestration.NopObserver{}
	if a.Config.MetricsAddr != "" {
		m := metrics.NewSweepMetrics()
		srv, err := metrics.Serve(a.Config.MetricsAddr, m, logger)
		if err != nil {
			return fail(apperrors.WrapError(err, "metrics server"))
		}
		defer func() {
			if err := srv.Shutdown(context.Background()); err != nil {
				logger.Error("stopping metrics server", err)
			}
		}()
		observer = m
	}

	var (
		presenter   orchestration.ResultPresenter = cli.CLIResultPresenter{Verbose: a.Config.Verbose}
		progress    orchestration.ProgressReporter = cli.CLIProgressReporter{}
		progressOut                                = out
	)
	if a.Config.Quiet {
		presenter = cli.QuietPresenter{}
		progress = orchestration.NullProgressReporter{}
		progressOut = io.Discard
	}

	workers := config.ResolveWorkerCount(a.Config.Workers, axes.Size())
	if !a.Config.Quiet && !a.Config.TUI {
		cli.DisplayBanner(out, axes.Size(), workers, runID.String())
	}
	logger.Info("sweep started",
		logging.Int("tasks", axes.Size()),
		logging.Int("workers", workers),
		logging.String("policy", policy.String()))

	dispatch := func(ctx context.Context, progress orchestration.ProgressReporter) (orchestration.ResultSet, error) {
		return orchestration.ExecuteSweep(ctx, axes, src, orchestration.Options{
			Workers:     workers,
			Policy:      policy,
			Progress:    progress,
			ProgressOut: progressOut,
			Observer:    observer,
			Logger:      logger,
			Resolve:     a.Resolve,
		})
	}

	memory := metrics.NewMemoryCollector()
	var results orchestration.ResultSet
	if a.Config.TUI {
		// The dashboard already showed the outcome; only the exit report follows.
		presenter = silentPresenter{}
		session := tui.Session{RunID: runID.String(), Version: Version, Axes: axes, Workers: workers}
		results, err = tui.Run(ctx, session, dispatch, a.tuiOptions...)
	} else {
		results, err = dispatch(ctx, progress)
	}
	elapsed := time.Since(start)

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && a.Config.Timeout > 0 {
			err = apperrors.TimeoutError{Operation: "sweep", Limit: a.Config.Timeout}
		}
		presenter.PresentFailure(err, results, out)
		if len(results) > 0 {
			a.saveResults(runID, results, out, logger)
		}
		logger.Error("sweep failed", err, logging.Duration("elapsed", elapsed))
		return fail(err)
	}

	presenter.PresentResults(results, out)
	if code := a.saveResults(runID, results, out, logger); code != apperrors.ExitSuccess {
		return code
	}
	if sink != nil {
		if err := sink.Write(ctx, runID, results); err != nil {
			logger.Error("writing results to sinks", err)
			return fail(err)
		}
	}
	logger.Info("sweep finished", logging.Int("results", len(results)), logging.Duration("elapsed", elapsed))

	if a.Config.Verbose && !a.Config.Quiet {
		cli.DisplayRunSummary(out, elapsed, memory.Footprint(), sysmon.Sample(context.Background()))
	}
	return apperrors.ExitSuccess
}

// silentPresenter leaves the terminal to the exit report after the
// dashboard closes.
type silentPresenter struct{}

func (silentPresenter) PresentResults(orchestration.ResultSet, io.Writer)        {}
func (silentPresenter) PresentFailure(error, orchestration.ResultSet, io.Writer) {}

// loadSource returns the injected source, the CSV sheets of --data-dir or
// the synthetic year, restricted to --dataset.
func (a *Application) loadSource() (optionsdata.Source, error) {
	src := a.Source
	if src == nil {
		if a.Config.DataDir != "" {
			loaded, err := optionsdata.LoadDir(a.Config.DataDir)
			if err != nil {
				return nil, apperrors.WrapError(err, "loading %s", a.Config.DataDir)
			}
			src = loaded
		} else {
			src = optionsdata.NewSynthetic(a.Config.Seed, syntheticYear)
		}
	}
	filtered, err := optionsdata.Filter(src, a.Config.Datasets)
	if err != nil {
		return nil, apperrors.NewConfigError("invalid --dataset: %v", err)
	}
	return filtered, nil
}

// openSinks connects the configured result sinks. It returns nil when none
// is configured.
func (a *Application) openSinks(ctx context.Context, logger logging.Logger) (store.Sink, error) {
	var sinks []store.Sink
	if a.Config.StoreDSN != "" {
		pg, err := store.NewPostgresSink(ctx, a.Config.StoreDSN, logger)
		if err != nil {
			return nil, apperrors.WrapError(err, "result store")
		}
		sinks = append(sinks, pg)
	}
	if a.Config.PublishURL != "" {
		pub, err := store.NewAMQPSink(a.Config.PublishURL, logger)
		if err != nil {
			_ = store.Multi(sinks...).Close()
			return nil, apperrors.WrapError(err, "result publisher")
		}
		sinks = append(sinks, pub)
	}
	if len(sinks) == 0 {
		return nil, nil
	}
	return store.Multi(sinks...), nil
}

// saveResults writes --output if requested.
func (a *Application) saveResults(runID uuid.UUID, results orchestration.ResultSet, out io.Writer, logger logging.Logger) int {
	if a.Config.OutputFile == "" {
		return apperrors.ExitSuccess
	}
	if err := cli.WriteResultsToFile(a.Config.OutputFile, runID, results); err != nil {
		logger.Error("saving results", err, logging.String("path", a.Config.OutputFile))
		fmt.Fprintf(a.ErrWriter, "Error saving results: %v\n", err)
		return apperrors.ExitErrorGeneric
	}
	if !a.Config.Quiet {
		cli.DisplaySavedFile(out, a.Config.OutputFile)
	}
	return apperrors.ExitSuccess
}
