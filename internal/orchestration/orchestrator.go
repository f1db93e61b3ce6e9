package orchestration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime/debug"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/agbru/hedgesweep/internal/config"
	apperrors "github.com/agbru/hedgesweep/internal/errors"
	"github.com/agbru/hedgesweep/internal/hedging"
	"github.com/agbru/hedgesweep/internal/logging"
	"github.com/agbru/hedgesweep/internal/optionsdata"
	"github.com/agbru/hedgesweep/internal/sweep"
)

const tracerName = "github.com/agbru/hedgesweep/internal/orchestration"

// FailurePolicy decides what the collector does when a task fails.
type FailurePolicy int

const (
	// FailFast surfaces the first failure and returns no result set. Tasks
	// already submitted still run to completion; none is canceled.
	FailFast FailurePolicy = iota
	// CollectAll keeps collecting, records each failure on its TaskResult and
	// returns the full result set together with the joined failures.
	CollectAll
)

func (p FailurePolicy) String() string {
	if p == CollectAll {
		return config.PolicyCollectAll
	}
	return config.PolicyFailFast
}

// ParseFailurePolicy converts a --failure-policy value.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch s {
	case config.PolicyFailFast, "":
		return FailFast, nil
	case config.PolicyCollectAll:
		return CollectAll, nil
	default:
		return FailFast, apperrors.NewConfigError("unknown failure policy %q", s)
	}
}

// Options configures ExecuteSweep. The zero value is usable: one worker per
// CPU, fail-fast, no progress display, no observer and no logging.
type Options struct {
	Workers     int
	Policy      FailurePolicy
	Progress    ProgressReporter
	ProgressOut io.Writer
	Observer    Observer
	Logger      logging.Logger
	// Resolve overrides the strategy to routine binding. Nil uses hedging.Strategy.Routine.
	Resolve RoutineResolver
}

func (o *Options) withDefaults() {
	if o.Progress == nil {
		o.Progress = NullProgressReporter{}
	}
	if o.ProgressOut == nil {
		o.ProgressOut = io.Discard
	}
	if o.Observer == nil {
		o.Observer = NopObserver{}
	}
	if o.Logger == nil {
		o.Logger = logging.Nop()
	}
	if o.Resolve == nil {
		o.Resolve = hedging.Strategy.Routine
	}
}

// ExecuteSweep runs one task per point of the grid and collects the results
// in completion order.
//
// Routines are resolved before anything is submitted. Every task is then
// enqueued at once into a channel sized to the grid, so submission never
// blocks, and a fixed pool of workers drains it. Workers report through a
// completion channel of the same size, which the caller's goroutine reads;
// that read is the only place the collector waits. The data source is shared
// by all workers and only read.
//
// Parameters:
//   - ctx: Cancellation and deadline for the whole sweep, passed to every routine.
//   - axes: The normalized sweep axes.
//   - src: The read-only options data.
//   - opts: Pool size, failure policy and collaborators.
//
// Returns:
//   - ResultSet: Every result in arrival order; nil when FailFast stopped the run.
//   - error: An UnknownStrategyError before submission, or the task failure(s).
func ExecuteSweep(ctx context.Context, axes sweep.Axes, src optionsdata.Source, opts Options) (ResultSet, error) {
	opts.withDefaults()

	routines, err := resolveRoutines(axes.Strategies, opts.Resolve)
	if err != nil {
		return nil, err
	}

	total := axes.Size()
	if total == 0 {
		opts.Logger.Info("empty sweep grid, nothing to run")
		return ResultSet{}, nil
	}
	workers := config.ResolveWorkerCount(opts.Workers, total)

	tasks := make(chan sweep.Task, total)
	for task := range axes.Tasks() {
		tasks <- task
		opts.Observer.TaskSubmitted(task)
	}
	close(tasks)
	opts.Logger.Debug("tasks submitted", logging.Int("tasks", total), logging.Int("workers", workers))

	completions := make(chan TaskResult, total)
	var g errgroup.Group
	for range workers {
		g.Go(func() error {
			for task := range tasks {
				opts.Observer.TaskStarted(task)
				res := runTask(ctx, task, routines[task.Strategy], src)
				opts.Observer.TaskFinished(res)
				completions <- res
			}
			return nil
		})
	}
	go func() {
		_ = g.Wait()
		close(completions)
	}()

	progressChan := make(chan ProgressUpdate, total)
	var displayWg sync.WaitGroup
	displayWg.Add(1)
	go opts.Progress.DisplayProgress(&displayWg, progressChan, total, opts.ProgressOut)

	results, err := collect(completions, progressChan, total, opts)

	close(progressChan)
	displayWg.Wait()
	return results, err
}

// collect drains completions until every task reported or, under FailFast,
// until the first failure. In the latter case it keeps draining without
// collecting so that the call returns only once the pool is idle.
func collect(completions <-chan TaskResult, progressChan chan<- ProgressUpdate, total int, opts Options) (ResultSet, error) {
	results := make(ResultSet, 0, total)
	var failures []error

	for res := range completions {
		results = append(results, res)
		progressChan <- ProgressUpdate{Result: res, Completed: len(results), Total: total}

		fields := []logging.Field{
			logging.String("task", res.Task.String()),
			logging.Duration("duration", res.Duration),
		}
		if res.Err == nil {
			opts.Logger.Debug("task completed", fields...)
			continue
		}

		opts.Logger.Error("task failed", res.Err, fields...)
		failures = append(failures, res.Err)
		if opts.Policy == FailFast {
			pending := 0
			for range completions {
				pending++
			}
			opts.Logger.Debug("pool drained after failure", logging.Int("discarded", pending))
			return nil, res.Err
		}
	}

	if len(failures) > 0 {
		return results, errors.Join(failures...)
	}
	return results, nil
}

// runTask executes one routine, converting an error or a panic into an
// apperrors.TaskExecutionError.
func runTask(ctx context.Context, task sweep.Task, routine hedging.Routine, src optionsdata.Source) (res TaskResult) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "hedge."+task.Strategy.String(),
		trace.WithAttributes(
			attribute.String("hedge.strategy", task.Strategy.String()),
			attribute.String("hedge.dataset", task.Dataset),
			attribute.Int("hedge.portfolio_size", task.PortfolioSize),
			attribute.Int("hedge.schedule", task.Schedule),
		))
	defer span.End()

	res.Task = task
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			res.Stats = hedging.Stats{}
			res.Err = apperrors.TaskExecutionError{
				Task:  task.String(),
				Cause: fmt.Errorf("panic: %v\n%s", r, debug.Stack()),
			}
		}
		res.Duration = time.Since(start)
		if res.Err != nil {
			span.RecordError(res.Err)
			span.SetStatus(codes.Error, res.Err.Error())
		}
	}()

	stats, err := routine(ctx, src, task.Dataset, task.PortfolioSize, task.Schedule)
	if err != nil {
		res.Err = apperrors.TaskExecutionError{Task: task.String(), Cause: err}
		return res
	}
	res.Stats = stats
	return res
}
