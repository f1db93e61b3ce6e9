// Package orchestration dispatches the tasks of a sweep to a pool of workers
// and collects their results as they complete. It decouples the sweep from
// presentation via the ProgressReporter and ResultPresenter interfaces, and
// from instrumentation via Observer.
package orchestration
