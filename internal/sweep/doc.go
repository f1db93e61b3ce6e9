// Package sweep turns user-selected configuration values into the grid of
// hedging tasks a run evaluates.
//
// Each axis is normalized (deduplicated and sorted) so the grid does not
// depend on the order or repetition of the input. The grid itself is a lazy
// Cartesian product: strategy outermost, schedule innermost.
package sweep
