package orchestration

import (
	"github.com/agbru/hedgesweep/internal/hedging"
)

// ResolveRoutines binds every strategy of the sweep to its evaluation routine.
// It runs before any task is submitted so that an unsupported strategy fails
// the whole run with an apperrors.UnknownStrategyError and nothing executes.
//
// Parameters:
//   - strategies: The normalized strategy axis.
//
// Returns:
//   - map[hedging.Strategy]hedging.Routine: One routine per strategy.
//   - error: The first strategy without a routine.
func ResolveRoutines(strategies []hedging.Strategy) (map[hedging.Strategy]hedging.Routine, error) {
	return resolveRoutines(strategies, hedging.Strategy.Routine)
}

// RoutineResolver maps a strategy to its routine.
type RoutineResolver func(hedging.Strategy) (hedging.Routine, error)

func resolveRoutines(strategies []hedging.Strategy, resolve RoutineResolver) (map[hedging.Strategy]hedging.Routine, error) {
	routines := make(map[hedging.Strategy]hedging.Routine, len(strategies))
	for _, s := range strategies {
		routine, err := resolve(s)
		if err != nil {
			return nil, err
		}
		routines[s] = routine
	}
	return routines, nil
}
