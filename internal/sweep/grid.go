package sweep

import (
	"fmt"
	"iter"

	"github.com/agbru/hedgesweep/internal/hedging"
)

// Task is one point of the grid: a single hedging evaluation.
type Task struct {
	Strategy      hedging.Strategy `json:"strategy"`
	Dataset       string           `json:"dataset"`
	PortfolioSize int              `json:"portfolio_size"`
	Schedule      int              `json:"schedule"`
}

// String identifies the task in logs and errors, e.g. "delta/2010-01/size=1/schedule=5".
func (t Task) String() string {
	return fmt.Sprintf("%s/%s/size=%d/schedule=%d", t.Strategy, t.Dataset, t.PortfolioSize, t.Schedule)
}

// Tasks returns the Cartesian product of the axes. Tasks are produced one at
// a time, strategy outermost and schedule innermost, and nothing is
// materialized ahead of the consumer.
func (a Axes) Tasks() iter.Seq[Task] {
	return func(yield func(Task) bool) {
		for _, strategy := range a.Strategies {
			for _, dataset := range a.Datasets {
				for _, size := range a.PortfolioSizes {
					for _, schedule := range a.Schedules {
						if !yield(Task{Strategy: strategy, Dataset: dataset, PortfolioSize: size, Schedule: schedule}) {
							return
						}
					}
				}
			}
		}
	}
}
