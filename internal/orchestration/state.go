package orchestration

// TaskState is the lifecycle position of a task:
// Submitted → Running → {Completed | Failed}.
type TaskState int

const (
	TaskSubmitted TaskState = iota
	TaskRunning
	TaskCompleted
	TaskFailed
)

func (s TaskState) String() string {
	switch s {
	case TaskSubmitted:
		return "submitted"
	case TaskRunning:
		return "running"
	case TaskCompleted:
		return "completed"
	case TaskFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition can happen.
func (s TaskState) Terminal() bool {
	return s == TaskCompleted || s == TaskFailed
}
