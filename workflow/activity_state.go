package workflow

// ActivityState represents the execution state of an activity
type ActivityState int

const (
	// NotStarted indicates the activity has been added but the pipeline has not reached it.
	// If Init fails, all activities remain in NotStarted state.
	NotStarted ActivityState = iota

	// Running indicates the activity is currently executing
	Running

	// Skipped indicates the activity was never run because an earlier
	// activity failed or the context was cancelled.
	Skipped

	// Completed indicates the activity has finished execution
	// The activity may have succeeded or failed - check the Error field
	Completed
)

// String returns a human-readable representation of the ActivityState
func (s ActivityState) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case Running:
		return "running"
	case Skipped:
		return "skipped"
	case Completed:
		return "completed"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s ActivityState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
