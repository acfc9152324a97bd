package pipeline

// FailurePolicy states how a stage proceeds when its backing
// capability is unavailable, errors, or returns unparseable output.
type FailurePolicy int

const (
	// FailOpen passes all inputs through as if accepted.
	FailOpen FailurePolicy = iota
	// FailClosedEmpty proceeds as if the capability found nothing.
	FailClosedEmpty
)

func (p FailurePolicy) String() string {
	switch p {
	case FailOpen:
		return "fail_open"
	case FailClosedEmpty:
		return "fail_closed_empty"
	}
	return "unknown"
}
