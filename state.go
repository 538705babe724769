package specify

// State is the lifecycle state of an [Example].
type State int

const (
	Pending   State = iota // pending
	Running                // running
	Passed                 // passed
	Failed                 // failed
	Finalized              // finalized
)

// String returns the name of the [State].
func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Passed:
		return "passed"
	case Failed:
		return "failed"
	case Finalized:
		return "finalized"
	default:
		return "unknown"
	}
}
