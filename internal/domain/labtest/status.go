package labtest

type Status string

const (
	StatusOrdered         Status = "ordered"
	StatusSampleCollected Status = "sample_collected"
	StatusInProgress      Status = "in_progress"
	StatusCompleted       Status = "completed"
	StatusCancelled       Status = "cancelled"
)

var transitions = map[Status][]Status{
	StatusOrdered:         {StatusSampleCollected, StatusCancelled},
	StatusSampleCollected: {StatusInProgress, StatusCancelled},
	StatusInProgress:      {StatusCompleted, StatusCancelled},
}

// CanTransition reports whether a lab test may move from one status to
// another. The pipeline only moves forward and completed/cancelled are final.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Open reports whether the test still needs work from the lab.
func (s Status) Open() bool {
	_, ok := transitions[s]
	return ok
}
