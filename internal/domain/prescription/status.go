package prescription

type Status string

const (
	StatusActive    Status = "active"
	StatusFilled    Status = "filled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

var transitions = map[Status][]Status{
	StatusActive: {StatusFilled, StatusCancelled},
	StatusFilled: {StatusCompleted},
}

// CanTransition reports whether a prescription may move from one status to
// another. Only an active prescription can be cancelled.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
