package state

// JobState is the lifecycle position of a single queue entry.
type JobState string

const (
	StateReserved JobState = "reserved"
	StateFinished JobState = "finished"
	StateBuried   JobState = "buried"
	StateRequeued JobState = "requeued"
)

func (s JobState) String() string {
	return string(s)
}

// Terminal reports whether the entry is gone from normal consumption.
// A requeued entry is also gone, but its task lives on in a new entry.
func (s JobState) Terminal() bool {
	return s == StateFinished || s == StateBuried
}

var AllStates = []JobState{
	StateReserved,
	StateFinished,
	StateBuried,
	StateRequeued,
}

type Transition struct {
	From JobState
	To   JobState
}

var ValidTransitions = []Transition{
	{From: StateReserved, To: StateFinished},
	{From: StateReserved, To: StateBuried},
	{From: StateReserved, To: StateRequeued},
	// the requeued task is reserved again under a new handle
	{From: StateRequeued, To: StateReserved},
}

func IsValidTransition(from, to JobState) bool {
	for _, t := range ValidTransitions {
		if t.From == from && t.To == to {
			return true
		}
	}
	return false
}
