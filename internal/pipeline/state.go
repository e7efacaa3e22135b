package pipeline

import "encoding/json"

// State is the position of a run in the linear stage sequence.
type State int

const (
	StateIdle State = iota
	StateResolving
	StateFetching
	StateExtracting
	StateTranscribing
	StateDone
	StateFailed
)

var stateNames = [...]string{"idle", "resolving", "fetching", "extracting", "transcribing", "done", "failed"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether no further transition can happen.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}
