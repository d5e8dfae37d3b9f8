package exchange

import (
	"fmt"

	"assistui/model"
)

// State is a step of an exchange's lifecycle.
//
//	atomic:      Idle -> AwaitingResponse -> Applied|Failed -> Idle
//	incremental: Idle -> AwaitingFirstByte -> Streaming -> Completed|Failed -> Idle
//
// Failed can follow any non-terminal state. Skipped is used when the input
// was empty and nothing happened.
type State int

const (
	StateIdle State = iota
	StateSkipped
	StateAwaitingResponse
	StateApplied
	StateAwaitingFirstByte
	StateStreaming
	StateCompleted
	StateFailed
)

var stateNames = map[State]string{
	StateIdle:              "idle",
	StateSkipped:           "skipped",
	StateAwaitingResponse:  "awaiting_response",
	StateApplied:           "applied",
	StateAwaitingFirstByte: "awaiting_first_byte",
	StateStreaming:         "streaming",
	StateCompleted:         "completed",
	StateFailed:            "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Terminal reports whether s ends an exchange.
func (s State) Terminal() bool {
	return s == StateApplied || s == StateCompleted || s == StateFailed || s == StateSkipped
}

// Outcome reports what one Send did.
type Outcome struct {
	ExchangeID string
	Mode       model.Mode
	State      State   // terminal state reached
	Trace      []State // every state entered, starting and ending with Idle
	Fragments  int     // text fragments applied (incremental only)
	Skipped    int     // malformed stream lines dropped (incremental only)
	Err        error   // ErrEmptyInput, or the failure behind StateFailed
}

// OK reports whether the reply was applied.
func (o Outcome) OK() bool {
	return o.State == StateApplied || o.State == StateCompleted
}

// progress records an exchange as it moves through its states.
type progress struct {
	trace     []State
	fragments int
	skipped   int
}

func newProgress() *progress {
	return &progress{trace: []State{StateIdle}}
}

func (p *progress) enter(s State) {
	p.trace = append(p.trace, s)
}

func (p *progress) current() State {
	return p.trace[len(p.trace)-1]
}
