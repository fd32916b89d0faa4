package domain

import (
	"errors"
	"fmt"
	"time"
)

const SchemaVersion = 1

var ErrIllegalTransition = errors.New("illegal export state transition")

type State string

const (
	StatePlanning   State = "planning"
	StateConverting State = "converting"
	StateMerging    State = "merging"
	StateWriting    State = "writing"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

var transitions = map[State][]State{
	StatePlanning:   {StateConverting, StateFailed},
	StateConverting: {StateMerging, StateFailed},
	StateMerging:    {StateWriting, StateFailed},
	StateWriting:    {StateDone, StateFailed},
}

func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

func (s State) CanAdvance(to State) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Run is the persisted record of one export. Counts are filled as the run
// progresses and are final once State is terminal.
type Run struct {
	SchemaVersion int       `json:"schema_version"`
	ID            string    `json:"id"`
	TopicID       string    `json:"topic_id,omitempty"`
	TopicName     string    `json:"topic_name,omitempty"`
	Filter        string    `json:"filter"`
	State         State     `json:"state"`
	OutputPath    string    `json:"output_path,omitempty"`
	Documents     int       `json:"documents"`
	Succeeded     int       `json:"succeeded"`
	Skipped       int       `json:"skipped"`
	Pages         int       `json:"pages"`
	Reason        string    `json:"reason,omitempty"`
	StartedAt     time.Time `json:"started_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func NewRun(id, filter string, at time.Time) Run {
	return Run{
		SchemaVersion: SchemaVersion,
		ID:            id,
		Filter:        filter,
		State:         StatePlanning,
		StartedAt:     at,
		UpdatedAt:     at,
	}
}

func (r *Run) Advance(to State, at time.Time) error {
	if !r.State.CanAdvance(to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, r.State, to)
	}
	r.State = to
	r.UpdatedAt = at
	return nil
}

// Fail moves the run to Failed and records cause as its reason.
func (r *Run) Fail(cause error, at time.Time) error {
	if err := r.Advance(StateFailed, at); err != nil {
		return err
	}
	r.Reason = cause.Error()
	return nil
}
