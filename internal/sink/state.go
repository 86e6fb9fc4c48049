package sink

import (
	"fmt"

	"firestige.xyz/pcapreport/internal/core"
)

// State tracks where a sink is in its Open, Write, Finalize lifecycle.
type State int

const (
	StateNew State = iota
	StateOpen
	StateFinalized
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateOpen:
		return "open"
	case StateFinalized:
		return "finalized"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Expect returns core.ErrSinkState unless the sink is in want.
func (s State) Expect(want State, op string) error {
	if s != want {
		return fmt.Errorf("%w: %s while %s", core.ErrSinkState, op, s)
	}
	return nil
}
