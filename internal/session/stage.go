package session

import (
	"errors"
	"fmt"
)

// Stage is where a visitor is in the purchase cycle.
type Stage string

const (
	StageNone           Stage = "none"
	StageOpen           Stage = "open"
	StagePendingPayment Stage = "pending-payment"
)

type Event string

const (
	EventAdd      Event = "add"
	EventCheckout Event = "checkout"
	EventComplete Event = "complete"
	EventCancel   Event = "cancel"
)

var ErrInvalidTransition = errors.New("invalid basket stage transition")

var transitions = map[Stage]map[Event]Stage{
	StageNone: {
		EventAdd:      StageOpen,
		EventComplete: StageNone,
		EventCancel:   StageNone,
	},
	StageOpen: {
		EventAdd:      StageOpen,
		EventCheckout: StagePendingPayment,
		EventComplete: StageNone,
		EventCancel:   StageNone,
	},
	StagePendingPayment: {
		EventAdd:      StageOpen,
		EventCheckout: StagePendingPayment,
		EventComplete: StageNone,
		EventCancel:   StageNone,
	},
}

// Next returns the stage reached from s on e.
func (s Stage) Next(e Event) (Stage, error) {
	next, ok := transitions[s][e]
	if !ok {
		return s, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, s, e)
	}
	return next, nil
}

// IsTerminal reports whether the purchase cycle is over.
func (s Stage) IsTerminal() bool {
	return s == StageNone
}
