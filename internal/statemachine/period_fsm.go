package statemachine

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"
	"github.com/sjperalta/komplek-api/internal/models"
)

// Period states and events
const (
	PeriodStateOpen   = "open"
	PeriodStateClosed = "closed"

	EventClose  = "close"
	EventReopen = "reopen"
)

// PeriodFSM wraps a dues config with its open/closed state machine
type PeriodFSM struct {
	config *models.DuesConfig
	fsm    *fsm.FSM
}

// NewPeriodFSM creates a state machine positioned at the config's current state
func NewPeriodFSM(config *models.DuesConfig) *PeriodFSM {
	initial := PeriodStateOpen
	if config.Closed {
		initial = PeriodStateClosed
	}

	pfsm := &PeriodFSM{config: config}
	pfsm.fsm = fsm.NewFSM(
		initial,
		fsm.Events{
			// open → closed (every active resident paid)
			{Name: EventClose, Src: []string{PeriodStateOpen}, Dst: PeriodStateClosed},

			// closed → open (derived policy only)
			{Name: EventReopen, Src: []string{PeriodStateClosed}, Dst: PeriodStateOpen},
		},
		fsm.Callbacks{},
	)
	return pfsm
}

// Close transitions the period to closed
func (p *PeriodFSM) Close(ctx context.Context) error {
	if err := p.fsm.Event(ctx, EventClose); err != nil {
		return fmt.Errorf("failed to close period: %w", err)
	}
	p.config.Closed = true
	return nil
}

// Reopen transitions the period back to open
func (p *PeriodFSM) Reopen(ctx context.Context) error {
	if err := p.fsm.Event(ctx, EventReopen); err != nil {
		return fmt.Errorf("failed to reopen period: %w", err)
	}
	p.config.Closed = false
	return nil
}

// Current returns the current state
func (p *PeriodFSM) Current() string {
	return p.fsm.Current()
}

// Can checks if a transition is possible
func (p *PeriodFSM) Can(event string) bool {
	return p.fsm.Can(event)
}
