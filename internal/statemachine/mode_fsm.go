package statemachine

import (
	"context"
	"fmt"
	"sync"

	"github.com/looplab/fsm"
	"github.com/sjperalta/komplek-api/internal/models"
)

// Mode events
const (
	EventFallback = "fallback"
	EventReset    = "reset"
)

// ModeFSM tracks whether dues operations go to the remote service or stay local.
// remote → local happens on the first remote failure; only an explicit reset goes back.
type ModeFSM struct {
	mu  sync.Mutex
	fsm *fsm.FSM
}

// NewModeFSM creates the mode machine in the given initial mode
func NewModeFSM(initial string) *ModeFSM {
	if initial != models.DuesModeLocal {
		initial = models.DuesModeRemote
	}
	return &ModeFSM{
		fsm: fsm.NewFSM(
			initial,
			fsm.Events{
				// remote → local (terminal until reset)
				{Name: EventFallback, Src: []string{models.DuesModeRemote}, Dst: models.DuesModeLocal},

				// local → remote (external reset)
				{Name: EventReset, Src: []string{models.DuesModeLocal}, Dst: models.DuesModeRemote},
			},
			fsm.Callbacks{},
		),
	}
}

// Fallback switches to local mode. It returns false when already local.
func (m *ModeFSM) Fallback(ctx context.Context) (bool, error) {
	return m.fire(ctx, EventFallback)
}

// Reset switches back to remote mode. It returns false when already remote.
func (m *ModeFSM) Reset(ctx context.Context) (bool, error) {
	return m.fire(ctx, EventReset)
}

func (m *ModeFSM) fire(ctx context.Context, event string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.fsm.Can(event) {
		return false, nil
	}
	if err := m.fsm.Event(ctx, event); err != nil {
		return false, fmt.Errorf("failed to %s dues mode: %w", event, err)
	}
	return true, nil
}

// Current returns the current mode
func (m *ModeFSM) Current() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fsm.Current()
}

// IsLocal reports whether the machine is in local mode
func (m *ModeFSM) IsLocal() bool {
	return m.Current() == models.DuesModeLocal
}
