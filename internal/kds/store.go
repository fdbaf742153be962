package kds

import (
	"context"
	"sync"

	"github.com/aquamarinepk/aqm"
)

// Store owns the board state. Commands are applied one at a time in the
// order Dispatch is called.
type Store struct {
	mu     sync.RWMutex
	state  State
	prefs  Preferences
	logger aqm.Logger

	// soundMu orders sound toggles with their writes to prefs.
	soundMu sync.Mutex
}

func NewStore(prefs Preferences, logger aqm.Logger) *Store {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Store{
		state:  NewState(),
		prefs:  prefs,
		logger: logger,
	}
}

// Dispatch applies cmd and returns the resulting state. Initialize restores
// the sound preference before it is applied and ToggleSound persists the new
// value afterwards.
func (s *Store) Dispatch(ctx context.Context, cmd Command) State {
	if ic, ok := cmd.(Initialize); ok {
		ic.SoundEnabled = s.restoreSound(ctx)
		cmd = ic
	}

	_, toggle := cmd.(ToggleSound)
	if toggle {
		s.soundMu.Lock()
		defer s.soundMu.Unlock()
	}

	s.mu.Lock()
	s.state = Reduce(s.state, cmd)
	next := s.state
	s.mu.Unlock()

	if toggle {
		s.persistSound(ctx, next.SoundEnabled)
	}

	s.logger.Debug("state transition", "command", cmd.commandName(), "revision", next.Revision)
	return next
}

// Update reads the ticket held under key and applies the patch fn derives
// from it, both under the store lock. It reports false when the ticket is not
// held or fn declines.
func (s *Store) Update(ctx context.Context, key string, fn func(Ticket) (TicketPatch, bool)) (State, bool) {
	s.mu.Lock()
	held, ok := s.state.Tickets[key]
	if !ok {
		next := s.state
		s.mu.Unlock()
		return next, false
	}
	patch, ok := fn(held.Clone())
	if !ok {
		next := s.state
		s.mu.Unlock()
		return next, false
	}
	cmd := PatchTicket{ID: key, Patch: patch}
	s.state = Reduce(s.state, cmd)
	next := s.state
	s.mu.Unlock()

	s.logger.Debug("state transition", "command", cmd.commandName(), "revision", next.Revision)
	return next, true
}

func (s *Store) restoreSound(ctx context.Context) bool {
	if s.prefs == nil {
		return true
	}
	disabled, err := s.prefs.SoundDisabled(ctx)
	if err != nil {
		s.logger.Info("cannot read sound preference", "error", err)
		return true
	}
	return !disabled
}

func (s *Store) persistSound(ctx context.Context, enabled bool) {
	if s.prefs == nil {
		return
	}
	if err := s.prefs.SetSoundDisabled(ctx, !enabled); err != nil {
		s.logger.Errorf("cannot persist sound preference: %v", err)
	}
}

// State returns the current state. The returned value is never mutated by
// later transitions.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Store) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Connected
}

// Find locates a held ticket by any of its identifiers and returns the key it
// is held under.
func (s *Store) Find(id string) (string, Ticket, bool) {
	s.mu.RLock()
	tickets := s.state.Tickets
	s.mu.RUnlock()

	key, t, ok := FindByAnyID(tickets, id)
	if !ok {
		return "", Ticket{}, false
	}
	return key, t.Clone(), true
}
