package kds

import (
	"context"
	"sync"
)

// FailurePolicy decides what happens to an optimistic change when the server
// does not confirm it.
type FailurePolicy int

const (
	// RevertOnFailure restores the snapshot taken before the change.
	RevertOnFailure FailurePolicy = iota
	// KeepOnFailure leaves the local change in place and only logs.
	KeepOnFailure
)

func (p FailurePolicy) String() string {
	switch p {
	case RevertOnFailure:
		return "revert"
	case KeepOnFailure:
		return "keep"
	}
	return "unknown"
}

// Optimistic describes a local change backed by a remote confirmation. Run
// goes through three phases: Snapshot captures a restore step, Apply changes
// local state, Confirm calls the server. Any phase may be nil.
type Optimistic struct {
	Name     string
	Policy   FailurePolicy
	Snapshot func() (restore func())
	Apply    func()
	Confirm  func(ctx context.Context) error
	// Async runs Confirm in the background after Apply.
	Async bool
}

func (o Optimistic) prepare() (restore func()) {
	if o.Snapshot != nil {
		restore = o.Snapshot()
	}
	if o.Apply != nil {
		o.Apply()
	}
	return restore
}

func (o Optimistic) confirm(ctx context.Context, restore func()) error {
	if o.Confirm == nil {
		return nil
	}
	err := o.Confirm(ctx)
	if err != nil && o.Policy == RevertOnFailure && restore != nil {
		restore()
	}
	return err
}

// inFlight is the set of ticket ids with a command awaiting confirmation.
type inFlight struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func newInFlight() *inFlight {
	return &inFlight{ids: make(map[string]struct{})}
}

// acquire marks id as busy and reports false if it already was.
func (f *inFlight) acquire(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, busy := f.ids[id]; busy {
		return false
	}
	f.ids[id] = struct{}{}
	return true
}

func (f *inFlight) release(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.ids, id)
}

func (f *inFlight) has(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, busy := f.ids[id]
	return busy
}
