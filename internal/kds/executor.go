package kds

import (
	"context"
	"fmt"
	"sync"

	"github.com/appetiteclub/kds/pkg/enums/itemstatus"
	"github.com/appetiteclub/kds/pkg/enums/ticketstatus"
	"github.com/aquamarinepk/aqm"
)

// Executor runs the user-triggered ticket commands. Commands are never
// retried.
type Executor struct {
	store    *Store
	api      TicketAPI
	channel  Channel
	notifier Notifier
	logger   aqm.Logger

	inFlight *inFlight
	pending  sync.WaitGroup
}

func NewExecutor(store *Store, api TicketAPI, channel Channel, notifier Notifier, logger aqm.Logger) *Executor {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Executor{
		store:    store,
		api:      api,
		channel:  channel,
		notifier: notifier,
		logger:   logger,
		inFlight: newInFlight(),
	}
}

func (e *Executor) run(ctx context.Context, op Optimistic) error {
	restore := op.prepare()
	if !op.Async {
		return op.confirm(ctx, restore)
	}

	bg := context.WithoutCancel(ctx)
	e.pending.Add(1)
	go func() {
		defer e.pending.Done()
		if err := op.confirm(bg, restore); err != nil {
			e.logger.Info("background confirmation failed", "command", op.Name, "policy", op.Policy.String(), "error", err)
		}
	}()
	return nil
}

// Wait blocks until every background confirmation has finished.
func (e *Executor) Wait() {
	e.pending.Wait()
}

// StartCooking moves a ticket and all its items to COOKING before the server
// confirms. A rejected call restores the previous statuses unless a newer
// server version of the ticket arrived meanwhile. A second call for a ticket
// that is still being started is ignored.
func (e *Executor) StartCooking(ctx context.Context, ticketID string) error {
	key, held, ok := e.store.Find(ticketID)
	if !ok {
		err := fmt.Errorf("cannot start cooking %s: %w", ticketID, ErrTicketNotFound)
		e.surface(ctx, err)
		return err
	}

	// Guarded on the held key so aliases of one ticket share the guard.
	if !e.inFlight.acquire(key) {
		e.logger.Info("start cooking already in progress", "ticket_id", key, "requested_as", ticketID)
		return nil
	}
	defer e.inFlight.release(key)

	cooking := ticketstatus.Statuses.Cooking.Code()
	itemCooking := itemstatus.Statuses.Cooking.Code()

	op := Optimistic{
		Name:   "start_cooking",
		Policy: RevertOnFailure,
		Snapshot: func() func() {
			original := held.Clone()
			return func() { e.revert(ctx, key, original) }
		},
		Apply: func() {
			e.store.Dispatch(ctx, PatchTicket{ID: key, Patch: TicketPatch{Status: &cooking, ItemStatus: &itemCooking}})
		},
		Confirm: func(ctx context.Context) error {
			return e.api.StartCooking(ctx, key)
		},
	}

	if err := e.run(ctx, op); err != nil {
		err = fmt.Errorf("cannot start cooking %s: %w", key, err)
		e.surface(ctx, err)
		return err
	}

	e.logger.Info("cooking started", "ticket_id", key)
	playCue(e.store, e.notifier, CueItemComplete)
	return nil
}

func (e *Executor) revert(ctx context.Context, key string, original Ticket) {
	current, ok := e.store.State().Tickets[key]
	if !ok {
		e.logger.Info("ticket gone before rollback", "ticket_id", key)
		return
	}
	if current.Version != original.Version {
		e.logger.Info("newer server version held, skipping rollback", "ticket_id", key,
			"held_version", current.Version, "snapshot_version", original.Version)
		return
	}

	items := original.Items
	if items == nil {
		items = []OrderItem{}
	}
	e.store.Dispatch(ctx, PatchTicket{ID: key, Patch: TicketPatch{Status: &original.Status, Items: items}})
}

// MarkComplete removes the ticket at once and tells the server in the
// background. A server failure is logged and the removal stands.
func (e *Executor) MarkComplete(ctx context.Context, ticketID string) error {
	key, _, ok := e.store.Find(ticketID)
	if !ok {
		key = ticketID
	}

	op := Optimistic{
		Name:   "mark_complete",
		Policy: KeepOnFailure,
		Async:  true,
		Apply: func() {
			playCue(e.store, e.notifier, CueOrderComplete)
			e.store.Dispatch(ctx, RemoveTicket{ID: key})
		},
		Confirm: func(ctx context.Context) error {
			if err := e.api.Complete(ctx, key); err != nil {
				return err
			}
			e.logger.Info("completion confirmed", "ticket_id", key)
			return nil
		},
	}
	return e.run(ctx, op)
}

// PrintOrder asks the server to print the ticket. Nothing changes locally.
func (e *Executor) PrintOrder(ctx context.Context, ticketID string) error {
	key, _, ok := e.store.Find(ticketID)
	if !ok {
		key = ticketID
	}

	op := Optimistic{
		Name:   "print_order",
		Policy: KeepOnFailure,
		Confirm: func(ctx context.Context) error {
			return e.api.Print(ctx, key)
		},
	}
	if err := e.run(ctx, op); err != nil {
		err = fmt.Errorf("cannot print %s: %w", key, err)
		e.surface(ctx, err)
		return err
	}

	playCue(e.store, e.notifier, CuePrint)
	return nil
}

// AdvanceItem moves one item to its next preparation status. The change goes
// over the realtime channel when it is up and the server echoes it back;
// otherwise it is sent over REST and applied locally once accepted.
func (e *Executor) AdvanceItem(ctx context.Context, ticketID, itemID string) error {
	key, held, ok := e.store.Find(ticketID)
	if !ok {
		return fmt.Errorf("cannot advance item %s: %w", itemID, ErrTicketNotFound)
	}

	idx := -1
	for i, item := range held.Items {
		if item.ID.String() == itemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("cannot advance item %s on %s: %w", itemID, key, ErrItemNotFound)
	}

	next, ok := itemstatus.Next(held.Items[idx].Status)
	if !ok {
		e.logger.Debug("item has no next status", "ticket_id", key, "item_id", itemID, "status", held.Items[idx].Status)
		return nil
	}

	if e.channel != nil && e.channel.Connected() {
		if err := e.channel.SendItemStatus(ctx, itemID, next.Code()); err != nil {
			err = fmt.Errorf("cannot advance item %s: %w", itemID, err)
			e.surface(ctx, err)
			return err
		}
		return nil
	}

	if err := e.api.UpdateItemStatus(ctx, itemID, next.Code()); err != nil {
		err = fmt.Errorf("cannot advance item %s: %w", itemID, err)
		e.surface(ctx, err)
		return err
	}

	if _, ok := e.store.Update(ctx, key, setItemStatus(itemID, next.Code())); !ok {
		e.logger.Debug("item gone before local update", "ticket_id", key, "item_id", itemID)
		return nil
	}
	e.completeIfPlated(ctx, key)
	return nil
}

// setItemStatus returns an update that sets itemID to status on the held
// ticket. It reports false when the ticket has no such item.
func setItemStatus(itemID, status string) func(Ticket) (TicketPatch, bool) {
	return func(t Ticket) (TicketPatch, bool) {
		items := t.Clone().Items
		matched := false
		for i := range items {
			if items[i].ID.String() == itemID {
				items[i].Status = status
				matched = true
			}
		}
		if !matched {
			return TicketPatch{}, false
		}
		return TicketPatch{Items: items}, true
	}
}

// completeIfPlated asks the server to complete a ticket once every item is
// ready or served. The held version is sent as a precondition.
func (e *Executor) completeIfPlated(ctx context.Context, key string) {
	t, ok := e.store.State().Tickets[key]
	if !ok || len(t.Items) == 0 || ticketstatus.IsFinished(t.Status) {
		return
	}
	for _, item := range t.Items {
		if !itemstatus.Plated(item.Status) {
			return
		}
	}

	if e.channel == nil || !e.channel.Connected() {
		e.logger.Debug("all items plated but channel is down", "ticket_id", key)
		return
	}

	next := ticketstatus.Statuses.Completed.Code()
	if err := e.channel.SendTicketStatus(ctx, key, next, t.Version); err != nil {
		e.logger.Info("cannot request ticket completion", "ticket_id", key, "error", err)
		return
	}
	e.logger.Info("all items plated, completion requested", "ticket_id", key, "version", t.Version)
}

func (e *Executor) surface(ctx context.Context, err error) {
	e.logger.Error("command failed", "error", err)
	e.store.Dispatch(ctx, SetError{Message: err.Error()})
}
