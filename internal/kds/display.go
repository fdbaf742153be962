package kds

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/appetiteclub/kds/pkg/enums/ticketstatus"
	"github.com/aquamarinepk/aqm"
	"github.com/jonboulle/clockwork"
)

const DefaultWatchdogInterval = 5 * time.Minute

type Options struct {
	StoreID          string
	WatchdogInterval time.Duration
	Clock            clockwork.Clock
}

// Display keeps one store's kitchen board in sync. It seeds the store from
// the REST load, feeds it from the realtime channel, runs user commands and
// derives the slot plan.
type Display struct {
	store    *Store
	exec     *Executor
	api      TicketAPI
	channel  Channel
	notifier Notifier
	clock    clockwork.Clock
	logger   aqm.Logger

	storeID          string
	watchdogInterval time.Duration

	planMu  sync.Mutex
	planRev uint64
	plan    SlotPlan
	hasPlan bool

	watchMu   sync.Mutex
	stopWatch context.CancelFunc
	watchDone chan struct{}
	closeOnce sync.Once
}

func NewDisplay(store *Store, api TicketAPI, channel Channel, notifier Notifier, opts Options, logger aqm.Logger) *Display {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.WatchdogInterval <= 0 {
		opts.WatchdogInterval = DefaultWatchdogInterval
	}
	return &Display{
		store:            store,
		exec:             NewExecutor(store, api, channel, notifier, logger),
		api:              api,
		channel:          channel,
		notifier:         notifier,
		clock:            opts.Clock,
		logger:           logger,
		storeID:          opts.StoreID,
		watchdogInterval: opts.WatchdogInterval,
	}
}

// Start initializes the board for the configured store. A failed initial
// load is not fatal: the board stays up and recovers on refresh.
func (d *Display) Start(ctx context.Context) error {
	if err := d.Initialize(ctx, d.storeID); err != nil {
		if errors.Is(err, ErrNoStore) {
			return err
		}
		d.logger.Error("initial load failed", "store_id", d.storeID, "error", err)
	}
	return nil
}

func (d *Display) Stop(ctx context.Context) error {
	return d.Close()
}

// Initialize resets the state for storeID, loads the open tickets, connects
// the realtime channel and starts the watchdog. The channel and the watchdog
// are started even if the load fails; the load error is returned.
func (d *Display) Initialize(ctx context.Context, storeID string) error {
	if storeID == "" {
		return ErrNoStore
	}
	d.storeID = storeID
	d.logger.Info("initializing kitchen display", "store_id", storeID)

	d.store.Dispatch(ctx, Initialize{StoreID: storeID})
	d.store.Dispatch(ctx, SetLoading{Loading: true})
	defer d.store.Dispatch(ctx, SetLoading{Loading: false})

	tickets, loadErr := d.load(ctx)
	if loadErr != nil {
		d.store.Dispatch(ctx, SetError{Message: loadErr.Error()})
	} else {
		d.store.Dispatch(ctx, ReplaceAllTickets{Tickets: tickets, Now: d.clock.Now()})
	}

	if d.channel != nil {
		if err := d.channel.Connect(ctx, storeID, d); err != nil {
			d.logger.Error("cannot connect realtime channel", "store_id", storeID, "error", err)
			d.store.Dispatch(ctx, SetConnected{Connected: false})
		}
	}

	d.startWatchdog()

	if loadErr != nil {
		return loadErr
	}
	d.logger.Info("kitchen display ready", "store_id", storeID, "tickets", len(tickets))
	return nil
}

// Refresh reloads every ticket from the server. The held tickets are replaced
// only once the reload succeeded.
func (d *Display) Refresh(ctx context.Context) error {
	d.store.Dispatch(ctx, SetLoading{Loading: true})
	defer d.store.Dispatch(ctx, SetLoading{Loading: false})

	tickets, err := d.load(ctx)
	if err != nil {
		d.store.Dispatch(ctx, SetError{Message: err.Error()})
		return err
	}

	d.store.Dispatch(ctx, ClearTickets{})
	d.store.Dispatch(ctx, ReplaceAllTickets{Tickets: tickets, Now: d.clock.Now()})
	d.store.Dispatch(ctx, SetError{})
	d.logger.Info("kitchen display refreshed", "store_id", d.storeID, "tickets", len(tickets))
	return nil
}

// load fetches the store's tickets and drops finished tickets and tickets
// with nothing for the kitchen.
func (d *Display) load(ctx context.Context) ([]Ticket, error) {
	if d.api == nil {
		return nil, nil
	}
	all, err := d.api.LoadTickets(ctx, d.storeID)
	if err != nil {
		return nil, fmt.Errorf("cannot load tickets for store %s: %w", d.storeID, err)
	}

	kept := make([]Ticket, 0, len(all))
	for _, t := range all {
		if ticketstatus.IsFinished(t.Status) {
			d.logger.Debug("skipping finished ticket", "ticket_id", describe(t), "status", t.Status)
			continue
		}
		if !HasKitchenItems(t) {
			d.logger.Debug("skipping ticket without kitchen items", "ticket_id", describe(t))
			continue
		}
		t.Status = ticketstatus.Normalize(t.Status)
		kept = append(kept, t)
	}
	return kept, nil
}

func describe(t Ticket) string {
	if id, ok := CanonicalID(t.TicketRef); ok {
		return id
	}
	return "<none>"
}

func (d *Display) startWatchdog() {
	d.watchMu.Lock()
	defer d.watchMu.Unlock()

	d.stopWatchdogLocked()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	d.stopWatch = cancel
	d.watchDone = done

	ticker := d.clock.NewTicker(d.watchdogInterval)
	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.Chan():
				if d.store.Connected() {
					continue
				}
				d.logger.Info("realtime channel down, forcing refresh", "store_id", d.storeID)
				if err := d.Refresh(ctx); err != nil {
					d.logger.Error("watchdog refresh failed", "error", err)
				}
			}
		}
	}()
}

func (d *Display) stopWatchdogLocked() {
	if d.stopWatch == nil {
		return
	}
	d.stopWatch()
	<-d.watchDone
	d.stopWatch = nil
	d.watchDone = nil
}

// Close tears the board down: the watchdog stops, the channel closes and
// pending completions are awaited.
func (d *Display) Close() error {
	var err error
	d.closeOnce.Do(func() {
		d.watchMu.Lock()
		d.stopWatchdogLocked()
		d.watchMu.Unlock()

		if d.channel != nil {
			err = d.channel.Close()
		}
		d.exec.Wait()
		d.logger.Info("kitchen display closed", "store_id", d.storeID)
	})
	return err
}

// HandleEvent applies one canonical event from the realtime channel.
func (d *Display) HandleEvent(ctx context.Context, e Event) {
	d.logger.Debug("realtime event", "event", EventName(e))
	switch ev := e.(type) {
	case TicketCreated:
		d.onCreated(ctx, ev.Ticket)
	case TicketUpdated:
		d.onUpdated(ctx, ev)
	case TicketRemoved:
		d.onRemoved(ctx, ev.TicketID)
	case ItemStatusUpdated:
		d.onItemStatus(ctx, ev)
	default:
		d.logger.Info("ignoring unknown event", "type", fmt.Sprintf("%T", e))
	}
}

func (d *Display) SetConnected(connected bool) {
	d.store.Dispatch(context.Background(), SetConnected{Connected: connected})
	d.logger.Info("realtime connectivity changed", "connected", connected)
}

func (d *Display) onCreated(ctx context.Context, t Ticket) {
	if !HasKitchenItems(t) {
		d.logger.Debug("ignoring created ticket without kitchen items", "ticket_id", describe(t))
		return
	}

	now := d.clock.Now()
	t = PrepareCreated(t, now)
	id, t, ok := Normalize(t, now)
	if !ok {
		id, t = distinctSynthetic(id, t, d.store.State().Tickets)
		d.logger.Info("created ticket has no identifier, using synthetic id", "ticket_id", id)
	} else if key, _, held := d.store.Find(id); held {
		d.logger.Debug("created ticket already held, applying as update", "ticket_id", key)
		d.store.Dispatch(ctx, UpsertTicket{ID: key, Ticket: t})
		return
	}

	d.store.Dispatch(ctx, UpsertTicket{ID: id, Ticket: t})
	playCue(d.store, d.notifier, CueNewOrder)
}

func (d *Display) onUpdated(ctx context.Context, ev TicketUpdated) {
	id, ok := CanonicalID(ev.Ref)
	if !ok {
		d.logger.Info("dropping ticket update without identifier")
		return
	}

	key, held, found := d.findRef(ev.Ref)
	if !found {
		t := ev.Patch.Apply(Ticket{TicketRef: ev.Ref})
		t.Status = ticketstatus.Normalize(t.Status)
		d.store.Dispatch(ctx, UpsertTicket{ID: id, Ticket: t})
		return
	}

	if v := ev.Patch.Version; v != nil && *v < held.Version {
		d.logger.Debug("dropping stale ticket update", "ticket_id", key, "version", *v, "held_version", held.Version)
		return
	}
	d.store.Dispatch(ctx, PatchTicket{ID: key, Patch: ev.Patch})
}

func (d *Display) findRef(ref TicketRef) (string, Ticket, bool) {
	for _, id := range ref.ids() {
		if id.Empty() {
			continue
		}
		if key, t, ok := d.store.Find(id.String()); ok {
			return key, t, true
		}
	}
	return "", Ticket{}, false
}

func (d *Display) onRemoved(ctx context.Context, ticketID string) {
	key, _, ok := d.store.Find(ticketID)
	if !ok {
		key = ticketID
	}
	d.store.Dispatch(ctx, RemoveTicket{ID: key})
}

func (d *Display) onItemStatus(ctx context.Context, ev ItemStatusUpdated) {
	key, _, ok := d.store.Find(ev.TicketID)
	if !ok {
		d.logger.Debug("item update for ticket not held", "ticket_id", ev.TicketID, "item_id", ev.ItemID)
		return
	}

	if _, ok := d.store.Update(ctx, key, setItemStatus(ev.ItemID, ev.Status)); !ok {
		d.logger.Debug("item update for unknown item", "ticket_id", key, "item_id", ev.ItemID)
		return
	}
	d.exec.completeIfPlated(ctx, key)
}

// Slots returns the slot plan for the active tickets. The plan is recomputed
// only when the held tickets changed.
func (d *Display) Slots() SlotPlan {
	st := d.store.State()

	d.planMu.Lock()
	defer d.planMu.Unlock()
	if d.hasPlan && d.planRev == st.Revision {
		return d.plan
	}
	d.plan = PlanSlots(st.Active())
	d.planRev = st.Revision
	d.hasPlan = true
	return d.plan
}

func (d *Display) State() State {
	return d.store.State()
}

// CurrentTickets lists the tickets of the selected tab.
func (d *Display) CurrentTickets() []Entry {
	return Entries(d.store.State().Current())
}

func (d *Display) SwitchTab(ctx context.Context, tab Tab) {
	d.store.Dispatch(ctx, SetTab{Tab: tab})
}

// ToggleSound flips the sound flag and returns the new value.
func (d *Display) ToggleSound(ctx context.Context) bool {
	return d.store.Dispatch(ctx, ToggleSound{}).SoundEnabled
}

func (d *Display) StartCooking(ctx context.Context, ticketID string) error {
	return d.exec.StartCooking(ctx, ticketID)
}

func (d *Display) MarkComplete(ctx context.Context, ticketID string) error {
	return d.exec.MarkComplete(ctx, ticketID)
}

func (d *Display) PrintOrder(ctx context.Context, ticketID string) error {
	return d.exec.PrintOrder(ctx, ticketID)
}

func (d *Display) AdvanceItem(ctx context.Context, ticketID, itemID string) error {
	return d.exec.AdvanceItem(ctx, ticketID, itemID)
}
