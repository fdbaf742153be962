package wire

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/appetiteclub/kds/internal/kds"
	"github.com/appetiteclub/kds/pkg/enums/itemstatus"
	"github.com/appetiteclub/kds/pkg/enums/ticketstatus"
)

var ErrUnknownEvent = errors.New("unknown event")

// Names of the inbound envelopes the server emits.
const (
	EventKDSUpdate       = "kds-update"
	EventTicketCreated   = "ticket.created"
	EventTicketUpdated   = "ticket.updated"
	EventTicketHidden    = "ticket.hidden"
	EventTicketCompleted = "ticket.completed"
	EventTicketModified  = "ticket-modified"
	EventTicketCanceled  = "ticket-canceled"
	EventItemUpdated     = "item.updated"
)

// Sub-types carried by a kds-update envelope.
const (
	UpdateItemStatus     = "item-status-update"
	UpdateNewOrder       = "new-order"
	UpdateCookingStarted = "ticket_cooking_started"
	UpdateTicketComplete = "ticket_completed"
	UpdateOrderComplete  = "order-complete"

	sourceDBTrigger = "db_trigger"
)

// Envelope is one inbound realtime message.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type kdsUpdate struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// reference carries the identifiers events use to point at a ticket or item,
// in both naming styles.
type reference struct {
	TicketID      kds.ID          `json:"ticket_id"`
	TicketIDCamel kds.ID          `json:"ticketId"`
	ItemID        kds.ID          `json:"item_id"`
	ItemIDCamel   kds.ID          `json:"itemId"`
	Status        string          `json:"status"`
	ItemStatus    string          `json:"item_status"`
	Source        string          `json:"source"`
	Ticket        json.RawMessage `json:"ticket"`
}

func (r reference) ticketID() string {
	if !r.TicketID.Empty() {
		return r.TicketID.String()
	}
	return r.TicketIDCamel.String()
}

func (r reference) itemID() string {
	if !r.ItemID.Empty() {
		return r.ItemID.String()
	}
	return r.ItemIDCamel.String()
}

func (r reference) status() string {
	if r.Status != "" {
		return r.Status
	}
	return r.ItemStatus
}

func (r reference) hasTicket() bool {
	s := strings.TrimSpace(string(r.Ticket))
	return s != "" && s != "null"
}

// Decode parses a raw message and normalizes it.
func Decode(data []byte) (kds.Event, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("cannot decode envelope: %w", err)
	}
	return Normalize(env)
}

// Normalize converts one envelope into a canonical event. A nil event with a
// nil error means the envelope is valid but carries nothing to apply.
func Normalize(env Envelope) (kds.Event, error) {
	switch env.Event {
	case EventKDSUpdate:
		var u kdsUpdate
		if err := json.Unmarshal(env.Data, &u); err != nil {
			return nil, fmt.Errorf("cannot decode %s: %w", env.Event, err)
		}
		return normalizeUpdate(u)
	case EventTicketCreated:
		return created(env.Data)
	case EventTicketUpdated:
		return updated(env.Data)
	case EventTicketHidden, EventTicketCompleted, EventTicketCanceled:
		return removed(env.Data)
	case EventTicketModified:
		return modified(env.Data)
	case EventItemUpdated:
		return itemUpdated(env.Data)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, env.Event)
}

func normalizeUpdate(u kdsUpdate) (kds.Event, error) {
	var ref reference
	if len(u.Data) > 0 {
		if err := json.Unmarshal(u.Data, &ref); err != nil {
			return nil, fmt.Errorf("cannot decode %s payload: %w", u.Type, err)
		}
	}

	if ref.Source == sourceDBTrigger {
		if u.Type == UpdateNewOrder {
			return created(u.Data)
		}
		return nil, nil
	}

	switch u.Type {
	case UpdateItemStatus:
		return itemUpdated(u.Data)
	case UpdateNewOrder:
		return created(u.Data)
	case UpdateCookingStarted:
		return cookingStarted(ref)
	case UpdateTicketComplete:
		return removed(u.Data)
	case UpdateOrderComplete:
		return updated(u.Data)
	}
	return nil, fmt.Errorf("%w: %s/%q", ErrUnknownEvent, EventKDSUpdate, u.Type)
}

func decodeTicket(data []byte) (Ticket, error) {
	var t Ticket
	if err := json.Unmarshal(data, &t); err != nil {
		return Ticket{}, fmt.Errorf("cannot decode ticket: %w", err)
	}
	return t, nil
}

func created(data []byte) (kds.Event, error) {
	t, err := decodeTicket(data)
	if err != nil {
		return nil, err
	}
	return kds.TicketCreated{Ticket: t.ToTicket()}, nil
}

func updated(data []byte) (kds.Event, error) {
	t, err := decodeTicket(data)
	if err != nil {
		return nil, err
	}
	return kds.TicketUpdated{Ref: t.Ref(), Patch: t.Patch()}, nil
}

func decodeRef(data []byte) (reference, error) {
	var ref reference
	if err := json.Unmarshal(data, &ref); err != nil {
		return reference{}, fmt.Errorf("cannot decode reference: %w", err)
	}
	return ref, nil
}

func removed(data []byte) (kds.Event, error) {
	ref, err := decodeRef(data)
	if err != nil {
		return nil, err
	}
	id := ref.ticketID()
	if id == "" {
		return nil, nil
	}
	return kds.TicketRemoved{TicketID: id}, nil
}

func modified(data []byte) (kds.Event, error) {
	ref, err := decodeRef(data)
	if err != nil {
		return nil, err
	}
	if ref.ticketID() == "" || !ref.hasTicket() {
		return nil, nil
	}
	t, err := decodeTicket(ref.Ticket)
	if err != nil {
		return nil, err
	}
	if _, ok := kds.CanonicalID(t.Ref()); !ok {
		t.TicketID = kds.ID(ref.ticketID())
	}
	return kds.TicketUpdated{Ref: t.Ref(), Patch: t.Patch()}, nil
}

func cookingStarted(ref reference) (kds.Event, error) {
	if ref.hasTicket() {
		return updated(ref.Ticket)
	}
	id := ref.ticketID()
	if id == "" {
		return nil, nil
	}
	cooking := ticketstatus.Statuses.Cooking.Code()
	itemCooking := itemstatus.Statuses.Cooking.Code()
	return kds.TicketUpdated{
		Ref:   kds.TicketRef{TicketID: kds.ID(id)},
		Patch: kds.TicketPatch{Status: &cooking, ItemStatus: &itemCooking},
	}, nil
}

func itemUpdated(data []byte) (kds.Event, error) {
	ref, err := decodeRef(data)
	if err != nil {
		return nil, err
	}
	ticketID, itemID, status := ref.ticketID(), ref.itemID(), ref.status()
	if ticketID == "" || itemID == "" || status == "" {
		return nil, nil
	}
	return kds.ItemStatusUpdated{TicketID: ticketID, ItemID: itemID, Status: status}, nil
}
