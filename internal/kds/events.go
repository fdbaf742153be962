package kds

// Event is one of the four canonical inbound ticket events. Every wire shape
// the server emits is converted to one of these before it reaches the store.
type Event interface {
	eventName() string
}

// TicketCreated announces a new ticket. The ticket is not yet filtered or
// defaulted.
type TicketCreated struct {
	Ticket Ticket
}

// TicketUpdated changes fields of a ticket identified by Ref.
type TicketUpdated struct {
	Ref   TicketRef
	Patch TicketPatch
}

// TicketRemoved takes a ticket off the board, whether it was hidden,
// completed on the server or canceled.
type TicketRemoved struct {
	TicketID string
}

// ItemStatusUpdated changes the status of one item of a held ticket.
type ItemStatusUpdated struct {
	TicketID string
	ItemID   string
	Status   string
}

func (TicketCreated) eventName() string     { return "ticket.created" }
func (TicketUpdated) eventName() string     { return "ticket.updated" }
func (TicketRemoved) eventName() string     { return "ticket.removed" }
func (ItemStatusUpdated) eventName() string { return "item.status_updated" }

// EventName returns a stable name for logging.
func EventName(e Event) string {
	if e == nil {
		return ""
	}
	return e.eventName()
}
