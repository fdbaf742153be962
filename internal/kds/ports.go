package kds

import (
	"context"
)

// TicketAPI is the remote REST surface the display depends on. Every command
// call returns ErrCommandRejected (wrapped) when the server answers with
// success=false.
type TicketAPI interface {
	LoadTickets(ctx context.Context, storeID string) ([]Ticket, error)
	StartCooking(ctx context.Context, ticketID string) error
	Complete(ctx context.Context, ticketID string) error
	Print(ctx context.Context, ticketID string) error
	UpdateItemStatus(ctx context.Context, itemID, status string) error
}

// EventSink receives canonical events and connectivity changes from a
// realtime channel.
type EventSink interface {
	HandleEvent(ctx context.Context, e Event)
	SetConnected(connected bool)
}

// Channel is a store-scoped duplex connection to the server.
type Channel interface {
	Connect(ctx context.Context, storeID string, sink EventSink) error
	Connected() bool
	RequestSync(ctx context.Context) error
	SendItemStatus(ctx context.Context, itemID, status string) error
	SendTicketStatus(ctx context.Context, ticketID, next string, ifVersion int) error
	Close() error
}

// Preferences persists client-side settings across sessions.
type Preferences interface {
	SoundDisabled(ctx context.Context) (bool, error)
	SetSoundDisabled(ctx context.Context, disabled bool) error
}
