package kds

import (
	"sort"
	"strings"
	"time"

	"github.com/appetiteclub/kds/pkg/enums/ticketstatus"
)

type Tab string

const (
	TabActive    Tab = "active"
	TabCompleted Tab = "completed"
)

// ParseTab accepts "active" or "completed" in any case.
func ParseTab(raw string) (Tab, bool) {
	switch Tab(strings.ToLower(strings.TrimSpace(raw))) {
	case TabActive:
		return TabActive, true
	case TabCompleted:
		return TabCompleted, true
	}
	return "", false
}

// State is the in-memory view of one store's kitchen board. The ticket map is
// never mutated in place: every transition that changes it builds a new map,
// so a State value handed out by the store stays valid.
type State struct {
	StoreID      string
	Tickets      map[string]Ticket
	Tab          Tab
	Connected    bool
	SoundEnabled bool
	Loading      bool
	Error        string
	// Revision increases on every change to the ticket map.
	Revision uint64
}

func NewState() State {
	return State{
		Tickets:      map[string]Ticket{},
		Tab:          TabActive,
		SoundEnabled: true,
	}
}

// Command is one of the closed set of state transitions.
type Command interface {
	commandName() string
}

type (
	Initialize struct {
		StoreID      string
		SoundEnabled bool
	}
	SetTab struct {
		Tab Tab
	}
	UpsertTicket struct {
		ID     string
		Ticket Ticket
	}
	// ReplaceAllTickets rebuilds the map, re-deriving every canonical id. Now
	// stamps synthetic ids for tickets that carry none.
	ReplaceAllTickets struct {
		Tickets []Ticket
		Now     time.Time
	}
	RemoveTicket struct {
		ID string
	}
	PatchTicket struct {
		ID    string
		Patch TicketPatch
	}
	ClearTickets struct{}
	SetConnected struct {
		Connected bool
	}
	ToggleSound struct{}
	SetLoading struct {
		Loading bool
	}
	// SetError records the last user-visible error. An empty message clears it.
	SetError struct {
		Message string
	}
)

func (Initialize) commandName() string        { return "initialize" }
func (SetTab) commandName() string            { return "set_tab" }
func (UpsertTicket) commandName() string      { return "upsert_ticket" }
func (ReplaceAllTickets) commandName() string { return "replace_all_tickets" }
func (RemoveTicket) commandName() string      { return "remove_ticket" }
func (PatchTicket) commandName() string       { return "patch_ticket" }
func (ClearTickets) commandName() string      { return "clear_tickets" }
func (SetConnected) commandName() string      { return "set_connected" }
func (ToggleSound) commandName() string       { return "toggle_sound" }
func (SetLoading) commandName() string        { return "set_loading" }
func (SetError) commandName() string          { return "set_error" }

// Reduce applies one command to s and returns the resulting state. It has no
// side effects.
func Reduce(s State, cmd Command) State {
	switch c := cmd.(type) {
	case Initialize:
		next := NewState()
		next.StoreID = c.StoreID
		next.SoundEnabled = c.SoundEnabled
		next.Revision = s.Revision + 1
		return next

	case SetTab:
		if c.Tab == TabActive || c.Tab == TabCompleted {
			s.Tab = c.Tab
		}
		return s

	case UpsertTicket:
		if c.ID == "" {
			return s
		}
		tickets := copyTickets(s.Tickets)
		tickets[c.ID] = c.Ticket.Clone()
		return withTickets(s, tickets)

	case ReplaceAllTickets:
		tickets := make(map[string]Ticket, len(c.Tickets))
		for _, t := range c.Tickets {
			id, normalized, ok := Normalize(t, c.Now)
			if !ok {
				id, normalized = distinctSynthetic(id, normalized, tickets)
			}
			tickets[id] = normalized.Clone()
		}
		return withTickets(s, tickets)

	case RemoveTicket:
		if _, ok := s.Tickets[c.ID]; !ok {
			return s
		}
		tickets := copyTickets(s.Tickets)
		delete(tickets, c.ID)
		return withTickets(s, tickets)

	case PatchTicket:
		held, ok := s.Tickets[c.ID]
		if !ok || c.Patch.Empty() {
			return s
		}
		tickets := copyTickets(s.Tickets)
		tickets[c.ID] = c.Patch.Apply(held)
		return withTickets(s, tickets)

	case ClearTickets:
		if len(s.Tickets) == 0 {
			return s
		}
		return withTickets(s, map[string]Ticket{})

	case SetConnected:
		s.Connected = c.Connected
		return s

	case ToggleSound:
		s.SoundEnabled = !s.SoundEnabled
		return s

	case SetLoading:
		s.Loading = c.Loading
		return s

	case SetError:
		s.Error = c.Message
		return s
	}
	return s
}

func copyTickets(src map[string]Ticket) map[string]Ticket {
	dst := make(map[string]Ticket, len(src)+1)
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func withTickets(s State, tickets map[string]Ticket) State {
	s.Tickets = tickets
	s.Revision++
	return s
}

// Active returns the tickets whose status is not finished.
func (s State) Active() map[string]Ticket {
	return s.selectTickets(false)
}

// Completed returns the tickets whose status is finished.
func (s State) Completed() map[string]Ticket {
	return s.selectTickets(true)
}

// Current returns the active or completed tickets depending on the tab.
func (s State) Current() map[string]Ticket {
	if s.Tab == TabCompleted {
		return s.Completed()
	}
	return s.Active()
}

func (s State) selectTickets(finished bool) map[string]Ticket {
	out := make(map[string]Ticket)
	for k, t := range s.Tickets {
		if ticketstatus.IsFinished(t.Status) == finished {
			out[k] = t
		}
	}
	return out
}

// Entry pairs a ticket with the key it is held under.
type Entry struct {
	Key string `json:"key"`
	Ticket
}

// Entries lists tickets oldest first, ties broken by key.
func Entries(tickets map[string]Ticket) []Entry {
	entries := make([]Entry, 0, len(tickets))
	for k, t := range tickets {
		entries = append(entries, Entry{Key: k, Ticket: t})
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.Key < b.Key
	})
	return entries
}
