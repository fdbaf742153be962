package kds

import (
	"sort"
	"strings"

	"github.com/appetiteclub/kds/pkg/enums/ticketstatus"
)

const (
	// SlotCount is the number of display positions on the board. The last
	// one holds the control panel.
	SlotCount       = 10
	TicketSlotCount = SlotCount - 1
	ControlSlot     = SlotCount

	unparsableTicketNumber = 999999
)

// Slot is one ticket position. An empty slot has no key and no ticket.
type Slot struct {
	Number int     `json:"number"`
	Key    string  `json:"key,omitempty"`
	Ticket *Ticket `json:"ticket,omitempty"`
}

func (s Slot) Empty() bool {
	return s.Ticket == nil
}

type SlotPlan struct {
	Slots []Slot `json:"slots"`
	// Overflow lists the keys of eligible tickets that did not fit.
	Overflow []string `json:"overflow,omitempty"`
}

// Assigned returns the number of occupied slots.
func (p SlotPlan) Assigned() int {
	n := 0
	for _, s := range p.Slots {
		if !s.Empty() {
			n++
		}
	}
	return n
}

type candidate struct {
	key     string
	number  int64
	cooking bool
	ticket  Ticket
}

// PlanSlots maps active tickets onto slots 1..TicketSlotCount. Tickets without
// kitchen items are skipped. Cooking tickets come first, then lower ticket
// numbers; keys that are not numbers sort last. The ticket placed in a slot
// carries only its kitchen items.
func PlanSlots(active map[string]Ticket) SlotPlan {
	candidates := make([]candidate, 0, len(active))
	for key, t := range active {
		if !HasKitchenItems(t) {
			continue
		}
		display := t.Clone()
		display.Items = KitchenItems(t.Items)
		candidates = append(candidates, candidate{
			key:     key,
			number:  ticketNumber(key),
			cooking: strings.EqualFold(t.Status, ticketstatus.Statuses.Cooking.Code()),
			ticket:  display,
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.cooking != b.cooking {
			return a.cooking
		}
		if a.number != b.number {
			return a.number < b.number
		}
		return a.key < b.key
	})

	plan := SlotPlan{Slots: make([]Slot, TicketSlotCount)}
	for i := range plan.Slots {
		plan.Slots[i] = Slot{Number: i + 1}
	}
	for i, c := range candidates {
		if i >= TicketSlotCount {
			plan.Overflow = append(plan.Overflow, c.key)
			continue
		}
		t := c.ticket
		plan.Slots[i].Key = c.key
		plan.Slots[i].Ticket = &t
	}
	return plan
}

func ticketNumber(key string) int64 {
	n, ok := ID(key).Number()
	if !ok {
		return unparsableTicketNumber
	}
	return n
}
