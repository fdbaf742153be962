package kds

import (
	"testing"
	"time"
)

func TestCanonicalID(t *testing.T) {
	tests := []struct {
		name   string
		ref    TicketRef
		want   string
		wantOK bool
	}{
		{name: "checkIDFirst", ref: TicketRef{ID: "1", CheckID: "2", TicketID: "3", OrderID: "4"}, want: "2", wantOK: true},
		{name: "ticketIDSecond", ref: TicketRef{ID: "1", TicketID: "3", OrderID: "4"}, want: "3", wantOK: true},
		{name: "idThird", ref: TicketRef{ID: "1", OrderID: "4"}, want: "1", wantOK: true},
		{name: "orderIDLast", ref: TicketRef{OrderID: "4"}, want: "4", wantOK: true},
		{name: "blankIgnored", ref: TicketRef{CheckID: " ", OrderID: "4"}, want: "4", wantOK: true},
		{name: "none", ref: TicketRef{}, want: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CanonicalID(tt.ref)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("CanonicalID() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	now := time.UnixMilli(1700000000000)

	tests := []struct {
		name   string
		ticket Ticket
	}{
		{name: "withCheckID", ticket: ticketWithCheckID("5", "PENDING")},
		{name: "withOrderIDOnly", ticket: Ticket{TicketRef: TicketRef{OrderID: "77"}}},
		{name: "withoutAnyID", ticket: Ticket{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, normalized, _ := Normalize(tt.ticket, now)
			second, _, ok := Normalize(normalized, now.Add(time.Hour))
			if first != second {
				t.Errorf("Normalize() twice = %q then %q", first, second)
			}
			if !ok {
				t.Error("second Normalize() should find an identifier")
			}
		})
	}
}

func TestNormalizeSyntheticID(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	id, _, ok := Normalize(Ticket{}, now)
	if ok {
		t.Error("Normalize() ok = true for ticket without identifiers")
	}
	if id != "unknown_1700000000123" {
		t.Errorf("Normalize() id = %q", id)
	}
}

func TestFindByAnyID(t *testing.T) {
	tickets := map[string]Ticket{
		"42":    {TicketRef: TicketRef{CheckID: "42", ID: "900", OrderID: "ord-1"}},
		"chk-7": {TicketRef: TicketRef{CheckID: "chk-7", TicketID: "7"}},
	}

	tests := []struct {
		name    string
		id      string
		wantKey string
		wantOK  bool
	}{
		{name: "literalKey", id: "42", wantKey: "42", wantOK: true},
		{name: "numericCoercion", id: "042", wantKey: "42", wantOK: true},
		{name: "floatCoercion", id: "42.0", wantKey: "42", wantOK: true},
		{name: "scanSecondaryID", id: "900", wantKey: "42", wantOK: true},
		{name: "scanOrderID", id: "ord-1", wantKey: "42", wantOK: true},
		{name: "scanTicketIDNumeric", id: "07", wantKey: "chk-7", wantOK: true},
		{name: "missing", id: "17", wantOK: false},
		{name: "empty", id: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, _, ok := FindByAnyID(tickets, tt.id)
			if ok != tt.wantOK || key != tt.wantKey {
				t.Errorf("FindByAnyID(%q) = (%q, %v), want (%q, %v)", tt.id, key, ok, tt.wantKey, tt.wantOK)
			}
		})
	}
}
