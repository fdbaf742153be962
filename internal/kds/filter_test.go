package kds

import (
	"testing"
	"time"
)

func TestKitchenItems(t *testing.T) {
	items := []OrderItem{
		{ID: "1", CookStation: "KITCHEN"},
		{ID: "2", CookStation: "GRILL"},
		{ID: "3", CookStation: "FRY"},
		{ID: "4", CookStation: "COLD_STATION"},
		{ID: "5", CookStation: "DRINK"},
		{ID: "6", CookStation: ""},
		{ID: "7", CookStation: "bar"},
		{ID: "8", CookStation: "grill"},
	}

	got := KitchenItems(items)
	want := []ID{"1", "2", "3", "4", "6", "8"}
	if len(got) != len(want) {
		t.Fatalf("KitchenItems() returned %d items, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("item %d = %q, want %q", i, got[i].ID, id)
		}
	}
}

func TestHasKitchenItems(t *testing.T) {
	tests := []struct {
		name   string
		ticket Ticket
		want   bool
	}{
		{name: "onlyDrinks", ticket: ticketWithCheckID("1", "PENDING", drinkItem("d")), want: false},
		{name: "noItems", ticket: ticketWithCheckID("1", "PENDING"), want: false},
		{name: "mixed", ticket: ticketWithCheckID("1", "PENDING", drinkItem("d"), kitchenItem("k", "pending")), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasKitchenItems(tt.ticket); got != tt.want {
				t.Errorf("HasKitchenItems() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPrepareCreated(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	raw := Ticket{
		TicketRef: TicketRef{TicketID: "9"},
		Status:    "cooking",
		Items:     []OrderItem{kitchenItem("a", "pending"), drinkItem("b")},
	}

	got := PrepareCreated(raw, now)

	if got.BatchNo != 1 {
		t.Errorf("BatchNo = %d, want 1", got.BatchNo)
	}
	if got.TableNumber != "N/A" {
		t.Errorf("TableNumber = %q, want N/A", got.TableNumber)
	}
	if got.CustomerName != "Table N/A" {
		t.Errorf("CustomerName = %q", got.CustomerName)
	}
	if got.Status != "COOKING" {
		t.Errorf("Status = %q, want COOKING", got.Status)
	}
	if got.Source != SourcePOS {
		t.Errorf("Source = %q, want POS", got.Source)
	}
	if !got.CreatedAt.Equal(now) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, now)
	}
	if len(got.Items) != 1 || got.Items[0].ID != "a" {
		t.Errorf("Items = %+v, want only kitchen item a", got.Items)
	}
	if len(raw.Items) != 2 {
		t.Error("PrepareCreated() mutated its input")
	}
}

func TestPrepareCreatedKeepsProvidedFields(t *testing.T) {
	created := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	raw := Ticket{
		TicketRef:    TicketRef{CheckID: "3"},
		TableNumber:  "12",
		CustomerName: "Kim",
		BatchNo:      2,
		Source:       SourceGuest,
		CreatedAt:    created,
		Items:        []OrderItem{kitchenItem("a", "pending")},
	}

	got := PrepareCreated(raw, time.Now())
	if got.TableNumber != "12" || got.CustomerName != "Kim" || got.BatchNo != 2 || got.Source != SourceGuest || !got.CreatedAt.Equal(created) {
		t.Errorf("PrepareCreated() overwrote provided fields: %+v", got)
	}
	if got.Status != "PENDING" {
		t.Errorf("Status = %q, want PENDING", got.Status)
	}
}
