package seeding

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/appetiteclub/kds/internal/wire"
)

// DemoStoreID is the store demo events target when none is configured.
const DemoStoreID = "demo-store"

type demoItem struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Quantity    int    `json:"quantity"`
	CookStation string `json:"cook_station"`
	Status      string `json:"status"`
}

type demoTicket struct {
	CheckID      int        `json:"check_id"`
	TableNumber  string     `json:"table_number"`
	CustomerName string     `json:"customer_name,omitempty"`
	Source       string     `json:"source"`
	Status       string     `json:"status"`
	CreatedAt    string     `json:"created_at"`
	Version      int        `json:"version"`
	Items        []demoItem `json:"items"`
}

type kdsUpdate struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// DemoEvents scripts a short service: three orders arrive (one of them drinks
// only), one starts cooking, its items are plated and it is completed.
func DemoEvents(now time.Time) ([]wire.Envelope, error) {
	at := func(offset time.Duration) string {
		return now.Add(offset).UTC().Format(time.RFC3339)
	}

	burger := demoTicket{
		CheckID: 101, TableNumber: "4", Source: "POS", Status: "PENDING", CreatedAt: at(0), Version: 1,
		Items: []demoItem{
			{ID: 1001, Name: "Smash Burger", Quantity: 2, CookStation: "GRILL", Status: "pending"},
			{ID: 1002, Name: "Fries", Quantity: 1, CookStation: "FRY", Status: "pending"},
			{ID: 1003, Name: "Lemonade", Quantity: 2, CookStation: "DRINK", Status: "pending"},
		},
	}
	salad := demoTicket{
		CheckID: 102, TableNumber: "7", CustomerName: "Mina", Source: "TLL", Status: "PENDING", CreatedAt: at(30 * time.Second), Version: 1,
		Items: []demoItem{
			{ID: 1004, Name: "Caesar Salad", Quantity: 1, CookStation: "COLD_STATION", Status: "pending"},
		},
	}
	drinks := demoTicket{
		CheckID: 103, TableNumber: "2", Source: "POS", Status: "PENDING", CreatedAt: at(time.Minute), Version: 1,
		Items: []demoItem{
			{ID: 1005, Name: "Iced Tea", Quantity: 3, CookStation: "DRINK", Status: "pending"},
		},
	}

	steps := []struct {
		event string
		data  interface{}
	}{
		{wire.EventTicketCreated, burger},
		{wire.EventKDSUpdate, kdsUpdate{Type: wire.UpdateNewOrder, Data: salad}},
		{wire.EventTicketCreated, drinks},
		{wire.EventKDSUpdate, kdsUpdate{Type: wire.UpdateCookingStarted, Data: map[string]interface{}{"ticket_id": burger.CheckID}}},
		{wire.EventItemUpdated, map[string]interface{}{"ticket_id": burger.CheckID, "item_id": 1001, "status": "ready"}},
		{wire.EventKDSUpdate, kdsUpdate{Type: wire.UpdateItemStatus, Data: map[string]interface{}{"ticket_id": burger.CheckID, "item_id": 1002, "status": "ready"}}},
		{wire.EventTicketUpdated, map[string]interface{}{"check_id": salad.CheckID, "status": "COOKING", "version": 2}},
		{wire.EventTicketCompleted, map[string]interface{}{"ticket_id": burger.CheckID}},
	}

	envelopes := make([]wire.Envelope, 0, len(steps))
	for _, s := range steps {
		data, err := json.Marshal(s.data)
		if err != nil {
			return nil, fmt.Errorf("cannot encode %s demo event: %w", s.event, err)
		}
		envelopes = append(envelopes, wire.Envelope{Event: s.event, Data: data})
	}
	return envelopes, nil
}
