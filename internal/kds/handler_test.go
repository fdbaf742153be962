package kds

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aquamarinepk/aqm"
	"github.com/go-chi/chi/v5"
)

// MockBoard is a test mock for Board
type MockBoard struct {
	state   State
	plan    SlotPlan
	entries []Entry
	tab     Tab
	sound   bool

	RefreshFunc      func(ctx context.Context) error
	StartCookingFunc func(ctx context.Context, ticketID string) error
	MarkCompleteFunc func(ctx context.Context, ticketID string) error
	PrintOrderFunc   func(ctx context.Context, ticketID string) error
	AdvanceItemFunc  func(ctx context.Context, ticketID, itemID string) error
}

func (m *MockBoard) State() State            { return m.state }
func (m *MockBoard) Slots() SlotPlan         { return m.plan }
func (m *MockBoard) CurrentTickets() []Entry { return m.entries }

func (m *MockBoard) SwitchTab(ctx context.Context, tab Tab) {
	m.tab = tab
}

func (m *MockBoard) ToggleSound(ctx context.Context) bool {
	m.sound = !m.sound
	return m.sound
}

func (m *MockBoard) Refresh(ctx context.Context) error {
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx)
	}
	return nil
}

func (m *MockBoard) StartCooking(ctx context.Context, ticketID string) error {
	if m.StartCookingFunc != nil {
		return m.StartCookingFunc(ctx, ticketID)
	}
	return nil
}

func (m *MockBoard) MarkComplete(ctx context.Context, ticketID string) error {
	if m.MarkCompleteFunc != nil {
		return m.MarkCompleteFunc(ctx, ticketID)
	}
	return nil
}

func (m *MockBoard) PrintOrder(ctx context.Context, ticketID string) error {
	if m.PrintOrderFunc != nil {
		return m.PrintOrderFunc(ctx, ticketID)
	}
	return nil
}

func (m *MockBoard) AdvanceItem(ctx context.Context, ticketID, itemID string) error {
	if m.AdvanceItemFunc != nil {
		return m.AdvanceItemFunc(ctx, ticketID, itemID)
	}
	return nil
}

func serve(board Board, method, path string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	NewHandler(board, aqm.NewNoopLogger()).RegisterRoutes(r)
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("cannot decode response: %v", err)
	}
	data, ok := resp["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("Response does not contain data object: %s", w.Body.String())
	}
	return data
}

func TestNewHandler(t *testing.T) {
	if h := NewHandler(&MockBoard{}, nil); h == nil {
		t.Error("NewHandler() returned nil")
	}
}

func TestHandlerGetState(t *testing.T) {
	board := &MockBoard{state: State{
		StoreID:      "store-1",
		Tab:          TabActive,
		Connected:    true,
		SoundEnabled: true,
		Tickets: map[string]Ticket{
			"1": ticketWithCheckID("1", "PENDING"),
			"2": ticketWithCheckID("2", "COOKING"),
			"3": ticketWithCheckID("3", "COMPLETED"),
		},
	}}

	w := serve(board, http.MethodGet, "/kds/state")
	if w.Code != http.StatusOK {
		t.Fatalf("GetState() status = %d, want %d", w.Code, http.StatusOK)
	}

	data := decodeData(t, w)
	if data["store_id"] != "store-1" {
		t.Errorf("store_id = %v", data["store_id"])
	}
	if data["active_count"] != float64(2) {
		t.Errorf("active_count = %v, want 2", data["active_count"])
	}
	if data["completed_count"] != float64(1) {
		t.Errorf("completed_count = %v, want 1", data["completed_count"])
	}
	if data["connected"] != true {
		t.Errorf("connected = %v, want true", data["connected"])
	}
}

func TestHandlerListTickets(t *testing.T) {
	board := &MockBoard{
		state:   State{Tab: TabCompleted},
		entries: []Entry{{Key: "1", Ticket: ticketWithCheckID("1", "DONE")}},
	}

	w := serve(board, http.MethodGet, "/kds/tickets")
	if w.Code != http.StatusOK {
		t.Fatalf("ListTickets() status = %d, want %d", w.Code, http.StatusOK)
	}

	data := decodeData(t, w)
	tickets, ok := data["tickets"].([]interface{})
	if !ok {
		t.Fatalf("Response does not contain tickets array: %s", w.Body.String())
	}
	if len(tickets) != 1 {
		t.Errorf("tickets count = %d, want 1", len(tickets))
	}
	if data["tab"] != string(TabCompleted) {
		t.Errorf("tab = %v, want %s", data["tab"], TabCompleted)
	}
}

func TestHandlerGetSlots(t *testing.T) {
	board := &MockBoard{plan: PlanSlots(map[string]Ticket{
		"4": ticketWithCheckID("4", "PENDING", kitchenItem("a", "pending")),
	})}

	w := serve(board, http.MethodGet, "/kds/slots")
	if w.Code != http.StatusOK {
		t.Fatalf("GetSlots() status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestHandlerSwitchTab(t *testing.T) {
	tests := []struct {
		name           string
		tab            string
		expectedStatus int
		expectedTab    Tab
	}{
		{name: "active", tab: "active", expectedStatus: http.StatusOK, expectedTab: TabActive},
		{name: "completed", tab: "completed", expectedStatus: http.StatusOK, expectedTab: TabCompleted},
		{name: "invalid", tab: "archived", expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			board := &MockBoard{}
			w := serve(board, http.MethodPut, "/kds/tab/"+tt.tab)
			if w.Code != tt.expectedStatus {
				t.Errorf("SwitchTab() status = %d, want %d", w.Code, tt.expectedStatus)
			}
			if board.tab != tt.expectedTab {
				t.Errorf("tab = %q, want %q", board.tab, tt.expectedTab)
			}
		})
	}
}

func TestHandlerCommands(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		err            error
		expectedStatus int
	}{
		{name: "startCooking", path: "/kds/tickets/5/start-cooking", expectedStatus: http.StatusOK},
		{name: "startCookingNotFound", path: "/kds/tickets/5/start-cooking", err: ErrTicketNotFound, expectedStatus: http.StatusNotFound},
		{name: "startCookingRejected", path: "/kds/tickets/5/start-cooking", err: fmt.Errorf("start cooking: %w", ErrCommandRejected), expectedStatus: http.StatusBadGateway},
		{name: "complete", path: "/kds/tickets/5/complete", expectedStatus: http.StatusAccepted},
		{name: "completeNotFound", path: "/kds/tickets/5/complete", err: ErrTicketNotFound, expectedStatus: http.StatusNotFound},
		{name: "print", path: "/kds/tickets/5/print", expectedStatus: http.StatusOK},
		{name: "printFailure", path: "/kds/tickets/5/print", err: errors.New("boom"), expectedStatus: http.StatusInternalServerError},
		{name: "advanceItem", path: "/kds/tickets/5/items/9/advance", expectedStatus: http.StatusOK},
		{name: "advanceUnknownItem", path: "/kds/tickets/5/items/9/advance", err: ErrItemNotFound, expectedStatus: http.StatusNotFound},
		{name: "advanceOffline", path: "/kds/tickets/5/items/9/advance", err: ErrNotConnected, expectedStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotTicket, gotItem string
			record := func(ticketID string) error {
				gotTicket = ticketID
				return tt.err
			}
			board := &MockBoard{
				StartCookingFunc: func(ctx context.Context, id string) error { return record(id) },
				MarkCompleteFunc: func(ctx context.Context, id string) error { return record(id) },
				PrintOrderFunc:   func(ctx context.Context, id string) error { return record(id) },
				AdvanceItemFunc: func(ctx context.Context, id, itemID string) error {
					gotItem = itemID
					return record(id)
				},
			}

			w := serve(board, http.MethodPost, tt.path)
			if w.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.expectedStatus)
			}
			if gotTicket != "5" {
				t.Errorf("ticket id = %q, want 5", gotTicket)
			}
			if gotItem != "" && gotItem != "9" {
				t.Errorf("item id = %q, want 9", gotItem)
			}
		})
	}
}

func TestHandlerToggleSound(t *testing.T) {
	board := &MockBoard{sound: true}

	w := serve(board, http.MethodPost, "/kds/sound/toggle")
	if w.Code != http.StatusOK {
		t.Fatalf("ToggleSound() status = %d, want %d", w.Code, http.StatusOK)
	}
	if decodeData(t, w)["sound_enabled"] != false {
		t.Errorf("sound_enabled = %v, want false", decodeData(t, w)["sound_enabled"])
	}
}

func TestHandlerRefresh(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{name: "success", expectedStatus: http.StatusOK},
		{name: "loadFailure", err: errors.New("unavailable"), expectedStatus: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			board := &MockBoard{RefreshFunc: func(ctx context.Context) error { return tt.err }}
			w := serve(board, http.MethodPost, "/kds/refresh")
			if w.Code != tt.expectedStatus {
				t.Errorf("Refresh() status = %d, want %d", w.Code, tt.expectedStatus)
			}
		})
	}
}
