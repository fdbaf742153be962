package kds

import (
	"context"
	"sync"
)

// MockTicketAPI is a test mock for TicketAPI
type MockTicketAPI struct {
	mu    sync.Mutex
	calls map[string]int

	LoadTicketsFunc      func(ctx context.Context, storeID string) ([]Ticket, error)
	StartCookingFunc     func(ctx context.Context, ticketID string) error
	CompleteFunc         func(ctx context.Context, ticketID string) error
	PrintFunc            func(ctx context.Context, ticketID string) error
	UpdateItemStatusFunc func(ctx context.Context, itemID, status string) error
}

func NewMockTicketAPI() *MockTicketAPI {
	return &MockTicketAPI{calls: make(map[string]int)}
}

func (m *MockTicketAPI) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[name]++
}

func (m *MockTicketAPI) Calls(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

func (m *MockTicketAPI) LoadTickets(ctx context.Context, storeID string) ([]Ticket, error) {
	m.record("LoadTickets")
	if m.LoadTicketsFunc != nil {
		return m.LoadTicketsFunc(ctx, storeID)
	}
	return nil, nil
}

func (m *MockTicketAPI) StartCooking(ctx context.Context, ticketID string) error {
	m.record("StartCooking")
	if m.StartCookingFunc != nil {
		return m.StartCookingFunc(ctx, ticketID)
	}
	return nil
}

func (m *MockTicketAPI) Complete(ctx context.Context, ticketID string) error {
	m.record("Complete")
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, ticketID)
	}
	return nil
}

func (m *MockTicketAPI) Print(ctx context.Context, ticketID string) error {
	m.record("Print")
	if m.PrintFunc != nil {
		return m.PrintFunc(ctx, ticketID)
	}
	return nil
}

func (m *MockTicketAPI) UpdateItemStatus(ctx context.Context, itemID, status string) error {
	m.record("UpdateItemStatus")
	if m.UpdateItemStatusFunc != nil {
		return m.UpdateItemStatusFunc(ctx, itemID, status)
	}
	return nil
}

type ticketStatusCall struct {
	TicketID  string
	Next      string
	IfVersion int
}

// MockChannel is a test mock for Channel
type MockChannel struct {
	mu           sync.Mutex
	connected    bool
	sink         EventSink
	storeID      string
	closed       int
	syncs        int
	itemStatus   map[string]string
	ticketStatus []ticketStatusCall

	ConnectFunc func(ctx context.Context, storeID string, sink EventSink) error
}

func NewMockChannel(connected bool) *MockChannel {
	return &MockChannel{connected: connected, itemStatus: make(map[string]string)}
}

func (m *MockChannel) Connect(ctx context.Context, storeID string, sink EventSink) error {
	m.mu.Lock()
	m.storeID = storeID
	m.sink = sink
	connected := m.connected
	m.mu.Unlock()

	if m.ConnectFunc != nil {
		return m.ConnectFunc(ctx, storeID, sink)
	}
	if sink != nil {
		sink.SetConnected(connected)
	}
	return nil
}

func (m *MockChannel) SetConnected(connected bool) {
	m.mu.Lock()
	m.connected = connected
	sink := m.sink
	m.mu.Unlock()
	if sink != nil {
		sink.SetConnected(connected)
	}
}

func (m *MockChannel) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

func (m *MockChannel) RequestSync(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.syncs++
	return nil
}

func (m *MockChannel) SendItemStatus(ctx context.Context, itemID, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.itemStatus[itemID] = status
	return nil
}

func (m *MockChannel) SendTicketStatus(ctx context.Context, ticketID, next string, ifVersion int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ticketStatus = append(m.ticketStatus, ticketStatusCall{TicketID: ticketID, Next: next, IfVersion: ifVersion})
	return nil
}

func (m *MockChannel) TicketStatusCalls() []ticketStatusCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ticketStatusCall(nil), m.ticketStatus...)
}

func (m *MockChannel) ItemStatus(itemID string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.itemStatus[itemID]
	return s, ok
}

func (m *MockChannel) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed++
	return nil
}

// MockPreferences is a test mock for Preferences
type MockPreferences struct {
	mu       sync.Mutex
	disabled bool
	writes   int

	SoundDisabledFunc    func(ctx context.Context) (bool, error)
	SetSoundDisabledFunc func(ctx context.Context, disabled bool) error
}

func (m *MockPreferences) SoundDisabled(ctx context.Context) (bool, error) {
	if m.SoundDisabledFunc != nil {
		return m.SoundDisabledFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.disabled, nil
}

func (m *MockPreferences) SetSoundDisabled(ctx context.Context, disabled bool) error {
	if m.SetSoundDisabledFunc != nil {
		return m.SetSoundDisabledFunc(ctx, disabled)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disabled = disabled
	m.writes++
	return nil
}

// MockNotifier records played cues
type MockNotifier struct {
	mu   sync.Mutex
	cues []Cue
}

func (m *MockNotifier) Play(cue Cue) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cues = append(m.cues, cue)
}

func (m *MockNotifier) Cues() []Cue {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Cue(nil), m.cues...)
}

func kitchenItem(id, status string) OrderItem {
	return OrderItem{ID: ID(id), Name: "item " + id, Quantity: 1, CookStation: "KITCHEN", Status: status}
}

func drinkItem(id string) OrderItem {
	return OrderItem{ID: ID(id), Name: "drink " + id, Quantity: 1, CookStation: "DRINK", Status: "pending"}
}

func ticketWithCheckID(id, status string, items ...OrderItem) Ticket {
	return Ticket{TicketRef: TicketRef{CheckID: ID(id)}, Status: status, Items: items}
}
