package kds

import (
	"context"
	"errors"
	"net/http"

	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/telemetry"
	"github.com/go-chi/chi/v5"
)

// Board is the part of the display the HTTP surface drives.
type Board interface {
	State() State
	Slots() SlotPlan
	CurrentTickets() []Entry
	SwitchTab(ctx context.Context, tab Tab)
	ToggleSound(ctx context.Context) bool
	Refresh(ctx context.Context) error
	StartCooking(ctx context.Context, ticketID string) error
	MarkComplete(ctx context.Context, ticketID string) error
	PrintOrder(ctx context.Context, ticketID string) error
	AdvanceItem(ctx context.Context, ticketID, itemID string) error
}

type Handler struct {
	board  Board
	logger aqm.Logger
	tlm    *telemetry.HTTP
}

func NewHandler(board Board, logger aqm.Logger) *Handler {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Handler{
		board:  board,
		logger: logger,
		tlm:    telemetry.NewHTTP(),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/kds", func(r chi.Router) {
		r.Get("/state", h.GetState)
		r.Get("/slots", h.GetSlots)
		r.Get("/tickets", h.ListTickets)
		r.Put("/tab/{tab}", h.SwitchTab)
		r.Post("/tickets/{id}/start-cooking", h.StartCooking)
		r.Post("/tickets/{id}/complete", h.MarkComplete)
		r.Post("/tickets/{id}/print", h.PrintOrder)
		r.Post("/tickets/{id}/items/{itemID}/advance", h.AdvanceItem)
		r.Post("/sound/toggle", h.ToggleSound)
		r.Post("/refresh", h.Refresh)
	})
}

func (h *Handler) log(r *http.Request) aqm.Logger {
	return h.logger.With("request_id", aqm.RequestIDFrom(r.Context()))
}

type stateView struct {
	StoreID        string `json:"store_id"`
	Tab            Tab    `json:"tab"`
	Connected      bool   `json:"connected"`
	SoundEnabled   bool   `json:"sound_enabled"`
	Loading        bool   `json:"loading"`
	Error          string `json:"error,omitempty"`
	ActiveCount    int    `json:"active_count"`
	CompletedCount int    `json:"completed_count"`
}

func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetState")
	defer finish()

	st := h.board.State()
	aqm.Respond(w, http.StatusOK, stateView{
		StoreID:        st.StoreID,
		Tab:            st.Tab,
		Connected:      st.Connected,
		SoundEnabled:   st.SoundEnabled,
		Loading:        st.Loading,
		Error:          st.Error,
		ActiveCount:    len(st.Active()),
		CompletedCount: len(st.Completed()),
	}, nil)
}

func (h *Handler) GetSlots(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetSlots")
	defer finish()

	aqm.Respond(w, http.StatusOK, h.board.Slots(), nil)
}

func (h *Handler) ListTickets(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListTickets")
	defer finish()

	aqm.Respond(w, http.StatusOK, map[string]interface{}{
		"tab":     h.board.State().Tab,
		"tickets": h.board.CurrentTickets(),
	}, nil)
}

func (h *Handler) SwitchTab(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.SwitchTab")
	defer finish()

	tab, ok := ParseTab(chi.URLParam(r, "tab"))
	if !ok {
		aqm.RespondError(w, http.StatusBadRequest, "Invalid tab")
		return
	}
	h.board.SwitchTab(r.Context(), tab)
	aqm.Respond(w, http.StatusOK, map[string]interface{}{"tab": tab}, nil)
}

func (h *Handler) StartCooking(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.StartCooking")
	defer finish()

	id := chi.URLParam(r, "id")
	if err := h.board.StartCooking(r.Context(), id); err != nil {
		h.log(r).Errorf("cannot start cooking %s: %v", id, err)
		h.respondCommandError(w, err)
		return
	}
	aqm.Respond(w, http.StatusOK, map[string]interface{}{"success": true, "ticket_id": id}, nil)
}

func (h *Handler) MarkComplete(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.MarkComplete")
	defer finish()

	id := chi.URLParam(r, "id")
	if err := h.board.MarkComplete(r.Context(), id); err != nil {
		h.log(r).Errorf("cannot complete %s: %v", id, err)
		h.respondCommandError(w, err)
		return
	}
	aqm.Respond(w, http.StatusAccepted, map[string]interface{}{"success": true, "ticket_id": id}, nil)
}

func (h *Handler) PrintOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.PrintOrder")
	defer finish()

	id := chi.URLParam(r, "id")
	if err := h.board.PrintOrder(r.Context(), id); err != nil {
		h.log(r).Errorf("cannot print %s: %v", id, err)
		h.respondCommandError(w, err)
		return
	}
	aqm.Respond(w, http.StatusOK, map[string]interface{}{"success": true, "ticket_id": id}, nil)
}

func (h *Handler) AdvanceItem(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.AdvanceItem")
	defer finish()

	id := chi.URLParam(r, "id")
	itemID := chi.URLParam(r, "itemID")
	if err := h.board.AdvanceItem(r.Context(), id, itemID); err != nil {
		h.log(r).Errorf("cannot advance item %s on %s: %v", itemID, id, err)
		h.respondCommandError(w, err)
		return
	}
	aqm.Respond(w, http.StatusOK, map[string]interface{}{"success": true, "ticket_id": id, "item_id": itemID}, nil)
}

func (h *Handler) ToggleSound(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ToggleSound")
	defer finish()

	enabled := h.board.ToggleSound(r.Context())
	aqm.Respond(w, http.StatusOK, map[string]interface{}{"sound_enabled": enabled}, nil)
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.Refresh")
	defer finish()

	if err := h.board.Refresh(r.Context()); err != nil {
		h.log(r).Errorf("cannot refresh: %v", err)
		aqm.RespondError(w, http.StatusBadGateway, "Could not reload tickets")
		return
	}
	aqm.Respond(w, http.StatusOK, map[string]interface{}{"success": true}, nil)
}

func (h *Handler) respondCommandError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrTicketNotFound), errors.Is(err, ErrItemNotFound):
		aqm.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrCommandRejected):
		aqm.RespondError(w, http.StatusBadGateway, err.Error())
	case errors.Is(err, ErrNotConnected):
		aqm.RespondError(w, http.StatusServiceUnavailable, err.Error())
	default:
		aqm.RespondError(w, http.StatusInternalServerError, err.Error())
	}
}
