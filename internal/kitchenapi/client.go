package kitchenapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/appetiteclub/kds/internal/kds"
	"github.com/appetiteclub/kds/internal/wire"
	"github.com/aquamarinepk/aqm"
)

// requester is the part of aqm.ServiceClient the client calls.
type requester interface {
	Request(ctx context.Context, method, path string, body interface{}) (*aqm.SuccessResponse, error)
}

// Client talks to the kitchen display endpoints of the order service.
type Client struct {
	client requester
}

func NewClient(client *aqm.ServiceClient) *Client {
	if client == nil {
		return &Client{}
	}
	return &Client{client: client}
}

// result is the {success, error} answer every command endpoint returns.
type result struct {
	Success *bool  `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (r result) err() error {
	if r.Success == nil || *r.Success {
		return nil
	}
	msg := r.Error
	if msg == "" {
		msg = r.Message
	}
	if msg == "" {
		return kds.ErrCommandRejected
	}
	return fmt.Errorf("%w: %s", kds.ErrCommandRejected, msg)
}

type ticketsPayload struct {
	result
	Tickets json.RawMessage `json:"tickets"`
	Orders  json.RawMessage `json:"orders"`
}

// LoadTickets fetches every ticket the server holds for the store. Finished
// tickets and tickets without kitchen items are included.
func (c *Client) LoadTickets(ctx context.Context, storeID string) ([]kds.Ticket, error) {
	if c == nil || c.client == nil {
		return nil, errors.New("kitchen api client not configured")
	}
	if storeID == "" {
		return nil, kds.ErrNoStore
	}

	path := fmt.Sprintf("/kds/stores/%s/tickets", url.PathEscape(storeID))
	resp, err := c.client.Request(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("cannot load tickets: %w", err)
	}
	if resp == nil {
		return nil, errors.New("nil success response")
	}

	if list, ok := resp.Data.([]interface{}); ok {
		raw, err := json.Marshal(list)
		if err != nil {
			return nil, fmt.Errorf("cannot decode tickets: %w", err)
		}
		return wire.DecodeTickets(raw)
	}

	var payload ticketsPayload
	if err := decode(resp, &payload); err != nil {
		return nil, fmt.Errorf("cannot decode tickets: %w", err)
	}
	if err := payload.err(); err != nil {
		return nil, err
	}

	raw := payload.Tickets
	if len(raw) == 0 || string(raw) == "null" {
		raw = payload.Orders
	}
	if len(raw) == 0 || string(raw) == "null" {
		return []kds.Ticket{}, nil
	}
	return wire.DecodeTickets(raw)
}

func (c *Client) StartCooking(ctx context.Context, ticketID string) error {
	return c.ticketCommand(ctx, ticketID, "start-cooking")
}

func (c *Client) Complete(ctx context.Context, ticketID string) error {
	return c.ticketCommand(ctx, ticketID, "complete")
}

func (c *Client) Print(ctx context.Context, ticketID string) error {
	return c.ticketCommand(ctx, ticketID, "print")
}

func (c *Client) ticketCommand(ctx context.Context, ticketID, action string) error {
	if ticketID == "" {
		return fmt.Errorf("missing ticket id for %s", action)
	}
	path := fmt.Sprintf("/kds/tickets/%s/%s", url.PathEscape(ticketID), action)
	return c.command(ctx, path, nil)
}

type itemStatusBody struct {
	Status       string `json:"status"`
	KitchenNotes string `json:"kitchen_notes,omitempty"`
}

func (c *Client) UpdateItemStatus(ctx context.Context, itemID, status string) error {
	if itemID == "" || status == "" {
		return errors.New("missing item status information")
	}
	path := fmt.Sprintf("/kds/items/%s/status", url.PathEscape(itemID))
	return c.command(ctx, path, itemStatusBody{Status: status})
}

func (c *Client) command(ctx context.Context, path string, body interface{}) error {
	if c == nil || c.client == nil {
		return errors.New("kitchen api client not configured")
	}

	resp, err := c.client.Request(ctx, http.MethodPut, path, body)
	if err != nil {
		return fmt.Errorf("request %s failed: %w", path, err)
	}

	var res result
	if err := decode(resp, &res); err != nil {
		return fmt.Errorf("cannot decode %s response: %w", path, err)
	}
	return res.err()
}

// decode copies the dynamic response payload into dest. An empty payload
// leaves dest untouched.
func decode(resp *aqm.SuccessResponse, dest interface{}) error {
	if resp == nil {
		return errors.New("nil success response")
	}
	if resp.Data == nil {
		return nil
	}

	raw, err := json.Marshal(resp.Data)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}
