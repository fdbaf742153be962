package kds

import "errors"

var (
	ErrTicketNotFound  = errors.New("ticket not found")
	ErrCommandRejected = errors.New("command rejected by server")
	ErrNotConnected    = errors.New("realtime channel not connected")
	ErrNoStore         = errors.New("store id is required")
)

var ErrItemNotFound = errors.New("item not found")
