package event

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	kdsSubjectPrefix = "kds"

	KDSEventsSuffix       = "events"
	KDSJoinSuffix         = "join"
	KDSSyncSuffix         = "sync"
	KDSItemStatusSuffix   = "items.status"
	KDSTicketStatusSuffix = "tickets.status"

	UserTypeAuthenticated = "authenticated"
	UserTypeAnonymous     = "kds-anonymous"
	AnonymousToken        = "kds-anonymous-token"
)

// ErrInvalidStoreID reports a store id that cannot be used as a single subject
// token.
var ErrInvalidStoreID = errors.New("invalid store id")

// ValidateStoreID rejects ids that are empty or would change the shape of a
// store subject: token separators, wildcards and whitespace.
func ValidateStoreID(storeID string) error {
	if storeID == "" {
		return fmt.Errorf("%w: empty", ErrInvalidStoreID)
	}
	if i := strings.IndexFunc(storeID, func(r rune) bool {
		return r == '.' || r == '*' || r == '>' || r <= ' ' || r == 0x7f
	}); i >= 0 {
		return fmt.Errorf("%w: %q has %q at %d", ErrInvalidStoreID, storeID, storeID[i], i)
	}
	return nil
}

// KDSSubject returns the store-scoped subject for suffix, e.g.
// kds.store-1.events.
func KDSSubject(storeID, suffix string) string {
	return fmt.Sprintf("%s.%s.%s", kdsSubjectPrefix, storeID, suffix)
}

// KDSJoinMessage announces a display to the store's room.
type KDSJoinMessage struct {
	StoreID   string    `json:"store_id"`
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	UserType  string    `json:"user_type"`
	SessionID string    `json:"session_id"`
	JoinedAt  time.Time `json:"joined_at"`
}

// KDSSyncRequest asks the server to re-send authoritative state for drifted
// tickets.
type KDSSyncRequest struct {
	StoreID     string    `json:"store_id"`
	SessionID   string    `json:"session_id"`
	RequestedAt time.Time `json:"requested_at"`
}

type KDSItemStatusMessage struct {
	StoreID string `json:"store_id"`
	ItemID  string `json:"item_id"`
	Status  string `json:"status"`
}

// KDSTicketStatusMessage requests a ticket status change. The server applies
// it only if the ticket is still at IfVersion.
type KDSTicketStatusMessage struct {
	StoreID   string `json:"store_id"`
	TicketID  string `json:"ticket_id"`
	Next      string `json:"next"`
	IfVersion int    `json:"if_version"`
}
