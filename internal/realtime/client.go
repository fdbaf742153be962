package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/appetiteclub/kds/internal/kds"
	"github.com/appetiteclub/kds/internal/wire"
	"github.com/appetiteclub/kds/pkg/event"
	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/nats-io/nats.go"
)

const (
	DefaultURL           = "nats://localhost:4222"
	DefaultSyncInterval  = 15 * time.Second
	DefaultReconnectWait = 2 * time.Second
)

type Config struct {
	URL           string
	Identity      Identity
	SyncInterval  time.Duration
	ReconnectWait time.Duration
	Clock         clockwork.Clock
}

// conn is the subset of *nats.Conn the client uses.
type conn interface {
	Publish(subject string, data []byte) error
	Subscribe(subject string, cb nats.MsgHandler) (*nats.Subscription, error)
	IsConnected() bool
	Close()
}

type dialFunc func(url string, opts ...nats.Option) (conn, error)

func dialNATS(url string, opts ...nats.Option) (conn, error) {
	return nats.Connect(url, opts...)
}

// Client is a store-scoped realtime channel over NATS. It joins the store's
// room on every (re)connect, turns inbound messages into canonical events and
// asks the server for a sync at a fixed interval while connected.
type Client struct {
	cfg    Config
	logger aqm.Logger
	dial   dialFunc

	mu        sync.RWMutex
	nc        conn
	sub       *nats.Subscription
	sink      kds.EventSink
	storeID   string
	sessionID string
	identity  resolvedIdentity
	connected bool
	// gen identifies the current connection. Callbacks from an earlier
	// connection carry an older gen and are dropped.
	gen uint64

	stopSync context.CancelFunc
	syncDone chan struct{}
}

func NewClient(cfg Config, logger aqm.Logger) *Client {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.SyncInterval <= 0 {
		cfg.SyncInterval = DefaultSyncInterval
	}
	if cfg.ReconnectWait <= 0 {
		cfg.ReconnectWait = DefaultReconnectWait
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	return &Client{
		cfg:    cfg,
		logger: logger,
		dial:   dialNATS,
	}
}

// Connect dials the server and subscribes to the store's events. The initial
// dial keeps retrying in the background, so an unreachable server is reported
// as disconnected rather than as an error. Any previous connection is closed
// first.
func (c *Client) Connect(ctx context.Context, storeID string, sink kds.EventSink) error {
	if storeID == "" {
		return kds.ErrNoStore
	}
	if err := event.ValidateStoreID(storeID); err != nil {
		return err
	}

	if err := c.Close(); err != nil {
		c.logger.Error("cannot close previous realtime connection", "store_id", storeID, "error", err)
	}

	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.storeID = storeID
	c.sink = sink
	c.sessionID = uuid.NewString()
	c.identity = c.cfg.Identity.resolve(storeID)
	identity := c.identity
	c.mu.Unlock()

	opts := []nats.Option{
		nats.Name("kds-" + storeID),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(c.cfg.ReconnectWait),
		nats.RetryOnFailedConnect(true),
		nats.ConnectHandler(func(*nats.Conn) { c.handleConnect(gen) }),
		nats.ReconnectHandler(func(*nats.Conn) { c.handleConnect(gen) }),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) { c.handleDisconnect(gen, err) }),
		nats.ClosedHandler(func(*nats.Conn) { c.handleDisconnect(gen, nil) }),
	}
	if !identity.anonymous() {
		opts = append(opts, nats.Token(identity.token))
	}

	c.logger.Info("connecting realtime channel", "url", c.cfg.URL, "store_id", storeID, "user_type", identity.userType)

	nc, err := c.dial(c.cfg.URL, opts...)
	if err != nil {
		if sink != nil {
			sink.SetConnected(false)
		}
		return fmt.Errorf("cannot connect to %s: %w", c.cfg.URL, err)
	}

	sub, err := nc.Subscribe(event.KDSSubject(storeID, event.KDSEventsSuffix), func(msg *nats.Msg) {
		c.handleMsg(gen, msg)
	})
	if err != nil {
		nc.Close()
		return fmt.Errorf("cannot subscribe to store %s events: %w", storeID, err)
	}

	c.mu.Lock()
	c.nc = nc
	c.sub = sub
	c.mu.Unlock()

	if nc.IsConnected() {
		c.handleConnect(gen)
	}

	c.startSync()
	return nil
}

func (c *Client) generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gen
}

func (c *Client) handleConnect(gen uint64) {
	c.mu.Lock()
	if gen != c.gen || c.connected || c.nc == nil {
		c.mu.Unlock()
		return
	}
	c.connected = true
	sink := c.sink
	join := event.KDSJoinMessage{
		StoreID:   c.storeID,
		Token:     c.identity.token,
		UserID:    c.identity.userID,
		UserType:  c.identity.userType,
		SessionID: c.sessionID,
		JoinedAt:  c.cfg.Clock.Now(),
	}
	c.mu.Unlock()

	if err := c.publish(event.KDSJoinSuffix, join); err != nil {
		c.logger.Error("cannot join store room", "store_id", join.StoreID, "error", err)
	}
	c.logger.Info("realtime channel connected", "store_id", join.StoreID, "session_id", join.SessionID)
	if sink != nil {
		sink.SetConnected(true)
	}
}

func (c *Client) handleDisconnect(gen uint64, err error) {
	c.mu.Lock()
	if gen != c.gen || !c.connected {
		c.mu.Unlock()
		return
	}
	c.connected = false
	sink, storeID := c.sink, c.storeID
	c.mu.Unlock()

	c.logger.Info("realtime channel disconnected", "store_id", storeID, "error", err)
	if sink != nil {
		sink.SetConnected(false)
	}
}

func (c *Client) handleMsg(gen uint64, msg *nats.Msg) {
	if gen != c.generation() {
		c.logger.Debug("dropping message from previous connection", "subject", msg.Subject)
		return
	}
	c.handle(msg.Data)
}

func (c *Client) handle(data []byte) {
	evt, err := wire.Decode(data)
	if err != nil {
		if errors.Is(err, wire.ErrUnknownEvent) {
			c.logger.Debug("ignoring realtime message", "reason", err.Error())
			return
		}
		c.logger.Error("cannot decode realtime message", "error", err)
		return
	}
	if evt == nil {
		c.logger.Debug("realtime message carries no change")
		return
	}

	c.mu.RLock()
	sink := c.sink
	c.mu.RUnlock()
	if sink != nil {
		sink.HandleEvent(context.Background(), evt)
	}
}

func (c *Client) startSync() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	ticker := c.cfg.Clock.NewTicker(c.cfg.SyncInterval)

	c.mu.Lock()
	c.stopSync = cancel
	c.syncDone = done
	c.mu.Unlock()

	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.Chan():
				if !c.Connected() {
					continue
				}
				if err := c.RequestSync(ctx); err != nil {
					c.logger.Error("sync request failed", "error", err)
				}
			}
		}
	}()
}

func (c *Client) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// RequestSync asks the server to re-assert state for drifted tickets.
func (c *Client) RequestSync(ctx context.Context) error {
	c.mu.RLock()
	req := event.KDSSyncRequest{StoreID: c.storeID, SessionID: c.sessionID, RequestedAt: c.cfg.Clock.Now()}
	c.mu.RUnlock()
	return c.send(event.KDSSyncSuffix, req)
}

func (c *Client) SendItemStatus(ctx context.Context, itemID, status string) error {
	c.mu.RLock()
	msg := event.KDSItemStatusMessage{StoreID: c.storeID, ItemID: itemID, Status: status}
	c.mu.RUnlock()
	return c.send(event.KDSItemStatusSuffix, msg)
}

func (c *Client) SendTicketStatus(ctx context.Context, ticketID, next string, ifVersion int) error {
	c.mu.RLock()
	msg := event.KDSTicketStatusMessage{StoreID: c.storeID, TicketID: ticketID, Next: next, IfVersion: ifVersion}
	c.mu.RUnlock()
	return c.send(event.KDSTicketStatusSuffix, msg)
}

func (c *Client) send(suffix string, msg interface{}) error {
	if !c.Connected() {
		return kds.ErrNotConnected
	}
	return c.publish(suffix, msg)
}

func (c *Client) publish(suffix string, msg interface{}) error {
	c.mu.RLock()
	nc, storeID := c.nc, c.storeID
	c.mu.RUnlock()
	if nc == nil {
		return kds.ErrNotConnected
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("cannot marshal %s message: %w", suffix, err)
	}
	if err := nc.Publish(event.KDSSubject(storeID, suffix), data); err != nil {
		return fmt.Errorf("cannot publish %s message: %w", suffix, err)
	}
	return nil
}

// Close stops the sync loop and closes the connection. It is safe to call
// more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	stop, done := c.stopSync, c.syncDone
	c.stopSync, c.syncDone = nil, nil
	nc, sub := c.nc, c.sub
	c.sub = nil
	c.mu.Unlock()

	if stop != nil {
		stop()
		<-done
	}

	var err error
	if sub != nil {
		if uerr := sub.Unsubscribe(); uerr != nil && !errors.Is(uerr, nats.ErrConnectionClosed) {
			err = fmt.Errorf("cannot unsubscribe: %w", uerr)
		}
	}
	if nc != nil {
		nc.Close()
	}

	c.mu.Lock()
	c.nc = nil
	gen := c.gen
	c.mu.Unlock()
	c.handleDisconnect(gen, nil)
	return err
}
