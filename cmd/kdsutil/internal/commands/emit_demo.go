package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/appetiteclub/kds/cmd/kdsutil/internal/seeding"
	"github.com/appetiteclub/kds/pkg/event"
	"github.com/aquamarinepk/aqm"
	"github.com/jonboulle/clockwork"
)

// EmitDemo publishes the scripted demo service to the configured store's
// event subject.
func EmitDemo(ctx context.Context, config *aqm.Config, logger aqm.Logger) error {
	natsURL := config.GetStringOrDef("nats.url", "nats://localhost:4222")
	storeID := config.GetStringOrDef("kds.store_id", seeding.DemoStoreID)

	interval := time.Second
	if raw := config.GetStringOrDef("kds.emit_interval", ""); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid kds.emit_interval %q: %w", raw, err)
		}
		interval = d
	}

	pub, err := NewNATSPublisher(natsURL)
	if err != nil {
		return err
	}
	defer pub.Close()

	logger.Info("Connected to NATS", "url", natsURL, "store_id", storeID)
	return Emit(ctx, pub, clockwork.NewRealClock(), storeID, interval, logger)
}

// Emit publishes every demo event to storeID, pausing interval between them.
func Emit(ctx context.Context, pub Publisher, clock clockwork.Clock, storeID string, interval time.Duration, logger aqm.Logger) error {
	envelopes, err := seeding.DemoEvents(clock.Now())
	if err != nil {
		return err
	}

	subject := event.KDSSubject(storeID, event.KDSEventsSuffix)
	for i, env := range envelopes {
		if i > 0 && interval > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-clock.After(interval):
			}
		}

		data, err := json.Marshal(env)
		if err != nil {
			return fmt.Errorf("encode %s: %w", env.Event, err)
		}
		if err := pub.Publish(ctx, subject, data); err != nil {
			return fmt.Errorf("publish %s: %w", env.Event, err)
		}
		logger.Info("Published demo event", "event", env.Event, "subject", subject)
	}
	return nil
}
