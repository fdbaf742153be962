package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// Publisher sends raw payloads to a subject.
type Publisher interface {
	Publish(ctx context.Context, subject string, msg []byte) error
	Close() error
}

type NATSPublisher struct {
	conn *nats.Conn
}

func NewNATSPublisher(url string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url, nats.Name("kds-utils"), nats.Timeout(5*time.Second))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSPublisher{conn: conn}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, subject string, msg []byte) error {
	return p.conn.Publish(subject, msg)
}

// Close flushes pending messages before closing.
func (p *NATSPublisher) Close() error {
	defer p.conn.Close()
	if err := p.conn.Flush(); err != nil {
		return fmt.Errorf("cannot flush NATS connection: %w", err)
	}
	return nil
}
