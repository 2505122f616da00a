// Package events publishes provisioning notifications for downstream
// consumers such as storefront caches.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

const DefaultSubject = "access.provisioned"

// Provisioned is emitted after a message created a user or added grants.
type Provisioned struct {
	ExternalID string              `json:"external_id,omitempty"`
	Identifier string              `json:"identifier"`
	UserID     string              `json:"user_id"`
	NewUser    bool                `json:"new_user"`
	Grants     map[string][]string `json:"grants,omitempty"`
	OccurredAt time.Time           `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, event Provisioned) error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Provisioned) error { return nil }

// NATSPublisher publishes JSON encoded events on a core NATS subject.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
}

// ConnectNATS dials url and returns a publisher for subject.
func ConnectNATS(url, subject string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url, nats.Name("access-gateway-api"))
	if err != nil {
		return nil, fmt.Errorf("could not connect to NATS: %w", err)
	}
	return NewNATSPublisher(conn, subject), nil
}

func NewNATSPublisher(conn *nats.Conn, subject string) *NATSPublisher {
	if subject == "" {
		subject = DefaultSubject
	}
	return &NATSPublisher{conn: conn, subject: subject}
}

func (p *NATSPublisher) Publish(ctx context.Context, event Provisioned) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Close flushes pending events and closes the connection.
func (p *NATSPublisher) Close() {
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
	}
}
