package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/nathoo/parley/types"
)

// SubjectPrefix is prepended to the event type to form the NATS subject.
const SubjectPrefix = "parley."

// Publisher sends raw messages to a subject.
type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
	Close()
}

type natsPublisher struct {
	conn *nats.Conn
}

// NewPublisher connects to a NATS server.
func NewPublisher(url string) (Publisher, error) {
	conn, err := nats.Connect(url, nats.Name("parley"))
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &natsPublisher{conn: conn}, nil
}

func (n *natsPublisher) Publish(_ context.Context, subject string, data []byte) error {
	return n.conn.Publish(subject, data)
}

func (n *natsPublisher) Close() {
	if n.conn != nil {
		n.conn.Drain()
		n.conn.Close()
	}
}

type noopPublisher struct{}

// NewNoopPublisher returns a publisher that drops every message.
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(context.Context, string, []byte) error { return nil }
func (noopPublisher) Close()                                        {}

type message struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data,omitempty"`
}

// Publish returns a handler forwarding events as JSON to parley.<type>.
// Failures are logged and never reach the conversation.
func Publish(pub Publisher, logger zerolog.Logger) Handler {
	return func(ctx context.Context, e types.Event) {
		b, err := json.Marshal(message{Type: e.Type, Data: e.Data})
		if err != nil {
			logger.Error().Err(err).Str("event", e.Type).Msg("encode event")
			return
		}
		if err := pub.Publish(ctx, SubjectPrefix+e.Type, b); err != nil {
			logger.Error().Err(err).Str("event", e.Type).Msg("publish event")
		}
	}
}
