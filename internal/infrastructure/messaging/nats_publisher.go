package messaging

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"pqms/internal/errs"
	"pqms/internal/ports"
)

// NATSPublisher publishes domain events as core NATS messages.
type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
}

var _ ports.EventPublisher = (*NATSPublisher)(nil)

func NewNATSPublisher(url string, prefix string, clientName string) (*NATSPublisher, error) {
	trimmedURL := strings.TrimSpace(url)
	if trimmedURL == "" {
		return nil, errors.New("nats url is required")
	}

	conn, err := nats.Connect(trimmedURL,
		nats.Name(clientName),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, errs.Wrapf(err, "connect nats %s", trimmedURL)
	}
	return &NATSPublisher{conn: conn, prefix: strings.Trim(strings.TrimSpace(prefix), ".")}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, subject string, payload []byte) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}

	full := Subject(p.prefix, subject)
	if err := p.conn.Publish(full, payload); err != nil {
		return errs.Wrapf(err, "publish %s", full)
	}
	return nil
}

// Close flushes pending messages and closes the connection.
func (p *NATSPublisher) Close() error {
	if p == nil || p.conn == nil {
		return nil
	}
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
		return errs.Wrap(err, "drain nats connection")
	}
	return nil
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

var _ ports.EventPublisher = NopPublisher{}

func (NopPublisher) Publish(context.Context, string, []byte) error {
	return nil
}

// Subject joins prefix and name with a dot, skipping an empty prefix.
func Subject(prefix string, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
