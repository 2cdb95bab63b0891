// Package notify announces completed publishes on NATS.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/ncms/internal/config"
	"git.home.luguber.info/inful/ncms/internal/foundation/errors"
	"git.home.luguber.info/inful/ncms/internal/logfields"
)

const (
	connectTimeout = 5 * time.Second
	flushTimeout   = 5 * time.Second
)

// Notifier announces a published site.
type Notifier interface {
	SitePublished(ctx context.Context, event *SitePublishedEvent) error
	Close() error
}

// conn is the subset of *nats.Conn used here.
type conn interface {
	Publish(subject string, data []byte) error
	FlushTimeout(timeout time.Duration) error
	Close()
}

// NATSClient publishes site events on a core NATS subject.
type NATSClient struct {
	conn    conn
	subject string
}

// NewNATSClient connects to cfg.Notify.NATSURL.
func NewNATSClient(cfg *config.Config) (*NATSClient, error) {
	if cfg.Notify.NATSURL == "" {
		return nil, errors.ConfigError("NATS URL is not configured").Build()
	}

	nc, err := nats.Connect(cfg.Notify.NATSURL,
		nats.Name("ncms"),
		nats.Timeout(connectTimeout),
	)
	if err != nil {
		return nil, errors.NetworkError("failed to connect to NATS").
			WithCause(err).
			WithContext("url", cfg.Notify.NATSURL).
			Build()
	}

	slog.Info("NATS client initialized for publish notifications",
		logfields.URL(cfg.Notify.NATSURL), logfields.Subject(cfg.Notify.Subject))
	return &NATSClient{conn: nc, subject: cfg.Notify.Subject}, nil
}

// SitePublished publishes event as JSON and waits for the server to
// acknowledge the flush.
func (c *NATSClient) SitePublished(ctx context.Context, event *SitePublishedEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return errors.InternalError("failed to marshal publish event").WithCause(err).Build()
	}

	if err := c.conn.Publish(c.subject, data); err != nil {
		return errors.NetworkError("failed to publish event").
			WithCause(err).
			WithContext("subject", c.subject).
			Build()
	}

	timeout := flushTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = min(timeout, time.Until(deadline))
	}
	if err := c.conn.FlushTimeout(timeout); err != nil {
		return errors.NetworkError("failed to flush publish event").
			WithCause(err).
			WithContext("subject", c.subject).
			Build()
	}

	slog.Debug("Published site event", logfields.Subject(c.subject), logfields.RunID(event.RunID),
		logfields.Commit(event.Commit), logfields.Count(len(event.Articles)))
	return nil
}

// Close closes the NATS connection.
func (c *NATSClient) Close() error {
	if c.conn != nil {
		c.conn.Close()
	}
	return nil
}

// Noop discards notifications.
type Noop struct{}

func (Noop) SitePublished(context.Context, *SitePublishedEvent) error { return nil }
func (Noop) Close() error                                             { return nil }
