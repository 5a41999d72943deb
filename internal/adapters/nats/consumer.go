// Package nats provides the event-driven ingest transport: pothole
// reports published on a NATS subject are validated and handed to the
// ingest engine. There is no per-message response beyond the ack.
package nats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/jobrunner/potholemap/internal/domain"
	"github.com/jobrunner/potholemap/internal/ports/input"
	"github.com/jobrunner/potholemap/internal/schema"
)

// Consumer subscribes to the ingest subject and feeds the ingester.
type Consumer struct {
	conn     *nats.Conn
	js       nats.JetStreamContext
	sub      *nats.Subscription
	ingester input.PotholeIngester
	logger   *slog.Logger
	subject  string
	durable  string
}

// Config holds NATS consumer configuration.
type Config struct {
	URL     string
	Subject string
	Durable string
}

// NewConsumer connects to NATS and prepares a JetStream consumer.
func NewConsumer(cfg Config, ingester input.PotholeIngester, logger *slog.Logger) (*Consumer, error) {
	conn, err := nats.Connect(cfg.URL,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	return &Consumer{
		conn:     conn,
		js:       js,
		ingester: ingester,
		logger:   logger,
		subject:  cfg.Subject,
		durable:  cfg.Durable,
	}, nil
}

// Start subscribes to the configured subject.
//
// Malformed payloads are acked and dropped after logging: redelivery
// cannot fix a validation failure. Dependency failures are nacked so
// the message is retried.
func (c *Consumer) Start(ctx context.Context) error {
	sub, err := c.js.Subscribe(c.subject, func(msg *nats.Msg) {
		c.handleMessage(ctx, msg)
	},
		nats.Durable(c.durable),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return fmt.Errorf("subscribing to %s: %w", c.subject, err)
	}

	c.sub = sub
	c.logger.Info("NATS ingest consumer started", "subject", c.subject, "durable", c.durable)
	return nil
}

// handleMessage processes a single inbound report.
func (c *Consumer) handleMessage(ctx context.Context, msg *nats.Msg) {
	payload, err := schema.ParseIngestPayload(msg.Data)
	if err != nil {
		c.logger.Warn("dropping invalid ingest event", "subject", msg.Subject, "error", err)
		_ = msg.Ack()
		return
	}

	id, err := c.ingester.Ingest(ctx, payload)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			c.logger.Warn("dropping rejected ingest event", "subject", msg.Subject, "error", err)
			_ = msg.Ack()
			return
		}
		c.logger.Error("ingest failed, requeueing event", "subject", msg.Subject, "error", err)
		_ = msg.Nak()
		return
	}

	c.logger.Debug("ingest event processed", "id", id)
	_ = msg.Ack()
}

// Close unsubscribes and drains the connection.
func (c *Consumer) Close() {
	if c.sub != nil {
		_ = c.sub.Unsubscribe()
	}
	_ = c.conn.Drain()
}
