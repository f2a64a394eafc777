// Package events provides optional NATS event publishing for the resume
// filter. The service runs fine without a broker; handlers treat publishing
// as fire-and-forget.
package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// Client wraps a NATS connection.
type Client struct {
	conn   *nats.Conn
	logger *slog.Logger
}

// NewClient connects to NATS with automatic reconnects.
func NewClient(url string, logger *slog.Logger) (*Client, error) {
	nc, err := nats.Connect(url,
		nats.Name("resume-filter"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS: %w", err)
	}

	return &Client{conn: nc, logger: logger}, nil
}

// Close closes the NATS connection.
func (c *Client) Close() {
	if c.conn != nil {
		c.conn.Close()
	}
}

// IsConnected returns true if the NATS connection is active.
func (c *Client) IsConnected() bool {
	return c.conn != nil && c.conn.IsConnected()
}

// Event is the envelope published for every subject.
type Event struct {
	Type      string    `json:"type"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// Publisher publishes resume-filter events.
type Publisher struct {
	client *Client
	logger *slog.Logger
}

// NewPublisher creates an event publisher.
func NewPublisher(client *Client, logger *slog.Logger) *Publisher {
	return &Publisher{client: client, logger: logger}
}

func (p *Publisher) publish(subject string, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}

	if err := p.client.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publishing to %s: %w", subject, err)
	}

	p.logger.Debug("published event", "subject", subject, "type", event.Type)
	return nil
}

// DocumentAdded publishes a document ingestion event.
func (p *Publisher) DocumentAdded(id, userID, provider string) error {
	return p.publish("resume.document.added", Event{
		Type:      "document.added",
		Source:    "resume-filter",
		Timestamp: time.Now(),
		Data: map[string]any{
			"id":       id,
			"user_id":  userID,
			"provider": provider,
		},
	})
}

// AnalysisCompleted publishes a CV analysis event.
func (p *Publisher) AnalysisCompleted(userID, provider string, score float64) error {
	return p.publish("resume.analysis.completed", Event{
		Type:      "analysis.completed",
		Source:    "resume-filter",
		Timestamp: time.Now(),
		Data: map[string]any{
			"user_id":     userID,
			"provider":    provider,
			"match_score": score,
		},
	})
}
