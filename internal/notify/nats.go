package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Dan9191/fee-reminder/internal/models"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

const (
	messageTypeReminder = "individual-reminder"
	messageTypeSummary  = "bulk-summary"
)

// Envelope wraps every message published to NATS
type Envelope struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Source    string          `json:"source"`
	Payload   json.RawMessage `json:"payload"`
}

type publisher interface {
	Publish(subject string, data []byte) error
}

// NATSDispatcher publishes reminders for downstream senders (SMS, WhatsApp) to consume.
// Deduplication is left to consumers, keyed on the envelope id.
type NATSDispatcher struct {
	conn   publisher
	nc     *nats.Conn
	prefix string
	log    *logrus.Logger
}

// NewNATSDispatcher connects to the NATS server at url
func NewNATSDispatcher(url, subjectPrefix string, log *logrus.Logger) (*NATSDispatcher, error) {
	nc, err := nats.Connect(url,
		nats.Name("fee-reminder"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.WithError(err).Warn("Disconnected from NATS")
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.WithField("url", c.ConnectedUrl()).Info("Reconnected to NATS")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSDispatcher{conn: nc, nc: nc, prefix: subjectPrefix, log: log}, nil
}

// SendReminder publishes the reminder on <prefix>.individual
func (d *NATSDispatcher) SendReminder(ctx context.Context, r models.Reminder) error {
	return d.publish(ctx, d.prefix+".individual", messageTypeReminder, r)
}

// SendSummary publishes the summary on <prefix>.summary
func (d *NATSDispatcher) SendSummary(ctx context.Context, s models.Summary) error {
	return d.publish(ctx, d.prefix+".summary", messageTypeSummary, s)
}

func (d *NATSDispatcher) publish(ctx context.Context, subject, messageType string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", messageType, err)
	}
	envelope := Envelope{
		ID:        uuid.New().String(),
		Type:      messageType,
		Timestamp: time.Now().UTC(),
		Source:    "fee-reminder",
		Payload:   data,
	}
	envelopeData, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}

	if err := d.conn.Publish(subject, envelopeData); err != nil {
		return fmt.Errorf("failed to publish %s to %s: %w", messageType, subject, err)
	}

	d.log.WithFields(logrus.Fields{
		"subject":    subject,
		"message_id": envelope.ID,
	}).Debug("Published message to NATS")
	return nil
}

// Close flushes pending messages and closes the connection
func (d *NATSDispatcher) Close() error {
	if d.nc == nil {
		return nil
	}
	return d.nc.Drain()
}
