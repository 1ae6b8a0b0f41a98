package alertnats

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/nats-io/nats.go"

	"bunasiem/pkg/models"
)

// Writer publishes fired alerts to a NATS subject so downstream
// consumers (notifier, dashboard push) can react without polling.
type Writer struct {
	conn    *nats.Conn
	subject string
}

// Config configures the NATS writer.
type Config struct {
	URL     string
	Subject string
}

// NewWriter connects to NATS and creates a publisher.
func NewWriter(cfg Config) (*Writer, error) {
	if cfg.URL == "" {
		cfg.URL = nats.DefaultURL
	}
	if cfg.Subject == "" {
		cfg.Subject = "bunasiem.alerts"
	}

	conn, err := nats.Connect(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	return &Writer{conn: conn, subject: cfg.Subject}, nil
}

// WriteAlerts publishes a batch of alerts, one message per alert.
func (w *Writer) WriteAlerts(alerts []*models.Alert) error {
	if w.conn == nil || !w.conn.IsConnected() {
		return fmt.Errorf("nats connection not available")
	}

	for _, alert := range alerts {
		body, err := json.Marshal(alert)
		if err != nil {
			return fmt.Errorf("marshal alert: %w", err)
		}

		headers := nats.Header{}
		headers.Set("x-alert-id", alert.AlertID)
		headers.Set("x-rule-name", alert.RuleName)
		headers.Set("x-severity", alert.Severity)
		headers.Set("x-log-id", strconv.FormatInt(alert.LogID, 10))

		msg := &nats.Msg{
			Subject: w.subject,
			Data:    body,
			Header:  headers,
		}
		if err := w.conn.PublishMsg(msg); err != nil {
			return fmt.Errorf("publish alert %s: %w", alert.AlertID, err)
		}
	}
	return nil
}

// Close drains and closes the connection.
func (w *Writer) Close() error {
	if w.conn != nil {
		w.conn.Close()
	}
	return nil
}
