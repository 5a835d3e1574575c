// Package notify fans forced-logout signals out to interested parties.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/quillpost/gateway-client/internal/constants"
	"github.com/quillpost/gateway-client/pkg/gateway"
)

// Publisher is the subset of *nats.Conn the notifier needs.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// LogoutEvent is published when a session can no longer be recovered.
type LogoutEvent struct {
	Code       gateway.ErrorCode `json:"code"`
	Endpoint   string            `json:"endpoint"`
	OccurredAt time.Time         `json:"occurredAt"`
}

// NATSNotifier publishes LogoutEvents on a NATS subject.
type NATSNotifier struct {
	publisher Publisher
	conn      *nats.Conn
	subject   string
	endpoint  string
	logger    gateway.Logger
}

// NewNATSNotifier creates a notifier over an existing publisher. An empty
// subject means constants.DefaultLogoutSubject.
func NewNATSNotifier(publisher Publisher, subject, endpoint string, logger gateway.Logger) *NATSNotifier {
	if subject == "" {
		subject = constants.DefaultLogoutSubject
	}

	return &NATSNotifier{
		publisher: publisher,
		subject:   subject,
		endpoint:  endpoint,
		logger:    logger,
	}
}

// Connect dials the NATS server at url and returns a notifier owning the
// connection.
func Connect(url, subject, endpoint string, logger gateway.Logger) (*NATSNotifier, error) {
	conn, err := nats.Connect(url,
		nats.Name("quill-gateway-client"),
		nats.Timeout(constants.DefaultHTTPTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}

	notifier := NewNATSNotifier(conn, subject, endpoint, logger)
	notifier.conn = conn

	return notifier, nil
}

// Subject returns the subject events are published on.
func (n *NATSNotifier) Subject() string {
	return n.subject
}

// Notify publishes one event.
func (n *NATSNotifier) Notify(ctx context.Context, code gateway.ErrorCode) error {
	data, err := json.Marshal(LogoutEvent{
		Code:       code,
		Endpoint:   n.endpoint,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode logout event: %w", err)
	}

	err = n.publisher.Publish(n.subject, data)
	if err != nil {
		return fmt.Errorf("failed to publish logout event: %w", err)
	}

	return nil
}

// Handler returns a LogoutHandler that publishes events and logs failures.
func (n *NATSNotifier) Handler() gateway.LogoutHandler {
	return func(ctx context.Context, code gateway.ErrorCode) {
		err := n.Notify(ctx, code)
		if err != nil && n.logger != nil {
			n.logger.Warn("Logout notification failed", map[string]interface{}{
				"subject": n.subject,
				"error":   err.Error(),
			})
		}
	}
}

// Close flushes and closes the owned connection, if any.
func (n *NATSNotifier) Close() {
	if n.conn == nil {
		return
	}

	_ = n.conn.Drain()
}

// Chain combines handlers into one, skipping nils. Handlers run in order.
func Chain(handlers ...gateway.LogoutHandler) gateway.LogoutHandler {
	var active []gateway.LogoutHandler

	for _, handler := range handlers {
		if handler != nil {
			active = append(active, handler)
		}
	}

	if len(active) == 0 {
		return nil
	}

	return func(ctx context.Context, code gateway.ErrorCode) {
		for _, handler := range active {
			handler(ctx, code)
		}
	}
}
