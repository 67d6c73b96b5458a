package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Publisher is the part of *nats.Conn the bridge needs.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// natsBridge forwards every event to NATS after local handlers ran.
type natsBridge struct {
	Dispatcher
	conn   Publisher
	prefix string
	logger *zap.Logger
}

// NewNATSBridge wraps local so published events are also sent to
// "<prefix>.<event type>" on conn.
func NewNATSBridge(local Dispatcher, conn Publisher, prefix string, logger *zap.Logger) Dispatcher {
	return &natsBridge{Dispatcher: local, conn: conn, prefix: prefix, logger: logger}
}

func (b *natsBridge) Publish(ctx context.Context, event Event) error {
	localErr := b.Dispatcher.Publish(ctx, event)

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event %s: %w", event.Type, err)
	}
	subject := b.Subject(event.Type)
	if err := b.conn.Publish(subject, data); err != nil {
		b.logger.Warn("nats publish failed", zap.String("subject", subject), zap.Error(err))
		return err
	}
	return localErr
}

// Subject returns the NATS subject used for an event type.
func (b *natsBridge) Subject(t EventType) string {
	if b.prefix == "" {
		return string(t)
	}
	return b.prefix + "." + string(t)
}

// ConnectNATS dials the broker with unlimited reconnects.
func ConnectNATS(url, name string, logger *zap.Logger) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name(name),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	)
}
