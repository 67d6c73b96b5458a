package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/rental-service/internal/config"
	"github.com/spec-kit/rental-service/internal/events"
)

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	logger *zap.Logger
	cfg    config.NotificationConfig
}

// NewNotificationService creates the service. Delivery is driven by the
// notification worker, which feeds Handle.
func NewNotificationService(logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		logger: nopIfNil(logger),
		cfg:    cfg,
	}
}

// HandledEvents lists the event types the service reacts to.
func (n *NotificationService) HandledEvents() []events.EventType {
	return []events.EventType{
		events.EventBookingCreated,
		events.EventUserRegistered,
		events.EventUserPromoted,
		events.EventListingDeleted,
	}
}

// Handle routes one event to its notification handler.
func (n *NotificationService) Handle(ctx context.Context, event events.Event) error {
	switch event.Type {
	case events.EventBookingCreated:
		return n.handleBookingCreated(ctx, event)
	case events.EventUserRegistered:
		return n.handleUserRegistered(ctx, event)
	case events.EventUserPromoted:
		return n.handleUserPromoted(ctx, event)
	case events.EventListingDeleted:
		return n.handleListingDeleted(ctx, event)
	}
	return nil
}

func (n *NotificationService) handleBookingCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("BookingCreated", zap.String("booking_id", event.ResourceID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleUserRegistered(ctx context.Context, event events.Event) error {
	n.logger.Info("UserRegistered", zap.String("user_id", event.ResourceID))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleUserPromoted(ctx context.Context, event events.Event) error {
	n.logger.Info("UserPromoted", zap.String("user_id", event.ResourceID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleListingDeleted(ctx context.Context, event events.Event) error {
	n.logger.Info("ListingDeleted", zap.String("listing_id", event.ResourceID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("resource_id", event.ResourceID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("resource_id", event.ResourceID),
		zap.String("event_type", string(event.Type)))
}
