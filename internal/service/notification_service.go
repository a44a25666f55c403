package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/volunteer-hub/internal/config"
	"github.com/spec-kit/volunteer-hub/internal/events"
)

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventPublished, n.handleEventPublished)
	n.dispatcher.Subscribe(events.EventCancelled, n.handleEventCancelled)
	n.dispatcher.Subscribe(events.VolunteerRegistered, n.handleVolunteerRegistered)
	n.dispatcher.Subscribe(events.PostCreated, n.handlePostCreated)
	n.dispatcher.Subscribe(events.CommentAdded, n.handleCommentAdded)
}

func (n *NotificationService) handleEventPublished(ctx context.Context, event events.Event) error {
	n.logger.Info("EventPublished", zap.Int64("event_id", event.EventID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleEventCancelled(ctx context.Context, event events.Event) error {
	n.logger.Info("EventCancelled", zap.Int64("event_id", event.EventID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleVolunteerRegistered(ctx context.Context, event events.Event) error {
	n.logger.Info("VolunteerRegistered", zap.Int64("event_id", event.EventID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handlePostCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("PostCreated", zap.Int64("event_id", event.EventID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleCommentAdded(ctx context.Context, event events.Event) error {
	n.logger.Info("CommentAdded", zap.Int64("event_id", event.EventID), zap.Any("payload", event.Payload))
	return nil
}

// sendEmailNotificationStub is a placeholder for an email provider
// integration.
func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event) {
	n.logger.Debug("email notification stub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("event_type", string(event.Type)),
	)
}

// sendWebhookNotificationStub is a placeholder for a webhook delivery.
func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if n.cfg.WebhookURL == "" {
		return
	}
	n.logger.Debug("webhook notification stub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("event_type", string(event.Type)),
	)
}
