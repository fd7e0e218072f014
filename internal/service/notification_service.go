package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/sla-service/internal/config"
	"github.com/spec-kit/sla-service/internal/events"
)

// NotificationService forwards SLA events to alerting sinks so dashboards
// and on-call tooling learn about breaches without polling.
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
	n.dispatcher.Subscribe(events.EventBreachDetected, n.handleBreachDetected)
	n.dispatcher.Subscribe(events.EventTrackingRecordCreated, n.handleRecordCreated)
	n.dispatcher.Subscribe(events.EventResolutionRecorded, n.handleResolutionRecorded)
}

func (n *NotificationService) handleBreachDetected(ctx context.Context, event events.Event) error {
	n.logger.Warn("SlaBreachDetected",
		zap.String("case_id", event.CaseID),
		zap.String("store_id", event.StoreID),
		zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleRecordCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("SlaRecordCreated", zap.String("case_id", event.CaseID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleResolutionRecorded(ctx context.Context, event events.Event) error {
	n.logger.Info("SlaResolutionRecorded", zap.String("case_id", event.CaseID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("case_id", event.CaseID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("case_id", event.CaseID),
		zap.String("event_type", string(event.Type)))
}
