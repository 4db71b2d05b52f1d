package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/lead-service/internal/events"
)

// NotificationService logs lead activity for operators. It subscribes to the
// dispatcher so services stay unaware of the notification concern.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger) *NotificationService {
	return &NotificationService{dispatcher: dispatcher, logger: logger}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventLeadCreated, n.handleLeadCreated)
	n.dispatcher.Subscribe(events.EventLeadStatusChanged, n.handleLeadStatusChanged)
	n.dispatcher.Subscribe(events.EventLeadsAssigned, n.handleLeadsAssigned)
	n.dispatcher.Subscribe(events.EventLeadDeleted, n.handleLeadDeleted)
}

func (n *NotificationService) handleLeadCreated(_ context.Context, event events.Event) error {
	n.logger.Info("LeadCreated", zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleLeadStatusChanged(_ context.Context, event events.Event) error {
	n.logger.Info("LeadStatusChanged", zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleLeadsAssigned(_ context.Context, event events.Event) error {
	n.logger.Info("LeadsAssigned", zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleLeadDeleted(_ context.Context, event events.Event) error {
	n.logger.Info("LeadDeleted", zap.Any("payload", event.Payload))
	return nil
}
