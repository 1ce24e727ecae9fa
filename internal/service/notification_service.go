package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/backoffice-service/internal/config"
	"github.com/spec-kit/backoffice-service/internal/events"
)

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
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
	n.dispatcher.Subscribe(events.EventEmployeeCreated, n.handleEmployeeCreated)
	n.dispatcher.Subscribe(events.EventEmployeeRoleChanged, n.handleEmployeeRoleChanged)
	n.dispatcher.Subscribe(events.EventShiftPublished, n.handleShiftPublished)
	n.dispatcher.Subscribe(events.EventShiftCoverageFailed, n.handleShiftCoverageFailed)
	n.dispatcher.Subscribe(events.EventTaskAssigned, n.handleTaskAssigned)
	n.dispatcher.Subscribe(events.EventTaskCompleted, n.handleTaskCompleted)
}

func (n *NotificationService) handleEmployeeCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("EmployeeCreated", zap.String("employee_id", event.SubjectID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleEmployeeRoleChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("EmployeeRoleChanged", zap.String("employee_id", event.SubjectID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleShiftPublished(ctx context.Context, event events.Event) error {
	n.logger.Info("ShiftPublished", zap.String("shift_id", event.SubjectID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleShiftCoverageFailed(ctx context.Context, event events.Event) error {
	n.logger.Warn("ShiftCoverageFailed", zap.String("shift_id", event.SubjectID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleTaskAssigned(ctx context.Context, event events.Event) error {
	n.logger.Info("TaskAssigned", zap.String("task_id", event.SubjectID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleTaskCompleted(ctx context.Context, event events.Event) error {
	n.logger.Info("TaskCompleted", zap.String("task_id", event.SubjectID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("subject_id", event.SubjectID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("subject_id", event.SubjectID),
		zap.String("event_type", string(event.Type)))
}
