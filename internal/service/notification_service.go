package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/campaign-service/internal/events"
)

// NotificationService fans domain events out to the audit log. Email
// side effects for verification codes go through the Mailer directly;
// these handlers cover cross-cutting notification concerns.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventUserRegistered, n.handleUserRegistered)
	n.dispatcher.Subscribe(events.EventEmailVerified, n.handleEmailVerified)
	n.dispatcher.Subscribe(events.EventAccountLocked, n.handleAccountLocked)
	n.dispatcher.Subscribe(events.EventPaymentSucceeded, n.handlePaymentSucceeded)
}

func (n *NotificationService) handleUserRegistered(_ context.Context, event events.Event) error {
	n.logger.Info("UserRegistered", zap.String("subject_id", event.SubjectID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleEmailVerified(_ context.Context, event events.Event) error {
	n.logger.Info("EmailVerified", zap.String("subject_id", event.SubjectID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleAccountLocked(_ context.Context, event events.Event) error {
	n.logger.Warn("AccountLocked", zap.String("subject_id", event.SubjectID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handlePaymentSucceeded(_ context.Context, event events.Event) error {
	n.logger.Info("PaymentSucceeded", zap.String("subject_id", event.SubjectID), zap.Any("payload", event.Payload))
	return nil
}
