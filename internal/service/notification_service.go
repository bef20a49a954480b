package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/repository"
)

// EmailSender delivers a plain-text email.
type EmailSender interface {
	Send(ctx context.Context, toName, toEmail, subject, body string) error
}

// NotificationService turns ticket events into customer notifications.
type NotificationService struct {
	dispatcher events.Dispatcher
	users      repository.UserRepository
	sender     EmailSender
	logger     *zap.Logger
}

// NewNotificationService creates the service. A nil sender logs notices instead of
// emailing them.
func NewNotificationService(dispatcher events.Dispatcher, users repository.UserRepository, sender EmailSender, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		users:      users,
		sender:     sender,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to every ticket event.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	events.SubscribeAll(n.dispatcher, n.handle)
}

func (n *NotificationService) handle(ctx context.Context, event events.Event) error {
	n.logger.Info("ticket event",
		zap.String("event_type", string(event.Type)),
		zap.String("ticket_id", event.TicketID),
		zap.String("actor_id", event.Actor.ID),
		zap.String("actor_role", string(event.Actor.Role)))

	if event.Notice == nil || event.Notice.RecipientID == "" {
		return nil
	}
	if n.sender == nil {
		n.logger.Debug("customer notice",
			zap.String("ticket_id", event.TicketID),
			zap.String("recipient_id", event.Notice.RecipientID),
			zap.String("summary", event.Notice.Summary))
		return nil
	}

	user, err := n.users.GetByID(ctx, event.Notice.RecipientID)
	if err != nil {
		return fmt.Errorf("load recipient %s: %w", event.Notice.RecipientID, err)
	}
	subject := fmt.Sprintf("[%s] Update on your support ticket", event.TicketID)
	if err := n.sender.Send(ctx, user.Name, user.Email, subject, event.Notice.Summary); err != nil {
		return fmt.Errorf("email %s: %w", event.TicketID, err)
	}
	return nil
}
