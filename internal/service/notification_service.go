package service

import (
	"context"
	"fmt"

	"github.com/dormops/dormd/internal/model"
	"go.uber.org/zap"
)

// Relay pushes a notification text to an external channel (Telegram).
// Optional and best-effort.
type Relay interface {
	Notify(ctx context.Context, chatID int64, text string) error
}

// NotificationService is the notification sink: it persists every
// notification and, when a relay is configured and the recipient has a
// linked chat, pushes a copy there. Relay failures are logged only.
type NotificationService struct {
	store  NotificationStore
	users  UserStore
	relay  Relay
	logger *zap.Logger
}

func NewNotificationService(store NotificationStore, users UserStore, relay Relay, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		store:  store,
		users:  users,
		relay:  relay,
		logger: logger,
	}
}

// Send persists the notification for the recipient
func (s *NotificationService) Send(ctx context.Context, recipientID int64, kind, title, body string) error {
	n := &model.Notification{
		RecipientID: recipientID,
		Kind:        kind,
		Title:       title,
		Body:        body,
	}

	if err := s.store.Create(ctx, n); err != nil {
		return fmt.Errorf("send notification: %w", err)
	}

	if s.relay != nil {
		s.relayToChat(ctx, recipientID, title+"\n\n"+body)
	}

	return nil
}

func (s *NotificationService) relayToChat(ctx context.Context, recipientID int64, text string) {
	user, err := s.users.GetByID(ctx, recipientID)
	if err != nil {
		s.logger.Warn("Failed to look up relay recipient",
			zap.Int64("recipient_id", recipientID),
			zap.Error(err),
		)
		return
	}
	if user == nil || user.TelegramChatID == nil {
		return
	}

	if err := s.relay.Notify(ctx, *user.TelegramChatID, text); err != nil {
		s.logger.Warn("Failed to relay notification",
			zap.Int64("recipient_id", recipientID),
			zap.Error(err),
		)
	}
}

// Inbox lists a user's notifications, newest first
func (s *NotificationService) Inbox(ctx context.Context, recipientID int64) ([]*model.Notification, error) {
	return s.store.ListByRecipient(ctx, recipientID)
}

// MarkRead marks one notification as read
func (s *NotificationService) MarkRead(ctx context.Context, id int64) error {
	return s.store.MarkRead(ctx, id)
}

// MarkAllRead marks all of a user's notifications as read
func (s *NotificationService) MarkAllRead(ctx context.Context, recipientID int64) error {
	return s.store.MarkAllRead(ctx, recipientID)
}

// CountUnread counts a user's unread notifications
func (s *NotificationService) CountUnread(ctx context.Context, recipientID int64) (int64, error) {
	return s.store.CountUnread(ctx, recipientID)
}
