package service

import (
	"context"

	"github.com/dormops/dormd/internal/model"
	"go.uber.org/zap"
)

// notify sends one notification, logging a failure instead of returning
// it. State transitions never depend on a notification going out.
func notify(ctx context.Context, sink NotificationSink, logger *zap.Logger, recipientID int64, kind, title, body string) {
	if err := sink.Send(ctx, recipientID, kind, title, body); err != nil {
		logger.Warn("Failed to send notification",
			zap.Int64("recipient_id", recipientID),
			zap.String("title", title),
			zap.Error(err),
		)
	}
}

// notifyRole sends the same notification to every user holding the role
func notifyRole(ctx context.Context, users UserStore, sink NotificationSink, logger *zap.Logger, role model.Role, kind, title, body string) {
	staff, err := users.ListByRole(ctx, role)
	if err != nil {
		logger.Warn("Failed to list staff for notification",
			zap.String("role", string(role)),
			zap.Error(err),
		)
		return
	}

	for _, u := range staff {
		notify(ctx, sink, logger, u.ID, kind, title, body)
	}
}
