package repository

import (
	"context"
	"fmt"

	"github.com/dormops/dormd/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NotificationRepository struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

// Create inserts a notification
func (r *NotificationRepository) Create(ctx context.Context, n *model.Notification) error {
	query := `
		INSERT INTO notifications (recipient_id, kind, title, body, read)
		VALUES ($1, $2, $3, $4, FALSE)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		n.RecipientID,
		n.Kind,
		n.Title,
		n.Body,
	).Scan(&n.ID, &n.CreatedAt)

	if err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	return nil
}

// ListByRecipient lists a user's notifications, newest first
func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipientID int64) ([]*model.Notification, error) {
	query := `
		SELECT id, recipient_id, kind, title, body, read, created_at
		FROM notifications
		WHERE recipient_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, recipientID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*model.Notification
	for rows.Next() {
		var n model.Notification
		err := rows.Scan(
			&n.ID,
			&n.RecipientID,
			&n.Kind,
			&n.Title,
			&n.Body,
			&n.Read,
			&n.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, &n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}

	return notifications, nil
}

// MarkRead marks one notification as read
func (r *NotificationRepository) MarkRead(ctx context.Context, id int64) error {
	query := `
		UPDATE notifications
		SET read = TRUE
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("notification not found")
	}

	return nil
}

// MarkAllRead marks all of a user's notifications as read
func (r *NotificationRepository) MarkAllRead(ctx context.Context, recipientID int64) error {
	query := `
		UPDATE notifications
		SET read = TRUE
		WHERE recipient_id = $1 AND read = FALSE
	`

	_, err := r.pool.Exec(ctx, query, recipientID)
	if err != nil {
		return fmt.Errorf("mark all notifications read: %w", err)
	}

	return nil
}

// CountUnread counts a user's unread notifications
func (r *NotificationRepository) CountUnread(ctx context.Context, recipientID int64) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM notifications
		WHERE recipient_id = $1 AND read = FALSE
	`

	var count int64
	err := r.pool.QueryRow(ctx, query, recipientID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}

	return count, nil
}
