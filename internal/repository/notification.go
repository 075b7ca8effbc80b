package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/incident_reporting_api/internal/models"
	"github.com/shenikar/incident_reporting_api/internal/service"
)

type NotificationRepository struct {
	db *pgxpool.Pool
}

func NewNotificationRepository(db *pgxpool.Pool) service.NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create записывает результат отправки уведомления
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	query := `
		INSERT INTO notifications (user_id, incident_id, channel, message, sent_at, status)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id;
	`
	err := r.db.QueryRow(ctx, query,
		n.UserID,
		n.IncidentID,
		string(n.Channel),
		n.Message,
		n.SentAt,
		string(n.Status),
	).Scan(&n.ID)
	if err != nil {
		return fmt.Errorf("failed to record notification: %w", err)
	}
	return nil
}

// ListByUser возвращает последние уведомления пользователя, новые первыми
func (r *NotificationRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Notification, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, incident_id, channel, message, sent_at, status
		FROM notifications
		WHERE user_id = $1
		ORDER BY sent_at DESC, id DESC
		LIMIT $2;
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	notifications := make([]*models.Notification, 0)
	for rows.Next() {
		n := &models.Notification{}
		if err := rows.Scan(&n.ID, &n.UserID, &n.IncidentID, &n.Channel, &n.Message, &n.SentAt, &n.Status); err != nil {
			return nil, fmt.Errorf("failed to scan notification row: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error notification iteration: %w", err)
	}
	return notifications, nil
}
