package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/incident_reporting_api/internal/metrics"
	"github.com/shenikar/incident_reporting_api/internal/models"
	"github.com/sirupsen/logrus"
)

//go:generate mockgen -source=notification.go -destination=mocks/mock_notification.go -package=mocks

const (
	defaultNotifyTimeout     = 5 * time.Second
	defaultNotificationLimit = 20
	maxNotificationLimit     = 100
)

var errChannelNotConfigured = errors.New("channel is not configured")

// NotificationService отдает пользователю его уведомления
type NotificationService interface {
	ListNotifications(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Notification, error)
}

// NotificationDispatcher отправляет уведомления и всегда сохраняет запись о результате.
// Ошибки канала и хранилища поглощаются здесь и не доходят до вызывающего.
type NotificationDispatcher struct {
	repo    NotificationRepository
	senders map[models.Channel]Sender
	timeout time.Duration
	logger  *logrus.Logger
}

func NewNotificationDispatcher(repo NotificationRepository, senders map[models.Channel]Sender, timeout time.Duration, logger *logrus.Logger) *NotificationDispatcher {
	if timeout <= 0 {
		timeout = defaultNotifyTimeout
	}
	if senders == nil {
		senders = map[models.Channel]Sender{}
	}
	return &NotificationDispatcher{
		repo:    repo,
		senders: senders,
		timeout: timeout,
		logger:  logger,
	}
}

// Notify отправляет уведомление по каналу и возвращает запись со статусом sent или failed
func (d *NotificationDispatcher) Notify(ctx context.Context, req models.NotifyRequest) *models.Notification {
	notification := &models.Notification{
		IncidentID: req.IncidentID,
		Channel:    req.Channel,
		Message:    req.Message,
		Status:     models.DeliveryFailed,
	}
	if req.Recipient != nil {
		notification.UserID = req.Recipient.ID
	}

	log := d.logger.WithFields(logrus.Fields{
		"service": "notification",
		"method":  "Notify",
		"channel": req.Channel,
		"user_id": notification.UserID,
	})

	// Отмена запроса не должна обрывать уже начатую отправку
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
	defer cancel()

	if err := d.send(sendCtx, req); err != nil {
		log.WithError(err).Warn("Notification delivery failed")
	} else {
		notification.Status = models.DeliverySent
		log.Info("Notification delivered")
	}
	notification.SentAt = time.Now().UTC()
	metrics.NotificationDispatched(string(notification.Channel), string(notification.Status))

	// Без получателя запись не к чему привязать
	if req.Recipient == nil {
		return notification
	}

	if err := d.repo.Create(sendCtx, notification); err != nil {
		log.WithError(err).Error("Failed to record notification")
	}
	return notification
}

func (d *NotificationDispatcher) send(ctx context.Context, req models.NotifyRequest) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sender panicked: %v", r)
		}
	}()

	if req.Recipient == nil {
		return errors.New("recipient is missing")
	}

	sender, ok := d.senders[req.Channel]
	if !ok || sender == nil {
		return fmt.Errorf("%s: %w", req.Channel, errChannelNotConfigured)
	}

	to, err := address(req.Recipient, req.Channel)
	if err != nil {
		return err
	}
	return sender.Send(ctx, to, req.Subject, req.Message)
}

func address(user *models.User, channel models.Channel) (string, error) {
	switch channel {
	case models.ChannelEmail:
		if user.Email == "" {
			return "", errors.New("recipient has no email")
		}
		return user.Email, nil
	case models.ChannelSMS:
		if user.Phone == nil || *user.Phone == "" {
			return "", errors.New("recipient has no phone")
		}
		return *user.Phone, nil
	default:
		return "", fmt.Errorf("unknown channel %q", channel)
	}
}

// ListNotifications возвращает последние уведомления пользователя
func (d *NotificationDispatcher) ListNotifications(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Notification, error) {
	if limit < 1 {
		limit = defaultNotificationLimit
	}
	if limit > maxNotificationLimit {
		limit = maxNotificationLimit
	}

	notifications, err := d.repo.ListByUser(ctx, userID, limit)
	if err != nil {
		d.logger.WithError(err).WithField("user_id", userID).Error("Failed to list notifications")
		return nil, fmt.Errorf("service: could not list notifications: %w", err)
	}
	return notifications, nil
}
