package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/incident_reporting_api/internal/models"
	"github.com/shenikar/incident_reporting_api/internal/service/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestDispatcher(t *testing.T, withSMS bool) (*NotificationDispatcher, *mocks.MockNotificationRepository, *mocks.MockSender, *mocks.MockSender) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockNotificationRepository(ctrl)
	email := mocks.NewMockSender(ctrl)
	sms := mocks.NewMockSender(ctrl)

	senders := map[models.Channel]Sender{models.ChannelEmail: email}
	if withSMS {
		senders[models.ChannelSMS] = sms
	}

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})

	return NewNotificationDispatcher(repo, senders, time.Second, logger), repo, email, sms
}

func TestNotify_SentIsRecorded(t *testing.T) {
	// Подготовка
	dispatcher, repo, email, _ := newTestDispatcher(t, true)
	user := &models.User{ID: uuid.New(), Email: "amina@example.com"}
	incidentID := uuid.New()

	// Ожидания
	email.EXPECT().Send(gomock.Any(), "amina@example.com", "Subject", "Body").Return(nil).Times(1)
	repo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, n *models.Notification) error {
			assert.Equal(t, models.DeliverySent, n.Status)
			assert.Equal(t, user.ID, n.UserID)
			assert.False(t, n.SentAt.IsZero())
			return nil
		}).
		Times(1)

	// Действие
	n := dispatcher.Notify(context.Background(), models.NotifyRequest{
		Recipient:  user,
		Channel:    models.ChannelEmail,
		Subject:    "Subject",
		Message:    "Body",
		IncidentID: &incidentID,
	})

	// Проверки
	require.NotNil(t, n)
	assert.Equal(t, models.DeliverySent, n.Status)
	assert.Equal(t, &incidentID, n.IncidentID)
}

func TestNotify_ChannelFailureIsRecordedAsFailed(t *testing.T) {
	// Подготовка
	dispatcher, repo, email, _ := newTestDispatcher(t, false)
	user := &models.User{ID: uuid.New(), Email: "amina@example.com"}

	// Ожидания
	email.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("503 from provider")).Times(1)
	repo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, n *models.Notification) error {
			assert.Equal(t, models.DeliveryFailed, n.Status)
			return nil
		}).
		Times(1)

	// Действие
	n := dispatcher.Notify(context.Background(), models.NotifyRequest{Recipient: user, Channel: models.ChannelEmail, Message: "m"})

	// Проверки
	assert.Equal(t, models.DeliveryFailed, n.Status)
}

func TestNotify_UnconfiguredChannelFails(t *testing.T) {
	// Подготовка
	dispatcher, repo, _, _ := newTestDispatcher(t, false)
	phone := "+254700000000"
	user := &models.User{ID: uuid.New(), Phone: &phone}

	// Ожидания
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	// Действие
	n := dispatcher.Notify(context.Background(), models.NotifyRequest{Recipient: user, Channel: models.ChannelSMS, Message: "m"})

	// Проверки
	assert.Equal(t, models.DeliveryFailed, n.Status)
	assert.Equal(t, models.ChannelSMS, n.Channel)
}

func TestNotify_SMSWithoutPhoneFails(t *testing.T) {
	// Подготовка
	dispatcher, repo, _, _ := newTestDispatcher(t, true)
	user := &models.User{ID: uuid.New()}

	// Ожидания
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	// Действие
	n := dispatcher.Notify(context.Background(), models.NotifyRequest{Recipient: user, Channel: models.ChannelSMS})

	// Проверки
	assert.Equal(t, models.DeliveryFailed, n.Status)
}

func TestNotify_SenderPanicIsContained(t *testing.T) {
	// Подготовка
	dispatcher, repo, email, _ := newTestDispatcher(t, false)
	user := &models.User{ID: uuid.New(), Email: "a@b.c"}

	// Ожидания
	email.EXPECT().
		Send(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, string, string, string) error { panic("boom") }).
		Times(1)
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	// Действие
	var n *models.Notification
	assert.NotPanics(t, func() {
		n = dispatcher.Notify(context.Background(), models.NotifyRequest{Recipient: user, Channel: models.ChannelEmail})
	})

	// Проверки
	assert.Equal(t, models.DeliveryFailed, n.Status)
}

func TestNotify_StorageFailureIsSwallowed(t *testing.T) {
	// Подготовка
	dispatcher, repo, email, _ := newTestDispatcher(t, false)
	user := &models.User{ID: uuid.New(), Email: "a@b.c"}

	// Ожидания
	email.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(1)
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("db down")).Times(1)

	// Действие
	n := dispatcher.Notify(context.Background(), models.NotifyRequest{Recipient: user, Channel: models.ChannelEmail})

	// Проверки
	assert.Equal(t, models.DeliverySent, n.Status)
}

func TestNotify_CancelledRequestStillSends(t *testing.T) {
	// Подготовка
	dispatcher, repo, email, _ := newTestDispatcher(t, false)
	user := &models.User{ID: uuid.New(), Email: "a@b.c"}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Ожидания
	email.EXPECT().
		Send(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _, _, _ string) error {
			return ctx.Err()
		}).
		Times(1)
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	// Действие
	n := dispatcher.Notify(ctx, models.NotifyRequest{Recipient: user, Channel: models.ChannelEmail})

	// Проверки
	assert.Equal(t, models.DeliverySent, n.Status)
}

func TestListNotifications_ClampsLimit(t *testing.T) {
	// Подготовка
	dispatcher, repo, _, _ := newTestDispatcher(t, false)
	ctx := context.Background()
	userID := uuid.New()
	expected := []*models.Notification{{ID: uuid.New()}}

	// Ожидания
	repo.EXPECT().ListByUser(ctx, userID, maxNotificationLimit).Return(expected, nil).Times(1)
	repo.EXPECT().ListByUser(ctx, userID, defaultNotificationLimit).Return(nil, errors.New("db down")).Times(1)

	// Действие
	got, err := dispatcher.ListNotifications(ctx, userID, 1000)
	_, errDefault := dispatcher.ListNotifications(ctx, userID, 0)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, expected, got)
	assert.Error(t, errDefault)
}
