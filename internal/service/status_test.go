package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/incident_reporting_api/internal/models"
	"github.com/shenikar/incident_reporting_api/internal/webhook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestTransitionStatus_NonAdminForbidden(t *testing.T) {
	// Подготовка
	service, _ := newTestIncidentService(t)
	reporter := &models.User{ID: uuid.New()}

	// Действие
	incident, err := service.TransitionStatus(context.Background(), reporter, uuid.New(), "resolved", nil)

	// Проверки
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Nil(t, incident)
}

func TestTransitionStatus_NotFound(t *testing.T) {
	// Подготовка
	service, deps := newTestIncidentService(t)
	ctx := context.Background()
	admin := &models.User{ID: uuid.New(), IsAdmin: true}
	id := uuid.New()

	// Ожидания
	deps.repo.EXPECT().GetByID(ctx, id).Return(nil, ErrNotFound).Times(1)

	// Действие
	_, err := service.TransitionStatus(ctx, admin, id, "bogus", nil)

	// Проверки
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTransitionStatus_UnknownStatus(t *testing.T) {
	// Подготовка
	service, deps := newTestIncidentService(t)
	ctx := context.Background()
	admin := &models.User{ID: uuid.New(), IsAdmin: true}
	existing := &models.Incident{ID: uuid.New(), Status: models.StatusPending}

	// Ожидания
	deps.repo.EXPECT().GetByID(ctx, existing.ID).Return(existing, nil).Times(1)

	// Действие
	_, err := service.TransitionStatus(ctx, admin, existing.ID, "closed", nil)

	// Проверки
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("status"))
	assert.Contains(t, verr.Error(), "pending, in_progress, resolved, rejected")
}

func TestTransitionStatus_SameStatusRejected(t *testing.T) {
	// Подготовка
	service, deps := newTestIncidentService(t)
	ctx := context.Background()
	admin := &models.User{ID: uuid.New(), IsAdmin: true}
	existing := &models.Incident{ID: uuid.New(), Status: models.StatusInProgress}

	// Ожидания
	deps.repo.EXPECT().GetByID(ctx, existing.ID).Return(existing, nil).Times(1)

	// Действие
	_, err := service.TransitionStatus(ctx, admin, existing.ID, "in_progress", nil)

	// Проверки
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Error(), "already in_progress")
}

func TestTransitionStatus_Success_NotifiesByEmailAndSMS(t *testing.T) {
	// Подготовка
	service, deps := newTestIncidentService(t)
	ctx := context.Background()
	admin := &models.User{ID: uuid.New(), Username: "root", IsAdmin: true}
	owner := &models.User{ID: uuid.New(), Username: "amina", Email: "amina@example.com", Phone: strPtr("+254700000000")}
	existing := &models.Incident{ID: uuid.New(), UserID: owner.ID, Title: "Fire", Status: models.StatusPending}
	updated := *existing
	updated.Status = models.StatusResolved
	var record *models.StatusHistory
	var channels []models.Channel
	var event webhook.WebhookEvent

	// Ожидания
	deps.repo.EXPECT().GetByID(ctx, existing.ID).Return(existing, nil).Times(1)
	deps.repo.EXPECT().
		Transition(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, r *models.StatusHistory) (*models.Incident, error) {
			r.ID = uuid.New()
			r.ChangedAt = time.Now()
			record = r
			return &updated, nil
		}).
		Times(1)
	deps.repo.EXPECT().InvalidateIncidentCache(ctx, existing.ID).Return(nil).Times(1)
	deps.publisher.EXPECT().
		Publish(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, e webhook.WebhookEvent) error {
			event = e
			return nil
		}).
		Times(1)
	deps.users.EXPECT().GetByID(ctx, owner.ID).Return(owner, nil).Times(1)
	deps.notifier.EXPECT().
		Notify(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, req models.NotifyRequest) *models.Notification {
			channels = append(channels, req.Channel)
			assert.Equal(t, &existing.ID, req.IncidentID)
			return &models.Notification{Status: models.DeliverySent}
		}).
		Times(2)

	// Действие
	incident, err := service.TransitionStatus(ctx, admin, existing.ID, "resolved", strPtr("  crew dispatched "))

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, models.StatusResolved, incident.Status)
	require.NotNil(t, record)
	assert.Equal(t, models.StatusPending, record.OldStatus)
	assert.Equal(t, models.StatusResolved, record.NewStatus)
	assert.Equal(t, admin.ID, record.ChangedByID)
	require.NotNil(t, record.Note)
	assert.Equal(t, "crew dispatched", *record.Note)
	assert.Equal(t, []models.Channel{models.ChannelEmail, models.ChannelSMS}, channels)
	assert.Equal(t, webhook.EventIncidentStatusChanged, event.Type)
	assert.Equal(t, models.StatusPending, event.OldStatus)
}

func TestTransitionStatus_Success_EmailOnlyWithoutPhone(t *testing.T) {
	// Подготовка
	service, deps := newTestIncidentService(t)
	ctx := context.Background()
	admin := &models.User{ID: uuid.New(), IsAdmin: true}
	owner := &models.User{ID: uuid.New(), Email: "owner@example.com"}
	existing := &models.Incident{ID: uuid.New(), UserID: owner.ID, Status: models.StatusPending}
	updated := *existing
	updated.Status = models.StatusRejected

	// Ожидания
	deps.repo.EXPECT().GetByID(ctx, existing.ID).Return(existing, nil).Times(1)
	deps.repo.EXPECT().Transition(ctx, gomock.Any()).Return(&updated, nil).Times(1)
	deps.repo.EXPECT().InvalidateIncidentCache(ctx, existing.ID).Return(errors.New("redis down")).Times(1)
	deps.publisher.EXPECT().Publish(ctx, gomock.Any()).Return(nil).Times(1)
	deps.users.EXPECT().GetByID(ctx, owner.ID).Return(owner, nil).Times(1)
	deps.notifier.EXPECT().
		Notify(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, req models.NotifyRequest) *models.Notification {
			assert.Equal(t, models.ChannelEmail, req.Channel)
			assert.Contains(t, req.Message, "from pending to rejected")
			return &models.Notification{Status: models.DeliveryFailed}
		}).
		Times(1)

	// Действие
	incident, err := service.TransitionStatus(ctx, admin, existing.ID, "rejected", strPtr("   "))

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, incident.Status)
}

func TestTransitionStatus_ConflictPropagates(t *testing.T) {
	// Подготовка
	service, deps := newTestIncidentService(t)
	ctx := context.Background()
	admin := &models.User{ID: uuid.New(), IsAdmin: true}
	existing := &models.Incident{ID: uuid.New(), Status: models.StatusPending}

	// Ожидания
	deps.repo.EXPECT().GetByID(ctx, existing.ID).Return(existing, nil).Times(1)
	deps.repo.EXPECT().Transition(ctx, gomock.Any()).Return(nil, ErrConflict).Times(1)

	// Действие
	incident, err := service.TransitionStatus(ctx, admin, existing.ID, "resolved", nil)

	// Проверки
	assert.ErrorIs(t, err, ErrConflict)
	assert.Nil(t, incident)
}

func TestTransitionStatus_OwnerLookupFailureStillSucceeds(t *testing.T) {
	// Подготовка
	service, deps := newTestIncidentService(t)
	ctx := context.Background()
	admin := &models.User{ID: uuid.New(), IsAdmin: true}
	existing := &models.Incident{ID: uuid.New(), UserID: uuid.New(), Status: models.StatusInProgress}
	updated := *existing
	updated.Status = models.StatusResolved

	// Ожидания
	deps.repo.EXPECT().GetByID(ctx, existing.ID).Return(existing, nil).Times(1)
	deps.repo.EXPECT().Transition(ctx, gomock.Any()).Return(&updated, nil).Times(1)
	deps.repo.EXPECT().InvalidateIncidentCache(ctx, existing.ID).Return(nil).Times(1)
	deps.publisher.EXPECT().Publish(ctx, gomock.Any()).Return(nil).Times(1)
	deps.users.EXPECT().GetByID(ctx, existing.UserID).Return(nil, ErrNotFound).Times(1)

	// Действие
	incident, err := service.TransitionStatus(ctx, admin, existing.ID, "resolved", nil)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, models.StatusResolved, incident.Status)
}
