//go:build integration

package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/incident_reporting_api/internal/models"
	"github.com/shenikar/incident_reporting_api/internal/service"
	"github.com/shenikar/incident_reporting_api/migrations"
	"github.com/shenikar/incident_reporting_api/pkg/postgres"
	pkgredis "github.com/shenikar/incident_reporting_api/pkg/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Запуск: TEST_DATABASE_URL=postgres://... go test -tags integration ./internal/repository/
func newTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}
	require.NoError(t, migrations.Up(url))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	db, err := postgres.NewPostgresDB(ctx, url, 4)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return db
}

func createTestUser(t *testing.T, repo service.UserRepository, isAdmin bool) *models.User {
	t.Helper()
	suffix := uuid.NewString()[:8]
	user := &models.User{
		Username:     "user-" + suffix,
		Email:        "user-" + suffix + "@example.com",
		PasswordHash: "hash",
		IsAdmin:      isAdmin,
	}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	existing := createTestUser(t, repo, false)

	dup := &models.User{Username: "other-" + uuid.NewString()[:8], Email: existing.Email, PasswordHash: "hash"}
	err := repo.Create(context.Background(), dup)

	assert.ErrorIs(t, err, service.ErrDuplicateEmail)
}

func TestUserRepository_SetAdmin(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	user := createTestUser(t, repo, false)
	ctx := context.Background()

	require.NoError(t, repo.SetAdmin(ctx, user.Email, true))
	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, got.IsAdmin)

	assert.ErrorIs(t, repo.SetAdmin(ctx, "nobody-"+uuid.NewString()+"@example.com", true), service.ErrNotFound)
}

func TestIncidentRepository_Lifecycle(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	incidents := NewIncidentRepository(db, nil, time.Minute)
	ctx := context.Background()

	owner := createTestUser(t, users, false)
	admin := createTestUser(t, users, true)

	lat, lon := -1.28, 36.82
	incident := &models.Incident{
		UserID:      owner.ID,
		Title:       "Flooded road",
		Description: "Water over the bridge",
		Status:      models.InitialStatus,
		Latitude:    &lat,
		Longitude:   &lon,
	}
	media := []*models.Media{{Kind: models.MediaImage, FileURL: "http://cdn/a.png"}}
	require.NoError(t, incidents.Create(ctx, incident, media))
	require.NotEqual(t, uuid.Nil, incident.ID)

	// Смена статуса пишет историю и обновляет инцидент
	note := "crew dispatched"
	updated, err := incidents.Transition(ctx, &models.StatusHistory{
		IncidentID:  incident.ID,
		ChangedByID: admin.ID,
		OldStatus:   models.StatusPending,
		NewStatus:   models.StatusInProgress,
		Note:        &note,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, updated.Status)

	// Устаревший old_status означает параллельную смену
	_, err = incidents.Transition(ctx, &models.StatusHistory{
		IncidentID:  incident.ID,
		ChangedByID: admin.ID,
		OldStatus:   models.StatusPending,
		NewStatus:   models.StatusResolved,
	})
	assert.ErrorIs(t, err, service.ErrConflict)

	detail, err := incidents.GetDetail(ctx, incident.ID)
	require.NoError(t, err)
	assert.Equal(t, owner.Username, detail.Reporter)
	require.Len(t, detail.Media, 1)
	require.Len(t, detail.History, 1)
	assert.Equal(t, admin.Username, detail.History[0].ChangedBy)
	assert.Equal(t, &note, detail.History[0].Note)

	status := models.StatusInProgress
	list, total, err := incidents.List(ctx, models.IncidentFilter{Status: &status, Page: 1, PerPage: 100})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, total, 1)
	assert.NotEmpty(t, list)

	// История неизменяема
	_, err = db.Exec(ctx, `UPDATE status_history SET note = 'edited' WHERE incident_id = $1`, incident.ID)
	assert.ErrorContains(t, err, "append-only")
	_, err = db.Exec(ctx, `DELETE FROM status_history WHERE incident_id = $1`, incident.ID)
	assert.ErrorContains(t, err, "append-only")

	after, err := incidents.GetDetail(ctx, incident.ID)
	require.NoError(t, err)
	assert.Len(t, after.History, 1)
}

// Запуск: TEST_REDIS_ADDR=localhost:6379 go test -tags integration ./internal/repository/
func TestIncidentRepository_CacheVersionGuard(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR is not set")
	}
	ctx := context.Background()
	rdb, err := pkgredis.NewRedisClient(ctx, addr, "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	repo := NewIncidentRepository(nil, rdb, time.Minute)
	detail := &models.IncidentDetail{Incident: models.Incident{ID: uuid.New(), Status: models.StatusPending}}
	t.Cleanup(func() { rdb.Del(ctx, cacheKey(detail.ID), versionKey(detail.ID)) })

	// Читатель запомнил версию, затем параллельная смена статуса инвалидировала кеш
	version, err := repo.CacheVersion(ctx, detail.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), version)
	require.NoError(t, repo.InvalidateIncidentCache(ctx, detail.ID))

	stored, err := repo.SetIncidentCache(ctx, detail, version)
	require.NoError(t, err)
	assert.False(t, stored)
	cached, err := repo.GetIncidentFromCache(ctx, detail.ID)
	require.NoError(t, err)
	assert.Nil(t, cached)

	// Свежая версия позволяет записать
	version, err = repo.CacheVersion(ctx, detail.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)
	stored, err = repo.SetIncidentCache(ctx, detail, version)
	require.NoError(t, err)
	assert.True(t, stored)
	cached, err = repo.GetIncidentFromCache(ctx, detail.ID)
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, detail.ID, cached.ID)
}

func TestIncidentRepository_GetByIDNotFound(t *testing.T) {
	db := newTestDB(t)
	incidents := NewIncidentRepository(db, nil, time.Minute)

	_, err := incidents.GetByID(context.Background(), uuid.New())

	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestNotificationRepository_ListByUser(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, NewUserRepository(db), false)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, &models.Notification{
			UserID:  user.ID,
			Channel: models.ChannelEmail,
			Message: "hello",
			Status:  models.DeliverySent,
			SentAt:  time.Now().Add(time.Duration(i) * time.Second),
		}))
	}

	list, err := repo.ListByUser(ctx, user.ID, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.True(t, !list[0].SentAt.Before(list[1].SentAt))
}
