package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/incident_reporting_api/internal/models"
)

//go:generate mockgen -source=ports.go -destination=mocks/mock_ports.go -package=mocks

// UserRepository определяет контракт для хранения пользователей
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	SetAdmin(ctx context.Context, email string, isAdmin bool) error
}

// IncidentRepository определяет контракт для работы с бд инцидентов
type IncidentRepository interface {
	Create(ctx context.Context, incident *models.Incident, media []*models.Media) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	GetDetail(ctx context.Context, id uuid.UUID) (*models.IncidentDetail, error)
	Update(ctx context.Context, id uuid.UUID, patch models.IncidentPatch) (*models.Incident, error)
	List(ctx context.Context, filter models.IncidentFilter) ([]*models.IncidentSummary, int, error)
	Transition(ctx context.Context, record *models.StatusHistory) (*models.Incident, error)

	GetIncidentFromCache(ctx context.Context, id uuid.UUID) (*models.IncidentDetail, error)
	CacheVersion(ctx context.Context, id uuid.UUID) (int64, error)
	SetIncidentCache(ctx context.Context, detail *models.IncidentDetail, version int64) (bool, error)
	InvalidateIncidentCache(ctx context.Context, id uuid.UUID) error
}

// NotificationRepository определяет контракт для журнала уведомлений
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Notification, error)
}

// PasswordHasher - односторонний хеш паролей с солью
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, digest string) bool
}

// TokenCodec выпускает и разбирает bearer-токены
type TokenCodec interface {
	Issue(userID uuid.UUID, ttl time.Duration) (string, time.Time, error)
	Decode(token string) (uuid.UUID, error)
}

// BlobStore - внешнее хранилище файлов, возвращающее URL
type BlobStore interface {
	Upload(ctx context.Context, file models.Upload) (*models.UploadResult, error)
}

// Sender - исходящий канал доставки (email, sms)
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Notifier - best-effort отправка уведомлений, никогда не возвращает ошибку
type Notifier interface {
	Notify(ctx context.Context, req models.NotifyRequest) *models.Notification
}
