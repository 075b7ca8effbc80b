package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shenikar/incident_reporting_api/internal/models"
	"github.com/shenikar/incident_reporting_api/internal/service"
)

const incidentColumns = `
	i.id,
	i.user_id,
	i.title,
	i.description,
	i.incident_type,
	i.status,
	i.latitude,
	i.longitude,
	i.created_at,
	i.updated_at`

// версия живет дольше любого чтения из бд; после истечения ключа запись все равно отклоняется
const cacheVersionTTL = 24 * time.Hour

type IncidentRepository struct {
	db          *pgxpool.Pool
	redisClient *redis.Client
	cacheTTL    time.Duration
}

// NewIncidentRepository создает репозиторий инцидентов. redisClient может быть nil, тогда кеш отключен.
func NewIncidentRepository(db *pgxpool.Pool, redisClient *redis.Client, cacheTTL time.Duration) service.IncidentRepository {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &IncidentRepository{
		db:          db,
		redisClient: redisClient,
		cacheTTL:    cacheTTL,
	}
}

// Create сохраняет инцидент и его вложения в одной транзакции
func (r *IncidentRepository) Create(ctx context.Context, incident *models.Incident, media []*models.Media) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		INSERT INTO incidents (user_id, title, description, incident_type, status, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_at, updated_at;
	`
	err = tx.QueryRow(ctx, query,
		incident.UserID,
		incident.Title,
		incident.Description,
		incident.Type,
		string(incident.Status),
		incident.Latitude,
		incident.Longitude,
	).Scan(&incident.ID, &incident.CreatedAt, &incident.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create incident: %w", mapPgError(err))
	}

	for _, m := range media {
		m.IncidentID = incident.ID
		err := tx.QueryRow(ctx, `
			INSERT INTO media (incident_id, media_type, file_url)
			VALUES ($1, $2, $3) RETURNING id, uploaded_at;
		`, m.IncidentID, string(m.Kind), m.FileURL).Scan(&m.ID, &m.UploadedAt)
		if err != nil {
			return fmt.Errorf("failed to attach media: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit incident: %w", err)
	}
	return nil
}

// GetByID возвращает инцидент по его UUID
func (r *IncidentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	query := `SELECT ` + incidentColumns + ` FROM incidents i WHERE i.id = $1;`

	incident := &models.Incident{}
	if err := scanIncident(r.db.QueryRow(ctx, query, id), incident); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("incident with id %s: %w", id, service.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get incident by id: %w", err)
	}
	return incident, nil
}

// GetDetail возвращает инцидент с автором, вложениями и историей из одного снимка данных
func (r *IncidentRepository) GetDetail(ctx context.Context, id uuid.UUID) (*models.IncidentDetail, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	detail := &models.IncidentDetail{
		Media:   make([]*models.Media, 0),
		History: make([]*models.StatusHistory, 0),
	}
	query := `SELECT ` + incidentColumns + `, u.username
		FROM incidents i JOIN users u ON u.id = i.user_id
		WHERE i.id = $1;`
	if err := scanIncident(tx.QueryRow(ctx, query, id), &detail.Incident, &detail.Reporter); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("incident with id %s: %w", id, service.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get incident detail: %w", err)
	}

	rows, err := tx.Query(ctx, `
		SELECT id, incident_id, media_type, file_url, uploaded_at
		FROM media WHERE incident_id = $1
		ORDER BY uploaded_at, id;
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list media: %w", err)
	}
	for rows.Next() {
		m := &models.Media{}
		if err := rows.Scan(&m.ID, &m.IncidentID, &m.Kind, &m.FileURL, &m.UploadedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan media row: %w", err)
		}
		detail.Media = append(detail.Media, m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error media iteration: %w", err)
	}

	rows, err = tx.Query(ctx, `
		SELECT h.id, h.incident_id, h.changed_by, u.username, h.old_status, h.new_status, h.note, h.changed_at
		FROM status_history h JOIN users u ON u.id = h.changed_by
		WHERE h.incident_id = $1
		ORDER BY h.changed_at, h.id;
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list status history: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		h := &models.StatusHistory{}
		if err := rows.Scan(&h.ID, &h.IncidentID, &h.ChangedByID, &h.ChangedBy, &h.OldStatus, &h.NewStatus, &h.Note, &h.ChangedAt); err != nil {
			return nil, fmt.Errorf("failed to scan status history row: %w", err)
		}
		detail.History = append(detail.History, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error status history iteration: %w", err)
	}
	return detail, nil
}

// Update меняет только переданные поля
func (r *IncidentRepository) Update(ctx context.Context, id uuid.UUID, patch models.IncidentPatch) (*models.Incident, error) {
	query := `
		UPDATE incidents i SET
			title = COALESCE($2, i.title),
			description = COALESCE($3, i.description),
			latitude = COALESCE($4, i.latitude),
			longitude = COALESCE($5, i.longitude),
			updated_at = NOW()
		WHERE i.id = $1
		RETURNING ` + incidentColumns + `;`

	incident := &models.Incident{}
	err := scanIncident(r.db.QueryRow(ctx, query, id, patch.Title, patch.Description, patch.Latitude, patch.Longitude), incident)
	if err != nil {
		// Если строк нет, значит инцидента с таким id не существует
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("incident with id %s not found for update: %w", id, service.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update incident: %w", mapPgError(err))
	}
	return incident, nil
}

// List возвращает страницу инцидентов с именами авторов и общее количество
func (r *IncidentRepository) List(ctx context.Context, filter models.IncidentFilter) ([]*models.IncidentSummary, int, error) {
	var status *string
	if filter.Status != nil {
		s := string(*filter.Status)
		status = &s
	}

	var total int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM incidents WHERE ($1::text IS NULL OR status = $1);
	`, status).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count incidents: %w", err)
	}

	query := `SELECT ` + incidentColumns + `, u.username
		FROM incidents i JOIN users u ON u.id = i.user_id
		WHERE ($1::text IS NULL OR i.status = $1)
		ORDER BY i.created_at DESC, i.id DESC
		LIMIT $2 OFFSET $3;`
	rows, err := r.db.Query(ctx, query, status, filter.PerPage, filter.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list incidents: %w", err)
	}
	defer rows.Close()

	incidents := make([]*models.IncidentSummary, 0)
	for rows.Next() {
		item := &models.IncidentSummary{}
		if err := scanIncident(rows, &item.Incident, &item.Reporter); err != nil {
			return nil, 0, fmt.Errorf("failed to scan incident row: %w", err)
		}
		incidents = append(incidents, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error list iteration: %w", err)
	}
	return incidents, total, nil
}

// Transition записывает историю и меняет статус атомарно.
// Строка инцидента блокируется, текущий статус сверяется с record.OldStatus.
func (r *IncidentRepository) Transition(ctx context.Context, record *models.StatusHistory) (*models.Incident, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var current models.Status
	err = tx.QueryRow(ctx, `SELECT status FROM incidents WHERE id = $1 FOR UPDATE;`, record.IncidentID).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("incident with id %s: %w", record.IncidentID, service.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to lock incident: %w", err)
	}
	if current != record.OldStatus {
		return nil, fmt.Errorf("expected %s, found %s: %w", record.OldStatus, current, service.ErrConflict)
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO status_history (incident_id, changed_by, old_status, new_status, note)
		VALUES ($1, $2, $3, $4, $5) RETURNING id, changed_at;
	`, record.IncidentID, record.ChangedByID, string(record.OldStatus), string(record.NewStatus), record.Note).
		Scan(&record.ID, &record.ChangedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to append status history: %w", mapPgError(err))
	}

	incident := &models.Incident{}
	query := `UPDATE incidents i SET status = $2, updated_at = NOW() WHERE i.id = $1 RETURNING ` + incidentColumns + `;`
	if err := scanIncident(tx.QueryRow(ctx, query, record.IncidentID, string(record.NewStatus)), incident); err != nil {
		return nil, fmt.Errorf("failed to update incident status: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit status change: %w", err)
	}
	return incident, nil
}

// GetIncidentFromCache пытается получить инцидент из Redis
func (r *IncidentRepository) GetIncidentFromCache(ctx context.Context, id uuid.UUID) (*models.IncidentDetail, error) {
	if r.redisClient == nil {
		return nil, nil
	}
	val, err := r.redisClient.Get(ctx, cacheKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get incident from cache: %w", err)
	}

	detail := &models.IncidentDetail{}
	if err := json.Unmarshal(val, detail); err != nil {
		return nil, fmt.Errorf("failed to unmarshal incident from cache: %w", err)
	}
	return detail, nil
}

// CacheVersion возвращает текущую версию кеша инцидента, каждая инвалидация увеличивает ее
func (r *IncidentRepository) CacheVersion(ctx context.Context, id uuid.UUID) (int64, error) {
	if r.redisClient == nil {
		return 0, nil
	}
	version, err := r.redisClient.Get(ctx, versionKey(id)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get incident cache version: %w", err)
	}
	return version, nil
}

// запись проходит, только если версия не менялась с момента чтения из бд
var setIfVersionScript = redis.NewScript(`
local current = redis.call("GET", KEYS[2])
if not current then
	current = "0"
end
if current ~= ARGV[1] then
	return 0
end
redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
return 1
`)

// SetIncidentCache сохраняет инцидент в Redis, если с момента чтения version его никто не инвалидировал.
// Возвращает false, когда запись пропущена.
func (r *IncidentRepository) SetIncidentCache(ctx context.Context, detail *models.IncidentDetail, version int64) (bool, error) {
	if r.redisClient == nil {
		return false, nil
	}
	val, err := json.Marshal(detail)
	if err != nil {
		return false, fmt.Errorf("failed to marshal incident for cache: %w", err)
	}
	keys := []string{cacheKey(detail.ID), versionKey(detail.ID)}
	stored, err := setIfVersionScript.Run(ctx, r.redisClient, keys, version, val, r.cacheTTL.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("failed to set incident in cache: %w", err)
	}
	return stored == 1, nil
}

// InvalidateIncidentCache удаляет инцидент из Redis кэша и увеличивает версию
func (r *IncidentRepository) InvalidateIncidentCache(ctx context.Context, id uuid.UUID) error {
	if r.redisClient == nil {
		return nil
	}
	_, err := r.redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, cacheKey(id))
		pipe.Incr(ctx, versionKey(id))
		pipe.Expire(ctx, versionKey(id), cacheVersionTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to invalidate incident cache: %w", err)
	}
	return nil
}

func cacheKey(id uuid.UUID) string {
	return fmt.Sprintf("incident:%s", id.String())
}

func versionKey(id uuid.UUID) string {
	return fmt.Sprintf("incident:%s:version", id.String())
}

func scanIncident(row pgx.Row, incident *models.Incident, extra ...any) error {
	dest := []any{
		&incident.ID,
		&incident.UserID,
		&incident.Title,
		&incident.Description,
		&incident.Type,
		&incident.Status,
		&incident.Latitude,
		&incident.Longitude,
		&incident.CreatedAt,
		&incident.UpdatedAt,
	}
	return row.Scan(append(dest, extra...)...)
}
