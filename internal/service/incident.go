package service

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shenikar/incident_reporting_api/internal/metrics"
	"github.com/shenikar/incident_reporting_api/internal/models"
	"github.com/shenikar/incident_reporting_api/internal/webhook"
	"github.com/sirupsen/logrus"
)

//go:generate mockgen -source=incident.go -destination=mocks/mock_incident.go -package=mocks

const (
	defaultPerPage = 10
	maxPerPage     = 100

	// совпадают с размерами колонок incidents
	maxTitleLength = 255
	maxTypeLength  = 50
)

// допустимые расширения вложений
var allowedExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".mp4": true, ".mov": true,
}

// IncidentService определяет контракт для бизнес-логики управления инцидентами
type IncidentService interface {
	ListIncidents(ctx context.Context, status string, page, perPage int) (*models.IncidentPage, error)
	GetIncident(ctx context.Context, id uuid.UUID) (*models.IncidentDetail, error)
	CreateIncident(ctx context.Context, owner *models.User, input models.NewIncidentInput) (*models.Incident, error)
	UpdateIncident(ctx context.Context, actor *models.User, id uuid.UUID, patch models.IncidentPatch) (*models.Incident, error)
	TransitionStatus(ctx context.Context, actor *models.User, id uuid.UUID, newStatus string, note *string) (*models.Incident, error)
}

type incidentService struct {
	repo      IncidentRepository
	users     UserRepository
	blobs     BlobStore
	notifier  Notifier
	publisher webhook.WebhookPublisher
	logger    *logrus.Logger
}

// NewIncidentService собирает сервис инцидентов. blobs может быть nil, тогда вложения пропускаются.
func NewIncidentService(repo IncidentRepository, users UserRepository, blobs BlobStore, notifier Notifier, publisher webhook.WebhookPublisher, logger *logrus.Logger) IncidentService {
	return &incidentService{
		repo:      repo,
		users:     users,
		blobs:     blobs,
		notifier:  notifier,
		publisher: publisher,
		logger:    logger,
	}
}

// ListIncidents возвращает страницу инцидентов, новые первыми
func (s *incidentService) ListIncidents(ctx context.Context, status string, page, perPage int) (*models.IncidentPage, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	filter := models.IncidentFilter{Page: page, PerPage: perPage}
	if status = strings.TrimSpace(status); status != "" {
		st := models.Status(status)
		filter.Status = &st
	}

	log := s.logger.WithFields(logrus.Fields{
		"service":  "incident",
		"method":   "ListIncidents",
		"page":     page,
		"per_page": perPage,
		"status":   status,
	})
	log.Info("Listing incidents")

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		log.WithError(err).Error("Failed to list incidents from repository")
		return nil, fmt.Errorf("service: could not list incidents: %w", err)
	}
	if items == nil {
		items = make([]*models.IncidentSummary, 0)
	}

	log.WithField("count", len(items)).Info("Incidents listed successfully")
	return &models.IncidentPage{
		Items:       items,
		Total:       total,
		Pages:       int(math.Ceil(float64(total) / float64(perPage))),
		CurrentPage: page,
		PerPage:     perPage,
	}, nil
}

// GetIncident получает инцидент с вложениями и историей, сначала из кеша
func (s *incidentService) GetIncident(ctx context.Context, id uuid.UUID) (*models.IncidentDetail, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "GetIncident",
		"incident_id": id,
	})
	log.Info("Fetching incident by ID")

	cached, err := s.repo.GetIncidentFromCache(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Failed to read incident from cache")
	}
	if cached != nil {
		log.Debug("Incident served from cache")
		return cached, nil
	}

	// версия читается до бд: инвалидация между чтением и записью в кеш отменит запись
	version, err := s.repo.CacheVersion(ctx, id)
	cacheable := err == nil
	if err != nil {
		log.WithError(err).Warn("Failed to read incident cache version")
	}

	detail, err := s.repo.GetDetail(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Failed to get incident in repository")
		return nil, fmt.Errorf("service: could not get incident: %w", err)
	}

	if cacheable {
		stored, err := s.repo.SetIncidentCache(ctx, detail, version)
		switch {
		case err != nil:
			log.WithError(err).Warn("Failed to cache incident")
		case !stored:
			log.Debug("Incident changed while loading, cache write skipped")
		}
	}

	log.Info("Incident fetched successfully")
	return detail, nil
}

// CreateIncident создает инцидент в начальном статусе вместе с вложениями
func (s *incidentService) CreateIncident(ctx context.Context, owner *models.User, input models.NewIncidentInput) (*models.Incident, error) {
	if owner == nil {
		return nil, ErrForbidden
	}

	log := s.logger.WithFields(logrus.Fields{
		"service": "incident",
		"method":  "CreateIncident",
		"user_id": owner.ID,
		"title":   input.Title,
	})
	log.Info("Attempting to create a new incident")

	lat, lng, err := validateNewIncident(input)
	if err != nil {
		log.WithError(err).Warn("Incident input rejected")
		return nil, err
	}

	incident := &models.Incident{
		UserID:      owner.ID,
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Type:        strings.TrimSpace(input.Type),
		Status:      models.InitialStatus,
		Latitude:    &lat,
		Longitude:   &lng,
	}

	// Загрузка идет до транзакции: упавший файл не мешает созданию инцидента
	media := s.uploadAttachments(ctx, log, input.Attachments)

	if err := s.repo.Create(ctx, incident, media); err != nil {
		log.WithError(err).Error("Failed to create incident in repository")
		return nil, fmt.Errorf("service: could not create incident: %w", err)
	}
	log.WithFields(logrus.Fields{
		"incident_id": incident.ID,
		"media":       len(media),
	}).Info("Incident created successfully")
	metrics.IncidentCreated()

	s.publish(ctx, log, webhook.WebhookEvent{
		Type:       webhook.EventIncidentCreated,
		IncidentID: incident.ID,
		ActorID:    owner.ID,
		Status:     incident.Status,
		Latitude:   incident.Latitude,
		Longitude:  incident.Longitude,
		Timestamp:  incident.CreatedAt,
	})

	s.notifier.Notify(ctx, models.NotifyRequest{
		Recipient:  owner,
		Channel:    models.ChannelEmail,
		Subject:    "Incident Report Confirmation",
		Message:    confirmationMessage(owner, incident),
		IncidentID: &incident.ID,
	})
	return incident, nil
}

// UpdateIncident применяет частичное обновление, доступно только автору
func (s *incidentService) UpdateIncident(ctx context.Context, actor *models.User, id uuid.UUID, patch models.IncidentPatch) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "UpdateIncident",
		"incident_id": id,
	})
	log.Info("Attempting to update incident")

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Attempted to update a non-existent incident")
		return nil, fmt.Errorf("service: incident with id %s not found for update: %w", id, err)
	}

	if actor == nil || existing.UserID != actor.ID {
		log.Warn("Update rejected: actor is not the owner")
		return nil, ErrForbidden
	}

	patch = trimPatch(patch)
	if err := validatePatch(patch); err != nil {
		log.WithError(err).Warn("Incident patch rejected")
		return nil, err
	}

	if patch.IsEmpty() {
		return existing, nil
	}

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		log.WithError(err).Error("Failed to update incident in repository")
		return nil, fmt.Errorf("service: could not update incident: %w", err)
	}

	s.invalidate(ctx, log, id)
	log.Info("Incident updated successfully")
	return updated, nil
}

func (s *incidentService) uploadAttachments(ctx context.Context, log *logrus.Entry, files []models.Upload) []*models.Media {
	media := make([]*models.Media, 0, len(files))
	for _, file := range files {
		flog := log.WithField("file", file.Filename)

		if !allowedExtensions[strings.ToLower(filepath.Ext(file.Filename))] {
			flog.Warn("Attachment skipped: extension not allowed")
			continue
		}
		if s.blobs == nil {
			flog.Warn("Attachment skipped: blob store is not configured")
			continue
		}

		result, err := s.blobs.Upload(ctx, file)
		if err != nil {
			flog.WithError(err).Warn("Failed to upload attachment")
			continue
		}
		media = append(media, &models.Media{
			Kind:    result.Kind,
			FileURL: result.URL,
		})
	}
	return media
}

func (s *incidentService) invalidate(ctx context.Context, log *logrus.Entry, id uuid.UUID) {
	if err := s.repo.InvalidateIncidentCache(ctx, id); err != nil {
		log.WithError(err).Warn("Failed to invalidate incident cache")
	}
}

func (s *incidentService) publish(ctx context.Context, log *logrus.Entry, event webhook.WebhookEvent) {
	if s.publisher == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.WithError(err).Warn("Failed to publish webhook event")
	}
}

func validateNewIncident(input models.NewIncidentInput) (float64, float64, error) {
	verr := &ValidationError{}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		verr.Add("title", "is required")
	}
	checkLength(verr, "title", title, maxTitleLength)
	if strings.TrimSpace(input.Description) == "" {
		verr.Add("description", "is required")
	}
	checkLength(verr, "type", strings.TrimSpace(input.Type), maxTypeLength)
	lat := parseCoordinate(verr, "latitude", input.Latitude, 90)
	lng := parseCoordinate(verr, "longitude", input.Longitude, 180)
	return lat, lng, verr.OrNil()
}

func parseCoordinate(verr *ValidationError, field, raw string, limit float64) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		verr.Add(field, "is required")
		return 0
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		verr.Add(field, "must be a number")
		return 0
	}
	checkRange(verr, field, value, limit)
	return value
}

func checkRange(verr *ValidationError, field string, value, limit float64) {
	if value < -limit || value > limit {
		verr.Add(field, fmt.Sprintf("must be between %g and %g", -limit, limit))
	}
}

func checkLength(verr *ValidationError, field, value string, limit int) {
	if utf8.RuneCountInString(value) > limit {
		verr.Add(field, fmt.Sprintf("must be at most %d characters", limit))
	}
}

// trimPatch обрезает пробелы в текстовых полях, не трогая строки вызывающего
func trimPatch(patch models.IncidentPatch) models.IncidentPatch {
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		patch.Title = &title
	}
	if patch.Description != nil {
		description := strings.TrimSpace(*patch.Description)
		patch.Description = &description
	}
	return patch
}

func validatePatch(patch models.IncidentPatch) error {
	verr := &ValidationError{}
	if patch.Title != nil {
		if strings.TrimSpace(*patch.Title) == "" {
			verr.Add("title", "must not be empty")
		}
		checkLength(verr, "title", *patch.Title, maxTitleLength)
	}
	if patch.Description != nil && strings.TrimSpace(*patch.Description) == "" {
		verr.Add("description", "must not be empty")
	}
	if patch.Latitude != nil {
		checkRange(verr, "latitude", *patch.Latitude, 90)
	}
	if patch.Longitude != nil {
		checkRange(verr, "longitude", *patch.Longitude, 180)
	}
	return verr.OrNil()
}

func confirmationMessage(owner *models.User, incident *models.Incident) string {
	return fmt.Sprintf(
		"Hello %s, your incident has been successfully reported.\nTitle: %s\nDescription: %s\nLocation: %g, %g\nDate Reported: %s",
		owner.Username,
		incident.Title,
		incident.Description,
		*incident.Latitude,
		*incident.Longitude,
		incident.CreatedAt.Format("2006-01-02 15:04:05"),
	)
}
