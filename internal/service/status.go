package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shenikar/incident_reporting_api/internal/metrics"
	"github.com/shenikar/incident_reporting_api/internal/models"
	"github.com/shenikar/incident_reporting_api/internal/webhook"
	"github.com/sirupsen/logrus"
)

// TransitionStatus переводит инцидент в новый статус от имени администратора.
// Запись истории и смена статуса фиксируются одной транзакцией в репозитории.
func (s *incidentService) TransitionStatus(ctx context.Context, actor *models.User, id uuid.UUID, newStatus string, note *string) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "TransitionStatus",
		"incident_id": id,
		"new_status":  newStatus,
	})
	log.Info("Attempting to change incident status")

	if actor == nil || !actor.IsAdmin {
		log.Warn("Status change rejected: actor is not an admin")
		return nil, ErrForbidden
	}
	log = log.WithField("admin_id", actor.ID)

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Attempted to change status of a non-existent incident")
		return nil, fmt.Errorf("service: incident with id %s not found for status change: %w", id, err)
	}

	status, ok := models.ParseStatus(strings.TrimSpace(newStatus))
	if !ok {
		return nil, NewValidationError("status", "must be one of "+strings.Join(statusNames(), ", "))
	}
	if status == existing.Status {
		return nil, NewValidationError("status", fmt.Sprintf("incident is already %s", status))
	}

	record := &models.StatusHistory{
		IncidentID:  existing.ID,
		ChangedByID: actor.ID,
		ChangedBy:   actor.Username,
		OldStatus:   existing.Status,
		NewStatus:   status,
		Note:        normalizeNote(note),
	}

	updated, err := s.repo.Transition(ctx, record)
	if err != nil {
		log.WithError(err).Error("Failed to change incident status in repository")
		return nil, fmt.Errorf("service: could not change incident status: %w", err)
	}
	log.WithField("old_status", record.OldStatus).Info("Incident status changed successfully")
	metrics.StatusTransition(string(record.OldStatus), string(record.NewStatus))

	s.invalidate(ctx, log, id)
	s.publish(ctx, log, webhook.WebhookEvent{
		Type:       webhook.EventIncidentStatusChanged,
		IncidentID: updated.ID,
		ActorID:    actor.ID,
		Status:     record.NewStatus,
		OldStatus:  record.OldStatus,
		Note:       record.Note,
		Latitude:   updated.Latitude,
		Longitude:  updated.Longitude,
		Timestamp:  record.ChangedAt,
	})
	s.notifyStatusChange(ctx, log, updated, record)

	return updated, nil
}

// notifyStatusChange сообщает автору о смене статуса: письмо всегда, SMS при наличии телефона
func (s *incidentService) notifyStatusChange(ctx context.Context, log *logrus.Entry, incident *models.Incident, record *models.StatusHistory) {
	owner, err := s.users.GetByID(ctx, incident.UserID)
	if err != nil {
		log.WithError(err).Warn("Could not load incident owner for notification")
		return
	}

	message := statusMessage(owner, incident, record)
	s.notifier.Notify(ctx, models.NotifyRequest{
		Recipient:  owner,
		Channel:    models.ChannelEmail,
		Subject:    "Incident Status Update",
		Message:    message,
		IncidentID: &incident.ID,
	})

	if owner.Phone != nil && strings.TrimSpace(*owner.Phone) != "" {
		s.notifier.Notify(ctx, models.NotifyRequest{
			Recipient:  owner,
			Channel:    models.ChannelSMS,
			Message:    fmt.Sprintf("Ajali: incident %q is now %s.", incident.Title, record.NewStatus),
			IncidentID: &incident.ID,
		})
	}
}

func statusMessage(owner *models.User, incident *models.Incident, record *models.StatusHistory) string {
	msg := fmt.Sprintf(
		"Hello %s, the status of your incident %q has changed from %s to %s.",
		owner.Username, incident.Title, record.OldStatus, record.NewStatus,
	)
	if record.Note != nil {
		msg += "\nNote: " + *record.Note
	}
	return msg
}

func normalizeNote(note *string) *string {
	if note == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*note)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func statusNames() []string {
	statuses := models.Statuses()
	names := make([]string, len(statuses))
	for i, st := range statuses {
		names[i] = string(st)
	}
	return names
}
