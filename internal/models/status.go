package models

import (
	"time"

	"github.com/google/uuid"
)

// Status - статус инцидента
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
	StatusRejected   Status = "rejected"
)

// InitialStatus - статус, с которого начинается жизненный цикл инцидента
const InitialStatus = StatusPending

var statuses = []Status{StatusPending, StatusInProgress, StatusResolved, StatusRejected}

// Statuses возвращает фиксированный набор допустимых статусов
func Statuses() []Status {
	out := make([]Status, len(statuses))
	copy(out, statuses)
	return out
}

// Valid проверяет принадлежность статуса фиксированному набору
func (s Status) Valid() bool {
	for _, known := range statuses {
		if s == known {
			return true
		}
	}
	return false
}

// ParseStatus приводит строку к статусу
func ParseStatus(value string) (Status, bool) {
	s := Status(value)
	return s, s.Valid()
}

// StatusHistory - неизменяемая запись журнала смены статусов
type StatusHistory struct {
	ID          uuid.UUID `json:"id"`
	IncidentID  uuid.UUID `json:"incident_id"`
	ChangedByID uuid.UUID `json:"changed_by_id"`
	ChangedBy   string    `json:"changed_by"`
	OldStatus   Status    `json:"old_status"`
	NewStatus   Status    `json:"new_status"`
	Note        *string   `json:"note,omitempty"`
	ChangedAt   time.Time `json:"changed_at"`
}
