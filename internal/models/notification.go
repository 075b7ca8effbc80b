package models

import (
	"time"

	"github.com/google/uuid"
)

// Channel - канал доставки уведомления
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// DeliveryStatus - итог отправки уведомления
type DeliveryStatus string

const (
	DeliverySent   DeliveryStatus = "sent"
	DeliveryFailed DeliveryStatus = "failed"
)

// Notification - запись об отправленном (или неотправленном) уведомлении
type Notification struct {
	ID         uuid.UUID      `json:"id"`
	UserID     uuid.UUID      `json:"user_id"`
	IncidentID *uuid.UUID     `json:"incident_id,omitempty"`
	Channel    Channel        `json:"channel"`
	Message    string         `json:"message"`
	SentAt     time.Time      `json:"sent_at"`
	Status     DeliveryStatus `json:"status"`
}

// NotifyRequest - запрос на отправку уведомления
type NotifyRequest struct {
	Recipient  *User
	Channel    Channel
	Subject    string
	Message    string
	IncidentID *uuid.UUID
}
