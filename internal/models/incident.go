package models

import (
	"time"

	"github.com/google/uuid"
)

// Incident - сообщение пользователя об инциденте
type Incident struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	Status      Status    `json:"status"`
	Latitude    *float64  `json:"latitude"`
	Longitude   *float64  `json:"longitude"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IncidentSummary - элемент списка инцидентов с именем автора
type IncidentSummary struct {
	Incident
	Reporter string `json:"reporter"`
}

// IncidentDetail - инцидент вместе с вложениями и историей статусов
type IncidentDetail struct {
	Incident
	Reporter string           `json:"reporter"`
	Media    []*Media         `json:"media"`
	History  []*StatusHistory `json:"history"`
}

// IncidentFilter - параметры выборки списка инцидентов
type IncidentFilter struct {
	Status  *Status
	Page    int
	PerPage int
}

// Offset возвращает смещение для запроса страницы (страницы нумеруются с 1)
func (f IncidentFilter) Offset() int {
	return (f.Page - 1) * f.PerPage
}

// IncidentPage - страница списка инцидентов с метаданными пагинации
type IncidentPage struct {
	Items       []*IncidentSummary `json:"incidents"`
	Total       int                `json:"total"`
	Pages       int                `json:"pages"`
	CurrentPage int                `json:"current_page"`
	PerPage     int                `json:"per_page"`
}

// NewIncidentInput - сырые данные формы создания инцидента.
// Координаты приходят строками, разбор и проверка выполняются в сервисе.
type NewIncidentInput struct {
	Title       string
	Description string
	Type        string
	Latitude    string
	Longitude   string
	Attachments []Upload
}

// IncidentPatch - частичное обновление инцидента, nil означает "не менять"
type IncidentPatch struct {
	Title       *string
	Description *string
	Latitude    *float64
	Longitude   *float64
}

// IsEmpty сообщает, что патч не содержит ни одного поля
func (p IncidentPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Latitude == nil && p.Longitude == nil
}
