package v1

import (
	"time"

	"github.com/google/uuid"
)

// RegisterRequest DTO для регистрации пользователя
// @Description DTO для регистрации пользователя
type RegisterRequest struct {
	Username string  `json:"username" validate:"required,max=80"`
	Email    string  `json:"email" validate:"required,email,max=120"`
	Password string  `json:"password" validate:"required,max=72"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,max=20"`
}

// LoginRequest DTO для входа
// @Description DTO для входа
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpdateIncidentRequest DTO для частичного обновления инцидента, отсутствующие поля не меняются
// @Description DTO для частичного обновления инцидента
type UpdateIncidentRequest struct {
	Title       *string  `json:"title,omitempty" validate:"omitempty,max=255"`
	Description *string  `json:"description,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
}

// UpdateStatusRequest DTO для смены статуса.
// Значение статуса проверяет сервис, чтобы 403 для не-админа шел раньше 400.
// @Description DTO для смены статуса
type UpdateStatusRequest struct {
	Status string  `json:"status"`
	Note   *string `json:"note,omitempty" validate:"omitempty,max=1000"`
}

// ErrorResponse тело любого ответа с ошибкой
// @Description тело ответа с ошибкой
type ErrorResponse struct {
	Message string `json:"message"`
}

// UserResponse DTO пользователя без пароля
// @Description DTO пользователя
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone,omitempty"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

// RegisterResponse DTO ответа на регистрацию
// @Description DTO ответа на регистрацию
type RegisterResponse struct {
	Message string        `json:"message"`
	User    *UserResponse `json:"user"`
}

// TokenResponse DTO с выданным токеном
// @Description DTO с выданным токеном
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// IncidentResponse DTO для ответа с информацией об инциденте
// @Description DTO для ответа с информацией об инциденте
type IncidentResponse struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Type        string    `json:"type,omitempty"`
	Status      string    `json:"status"`
	Latitude    *float64  `json:"latitude"`
	Longitude   *float64  `json:"longitude"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IncidentSummaryResponse элемент списка инцидентов
// @Description элемент списка инцидентов
type IncidentSummaryResponse struct {
	IncidentResponse
	Reporter string `json:"reporter"`
}

// MediaResponse DTO вложения
// @Description DTO вложения
type MediaResponse struct {
	ID         uuid.UUID `json:"id"`
	Kind       string    `json:"kind"`
	FileURL    string    `json:"file_url"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// StatusHistoryResponse DTO записи истории статусов
// @Description DTO записи истории статусов
type StatusHistoryResponse struct {
	ID        uuid.UUID `json:"id"`
	OldStatus string    `json:"old_status"`
	NewStatus string    `json:"new_status"`
	ChangedBy string    `json:"changed_by"`
	Note      *string   `json:"note,omitempty"`
	ChangedAt time.Time `json:"changed_at"`
}

// IncidentDetailResponse инцидент с вложениями и историей
// @Description инцидент с вложениями и историей
type IncidentDetailResponse struct {
	IncidentResponse
	Reporter string                   `json:"reporter"`
	Media    []*MediaResponse         `json:"media"`
	History  []*StatusHistoryResponse `json:"history"`
}

// IncidentListResponse страница списка инцидентов
// @Description страница списка инцидентов
type IncidentListResponse struct {
	Incidents   []*IncidentSummaryResponse `json:"incidents"`
	Total       int                        `json:"total"`
	Pages       int                        `json:"pages"`
	CurrentPage int                        `json:"current_page"`
	PerPage     int                        `json:"per_page"`
}

// CreateIncidentResponse DTO ответа на создание инцидента
// @Description DTO ответа на создание инцидента
type CreateIncidentResponse struct {
	Message string    `json:"message"`
	ID      uuid.UUID `json:"id"`
}

// IncidentMessageResponse инцидент с сообщением о результате операции
// @Description инцидент с сообщением о результате операции
type IncidentMessageResponse struct {
	Message  string            `json:"message"`
	Incident *IncidentResponse `json:"incident"`
}

// NotificationResponse DTO уведомления
// @Description DTO уведомления
type NotificationResponse struct {
	ID         uuid.UUID  `json:"id"`
	IncidentID *uuid.UUID `json:"incident_id,omitempty"`
	Channel    string     `json:"channel"`
	Message    string     `json:"message"`
	Status     string     `json:"status"`
	SentAt     time.Time  `json:"sent_at"`
}
