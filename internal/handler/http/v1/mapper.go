package v1

import (
	"io"
	"mime/multipart"

	"github.com/shenikar/incident_reporting_api/internal/models"
)

// ModelToUserResponse преобразует пользователя в DTO без хеша пароля
func ModelToUserResponse(user *models.User) *UserResponse {
	return &UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Phone:     user.Phone,
		IsAdmin:   user.IsAdmin,
		CreatedAt: user.CreatedAt,
	}
}

// RegisterDTOToInput преобразует DTO регистрации во входные данные сервиса
func RegisterDTOToInput(dto RegisterRequest) models.RegisterInput {
	return models.RegisterInput{
		Username: dto.Username,
		Email:    dto.Email,
		Password: dto.Password,
		Phone:    dto.Phone,
	}
}

// UpdateDTOToPatch преобразует DTO обновления в патч
func UpdateDTOToPatch(dto UpdateIncidentRequest) models.IncidentPatch {
	return models.IncidentPatch{
		Title:       dto.Title,
		Description: dto.Description,
		Latitude:    dto.Latitude,
		Longitude:   dto.Longitude,
	}
}

// FileHeadersToUploads оборачивает файлы формы в загрузки для хранилища
func FileHeadersToUploads(files []*multipart.FileHeader) []models.Upload {
	uploads := make([]models.Upload, 0, len(files))
	for _, fh := range files {
		uploads = append(uploads, models.Upload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Open: func() (io.ReadCloser, error) {
				return fh.Open()
			},
		})
	}
	return uploads
}

// ModelToIncidentResponse преобразует доменную модель в DTO для ответа
func ModelToIncidentResponse(model *models.Incident) *IncidentResponse {
	return &IncidentResponse{
		ID:          model.ID,
		UserID:      model.UserID,
		Title:       model.Title,
		Description: model.Description,
		Type:        model.Type,
		Status:      string(model.Status),
		Latitude:    model.Latitude,
		Longitude:   model.Longitude,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

// PageToListResponse преобразует страницу инцидентов в DTO
func PageToListResponse(page *models.IncidentPage) *IncidentListResponse {
	items := make([]*IncidentSummaryResponse, len(page.Items))
	for i, item := range page.Items {
		items[i] = &IncidentSummaryResponse{
			IncidentResponse: *ModelToIncidentResponse(&item.Incident),
			Reporter:         item.Reporter,
		}
	}
	return &IncidentListResponse{
		Incidents:   items,
		Total:       page.Total,
		Pages:       page.Pages,
		CurrentPage: page.CurrentPage,
		PerPage:     page.PerPage,
	}
}

// DetailToResponse преобразует инцидент с вложениями и историей в DTO
func DetailToResponse(detail *models.IncidentDetail) *IncidentDetailResponse {
	media := make([]*MediaResponse, len(detail.Media))
	for i, m := range detail.Media {
		media[i] = &MediaResponse{
			ID:         m.ID,
			Kind:       string(m.Kind),
			FileURL:    m.FileURL,
			UploadedAt: m.UploadedAt,
		}
	}
	history := make([]*StatusHistoryResponse, len(detail.History))
	for i, h := range detail.History {
		history[i] = &StatusHistoryResponse{
			ID:        h.ID,
			OldStatus: string(h.OldStatus),
			NewStatus: string(h.NewStatus),
			ChangedBy: h.ChangedBy,
			Note:      h.Note,
			ChangedAt: h.ChangedAt,
		}
	}
	return &IncidentDetailResponse{
		IncidentResponse: *ModelToIncidentResponse(&detail.Incident),
		Reporter:         detail.Reporter,
		Media:            media,
		History:          history,
	}
}

// ModelsToNotificationResponses преобразует слайс уведомлений в слайс DTO
func ModelsToNotificationResponses(notifications []*models.Notification) []*NotificationResponse {
	responses := make([]*NotificationResponse, len(notifications))
	for i, n := range notifications {
		responses[i] = &NotificationResponse{
			ID:         n.ID,
			IncidentID: n.IncidentID,
			Channel:    string(n.Channel),
			Message:    n.Message,
			Status:     string(n.Status),
			SentAt:     n.SentAt,
		}
	}
	return responses
}
