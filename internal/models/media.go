package models

import (
	"io"
	"time"

	"github.com/google/uuid"
)

// MediaKind - тип вложения, определяется по результату загрузки
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
	MediaOther MediaKind = "other"
)

// Media - вложение инцидента
type Media struct {
	ID         uuid.UUID `json:"id"`
	IncidentID uuid.UUID `json:"incident_id"`
	Kind       MediaKind `json:"kind"`
	FileURL    string    `json:"file_url"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Upload - файл, переданный клиентом для загрузки в хранилище
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// UploadResult - ответ хранилища о загруженном файле
type UploadResult struct {
	URL  string
	Kind MediaKind
}
