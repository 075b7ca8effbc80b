package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/shenikar/incident_reporting_api/internal/config"
	"github.com/shenikar/incident_reporting_api/internal/models"
)

const (
	keyPrefix = "incidents"
	sniffLen  = 512
)

// MinioStore загружает вложения инцидентов в бакет MinIO/S3
type MinioStore struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

// NewMinioStore создает клиента по конфигу. Публичные ссылки строятся от PublicBaseURL,
// а если он не задан, от адреса самого MinIO.
func NewMinioStore(cfg config.MinioConfig) (*MinioStore, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, errors.New("minio endpoint is required")
	}
	if strings.TrimSpace(cfg.AccessKey) == "" || strings.TrimSpace(cfg.SecretKey) == "" {
		return nil, errors.New("minio access key and secret key are required")
	}
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, errors.New("minio bucket is required")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &MinioStore{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: publicBaseURL(cfg),
	}, nil
}

// EnsureBucket создает бакет, если его еще нет
func (s *MinioStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	return s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
}

// Upload сохраняет файл под случайным ключом и определяет тип вложения по содержимому
func (s *MinioStore) Upload(ctx context.Context, file models.Upload) (*models.UploadResult, error) {
	if file.Open == nil {
		return nil, errors.New("upload has no content")
	}
	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload %s: %w", file.Filename, err)
	}
	defer rc.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(rc, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("failed to read upload %s: %w", file.Filename, err)
	}
	head = head[:n]

	contentType := detectContentType(head, file.ContentType)
	key := objectKey(file.Filename)

	size := file.Size
	if size <= 0 {
		size = -1
	}
	_, err = s.client.PutObject(ctx, s.bucket, key, io.MultiReader(bytes.NewReader(head), rc), size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to put object %s: %w", key, err)
	}

	return &models.UploadResult{
		URL:  s.baseURL + "/" + key,
		Kind: KindOf(contentType),
	}, nil
}

// KindOf относит MIME тип к image, video или other
func KindOf(contentType string) models.MediaKind {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return models.MediaImage
	case strings.HasPrefix(contentType, "video/"):
		return models.MediaVideo
	default:
		return models.MediaOther
	}
}

func detectContentType(head []byte, declared string) string {
	detected := mimetype.Detect(head)
	if detected.Is("application/octet-stream") && declared != "" {
		return declared
	}
	// без параметров вида "; charset=utf-8"
	return strings.SplitN(detected.String(), ";", 2)[0]
}

func objectKey(filename string) string {
	return path.Join(keyPrefix, uuid.NewString()+strings.ToLower(filepath.Ext(filename)))
}

func publicBaseURL(cfg config.MinioConfig) string {
	if cfg.PublicBaseURL != "" {
		return cfg.PublicBaseURL + "/" + cfg.Bucket
	}
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	return scheme + "://" + cfg.Endpoint + "/" + cfg.Bucket
}
