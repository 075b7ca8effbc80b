package storage

import (
	"strings"
	"testing"

	"github.com/shenikar/incident_reporting_api/internal/config"
	"github.com/shenikar/incident_reporting_api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestKindOf(t *testing.T) {
	assert.Equal(t, models.MediaImage, KindOf("image/png"))
	assert.Equal(t, models.MediaVideo, KindOf("video/mp4"))
	assert.Equal(t, models.MediaOther, KindOf("application/pdf"))
	assert.Equal(t, models.MediaOther, KindOf(""))
}

func TestDetectContentType(t *testing.T) {
	assert.Equal(t, "image/png", detectContentType(pngHeader, "application/octet-stream"))
	assert.Equal(t, "text/plain", detectContentType([]byte("hello world"), ""))
	assert.Equal(t, "video/quicktime", detectContentType([]byte{0x00, 0x01}, "video/quicktime"))
}

func TestObjectKey(t *testing.T) {
	key := objectKey("Holiday.JPG")

	assert.True(t, strings.HasPrefix(key, "incidents/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))
	assert.NotEqual(t, key, objectKey("Holiday.JPG"))
}

func TestPublicBaseURL(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com/incidents",
		publicBaseURL(config.MinioConfig{PublicBaseURL: "https://cdn.example.com", Bucket: "incidents"}))
	assert.Equal(t, "http://localhost:9000/media",
		publicBaseURL(config.MinioConfig{Endpoint: "localhost:9000", Bucket: "media"}))
	assert.Equal(t, "https://s3.local/media",
		publicBaseURL(config.MinioConfig{Endpoint: "s3.local", Bucket: "media", UseSSL: true}))
}

func TestNewMinioStore_RequiresSettings(t *testing.T) {
	_, err := NewMinioStore(config.MinioConfig{})
	assert.ErrorContains(t, err, "endpoint")

	_, err = NewMinioStore(config.MinioConfig{Endpoint: "localhost:9000", Bucket: "b"})
	assert.ErrorContains(t, err, "access key")

	store, err := NewMinioStore(config.MinioConfig{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "s", Bucket: "b"})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000/b", store.baseURL)
}
