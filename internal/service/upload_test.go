package service_test

import (
	"bytes"
	"context"
	"io"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/community-hub-service/internal/service"
)

type memObjects struct {
	key, contentType string
	body             []byte
}

func (m *memObjects) Put(_ context.Context, key, contentType string, _ int64, body io.Reader) (string, error) {
	b, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	m.key, m.contentType, m.body = key, contentType, b
	return "https://bucket.example.com/" + key, nil
}

func TestUploadService_UploadImage(t *testing.T) {
	store := &memObjects{}
	svc := service.NewUploadService(store, 16, nopLog)
	data := []byte("fake png")

	url, err := svc.UploadImage(context.Background(), "cover.PNG", "image/png; charset=binary", int64(len(data)), bytes.NewReader(data))
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^events/[0-9a-f-]{36}\.png$`), store.key)
	assert.Equal(t, "https://bucket.example.com/"+store.key, url)
	assert.Equal(t, "image/png", store.contentType)
	assert.Equal(t, data, store.body)

	_, err = svc.UploadImage(context.Background(), "photo.jpeg", "image/jpeg", 4, bytes.NewReader([]byte("jpeg")))
	require.NoError(t, err)
	assert.Regexp(t, `\.jpeg$`, store.key)
}

func TestUploadService_Rejections(t *testing.T) {
	svc := service.NewUploadService(&memObjects{}, 16, nopLog)
	cases := []struct {
		name        string
		contentType string
		size        int64
	}{
		{"empty", "image/png", 0},
		{"too large", "image/png", 17},
		{"not an image", "application/pdf", 8},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.UploadImage(context.Background(), "f", tc.contentType, tc.size, bytes.NewReader(make([]byte, tc.size)))
			require.ErrorIs(t, err, service.ErrInvalidInput)
			assert.Equal(t, "file", service.FieldErrors(err)[0].Field)
		})
	}
}
