package service

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ObjectStore persists an uploaded object and returns its public URL.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, size int64, body io.Reader) (string, error)
}

var imageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

type uploadService struct {
	store    ObjectStore
	maxBytes int64
	log      zerolog.Logger
}

func NewUploadService(store ObjectStore, maxBytes int64, logger zerolog.Logger) UploadService {
	l := logger.With().Str("module", "service").Str("component", "upload").Logger()
	return &uploadService{store: store, maxBytes: maxBytes, log: l}
}

// UploadImage stores an event image under events/<uuid>.<ext>.
func (s *uploadService) UploadImage(ctx context.Context, filename, contentType string, size int64, body io.Reader) (string, error) {
	contentType = strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	ext, ok := imageTypes[contentType]

	var ferrs []FieldError
	switch {
	case size <= 0:
		ferrs = append(ferrs, FieldError{Field: "file", Message: "must not be empty"})
	case size > s.maxBytes:
		ferrs = append(ferrs, FieldError{Field: "file", Message: "is too large"})
	}
	if !ok {
		ferrs = append(ferrs, FieldError{Field: "file", Message: "must be a JPEG, PNG, WebP or GIF image"})
	}
	if err := newInvalidInput(ferrs); err != nil {
		s.log.Debug().Str("filename", filename).Str("content_type", contentType).Int64("size", size).Msg("upload rejected")
		return "", err
	}
	if ext == ".jpg" && strings.EqualFold(path.Ext(filename), ".jpeg") {
		ext = ".jpeg"
	}

	key := "events/" + uuid.NewString() + ext
	url, err := s.store.Put(ctx, key, contentType, size, io.LimitReader(body, size))
	if err != nil {
		return "", err
	}
	s.log.Info().Str("key", key).Int64("bytes", size).Msg("image uploaded")
	return url, nil
}
