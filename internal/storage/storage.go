package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"path"
	"strings"

	"github.com/haniSalm/FAST-E-Learning/internal/config"

	"github.com/google/uuid"
)

var (
	ErrFileTooLarge = errors.New("uploaded file is too large")
	ErrInvalidKey   = errors.New("invalid storage key")
)

// Storage keeps uploaded images and files under slash-separated keys.
type Storage interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

func New(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (Storage, error) {
	switch cfg.Driver {
	case "s3":
		return NewS3(ctx, cfg, logger)
	case "local", "":
		return NewLocal(cfg.MediaRoot, cfg.MediaURL)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// Uploader stores multipart uploads under a family prefix with a random name.
type Uploader struct {
	store    Storage
	maxBytes int64
}

func NewUploader(store Storage, maxUploadMB int64) *Uploader {
	return &Uploader{
		store:    store,
		maxBytes: maxUploadMB << 20,
	}
}

func (u *Uploader) Storage() Storage {
	return u.store
}

// Save stores fh under prefix and returns its key.
func (u *Uploader) Save(ctx context.Context, prefix string, fh *multipart.FileHeader) (string, error) {
	if u.maxBytes > 0 && fh.Size > u.maxBytes {
		return "", fmt.Errorf("%s: %w", fh.Filename, ErrFileTooLarge)
	}

	file, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer file.Close()

	ext := strings.ToLower(path.Ext(fh.Filename))
	key := prefix + uuid.NewString() + ext

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = mime.TypeByExtension(ext)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if err := u.store.Put(ctx, key, file, fh.Size, contentType); err != nil {
		return "", fmt.Errorf("failed to store %s: %w", key, err)
	}
	return key, nil
}

// URL renders a stored key, nil when nothing was uploaded.
func (u *Uploader) URL(key string) *string {
	if key == "" {
		return nil
	}
	url := u.store.URL(key)
	return &url
}

// Remove deletes stored keys and only logs failures.
func (u *Uploader) Remove(ctx context.Context, logger *slog.Logger, keys ...string) {
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := u.store.Delete(ctx, key); err != nil {
			logger.WarnContext(ctx, "failed to delete stored file", "key", key, "error", err)
		}
	}
}

func cleanKey(key string) (string, error) {
	cleaned := path.Clean("/" + key)[1:]
	if cleaned == "" || cleaned != strings.TrimPrefix(key, "/") {
		return "", fmt.Errorf("%q: %w", key, ErrInvalidKey)
	}
	return cleaned, nil
}
