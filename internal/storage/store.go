package storage

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/spec-kit/support-desk/internal/config"
)

// Store persists attachment bytes and returns the URL they are served from.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	Close() error
}

// Open builds the store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case "minio":
		return NewMinioStore(ctx, cfg)
	case "blob", "":
		return OpenBlobStore(ctx, cfg.BucketURL, cfg.PublicBaseURL)
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.Driver)
	}
}

// ObjectKey derives a unique storage key for an uploaded file, keeping its extension.
func ObjectKey(prefix, ticketKey, originalName string) string {
	ext := strings.ToLower(filepath.Ext(path.Base(filepath.ToSlash(originalName))))
	if len(ext) > 10 {
		ext = ""
	}
	return sanitizeKey(path.Join(prefix, ticketKey, uuid.NewString()+ext))
}

// DetectContentType sniffs data. The declared type is used only when sniffing yields
// the generic octet-stream type.
func DetectContentType(data []byte, declared string) string {
	detected := mimetype.Detect(data)
	if detected.Is("application/octet-stream") && declared != "" {
		return declared
	}
	return detected.String()
}

// sanitizeKey prevents path traversal.
func sanitizeKey(key string) string {
	key = filepath.ToSlash(key)
	parts := strings.Split(strings.TrimLeft(key, "/"), "/")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" || p == "." || p == ".." {
			continue
		}
		out = append(out, p)
	}
	return strings.Join(out, "/")
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}
