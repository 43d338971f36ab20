// Package storage persists uploaded workshop files and serves them back under /uploads.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"workshops/internal/config"
)

var (
	ErrFileNotFound = errors.New("file not found")
	ErrInvalidName  = errors.New("invalid file name")
)

const PublicPrefix = "/uploads"

type FileInfo struct {
	Size        int64
	ContentType string
}

// FileStore is implemented by the local disk store and the MinIO object store.
type FileStore interface {
	// Save writes the payload under name and returns the backend location of the file.
	Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error)
	Open(ctx context.Context, name string) (io.ReadCloser, FileInfo, error)
	Remove(ctx context.Context, name string) error
}

func New(ctx context.Context, cfg config.StorageConfig) (FileStore, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocalStore(cfg.UploadDir)
	case "minio":
		store, err := NewObjectStore(cfg)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// SanitizeFileName keeps letters, digits, dot, underscore and dash; anything else becomes "_".
func SanitizeFileName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)
	if name == "." || name == "/" {
		name = ""
	}
	name = unsafeChars.ReplaceAllString(name, "_")
	for strings.Contains(name, "..") {
		name = strings.ReplaceAll(name, "..", ".")
	}
	name = strings.TrimLeft(name, ".")
	if name == "" {
		return "file"
	}
	return name
}

// ObjectName gives an upload a collision-free stored name.
func ObjectName(original string) string {
	return uuid.NewString() + "-" + SanitizeFileName(original)
}

// NormalizePath converts separators to "/" and rewrites everything up to and including the
// last "uploads" directory to /uploads, yielding a web-servable path.
func NormalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	segs := strings.Split(p, "/")
	for i := len(segs) - 2; i >= 0; i-- {
		if segs[i] == "uploads" {
			return PublicPrefix + "/" + strings.Join(segs[i+1:], "/")
		}
	}
	return p
}

// ValidateName rejects names that could escape the upload root.
func ValidateName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
		return ErrInvalidName
	}
	return nil
}
