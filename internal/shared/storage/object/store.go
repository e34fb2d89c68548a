// Package object keeps synthesized speech clips in local or S3 storage.
package object

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound   = errors.New("object not found")
	ErrInvalidKey = errors.New("invalid object key")
)

// ClipStore stores audio clips under keys produced by ClipKey.
type ClipStore interface {
	Put(ctx context.Context, key, contentType string, r io.Reader) (sizeBytes int64, err error)
	Get(ctx context.Context, key string) (body io.ReadCloser, contentType string, err error)
}

var extensions = map[string]string{
	"audio/mpeg": ".mp3",
	"audio/wav":  ".wav",
	"audio/ogg":  ".ogg",
	"audio/webm": ".webm",
	"audio/pcm":  ".pcm",
}

// ClipKey returns a fresh key of the form scope/yyyy/mm/dd/<uuid>.<ext>.
func ClipKey(scope, contentType string, now time.Time) string {
	scope = strings.Trim(strings.ToLower(strings.TrimSpace(scope)), "/")
	if scope == "" {
		scope = "clips"
	}
	return path.Join(scope, now.UTC().Format("2006/01/02"), uuid.NewString()+ExtensionFor(contentType))
}

// ExtensionFor maps an audio content type to a file extension.
func ExtensionFor(contentType string) string {
	base, _, _ := strings.Cut(strings.ToLower(strings.TrimSpace(contentType)), ";")
	if ext, ok := extensions[strings.TrimSpace(base)]; ok {
		return ext
	}
	return ".bin"
}

// ContentTypeFor is the inverse of ExtensionFor.
func ContentTypeFor(key string) string {
	ext := path.Ext(key)
	for ct, e := range extensions {
		if e == ext {
			return ct
		}
	}
	return "application/octet-stream"
}

// CleanKey normalises a key taken from a request and rejects traversal.
func CleanKey(key string) (string, error) {
	key = strings.Trim(strings.TrimSpace(key), "/")
	if key == "" || strings.Contains(key, "\\") {
		return "", ErrInvalidKey
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return "", ErrInvalidKey
		}
	}
	return key, nil
}
