// Package storage keeps uploaded product images in a blob store.
package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/trucksigns/truck-signs-api/models"
)

// BlobStore stores opaque blobs under flat names.
type BlobStore interface {
	Put(ctx context.Context, name, contentType string, r io.Reader) error
	// Open returns the blob and its content type. Missing blobs yield models.ErrBlobNotFound.
	Open(ctx context.Context, name string) (io.ReadCloser, string, error)
	// Delete removes the blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error
}

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// NewBlobName returns a unique name for an image of contentType.
func NewBlobName(prefix, contentType string) string {
	ext := imageExtensions[contentType]
	if ext != "" {
		return prefix + uuid.NewString() + ext
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		ext = exts[0]
	}
	return prefix + uuid.NewString() + ext
}

// validName rejects names that could escape a flat namespace.
func validName(name string) error {
	if name == "" || name != path.Base(name) || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("invalid blob name %q: %w", name, models.ErrBlobNotFound)
	}
	return nil
}
