package catalog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/trucksigns/truck-signs-api/app/api"
	"github.com/trucksigns/truck-signs-api/app/storage"
	"github.com/trucksigns/truck-signs-api/models"
)

type UploadedProductCreator interface {
	CreateUploadedProduct(ctx context.Context, title, imageURL string) (*models.Product, error)
}

// UploadHandler accepts customer artwork and serves stored images back.
type UploadHandler struct {
	repo     UploadedProductCreator
	store    storage.BlobStore
	mediaURL string
	maxBytes int64
	now      func() time.Time
}

func NewUploadHandler(r UploadedProductCreator, store storage.BlobStore, mediaURL string, maxBytes int64) *UploadHandler {
	if !strings.HasSuffix(mediaURL, "/") {
		mediaURL += "/"
	}
	return &UploadHandler{
		repo:     r,
		store:    store,
		mediaURL: mediaURL,
		maxBytes: maxBytes,
		now:      time.Now,
	}
}

func (h *UploadHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			api.ErrorResponse(w, http.StatusRequestEntityTooLarge, "validation_error", "Image is too large")
			return
		}
		api.ErrorResponse(w, http.StatusBadRequest, "validation_error", "Invalid multipart body")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		api.ErrorResponse(w, http.StatusBadRequest, "validation_error", "Missing image file")
		return
	}
	defer file.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		api.ErrorResponse(w, http.StatusBadRequest, "validation_error", "Missing image file")
		return
	}
	contentType := http.DetectContentType(head[:n])
	if !strings.HasPrefix(contentType, "image/") {
		api.ErrorResponse(w, http.StatusBadRequest, "validation_error", "Uploaded file is not an image")
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		api.WriteError(w, r, err)
		return
	}

	name := storage.NewBlobName("customer-", contentType)
	if err := h.store.Put(r.Context(), name, contentType, file); err != nil {
		api.WriteError(w, r, err)
		return
	}

	title := "Customer-Image-" + h.now().UTC().Format(time.RFC3339Nano)
	product, err := h.repo.CreateUploadedProduct(r.Context(), title, h.mediaURL+name)
	if err != nil {
		if delErr := h.store.Delete(context.WithoutCancel(r.Context()), name); delErr != nil {
			slog.WarnContext(r.Context(), "uploaded image has no product", "blob", name, "error", delErr)
		}
		api.WriteError(w, r, err)
		return
	}

	api.OKResponse(w, http.StatusCreated, api.NewProduct(*product))
}

func (h *UploadHandler) HandleGetMedia(w http.ResponseWriter, r *http.Request) {
	rc, contentType, err := h.store.Open(r.Context(), r.PathValue("name"))
	if err != nil {
		api.WriteError(w, r, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := io.Copy(w, rc); err != nil {
		slog.WarnContext(r.Context(), "stream media", "error", err)
	}
}
