package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/edvin/skinsight/internal/api/request"
	"github.com/edvin/skinsight/internal/api/response"
	"github.com/edvin/skinsight/internal/core"
)

// ObjectStore persists uploaded file bodies and derives their storage keys.
type ObjectStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	ObjectKey(filename string) string
}

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}

// Image handles image upload and retrieval endpoints.
type Image struct {
	svc      *core.ImageService
	store    ObjectStore
	maxBytes int64
}

func NewImage(svc *core.ImageService, store ObjectStore, maxBytes int64) *Image {
	return &Image{svc: svc, store: store, maxBytes: maxBytes}
}

// Upload accepts a multipart form with a single "image" part, stores the body
// in object storage, and records the metadata row.
func (h *Image) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		response.WriteError(w, http.StatusBadRequest,
			fmt.Sprintf("invalid upload: body must be multipart and at most %d bytes", h.maxBytes))
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, "missing image part")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if _, ok := allowedImageTypes[contentType]; !ok {
		response.WriteError(w, http.StatusBadRequest, "unsupported content type: only image/jpeg and image/png are accepted")
		return
	}
	if header.Size > h.maxBytes {
		response.WriteError(w, http.StatusBadRequest,
			fmt.Sprintf("file exceeds the %d byte limit", h.maxBytes))
		return
	}

	filename := sanitizeFilename(header.Filename, allowedImageTypes[contentType])
	storageKey := h.store.ObjectKey(filename)

	if err := h.store.Upload(r.Context(), storageKey, contentType, file, header.Size); err != nil {
		response.WriteError(w, http.StatusInternalServerError, "upload failed")
		return
	}

	img, err := h.svc.Create(r.Context(), filename, contentType, header.Size, storageKey)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, img)
}

// Get retrieves image metadata by ID.
func (h *Image) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	img, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, img)
}

// sanitizeFilename strips any path component and normalizes the extension to
// match the declared content type.
func sanitizeFilename(name, ext string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		base = "upload" + ext
	}
	if !strings.HasSuffix(strings.ToLower(base), ext) && ext != "" {
		base = strings.TrimSuffix(base, filepath.Ext(base)) + ext
	}
	return base
}
