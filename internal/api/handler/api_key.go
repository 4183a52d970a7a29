package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "github.com/edvin/skinsight/internal/api/middleware"
	"github.com/edvin/skinsight/internal/api/request"
	"github.com/edvin/skinsight/internal/api/response"
	"github.com/edvin/skinsight/internal/core"
)

// APIKey handles API key management endpoints.
type APIKey struct {
	svc *core.APIKeyService
}

// NewAPIKey creates a new APIKey handler.
func NewAPIKey(svc *core.APIKeyService) *APIKey {
	return &APIKey{svc: svc}
}

// Create generates a new API key. The raw key is returned once in the
// response and never stored or shown again.
func (h *APIKey) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateAPIKey
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	key, rawKey, err := h.svc.Create(r.Context(), req.Name, req.Scopes)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	resp := map[string]any{
		"id":         key.ID,
		"name":       key.Name,
		"api_key":    rawKey,
		"key_prefix": key.KeyPrefix,
		"scopes":     key.Scopes,
		"created_at": key.CreatedAt,
		"message":    "store this key securely, it will not be shown again",
	}
	response.WriteJSON(w, http.StatusCreated, resp)
}

// Me returns the metadata of the key that authenticated the request.
func (h *APIKey) Me(w http.ResponseWriter, r *http.Request) {
	key := mw.GetIdentity(r.Context())
	if key == nil {
		response.WriteError(w, http.StatusUnauthorized, "missing API key")
		return
	}
	response.WriteJSON(w, http.StatusOK, key)
}

// Lookup resolves a raw credential in the path to its key metadata. An
// unresolvable credential reads as absent rather than unauthorized so the
// endpoint does not confirm which failure occurred.
func (h *APIKey) Lookup(w http.ResponseWriter, r *http.Request) {
	raw, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	key, err := h.svc.Resolve(r.Context(), raw)
	if err != nil {
		response.WriteServiceError(w, toLookupError(err))
		return
	}
	response.WriteJSON(w, http.StatusOK, key)
}

// List lists API keys with cursor-based pagination.
func (h *APIKey) List(w http.ResponseWriter, r *http.Request) {
	pg := request.ParsePagination(r)

	keys, hasMore, err := h.svc.List(r.Context(), pg.Limit, pg.Cursor)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	var nextCursor string
	if hasMore && len(keys) > 0 {
		nextCursor = keys[len(keys)-1].ID
	}
	response.WritePaginated(w, http.StatusOK, keys, nextCursor, hasMore)
}

// Revoke deactivates an API key. The row survives for auditability.
func (h *APIKey) Revoke(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.Revoke(r.Context(), id); err != nil {
		response.WriteServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Delete soft-deletes an API key.
func (h *APIKey) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		response.WriteServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
