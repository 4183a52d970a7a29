package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/edvin/skinsight/internal/core"
	"github.com/edvin/skinsight/internal/model"
)

type stubResolver struct {
	key *model.APIKey
	err error
}

func (s *stubResolver) Resolve(_ context.Context, _ string) (*model.APIKey, error) {
	return s.key, s.err
}

func okHandler() (http.Handler, *bool) {
	called := false
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}), &called
}

func TestAuth_MissingHeader(t *testing.T) {
	next, called := okHandler()
	h := Auth(&stubResolver{})(next)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/images", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, *called)
}

func TestAuth_InvalidKey(t *testing.T) {
	next, called := okHandler()
	h := Auth(&stubResolver{err: core.ErrUnauthorized})(next)

	r := httptest.NewRequest("GET", "/images", nil)
	r.Header.Set("X-API-Key", "sk_bogus_deadbeef")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, *called)
}

func TestAuth_ResolverInfrastructureError(t *testing.T) {
	next, called := okHandler()
	h := Auth(&stubResolver{err: errors.New("connection refused")})(next)

	r := httptest.NewRequest("GET", "/images", nil)
	r.Header.Set("X-API-Key", "sk_some_key")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.False(t, *called)
}

func TestAuth_Success(t *testing.T) {
	key := &model.APIKey{ID: "key-1", Scopes: []string{model.ScopeUpload}}
	var seen *model.APIKey
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetIdentity(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	h := Auth(&stubResolver{key: key})(next)

	r := httptest.NewRequest("GET", "/images", nil)
	r.Header.Set("X-API-Key", "sk_valid_key")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, key, seen)
}

func TestRequireScope_Insufficient(t *testing.T) {
	next, called := okHandler()
	h := RequireScope(model.ScopeAnalyze)(next)

	key := &model.APIKey{ID: "key-1", Scopes: []string{model.ScopeUpload}}
	r := httptest.NewRequest("POST", "/analysis", nil)
	r = r.WithContext(context.WithValue(r.Context(), APIKeyIdentityKey, key))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, *called)
}

func TestRequireScope_NoIdentity(t *testing.T) {
	next, called := okHandler()
	h := RequireScope(model.ScopeUpload)(next)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("POST", "/images", nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, *called)
}

func TestRequireScope_Allowed(t *testing.T) {
	next, called := okHandler()
	h := RequireScope(model.ScopeUpload)(next)

	key := &model.APIKey{ID: "key-1", Scopes: []string{model.ScopeUpload, model.ScopeAnalyze}}
	r := httptest.NewRequest("POST", "/images", nil)
	r = r.WithContext(context.WithValue(r.Context(), APIKeyIdentityKey, key))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, *called)
}
