package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvin/skinsight/internal/config"
	"github.com/edvin/skinsight/internal/core"
)

// keyTableDB backs the api_keys table with an in-memory slice. Exec captures
// inserted keys, Query replays the ones matching the prefix lookup, and
// QueryRow always reports no rows. Enough to exercise create and resolve.
type keyTableDB struct {
	mu   sync.Mutex
	keys []storedKey
}

type storedKey struct {
	id, name, hash, prefix string
	scopes                 []string
	active                 bool
	created, updated       time.Time
}

func (d *keyTableDB) Exec(_ context.Context, _ string, args ...any) (pgconn.CommandTag, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.keys = append(d.keys, storedKey{
		id:      args[0].(string),
		name:    args[1].(string),
		hash:    args[2].(string),
		prefix:  args[3].(string),
		scopes:  args[4].([]string),
		active:  args[5].(bool),
		created: args[6].(time.Time),
		updated: args[7].(time.Time),
	})
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (d *keyTableDB) Query(_ context.Context, _ string, args ...any) (pgx.Rows, error) {
	prefix, _ := args[0].(string)
	rows := &keyRows{}
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, k := range d.keys {
		if k.prefix == prefix && k.active {
			rows.keys = append(rows.keys, k)
		}
	}
	return rows, nil
}

func (d *keyTableDB) QueryRow(context.Context, string, ...any) pgx.Row {
	return noRow{}
}

type noRow struct{}

func (noRow) Scan(...any) error { return pgx.ErrNoRows }

type keyRows struct {
	keys []storedKey
	idx  int
}

func (r *keyRows) Next() bool { return r.idx < len(r.keys) }

func (r *keyRows) Scan(dest ...any) error {
	k := r.keys[r.idx]
	r.idx++
	*(dest[0].(*string)) = k.id
	*(dest[1].(*string)) = k.name
	*(dest[2].(*string)) = k.hash
	*(dest[3].(*string)) = k.prefix
	*(dest[4].(*[]string)) = k.scopes
	*(dest[5].(*bool)) = k.active
	*(dest[6].(*time.Time)) = k.created
	*(dest[7].(*time.Time)) = k.updated
	return nil
}

func (r *keyRows) Err() error                                   { return nil }
func (r *keyRows) Close()                                       {}
func (r *keyRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *keyRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *keyRows) RawValues() [][]byte                          { return nil }
func (r *keyRows) Values() ([]any, error)                       { return nil, nil }
func (r *keyRows) Conn() *pgx.Conn                              { return nil }

type nullObjectStore struct{}

func (nullObjectStore) Upload(context.Context, string, string, io.Reader, int64) error { return nil }
func (nullObjectStore) ObjectKey(filename string) string                               { return "test/" + filename }

type echoChatService struct{}

func (echoChatService) Chat(_ context.Context, _, _ string) (string, error) { return "ok", nil }

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := &config.Config{
		RateLimitCalls:  100,
		RateLimitWindow: time.Minute,
		MaxUploadBytes:  1 << 20,
	}
	db := &keyTableDB{}
	return newServer(zerolog.Nop(), core.NewServices(db, zerolog.Nop()), nil, cfg,
		nullObjectStore{}, echoChatService{})
}

func doJSON(srv *Server, method, path, apiKey string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

// createKey provisions a key through the HTTP surface and returns the raw
// credential from the one-time create response.
func createKey(t *testing.T, srv *Server, scopes ...string) string {
	t.Helper()
	rec := doJSON(srv, http.MethodPost, "/api/v1/api-keys", "",
		map[string]any{"name": "test key", "scopes": scopes})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	raw, _ := resp["api_key"].(string)
	require.True(t, strings.HasPrefix(raw, "sk_"))
	return raw
}

func TestServer_CreateKeyNeedsNoCredential(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(srv, http.MethodPost, "/api/v1/api-keys", "",
		map[string]any{"name": "bootstrap", "scopes": []string{"upload"}})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.NotEmpty(t, resp["api_key"])
	assert.NotEmpty(t, resp["id"])
}

func TestServer_ProtectedRoutesRejectMissingKey(t *testing.T) {
	srv := newTestServer(t)

	routes := []struct {
		method, path string
	}{
		{http.MethodGet, "/api/v1/api-keys"},
		{http.MethodGet, "/api/v1/api-keys/me"},
		{http.MethodGet, "/api/v1/images/img-1"},
		{http.MethodPost, "/api/v1/images/img-1/analysis"},
		{http.MethodGet, "/api/v1/images/img-1/analysis"},
		{http.MethodPut, "/api/v1/reviews/rev-1/status"},
		{http.MethodPost, "/api/v1/assistant/chat"},
	}
	for _, rt := range routes {
		t.Run(fmt.Sprintf("%s %s", rt.method, rt.path), func(t *testing.T) {
			rec := doJSON(srv, rt.method, rt.path, "", nil)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestServer_ScopeGates(t *testing.T) {
	srv := newTestServer(t)
	uploadKey := createKey(t, srv, "upload")

	// In scope: the request clears the gate and reaches the handler, which
	// reports the image as missing.
	rec := doJSON(srv, http.MethodGet, "/api/v1/images/img-1", uploadKey, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())

	// Out of scope: analyze-gated routes refuse an upload-only key.
	for _, rt := range []struct {
		method, path string
	}{
		{http.MethodPost, "/api/v1/images/img-1/analysis"},
		{http.MethodGet, "/api/v1/images/img-1/analysis"},
		{http.MethodPut, "/api/v1/reviews/rev-1/status"},
	} {
		rec := doJSON(srv, rt.method, rt.path, uploadKey, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code, "%s %s", rt.method, rt.path)
	}

	analyzeKey := createKey(t, srv, "analyze")
	rec = doJSON(srv, http.MethodGet, "/api/v1/images/img-1", analyzeKey, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestServer_InvalidKeyUnauthorized(t *testing.T) {
	srv := newTestServer(t)
	createKey(t, srv, "upload")

	rec := doJSON(srv, http.MethodGet, "/api/v1/api-keys/me",
		"sk_00000000_ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
