package core

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/edvin/skinsight/internal/crypto"
	"github.com/edvin/skinsight/internal/model"
	"github.com/edvin/skinsight/internal/platform"
)

const apiKeyColumns = "id, name, key_hash, key_prefix, scopes, is_active, created_at, updated_at"

// APIKeyService manages the API key lifecycle: creation, credential
// resolution, revocation, and soft deletion.
type APIKeyService struct {
	db     DB
	logger zerolog.Logger
}

// NewAPIKeyService creates a new APIKeyService.
func NewAPIKeyService(db DB, logger zerolog.Logger) *APIKeyService {
	return &APIKeyService{db: db, logger: logger.With().Str("component", "api-keys").Logger()}
}

// Create generates a new API key, stores its hash, and returns the model along
// with the raw key string. The raw key must be shown to the caller exactly once.
func (s *APIKeyService) Create(ctx context.Context, name string, scopes []string) (*model.APIKey, string, error) {
	normalized, err := normalizeScopes(scopes)
	if err != nil {
		return nil, "", err
	}

	rawKey, prefix, err := crypto.GenerateKey()
	if err != nil {
		return nil, "", fmt.Errorf("generate api key: %w", err)
	}

	keyHash, err := crypto.HashSecret(rawKey)
	if err != nil {
		return nil, "", fmt.Errorf("hash api key: %w", err)
	}

	key := &model.APIKey{
		ID:        platform.NewID(),
		Name:      name,
		KeyHash:   keyHash,
		KeyPrefix: prefix,
		Scopes:    normalized,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	key.UpdatedAt = key.CreatedAt

	_, err = s.db.Exec(ctx,
		`INSERT INTO api_keys (id, name, key_hash, key_prefix, scopes, is_active, is_deleted, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, FALSE, $7, $8)`,
		key.ID, key.Name, key.KeyHash, key.KeyPrefix, key.Scopes, key.IsActive, key.CreatedAt, key.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, "", fmt.Errorf("insert api key: %w", ErrAlreadyExists)
		}
		return nil, "", fmt.Errorf("insert api key: %w", err)
	}

	return key, rawKey, nil
}

// Resolve authenticates a raw API key: it derives the non-secret prefix,
// loads the active candidates sharing it, and verifies the argon2 hash of
// each until one matches. Every failure branch returns ErrUnauthorized so a
// caller cannot distinguish a bad prefix from a bad secret; the specific
// cause is logged here and nowhere else.
func (s *APIKeyService) Resolve(ctx context.Context, rawKey string) (*model.APIKey, error) {
	prefix, err := crypto.KeyPrefix(rawKey)
	if err != nil {
		s.logger.Debug().Msg("api key rejected: malformed credential")
		return nil, ErrUnauthorized
	}

	rows, err := s.db.Query(ctx,
		`SELECT `+apiKeyColumns+` FROM api_keys
		 WHERE key_prefix = $1 AND is_active = TRUE AND is_deleted = FALSE`, prefix)
	if err != nil {
		return nil, fmt.Errorf("lookup api key candidates: %w", err)
	}
	defer rows.Close()

	var candidates []model.APIKey
	for rows.Next() {
		var k model.APIKey
		if err := rows.Scan(&k.ID, &k.Name, &k.KeyHash, &k.KeyPrefix, &k.Scopes, &k.IsActive, &k.CreatedAt, &k.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}
		candidates = append(candidates, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate api key candidates: %w", err)
	}

	if len(candidates) == 0 {
		s.logger.Debug().Str("key_prefix", prefix).Msg("api key rejected: unknown or inactive prefix")
		return nil, ErrUnauthorized
	}

	// Prefixes are not unique; verify each candidate until one matches.
	for i := range candidates {
		if crypto.VerifySecret(rawKey, candidates[i].KeyHash) {
			return &candidates[i], nil
		}
	}

	s.logger.Debug().Str("key_prefix", prefix).Msg("api key rejected: hash mismatch")
	return nil, ErrUnauthorized
}

// GetByID retrieves a non-deleted API key by its ID.
func (s *APIKeyService) GetByID(ctx context.Context, id string) (*model.APIKey, error) {
	var k model.APIKey
	err := s.db.QueryRow(ctx,
		`SELECT `+apiKeyColumns+` FROM api_keys WHERE id = $1 AND is_deleted = FALSE`, id,
	).Scan(&k.ID, &k.Name, &k.KeyHash, &k.KeyPrefix, &k.Scopes, &k.IsActive, &k.CreatedAt, &k.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("api key %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get api key %s: %w", id, err)
	}
	return &k, nil
}

// List retrieves non-deleted API keys with cursor-based pagination.
func (s *APIKeyService) List(ctx context.Context, limit int, cursor string) ([]model.APIKey, bool, error) {
	query := `SELECT ` + apiKeyColumns + ` FROM api_keys WHERE is_deleted = FALSE`
	args := []any{}
	argIdx := 1

	if cursor != "" {
		query += fmt.Sprintf(` AND id > $%d`, argIdx)
		args = append(args, cursor)
		argIdx++
	}

	query += ` ORDER BY id`
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit+1)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("list api keys: %w", err)
	}
	defer rows.Close()

	var keys []model.APIKey
	for rows.Next() {
		var k model.APIKey
		if err := rows.Scan(&k.ID, &k.Name, &k.KeyHash, &k.KeyPrefix, &k.Scopes, &k.IsActive, &k.CreatedAt, &k.UpdatedAt); err != nil {
			return nil, false, fmt.Errorf("scan api key: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate api keys: %w", err)
	}

	hasMore := len(keys) > limit
	if hasMore {
		keys = keys[:limit]
	}
	return keys, hasMore, nil
}

// Revoke deactivates an API key. Revoking an already-inactive key is not an
// error; only a key that never existed (or was deleted) reports ErrNotFound.
func (s *APIKeyService) Revoke(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE api_keys SET is_active = FALSE, updated_at = now() WHERE id = $1 AND is_deleted = FALSE`, id,
	)
	if err != nil {
		return fmt.Errorf("revoke api key %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("api key %s: %w", id, ErrNotFound)
	}
	return nil
}

// Delete soft-deletes an API key. The record is flagged, never removed.
func (s *APIKeyService) Delete(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE api_keys SET is_deleted = TRUE, is_active = FALSE, updated_at = now() WHERE id = $1 AND is_deleted = FALSE`, id,
	)
	if err != nil {
		return fmt.Errorf("delete api key %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("api key %s: %w", id, ErrNotFound)
	}
	return nil
}

// normalizeScopes validates the scope set against the closed enumeration and
// collapses duplicates, preserving first-seen order.
func normalizeScopes(scopes []string) ([]string, error) {
	if len(scopes) == 0 {
		return nil, fmt.Errorf("scopes must not be empty: %w", ErrInvalidScope)
	}

	seen := make(map[string]bool, len(scopes))
	normalized := make([]string, 0, len(scopes))
	for _, scope := range scopes {
		if !model.ValidScope(scope) {
			return nil, fmt.Errorf("unknown scope %q: %w", scope, ErrInvalidScope)
		}
		if seen[scope] {
			continue
		}
		seen[scope] = true
		normalized = append(normalized, scope)
	}
	return normalized, nil
}
