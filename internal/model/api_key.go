package model

import "time"

// API key scopes form a closed set; unknown values are rejected at creation.
const (
	ScopeUpload  = "upload"
	ScopeAnalyze = "analyze"
)

// KnownScopes lists every capability an API key may be granted.
var KnownScopes = []string{ScopeUpload, ScopeAnalyze}

// ValidScope reports whether s is a recognized capability token.
func ValidScope(s string) bool {
	for _, known := range KnownScopes {
		if s == known {
			return true
		}
	}
	return false
}

// APIKey represents an API key for authenticating against the platform API.
// KeyHash and IsDeleted never serialize; the raw key itself is only ever
// returned once, by the create endpoint.
type APIKey struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	KeyHash   string    `json:"-"`
	KeyPrefix string    `json:"key_prefix,omitempty"`
	Scopes    []string  `json:"scopes"`
	IsActive  bool      `json:"is_active"`
	IsDeleted bool      `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasScope reports whether the key carries the given capability.
func (k *APIKey) HasScope(scope string) bool {
	for _, s := range k.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}
