package crypto

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// Raw API keys follow the scheme "sk_<fragment>_<secret>". The fragment is a
// short random identifier whose only job is to make the key prefix
// ("sk_<fragment>") a usable store index; the secret carries all the entropy
// that matters. Prefix collisions are tolerated by the resolver, which
// verifies the hash of every candidate.
const (
	keyScheme        = "sk"
	fragmentLength   = 8
	secretBytes      = 32
	fragmentAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// GenerateKey produces a new raw API key and its non-secret prefix. The raw
// key is shown to the caller exactly once; only its hash is ever stored.
func GenerateKey() (raw, prefix string, err error) {
	frag := make([]byte, fragmentLength)
	if _, err := rand.Read(frag); err != nil {
		return "", "", fmt.Errorf("generate key fragment: %w", err)
	}
	for i := range frag {
		frag[i] = fragmentAlphabet[frag[i]%byte(len(fragmentAlphabet))]
	}

	secret := make([]byte, secretBytes)
	if _, err := rand.Read(secret); err != nil {
		return "", "", fmt.Errorf("generate key secret: %w", err)
	}

	prefix = keyScheme + "_" + string(frag)
	raw = prefix + "_" + hex.EncodeToString(secret)
	return raw, prefix, nil
}

// KeyPrefix recovers the store-index prefix from a raw API key. It errors on
// anything that does not match the "sk_<fragment>_<secret>" shape instead of
// guessing; callers treat that as an authentication failure.
func KeyPrefix(raw string) (string, error) {
	parts := strings.SplitN(raw, "_", 3)
	if len(parts) != 3 {
		return "", fmt.Errorf("malformed api key")
	}
	if parts[0] != keyScheme || parts[1] == "" || parts[2] == "" {
		return "", fmt.Errorf("malformed api key")
	}
	if len(parts[1]) != fragmentLength {
		return "", fmt.Errorf("malformed api key")
	}
	return parts[0] + "_" + parts[1], nil
}
