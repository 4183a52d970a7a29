package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashSecret_ProducesPHCFormat(t *testing.T) {
	digest, err := HashSecret("super-secret")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(digest, "$argon2id$v=19$m=65536,t=3,p=4$"))
	assert.Len(t, strings.Split(digest, "$"), 6)
}

func TestHashSecret_NeverEqualsInput(t *testing.T) {
	digest, err := HashSecret("super-secret")
	require.NoError(t, err)
	assert.NotEqual(t, "super-secret", digest)
	assert.NotContains(t, digest, "super-secret")
}

func TestHashSecret_SaltedDigestsDiffer(t *testing.T) {
	a, err := HashSecret("same-input")
	require.NoError(t, err)
	b, err := HashSecret("same-input")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestVerifySecret_RoundTrip(t *testing.T) {
	digest, err := HashSecret("correct horse battery staple")
	require.NoError(t, err)

	assert.True(t, VerifySecret("correct horse battery staple", digest))
	assert.False(t, VerifySecret("correct horse battery stapl", digest))
	assert.False(t, VerifySecret("", digest))
}

func TestVerifySecret_MalformedDigest(t *testing.T) {
	cases := []string{
		"",
		"not-a-digest",
		"$argon2id$v=19$m=65536,t=3$salt$hash",
		"$argon2i$v=19$m=65536,t=3,p=4$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=x,t=3,p=4$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=65536,t=3,p=4$!!!$aGFzaA",
		"$argon2id$v=19$m=65536,t=3,p=4$c2FsdA$!!!",
	}
	for _, digest := range cases {
		assert.False(t, VerifySecret("anything", digest), "digest %q", digest)
	}
}
