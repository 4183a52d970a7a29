package assistant

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSessionStore_GetCreatesAndReuses(t *testing.T) {
	store := NewSessionStore(time.Minute, 10)

	sess := store.Get("sess-1")
	sess.Order["margherita"] = 1

	again := store.Get("sess-1")
	assert.Equal(t, 1, again.Order["margherita"])
	assert.Equal(t, 1, store.Len())
}

func TestSessionStore_ExpiredSessionIsReset(t *testing.T) {
	now := time.Now()
	store := NewSessionStore(time.Minute, 10)
	store.now = func() time.Time { return now }

	store.Get("sess-1").Order["margherita"] = 1

	now = now.Add(2 * time.Minute)
	sess := store.Get("sess-1")
	assert.Empty(t, sess.Order)
}

func TestSessionStore_CapEvictsOldest(t *testing.T) {
	now := time.Now()
	store := NewSessionStore(time.Hour, 3)
	store.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		store.Get(fmt.Sprintf("sess-%d", i))
		now = now.Add(time.Second)
	}
	store.Get("sess-new")

	assert.Equal(t, 3, store.Len())
	// sess-0 was least recently used; a fresh Get recreates it empty.
	store.Get("sess-1").Order["x"] = 1
	assert.Equal(t, 1, store.Get("sess-1").Order["x"])
}

func TestSessionStore_CapPrefersExpiredEviction(t *testing.T) {
	now := time.Now()
	store := NewSessionStore(time.Minute, 2)
	store.now = func() time.Time { return now }

	store.Get("old-1")
	store.Get("old-2")

	now = now.Add(2 * time.Minute)
	store.Get("fresh")
	assert.Equal(t, 1, store.Len())
}
