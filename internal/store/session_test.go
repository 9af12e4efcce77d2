package store

import (
	"testing"
	"time"

	"github.com/mmcdole/lumen/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStore_PersistsAcrossOpens(t *testing.T) {
	dir := t.TempDir()
	saved := Session{Token: "abc", Subject: "u7", Admin: true, SavedAt: time.Unix(1700000000, 0).UTC()}

	s, err := NewSessionStore(dir, "https://portal.example.com/")
	require.NoError(t, err)
	require.NoError(t, s.Save(saved))
	require.NoError(t, s.Close())

	s, err = NewSessionStore(dir, "HTTPS://portal.example.com")
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, saved, got)
	assert.Equal(t, domain.Identity{Token: "abc", Subject: "u7", Admin: true}, got.Identity())
}

func TestSessionStore_ScopedByServer(t *testing.T) {
	dir := t.TempDir()

	a, err := NewSessionStore(dir, "https://a.example.com")
	require.NoError(t, err)
	require.NoError(t, a.Save(Session{Token: "for-a"}))
	require.NoError(t, a.Close())

	b, err := NewSessionStore(dir, "https://b.example.com")
	require.NoError(t, err)
	defer b.Close()

	_, err = b.Load()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestSessionStore_MemoryOnly(t *testing.T) {
	s, err := NewSessionStore("", "https://portal.example.com")
	require.NoError(t, err)

	_, err = s.Load()
	assert.ErrorIs(t, err, ErrNoSession)

	require.NoError(t, s.Save(Session{Token: "t"}))
	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "t", got.Token)
	assert.False(t, got.SavedAt.IsZero())

	require.NoError(t, s.Clear())
	_, err = s.Load()
	assert.ErrorIs(t, err, ErrNoSession)
	assert.NoError(t, s.Close())
}

func TestSessionStore_ClearAndReject(t *testing.T) {
	s, err := NewSessionStore(t.TempDir(), "https://portal.example.com")
	require.NoError(t, err)
	defer s.Close()

	assert.Error(t, s.Save(Session{}))
	assert.NoError(t, s.Clear(), "clearing an empty store is fine")

	require.NoError(t, s.Save(Session{Token: "x"}))
	require.NoError(t, s.Clear())
	_, err = s.Load()
	assert.ErrorIs(t, err, ErrNoSession)
}
