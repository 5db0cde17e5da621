// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/lexpad-tui/internal/api"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "user-1",
		"email": "counsel@example.com",
		"exp":   exp.Unix(),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestStore_SaveLoadClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	s := NewStore(path)

	_, err := s.Load()
	assert.ErrorIs(t, err, api.ErrNoToken)

	token := signedToken(t, time.Now().Add(time.Hour))
	require.NoError(t, s.Save(Session{AccessToken: token}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	fresh := NewStore(path)
	sess, err := fresh.Load()
	require.NoError(t, err)
	assert.Equal(t, token, sess.AccessToken)
	assert.Equal(t, "counsel@example.com", sess.Email)

	got, err := fresh.Token()
	require.NoError(t, err)
	assert.Equal(t, token, got)

	require.NoError(t, fresh.Clear())
	_, err = fresh.Token()
	assert.ErrorIs(t, err, api.ErrNoToken)
	require.NoError(t, fresh.Clear(), "clearing twice is fine")
}

func TestStore_ExpiredToken(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, s.Save(Session{AccessToken: signedToken(t, time.Now().Add(-time.Minute))}))

	_, err := s.Token()
	assert.ErrorIs(t, err, ErrExpired)
	assert.ErrorIs(t, err, api.ErrNoToken)
}

func TestStore_OverrideWins(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "session.json")).WithOverride("  opaque-token  ")
	got, err := s.Token()
	require.NoError(t, err)
	assert.Equal(t, "opaque-token", got)
}

func TestStore_RejectsEmptySave(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "session.json"))
	assert.ErrorIs(t, s.Save(Session{AccessToken: "   "}), api.ErrNoToken)
}

func TestExpiresAt(t *testing.T) {
	exp := time.Now().Add(2 * time.Hour).Truncate(time.Second)
	got, ok := ExpiresAt(signedToken(t, exp))
	require.True(t, ok)
	assert.True(t, exp.Equal(got))

	_, ok = ExpiresAt("not-a-jwt")
	assert.False(t, ok)
	assert.Equal(t, "", Email("not-a-jwt"))
}

// =============================================================================
// WATCHER TESTS
// =============================================================================

func nextChange(t *testing.T, w *Watcher) Change {
	t.Helper()
	select {
	case c := <-w.Changes():
		return c
	case <-time.After(5 * time.Second):
		t.Fatal("no session change observed")
		return Change{}
	}
}

func TestWatcher_ObservesLoginAndLogout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewStore(path)
	w, err := store.Watch(nil)
	require.NoError(t, err)
	defer w.Close()

	other := NewStore(path)
	require.NoError(t, other.Save(Session{AccessToken: "opaque-token", Email: "a@example.com"}))
	c := nextChange(t, w)
	assert.True(t, c.SignedIn)
	assert.Equal(t, "a@example.com", c.Email)

	require.NoError(t, other.Clear())
	c = nextChange(t, w)
	assert.False(t, c.SignedIn)
	_, err = store.Load()
	assert.ErrorIs(t, err, api.ErrNoToken)
}

func TestWatcher_CloseIsIdempotent(t *testing.T) {
	w, err := NewStore(filepath.Join(t.TempDir(), "session.json")).Watch(nil)
	require.NoError(t, err)
	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}
