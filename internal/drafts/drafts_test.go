// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package drafts

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "sub", "drafts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_PutGetDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Get(ctx, "d1")
	assert.ErrorIs(t, err, ErrNotFound)

	at := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	require.NoError(t, s.Put(ctx, Draft{DocID: "d1", Title: "Lease", Content: "<p>v1</p>", LastError: "timeout", SavedAt: at}))

	d, err := s.Get(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, "<p>v1</p>", d.Content)
	assert.Equal(t, "Lease", d.Title)
	assert.Equal(t, "timeout", d.LastError)
	assert.Equal(t, 1, d.Attempts)
	assert.True(t, at.Equal(d.SavedAt))

	require.NoError(t, s.Delete(ctx, "d1"))
	_, err = s.Get(ctx, "d1")
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, s.Delete(ctx, "d1"), "deleting a missing draft is fine")
}

// TestStore_PutReplaces checks a second failure keeps only the newest content.
func TestStore_PutReplaces(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, Draft{DocID: "d1", Title: "NDA", Content: "<p>old</p>"}))
	require.NoError(t, s.Put(ctx, Draft{DocID: "d1", Content: "<p>new</p>", LastError: "502"}))

	d, err := s.Get(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, "<p>new</p>", d.Content)
	assert.Equal(t, "NDA", d.Title, "empty title keeps the earlier one")
	assert.Equal(t, "502", d.LastError)
	assert.Equal(t, 2, d.Attempts)
}

func TestStore_ListNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.Put(ctx, Draft{DocID: "a", Content: "x", SavedAt: base}))
	require.NoError(t, s.Put(ctx, Draft{DocID: "b", Content: "y", SavedAt: base.Add(time.Hour)}))

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].DocID)
	assert.Equal(t, "a", list[1].DocID)
}

func TestStore_PersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drafts.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, Draft{DocID: "d1", Content: "<p>kept</p>"}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	d, err := s.Get(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, "<p>kept</p>", d.Content)

	v, err := s.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, v)
}

func TestStore_Closed(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.Put(context.Background(), Draft{DocID: "d1"}), ErrClosed)
	_, err := s.List(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestStore_RequiresDocID(t *testing.T) {
	s := openTestStore(t)
	assert.Error(t, s.Put(context.Background(), Draft{Content: "x"}))
}
