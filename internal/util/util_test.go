// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// ATOMIC WRITE TESTS
// =============================================================================

func TestAtomicWriteFile_CreatesAndOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subdir", "deep", "test.txt")

	require.NoError(t, AtomicWriteFile(path, []byte("initial"), 0644))
	require.NoError(t, AtomicWriteFile(path, []byte("replaced"), 0644))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "replaced", string(content))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestAtomicWriteFileWithDir_Permissions(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "private")
	path := filepath.Join(dir, "session.json")

	require.NoError(t, AtomicWriteFileWithDir(path, []byte("{}"), 0600, 0700))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	dirInfo, err := os.Stat(dir)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0700), dirInfo.Mode().Perm())
}

func TestAtomicWriteFile_FailureCleansUp(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "target")
	require.NoError(t, os.Mkdir(target, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(target, "child"), nil, 0644))

	// Renaming a file over a non-empty directory fails.
	assert.Error(t, AtomicWriteFile(target, []byte("x"), 0644))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

// =============================================================================
// TEXT TESTS
// =============================================================================

func TestTruncateRunes(t *testing.T) {
	cases := []struct {
		in   string
		max  int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello world", 8, "hello..."},
		{"héllo wörld", 8, "héllo..."},
		{"abc", 2, "ab"},
		{"abc", 0, ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, TruncateRunes(tc.in, tc.max), tc.in)
	}
}

func TestStringWidth(t *testing.T) {
	assert.Equal(t, 5, StringWidth("hello"))
	assert.Equal(t, 4, StringWidth("契約"))
	assert.Equal(t, 2, RuneWidth('約'))
}

func TestTruncateWidth(t *testing.T) {
	assert.Equal(t, "hello", TruncateWidth("hello", 5))
	assert.Equal(t, "hel…", TruncateWidth("hello", 4))
	assert.Equal(t, "", TruncateWidth("hello", 0))
	assert.LessOrEqual(t, StringWidth(TruncateWidth("契約書の条項", 5)), 5)
}

func TestPadRight(t *testing.T) {
	assert.Equal(t, "ab   ", PadRight("ab", 5))
	assert.Equal(t, "abc", PadRight("abcdef", 3))
	assert.Equal(t, 6, StringWidth(PadRight("契約", 6)))
}

func TestWrapWidth(t *testing.T) {
	lines := WrapWidth("the parties shall mutually indemnify each other", 16)
	for _, l := range lines {
		assert.LessOrEqual(t, StringWidth(l), 16, l)
	}
	assert.Equal(t, "the parties shall mutually indemnify each other", strings.Join(lines, " "))

	assert.Equal(t, []string{"abcd", "efgh", "ij"}, WrapWidth("abcdefghij", 4))
	assert.Equal(t, []string{"one", "", "two"}, WrapWidth("one\n\ntwo", 10))
}
