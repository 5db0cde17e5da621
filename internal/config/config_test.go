// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points HOME and the working directory at temp dirs and clears
// LEXPAD_* so no real config or .env is read.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	for _, k := range []string{"LEXPAD_API_URL", "LEXPAD_TOKEN", "LEXPAD_SESSION_FILE", "LEXPAD_LOG_LEVEL", "LEXPAD_THEME"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return home
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.True(t, cfg.Editor.AutosaveAfterRewrite)
	assert.Equal(t, 48, cfg.Panel.Width)
}

func TestLoad_NoFiles(t *testing.T) {
	isolate(t)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000", cfg.API.BaseURL)
}

func TestLoad_TOMLKeepsUnsetDefaults(t *testing.T) {
	home := isolate(t)
	dir := filepath.Join(home, ".lexpad")
	require.NoError(t, os.MkdirAll(dir, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(`
[api]
base_url = "https://docs.example.com/"

[editor]
history_depth = 50

[panel]
width = 60
`), 0644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "https://docs.example.com", cfg.API.BaseURL, "trailing slash trimmed")
	assert.Equal(t, 50, cfg.Editor.HistoryDepth)
	assert.Equal(t, 60, cfg.Panel.Width)
	assert.Equal(t, 20, cfg.Panel.Height)
	assert.True(t, cfg.Editor.AutosaveAfterRewrite)

	info, err := os.Stat(filepath.Join(dir, "config.toml"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestLoad_ExplicitJSONPath(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "lexpad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"ui":{"theme":"light","show_toolbar":false}}`), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "light", cfg.UI.Theme)
	assert.False(t, cfg.UI.ShowToolbar)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestLoad_EnvBeatsFileAndDotEnv(t *testing.T) {
	isolate(t)
	require.NoError(t, os.WriteFile(".env", []byte("LEXPAD_LOG_LEVEL=debug\n"), 0600))
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[api]\nbase_url = \"http://file:1\"\n"), 0600))
	t.Setenv("LEXPAD_API_URL", "http://env:2")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://env:2", cfg.API.BaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.API.BaseURL = "ftp://nope"
	cfg.Panel.Width = 3
	cfg.UI.Theme = "neon"

	err := cfg.Validate()
	var verrs ValidateErrors
	require.True(t, errors.As(err, &verrs))
	assert.Len(t, verrs, 3)
	assert.Contains(t, err.Error(), "api.base_url")
	assert.Contains(t, err.Error(), "ui.theme")
}

func TestGetSet(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Set("api.base_url", "https://x.test"))
	require.NoError(t, cfg.Set("panel.width", "72"))
	require.NoError(t, cfg.Set("editor.autosave_after_rewrite", "false"))

	v, err := cfg.Get("api.base_url")
	require.NoError(t, err)
	assert.Equal(t, "https://x.test", v)
	assert.Equal(t, 72, cfg.Panel.Width)
	assert.False(t, cfg.Editor.AutosaveAfterRewrite)

	_, err = cfg.Get("api.nope")
	assert.Error(t, err)
	_, err = cfg.Get("api")
	assert.Error(t, err)
	assert.Error(t, cfg.Set("panel.width", "wide"))
}

func TestKeys(t *testing.T) {
	keys := Keys()
	assert.Contains(t, keys, "api.base_url")
	assert.Contains(t, keys, "editor.typing_group_ms")
	assert.Contains(t, keys, "drafts.path")

	cfg := Default()
	for _, k := range keys {
		_, err := cfg.Get(k)
		assert.NoError(t, err, k)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	isolate(t)
	cfg := Default()
	cfg.Auth.Token = "secret"
	cfg.Panel.StartX = 9

	for _, name := range []string{"config.toml", "config.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			require.NoError(t, Save(cfg, path))

			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

			got, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, 9, got.Panel.StartX)
			assert.Equal(t, "secret", got.Auth.Token)
		})
	}
}

func TestString_RedactsToken(t *testing.T) {
	cfg := Default()
	cfg.Auth.Token = "secret"
	out := cfg.String()
	assert.NotContains(t, out, "secret")
	assert.Contains(t, out, "[REDACTED]")
	assert.Equal(t, "secret", cfg.Auth.Token)
}
