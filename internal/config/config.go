// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/jeranaias/lexpad-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the complete lexpad configuration.
type Config struct {
	API    APIConfig    `toml:"api" json:"api"`
	Auth   AuthConfig   `toml:"auth" json:"auth"`
	Editor EditorConfig `toml:"editor" json:"editor"`
	Panel  PanelConfig  `toml:"panel" json:"panel"`
	UI     UIConfig     `toml:"ui" json:"ui"`
	Log    LogConfig    `toml:"log" json:"log"`
	Drafts DraftsConfig `toml:"drafts" json:"drafts"`
}

// APIConfig describes the document backend.
type APIConfig struct {
	BaseURL       string  `toml:"base_url" json:"base_url"`
	TimeoutSecs   int     `toml:"timeout_secs" json:"timeout_secs"`
	MaxRetries    int     `toml:"max_retries" json:"max_retries"`
	RatePerSec    float64 `toml:"rate_per_sec" json:"rate_per_sec"`
	Burst         int     `toml:"burst" json:"burst"`
	ListCacheSecs int     `toml:"list_cache_secs" json:"list_cache_secs"`
}

// Timeout returns the request timeout.
func (a APIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSecs) * time.Second
}

// ListCacheTTL returns how long the document list is reused.
func (a APIConfig) ListCacheTTL() time.Duration {
	return time.Duration(a.ListCacheSecs) * time.Second
}

// AuthConfig locates the session.
type AuthConfig struct {
	// SessionFile holds the signed-in session. Empty means ~/.lexpad/session.json.
	SessionFile string `toml:"session_file" json:"session_file"`
	// Token, when set, is used instead of the session file.
	Token string `toml:"token" json:"token,omitempty"`
}

// EditorConfig tunes the editing buffer.
type EditorConfig struct {
	HistoryDepth         int  `toml:"history_depth" json:"history_depth"`
	TypingGroupMs        int  `toml:"typing_group_ms" json:"typing_group_ms"`
	AutosaveAfterRewrite bool `toml:"autosave_after_rewrite" json:"autosave_after_rewrite"`
}

// TypingGroup returns the typing group window.
func (e EditorConfig) TypingGroup() time.Duration {
	return time.Duration(e.TypingGroupMs) * time.Millisecond
}

// PanelConfig sizes the assistant panel, in terminal cells.
type PanelConfig struct {
	Width  int `toml:"width" json:"width"`
	Height int `toml:"height" json:"height"`
	StartX int `toml:"start_x" json:"start_x"`
	StartY int `toml:"start_y" json:"start_y"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is "dark", "light" or "auto"
	Theme       string `toml:"theme" json:"theme"`
	ShowToolbar bool   `toml:"show_toolbar" json:"show_toolbar"`
}

// LogConfig controls the log file.
type LogConfig struct {
	Path  string `toml:"path" json:"path"`
	Level string `toml:"level" json:"level"`
}

// DraftsConfig controls the local store of unsaved content.
type DraftsConfig struct {
	Enabled bool   `toml:"enabled" json:"enabled"`
	Path    string `toml:"path" json:"path"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:       "http://localhost:8000",
			TimeoutSecs:   120, // AI endpoints can take a while
			MaxRetries:    2,
			RatePerSec:    5,
			Burst:         10,
			ListCacheSecs: 30,
		},
		Editor: EditorConfig{
			HistoryDepth:         100,
			TypingGroupMs:        500,
			AutosaveAfterRewrite: true,
		},
		Panel: PanelConfig{
			Width:  48,
			Height: 20,
			StartX: 2,
			StartY: 3,
		},
		UI: UIConfig{
			Theme:       "dark",
			ShowToolbar: true,
		},
		Log: LogConfig{
			Level: "info",
		},
		Drafts: DraftsConfig{
			Enabled: true,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the lexpad configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".lexpad"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// ensureSecurePermissions tightens a config file to 0600. It may hold a token.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load builds the configuration. An explicit path must exist; with an empty
// path the default TOML file is tried, then the JSON one, then defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	} else {
		for _, find := range []func() (string, error){ConfigPathTOML, ConfigPathJSON} {
			p, err := find()
			if err != nil {
				continue
			}
			if _, statErr := os.Stat(p); statErr != nil {
				continue
			}
			if err := loadFile(cfg, p); err != nil {
				return nil, fmt.Errorf("failed to load config from %s: %w", p, err)
			}
			break
		}
	}

	LoadDotEnv()
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	if strings.HasSuffix(path, ".json") {
		return LoadJSON(cfg, path)
	}
	return LoadTOML(cfg, path)
}

// LoadTOML decodes a TOML file over cfg.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		return err
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON decodes a JSON file over cfg.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// LoadDotEnv reads .env from the working directory and from the config
// directory. Variables already in the environment are left alone, so the
// first file to define a name wins.
func LoadDotEnv() {
	candidates := []string{".env"}
	if dir, err := ConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, ".env"))
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
		}
	}
}

// SetDefaults replaces zero values that would make the client unusable.
func (c *Config) SetDefaults() {
	d := Default()
	if c.API.BaseURL == "" {
		c.API.BaseURL = d.API.BaseURL
	}
	c.API.BaseURL = strings.TrimRight(c.API.BaseURL, "/")
	if c.API.TimeoutSecs == 0 {
		c.API.TimeoutSecs = d.API.TimeoutSecs
	}
	if c.Editor.HistoryDepth == 0 {
		c.Editor.HistoryDepth = d.Editor.HistoryDepth
	}
	if c.Panel.Width == 0 {
		c.Panel.Width = d.Panel.Width
	}
	if c.Panel.Height == 0 {
		c.Panel.Height = d.Panel.Height
	}
	if c.UI.Theme == "" {
		c.UI.Theme = d.UI.Theme
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save writes the configuration to path, as JSON when the name ends in
// .json and TOML otherwise. An empty path means the default TOML file.
func Save(cfg *Config, path string) error {
	if path == "" {
		p, err := ConfigPathTOML()
		if err != nil {
			return err
		}
		path = p
	}
	if strings.HasSuffix(path, ".json") {
		return SaveJSON(cfg, path)
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration as TOML with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# lexpad configuration file\n")
	buf.WriteString("# Generated by lexpad - edit with care\n\n")
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFileWithDir(path, buf.Bytes(), 0600, 0700); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON writes the configuration as JSON with 0600 permissions.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFileWithDir(path, data, 0600, 0700); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the configuration and returns ValidateErrors listing every
// problem, or nil.
func (c *Config) Validate() error {
	var errs ValidateErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if u, err := url.Parse(c.API.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		add("api.base_url", "invalid URL '%s', must be http(s)://host[:port]", c.API.BaseURL)
	}
	if c.API.TimeoutSecs < 0 || c.API.TimeoutSecs > 3600 {
		add("api.timeout_secs", "must be between 0 and 3600, got %d", c.API.TimeoutSecs)
	}
	if c.API.MaxRetries < 0 || c.API.MaxRetries > 10 {
		add("api.max_retries", "must be between 0 and 10, got %d", c.API.MaxRetries)
	}
	if c.API.RatePerSec < 0 {
		add("api.rate_per_sec", "must not be negative, got %g", c.API.RatePerSec)
	}
	if c.API.Burst < 0 {
		add("api.burst", "must not be negative, got %d", c.API.Burst)
	}
	if c.API.ListCacheSecs < 0 {
		add("api.list_cache_secs", "must not be negative, got %d", c.API.ListCacheSecs)
	}

	if c.Editor.HistoryDepth < 1 || c.Editor.HistoryDepth > 10000 {
		add("editor.history_depth", "must be between 1 and 10000, got %d", c.Editor.HistoryDepth)
	}
	if c.Editor.TypingGroupMs < 0 || c.Editor.TypingGroupMs > 10000 {
		add("editor.typing_group_ms", "must be between 0 and 10000, got %d", c.Editor.TypingGroupMs)
	}

	if c.Panel.Width < 24 {
		add("panel.width", "must be at least 24 cells, got %d", c.Panel.Width)
	}
	if c.Panel.Height < 8 {
		add("panel.height", "must be at least 8 rows, got %d", c.Panel.Height)
	}
	if c.Panel.StartX < 0 || c.Panel.StartY < 0 {
		add("panel.start_x", "start position must not be negative")
	}

	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		add("ui.theme", "invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		add("log.level", "invalid level '%s', must be one of: debug, info, warn, error", c.Log.Level)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides.
//   - LEXPAD_API_URL: overrides api.base_url
//   - LEXPAD_TOKEN: overrides auth.token
//   - LEXPAD_SESSION_FILE: overrides auth.session_file
//   - LEXPAD_LOG_LEVEL: overrides log.level
//   - LEXPAD_THEME: overrides ui.theme
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("LEXPAD_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("LEXPAD_TOKEN"); v != "" {
		c.Auth.Token = v
	}
	if v := os.Getenv("LEXPAD_SESSION_FILE"); v != "" {
		c.Auth.SessionFile = v
	}
	if v := os.Getenv("LEXPAD_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LEXPAD_THEME"); v != "" {
		c.UI.Theme = v
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "api.base_url").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation (e.g., "panel.width").
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	if key == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")
	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			if field.Kind() == reflect.Struct {
				return reflect.Value{}, fmt.Errorf("'%s' is a section, not a value", key)
			}
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field
// equivalent ("base_url" -> "BaseUrl"; matching is case-insensitive).
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})
	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}
	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Float64:
			floatVal, err := strconv.ParseFloat(strVal, 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %v", err)
			}
			field.SetFloat(floatVal)
			return nil
		case reflect.Bool:
			lower := strings.ToLower(strVal)
			field.SetBool(lower == "1" || lower == "true" || lower == "yes")
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// Keys returns every settable key in dot notation.
func Keys() []string {
	var keys []string
	t := reflect.TypeOf(Config{})
	for i := 0; i < t.NumField(); i++ {
		section := t.Field(i)
		prefix := strings.Split(section.Tag.Get("toml"), ",")[0]
		for j := 0; j < section.Type.NumField(); j++ {
			name := strings.Split(section.Type.Field(j).Tag.Get("toml"), ",")[0]
			keys = append(keys, prefix+"."+name)
		}
	}
	return keys
}

// =============================================================================
// DISPLAY
// =============================================================================

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String renders the config as TOML with the token redacted.
func (c *Config) String() string {
	safe := c.Clone()
	if safe.Auth.Token != "" {
		safe.Auth.Token = "[REDACTED]"
	}
	var buf bytes.Buffer
	_ = toml.NewEncoder(&buf).Encode(safe)
	return buf.String()
}
