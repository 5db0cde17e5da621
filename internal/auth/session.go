// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth keeps the signed-in session and supplies its bearer token.
//
// Tokens are issued by the external identity provider; lexpad never verifies
// their signature. It only reads the expiry claim so an expired session sends
// the user to sign-in before any request is made.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jeranaias/lexpad-tui/internal/api"
	"github.com/jeranaias/lexpad-tui/internal/util"
)

// ErrExpired indicates the stored token's exp claim has passed.
var ErrExpired = errors.New("session expired")

// Session is the persisted sign-in state.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	Email        string    `json:"email,omitempty"`
	SavedAt      time.Time `json:"saved_at"`
}

// Store reads and writes the session file. An override token, from config or
// the environment, takes precedence over the file.
type Store struct {
	path     string
	override string
	now      func() time.Time

	mu     sync.RWMutex
	cached *Session
}

// NewStore creates a store backed by path.
func NewStore(path string) *Store {
	return &Store{path: path, now: time.Now}
}

// WithOverride makes token the active token regardless of the session file.
func (s *Store) WithOverride(token string) *Store {
	s.override = strings.TrimSpace(token)
	return s
}

// Path returns the session file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the session file. It returns api.ErrNoToken when none exists.
func (s *Store) Load() (*Session, error) {
	s.mu.RLock()
	if s.cached != nil {
		sess := *s.cached
		s.mu.RUnlock()
		return &sess, nil
	}
	s.mu.RUnlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, api.ErrNoToken
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("parse session %s: %w", s.path, err)
	}
	if sess.AccessToken == "" {
		return nil, api.ErrNoToken
	}

	s.mu.Lock()
	s.cached = &sess
	s.mu.Unlock()
	return &sess, nil
}

// Save writes the session file with owner-only permissions.
func (s *Store) Save(sess Session) error {
	sess.AccessToken = strings.TrimSpace(sess.AccessToken)
	if sess.AccessToken == "" {
		return api.ErrNoToken
	}
	if sess.SavedAt.IsZero() {
		sess.SavedAt = s.now()
	}
	if sess.Email == "" {
		sess.Email = Email(sess.AccessToken)
	}
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := util.AtomicWriteFileWithDir(s.path, data, 0600, 0700); err != nil {
		return fmt.Errorf("write session: %w", err)
	}

	s.mu.Lock()
	s.cached = &sess
	s.mu.Unlock()
	return nil
}

// Clear removes the session file.
func (s *Store) Clear() error {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

// Token implements api.TokenSource.
func (s *Store) Token() (string, error) {
	token := s.override
	if token == "" {
		sess, err := s.Load()
		if err != nil {
			return "", err
		}
		token = sess.AccessToken
	}
	if exp, ok := ExpiresAt(token); ok && !exp.After(s.now()) {
		return "", fmt.Errorf("%w: %w", api.ErrNoToken, ErrExpired)
	}
	return token, nil
}

// SessionDir returns the default directory for the session file.
func SessionDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".lexpad"
	}
	return filepath.Join(home, ".lexpad")
}

// =============================================================================
// TOKEN CLAIMS
// =============================================================================

func claims(token string) (jwt.MapClaims, bool) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return nil, false
	}
	mc, ok := parsed.Claims.(jwt.MapClaims)
	return mc, ok
}

// ExpiresAt reads the exp claim without verifying the signature. It reports
// false for opaque tokens and tokens without an expiry.
func ExpiresAt(token string) (time.Time, bool) {
	mc, ok := claims(token)
	if !ok {
		return time.Time{}, false
	}
	exp, err := mc.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// Email returns the email claim, if present.
func Email(token string) string {
	mc, ok := claims(token)
	if !ok {
		return ""
	}
	if e, ok := mc["email"].(string); ok {
		return e
	}
	return ""
}
