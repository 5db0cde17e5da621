// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/jeranaias/lexpad-tui/internal/api"
	"github.com/jeranaias/lexpad-tui/internal/auth"
)

// Sign-in messages.
const (
	MsgInvalidToken  = "That token was rejected. Check it and try again."
	MsgSignInFailed  = "Could not reach the server. Try again."
	signInHint       = "Paste an access token from the web app and press Enter."
	signInQuitHint   = "ctrl+q quit"
	signInInProgress = "Checking token..."
)

// signInScreen accepts an access token and validates it against the backend.
type signInScreen struct {
	env     *env
	input   textinput.Model
	notice  string
	err     string
	pending bool
}

func newSignInScreen(e *env) *signInScreen {
	in := textinput.New()
	in.Placeholder = "access token"
	in.EchoMode = textinput.EchoPassword
	in.EchoCharacter = '•'
	in.Prompt = ""
	in.Width = 48
	return &signInScreen{env: e, input: in}
}

func (s *signInScreen) focus() tea.Cmd {
	return s.input.Focus()
}

func (s *signInScreen) reset() {
	s.input.Reset()
	s.err = ""
	s.pending = false
}

func (s *signInScreen) setNotice(n string) {
	s.notice = n
}

func (s *signInScreen) resize() {
	s.input.Width = min(60, max(20, s.env.width-10))
}

func (s *signInScreen) failed(err error) {
	s.pending = false
	if api.IsAuth(err) {
		s.err = MsgInvalidToken
	} else {
		s.err = MsgSignInFailed
	}
	s.env.logger.Info("sign in failed", zap.Error(err))
}

func (s *signInScreen) update(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyEnter {
		token := strings.TrimSpace(s.input.Value())
		if token == "" || s.pending {
			return nil
		}
		s.pending = true
		s.err = ""
		return s.validate(token)
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return cmd
}

// validate checks token with a client of its own so a rejection does not
// fire the main client's unauthorized hook.
func (s *signInScreen) validate(token string) tea.Cmd {
	cfg := s.env.deps.Config
	store := s.env.deps.Sessions
	logger := s.env.logger
	return func() tea.Msg {
		client := api.NewClient(cfg.API.BaseURL, api.StaticToken(token)).
			WithTimeout(cfg.API.Timeout()).
			WithMaxRetries(0).
			WithLogger(logger)
		user, err := client.Me(context.Background())
		if err != nil {
			return signedInMsg{err: err}
		}
		if err := store.Save(auth.Session{AccessToken: token, Email: user.Email}); err != nil {
			return signedInMsg{err: fmt.Errorf("save session: %w", err)}
		}
		return signedInMsg{user: user}
	}
}

func (s *signInScreen) view() string {
	t := s.env.theme
	rows := []string{
		t.Brand.Render("lexpad"),
		t.Subtitle.Render("Legal document editor"),
		"",
	}
	if s.notice != "" {
		rows = append(rows, t.Unsaved.Render(s.notice), "")
	}
	rows = append(rows,
		t.InputLabel.Render(signInHint),
		t.InputBox.Render(s.input.View()),
	)
	switch {
	case s.pending:
		rows = append(rows, t.Thinking.Render(signInInProgress))
	case s.err != "":
		rows = append(rows, t.ErrorText.Render(s.err))
	default:
		rows = append(rows, "")
	}
	rows = append(rows, "", t.KeyHint.Render(signInQuitHint))
	box := lipgloss.JoinVertical(lipgloss.Left, rows...)
	return lipgloss.Place(s.env.width, s.env.height, lipgloss.Center, lipgloss.Center, box)
}
