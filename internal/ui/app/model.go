// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app is the lexpad terminal UI: a Bubble Tea program with a sign-in
// screen, the document list and the editor.
package app

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/lexpad-tui/internal/api"
	"github.com/jeranaias/lexpad-tui/internal/assistant"
	"github.com/jeranaias/lexpad-tui/internal/auth"
	"github.com/jeranaias/lexpad-tui/internal/config"
	"github.com/jeranaias/lexpad-tui/internal/docsync"
	"github.com/jeranaias/lexpad-tui/internal/logging"
	"github.com/jeranaias/lexpad-tui/internal/notify"
	"github.com/jeranaias/lexpad-tui/internal/ui/components"
	"github.com/jeranaias/lexpad-tui/internal/ui/styles"
)

// MsgSessionExpired is shown on the sign-in screen after a 401/403.
const MsgSessionExpired = "Your session has expired. Please sign in again."

// Deps is everything the UI needs from the outside.
type Deps struct {
	Config   *config.Config
	Client   *api.Client
	Sessions *auth.Store

	// Drafts is optional; nil disables the local drafts store.
	Drafts docsync.DraftStore

	// Unauthorized receives a value whenever the client's unauthorized hook
	// fires. Optional.
	Unauthorized <-chan struct{}

	// Watcher follows the session file. Optional.
	Watcher *auth.Watcher

	// OpenDoc, when set, opens that document straight after sign-in.
	OpenDoc string

	Logger *zap.Logger
}

// screen identifies the active screen.
type screen int

const (
	screenSignIn screen = iota
	screenDocuments
	screenEditor
)

func (s screen) String() string {
	switch s {
	case screenSignIn:
		return "sign-in"
	case screenDocuments:
		return "documents"
	case screenEditor:
		return "editor"
	default:
		return "unknown"
	}
}

// env is shared by all screens.
type env struct {
	deps   Deps
	theme  *styles.Theme
	toasts *components.Toasts
	md     *assistant.Markdown
	logger *zap.Logger
	width  int
	height int
}

// navigation messages
type (
	showDocumentsMsg struct{ refresh bool }
	openDocumentMsg  struct{ id string }
	signOutMsg       struct{}
)

// Model is the root Bubble Tea model.
type Model struct {
	env    *env
	screen screen

	signin *signInScreen
	docs   *documentsScreen
	editor *editorScreen

	confirmQuit bool
}

// New creates the root model.
func New(deps Deps) *Model {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Config == nil {
		deps.Config = config.Default()
	}
	e := &env{
		deps:   deps,
		theme:  styles.NewThemeFor(deps.Config.UI.Theme),
		toasts: components.NewToasts(),
		md:     assistant.NewMarkdown(deps.Config.UI.Theme),
		logger: logging.Named(deps.Logger, "ui"),
	}
	return &Model{
		env:    e,
		signin: newSignInScreen(e),
		docs:   newDocumentsScreen(e),
	}
}

// Notifier exposes the toast stack so callers can report into the UI.
func (m *Model) Notifier() notify.Notifier {
	return m.env.toasts
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		components.ToastTickCmd(),
		waitUnauthorized(m.env.deps.Unauthorized),
		waitSessionChange(m.env.deps.Watcher),
	}
	if _, err := m.env.deps.Sessions.Token(); err != nil {
		if errors.Is(err, auth.ErrExpired) {
			m.signin.setNotice(MsgSessionExpired)
		}
		m.screen = screenSignIn
		cmds = append(cmds, m.signin.focus())
		return tea.Batch(cmds...)
	}
	if id := m.env.deps.OpenDoc; id != "" {
		cmds = append(cmds, m.openEditor(id))
	} else {
		cmds = append(cmds, m.showDocuments(true))
	}
	return tea.Batch(cmds...)
}

func waitUnauthorized(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return unauthorizedMsg{}
	}
}

func waitSessionChange(w *auth.Watcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		c, ok := <-w.Changes()
		if !ok {
			return nil
		}
		return sessionChangedMsg{change: c}
	}
}

// =============================================================================
// NAVIGATION
// =============================================================================

func (m *Model) closeEditor() {
	if m.editor != nil {
		m.editor.close()
		m.editor = nil
	}
}

func (m *Model) toSignIn(notice string) tea.Cmd {
	if m.editor != nil && m.editor.dirty() {
		m.editor.sess.Sync.Stash(api.ErrUnauthorized)
	}
	m.closeEditor()
	m.screen = screenSignIn
	m.signin.reset()
	m.signin.setNotice(notice)
	m.env.logger.Info("screen changed", zap.Stringer("screen", m.screen))
	return m.signin.focus()
}

func (m *Model) showDocuments(refresh bool) tea.Cmd {
	m.closeEditor()
	m.screen = screenDocuments
	m.env.logger.Info("screen changed", zap.Stringer("screen", m.screen))
	if refresh || !m.docs.loaded {
		return m.docs.fetch(refresh)
	}
	return nil
}

func (m *Model) openEditor(id string) tea.Cmd {
	m.closeEditor()
	m.editor = newEditorScreen(m.env, id)
	m.screen = screenEditor
	m.env.logger.Info("screen changed", zap.Stringer("screen", m.screen), zap.String("doc_id", id))
	return m.editor.init()
}

// =============================================================================
// UPDATE
// =============================================================================

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.env.width, m.env.height = msg.Width, msg.Height
		m.env.theme.SetSize(msg.Width, msg.Height)
		m.signin.resize()
		m.docs.resize()
		if m.editor != nil {
			m.editor.resize()
		}
		return m, nil

	case components.ToastTickMsg:
		m.env.toasts.Tick()
		return m, components.ToastTickCmd()

	case unauthorizedMsg:
		cmd := waitUnauthorized(m.env.deps.Unauthorized)
		if m.screen == screenSignIn {
			return m, cmd
		}
		m.env.logger.Warn("backend rejected the session token")
		return m, tea.Batch(cmd, m.toSignIn(MsgSessionExpired))

	case sessionChangedMsg:
		cmd := waitSessionChange(m.env.deps.Watcher)
		switch {
		case msg.change.SignedIn && m.screen == screenSignIn:
			return m, tea.Batch(cmd, m.afterSignIn())
		case !msg.change.SignedIn && m.screen != screenSignIn:
			return m, tea.Batch(cmd, m.toSignIn(""))
		}
		return m, cmd

	case showDocumentsMsg:
		return m, m.showDocuments(msg.refresh)

	case openDocumentMsg:
		return m, m.openEditor(msg.id)

	case signOutMsg:
		if err := m.env.deps.Sessions.Clear(); err != nil {
			m.env.logger.Warn("sign out failed", zap.Error(err))
		}
		m.env.deps.Client.InvalidateDocuments()
		m.docs.clear()
		return m, m.toSignIn("")

	case signedInMsg:
		if m.screen != screenSignIn {
			return m, nil
		}
		if msg.err != nil {
			m.signin.failed(msg.err)
			return m, nil
		}
		return m, m.afterSignIn()

	case tea.KeyMsg:
		if msg.String() == "ctrl+q" {
			if m.screen == screenEditor && m.editor.dirty() && !m.confirmQuit {
				m.confirmQuit = true
				notify.Warning(m.env.toasts, "Unsaved changes. Press ctrl+q again to quit.")
				return m, nil
			}
			return m, tea.Quit
		}
		m.confirmQuit = false
	}

	switch m.screen {
	case screenSignIn:
		return m, m.signin.update(msg)
	case screenDocuments:
		return m, m.docs.update(msg)
	case screenEditor:
		if m.editor != nil {
			return m, m.editor.update(msg)
		}
	}
	return m, nil
}

func (m *Model) afterSignIn() tea.Cmd {
	m.docs.clear()
	if id := m.env.deps.OpenDoc; id != "" {
		m.env.deps.OpenDoc = ""
		return m.openEditor(id)
	}
	return m.showDocuments(true)
}

// =============================================================================
// VIEW
// =============================================================================

// View implements tea.Model.
func (m *Model) View() string {
	if m.env.width == 0 {
		return "Loading..."
	}
	var body string
	switch m.screen {
	case screenSignIn:
		body = m.signin.view()
	case screenDocuments:
		body = m.docs.view()
	case screenEditor:
		if m.editor != nil {
			body = m.editor.view()
		}
	}
	stack := components.RenderToastStack(m.env.toasts.List(), m.env.width)
	return components.PlaceBottomRight(body, stack, m.env.width, m.env.height, 1)
}
