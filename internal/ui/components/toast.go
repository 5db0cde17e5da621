// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/lexpad-tui/internal/notify"
	"github.com/jeranaias/lexpad-tui/internal/ui/styles"
	"github.com/jeranaias/lexpad-tui/internal/util"
)

// =============================================================================
// TOAST DURATIONS
// =============================================================================

// DefaultToastDuration is the auto-dismiss duration for info and success toasts.
const DefaultToastDuration = 4 * time.Second

// ErrorToastDuration is longer so errors can be read.
const ErrorToastDuration = 8 * time.Second

// WarningToastDuration is the auto-dismiss duration for warning toasts.
const WarningToastDuration = 6 * time.Second

// maxToasts is the number of toasts visible at once.
const maxToasts = 5

// DurationFor returns how long a toast of kind k stays up.
func DurationFor(k notify.Kind) time.Duration {
	switch k {
	case notify.KindError:
		return ErrorToastDuration
	case notify.KindWarning:
		return WarningToastDuration
	default:
		return DefaultToastDuration
	}
}

// =============================================================================
// TOAST
// =============================================================================

// Toast is one transient notification.
type Toast struct {
	ID        int
	Notice    notify.Notice
	CreatedAt time.Time
	Duration  time.Duration
}

// ExpiredAt reports whether the toast should be gone at now.
func (t Toast) ExpiredAt(now time.Time) bool {
	return now.Sub(t.CreatedAt) >= t.Duration
}

// Remaining returns the time left before auto-dismiss.
func (t Toast) Remaining(now time.Time) time.Duration {
	return max(0, t.Duration-now.Sub(t.CreatedAt))
}

// =============================================================================
// TOAST MANAGER
// =============================================================================

// Toasts holds the visible toasts, newest first. It implements
// notify.Notifier so flows can report straight into it.
type Toasts struct {
	mu     sync.Mutex
	toasts []Toast
	nextID int
	now    func() time.Time
}

// NewToasts creates an empty toast stack.
func NewToasts() *Toasts {
	return &Toasts{nextID: 1, now: time.Now}
}

// WithClock replaces the clock, for tests.
func (m *Toasts) WithClock(now func() time.Time) *Toasts {
	m.now = now
	return m
}

// Notify adds a toast for n.
func (m *Toasts) Notify(n notify.Notice) {
	m.Add(n)
}

// Add adds a toast and returns its id.
func (m *Toasts) Add(n notify.Notice) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := Toast{
		ID:        m.nextID,
		Notice:    n,
		CreatedAt: m.now(),
		Duration:  DurationFor(n.Kind),
	}
	m.nextID++
	m.toasts = append([]Toast{t}, m.toasts...)
	if len(m.toasts) > maxToasts {
		m.toasts = m.toasts[:maxToasts]
	}
	return t.ID
}

// Dismiss removes a toast by id.
func (m *Toasts) Dismiss(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, t := range m.toasts {
		if t.ID == id {
			m.toasts = append(m.toasts[:i], m.toasts[i+1:]...)
			return
		}
	}
}

// DismissNewest removes the most recent toast, if any.
func (m *Toasts) DismissNewest() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.toasts) > 0 {
		m.toasts = m.toasts[1:]
	}
}

// Tick drops expired toasts and returns the rest.
func (m *Toasts) Tick() []Toast {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	active := m.toasts[:0]
	for _, t := range m.toasts {
		if !t.ExpiredAt(now) {
			active = append(active, t)
		}
	}
	m.toasts = active
	return m.snapshot()
}

// List returns a copy of the visible toasts.
func (m *Toasts) List() []Toast {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot()
}

func (m *Toasts) snapshot() []Toast {
	out := make([]Toast, len(m.toasts))
	copy(out, m.toasts)
	return out
}

// Len returns the number of visible toasts.
func (m *Toasts) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.toasts)
}

// =============================================================================
// TOAST MESSAGES
// =============================================================================

// ToastTickMsg is sent periodically to expire toasts.
type ToastTickMsg struct {
	Time time.Time
}

// ToastTickCmd ticks toasts every 250ms.
func ToastTickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return ToastTickMsg{Time: t}
	})
}

// =============================================================================
// TOAST RENDERING
// =============================================================================

func kindStyle(k notify.Kind) (lipgloss.AdaptiveColor, string) {
	switch k {
	case notify.KindError:
		return styles.Rose, styles.StatusIndicators.Error
	case notify.KindWarning:
		return styles.Amber, styles.StatusIndicators.Warning
	case notify.KindSuccess:
		return styles.Emerald, styles.StatusIndicators.Success
	default:
		return styles.Cyan, styles.StatusIndicators.Info
	}
}

// RenderToast renders a single toast no wider than width cells.
func RenderToast(t Toast, width int) string {
	maxWidth := 50
	if width > 0 && width-4 < maxWidth {
		maxWidth = width - 4
	}
	maxWidth = max(maxWidth, 20)

	color, icon := kindStyle(t.Notice.Kind)
	iconStyle := lipgloss.NewStyle().Foreground(color).Bold(true)
	textWidth := maxWidth - util.StringWidth(icon) - 5
	message := strings.Join(util.WrapWidth(t.Notice.Message, textWidth), "\n")

	content := lipgloss.JoinHorizontal(lipgloss.Top,
		iconStyle.Render(icon+" "),
		lipgloss.NewStyle().Foreground(styles.TextPrimary).Render(message))

	return lipgloss.NewStyle().
		Background(styles.SurfaceDim).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(0, 1).
		Render(content)
}

// RenderToastStack renders toasts stacked vertically, newest at the bottom.
func RenderToastStack(toasts []Toast, width int) string {
	if len(toasts) == 0 {
		return ""
	}
	rendered := make([]string, 0, len(toasts))
	for i := len(toasts) - 1; i >= 0; i-- {
		rendered = append(rendered, RenderToast(toasts[i], width))
	}
	return lipgloss.JoinVertical(lipgloss.Right, rendered...)
}
