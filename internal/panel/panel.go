// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package panel tracks the position and state of the floating assistant panel.
//
// All sizes are terminal cells. A Manager belongs to one editor session and is
// never shared between sessions.
package panel

// Default geometry.
const (
	DefaultWidth   = 48
	DefaultHeight  = 20
	DefaultStartX  = 2
	DefaultStartY  = 3
	HeaderRows     = 2 // top border and title bar
	MinimizedRows  = 3
	contentPadding = 1 // side borders
)

// Config sets the panel's fixed size and starting position.
type Config struct {
	Width  int
	Height int
	StartX int
	StartY int
}

// DefaultConfig returns the default panel geometry.
func DefaultConfig() Config {
	return Config{
		Width:  DefaultWidth,
		Height: DefaultHeight,
		StartX: DefaultStartX,
		StartY: DefaultStartY,
	}
}

// State is a snapshot of the panel.
type State struct {
	X         int
	Y         int
	Visible   bool
	Minimized bool
	Dragging  bool
}

// Manager owns the panel state. Visibility and minimization only change
// through ToggleVisible and ToggleMinimized.
type Manager struct {
	state  State
	width  int
	height int

	viewW int
	viewH int

	offX int
	offY int
}

// New creates a hidden, expanded panel.
func New(cfg Config) *Manager {
	if cfg.Width <= 0 {
		cfg.Width = DefaultWidth
	}
	if cfg.Height <= 0 {
		cfg.Height = DefaultHeight
	}
	return &Manager{
		state:  State{X: max(0, cfg.StartX), Y: max(0, cfg.StartY)},
		width:  cfg.Width,
		height: cfg.Height,
	}
}

// State returns the current panel state.
func (m *Manager) State() State {
	return m.state
}

// Size returns the panel's drawn width and height.
func (m *Manager) Size() (int, int) {
	if m.state.Minimized {
		return m.width, MinimizedRows
	}
	return m.width, m.height
}

// SetViewport records the terminal size and pulls the panel back inside it.
func (m *Manager) SetViewport(w, h int) {
	m.viewW, m.viewH = w, h
	m.state.X, m.state.Y = m.clamp(m.state.X, m.state.Y)
}

// clamp keeps the panel inside the viewport using its fixed size, so it
// cannot hang off the right or bottom edge.
func (m *Manager) clamp(x, y int) (int, int) {
	if m.viewW > 0 {
		x = min(x, m.viewW-m.width)
	}
	if m.viewH > 0 {
		y = min(y, m.viewH-m.height)
	}
	return max(0, x), max(0, y)
}

// Contains reports whether the cell (x, y) is on the panel.
func (m *Manager) Contains(x, y int) bool {
	if !m.state.Visible {
		return false
	}
	w, h := m.Size()
	return x >= m.state.X && x < m.state.X+w && y >= m.state.Y && y < m.state.Y+h
}

// InContent reports whether (x, y) is inside the panel's interactive content
// region: below the header and inside the borders.
func (m *Manager) InContent(x, y int) bool {
	if !m.Contains(x, y) || m.state.Minimized {
		return false
	}
	lx, ly := x-m.state.X, y-m.state.Y
	return lx >= contentPadding && lx < m.width-contentPadding &&
		ly >= HeaderRows && ly < m.height-1
}

// PointerDown starts a drag when (x, y) is on the panel but outside its
// content region. It reports whether a drag started.
func (m *Manager) PointerDown(x, y int) bool {
	if !m.Contains(x, y) || m.InContent(x, y) {
		return false
	}
	m.state.Dragging = true
	m.offX = x - m.state.X
	m.offY = y - m.state.Y
	return true
}

// PointerMove repositions a dragged panel. It reports whether the panel moved.
func (m *Manager) PointerMove(x, y int) bool {
	if !m.state.Dragging {
		return false
	}
	nx, ny := m.clamp(x-m.offX, y-m.offY)
	if nx == m.state.X && ny == m.state.Y {
		return false
	}
	m.state.X, m.state.Y = nx, ny
	return true
}

// PointerUp ends a drag.
func (m *Manager) PointerUp() {
	m.state.Dragging = false
}

// ToggleVisible shows or hides the panel. Hiding ends any drag.
func (m *Manager) ToggleVisible() {
	m.state.Visible = !m.state.Visible
	if !m.state.Visible {
		m.state.Dragging = false
	}
}

// ToggleMinimized collapses the panel to its title bar or expands it.
func (m *Manager) ToggleMinimized() {
	m.state.Minimized = !m.state.Minimized
}
