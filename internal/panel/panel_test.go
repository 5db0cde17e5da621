// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package panel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func visiblePanel(t *testing.T) *Manager {
	t.Helper()
	m := New(Config{Width: 40, Height: 10, StartX: 5, StartY: 5})
	m.SetViewport(100, 30)
	m.ToggleVisible()
	require.True(t, m.State().Visible)
	return m
}

func TestManager_Defaults(t *testing.T) {
	m := New(Config{})
	s := m.State()
	assert.False(t, s.Visible)
	assert.False(t, s.Minimized)
	assert.False(t, s.Dragging)
	w, h := m.Size()
	assert.Equal(t, DefaultWidth, w)
	assert.Equal(t, DefaultHeight, h)
}

func TestManager_DragFromHeader(t *testing.T) {
	m := visiblePanel(t)

	// Title bar at row 1 of the panel, 3 cells in.
	require.True(t, m.PointerDown(8, 6))
	assert.True(t, m.State().Dragging)

	require.True(t, m.PointerMove(20, 10))
	s := m.State()
	assert.Equal(t, 17, s.X)
	assert.Equal(t, 9, s.Y)

	m.PointerUp()
	assert.False(t, m.State().Dragging)
	assert.False(t, m.PointerMove(30, 12), "moves after release are ignored")
	assert.Equal(t, 17, m.State().X)
}

func TestManager_ContentRegionDoesNotDrag(t *testing.T) {
	m := visiblePanel(t)
	assert.True(t, m.InContent(10, 8))
	assert.False(t, m.PointerDown(10, 8))
	assert.False(t, m.State().Dragging)

	// Outside the panel entirely.
	assert.False(t, m.PointerDown(90, 25))
}

// TestManager_ClampedToViewport drags far past every edge and checks the
// panel stays fully on screen.
func TestManager_ClampedToViewport(t *testing.T) {
	cases := []struct {
		name  string
		toX   int
		toY   int
		wantX int
		wantY int
	}{
		{"right and bottom", 500, 500, 60, 20},
		{"left and top", -50, -50, 0, 0},
		{"inside", 30, 12, 30, 12},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := visiblePanel(t)
			require.True(t, m.PointerDown(5, 5))
			m.PointerMove(tc.toX, tc.toY)
			s := m.State()
			assert.Equal(t, tc.wantX, s.X)
			assert.Equal(t, tc.wantY, s.Y)
		})
	}
}

func TestManager_ViewportShrinkReclamps(t *testing.T) {
	m := visiblePanel(t)
	m.PointerDown(5, 5)
	m.PointerMove(60, 20)
	m.PointerUp()

	m.SetViewport(50, 15)
	s := m.State()
	assert.Equal(t, 10, s.X)
	assert.Equal(t, 5, s.Y)

	m.SetViewport(20, 5)
	s = m.State()
	assert.Equal(t, 0, s.X)
	assert.Equal(t, 0, s.Y)
}

// TestManager_TogglesAreIndependent checks that drags never change
// visibility or minimization, and the two flags do not affect each other.
func TestManager_TogglesAreIndependent(t *testing.T) {
	m := visiblePanel(t)
	m.ToggleMinimized()
	assert.True(t, m.State().Minimized)
	assert.True(t, m.State().Visible)

	_, h := m.Size()
	assert.Equal(t, MinimizedRows, h)
	assert.False(t, m.InContent(10, 6), "a minimized panel has no content region")

	m.PointerDown(10, 6)
	m.PointerMove(30, 10)
	m.PointerUp()
	assert.True(t, m.State().Minimized)
	assert.True(t, m.State().Visible)

	m.ToggleVisible()
	assert.False(t, m.State().Visible)
	assert.True(t, m.State().Minimized)
	assert.False(t, m.Contains(30, 10))

	m.ToggleVisible()
	m.ToggleMinimized()
	assert.False(t, m.State().Minimized)
}

func TestManager_HideEndsDrag(t *testing.T) {
	m := visiblePanel(t)
	require.True(t, m.PointerDown(5, 5))
	m.ToggleVisible()
	assert.False(t, m.State().Dragging)
}

func TestManager_SessionsDoNotShareState(t *testing.T) {
	a := visiblePanel(t)
	b := visiblePanel(t)
	a.PointerDown(5, 5)
	a.PointerMove(25, 15)
	assert.NotEqual(t, a.State(), b.State())
	assert.Equal(t, 5, b.State().X)
}
