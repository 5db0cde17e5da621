// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
)

func TestOverlay_PlacesBlock(t *testing.T) {
	bg := strings.Join([]string{
		"..........",
		"..........",
		"..........",
	}, "\n")

	out := Overlay(bg, "AB\nCD", 3, 1, 10, 3)
	lines := strings.Split(ansi.Strip(out), "\n")

	assert.Equal(t, "..........", lines[0])
	assert.Equal(t, "...AB.....", lines[1])
	assert.Equal(t, "...CD.....", lines[2])
}

func TestOverlay_ClipsAndPads(t *testing.T) {
	out := Overlay("ab", "XYZ", 4, 0, 6, 2)
	lines := strings.Split(ansi.Strip(out), "\n")

	assert.Len(t, lines, 2)
	assert.Equal(t, "ab  XY", lines[0])
}

func TestOverlay_BeyondHeight(t *testing.T) {
	out := Overlay("aaa\nbbb", "Z\nZ\nZ", 0, 1, 3, 2)
	assert.Equal(t, "aaa\nZbb", ansi.Strip(out))
}

func TestBlockSize(t *testing.T) {
	assert.Equal(t, 4, BlockWidth("ab\nabcd\nc"))
	assert.Equal(t, 3, BlockHeight("ab\nabcd\nc"))
	assert.Equal(t, 0, BlockHeight(""))
}
