// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTheme_LayoutMode(t *testing.T) {
	theme := NewTheme()
	cases := []struct {
		width int
		want  LayoutMode
	}{
		{40, LayoutNarrow},
		{59, LayoutNarrow},
		{60, LayoutMedium},
		{99, LayoutMedium},
		{100, LayoutWide},
	}
	for _, tc := range cases {
		theme.SetSize(tc.width, 24)
		assert.Equal(t, tc.want, theme.GetLayoutMode(), "width %d", tc.width)
	}
}

func TestTheme_ExplicitPreference(t *testing.T) {
	assert.True(t, NewThemeFor("dark").IsDark)
	assert.False(t, NewThemeFor("light").IsDark)
}

func TestRiskColor(t *testing.T) {
	assert.Equal(t, Rose, RiskColor("High"))
	assert.Equal(t, Amber, RiskColor("medium"))
	assert.Equal(t, Emerald, RiskColor("Low"))
	assert.Equal(t, TextSecondary, RiskColor("Unknown"))
}
