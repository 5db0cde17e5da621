// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides reusable pieces of the lexpad TUI: transient
// toasts fed by notify.Notifier and an overlay compositor for popups and the
// floating assistant panel.
package components
