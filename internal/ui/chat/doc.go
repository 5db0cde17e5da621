// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat draws the floating assistant panel: the chat transcript, the
// busy indicator, the canned-analysis buttons and the question input.
//
// The view never calls the backend. Keys and clicks turn into Actions that
// the editor screen runs through the assistant flow.
package chat
