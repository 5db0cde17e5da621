// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util holds small helpers shared across lexpad.
//
//   - AtomicWriteFile, AtomicWriteFileWithDir: crash-safe file writes
//   - TruncateRunes: rune-safe truncation for log fields and error details
//   - StringWidth, TruncateWidth, PadRight, WrapWidth: terminal cell layout
package util
