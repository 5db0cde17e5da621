// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package diff compares two versions of a document paragraph by paragraph.
//
// The editor uses it to tell the user how far a parked draft has drifted
// from the stored document before they restore or discard it.
//
//	d := diff.Compute(storedText, draftText)
//	fmt.Println(d.Summary()) // "+2 -1"
package diff
