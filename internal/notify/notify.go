// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package notify carries transient user-facing notices from the editing
// flows to whatever presents them. The terminal UI shows them as toasts.
package notify

import "sync"

// Kind classifies a notice.
type Kind int

const (
	KindInfo Kind = iota
	KindSuccess
	KindWarning
	KindError
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindWarning:
		return "warning"
	case KindError:
		return "error"
	default:
		return "info"
	}
}

// Notice is one message for the user.
type Notice struct {
	Kind    Kind
	Message string
}

// Notifier receives notices. Implementations must be safe for concurrent use;
// flows notify from background commands.
type Notifier interface {
	Notify(Notice)
}

// Func adapts a function to Notifier.
type Func func(Notice)

// Notify calls f.
func (f Func) Notify(n Notice) { f(n) }

// Discard drops every notice.
var Discard Notifier = Func(func(Notice) {})

// OrDiscard returns n, or Discard when n is nil.
func OrDiscard(n Notifier) Notifier {
	if n == nil {
		return Discard
	}
	return n
}

// Success sends a success notice.
func Success(n Notifier, msg string) { n.Notify(Notice{Kind: KindSuccess, Message: msg}) }

// Error sends an error notice.
func Error(n Notifier, msg string) { n.Notify(Notice{Kind: KindError, Message: msg}) }

// Warning sends a warning notice.
func Warning(n Notifier, msg string) { n.Notify(Notice{Kind: KindWarning, Message: msg}) }

// Info sends an informational notice.
func Info(n Notifier, msg string) { n.Notify(Notice{Kind: KindInfo, Message: msg}) }

// =============================================================================
// RECORDER
// =============================================================================

// Recorder keeps every notice it receives. Used by the CLI to print notices
// after a command and by tests.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

// Notify records n.
func (r *Recorder) Notify(n Notice) {
	r.mu.Lock()
	r.notices = append(r.notices, n)
	r.mu.Unlock()
}

// Notices returns a copy of what was recorded.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notice, len(r.notices))
	copy(out, r.notices)
	return out
}

// Messages returns recorded messages of the given kind.
func (r *Recorder) Messages(k Kind) []string {
	var out []string
	for _, n := range r.Notices() {
		if n.Kind == k {
			out = append(out, n.Message)
		}
	}
	return out
}

// Reset forgets everything recorded.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.notices = nil
	r.mu.Unlock()
}
