// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"github.com/jeranaias/lexpad-tui/internal/api"
	"github.com/jeranaias/lexpad-tui/internal/assistant"
	"github.com/jeranaias/lexpad-tui/internal/auth"
	"github.com/jeranaias/lexpad-tui/internal/docsync"
	"github.com/jeranaias/lexpad-tui/internal/editor"
	"github.com/jeranaias/lexpad-tui/internal/inlineedit"
)

// =============================================================================
// ASYNC RESULTS
// =============================================================================
//
// Commands run remote calls off the event loop and report back with one of
// these. Editor results carry the session they were started for; a result for
// a session that has since been closed is dropped.

// signedInMsg reports a validated token.
type signedInMsg struct {
	user *api.User
	err  error
}

// documentsMsg carries the document list.
type documentsMsg struct {
	docs []api.Document
	err  error
}

// deletedMsg reports a document deletion.
type deletedMsg struct {
	id  string
	err error
}

// loadedMsg reports an editor session load.
type loadedMsg struct {
	sess *editor.Session
	res  *docsync.LoadResult
	err  error
}

// rewriteMsg carries an inline-edit rewrite.
type rewriteMsg struct {
	sess *editor.Session
	req  inlineedit.Request
	text string
	err  error
}

// savedMsg reports a save.
type savedMsg struct {
	sess *editor.Session
	err  error
}

// chatMsg carries an assistant response.
type chatMsg struct {
	sess  *editor.Session
	req   assistant.Request
	entry assistant.Entry
	err   error
}

// clipboardMsg reports a clipboard read or write.
type clipboardMsg struct {
	text  string
	paste bool
	err   error
}

// unauthorizedMsg is sent when the backend rejects the token.
type unauthorizedMsg struct{}

// sessionChangedMsg is sent when the session file changes on disk.
type sessionChangedMsg struct {
	change auth.Change
}
