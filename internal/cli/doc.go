// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli is the lexpad command line.
//
// Running lexpad with no subcommand starts the terminal UI. The other
// commands reach the same backend without it:
//
//	lexpad open <id>              Open a document in the editor
//	lexpad login [--token T]      Store a session token
//	lexpad logout                 Forget the session
//	lexpad whoami                 Show the signed-in user
//	lexpad docs [--json]          List documents
//	lexpad docs delete <id>       Delete a document
//	lexpad ask <id> <question>    Ask about a document
//	lexpad redflags <id>          Run the red-flag analysis
//	lexpad summarize <id>         Summarize a document
//	lexpad chat <id>              Chat about a document from the prompt
//	lexpad config show|path|get|set|keys
//
// Every command accepts --config and --debug. Exit codes follow the error
// category; see ExitCode.
package cli
