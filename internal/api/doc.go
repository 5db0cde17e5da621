// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api is the HTTP client for the legal-document analysis backend.
//
// The backend stores documents and chat history and runs every AI operation
// (question answering, red-flag detection, summarization, clause rewriting).
// This package only wraps its JSON contract.
//
// # Key Types
//
//   - Client: bearer-authenticated client with pacing, retries and a short
//     document-list cache
//   - Document, ChatRecord, Answer, RedFlagReport: response records
//   - Error: a non-2xx response carrying the backend's detail message
//
// # Usage
//
//	client := api.NewClient("http://localhost:8000", api.StaticToken(token)).
//	    OnUnauthorized(func() { /* send the user to sign-in */ })
//	doc, err := client.GetDocument(ctx, id)
//
// # Errors
//
// A 401 or 403 runs the OnUnauthorized hook and returns an *Error that
// matches ErrUnauthorized with errors.Is. A 404 matches ErrNotFound.
// Authorization headers and bodies are never logged.
package api
