// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
)

// =============================================================================
// DOCUMENTS
// =============================================================================

// ListDocuments returns the user's documents, newest first. Results are
// cached briefly; any write through this client invalidates the cache.
func (c *Client) ListDocuments(ctx context.Context) ([]Document, error) {
	if c.listTTL > 0 {
		if v, ok := c.listCache.Get(documentsKey); ok {
			return v.([]Document), nil
		}
	}
	var resp struct {
		Documents []Document `json:"documents"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/documents/", nil, &resp); err != nil {
		return nil, err
	}
	if c.listTTL > 0 {
		c.listCache.Set(documentsKey, resp.Documents, c.listTTL)
	}
	return resp.Documents, nil
}

// InvalidateDocuments drops the cached document list.
func (c *Client) InvalidateDocuments() {
	c.listCache.Delete(documentsKey)
}

// GetDocument fetches one document.
func (c *Client) GetDocument(ctx context.Context, id string) (*Document, error) {
	var resp struct {
		Document *Document `json:"document"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/documents/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, err
	}
	if resp.Document == nil {
		return nil, &Error{Method: http.MethodGet, Path: "/api/documents/" + id, Status: http.StatusNotFound, Detail: "empty document"}
	}
	return resp.Document, nil
}

// UpdateDocument replaces a document's content and returns the stored record.
func (c *Client) UpdateDocument(ctx context.Context, id, content string) (*Document, error) {
	req := struct {
		Content string `json:"content"`
	}{Content: content}
	var resp struct {
		Message  string    `json:"message"`
		Document *Document `json:"document"`
	}
	err := c.do(ctx, http.MethodPut, "/api/documents/"+url.PathEscape(id), req, &resp)
	c.InvalidateDocuments()
	if err != nil {
		return nil, err
	}
	if resp.Document == nil {
		return &Document{ID: id, Content: content}, nil
	}
	return resp.Document, nil
}

// DeleteDocument removes a document.
func (c *Client) DeleteDocument(ctx context.Context, id string) error {
	err := c.do(ctx, http.MethodDelete, "/api/documents/"+url.PathEscape(id), nil, nil)
	c.InvalidateDocuments()
	return err
}

// =============================================================================
// ASSISTANT
// =============================================================================

// ChatHistory returns the stored questions and answers for a document in the
// order they were asked.
func (c *Client) ChatHistory(ctx context.Context, docID string) ([]ChatRecord, error) {
	var resp chatHistoryResponse
	if err := c.do(ctx, http.MethodGet, "/api/qa/chat-history/"+url.PathEscape(docID), nil, &resp); err != nil {
		return nil, err
	}
	return oldestFirst(resp.Records), nil
}

// Ask answers a question about a document.
func (c *Client) Ask(ctx context.Context, docID, question string) (*Answer, error) {
	req := struct {
		DocID    string `json:"doc_id"`
		Question string `json:"question"`
	}{DocID: docID, Question: question}
	var resp Answer
	if err := c.do(ctx, http.MethodPost, "/api/qa/ask", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RedFlags runs red-flag detection over a document.
func (c *Client) RedFlags(ctx context.Context, docID string) (*RedFlagReport, error) {
	req := struct {
		DocID string `json:"doc_id"`
	}{DocID: docID}
	var resp RedFlagReport
	if err := c.do(ctx, http.MethodPost, "/api/qa/red-flags", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Summarize returns a summary of a document.
func (c *Client) Summarize(ctx context.Context, docID string) (string, error) {
	req := struct {
		DocID string `json:"doc_id"`
	}{DocID: docID}
	var resp struct {
		Summary string `json:"summary"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/editing/summarize", req, &resp); err != nil {
		return "", err
	}
	return resp.Summary, nil
}

// ErrEmptyRewrite indicates the backend answered a rewrite with no text.
var ErrEmptyRewrite = errors.New("rewrite returned no text")

// RewriteClause rewrites clause according to instruction.
func (c *Client) RewriteClause(ctx context.Context, docID, clause, instruction string) (string, error) {
	req := struct {
		DocID       string `json:"doc_id"`
		Clause      string `json:"clause"`
		Instruction string `json:"instruction"`
	}{DocID: docID, Clause: clause, Instruction: instruction}
	var resp struct {
		RewrittenClause string `json:"rewritten_clause"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/editing/rewrite-clause", req, &resp); err != nil {
		return "", err
	}
	if resp.RewrittenClause == "" {
		return "", ErrEmptyRewrite
	}
	return resp.RewrittenClause, nil
}

// =============================================================================
// ACCOUNT
// =============================================================================

// Me returns the signed-in user.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
