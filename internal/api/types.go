// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"encoding/json"
	"sort"
	"time"
)

// Document is a stored legal document.
type Document struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id,omitempty"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	FileName  string `json:"file_name,omitempty"`
	FileURL   string `json:"file_url,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// Created parses CreatedAt. The zero time is returned when it is missing or
// malformed.
func (d Document) Created() time.Time {
	return parseTimestamp(d.CreatedAt)
}

// Updated parses UpdatedAt, falling back to CreatedAt.
func (d Document) Updated() time.Time {
	if t := parseTimestamp(d.UpdatedAt); !t.IsZero() {
		return t
	}
	return d.Created()
}

// timestampLayouts covers the formats the backend's database emits.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999-07",
	"2006-01-02T15:04:05",
}

func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// ID is a record identifier the database may emit as a number or a string.
type ID string

// UnmarshalJSON accepts a JSON string or number.
func (id *ID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	if string(data) == "null" {
		*id = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

// ChatRecord is one stored question and answer.
type ChatRecord struct {
	ID         ID     `json:"id"`
	DocumentID string `json:"document_id,omitempty"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	CreatedAt  string `json:"created_at,omitempty"`
}

// Created parses CreatedAt.
func (r ChatRecord) Created() time.Time {
	return parseTimestamp(r.CreatedAt)
}

// chatHistoryResponse accepts both the wrapped object and a bare array.
type chatHistoryResponse struct {
	Records []ChatRecord
}

func (c *chatHistoryResponse) UnmarshalJSON(data []byte) error {
	var wrapped struct {
		ChatHistory []ChatRecord `json:"chat_history"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil {
		c.Records = wrapped.ChatHistory
		return nil
	}
	return json.Unmarshal(data, &c.Records)
}

// oldestFirst sorts records by creation time. Records without a parsable
// timestamp keep their relative order at the front.
func oldestFirst(records []ChatRecord) []ChatRecord {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Created().Before(records[j].Created())
	})
	return records
}

// Source is a passage the answer was grounded on.
type Source struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
	DocID string  `json:"doc_id,omitempty"`
	Title string  `json:"title,omitempty"`
}

// Answer is the response to a question.
type Answer struct {
	Question string   `json:"question,omitempty"`
	Answer   string   `json:"answer"`
	Sources  []Source `json:"sources,omitempty"`
}

// RedFlag is one detected issue.
type RedFlag struct {
	Type        string `json:"type"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
	Suggestion  string `json:"suggestion"`
}

// RedFlagReport is the result of red-flag detection.
type RedFlagReport struct {
	OverallRiskLevel string    `json:"overall_risk_level"`
	Summary          string    `json:"summary"`
	RedFlags         []RedFlag `json:"red_flags"`
}

// UnmarshalJSON accepts the flat report and the form where the report is
// nested under red_flags next to doc_id.
func (r *RedFlagReport) UnmarshalJSON(data []byte) error {
	var probe struct {
		OverallRiskLevel string          `json:"overall_risk_level"`
		Summary          string          `json:"summary"`
		RedFlags         json.RawMessage `json:"red_flags"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	r.OverallRiskLevel = probe.OverallRiskLevel
	r.Summary = probe.Summary
	r.RedFlags = nil

	raw := probe.RedFlags
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if raw[0] == '{' {
		var nested RedFlagReport
		if err := json.Unmarshal(raw, &nested); err != nil {
			return err
		}
		*r = nested
		return nil
	}
	return json.Unmarshal(raw, &r.RedFlags)
}

// User is the signed-in account.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}
