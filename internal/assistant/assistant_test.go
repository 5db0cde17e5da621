// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package assistant

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/lexpad-tui/internal/api"
	"github.com/jeranaias/lexpad-tui/internal/notify"
)

type fakeRemote struct {
	mu        sync.Mutex
	asks      []string
	redFlags  int
	summaries int
	askErr    error
	report    *api.RedFlagReport
	summary   string
}

func (f *fakeRemote) Ask(ctx context.Context, docID, question string) (*api.Answer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.asks = append(f.asks, question)
	if f.askErr != nil {
		return nil, f.askErr
	}
	return &api.Answer{Answer: "answer to " + question, Sources: []api.Source{{Text: "clause 4"}}}, nil
}

func (f *fakeRemote) RedFlags(ctx context.Context, docID string) (*api.RedFlagReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.redFlags++
	return f.report, nil
}

func (f *fakeRemote) Summarize(ctx context.Context, docID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summaries++
	return f.summary, nil
}

func (f *fakeRemote) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.asks) + f.redFlags + f.summaries
}

func newChat(remote *fakeRemote, rec *notify.Recorder) *Chat {
	return New(remote, "d1").WithNotifier(rec)
}

// =============================================================================
// QUESTIONS
// =============================================================================

func TestAsk_ThreeQuestionsInOrder(t *testing.T) {
	remote := &fakeRemote{}
	rec := &notify.Recorder{}
	c := newChat(remote, rec)
	ctx := context.Background()

	questions := []string{"Who are the parties?", "  What is the term?  ", "Is there a non-compete?"}
	for _, q := range questions {
		_, err := c.Ask(ctx, q)
		require.NoError(t, err)
	}

	log := c.Log()
	require.Len(t, log, 3)
	assert.Equal(t, "Who are the parties?", log[0].Question)
	assert.Equal(t, "What is the term?", log[1].Question)
	assert.Equal(t, "Is there a non-compete?", log[2].Question)
	assert.Equal(t, "answer to What is the term?", log[1].Answer)
	assert.Len(t, log[0].Sources, 1)

	ids := map[string]bool{}
	for _, e := range log {
		assert.NotEmpty(t, e.ID)
		assert.False(t, e.Timestamp.IsZero())
		ids[e.ID] = true
	}
	assert.Len(t, ids, 3)
	assert.Len(t, rec.Messages(notify.KindSuccess), 3)
	assert.Equal(t, Idle, c.State())
}

func TestAsk_EmptyQuestion(t *testing.T) {
	remote := &fakeRemote{}
	c := newChat(remote, &notify.Recorder{})

	_, err := c.Ask(context.Background(), " \n\t")
	assert.ErrorIs(t, err, ErrEmptyQuestion)
	assert.Zero(t, remote.calls())
	assert.Equal(t, Idle, c.State())
}

func TestAsk_FailureAppendsNothing(t *testing.T) {
	remote := &fakeRemote{askErr: errors.New("model overloaded")}
	rec := &notify.Recorder{}
	c := newChat(remote, rec)

	_, err := c.Ask(context.Background(), "Who signs?")
	require.Error(t, err)
	assert.Zero(t, c.Len())
	assert.Equal(t, []string{MsgAskFailed}, rec.Messages(notify.KindError))
	assert.Equal(t, Idle, c.State())
}

// TestBusy_AllActionsDropped checks that while one response is pending the
// other actions neither reach the backend nor change the log.
func TestBusy_AllActionsDropped(t *testing.T) {
	remote := &fakeRemote{summary: "short"}
	c := newChat(remote, &notify.Recorder{})
	ctx := context.Background()

	req, err := c.Begin(KindQuestion, "first")
	require.NoError(t, err)
	assert.True(t, c.Busy())

	_, err = c.Ask(ctx, "second")
	assert.ErrorIs(t, err, ErrBusy)
	_, err = c.DetectRedFlags(ctx)
	assert.ErrorIs(t, err, ErrBusy)
	_, err = c.Summarize(ctx)
	assert.ErrorIs(t, err, ErrBusy)
	assert.Zero(t, remote.calls())

	entry, err := c.Run(ctx, req)
	_, err = c.Finish(req, entry, err)
	require.NoError(t, err)
	assert.Equal(t, 1, remote.calls())
	require.Len(t, c.Log(), 1)
	assert.Equal(t, "first", c.Log()[0].Question)
	assert.False(t, c.Busy())
}

// =============================================================================
// CANNED ANALYSES
// =============================================================================

func TestDetectRedFlags(t *testing.T) {
	remote := &fakeRemote{report: &api.RedFlagReport{
		OverallRiskLevel: "high",
		Summary:          "One-sided indemnity.",
		RedFlags: []api.RedFlag{
			{Type: "Indemnity", Severity: "high", Description: "Vendor only", Suggestion: "Make it mutual"},
		},
	}}
	rec := &notify.Recorder{}
	c := newChat(remote, rec)

	e, err := c.DetectRedFlags(context.Background())
	require.NoError(t, err)
	assert.Equal(t, LabelRedFlags, e.Question)
	assert.Equal(t, KindRedFlags, e.Kind)
	assert.Contains(t, e.Answer, "1. **Indemnity** (high): Vendor only\n   Suggestion: Make it mutual")
	assert.Equal(t, []string{MsgRedFlagsDone}, rec.Messages(notify.KindSuccess))
}

func TestSummarize_Fallback(t *testing.T) {
	remote := &fakeRemote{summary: "  "}
	rec := &notify.Recorder{}
	c := newChat(remote, rec)

	e, err := c.Summarize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, LabelSummarize, e.Question)
	assert.Equal(t, summaryFallback, e.Answer)
	assert.Equal(t, []string{MsgSummarized}, rec.Messages(notify.KindSuccess))
}

func TestSeed_KeepsHistoryOrder(t *testing.T) {
	c := newChat(&fakeRemote{}, &notify.Recorder{})
	c.Seed([]api.ChatRecord{
		{ID: "7", Question: "old", Answer: "a", CreatedAt: "2024-05-01T10:00:00Z"},
		{Question: "newer", Answer: "b"},
	})

	log := c.Log()
	require.Len(t, log, 2)
	assert.Equal(t, "7", log[0].ID)
	assert.Equal(t, KindHistory, log[0].Kind)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), log[0].Timestamp.UTC())
	assert.NotEmpty(t, log[1].ID)

	_, err := c.Ask(context.Background(), "latest")
	require.NoError(t, err)
	assert.Equal(t, "latest", c.Log()[2].Question)
}

func TestWithClock(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := newChat(&fakeRemote{}, &notify.Recorder{}).WithClock(func() time.Time { return at })
	e, err := c.Ask(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, at, e.Timestamp)
}
