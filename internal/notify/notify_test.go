// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package notify

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecorder_ConcurrentNotify(t *testing.T) {
	var r Recorder
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			Error(&r, "boom")
		}()
	}
	wg.Wait()
	Success(&r, "ok")

	assert.Len(t, r.Messages(KindError), 20)
	assert.Equal(t, []string{"ok"}, r.Messages(KindSuccess))

	r.Reset()
	assert.Empty(t, r.Notices())
}

func TestOrDiscard(t *testing.T) {
	assert.NotPanics(t, func() { Info(OrDiscard(nil), "dropped") })

	var got Notice
	n := OrDiscard(Func(func(x Notice) { got = x }))
	Warning(n, "careful")
	assert.Equal(t, Notice{Kind: KindWarning, Message: "careful"}, got)
	assert.Equal(t, "warning", got.Kind.String())
}
