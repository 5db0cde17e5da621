// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/lexpad-tui/internal/api"
	"github.com/jeranaias/lexpad-tui/internal/config"
)

// =============================================================================
// FIXTURES
// =============================================================================

type fakeServer struct {
	mu      sync.Mutex
	deleted []string
	asked   []string
}

func (f *fakeServer) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")

		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Could not validate credentials"}`))
			return
		}
		switch {
		case r.URL.Path == "/api/auth/me":
			_, _ = w.Write([]byte(`{"id":"u1","email":"counsel@example.com","name":"Counsel"}`))
		case r.Method == http.MethodGet && r.URL.Path == "/api/documents/":
			_, _ = w.Write([]byte(`{"documents":[
				{"id":"d1","title":"Supply Agreement","updated_at":"2024-05-01T10:00:00Z"},
				{"id":"d2","title":"","file_name":"lease.pdf"}]}`))
		case r.Method == http.MethodGet && r.URL.Path == "/api/documents/d1":
			_, _ = w.Write([]byte(`{"document":{"id":"d1","title":"Supply Agreement","content":"<p>The <strong>buyer</strong> pays.</p>"}}`))
		case r.Method == http.MethodDelete && r.URL.Path == "/api/documents/d1":
			f.deleted = append(f.deleted, "d1")
			_, _ = w.Write([]byte(`{"message":"deleted"}`))
		case r.URL.Path == "/api/qa/chat-history/d1":
			_, _ = w.Write([]byte(`{"chat_history":[{"id":1,"question":"Who pays?","answer":"The buyer."}]}`))
		case r.URL.Path == "/api/qa/ask":
			var body map[string]string
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			f.asked = append(f.asked, body["question"])
			_, _ = w.Write([]byte(`{"answer":"Five years."}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail":"Document not found"}`))
		}
	}
}

type env struct {
	t       *testing.T
	srv     *fakeServer
	config  string
	session string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	t.Setenv("NO_COLOR", "1")
	t.Setenv("LEXPAD_TOKEN", "")
	t.Setenv("LEXPAD_API_URL", "")
	t.Setenv("LEXPAD_SESSION_FILE", "")

	fs := &fakeServer{}
	srv := httptest.NewServer(fs.handler(t))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	e := &env{
		t:       t,
		srv:     fs,
		config:  filepath.Join(dir, "config.toml"),
		session: filepath.Join(dir, "session.json"),
	}
	body := fmt.Sprintf(`[api]
base_url = %q
max_retries = 0

[auth]
session_file = %q

[log]
path = %q
level = "debug"

[drafts]
enabled = false
`, srv.URL, e.session, filepath.Join(dir, "lexpad.log"))
	require.NoError(t, os.WriteFile(e.config, []byte(body), 0o600))
	return e
}

// run executes the command line with the test config and returns stdout,
// stderr and the error.
func (e *env) run(stdin string, args ...string) (string, string, error) {
	var out, errOut bytes.Buffer
	args = append([]string{"--config", e.config}, args...)
	err := Execute(context.Background(), strings.NewReader(stdin), &out, &errOut, args...)
	return out.String(), errOut.String(), err
}

func (e *env) login() {
	e.t.Helper()
	_, _, err := e.run("", "login", "--token", "good")
	require.NoError(e.t, err)
}

// =============================================================================
// ACCOUNT
// =============================================================================

func TestLogin_StoresValidatedToken(t *testing.T) {
	e := newEnv(t)

	out, _, err := e.run("", "login", "--token", "good")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as counsel@example.com")

	data, err := os.ReadFile(e.session)
	require.NoError(t, err)
	assert.Contains(t, string(data), "good")
}

func TestLogin_ReadsPipedToken(t *testing.T) {
	e := newEnv(t)

	_, _, err := e.run("good\n", "login")
	require.NoError(t, err)
	assert.FileExists(t, e.session)
}

func TestLogin_RejectedToken(t *testing.T) {
	e := newEnv(t)

	_, stderr, err := e.run("", "login", "--token", "bad")
	require.Error(t, err)
	assert.Equal(t, ExitAuthError, ExitCode(err))
	assert.Contains(t, stderr, "[ERROR]")
	assert.NoFileExists(t, e.session)
}

func TestWhoami_JSON(t *testing.T) {
	e := newEnv(t)
	e.login()

	out, _, err := e.run("", "whoami", "--json")
	require.NoError(t, err)

	var resp struct {
		Success bool   `json:"success"`
		Command string `json:"command"`
		Data    whoami `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "whoami", resp.Command)
	assert.Equal(t, "counsel@example.com", resp.Data.Email)
}

func TestLogout_ClearsSession(t *testing.T) {
	e := newEnv(t)
	e.login()

	out, _, err := e.run("", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed out.")
	assert.NoFileExists(t, e.session)

	_, _, err = e.run("", "docs")
	assert.Equal(t, ExitAuthError, ExitCode(err))
}

// =============================================================================
// DOCUMENTS
// =============================================================================

func TestDocs_ListTable(t *testing.T) {
	e := newEnv(t)
	e.login()

	out, _, err := e.run("", "docs")
	require.NoError(t, err)
	assert.Contains(t, out, "TITLE")
	assert.Contains(t, out, "Supply Agreement")
	assert.Contains(t, out, "lease.pdf")
}

func TestDocs_ListJSON(t *testing.T) {
	e := newEnv(t)
	e.login()

	out, _, err := e.run("", "docs", "--json")
	require.NoError(t, err)

	var resp struct {
		Data []docEntry `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "d1", resp.Data[0].ID)
}

func TestDocsDelete_Confirmation(t *testing.T) {
	e := newEnv(t)
	e.login()

	out, _, err := e.run("n\n", "docs", "delete", "d1")
	require.NoError(t, err)
	assert.Contains(t, out, "Aborted.")
	assert.Empty(t, e.srv.deleted)

	out, _, err = e.run("", "docs", "delete", "d1", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted d1")
	assert.Equal(t, []string{"d1"}, e.srv.deleted)
}

func TestDocsDelete_JSONNeedsYes(t *testing.T) {
	e := newEnv(t)
	e.login()

	_, _, err := e.run("", "docs", "delete", "d1", "--json")
	assert.Equal(t, ExitUsageError, ExitCode(err))
	assert.Empty(t, e.srv.deleted)
}

func TestDocsDelete_NotFound(t *testing.T) {
	e := newEnv(t)
	e.login()

	_, stderr, err := e.run("", "docs", "delete", "missing", "--yes")
	assert.Equal(t, ExitNotFoundError, ExitCode(err))
	assert.Contains(t, stderr, "lexpad docs")
}

func TestExport_Stdout(t *testing.T) {
	e := newEnv(t)
	e.login()

	out, _, err := e.run("", "export", "d1", "--stdout")
	require.NoError(t, err)
	assert.Contains(t, out, "# Supply Agreement")
	assert.Contains(t, out, "The **buyer** pays.")
	assert.Contains(t, out, "### Question: Who pays?")
}

func TestExport_File(t *testing.T) {
	e := newEnv(t)
	e.login()
	dir := t.TempDir()

	out, _, err := e.run("", "export", "d1", "--format", "json", "--output", dir, "--no-chat")
	require.NoError(t, err)
	assert.Contains(t, out, "Exported to "+dir)

	files, err := filepath.Glob(filepath.Join(dir, "Supply_Agreement_*.json"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), `"chat": []`)
}

func TestExport_UnknownFormat(t *testing.T) {
	e := newEnv(t)
	e.login()

	_, _, err := e.run("", "export", "d1", "--format", "docx")
	assert.Equal(t, ExitUsageError, ExitCode(err))
}

// =============================================================================
// ANALYSIS
// =============================================================================

func TestAsk_PrintsAnswer(t *testing.T) {
	e := newEnv(t)
	e.login()

	out, _, err := e.run("", "ask", "d1", "How", "long", "is", "the", "term?", "--raw")
	require.NoError(t, err)
	assert.Contains(t, out, "Five years.")
	assert.Equal(t, []string{"How long is the term?"}, e.srv.asked)
}

func TestAsk_NeedsQuestion(t *testing.T) {
	e := newEnv(t)

	_, _, err := e.run("", "ask", "d1")
	require.Error(t, err)
	assert.Empty(t, e.srv.asked)
}

func TestAsk_WithoutSession(t *testing.T) {
	e := newEnv(t)

	_, stderr, err := e.run("", "ask", "d1", "anything")
	assert.Equal(t, ExitAuthError, ExitCode(err))
	assert.Contains(t, stderr, "lexpad login")
}

// scriptedLines replays a fixed list of inputs, then reports EOF.
type scriptedLines struct {
	inputs  []string
	history []string
	closed  bool
}

func (s *scriptedLines) Prompt(string) (string, error) {
	if len(s.inputs) == 0 {
		return "", io.EOF
	}
	in := s.inputs[0]
	s.inputs = s.inputs[1:]
	return in, nil
}

func (s *scriptedLines) AppendHistory(item string) { s.history = append(s.history, item) }

func (s *scriptedLines) Close() error {
	s.closed = true
	return nil
}

func TestChat_REPL(t *testing.T) {
	e := newEnv(t)
	e.login()

	lines := &scriptedLines{inputs: []string{"What is the term?", "", "/history", "/bogus", "/quit", "never read"}}
	rt := &runtime{lines: func() (lineReader, error) { return lines, nil }}
	defer rt.close()

	var out, errOut bytes.Buffer
	cmd := newRootCmd(rt)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{"--config", e.config, "chat", "d1"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	assert.Contains(t, out.String(), "Five years.")
	assert.Contains(t, out.String(), "1. Who pays?")
	assert.Contains(t, out.String(), "2. What is the term?")
	assert.Contains(t, out.String(), "1 earlier question(s)")
	assert.Contains(t, errOut.String(), "unknown command /bogus")
	assert.Equal(t, []string{"What is the term?"}, e.srv.asked)
	assert.Equal(t, []string{"What is the term?", "/history", "/bogus", "/quit"}, lines.history)
	assert.Equal(t, []string{"never read"}, lines.inputs)
	assert.True(t, lines.closed)
}

// =============================================================================
// CONFIG
// =============================================================================

func TestConfig_SetThenGet(t *testing.T) {
	e := newEnv(t)

	_, _, err := e.run("", "config", "set", "panel.width", "70")
	require.NoError(t, err)

	out, _, err := e.run("", "config", "get", "panel.width")
	require.NoError(t, err)
	assert.Equal(t, "70\n", out)

	// The rest of the file survives the edit.
	out, _, err = e.run("", "config", "get", "api.max_retries")
	require.NoError(t, err)
	assert.Equal(t, "0\n", out)
}

func TestConfig_GetUnknownKey(t *testing.T) {
	e := newEnv(t)

	_, _, err := e.run("", "config", "get", "panel.depth")
	assert.Equal(t, ExitUsageError, ExitCode(err))
}

func TestConfig_ShowRedactsToken(t *testing.T) {
	e := newEnv(t)
	t.Setenv("LEXPAD_TOKEN", "secret-token")

	out, _, err := e.run("", "config", "show")
	require.NoError(t, err)
	assert.NotContains(t, out, "secret-token")
	assert.Contains(t, out, "[REDACTED]")
}

func TestConfig_MissingFile(t *testing.T) {
	var out, errOut bytes.Buffer
	err := Execute(context.Background(), strings.NewReader(""), &out, &errOut,
		"--config", filepath.Join(t.TempDir(), "nope.toml"), "docs")
	assert.Equal(t, ExitConfigError, ExitCode(err))
}

func TestConfig_Keys(t *testing.T) {
	e := newEnv(t)

	out, _, err := e.run("", "config", "keys")
	require.NoError(t, err)
	assert.Equal(t, strings.Join(config.Keys(), "\n")+"\n", out)
	assert.Contains(t, out, "api.base_url")
}

// =============================================================================
// ERRORS
// =============================================================================

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"usage", &UsageError{Field: "x", Reason: "y"}, ExitUsageError},
		{"config", &ConfigError{Path: "p", Err: errors.New("bad")}, ExitConfigError},
		{"unauthorized", &api.Error{Status: http.StatusUnauthorized}, ExitAuthError},
		{"no token", fmt.Errorf("wrapped: %w", api.ErrNoToken), ExitAuthError},
		{"not found", &api.Error{Status: http.StatusNotFound}, ExitNotFoundError},
		{"deadline", context.DeadlineExceeded, ExitTimeoutError},
		{"net timeout", timeoutErr{}, ExitTimeoutError},
		{"server", &api.Error{Status: http.StatusInternalServerError}, ExitGeneralError},
		{"other", errors.New("boom"), ExitGeneralError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestDisplayError_JSON(t *testing.T) {
	var buf bytes.Buffer
	DisplayError(&buf, &api.Error{Method: "GET", Path: "/api/documents/x", Status: 404}, true)

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, false, out["success"])
	assert.EqualValues(t, ExitNotFoundError, out["exit_code"])
	assert.EqualValues(t, 404, out["status"])
}

func TestVersion(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Execute(context.Background(), strings.NewReader(""), &out, io.Discard, "version"))
	assert.Contains(t, out.String(), "lexpad "+Version)
}
