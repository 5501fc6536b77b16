// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/ollama-chat/internal/chatfile"
	"github.com/jeranaias/ollama-chat/internal/config"
	"github.com/jeranaias/ollama-chat/internal/ollama"
	"github.com/jeranaias/ollama-chat/internal/storage"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// fakeOllama serves the endpoints the client uses.
type fakeOllama struct {
	*httptest.Server

	mu           sync.Mutex
	prompts      []string
	models       []string
	failGenerate bool
}

func newFakeOllama(t *testing.T) *fakeOllama {
	t.Helper()
	f := &fakeOllama{}
	mux := http.NewServeMux()

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "Ollama is running")
	})
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"models":[{"name":"mistral:latest","size":4109865159}]}`)
	})
	mux.HandleFunc("/api/generate", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model  string `json:"model"`
			Prompt string `json:"prompt"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)

		f.mu.Lock()
		f.prompts = append(f.prompts, req.Prompt)
		f.models = append(f.models, req.Model)
		fail := f.failGenerate
		f.mu.Unlock()

		switch {
		case req.Model == "missing":
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"error":"model 'missing' not found"}`)
			return
		case fail:
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"error":"out of memory"}`)
			return
		}
		fmt.Fprintln(w, `{"response":"Hel"}`)
		fmt.Fprintln(w, `{"response":"lo"}`)
		fmt.Fprintln(w, `{"response":"","done":true}`)
	})
	mux.HandleFunc("/api/pull", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"status":"pulling manifest"}`)
		fmt.Fprintln(w, `{"status":"downloading","completed":50,"total":100}`)
		fmt.Fprintln(w, `{"status":"downloading","completed":100,"total":100}`)
		fmt.Fprintln(w, `{"status":"success"}`)
	})

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func (f *fakeOllama) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}

func (f *fakeOllama) lastModel() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.models) == 0 {
		return ""
	}
	return f.models[len(f.models)-1]
}

type result struct {
	out, err string
	code     int
}

// runCLI runs the command line against dir and serverURL.
func runCLI(t *testing.T, dir, serverURL, stdin string, args ...string) result {
	t.Helper()
	for _, k := range []string{
		"OLLAMA_CHAT_API_URL", "OLLAMA_CHAT_THEME", "OLLAMA_CHAT_AUTOSAVE",
		"OLLAMA_CHAT_MODEL", "OLLAMA_CHAT_LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}

	var out, errb bytes.Buffer
	full := append([]string{"--config-dir", dir, "--api-url", serverURL}, args...)
	code := run(context.Background(), Streams{
		In:  strings.NewReader(stdin),
		Out: &out,
		Err: &errb,
	}, full)
	return result{out: out.String(), err: errb.String(), code: code}
}

func loadChat(t *testing.T, dir, name string) *chatfile.Chat {
	t.Helper()
	store, err := storage.NewChatStore(config.PathsIn(dir).ChatsDir, nil)
	require.NoError(t, err)
	chat, err := store.Load(name)
	require.NoError(t, err)
	return chat
}

func deadServerURL(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	return url
}

// =============================================================================
// ROOT TESTS
// =============================================================================

func TestVersion(t *testing.T) {
	res := runCLI(t, t.TempDir(), "http://localhost:11434", "", "--version")
	assert.Equal(t, ExitSuccess, res.code)
	assert.Contains(t, res.out, "ollama-chat dev")
}

func TestUnknownCommand(t *testing.T) {
	res := runCLI(t, t.TempDir(), "http://localhost:11434", "", "frobnicate")
	assert.Equal(t, ExitUsageError, res.code)
	assert.Contains(t, res.err, "Error:")
}

func TestBadAPIURLFlag(t *testing.T) {
	res := runCLI(t, t.TempDir(), "localhost:11434", "", "models")
	assert.Equal(t, ExitUsageError, res.code)
	assert.Contains(t, res.err, "--api-url")
}

func TestInvalidConfigFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"theme":"Blue"}`), 0o600))

	res := runCLI(t, dir, "http://localhost:11434", "", "config", "show")
	assert.Equal(t, ExitConfigError, res.code)
}

// =============================================================================
// MODELS / PULL TESTS
// =============================================================================

func TestModels(t *testing.T) {
	srv := newFakeOllama(t)
	res := runCLI(t, t.TempDir(), srv.URL, "", "models")
	require.Equal(t, ExitSuccess, res.code, res.err)
	assert.Contains(t, res.out, "mistral:latest")
	assert.Contains(t, res.out, "3.8 GB")

	res = runCLI(t, t.TempDir(), srv.URL, "", "models", "-q")
	assert.Equal(t, "mistral:latest\n", res.out)
}

func TestModels_Unreachable(t *testing.T) {
	res := runCLI(t, t.TempDir(), deadServerURL(t), "", "models")
	assert.Equal(t, ExitNetworkError, res.code)
	assert.Contains(t, res.err, "Is Ollama running?")
}

func TestPull_PlainProgress(t *testing.T) {
	srv := newFakeOllama(t)
	res := runCLI(t, t.TempDir(), srv.URL, "", "pull", "mistral")
	require.Equal(t, ExitSuccess, res.code, res.err)
	assert.Contains(t, res.out, "Pulling mistral")
	assert.Contains(t, res.out, "pulling manifest")
	assert.Contains(t, res.out, "downloading: 100% of 100 B")
	assert.Contains(t, res.out, "Pulled mistral")
}

func TestPull_RequiresName(t *testing.T) {
	res := runCLI(t, t.TempDir(), "http://localhost:11434", "", "pull")
	assert.Equal(t, ExitUsageError, res.code)
}

// =============================================================================
// ASK TESTS
// =============================================================================

func TestAsk(t *testing.T) {
	srv := newFakeOllama(t)
	res := runCLI(t, t.TempDir(), srv.URL, "", "ask", "say", "hello")
	require.Equal(t, ExitSuccess, res.code, res.err)
	assert.Equal(t, "Hello\n", res.out)
	assert.Equal(t, "say hello", srv.lastPrompt())
}

func TestAsk_Stdin(t *testing.T) {
	srv := newFakeOllama(t)
	res := runCLI(t, t.TempDir(), srv.URL, "  piped prompt\n", "ask")
	require.Equal(t, ExitSuccess, res.code, res.err)
	assert.Equal(t, "piped prompt", srv.lastPrompt())
}

func TestAsk_Save(t *testing.T) {
	srv := newFakeOllama(t)
	dir := t.TempDir()
	res := runCLI(t, dir, srv.URL, "", "ask", "--save", "greeting", "-m", "mistral", "hi")
	require.Equal(t, ExitSuccess, res.code, res.err)
	assert.Contains(t, res.err, "Saved to")

	chat := loadChat(t, dir, "greeting")
	assert.Equal(t, "mistral", chat.Model)
	assert.Equal(t, []chatfile.Message{
		{Role: chatfile.RoleUser, Content: "hi"},
		{Role: chatfile.RoleAssistant, Content: "Hello"},
	}, chat.Messages)
}

func TestAsk_ModelNotFound(t *testing.T) {
	srv := newFakeOllama(t)
	res := runCLI(t, t.TempDir(), srv.URL, "", "ask", "-m", "missing", "hi")
	assert.Equal(t, ExitNotFoundError, res.code)
	assert.Contains(t, res.err, "ollama-chat pull")
}

// =============================================================================
// HISTORY TESTS
// =============================================================================

func TestHistory(t *testing.T) {
	srv := newFakeOllama(t)
	dir := t.TempDir()
	require.Equal(t, ExitSuccess, runCLI(t, dir, srv.URL, "", "ask", "--save", "first", "question one").code)

	res := runCLI(t, dir, srv.URL, "", "history", "list")
	require.Equal(t, ExitSuccess, res.code, res.err)
	assert.Contains(t, res.out, "first")
	assert.Contains(t, res.out, "question one")

	res = runCLI(t, dir, srv.URL, "", "history", "show", "first")
	require.Equal(t, ExitSuccess, res.code, res.err)
	assert.Contains(t, res.out, "User:\nquestion one")
	assert.Contains(t, res.out, "Assistant:\nHello")

	res = runCLI(t, dir, srv.URL, "", "history", "show", "first", "--raw")
	require.Equal(t, ExitSuccess, res.code, res.err)
	assert.True(t, strings.HasPrefix(res.out, chatfile.Header+"\n"))

	res = runCLI(t, dir, srv.URL, "", "history", "search", "QUESTION")
	assert.Contains(t, res.out, "first")

	res = runCLI(t, dir, srv.URL, "", "history", "show", "nope")
	assert.Equal(t, ExitNotFoundError, res.code)
}

func TestHistoryDelete(t *testing.T) {
	srv := newFakeOllama(t)
	dir := t.TempDir()
	require.Equal(t, ExitSuccess, runCLI(t, dir, srv.URL, "", "ask", "--save", "gone", "x").code)

	// Piped stdin cannot confirm.
	res := runCLI(t, dir, srv.URL, "y\n", "history", "delete", "gone")
	assert.Equal(t, ExitUsageError, res.code)
	assert.Contains(t, res.err, "--yes")

	res = runCLI(t, dir, srv.URL, "", "history", "delete", "gone", "--yes")
	require.Equal(t, ExitSuccess, res.code, res.err)
	assert.Contains(t, res.out, "Deleted gone")

	res = runCLI(t, dir, srv.URL, "", "history", "delete", "gone", "--yes")
	assert.Equal(t, ExitNotFoundError, res.code)
}

func TestHistoryExport(t *testing.T) {
	srv := newFakeOllama(t)
	dir := t.TempDir()
	require.Equal(t, ExitSuccess, runCLI(t, dir, srv.URL, "", "ask", "--save", "notes", "explain").code)

	res := runCLI(t, dir, srv.URL, "", "history", "export", "notes")
	require.Equal(t, ExitSuccess, res.code, res.err)
	assert.Contains(t, res.out, "# notes")
	assert.Contains(t, res.out, "### Assistant\n\nHello")

	out := filepath.Join(t.TempDir(), "notes.json")
	res = runCLI(t, dir, srv.URL, "", "history", "export", "notes", "-o", out)
	require.Equal(t, ExitSuccess, res.code, res.err)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"role": "assistant"`)

	res = runCLI(t, dir, srv.URL, "", "history", "export", "notes", "-f", "pdf")
	assert.Equal(t, ExitUsageError, res.code)

	res = runCLI(t, dir, srv.URL, "", "history", "export", "missing")
	assert.Equal(t, ExitNotFoundError, res.code)
}

// =============================================================================
// CONFIG TESTS
// =============================================================================

func TestConfigSetGet(t *testing.T) {
	dir := t.TempDir()
	url := "http://127.0.0.1:9"

	res := runCLI(t, dir, url, "", "config", "set", "theme", "dark")
	require.Equal(t, ExitSuccess, res.code, res.err)
	assert.Contains(t, res.out, "theme = Dark")

	res = runCLI(t, dir, url, "", "config", "get", "theme")
	assert.Equal(t, "Dark\n", res.out)

	data, err := os.ReadFile(filepath.Join(dir, "config.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"theme": "Dark"`)
	// The --api-url flag is not persisted.
	assert.Contains(t, string(data), `"api_url": "http://localhost:11434"`)
	assert.NotContains(t, string(data), url)

	res = runCLI(t, dir, url, "", "config", "set", "theme", "Blue")
	assert.Equal(t, ExitUsageError, res.code)

	res = runCLI(t, dir, url, "", "config", "get", "nope")
	assert.Equal(t, ExitUsageError, res.code)
}

func TestConfigShowAndPath(t *testing.T) {
	dir := t.TempDir()
	res := runCLI(t, dir, "http://localhost:11434", "", "config")
	require.Equal(t, ExitSuccess, res.code, res.err)
	assert.Contains(t, res.out, "theme: Light")
	assert.Contains(t, res.out, "defaults")

	res = runCLI(t, dir, "http://localhost:11434", "", "config", "path")
	assert.Contains(t, res.out, filepath.Join(dir, "chats"))
}

// =============================================================================
// CHAT TESTS
// =============================================================================

func TestChat_SendAndSave(t *testing.T) {
	srv := newFakeOllama(t)
	dir := t.TempDir()

	res := runCLI(t, dir, srv.URL, "hi\n/save first\n/quit\n", "chat")
	require.Equal(t, ExitSuccess, res.code, res.err)
	assert.Contains(t, res.out, "Model: mistral:latest")
	assert.Contains(t, res.out, "Assistant:\nHello")
	assert.Contains(t, res.out, "Saved to")

	chat := loadChat(t, dir, "first")
	assert.Equal(t, "mistral:latest", chat.Model)
	assert.Equal(t, []chatfile.Message{
		{Role: chatfile.RoleUser, Content: "hi"},
		{Role: chatfile.RoleAssistant, Content: "Hello"},
	}, chat.Messages)
}

func TestChat_DefaultCommand(t *testing.T) {
	srv := newFakeOllama(t)
	res := runCLI(t, t.TempDir(), srv.URL, "/quit\n", "--model", "llama2")
	require.Equal(t, ExitSuccess, res.code, res.err)
	assert.Contains(t, res.out, "Model: llama2")
}

func TestChat_QuitAsksToSave(t *testing.T) {
	srv := newFakeOllama(t)
	dir := t.TempDir()

	res := runCLI(t, dir, srv.URL, "hi\n/quit\ny\n", "chat")
	require.Equal(t, ExitSuccess, res.code, res.err)

	matches, err := filepath.Glob(filepath.Join(dir, "chats", "chat_*.txt"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestChat_QuitCancelKeepsRunning(t *testing.T) {
	srv := newFakeOllama(t)
	dir := t.TempDir()

	// Cancel the first quit, then discard on the second.
	res := runCLI(t, dir, srv.URL, "hi\n/quit\nc\n/model\n/quit\nn\n", "chat")
	require.Equal(t, ExitSuccess, res.code, res.err)
	assert.Contains(t, res.out, "Current model:")

	matches, _ := filepath.Glob(filepath.Join(dir, "chats", "*.txt"))
	assert.Empty(t, matches)
}

func TestChat_OpenAndContinue(t *testing.T) {
	srv := newFakeOllama(t)
	dir := t.TempDir()
	require.Equal(t, ExitSuccess, runCLI(t, dir, srv.URL, "", "ask", "-m", "mistral", "--save", "work", "earlier").code)

	res := runCLI(t, dir, srv.URL, "later\n/save\n/quit\n", "chat", "--open", "work")
	require.Equal(t, ExitSuccess, res.code, res.err)
	assert.Contains(t, res.out, "User:\nearlier")
	assert.Equal(t, "mistral", srv.lastModel())

	chat := loadChat(t, dir, "work")
	assert.Equal(t, "mistral", chat.Model)
	require.Len(t, chat.Messages, 4)
	assert.Equal(t, "later", chat.Messages[2].Content)
}

func TestChat_OpenKeepsModelWhenNotInstalled(t *testing.T) {
	srv := newFakeOllama(t)
	dir := t.TempDir()
	require.Equal(t, ExitSuccess, runCLI(t, dir, srv.URL, "", "ask", "-m", "llama2", "--save", "work", "earlier").code)

	res := runCLI(t, dir, srv.URL, "later\n/save\n/quit\n", "chat", "--open", "work")
	require.Equal(t, ExitSuccess, res.code, res.err)
	assert.Contains(t, res.err, `"llama2"`)
	assert.Equal(t, "mistral:latest", srv.lastModel())

	chat := loadChat(t, dir, "work")
	assert.Equal(t, "mistral:latest", chat.Model)
	require.Len(t, chat.Messages, 4)
}

func TestChat_OpenWithoutModelLine(t *testing.T) {
	srv := newFakeOllama(t)
	dir := t.TempDir()
	chats := config.PathsIn(dir).ChatsDir
	require.NoError(t, os.MkdirAll(chats, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(chats, "legacy.txt"), []byte("[USER]\nhi\n"), 0o644))

	res := runCLI(t, dir, srv.URL, "again\n/save\n/quit\n", "chat", "--open", "legacy")
	require.Equal(t, ExitSuccess, res.code, res.err)
	assert.NotContains(t, res.err, "not available")
	assert.Equal(t, "mistral:latest", srv.lastModel())

	chat := loadChat(t, dir, "legacy")
	assert.Equal(t, "mistral:latest", chat.Model)
	require.Len(t, chat.Messages, 3)
}

func TestChat_OpenMissing(t *testing.T) {
	srv := newFakeOllama(t)
	res := runCLI(t, t.TempDir(), srv.URL, "", "chat", "--open", "nope")
	assert.Equal(t, ExitNotFoundError, res.code)
}

func TestChat_GenerateErrorIsRecorded(t *testing.T) {
	srv := newFakeOllama(t)
	srv.failGenerate = true
	dir := t.TempDir()

	res := runCLI(t, dir, srv.URL, "hi\n/save broken\n/quit\n", "chat")
	require.Equal(t, ExitSuccess, res.code, res.err)
	assert.Contains(t, res.err, "out of memory")

	chat := loadChat(t, dir, "broken")
	require.Len(t, chat.Messages, 2)
	assert.True(t, strings.HasPrefix(chat.Messages[1].Content, ollama.GenerateErrorPrefix))
}

func TestChat_SlashCommands(t *testing.T) {
	srv := newFakeOllama(t)
	dir := t.TempDir()

	script := strings.Join([]string{
		"/help",
		"/bogus",
		"/models",
		"/model llama2",
		"/save",
		"/open",
		"/settings",
		"/settings autosave yes",
		"/pull tinyllama",
		"/history",
		"/new",
		"/quit",
	}, "\n") + "\n"

	res := runCLI(t, dir, srv.URL, script, "chat")
	require.Equal(t, ExitSuccess, res.code, res.err)

	assert.Contains(t, res.out, "/save [name]")
	assert.Contains(t, res.err, "unknown command: /bogus")
	assert.Contains(t, res.out, "* mistral:latest")
	assert.Contains(t, res.out, "Switched to model: llama2")
	assert.Contains(t, res.err, "not installed")
	assert.Contains(t, res.err, "nothing to save")
	assert.Contains(t, res.err, "usage: /open <name>")
	assert.Contains(t, res.out, "api_url: "+srv.URL)
	assert.Contains(t, res.out, "autosave = true")
	assert.Contains(t, res.out, "Pulled tinyllama")
	assert.Contains(t, res.out, "No saved chats.")
	assert.Contains(t, res.out, "Started a new chat.")

	cfg, err := config.LoadFile(config.PathsIn(dir))
	require.NoError(t, err)
	assert.True(t, cfg.Autosave)
}

func TestChat_Export(t *testing.T) {
	srv := newFakeOllama(t)
	out := filepath.Join(t.TempDir(), "session.html")

	res := runCLI(t, t.TempDir(), srv.URL, "/export "+out+"\nhi\n/export "+out+"\n/quit\nn\n", "chat")
	require.Equal(t, ExitSuccess, res.code, res.err)
	assert.Contains(t, res.err, "nothing to export")
	assert.Contains(t, res.out, "Exported to "+out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<!DOCTYPE html>")
}

func TestChat_DeleteCurrent(t *testing.T) {
	srv := newFakeOllama(t)
	dir := t.TempDir()

	res := runCLI(t, dir, srv.URL, "/delete\nhi\n/save doomed\n/delete\ny\n/quit\n", "chat")
	require.Equal(t, ExitSuccess, res.code, res.err)
	assert.Contains(t, res.err, "has not been saved")
	assert.Contains(t, res.out, "Deleted doomed")

	_, err := os.Stat(filepath.Join(dir, "chats", "doomed.txt"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestChat_NoModelInstalled(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) { fmt.Fprint(w, "ok") })
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, r *http.Request) { fmt.Fprint(w, `{"models":[]}`) })
	srv := httptest.NewServer(mux)
	defer srv.Close()

	res := runCLI(t, t.TempDir(), srv.URL, "hi\n/quit\n", "chat")
	require.Equal(t, ExitSuccess, res.code, res.err)
	assert.Contains(t, res.err, "No model selected")
	assert.Contains(t, res.err, "no model selected")
}

func TestChat_UnreachableServer(t *testing.T) {
	res := runCLI(t, t.TempDir(), deadServerURL(t), "/quit\n", "chat", "--no-start")
	require.Equal(t, ExitSuccess, res.code, res.err)
	assert.Contains(t, res.err, "No model selected")
}

// =============================================================================
// ERROR MAPPING TESTS
// =============================================================================

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"plain", errors.New("x"), ExitGeneralError},
		{"canceled", fmt.Errorf("wrap: %w", context.Canceled), ExitInterrupted},
		{"usage", &UsageError{Err: errors.New("bad flag")}, ExitUsageError},
		{"config", config.ValidateErrors{{Field: "theme", Message: "bad"}}, ExitConfigError},
		{"chat not found", fmt.Errorf("load: %w", storage.ErrChatNotFound), ExitNotFoundError},
		{"model not found", &ollama.ClientError{Type: ollama.ErrTypeModelNotFound, Message: "m"}, ExitNotFoundError},
		{"timeout", &ollama.ClientError{Type: ollama.ErrTypeTimeout, Message: "t"}, ExitTimeoutError},
		{"not running", &ollama.ClientError{Type: ollama.ErrTypeNotRunning, Message: "n"}, ExitNetworkError},
		{"connection", &ollama.ClientError{Type: ollama.ErrTypeConnection, Message: "c"}, ExitNetworkError},
		{"command", &CommandError{Command: "x", Action: "y", Reason: "z"}, ExitGeneralError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, GetExitCode(tc.err))
		})
	}
}

func TestNotFoundErrorMatchesStore(t *testing.T) {
	err := &NotFoundError{Resource: "chat", ID: "x"}
	assert.ErrorIs(t, err, storage.ErrChatNotFound)
	assert.NotErrorIs(t, &NotFoundError{Resource: "model", ID: "x"}, storage.ErrChatNotFound)
}

func TestCompleteCommand(t *testing.T) {
	assert.Equal(t, []string{"/model", "/models"}, completeCommand("/mod"))
	assert.Nil(t, completeCommand("hello"))
	assert.Nil(t, completeCommand("/open x"))
}

func TestIsLocalURL(t *testing.T) {
	assert.True(t, isLocalURL("http://localhost:11434"))
	assert.True(t, isLocalURL("http://127.0.0.1:8080"))
	assert.False(t, isLocalURL("http://gpu-box:11434"))
}
