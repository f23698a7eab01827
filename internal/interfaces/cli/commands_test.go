package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aigrants.co/cli/internal/infrastructure/config"
	httpinfra "aigrants.co/cli/internal/infrastructure/http"
	"aigrants.co/cli/internal/infrastructure/logging"
)

const testKey = "1tNHcGMBXaUxcicZmNF0aKnyEX/IcRWXr3xS96VMMmI="

// syncBuffer is written by the command and the stream loop concurrently
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type testEnv struct {
	container *CLIContainer
	out       *syncBuffer
	errOut    *syncBuffer
}

func newTestEnv(t *testing.T, server *httptest.Server, env map[string]string) *testEnv {
	t.Helper()
	vars := map[string]string{
		"CAPITOL_API_KEY":       testKey,
		"CAPITOL_POLL_INTERVAL": "50ms",
	}
	if server != nil {
		vars["CAPITOL_API_URL"] = server.URL
	}
	for k, v := range env {
		vars[k] = v
	}

	client := http.DefaultClient
	if server != nil {
		client = server.Client()
	}
	te := &testEnv{out: &syncBuffer{}, errOut: &syncBuffer{}}
	te.container = &CLIContainer{
		Resolver:  config.NewResolverWithLookup(func(key string) string { return vars[key] }),
		Requester: httpinfra.NewStdHttpRequesterWithClient(client),
		Logger:    logging.Nop(),
		Out:       te.out,
		ErrOut:    te.errOut,
	}
	return te
}

func (te *testEnv) run(args ...string) int {
	return ExecuteArgs(te.container, args)
}

// storyAPI fakes the session endpoint, the stream endpoint and the story endpoints
type storyAPI struct {
	*httptest.Server
	frames        []string
	closeAfter    bool
	sessionStatus int
	sessionBodies chan map[string]interface{}
	wg            sync.WaitGroup
}

func newStoryAPI(t *testing.T, frames []string) *storyAPI {
	t.Helper()
	api := &storyAPI{frames: frames, sessionStatus: http.StatusCreated, sessionBodies: make(chan map[string]interface{}, 1)}
	upgrader := websocket.Upgrader{}

	mux := http.NewServeMux()
	mux.HandleFunc("/chat/async", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		select {
		case api.sessionBodies <- body:
		default:
		}
		w.WriteHeader(api.sessionStatus)
		if api.sessionStatus >= 300 {
			w.Write([]byte(`{"error":"boom"}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"socketAddress": "ws" + strings.TrimPrefix(api.URL, "http") + "/ws"})
	})
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		api.wg.Add(1)
		defer api.wg.Done()
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for _, f := range api.frames {
			conn.WriteMessage(websocket.TextMessage, []byte(f))
		}
		if api.closeAfter {
			return
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
	mux.HandleFunc("/api/latest/stories/story", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		plan, _ := body["storyPlanConfig"].(map[string]interface{})
		if plan["responseLength"] == "1 page" {
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"created":{"id":"abstract-id","content":"..."}}`))
			return
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"created":{"id":"technical-id","content":"..."}}`))
	})
	mux.HandleFunc("/api/latest/stories/story/story-1", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.Write([]byte(`{"id":"story-1","content":"Existing story content."}`))
		case http.MethodPut:
			w.Write([]byte(`{"id":"story-1","content":"new"}`))
		}
	})

	api.Server = httptest.NewServer(mux)
	t.Cleanup(func() {
		api.Server.Close()
		api.wg.Wait()
	})
	return api
}

func TestStreamCommand_CompletesNaturally(t *testing.T) {
	api := newStoryAPI(t, []string{"not json", "", `{"type":"progress"}`, `{"type":"terminate"}`})
	te := newTestEnv(t, api.Server, nil)

	code := te.run("stream", "--story-id", "story-1", "--plan", "abstract")

	assert.Equal(t, 0, code, te.errOut.String())
	out := te.out.String()
	assert.Contains(t, out, "Connected to stream. Waiting for messages...")
	assert.Contains(t, out, "Received: not json")
	assert.Contains(t, out, `Received: {"type":"terminate"}`)
	assert.Contains(t, out, "Stream completed naturally (4 frames, 2 malformed)")

	body := <-api.sessionBodies
	assert.Equal(t, "story-1", body["story-id"])
	params, ok := body["user_config_params"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "1 page", params["responseLength"])
}

func TestStreamCommand_RemoteCloseExitsNonZero(t *testing.T) {
	api := newStoryAPI(t, []string{`{"type":"progress"}`})
	api.closeAfter = true
	te := newTestEnv(t, api.Server, nil)

	code := te.run("stream")

	assert.Equal(t, 1, code)
	assert.Contains(t, te.out.String(), "Stream closed by remote")
	assert.Contains(t, te.errOut.String(), ErrStreamIncomplete.Error())
}

func TestStreamCommand_CancelDuringSessionRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(10 * time.Second):
		}
	}))
	defer server.Close()
	te := newTestEnv(t, server, nil)
	token := te.container.Token()

	time.AfterFunc(100*time.Millisecond, te.container.Interrupt)
	start := time.Now()
	code := te.run("stream")

	assert.Equal(t, 0, code, te.errOut.String())
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.True(t, token.Cancelled())
	assert.Contains(t, te.out.String(), "Stream cancelled")
}

func TestStreamCommand_SessionFailure(t *testing.T) {
	api := newStoryAPI(t, nil)
	api.sessionStatus = http.StatusInternalServerError
	te := newTestEnv(t, api.Server, nil)

	code := te.run("stream")

	assert.Equal(t, 1, code)
	assert.Contains(t, te.errOut.String(), "API error 500")
}

func TestStreamCommand_CancelledBeforeStartExitsZero(t *testing.T) {
	api := newStoryAPI(t, nil)
	te := newTestEnv(t, api.Server, nil)
	te.container.Interrupt()

	code := te.run("stream")

	assert.Equal(t, 0, code, te.errOut.String())
	assert.Contains(t, te.out.String(), "Stream cancelled")
}

func TestStreamCommand_FlagValidation(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "unknown_plan", args: []string{"stream", "--plan", "poetry"}, wantErr: "poetry"},
		{name: "poll_interval_too_small", args: []string{"stream", "--poll-interval", "1ms"}, wantErr: "poll"},
		{name: "positional_args", args: []string{"stream", "extra"}, wantErr: "unknown command"},
		{name: "bad_log_level", args: []string{"stream", "--log-level", "loud"}, wantErr: "invalid log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			te := newTestEnv(t, nil, nil)
			code := te.run(tt.args...)
			assert.Equal(t, 1, code)
			assert.Contains(t, strings.ToLower(te.errOut.String()), strings.ToLower(tt.wantErr))
		})
	}
}

func TestConfigShow(t *testing.T) {
	te := newTestEnv(t, nil, map[string]string{
		"CAPITOL_API_URL":     "https://api.example.com/",
		"CAPITOL_AUTH_SCHEME": "bearer",
	})

	code := te.run("config", "show")

	assert.Equal(t, 0, code, te.errOut.String())
	out := te.out.String()
	assert.Contains(t, out, "https://api.example.com")
	assert.NotContains(t, out, "https://api.example.com/\n")
	assert.Contains(t, out, "1tNH...MmI=")
	assert.NotContains(t, out, testKey)
	assert.Contains(t, out, "bearer")
	assert.Contains(t, out, "50ms")
}

func TestConfigShow_FlagOverrides(t *testing.T) {
	te := newTestEnv(t, nil, map[string]string{"CAPITOL_API_URL": "https://env.example.com"})

	code := te.run("config", "show", "--api-url", "https://flag.example.com", "--api-key", "Bearer "+strings.Repeat("k", 40))

	assert.Equal(t, 0, code, te.errOut.String())
	assert.Contains(t, te.out.String(), "https://flag.example.com")
	assert.Contains(t, te.out.String(), "kkkk...kkkk")
}

func TestConfigShow_MissingKey(t *testing.T) {
	te := newTestEnv(t, nil, map[string]string{"CAPITOL_API_URL": "https://api.example.com", "CAPITOL_API_KEY": ""})

	code := te.run("config", "show")

	assert.Equal(t, 1, code)
	assert.Contains(t, te.errOut.String(), "CAPITOL_API_KEY")
}

func TestGenerateCommand(t *testing.T) {
	api := newStoryAPI(t, nil)
	te := newTestEnv(t, api.Server, nil)

	code := te.run("generate", "--interval", "0")

	assert.Equal(t, 0, code, te.errOut.String())
	out := te.out.String()
	assert.Contains(t, out, "Generating 2 stories...")
	assert.Contains(t, out, "abstract-id")
	assert.Contains(t, out, "technical-id")
}

func TestGenerateCommand_UnknownPlan(t *testing.T) {
	te := newTestEnv(t, nil, nil)

	code := te.run("generate", "--plan", "abstract,sonnet")

	assert.Equal(t, 1, code)
	assert.Contains(t, te.errOut.String(), "sonnet")
}

func TestStoryGet(t *testing.T) {
	api := newStoryAPI(t, nil)
	te := newTestEnv(t, api.Server, nil)

	code := te.run("story", "get", "story-1")

	assert.Equal(t, 0, code, te.errOut.String())
	assert.Equal(t, "Existing story content.\n", te.out.String())
}

func TestStoryUpdate(t *testing.T) {
	api := newStoryAPI(t, nil)
	te := newTestEnv(t, api.Server, nil)
	contentFile := filepath.Join(t.TempDir(), "story.md")
	require.NoError(t, os.WriteFile(contentFile, []byte("new"), 0o644))

	assert.Equal(t, 0, te.run("story", "update", "story-1", "--content", "new"), te.errOut.String())
	assert.Contains(t, te.out.String(), "Updated story story-1")

	assert.Equal(t, 0, te.run("story", "update", "story-1", "--content-file", contentFile), te.errOut.String())
}

func TestStoryUpdate_RequiresContent(t *testing.T) {
	te := newTestEnv(t, nil, nil)

	code := te.run("story", "update", "story-1")

	assert.Equal(t, 1, code)
	assert.Contains(t, te.errOut.String(), "--content")
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{in: "short", max: 10, want: "short"},
		{in: "exactly10!", max: 10, want: "exactly10!"},
		{in: "this is too long", max: 10, want: "this is..."},
		{in: "abcdef", max: 2, want: "ab"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, truncateString(tt.in, tt.max))
	}
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "512B", formatSize(512))
	assert.Equal(t, "2.0K", formatSize(2048))
	assert.Equal(t, "1.5M", formatSize(1024*1024*3/2))
}
