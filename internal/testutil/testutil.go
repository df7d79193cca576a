// Package testutil provides shared test helpers: a fake note-store server,
// temporary settings databases and graph directories.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/starford/quickseq/internal/rpc"
	"github.com/starford/quickseq/internal/settings"
)

// Call records one request received by NoteStore.
type Call struct {
	Method string
	Args   []json.RawMessage
	Auth   string
}

// Arg decodes argument i into v.
func (c Call) Arg(i int, v any) error {
	return json.Unmarshal(c.Args[i], v)
}

// Handler answers one remote method. Returning a non-zero status makes the
// server reply with that status and no body.
type Handler func(args []json.RawMessage) (result any, status int)

// NoteStore is an httptest server speaking the note-store RPC envelope.
type NoteStore struct {
	Server *httptest.Server
	Token  string

	mu       sync.Mutex
	calls    []Call
	handlers map[string]Handler
}

// NewNoteStore starts a fake note-store closed automatically at test end.
func NewNoteStore(t *testing.T) *NoteStore {
	t.Helper()
	s := &NoteStore{Token: "test-token", handlers: make(map[string]Handler)}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Server.Close)
	return s
}

func (s *NoteStore) serve(w http.ResponseWriter, r *http.Request) {
	var env struct {
		Method string            `json:"method"`
		Args   []json.RawMessage `json:"args"`
	}
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	auth := r.Header.Get("Authorization")

	s.mu.Lock()
	s.calls = append(s.calls, Call{Method: env.Method, Args: env.Args, Auth: auth})
	h := s.handlers[env.Method]
	s.mu.Unlock()

	if auth != "Bearer "+s.Token {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if h == nil {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("null"))
		return
	}
	result, status := h(env.Args)
	if status != 0 {
		w.WriteHeader(status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(result)
}

// Handle installs h for method.
func (s *NoteStore) Handle(method string, h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[method] = h
}

// Reply makes method always answer with v.
func (s *NoteStore) Reply(method string, v any) {
	s.Handle(method, func([]json.RawMessage) (any, int) { return v, 0 })
}

// Fail makes method always answer with status.
func (s *NoteStore) Fail(method string, status int) {
	s.Handle(method, func([]json.RawMessage) (any, int) { return nil, status })
}

// Calls returns a copy of every recorded call.
func (s *NoteStore) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// CallsTo returns the recorded calls for method.
func (s *NoteStore) CallsTo(method string) []Call {
	var out []Call
	for _, c := range s.Calls() {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// Client returns an rpc.Client pointed at the fake server.
func (s *NoteStore) Client() *rpc.Client {
	return rpc.New("127.0.0.1", 0, s.Token, rpc.WithURL(s.Server.URL+"/api"), rpc.WithHTTPClient(s.Server.Client()))
}

// TestSettings creates a temporary settings database that is automatically cleaned up.
func TestSettings(t *testing.T) *settings.Store {
	t.Helper()
	dbFile, err := os.CreateTemp("", "quickseq-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	st, err := settings.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

// TestGraph creates a temporary graph directory with pages/ and assets/.
func TestGraph(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, sub := range []string{"pages", "assets", "journals"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}
