package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/evanschultz/kanboard/internal/adapters/server/common"
	"github.com/evanschultz/kanboard/internal/app"
	"go.uber.org/goleak"
)

// TestMain fails the package when a test leaks server goroutines.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// recordingLogger captures serve lifecycle messages.
type recordingLogger struct {
	mu       sync.Mutex
	messages []string
	ready    chan struct{}
}

// Info records one message and signals readiness once.
func (l *recordingLogger) Info(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, msg)
	if l.ready != nil {
		close(l.ready)
		l.ready = nil
	}
}

func testDeps() Dependencies {
	session := app.NewSession(app.UUIDGenerator, app.SessionConfig{SeedColumns: []string{"To Do"}})
	return Dependencies{Board: common.NewSessionAdapter(session)}
}

func TestNewHandlerRoutes(t *testing.T) {
	handler, cfg, err := NewHandler(Config{APIEndpoint: "api/v1/", MCPEndpoint: ""}, testDeps())
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	if cfg.APIEndpoint != "/api/v1" || cfg.MCPEndpoint != "/mcp" || cfg.HTTPBind != "127.0.0.1:8080" {
		t.Fatalf("unexpected normalized config %#v", cfg)
	}

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
			t.Fatalf("%s = %d %q", path, rec.Code, rec.Body.String())
		}
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/board", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("board status = %d", rec.Code)
	}
	var state common.BoardState
	if err := json.NewDecoder(rec.Body).Decode(&state); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(state.Board.Columns) != 1 || state.Board.Columns[0].Title != "To Do" {
		t.Fatalf("unexpected board %#v", state.Board)
	}
}

func TestNewHandlerRejectsBadConfig(t *testing.T) {
	if _, _, err := NewHandler(Config{APIEndpoint: "/x", MCPEndpoint: "x/"}, testDeps()); err == nil {
		t.Fatal("expected endpoint collision error")
	}
	if _, _, err := NewHandler(Config{}, Dependencies{}); err == nil {
		t.Fatal("expected missing board error")
	}
}

func TestRunShutsDownOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	logger := &recordingLogger{ready: make(chan struct{})}
	ready := logger.ready
	deps := testDeps()
	deps.Logger = logger

	errCh := make(chan error, 1)
	go func() {
		errCh <- Run(ctx, Config{HTTPBind: "127.0.0.1:0"}, deps)
	}()
	select {
	case <-ready:
	case <-time.After(5 * time.Second):
		t.Fatal("server did not start")
	}
	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestRunReportsListenFailure(t *testing.T) {
	err := Run(context.Background(), Config{HTTPBind: "256.0.0.1:99999"}, testDeps())
	if err == nil || !strings.Contains(err.Error(), "listen") {
		t.Fatalf("expected listen error, got %v", err)
	}
}
