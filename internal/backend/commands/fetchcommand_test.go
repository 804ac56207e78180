package commands

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jo-hoe/picundo/internal/backend/commandstructure"
	"github.com/jo-hoe/picundo/internal/backend/storage"
	"github.com/jo-hoe/picundo/internal/backend/webclient"
)

// newImageServer serves /<name> with the body "payload-<name>" and /missing with 404.
func newImageServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("payload-" + strings.TrimPrefix(r.URL.Path, "/")))
	}))
	t.Cleanup(server.Close)
	return server
}

func newFetchEnvironment(t *testing.T) *commandstructure.Environment {
	t.Helper()
	env := newTestEnvironment(t)
	env.Client = webclient.NewNetHTTPClient(nil, 5*time.Second)
	return env
}

func assertNotExists(t *testing.T, env *commandstructure.Environment, path string) {
	t.Helper()
	exists, err := env.Store.Exists(context.Background(), path)
	if err != nil {
		t.Fatalf("Exists(%s) failed: %v", path, err)
	}
	if exists {
		t.Errorf("Expected %s not to exist", path)
	}
}

func TestFetchCommand_ExecuteUndoRedoThroughController(t *testing.T) {
	ctx := context.Background()
	server := newImageServer(t, nil)
	env := newFetchEnvironment(t)
	controller := commandstructure.NewCommandController(nil)

	fetchA, err := NewFetchCommandWithTargets(env, []FetchTarget{{Path: "a.jpg", URL: server.URL + "/a"}})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if err := controller.Execute(ctx, fetchA); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if got := string(readTestFile(t, env, "a.jpg")); got != "payload-a" {
		t.Errorf("Expected payload-a, got %q", got)
	}

	if err := controller.Undo(ctx); err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	// the file did not exist before the fetch
	assertNotExists(t, env, "a.jpg")

	if err := controller.Redo(ctx); err != nil {
		t.Fatalf("Redo failed: %v", err)
	}
	if got := string(readTestFile(t, env, "a.jpg")); got != "payload-a" {
		t.Errorf("Expected payload-a after redo, got %q", got)
	}
	if !controller.CanUndo() {
		t.Error("Expected undo to be available after redo")
	}
	if controller.CanRedo() {
		t.Error("Expected redo stack to be empty after redo")
	}
}

func TestFetchCommand_UndoRestoresPreviousFile(t *testing.T) {
	ctx := context.Background()
	server := newImageServer(t, nil)
	env := newFetchEnvironment(t)
	writeTestFile(t, env, "a.jpg", []byte("old"))

	cmd, err := NewFetchCommandWithTargets(env, []FetchTarget{
		{Path: "a.jpg", URL: server.URL + "/a"},
		{Path: "sub/b.jpg", URL: server.URL + "/b"},
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if err := cmd.Execute(ctx); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if got := string(readTestFile(t, env, "a.jpg")); got != "payload-a" {
		t.Errorf("Expected payload-a, got %q", got)
	}
	if got := string(readTestFile(t, env, "sub/b.jpg")); got != "payload-b" {
		t.Errorf("Expected payload-b, got %q", got)
	}

	if err := cmd.Undo(ctx); err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	if got := string(readTestFile(t, env, "a.jpg")); got != "old" {
		t.Errorf("Expected previous content to be restored, got %q", got)
	}
	if _, err := env.Store.Read(ctx, "sub/b.jpg"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for sub/b.jpg, got %v", err)
	}

	if err := cmd.Undo(ctx); !errors.Is(err, commandstructure.ErrNothingToUndo) {
		t.Errorf("Expected ErrNothingToUndo on second undo, got %v", err)
	}
}

func TestFetchCommand_FailedFetchWritesNothing(t *testing.T) {
	ctx := context.Background()
	server := newImageServer(t, nil)
	env := newFetchEnvironment(t)
	controller := commandstructure.NewCommandController(nil)

	cmd, err := NewFetchCommandWithTargets(env, []FetchTarget{
		{Path: "a.jpg", URL: server.URL + "/a"},
		{Path: "missing.jpg", URL: server.URL + "/missing"},
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	err = controller.Execute(ctx, cmd)
	if !errors.Is(err, webclient.ErrUnexpectedStatus) {
		t.Fatalf("Expected ErrUnexpectedStatus, got %v", err)
	}

	// no write starts before every fetch succeeded
	assertNotExists(t, env, "a.jpg")
	if controller.CanUndo() {
		t.Error("Expected failed command not to be recorded")
	}
}

func TestFetchCommand_RedoFetchesAgain(t *testing.T) {
	ctx := context.Background()
	var hits atomic.Int32
	server := newImageServer(t, &hits)
	env := newFetchEnvironment(t)

	cmd, err := NewFetchCommandWithTargets(env, []FetchTarget{{Path: "a.jpg", URL: server.URL + "/a"}})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if err := cmd.Execute(ctx); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if err := cmd.Undo(ctx); err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	if err := cmd.Redo(ctx); err != nil {
		t.Fatalf("Redo failed: %v", err)
	}

	if got := hits.Load(); got != 2 {
		t.Errorf("Expected 2 requests, got %d", got)
	}
}

func TestNewFetchParamsFromMap(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 13, 45, 7, 0, time.UTC)
	env := &commandstructure.Environment{
		Workspace: "images",
		Now:       func() time.Time { return fixed },
	}

	t.Run("explicit path", func(t *testing.T) {
		p, err := NewFetchParamsFromMap(env, map[string]any{
			"targets": []any{map[string]any{"url": "http://example.com/a", "path": "x/a.png"}},
		})
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(p.Targets) != 1 || p.Targets[0] != (FetchTarget{Path: "x/a.png", URL: "http://example.com/a"}) {
			t.Errorf("Unexpected targets: %+v", p.Targets)
		}
	})

	t.Run("name and ext", func(t *testing.T) {
		p, err := NewFetchParamsFromMap(env, map[string]any{
			"targets": []any{map[string]any{"url": "http://example.com/a", "name": "cat", "ext": "png"}},
		})
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		expected := filepath.Join("images", "2024-05-01-13-45-07+0000-cat.png")
		if p.Targets[0].Path != expected {
			t.Errorf("Expected path %s, got %s", expected, p.Targets[0].Path)
		}
	})

	t.Run("generated name", func(t *testing.T) {
		p, err := NewFetchParamsFromMap(env, map[string]any{
			"targets": []any{map[string]any{"url": "http://example.com/a"}},
		})
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		path := p.Targets[0].Path
		if !strings.HasPrefix(path, filepath.Join("images", "2024-05-01-13-45-07+0000-")) {
			t.Errorf("Expected timestamped prefix, got %s", path)
		}
		if !strings.HasSuffix(path, defaultFetchExtension) {
			t.Errorf("Expected suffix %s, got %s", defaultFetchExtension, path)
		}
	})

	t.Run("errors", func(t *testing.T) {
		tests := map[string]map[string]any{
			"missing targets": {},
			"empty targets":   {"targets": []any{}},
			"missing url":     {"targets": []any{map[string]any{"path": "a.png"}}},
			"duplicate path": {"targets": []any{
				map[string]any{"url": "http://example.com/a", "path": "a.png"},
				map[string]any{"url": "http://example.com/b", "path": "a.png"},
			}},
		}
		for name, params := range tests {
			if _, err := NewFetchParamsFromMap(env, params); err == nil {
				t.Errorf("%s: expected error, got nil", name)
			}
		}
	})
}

func TestNewFetchCommand_RequiresCollaborators(t *testing.T) {
	targets := []FetchTarget{{Path: "a.jpg", URL: "http://example.com/a"}}

	if _, err := NewFetchCommandWithTargets(&commandstructure.Environment{Client: webclient.NewNetHTTPClient(nil, 0)}, targets); err == nil {
		t.Error("Expected error without a store")
	}
	if _, err := NewFetchCommandWithTargets(newTestEnvironment(t), targets); err == nil {
		t.Error("Expected error without a client")
	}
}

func TestFetchCommand_CanceledContext(t *testing.T) {
	server := newImageServer(t, nil)
	env := newFetchEnvironment(t)
	cmd, err := NewFetchCommandWithTargets(env, []FetchTarget{{Path: "a.jpg", URL: server.URL + "/a"}})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := cmd.Execute(ctx); err == nil {
		t.Fatal("Expected error for canceled context")
	}
	assertNotExists(t, env, "a.jpg")
}
