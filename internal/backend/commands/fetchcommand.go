package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jo-hoe/picundo/internal/backend/commandstructure"
	"github.com/jo-hoe/picundo/internal/backend/storage"
	"github.com/jo-hoe/picundo/internal/backend/webclient"
	"github.com/jo-hoe/picundo/internal/common"
)

const defaultFetchExtension = ".jpg"

// FetchTarget pairs a source URL with its destination path
type FetchTarget struct {
	Path string
	URL  string
}

// FetchParams represents typed parameters for fetch commands
type FetchParams struct {
	Targets []FetchTarget
}

// NewFetchParamsFromMap creates FetchParams from a generic map. Each entry of
// "targets" needs a url and either a path or a name (plus optional ext) from which
// a timestamped path inside the workspace is built.
func NewFetchParamsFromMap(env *commandstructure.Environment, params map[string]any) (*FetchParams, error) {
	if err := commandstructure.ValidateRequiredParams(params, []string{"targets"}); err != nil {
		return nil, err
	}
	entries, err := commandstructure.GetMapSliceParam(params, "targets")
	if err != nil {
		return nil, err
	}

	now := env.Clock()()
	workspace := ""
	if env != nil {
		workspace = env.Workspace
	}

	targets := make([]FetchTarget, 0, len(entries))
	for i, entry := range entries {
		url := commandstructure.GetStringParam(entry, "url", "")
		if url == "" {
			return nil, fmt.Errorf("target at index %d has no url", i)
		}
		path := commandstructure.GetStringParam(entry, "path", "")
		if path == "" {
			name := commandstructure.GetStringParam(entry, "name", "")
			if name == "" {
				name = uuid.NewString()[:8]
			}
			ext := commandstructure.GetStringParam(entry, "ext", defaultFetchExtension)
			path = common.BuildDestinationPath(workspace, now, name, ext)
		}
		targets = append(targets, FetchTarget{Path: path, URL: url})
	}

	if err := validateTargets(targets); err != nil {
		return nil, err
	}
	return &FetchParams{Targets: targets}, nil
}

func validateTargets(targets []FetchTarget) error {
	if len(targets) == 0 {
		return fmt.Errorf("at least one target must be specified")
	}
	seen := make(map[string]bool, len(targets))
	for i, t := range targets {
		if t.URL == "" {
			return fmt.Errorf("target at index %d has no url", i)
		}
		if t.Path == "" {
			return fmt.Errorf("target at index %d has no path", i)
		}
		if seen[t.Path] {
			return fmt.Errorf("duplicate destination path: %s", t.Path)
		}
		seen[t.Path] = true
	}
	return nil
}

// fileSnapshot is the state of a destination path before a fetch wrote it
type fileSnapshot struct {
	existed bool
	data    []byte
}

// fetchObserver is notified about every completed URL fetch
type fetchObserver func(url string, size int, duration time.Duration)

// FetchCommand downloads all targets concurrently and then persists them concurrently.
// Undo restores files that existed before and deletes files that did not.
type FetchCommand struct {
	name        string
	params      *FetchParams
	client      webclient.Fetcher
	store       storage.FileStore
	concurrency int
	observe     fetchObserver

	mu     sync.Mutex
	before map[string]fileSnapshot
}

// NewFetchCommand creates a new fetch command from configuration parameters
func NewFetchCommand(env *commandstructure.Environment, params map[string]any) (commandstructure.Command, error) {
	typedParams, err := NewFetchParamsFromMap(env, params)
	if err != nil {
		return nil, err
	}
	return newFetchCommand("FetchCommand", env, typedParams)
}

// NewFetchCommandWithTargets creates a new fetch command from concrete targets
func NewFetchCommandWithTargets(env *commandstructure.Environment, targets []FetchTarget) (*FetchCommand, error) {
	if err := validateTargets(targets); err != nil {
		return nil, err
	}
	return newFetchCommand("FetchCommand", env, &FetchParams{Targets: append([]FetchTarget(nil), targets...)})
}

func newFetchCommand(name string, env *commandstructure.Environment, params *FetchParams) (*FetchCommand, error) {
	if env == nil || env.Store == nil {
		return nil, fmt.Errorf("%s requires a file store", name)
	}
	if env.Client == nil {
		return nil, fmt.Errorf("%s requires a web client", name)
	}
	return &FetchCommand{
		name:        name,
		params:      params,
		client:      env.Client,
		store:       env.Store,
		concurrency: env.Concurrency(),
	}, nil
}

// Name returns the command name
func (c *FetchCommand) Name() string {
	return c.name
}

// GetParams returns the typed parameters
func (c *FetchCommand) GetParams() *FetchParams {
	return c.params
}

// Execute fetches every target, then writes every payload. A single failed fetch
// aborts the batch before anything is written.
func (c *FetchCommand) Execute(ctx context.Context) error {
	_, err := c.execute(ctx)
	return err
}

// Redo fetches and writes all targets again
func (c *FetchCommand) Redo(ctx context.Context) error {
	return c.Execute(ctx)
}

// execute returns the total number of bytes fetched.
func (c *FetchCommand) execute(ctx context.Context) (int, error) {
	targets := c.params.Targets
	slog.Debug(c.name+": fetching targets", "target_count", len(targets))

	payloads, err := c.fetchAll(ctx, targets)
	if err != nil {
		slog.Error(c.name+": fetch failed", "error", err)
		return 0, err
	}

	snapshot, err := c.capture(ctx, targets)
	if err != nil {
		slog.Error(c.name+": capturing previous files failed", "error", err)
		return 0, err
	}
	c.mu.Lock()
	c.before = snapshot
	c.mu.Unlock()

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, t := range targets {
		g.Go(func() error {
			if err := c.store.Write(gCtx, t.Path, payloads[i]); err != nil {
				return fmt.Errorf("failed to write %s: %w", t.Path, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		slog.Error(c.name+": write failed", "error", err)
		return 0, err
	}

	total := 0
	for _, p := range payloads {
		total += len(p)
	}
	slog.Info(c.name+": targets persisted", "target_count", len(targets), "total_size_bytes", total)
	return total, nil
}

func (c *FetchCommand) fetchAll(ctx context.Context, targets []FetchTarget) ([][]byte, error) {
	payloads := make([][]byte, len(targets))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, t := range targets {
		g.Go(func() error {
			start := time.Now()
			body, err := c.client.Get(gCtx, t.URL)
			if err != nil {
				return fmt.Errorf("failed to fetch %s: %w", t.URL, err)
			}
			payloads[i] = body
			if c.observe != nil {
				c.observe(t.URL, len(body), time.Since(start))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return payloads, nil
}

func (c *FetchCommand) capture(ctx context.Context, targets []FetchTarget) (map[string]fileSnapshot, error) {
	snapshots := make([]fileSnapshot, len(targets))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, t := range targets {
		g.Go(func() error {
			data, err := c.store.Read(gCtx, t.Path)
			if errors.Is(err, storage.ErrNotFound) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", t.Path, err)
			}
			snapshots[i] = fileSnapshot{existed: true, data: data}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]fileSnapshot, len(targets))
	for i, t := range targets {
		out[t.Path] = snapshots[i]
	}
	return out, nil
}

// Undo puts every destination back into its state before the most recent Execute
func (c *FetchCommand) Undo(ctx context.Context) error {
	c.mu.Lock()
	snapshot := c.before
	c.mu.Unlock()

	if snapshot == nil {
		return commandstructure.ErrNothingToUndo
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for path, before := range snapshot {
		g.Go(func() error {
			if before.existed {
				if err := c.store.Write(gCtx, path, before.data); err != nil {
					return fmt.Errorf("failed to restore %s: %w", path, err)
				}
				return nil
			}
			// a write that never happened leaves nothing to delete
			if err := c.store.Delete(gCtx, path); err != nil && !errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("failed to delete %s: %w", path, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		slog.Error(c.name+": undo failed", "error", err)
		return err
	}

	c.mu.Lock()
	c.before = nil
	c.mu.Unlock()

	slog.Info(c.name+": undone", "target_count", len(snapshot))
	return nil
}

func init() {
	if err := commandstructure.DefaultRegistry.Register("FetchCommand", NewFetchCommand); err != nil {
		panic(fmt.Sprintf("failed to register FetchCommand: %v", err))
	}
}
