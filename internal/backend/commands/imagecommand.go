package commands

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jo-hoe/picundo/internal/backend/commandstructure"
	"github.com/jo-hoe/picundo/internal/backend/storage"
)

// imageTransform turns a decoded image into its transformed version.
type imageTransform func(img image.Image) (image.Image, error)

// imageCommand is the shared base of all image transform commands. It reads every
// configured path, keeps the original bytes for Undo, applies the transform and
// overwrites the files.
type imageCommand struct {
	name        string
	paths       []string
	store       storage.FileStore
	concurrency int
	transform   imageTransform

	// decode and targetFormat may be overridden by variants
	decode       func(data []byte) (image.Image, string, error)
	targetFormat func(sourceFormat string) string
	quality      int

	mu        sync.Mutex
	originals map[string][]byte
}

func newImageCommand(name string, env *commandstructure.Environment, paths []string, transform imageTransform) (*imageCommand, error) {
	if env == nil || env.Store == nil {
		return nil, fmt.Errorf("%s requires a file store", name)
	}
	if err := validatePaths(paths); err != nil {
		return nil, err
	}
	return &imageCommand{
		name:         name,
		paths:        append([]string(nil), paths...),
		store:        env.Store,
		concurrency:  env.Concurrency(),
		transform:    transform,
		decode:       decodeImage,
		targetFormat: func(sourceFormat string) string { return sourceFormat },
	}, nil
}

// pathsFromParams reads the required "paths" parameter.
func pathsFromParams(params map[string]any) ([]string, error) {
	if err := commandstructure.ValidateRequiredParams(params, []string{"paths"}); err != nil {
		return nil, err
	}
	paths, err := commandstructure.GetStringSliceParam(params, "paths")
	if err != nil {
		return nil, err
	}
	if err := validatePaths(paths); err != nil {
		return nil, err
	}
	return paths, nil
}

func validatePaths(paths []string) error {
	if len(paths) == 0 {
		return fmt.Errorf("at least one path must be specified")
	}
	seen := make(map[string]bool, len(paths))
	for i, p := range paths {
		if p == "" {
			return fmt.Errorf("path at index %d is empty", i)
		}
		if seen[p] {
			return fmt.Errorf("duplicate path: %s", p)
		}
		seen[p] = true
	}
	return nil
}

// Name returns the command name
func (c *imageCommand) Name() string {
	return c.name
}

// Execute transforms every configured image in place. The original bytes are captured
// on each call; a failure anywhere aborts before any file is written.
func (c *imageCommand) Execute(ctx context.Context) error {
	start := time.Now()
	slog.Debug(c.name+": starting", "path_count", len(c.paths))

	originals := make([][]byte, len(c.paths))
	processed := make([][]byte, len(c.paths))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, path := range c.paths {
		g.Go(func() error {
			data, err := c.store.Read(gCtx, path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}
			out, err := c.process(data)
			if err != nil {
				return fmt.Errorf("failed to process %s: %w", path, err)
			}
			originals[i] = data
			processed[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		slog.Error(c.name+": processing failed", "error", err)
		return err
	}

	snapshot := make(map[string][]byte, len(c.paths))
	for i, path := range c.paths {
		snapshot[path] = originals[i]
	}
	c.mu.Lock()
	c.originals = snapshot
	c.mu.Unlock()

	if err := c.writeAll(ctx, c.paths, processed); err != nil {
		slog.Error(c.name+": writing results failed", "error", err)
		return err
	}

	slog.Info(c.name+": completed",
		"path_count", len(c.paths),
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

// Redo re-applies the transform to the current file contents
func (c *imageCommand) Redo(ctx context.Context) error {
	return c.Execute(ctx)
}

// Undo writes back the bytes captured by the most recent Execute.
func (c *imageCommand) Undo(ctx context.Context) error {
	c.mu.Lock()
	snapshot := c.originals
	c.mu.Unlock()

	if snapshot == nil {
		return commandstructure.ErrNothingToUndo
	}

	data := make([][]byte, len(c.paths))
	for i, path := range c.paths {
		data[i] = snapshot[path]
	}
	if err := c.writeAll(ctx, c.paths, data); err != nil {
		slog.Error(c.name+": restoring originals failed", "error", err)
		return err
	}

	c.mu.Lock()
	c.originals = nil
	c.mu.Unlock()

	slog.Info(c.name+": restored originals", "path_count", len(c.paths))
	return nil
}

func (c *imageCommand) process(data []byte) ([]byte, error) {
	img, sourceFormat, err := c.decode(data)
	if err != nil {
		return nil, err
	}
	result, err := c.transform(img)
	if err != nil {
		return nil, err
	}
	out, written, err := encodeImage(result, c.targetFormat(sourceFormat), c.quality)
	if err != nil {
		return nil, err
	}
	slog.Debug(c.name+": image processed",
		"source_format", sourceFormat,
		"output_format", written,
		"input_size_bytes", len(data),
		"output_size_bytes", len(out))
	return out, nil
}

func (c *imageCommand) writeAll(ctx context.Context, paths []string, data [][]byte) error {
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, path := range paths {
		g.Go(func() error {
			if err := c.store.Write(gCtx, path, data[i]); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}
			return nil
		})
	}
	return g.Wait()
}
