package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jo-hoe/picundo/internal/backend/commandstructure"
	"github.com/jo-hoe/picundo/internal/backend/metrics"
)

// InstrumentedFetchCommand is a FetchCommand that logs timing and size figures
// for every URL and the whole batch, and records them as metrics.
type InstrumentedFetchCommand struct {
	*FetchCommand
	metrics *metrics.Collectors
}

// NewInstrumentedFetchCommand creates a new instrumented fetch command from configuration parameters
func NewInstrumentedFetchCommand(env *commandstructure.Environment, params map[string]any) (commandstructure.Command, error) {
	typedParams, err := NewFetchParamsFromMap(env, params)
	if err != nil {
		return nil, err
	}
	return newInstrumentedFetchCommand(env, typedParams)
}

// NewInstrumentedFetchCommandWithTargets creates a new instrumented fetch command from concrete targets
func NewInstrumentedFetchCommandWithTargets(env *commandstructure.Environment, targets []FetchTarget) (*InstrumentedFetchCommand, error) {
	if err := validateTargets(targets); err != nil {
		return nil, err
	}
	return newInstrumentedFetchCommand(env, &FetchParams{Targets: append([]FetchTarget(nil), targets...)})
}

func newInstrumentedFetchCommand(env *commandstructure.Environment, params *FetchParams) (*InstrumentedFetchCommand, error) {
	base, err := newFetchCommand("InstrumentedFetchCommand", env, params)
	if err != nil {
		return nil, err
	}
	cmd := &InstrumentedFetchCommand{
		FetchCommand: base,
		metrics:      env.Metrics,
	}
	base.observe = cmd.observeFetch
	return cmd, nil
}

func (c *InstrumentedFetchCommand) observeFetch(url string, size int, duration time.Duration) {
	slog.Info("InstrumentedFetchCommand: fetched",
		"url", url,
		"size_bytes", size,
		"duration_ms", duration.Milliseconds())
	c.metrics.ObserveFetch(c.name, size, duration)
}

// Execute runs the fetch and logs the batch totals
func (c *InstrumentedFetchCommand) Execute(ctx context.Context) error {
	start := time.Now()
	total, err := c.execute(ctx)
	duration := time.Since(start)
	if err != nil {
		slog.Error("InstrumentedFetchCommand: batch failed",
			"target_count", len(c.params.Targets),
			"duration_ms", duration.Milliseconds(),
			"error", err)
		return err
	}

	slog.Info("InstrumentedFetchCommand: batch completed",
		"target_count", len(c.params.Targets),
		"total_size_bytes", total,
		"duration_ms", duration.Milliseconds())
	return nil
}

// Redo re-runs the instrumented fetch
func (c *InstrumentedFetchCommand) Redo(ctx context.Context) error {
	return c.Execute(ctx)
}

func init() {
	if err := commandstructure.DefaultRegistry.Register("InstrumentedFetchCommand", NewInstrumentedFetchCommand); err != nil {
		panic(fmt.Sprintf("failed to register InstrumentedFetchCommand: %v", err))
	}
}
