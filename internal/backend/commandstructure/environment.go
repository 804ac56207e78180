package commandstructure

import (
	"time"

	"github.com/jo-hoe/picundo/internal/backend/metrics"
	"github.com/jo-hoe/picundo/internal/backend/storage"
	"github.com/jo-hoe/picundo/internal/backend/webclient"
)

// Environment carries the collaborators and configuration commands are built with.
type Environment struct {
	Store          storage.FileStore
	Client         webclient.Fetcher
	Workspace      string
	MaxConcurrency int
	Now            func() time.Time
	Metrics        *metrics.Collectors
}

// Clock returns env.Now, falling back to time.Now.
func (env *Environment) Clock() func() time.Time {
	if env == nil || env.Now == nil {
		return time.Now
	}
	return env.Now
}

// Concurrency returns the fan-out limit; values <= 0 mean unlimited (-1).
func (env *Environment) Concurrency() int {
	if env == nil || env.MaxConcurrency <= 0 {
		return -1
	}
	return env.MaxConcurrency
}
