package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jo-hoe/picundo/internal/backend/commandstructure"
	"github.com/jo-hoe/picundo/internal/backend/metrics"
	"github.com/jo-hoe/picundo/internal/backend/storage"
	"github.com/jo-hoe/picundo/internal/backend/webclient"

	// registers all commands in the default registry
	_ "github.com/jo-hoe/picundo/internal/backend/commands"
)

const (
	// ScriptUndo and ScriptRedo are reserved command names in command scripts
	ScriptUndo = "undo"
	ScriptRedo = "redo"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrInvalidParams  = errors.New("invalid command parameters")
)

// History lists command names of both stacks, bottom first
type History struct {
	Undo []string `json:"undo"`
	Redo []string `json:"redo"`
}

type CoreService struct {
	config     *ServiceConfig
	store      storage.FileStore
	metrics    *metrics.Collectors
	env        *commandstructure.Environment
	controller *commandstructure.CommandController
	registry   *commandstructure.CommandRegistry
}

func NewCoreService(config *ServiceConfig) (*CoreService, error) {
	store, err := storage.NewFileStore(config.Storage.Type, config.Storage.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize file store: %w", err)
	}

	collectors := metrics.NewCollectors()
	env := &commandstructure.Environment{
		Store:          store,
		Client:         webclient.NewNetHTTPClient(nil, config.Fetch.Timeout),
		Workspace:      config.Workspace,
		MaxConcurrency: config.Fetch.MaxConcurrency,
		Now:            time.Now,
		Metrics:        collectors,
	}

	slog.Info("core service initialized",
		"storage_type", config.Storage.Type,
		"workspace", config.Workspace,
		"max_concurrency", config.Fetch.MaxConcurrency)

	return &CoreService{
		config:     config,
		store:      store,
		metrics:    collectors,
		env:        env,
		controller: commandstructure.NewCommandController(collectors),
		registry:   commandstructure.DefaultRegistry,
	}, nil
}

// CreateCommand builds a registered command with the service environment
func (service *CoreService) CreateCommand(name string, params map[string]any) (commandstructure.Command, error) {
	if !service.registry.IsRegistered(name) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	command, err := service.registry.Create(name, service.env, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	return command, nil
}

// ExecuteCommand creates a command and runs it through the controller
func (service *CoreService) ExecuteCommand(ctx context.Context, name string, params map[string]any) error {
	command, err := service.CreateCommand(name, params)
	if err != nil {
		slog.Error("failed to create command", "command_name", name, "error", err)
		return err
	}
	return service.controller.Execute(ctx, command)
}

func (service *CoreService) Undo(ctx context.Context) error {
	return service.controller.Undo(ctx)
}

func (service *CoreService) Redo(ctx context.Context) error {
	return service.controller.Redo(ctx)
}

func (service *CoreService) History() History {
	return History{
		Undo: commandNames(service.controller.UndoStack()),
		Redo: commandNames(service.controller.RedoStack()),
	}
}

func (service *CoreService) RegisteredCommands() []string {
	return service.registry.GetRegisteredNames()
}

// RunCommands executes a command script in order. Entries named undo or redo
// drive the controller directly. The first failure stops the script.
func (service *CoreService) RunCommands(ctx context.Context, commandConfigs []CommandConfig) error {
	start := time.Now()
	slog.Info("starting command script", "command_count", len(commandConfigs))

	for i, config := range commandConfigs {
		commandStart := time.Now()
		slog.Debug("running script entry",
			"index", i,
			"command_name", config.Name,
			"params", config.Params)

		var err error
		switch config.Name {
		case ScriptUndo:
			err = service.Undo(ctx)
		case ScriptRedo:
			err = service.Redo(ctx)
		default:
			err = service.ExecuteCommand(ctx, config.Name, config.Params)
		}
		if err != nil {
			slog.Error("script entry failed",
				"index", i,
				"command_name", config.Name,
				"error", err)
			return fmt.Errorf("script entry at index %d (%s) failed: %w", i, config.Name, err)
		}

		slog.Info("script entry completed",
			"index", i,
			"command_name", config.Name,
			"duration_ms", time.Since(commandStart).Milliseconds())
	}

	history := service.History()
	slog.Info("command script completed",
		"total_duration_ms", time.Since(start).Milliseconds(),
		"command_count", len(commandConfigs),
		"undo_depth", len(history.Undo),
		"redo_depth", len(history.Redo))
	return nil
}

func (service *CoreService) Metrics() *metrics.Collectors {
	return service.metrics
}

func (service *CoreService) Store() storage.FileStore {
	return service.store
}

func (service *CoreService) Close() error {
	if err := service.store.Close(); err != nil {
		return fmt.Errorf("failed to close file store: %w", err)
	}
	return nil
}

func commandNames(commands []commandstructure.Command) []string {
	names := make([]string, 0, len(commands))
	for _, c := range commands {
		names = append(names, c.Name())
	}
	return names
}
