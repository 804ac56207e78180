package commandstructure

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"sync"
	"time"

	"github.com/jo-hoe/picundo/internal/backend/metrics"
)

const (
	OperationExecute = "execute"
	OperationUndo    = "undo"
	OperationRedo    = "redo"
)

// CommandController sequences commands and keeps their undo/redo history.
// History is held in memory only. Calls are serialized.
type CommandController struct {
	mu      sync.Mutex
	undo    []Command
	redo    []Command
	metrics *metrics.Collectors
}

// NewCommandController creates a controller with empty stacks. collectors may be nil.
func NewCommandController(collectors *metrics.Collectors) *CommandController {
	return &CommandController{
		metrics: collectors,
	}
}

// Execute runs the command, then discards the redo history and pushes the command
// onto the undo stack. On failure the stacks are left untouched.
// An instance may appear in the history once: executing a command that is already
// on either stack returns ErrCommandInHistory without running it.
func (c *CommandController) Execute(ctx context.Context, command Command) error {
	if command == nil {
		return fmt.Errorf("command cannot be nil")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inHistory(command) {
		return fmt.Errorf("%s: %w", command.Name(), ErrCommandInHistory)
	}

	if err := c.run(ctx, command, OperationExecute, command.Execute); err != nil {
		return err
	}

	c.redo = nil
	c.undo = append(c.undo, command)
	c.logDepths(command, OperationExecute)
	return nil
}

// Undo pops the most recent command from the undo stack, reverts it and pushes it
// onto the redo stack. With an empty undo stack it does nothing.
func (c *CommandController) Undo(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	command, ok := pop(&c.undo)
	if !ok {
		slog.Debug("CommandController: undo stack empty; nothing to undo")
		return nil
	}

	if err := c.run(ctx, command, OperationUndo, command.Undo); err != nil {
		return err
	}

	c.redo = append(c.redo, command)
	c.logDepths(command, OperationUndo)
	return nil
}

// Redo pops the most recently undone command, executes it again and pushes it back
// onto the undo stack. With an empty redo stack it does nothing.
func (c *CommandController) Redo(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	command, ok := pop(&c.redo)
	if !ok {
		slog.Debug("CommandController: redo stack empty; nothing to redo")
		return nil
	}

	if err := c.run(ctx, command, OperationRedo, command.Execute); err != nil {
		return err
	}

	c.undo = append(c.undo, command)
	c.logDepths(command, OperationRedo)
	return nil
}

// CanUndo reports whether the undo stack holds a command.
func (c *CommandController) CanUndo() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.undo) > 0
}

// CanRedo reports whether the redo stack holds a command.
func (c *CommandController) CanRedo() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.redo) > 0
}

// UndoStack returns a copy of the undo stack, bottom first.
func (c *CommandController) UndoStack() []Command {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Command(nil), c.undo...)
}

// RedoStack returns a copy of the redo stack, bottom first.
func (c *CommandController) RedoStack() []Command {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Command(nil), c.redo...)
}

func (c *CommandController) run(ctx context.Context, command Command, operation string, fn func(context.Context) error) error {
	start := time.Now()

	slog.Info("CommandController: starting operation",
		"operation", operation,
		"command_name", command.Name())

	err := fn(ctx)
	duration := time.Since(start)
	c.metrics.ObserveOperation(command.Name(), operation, duration, err)

	if err != nil {
		slog.Error("CommandController: operation failed",
			"operation", operation,
			"command_name", command.Name(),
			"duration_ms", duration.Milliseconds(),
			"error", err)
		return fmt.Errorf("%s %s failed: %w", operation, command.Name(), err)
	}

	slog.Info("CommandController: operation completed",
		"operation", operation,
		"command_name", command.Name(),
		"duration_ms", duration.Milliseconds())
	return nil
}

func (c *CommandController) logDepths(command Command, operation string) {
	slog.Debug("CommandController: history updated",
		"operation", operation,
		"command_name", command.Name(),
		"undo_depth", len(c.undo),
		"redo_depth", len(c.redo))
}

func (c *CommandController) inHistory(command Command) bool {
	if !reflect.TypeOf(command).Comparable() {
		return false
	}
	same := func(other Command) bool { return other == command }
	return slices.ContainsFunc(c.undo, same) || slices.ContainsFunc(c.redo, same)
}

func pop(stack *[]Command) (Command, bool) {
	s := *stack
	if len(s) == 0 {
		return nil, false
	}
	top := s[len(s)-1]
	s[len(s)-1] = nil
	*stack = s[:len(s)-1]
	return top, true
}
