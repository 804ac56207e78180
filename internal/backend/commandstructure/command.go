package commandstructure

import (
	"context"
	"errors"
)

// ErrNothingToUndo is returned by a command's Undo when it holds no captured
// before state, i.e. it was never executed successfully.
var ErrNothingToUndo = errors.New("nothing to undo")

// ErrCommandInHistory is returned when a command instance that is already on the
// undo or redo stack is executed again. Create a new command to repeat an operation.
var ErrCommandInHistory = errors.New("command already in history")

// Command is a reversible operation.
//
// Execute applies the command's effect and captures whatever before state Undo
// needs. Redo re-applies the effect. Undo restores the state captured by the most
// recent successful Execute or Redo.
type Command interface {
	Name() string
	Execute(ctx context.Context) error
	Redo(ctx context.Context) error
	Undo(ctx context.Context) error
}
