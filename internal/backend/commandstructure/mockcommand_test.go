package commandstructure

import (
	"context"
	"fmt"
)

// mockCommand records its calls and keeps a shared "state" string so tests can
// check the controller's ordering guarantees.
type mockCommand struct {
	name      string
	state     *[]string
	executeFn func(ctx context.Context) error
	undoFn    func(ctx context.Context) error
	executed  int
	undone    int
}

func (m *mockCommand) Name() string {
	return m.name
}

func (m *mockCommand) Execute(ctx context.Context) error {
	if m.executeFn != nil {
		if err := m.executeFn(ctx); err != nil {
			return err
		}
	}
	m.executed++
	if m.state != nil {
		*m.state = append(*m.state, m.name)
	}
	return nil
}

func (m *mockCommand) Redo(ctx context.Context) error {
	return m.Execute(ctx)
}

func (m *mockCommand) Undo(ctx context.Context) error {
	if m.undoFn != nil {
		if err := m.undoFn(ctx); err != nil {
			return err
		}
	}
	if m.executed == m.undone {
		return ErrNothingToUndo
	}
	m.undone++
	if m.state != nil {
		s := *m.state
		if len(s) == 0 || s[len(s)-1] != m.name {
			return fmt.Errorf("%s is not the latest applied effect", m.name)
		}
		*m.state = s[:len(s)-1]
	}
	return nil
}

// newMockCommand creates a mock command appending its name to state on execute
func newMockCommand(name string, state *[]string) *mockCommand {
	return &mockCommand{name: name, state: state}
}

// newMockCommandWithError creates a mock command whose Execute fails
func newMockCommandWithError(name string, err error) *mockCommand {
	return &mockCommand{
		name: name,
		executeFn: func(context.Context) error {
			return err
		},
	}
}
