package commandstructure

import (
	"testing"
)

func testFactory(name string) CommandFactory {
	return func(env *Environment, params map[string]any) (Command, error) {
		return newMockCommand(name, nil), nil
	}
}

func TestNewCommandRegistry(t *testing.T) {
	registry := NewCommandRegistry()
	if registry == nil {
		t.Fatal("Expected non-nil registry")
	}
	if registry.factories == nil {
		t.Fatal("Expected non-nil factories map")
	}
}

func TestCommandRegistry_Register(t *testing.T) {
	registry := NewCommandRegistry()

	// Test successful registration
	if err := registry.Register("TestCommand", testFactory("TestCommand")); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	// Test duplicate registration
	if err := registry.Register("TestCommand", testFactory("TestCommand")); err == nil {
		t.Error("Expected error for duplicate registration")
	}

	// Test empty name
	if err := registry.Register("", testFactory("")); err == nil {
		t.Error("Expected error for empty name")
	}

	// Test nil factory
	if err := registry.Register("NilFactory", nil); err == nil {
		t.Error("Expected error for nil factory")
	}
}

func TestCommandRegistry_Create(t *testing.T) {
	registry := NewCommandRegistry()

	var gotParams map[string]any
	err := registry.Register("TestCommand", func(env *Environment, params map[string]any) (Command, error) {
		gotParams = params
		if err := ValidateRequiredParams(params, []string{"paths"}); err != nil {
			return nil, err
		}
		return newMockCommand("TestCommand", nil), nil
	})
	if err != nil {
		t.Fatalf("Failed to register command: %v", err)
	}

	command, err := registry.Create("TestCommand", &Environment{}, map[string]any{"paths": []any{"a.png"}})
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if command == nil || command.Name() != "TestCommand" {
		t.Fatalf("Expected command named TestCommand, got %v", command)
	}

	// nil params are replaced with an empty map before reaching the factory
	if _, err := registry.Create("TestCommand", nil, nil); err == nil {
		t.Error("Expected error for missing required parameter")
	}
	if gotParams == nil {
		t.Error("Expected factory to receive a non-nil params map")
	}

	if _, err := registry.Create("UnknownCommand", nil, nil); err == nil {
		t.Error("Expected error for unknown command")
	}
}

func TestCommandRegistry_IsRegistered(t *testing.T) {
	registry := NewCommandRegistry()
	if err := registry.Register("TestCommand", testFactory("TestCommand")); err != nil {
		t.Fatalf("Failed to register command: %v", err)
	}

	if !registry.IsRegistered("TestCommand") {
		t.Error("Expected TestCommand to be registered")
	}
	if registry.IsRegistered("UnknownCommand") {
		t.Error("Expected UnknownCommand to not be registered")
	}
}

func TestCommandRegistry_GetRegisteredNames(t *testing.T) {
	registry := NewCommandRegistry()

	if names := registry.GetRegisteredNames(); len(names) != 0 {
		t.Errorf("Expected 0 registered names, got %d", len(names))
	}

	for _, name := range []string{"Command2", "Command1"} {
		if err := registry.Register(name, testFactory(name)); err != nil {
			t.Fatalf("Failed to register %s: %v", name, err)
		}
	}

	names := registry.GetRegisteredNames()
	if len(names) != 2 || names[0] != "Command1" || names[1] != "Command2" {
		t.Errorf("Expected sorted [Command1 Command2], got %v", names)
	}
}

func TestEnvironment_Defaults(t *testing.T) {
	var env *Environment
	if env.Concurrency() != -1 {
		t.Errorf("Expected unlimited concurrency for nil environment, got %d", env.Concurrency())
	}
	if env.Clock() == nil {
		t.Error("Expected a clock for nil environment")
	}

	env = &Environment{MaxConcurrency: 3}
	if env.Concurrency() != 3 {
		t.Errorf("Expected concurrency 3, got %d", env.Concurrency())
	}
}
