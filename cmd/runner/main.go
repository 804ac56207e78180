package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/jo-hoe/picundo/internal/core"
)

func getConfigPath() string {
	if configPath := os.Getenv("CONFIG_PATH"); configPath != "" {
		return configPath
	}

	cwd, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	return filepath.Join(cwd, "config.yaml")
}

func main() {
	configPath := flag.String("config", getConfigPath(), "path to the YAML configuration")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("runner failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	config, err := core.LoadConfig(configPath)
	if err != nil {
		return err
	}

	level, _ := core.ParseLogLevel(config.LogLevel)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	coreService, err := core.NewCoreService(config)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := coreService.Close(); cerr != nil {
			slog.Error("core service close error", "error", cerr)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := coreService.RunCommands(ctx, config.Commands); err != nil {
		return err
	}

	history := coreService.History()
	fmt.Printf("undo: %v\nredo: %v\n", history.Undo, history.Redo)
	return nil
}
