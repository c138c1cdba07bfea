package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"golang.org/x/term"

	"github.com/diffscope/diffscope/internal/adapter/cli"
	"github.com/diffscope/diffscope/internal/adapter/git"
	"github.com/diffscope/diffscope/internal/config"
	"github.com/diffscope/diffscope/internal/quality"
	"github.com/diffscope/diffscope/internal/version"
)

func main() {
	if err := run(); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		log.Println(err)
		os.Exit(1)
	}
}

func run() error {
	// Cancellable context with signal handling so a hung external tool can
	// be interrupted.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(config.LoaderOptions{
		ConfigPaths: defaultConfigPaths(),
		FileName:    "diffscope",
		EnvPrefix:   "DIFFSCOPE",
	})
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	repoDir := cfg.Git.RepositoryDir
	if repoDir == "" {
		repoDir = "."
	}

	root := cli.NewRootCommand(cli.Dependencies{
		Producer: git.NewEngine(repoDir),
		Registry: quality.DefaultRegistry(),
		Defaults: cfg,
		Colorize: term.IsTerminal(int(os.Stdout.Fd())),
		Version:  version.Value(),
	})

	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, cli.ErrVersionRequested) {
			return nil
		}
		return err
	}
	return nil
}

func defaultConfigPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "diffscope"))
	}
	return paths
}

// Compile-time interface compliance checks
var _ cli.DiffProducer = (*git.Engine)(nil)
var _ quality.Driver = quality.NoopDriver{}
