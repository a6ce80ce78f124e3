package main

import (
	"context"
	"os"

	"github.com/4thel00z/carve/internal"
	"github.com/charmbracelet/fang"
)

// version is set via ldflags at build time
var version = "dev"

func main() {
	ctx := context.Background()

	app := newApp()
	rootCmd := NewRootCmd(version, app)
	if err := fang.Execute(ctx, rootCmd); err != nil {
		os.Exit(1)
	}
}

type app struct {
	useCases *internal.UseCases
}

func newApp() *app {
	resolver := internal.NewScopeResolver()

	// A nil logger makes each run configure one from the repository's carve.yaml.
	return &app{
		useCases: internal.NewUseCases(resolver, internal.OpenRepository, nil),
	}
}
