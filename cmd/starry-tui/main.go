package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dd0wney/starry-habits/pkg/app"
	"github.com/dd0wney/starry-habits/pkg/config"
	"github.com/dd0wney/starry-habits/pkg/storage"
)

func main() {
	configPath := flag.String("config", "", "Config file (YAML or TOML)")
	dataDir := flag.String("data-dir", "", "Data directory for the file backend")
	seed := flag.Int64("seed", 0, "Layout seed (0 picks a random one)")
	flag.Parse()

	if err := run(*configPath, *dataDir, *seed); err != nil {
		fmt.Fprintln(os.Stderr, "starry-tui:", err)
		os.Exit(1)
	}
}

func run(configPath, dataDir string, seed int64) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if dataDir != "" {
		cfg.Storage.Backend = storage.BackendFile
		cfg.Storage.DataDir = dataDir
	}
	if seed != 0 {
		cfg.Layout.Seed = seed
	}

	ctx := context.Background()
	// Logs would tear the alternate screen.
	a, err := app.Open(ctx, cfg, app.Options{LogWriter: io.Discard})
	if err != nil {
		return err
	}
	defer a.Close()

	p := tea.NewProgram(initialModel(ctx, a.Service), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
