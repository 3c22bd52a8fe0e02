package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dd0wney/starry-habits/pkg/app"
	"github.com/dd0wney/starry-habits/pkg/config"
	"github.com/dd0wney/starry-habits/pkg/logging"
	"github.com/dd0wney/starry-habits/pkg/storage"
)

var Version = "dev"

// cli holds the persistent flags shared by every subcommand.
type cli struct {
	configPath string
	dataDir    string
	seed       int64
	verbose    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	rootCmd := &cobra.Command{
		Use:           "starry",
		Short:         "Starry Habits - track daily habits as a constellation",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "Config file (YAML or TOML)")
	rootCmd.PersistentFlags().StringVar(&c.dataDir, "data-dir", "", "Data directory for the file backend")
	rootCmd.PersistentFlags().Int64Var(&c.seed, "seed", 0, "Layout seed (0 picks a random one)")
	rootCmd.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Log to stderr")

	rootCmd.AddCommand(
		addCmd(c),
		listCmd(c),
		toggleCmd(c),
		renameCmd(c),
		archiveCmd(c),
		deleteCmd(c),
		noteCmd(c),
		showCmd(c),
		svgCmd(c),
		weekCmd(c),
		exportCmd(c),
		importCmd(c),
		tokenCmd(c),
		initConfigCmd(c),
	)
	return rootCmd
}

func (c *cli) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if c.dataDir != "" {
		cfg.Storage.Backend = storage.BackendFile
		cfg.Storage.DataDir = c.dataDir
	}
	if c.seed != 0 {
		cfg.Layout.Seed = c.seed
	}
	return cfg, nil
}

// open loads the configuration and wires the tracker. Logs stay at warn
// unless --verbose is set.
func (c *cli) open(ctx context.Context) (*app.App, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	opts := app.Options{LogWriter: os.Stderr, MinLevel: logging.WarnLevel}
	if c.verbose {
		opts.MinLevel = logging.DebugLevel
	}
	return app.Open(ctx, cfg, opts)
}

// withApp runs fn against an opened tracker and closes it afterwards.
func (c *cli) withApp(cmd *cobra.Command, fn func(a *app.App) error) error {
	a, err := c.open(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}
