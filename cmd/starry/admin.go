package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dd0wney/starry-habits/pkg/app"
	"github.com/dd0wney/starry-habits/pkg/auth"
	"github.com/dd0wney/starry-habits/pkg/config"
	"github.com/dd0wney/starry-habits/pkg/habits"
	"github.com/dd0wney/starry-habits/pkg/storage"
)

func exportCmd(c *cli) *cobra.Command {
	var format, output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a backup of all habits and logs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				format = formatFromPath(output)
			}
			if format != "json" && format != "yaml" {
				return fmt.Errorf("format must be json or yaml, got %q", format)
			}
			return c.withApp(cmd, func(a *app.App) error {
				data, err := a.Service.Export(cmd.Context())
				if err != nil {
					return err
				}

				w := cmd.OutOrStdout()
				if output != "" && output != "-" {
					f, err := os.Create(output)
					if err != nil {
						return err
					}
					defer f.Close()
					w = f
				}

				if format == "yaml" {
					return storage.ExportYAML(w, data)
				}
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(data)
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "json or yaml (default from the file extension, else json)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	return cmd
}

func importCmd(c *cli) *cobra.Command {
	var format string
	var yes bool
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Replace all data with a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("import replaces every habit and log; pass --yes to confirm")
			}
			if format == "" {
				format = formatFromPath(args[0])
			}

			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}

			var data *habits.Data
			switch format {
			case "yaml":
				imported, err := storage.ImportYAML(r)
				if err != nil {
					return err
				}
				data = imported
			case "json":
				data = &habits.Data{}
				if err := json.NewDecoder(r).Decode(data); err != nil {
					return fmt.Errorf("failed to parse backup: %w", err)
				}
			default:
				return fmt.Errorf("format must be json or yaml, got %q", format)
			}

			return c.withApp(cmd, func(a *app.App) error {
				if err := a.Service.Import(cmd.Context(), data); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d habits and %d day logs\n", len(data.Habits), len(data.Logs))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "json or yaml (default from the file extension, else json)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm replacing existing data")
	return cmd
}

func formatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}

func tokenCmd(c *cli) *cobra.Command {
	var subject, scope string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API token signed with the configured secret",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if !cfg.Auth.Enabled {
				return fmt.Errorf("auth is disabled; set auth.jwt_secret or %s", config.EnvJWTSecret)
			}
			if ttl == 0 {
				ttl = cfg.Auth.TokenTTL
			}
			tm, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, ttl)
			if err != nil {
				return err
			}
			token, err := tm.GenerateToken(subject, scope)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "starry-cli", "Token subject")
	cmd.Flags().StringVar(&scope, "scope", auth.ScopeWrite, "Token scope (read or write)")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime (default from config)")
	return cmd
}

func initConfigCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "init-config [path]",
		Short: "Write a commented default config file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultPath()
			if len(args) == 1 {
				path = args[0]
			} else if c.configPath != "" {
				path = c.configPath
			}
			if err := config.WriteDefault(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
}
