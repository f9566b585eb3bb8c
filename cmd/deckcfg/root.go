// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/ManuGH/deckcfg/internal/config"
	xglog "github.com/ManuGH/deckcfg/internal/log"
	"github.com/ManuGH/deckcfg/internal/version"
	"github.com/spf13/cobra"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	settings   string
	home       string
	logLevel   string
	logFormat  string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:          "deckcfg",
		Short:        "Upgrade DJ application settings to the current release",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			// Safe defaults until the options are resolved.
			xglog.Configure(xglog.Config{
				Level:   g.logLevel,
				Format:  g.logFormat,
				Output:  cmd.ErrOrStderr(),
				Version: version.Version,
			})
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "path to an options file (YAML)")
	pf.StringVar(&g.settings, "settings", "", "settings directory (default: platform location)")
	pf.StringVar(&g.home, "home", "", "home directory holding legacy files (default: current user)")
	pf.StringVar(&g.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&g.logFormat, "log-format", "", "log format (json or console)")

	root.AddCommand(
		newMigrateCmd(g),
		newInspectCmd(g),
		newVerifyDBCmd(g),
		newVersionCmd(),
	)
	return root
}

// resolve loads the options and lets flags win over file and environment.
func (g *globalFlags) resolve(cmd *cobra.Command) (config.Options, config.Layout, error) {
	loader := config.NewLoader(strings.TrimSpace(g.configPath))
	opts, err := loader.Load()
	if err != nil {
		return opts, config.Layout{}, err
	}

	if g.home != "" {
		opts.Home = g.home
		if !opts.SettingsPathExplicit {
			opts.SettingsPath = config.DefaultSettingsPath(opts.Home, runtime.GOOS)
		}
	}
	if g.settings != "" {
		opts.SettingsPath = g.settings
		opts.SettingsPathExplicit = true
	}
	if g.logLevel != "" {
		opts.LogLevel = g.logLevel
	}
	if g.logFormat != "" {
		opts.LogFormat = g.logFormat
	}
	if err := config.Validate(opts); err != nil {
		return opts, config.Layout{}, err
	}

	xglog.Configure(xglog.Config{
		Level:   opts.LogLevel,
		Format:  opts.LogFormat,
		Output:  cmd.ErrOrStderr(),
		Version: version.Version,
	})
	xglog.WithComponent("cli").Debug().
		Str(xglog.FieldPath, opts.SettingsPath).
		Bool("explicit", opts.SettingsPathExplicit).
		Str("prompt", string(opts.Prompt)).
		Msg("options resolved")

	return opts, config.ResolveLayout(opts.Home, runtime.GOOS), nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "deckcfg %s (commit: %s, built: %s)\n",
				version.Version, version.Commit, version.Date)
			return err
		},
	}
}
