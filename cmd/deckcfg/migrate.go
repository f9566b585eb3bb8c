// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/ManuGH/deckcfg/internal/config"
	xglog "github.com/ManuGH/deckcfg/internal/log"
	"github.com/ManuGH/deckcfg/internal/metrics"
	"github.com/ManuGH/deckcfg/internal/persistence/sqlite"
	"github.com/ManuGH/deckcfg/internal/prompt"
	"github.com/ManuGH/deckcfg/internal/upgrade"
	"github.com/spf13/cobra"
)

func newMigrateCmd(g *globalFlags) *cobra.Command {
	var (
		assumeYes       bool
		nonInteractive  bool
		metricsTextfile string
	)
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Upgrade the settings directory to the current version",
		Long: `Moves legacy files into the settings directory, detects the stored
version and applies every upgrade step between it and the running build.

Failed steps are logged and retried on the next run; the command itself only
fails for invalid options.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, layout, err := g.resolve(cmd)
			if err != nil {
				return err
			}
			switch {
			case assumeYes:
				opts.Prompt = config.PromptYes
			case nonInteractive:
				opts.Prompt = config.PromptDefaults
			}
			if metricsTextfile != "" {
				opts.MetricsTextfile = metricsTextfile
			}

			dbCfg := sqlite.DefaultConfig()
			dbCfg.BusyTimeout = opts.DBBusyTimeout
			dbCfg.MaxOpenConns = opts.DBMaxOpenConns

			m := upgrade.New(upgrade.Options{
				Layout:               layout,
				SettingsPathExplicit: opts.SettingsPathExplicit,
				Confirmer:            confirmerFor(opts.Prompt, cmd),
				DB:                   dbCfg,
			})
			res := m.Migrate(cmd.Context(), opts.SettingsPath)
			printResult(cmd.OutOrStdout(), res)

			if opts.MetricsTextfile != "" {
				if err := metrics.WriteTextfile(opts.MetricsTextfile); err != nil {
					xglog.WithComponent("cli").Warn().Err(err).
						Str(xglog.FieldPath, opts.MetricsTextfile).
						Msg("metrics textfile not written")
				}
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.BoolVarP(&assumeYes, "assume-yes", "y", false, "answer yes to every question")
	f.BoolVar(&nonInteractive, "non-interactive", false, "never ask, use each question's default")
	f.StringVar(&metricsTextfile, "metrics-textfile", "", "write Prometheus metrics to this file after the run")
	cmd.MarkFlagsMutuallyExclusive("assume-yes", "non-interactive")
	return cmd
}

func confirmerFor(mode config.PromptMode, cmd *cobra.Command) prompt.Confirmer {
	switch mode {
	case config.PromptYes:
		return prompt.Always(true)
	case config.PromptNo:
		return prompt.Always(false)
	case config.PromptDefaults:
		return prompt.Defaults
	default:
		return prompt.NewTerminalFor(cmd.InOrStdin(), cmd.OutOrStdout())
	}
}

func printResult(w io.Writer, res *upgrade.Result) {
	_, _ = fmt.Fprintf(w, "settings:       %s\n", res.SettingsPath)
	switch {
	case res.FirstRun:
		_, _ = fmt.Fprintf(w, "first run:      version set to %s\n", res.FinalVersion)
	default:
		_, _ = fmt.Fprintf(w, "stored version: %s\n", res.StoredVersion)
		_, _ = fmt.Fprintf(w, "final version:  %s\n", res.FinalVersion)
	}
	if res.Relocated {
		_, _ = fmt.Fprintln(w, "legacy files moved into the settings directory")
	}
	for _, s := range res.Steps {
		line := fmt.Sprintf("  %-20s %-8s %s -> %s", s.Name, s.Result, s.From, s.To)
		if s.Err != nil {
			line += ": " + s.Err.Error()
		}
		_, _ = fmt.Fprintln(w, line)
	}
	if len(res.Skipped) > 0 {
		_, _ = fmt.Fprintf(w, "not run:        %s\n", strings.Join(res.Skipped, ", "))
	}
	if res.RescanLibrary {
		_, _ = fmt.Fprintln(w, "library rescan requested")
	}
	if !res.UpToDate {
		_, _ = fmt.Fprintln(w, "settings are not yet current; the remaining steps run next time")
	}
}
