// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"fmt"
	"path/filepath"

	"github.com/ManuGH/deckcfg/internal/settings"
	"github.com/ManuGH/deckcfg/internal/upgrade"
	"github.com/ManuGH/deckcfg/internal/version"
	"github.com/spf13/cobra"
)

func newInspectCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Show the stored version and the steps a migration would run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, _, err := g.resolve(cmd)
			if err != nil {
				return err
			}
			path := filepath.Join(opts.SettingsPath, settings.FileName)
			s, err := settings.Load(path)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			current := version.Current()
			_, _ = fmt.Fprintf(w, "settings file:   %s\n", path)
			_, _ = fmt.Fprintf(w, "current version: %s\n", current)
			if !s.Exists() {
				_, _ = fmt.Fprintln(w, "no settings file; migrate would start a first run")
				return nil
			}

			stored := s.GetString(settings.KeyVersion)
			if stored == "" {
				_, _ = fmt.Fprintln(w, "stored version:  (none)")
				return nil
			}
			_, _ = fmt.Fprintf(w, "stored version:  %s\n", stored)
			_, _ = fmt.Fprintf(w, "groups:          %d, values: %d\n", len(s.Groups()), s.Len())
			if stored == current.Raw() {
				_, _ = fmt.Fprintln(w, "up to date")
				return nil
			}

			plan := upgrade.Plan(upgrade.Ladder(), version.Parse(stored), current)
			if len(plan) == 0 {
				_, _ = fmt.Fprintln(w, "no upgrade steps apply; only the version would be updated")
				return nil
			}
			_, _ = fmt.Fprintln(w, "pending steps:")
			for _, name := range plan {
				_, _ = fmt.Fprintf(w, "  %s\n", name)
			}
			return nil
		},
	}
}
