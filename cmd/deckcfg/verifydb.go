// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/ManuGH/deckcfg/internal/fsutil"
	"github.com/ManuGH/deckcfg/internal/library"
	"github.com/ManuGH/deckcfg/internal/persistence/sqlite"
	"github.com/spf13/cobra"
)

var errCorrupt = errors.New("library database failed integrity check")

func newVerifyDBCmd(g *globalFlags) *cobra.Command {
	var full bool
	cmd := &cobra.Command{
		Use:   "verify-db",
		Short: "Check the library database for corruption",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, _, err := g.resolve(cmd)
			if err != nil {
				return err
			}
			path := filepath.Join(opts.SettingsPath, library.DBFileName)
			if !fsutil.Exists(path) {
				return fmt.Errorf("no library database at %s", path)
			}

			mode := sqlite.VerifyQuick
			if full {
				mode = sqlite.VerifyFull
			}
			problems, err := sqlite.VerifyIntegrity(cmd.Context(), path, mode)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(problems) > 0 {
				for _, p := range problems {
					_, _ = fmt.Fprintf(w, "  %s\n", p)
				}
				return fmt.Errorf("%w: %s", errCorrupt, path)
			}

			cfg := sqlite.DefaultConfig()
			cfg.BusyTimeout = opts.DBBusyTimeout
			db, err := sqlite.Open(cmd.Context(), path, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()
			store := library.NewStore(db)
			rev, err := store.SchemaVersion(cmd.Context())
			if err != nil {
				return err
			}
			// Databases from before the directories revision have no table yet.
			dirs, _ := store.Directories(cmd.Context())

			_, _ = fmt.Fprintf(w, "%s: ok (%s check)\n", path, mode)
			_, _ = fmt.Fprintf(w, "schema revision: %d of %d\n", rev, library.LatestSchemaVersion())
			for _, d := range dirs {
				_, _ = fmt.Fprintf(w, "library directory: %s\n", d)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "run the full integrity check instead of the quick one")
	return cmd
}
