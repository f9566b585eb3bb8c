// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package upgrade

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ManuGH/deckcfg/internal/config"
	"github.com/ManuGH/deckcfg/internal/fsutil"
	xglog "github.com/ManuGH/deckcfg/internal/log"
	"github.com/ManuGH/deckcfg/internal/settings"
	"github.com/rs/zerolog"
)

// relocateLegacy moves a pre-1.7 settings file and its companions from the
// home directory into settingsPath. Nothing happens when there is no legacy
// file or settingsPath already holds a settings file. Failures are logged;
// a file that could not be moved stays in the home directory.
func relocateLegacy(logger zerolog.Logger, layout config.Layout, settingsPath string) bool {
	if layout.LegacyConfig == "" || !fsutil.Exists(layout.LegacyConfig) {
		return false
	}
	target := filepath.Join(settingsPath, settings.FileName)
	if fsutil.Exists(target) {
		logger.Debug().
			Str(xglog.FieldSrcPath, layout.LegacyConfig).
			Str(xglog.FieldDestPath, target).
			Msg("legacy settings file ignored, settings already present")
		return false
	}

	logger = logger.With().Str(xglog.FieldEvent, "upgrade.relocate").Logger()
	if err := os.MkdirAll(settingsPath, 0o755); err != nil {
		logger.Error().Err(err).Str(xglog.FieldPath, settingsPath).Msg("cannot create settings directory")
		return false
	}
	logger.Info().Str(xglog.FieldPath, settingsPath).Msg("moving legacy settings into settings directory")

	for _, f := range layout.LegacyAux {
		if !fsutil.Exists(f.Source) {
			continue
		}
		if moveLogged(logger, f.Source, filepath.Join(settingsPath, f.Dest)) && f.Warning != "" {
			logger.Warn().Str(xglog.FieldSrcPath, f.Source).Msg(f.Warning)
		}
	}

	for _, path := range layout.Obsolete {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logger.Warn().Err(err).Str(xglog.FieldPath, path).Msg("failed to delete obsolete file")
		}
	}

	return moveLogged(logger, layout.LegacyConfig, target)
}

func moveLogged(logger zerolog.Logger, src, dst string) bool {
	err := fsutil.MoveFile(src, dst)
	switch {
	case err == nil:
		logger.Debug().Str(xglog.FieldSrcPath, src).Str(xglog.FieldDestPath, dst).Msg("moved legacy file")
		return true
	case errors.Is(err, fsutil.ErrDestinationExists):
		logger.Warn().Str(xglog.FieldSrcPath, src).Str(xglog.FieldDestPath, dst).
			Msg("legacy file not moved, the destination file already exists")
	default:
		logger.Warn().Err(err).Str(xglog.FieldSrcPath, src).Str(xglog.FieldDestPath, dst).
			Msg("error moving legacy file")
	}
	return false
}
