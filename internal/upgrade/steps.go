// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package upgrade

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ManuGH/deckcfg/internal/config"
	"github.com/ManuGH/deckcfg/internal/fsutil"
	"github.com/ManuGH/deckcfg/internal/library"
	xglog "github.com/ManuGH/deckcfg/internal/log"
	"github.com/ManuGH/deckcfg/internal/persistence/sqlite"
	"github.com/ManuGH/deckcfg/internal/prompt"
	"github.com/ManuGH/deckcfg/internal/settings"
	"github.com/ManuGH/deckcfg/internal/version"
	"github.com/ManuGH/deckcfg/internal/waveform"
	"github.com/rs/zerolog"
)

// Step names, also used as metric labels.
const (
	StepFrom17        = "1.7_to_1.8.0"
	StepFrom18Beta    = "1.8.0beta_to_1.8.0"
	StepFrom18        = "1.8_to_1.9.0"
	StepFrom19        = "1.9_to_1.11.0"
	StepFrom111       = "1.11_to_1.12.0"
	StepFrameRate     = "framerate_60"
	StepAllShaderWave = "allshader_waveforms"
)

var (
	// ErrCopyFailed marks a step whose file copies did not all succeed.
	ErrCopyFailed = errors.New("upgrade: file copy failed")
	// ErrLibrary marks a library database failure.
	ErrLibrary = errors.New("upgrade: library database unavailable")
)

// State is the mutable context the steps work on.
type State struct {
	// Settings may be replaced by a step that reloads from a new location.
	Settings *settings.Settings
	// TargetPath is the settings directory requested by the caller.
	TargetPath    string
	Layout        config.Layout
	Confirmer     prompt.Confirmer
	DB            sqlite.Config
	Current       version.Tag
	RescanLibrary bool
	Logger        zerolog.Logger
}

// Step is one rung of the ladder. Applies is evaluated against the version
// reached so far. When Run succeeds and To is set, the stored version becomes
// To; steps with an empty To leave the version alone. Run must be safe to
// repeat after a failure.
type Step struct {
	Name    string
	To      string
	Applies func(from, current version.Tag) bool
	Run     func(ctx context.Context, st *State) error
}

// Ladder returns the upgrade steps in the order they are evaluated.
func Ladder() []Step {
	return []Step{
		{
			Name:    StepFrom17,
			To:      "1.8.0",
			Applies: hasPrefix("1.7"),
			Run:     noop,
		},
		{
			Name:    StepFrom18Beta,
			To:      "1.8.0",
			Applies: hasPrefix("1.8.0~beta1", "1.8.0~beta2"),
			Run:     noop,
		},
		{
			Name:    StepFrom18,
			To:      "1.9.0",
			Applies: hasPrefix("1.8", "1.9.0beta1"),
			Run:     moveOldSettingsDir,
		},
		{
			Name:    StepFrom19,
			To:      "1.11.0",
			Applies: hasPrefix("1.9", "1.10"),
			Run:     copyControllerMappings,
		},
		{
			Name:    StepFrom111,
			To:      "1.12.0",
			Applies: hasPrefix("1.11"),
			Run:     migrateLibrary,
		},
		{
			Name:    StepFrameRate,
			Applies: olderThan("2.4.0"),
			Run:     setFrameRate,
		},
		{
			Name:    StepAllShaderWave,
			To:      "2.6.0",
			Applies: needsAllShader,
			Run:     upgradeWaveforms,
		},
	}
}

func hasPrefix(prefixes ...string) func(from, current version.Tag) bool {
	return func(from, _ version.Tag) bool { return from.HasPrefix(prefixes...) }
}

func olderThan(v string) func(from, current version.Tag) bool {
	limit := version.Parse(v)
	return func(from, _ version.Tag) bool { return from.Less(limit) }
}

// needsAllShader matches releases before 2.6.0, and 2.6.0 pre-releases once
// the running build is past the beta.
func needsAllShader(from, current version.Tag) bool {
	if from.Less(cleanVersion) {
		return true
	}
	return current.Raw() != "2.6.0-beta" && from.HasPrefix("2.6.0-")
}

func noop(context.Context, *State) error { return nil }

// moveOldSettingsDir saves pending changes, copies the pre-1.9 macOS settings
// directory into the settings path, keeps the old one as a backup and reloads
// the settings from the new location. Copy failures are logged only.
func moveOldSettingsDir(_ context.Context, st *State) error {
	old := st.Layout.OldSettingsDir
	if old == "" || !fsutil.Exists(old) {
		return nil
	}
	logger := st.Logger

	// The copy reads from disk, so changes made earlier in the run must be
	// there first.
	if _, err := st.Settings.SaveIfDirty(); err != nil {
		return fmt.Errorf("save settings before move: %w", err)
	}

	pairs := [][2]string{{old, st.TargetPath}}
	for _, sub := range st.Layout.OldSettingsSubdirs {
		pairs = append(pairs, [2]string{filepath.Join(old, sub), filepath.Join(st.TargetPath, sub)})
	}
	for _, p := range pairs {
		if err := os.MkdirAll(p[1], 0o755); err != nil {
			logger.Warn().Err(err).Str(xglog.FieldDestPath, p[1]).Msg("cannot create settings directory")
			continue
		}
		rep, err := fsutil.CopyDirFiles(p[0], p[1], false)
		if err != nil {
			logger.Warn().Err(err).Str(xglog.FieldSrcPath, p[0]).Msg("cannot list old settings directory")
			continue
		}
		for _, f := range rep.Failed {
			logger.Warn().Err(f.Err).
				Str(xglog.FieldSrcPath, filepath.Join(p[0], f.Name)).
				Str(xglog.FieldDestPath, p[1]).
				Msg("failed to move file during upgrade")
		}
		logger.Debug().
			Str(xglog.FieldSrcPath, p[0]).
			Str(xglog.FieldDestPath, p[1]).
			Int("copied", len(rep.Copied)).
			Msg("copied old settings files")
	}

	if backup := st.Layout.OldSettingsBackup; backup != "" {
		if err := os.Rename(old, backup); err != nil {
			logger.Warn().Err(err).Str(xglog.FieldDestPath, backup).Msg("failed to rename old settings directory")
		}
	}

	reloaded, err := settings.Load(filepath.Join(st.TargetPath, settings.FileName))
	if err != nil {
		return fmt.Errorf("reload settings: %w", err)
	}
	st.Settings = reloaded
	return nil
}

// copyControllerMappings copies midi/ into controllers/, keeping files that
// already exist there, then asks whether beat grids should be regenerated.
func copyControllerMappings(ctx context.Context, st *State) error {
	root := st.Settings.Dir()
	src := filepath.Join(root, "midi")
	dst := filepath.Join(root, "controllers")
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return fmt.Errorf("%w: create %s: %v", ErrCopyFailed, dst, err)
	}

	rep, err := fsutil.CopyDirFiles(src, dst, true)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCopyFailed, err)
	}
	for _, name := range rep.Skipped {
		st.Logger.Debug().Str("file", name).Str(xglog.FieldDestPath, dst).Msg("mapping already exists, skipping")
	}
	if !rep.OK() {
		return fmt.Errorf("%w: %d of %d mappings", ErrCopyFailed, len(rep.Failed), len(rep.Failed)+len(rep.Copied))
	}

	reanalyze := st.Confirmer.Confirm(ctx, prompt.ReanalyzeBeats)
	st.Settings.SetBool(settings.KeyReanalyzeOnChange, reanalyze)
	return nil
}

// migrateLibrary registers the legacy library folder in the directories
// table, asks for a cover art rescan and drops the old replay gain offset.
// The replay gain rewrite only happens together with the version bump so a
// retried step never subtracts twice.
func migrateLibrary(ctx context.Context, st *State) error {
	dbPath := filepath.Join(st.Settings.Dir(), library.DBFileName)
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrLibrary, err)
	}
	db, err := sqlite.Open(ctx, dbPath, st.DB)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLibrary, err)
	}
	defer func() { _ = db.Close() }()

	store := library.NewStore(db)
	if err := store.InitSchema(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrLibrary, err)
	}

	dir := st.Settings.GetString(settings.KeyLegacyLibraryDirectory)
	res, err := store.AddDirectory(ctx, dir)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLibrary, err)
	}
	switch res {
	case library.AddOK, library.AddAlreadyRegistered:
		st.Logger.Info().Str(xglog.FieldPath, dir).Str("result", res.String()).Msg("library directory registered")
	case library.AddInvalidDirectory:
		st.Logger.Warn().Str(xglog.FieldPath, dir).Msg("legacy library directory missing or invalid, nothing registered")
	}

	st.RescanLibrary = st.Confirmer.Confirm(ctx, prompt.RescanLibrary)

	oldGain := st.Settings.GetInt(settings.KeyReplayGainBoost, 6)
	st.Settings.SetInt(settings.KeyReplayGainBoost, max(-6, oldGain-6))
	return nil
}

func setFrameRate(_ context.Context, st *State) error {
	st.Settings.SetInt(settings.KeyFrameRate, 60)
	return nil
}

func upgradeWaveforms(_ context.Context, st *State) error {
	s := st.Settings
	rawType := s.GetInt(settings.KeyWaveformType, 0)
	rawBackend := s.GetInt(settings.KeyWaveformBackend, 0)
	rawOptions := s.GetInt(settings.KeyWaveformOptions, 0)

	typ, backend, opts := waveform.UpgradeToAllShaders(rawType, rawBackend, rawOptions)
	s.SetInt(settings.KeyWaveformType, int(typ))
	s.SetInt(settings.KeyWaveformBackend, int(backend))
	s.SetInt(settings.KeyWaveformOptions, int(opts))

	st.Logger.Info().
		Int("raw_type", rawType).
		Int("raw_backend", rawBackend).
		Stringer("type", typ).
		Stringer("backend", backend).
		Int("options", int(opts)).
		Msg("waveform settings moved to the all-shader renderer")
	return nil
}

// Plan lists the steps that would run for stored, assuming each succeeds.
func Plan(steps []Step, stored, current version.Tag) []string {
	var names []string
	v := stored
	for _, step := range steps {
		if !step.Applies(v, current) {
			continue
		}
		names = append(names, step.Name)
		if step.To != "" {
			v = version.Parse(step.To)
		}
	}
	return names
}
