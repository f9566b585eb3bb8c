// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package upgrade

import (
	"context"
	"path/filepath"
	"time"

	"github.com/ManuGH/deckcfg/internal/config"
	xglog "github.com/ManuGH/deckcfg/internal/log"
	"github.com/ManuGH/deckcfg/internal/metrics"
	"github.com/ManuGH/deckcfg/internal/persistence/sqlite"
	"github.com/ManuGH/deckcfg/internal/prompt"
	"github.com/ManuGH/deckcfg/internal/settings"
	"github.com/ManuGH/deckcfg/internal/version"
	"github.com/ManuGH/deckcfg/internal/waveform"
	"github.com/rs/zerolog"
)

// cleanVersion is the first release that needs no further changes. Steps for
// later releases go before finalisation and bump this value.
var cleanVersion = version.Parse("2.6.0")

// Options configure a Migrator.
type Options struct {
	Layout config.Layout
	// SettingsPathExplicit disables the pre-release fallback.
	SettingsPathExplicit bool
	Confirmer            prompt.Confirmer
	DB                   sqlite.Config
	// Current overrides the running build version; tests only.
	Current string
	Steps   []Step
}

// Migrator brings a settings directory up to the running build's version.
type Migrator struct {
	opts    Options
	current version.Tag
	steps   []Step
}

// New returns a Migrator. A nil Confirmer answers every prompt with its
// default; nil Steps selects the built-in ladder.
func New(opts Options) *Migrator {
	if opts.Confirmer == nil {
		opts.Confirmer = prompt.Defaults
	}
	if opts.DB == (sqlite.Config{}) {
		opts.DB = sqlite.DefaultConfig()
	}
	current := version.Current()
	if opts.Current != "" {
		current = version.Parse(opts.Current)
	}
	steps := opts.Steps
	if steps == nil {
		steps = Ladder()
	}
	return &Migrator{opts: opts, current: current, steps: steps}
}

// Current returns the version the Migrator upgrades to.
func (m *Migrator) Current() version.Tag { return m.current }

// StepOutcome records what one ladder step did.
type StepOutcome struct {
	Name   string
	From   string
	To     string
	Result string
	Err    error
}

// Result is the outcome of Migrate. Failures never escape Migrate; they are
// logged and show up here.
type Result struct {
	Settings *settings.Settings
	// SettingsPath is the directory in use after the run. It differs from the
	// requested one when the pre-release fallback was taken.
	SettingsPath  string
	StoredVersion string
	FinalVersion  string
	UpToDate      bool
	FirstRun      bool
	RescanLibrary bool
	Relocated     bool
	Steps         []StepOutcome
	// Skipped lists the steps not evaluated because an earlier one failed.
	Skipped []string
	Errors  []error
}

// Failed reports whether any step failed.
func (r *Result) Failed() bool {
	for _, s := range r.Steps {
		if s.Result == metrics.ResultFailed {
			return true
		}
	}
	return false
}

// Migrate runs relocation, version detection and the ladder against
// settingsPath, persisting changes as it goes.
func (m *Migrator) Migrate(ctx context.Context, settingsPath string) *Result {
	start := time.Now()
	ctx, _ = xglog.NewRunContext(ctx)
	logger := xglog.WithComponentFromContext(ctx, "upgrade").With().
		Str(xglog.FieldPath, settingsPath).
		Str(xglog.FieldToVersion, m.current.Raw()).
		Logger()

	res := &Result{SettingsPath: settingsPath}
	outcome := m.migrate(ctx, logger, settingsPath, res)
	metrics.RecordRun(outcome, time.Since(start))

	logger.Info().
		Str(xglog.FieldEvent, "upgrade.finished").
		Str(xglog.FieldFromVersion, res.StoredVersion).
		Str("final_version", res.FinalVersion).
		Str("outcome", outcome).
		Bool("first_run", res.FirstRun).
		Dur("duration", time.Since(start)).
		Msg("settings upgrade finished")
	return res
}

func (m *Migrator) migrate(ctx context.Context, logger zerolog.Logger, settingsPath string, res *Result) string {
	res.Relocated = relocateLegacy(logger, m.opts.Layout, settingsPath)

	cfgPath := filepath.Join(settingsPath, settings.FileName)
	s, err := settings.Load(cfgPath)
	res.Settings = s
	if err != nil {
		// Leave an unreadable file alone rather than stamping over it.
		logger.Error().Err(err).Str(xglog.FieldEvent, "upgrade.load_failed").Msg("settings file unreadable")
		res.Errors = append(res.Errors, err)
		return metrics.OutcomePartial
	}

	stored := s.GetString(settings.KeyVersion)
	if stored == "" {
		if fb := m.preReleaseFallback(logger); fb != nil {
			s = fb
			res.Settings = fb
			res.SettingsPath = fb.Dir()
			stored = fb.GetString(settings.KeyVersion)
		}
	}
	res.StoredVersion = stored

	if stored == "" {
		logger.Info().Str(xglog.FieldEvent, "upgrade.first_run").Msg("no version in settings, assuming first run")
		s.Set(settings.KeyVersion, m.current.Raw())
		res.FirstRun = true
		res.FinalVersion = m.current.Raw()
		res.UpToDate = true
		m.save(logger, res)
		return metrics.OutcomeFirstRun
	}

	if _, ok := s.Get(settings.KeyVSync); ok {
		mode := waveform.UpgradeDeprecatedVSyncMode(s.GetInt(settings.KeyVSync, 0))
		s.SetInt(settings.KeyVSync, int(mode))
	}

	if stored == m.current.Raw() {
		logger.Debug().Str(xglog.FieldEvent, "upgrade.current").Msg("settings already at the current version")
		res.FinalVersion = stored
		res.UpToDate = true
		m.save(logger, res)
		return metrics.OutcomeCurrent
	}

	st := &State{
		Settings:   s,
		TargetPath: settingsPath,
		Layout:     m.opts.Layout,
		Confirmer:  m.opts.Confirmer,
		DB:         m.opts.DB,
		Current:    m.current,
	}
	configVersion := stored
	halted := false
	for _, step := range m.steps {
		from := version.Parse(configVersion)
		if halted {
			res.Skipped = append(res.Skipped, step.Name)
			metrics.RecordStep(step.Name, metrics.ResultSkipped)
			continue
		}
		if !step.Applies(from, m.current) {
			metrics.RecordStep(step.Name, metrics.ResultSkipped)
			continue
		}

		stepLogger := logger.With().
			Str(xglog.FieldStep, step.Name).
			Str(xglog.FieldFromVersion, configVersion).
			Logger()
		stepLogger.Info().Str(xglog.FieldEvent, "upgrade.step.start").Msg("applying upgrade step")

		out := StepOutcome{Name: step.Name, From: configVersion, To: configVersion}
		st.Logger = stepLogger
		if err := step.Run(ctx, st); err != nil {
			out.Result = metrics.ResultFailed
			out.Err = err
			res.Errors = append(res.Errors, err)
			res.Steps = append(res.Steps, out)
			metrics.RecordStep(step.Name, metrics.ResultFailed)
			stepLogger.Error().Err(err).Str(xglog.FieldEvent, "upgrade.step.failed").
				Msg("upgrade step failed, version left unchanged")
			halted = true
			continue
		}

		s = st.Settings
		res.Settings = s
		if step.To != "" {
			configVersion = step.To
			s.Set(settings.KeyVersion, configVersion)
			out.To = configVersion
			m.save(stepLogger, res)
		}
		res.Steps = append(res.Steps, out)
		metrics.RecordStep(step.Name, metrics.ResultApplied)
		stepLogger.Info().
			Str(xglog.FieldEvent, "upgrade.step.done").
			Str(xglog.FieldToVersion, out.To).
			Msg("upgrade step applied")
	}
	if halted {
		logger.Warn().
			Str(xglog.FieldEvent, "upgrade.halted").
			Str("reached_version", configVersion).
			Strs("skipped_steps", res.Skipped).
			Msg("upgrade ladder halted, remaining steps run on the next launch")
	}
	res.RescanLibrary = st.RescanLibrary
	res.SettingsPath = s.Dir()

	if version.Parse(configVersion).AtLeast(cleanVersion) {
		configVersion = m.current.Raw()
		s.Set(settings.KeyVersion, configVersion)
	}
	res.FinalVersion = configVersion
	res.UpToDate = configVersion == m.current.Raw()
	m.save(logger, res)

	if res.UpToDate {
		logger.Info().Str(xglog.FieldEvent, "upgrade.current").Msg("settings are now at the current version")
		return metrics.OutcomeUpgraded
	}
	logger.Warn().
		Str(xglog.FieldEvent, "upgrade.behind").
		Str("final_version", configVersion).
		Msg("settings are not at the current version")
	return metrics.OutcomePartial
}

// preReleaseFallback loads the platform's pre-release settings file when one
// exists and the settings path was not chosen explicitly.
func (m *Migrator) preReleaseFallback(logger zerolog.Logger) *settings.Settings {
	path := m.opts.Layout.PreReleaseConfig
	if path == "" || m.opts.SettingsPathExplicit {
		return nil
	}
	s, err := settings.Load(path)
	if err != nil || !s.Exists() {
		return nil
	}
	logger.Info().
		Str(xglog.FieldEvent, "upgrade.prerelease_fallback").
		Str(xglog.FieldSrcPath, path).
		Msg("using pre-release settings file")
	return s
}

func (m *Migrator) save(logger zerolog.Logger, res *Result) {
	wrote, err := res.Settings.SaveIfDirty()
	if err != nil {
		metrics.RecordSettingsWrite(err)
		res.Errors = append(res.Errors, err)
		logger.Error().Err(err).
			Str(xglog.FieldEvent, "upgrade.save_failed").
			Str(xglog.FieldPath, res.Settings.Path()).
			Msg("failed to save settings")
		return
	}
	if wrote {
		metrics.RecordSettingsWrite(nil)
		logger.Debug().Str(xglog.FieldPath, res.Settings.Path()).Msg("settings saved")
	}
}
