// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package upgrade

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ManuGH/deckcfg/internal/config"
	"github.com/ManuGH/deckcfg/internal/library"
	"github.com/ManuGH/deckcfg/internal/metrics"
	"github.com/ManuGH/deckcfg/internal/persistence/sqlite"
	"github.com/ManuGH/deckcfg/internal/prompt"
	"github.com/ManuGH/deckcfg/internal/settings"
	"github.com/ManuGH/deckcfg/internal/version"
	"github.com/ManuGH/deckcfg/internal/waveform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder answers every prompt with answer and remembers what was asked.
type recorder struct {
	mu     sync.Mutex
	answer bool
	asked  []string
}

func (r *recorder) Confirm(_ context.Context, p prompt.Prompt) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.asked = append(r.asked, p.ID)
	return r.answer
}

type fixture struct {
	home     string
	settings string
	layout   config.Layout
	prompts  *recorder
}

func newFixture(t *testing.T, goos string) *fixture {
	t.Helper()
	home := t.TempDir()
	return &fixture{
		home:     home,
		settings: filepath.Join(t.TempDir(), "settings"),
		layout:   config.ResolveLayout(home, goos),
		prompts:  &recorder{},
	}
}

func (f *fixture) migrator(current string) *Migrator {
	return New(Options{
		Layout:               f.layout,
		SettingsPathExplicit: true,
		Confirmer:            f.prompts,
		Current:              current,
	})
}

func (f *fixture) writeSettings(t *testing.T, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(f.settings, 0o755))
	path := filepath.Join(f.settings, settings.FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func reload(t *testing.T, dir string) *settings.Settings {
	t.Helper()
	s, err := settings.Load(filepath.Join(dir, settings.FileName))
	require.NoError(t, err)
	require.True(t, s.Exists())
	return s
}

func stepNames(res *Result) []string {
	var names []string
	for _, s := range res.Steps {
		names = append(names, s.Name)
	}
	return names
}

func TestMigrate_FirstRun(t *testing.T) {
	f := newFixture(t, "linux")

	res := f.migrator("2.6.1").Migrate(context.Background(), f.settings)

	assert.True(t, res.FirstRun)
	assert.True(t, res.UpToDate)
	assert.Empty(t, res.Steps)
	assert.Empty(t, f.prompts.asked)
	assert.Equal(t, "2.6.1", reload(t, f.settings).GetString(settings.KeyVersion))
}

func TestMigrate_FromOneSevenReachesCurrent(t *testing.T) {
	f := newFixture(t, "linux")
	f.writeSettings(t, "[Config]\nVersion 1.7.5\n")

	res := f.migrator("2.6.1").Migrate(context.Background(), f.settings)

	require.Empty(t, res.Errors)
	assert.False(t, res.FirstRun)
	assert.True(t, res.UpToDate)
	assert.Equal(t, "1.7.5", res.StoredVersion)
	assert.Equal(t, []string{
		StepFrom17, StepFrom18, StepFrom19, StepFrom111, StepFrameRate, StepAllShaderWave,
	}, stepNames(res))

	var reached []string
	for _, s := range res.Steps {
		reached = append(reached, s.To)
	}
	assert.Equal(t, []string{"1.8.0", "1.9.0", "1.11.0", "1.12.0", "1.12.0", "2.6.0"}, reached)

	s := reload(t, f.settings)
	assert.Equal(t, "2.6.1", s.GetString(settings.KeyVersion))
	assert.Equal(t, 60, s.GetInt(settings.KeyFrameRate, 0))
	assert.Equal(t, 0, s.GetInt(settings.KeyReplayGainBoost, 99), "default boost 6 minus 6")
	assert.Equal(t, "0", s.GetString(settings.KeyReanalyzeOnChange))
	assert.Equal(t, []string{prompt.IDReanalyzeBeats, prompt.IDRescanLibrary}, f.prompts.asked)
	assert.FileExists(t, filepath.Join(f.settings, library.DBFileName))
	assert.DirExists(t, filepath.Join(f.settings, "controllers"))
}

func TestMigrate_AllShaderRemap(t *testing.T) {
	f := newFixture(t, "linux")
	f.writeSettings(t, `[Config]
Version 2.5.9

[Waveform]
WaveformType 12
use_hardware_acceleration 0
waveform_options 0
`)

	res := f.migrator("2.6.0").Migrate(context.Background(), f.settings)

	require.Empty(t, res.Errors)
	assert.Equal(t, []string{StepAllShaderWave}, stepNames(res))

	s := reload(t, f.settings)
	assert.Equal(t, "2.6.0", s.GetString(settings.KeyVersion))
	assert.Equal(t, int(waveform.TypeRGB), s.GetInt(settings.KeyWaveformType, -1))
	assert.Equal(t, int(waveform.BackendAllShader), s.GetInt(settings.KeyWaveformBackend, -1))
	opts := waveform.Options(s.GetInt(settings.KeyWaveformOptions, -1))
	assert.True(t, opts.Has(waveform.OptionHighDetail))
	_, hasFrameRate := s.Get(settings.KeyFrameRate)
	assert.False(t, hasFrameRate, "2.5.9 is past the frame rate step")
}

func TestMigrate_IdempotentSecondRun(t *testing.T) {
	f := newFixture(t, "linux")
	f.writeSettings(t, "[Config]\nVersion 1.11.2\n\n[Waveform]\nVSync 3\n")
	m := f.migrator("2.6.1")

	first := m.Migrate(context.Background(), f.settings)
	require.True(t, first.UpToDate)

	path := filepath.Join(f.settings, settings.FileName)
	before, err := os.Stat(path)
	require.NoError(t, err)
	content, err := os.ReadFile(path)
	require.NoError(t, err)

	second := m.Migrate(context.Background(), f.settings)
	assert.True(t, second.UpToDate)
	assert.Empty(t, second.Steps)
	assert.False(t, second.Settings.Dirty())

	after, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, os.SameFile(before, after), "current settings must not be rewritten")
	again, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, again)
}

func TestMigrate_NormalisesVSyncAtCurrentVersion(t *testing.T) {
	f := newFixture(t, "linux")
	f.writeSettings(t, "[Config]\nVersion 2.6.1\n\n[Waveform]\nVSync 2\n")

	res := f.migrator("2.6.1").Migrate(context.Background(), f.settings)

	assert.True(t, res.UpToDate)
	assert.Empty(t, res.Steps)
	assert.Equal(t, int(waveform.VSyncDefault), reload(t, f.settings).GetInt(settings.KeyVSync, -1))
}

func TestMigrate_LibraryFailureHaltsLadder(t *testing.T) {
	f := newFixture(t, "linux")
	f.writeSettings(t, "[Config]\nVersion 1.11.0\n\n[ReplayGain]\nInitialReplayGainBoost 4\n")
	// A directory where the database file belongs makes the pool unavailable.
	require.NoError(t, os.MkdirAll(filepath.Join(f.settings, library.DBFileName), 0o755))

	res := f.migrator("2.6.1").Migrate(context.Background(), f.settings)

	assert.False(t, res.UpToDate)
	assert.True(t, res.Failed())
	require.Len(t, res.Steps, 1)
	assert.Equal(t, StepFrom111, res.Steps[0].Name)
	assert.Equal(t, metrics.ResultFailed, res.Steps[0].Result)
	assert.ErrorIs(t, res.Steps[0].Err, ErrLibrary)
	assert.Empty(t, f.prompts.asked, "no prompt after a failed library step")
	assert.Equal(t, []string{StepFrameRate, StepAllShaderWave}, res.Skipped)

	s := reload(t, f.settings)
	assert.Equal(t, "1.11.0", s.GetString(settings.KeyVersion))
	assert.Equal(t, 4, s.GetInt(settings.KeyReplayGainBoost, 0), "replay gain untouched until the step succeeds")
	_, hasFrameRate := s.Get(settings.KeyFrameRate)
	assert.False(t, hasFrameRate, "later steps do not run after a failure")

	// The next launch resumes at the failed step once the database is usable.
	require.NoError(t, os.Remove(filepath.Join(f.settings, library.DBFileName)))
	res = f.migrator("2.6.1").Migrate(context.Background(), f.settings)
	assert.True(t, res.UpToDate)
	assert.Equal(t, -2, reload(t, f.settings).GetInt(settings.KeyReplayGainBoost, 0))
}

func TestMigrate_RegistersLegacyLibraryDirectory(t *testing.T) {
	f := newFixture(t, "linux")
	music := filepath.Join(f.home, "Music")
	require.NoError(t, os.MkdirAll(music, 0o755))
	f.writeSettings(t, "[Config]\nVersion 1.11.0\n\n[Playlist]\nDirectory "+music+"\n")
	f.prompts.answer = true

	res := f.migrator("2.6.1").Migrate(context.Background(), f.settings)
	require.Empty(t, res.Errors)
	assert.True(t, res.RescanLibrary)

	db, err := sqlite.Open(context.Background(), filepath.Join(f.settings, library.DBFileName), sqlite.DefaultConfig())
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	dirs, err := library.NewStore(db).Directories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{music}, dirs)
}

func TestMigrate_LibraryInDirectoryWithHash(t *testing.T) {
	f := newFixture(t, "linux")
	f.settings = filepath.Join(t.TempDir(), "dj#1")
	f.writeSettings(t, "[Config]\nVersion 1.11.0\n")

	res := f.migrator("2.6.1").Migrate(context.Background(), f.settings)

	require.Empty(t, res.Errors)
	assert.True(t, res.UpToDate)
	assert.FileExists(t, filepath.Join(f.settings, library.DBFileName))
	assert.NoFileExists(t, filepath.Join(filepath.Dir(f.settings), "dj"))
}

func TestMigrate_ControllerMappingsCopied(t *testing.T) {
	f := newFixture(t, "linux")
	f.writeSettings(t, "[Config]\nVersion 1.10.1\n")
	midi := filepath.Join(f.settings, "midi")
	controllers := filepath.Join(f.settings, "controllers")
	require.NoError(t, os.MkdirAll(midi, 0o755))
	require.NoError(t, os.MkdirAll(controllers, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(midi, "a.midi.xml"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(midi, "b.midi.xml"), []byte("old"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(controllers, "b.midi.xml"), []byte("new"), 0o644))
	f.prompts.answer = true

	res := f.migrator("2.6.1").Migrate(context.Background(), f.settings)
	require.Empty(t, res.Errors)

	got, err := os.ReadFile(filepath.Join(controllers, "a.midi.xml"))
	require.NoError(t, err)
	assert.Equal(t, "a", string(got))
	got, err = os.ReadFile(filepath.Join(controllers, "b.midi.xml"))
	require.NoError(t, err)
	assert.Equal(t, "new", string(got), "existing mappings are kept")
	assert.Equal(t, "1", reload(t, f.settings).GetString(settings.KeyReanalyzeOnChange))
}

func TestMigrate_RelocatesLegacyFiles(t *testing.T) {
	f := newFixture(t, "linux")
	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(f.home, name), []byte(content), 0o644))
	}
	write(".mixxx.cfg", "[Config]\nVersion 2.6.1\n")
	write(".mixxxtrack.xml", "<tracks/>")
	write(".MixxxMIDIBindings.xml", "<bindings/>")
	write(".MixxxMIDIDevice.xml", "<device/>")

	res := f.migrator("2.6.1").Migrate(context.Background(), f.settings)

	assert.True(t, res.Relocated)
	assert.False(t, res.FirstRun)
	assert.True(t, res.UpToDate)
	assert.FileExists(t, filepath.Join(f.settings, "mixxxtrack.xml"))
	assert.FileExists(t, filepath.Join(f.settings, "MixxxMIDIBindings.xml"))
	assert.NoFileExists(t, filepath.Join(f.home, ".mixxx.cfg"))
	assert.NoFileExists(t, filepath.Join(f.home, ".mixxxtrack.xml"))
	assert.NoFileExists(t, filepath.Join(f.home, ".MixxxMIDIDevice.xml"))
	assert.Equal(t, "2.6.1", reload(t, f.settings).GetString(settings.KeyVersion))
}

func TestMigrate_RelocationSkippedWhenSettingsExist(t *testing.T) {
	f := newFixture(t, "linux")
	require.NoError(t, os.WriteFile(filepath.Join(f.home, ".mixxx.cfg"), []byte("[Config]\nVersion 1.7.0\n"), 0o644))
	f.writeSettings(t, "[Config]\nVersion 2.6.1\n")

	res := f.migrator("2.6.1").Migrate(context.Background(), f.settings)

	assert.False(t, res.Relocated)
	assert.FileExists(t, filepath.Join(f.home, ".mixxx.cfg"))
	assert.Equal(t, "2.6.1", reload(t, f.settings).GetString(settings.KeyVersion))
}

func TestMigrate_PreReleaseFallback(t *testing.T) {
	f := newFixture(t, "darwin")
	old := filepath.Join(f.home, ".mixxx")
	require.NoError(t, os.MkdirAll(old, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(old, settings.FileName), []byte("[Config]\nVersion 2.6.1\n"), 0o644))

	t.Run("implicit settings path uses fallback", func(t *testing.T) {
		m := New(Options{Layout: f.layout, Confirmer: f.prompts, Current: "2.6.1"})
		res := m.Migrate(context.Background(), f.settings)
		assert.False(t, res.FirstRun)
		assert.Equal(t, old, res.SettingsPath)
		assert.Equal(t, "2.6.1", res.StoredVersion)
	})

	t.Run("explicit settings path is a first run", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "explicit")
		res := f.migrator("2.6.1").Migrate(context.Background(), dir)
		assert.True(t, res.FirstRun)
		assert.Equal(t, dir, res.SettingsPath)
	})
}

func TestMigrate_MovesPre19MacSettings(t *testing.T) {
	f := newFixture(t, "darwin")
	old := filepath.Join(f.home, ".mixxx")
	require.NoError(t, os.MkdirAll(filepath.Join(old, "midi"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(old, settings.FileName), []byte("[Config]\nVersion 1.8.2\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(old, "midi", "deck.midi.xml"), []byte("m"), 0o644))

	m := New(Options{Layout: f.layout, Confirmer: f.prompts, Current: "2.6.1"})
	res := m.Migrate(context.Background(), f.settings)

	require.Empty(t, res.Errors)
	assert.True(t, res.UpToDate)
	assert.Equal(t, f.settings, res.SettingsPath, "settings end up in the requested directory")
	assert.DirExists(t, filepath.Join(f.home, ".mixxx-1.8"))
	assert.NoDirExists(t, old)
	assert.FileExists(t, filepath.Join(f.settings, "midi", "deck.midi.xml"))
	assert.FileExists(t, filepath.Join(f.settings, "controllers", "deck.midi.xml"))
	assert.Equal(t, "2.6.1", reload(t, f.settings).GetString(settings.KeyVersion))
}

func TestMigrate_MovesPre19MacSettingsKeepsVSyncFix(t *testing.T) {
	f := newFixture(t, "darwin")
	old := filepath.Join(f.home, ".mixxx")
	require.NoError(t, os.MkdirAll(old, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(old, settings.FileName),
		[]byte("[Config]\nVersion 1.8.0\n\n[Waveform]\nVSync 2\n"), 0o644))

	m := New(Options{Layout: f.layout, Confirmer: f.prompts, Current: "2.6.1"})
	res := m.Migrate(context.Background(), f.settings)

	require.Empty(t, res.Errors)
	assert.Equal(t, f.settings, res.SettingsPath)
	s := reload(t, f.settings)
	assert.Equal(t, "2.6.1", s.GetString(settings.KeyVersion))
	assert.Equal(t, int(waveform.VSyncDefault), s.GetInt(settings.KeyVSync, -1))
}

func TestMigrate_StepsRunInOrderAndHalt(t *testing.T) {
	f := newFixture(t, "linux")
	f.writeSettings(t, "[Config]\nVersion 1.0.0\n")

	var ran []string
	step := func(name, to string, err error) Step {
		return Step{
			Name:    name,
			To:      to,
			Applies: func(from, _ version.Tag) bool { return from.Less(version.Parse(to)) },
			Run: func(context.Context, *State) error {
				ran = append(ran, name)
				return err
			},
		}
	}
	boom := errors.New("boom")
	m := New(Options{
		Layout:               f.layout,
		SettingsPathExplicit: true,
		Confirmer:            f.prompts,
		Current:              "3.0.0",
		Steps: []Step{
			step("a", "1.1.0", nil),
			step("b", "1.2.0", nil),
			step("c", "1.3.0", boom),
			step("d", "1.4.0", nil),
		},
	})

	res := m.Migrate(context.Background(), f.settings)

	assert.Equal(t, []string{"a", "b", "c"}, ran)
	assert.Equal(t, []string{"d"}, res.Skipped)
	assert.Equal(t, "1.2.0", res.FinalVersion)
	assert.ErrorIs(t, res.Steps[2].Err, boom)
	assert.Equal(t, "1.2.0", reload(t, f.settings).GetString(settings.KeyVersion))
}

func TestMigrate_UnreadableSettingsLeftAlone(t *testing.T) {
	f := newFixture(t, "linux")
	require.NoError(t, os.MkdirAll(filepath.Join(f.settings, settings.FileName), 0o755))

	res := f.migrator("2.6.1").Migrate(context.Background(), f.settings)

	assert.NotEmpty(t, res.Errors)
	assert.False(t, res.FirstRun)
	assert.DirExists(t, filepath.Join(f.settings, settings.FileName))
}
