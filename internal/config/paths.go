// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import "path/filepath"

// LegacyFile is a pre-1.8 file kept in the home directory that is moved
// into the settings directory on upgrade.
// Warning, when set, is logged once the file has been moved.
type LegacyFile struct {
	Source  string
	Dest    string
	Warning string
}

// Layout holds every platform-dependent location the upgrade touches.
type Layout struct {
	GOOS string
	Home string

	// LegacyConfig is the pre-1.8 settings file in the home directory.
	LegacyConfig string
	// LegacyAux are the companion files relocated together with LegacyConfig.
	LegacyAux []LegacyFile

	// Obsolete files are deleted during relocation.
	Obsolete []string

	// PreReleaseConfig is the settings file used by pre-release builds, or
	// empty when the platform has none.
	PreReleaseConfig string

	// OldSettingsDir is the pre-1.9 macOS settings directory; empty elsewhere.
	OldSettingsDir string

	// OldSettingsSubdirs are copied flat into the same subdirectory of the
	// settings path.
	OldSettingsSubdirs []string

	// OldSettingsBackup is where OldSettingsDir is renamed once copied.
	OldSettingsBackup string
}

// ResolveLayout builds the Layout for home on goos.
func ResolveLayout(home, goos string) Layout {
	l := Layout{GOOS: goos, Home: home}

	if goos == "windows" {
		l.LegacyConfig = filepath.Join(home, "mixxx.cfg")
		// Old windows builds wrote the bpm schemes file with a plural name.
		l.LegacyAux = []LegacyFile{
			{Source: filepath.Join(home, "mixxxtrack.xml"), Dest: "mixxxtrack.xml"},
			{Source: filepath.Join(home, "mixxxbpmschemes.xml"), Dest: "mixxxbpmscheme.xml"},
			mappingsFile(filepath.Join(home, "MixxxMIDIBindings.xml")),
		}
		l.Obsolete = []string{filepath.Join(home, "MixxxMIDIDevice.xml")}
	} else {
		l.LegacyConfig = filepath.Join(home, ".mixxx.cfg")
		l.LegacyAux = []LegacyFile{
			{Source: filepath.Join(home, ".mixxxtrack.xml"), Dest: "mixxxtrack.xml"},
			{Source: filepath.Join(home, ".mixxxbpmscheme.xml"), Dest: "mixxxbpmscheme.xml"},
			mappingsFile(filepath.Join(home, ".MixxxMIDIBindings.xml")),
		}
		l.Obsolete = []string{filepath.Join(home, ".MixxxMIDIDevice.xml")}
	}

	switch goos {
	case "darwin":
		l.PreReleaseConfig = filepath.Join(home, ".mixxx", "mixxx.cfg")
		l.OldSettingsDir = filepath.Join(home, ".mixxx")
		l.OldSettingsSubdirs = []string{"midi", "presets"}
		l.OldSettingsBackup = filepath.Join(home, ".mixxx-1.8")
	case "windows":
		l.PreReleaseConfig = filepath.Join(home, "Local Settings", "Application Data", "Mixxx", "mixxx.cfg")
	}
	return l
}

func mappingsFile(source string) LegacyFile {
	return LegacyFile{
		Source:  source,
		Dest:    "MixxxMIDIBindings.xml",
		Warning: "controller mappings were moved; MIDI devices must be reconfigured",
	}
}

// DefaultSettingsPath returns the settings directory used when none is
// configured.
func DefaultSettingsPath(home, goos string) string {
	switch goos {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Mixxx")
	case "windows":
		return filepath.Join(home, "AppData", "Local", "Mixxx")
	default:
		return filepath.Join(home, ".mixxx")
	}
}
