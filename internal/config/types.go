// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import "time"

// PromptMode selects how upgrade questions are answered.
type PromptMode string

const (
	PromptTerminal PromptMode = "terminal" // ask on stdin when it is a TTY
	PromptDefaults PromptMode = "defaults" // never ask, take each default
	PromptYes      PromptMode = "yes"      // answer yes to everything
	PromptNo       PromptMode = "no"       // answer no to everything
)

// PromptModes lists the accepted modes.
var PromptModes = []PromptMode{PromptTerminal, PromptDefaults, PromptYes, PromptNo}

// Valid reports whether m is one of PromptModes.
func (m PromptMode) Valid() bool {
	for _, v := range PromptModes {
		if v == m {
			return true
		}
	}
	return false
}

// Options is the effective configuration of an upgrade run.
type Options struct {
	// SettingsPath is the settings directory. SettingsPathExplicit is set
	// when it came from a flag, the file or the environment rather than the
	// platform default; the pre-release fallback is skipped in that case.
	SettingsPath         string
	SettingsPathExplicit bool
	Home                 string
	Prompt               PromptMode
	MetricsTextfile      string
	LogLevel             string
	LogFormat            string
	DBBusyTimeout        time.Duration
	DBMaxOpenConns       int
}

// FileConfig is the YAML shape of the options file.
type FileConfig struct {
	SettingsPath    string         `yaml:"settingsPath,omitempty"`
	Home            string         `yaml:"home,omitempty"`
	Prompt          string         `yaml:"prompt,omitempty"`
	MetricsTextfile string         `yaml:"metricsTextfile,omitempty"`
	Log             LogConfig      `yaml:"log,omitempty"`
	Database        DatabaseConfig `yaml:"database,omitempty"`
}

// LogConfig is the log section of the options file.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// DatabaseConfig is the database section of the options file.
type DatabaseConfig struct {
	BusyTimeout  time.Duration `yaml:"busyTimeout,omitempty"`
	MaxOpenConns int           `yaml:"maxOpenConns,omitempty"`
}
