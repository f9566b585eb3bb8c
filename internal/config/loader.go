// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Database defaults used when neither file nor environment set them.
const (
	DefaultDBBusyTimeout  = 5 * time.Second
	DefaultDBMaxOpenConns = 1
)

// Loader handles options loading with precedence ENV > File > Defaults.
type Loader struct {
	configPath      string
	goos            string
	ConsumedEnvKeys map[string]struct{}
}

// NewLoader creates a loader. configPath may be empty.
func NewLoader(configPath string) *Loader {
	return &Loader{
		configPath:      configPath,
		goos:            runtime.GOOS,
		ConsumedEnvKeys: make(map[string]struct{}),
	}
}

func (l *Loader) envString(key, defaultVal string) string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseString(key, defaultVal)
}

func (l *Loader) envDuration(key string, defaultVal time.Duration) time.Duration {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseDuration(key, defaultVal)
}

func (l *Loader) envInt(key string, defaultVal int) int {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseInt(key, defaultVal)
}

func (l *Loader) envBool(key string, defaultVal bool) bool {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseBool(key, defaultVal)
}

// Load resolves the effective options.
func (l *Loader) Load() (Options, error) {
	opts := Options{
		Prompt:         PromptTerminal,
		LogLevel:       "info",
		LogFormat:      "json",
		DBBusyTimeout:  DefaultDBBusyTimeout,
		DBMaxOpenConns: DefaultDBMaxOpenConns,
	}

	if l.configPath != "" {
		fc, err := l.loadFile(l.configPath)
		if err != nil {
			return opts, fmt.Errorf("load %s: %w", l.configPath, err)
		}
		mergeFileConfig(&opts, fc)
	}

	l.mergeEnv(&opts)

	if opts.Home == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return opts, fmt.Errorf("resolve home directory: %w", err)
		}
		opts.Home = home
	}
	if opts.SettingsPath == "" {
		opts.SettingsPath = DefaultSettingsPath(opts.Home, l.goos)
	} else {
		opts.SettingsPathExplicit = true
	}

	if err := Validate(opts); err != nil {
		return opts, err
	}
	return opts, nil
}

func mergeFileConfig(opts *Options, fc *FileConfig) {
	if fc.SettingsPath != "" {
		opts.SettingsPath = fc.SettingsPath
	}
	if fc.Home != "" {
		opts.Home = fc.Home
	}
	if fc.Prompt != "" {
		opts.Prompt = PromptMode(strings.ToLower(fc.Prompt))
	}
	if fc.MetricsTextfile != "" {
		opts.MetricsTextfile = fc.MetricsTextfile
	}
	if fc.Log.Level != "" {
		opts.LogLevel = fc.Log.Level
	}
	if fc.Log.Format != "" {
		opts.LogFormat = fc.Log.Format
	}
	if fc.Database.BusyTimeout > 0 {
		opts.DBBusyTimeout = fc.Database.BusyTimeout
	}
	if fc.Database.MaxOpenConns > 0 {
		opts.DBMaxOpenConns = fc.Database.MaxOpenConns
	}
}

func (l *Loader) mergeEnv(opts *Options) {
	opts.SettingsPath = l.envString(EnvSettingsPath, opts.SettingsPath)
	opts.Home = l.envString(EnvHome, opts.Home)
	opts.Prompt = PromptMode(strings.ToLower(l.envString(EnvPrompt, string(opts.Prompt))))
	opts.MetricsTextfile = l.envString(EnvMetricsTextfile, opts.MetricsTextfile)
	opts.LogLevel = l.envString(EnvLogLevel, opts.LogLevel)
	opts.LogFormat = l.envString(EnvLogFormat, opts.LogFormat)
	opts.DBBusyTimeout = l.envDuration(EnvDBBusyTimeout, opts.DBBusyTimeout)
	opts.DBMaxOpenConns = l.envInt(EnvDBMaxOpenConns, opts.DBMaxOpenConns)
	if l.envBool(EnvNonInteractive, false) && opts.Prompt == PromptTerminal {
		opts.Prompt = PromptDefaults
	}
}

// loadFile decodes the options file strictly: unknown keys and trailing
// documents are errors.
func (l *Loader) loadFile(path string) (*FileConfig, error) {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("unsupported config format: %s (only YAML supported)", ext)
	}

	// #nosec G304 -- options file path is provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var fc FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil {
		if errors.Is(err, io.EOF) {
			return &FileConfig{}, nil
		}
		if strings.Contains(err.Error(), "field") && strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("%w: %v", ErrUnknownConfigField, err)
		}
		return nil, fmt.Errorf("strict config parse error: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config file contains multiple documents or trailing content")
	}
	return &fc, nil
}

// Validate checks option combinations the loader cannot repair.
func Validate(opts Options) error {
	if !opts.Prompt.Valid() {
		return fmt.Errorf("%w: %q (want one of %v)", ErrInvalidPromptMode, opts.Prompt, PromptModes)
	}
	if strings.TrimSpace(opts.SettingsPath) == "" {
		return errors.New("settings path is empty")
	}
	if opts.DBMaxOpenConns < 1 {
		return fmt.Errorf("database max open connections must be at least 1, got %d", opts.DBMaxOpenConns)
	}
	switch strings.ToLower(opts.LogFormat) {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log format %q (want json or console)", opts.LogFormat)
	}
	return nil
}
