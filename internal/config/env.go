// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ManuGH/deckcfg/internal/log"
)

// Environment keys understood by the loader.
const (
	EnvSettingsPath    = "DECKCFG_SETTINGS_PATH"
	EnvHome            = "DECKCFG_HOME"
	EnvPrompt          = "DECKCFG_PROMPT"
	EnvMetricsTextfile = "DECKCFG_METRICS_TEXTFILE"
	EnvLogLevel        = "DECKCFG_LOG_LEVEL"
	EnvLogFormat       = "DECKCFG_LOG_FORMAT"
	EnvDBBusyTimeout   = "DECKCFG_DB_BUSY_TIMEOUT"
	EnvDBMaxOpenConns  = "DECKCFG_DB_MAX_OPEN_CONNS"
	EnvNonInteractive  = "DECKCFG_NON_INTERACTIVE"
)

// fromEnv resolves key through parse. Unset and empty variables yield def;
// values parse rejects yield def with a warning.
func fromEnv[T any](key string, def T, parse func(string) (T, error)) T {
	logger := log.WithComponent("config").With().Str("key", key).Logger()

	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		logger.Debug().Interface("default", def).Str("source", "default").Msg("environment variable not set")
		return def
	}
	v, err := parse(raw)
	if err != nil {
		logger.Warn().Err(err).Str("value", raw).Interface("default", def).
			Msg("invalid environment variable, using default")
		return def
	}
	logger.Debug().Interface("value", v).Str("source", "environment").Msg("using environment variable")
	return v
}

// ParseString reads a string from the environment or returns defaultValue.
func ParseString(key, defaultValue string) string {
	return fromEnv(key, defaultValue, func(s string) (string, error) { return s, nil })
}

// ParseBool accepts true/false, 1/0 and yes/no in any case.
func ParseBool(key string, defaultValue bool) bool {
	return fromEnv(key, defaultValue, func(s string) (bool, error) {
		switch strings.ToLower(s) {
		case "true", "1", "yes":
			return true, nil
		case "false", "0", "no":
			return false, nil
		}
		return false, fmt.Errorf("not a boolean: %q", s)
	})
}

// ParseInt reads a base-10 integer.
func ParseInt(key string, defaultValue int) int {
	return fromEnv(key, defaultValue, strconv.Atoi)
}

// ParseDuration reads a Go duration such as "5s" or "1m30s".
func ParseDuration(key string, defaultValue time.Duration) time.Duration {
	return fromEnv(key, defaultValue, time.ParseDuration)
}
