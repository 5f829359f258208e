// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"strings"
	"time"

	"github.com/DiamondsLab/diamonds-devcontainer/internal/log"
	"github.com/rs/zerolog"
)

// Environment variables consulted by the loader.
const (
	EnvPrefix        = "DEVCONTAINER_INIT_"
	EnvEnvFile       = EnvPrefix + "ENV_FILE"
	EnvTemplate      = EnvPrefix + "TEMPLATE"
	EnvOutput        = EnvPrefix + "OUTPUT"
	EnvStrictSchema  = EnvPrefix + "STRICT_SCHEMA"
	EnvMetricsFile   = EnvPrefix + "METRICS_FILE"
	EnvWatchDebounce = EnvPrefix + "WATCH_DEBOUNCE"
	EnvLogLevel      = EnvPrefix + "LOG_LEVEL"
	EnvLogFormat     = EnvPrefix + "LOG_FORMAT"
)

// LookupFunc reads one environment variable.
type LookupFunc func(key string) (string, bool)

// parseString returns the variable's value, or defaultValue when it is
// unset or empty. The choice is logged at debug level.
func parseString(lookup LookupFunc, logger zerolog.Logger, key, defaultValue string) string {
	value, exists := lookup(key)
	switch {
	case !exists:
		logger.Debug().
			Str(log.FieldKey, key).
			Str(log.FieldDefault, defaultValue).
			Str(log.FieldSource, "default").
			Msg("using default value")
		return defaultValue
	case value == "":
		logger.Debug().
			Str(log.FieldKey, key).
			Str(log.FieldDefault, defaultValue).
			Str(log.FieldSource, "default").
			Msg("using default value (environment variable is empty)")
		return defaultValue
	default:
		logger.Debug().
			Str(log.FieldKey, key).
			Str(log.FieldValue, value).
			Str(log.FieldSource, "environment").
			Msg("using environment variable")
		return value
	}
}

// parseBool accepts true/false, 1/0 and yes/no in any case.
func parseBool(lookup LookupFunc, logger zerolog.Logger, key string, defaultValue bool) bool {
	v, ok := lookup(key)
	if !ok || v == "" {
		return defaultValue
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes":
		logger.Debug().Str(log.FieldKey, key).Bool(log.FieldValue, true).Str(log.FieldSource, "environment").Msg("using environment variable")
		return true
	case "false", "0", "no":
		logger.Debug().Str(log.FieldKey, key).Bool(log.FieldValue, false).Str(log.FieldSource, "environment").Msg("using environment variable")
		return false
	default:
		logger.Warn().
			Str(log.FieldKey, key).
			Str(log.FieldValue, v).
			Bool(log.FieldDefault, defaultValue).
			Msg("invalid boolean in environment variable, using default")
		return defaultValue
	}
}

func parseDuration(lookup LookupFunc, logger zerolog.Logger, key string, defaultValue time.Duration) time.Duration {
	v, ok := lookup(key)
	if !ok || v == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		logger.Warn().
			Str(log.FieldKey, key).
			Str(log.FieldValue, v).
			Dur(log.FieldDefault, defaultValue).
			Msg("invalid duration in environment variable, using default")
		return defaultValue
	}
	logger.Debug().Str(log.FieldKey, key).Dur(log.FieldValue, d).Str(log.FieldSource, "environment").Msg("using environment variable")
	return d
}
