// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestParseString(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		envSet       bool
		want         string
	}{
		{
			name:         "environment variable set",
			key:          EnvOutput,
			defaultValue: "default",
			envValue:     "from-env",
			envSet:       true,
			want:         "from-env",
		},
		{
			name:         "environment variable not set",
			key:          EnvTemplate,
			defaultValue: "default",
			envSet:       false,
			want:         "default",
		},
		{
			name:         "environment variable empty string",
			key:          EnvEnvFile,
			defaultValue: "default",
			envValue:     "",
			envSet:       true,
			want:         "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lookup := noEnv
			if tt.envSet {
				lookup = envMap(map[string]string{tt.key: tt.envValue})
			}
			if got := parseString(lookup, zerolog.Nop(), tt.key, tt.defaultValue); got != tt.want {
				t.Errorf("parseString() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		envSet       bool
		defaultValue bool
		want         bool
	}{
		{name: "true", envValue: "true", envSet: true, want: true},
		{name: "one", envValue: "1", envSet: true, want: true},
		{name: "yes upper", envValue: "YES", envSet: true, want: true},
		{name: "false", envValue: "false", envSet: true, defaultValue: true, want: false},
		{name: "zero", envValue: "0", envSet: true, defaultValue: true, want: false},
		{name: "invalid keeps default", envValue: "maybe", envSet: true, defaultValue: true, want: true},
		{name: "empty keeps default", envValue: "", envSet: true, defaultValue: true, want: true},
		{name: "unset keeps default", envSet: false, defaultValue: true, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := EnvStrictSchema
			lookup := noEnv
			if tt.envSet {
				lookup = envMap(map[string]string{key: tt.envValue})
			}
			if got := parseBool(lookup, zerolog.Nop(), key, tt.defaultValue); got != tt.want {
				t.Errorf("parseBool() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		envSet   bool
		want     time.Duration
	}{
		{name: "valid", envValue: "750ms", envSet: true, want: 750 * time.Millisecond},
		{name: "invalid", envValue: "later", envSet: true, want: time.Second},
		{name: "negative", envValue: "-1s", envSet: true, want: time.Second},
		{name: "unset", want: time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := EnvWatchDebounce
			lookup := noEnv
			if tt.envSet {
				lookup = envMap(map[string]string{key: tt.envValue})
			}
			if got := parseDuration(lookup, zerolog.Nop(), key, time.Second); got != tt.want {
				t.Errorf("parseDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}
