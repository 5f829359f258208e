// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package config provides generator settings for devcontainer-init.
//
// Precedence, lowest to highest: built-in defaults, the optional YAML
// settings file, DEVCONTAINER_INIT_* environment variables, CLI flags
// (applied by the caller). This package and internal/log are the only
// places that read the process environment.
package config
