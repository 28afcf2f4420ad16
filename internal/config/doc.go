// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading for flexchat.
//
// Supports TOML and YAML configuration files, with built-in defaults,
// environment variable overrides, and validation. A *Config is built once at
// process start and passed explicitly to every component; there is no global
// instance.
//
// # Key Types
//
//   - Config: main configuration structure
//   - ProviderConfig: one chat vendor endpoint and its credential source
//   - QuestionsConfig: fan-out Q&A pipeline settings
//   - LoggingConfig: slog level, format and optional log file
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (provider API keys, FLEXCHAT_*)
//   - ~/.flexchat/config.toml
//   - ~/.flexchat/config.yaml
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	for _, p := range cfg.EnabledProviders() {
//	    fmt.Println(p.Name)
//	}
package config
