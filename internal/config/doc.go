// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads lexpad's settings.
//
// Supports both TOML and JSON configuration formats, with defaults,
// .env files, environment variable overrides, and validation.
//
// # Configuration Precedence
//
// Later sources win:
//   - Built-in defaults
//   - ~/.lexpad/config.toml (or config.json, or the --config path)
//   - .env in the working directory, then ~/.lexpad/.env
//   - Environment variables (LEXPAD_*)
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    return err
//	}
//	client := api.NewClient(cfg.API.BaseURL, tokens).
//	    WithTimeout(cfg.API.Timeout())
package config
