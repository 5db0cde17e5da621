// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/lexpad-tui/internal/config"
)

func newConfigCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change settings",
		Example: `  lexpad config show
  lexpad config get api.base_url
  lexpad config set panel.width 70`,
		GroupID: "core",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := rt.load(); err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), rt.cfg.String())
				return nil
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the config file location",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				p, err := rt.configFile()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), p)
				return nil
			},
		},
		&cobra.Command{
			Use:   "get <key>",
			Short: "Print one setting",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := rt.load(); err != nil {
					return err
				}
				v, err := rt.cfg.Get(args[0])
				if err != nil {
					return &UsageError{Field: "key", Reason: err.Error(), Example: "lexpad config keys"}
				}
				if strings.EqualFold(args[0], "auth.token") && v != "" {
					v = "[REDACTED]"
				}
				fmt.Fprintln(cmd.OutOrStdout(), v)
				return nil
			},
		},
		&cobra.Command{
			Use:   "set <key> <value>",
			Short: "Change one setting in the config file",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return rt.setConfig(cmd, args[0], args[1])
			},
		},
		&cobra.Command{
			Use:   "keys",
			Short: "List the settable keys",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, _ []string) {
				for _, k := range config.Keys() {
					fmt.Fprintln(cmd.OutOrStdout(), k)
				}
			},
		},
	)
	return cmd
}

// configFile is --config or the default TOML location.
func (rt *runtime) configFile() (string, error) {
	if rt.configPath != "" {
		return rt.configPath, nil
	}
	return config.ConfigPathTOML()
}

// setConfig edits the file itself so environment overrides are not written
// back.
func (rt *runtime) setConfig(cmd *cobra.Command, key, value string) error {
	path, err := rt.configFile()
	if err != nil {
		return err
	}
	cfg := config.Default()
	if _, err := os.Stat(path); err == nil {
		load := config.LoadTOML
		if strings.HasSuffix(path, ".json") {
			load = config.LoadJSON
		}
		if err := load(cfg, path); err != nil {
			return &ConfigError{Path: path, Err: err}
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return &ConfigError{Path: path, Err: err}
	}

	if err := cfg.Set(key, value); err != nil {
		return &UsageError{Field: "key", Reason: err.Error(), Example: "lexpad config keys"}
	}
	if err := cfg.Validate(); err != nil {
		return &ConfigError{Path: path, Err: err}
	}
	if err := config.Save(cfg, path); err != nil {
		return err
	}
	if rt.load() == nil {
		rt.logger.Info("config updated", zap.String("key", key), zap.String("path", path))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s updated in %s\n", SuccessStyle.Render("[OK]"), key, path)
	return nil
}
