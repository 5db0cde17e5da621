// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/lexpad-tui/internal/api"
	"github.com/jeranaias/lexpad-tui/internal/auth"
	"github.com/jeranaias/lexpad-tui/internal/config"
	"github.com/jeranaias/lexpad-tui/internal/logging"
)

// Version information, set by main.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// runtime holds the flags and the lazily built dependencies of one
// invocation.
type runtime struct {
	configPath string
	debug      bool
	jsonOut    bool

	cfg          *config.Config
	logger       *zap.Logger
	closeLog     func()
	store        *auth.Store
	client       *api.Client
	unauthorized chan struct{}

	// lines opens the chat prompt. Nil means a liner prompt on the terminal.
	lines func() (lineReader, error)
}

// load reads the configuration and builds the logger, session store and
// client. It is a no-op after the first call.
func (rt *runtime) load() error {
	if rt.cfg != nil {
		return nil
	}
	cfg, err := config.Load(rt.configPath)
	if err != nil {
		return &ConfigError{Path: rt.configPath, Err: err}
	}
	if rt.debug {
		cfg.Log.Level = "debug"
	}

	logger, closeLog, err := logging.New(logging.Config{Path: cfg.Log.Path, Level: cfg.Log.Level})
	if err != nil {
		logger, closeLog = zap.NewNop(), func() {}
	}

	sessionFile := cfg.Auth.SessionFile
	if sessionFile == "" {
		sessionFile = filepath.Join(auth.SessionDir(), "session.json")
	}
	store := auth.NewStore(sessionFile).WithOverride(cfg.Auth.Token)

	rt.unauthorized = make(chan struct{}, 1)
	client := api.NewClient(cfg.API.BaseURL, store).
		WithTimeout(cfg.API.Timeout()).
		WithMaxRetries(cfg.API.MaxRetries).
		WithRateLimit(cfg.API.RatePerSec, cfg.API.Burst).
		WithListCacheTTL(cfg.API.ListCacheTTL()).
		WithLogger(logging.Named(logger, "api")).
		OnUnauthorized(func() {
			select {
			case rt.unauthorized <- struct{}{}:
			default:
			}
		})

	rt.cfg, rt.logger, rt.closeLog = cfg, logger, closeLog
	rt.store, rt.client = store, client
	rt.logger.Debug("cli ready",
		zap.String("version", Version),
		zap.String("base_url", cfg.API.BaseURL),
		zap.String("session_file", sessionFile))
	return nil
}

func (rt *runtime) close() {
	if rt.closeLog != nil {
		rt.closeLog()
		rt.closeLog = nil
	}
}

// validatingClient checks token without touching the session store or the
// unauthorized hook.
func (rt *runtime) validatingClient(token string) *api.Client {
	return api.NewClient(rt.cfg.API.BaseURL, api.StaticToken(token)).
		WithTimeout(rt.cfg.API.Timeout()).
		WithMaxRetries(0).
		WithLogger(logging.Named(rt.logger, "api"))
}

// =============================================================================
// ROOT COMMAND
// =============================================================================

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&runtime{})
}

func newRootCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lexpad",
		Short: "Edit and analyze legal documents from the terminal",
		Long: `lexpad is a terminal client for the document analysis service.

Run it without a subcommand to open the editor UI.`,
		Example: `  lexpad
  lexpad open 6f1c2a
  lexpad ask 6f1c2a "What is the notice period?"`,
		Args:          cobra.NoArgs,
		Version:       Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rt.runTUI(cmd, "")
		},
	}

	cmd.PersistentFlags().StringVarP(&rt.configPath, "config", "c", "", "Path to a config file (default: ~/.lexpad/config.toml)")
	cmd.PersistentFlags().BoolVarP(&rt.debug, "debug", "d", false, "Enable debug logging")

	cmd.AddGroup(&cobra.Group{ID: "core", Title: "Core Commands:"})
	cmd.AddGroup(&cobra.Group{ID: "ai", Title: "Analysis Commands:"})
	cmd.AddGroup(&cobra.Group{ID: "account", Title: "Account Commands:"})

	cmd.AddCommand(
		newTUICmd(rt),
		newOpenCmd(rt),
		newExportCmd(rt),
		newDocsCmd(rt),
		newAskCmd(rt),
		newRedFlagsCmd(rt),
		newSummarizeCmd(rt),
		newChatCmd(rt),
		newLoginCmd(rt),
		newLogoutCmd(rt),
		newWhoamiCmd(rt),
		newConfigCmd(rt),
		newVersionCmd(),
	)
	return cmd
}

// Execute runs the command line and reports any error on stderr. The
// returned error decides the exit code; see ExitCode.
func Execute(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer, args ...string) error {
	rt := &runtime{}
	defer rt.close()

	cmd := newRootCmd(rt)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err != nil {
		if rt.logger != nil {
			rt.logger.Error("command failed", zap.Error(err))
		}
		DisplayError(stderr, err, rt.jsonOut)
	}
	return err
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			_, _ = io.WriteString(out, "lexpad "+Version+"\n")
			_, _ = io.WriteString(out, RenderField("commit", GitCommit)+"\n")
			_, _ = io.WriteString(out, RenderField("built", BuildDate)+"\n")
		},
	}
}
