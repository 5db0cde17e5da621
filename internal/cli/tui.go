// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/lexpad-tui/internal/docsync"
	"github.com/jeranaias/lexpad-tui/internal/drafts"
	"github.com/jeranaias/lexpad-tui/internal/logging"
	"github.com/jeranaias/lexpad-tui/internal/ui/app"
)

func newTUICmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:     "tui",
		Short:   "Open the document list and editor (default)",
		Args:    cobra.NoArgs,
		GroupID: "core",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rt.runTUI(cmd, "")
		},
	}
}

func newOpenCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:     "open <document-id>",
		Short:   "Open a document straight in the editor",
		Args:    cobra.ExactArgs(1),
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.runTUI(cmd, args[0])
		},
	}
}

// runTUI runs the Bubble Tea program until the user quits.
func (rt *runtime) runTUI(cmd *cobra.Command, docID string) error {
	if err := RequiresTTY("run the editor"); err != nil {
		return err
	}
	if err := rt.load(); err != nil {
		return err
	}
	logger := rt.logger

	var store docsync.DraftStore
	if rt.cfg.Drafts.Enabled {
		d, err := drafts.Open(rt.cfg.Drafts.Path)
		if err != nil {
			logger.Warn("drafts store unavailable", zap.Error(err))
		} else {
			defer d.Close()
			store = d
		}
	}

	deps := app.Deps{
		Config:       rt.cfg,
		Client:       rt.client,
		Sessions:     rt.store,
		Drafts:       store,
		Unauthorized: rt.unauthorized,
		OpenDoc:      docID,
		Logger:       logger,
	}
	if rt.cfg.Auth.Token == "" {
		w, err := rt.store.Watch(logging.Named(logger, "auth"))
		if err != nil {
			logger.Warn("session watcher unavailable", zap.Error(err))
		} else {
			defer w.Close()
			deps.Watcher = w
		}
	}

	p := tea.NewProgram(app.New(deps),
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithContext(cmd.Context()),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	logger.Info("tui started", zap.String("open_doc", docID))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run editor: %w", err)
	}
	logger.Info("tui stopped")
	return nil
}
