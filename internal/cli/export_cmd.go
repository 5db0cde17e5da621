// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/lexpad-tui/internal/api"
	"github.com/jeranaias/lexpad-tui/internal/export"
)

func newExportCmd(rt *runtime) *cobra.Command {
	opts := export.DefaultOptions()
	var (
		format string
		noChat bool
		stdout bool
	)
	cmd := &cobra.Command{
		Use:   "export <document-id>",
		Short: "Write a document and its assistant history to a file",
		Example: `  lexpad export 6f1c2a
  lexpad export 6f1c2a --format html --open
  lexpad export 6f1c2a --format txt --stdout --no-chat`,
		Args:    cobra.ExactArgs(1),
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.load(); err != nil {
				return err
			}
			if err := rt.requireSession(); err != nil {
				return err
			}
			opts.IncludeChat = !noChat
			if !cmd.Flags().Changed("theme") && rt.cfg.UI.Theme == "light" {
				opts.Theme = "light"
			}
			exp, err := export.ForFormat(format, opts)
			if err != nil {
				return &UsageError{Field: "format", Reason: err.Error(), Example: "--format " + strings.Join(export.Formats, "|")}
			}

			bundle, err := rt.exportBundle(cmd, args[0], opts.IncludeChat)
			if err != nil {
				return err
			}
			if stdout {
				data, err := exp.Export(bundle)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}

			path, err := export.WriteFile(bundle, exp, opts)
			if err != nil {
				return err
			}
			rt.logger.Info("document exported",
				zap.String("doc_id", bundle.Document.ID),
				zap.String("format", exp.MimeType()),
				zap.String("path", path))
			fmt.Fprintf(cmd.OutOrStdout(), "%s Exported to %s\n", SuccessStyle.Render("[OK]"), path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "markdown", "Output format: "+strings.Join(export.Formats, ", "))
	cmd.Flags().StringVarP(&opts.OutputDir, "output", "o", opts.OutputDir, "Directory to write into")
	cmd.Flags().StringVar(&opts.Theme, "theme", opts.Theme, "HTML theme: dark or light")
	cmd.Flags().BoolVar(&opts.OpenAfterExport, "open", false, "Open the file when done")
	cmd.Flags().BoolVar(&noChat, "no-chat", false, "Leave out the assistant history")
	cmd.Flags().BoolVar(&stdout, "stdout", false, "Write to stdout instead of a file")
	return cmd
}

// exportBundle fetches the document and, when wanted, its chat history.
func (rt *runtime) exportBundle(cmd *cobra.Command, docID string, withChat bool) (*export.Bundle, error) {
	doc, err := rt.client.GetDocument(cmd.Context(), docID)
	if err != nil {
		return nil, err
	}
	bundle := &export.Bundle{Document: *doc, ExportedAt: time.Now()}
	if !withChat {
		return bundle, nil
	}
	records, err := rt.client.ChatHistory(cmd.Context(), docID)
	switch {
	case api.IsAuth(err):
		return nil, err
	case err != nil:
		rt.logger.Warn("chat history unavailable", zap.String("doc_id", docID), zap.Error(err))
		return bundle, nil
	}
	chat, err := rt.chatFor(docID)
	if err != nil {
		return nil, err
	}
	chat.Seed(records)
	bundle.Chat = chat.Log()
	return bundle, nil
}
