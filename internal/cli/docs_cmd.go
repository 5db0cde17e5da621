// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/lexpad-tui/internal/api"
	"github.com/jeranaias/lexpad-tui/internal/ui/styles"
	"github.com/jeranaias/lexpad-tui/internal/util"
)

// Column width of the title in the documents table.
const docTitleWidth = 48

func newDocsCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "docs",
		Aliases: []string{"documents", "ls"},
		Short:   "List and manage documents",
		Args:    cobra.NoArgs,
		GroupID: "core",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rt.listDocuments(cmd)
		},
	}
	cmd.PersistentFlags().BoolVar(&rt.jsonOut, "json", false, "Output JSON")
	cmd.AddCommand(newDocsDeleteCmd(rt))
	return cmd
}

// docEntry is the --json form of a document row.
type docEntry struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	FileName  string `json:"file_name,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

func (rt *runtime) listDocuments(cmd *cobra.Command) error {
	if err := rt.load(); err != nil {
		return err
	}
	if err := rt.requireSession(); err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	return OutputJSON(out, rt.jsonOut, "docs", func() (any, error) {
		docs, err := rt.client.ListDocuments(cmd.Context())
		if err != nil {
			return nil, err
		}
		entries := make([]docEntry, len(docs))
		for i, d := range docs {
			entries[i] = docEntry{ID: d.ID, Title: d.Title, FileName: d.FileName, UpdatedAt: d.UpdatedAt}
		}
		if rt.jsonOut {
			return entries, nil
		}
		if len(docs) == 0 {
			fmt.Fprintln(out, DimStyle.Render("No documents yet."))
			return entries, nil
		}
		fmt.Fprintln(out, documentTable(docs))
		return entries, nil
	})
}

// documentTable renders docs newest first, as returned by the server.
func documentTable(docs []api.Document) string {
	header := lipgloss.NewStyle().Bold(true).Foreground(styles.Cyan).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	id := cell.Foreground(styles.TextMuted)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(styles.OverlayDim)).
		BorderColumn(false).
		BorderLeft(false).
		BorderRight(false).
		BorderTop(false).
		BorderBottom(false).
		Headers("ID", "TITLE", "UPDATED").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return header
			case col == 0:
				return id
			}
			return cell
		})
	for _, d := range docs {
		updated := "-"
		if ts := d.Updated(); !ts.IsZero() {
			updated = humanize.Time(ts)
		}
		t.Row(d.ID, util.TruncateRunes(titleOf(d), docTitleWidth), updated)
	}
	return t.Render()
}

func titleOf(d api.Document) string {
	if t := strings.TrimSpace(d.Title); t != "" {
		return t
	}
	if d.FileName != "" {
		return d.FileName
	}
	return "Untitled"
}

func newDocsDeleteCmd(rt *runtime) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "delete <document-id>",
		Aliases: []string{"rm"},
		Short:   "Delete a document",
		Example: `  lexpad docs delete 6f1c2a
  lexpad docs rm 6f1c2a --yes`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.load(); err != nil {
				return err
			}
			if err := rt.requireSession(); err != nil {
				return err
			}
			id := args[0]
			out := cmd.OutOrStdout()
			if !yes && !rt.jsonOut {
				if !PromptYesNo(cmd.InOrStdin(), out, fmt.Sprintf("Delete document %s?", id)) {
					fmt.Fprintln(out, "Aborted.")
					return nil
				}
			} else if !yes {
				return &UsageError{Field: "yes", Reason: "deleting in JSON mode needs confirmation", Example: "lexpad docs delete " + id + " --json --yes"}
			}
			return OutputJSON(out, rt.jsonOut, "docs delete", func() (any, error) {
				if err := rt.client.DeleteDocument(cmd.Context(), id); err != nil {
					return nil, err
				}
				rt.logger.Info("document deleted", zap.String("doc_id", id))
				if !rt.jsonOut {
					fmt.Fprintf(out, "%s Deleted %s\n", SuccessStyle.Render("[OK]"), id)
				}
				return map[string]string{"id": id}, nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
