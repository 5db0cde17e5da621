// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/lexpad-tui/internal/api"
	"github.com/jeranaias/lexpad-tui/internal/assistant"
	"github.com/jeranaias/lexpad-tui/internal/config"
)

const chatPrompt = "lexpad> "

const chatHelp = `Type a question and press enter. Commands:
  /redflags   detect risky clauses
  /summary    summarize the document
  /history    list earlier questions
  /copy       copy the last answer to the clipboard
  /help       show this help
  /quit       leave (also ctrl+d)`

// =============================================================================
// INPUT
// =============================================================================

// lineReader reads prompted lines with history.
type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
	Close() error
}

// historyLiner is a liner prompt that keeps its history in a file.
type historyLiner struct {
	*liner.State
	path string
}

func openLiner() (lineReader, error) {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	dir, err := config.ConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	h := &historyLiner{State: line, path: filepath.Join(dir, "chat_history")}
	if f, err := os.Open(h.path); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
	return h, nil
}

// Close writes the history file and restores the terminal.
func (h *historyLiner) Close() error {
	if err := os.MkdirAll(filepath.Dir(h.path), 0o700); err == nil {
		if f, err := os.OpenFile(h.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600); err == nil {
			_, _ = h.WriteHistory(f)
			f.Close()
		}
	}
	return h.State.Close()
}

// =============================================================================
// COMMAND
// =============================================================================

func newChatCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "chat <document-id>",
		Short: "Chat with the assistant about a document",
		Long: `Start an interactive session with the assistant. Earlier questions on the
document are loaded first. Ctrl+C cancels a pending answer; ctrl+d leaves.`,
		Args:    cobra.ExactArgs(1),
		GroupID: "ai",
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.runChat(cmd, args[0])
		},
	}
}

// chatSession is one interactive chat.
type chatSession struct {
	rt   *runtime
	chat *assistant.Chat
	out  io.Writer
	errw io.Writer

	// lastErr is the outcome of the latest request. Auth failures end the session.
	lastErr error
}

func (rt *runtime) runChat(cmd *cobra.Command, docID string) error {
	chat, err := rt.chatFor(docID)
	if err != nil {
		return err
	}
	records, err := rt.client.ChatHistory(cmd.Context(), docID)
	switch {
	case api.IsAuth(err):
		return err
	case err != nil:
		rt.logger.Warn("chat history unavailable", zap.String("doc_id", docID), zap.Error(err))
	default:
		chat.Seed(records)
	}

	open := rt.lines
	if open == nil {
		open = openLiner
	}
	lines, err := open()
	if err != nil {
		return err
	}
	defer lines.Close()

	s := &chatSession{rt: rt, chat: chat, out: cmd.OutOrStdout(), errw: cmd.ErrOrStderr()}
	fmt.Fprintln(s.out, TitleStyle.Render("lexpad chat")+" "+DimStyle.Render(docID))
	fmt.Fprintln(s.out, assistant.WelcomeMessage)
	if n := chat.Len(); n > 0 {
		fmt.Fprintln(s.out, DimStyle.Render(fmt.Sprintf("%d earlier question(s). /history lists them.", n)))
	}
	fmt.Fprintln(s.out, DimStyle.Render("Type /help for commands."))

	for {
		input, err := lines.Prompt(chatPrompt)
		if err != nil {
			// ctrl+c at the prompt, ctrl+d and closed input all leave.
			fmt.Fprintln(s.out)
			return nil
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		lines.AppendHistory(input)

		if strings.HasPrefix(input, "/") {
			if !s.command(cmd.Context(), input) {
				return nil
			}
		} else {
			s.lastErr = s.run(cmd.Context(), assistant.KindQuestion, input)
		}
		if api.IsAuth(s.lastErr) {
			return s.lastErr
		}
	}
}

// command runs a slash command and reports whether the session goes on.
func (s *chatSession) command(ctx context.Context, input string) bool {
	name := strings.ToLower(strings.Fields(input)[0])
	switch name {
	case "/quit", "/exit", "/q":
		return false
	case "/help", "/?":
		fmt.Fprintln(s.out, chatHelp)
	case "/redflags", "/red-flags":
		s.lastErr = s.run(ctx, assistant.KindRedFlags, "")
	case "/summary", "/summarize":
		s.lastErr = s.run(ctx, assistant.KindSummary, "")
	case "/history":
		log := s.chat.Log()
		if len(log) == 0 {
			fmt.Fprintln(s.out, DimStyle.Render("No questions yet."))
		}
		for i, e := range log {
			fmt.Fprintf(s.out, "%3d. %s\n", i+1, e.Question)
		}
	case "/copy":
		log := s.chat.Log()
		if len(log) == 0 {
			fmt.Fprintln(s.errw, WarningStyle.Render("Nothing to copy yet."))
			break
		}
		if err := clipboard.WriteAll(log[len(log)-1].Answer); err != nil {
			fmt.Fprintf(s.errw, "%s %v\n", ErrorStyle.Render("[ERROR]"), err)
			break
		}
		fmt.Fprintln(s.out, SuccessStyle.Render("Copied."))
	default:
		fmt.Fprintf(s.errw, "%s unknown command %s, try /help\n", WarningStyle.Render("[?]"), name)
	}
	return true
}

// run performs one assistant action. Ctrl+C cancels only this request.
func (s *chatSession) run(parent context.Context, kind assistant.Kind, question string) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt)
	defer stop()

	fmt.Fprintln(s.out, DimStyle.Render(assistant.ThinkingText))
	var (
		entry assistant.Entry
		err   error
	)
	switch kind {
	case assistant.KindRedFlags:
		entry, err = s.chat.DetectRedFlags(ctx)
	case assistant.KindSummary:
		entry, err = s.chat.Summarize(ctx)
	default:
		entry, err = s.chat.Ask(ctx, question)
	}
	if err != nil {
		if errors.Is(err, context.Canceled) && parent.Err() == nil {
			fmt.Fprintln(s.errw, WarningStyle.Render("[Cancelled]"))
			return err
		}
		if api.IsAuth(err) {
			return err
		}
		fmt.Fprintf(s.errw, "%s %v\n", ErrorStyle.Render("[ERROR]"), err)
		if h := hint(err); h != "" {
			fmt.Fprintln(s.errw, DimStyle.Render(h))
		}
		return err
	}
	s.rt.printAnswer(s.out, entry.Answer, false)
	return nil
}
