// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/lexpad-tui/internal/api"
	"github.com/jeranaias/lexpad-tui/internal/auth"
)

func newLoginCmd(rt *runtime) *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with an access token",
		Long: `Validate an access token against the server and store it in the session
file. Without --token the token is read from the terminal without echo, or
from stdin when it is piped.`,
		Example: `  lexpad login
  lexpad login --token "$TOKEN"
  pass show lexpad | lexpad login`,
		Args:    cobra.NoArgs,
		GroupID: "account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := rt.load(); err != nil {
				return err
			}
			token = strings.TrimSpace(token)
			if token == "" {
				t, err := ReadSecret(cmd.InOrStdin(), cmd.ErrOrStderr(), "Access token: ")
				if err != nil {
					return err
				}
				token = t
			}
			if token == "" {
				return &UsageError{Field: "token", Reason: "a token is required", Example: "lexpad login --token <token>"}
			}

			user, err := rt.validatingClient(token).Me(cmd.Context())
			if err != nil {
				return fmt.Errorf("token rejected: %w", err)
			}
			if err := rt.store.Save(auth.Session{AccessToken: token, Email: user.Email}); err != nil {
				return fmt.Errorf("save session: %w", err)
			}
			rt.logger.Info("signed in", zap.String("email", user.Email))
			fmt.Fprintf(cmd.OutOrStdout(), "%s Signed in as %s\n", SuccessStyle.Render("[OK]"), user.Email)
			return nil
		},
	}
	cmd.Flags().StringVarP(&token, "token", "t", "", "Access token to store")
	return cmd
}

func newLogoutCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:     "logout",
		Short:   "Forget the stored session",
		Args:    cobra.NoArgs,
		GroupID: "account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := rt.load(); err != nil {
				return err
			}
			if err := rt.store.Clear(); err != nil {
				return err
			}
			rt.logger.Info("signed out")
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			if rt.cfg.Auth.Token != "" {
				fmt.Fprintln(cmd.OutOrStdout(), WarningStyle.Render("A token is still set in the config or LEXPAD_TOKEN."))
			}
			return nil
		},
	}
}

// whoami is the --json payload of the whoami command.
type whoami struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	ExpiresAt string `json:"expires_at,omitempty"`
	Server    string `json:"server"`
}

func newWhoamiCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "whoami",
		Short:   "Show the signed-in user",
		Args:    cobra.NoArgs,
		GroupID: "account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := rt.load(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			return OutputJSON(out, rt.jsonOut, "whoami", func() (any, error) {
				user, err := rt.client.Me(cmd.Context())
				if err != nil {
					return nil, err
				}
				info := whoami{ID: user.ID, Email: user.Email, Name: user.Name, Server: rt.client.BaseURL()}
				var expires string
				if token, err := rt.store.Token(); err == nil {
					if exp, ok := auth.ExpiresAt(token); ok {
						info.ExpiresAt = exp.UTC().Format("2006-01-02T15:04:05Z")
						expires = humanize.Time(exp)
					}
				}
				if rt.jsonOut {
					return info, nil
				}
				fmt.Fprintln(out, RenderField("email", info.Email))
				if info.Name != "" {
					fmt.Fprintln(out, RenderField("name", info.Name))
				}
				fmt.Fprintln(out, RenderField("server", info.Server))
				if expires != "" {
					fmt.Fprintln(out, RenderField("expires", expires))
				}
				return info, nil
			})
		},
	}
	cmd.Flags().BoolVar(&rt.jsonOut, "json", false, "Output JSON")
	return cmd
}

// requireSession fails early with a sign-in hint when there is no token.
func (rt *runtime) requireSession() error {
	if _, err := rt.store.Token(); err != nil {
		return api.ErrNoToken
	}
	return nil
}
