package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	app_errors "flow-chat/backend/internal/errors"
	"flow-chat/backend/internal/model"
	"flow-chat/backend/internal/persistence"
)

func newSessionsCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List, show and export stored sessions",
	}
	cmd.AddCommand(newSessionsListCommand(v), newSessionsShowCommand(v), newSessionsExportCommand(v))
	return cmd
}

func newSessionsListCommand(v *viper.Viper) *cobra.Command {
	var query string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sessions, most recently updated first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, v, func(ctx context.Context, s *store) error {
				sessions := loadSessions(ctx, s)
				if q := strings.ToLower(strings.TrimSpace(query)); q != "" {
					filtered := sessions[:0]
					for _, sess := range sessions {
						if strings.Contains(strings.ToLower(sess.Title), q) {
							filtered = append(filtered, sess)
						}
					}
					sessions = filtered
				}
				renderSessions(cmd.OutOrStdout(), sessions)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "Only sessions whose title contains this text")
	return cmd
}

func newSessionsShowCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "show <session-id>",
		Short: "Print the transcript of one session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, v, func(ctx context.Context, s *store) error {
				sess, err := findSession(ctx, s, args[0])
				if err != nil {
					return err
				}
				renderTranscript(cmd.OutOrStdout(), sess)
				return nil
			})
		},
	}
}

func newSessionsExportCommand(v *viper.Viper) *cobra.Command {
	var format, output string
	cmd := &cobra.Command{
		Use:   "export <session-id>",
		Short: "Export one session as JSON or YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(format)
			if format != "json" && format != "yaml" {
				return fmt.Errorf("unsupported format %q, use json or yaml: %w", format, app_errors.ErrValidation)
			}
			return withStore(cmd, v, func(ctx context.Context, s *store) error {
				sess, err := findSession(ctx, s, args[0])
				if err != nil {
					return err
				}

				w := cmd.OutOrStdout()
				if output != "" {
					f, err := os.Create(output)
					if err != nil {
						return fmt.Errorf("create %s: %w", output, err)
					}
					defer func() { _ = f.Close() }()
					w = f
				}
				return exportSession(w, sess, format)
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format, json or yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	return cmd
}

// loadSessions returns what the server would load for the user, including
// sessions rebuilt from history when none were stored.
func loadSessions(ctx context.Context, s *store) []model.Session {
	return persistence.NewSynchronizer(s.repo, 0).LoadAll(ctx, s.ident)
}

func findSession(ctx context.Context, s *store, id string) (model.Session, error) {
	for _, sess := range loadSessions(ctx, s) {
		if sess.ID == id {
			return sess, nil
		}
	}
	return model.Session{}, fmt.Errorf("session %s: %w", id, app_errors.ErrNotFound)
}

func exportSession(w io.Writer, sess model.Session, format string) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer func() { _ = enc.Close() }()
		return enc.Encode(sess)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(sess)
}
