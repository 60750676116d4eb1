package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	app_errors "flow-chat/backend/internal/errors"
	"flow-chat/backend/internal/history"
	"flow-chat/backend/internal/model"
)

func newHistoryCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Query recorded turns",
	}
	cmd.AddCommand(
		newHistoryListCommand(v),
		newHistorySearchCommand(v),
		newHistoryStatsCommand(v),
		newHistoryRecentCommand(v),
	)
	return cmd
}

func newHistoryListCommand(v *viper.Viper) *cobra.Command {
	var (
		chatType, sessionID, since string
		limit, offset              int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List history entries, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := model.HistoryFilter{SessionID: sessionID, Limit: limit, Offset: offset}
			t, err := parseChatType(chatType)
			if err != nil {
				return err
			}
			filter.ChatType = t
			if since != "" {
				d, err := time.ParseDuration(since)
				if err != nil || d <= 0 {
					return fmt.Errorf("invalid --since %q: %w", since, app_errors.ErrValidation)
				}
				start := time.Now().Add(-d)
				filter.StartDate = &start
			}
			return withStore(cmd, v, func(ctx context.Context, s *store) error {
				renderHistory(cmd.OutOrStdout(), history.NewIndexer(s.repo).List(ctx, s.ident, filter))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&chatType, "type", "t", "", "text, image, video or knowledge_search")
	cmd.Flags().StringVarP(&sessionID, "session", "s", "", "Only entries of this session")
	cmd.Flags().StringVar(&since, "since", "", "Only entries newer than this duration, e.g. 24h")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum entries")
	cmd.Flags().IntVar(&offset, "offset", 0, "Entries to skip")
	return cmd
}

func newHistorySearchCommand(v *viper.Viper) *cobra.Command {
	var chatType string
	cmd := &cobra.Command{
		Use:   "search <term>",
		Short: "Search history content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := parseChatType(chatType)
			if err != nil {
				return err
			}
			return withStore(cmd, v, func(ctx context.Context, s *store) error {
				renderHistory(cmd.OutOrStdout(), history.NewIndexer(s.repo).Search(ctx, s.ident, args[0], t))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&chatType, "type", "t", "", "text, image, video or knowledge_search")
	return cmd
}

func newHistoryStatsCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show aggregate history counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, v, func(ctx context.Context, s *store) error {
				stats := history.NewIndexer(s.repo).Stats(ctx, s.ident)
				if stats == nil {
					return fmt.Errorf("history statistics unavailable: %w", app_errors.ErrPersistence)
				}
				renderStats(cmd.OutOrStdout(), stats)
				return nil
			})
		},
	}
}

func newHistoryRecentCommand(v *viper.Viper) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List the most recently active session ids",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, v, func(ctx context.Context, s *store) error {
				for _, id := range history.NewIndexer(s.repo).RecentSessions(ctx, s.ident, limit) {
					fmt.Fprintln(cmd.OutOrStdout(), id)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", history.DefaultRecentSessions, "Maximum sessions")
	return cmd
}

func parseChatType(raw string) (model.ChatType, error) {
	if raw == "" {
		return "", nil
	}
	t := model.ChatType(raw)
	if !t.Valid() {
		return "", fmt.Errorf("unknown chat type %q: %w", raw, app_errors.ErrValidation)
	}
	return t, nil
}
