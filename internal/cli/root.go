// Package cli implements flowctl, an offline inspector for the sessions and
// history the server has persisted.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"flow-chat/backend/internal/config"
	"flow-chat/backend/internal/database"
	app_errors "flow-chat/backend/internal/errors"
	"flow-chat/backend/internal/identity"
	"flow-chat/backend/internal/repository"
)

const (
	keyUser      = "FLOW_USER"
	keyDatabase  = "DATABASE_PATH"
	keyStore     = "STORE_DRIVER"
	keyRedisAddr = "REDIS_ADDR"
)

// store is an opened repository scoped to one user.
type store struct {
	ident identity.Identity
	repo  repository.Repository
	close func() error
}

// NewRootCommand builds the flowctl command tree. Flags fall back to the
// same environment variables the server reads.
func NewRootCommand() *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:   "flowctl",
		Short: "Inspect stored chat sessions and history",
		Long: `flowctl reads the sessions and history the Flow Chat server has persisted.

Examples:
  flowctl sessions list --user alice
  flowctl sessions export 1718000000000 --user alice --format yaml
  flowctl history search "lighthouse" --user alice`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		},
	}

	flags := root.PersistentFlags()
	flags.String("user", "", "User whose data is read (env FLOW_USER)")
	flags.String("db", "/data/flow-chat.db", "SQLite database path (env DATABASE_PATH)")
	flags.String("store", config.DriverSQLite, "Session store, sqlite or redis (env STORE_DRIVER)")
	flags.String("redis-addr", "localhost:6379", "Redis address (env REDIS_ADDR)")
	flags.BoolP("verbose", "v", false, "Enable debug logging")

	_ = v.BindPFlag(keyUser, flags.Lookup("user"))
	_ = v.BindPFlag(keyDatabase, flags.Lookup("db"))
	_ = v.BindPFlag(keyStore, flags.Lookup("store"))
	_ = v.BindPFlag(keyRedisAddr, flags.Lookup("redis-addr"))
	v.AutomaticEnv()

	root.AddCommand(newSessionsCommand(v), newHistoryCommand(v))
	return root
}

// Execute runs flowctl and returns the process exit code.
func Execute() int {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func openStore(ctx context.Context, v *viper.Viper) (*store, error) {
	ident, ok := identity.Parse(v.GetString(keyUser))
	if !ok {
		return nil, fmt.Errorf("a valid --user is required: %w", app_errors.ErrValidation)
	}

	switch driver := strings.ToLower(v.GetString(keyStore)); driver {
	case config.DriverSQLite:
		db, err := database.InitDB(v.GetString(keyDatabase))
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		return &store{ident: ident, repo: repository.NewSQLiteRepository(db), close: db.Close}, nil
	case config.DriverRedis:
		rdb := redis.NewClient(&redis.Options{Addr: v.GetString(keyRedisAddr)})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		return &store{ident: ident, repo: repository.NewRedisRepository(rdb), close: rdb.Close}, nil
	default:
		return nil, fmt.Errorf("unknown store %q: %w", driver, app_errors.ErrValidation)
	}
}

// withStore opens the store for the duration of fn.
func withStore(cmd *cobra.Command, v *viper.Viper, fn func(ctx context.Context, s *store) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := openStore(ctx, v)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.close(); err != nil {
			slog.Warn("Failed to close store", "error", err)
		}
	}()
	return fn(ctx, s)
}
