package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fenggwsx/SlashSQL/internal/config"
	"github.com/fenggwsx/SlashSQL/internal/logging"
	"github.com/fenggwsx/SlashSQL/internal/server"
	"github.com/fenggwsx/SlashSQL/internal/storage/sqlite"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slashsql-server [port]",
		Short: "Serve SQL commands over NUL-terminated TCP frames",
		Long: `slashsql-server accepts TCP clients, reads NUL-terminated SQL commands,
executes them against a shared SQLite database and replies with a framed
text result. Commands starting with SELECT return a table; anything else
reports the number of rows affected.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServer,
	}

	flags := cmd.Flags()
	flags.String("host", config.DefaultHost, "Interface to listen on")
	flags.Duration("busy-timeout", config.DefaultBusyTimeout, "How long a connection waits on a locked database")
	flags.Bool("log-sql", false, "Log every SQL statement at debug level")
	flags.Bool("fail-on-init-error", false, "Exit when schema initialization fails")
	flags.String("allow", "", "Comma-separated leading keywords clients may run (empty allows all)")
	flags.String("log-level", "info", "Log level (debug|info|warn|error)")
	flags.String("log-format", "text", "Log format (text|json)")
	flags.Duration("read-timeout", 0, "Close a connection idle for this long (0 disables)")
	flags.Duration("write-timeout", 0, "Abort a reply that takes longer than this (0 disables)")
	flags.Int("max-frame-bytes", 0, "Largest accepted command frame (0 is unbounded)")

	return cmd
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadServerConfig(cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := logging.New(cmd.ErrOrStderr(), cfg.Log)
	if err != nil {
		return err
	}

	if len(args) > 0 {
		port, err := config.ParsePort(args[0])
		if err != nil {
			logger.Warn("invalid port, falling back to default", "arg", args[0], "port", config.DefaultPort)
			port = config.DefaultPort
		}
		cfg.Port = port
	}

	store := sqlite.NewStore(cfg.Database, logger.With("component", "storage"))
	app := server.NewApp(cfg, store, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
