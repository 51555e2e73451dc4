package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/fenggwsx/SlashSQL/internal/client"
	"github.com/fenggwsx/SlashSQL/internal/config"
	"github.com/fenggwsx/SlashSQL/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slashsql-client [address]",
		Short: "Terminal client for slashsql-server",
		Long: `slashsql-client opens an interactive terminal session against a
slashsql-server. With --execute it sends a single command, prints the reply
and exits with status 1 when the server answers with an error.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runClient,
	}

	flags := cmd.Flags()
	flags.String("addr", fmt.Sprintf("%s:%d", config.DefaultHost, config.DefaultPort), "Server address (host:port)")
	flags.Duration("timeout", config.DefaultRequestTimeout, "Per-command reply timeout (0 waits forever)")
	flags.StringP("execute", "e", "", "Run one command and print the reply")
	flags.String("log-level", "warn", "Log level (debug|info|warn|error)")
	flags.String("log-format", "text", "Log format (text|json)")

	return cmd
}

func runClient(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadClientConfig(cmd.Flags())
	if err != nil {
		return err
	}
	if len(args) > 0 {
		cfg.ServerAddr = args[0]
	}

	statement, _ := cmd.Flags().GetString("execute")
	if cmd.Flags().Changed("execute") {
		return executeOnce(cmd, cfg, statement)
	}

	if _, err := tea.NewProgram(client.NewApp(cfg), tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("client exited: %w", err)
	}
	return nil
}

func executeOnce(cmd *cobra.Command, cfg config.ClientConfig, statement string) error {
	logger, err := logging.New(cmd.ErrOrStderr(), cfg.Log)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	session := client.NewSession(cfg)
	if err := session.Connect(ctx); err != nil {
		return fmt.Errorf("connect %s: %w", cfg.ServerAddr, err)
	}
	defer session.Close()
	logger.Debug("connected", "addr", cfg.ServerAddr)

	reply, err := session.Execute(ctx, statement)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), reply)

	if strings.HasPrefix(reply, "Error: ") {
		return fmt.Errorf("server rejected the command")
	}
	return nil
}
