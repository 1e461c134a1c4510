package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/ats-screener/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the evaluate_resumes tool over MCP stdio",
	Run: func(cmd *cobra.Command, _ []string) {
		serveMCP(cmd)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().Bool("no-notify", false, "never send notification e-mails")
}

func serveMCP(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// stdout is the MCP transport.
	logger := newLogger("stderr")
	defer logger.Sync()

	config := loadConfig(logger)

	screener, err := buildScreener(ctx, config, logger, buildOptions{Notify: !flagSet(cmd, "no-notify")})
	if err != nil {
		logger.Fatal("building the screening pipeline", zap.Error(err))
	}

	if err := mcp.NewServer(screener, version, logger).Run(ctx); err != nil && ctx.Err() == nil {
		logger.Fatal("serving mcp", zap.Error(err))
	}
}
