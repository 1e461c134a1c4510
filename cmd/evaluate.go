package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/ats-screener/internal/screening"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <resume-url>...",
	Short: "Evaluate resumes once and print the results as JSON",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		evaluate(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().BoolP("auto-approve", "y", false, "send notification e-mails without asking for confirmation")
	evaluateCmd.Flags().Bool("no-notify", false, "never send notification e-mails")
}

func evaluate(cmd *cobra.Command, urls []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// stdout carries the report.
	logger := newLogger("stderr")
	defer logger.Sync()

	config := loadConfig(logger)

	sendMail := !flagSet(cmd, "no-notify") && config.Mail.Enabled
	if sendMail && !flagSet(cmd, "auto-approve") {
		sendMail = confirmNotifications(logger)
	}

	screener, err := buildScreener(ctx, config, logger, buildOptions{Notify: sendMail})
	if err != nil {
		logger.Fatal("building the screening pipeline", zap.Error(err))
	}

	results, err := screener.Evaluate(ctx, urls)
	if err != nil {
		logger.Fatal("evaluating resumes", zap.Error(err))
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(struct {
		Results []screening.Result `json:"results"`
	}{Results: results}); err != nil {
		logger.Fatal("writing results", zap.Error(err))
	}
}

func confirmNotifications(logger *zap.Logger) bool {
	prompt := promptui.Prompt{
		Label:     "Send notification e-mails to candidates who pass",
		IsConfirm: true,
	}

	if _, err := prompt.Run(); err != nil {
		if !errors.Is(err, promptui.ErrAbort) {
			logger.Warn("confirmation prompt failed", zap.Error(err))
		}
		logger.Info("notifications are disabled", zap.String("reason", "not confirmed"))
		return false
	}

	return true
}

func flagSet(cmd *cobra.Command, name string) bool {
	value, err := cmd.Flags().GetBool(name)
	return err == nil && value
}
