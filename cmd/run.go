package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run compress, shortlist and evaluate passes over all applicants",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, config := setup()

	logger.Info("starting the applicant-pipeline", zap.String("version", version))

	p, err := newPipeline(ctx, config, logger, true)
	if err != nil {
		logger.Fatal("building pipeline", zap.Error(err))
	}

	report, err := p.Run(ctx)
	if report != nil {
		logger.Info("pipeline report",
			zap.Any("compress", report.Compress),
			zap.Any("shortlist", report.Shortlist),
			zap.Any("evaluate", report.Evaluate),
		)
	}

	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("exiting", zap.String("reason", "interrupted"))
			return
		}
		logger.Fatal("pipeline failed", zap.Error(err))
	}

	logger.Info("pipeline completed")
}
