package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var shortlistCmd = &cobra.Command{
	Use:   "shortlist",
	Short: "Evaluate applicants against the shortlist criteria and record leads",
	Run: func(cmd *cobra.Command, _ []string) {
		runShortlist(cmd)
	},
}

func init() {
	rootCmd.AddCommand(shortlistCmd)
	addTargetFlags(shortlistCmd)
}

func runShortlist(cmd *cobra.Command) {
	ctx := cmd.Context()
	logger, config := setup()

	t, err := resolveTarget(cmd)
	if err != nil {
		logger.Fatal("exiting", zap.Error(err))
	}

	p, err := newPipeline(ctx, config, logger, false)
	if err != nil {
		logger.Fatal("building pipeline", zap.Error(err))
	}

	if t.all() {
		if _, err := p.ShortlistAll(ctx); err != nil {
			logger.Fatal("shortlisting failed", zap.Error(err))
		}
		return
	}

	verdict, err := p.ShortlistOne(ctx, t.applicantID)
	if err != nil {
		logger.Fatal("shortlisting failed", zap.String("applicant_id", t.applicantID), zap.Error(err))
	}

	logger.Info("shortlist verdict",
		zap.String("applicant_id", t.applicantID),
		zap.Bool("shortlisted", verdict.Shortlisted),
		zap.String("reason", verdict.Reason),
	)
}
