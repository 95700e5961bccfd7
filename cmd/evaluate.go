package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Review applicants with the language model and store the assessment",
	Run: func(cmd *cobra.Command, _ []string) {
		evaluate(cmd)
	},
}

func init() {
	rootCmd.AddCommand(evaluateCmd)
	addTargetFlags(evaluateCmd)
}

func evaluate(cmd *cobra.Command) {
	ctx := cmd.Context()
	logger, config := setup()

	t, err := resolveTarget(cmd)
	if err != nil {
		logger.Fatal("exiting", zap.Error(err))
	}

	p, err := newPipeline(ctx, config, logger, true)
	if err != nil {
		logger.Fatal("building pipeline", zap.Error(err))
	}

	if t.all() {
		if _, err := p.EvaluateAll(ctx); err != nil {
			logger.Fatal("llm evaluation failed", zap.Error(err))
		}
		return
	}

	assessment, err := p.EvaluateOne(ctx, t.applicantID)
	if err != nil {
		logger.Fatal("llm evaluation failed", zap.String("applicant_id", t.applicantID), zap.Error(err))
	}

	logger.Info("llm assessment",
		zap.String("applicant_id", t.applicantID),
		zap.Int("score", assessment.Score),
		zap.String("summary", assessment.Summary),
		zap.String("follow_ups", assessment.FollowUps),
	)
}
