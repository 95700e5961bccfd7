package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var compressCmd = &cobra.Command{
	Use:   "compress",
	Short: "Merge the child tables of applicants into their compressed JSON",
	Run: func(cmd *cobra.Command, _ []string) {
		compress(cmd)
	},
}

func init() {
	rootCmd.AddCommand(compressCmd)
	addTargetFlags(compressCmd)
}

func compress(cmd *cobra.Command) {
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
		if _, err := p.CompressAll(ctx); err != nil {
			logger.Fatal("compression failed", zap.Error(err))
		}
		return
	}

	doc, err := p.CompressOne(ctx, t.applicantID)
	if err != nil {
		logger.Fatal("compression failed", zap.String("applicant_id", t.applicantID), zap.Error(err))
	}

	if raw, err := doc.JSON(); err == nil {
		logger.Debug("compressed document", zap.String("applicant_id", t.applicantID), zap.String("json", raw))
	}
}
