package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var decompressCmd = &cobra.Command{
	Use:   "decompress",
	Short: "Restore the child tables of applicants from their compressed JSON",
	Run: func(cmd *cobra.Command, _ []string) {
		decompress(cmd)
	},
}

func init() {
	rootCmd.AddCommand(decompressCmd)
	addTargetFlags(decompressCmd)
}

func decompress(cmd *cobra.Command) {
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
		if _, err := p.DecompressAll(ctx); err != nil {
			logger.Fatal("decompression failed", zap.Error(err))
		}
		return
	}

	if err := p.DecompressOne(ctx, t.applicantID); err != nil {
		logger.Fatal("decompression failed", zap.String("applicant_id", t.applicantID), zap.Error(err))
	}
}
