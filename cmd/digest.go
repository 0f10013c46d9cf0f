package cmd

import (
	"context"

	"github.com/AzielCF/az-digest/domains/feed"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Run the digest once and exit",
	Long: `Walks the configured feeds once, publishes the summaries that pass the
relevance gate and exits. Meant for cron-style deployments.`,
	Run: runDigest,
}

func init() {
	digestCmd.Flags().String("kind", "", "restrict the run to one feed kind: news or youtube")
	rootCmd.AddCommand(digestCmd)
}

func runDigest(cmd *cobra.Command, _ []string) {
	ctx := context.Background()
	kind, _ := cmd.Flags().GetString("kind")

	if kind == "" || feed.Kind(kind) == feed.KindNews {
		report, err := digestService.RunNews(ctx)
		if err != nil {
			logrus.Errorf("[DIGEST] News run failed: %v", err)
		} else {
			logrus.Infof("[DIGEST] News run %s: dispatched=%d skipped=%d", report.RunID, report.Dispatched, report.Skipped)
		}
	}

	if kind == "" || feed.Kind(kind) == feed.KindYoutube {
		report, err := digestService.RunYoutube(ctx)
		if err != nil {
			logrus.Errorf("[DIGEST] Youtube run failed: %v", err)
		} else {
			logrus.Infof("[DIGEST] Youtube run %s: dispatched=%d skipped=%d", report.RunID, report.Dispatched, report.Skipped)
		}
	}

	// Espera a que el pool termine los items despachados antes de salir.
	StopApp()
}
