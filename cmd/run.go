package cmd

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"firestige.xyz/pcapreport/internal/config"
	"firestige.xyz/pcapreport/internal/metrics"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Capture packets, then report on the saved capture file",
	Long: `Capture packets from an interface into the capture file, then export the
records of that file to every enabled output. An interrupt during the capture
ends the capture and the report still runs; a second interrupt aborts the report.

Examples:
  pcapreport run -i en0 -n 100
  pcapreport run -c config.yml --console`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMetrics(cmd.Context(), cfg.Metrics, func(m *metrics.Metrics) error {
			return runCaptureAndReport(cmd.Context(), cfg, m, cmd.OutOrStdout())
		})
	},
}

func init() {
	addCaptureFlags(runCmd)
	runCmd.Flags().StringP("file", "w", "", "capture file to write and report on")
	addOutputFlags(runCmd)
}

func runCaptureAndReport(ctx context.Context, c *config.GlobalConfig, m *metrics.Metrics, out io.Writer) error {
	if _, err := runCapture(ctx, c.Capture, m, out); err != nil {
		return err
	}

	// Cancellation of ctx only ends the capture.
	reportCtx, stop := signal.NotifyContext(context.WithoutCancel(ctx), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return runReport(reportCtx, c, m, out)
}
