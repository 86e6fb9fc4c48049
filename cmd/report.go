package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"firestige.xyz/pcapreport/internal/config"
	"firestige.xyz/pcapreport/internal/metrics"
	"firestige.xyz/pcapreport/internal/pipeline"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Export the records of a capture file to every enabled output",
	Long: `Analyze a capture file and write one record per payload-bearing packet to
the enabled outputs. Every output is attempted even when an earlier one fails.

Examples:
  pcapreport report -r sniff.pcap
  pcapreport report -r sniff.pcap --xlsx out.xlsx --db out.db --table HttpLines
  pcapreport report -r sniff.pcap --mode escaped --fallback raw`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMetrics(cmd.Context(), cfg.Metrics, func(m *metrics.Metrics) error {
			return runReport(cmd.Context(), cfg, m, cmd.OutOrStdout())
		})
	},
}

func init() {
	reportCmd.Flags().StringP("file", "r", "", "capture file to read")
	addOutputFlags(reportCmd)
}

func runReport(ctx context.Context, c *config.GlobalConfig, m *metrics.Metrics, out io.Writer) error {
	p, err := pipeline.NewBuilder().
		WithExtract(c.Extract).
		WithOutputs(c.Output, out).
		WithMetrics(m).
		Build()
	if err != nil {
		return err
	}

	report, err := p.RunFile(ctx, c.Capture.File)
	if err != nil {
		return err
	}

	printReport(out, report)
	return report.Err()
}

func printReport(out io.Writer, report pipeline.Report) {
	for _, res := range report.Results {
		switch {
		case res.Err != nil:
			fmt.Fprintf(out, "✗ %s failed: %v\n", res.Sink, res.Err)
		case res.Target != "":
			fmt.Fprintf(out, "✓ %s written: %s (%d rows)\n", res.Sink, res.Target, res.Rows)
		}
	}
}
