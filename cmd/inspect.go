package cmd

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"firestige.xyz/pcapreport/internal/config"
	"firestige.xyz/pcapreport/internal/pipeline"
	"firestige.xyz/pcapreport/internal/sink"
	"firestige.xyz/pcapreport/internal/sink/console"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print the records of a capture file",
	Long: `Print one numbered block per payload-bearing packet of a capture file:
capture time, packet summary and the extracted HTTP line. No files are written.

Examples:
  pcapreport inspect -r sniff.pcap
  pcapreport inspect -r sniff.pcap --mode escaped`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInspect(cmd.Context(), cfg, cmd.OutOrStdout())
	},
}

func init() {
	inspectCmd.Flags().StringP("file", "r", "", "capture file to read")
	inspectCmd.Flags().String("mode", "", "extraction mode: bytes or escaped")
	inspectCmd.Flags().String("fallback", "", "text for payloads without an HTTP line: none or raw")
}

func runInspect(ctx context.Context, c *config.GlobalConfig, out io.Writer) error {
	p, err := pipeline.NewBuilder().
		WithExtract(c.Extract).
		WithSink(console.Name, sink.Config{Writer: out}).
		Build()
	if err != nil {
		return err
	}

	report, err := p.RunFile(ctx, c.Capture.File)
	if err != nil {
		return err
	}
	return report.Err()
}
