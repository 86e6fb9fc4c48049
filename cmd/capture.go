package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"firestige.xyz/pcapreport/internal/capture"
	"firestige.xyz/pcapreport/internal/config"
	"firestige.xyz/pcapreport/internal/metrics"
)

// openSource opens the live capture. Replaced in tests.
var openSource = func(c config.CaptureConfig) (capture.Source, error) {
	return capture.Open(capture.OptionsFromConfig(c))
}

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Capture packets from an interface into a capture file",
	Long: `Capture packets from a network interface and save them as a pcap file.

Examples:
  pcapreport capture -i eth0 -n 100 -w sniff.pcap
  pcapreport capture -i eth0 -f "tcp port 80" -n 0     # until Ctrl-C
  pcapreport capture -i eth0 -t afpacket -c config.yml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMetrics(cmd.Context(), cfg.Metrics, func(m *metrics.Metrics) error {
			_, err := runCapture(cmd.Context(), cfg.Capture, m, cmd.OutOrStdout())
			return err
		})
	},
}

func init() {
	addCaptureFlags(captureCmd)
	captureCmd.Flags().StringP("file", "w", "", "capture file to write")
}

func runCapture(ctx context.Context, c config.CaptureConfig, m *metrics.Metrics, out io.Writer) (int, error) {
	if err := c.ValidateLive(); err != nil {
		return 0, err
	}

	src, err := openSource(c)
	if err != nil {
		return 0, err
	}
	defer src.Close()

	n, err := capture.CaptureToFile(ctx, src, c.File, c.PacketCount, c.SnapLen)
	if m != nil {
		m.CapturedPacketsTotal.Add(float64(n))
	}
	if err != nil {
		return n, err
	}

	fmt.Fprintf(out, "✓ capture saved: %s (%d packets)\n", c.File, n)
	return n, nil
}
