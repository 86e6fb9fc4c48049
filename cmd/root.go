// Package cmd implements CLI commands using cobra framework.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"firestige.xyz/pcapreport/internal/config"
	"firestige.xyz/pcapreport/internal/log"
)

var (
	// Global flags
	configFile string

	// cfg is loaded before every command runs.
	cfg *config.GlobalConfig
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pcapreport",
	Short: "Capture network traffic and report HTTP request and response lines",
	Long: `pcapreport captures packets from a network interface into a capture file and
turns every payload-bearing packet of a capture file into a report record.

Each record carries the capture time, source and destination endpoints, the
transport protocol, a one-line packet summary and the HTTP request or response
line found in the payload. Records are exported to a spreadsheet, an XML
document, a SQLite table and optionally the console.`,
	Version:           "0.1.0",
	SilenceUsage:      true,
	PersistentPreRunE: initialize,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return execute(ctx)
}

// execute runs the root command and releases the log file whatever the outcome.
func execute(ctx context.Context) error {
	defer log.Close()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "",
		"config file path (YAML, root key pcapreport)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(captureCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(validateCmd)
}

// initialize loads the configuration, with the flags of the running command on top,
// and sets up logging.
func initialize(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}
	if err := log.Init(loaded.Log); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	cfg = loaded
	return nil
}

func addCaptureFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("interface", "i", "", "network interface to capture on")
	cmd.Flags().IntP("count", "n", 0, "number of packets to capture, 0 until interrupted")
	cmd.Flags().StringP("filter", "f", "", "BPF filter expression")
	cmd.Flags().StringP("type", "t", "", "capture backend: pcap or afpacket")
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().String("xlsx", "", "spreadsheet output path")
	cmd.Flags().String("xml", "", "XML output path")
	cmd.Flags().String("db", "", "SQLite database path")
	cmd.Flags().String("table", "", "SQLite table name")
	cmd.Flags().Bool("console", false, "also print records to stdout")
	cmd.Flags().String("mode", "", "extraction mode: bytes or escaped")
	cmd.Flags().String("fallback", "", "text for payloads without an HTTP line: none or raw")
}
