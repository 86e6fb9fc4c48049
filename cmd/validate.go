package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"firestige.xyz/pcapreport/internal/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration and print the effective settings",
	Long: `Load the configuration file, environment overrides and flags, validate the
result and print it as YAML.

Examples:
  pcapreport validate -c config.yml
  PCAPREPORT_OUTPUT_TABLE_NAME=HttpLines pcapreport validate`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cfg, cmd.OutOrStdout())
	},
}

func runValidate(c *config.GlobalConfig, out io.Writer) error {
	data, err := yaml.Marshal(map[string]*config.GlobalConfig{"pcapreport": c})
	if err != nil {
		return fmt.Errorf("failed to render configuration: %w", err)
	}
	fmt.Fprintln(out, "✓ configuration is valid")
	_, err = out.Write(data)
	return err
}
