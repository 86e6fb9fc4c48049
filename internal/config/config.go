// Package config handles global configuration loading using viper.
package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"firestige.xyz/pcapreport/internal/core"
	"firestige.xyz/pcapreport/internal/extract"
)

// GlobalConfig represents the top-level configuration.
// Maps to the `pcapreport:` root key in YAML.
type GlobalConfig struct {
	Capture CaptureConfig `mapstructure:"capture" yaml:"capture"`
	Extract ExtractConfig `mapstructure:"extract" yaml:"extract"`
	Output  OutputConfig  `mapstructure:"output" yaml:"output"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// ─── Capture ───

// CaptureConfig configures the live capture and the capture file it is saved to.
type CaptureConfig struct {
	Type         CaptureType   `mapstructure:"type" yaml:"type"`
	Interface    string        `mapstructure:"interface" yaml:"interface"`
	PacketCount  int           `mapstructure:"packet_count" yaml:"packet_count"` // 0 = until interrupted
	SnapLen      int           `mapstructure:"snap_len" yaml:"snap_len"`
	Promiscuous  bool          `mapstructure:"promiscuous" yaml:"promiscuous"`
	Timeout      time.Duration `mapstructure:"timeout" yaml:"timeout"`
	BPFFilter    string        `mapstructure:"bpf_filter" yaml:"bpf_filter"`
	BufferSizeMB int           `mapstructure:"buffer_size_mb" yaml:"buffer_size_mb"` // AF_PACKET ring
	File         string        `mapstructure:"file" yaml:"file"`
}

// ─── Extraction ───

// ExtractConfig selects how HTTP lines are located in payloads.
type ExtractConfig struct {
	Mode     extract.Mode     `mapstructure:"mode" yaml:"mode"`
	Fallback extract.Fallback `mapstructure:"fallback" yaml:"fallback"`
}

// ─── Output ───

// OutputConfig configures the export sinks.
type OutputConfig struct {
	TableName   string         `mapstructure:"table_name" yaml:"table_name"`
	Spreadsheet FileSinkConfig `mapstructure:"spreadsheet" yaml:"spreadsheet"`
	XML         FileSinkConfig `mapstructure:"xml" yaml:"xml"`
	Database    FileSinkConfig `mapstructure:"database" yaml:"database"`
	Console     ConsoleConfig  `mapstructure:"console" yaml:"console"`
}

// FileSinkConfig configures a sink that writes one file.
type FileSinkConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" yaml:"path"`
}

// ConsoleConfig configures the console listing.
type ConsoleConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// ─── Log ───

// LogConfig contains logging settings.
type LogConfig struct {
	Level   string           `mapstructure:"level" yaml:"level"`   // debug / info / warn / error
	Format  string           `mapstructure:"format" yaml:"format"` // json / text
	Outputs LogOutputsConfig `mapstructure:"outputs" yaml:"outputs"`
}

// LogOutputsConfig contains structured log output destinations.
type LogOutputsConfig struct {
	File FileOutputConfig `mapstructure:"file" yaml:"file"`
}

// FileOutputConfig configures file log output.
type FileOutputConfig struct {
	Enabled  bool           `mapstructure:"enabled" yaml:"enabled"`
	Path     string         `mapstructure:"path" yaml:"path"`
	Rotation RotationConfig `mapstructure:"rotation" yaml:"rotation"`
}

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSizeMB  int  `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxAgeDays int  `mapstructure:"max_age_days" yaml:"max_age_days"`
	MaxBackups int  `mapstructure:"max_backups" yaml:"max_backups"`
	Compress   bool `mapstructure:"compress" yaml:"compress"`
}

// ─── Metrics ───

// MetricsConfig contains Prometheus metrics settings.
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile" yaml:"textfile"` // Empty = disabled
	Listen   string `mapstructure:"listen" yaml:"listen"`     // e.g. ":9091", empty = no HTTP endpoint
	Path     string `mapstructure:"path" yaml:"path"`
}

// ─── Loading ───

// configRoot is the top-level wrapper matching the YAML structure `pcapreport: ...`.
type configRoot struct {
	PcapReport GlobalConfig `mapstructure:"pcapreport"`
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"interface": "pcapreport.capture.interface",
	"count":     "pcapreport.capture.packet_count",
	"filter":    "pcapreport.capture.bpf_filter",
	"type":      "pcapreport.capture.type",
	"file":      "pcapreport.capture.file",
	"xlsx":      "pcapreport.output.spreadsheet.path",
	"xml":       "pcapreport.output.xml.path",
	"db":        "pcapreport.output.database.path",
	"table":     "pcapreport.output.table_name",
	"console":   "pcapreport.output.console.enabled",
	"mode":      "pcapreport.extract.mode",
	"fallback":  "pcapreport.extract.fallback",
	"log-level": "pcapreport.log.level",
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Load loads configuration from an optional file, environment and flags.
// The YAML file uses `pcapreport:` as root key; env vars use the PCAPREPORT_ prefix
// (e.g., PCAPREPORT_LOG_LEVEL). Flags present in flags override both.
func Load(path string, flags *pflag.FlagSet) (*GlobalConfig, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Key "pcapreport.log.level" maps to env "PCAPREPORT_LOG_LEVEL".
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	var root configRoot
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&root, hook); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal config: %w", core.ErrConfigInvalid, err)
	}
	cfg := root.PcapReport

	if err := cfg.ValidateAndApplyDefaults(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default values for configuration.
// All keys use the "pcapreport." prefix to match the YAML root wrapper.
func setDefaults(v *viper.Viper) {
	// Capture defaults
	v.SetDefault("pcapreport.capture.type", string(CaptureTypePCAP))
	v.SetDefault("pcapreport.capture.interface", "en0")
	v.SetDefault("pcapreport.capture.packet_count", 100)
	v.SetDefault("pcapreport.capture.snap_len", 65536)
	v.SetDefault("pcapreport.capture.promiscuous", true)
	v.SetDefault("pcapreport.capture.timeout", "1s")
	v.SetDefault("pcapreport.capture.bpf_filter", "")
	v.SetDefault("pcapreport.capture.buffer_size_mb", 8)
	v.SetDefault("pcapreport.capture.file", "sniff.pcap")

	// Extraction defaults
	v.SetDefault("pcapreport.extract.mode", string(extract.ModeBytes))
	v.SetDefault("pcapreport.extract.fallback", string(extract.FallbackNone))

	// Output defaults
	v.SetDefault("pcapreport.output.table_name", "Packet")
	v.SetDefault("pcapreport.output.spreadsheet.enabled", true)
	v.SetDefault("pcapreport.output.spreadsheet.path", "sniff.xlsx")
	v.SetDefault("pcapreport.output.xml.enabled", true)
	v.SetDefault("pcapreport.output.xml.path", "sniff.xml")
	v.SetDefault("pcapreport.output.database.enabled", true)
	v.SetDefault("pcapreport.output.database.path", "sniff.db")
	v.SetDefault("pcapreport.output.console.enabled", false)

	// Log defaults
	v.SetDefault("pcapreport.log.level", "info")
	v.SetDefault("pcapreport.log.format", "text")
	v.SetDefault("pcapreport.log.outputs.file.enabled", false)
	v.SetDefault("pcapreport.log.outputs.file.path", "pcapreport.log")
	v.SetDefault("pcapreport.log.outputs.file.rotation.max_size_mb", 100)
	v.SetDefault("pcapreport.log.outputs.file.rotation.max_age_days", 30)
	v.SetDefault("pcapreport.log.outputs.file.rotation.max_backups", 5)
	v.SetDefault("pcapreport.log.outputs.file.rotation.compress", true)

	// Metrics defaults
	v.SetDefault("pcapreport.metrics.textfile", "")
	v.SetDefault("pcapreport.metrics.listen", "")
	v.SetDefault("pcapreport.metrics.path", "/metrics")
}

// ValidateAndApplyDefaults validates configuration and applies runtime defaults.
func (cfg *GlobalConfig) ValidateAndApplyDefaults() error {
	// ── Log validation ──
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	if !validLevels[cfg.Log.Level] {
		return fmt.Errorf("%w: invalid log level: %s (must be debug/info/warn/error)", core.ErrConfigInvalid, cfg.Log.Level)
	}
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)
	if cfg.Log.Format != "json" && cfg.Log.Format != "text" {
		return fmt.Errorf("%w: invalid log format: %s (must be json/text)", core.ErrConfigInvalid, cfg.Log.Format)
	}
	if cfg.Log.Outputs.File.Enabled && cfg.Log.Outputs.File.Path == "" {
		return fmt.Errorf("%w: log.outputs.file.path is required when file output is enabled", core.ErrConfigInvalid)
	}

	// ── Capture ──
	if cfg.Capture.Type == "" {
		cfg.Capture.Type = CaptureTypePCAP
	}
	if cfg.Capture.PacketCount < 0 {
		return fmt.Errorf("%w: capture.packet_count must not be negative, got %d", core.ErrConfigInvalid, cfg.Capture.PacketCount)
	}
	if cfg.Capture.SnapLen <= 0 {
		return fmt.Errorf("%w: capture.snap_len must be positive, got %d", core.ErrConfigInvalid, cfg.Capture.SnapLen)
	}
	if cfg.Capture.File == "" {
		return fmt.Errorf("%w: capture.file is required", core.ErrConfigInvalid)
	}

	// ── Extraction ──
	if cfg.Extract.Mode == "" {
		cfg.Extract.Mode = extract.ModeBytes
	}
	if cfg.Extract.Fallback == "" {
		cfg.Extract.Fallback = extract.FallbackNone
	}

	// ── Output ──
	if !identifierPattern.MatchString(cfg.Output.TableName) {
		return fmt.Errorf("%w: output.table_name %q is not a valid SQL identifier", core.ErrConfigInvalid, cfg.Output.TableName)
	}
	for name, out := range map[string]FileSinkConfig{
		"spreadsheet": cfg.Output.Spreadsheet,
		"xml":         cfg.Output.XML,
		"database":    cfg.Output.Database,
	} {
		if out.Enabled && out.Path == "" {
			return fmt.Errorf("%w: output.%s.path is required when enabled", core.ErrConfigInvalid, name)
		}
	}

	return nil
}

// ValidateLive checks the fields a live capture needs.
func (c *CaptureConfig) ValidateLive() error {
	if c.Interface == "" {
		return fmt.Errorf("%w: capture.interface is required for live capture", core.ErrConfigInvalid)
	}
	if c.Type == CaptureTypeAFPacket && c.BufferSizeMB <= 0 {
		return fmt.Errorf("%w: capture.buffer_size_mb must be positive for afpacket", core.ErrConfigInvalid)
	}
	return nil
}

// IsValidIdentifier reports whether name can be used unquoted as an SQL table name.
func IsValidIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}
