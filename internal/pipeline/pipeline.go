// Package pipeline runs the analyzer and exports its records through every sink.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"firestige.xyz/pcapreport/internal/analyzer"
	"firestige.xyz/pcapreport/internal/core"
	"firestige.xyz/pcapreport/internal/metrics"
	"firestige.xyz/pcapreport/internal/sink"
)

// Pipeline exports one record sequence to a fixed set of sinks.
type Pipeline struct {
	analyzer *analyzer.Analyzer
	sinks    []sink.Sink
	metrics  *metrics.Metrics
}

// Config contains pipeline configuration.
type Config struct {
	Analyzer *analyzer.Analyzer
	Sinks    []sink.Sink
	Metrics  *metrics.Metrics // optional
}

// Result describes the export through one sink.
type Result struct {
	Sink     string
	Target   string
	Rows     int
	Duration time.Duration
	Err      error
}

// Report collects the results of one run.
type Report struct {
	RunID   string
	Stats   core.Stats
	Results []Result
}

// Err combines every failed sink into one error, nil when all succeeded.
func (r Report) Err() error {
	var err error
	for _, res := range r.Results {
		err = multierr.Append(err, res.Err)
	}
	return err
}

// Failed returns the names of the failed sinks.
func (r Report) Failed() []string {
	var names []string
	for _, res := range r.Results {
		if res.Err != nil {
			names = append(names, res.Sink)
		}
	}
	return names
}

// New creates a new pipeline.
func New(cfg Config) *Pipeline {
	if cfg.Analyzer == nil {
		cfg.Analyzer = analyzer.New(nil)
	}
	return &Pipeline{
		analyzer: cfg.Analyzer,
		sinks:    cfg.Sinks,
		metrics:  cfg.Metrics,
	}
}

// Sinks returns the configured sinks in run order.
func (p *Pipeline) Sinks() []sink.Sink {
	return p.sinks
}

// RunFile analyzes the capture file at path and exports the records. The error is
// non-nil only when the capture cannot be analyzed; sink failures are in the report.
func (p *Pipeline) RunFile(ctx context.Context, path string) (Report, error) {
	records, stats, err := p.analyzer.AnalyzeFile(ctx, path)
	if p.metrics != nil {
		p.metrics.ObserveStats(stats)
	}
	if err != nil {
		return Report{Stats: stats}, err
	}

	report := p.Run(ctx, records)
	report.Stats = stats
	return report, nil
}

// Run exports records through every sink in order. A failing sink does not stop the
// ones after it. Sinks not started before ctx is done are reported as failed.
func (p *Pipeline) Run(ctx context.Context, records []core.Record) Report {
	report := Report{
		RunID:   uuid.NewString(),
		Results: make([]Result, 0, len(p.sinks)),
	}
	logger := slog.With("run_id", report.RunID)
	logger.Info("export starting", "records", len(records), "sinks", len(p.sinks))

	for _, s := range p.sinks {
		res := Result{Sink: s.Name(), Target: target(s)}

		if err := ctx.Err(); err != nil {
			res.Err = fmt.Errorf("%w: %s: %w", core.ErrExportWrite, s.Name(), err)
			s.Close()
		} else {
			start := time.Now()
			res.Rows, res.Err = sink.Export(s, records)
			res.Duration = time.Since(start)
		}

		if p.metrics != nil {
			p.metrics.ObserveSink(res.Sink, res.Rows, res.Duration, res.Err)
		}
		if res.Err != nil {
			logger.Error("export failed", "sink", res.Sink, "target", res.Target, "rows", res.Rows, "error", res.Err)
		} else {
			logger.Info("export finished", "sink", res.Sink, "target", res.Target, "rows", res.Rows, "duration", res.Duration)
		}
		report.Results = append(report.Results, res)
	}

	return report
}

func target(s sink.Sink) string {
	if t, ok := s.(sink.Targeter); ok {
		return t.Target()
	}
	return ""
}
