package pipeline

import (
	"io"

	"firestige.xyz/pcapreport/internal/analyzer"
	"firestige.xyz/pcapreport/internal/config"
	"firestige.xyz/pcapreport/internal/extract"
	"firestige.xyz/pcapreport/internal/metrics"
	"firestige.xyz/pcapreport/internal/sink"
	"firestige.xyz/pcapreport/internal/sink/console"
	"firestige.xyz/pcapreport/internal/sink/spreadsheet"
	"firestige.xyz/pcapreport/internal/sink/sqlite"
	"firestige.xyz/pcapreport/internal/sink/xmlfile"
)

// Builder provides a fluent interface for building pipelines.
type Builder struct {
	config Config
	err    error
}

// NewBuilder creates a new pipeline builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// WithAnalyzer sets the analyzer used by RunFile.
func (b *Builder) WithAnalyzer(a *analyzer.Analyzer) *Builder {
	b.config.Analyzer = a
	return b
}

// WithExtract builds the analyzer from the extraction settings.
func (b *Builder) WithExtract(cfg config.ExtractConfig) *Builder {
	b.config.Analyzer = analyzer.New(extract.New(cfg.Mode, cfg.Fallback))
	return b
}

// WithSinks appends sinks in run order.
func (b *Builder) WithSinks(sinks ...sink.Sink) *Builder {
	b.config.Sinks = append(b.config.Sinks, sinks...)
	return b
}

// WithSink constructs a registered sink and appends it.
func (b *Builder) WithSink(name string, cfg sink.Config) *Builder {
	if b.err != nil {
		return b
	}
	s, err := sink.New(name, cfg)
	if err != nil {
		b.err = err
		return b
	}
	return b.WithSinks(s)
}

// WithOutputs appends the enabled outputs: console, spreadsheet, XML, database.
// Console output goes to w.
func (b *Builder) WithOutputs(out config.OutputConfig, w io.Writer) *Builder {
	if out.Console.Enabled {
		b.WithSink(console.Name, sink.Config{Writer: w})
	}
	if out.Spreadsheet.Enabled {
		b.WithSink(spreadsheet.Name, sink.Config{Path: out.Spreadsheet.Path})
	}
	if out.XML.Enabled {
		b.WithSink(xmlfile.Name, sink.Config{Path: out.XML.Path})
	}
	if out.Database.Enabled {
		b.WithSink(sqlite.Name, sink.Config{Path: out.Database.Path, TableName: out.TableName})
	}
	return b
}

// WithMetrics sets the metrics sink.
func (b *Builder) WithMetrics(m *metrics.Metrics) *Builder {
	b.config.Metrics = m
	return b
}

// Build creates the pipeline, or returns the first sink construction error.
func (b *Builder) Build() (*Pipeline, error) {
	if b.err != nil {
		return nil, b.err
	}
	return New(b.config), nil
}
