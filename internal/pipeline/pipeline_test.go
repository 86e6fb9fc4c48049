package pipeline

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"firestige.xyz/pcapreport/internal/config"
	"firestige.xyz/pcapreport/internal/core"
	"firestige.xyz/pcapreport/internal/extract"
	"firestige.xyz/pcapreport/internal/metrics"
	"firestige.xyz/pcapreport/internal/sink"
	"firestige.xyz/pcapreport/internal/sink/xmlfile"
	pcaptest "firestige.xyz/pcapreport/internal/testutil"
)

// MockSink is a mock export sink.
type MockSink struct {
	mock.Mock
	name string
}

func NewMockSink(name string) *MockSink {
	return &MockSink{name: name}
}

func (m *MockSink) Name() string                { return m.name }
func (m *MockSink) Open() error                 { return m.Called().Error(0) }
func (m *MockSink) Write(rec core.Record) error { return m.Called(rec).Error(0) }
func (m *MockSink) Finalize() error             { return m.Called().Error(0) }
func (m *MockSink) Close() error                { return m.Called().Error(0) }

func succeeding(name string) *MockSink {
	m := NewMockSink(name)
	m.On("Open").Return(nil)
	m.On("Write", mock.Anything).Return(nil)
	m.On("Finalize").Return(nil)
	m.On("Close").Return(nil)
	return m
}

var records = []core.Record{
	{Timestamp: "t1", Source: "1.1.1.1:1", Destination: "2.2.2.2:80", Protocol: "tcp", Text: "GET / HTTP/1.1\r\n", Matched: true},
	{Timestamp: "t2", Source: "2.2.2.2:80", Destination: "1.1.1.1:1", Protocol: "tcp"},
}

func TestPipeline_AllSinksSucceed(t *testing.T) {
	first, second := succeeding("first"), succeeding("second")
	p := New(Config{Sinks: []sink.Sink{first, second}})

	report := p.Run(context.Background(), records)
	require.NoError(t, report.Err())
	require.Len(t, report.Results, 2)

	_, err := uuid.Parse(report.RunID)
	assert.NoError(t, err)
	for i, name := range []string{"first", "second"} {
		assert.Equal(t, name, report.Results[i].Sink)
		assert.Equal(t, 2, report.Results[i].Rows)
	}
	first.AssertNumberOfCalls(t, "Write", 2)
	second.AssertNumberOfCalls(t, "Finalize", 1)
}

func TestPipeline_FailingSinkDoesNotStopOthers(t *testing.T) {
	broken := NewMockSink("broken")
	broken.On("Open").Return(errors.New("permission denied"))
	broken.On("Close").Return(nil)
	after := succeeding("after")

	m := metrics.New()
	p := New(Config{Sinks: []sink.Sink{broken, after}, Metrics: m})

	report := p.Run(context.Background(), records)
	err := report.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrExportWrite)
	assert.Len(t, multierr.Errors(err), 1)
	assert.Equal(t, []string{"broken"}, report.Failed())

	assert.Error(t, report.Results[0].Err)
	assert.NoError(t, report.Results[1].Err)
	assert.Equal(t, 2, report.Results[1].Rows)
	after.AssertNumberOfCalls(t, "Finalize", 1)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SinkFailuresTotal.WithLabelValues("broken")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SinkRowsTotal.WithLabelValues("after")))
}

func TestPipeline_AllFailuresAggregated(t *testing.T) {
	a := NewMockSink("a")
	a.On("Open").Return(nil)
	a.On("Write", mock.Anything).Return(errors.New("bad row"))
	a.On("Close").Return(nil)
	b := NewMockSink("b")
	b.On("Open").Return(nil)
	b.On("Write", mock.Anything).Return(nil)
	b.On("Finalize").Return(errors.New("save failed"))
	b.On("Close").Return(nil)

	report := New(Config{Sinks: []sink.Sink{a, b}}).Run(context.Background(), records)
	assert.Len(t, multierr.Errors(report.Err()), 2)
	assert.Equal(t, []string{"a", "b"}, report.Failed())
}

func TestPipeline_CancelledSkipsSinks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewMockSink("late")
	s.On("Close").Return(nil)

	report := New(Config{Sinks: []sink.Sink{s}}).Run(ctx, records)
	err := report.Err()
	assert.ErrorIs(t, err, core.ErrExportWrite)
	assert.ErrorIs(t, err, context.Canceled)
	s.AssertNotCalled(t, "Open")
	s.AssertCalled(t, "Close")
}

func TestPipeline_RunFile(t *testing.T) {
	frame, err := pcaptest.TCPFrame("192.168.0.11", "192.168.0.12", 49875, 80, []byte("GET /a HTTP/1.1\r\n\r\n"))
	require.NoError(t, err)
	capturePath := filepath.Join(t.TempDir(), "sniff.pcap")
	require.NoError(t, pcaptest.WritePcap(capturePath, []pcaptest.Frame{{Data: frame, Timestamp: time.Now()}}))

	var out bytes.Buffer
	xmlPath := filepath.Join(t.TempDir(), "sniff.xml")
	m := metrics.New()
	p, err := NewBuilder().
		WithExtract(config.ExtractConfig{Mode: extract.ModeBytes, Fallback: extract.FallbackNone}).
		WithOutputs(config.OutputConfig{
			XML:     config.FileSinkConfig{Enabled: true, Path: xmlPath},
			Console: config.ConsoleConfig{Enabled: true},
		}, &out).
		WithMetrics(m).
		Build()
	require.NoError(t, err)
	require.Len(t, p.Sinks(), 2)
	assert.Equal(t, "console", p.Sinks()[0].Name())
	assert.Equal(t, xmlfile.Name, p.Sinks()[1].Name())

	report, err := p.RunFile(context.Background(), capturePath)
	require.NoError(t, err)
	require.NoError(t, report.Err())
	assert.Equal(t, 1, report.Stats.PayloadPackets)
	assert.Equal(t, xmlPath, report.Results[1].Target)

	doc, err := xmlfile.ReadFile(xmlPath)
	require.NoError(t, err)
	require.Len(t, doc.Packets, 1)
	assert.Equal(t, "GET /a HTTP/1.1\r\n", doc.Packets[0].Text)
	assert.True(t, strings.HasPrefix(out.String(), "No: 1"))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PayloadPacketsTotal))
}

func TestPipeline_RunFileMissingCapture(t *testing.T) {
	s := NewMockSink("unused")
	p := New(Config{Sinks: []sink.Sink{s}})

	_, err := p.RunFile(context.Background(), filepath.Join(t.TempDir(), "missing.pcap"))
	assert.ErrorIs(t, err, core.ErrCaptureUnavailable)
	s.AssertNotCalled(t, "Open")
}

func TestBuilder_UnknownSink(t *testing.T) {
	_, err := NewBuilder().WithSink("parquet", sink.Config{}).Build()
	assert.ErrorIs(t, err, core.ErrSinkNotFound)
}

func TestBuilder_InvalidTable(t *testing.T) {
	_, err := NewBuilder().WithOutputs(config.OutputConfig{
		TableName: "bad name",
		Database:  config.FileSinkConfig{Enabled: true, Path: "x.db"},
	}, nil).Build()
	assert.Error(t, err)
}

func TestBuilder_DefaultOutputsOrder(t *testing.T) {
	p, err := NewBuilder().WithOutputs(config.OutputConfig{
		TableName:   "Packet",
		Spreadsheet: config.FileSinkConfig{Enabled: true, Path: "a.xlsx"},
		XML:         config.FileSinkConfig{Enabled: true, Path: "a.xml"},
		Database:    config.FileSinkConfig{Enabled: true, Path: "a.db"},
	}, nil).Build()
	require.NoError(t, err)

	var names []string
	for _, s := range p.Sinks() {
		names = append(names, s.Name())
	}
	assert.Equal(t, []string{"spreadsheet", "xml", "database"}, names)
}
