// Package xmlfile writes the report as an XML document.
package xmlfile

import (
	"encoding/xml"
	"fmt"
	"os"

	"firestige.xyz/pcapreport/internal/core"
	"firestige.xyz/pcapreport/internal/sink"
)

const Name = "xml"

// Document is the root element. Total always equals len(Packets).
type Document struct {
	XMLName xml.Name `xml:"Packets"`
	Total   int      `xml:"total,attr"`
	Packets []Packet `xml:"Packet"`
}

// Packet is one record.
type Packet struct {
	DateTime string `xml:"DateTime"`
	Host     string `xml:"Host"`
	Dest     string `xml:"Dest"`
	Protocol string `xml:"Protocol"`
	Summary  string `xml:"Summary"`
	Text     string `xml:"Text"`
}

// Sink collects records and writes the document on Finalize.
type Sink struct {
	path  string
	doc   Document
	state sink.State
}

func init() {
	sink.Register(Name, func(cfg sink.Config) (sink.Sink, error) {
		return New(cfg.Path)
	})
}

func New(path string) (*Sink, error) {
	if path == "" {
		return nil, fmt.Errorf("xml sink requires a path")
	}
	return &Sink{path: path}, nil
}

func (s *Sink) Name() string   { return Name }
func (s *Sink) Target() string { return s.path }

func (s *Sink) Open() error {
	if err := s.state.Expect(sink.StateNew, "open"); err != nil {
		return err
	}
	s.doc = Document{Packets: []Packet{}}
	s.state = sink.StateOpen
	return nil
}

func (s *Sink) Write(rec core.Record) error {
	if err := s.state.Expect(sink.StateOpen, "write"); err != nil {
		return err
	}
	s.doc.Packets = append(s.doc.Packets, Packet{
		DateTime: rec.Timestamp,
		Host:     rec.Source,
		Dest:     rec.Destination,
		Protocol: rec.Protocol,
		Summary:  rec.Summary,
		Text:     rec.Text,
	})
	return nil
}

// Finalize writes the declaration and the indented document.
func (s *Sink) Finalize() error {
	if err := s.state.Expect(sink.StateOpen, "finalize"); err != nil {
		return err
	}
	s.state = sink.StateFinalized
	s.doc.Total = len(s.doc.Packets)

	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", s.path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(xml.Header); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.path, err)
	}
	enc := xml.NewEncoder(f)
	enc.Indent("", "  ")
	if err := enc.Encode(s.doc); err != nil {
		return fmt.Errorf("failed to encode %s: %w", s.path, err)
	}
	if _, err := f.WriteString("\n"); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.path, err)
	}
	s.doc = Document{}
	return f.Close()
}

// Close drops buffered records.
func (s *Sink) Close() error {
	if s.state != sink.StateFinalized {
		s.state = sink.StateClosed
	}
	s.doc = Document{}
	return nil
}

// ReadFile parses a document written by the sink.
func ReadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &doc, nil
}
