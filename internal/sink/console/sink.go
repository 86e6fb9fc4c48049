// Package console prints records to a terminal.
package console

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"firestige.xyz/pcapreport/internal/core"
	"firestige.xyz/pcapreport/internal/sink"
)

const Name = "console"

var controlReplacer = strings.NewReplacer("\r", `\r`, "\n", `\n`, "\t", `\t`)

// Sink prints a numbered block per record.
type Sink struct {
	out   io.Writer
	w     *bufio.Writer
	n     int
	state sink.State
}

func init() {
	sink.Register(Name, func(cfg sink.Config) (sink.Sink, error) {
		return NewSink(cfg.Writer), nil
	})
}

// NewSink prints to w, or to stdout when w is nil.
func NewSink(w io.Writer) *Sink {
	if w == nil {
		w = os.Stdout
	}
	return &Sink{out: w}
}

func (s *Sink) Name() string { return Name }

func (s *Sink) Open() error {
	if err := s.state.Expect(sink.StateNew, "open"); err != nil {
		return err
	}
	s.w = bufio.NewWriter(s.out)
	s.state = sink.StateOpen
	return nil
}

// Write prints
//
//	No: 1   2024-03-01 10:15:30.123456
//	         Ether / IP / TCP ... / Raw
//	         POST /login HTTP/1.1\r\n
func (s *Sink) Write(rec core.Record) error {
	if err := s.state.Expect(sink.StateOpen, "write"); err != nil {
		return err
	}
	s.n++
	_, err := fmt.Fprintf(s.w, "No: %d   %s\n\t %s\n\t %s\n", s.n, rec.Timestamp, rec.Summary, controlReplacer.Replace(rec.Text))
	return err
}

func (s *Sink) Finalize() error {
	if err := s.state.Expect(sink.StateOpen, "finalize"); err != nil {
		return err
	}
	s.state = sink.StateFinalized
	return s.w.Flush()
}

func (s *Sink) Close() error {
	if s.state != sink.StateFinalized {
		s.state = sink.StateClosed
	}
	return nil
}
