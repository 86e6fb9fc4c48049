// Package spreadsheet writes the report as an xlsx workbook.
package spreadsheet

import (
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"firestige.xyz/pcapreport/internal/core"
	"firestige.xyz/pcapreport/internal/sink"
)

const (
	Name      = "spreadsheet"
	SheetName = "HTTPReport"

	maxColumnWidth = 255
	minColumnWidth = 8

	// TruncationMarker ends a cell value cut down to the xlsx cell limit.
	TruncationMarker = "...[truncated]"
)

// Sink renders records as rows below a header row on a single sheet.
type Sink struct {
	path   string
	file   *excelize.File
	row    int // last written row, 1 is the header
	widths [len(core.Columns)]int
	state  sink.State
}

func init() {
	sink.Register(Name, func(cfg sink.Config) (sink.Sink, error) {
		return New(cfg.Path)
	})
}

// New returns a sink that saves the workbook to path on Finalize.
func New(path string) (*Sink, error) {
	if path == "" {
		return nil, fmt.Errorf("spreadsheet sink requires a path")
	}
	return &Sink{path: path}, nil
}

func (s *Sink) Name() string   { return Name }
func (s *Sink) Target() string { return s.path }

// Open creates the workbook and writes the header row.
func (s *Sink) Open() error {
	if err := s.state.Expect(sink.StateNew, "open"); err != nil {
		return err
	}

	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		f.Close()
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	s.file = f
	s.state = sink.StateOpen
	if err := s.writeRow(core.Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	return nil
}

// Write appends one row.
func (s *Sink) Write(rec core.Record) error {
	if err := s.state.Expect(sink.StateOpen, "write"); err != nil {
		return err
	}
	return s.writeRow(rec.Fields())
}

func (s *Sink) writeRow(fields [len(core.Columns)]string) error {
	cell, err := excelize.CoordinatesToCellName(1, s.row+1)
	if err != nil {
		return err
	}

	values := make([]interface{}, len(fields))
	for i, v := range fields {
		if n := utf8.RuneCountInString(v); n > excelize.TotalCellChars {
			v = truncateCell(v)
			slog.Warn("spreadsheet cell truncated",
				"row", s.row+1, "column", core.Columns[i], "chars", n, "limit", excelize.TotalCellChars)
		}
		values[i] = v
		if w := utf8.RuneCountInString(v) + 2; w > s.widths[i] {
			s.widths[i] = w
		}
	}
	if err := s.file.SetSheetRow(SheetName, cell, &values); err != nil {
		return err
	}
	s.row++
	return nil
}

// truncateCell cuts v to exactly excelize.TotalCellChars runes, the last of which
// are TruncationMarker. excelize would otherwise cut it silently.
func truncateCell(v string) string {
	keep := excelize.TotalCellChars - utf8.RuneCountInString(TruncationMarker)
	return string([]rune(v)[:keep]) + TruncationMarker
}

// Finalize sizes the columns, draws the borders and saves the workbook.
func (s *Sink) Finalize() error {
	if err := s.state.Expect(sink.StateOpen, "finalize"); err != nil {
		return err
	}
	s.state = sink.StateFinalized
	defer s.release()

	if err := s.layout(); err != nil {
		return err
	}
	if err := s.file.SaveAs(s.path); err != nil {
		return fmt.Errorf("failed to save %s: %w", s.path, err)
	}
	return nil
}

func (s *Sink) layout() error {
	for i, w := range s.widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		width := min(max(w, minColumnWidth), maxColumnWidth)
		if err := s.file.SetColWidth(SheetName, col, col, float64(width)); err != nil {
			return fmt.Errorf("failed to set width of column %s: %w", col, err)
		}
	}

	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
	headerStyle, err := s.file.NewStyle(&excelize.Style{
		Border: border,
		Font:   &excelize.Font{Bold: true},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	dataStyle, err := s.file.NewStyle(&excelize.Style{Border: border})
	if err != nil {
		return fmt.Errorf("failed to create data style: %w", err)
	}

	last, err := excelize.ColumnNumberToName(len(core.Columns))
	if err != nil {
		return err
	}
	if err := s.file.SetCellStyle(SheetName, "A1", last+"1", headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}
	if s.row > 1 {
		bottomRight := fmt.Sprintf("%s%d", last, s.row)
		if err := s.file.SetCellStyle(SheetName, "A2", bottomRight, dataStyle); err != nil {
			return fmt.Errorf("failed to style data rows: %w", err)
		}
	}
	return nil
}

// Close discards an unsaved workbook.
func (s *Sink) Close() error {
	if s.state != sink.StateFinalized {
		s.state = sink.StateClosed
	}
	return s.release()
}

func (s *Sink) release() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}
