package core

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestRecordFieldsOrder(t *testing.T) {
	r := Record{
		Timestamp:   "2019-03-28 07:49:11.133610",
		Source:      "192.168.0.11:49875",
		Destination: "192.168.0.12:80",
		Protocol:    "tcp",
		Summary:     "Ether / IP / TCP 192.168.0.11:49875 > 192.168.0.12:80 PA / Raw",
		Text:        "GET / HTTP/1.0\r\n",
		Matched:     true,
	}

	got := r.Fields()
	want := [len(Columns)]string{
		"2019-03-28 07:49:11.133610",
		"192.168.0.11:49875",
		"192.168.0.12:80",
		"tcp",
		"Ether / IP / TCP 192.168.0.11:49875 > 192.168.0.12:80 PA / Raw",
		"GET / HTTP/1.0\r\n",
	}
	if got != want {
		t.Errorf("Fields() = %q, want %q", got, want)
	}
}

func TestColumns(t *testing.T) {
	want := [...]string{"TimeStamp", "Host", "Dest", "Protocol", "Summary", "Raw data"}
	if Columns != want {
		t.Errorf("Columns = %v, want %v", Columns, want)
	}
}

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2019, 3, 28, 7, 49, 11, 133610000, time.Local)
	if got := FormatTimestamp(ts); got != "2019-03-28 07:49:11.133610" {
		t.Errorf("FormatTimestamp() = %q", got)
	}

	// Whole seconds still carry six fractional digits
	ts = time.Date(2020, 1, 2, 3, 4, 5, 0, time.Local)
	if got := FormatTimestamp(ts); got != "2020-01-02 03:04:05.000000" {
		t.Errorf("FormatTimestamp() = %q", got)
	}
}

func TestSentinelErrors(t *testing.T) {
	t.Run("ErrorMessages", func(t *testing.T) {
		tests := []struct {
			err     error
			message string
		}{
			{ErrCaptureUnavailable, "pcapreport: capture unavailable"},
			{ErrExportWrite, "pcapreport: export write failed"},
			{ErrSinkState, "pcapreport: invalid sink state"},
			{ErrSinkNotFound, "pcapreport: sink not found"},
			{ErrConfigInvalid, "pcapreport: invalid configuration"},
		}

		for _, tt := range tests {
			if tt.err.Error() != tt.message {
				t.Errorf("expected error message %q, got %q", tt.message, tt.err.Error())
			}
		}
	})

	t.Run("ErrorWrapping", func(t *testing.T) {
		wrapped := fmt.Errorf("open sniff.pcap: %w", ErrCaptureUnavailable)
		if !errors.Is(wrapped, ErrCaptureUnavailable) {
			t.Error("errors.Is failed for wrapped error")
		}
		if errors.Is(wrapped, ErrExportWrite) {
			t.Error("wrapped capture error must not match ErrExportWrite")
		}
	})
}
