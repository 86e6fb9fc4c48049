package extract

import (
	"fmt"
	"strings"
)

// Mode selects what the keyword passes run over.
type Mode string

const (
	// ModeBytes matches over the real payload bytes; lines end with a CR LF byte pair.
	ModeBytes Mode = "bytes"
	// ModeEscaped matches over the escaped text form of the payload (b'...'), where the
	// terminator is the four character sequence `\r\n`. Output is compatible with
	// reports produced from the escaped representation.
	ModeEscaped Mode = "escaped"
)

// Fallback selects the record text when no HTTP line is found.
type Fallback string

const (
	// FallbackNone leaves the text empty.
	FallbackNone Fallback = "none"
	// FallbackRaw stores the escaped text form of the whole payload.
	FallbackRaw Fallback = "raw"
)

// ParseMode converts a string to Mode (case-insensitive, surrounding blanks ignored).
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bytes", "":
		return ModeBytes, nil
	case "escaped", "repr":
		return ModeEscaped, nil
	default:
		return "", fmt.Errorf("unknown extract mode: %q", s)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler for mapstructure / yaml decoding.
func (m *Mode) UnmarshalText(text []byte) error {
	v, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// ParseFallback converts a string to Fallback (case-insensitive, surrounding blanks ignored).
func ParseFallback(s string) (Fallback, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "":
		return FallbackNone, nil
	case "raw":
		return FallbackRaw, nil
	default:
		return "", fmt.Errorf("unknown extract fallback: %q", s)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler for mapstructure / yaml decoding.
func (f *Fallback) UnmarshalText(text []byte) error {
	v, err := ParseFallback(string(text))
	if err != nil {
		return err
	}
	*f = v
	return nil
}
