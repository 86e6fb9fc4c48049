package config

import (
	"fmt"
	"strings"
)

// CaptureType selects the live capture backend.
type CaptureType string

const (
	CaptureTypePCAP     CaptureType = "pcap"
	CaptureTypeAFPacket CaptureType = "afpacket"
)

// ParseCaptureType converts a string to CaptureType (case-insensitive, surrounding blanks ignored).
func ParseCaptureType(s string) (CaptureType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pcap", "libpcap":
		return CaptureTypePCAP, nil
	case "afpacket", "af_packet", "af-packet":
		return CaptureTypeAFPacket, nil
	default:
		return "", fmt.Errorf("unknown capture type: %q", s)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler, used by mapstructure / yaml decoding.
func (c *CaptureType) UnmarshalText(text []byte) error {
	t, err := ParseCaptureType(string(text))
	if err != nil {
		return err
	}
	*c = t
	return nil
}

func (c CaptureType) String() string {
	return string(c)
}
