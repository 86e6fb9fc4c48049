// Package capture opens packet sources: saved capture files and live interfaces.
package capture

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"firestige.xyz/pcapreport/internal/config"
	"firestige.xyz/pcapreport/internal/core"
)

// ErrTimeout is returned by live sources when the read timeout expired without a packet.
// Callers retry after checking their context.
var ErrTimeout = errors.New("capture: read timeout")

// Source yields raw frames in capture order.
type Source interface {
	// ReadPacketData returns the next frame, io.EOF at the end of a file, or ErrTimeout.
	ReadPacketData() ([]byte, gopacket.CaptureInfo, error)

	// LinkType reports the link layer of the frames.
	LinkType() layers.LinkType

	// Close releases the underlying handle. Safe to call more than once.
	Close() error
}

// Options configures a live capture.
type Options struct {
	Type         config.CaptureType
	Interface    string
	SnapLen      int
	Promiscuous  bool
	Timeout      time.Duration
	BPFFilter    string
	BufferSizeMB int // AF_PACKET ring size
}

// DefaultOptions returns the default live capture options.
func DefaultOptions() Options {
	return Options{
		Type:         config.CaptureTypePCAP,
		SnapLen:      65536,
		Promiscuous:  true,
		Timeout:      time.Second,
		BufferSizeMB: 8,
	}
}

// OptionsFromConfig maps the capture section of the configuration.
func OptionsFromConfig(c config.CaptureConfig) Options {
	return Options{
		Type:         c.Type,
		Interface:    c.Interface,
		SnapLen:      c.SnapLen,
		Promiscuous:  c.Promiscuous,
		Timeout:      c.Timeout,
		BPFFilter:    c.BPFFilter,
		BufferSizeMB: c.BufferSizeMB,
	}
}

// Open creates a live source for the configured backend.
func Open(opts Options) (Source, error) {
	if opts.Interface == "" {
		return nil, fmt.Errorf("%w: interface is required", core.ErrCaptureUnavailable)
	}
	switch opts.Type {
	case config.CaptureTypePCAP, "":
		src, err := OpenLive(opts)
		if err != nil {
			return nil, err
		}
		return src, nil
	case config.CaptureTypeAFPacket:
		src, err := OpenAFPacket(opts)
		if err != nil {
			return nil, err
		}
		return src, nil
	default:
		return nil, fmt.Errorf("%w: unsupported capture type: %s", core.ErrCaptureUnavailable, opts.Type)
	}
}
