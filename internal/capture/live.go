package capture

import (
	"fmt"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"

	"firestige.xyz/pcapreport/internal/core"
)

// LiveSource captures from a network interface through libpcap.
type LiveSource struct {
	iface  string
	handle *pcap.Handle
}

// OpenLive activates a libpcap handle on opts.Interface.
func OpenLive(opts Options) (*LiveSource, error) {
	inactive, err := pcap.NewInactiveHandle(opts.Interface)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create handle on %s: %w", core.ErrCaptureUnavailable, opts.Interface, err)
	}
	defer inactive.CleanUp()

	if err := inactive.SetSnapLen(opts.SnapLen); err != nil {
		return nil, fmt.Errorf("%w: failed to set snaplen: %w", core.ErrCaptureUnavailable, err)
	}
	if err := inactive.SetPromisc(opts.Promiscuous); err != nil {
		return nil, fmt.Errorf("%w: failed to set promiscuous mode: %w", core.ErrCaptureUnavailable, err)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = pcap.BlockForever
	}
	if err := inactive.SetTimeout(timeout); err != nil {
		return nil, fmt.Errorf("%w: failed to set read timeout: %w", core.ErrCaptureUnavailable, err)
	}

	handle, err := inactive.Activate()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to activate capture on %s: %w", core.ErrCaptureUnavailable, opts.Interface, err)
	}

	if opts.BPFFilter != "" {
		if err := handle.SetBPFFilter(opts.BPFFilter); err != nil {
			handle.Close()
			return nil, fmt.Errorf("%w: failed to set BPF filter %q: %w", core.ErrCaptureUnavailable, opts.BPFFilter, err)
		}
	}

	return &LiveSource{iface: opts.Interface, handle: handle}, nil
}

// ReadPacketData returns the next frame, or ErrTimeout when the read timeout expired.
func (s *LiveSource) ReadPacketData() ([]byte, gopacket.CaptureInfo, error) {
	if s.handle == nil {
		return nil, gopacket.CaptureInfo{}, fmt.Errorf("live source %s is closed", s.iface)
	}
	data, ci, err := s.handle.ReadPacketData()
	if err == pcap.NextErrorTimeoutExpired {
		return nil, ci, ErrTimeout
	}
	return data, ci, err
}

// LinkType returns the link type of the interface.
func (s *LiveSource) LinkType() layers.LinkType {
	if s.handle == nil {
		return layers.LinkTypeEthernet
	}
	return s.handle.LinkType()
}

// Close closes the handle.
func (s *LiveSource) Close() error {
	if s.handle != nil {
		s.handle.Close()
		s.handle = nil
	}
	return nil
}
