//go:build linux

package capture

import (
	"fmt"
	"os"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/afpacket"
	"github.com/google/gopacket/layers"

	"firestige.xyz/pcapreport/internal/core"
	"firestige.xyz/pcapreport/internal/utils"
)

// AFPacketSource captures through a TPACKET_V3 memory mapped ring.
type AFPacketSource struct {
	iface  string
	handle *afpacket.TPacket
}

// OpenAFPacket opens a TPACKET_V3 ring on opts.Interface sized to opts.BufferSizeMB.
func OpenAFPacket(opts Options) (*AFPacketSource, error) {
	frameSize, blockSize, numBlocks, err := recomputeSize(opts.BufferSizeMB, opts.SnapLen, os.Getpagesize())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrCaptureUnavailable, err)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = time.Second
	}

	tp, err := afpacket.NewTPacket(
		afpacket.OptInterface(opts.Interface),
		afpacket.OptFrameSize(frameSize),
		afpacket.OptBlockSize(blockSize),
		afpacket.OptNumBlocks(numBlocks),
		afpacket.OptPollTimeout(timeout),
		afpacket.SocketRaw,
		afpacket.TPacketVersion3,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open af_packet on %s: %w", core.ErrCaptureUnavailable, opts.Interface, err)
	}

	if opts.BPFFilter != "" {
		raw, err := utils.CompileBpf(layers.LinkTypeEthernet, frameSize, opts.BPFFilter)
		if err != nil {
			tp.Close()
			return nil, fmt.Errorf("%w: %w", core.ErrCaptureUnavailable, err)
		}
		if err := tp.SetBPF(raw); err != nil {
			tp.Close()
			return nil, fmt.Errorf("%w: failed to attach BPF filter: %w", core.ErrCaptureUnavailable, err)
		}
	}

	return &AFPacketSource{iface: opts.Interface, handle: tp}, nil
}

// ReadPacketData returns the next frame, or ErrTimeout when the poll timed out.
func (s *AFPacketSource) ReadPacketData() ([]byte, gopacket.CaptureInfo, error) {
	if s.handle == nil {
		return nil, gopacket.CaptureInfo{}, fmt.Errorf("af_packet source %s is closed", s.iface)
	}
	data, ci, err := s.handle.ReadPacketData()
	if err == afpacket.ErrTimeout {
		return nil, ci, ErrTimeout
	}
	return data, ci, err
}

// LinkType is always Ethernet for a raw AF_PACKET socket.
func (s *AFPacketSource) LinkType() layers.LinkType {
	return layers.LinkTypeEthernet
}

func (s *AFPacketSource) Close() error {
	if s.handle != nil {
		s.handle.Close()
		s.handle = nil
	}
	return nil
}
