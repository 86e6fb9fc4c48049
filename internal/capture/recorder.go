package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/gopacket/pcapgo"

	"firestige.xyz/pcapreport/internal/core"
)

// Record copies frames from src into w as a classic pcap stream until count frames
// were written (count <= 0 means unbounded), src is exhausted or ctx is done.
// It returns the number of frames written.
func Record(ctx context.Context, src Source, w io.Writer, count, snapLen int) (int, error) {
	if snapLen <= 0 {
		snapLen = 65536
	}

	pw := pcapgo.NewWriter(w)
	if err := pw.WriteFileHeader(uint32(snapLen), src.LinkType()); err != nil {
		return 0, fmt.Errorf("failed to write pcap header: %w", err)
	}

	written := 0
	for count <= 0 || written < count {
		select {
		case <-ctx.Done():
			return written, nil
		default:
		}

		data, ci, err := src.ReadPacketData()
		if err != nil {
			if errors.Is(err, ErrTimeout) {
				continue
			}
			if errors.Is(err, io.EOF) {
				return written, nil
			}
			return written, fmt.Errorf("%w: %w", core.ErrCaptureUnavailable, err)
		}

		if ci.CaptureLength == 0 || ci.CaptureLength > len(data) {
			ci.CaptureLength = len(data)
		}
		if ci.CaptureLength > snapLen {
			ci.CaptureLength = snapLen
		}
		if ci.Length < ci.CaptureLength {
			ci.Length = ci.CaptureLength
		}
		if err := pw.WritePacket(ci, data[:ci.CaptureLength]); err != nil {
			return written, fmt.Errorf("failed to write packet %d: %w", written+1, err)
		}
		written++
	}
	return written, nil
}

// CaptureToFile records from src into a new capture file at path.
func CaptureToFile(ctx context.Context, src Source, path string, count, snapLen int) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create capture file %s: %w", path, err)
	}

	n, err := Record(ctx, src, f, count, snapLen)
	if cerr := f.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("failed to close capture file %s: %w", path, cerr)
	}
	if err != nil {
		return n, err
	}

	slog.Info("capture saved", "path", path, "packets", n)
	return n, nil
}
