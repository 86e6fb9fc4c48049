package capture

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"

	"firestige.xyz/pcapreport/internal/core"
)

// pcapng files start with a section header block.
const pcapngMagic = 0x0A0D0D0A

// packetReader is implemented by both pcapgo.Reader and pcapgo.NgReader.
type packetReader interface {
	ReadPacketData() ([]byte, gopacket.CaptureInfo, error)
	LinkType() layers.LinkType
}

// FileSource reads a saved capture file (classic pcap or pcapng).
type FileSource struct {
	path   string
	file   *os.File
	reader packetReader
}

// OpenFile opens a capture file. The format is detected from the leading magic number.
func OpenFile(path string) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open capture file %s: %w", core.ErrCaptureUnavailable, path, err)
	}

	r, err := newPacketReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: failed to parse capture file %s: %w", core.ErrCaptureUnavailable, path, err)
	}

	return &FileSource{
		path:   path,
		file:   f,
		reader: r,
	}, nil
}

func newPacketReader(r io.Reader) (packetReader, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(4)
	if err != nil {
		return nil, fmt.Errorf("failed to read file header: %w", err)
	}

	// The section header block type reads the same in both byte orders.
	if binary.LittleEndian.Uint32(magic) == pcapngMagic {
		return pcapgo.NewNgReader(br, pcapgo.DefaultNgReaderOptions)
	}
	return pcapgo.NewReader(br)
}

// Path returns the file the source reads.
func (fs *FileSource) Path() string {
	return fs.path
}

// ReadPacketData returns the next frame or io.EOF.
func (fs *FileSource) ReadPacketData() ([]byte, gopacket.CaptureInfo, error) {
	if fs.reader == nil {
		return nil, gopacket.CaptureInfo{}, fmt.Errorf("file source %s is closed", fs.path)
	}

	data, ci, err := fs.reader.ReadPacketData()
	if err != nil {
		if err == io.EOF {
			return nil, gopacket.CaptureInfo{}, io.EOF
		}
		return nil, gopacket.CaptureInfo{}, fmt.Errorf("failed to read packet: %w", err)
	}
	return data, ci, nil
}

// LinkType returns the link type from the file header.
func (fs *FileSource) LinkType() layers.LinkType {
	if fs.reader == nil {
		return layers.LinkTypeEthernet
	}
	return fs.reader.LinkType()
}

// Close closes the file.
func (fs *FileSource) Close() error {
	if fs.file == nil {
		return nil
	}
	err := fs.file.Close()
	fs.file = nil
	fs.reader = nil
	return err
}
