// Package analyzer turns captured frames into report records.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"firestige.xyz/pcapreport/internal/capture"
	"firestige.xyz/pcapreport/internal/core"
	"firestige.xyz/pcapreport/internal/extract"
)

// PacketSource yields raw frames in capture order.
type PacketSource interface {
	ReadPacketData() ([]byte, gopacket.CaptureInfo, error)
	LinkType() layers.LinkType
}

// Analyzer builds one record per payload-bearing packet.
type Analyzer struct {
	extractor *extract.Extractor
}

// New returns an Analyzer using ex for text extraction. A nil ex uses the defaults.
func New(ex *extract.Extractor) *Analyzer {
	if ex == nil {
		ex = extract.New(extract.ModeBytes, extract.FallbackNone)
	}
	return &Analyzer{extractor: ex}
}

// Analyze reads src to the end. Records are returned in capture order, one per
// packet that carries a raw payload layer. On cancellation the records collected
// so far are returned together with the context error.
func (a *Analyzer) Analyze(ctx context.Context, src PacketSource) ([]core.Record, core.Stats, error) {
	var (
		records []core.Record
		stats   core.Stats
	)

	linkType := src.LinkType()
	for {
		if err := ctx.Err(); err != nil {
			return records, stats, err
		}

		data, ci, err := src.ReadPacketData()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			if errors.Is(err, capture.ErrTimeout) {
				continue
			}
			return records, stats, fmt.Errorf("%w: failed to read packet %d: %w", core.ErrCaptureUnavailable, stats.Packets+1, err)
		}
		stats.Packets++

		packet := gopacket.NewPacket(data, linkType, gopacket.Default)
		if errLayer := packet.ErrorLayer(); errLayer != nil {
			stats.DecodeErrors++
			slog.Debug("packet decoded partially", "packet", stats.Packets, "error", errLayer.Error())
		}

		rec, ok := a.record(packet, ci)
		if !ok {
			continue
		}
		stats.PayloadPackets++
		if rec.Matched {
			stats.Matched++
		}
		records = append(records, rec)
	}

	return records, stats, nil
}

// AnalyzeFile analyzes a saved capture file.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string) ([]core.Record, core.Stats, error) {
	src, err := capture.OpenFile(path)
	if err != nil {
		return nil, core.Stats{}, err
	}
	defer src.Close()

	records, stats, err := a.Analyze(ctx, src)
	if err != nil {
		return records, stats, err
	}

	slog.Info("capture analyzed",
		"path", path,
		"packets", stats.Packets,
		"records", stats.PayloadPackets,
		"matched", stats.Matched,
		"decode_errors", stats.DecodeErrors)
	return records, stats, nil
}

func (a *Analyzer) record(packet gopacket.Packet, ci gopacket.CaptureInfo) (core.Record, bool) {
	payload := packet.Layer(gopacket.LayerTypePayload)
	if payload == nil {
		return core.Record{}, false
	}

	text, matched := a.extractor.Find(payload.LayerContents())
	src, dst := endpoints(packet)
	return core.Record{
		Timestamp:   core.FormatTimestamp(ci.Timestamp),
		Source:      src,
		Destination: dst,
		Protocol:    protocol(packet),
		Summary:     Summary(packet),
		Text:        text,
		Matched:     matched,
	}, true
}
