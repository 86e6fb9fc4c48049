// Package core defines core data structures with zero external dependencies.
package core

import "time"

// TimestampLayout renders capture times with microsecond precision.
const TimestampLayout = "2006-01-02 15:04:05.000000"

// Unknown is rendered for addressing fields a packet does not carry.
const Unknown = "??"

// Columns is the fixed column order shared by every sink.
var Columns = [...]string{"TimeStamp", "Host", "Dest", "Protocol", "Summary", "Raw data"}

// Record is the report line produced for one payload-bearing packet.
type Record struct {
	Timestamp   string // Local capture time, TimestampLayout
	Source      string // address:port
	Destination string // address:port
	Protocol    string // Transport protocol name, lower case
	Summary     string // One-line layered packet description
	Text        string // Extracted HTTP line, or the fallback value

	// Matched reports whether Text came from an HTTP request or response line.
	Matched bool
}

// FormatTimestamp converts a capture time to the record representation in local time.
func FormatTimestamp(t time.Time) string {
	return t.Local().Format(TimestampLayout)
}

// Fields returns the record values in Columns order.
func (r Record) Fields() [len(Columns)]string {
	return [len(Columns)]string{r.Timestamp, r.Source, r.Destination, r.Protocol, r.Summary, r.Text}
}

// Stats describes one analyzer run.
type Stats struct {
	Packets        int // Packets read from the source
	PayloadPackets int // Packets carrying a raw payload layer, equals the record count
	Matched        int // Records whose text came from an HTTP line
	DecodeErrors   int // Packets gopacket reported a decode failure for
}
