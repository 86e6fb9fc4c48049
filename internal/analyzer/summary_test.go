package analyzer

import (
	"testing"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/pcapreport/internal/core"
	"firestige.xyz/pcapreport/internal/testutil"
)

func TestTCPFlags(t *testing.T) {
	tests := []struct {
		name string
		tcp  layers.TCP
		want string
	}{
		{"none", layers.TCP{}, ""},
		{"syn", layers.TCP{SYN: true}, "S"},
		{"syn ack", layers.TCP{SYN: true, ACK: true}, "SA"},
		{"push ack", layers.TCP{PSH: true, ACK: true}, "PA"},
		{"fin push ack", layers.TCP{FIN: true, PSH: true, ACK: true}, "FPA"},
		{"rst", layers.TCP{RST: true, ACK: true}, "RA"},
		{"all", layers.TCP{FIN: true, SYN: true, RST: true, PSH: true, ACK: true, URG: true, ECE: true, CWR: true, NS: true}, "FSRPAUECN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TCPFlags(&tt.tcp))
		})
	}
}

func TestSummaryNonIP(t *testing.T) {
	arp, err := testutil.ARPFrame()
	require.NoError(t, err)

	packet := gopacket.NewPacket(arp, layers.LinkTypeEthernet, gopacket.Default)
	assert.Equal(t, "Ether / ARP", Summary(packet))

	src, dst := endpoints(packet)
	assert.Equal(t, "??:??", src)
	assert.Equal(t, "??:??", dst)
	assert.Equal(t, core.Unknown, protocol(packet))
}

func TestSummaryWithoutPayload(t *testing.T) {
	data, err := testutil.TCPFrame("192.168.0.11", "192.168.0.12", 49875, 80, nil)
	require.NoError(t, err)

	packet := gopacket.NewPacket(data, layers.LinkTypeEthernet, gopacket.Default)
	assert.Equal(t, "Ether / IP / TCP 192.168.0.11:49875 > 192.168.0.12:80 PA", Summary(packet))
}
