package analyzer

import (
	"net"
	"strconv"
	"strings"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"firestige.xyz/pcapreport/internal/core"
)

// endpoints renders source and destination as address:port. Missing parts are core.Unknown.
func endpoints(packet gopacket.Packet) (src, dst string) {
	srcIP, dstIP := core.Unknown, core.Unknown
	switch ip := packet.NetworkLayer().(type) {
	case *layers.IPv4:
		srcIP, dstIP = ip.SrcIP.String(), ip.DstIP.String()
	case *layers.IPv6:
		srcIP, dstIP = ip.SrcIP.String(), ip.DstIP.String()
	}

	srcPort, dstPort := core.Unknown, core.Unknown
	switch l4 := packet.TransportLayer().(type) {
	case *layers.TCP:
		srcPort, dstPort = strconv.Itoa(int(l4.SrcPort)), strconv.Itoa(int(l4.DstPort))
	case *layers.UDP:
		srcPort, dstPort = strconv.Itoa(int(l4.SrcPort)), strconv.Itoa(int(l4.DstPort))
	}

	return net.JoinHostPort(srcIP, srcPort), net.JoinHostPort(dstIP, dstPort)
}

// protocol returns the IP payload protocol name in lower case.
func protocol(packet gopacket.Packet) string {
	switch ip := packet.NetworkLayer().(type) {
	case *layers.IPv4:
		return strings.ToLower(ip.Protocol.String())
	case *layers.IPv6:
		return strings.ToLower(ip.NextHeader.String())
	}
	return core.Unknown
}
