package analyzer

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

var layerNames = map[gopacket.LayerType]string{
	layers.LayerTypeEthernet:  "Ether",
	layers.LayerTypeIPv4:      "IP",
	layers.LayerTypeIPv6:      "IPv6",
	layers.LayerTypeDot1Q:     "802.1Q",
	gopacket.LayerTypePayload: "Raw",
}

// Summary describes every decoded layer on one line, for example
// "Ether / IP / TCP 192.168.0.11:49875 > 192.168.0.12:80 PA / Raw".
func Summary(packet gopacket.Packet) string {
	var srcIP, dstIP string
	if nl := packet.NetworkLayer(); nl != nil {
		src, dst := nl.NetworkFlow().Endpoints()
		srcIP, dstIP = src.String(), dst.String()
	}

	parts := make([]string, 0, len(packet.Layers()))
	for _, l := range packet.Layers() {
		switch t := l.(type) {
		case *layers.TCP:
			parts = append(parts, fmt.Sprintf("TCP %s > %s %s",
				hostPort(srcIP, int(t.SrcPort)), hostPort(dstIP, int(t.DstPort)), TCPFlags(t)))
		case *layers.UDP:
			parts = append(parts, fmt.Sprintf("UDP %s > %s",
				hostPort(srcIP, int(t.SrcPort)), hostPort(dstIP, int(t.DstPort))))
		default:
			parts = append(parts, layerName(l.LayerType()))
		}
	}
	return strings.Join(parts, " / ")
}

// TCPFlags renders the set flags in FSRPAUECN order, "PA" for PSH+ACK.
func TCPFlags(t *layers.TCP) string {
	flags := []struct {
		set  bool
		char byte
	}{
		{t.FIN, 'F'},
		{t.SYN, 'S'},
		{t.RST, 'R'},
		{t.PSH, 'P'},
		{t.ACK, 'A'},
		{t.URG, 'U'},
		{t.ECE, 'E'},
		{t.CWR, 'C'},
		{t.NS, 'N'},
	}

	var b strings.Builder
	for _, f := range flags {
		if f.set {
			b.WriteByte(f.char)
		}
	}
	return b.String()
}

func layerName(t gopacket.LayerType) string {
	if name, ok := layerNames[t]; ok {
		return name
	}
	return t.String()
}

func hostPort(ip string, port int) string {
	if ip == "" {
		return strconv.Itoa(port)
	}
	return net.JoinHostPort(ip, strconv.Itoa(port))
}
