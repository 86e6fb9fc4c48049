// Package testutil builds synthetic frames and capture files for tests.
package testutil

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

// Frame is one packet of a synthetic capture.
type Frame struct {
	Data      []byte
	Timestamp time.Time
}

var (
	srcMAC = net.HardwareAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55}
	dstMAC = net.HardwareAddr{0x00, 0xaa, 0xbb, 0xcc, 0xdd, 0xee}
)

// TCPFrame builds Ethernet + IPv4 + TCP (PSH, ACK) carrying payload. An empty payload
// yields a frame without a payload layer.
func TCPFrame(srcIP, dstIP string, srcPort, dstPort uint16, payload []byte) ([]byte, error) {
	ip := ipv4(srcIP, dstIP, layers.IPProtocolTCP)
	tcp := &layers.TCP{
		SrcPort: layers.TCPPort(srcPort),
		DstPort: layers.TCPPort(dstPort),
		Seq:     1000,
		Ack:     2000,
		PSH:     true,
		ACK:     true,
		Window:  65535,
	}
	if err := tcp.SetNetworkLayerForChecksum(ip); err != nil {
		return nil, fmt.Errorf("failed to set network layer for checksum: %v", err)
	}
	return serialize(ethernet(layers.EthernetTypeIPv4), ip, tcp, payload)
}

// UDPFrame builds Ethernet + IPv4 + UDP carrying payload.
func UDPFrame(srcIP, dstIP string, srcPort, dstPort uint16, payload []byte) ([]byte, error) {
	ip := ipv4(srcIP, dstIP, layers.IPProtocolUDP)
	udp := &layers.UDP{
		SrcPort: layers.UDPPort(srcPort),
		DstPort: layers.UDPPort(dstPort),
	}
	if err := udp.SetNetworkLayerForChecksum(ip); err != nil {
		return nil, fmt.Errorf("failed to set network layer for checksum: %v", err)
	}
	return serialize(ethernet(layers.EthernetTypeIPv4), ip, udp, payload)
}

// ARPFrame builds an Ethernet + ARP request, a frame without any payload layer.
func ARPFrame() ([]byte, error) {
	arp := &layers.ARP{
		AddrType:          layers.LinkTypeEthernet,
		Protocol:          layers.EthernetTypeIPv4,
		HwAddressSize:     6,
		ProtAddressSize:   4,
		Operation:         layers.ARPRequest,
		SourceHwAddress:   srcMAC,
		SourceProtAddress: net.ParseIP("192.168.0.11").To4(),
		DstHwAddress:      net.HardwareAddr{0, 0, 0, 0, 0, 0},
		DstProtAddress:    net.ParseIP("192.168.0.1").To4(),
	}
	eth := ethernet(layers.EthernetTypeARP)
	eth.DstMAC = net.HardwareAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
	return serialize(eth, arp, nil, nil)
}

func ethernet(t layers.EthernetType) *layers.Ethernet {
	return &layers.Ethernet{
		SrcMAC:       srcMAC,
		DstMAC:       dstMAC,
		EthernetType: t,
	}
}

func ipv4(src, dst string, proto layers.IPProtocol) *layers.IPv4 {
	return &layers.IPv4{
		Version:  4,
		IHL:      5,
		TTL:      64,
		Flags:    layers.IPv4DontFragment,
		Protocol: proto,
		SrcIP:    net.ParseIP(src).To4(),
		DstIP:    net.ParseIP(dst).To4(),
	}
}

func serialize(eth *layers.Ethernet, l3 gopacket.SerializableLayer, l4 gopacket.SerializableLayer, payload []byte) ([]byte, error) {
	stack := []gopacket.SerializableLayer{eth, l3}
	if l4 != nil {
		stack = append(stack, l4)
	}
	if len(payload) > 0 {
		stack = append(stack, gopacket.Payload(payload))
	}

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{
		FixLengths:       true,
		ComputeChecksums: true,
	}
	if err := gopacket.SerializeLayers(buf, opts, stack...); err != nil {
		return nil, fmt.Errorf("failed to serialize packet: %v", err)
	}
	return buf.Bytes(), nil
}

// WritePcap writes frames to a classic pcap file with an Ethernet link type.
func WritePcap(path string, frames []Frame) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := pcapgo.NewWriter(f)
	if err := w.WriteFileHeader(65536, layers.LinkTypeEthernet); err != nil {
		return err
	}
	for _, fr := range frames {
		ci := gopacket.CaptureInfo{
			Timestamp:     fr.Timestamp,
			CaptureLength: len(fr.Data),
			Length:        len(fr.Data),
		}
		if err := w.WritePacket(ci, fr.Data); err != nil {
			return err
		}
	}
	return f.Close()
}
