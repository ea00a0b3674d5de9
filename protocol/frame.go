/*
 * Mirage - A Redirecting OpenFlow Controller
 *
 * Copyright (C) 2026 The Mirage Authors. All rights reserved.
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation; either version 2 of the License, or
 * any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License along
 * with this program; if not, write to the Free Software Foundation, Inc.,
 * 51 Franklin Street, Fifth Floor, Boston, MA 02110-1301 USA.
 */

package protocol

import (
	"net"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/pkg/errors"
)

var (
	serializeOptions = gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
)

// Endpoint is the link and network address pair of a host.
type Endpoint struct {
	MAC net.HardwareAddr
	IP  net.IP
}

func serialize(l ...gopacket.SerializableLayer) ([]byte, error) {
	buf := gopacket.NewSerializeBuffer()
	if err := gopacket.SerializeLayers(buf, serializeOptions, l...); err != nil {
		return nil, errors.Wrap(err, "serializing frame")
	}

	return buf.Bytes(), nil
}

func newIPv4(src, dst Endpoint, proto layers.IPProtocol) (*layers.Ethernet, *layers.IPv4, error) {
	if src.IP.To4() == nil || dst.IP.To4() == nil {
		return nil, nil, errors.New("IPv4 address expected")
	}

	eth := &layers.Ethernet{
		SrcMAC:       src.MAC,
		DstMAC:       dst.MAC,
		EthernetType: layers.EthernetTypeIPv4,
	}
	ip := &layers.IPv4{
		Version:  4,
		IHL:      5,
		TTL:      64,
		Protocol: proto,
		SrcIP:    src.IP.To4(),
		DstIP:    dst.IP.To4(),
	}

	return eth, ip, nil
}

// NewTCPFrame returns an Ethernet/IPv4/TCP SYN segment from src to dst.
func NewTCPFrame(src, dst Endpoint, srcPort, dstPort uint16) ([]byte, error) {
	eth, ip, err := newIPv4(src, dst, layers.IPProtocolTCP)
	if err != nil {
		return nil, err
	}
	tcp := &layers.TCP{
		SrcPort: layers.TCPPort(srcPort),
		DstPort: layers.TCPPort(dstPort),
		SYN:     true,
		Window:  14600,
	}
	if err := tcp.SetNetworkLayerForChecksum(ip); err != nil {
		return nil, err
	}

	return serialize(eth, ip, tcp)
}

// NewTCP6Frame returns an Ethernet/IPv6/TCP SYN segment from src to dst.
func NewTCP6Frame(src, dst Endpoint, srcPort, dstPort uint16) ([]byte, error) {
	if src.IP.To4() != nil || dst.IP.To4() != nil {
		return nil, errors.New("IPv6 address expected")
	}

	eth := &layers.Ethernet{
		SrcMAC:       src.MAC,
		DstMAC:       dst.MAC,
		EthernetType: layers.EthernetTypeIPv6,
	}
	ip := &layers.IPv6{
		Version:    6,
		NextHeader: layers.IPProtocolTCP,
		HopLimit:   64,
		SrcIP:      src.IP,
		DstIP:      dst.IP,
	}
	tcp := &layers.TCP{
		SrcPort: layers.TCPPort(srcPort),
		DstPort: layers.TCPPort(dstPort),
		SYN:     true,
		Window:  14600,
	}
	if err := tcp.SetNetworkLayerForChecksum(ip); err != nil {
		return nil, err
	}

	return serialize(eth, ip, tcp)
}

// NewICMPEchoFrame returns an Ethernet/IPv4/ICMP echo request from src to dst.
func NewICMPEchoFrame(src, dst Endpoint, id, seq uint16) ([]byte, error) {
	eth, ip, err := newIPv4(src, dst, layers.IPProtocolICMPv4)
	if err != nil {
		return nil, err
	}
	icmp := &layers.ICMPv4{
		TypeCode: layers.CreateICMPv4TypeCode(layers.ICMPv4TypeEchoRequest, 0),
		Id:       id,
		Seq:      seq,
	}

	return serialize(eth, ip, icmp, gopacket.Payload([]byte("mirage")))
}

// NewARPRequestFrame returns a broadcast ARP request asking who has tpa.
func NewARPRequestFrame(sender Endpoint, tpa net.IP) ([]byte, error) {
	if sender.IP.To4() == nil || tpa.To4() == nil {
		return nil, errors.New("IPv4 address expected")
	}

	eth := &layers.Ethernet{
		SrcMAC:       sender.MAC,
		DstMAC:       net.HardwareAddr{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF},
		EthernetType: layers.EthernetTypeARP,
	}
	arp := &layers.ARP{
		AddrType:          layers.LinkTypeEthernet,
		Protocol:          layers.EthernetTypeIPv4,
		HwAddressSize:     6,
		ProtAddressSize:   4,
		Operation:         layers.ARPRequest,
		SourceHwAddress:   []byte(sender.MAC),
		SourceProtAddress: []byte(sender.IP.To4()),
		DstHwAddress:      []byte{0, 0, 0, 0, 0, 0},
		DstProtAddress:    []byte(tpa.To4()),
	}

	return serialize(eth, arp)
}
