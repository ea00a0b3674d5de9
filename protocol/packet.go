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
	"fmt"
	"net"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// ParseError is returned by Parse when the frame does not carry a valid Ethernet header.
type ParseError struct {
	Length int
	Err    error
}

func (r *ParseError) Error() string {
	return fmt.Sprintf("malformed ethernet frame (length=%v): %v", r.Length, r.Err)
}

func (r *ParseError) Cause() error {
	return r.Err
}

func (r *ParseError) Unwrap() error {
	return r.Err
}

type ipv4Header struct {
	src      net.IP
	dst      net.IP
	protocol uint8
}

type tcpHeader struct {
	srcPort uint16
	dstPort uint16
}

// Packet is a read-only view of the headers of a single frame. The upper layers
// are optional: a frame whose IPv4 or TCP header is absent, truncated or unsupported
// is still a valid Packet.
type Packet struct {
	srcMAC    net.HardwareAddr
	dstMAC    net.HardwareAddr
	etherType uint16
	ipv4      *ipv4Header
	ipv6      bool
	tcp       *tcpHeader
}

// Parse decodes the frame. It fails only if the Ethernet header is malformed.
func Parse(frame []byte) (*Packet, error) {
	var (
		eth layers.Ethernet
		ip4 layers.IPv4
		ip6 layers.IPv6
		tcp layers.TCP
	)
	parser := gopacket.NewDecodingLayerParser(layers.LayerTypeEthernet, &eth, &ip4, &ip6, &tcp)
	// ARP, ICMP, UDP and the TCP payload are not decoded.
	parser.IgnoreUnsupported = true

	decoded := make([]gopacket.LayerType, 0, 4)
	err := parser.DecodeLayers(frame, &decoded)
	if len(decoded) == 0 || decoded[0] != layers.LayerTypeEthernet {
		if err == nil {
			err = fmt.Errorf("no ethernet layer")
		}
		return nil, &ParseError{Length: len(frame), Err: err}
	}
	if err != nil {
		logger.Debugf("partially decoded frame (layers=%v): %v", decoded, err)
	}

	p := &Packet{
		srcMAC:    copyMAC(eth.SrcMAC),
		dstMAC:    copyMAC(eth.DstMAC),
		etherType: uint16(eth.EthernetType),
	}
	for _, t := range decoded[1:] {
		switch t {
		case layers.LayerTypeIPv4:
			p.ipv4 = &ipv4Header{
				src:      copyIP(ip4.SrcIP.To4()),
				dst:      copyIP(ip4.DstIP.To4()),
				protocol: uint8(ip4.Protocol),
			}
		case layers.LayerTypeIPv6:
			p.ipv6 = true
		case layers.LayerTypeTCP:
			p.tcp = &tcpHeader{
				srcPort: uint16(tcp.SrcPort),
				dstPort: uint16(tcp.DstPort),
			}
		}
	}

	return p, nil
}

func copyMAC(mac net.HardwareAddr) net.HardwareAddr {
	v := make(net.HardwareAddr, len(mac))
	copy(v, mac)
	return v
}

func copyIP(ip net.IP) net.IP {
	v := make(net.IP, len(ip))
	copy(v, ip)
	return v
}

func (r *Packet) SrcMAC() net.HardwareAddr {
	return r.srcMAC
}

func (r *Packet) DstMAC() net.HardwareAddr {
	return r.dstMAC
}

func (r *Packet) EtherType() uint16 {
	return r.etherType
}

// IPv4 returns the source and destination addresses of the IPv4 header, if any.
func (r *Packet) IPv4() (src, dst net.IP, ok bool) {
	if r.ipv4 == nil {
		return nil, nil, false
	}

	return r.ipv4.src, r.ipv4.dst, true
}

func (r *Packet) IsIPv6() bool {
	return r.ipv6
}

func (r *Packet) HasTCP() bool {
	return r.tcp != nil
}

// TCPPorts returns zeros if the packet does not have a TCP header.
func (r *Packet) TCPPorts() (src, dst uint16) {
	if r.tcp == nil {
		return 0, 0
	}

	return r.tcp.srcPort, r.tcp.dstPort
}

func (r *Packet) String() string {
	v := fmt.Sprintf("SrcMAC=%v, DstMAC=%v, EtherType=0x%04x", r.srcMAC, r.dstMAC, r.etherType)
	if r.ipv4 != nil {
		v += fmt.Sprintf(", SrcIP=%v, DstIP=%v, Protocol=%v", r.ipv4.src, r.ipv4.dst, r.ipv4.protocol)
	}
	if r.ipv6 {
		v += ", IPv6"
	}
	if r.tcp != nil {
		v += fmt.Sprintf(", TCP=%v->%v", r.tcp.srcPort, r.tcp.dstPort)
	}

	return v
}
