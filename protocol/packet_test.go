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
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
)

var (
	client  = Endpoint{MAC: net.HardwareAddr{0, 0, 0, 0, 0, 3}, IP: net.IPv4(10, 0, 1, 5)}
	server1 = Endpoint{MAC: net.HardwareAddr{0, 0, 0, 0, 0, 1}, IP: net.IPv4(10, 0, 1, 2)}
)

type summary struct {
	SrcMAC    string
	DstMAC    string
	EtherType uint16
	IPv4      bool
	SrcIP     string
	DstIP     string
	IPv6      bool
	TCP       bool
	SrcPort   uint16
	DstPort   uint16
}

func summarize(p *Packet) summary {
	s := summary{
		SrcMAC:    p.SrcMAC().String(),
		DstMAC:    p.DstMAC().String(),
		EtherType: p.EtherType(),
		IPv6:      p.IsIPv6(),
		TCP:       p.HasTCP(),
	}
	if src, dst, ok := p.IPv4(); ok {
		s.IPv4 = true
		s.SrcIP = src.String()
		s.DstIP = dst.String()
	}
	s.SrcPort, s.DstPort = p.TCPPorts()

	return s
}

func mustFrame(t *testing.T, frame []byte, err error) []byte {
	if err != nil {
		t.Fatalf("failed to build a frame: %v", err)
	}
	return frame
}

func TestParse(t *testing.T) {
	v6client := Endpoint{MAC: client.MAC, IP: net.ParseIP("fe80::3")}
	v6server := Endpoint{MAC: server1.MAC, IP: net.ParseIP("fe80::1")}

	tcp, err := NewTCPFrame(client, server1, 40000, 80)
	tcp = mustFrame(t, tcp, err)
	icmp, err := NewICMPEchoFrame(client, server1, 1, 1)
	icmp = mustFrame(t, icmp, err)
	arp, err := NewARPRequestFrame(client, server1.IP)
	arp = mustFrame(t, arp, err)
	tcp6, err := NewTCP6Frame(v6client, v6server, 40000, 80)
	tcp6 = mustFrame(t, tcp6, err)
	// Ethernet header announcing IPv4 followed by a truncated IPv4 header.
	truncated := append([]byte{0, 0, 0, 0, 0, 1, 0, 0, 0, 0, 0, 3, 0x08, 0x00}, 0x45, 0x00, 0x00)

	src := []struct {
		Name     string
		Frame    []byte
		Expected summary
	}{
		{
			Name:  "tcp",
			Frame: tcp,
			Expected: summary{
				SrcMAC: "00:00:00:00:00:03", DstMAC: "00:00:00:00:00:01", EtherType: 0x0800,
				IPv4: true, SrcIP: "10.0.1.5", DstIP: "10.0.1.2",
				TCP: true, SrcPort: 40000, DstPort: 80,
			},
		},
		{
			Name:  "icmp",
			Frame: icmp,
			Expected: summary{
				SrcMAC: "00:00:00:00:00:03", DstMAC: "00:00:00:00:00:01", EtherType: 0x0800,
				IPv4: true, SrcIP: "10.0.1.5", DstIP: "10.0.1.2",
			},
		},
		{
			Name:  "arp",
			Frame: arp,
			Expected: summary{
				SrcMAC: "00:00:00:00:00:03", DstMAC: "ff:ff:ff:ff:ff:ff", EtherType: 0x0806,
			},
		},
		{
			Name:  "tcp over ipv6",
			Frame: tcp6,
			Expected: summary{
				SrcMAC: "00:00:00:00:00:03", DstMAC: "00:00:00:00:00:01", EtherType: 0x86DD,
				IPv6: true, TCP: true, SrcPort: 40000, DstPort: 80,
			},
		},
		{
			Name:  "truncated ipv4",
			Frame: truncated,
			Expected: summary{
				SrcMAC: "00:00:00:00:00:03", DstMAC: "00:00:00:00:00:01", EtherType: 0x0800,
			},
		},
	}

	for _, v := range src {
		p, err := Parse(v.Frame)
		if err != nil {
			t.Fatalf("%v: unexpected error: %v", v.Name, err)
		}
		got := summarize(p)
		if cmp.Equal(got, v.Expected) == false {
			t.Fatalf("%v: unexpected packet: expected=%v, actual=%v, diff=%v", v.Name, spew.Sdump(v.Expected), spew.Sdump(got), cmp.Diff(v.Expected, got))
		}
	}
}

func TestParseMalformed(t *testing.T) {
	src := [][]byte{
		nil,
		{},
		{0, 0, 0, 0, 0, 1},
		{0, 0, 0, 0, 0, 1, 0, 0, 0, 0, 0, 3, 0x08},
	}

	for _, v := range src {
		p, err := Parse(v)
		if err == nil {
			t.Fatalf("expected error for %v byte(s) frame, but got a packet: %v", len(v), p)
		}
		var perr *ParseError
		if errors.As(err, &perr) == false {
			t.Fatalf("unexpected error type: %T", err)
		}
		if perr.Length != len(v) {
			t.Fatalf("unexpected frame length: expected=%v, actual=%v", len(v), perr.Length)
		}
	}
}

func TestParseDoesNotAlias(t *testing.T) {
	frame, err := NewTCPFrame(client, server1, 1234, 80)
	frame = mustFrame(t, frame, err)

	p, err := Parse(frame)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range frame {
		frame[i] = 0xFF
	}
	if p.SrcMAC().String() != "00:00:00:00:00:03" {
		t.Fatalf("packet shares memory with the frame: SrcMAC=%v", p.SrcMAC())
	}
	if src, _, _ := p.IPv4(); src.Equal(client.IP) == false {
		t.Fatalf("packet shares memory with the frame: SrcIP=%v", src)
	}
}
