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

package of13

import (
	"encoding/binary"
	"testing"

	"github.com/contiv/libOpenflow/openflow13"
	"github.com/google/go-cmp/cmp"
)

func newPacketIn(t *testing.T, match *openflow13.Match, frame []byte) []byte {
	m, err := match.MarshalBinary()
	if err != nil {
		t.Fatalf("failed to encode the match: %v", err)
	}

	p := make([]byte, packetInFixedLength)
	p[0] = openflow13.VERSION
	p[1] = openflow13.Type_PacketIn
	binary.BigEndian.PutUint32(p[4:8], 1)
	binary.BigEndian.PutUint32(p[8:12], NoBuffer)
	binary.BigEndian.PutUint16(p[12:14], uint16(len(frame)))
	p[14] = 0 // OFPR_NO_MATCH
	p[15] = 0
	binary.BigEndian.PutUint64(p[16:24], 0xCAFE)
	p = append(p, m...)
	p = append(p, 0, 0)
	p = append(p, frame...)
	binary.BigEndian.PutUint16(p[2:4], uint16(len(p)))

	return p
}

func TestParsePacketIn(t *testing.T) {
	frame := []byte{
		0x00, 0x00, 0x00, 0x00, 0x00, 0x01,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x03,
		0x08, 0x00, 0x45, 0x00,
	}

	match := openflow13.NewMatch()
	match.AddField(*openflow13.NewInPortField(3))

	v, err := ParsePacketIn(newPacketIn(t, match, frame))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := &PacketIn{
		BufferID: NoBuffer,
		TotalLen: uint16(len(frame)),
		Cookie:   0xCAFE,
		InPort:   3,
		Frame:    frame,
	}
	if !cmp.Equal(v, expected) {
		t.Fatalf("unexpected PACKET_IN: %v", cmp.Diff(expected, v))
	}
}

func TestParsePacketInMissingInPort(t *testing.T) {
	match := openflow13.NewMatch()
	match.AddField(*openflow13.NewEthTypeField(0x0800))

	if _, err := ParsePacketIn(newPacketIn(t, match, []byte{1, 2, 3})); err != ErrMissingInPort {
		t.Fatalf("unexpected error: expected=%v, actual=%v", ErrMissingInPort, err)
	}
}

func TestParsePacketInMalformed(t *testing.T) {
	match := openflow13.NewMatch()
	match.AddField(*openflow13.NewInPortField(3))
	valid := newPacketIn(t, match, []byte{1, 2, 3})

	src := []struct {
		name   string
		packet []byte
	}{
		{"empty", []byte{}},
		{"header only", valid[:8]},
		{"truncated match", valid[:packetInFixedLength+8]},
		{"wrong type", append([]byte{openflow13.VERSION, openflow13.Type_FlowMod}, valid[2:]...)},
	}

	for _, v := range src {
		if _, err := ParsePacketIn(v.packet); err == nil {
			t.Fatalf("%v: expected an error, but got nil", v.name)
		}
	}
}
