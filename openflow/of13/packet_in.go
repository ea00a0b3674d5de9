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
	"fmt"

	"github.com/contiv/libOpenflow/openflow13"
	"github.com/pkg/errors"
)

const (
	// Fixed part of PACKET_IN that precedes the match: header, buffer_id, total_len,
	// reason, table_id and cookie.
	packetInFixedLength = 24
	// Padding between the match and the frame.
	packetInPadLength = 2
	// Type and length fields of ofp_match.
	matchHeaderLength = 4
)

var (
	ErrMissingInPort = errors.New("missing in_port in PACKET_IN")
)

// PacketIn is a decoded PACKET_IN message. Frame is kept exactly as the switch sent it.
type PacketIn struct {
	BufferID uint32
	TotalLen uint16
	Reason   uint8
	TableID  uint8
	Cookie   uint64
	InPort   uint32
	Frame    []byte
}

func (r *PacketIn) String() string {
	return fmt.Sprintf("PacketIn(BufferID=%v, TotalLen=%v, Reason=%v, TableID=%v, InPort=%v, FrameLength=%v)",
		r.BufferID, r.TotalLen, r.Reason, r.TableID, r.InPort, len(r.Frame))
}

// ParsePacketIn decodes a raw PACKET_IN message. The OXM match is decoded by libOpenflow,
// while the frame is sliced out of the message without being re-encoded.
func ParsePacketIn(packet []byte) (*PacketIn, error) {
	if len(packet) < packetInFixedLength+matchHeaderLength {
		return nil, fmt.Errorf("too short PACKET_IN: length=%v", len(packet))
	}
	if packet[1] != openflow13.Type_PacketIn {
		return nil, fmt.Errorf("not a PACKET_IN message: type=%v", packet[1])
	}

	v := &PacketIn{
		BufferID: binary.BigEndian.Uint32(packet[8:12]),
		TotalLen: binary.BigEndian.Uint16(packet[12:14]),
		Reason:   packet[14],
		TableID:  packet[15],
		Cookie:   binary.BigEndian.Uint64(packet[16:24]),
	}

	matchLength := int(binary.BigEndian.Uint16(packet[packetInFixedLength+2 : packetInFixedLength+4]))
	if matchLength < matchHeaderLength {
		return nil, fmt.Errorf("invalid match length: %v", matchLength)
	}
	// ofp_match is padded to a multiple of 8 bytes.
	paddedLength := (matchLength + 7) / 8 * 8
	offset := packetInFixedLength + paddedLength + packetInPadLength
	if offset > len(packet) {
		return nil, fmt.Errorf("truncated PACKET_IN: match length=%v, packet length=%v", matchLength, len(packet))
	}

	match := openflow13.NewMatch()
	if err := match.UnmarshalBinary(packet[packetInFixedLength : packetInFixedLength+paddedLength]); err != nil {
		return nil, errors.Wrap(err, "decoding the PACKET_IN match")
	}
	port, ok := inPort(match)
	if !ok {
		return nil, ErrMissingInPort
	}
	v.InPort = port
	v.Frame = make([]byte, len(packet)-offset)
	copy(v.Frame, packet[offset:])

	return v, nil
}
