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

package openflow

import (
	"fmt"
	"net"
	"strings"

	"github.com/pkg/errors"
)

const (
	EtherTypeIPv4 = 0x0800
	EtherTypeARP  = 0x0806
)

var (
	ErrInvalidMACAddress = errors.New("invalid MAC address")
	ErrInvalidIPAddress  = errors.New("invalid IPv4 address")
)

// Match is the subset of OpenFlow match fields this controller installs. A nil or
// zero field is a wildcard.
type Match struct {
	inPort    *uint32
	dstMAC    net.HardwareAddr
	etherType *uint16
	srcIP     net.IP
	dstIP     net.IP
}

// NewMatch returns a wildcard match.
func NewMatch() *Match {
	return &Match{}
}

func (r *Match) SetInPort(port InPort) error {
	if port.IsController() {
		return errors.New("controller cannot be used as an ingress port in a match")
	}
	v := port.Value()
	r.inPort = &v

	return nil
}

func (r *Match) InPort() (wildcard bool, port uint32) {
	if r.inPort == nil {
		return true, 0
	}

	return false, *r.inPort
}

func (r *Match) SetDstMAC(mac net.HardwareAddr) error {
	if len(mac) != 6 {
		return errors.Wrap(ErrInvalidMACAddress, "SetDstMAC")
	}
	r.dstMAC = append(net.HardwareAddr(nil), mac...)

	return nil
}

func (r *Match) DstMAC() (wildcard bool, mac net.HardwareAddr) {
	if r.dstMAC == nil {
		return true, nil
	}

	return false, r.dstMAC
}

func (r *Match) SetEtherType(t uint16) {
	r.etherType = &t
}

func (r *Match) EtherType() (wildcard bool, etherType uint16) {
	if r.etherType == nil {
		return true, 0
	}

	return false, *r.etherType
}

// SetSrcIP requires the EtherType to be set to IPv4 as an OpenFlow 1.3 prerequisite.
func (r *Match) SetSrcIP(ip net.IP) error {
	v := ip.To4()
	if v == nil {
		return errors.Wrap(ErrInvalidIPAddress, "SetSrcIP")
	}
	r.srcIP = append(net.IP(nil), v...)

	return nil
}

func (r *Match) SrcIP() (wildcard bool, ip net.IP) {
	if r.srcIP == nil {
		return true, nil
	}

	return false, r.srcIP
}

func (r *Match) SetDstIP(ip net.IP) error {
	v := ip.To4()
	if v == nil {
		return errors.Wrap(ErrInvalidIPAddress, "SetDstIP")
	}
	r.dstIP = append(net.IP(nil), v...)

	return nil
}

func (r *Match) DstIP() (wildcard bool, ip net.IP) {
	if r.dstIP == nil {
		return true, nil
	}

	return false, r.dstIP
}

// Validate checks the OpenFlow 1.3 prerequisites of the match fields.
func (r *Match) Validate() error {
	if r.srcIP == nil && r.dstIP == nil {
		return nil
	}
	if r.etherType == nil || *r.etherType != EtherTypeIPv4 {
		return errors.New("IPv4 address match requires eth_type=0x0800")
	}

	return nil
}

func (r *Match) String() string {
	v := make([]string, 0)
	if r.inPort != nil {
		v = append(v, fmt.Sprintf("in_port=%v", *r.inPort))
	}
	if r.dstMAC != nil {
		v = append(v, fmt.Sprintf("eth_dst=%v", r.dstMAC))
	}
	if r.etherType != nil {
		v = append(v, fmt.Sprintf("eth_type=0x%04x", *r.etherType))
	}
	if r.srcIP != nil {
		v = append(v, fmt.Sprintf("ipv4_src=%v", r.srcIP))
	}
	if r.dstIP != nil {
		v = append(v, fmt.Sprintf("ipv4_dst=%v", r.dstIP))
	}
	if len(v) == 0 {
		return "*"
	}

	return strings.Join(v, ",")
}
