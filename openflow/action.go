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

type Field uint8

const (
	FieldSrcMAC Field = iota
	FieldDstMAC
	FieldSrcIP
	FieldDstIP
)

func (r Field) String() string {
	switch r {
	case FieldSrcMAC:
		return "eth_src"
	case FieldDstMAC:
		return "eth_dst"
	case FieldSrcIP:
		return "ipv4_src"
	case FieldDstIP:
		return "ipv4_dst"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(r))
	}
}

// SetField rewrites a header field. Only one of MAC and IP is meaningful depending on Field.
type SetField struct {
	Field Field
	MAC   net.HardwareAddr
	IP    net.IP
}

func (r SetField) String() string {
	switch r.Field {
	case FieldSrcMAC, FieldDstMAC:
		return fmt.Sprintf("set_field:%v->%v", r.MAC, r.Field)
	default:
		return fmt.Sprintf("set_field:%v->%v", r.IP, r.Field)
	}
}

// Action is an ordered action list: header rewrites are applied first in the order they
// were added, and then the packet is sent to the output ports.
type Action struct {
	err       error
	setFields []SetField
	output    []OutPort
}

func NewAction() *Action {
	return &Action{
		setFields: make([]SetField, 0),
		output:    make([]OutPort, 0),
	}
}

func (r *Action) SetSrcMAC(mac net.HardwareAddr) {
	if len(mac) != 6 {
		r.err = errors.Wrap(ErrInvalidMACAddress, "SetSrcMAC")
		return
	}
	r.setFields = append(r.setFields, SetField{Field: FieldSrcMAC, MAC: append(net.HardwareAddr(nil), mac...)})
}

func (r *Action) SetDstMAC(mac net.HardwareAddr) {
	if len(mac) != 6 {
		r.err = errors.Wrap(ErrInvalidMACAddress, "SetDstMAC")
		return
	}
	r.setFields = append(r.setFields, SetField{Field: FieldDstMAC, MAC: append(net.HardwareAddr(nil), mac...)})
}

func (r *Action) SetSrcIP(ip net.IP) {
	v := ip.To4()
	if v == nil {
		r.err = errors.Wrap(ErrInvalidIPAddress, "SetSrcIP")
		return
	}
	r.setFields = append(r.setFields, SetField{Field: FieldSrcIP, IP: append(net.IP(nil), v...)})
}

func (r *Action) SetDstIP(ip net.IP) {
	v := ip.To4()
	if v == nil {
		r.err = errors.Wrap(ErrInvalidIPAddress, "SetDstIP")
		return
	}
	r.setFields = append(r.setFields, SetField{Field: FieldDstIP, IP: append(net.IP(nil), v...)})
}

func (r *Action) SetOutPort(port OutPort) {
	for _, v := range r.output {
		if v == port {
			return
		}
	}
	r.output = append(r.output, port)
}

func (r *Action) SetFields() []SetField {
	return r.setFields
}

func (r *Action) OutPort() []OutPort {
	return r.output
}

func (r *Action) Error() error {
	return r.err
}

func (r *Action) String() string {
	v := make([]string, 0, len(r.setFields)+len(r.output))
	for _, f := range r.setFields {
		v = append(v, f.String())
	}
	for _, p := range r.output {
		v = append(v, fmt.Sprintf("output:%v", p))
	}
	if len(v) == 0 {
		return "drop"
	}

	return strings.Join(v, ",")
}
