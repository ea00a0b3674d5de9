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
)

const (
	flood = iota
	controller
)

// OutPort is an output port of an action. It is either a physical port number or one of
// the logical ports (FLOOD, CONTROLLER).
type OutPort struct {
	logical uint8
	value   uint32
}

// NewOutPort returns output port whose default value is FLOOD
func NewOutPort() OutPort {
	return OutPort{
		logical: 0x1 << flood,
	}
}

func (r *OutPort) SetFlood() {
	r.logical = 0x1 << flood
	r.value = 0
}

func (r OutPort) IsFlood() bool {
	return r.logical&(0x1<<flood) != 0
}

func (r *OutPort) SetController() {
	r.logical = 0x1 << controller
	r.value = 0
}

func (r OutPort) IsController() bool {
	return r.logical&(0x1<<controller) != 0
}

func (r *OutPort) SetValue(port uint32) {
	r.logical = 0x0
	r.value = port
}

func (r OutPort) Value() uint32 {
	return r.value
}

func (r OutPort) String() string {
	switch {
	case r.IsFlood():
		return "FLOOD"
	case r.IsController():
		return "CONTROLLER"
	default:
		return fmt.Sprintf("%v", r.value)
	}
}

type InPort struct {
	value      uint32
	controller bool
}

func NewInPort() InPort {
	return InPort{
		controller: true,
	}
}

func (r *InPort) SetValue(port uint32) {
	r.controller = false
	r.value = port
}

func (r *InPort) SetController() {
	r.controller = true
	r.value = 0
}

func (r InPort) IsController() bool {
	return r.controller
}

func (r InPort) Value() uint32 {
	return r.value
}
