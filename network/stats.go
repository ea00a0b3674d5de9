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

package network

import (
	"sync/atomic"
)

// Stats counts the events processed by the controller.
type Stats struct {
	packetIn   atomic.Uint64
	flood      atomic.Uint64
	unicast    atomic.Uint64
	redirect   atomic.Uint64
	mismatch   atomic.Uint64
	parseError atomic.Uint64
	stormDrop  atomic.Uint64
	packetOut  atomic.Uint64
	flowMod    atomic.Uint64
}

type StatsSnapshot struct {
	PacketIn   uint64 `json:"packet_in"`
	Flood      uint64 `json:"flood"`
	Unicast    uint64 `json:"unicast"`
	Redirect   uint64 `json:"redirect"`
	Mismatch   uint64 `json:"mismatch"`
	ParseError uint64 `json:"parse_error"`
	StormDrop  uint64 `json:"storm_drop"`
	PacketOut  uint64 `json:"packet_out"`
	FlowMod    uint64 `json:"flow_mod"`
}

func (r *Stats) countDecision(kind DecisionKind) {
	switch kind {
	case Flood:
		r.flood.Add(1)
	case Unicast:
		r.unicast.Add(1)
	case Rewrite:
		r.redirect.Add(1)
	}
}

func (r *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		PacketIn:   r.packetIn.Load(),
		Flood:      r.flood.Load(),
		Unicast:    r.unicast.Load(),
		Redirect:   r.redirect.Load(),
		Mismatch:   r.mismatch.Load(),
		ParseError: r.parseError.Load(),
		StormDrop:  r.stormDrop.Load(),
		PacketOut:  r.packetOut.Load(),
		FlowMod:    r.flowMod.Load(),
	}
}
