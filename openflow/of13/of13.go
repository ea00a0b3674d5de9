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

// Package of13 translates the version-neutral flow model into OpenFlow 1.3 messages.
package of13

import (
	"fmt"

	"github.com/mirage-sdn/mirage/openflow"

	"github.com/contiv/libOpenflow/openflow13"
	"github.com/contiv/libOpenflow/util"
	"github.com/pkg/errors"
)

const (
	NoBuffer uint32 = 0xFFFFFFFF
)

func portNumber(p openflow.OutPort) uint32 {
	switch {
	case p.IsFlood():
		return openflow13.P_FLOOD
	case p.IsController():
		return openflow13.P_CONTROLLER
	default:
		return p.Value()
	}
}

// NewMatch converts m into an OXM match. Wildcard fields are omitted.
func NewMatch(m *openflow.Match) *openflow13.Match {
	match := openflow13.NewMatch()

	if wildcard, port := m.InPort(); !wildcard {
		match.AddField(*openflow13.NewInPortField(port))
	}
	if wildcard, mac := m.DstMAC(); !wildcard {
		match.AddField(*openflow13.NewEthDstField(mac, nil))
	}
	if wildcard, t := m.EtherType(); !wildcard {
		match.AddField(*openflow13.NewEthTypeField(t))
	}
	if wildcard, ip := m.SrcIP(); !wildcard {
		match.AddField(*openflow13.NewIpv4SrcField(ip, nil))
	}
	if wildcard, ip := m.DstIP(); !wildcard {
		match.AddField(*openflow13.NewIpv4DstField(ip, nil))
	}

	return match
}

// NewActions converts a into OpenFlow 1.3 actions: set-field actions first, and then outputs.
func NewActions(a *openflow.Action) ([]openflow13.Action, error) {
	if err := a.Error(); err != nil {
		return nil, err
	}

	actions := make([]openflow13.Action, 0, len(a.SetFields())+len(a.OutPort()))
	for _, f := range a.SetFields() {
		var field *openflow13.MatchField
		switch f.Field {
		case openflow.FieldSrcMAC:
			field = openflow13.NewEthSrcField(f.MAC, nil)
		case openflow.FieldDstMAC:
			field = openflow13.NewEthDstField(f.MAC, nil)
		case openflow.FieldSrcIP:
			field = openflow13.NewIpv4SrcField(f.IP, nil)
		case openflow.FieldDstIP:
			field = openflow13.NewIpv4DstField(f.IP, nil)
		default:
			return nil, fmt.Errorf("unsupported set-field: %v", f.Field)
		}
		actions = append(actions, openflow13.NewActionSetField(*field))
	}

	for _, p := range a.OutPort() {
		output := openflow13.NewActionOutput(portNumber(p))
		if p.IsController() {
			// Send the whole packet to the controller.
			output.MaxLen = openflow13.OFPCML_NO_BUFFER
		}
		actions = append(actions, output)
	}

	return actions, nil
}

// NewFlowMod returns a FLOW_MOD (ADD) message that installs the rule with an apply-actions instruction.
func NewFlowMod(rule openflow.FlowRule) (*openflow13.FlowMod, error) {
	if err := rule.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid flow rule")
	}
	actions, err := NewActions(rule.Action)
	if err != nil {
		return nil, err
	}

	msg := openflow13.NewFlowMod()
	msg.Command = openflow13.FC_ADD
	msg.Cookie = rule.Cookie
	msg.TableId = rule.TableID
	msg.Priority = rule.Priority
	msg.IdleTimeout = rule.IdleTimeout
	msg.HardTimeout = rule.HardTimeout
	msg.BufferId = NoBuffer
	msg.Match = *NewMatch(rule.Match)

	inst := openflow13.NewInstrApplyActions()
	for _, v := range actions {
		if err := inst.AddAction(v, false); err != nil {
			return nil, errors.Wrap(err, "adding an action into the instruction")
		}
	}
	msg.AddInstruction(inst)

	return msg, nil
}

// NewPacketOut returns an unbuffered PACKET_OUT message that carries data.
func NewPacketOut(inPort openflow.InPort, action *openflow.Action, data []byte) (*openflow13.PacketOut, error) {
	actions, err := NewActions(action)
	if err != nil {
		return nil, err
	}

	msg := openflow13.NewPacketOut()
	msg.BufferId = NoBuffer
	if inPort.IsController() {
		msg.InPort = openflow13.P_CONTROLLER
	} else {
		msg.InPort = inPort.Value()
	}
	for _, v := range actions {
		msg.AddAction(v)
	}
	msg.Data = util.NewBuffer(data)

	return msg, nil
}

func inPort(match *openflow13.Match) (port uint32, ok bool) {
	for _, f := range match.Fields {
		if f.Class != openflow13.OXM_CLASS_OPENFLOW_BASIC || f.Field != openflow13.OXM_FIELD_IN_PORT {
			continue
		}
		if v, ok := f.Value.(*openflow13.InPortField); ok {
			return v.InPort, true
		}
	}

	return 0, false
}
