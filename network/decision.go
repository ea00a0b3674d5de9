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
	"fmt"
	"strings"

	"github.com/mirage-sdn/mirage/openflow"
)

type DecisionKind int

const (
	// Flood sends the packet out of every port except the ingress port.
	Flood DecisionKind = iota
	// Unicast sends the packet out of the port where its destination was learned.
	Unicast
	// Rewrite modifies the packet headers before sending it out.
	Rewrite
)

func (r DecisionKind) String() string {
	switch r {
	case Flood:
		return "Flood"
	case Unicast:
		return "Unicast"
	case Rewrite:
		return "Rewrite"
	default:
		return fmt.Sprintf("DecisionKind(%d)", int(r))
	}
}

// CacheableRule describes the switch-resident rule that lets future packets matching the
// same decision bypass the controller.
type CacheableRule struct {
	Match       *openflow.Match
	Priority    uint16
	IdleTimeout uint16 // Seconds.
}

// Decision is the forwarding policy's verdict for a single packet.
type Decision struct {
	Kind    DecisionKind
	OutPort openflow.OutPort
	// Header rewrites applied in order before the output.
	Rewrites []openflow.SetField
	// Nil if the decision should not be cached on the switch.
	Rule *CacheableRule
}

func NewFloodDecision() Decision {
	return Decision{
		Kind:    Flood,
		OutPort: openflow.NewOutPort(),
	}
}

func NewUnicastDecision(port uint32, rule *CacheableRule) Decision {
	outPort := openflow.NewOutPort()
	outPort.SetValue(port)

	return Decision{
		Kind:    Unicast,
		OutPort: outPort,
		Rule:    rule,
	}
}

func NewRewriteDecision(port openflow.OutPort, rewrites []openflow.SetField, rule *CacheableRule) Decision {
	return Decision{
		Kind:     Rewrite,
		OutPort:  port,
		Rewrites: rewrites,
		Rule:     rule,
	}
}

// Action returns the ordered action list of the decision: header rewrites first, and then the output.
func (r Decision) Action() *openflow.Action {
	action := openflow.NewAction()
	for _, v := range r.Rewrites {
		switch v.Field {
		case openflow.FieldSrcMAC:
			action.SetSrcMAC(v.MAC)
		case openflow.FieldDstMAC:
			action.SetDstMAC(v.MAC)
		case openflow.FieldSrcIP:
			action.SetSrcIP(v.IP)
		case openflow.FieldDstIP:
			action.SetDstIP(v.IP)
		}
	}
	action.SetOutPort(r.OutPort)

	return action
}

// FlowRule returns the rule that caches this decision on the switch. ok is false if the
// decision is not cacheable.
func (r Decision) FlowRule() (rule openflow.FlowRule, ok bool) {
	if r.Rule == nil {
		return openflow.FlowRule{}, false
	}

	return openflow.FlowRule{
		Priority:    r.Rule.Priority,
		IdleTimeout: r.Rule.IdleTimeout,
		Match:       r.Rule.Match,
		Action:      r.Action(),
	}, true
}

func (r Decision) String() string {
	v := []string{fmt.Sprintf("%v: %v", r.Kind, r.Action())}
	if r.Rule != nil {
		v = append(v, fmt.Sprintf("rule(priority=%v, idle=%v, match=%v)", r.Rule.Priority, r.Rule.IdleTimeout, r.Rule.Match))
	}

	return strings.Join(v, ", ")
}
