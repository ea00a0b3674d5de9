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
	"net"
	"testing"

	"github.com/mirage-sdn/mirage/openflow"
)

func TestDecisionAction(t *testing.T) {
	server2 := openflow.SetField{Field: openflow.FieldDstMAC, MAC: mustMAC("00:00:00:00:00:02")}
	server2IP := openflow.SetField{Field: openflow.FieldDstIP, IP: net.ParseIP("10.0.1.3").To4()}
	port := openflow.NewOutPort()
	port.SetValue(2)

	src := []struct {
		decision Decision
		action   string
		cached   bool
	}{
		{
			decision: NewFloodDecision(),
			action:   "output:FLOOD",
			cached:   false,
		},
		{
			decision: NewUnicastDecision(4, &CacheableRule{Match: openflow.NewMatch(), Priority: 1, IdleTimeout: 5}),
			action:   "output:4",
			cached:   true,
		},
		{
			decision: NewRewriteDecision(port, []openflow.SetField{server2, server2IP}, &CacheableRule{Match: openflow.NewMatch(), Priority: 2, IdleTimeout: 5}),
			action:   "set_field:00:00:00:00:00:02->eth_dst,set_field:10.0.1.3->ipv4_dst,output:2",
			cached:   true,
		},
	}

	for _, v := range src {
		if action := v.decision.Action().String(); action != v.action {
			t.Fatalf("unexpected action: expected=%v, actual=%v", v.action, action)
		}
		rule, ok := v.decision.FlowRule()
		if ok != v.cached {
			t.Fatalf("unexpected cacheability: expected=%v, actual=%v", v.cached, ok)
		}
		if !ok {
			continue
		}
		if rule.Priority != v.decision.Rule.Priority || rule.IdleTimeout != v.decision.Rule.IdleTimeout {
			t.Fatalf("unexpected rule: %v", rule)
		}
		if rule.HardTimeout != 0 {
			t.Fatalf("unexpected hard timeout: expected=0, actual=%v", rule.HardTimeout)
		}
		if rule.Action.String() != v.action {
			t.Fatalf("unexpected rule action: expected=%v, actual=%v", v.action, rule.Action)
		}
	}
}
