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
	"testing"
	"time"

	"github.com/mirage-sdn/mirage/openflow"
)

func newTestRule(port uint32) openflow.FlowRule {
	match := openflow.NewMatch()
	match.SetDstMAC(mustMAC("00:00:00:00:00:01"))
	outPort := openflow.NewOutPort()
	outPort.SetValue(port)
	action := openflow.NewAction()
	action.SetOutPort(outPort)

	return openflow.FlowRule{Priority: 1, IdleTimeout: 5, Match: match, Action: action}
}

func TestFlowCache(t *testing.T) {
	now := time.Now()
	cache := newFlowCache(100 * time.Millisecond)
	cache.now = func() time.Time { return now }

	rule := newTestRule(1)
	if cache.InProgress(1, rule) {
		t.Fatal("unexpected flow cache hit on an empty cache")
	}

	cache.Add(1, rule)
	if !cache.InProgress(1, rule) {
		t.Fatal("expected a flow cache hit")
	}
	// Same rule on another device.
	if cache.InProgress(2, rule) {
		t.Fatal("unexpected flow cache hit on another device")
	}
	// Same match with a different output.
	if cache.InProgress(1, newTestRule(2)) {
		t.Fatal("unexpected flow cache hit on a different rule")
	}

	now = now.Add(200 * time.Millisecond)
	if cache.InProgress(1, rule) {
		t.Fatal("unexpected flow cache hit after the expiration")
	}
}

func TestFlowCacheRemoveDevice(t *testing.T) {
	cache := newFlowCache(time.Minute)
	rule := newTestRule(1)
	cache.Add(1, rule)
	cache.Add(11, rule)

	cache.RemoveDevice(1)
	if cache.InProgress(1, rule) {
		t.Fatal("unexpected flow cache hit on the removed device")
	}
	if !cache.InProgress(11, rule) {
		t.Fatal("flow cache of another device has been removed")
	}
}
