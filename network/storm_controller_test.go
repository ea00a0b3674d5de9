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
)

func TestStorm(t *testing.T) {
	max := uint(100)
	now := time.Now()
	storm := newStormController(max)
	storm.now = func() time.Time { return now }

	for i := uint(0); i < max; i++ {
		if !storm.allow() {
			t.Fatalf("flood is denied: count=%v", i+1)
		}
	}
	for i := 0; i < 10; i++ {
		if storm.allow() {
			t.Fatalf("flood is allowed beyond the limit: count=%v", max+uint(i)+1)
		}
	}

	now = now.Add(1 * time.Second)
	for i := uint(0); i < max; i++ {
		if !storm.allow() {
			t.Fatalf("flood is denied after one second: count=%v", i+1)
		}
	}
}

func TestPeriodicFlood(t *testing.T) {
	now := time.Now()
	storm := newStormController(1)
	storm.now = func() time.Time { return now }

	for i := 0; i < 10; i++ {
		if !storm.allow() {
			t.Fatalf("periodic flood is denied: count=%v", i)
		}
		if storm.allow() {
			t.Fatalf("second flood in the same second is allowed: count=%v", i)
		}
		now = now.Add(1 * time.Second)
	}
}
