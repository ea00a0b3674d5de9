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
)

func TestCanceller(t *testing.T) {
	c := newCanceller()

	called := ""
	c.push(1, "first", func() { called = "first" })
	// The second session of the same DPID replaces the first one.
	c.push(1, "second", func() { called = "second" })

	// A stale session should not remove the entry of the current one.
	c.remove(1, "first")
	cancel, ok := c.pop(1)
	if !ok {
		t.Fatal("missing canceller")
	}
	cancel()
	if called != "second" {
		t.Fatalf("unexpected cancel function: expected=second, actual=%v", called)
	}

	if _, ok := c.pop(1); ok {
		t.Fatal("canceller should be removed after pop")
	}

	c.push(2, "third", func() {})
	c.remove(2, "third")
	if _, ok := c.pop(2); ok {
		t.Fatal("canceller should be removed")
	}
}
