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
	"sync"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/go-cmp/cmp"
)

func mustMAC(s string) net.HardwareAddr {
	mac, err := net.ParseMAC(s)
	if err != nil {
		panic(err)
	}
	return mac
}

func TestMACTableLearn(t *testing.T) {
	table := NewMACTable()
	mac := mustMAC("00:00:00:00:00:03")

	if _, ok := table.Lookup(mac); ok {
		t.Fatal("unexpected entry in an empty table")
	}

	// Learning the same pair twice is the same as learning it once.
	table.Learn(mac, 3)
	table.Learn(mac, 3)
	port, ok := table.Lookup(mac)
	if !ok || port != 3 {
		t.Fatalf("unexpected lookup result: expected=3, actual=%v (ok=%v)", port, ok)
	}
	if table.Len() != 1 {
		t.Fatalf("unexpected table length: expected=1, actual=%v", table.Len())
	}

	// Last writer wins.
	table.Learn(mac, 7)
	port, ok = table.Lookup(mac)
	if !ok || port != 7 {
		t.Fatalf("unexpected lookup result: expected=7, actual=%v (ok=%v)", port, ok)
	}
	if table.Len() != 1 {
		t.Fatalf("unexpected table length: expected=1, actual=%v", table.Len())
	}
}

func TestMACTableEntries(t *testing.T) {
	table := NewMACTable()
	table.Learn(mustMAC("00:00:00:00:00:03"), 3)
	table.Learn(mustMAC("00:00:00:00:00:01"), 1)
	table.Learn(mustMAC("00:00:00:00:00:02"), 2)

	expected := []MACEntry{
		{MAC: mustMAC("00:00:00:00:00:01"), Port: 1},
		{MAC: mustMAC("00:00:00:00:00:02"), Port: 2},
		{MAC: mustMAC("00:00:00:00:00:03"), Port: 3},
	}
	entries := table.Entries()
	if !cmp.Equal(entries, expected) {
		t.Fatalf("unexpected entries: expected=%v, actual=%v", spew.Sdump(expected), spew.Sdump(entries))
	}

	// The snapshot should not be affected by subsequent updates.
	table.Learn(mustMAC("00:00:00:00:00:01"), 9)
	if entries[0].Port != 1 {
		t.Fatalf("snapshot has been modified: %v", entries[0])
	}
}

func TestMACTableConcurrency(t *testing.T) {
	table := NewMACTable()
	mac := mustMAC("00:00:00:00:00:01")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(port uint32) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				table.Learn(mac, port)
				table.Lookup(mac)
				table.Entries()
			}
		}(uint32(i))
	}
	wg.Wait()

	if table.Len() != 1 {
		t.Fatalf("unexpected table length: expected=1, actual=%v", table.Len())
	}
}
