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
	"bytes"
	"net"
	"sort"
	"sync"
)

// MACTable is the learning table of a switch: it maps a host MAC address to the switch port
// where the host was last seen.
type MACTable struct {
	mutex   sync.RWMutex
	entries map[string]uint32
}

type MACEntry struct {
	MAC  net.HardwareAddr
	Port uint32
}

func NewMACTable() *MACTable {
	return &MACTable{
		entries: make(map[string]uint32),
	}
}

// Learn records that mac is reachable through port. The last writer wins.
func (r *MACTable) Learn(mac net.HardwareAddr, port uint32) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	key := string(mac)
	if prev, ok := r.entries[key]; ok && prev != port {
		logger.Debugf("host moved: MAC=%v, port=%v -> %v", mac, prev, port)
	}
	r.entries[key] = port
}

func (r *MACTable) Lookup(mac net.HardwareAddr) (port uint32, ok bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	port, ok = r.entries[string(mac)]
	return port, ok
}

func (r *MACTable) Len() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return len(r.entries)
}

// Entries returns a snapshot of the table sorted by MAC address.
func (r *MACTable) Entries() []MACEntry {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make([]MACEntry, 0, len(r.entries))
	for k, v := range r.entries {
		result = append(result, MACEntry{MAC: net.HardwareAddr(k), Port: v})
	}
	sort.Slice(result, func(i, j int) bool {
		return bytes.Compare(result[i].MAC, result[j].MAC) < 0
	})

	return result
}
