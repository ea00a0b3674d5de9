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
	"encoding"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/mirage-sdn/mirage/openflow/transceiver"

	"github.com/pkg/errors"
)

type Features struct {
	DPID       uint64
	NumBuffers uint32
	NumTables  uint8
}

// Device is the context of a connected switch. It owns the learning table of the switch.
type Device struct {
	mutex      sync.RWMutex
	sessionID  string
	features   Features
	remoteAddr net.Addr
	connected  time.Time
	macTable   *MACTable
	writer     transceiver.Writer
	closed     bool
}

var (
	ErrClosedDevice = errors.New("already closed device")
)

// NewDevice returns a device whose OpenFlow messages are written to w.
func NewDevice(f Features, w transceiver.Writer) *Device {
	return &Device{
		features:  f,
		connected: time.Now(),
		macTable:  NewMACTable(),
		writer:    w,
	}
}

func (r *Device) String() string {
	// Read lock
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return fmt.Sprintf("Device ID=%v, Session=%v, Remote=%v, Features=%+v, # of hosts=%v, Connected=%v",
		r.features.DPID, r.sessionID, r.remoteAddr, r.features, r.macTable.Len(), !r.closed)
}

// ID returns the datapath ID in decimal.
func (r *Device) ID() string {
	return strconv.FormatUint(r.DPID(), 10)
}

func (r *Device) DPID() uint64 {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.features.DPID
}

func (r *Device) Features() Features {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.features
}

func (r *Device) SessionID() string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.sessionID
}

func (r *Device) RemoteAddr() net.Addr {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.remoteAddr
}

func (r *Device) ConnectedAt() time.Time {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.connected
}

func (r *Device) setSession(id string, addr net.Addr) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.sessionID = id
	r.remoteAddr = addr
}

// MACTable returns the learning table of this device.
func (r *Device) MACTable() *MACTable {
	return r.macTable
}

func (r *Device) SendMessage(msg encoding.BinaryMarshaler) error {
	// Write lock
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if msg == nil {
		panic("Message is nil")
	}
	if r.closed || r.writer == nil {
		return ErrClosedDevice
	}

	return r.writer.Write(msg)
}

func (r *Device) IsClosed() bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.closed
}

func (r *Device) Close() {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.closed = true
}
