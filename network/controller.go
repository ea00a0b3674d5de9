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
	"context"
	"fmt"
	"net"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mirage-sdn/mirage/protocol"

	"github.com/op/go-logging"
)

var (
	logger = logging.MustGetLogger("network")
)

// Policy decides how a packet that came from inPort of the device is forwarded. A non-nil
// error means the packet is dropped.
type Policy interface {
	Decide(device *Device, inPort uint32, packet *protocol.Packet) (Decision, error)
}

// PolicyFunc is an adapter to use an ordinary function as a Policy.
type PolicyFunc func(*Device, uint32, *protocol.Packet) (Decision, error)

func (r PolicyFunc) Decide(device *Device, inPort uint32, packet *protocol.Packet) (Decision, error) {
	return r(device, inPort, packet)
}

type Config struct {
	// Zero disables the flow cache.
	FlowCacheExpiration time.Duration
	// Zero means unlimited.
	MaxFloodsPerSecond uint
}

// Controller dispatches the events of every connected switch and owns their device contexts.
type Controller struct {
	mutex     sync.RWMutex
	devices   map[uint64]*Device
	policy    Policy
	installer *installer
	canceller *canceller
	stats     *Stats
	maxFloods uint
}

func NewController(p Policy, c Config) *Controller {
	if p == nil {
		panic("Policy is nil")
	}

	stats := new(Stats)
	var cache *flowCache
	if c.FlowCacheExpiration > 0 {
		cache = newFlowCache(c.FlowCacheExpiration)
	}

	return &Controller{
		devices:   make(map[uint64]*Device),
		policy:    p,
		installer: newInstaller(cache, stats),
		canceller: newCanceller(),
		stats:     stats,
		maxFloods: c.MaxFloodsPerSecond,
	}
}

// AddConnection starts a new session on the switch connection c. The session is closed when ctx is canceled.
func (r *Controller) AddConnection(ctx context.Context, c net.Conn) {
	session := newSession(r, c)
	go session.Run(ctx)
}

func (r *Controller) register(d *Device) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, ok := r.devices[d.DPID()]; ok {
		return false
	}
	r.devices[d.DPID()] = d

	return true
}

func (r *Controller) unregister(d *Device) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	// The DPID may already belong to a new session.
	if v, ok := r.devices[d.DPID()]; ok && v == d {
		delete(r.devices, d.DPID())
	}
}

// Device returns the connected device whose DPID is dpid, or nil if it does not exist.
func (r *Controller) Device(dpid uint64) *Device {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.devices[dpid]
}

// Devices returns the connected devices sorted by DPID.
func (r *Controller) Devices() []*Device {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make([]*Device, 0, len(r.devices))
	for _, v := range r.devices {
		result = append(result, v)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].DPID() < result[j].DPID()
	})

	return result
}

func (r *Controller) Stats() StatsSnapshot {
	return r.stats.Snapshot()
}

func (r *Controller) String() string {
	devices := r.Devices()
	v := make([]string, 0, len(devices)+1)
	v = append(v, fmt.Sprintf("Controller: # of devices=%v, stats=%+v", len(devices), r.Stats()))
	for _, d := range devices {
		v = append(v, fmt.Sprintf("\t%v", d))
	}

	return strings.Join(v, "\n")
}
