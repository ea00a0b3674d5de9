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
	"github.com/mirage-sdn/mirage/openflow"
	"github.com/mirage-sdn/mirage/openflow/of13"

	"github.com/pkg/errors"
)

// installer writes flow rules and packets to switches.
type installer struct {
	// Nil if the flow cache is disabled.
	cache *flowCache
	stats *Stats
}

func newInstaller(cache *flowCache, stats *Stats) *installer {
	return &installer{
		cache: cache,
		stats: stats,
	}
}

// installTableMiss installs the lowest priority rule that sends every unmatched packet to the controller.
func (r *installer) installTableMiss(d *Device) error {
	rule := openflow.NewTableMissRule()
	if err := r.write(d, rule); err != nil {
		return errors.Wrap(err, "failed to install the table-miss flow entry")
	}
	logger.Infof("installed the table-miss flow entry: DPID=%v", d.ID())

	return nil
}

// install writes a flow rule to the device. Errors are logged, never returned.
func (r *installer) install(d *Device, priority uint16, match *openflow.Match, action *openflow.Action, idleTimeout uint16) {
	rule := openflow.FlowRule{
		Priority:    priority,
		IdleTimeout: idleTimeout,
		Match:       match,
		Action:      action,
	}
	if r.cache != nil && r.cache.InProgress(d.DPID(), rule) {
		logger.Debugf("skip installing the flow rule in progress: DPID=%v, %v", d.ID(), rule)
		return
	}

	if err := r.write(d, rule); err != nil {
		logger.Errorf("failed to install a flow rule: DPID=%v, %v: %v", d.ID(), rule, err)
		return
	}
	if r.cache != nil {
		r.cache.Add(d.DPID(), rule)
	}
	logger.Debugf("installed a flow rule: DPID=%v, %v", d.ID(), rule)
}

func (r *installer) write(d *Device, rule openflow.FlowRule) error {
	msg, err := of13.NewFlowMod(rule)
	if err != nil {
		return err
	}
	if err := d.SendMessage(msg); err != nil {
		return err
	}
	r.stats.flowMod.Add(1)

	return nil
}

// packetOut sends frame, which came from inPort, to the device with the action.
func (r *installer) packetOut(d *Device, inPort uint32, action *openflow.Action, frame []byte) error {
	ingress := openflow.NewInPort()
	ingress.SetValue(inPort)

	msg, err := of13.NewPacketOut(ingress, action, frame)
	if err != nil {
		return err
	}
	if err := d.SendMessage(msg); err != nil {
		return err
	}
	r.stats.packetOut.Add(1)

	return nil
}

func (r *installer) removeDevice(d *Device) {
	if r.cache != nil {
		r.cache.RemoveDevice(d.DPID())
	}
}
