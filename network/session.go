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
	"encoding/binary"
	"fmt"
	"net"

	"github.com/mirage-sdn/mirage/openflow/of13"
	"github.com/mirage-sdn/mirage/openflow/transceiver"
	"github.com/mirage-sdn/mirage/protocol"

	"github.com/contiv/libOpenflow/common"
	"github.com/contiv/libOpenflow/openflow13"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var (
	ErrNotNegotiated = errors.New("invalid command on non-negotiated session")
	ErrDuplicateDPID = errors.New("duplicated device DPID (aux. connection is not supported yet)")
)

type sessionState int

const (
	stateConnecting sessionState = iota
	stateActive
	stateClosed
)

func (r sessionState) String() string {
	switch r {
	case stateConnecting:
		return "Connecting"
	case stateActive:
		return "Active"
	case stateClosed:
		return "Closed"
	default:
		return fmt.Sprintf("sessionState(%d)", int(r))
	}
}

type session struct {
	id          string
	remoteAddr  net.Addr
	state       sessionState
	negotiated  bool
	device      *Device
	transceiver *transceiver.Transceiver
	controller  *Controller
	// Nil if floods are not limited.
	storm *stormController
	// A cancel function to disconnect this session.
	canceller context.CancelFunc
}

func newSession(c *Controller, conn net.Conn) *session {
	if c == nil {
		panic("Controller is nil")
	}
	if conn == nil {
		panic("Conn is nil")
	}

	stream := transceiver.NewStream(conn, 0x10000)
	v := &session{
		id:         uuid.NewString(),
		remoteAddr: stream.RemoteAddr(),
		state:      stateConnecting,
		controller: c,
	}
	if c.maxFloods > 0 {
		v.storm = newStormController(c.maxFloods)
	}
	v.transceiver = transceiver.NewTransceiver(stream, v)

	return v
}

func (r *session) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	r.canceller = cancel
	defer cancel()

	logger.Infof("new session: ID=%v, remote=%v", r.id, r.remoteAddr)
	if err := r.transceiver.Run(ctx); err != nil {
		logger.Errorf("session %v: %v", r.id, err)
	}
	r.close()
	logger.Infof("session closed: ID=%v", r.id)
}

func (r *session) close() {
	r.state = stateClosed
	if r.device == nil {
		return
	}

	r.device.Close()
	r.controller.unregister(r.device)
	r.controller.canceller.remove(r.device.DPID(), r.id)
	r.controller.installer.removeDevice(r.device)
	logger.Infof("device is down: DPID=%v", r.device.ID())
}

func (r *session) OnHello(w transceiver.Writer, v *common.Hello) error {
	logger.Debugf("HELLO (ver=%v) is received", v.Version)

	// Ignore duplicated HELLO messages
	if r.negotiated {
		return nil
	}
	r.negotiated = true

	if err := w.Write(openflow13.NewFeaturesRequest()); err != nil {
		return errors.Wrap(err, "failed to send FEATURES_REQUEST")
	}

	return nil
}

func (r *session) OnError(w transceiver.Writer, v *openflow13.ErrorMsg) error {
	// Is this the CHECK_OVERLAP error?
	if v.Type == 5 && v.Code == 1 {
		logger.Debug("FLOW_MOD is overlapped")
		return nil
	}
	logger.Errorf("ERROR (type=%v, code=%v) from DPID=%v", v.Type, v.Code, r.dpid())

	return nil
}

func (r *session) dpid() string {
	if r.device == nil {
		return "unknown"
	}

	return r.device.ID()
}

func (r *session) OnFeaturesReply(w transceiver.Writer, v *openflow13.SwitchFeatures) error {
	if !r.negotiated {
		return ErrNotNegotiated
	}
	if len(v.DPID) != 8 {
		return fmt.Errorf("invalid DPID length: %v", len(v.DPID))
	}
	features := Features{
		DPID:       binary.BigEndian.Uint64(v.DPID),
		NumBuffers: v.Buffers,
		NumTables:  v.NumTables,
	}
	logger.Debugf("FEATURES_REPLY (DPID=%v, NumBufs=%v, NumTables=%v)", features.DPID, features.NumBuffers, features.NumTables)

	// Only the first FEATURES_REPLY initializes the device.
	if r.device != nil {
		return nil
	}

	device := NewDevice(features, w)
	device.setSession(r.id, r.remoteAddr)
	if !r.controller.register(device) {
		if cancel, ok := r.controller.canceller.pop(features.DPID); ok {
			// Disconnect the previous session. A switch sometimes makes a new fresh
			// connection after a momentary physical disconnection, and the previous
			// session never recovers.
			cancel()
		}
		return ErrDuplicateDPID
	}
	r.device = device
	if r.canceller != nil {
		r.controller.canceller.push(features.DPID, r.id, r.canceller)
	}
	logger.Infof("device is up: DPID=%v, session=%v", device.ID(), r.id)

	if err := r.controller.installer.installTableMiss(device); err != nil {
		return err
	}
	r.state = stateActive

	return nil
}

func (r *session) OnPacketIn(w transceiver.Writer, v *of13.PacketIn) error {
	if r.state != stateActive {
		logger.Debugf("ignoring PACKET_IN on the %v session: ID=%v", r.state, r.id)
		return nil
	}
	stats := r.controller.stats
	stats.packetIn.Add(1)
	logger.Debugf("PACKET_IN from DPID=%v: %v", r.device.ID(), v)

	packet, err := protocol.Parse(v.Frame)
	if err != nil {
		stats.parseError.Add(1)
		logger.Errorf("failed to parse the frame from DPID=%v, port=%v: %v", r.device.ID(), v.InPort, err)
		return nil
	}

	decision, err := r.controller.policy.Decide(r.device, v.InPort, packet)
	if err != nil {
		stats.mismatch.Add(1)
		logger.Warningf("dropping the packet from DPID=%v, port=%v: %v", r.device.ID(), v.InPort, err)
		return nil
	}
	stats.countDecision(decision.Kind)
	logger.Debugf("decision for %v: %v", packet, decision)

	if decision.Kind == Flood && r.storm != nil && !r.storm.allow() {
		stats.stormDrop.Add(1)
		return nil
	}

	installer := r.controller.installer
	// PACKET_OUT always precedes the rule installation.
	if err := installer.packetOut(r.device, v.InPort, decision.Action(), v.Frame); err != nil {
		logger.Errorf("failed to send PACKET_OUT to DPID=%v: %v", r.device.ID(), err)
	}
	if rule, ok := decision.FlowRule(); ok {
		installer.install(r.device, rule.Priority, rule.Match, rule.Action, rule.IdleTimeout)
	}

	return nil
}
