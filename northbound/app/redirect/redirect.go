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

// Package redirect transparently redirects the TCP traffic from the client to server1 toward
// server2, and switches everything else as an L2 learning switch.
package redirect

import (
	"bytes"
	"fmt"
	"net"

	"github.com/mirage-sdn/mirage/network"
	"github.com/mirage-sdn/mirage/openflow"
	"github.com/mirage-sdn/mirage/protocol"

	"github.com/op/go-logging"
	"github.com/pkg/errors"
)

var (
	logger = logging.MustGetLogger("redirect")
)

const (
	switchingPriority = 1
	redirectPriority  = 2
)

var (
	ErrPolicyMismatch = errors.New("TCP packet does not match the redirect policy")
)

type Policy struct {
	config Config
}

func New(c Config) (*Policy, error) {
	if err := c.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid redirect configuration")
	}

	return &Policy{config: c}, nil
}

func (r *Policy) Name() string {
	return "Redirect"
}

func (r *Policy) String() string {
	return fmt.Sprintf("%v: client=%v, server1=%v, server2=%v, idle_timeout=%v",
		r.Name(), r.config.Client, r.config.Server1, r.config.Server2, r.config.IdleTimeout)
}

func (r *Policy) Config() Config {
	return r.config
}

// Decide learns the source of the packet, and then decides how the packet is forwarded.
func (r *Policy) Decide(device *network.Device, inPort uint32, packet *protocol.Packet) (network.Decision, error) {
	table := device.MACTable()
	table.Learn(packet.SrcMAC(), inPort)

	if !packet.HasTCP() {
		return r.switching(table, inPort, packet)
	}

	src, dst := packet.SrcMAC(), packet.DstMAC()
	switch {
	case bytes.Equal(src, r.config.Client.MAC) && bytes.Equal(dst, r.config.Server1.MAC):
		return r.redirect(table, packet)
	case bytes.Equal(src, r.config.Server2.MAC) && bytes.Equal(dst, r.config.Client.MAC):
		return r.reverse(table, packet)
	default:
		return network.Decision{}, mismatch(packet)
	}
}

func mismatch(packet *protocol.Packet) error {
	srcPort, dstPort := packet.TCPPorts()
	if srcIP, dstIP, ok := packet.IPv4(); ok {
		return errors.Wrapf(ErrPolicyMismatch, "src=%v(%v:%v), dst=%v(%v:%v)",
			packet.SrcMAC(), srcIP, srcPort, packet.DstMAC(), dstIP, dstPort)
	}

	return errors.Wrapf(ErrPolicyMismatch, "src=%v(port %v), dst=%v(port %v), IPv6=%v",
		packet.SrcMAC(), srcPort, packet.DstMAC(), dstPort, packet.IsIPv6())
}

// switching is an ordinary L2 learning switch.
func (r *Policy) switching(table *network.MACTable, inPort uint32, packet *protocol.Packet) (network.Decision, error) {
	port, ok := table.Lookup(packet.DstMAC())
	if !ok {
		logger.Debugf("unknown destination %v: flooding", packet.DstMAC())
		return network.NewFloodDecision(), nil
	}

	rule, err := r.switchingRule(inPort, packet.DstMAC())
	if err != nil {
		return network.Decision{}, err
	}

	return network.NewUnicastDecision(port, rule), nil
}

func (r *Policy) switchingRule(inPort uint32, dst net.HardwareAddr) (*network.CacheableRule, error) {
	ingress := openflow.NewInPort()
	ingress.SetValue(inPort)

	match := openflow.NewMatch()
	if err := match.SetInPort(ingress); err != nil {
		return nil, err
	}
	if err := match.SetDstMAC(dst); err != nil {
		return nil, err
	}

	return &network.CacheableRule{
		Match:       match,
		Priority:    switchingPriority,
		IdleTimeout: r.config.IdleTimeout,
	}, nil
}

func (r *Policy) outPort(table *network.MACTable, host Host) openflow.OutPort {
	outPort := openflow.NewOutPort()
	if port, ok := table.Lookup(host.MAC); ok {
		outPort.SetValue(port)
	} else {
		logger.Debugf("unknown location of %v: flooding", host)
	}

	return outPort
}

func (r *Policy) redirectRule(packet *protocol.Packet) (*network.CacheableRule, error) {
	srcIP, dstIP, ok := packet.IPv4()
	if !ok {
		return nil, mismatch(packet)
	}

	match := openflow.NewMatch()
	match.SetEtherType(openflow.EtherTypeIPv4)
	if err := match.SetSrcIP(srcIP); err != nil {
		return nil, err
	}
	if err := match.SetDstIP(dstIP); err != nil {
		return nil, err
	}

	return &network.CacheableRule{
		Match:       match,
		Priority:    redirectPriority,
		IdleTimeout: r.config.IdleTimeout,
	}, nil
}

// redirect sends the packet from the client to server1 toward server2.
func (r *Policy) redirect(table *network.MACTable, packet *protocol.Packet) (network.Decision, error) {
	rule, err := r.redirectRule(packet)
	if err != nil {
		return network.Decision{}, err
	}
	rewrites := []openflow.SetField{
		{Field: openflow.FieldDstMAC, MAC: r.config.Server2.MAC},
		{Field: openflow.FieldDstIP, IP: r.config.Server2.IP},
	}
	logger.Debugf("redirecting %v to %v", packet, r.config.Server2)

	return network.NewRewriteDecision(r.outPort(table, r.config.Server2), rewrites, rule), nil
}

// reverse makes the packet from server2 to the client look like it came from server1.
func (r *Policy) reverse(table *network.MACTable, packet *protocol.Packet) (network.Decision, error) {
	rule, err := r.redirectRule(packet)
	if err != nil {
		return network.Decision{}, err
	}
	rewrites := []openflow.SetField{
		{Field: openflow.FieldSrcMAC, MAC: r.config.Server1.MAC},
		{Field: openflow.FieldSrcIP, IP: r.config.Server1.IP},
	}
	logger.Debugf("rewriting the source of %v to %v", packet, r.config.Server1)

	return network.NewRewriteDecision(r.outPort(table, r.config.Client), rewrites, rule), nil
}
