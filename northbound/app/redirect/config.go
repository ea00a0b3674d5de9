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

package redirect

import (
	"bytes"
	"fmt"
	"net"

	"github.com/pkg/errors"
)

const (
	DefaultIdleTimeout = 5
)

// Host is the link and network identity of a designated host.
type Host struct {
	MAC net.HardwareAddr
	IP  net.IP
}

// ParseHost parses the MAC address and the IPv4 address of a host.
func ParseHost(mac, ip string) (Host, error) {
	m, err := net.ParseMAC(mac)
	if err != nil {
		return Host{}, errors.Wrapf(err, "invalid MAC address %q", mac)
	}
	addr := net.ParseIP(ip)
	if addr == nil || addr.To4() == nil {
		return Host{}, fmt.Errorf("invalid IPv4 address %q", ip)
	}

	return Host{MAC: m, IP: addr.To4()}, nil
}

func (r Host) String() string {
	return fmt.Sprintf("%v/%v", r.MAC, r.IP)
}

func (r Host) validate() error {
	if len(r.MAC) != 6 {
		return fmt.Errorf("invalid MAC address: %v", r.MAC)
	}
	if bytes.Equal(r.MAC, make([]byte, 6)) {
		return errors.New("zero MAC address")
	}
	if r.IP.To4() == nil {
		return fmt.Errorf("invalid IPv4 address: %v", r.IP)
	}

	return nil
}

type Config struct {
	Client  Host
	Server1 Host
	Server2 Host
	// Idle timeout of the installed flow rules in seconds.
	IdleTimeout uint16
}

func (r Config) Validate() error {
	hosts := []struct {
		name string
		host Host
	}{
		{"client", r.Client},
		{"server1", r.Server1},
		{"server2", r.Server2},
	}
	for _, v := range hosts {
		if err := v.host.validate(); err != nil {
			return errors.Wrap(err, v.name)
		}
	}
	for i := 0; i < len(hosts); i++ {
		for j := i + 1; j < len(hosts); j++ {
			if bytes.Equal(hosts[i].host.MAC, hosts[j].host.MAC) {
				return fmt.Errorf("duplicated MAC address: %v and %v", hosts[i].name, hosts[j].name)
			}
		}
	}
	if r.IdleTimeout == 0 {
		return errors.New("idle timeout should be greater than zero")
	}

	return nil
}
