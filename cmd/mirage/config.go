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

package main

import (
	"fmt"
	"time"

	"github.com/mirage-sdn/mirage/network"
	"github.com/mirage-sdn/mirage/northbound/app/redirect"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type restConfig struct {
	port uint16
	cert string
	key  string
}

type config struct {
	port       uint16
	logLevel   string
	logBackend string
	network    network.Config
	rest       restConfig
	redirect   redirect.Config
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("default.port", 6653)
	v.SetDefault("default.log_level", "info")
	v.SetDefault("default.log_backend", "syslog")
	v.SetDefault("default.flow_cache_expiration", 0)
	v.SetDefault("default.max_floods_per_second", 0)
	v.SetDefault("rest.port", 7070)
	v.SetDefault("rest.tls", false)
	v.SetDefault("redirect.idle_timeout", redirect.DefaultIdleTimeout)
	v.SetDefault("redirect.client.mac", "00:00:00:00:00:03")
	v.SetDefault("redirect.client.ip", "10.0.1.5")
	v.SetDefault("redirect.server1.mac", "00:00:00:00:00:01")
	v.SetDefault("redirect.server1.ip", "10.0.1.2")
	v.SetDefault("redirect.server2.mac", "00:00:00:00:00:02")
	v.SetDefault("redirect.server2.ip", "10.0.1.3")
}

func loadConfig(v *viper.Viper) (*config, error) {
	c := new(config)

	port := v.GetInt("default.port")
	if port <= 0 || port > 0xFFFF {
		return nil, errors.New("invalid default.port")
	}
	c.port = uint16(port)
	if c.logLevel = v.GetString("default.log_level"); len(c.logLevel) == 0 {
		return nil, errors.New("invalid default.log_level")
	}
	c.logBackend = v.GetString("default.log_backend")

	exp := v.GetInt("default.flow_cache_expiration")
	if exp < 0 {
		return nil, errors.New("invalid default.flow_cache_expiration")
	}
	c.network.FlowCacheExpiration = time.Duration(exp) * time.Millisecond
	floods := v.GetInt("default.max_floods_per_second")
	if floods < 0 {
		return nil, errors.New("invalid default.max_floods_per_second")
	}
	c.network.MaxFloodsPerSecond = uint(floods)

	restPort := v.GetInt("rest.port")
	if restPort < 0 || restPort > 0xFFFF {
		return nil, errors.New("invalid rest.port")
	}
	c.rest.port = uint16(restPort)
	if v.GetBool("rest.tls") {
		c.rest.cert = v.GetString("rest.cert_file")
		c.rest.key = v.GetString("rest.key_file")
		if c.rest.cert == "" || c.rest.key == "" {
			return nil, errors.New("rest.cert_file and rest.key_file are required for rest.tls")
		}
	}

	rc, err := loadRedirectConfig(v)
	if err != nil {
		return nil, err
	}
	c.redirect = rc

	return c, nil
}

func loadRedirectConfig(v *viper.Viper) (redirect.Config, error) {
	c := redirect.Config{}

	timeout := v.GetInt("redirect.idle_timeout")
	if timeout <= 0 || timeout > 0xFFFF {
		return c, errors.New("invalid redirect.idle_timeout")
	}
	c.IdleTimeout = uint16(timeout)

	hosts := []struct {
		name string
		host *redirect.Host
	}{
		{"client", &c.Client},
		{"server1", &c.Server1},
		{"server2", &c.Server2},
	}
	for _, h := range hosts {
		key := fmt.Sprintf("redirect.%v", h.name)
		host, err := redirect.ParseHost(v.GetString(key+".mac"), v.GetString(key+".ip"))
		if err != nil {
			return c, errors.Wrap(err, key)
		}
		*h.host = host
	}
	if err := c.Validate(); err != nil {
		return c, errors.Wrap(err, "invalid redirect configuration")
	}

	return c, nil
}
