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

// Package core serves the read-only status API of the controller.
package core

import (
	"strconv"
	"time"

	"github.com/mirage-sdn/mirage/api"
	"github.com/mirage-sdn/mirage/northbound/app/redirect"

	"github.com/ant0ine/go-json-rest/rest"
	"github.com/davecgh/go-spew/spew"
	"github.com/op/go-logging"
)

var (
	logger = logging.MustGetLogger("core")
)

type API struct {
	api.Server
}

func (r *API) routes() []*rest.Route {
	return []*rest.Route{
		rest.Get("/api/v1/switches", r.listSwitches),
		rest.Get("/api/v1/switches/:dpid/hosts", r.listHosts),
		rest.Get("/api/v1/policy", r.policy),
		rest.Get("/api/v1/stats", r.stats),
	}
}

func (r *API) Serve() error {
	return r.Server.Serve(r.routes()...)
}

type switchInfo struct {
	DPID       uint64    `json:"dpid"`
	Session    string    `json:"session"`
	Remote     string    `json:"remote"`
	NumBuffers uint32    `json:"n_buffers"`
	NumTables  uint8     `json:"n_tables"`
	NumHosts   int       `json:"n_hosts"`
	Connected  time.Time `json:"connected"`
}

func (r *API) listSwitches(w rest.ResponseWriter, req *rest.Request) {
	logger.Debugf("switch list request from %v", req.RemoteAddr)

	devices := r.Controller.Devices()
	result := make([]switchInfo, 0, len(devices))
	for _, d := range devices {
		f := d.Features()
		remote := ""
		if addr := d.RemoteAddr(); addr != nil {
			remote = addr.String()
		}
		result = append(result, switchInfo{
			DPID:       f.DPID,
			Session:    d.SessionID(),
			Remote:     remote,
			NumBuffers: f.NumBuffers,
			NumTables:  f.NumTables,
			NumHosts:   d.MACTable().Len(),
			Connected:  d.ConnectedAt(),
		})
	}

	w.WriteJson(&api.Response{Status: api.StatusOkay, Data: result})
}

type hostInfo struct {
	MAC  string `json:"mac"`
	Port uint32 `json:"port"`
}

func (r *API) listHosts(w rest.ResponseWriter, req *rest.Request) {
	dpid, err := strconv.ParseUint(req.PathParam("dpid"), 0, 64)
	if err != nil {
		w.WriteJson(&api.Response{Status: api.StatusInvalidParameter, Message: "invalid DPID: " + err.Error()})
		return
	}
	logger.Debugf("host list request from %v: DPID=%v", req.RemoteAddr, dpid)

	d := r.Controller.Device(dpid)
	if d == nil {
		w.WriteJson(&api.Response{Status: api.StatusNotFound, Message: "unknown switch"})
		return
	}

	entries := d.MACTable().Entries()
	result := make([]hostInfo, 0, len(entries))
	for _, v := range entries {
		result = append(result, hostInfo{MAC: v.MAC.String(), Port: v.Port})
	}

	w.WriteJson(&api.Response{Status: api.StatusOkay, Data: result})
}

type host struct {
	MAC string `json:"mac"`
	IP  string `json:"ip"`
}

func newHost(h redirect.Host) host {
	return host{MAC: h.MAC.String(), IP: h.IP.String()}
}

type policyInfo struct {
	Name        string `json:"name"`
	Client      host   `json:"client"`
	Server1     host   `json:"server1"`
	Server2     host   `json:"server2"`
	IdleTimeout uint16 `json:"idle_timeout"`
}

func (r *API) policy(w rest.ResponseWriter, req *rest.Request) {
	logger.Debugf("policy request from %v", req.RemoteAddr)

	c := r.Policy.Config()
	w.WriteJson(&api.Response{
		Status: api.StatusOkay,
		Data: policyInfo{
			Name:        r.Policy.Name(),
			Client:      newHost(c.Client),
			Server1:     newHost(c.Server1),
			Server2:     newHost(c.Server2),
			IdleTimeout: c.IdleTimeout,
		},
	})
}

func (r *API) stats(w rest.ResponseWriter, req *rest.Request) {
	stats := r.Controller.Stats()
	if logger.IsEnabledFor(logging.DEBUG) {
		logger.Debugf("stats request from %v: %v", req.RemoteAddr, spew.Sdump(stats))
	}

	w.WriteJson(&api.Response{Status: api.StatusOkay, Data: stats})
}
