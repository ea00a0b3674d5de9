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
	"fmt"
	"strings"
	"time"

	"github.com/mirage-sdn/mirage/openflow"

	lru "github.com/hashicorp/golang-lru"
)

// flowCache remembers the rules recently written to switches so that a burst of PACKET_INs,
// which raced the first FLOW_MOD, does not write the same rule again.
type flowCache struct {
	cache      *lru.Cache
	expiration time.Duration
	now        func() time.Time
}

func newFlowCache(expiration time.Duration) *flowCache {
	c, err := lru.New(8192)
	if err != nil {
		panic(fmt.Sprintf("failed to init a LRU flow cache: %v", err))
	}

	return &flowCache{
		cache:      c,
		expiration: expiration,
		now:        time.Now,
	}
}

func (r *flowCache) key(dpid uint64, rule openflow.FlowRule) string {
	return fmt.Sprintf("%v/%v", dpid, rule)
}

func (r *flowCache) Add(dpid uint64, rule openflow.FlowRule) {
	key := r.key(dpid, rule)
	t := r.now()
	// Update if the key already exists.
	r.cache.Add(key, t)
	logger.Debugf("added a new flow cache: key=%v, timestamp=%v", key, t)
}

func (r *flowCache) InProgress(dpid uint64, rule openflow.FlowRule) bool {
	key := r.key(dpid, rule)
	v, ok := r.cache.Get(key)
	if !ok {
		return false
	}
	timestamp := v.(time.Time)

	// Timeout?
	if r.now().Sub(timestamp) > r.expiration {
		r.cache.Remove(key)
		logger.Debugf("removed the timed-out flow cache: key=%v", key)
		return false
	}

	return true
}

// RemoveDevice removes all the flow caches of the device.
func (r *flowCache) RemoveDevice(dpid uint64) {
	prefix := fmt.Sprintf("%v/", dpid)
	for _, k := range r.cache.Keys() {
		if strings.HasPrefix(k.(string), prefix) {
			r.cache.Remove(k)
		}
	}
	logger.Debugf("removed all the flow caches of the device: DPID=%v", dpid)
}
