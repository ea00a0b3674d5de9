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
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// stormController limits the number of flooded packets of a switch to avoid broadcast storms.
type stormController struct {
	mutex   sync.Mutex
	max     uint
	limiter *rate.Limiter
	denied  uint64
	now     func() time.Time
}

// max is the number of floods that are allowed per second.
func newStormController(max uint) *stormController {
	if max <= 0 {
		panic("max should be greater than zero")
	}

	return &stormController{
		max:     max,
		limiter: rate.NewLimiter(rate.Limit(max), int(max)),
		now:     time.Now,
	}
}

// allow reports whether one more flood is allowed now.
func (r *stormController) allow() bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.limiter.AllowN(r.now(), 1) {
		return true
	}
	r.denied++
	logger.Infof("too many floods: flood is denied to avoid the broadcast storm! (denied=%v)", r.denied)

	return false
}
