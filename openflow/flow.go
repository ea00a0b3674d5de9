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

package openflow

import (
	"fmt"

	"github.com/pkg/errors"
)

const (
	// We use MSB of the cookie to represent whether the flow is table miss or not.
	TableMissCookie uint64 = 0x1 << 63
)

// FlowRule is a switch-resident flow entry. The controller does not keep installed rules;
// a FlowRule only describes what is written to the switch.
type FlowRule struct {
	Cookie      uint64
	TableID     uint8
	Priority    uint16
	IdleTimeout uint16 // Seconds. Zero means permanent.
	HardTimeout uint16
	Match       *Match
	Action      *Action
}

// NewTableMissRule returns the lowest priority rule that sends every unmatched packet
// to the controller.
func NewTableMissRule() FlowRule {
	outPort := NewOutPort()
	outPort.SetController()
	action := NewAction()
	action.SetOutPort(outPort)

	return FlowRule{
		Cookie:   TableMissCookie,
		Priority: 0,
		Match:    NewMatch(),
		Action:   action,
	}
}

func (r FlowRule) IsTableMiss() bool {
	return r.Cookie&TableMissCookie != 0
}

func (r FlowRule) Validate() error {
	if r.Match == nil {
		return errors.New("nil match")
	}
	if r.Action == nil {
		return errors.New("nil action")
	}
	if err := r.Action.Error(); err != nil {
		return err
	}

	return r.Match.Validate()
}

func (r FlowRule) String() string {
	return fmt.Sprintf("Priority=%v, IdleTimeout=%v, Match=%v, Action=%v", r.Priority, r.IdleTimeout, r.Match, r.Action)
}
