// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Accessgrid Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package policy - pure transfer decision functions
//
// there is exactly one policy path: simple transfers, batch transfers
// and both legs of a trade all call the same check
package policy

import (
	"github.com/accessgrid/accessd/account"
	"github.com/accessgrid/accessd/classrecord"
	"github.com/accessgrid/accessd/fault"
)

// Check - decide whether from may currently move value of this class
//
// expiration is evaluated against the supplied time so the caller
// controls the clock; the boundary instant counts as expired
func Check(attributes *classrecord.ClassAttributes, from account.Account, now uint64) error {
	if 0 != attributes.Expiration && now >= attributes.Expiration {
		return fault.TokenExpired
	}
	if !attributes.Tradable && from != attributes.OriginPool {
		return fault.TokenNotTradable
	}
	return nil
}

// Mask - selects which attribute fields must match between two classes
type Mask uint8

// mask bits, in field order
const (
	MatchModel Mask = 1 << iota
	MatchScope
	MatchExpiration
	MatchReclaimable
	MatchTradable
	MatchOriginPool

	MatchAll = MatchModel | MatchScope | MatchExpiration | MatchReclaimable | MatchTradable | MatchOriginPool
)

// Match - compare two classes field by field against a mask
//
// returns every violating bit at once so an operator tool can report
// the full difference in one round
func Match(a *classrecord.ClassAttributes, b *classrecord.ClassAttributes, mask Mask) error {
	if 0 == mask {
		return nil
	}

	violations := Mask(0)
	if 0 != mask&MatchModel && a.Model != b.Model {
		violations |= MatchModel
	}
	if 0 != mask&MatchScope && a.Scope != b.Scope {
		violations |= MatchScope
	}
	if 0 != mask&MatchExpiration && a.Expiration != b.Expiration {
		violations |= MatchExpiration
	}
	if 0 != mask&MatchReclaimable && a.Reclaimable != b.Reclaimable {
		violations |= MatchReclaimable
	}
	if 0 != mask&MatchTradable && a.Tradable != b.Tradable {
		violations |= MatchTradable
	}
	if 0 != mask&MatchOriginPool && a.OriginPool != b.OriginPool {
		violations |= MatchOriginPool
	}

	if 0 != violations {
		return fault.PolicyMismatchError{Bits: uint8(violations)}
	}
	return nil
}
