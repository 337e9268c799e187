// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Accessgrid Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package trade

import (
	"github.com/accessgrid/accessd/accessledger"
	"github.com/accessgrid/accessd/account"
	"github.com/accessgrid/accessd/classrecord"
	"github.com/accessgrid/accessd/fault"
	"github.com/accessgrid/accessd/feesettle"
	"github.com/accessgrid/accessd/policy"
	"github.com/accessgrid/accessd/registry"
	"github.com/bitmark-inc/logger"
)

// SwapOrder - the agreed terms of one two-party exchange
//
// PartyA gives AmountA of ClassIdA and pays FeeA in native credit;
// PartyB mirrors; Mask selects the class attributes that must agree
// between the two classes, zero disables matching entirely
type SwapOrder struct {
	PartyA   account.Account
	ClassIdA classrecord.ClassId
	AmountA  uint64
	FeeA     uint64

	PartyB   account.Account
	ClassIdB classrecord.ClassId
	AmountB  uint64
	FeeB     uint64

	Mask policy.Mask
}

// Engine - executes swap orders against the two ledgers
type Engine struct {
	log      *logger.L
	access   *accessledger.Ledger
	registry *registry.Registry
	fees     *feesettle.Settlement
}

// New - create a swap engine
func New(access *accessledger.Ledger, reg *registry.Registry, fees *feesettle.Settlement) (*Engine, error) {
	if nil == access || nil == reg || nil == fees {
		return nil, fault.NotInitialised
	}
	return &Engine{
		log:      logger.New("trade"),
		access:   access,
		registry: reg,
		fees:     fees,
	}, nil
}

// Swap - execute one order
//
// order of checks: structural validation, class compatibility under
// the mask, then the ledger's own policy, balance and fee checks; the
// exchange is all-or-nothing, a fee shortfall on either side leaves
// both token ledgers and both credit balances untouched
func (e *Engine) Swap(order *SwapOrder) error {
	if nil == order {
		return fault.InvalidRecord
	}
	if order.PartyA.IsZero() || order.PartyB.IsZero() {
		return fault.ZeroAddress
	}
	if 0 == order.AmountA || 0 == order.AmountB {
		return fault.ZeroAmount
	}

	if 0 != order.Mask {
		attributesA, err := e.registry.Get(order.ClassIdA)
		if nil != err {
			return err
		}
		attributesB, err := e.registry.Get(order.ClassIdB)
		if nil != err {
			return err
		}
		if err := policy.Match(attributesA, attributesB, order.Mask); nil != err {
			return err
		}
	}

	err := e.access.ExecuteSwap(
		order.PartyA, order.ClassIdA, order.AmountA,
		order.PartyB, order.ClassIdB, order.AmountB,
		func() error {
			return e.fees.ChargePair(order.PartyA, order.PartyB, order.FeeA, order.FeeB)
		},
	)
	if nil != err {
		return err
	}

	e.log.Infof("swap: %s gave %d of %s, %s gave %d of %s",
		order.PartyA, order.AmountA, order.ClassIdA,
		order.PartyB, order.AmountB, order.ClassIdB)
	return nil
}
