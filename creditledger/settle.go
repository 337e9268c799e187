// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Accessgrid Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package creditledger

import (
	"math"

	"github.com/accessgrid/accessd/account"
	"github.com/accessgrid/accessd/fault"
)

// one validated settlement leg, internal to Settle/SettlePair
type settleLeg struct {
	payer  account.Account
	amount uint64
}

// validate a set of legs without mutating, called with the lock held
//
// legs sharing one payer are checked against their combined total so
// that applying them cannot fail midway
func (l *Ledger) checkLegs(spender account.Account, legs []settleLeg) error {
	if l.paused {
		return fault.Paused
	}

	required := make(map[account.Account]uint64)
	for _, leg := range legs {
		if leg.payer.IsZero() {
			return fault.ZeroAddress
		}
		if leg.amount > math.MaxUint64-required[leg.payer] {
			return fault.BalanceOverflow
		}
		required[leg.payer] += leg.amount
	}

	for payer, amount := range required {
		granted := l.allowance(payer, spender)
		if granted < amount {
			return fault.InsufficientAllowanceError{
				Owner:     payer.String(),
				Spender:   spender.String(),
				Required:  amount,
				Available: granted,
			}
		}
		available := l.balances[payer]
		if available < amount {
			return fault.InsufficientBalanceError{
				Account:   payer.String(),
				Asset:     assetName,
				Required:  amount,
				Available: available,
			}
		}
	}
	return nil
}

// apply validated legs, called with the lock held
//
// burn from payer then mint the same amount to treasury: total supply
// is unchanged while ownership moves
func (l *Ledger) applyLegs(spender account.Account, treasury account.Account, legs []settleLeg) {
	for _, leg := range legs {
		l.spendAllowance(leg.payer, spender, leg.amount)
		l.balances[leg.payer] -= leg.amount
		l.totalSupply -= leg.amount

		l.balances[treasury] += leg.amount
		l.totalSupply += leg.amount
	}
}

// Settle - fee settlement of one payer to the treasury
//
// requires payer to have pre-granted spender an allowance covering
// amount; emits no observation itself, the fee protocol reports one
// FeeApplied for the whole charge
func (l *Ledger) Settle(spender account.Account, payer account.Account, treasury account.Account, amount uint64) error {
	if treasury.IsZero() {
		return fault.ZeroAddress
	}
	if 0 == amount {
		return nil
	}

	l.Lock()
	defer l.Unlock()

	legs := []settleLeg{{payer: payer, amount: amount}}
	if err := l.checkLegs(spender, legs); nil != err {
		return err
	}
	l.applyLegs(spender, treasury, legs)

	l.log.Debugf("settle: %d from: %s to treasury: %s", amount, payer, treasury)
	return nil
}

// SettlePair - fee settlement of two payers in one atomic step
//
// both legs are validated before either is applied: either both fees
// settle or neither does; a zero fee leg is skipped
func (l *Ledger) SettlePair(spender account.Account, payerA account.Account, payerB account.Account, treasury account.Account, amountA uint64, amountB uint64) error {
	if treasury.IsZero() {
		return fault.ZeroAddress
	}

	legs := make([]settleLeg, 0, 2)
	if 0 != amountA {
		legs = append(legs, settleLeg{payer: payerA, amount: amountA})
	}
	if 0 != amountB {
		legs = append(legs, settleLeg{payer: payerB, amount: amountB})
	}
	if 0 == len(legs) {
		return nil
	}

	l.Lock()
	defer l.Unlock()

	if err := l.checkLegs(spender, legs); nil != err {
		return err
	}
	l.applyLegs(spender, treasury, legs)

	l.log.Debugf("settle pair: %d + %d to treasury: %s", amountA, amountB, treasury)
	return nil
}
