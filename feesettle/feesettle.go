// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Accessgrid Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package feesettle - the compound fee-charging protocol
//
// couples the two ledgers: native credit is burned from the payer and
// an equal amount minted to the treasury inside one atomic credit
// ledger entrypoint, so total credit supply still reflects only
// treasury-authorized issuance while fee value moves to the treasury
//
// payers must pre-grant the settlement authority a spend allowance on
// the credit ledger; that grant is an external collaborator concern
package feesettle

import (
	"math"

	"github.com/accessgrid/accessd/account"
	"github.com/accessgrid/accessd/creditledger"
	"github.com/accessgrid/accessd/fault"
	"github.com/accessgrid/accessd/observation"
	"github.com/bitmark-inc/logger"
)

// Settlement - the fee settlement configuration
type Settlement struct {
	log      *logger.L
	credit   *creditledger.Ledger
	spender  account.Account
	treasury account.Account
	bus      *observation.Queue
}

// New - create the settlement protocol
//
// spender is the settlement authority that payers grant allowances to;
// treasury receives every charged fee
func New(credit *creditledger.Ledger, spender account.Account, treasury account.Account, bus *observation.Queue) (*Settlement, error) {
	if nil == credit || nil == bus {
		return nil, fault.NotInitialised
	}
	if spender.IsZero() || treasury.IsZero() {
		return nil, fault.ZeroAddress
	}
	return &Settlement{
		log:      logger.New("feesettle"),
		credit:   credit,
		spender:  spender,
		treasury: treasury,
		bus:      bus,
	}, nil
}

// Treasury - the configured fee recipient
func (s *Settlement) Treasury() account.Account {
	return s.treasury
}

// Authority - the configured settlement spender
func (s *Settlement) Authority() account.Account {
	return s.spender
}

// explicit balance pre-check so callers get an unambiguous
// "insufficient fee funds" signal, distinct from the settlement's own
// allowance failure
func (s *Settlement) checkFunds(payer account.Account, amount uint64) error {
	available := s.credit.Balance(payer)
	if available < amount {
		return fault.InsufficientBalanceError{
			Account:   payer.String(),
			Asset:     "credit",
			Required:  amount,
			Available: available,
		}
	}
	return nil
}

// Charge - settle one fee from payer to treasury
//
// no-op when amount is zero; on success exactly one FeeApplied is
// queued, on failure nothing changes anywhere
func (s *Settlement) Charge(payer account.Account, amount uint64) error {
	if 0 == amount {
		return nil
	}
	if payer.IsZero() {
		return fault.ZeroAddress
	}

	if err := s.checkFunds(payer, amount); nil != err {
		return err
	}
	if err := s.credit.Settle(s.spender, payer, s.treasury, amount); nil != err {
		return err
	}

	s.log.Infof("fee: %d from: %s", amount, payer)
	s.bus.Send("feesettle", observation.FeeApplied{
		PayerA:   payer,
		FeeA:     amount,
		Treasury: s.treasury,
	})
	return nil
}

// ChargePair - settle both legs of a trade in one atomic step
//
// each fee is independently validated before either settles; one
// combined FeeApplied is queued to bound the observation count
func (s *Settlement) ChargePair(payerA account.Account, payerB account.Account, feeA uint64, feeB uint64) error {
	if 0 == feeA && 0 == feeB {
		return nil
	}
	if (0 != feeA && payerA.IsZero()) || (0 != feeB && payerB.IsZero()) {
		return fault.ZeroAddress
	}

	if payerA == payerB && 0 != feeA && 0 != feeB {
		if feeA > math.MaxUint64-feeB {
			return fault.BalanceOverflow
		}
		if err := s.checkFunds(payerA, feeA+feeB); nil != err {
			return err
		}
	} else {
		if 0 != feeA {
			if err := s.checkFunds(payerA, feeA); nil != err {
				return err
			}
		}
		if 0 != feeB {
			if err := s.checkFunds(payerB, feeB); nil != err {
				return err
			}
		}
	}

	if err := s.credit.SettlePair(s.spender, payerA, payerB, s.treasury, feeA, feeB); nil != err {
		return err
	}

	s.log.Infof("fees: %d + %d from: %s, %s", feeA, feeB, payerA, payerB)
	s.bus.Send("feesettle", observation.FeeApplied{
		PayerA:   payerA,
		PayerB:   payerB,
		FeeA:     feeA,
		FeeB:     feeB,
		Treasury: s.treasury,
	})
	return nil
}
