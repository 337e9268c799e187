// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Accessgrid Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package accessledger

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/accessgrid/accessd/account"
	"github.com/accessgrid/accessd/authority"
	"github.com/accessgrid/accessd/classrecord"
	"github.com/accessgrid/accessd/fault"
	"github.com/accessgrid/accessd/feesettle"
	"github.com/accessgrid/accessd/observation"
	"github.com/accessgrid/accessd/policy"
	"github.com/accessgrid/accessd/registry"
	"github.com/bitmark-inc/logger"
)

type balanceKey struct {
	owner account.Account
	class classrecord.ClassId
}

// Ledger - per (account, class) balances with per class supply
type Ledger struct {
	sync.Mutex
	log        *logger.L
	auth       authority.Context
	registry   *registry.Registry
	fees       *feesettle.Settlement
	bus        *observation.Queue
	balances   map[balanceKey]uint64
	supplies   map[classrecord.ClassId]uint64
	inSettle   uint32
}

// New - create an empty access ledger
func New(auth authority.Context, reg *registry.Registry, fees *feesettle.Settlement, bus *observation.Queue) (*Ledger, error) {
	if nil == auth || nil == reg || nil == fees || nil == bus {
		return nil, fault.NotInitialised
	}
	return &Ledger{
		log:      logger.New("access"),
		auth:     auth,
		registry: reg,
		fees:     fees,
		bus:      bus,
		balances: make(map[balanceKey]uint64),
		supplies: make(map[classrecord.ClassId]uint64),
	}, nil
}

// reentrancy guard, checked before the lock is taken
//
// the flag is raised only around the swap settle callback, the one
// place this ledger calls back out while holding its lock; a callback
// that re-enters any mutating operation would otherwise deadlock on
// Lock
func (l *Ledger) guard() error {
	if 0 != atomic.LoadUint32(&l.inSettle) {
		return fault.ReentrantCall
	}
	return nil
}

// balance shortfall with the class as the named asset
func (l *Ledger) shortfall(owner account.Account, classId classrecord.ClassId, required uint64, available uint64) error {
	return fault.InsufficientBalanceError{
		Account:   owner.String(),
		Asset:     classId.String(),
		Required:  required,
		Available: available,
	}
}

// MintToAddress - issue access tokens, registering the class on first use
//
// minting an already registered attribute tuple reuses its identifier
// and adds to its supply: organizations re-minting into an existing
// program pool must not fragment class identity
func (l *Ledger) MintToAddress(caller account.Account, recipient account.Account, attributes *classrecord.ClassAttributes, amount uint64) (classrecord.ClassId, error) {
	var nilId classrecord.ClassId

	if nil == attributes {
		return nilId, fault.InvalidRecord
	}
	if recipient.IsZero() || attributes.OriginPool.IsZero() {
		return nilId, fault.ZeroAddress
	}
	if 0 == amount {
		return nilId, fault.ZeroAmount
	}

	if err := l.guard(); nil != err {
		return nilId, err
	}
	l.Lock()
	defer l.Unlock()

	if !l.auth.IsAuthorized(caller, authority.ActionMint) {
		return nilId, fault.Unauthorized
	}

	classId, err := l.registry.GetOrCreate(attributes)
	if nil != err {
		return nilId, err
	}

	if amount > math.MaxUint64-l.supplies[classId] {
		return nilId, fault.BalanceOverflow
	}

	l.balances[balanceKey{owner: recipient, class: classId}] += amount
	l.supplies[classId] += amount

	l.log.Infof("mint: %d of class: %s to: %s", amount, classId, recipient)
	l.bus.Send("access", observation.TokenMinted{
		To:         recipient,
		ClassId:    classId,
		Amount:     amount,
		Attributes: *attributes,
	})
	return classId, nil
}

// Transfer - move access tokens, charging an optional native fee
//
// order is fixed: policy check, balance check, fee settlement, then
// the balance move; an earlier failure leaves every ledger untouched
func (l *Ledger) Transfer(from account.Account, to account.Account, classId classrecord.ClassId, amount uint64, nativeFee uint64) error {
	if from.IsZero() || to.IsZero() {
		return fault.ZeroAddress
	}
	if 0 == amount {
		return fault.ZeroAmount
	}

	if err := l.guard(); nil != err {
		return err
	}
	l.Lock()
	defer l.Unlock()

	attributes, err := l.registry.Get(classId)
	if nil != err {
		return err
	}
	if err := policy.Check(attributes, from, l.registry.Now()); nil != err {
		return err
	}

	fromKey := balanceKey{owner: from, class: classId}
	available := l.balances[fromKey]
	if available < amount {
		return l.shortfall(from, classId, amount, available)
	}

	if 0 != nativeFee {
		if err := l.fees.Charge(from, nativeFee); nil != err {
			return err
		}
	}

	l.balances[fromKey] -= amount
	l.balances[balanceKey{owner: to, class: classId}] += amount

	l.log.Infof("transfer: %d of class: %s from: %s to: %s", amount, classId, from, to)
	l.bus.Send("access", observation.TokenTransferred{
		From:    from,
		To:      to,
		ClassId: classId,
		Amount:  amount,
	})
	return nil
}

// BatchTransfer - one source, many recipients, aggregated fee
//
// totals are accumulated overflow-safe and checked against the
// source before any mutation; the aggregate fee settles as a single
// burn and mint pair rather than one per recipient, so a late
// shortfall can never leave some recipients paid and others not
func (l *Ledger) BatchTransfer(from account.Account, recipients []account.Account, classId classrecord.ClassId, amounts []uint64, nativeFees []uint64) error {
	if 0 == len(recipients) ||
		len(recipients) != len(amounts) ||
		len(recipients) != len(nativeFees) {
		return fault.ArrayLengthMismatch
	}
	if from.IsZero() {
		return fault.ZeroAddress
	}

	totalAmount := uint64(0)
	totalFee := uint64(0)
	for i, recipient := range recipients {
		if recipient.IsZero() {
			return fault.ZeroAddress
		}
		if amounts[i] > math.MaxUint64-totalAmount {
			return fault.BalanceOverflow
		}
		totalAmount += amounts[i]
		if nativeFees[i] > math.MaxUint64-totalFee {
			return fault.BalanceOverflow
		}
		totalFee += nativeFees[i]
	}
	if 0 == totalAmount {
		return fault.ZeroAmount
	}

	if err := l.guard(); nil != err {
		return err
	}
	l.Lock()
	defer l.Unlock()

	// all recipients share the one source class: one policy check
	attributes, err := l.registry.Get(classId)
	if nil != err {
		return err
	}
	if err := policy.Check(attributes, from, l.registry.Now()); nil != err {
		return err
	}

	fromKey := balanceKey{owner: from, class: classId}
	available := l.balances[fromKey]
	if available < totalAmount {
		return l.shortfall(from, classId, totalAmount, available)
	}

	if 0 != totalFee {
		if err := l.fees.Charge(from, totalFee); nil != err {
			return err
		}
	}

	for i, recipient := range recipients {
		if 0 == amounts[i] {
			continue
		}
		l.balances[fromKey] -= amounts[i]
		l.balances[balanceKey{owner: recipient, class: classId}] += amounts[i]
		l.bus.Send("access", observation.TokenTransferred{
			From:    from,
			To:      recipient,
			ClassId: classId,
			Amount:  amounts[i],
		})
	}

	l.log.Infof("batch transfer: %d of class: %s from: %s to %d recipients",
		totalAmount, classId, from, len(recipients))
	return nil
}

// BurnAndRemintExpired - migrate a holder's expired balance to a renewed class
//
// retires the holder's entire old-class balance and mints the
// identical amount under the class sharing all attributes except
// expiration; no fee, no loss; a class that never expires can never
// be migrated
func (l *Ledger) BurnAndRemintExpired(holder account.Account, oldClassId classrecord.ClassId, newExpiration uint64) (classrecord.ClassId, error) {
	var nilId classrecord.ClassId

	if holder.IsZero() {
		return nilId, fault.ZeroAddress
	}

	if err := l.guard(); nil != err {
		return nilId, err
	}
	l.Lock()
	defer l.Unlock()

	now := l.registry.Now()
	if newExpiration <= now {
		return nilId, fault.InvalidExpiration
	}

	attributes, err := l.registry.Get(oldClassId)
	if nil != err {
		return nilId, err
	}
	if 0 == attributes.Expiration || now < attributes.Expiration {
		return nilId, fault.TokenNotExpired
	}

	oldKey := balanceKey{owner: holder, class: oldClassId}
	amount := l.balances[oldKey]
	if 0 == amount {
		return nilId, fault.NoTokensToReclaim
	}

	renewed := attributes.WithExpiration(newExpiration)
	newClassId, err := l.registry.GetOrCreate(renewed)
	if nil != err {
		return nilId, err
	}
	if amount > math.MaxUint64-l.supplies[newClassId] {
		return nilId, fault.BalanceOverflow
	}

	// the old record stays registered for audit; only its supply drops
	delete(l.balances, oldKey)
	l.supplies[oldClassId] -= amount

	l.balances[balanceKey{owner: holder, class: newClassId}] += amount
	l.supplies[newClassId] += amount

	l.log.Infof("remint: %d from expired class: %s to class: %s holder: %s",
		amount, oldClassId, newClassId, holder)
	l.bus.Send("access", observation.TokenMinted{
		To:         holder,
		ClassId:    newClassId,
		Amount:     amount,
		Attributes: *renewed,
	})
	return newClassId, nil
}

// ExecuteSwap - two-party, two-class atomic exchange
//
// policy and balance checks run for both legs, then settle is called
// for the fee protocol, then both legs move; a failure anywhere
// before the moves leaves all balances untouched, and the moves
// themselves cannot fail once the checks pass
func (l *Ledger) ExecuteSwap(
	partyA account.Account, classIdA classrecord.ClassId, amountA uint64,
	partyB account.Account, classIdB classrecord.ClassId, amountB uint64,
	settle func() error,
) error {
	if partyA.IsZero() || partyB.IsZero() {
		return fault.ZeroAddress
	}
	if 0 == amountA || 0 == amountB {
		return fault.ZeroAmount
	}

	if err := l.guard(); nil != err {
		return err
	}
	l.Lock()
	defer l.Unlock()

	now := l.registry.Now()

	attributesA, err := l.registry.Get(classIdA)
	if nil != err {
		return err
	}
	if err := policy.Check(attributesA, partyA, now); nil != err {
		return err
	}

	attributesB, err := l.registry.Get(classIdB)
	if nil != err {
		return err
	}
	if err := policy.Check(attributesB, partyB, now); nil != err {
		return err
	}

	keyA := balanceKey{owner: partyA, class: classIdA}
	availableA := l.balances[keyA]
	if availableA < amountA {
		return l.shortfall(partyA, classIdA, amountA, availableA)
	}

	keyB := balanceKey{owner: partyB, class: classIdB}
	availableB := l.balances[keyB]
	if availableB < amountB {
		return l.shortfall(partyB, classIdB, amountB, availableB)
	}

	if nil != settle {
		atomic.StoreUint32(&l.inSettle, 1)
		err := settle()
		atomic.StoreUint32(&l.inSettle, 0)
		if nil != err {
			return err
		}
	}

	l.balances[keyA] -= amountA
	l.balances[balanceKey{owner: partyB, class: classIdA}] += amountA

	l.balances[keyB] -= amountB
	l.balances[balanceKey{owner: partyA, class: classIdB}] += amountB

	l.bus.Send("access", observation.TokenTransferred{
		From:    partyA,
		To:      partyB,
		ClassId: classIdA,
		Amount:  amountA,
	})
	l.bus.Send("access", observation.TokenTransferred{
		From:    partyB,
		To:      partyA,
		ClassId: classIdB,
		Amount:  amountB,
	})
	return nil
}

// SetOperatorApproval - deliberately rejected
//
// this ledger is single-authority-custodial: generic delegated
// operators are not part of the trust model
func (l *Ledger) SetOperatorApproval(owner account.Account, operator account.Account, enabled bool) error {
	return fault.ApprovalsDisabled
}

// Balance - current balance of one account under one class
func (l *Ledger) Balance(owner account.Account, classId classrecord.ClassId) uint64 {
	l.Lock()
	defer l.Unlock()
	return l.balances[balanceKey{owner: owner, class: classId}]
}

// Supply - current total supply of one class
func (l *Ledger) Supply(classId classrecord.ClassId) uint64 {
	l.Lock()
	defer l.Unlock()
	return l.supplies[classId]
}
