// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Accessgrid Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package creditledger

import (
	"math"
	"sync"

	"github.com/accessgrid/accessd/account"
	"github.com/accessgrid/accessd/authority"
	"github.com/accessgrid/accessd/fault"
	"github.com/accessgrid/accessd/observation"
	"github.com/bitmark-inc/logger"
)

// Unlimited - allowance sentinel that is never decremented
const Unlimited = math.MaxUint64

// asset name used in error diagnosis
const assetName = "credit"

type allowanceKey struct {
	owner   account.Account
	spender account.Account
}

// Ledger - per-account balances of the native credit unit
//
// the mutex is the non-reentrant scope: every read-check-mutate
// sequence runs to completion under it and no operation calls back
// out while holding it
type Ledger struct {
	sync.Mutex
	log         *logger.L
	auth        authority.Context
	bus         *observation.Queue
	balances    map[account.Account]uint64
	allowances  map[allowanceKey]uint64
	totalSupply uint64
	paused      bool
}

// New - create an empty credit ledger
func New(auth authority.Context, bus *observation.Queue) (*Ledger, error) {
	if nil == auth || nil == bus {
		return nil, fault.NotInitialised
	}
	return &Ledger{
		log:        logger.New("credit"),
		auth:       auth,
		bus:        bus,
		balances:   make(map[account.Account]uint64),
		allowances: make(map[allowanceKey]uint64),
	}, nil
}

// Mint - create credit, minter capability required
func (l *Ledger) Mint(caller account.Account, to account.Account, amount uint64) error {
	if to.IsZero() {
		return fault.ZeroAddress
	}
	if 0 == amount {
		return fault.ZeroAmount
	}

	l.Lock()
	defer l.Unlock()

	if !l.auth.IsAuthorized(caller, authority.ActionMint) {
		return fault.Unauthorized
	}
	if l.paused {
		return fault.Paused
	}
	if amount > math.MaxUint64-l.totalSupply {
		return fault.BalanceOverflow
	}

	l.balances[to] += amount
	l.totalSupply += amount

	l.log.Infof("mint: %d to: %s", amount, to)
	l.bus.Send("credit", observation.CreditMinted{To: to, Amount: amount})
	return nil
}

// read an allowance, called with the lock held
func (l *Ledger) allowance(owner account.Account, spender account.Account) uint64 {
	return l.allowances[allowanceKey{owner: owner, spender: spender}]
}

// consume an allowance after a successful check, called with the lock held
//
// the unlimited sentinel is never decremented
func (l *Ledger) spendAllowance(owner account.Account, spender account.Account, amount uint64) {
	key := allowanceKey{owner: owner, spender: spender}
	if Unlimited == l.allowances[key] {
		return
	}
	l.allowances[key] -= amount
}

// BurnFrom - destroy credit under a pre-granted spend allowance
//
// caller is the authorizing spender: from must have granted it an
// allowance of at least amount
func (l *Ledger) BurnFrom(caller account.Account, from account.Account, amount uint64) error {
	if from.IsZero() {
		return fault.ZeroAddress
	}
	if 0 == amount {
		return fault.ZeroAmount
	}

	l.Lock()
	defer l.Unlock()

	if l.paused {
		return fault.Paused
	}

	granted := l.allowance(from, caller)
	if granted < amount {
		return fault.InsufficientAllowanceError{
			Owner:     from.String(),
			Spender:   caller.String(),
			Required:  amount,
			Available: granted,
		}
	}

	available := l.balances[from]
	if available < amount {
		return fault.InsufficientBalanceError{
			Account:   from.String(),
			Asset:     assetName,
			Required:  amount,
			Available: available,
		}
	}

	l.spendAllowance(from, caller, amount)
	l.balances[from] -= amount
	l.totalSupply -= amount

	l.log.Infof("burn: %d from: %s by: %s", amount, from, caller)
	l.bus.Send("credit", observation.CreditBurnedFrom{From: from, Amount: amount})
	return nil
}

// validate and execute a supply-neutral move, called with the lock held
func (l *Ledger) move(from account.Account, to account.Account, amount uint64) error {
	if from.IsZero() || to.IsZero() {
		return fault.ZeroAddress
	}
	if 0 == amount {
		return fault.ZeroAmount
	}
	if l.paused {
		return fault.Paused
	}

	available := l.balances[from]
	if available < amount {
		return fault.InsufficientBalanceError{
			Account:   from.String(),
			Asset:     assetName,
			Required:  amount,
			Available: available,
		}
	}

	l.balances[from] -= amount
	l.balances[to] += amount
	return nil
}

// Transfer - supply-neutral move originated by the balance owner
func (l *Ledger) Transfer(from account.Account, to account.Account, amount uint64) error {
	l.Lock()
	defer l.Unlock()

	if err := l.move(from, to, amount); nil != err {
		return err
	}

	l.bus.Send("credit", observation.CreditTransferred{From: from, To: to, Amount: amount})
	return nil
}

// TransferFrom - supply-neutral move under a spend allowance
func (l *Ledger) TransferFrom(caller account.Account, from account.Account, to account.Account, amount uint64) error {
	l.Lock()
	defer l.Unlock()

	if from.IsZero() || to.IsZero() {
		return fault.ZeroAddress
	}
	if 0 == amount {
		return fault.ZeroAmount
	}
	if l.paused {
		return fault.Paused
	}

	granted := l.allowance(from, caller)
	if granted < amount {
		return fault.InsufficientAllowanceError{
			Owner:     from.String(),
			Spender:   caller.String(),
			Required:  amount,
			Available: granted,
		}
	}

	if err := l.move(from, to, amount); nil != err {
		return err
	}
	l.spendAllowance(from, caller, amount)

	l.bus.Send("credit", observation.CreditTransferred{From: from, To: to, Amount: amount})
	return nil
}

// Approve - grant a spend allowance to a spender
//
// pass Unlimited to grant the never-decremented sentinel
func (l *Ledger) Approve(owner account.Account, spender account.Account, amount uint64) error {
	if owner.IsZero() || spender.IsZero() {
		return fault.ZeroAddress
	}

	l.Lock()
	defer l.Unlock()

	l.allowances[allowanceKey{owner: owner, spender: spender}] = amount
	return nil
}

// Allowance - current spend allowance
func (l *Ledger) Allowance(owner account.Account, spender account.Account) uint64 {
	l.Lock()
	defer l.Unlock()
	return l.allowance(owner, spender)
}

// Pause - administrative circuit breaker
//
// all balance mutation fails while paused; administrative operations
// and read-only queries remain available
func (l *Ledger) Pause(caller account.Account) error {
	if !l.auth.IsAuthorized(caller, authority.ActionPause) {
		return fault.Unauthorized
	}

	l.Lock()
	l.paused = true
	l.Unlock()

	l.log.Warn("paused")
	return nil
}

// Unpause - release the circuit breaker
func (l *Ledger) Unpause(caller account.Account) error {
	if !l.auth.IsAuthorized(caller, authority.ActionPause) {
		return fault.Unauthorized
	}

	l.Lock()
	l.paused = false
	l.Unlock()

	l.log.Warn("unpaused")
	return nil
}

// IsPaused - current circuit breaker state
func (l *Ledger) IsPaused() bool {
	l.Lock()
	defer l.Unlock()
	return l.paused
}

// Balance - current balance of one account
func (l *Ledger) Balance(owner account.Account) uint64 {
	l.Lock()
	defer l.Unlock()
	return l.balances[owner]
}

// TotalSupply - sum of all balances
func (l *Ledger) TotalSupply() uint64 {
	l.Lock()
	defer l.Unlock()
	return l.totalSupply
}
