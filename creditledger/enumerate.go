// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Accessgrid Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package creditledger

import (
	"bytes"
	"sort"

	"github.com/accessgrid/accessd/account"
	"github.com/accessgrid/accessd/fault"
)

// BalanceEntry - one enumerable balance
type BalanceEntry struct {
	Owner  account.Account
	Amount uint64
}

// AllowanceEntry - one enumerable allowance grant
type AllowanceEntry struct {
	Owner   account.Account
	Spender account.Account
	Amount  uint64
}

// Entries - every nonzero balance in account order, for audits and snapshots
func (l *Ledger) Entries() []BalanceEntry {
	l.Lock()
	defer l.Unlock()

	entries := make([]BalanceEntry, 0, len(l.balances))
	for owner, amount := range l.balances {
		if 0 == amount {
			continue
		}
		entries = append(entries, BalanceEntry{Owner: owner, Amount: amount})
	}
	sort.Slice(entries, func(i int, j int) bool {
		return bytes.Compare(entries[i].Owner[:], entries[j].Owner[:]) < 0
	})
	return entries
}

// AllowanceEntries - every nonzero allowance in owner then spender order
func (l *Ledger) AllowanceEntries() []AllowanceEntry {
	l.Lock()
	defer l.Unlock()

	entries := make([]AllowanceEntry, 0, len(l.allowances))
	for key, amount := range l.allowances {
		if 0 == amount {
			continue
		}
		entries = append(entries, AllowanceEntry{
			Owner:   key.owner,
			Spender: key.spender,
			Amount:  amount,
		})
	}
	sort.Slice(entries, func(i int, j int) bool {
		c := bytes.Compare(entries[i].Owner[:], entries[j].Owner[:])
		if 0 != c {
			return c < 0
		}
		return bytes.Compare(entries[i].Spender[:], entries[j].Spender[:]) < 0
	})
	return entries
}

// RestoreBalance - snapshot restore only: set one balance directly
//
// bypasses authorization and emits nothing; only valid on a freshly
// constructed ledger being rebuilt from a snapshot
func (l *Ledger) RestoreBalance(owner account.Account, amount uint64) error {
	if owner.IsZero() {
		return fault.ZeroAddress
	}

	l.Lock()
	defer l.Unlock()

	l.totalSupply -= l.balances[owner]
	l.balances[owner] = amount
	l.totalSupply += amount
	return nil
}

// RestoreAllowance - snapshot restore only: set one allowance directly
func (l *Ledger) RestoreAllowance(owner account.Account, spender account.Account, amount uint64) error {
	if owner.IsZero() || spender.IsZero() {
		return fault.ZeroAddress
	}

	l.Lock()
	defer l.Unlock()

	l.allowances[allowanceKey{owner: owner, spender: spender}] = amount
	return nil
}

// RestorePaused - snapshot restore only: set the circuit breaker state
func (l *Ledger) RestorePaused(paused bool) {
	l.Lock()
	defer l.Unlock()
	l.paused = paused
}
