// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Accessgrid Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package accessledger

import (
	"bytes"
	"sort"

	"github.com/accessgrid/accessd/account"
	"github.com/accessgrid/accessd/classrecord"
)

// BalanceEntry - one (owner, class) balance for enumeration
type BalanceEntry struct {
	Owner   account.Account
	ClassId classrecord.ClassId
	Balance uint64
}

// SupplyEntry - one class supply for enumeration
type SupplyEntry struct {
	ClassId classrecord.ClassId
	Supply  uint64
}

// Entries - all non-zero balances in deterministic order
func (l *Ledger) Entries() []BalanceEntry {
	l.Lock()
	defer l.Unlock()

	entries := make([]BalanceEntry, 0, len(l.balances))
	for key, balance := range l.balances {
		if 0 == balance {
			continue
		}
		entries = append(entries, BalanceEntry{
			Owner:   key.owner,
			ClassId: key.class,
			Balance: balance,
		})
	}
	sort.Slice(entries, func(i int, j int) bool {
		c := bytes.Compare(entries[i].Owner[:], entries[j].Owner[:])
		if 0 != c {
			return c < 0
		}
		return bytes.Compare(entries[i].ClassId[:], entries[j].ClassId[:]) < 0
	})
	return entries
}

// SupplyEntries - all non-zero class supplies in deterministic order
func (l *Ledger) SupplyEntries() []SupplyEntry {
	l.Lock()
	defer l.Unlock()

	entries := make([]SupplyEntry, 0, len(l.supplies))
	for classId, supply := range l.supplies {
		if 0 == supply {
			continue
		}
		entries = append(entries, SupplyEntry{
			ClassId: classId,
			Supply:  supply,
		})
	}
	sort.Slice(entries, func(i int, j int) bool {
		return bytes.Compare(entries[i].ClassId[:], entries[j].ClassId[:]) < 0
	})
	return entries
}

// RestoreBalance - snapshot restore only, bypasses all checks
func (l *Ledger) RestoreBalance(owner account.Account, classId classrecord.ClassId, balance uint64) {
	l.Lock()
	defer l.Unlock()
	l.balances[balanceKey{owner: owner, class: classId}] = balance
}

// RestoreSupply - snapshot restore only, bypasses all checks
func (l *Ledger) RestoreSupply(classId classrecord.ClassId, supply uint64) {
	l.Lock()
	defer l.Unlock()
	l.supplies[classId] = supply
}
