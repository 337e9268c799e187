// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Accessgrid Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package snapshot - durable ledger state in the storage pools
//
// the ledgers are in-memory structures; a snapshot writes their full
// state into the prefixed database pools so a restarted process can
// rebuild exactly the balances, allowances, supplies and roles it had
// before.  loading re-derives every class supply from the restored
// balances and refuses a database whose stored supplies disagree.
package snapshot

import (
	"encoding/binary"

	"github.com/accessgrid/accessd/accessledger"
	"github.com/accessgrid/accessd/account"
	"github.com/accessgrid/accessd/authority"
	"github.com/accessgrid/accessd/classrecord"
	"github.com/accessgrid/accessd/creditledger"
	"github.com/accessgrid/accessd/fault"
	"github.com/accessgrid/accessd/registry"
	"github.com/accessgrid/accessd/storage"
)

// layout version stored under the control pool
const currentVersion = 1

// control pool keys
//
// the treasury and settlement accounts are configuration values, set
// at construction from the Lua file, so they are not snapshotted
var (
	versionKey = []byte("version")
	pausedKey  = []byte("paused")
	baseURIKey = []byte("baseuri")
)

// decode the big endian uint64 stored by PutN
func decodeN(value []byte) (uint64, bool) {
	if 8 != len(value) {
		return 0, false
	}
	return binary.BigEndian.Uint64(value), true
}

// Exists - a snapshot was previously saved to this database
func Exists() bool {
	if !storage.IsInitialised() {
		return false
	}
	return storage.Pool.Control.Has(versionKey)
}

// Save - persist the complete ledger state
//
// each pool is cleared and rewritten so stale entries from an earlier
// snapshot cannot survive
func Save(credit *creditledger.Ledger, access *accessledger.Ledger, reg *registry.Registry, auth *authority.SingleOwner) error {
	if nil == credit || nil == access || nil == reg || nil == auth {
		return fault.NotInitialised
	}
	if !storage.IsInitialised() {
		return fault.NotInitialised
	}

	storage.Pool.CreditBalances.Clear()
	for _, entry := range credit.Entries() {
		storage.Pool.CreditBalances.PutN(entry.Owner.Bytes(), entry.Amount)
	}

	storage.Pool.CreditAllowances.Clear()
	for _, entry := range credit.AllowanceEntries() {
		key := append(entry.Owner.Bytes(), entry.Spender.Bytes()...)
		storage.Pool.CreditAllowances.PutN(key, entry.Amount)
	}

	storage.Pool.AccessBalances.Clear()
	for _, entry := range access.Entries() {
		key := append(entry.Owner.Bytes(), entry.ClassId[:]...)
		storage.Pool.AccessBalances.PutN(key, entry.Balance)
	}

	storage.Pool.ClassSupplies.Clear()
	for _, entry := range access.SupplyEntries() {
		storage.Pool.ClassSupplies.PutN(entry.ClassId[:], entry.Supply)
	}

	storage.Pool.Minters.Clear()
	for _, minter := range auth.Minters() {
		storage.Pool.Minters.Put(minter.Bytes(), []byte{1})
	}

	paused := uint64(0)
	if credit.IsPaused() {
		paused = 1
	}
	storage.Pool.Control.PutN(pausedKey, paused)
	storage.Pool.Control.Put(baseURIKey, []byte(reg.BaseURI()))
	storage.Pool.Control.PutN(versionKey, currentVersion)
	return nil
}

// Load - rebuild ledger state from a saved snapshot
//
// the target ledgers must be freshly constructed; restoring over live
// state would silently merge two histories
func Load(credit *creditledger.Ledger, access *accessledger.Ledger, reg *registry.Registry, auth *authority.SingleOwner) error {
	if nil == credit || nil == access || nil == reg || nil == auth {
		return fault.NotInitialised
	}
	if !storage.IsInitialised() {
		return fault.NotInitialised
	}

	version, found := storage.Pool.Control.GetN(versionKey)
	if !found || currentVersion != version {
		return fault.SnapshotCorrupt
	}

	var fail error
	storage.Pool.CreditBalances.Iterate(func(key []byte, value []byte) bool {
		owner, err := account.FromBytes(key)
		if nil != err {
			fail = fault.SnapshotCorrupt
			return false
		}
		balance, ok := decodeN(value)
		if !ok {
			fail = fault.SnapshotCorrupt
			return false
		}
		fail = credit.RestoreBalance(owner, balance)
		return nil == fail
	})
	if nil != fail {
		return fail
	}

	storage.Pool.CreditAllowances.Iterate(func(key []byte, value []byte) bool {
		if 2*account.AccountSize != len(key) {
			fail = fault.SnapshotCorrupt
			return false
		}
		owner, err := account.FromBytes(key[:account.AccountSize])
		if nil != err {
			fail = fault.SnapshotCorrupt
			return false
		}
		spender, err := account.FromBytes(key[account.AccountSize:])
		if nil != err {
			fail = fault.SnapshotCorrupt
			return false
		}
		allowance, ok := decodeN(value)
		if !ok {
			fail = fault.SnapshotCorrupt
			return false
		}
		fail = credit.RestoreAllowance(owner, spender, allowance)
		return nil == fail
	})
	if nil != fail {
		return fail
	}

	recomputed := make(map[classrecord.ClassId]uint64)
	storage.Pool.AccessBalances.Iterate(func(key []byte, value []byte) bool {
		if account.AccountSize+classrecord.ClassIdLength != len(key) {
			fail = fault.SnapshotCorrupt
			return false
		}
		owner, err := account.FromBytes(key[:account.AccountSize])
		if nil != err {
			fail = fault.SnapshotCorrupt
			return false
		}
		var classId classrecord.ClassId
		if err := classrecord.ClassIdFromBytes(&classId, key[account.AccountSize:]); nil != err {
			fail = fault.SnapshotCorrupt
			return false
		}
		balance, ok := decodeN(value)
		if !ok {
			fail = fault.SnapshotCorrupt
			return false
		}
		access.RestoreBalance(owner, classId, balance)
		recomputed[classId] += balance
		return true
	})
	if nil != fail {
		return fail
	}

	// the stored supplies must agree with the balances they cover
	stored := make(map[classrecord.ClassId]uint64)
	storage.Pool.ClassSupplies.Iterate(func(key []byte, value []byte) bool {
		var classId classrecord.ClassId
		if err := classrecord.ClassIdFromBytes(&classId, key); nil != err {
			fail = fault.SnapshotCorrupt
			return false
		}
		supply, ok := decodeN(value)
		if !ok {
			fail = fault.SnapshotCorrupt
			return false
		}
		stored[classId] = supply
		access.RestoreSupply(classId, supply)
		return true
	})
	if nil != fail {
		return fail
	}
	if len(stored) != len(recomputed) {
		return fault.SnapshotCorrupt
	}
	for classId, supply := range stored {
		if recomputed[classId] != supply {
			return fault.SnapshotCorrupt
		}
	}

	owner := auth.Owner()
	storage.Pool.Minters.Iterate(func(key []byte, value []byte) bool {
		minter, err := account.FromBytes(key)
		if nil != err {
			fail = fault.SnapshotCorrupt
			return false
		}
		fail = auth.SetMinter(owner, minter, true)
		return nil == fail
	})
	if nil != fail {
		return fail
	}

	if baseURI := storage.Pool.Control.Get(baseURIKey); 0 != len(baseURI) {
		if err := reg.SetBaseURI(owner, string(baseURI)); nil != err {
			return err
		}
	}

	paused, _ := storage.Pool.Control.GetN(pausedKey)
	credit.RestorePaused(0 != paused)
	return nil
}
