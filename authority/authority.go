// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Accessgrid Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package authority - injected capability checks
//
// the ledger core never hardcodes an owner: every privileged
// entrypoint asks a Context whether the caller holds the capability,
// so the policy can later move to multi-signature or role based
// schemes without touching ledger logic
package authority

import (
	"sync"

	"github.com/accessgrid/accessd/account"
	"github.com/accessgrid/accessd/fault"
)

// Action - a privileged capability
type Action int

// all privileged capabilities
const (
	ActionMint Action = iota
	ActionPause
	ActionSetMinter
	ActionConfigure
)

// String - capability name for logging
func (action Action) String() string {
	switch action {
	case ActionMint:
		return "mint"
	case ActionPause:
		return "pause"
	case ActionSetMinter:
		return "set-minter"
	case ActionConfigure:
		return "configure"
	default:
		return "*unknown*"
	}
}

// Context - the capability oracle consumed by the ledgers
type Context interface {
	IsAuthorized(caller account.Account, action Action) bool
}

// SingleOwner - one owning account plus a minter allow-list
//
// the owner holds every capability; minters hold only ActionMint
type SingleOwner struct {
	sync.RWMutex
	owner   account.Account
	minters map[account.Account]struct{}
}

// NewSingleOwner - create the custodial authorization context
func NewSingleOwner(owner account.Account) (*SingleOwner, error) {
	if owner.IsZero() {
		return nil, fault.ZeroAddress
	}
	return &SingleOwner{
		owner:   owner,
		minters: make(map[account.Account]struct{}),
	}, nil
}

// IsAuthorized - the capability check
func (s *SingleOwner) IsAuthorized(caller account.Account, action Action) bool {
	s.RLock()
	defer s.RUnlock()

	if caller == s.owner {
		return true
	}
	if ActionMint == action {
		_, ok := s.minters[caller]
		return ok
	}
	return false
}

// SetMinter - owner-only capability grant or revoke
func (s *SingleOwner) SetMinter(caller account.Account, minter account.Account, enabled bool) error {
	if minter.IsZero() {
		return fault.ZeroAddress
	}

	s.Lock()
	defer s.Unlock()

	if caller != s.owner {
		return fault.Unauthorized
	}
	if enabled {
		s.minters[minter] = struct{}{}
	} else {
		delete(s.minters, minter)
	}
	return nil
}

// Owner - the owning account
func (s *SingleOwner) Owner() account.Account {
	s.RLock()
	defer s.RUnlock()
	return s.owner
}

// Minters - the current allow-list, for state inspection
func (s *SingleOwner) Minters() []account.Account {
	s.RLock()
	defer s.RUnlock()

	minters := make([]account.Account, 0, len(s.minters))
	for minter := range s.minters {
		minters = append(minters, minter)
	}
	return minters
}
