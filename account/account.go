// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Accessgrid Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package account

import (
	"bytes"

	"github.com/mr-tron/base58"

	"github.com/accessgrid/accessd/fault"
)

// AccountSize - number of bytes in an account identifier
const AccountSize = 32

// Account - an opaque account identifier
//
// the ledger core never interprets the bytes; key custody and
// signature checks belong to an external collaborator
// represented as base58 text for JSON encoding
type Account [AccountSize]byte

// Zero - the null account, meaning "no account"
var Zero Account

// FromBase58 - convert a base58 encoded string and return an account
func FromBase58(accountBase58Encoded string) (Account, error) {
	var account Account
	decoded, err := base58.Decode(accountBase58Encoded)
	if nil != err {
		return Zero, fault.CannotDecodeAccount
	}
	if AccountSize != len(decoded) {
		return Zero, fault.CannotDecodeAccount
	}
	copy(account[:], decoded)
	return account, nil
}

// FromBytes - convert and validate a binary byte slice to an account
func FromBytes(buffer []byte) (Account, error) {
	var account Account
	if AccountSize != len(buffer) {
		return Zero, fault.CannotDecodeAccount
	}
	copy(account[:], buffer)
	return account, nil
}

// IsZero - detect the null account
func (account Account) IsZero() bool {
	return bytes.Equal(account[:], Zero[:])
}

// Bytes - return the account as a byte slice
func (account Account) Bytes() []byte {
	return account[:]
}

// String - base58 string for use by the fmt package (for %s)
func (account Account) String() string {
	return base58.Encode(account[:])
}

// GoString - base58 string for use by the fmt package (for %#v)
func (account Account) GoString() string {
	return "<account:" + base58.Encode(account[:]) + ">"
}

// MarshalText - convert account to base58 text
func (account Account) MarshalText() ([]byte, error) {
	return []byte(base58.Encode(account[:])), nil
}

// UnmarshalText - convert base58 text into an account
func (account *Account) UnmarshalText(s []byte) error {
	a, err := FromBase58(string(s))
	if nil != err {
		return err
	}
	copy(account[:], a[:])
	return nil
}
