// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Accessgrid Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

import (
	"fmt"
)

// GenericError - the error base
type GenericError string

// to allow for different classes of errors
type (
	ExistsError   GenericError
	InvalidError  GenericError
	NotFoundError GenericError
	ProcessError  GenericError
)

// common errors - keep in alphabetic order
const (
	AlreadyInitialised        = ProcessError("already initialised")
	ApprovalsDisabled         = ProcessError("operator approvals are disabled")
	ArrayLengthMismatch       = InvalidError("array lengths do not match")
	BalanceOverflow           = ProcessError("balance accumulation overflows")
	CannotDecodeAccount       = InvalidError("cannot decode account")
	ConfigMismatch            = ProcessError("class attributes do not match stored record")
	InsufficientAllowanceBase = ProcessError("insufficient allowance")
	InsufficientBalanceBase   = ProcessError("insufficient balance")
	InvalidClassId            = InvalidError("class id is invalid")
	InvalidExpiration         = InvalidError("expiration is not in the future")
	InvalidRecord             = ProcessError("packed class record is corrupt")
	InvalidStructPointer      = InvalidError("invalid struct pointer")
	NoTokensToReclaim         = NotFoundError("no tokens to reclaim")
	NotInitialised            = ProcessError("not initialised")
	Paused                    = ProcessError("ledger is paused")
	PolicyMismatchBase        = ProcessError("classes violate the match policy")
	ReentrantCall             = ProcessError("mutating operation re-entered")
	SnapshotCorrupt           = ProcessError("snapshot data is corrupt")
	TagTooLong                = InvalidError("tag exceeds maximum length")
	TokenExpired              = ProcessError("class has expired")
	TokenNotExpired           = ProcessError("class has not expired")
	TokenNotTradable          = ProcessError("class is not tradable by this sender")
	Unauthorized              = ProcessError("caller is not authorized")
	UnknownClassIdBase        = NotFoundError("class id is not registered")
	ZeroAddress               = InvalidError("account is the zero account")
	ZeroAmount                = InvalidError("amount is zero")
)

// the error interface base method
func (e GenericError) Error() string { return string(e) }

// the error interface methods
func (e ExistsError) Error() string   { return string(e) }
func (e InvalidError) Error() string  { return string(e) }
func (e NotFoundError) Error() string { return string(e) }
func (e ProcessError) Error() string  { return string(e) }

// determine the class of an error
func IsErrExists(e error) bool   { _, ok := e.(ExistsError); return ok }
func IsErrInvalid(e error) bool  { _, ok := e.(InvalidError); return ok }
func IsErrNotFound(e error) bool { _, ok := e.(NotFoundError); return ok }
func IsErrProcess(e error) bool  { _, ok := e.(ProcessError); return ok }

// InsufficientBalanceError - a balance shortfall with full diagnosis data
//
// Asset is "credit" for the native ledger or the hex class id for an
// access class
type InsufficientBalanceError struct {
	Account   string
	Asset     string
	Required  uint64
	Available uint64
}

func (e InsufficientBalanceError) Error() string {
	return fmt.Sprintf(
		"insufficient balance: account: %s  asset: %s  required: %d  available: %d",
		e.Account, e.Asset, e.Required, e.Available,
	)
}

// Is - compare equal to the base sentinel for errors.Is
func (e InsufficientBalanceError) Is(target error) bool {
	return target == InsufficientBalanceBase
}

// InsufficientAllowanceError - a spend allowance shortfall
type InsufficientAllowanceError struct {
	Owner     string
	Spender   string
	Required  uint64
	Available uint64
}

func (e InsufficientAllowanceError) Error() string {
	return fmt.Sprintf(
		"insufficient allowance: owner: %s  spender: %s  required: %d  available: %d",
		e.Owner, e.Spender, e.Required, e.Available,
	)
}

func (e InsufficientAllowanceError) Is(target error) bool {
	return target == InsufficientAllowanceBase
}

// UnknownClassIdError - lookup failure carrying the offending id
type UnknownClassIdError struct {
	ClassId string
}

func (e UnknownClassIdError) Error() string {
	return fmt.Sprintf("unknown class id: %s", e.ClassId)
}

func (e UnknownClassIdError) Is(target error) bool {
	return target == UnknownClassIdBase
}

// PolicyMismatchError - trade match policy violation
//
// Bits holds the subset of the requested mask whose fields differ
// between the two classes
type PolicyMismatchError struct {
	Bits uint8
}

func (e PolicyMismatchError) Error() string {
	return fmt.Sprintf("classes violate the match policy: bits: %#02x", e.Bits)
}

func (e PolicyMismatchError) Is(target error) bool {
	return target == PolicyMismatchBase
}
