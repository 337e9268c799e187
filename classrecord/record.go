// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Accessgrid Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package classrecord

import (
	"bytes"

	"golang.org/x/crypto/sha3"

	"github.com/accessgrid/accessd/account"
	"github.com/accessgrid/accessd/fault"
)

// domain separation constant for class id derivation
//
// fixed for the life of the ledger: changing this value changes every
// derived class identifier
var domainSeparator = []byte("accessgrid.class.v1")

// ClassAttributes - the immutable tuple defining one access-rights class
//
// two tuples are attribute-equal if and only if their class
// identifiers are equal: the identifier is a pure function of the
// packed tuple
type ClassAttributes struct {
	Model       Tag             `json:"model"`       // resource the class grants access to
	Scope       Tag             `json:"scope"`       // usage-restriction domain
	Expiration  uint64          `json:"expiration"`  // absolute time in seconds, 0 = never expires
	OriginPool  account.Account `json:"originPool"`  // controlling account for the class
	Reclaimable bool            `json:"reclaimable"` // reserved, stored but never consulted
	Tradable    bool            `json:"tradable"`    // false: only OriginPool may originate transfers
}

// Packed - a canonically packed attribute tuple
type Packed []byte

// append a length prefixed block of bytes
func appendBytes(buffer []byte, data []byte) []byte {
	buffer = append(buffer, toVarint64(uint64(len(data)))...)
	buffer = append(buffer, data...)
	return buffer
}

func appendBool(buffer []byte, flag bool) []byte {
	b := byte(0x00)
	if flag {
		b = 0x01
	}
	return append(buffer, b)
}

// Pack - canonical serialization of the attribute tuple
//
// field order and width are fixed: a length prefix on every variable
// block removes concatenation ambiguity
func (attributes *ClassAttributes) Pack() Packed {
	packed := make([]byte, 0, 128)
	packed = append(packed, domainSeparator...)
	packed = appendBytes(packed, attributes.Model[:])
	packed = appendBytes(packed, attributes.Scope[:])
	packed = append(packed, toVarint64(attributes.Expiration)...)
	packed = appendBytes(packed, attributes.OriginPool.Bytes())
	packed = appendBool(packed, attributes.Reclaimable)
	packed = appendBool(packed, attributes.Tradable)
	return packed
}

// ClassId - derive the class identifier from the attribute tuple
//
// pure and deterministic: identical tuples always derive the same id
func (attributes *ClassAttributes) ClassId() ClassId {
	return ClassId(sha3.Sum256(attributes.Pack()))
}

// Equal - field-for-field comparison of two attribute tuples
func (attributes *ClassAttributes) Equal(other *ClassAttributes) bool {
	return attributes.Model == other.Model &&
		attributes.Scope == other.Scope &&
		attributes.Expiration == other.Expiration &&
		attributes.OriginPool == other.OriginPool &&
		attributes.Reclaimable == other.Reclaimable &&
		attributes.Tradable == other.Tradable
}

// WithExpiration - copy of the tuple sharing all attributes except expiration
//
// this is the burn-and-remint derivation rule
func (attributes *ClassAttributes) WithExpiration(expiration uint64) *ClassAttributes {
	copied := *attributes
	copied.Expiration = expiration
	return &copied
}

// read one length prefixed block, returns nil on any truncation
func nextBytes(buffer []byte, expectedLength int) ([]byte, []byte) {
	length, used := fromVarint64(buffer)
	if 0 == used {
		return nil, nil
	}
	buffer = buffer[used:]
	if uint64(expectedLength) != length || len(buffer) < expectedLength {
		return nil, nil
	}
	return buffer[:expectedLength], buffer[expectedLength:]
}

// Unpack - decode a canonically packed attribute tuple
//
// the packed form is the stored representation of a class record, so
// corruption here indicates damaged storage, not caller error
func (record Packed) Unpack() (*ClassAttributes, error) {
	buffer := []byte(record)
	if !bytes.HasPrefix(buffer, domainSeparator) {
		return nil, fault.InvalidRecord
	}
	buffer = buffer[len(domainSeparator):]

	attributes := &ClassAttributes{}

	data, buffer := nextBytes(buffer, TagLength)
	if nil == data {
		return nil, fault.InvalidRecord
	}
	copy(attributes.Model[:], data)

	data, buffer = nextBytes(buffer, TagLength)
	if nil == data {
		return nil, fault.InvalidRecord
	}
	copy(attributes.Scope[:], data)

	expiration, used := fromVarint64(buffer)
	if 0 == used {
		return nil, fault.InvalidRecord
	}
	attributes.Expiration = expiration
	buffer = buffer[used:]

	data, buffer = nextBytes(buffer, account.AccountSize)
	if nil == data {
		return nil, fault.InvalidRecord
	}
	originPool, err := account.FromBytes(data)
	if nil != err {
		return nil, fault.InvalidRecord
	}
	attributes.OriginPool = originPool

	if 2 != len(buffer) {
		return nil, fault.InvalidRecord
	}
	attributes.Reclaimable = 0x01 == buffer[0]
	attributes.Tradable = 0x01 == buffer[1]

	return attributes, nil
}
