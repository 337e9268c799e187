// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Accessgrid Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package classrecord

import (
	"encoding/hex"

	"github.com/accessgrid/accessd/fault"
)

// ClassIdLength - number of bytes in a class identifier
const ClassIdLength = 32

// ClassId - the type for an access class identifier
//
// SHA3-256 over the canonical packing of the attribute tuple
// represented as hex text for JSON encoding
// to get bytes value just use classId[:]
type ClassId [ClassIdLength]byte

// String - convert a binary classId to hex string for use by the fmt package (for %s)
func (classId ClassId) String() string {
	return hex.EncodeToString(classId[:])
}

// GoString - convert a binary classId to hex string for use by the fmt package (for %#v)
func (classId ClassId) GoString() string {
	return "<class:" + hex.EncodeToString(classId[:]) + ">"
}

// MarshalText - convert classId to hex text
func (classId ClassId) MarshalText() ([]byte, error) {
	size := hex.EncodedLen(len(classId))
	buffer := make([]byte, size)
	hex.Encode(buffer, classId[:])
	return buffer, nil
}

// UnmarshalText - convert hex text into a classId
func (classId *ClassId) UnmarshalText(s []byte) error {
	if len(classId) != hex.DecodedLen(len(s)) {
		return fault.InvalidClassId
	}
	byteCount, err := hex.Decode(classId[:], s)
	if nil != err {
		return err
	}
	if ClassIdLength != byteCount {
		return fault.InvalidClassId
	}
	return nil
}

// ClassIdFromBytes - convert and validate a binary byte slice to a classId
func ClassIdFromBytes(classId *ClassId, buffer []byte) error {
	if ClassIdLength != len(buffer) {
		return fault.InvalidClassId
	}
	copy(classId[:], buffer)
	return nil
}
