// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Accessgrid Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package classrecord

import (
	"bytes"

	"github.com/accessgrid/accessd/fault"
)

// TagLength - fixed width of model and scope tags
const TagLength = 16

// Tag - short fixed-width identifier naming a resource or usage
// restriction domain
//
// stored zero padded; the semantic payload must fit in TagLength bytes
type Tag [TagLength]byte

// TagFromString - convert a string to a zero padded tag
//
// the string is rejected here, at the boundary, if oversize
func TagFromString(s string) (Tag, error) {
	var tag Tag
	if len(s) > TagLength {
		return tag, fault.TagTooLong
	}
	copy(tag[:], s)
	return tag, nil
}

// String - the tag payload with zero padding removed
func (tag Tag) String() string {
	return string(bytes.TrimRight(tag[:], "\x00"))
}

// MarshalText - convert a tag to its trimmed text form
func (tag Tag) MarshalText() ([]byte, error) {
	return bytes.TrimRight(tag[:], "\x00"), nil
}

// UnmarshalText - convert text into a zero padded tag
func (tag *Tag) UnmarshalText(s []byte) error {
	t, err := TagFromString(string(s))
	if nil != err {
		return err
	}
	copy(tag[:], t[:])
	return nil
}
