// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Accessgrid Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package classrecord

// varint64MaximumBytes - maximum possible number of bytes in a varint64
const varint64MaximumBytes = 9

// toVarint64 - convert a 64 bit unsigned integer to a varint64
//
// seven value bits per byte, high bit set on all but the final byte,
// ninth byte carries a full eight value bits
func toVarint64(value uint64) []byte {
	result := make([]byte, 0, varint64MaximumBytes)
	if value < 0x80 {
		result = append(result, byte(value))
		return result
	}

	for i := 0; i < varint64MaximumBytes && value != 0; i += 1 {
		ext := uint64(0x80)
		if value < 0x80 {
			ext = 0x00
		}
		result = append(result, byte(value|ext))
		value >>= 7
	}
	return result
}

// fromVarint64 - convert an array of up to varint64MaximumBytes to a uint64
//
// also return the number of bytes used as second value
// returns 0, 0 if the varint64 buffer is truncated
func fromVarint64(buffer []byte) (uint64, int) {
	result := uint64(0)

	shift := uint(0)
	count := 0

	for count < len(buffer) {
		currentByte := uint64(buffer[count])
		count += 1
		if count < varint64MaximumBytes {
			result |= currentByte & 0x7f << shift
			if 0 == currentByte&0x80 {
				return result, count
			}
		} else {
			result |= currentByte << shift
			return result, count
		}
		shift += 7
	}
	return 0, 0
}
