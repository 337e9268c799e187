// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Accessgrid Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package registry

import (
	"time"
)

// Clock - the external current-time source consumed by expiration logic
//
// values are absolute seconds and must be monotonically nondecreasing
type Clock interface {
	Now() uint64
}

// ClockFunc - adapt a plain function to a Clock
type ClockFunc func() uint64

// Now - the Clock interface method
func (f ClockFunc) Now() uint64 {
	return f()
}

// SystemClock - wall clock in seconds
var SystemClock Clock = ClockFunc(func() uint64 {
	return uint64(time.Now().Unix())
})
