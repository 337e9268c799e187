// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Accessgrid Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package observation - the structured audit trail
//
// every successful mutating operation queues exactly one observation
// record carrying enough data to reconstruct the resulting state
// change without a separate query; failed operations queue nothing
package observation
