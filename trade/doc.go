// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Accessgrid Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package trade - two-party exchange of access tokens
//
// a swap order names both parties, the class and amount each side
// gives up, the native credit fee each side pays, and a compatibility
// mask selecting which class attributes must agree between the two
// classes before the exchange may proceed.
//
// the engine resolves and matches the class records, then hands the
// exchange to the access ledger with the compound fee settlement as
// the settle step: both fees and both token legs land together or not
// at all.
package trade
