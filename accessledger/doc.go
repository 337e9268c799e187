// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Accessgrid Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package accessledger - the multi-class access-rights ledger
//
// holds per (account, class) balances and per class total supply;
// classes are registered lazily on first mint and identified by the
// hash of their attribute tuple, so re-minting the same configuration
// accumulates supply under one identifier instead of fragmenting it
//
// every mutating entrypoint runs its policy checks and fee settlement
// before touching a balance: a failure at any step leaves both
// ledgers untouched
//
// the sole path past an expiration wall is burn-and-remint: the
// holder's entire expired balance is retired and the identical amount
// reissued under a class sharing all attributes except expiration
package accessledger
