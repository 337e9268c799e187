// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Accessgrid Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package creditledger - the native utility balance ledger
//
// one fungible unit per account, mutated only by mint, allowance
// gated burn and supply-neutral transfer; every mutating entrypoint
// is atomic: all checks run before any state changes, so a failure
// leaves no effect
//
// fee settlement moves value from payer to treasury as a burn plus an
// equal mint inside one entrypoint, keeping total supply the product
// of treasury-authorized issuance only
package creditledger
