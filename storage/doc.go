// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Accessgrid Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package storage - maintain the on-disk data store
//
// maintain separate pools of a number of elements in key->value form
//
// This maintains a single LevelDB database split into a series of
// tables. Each table is defined by a prefix byte that is obtained
// from the prefix tag in the struct defining the available tables.
//
// Notes:
// 1. each separate pool has a single byte prefix (to spread the keys in LevelDB)
// 2. ++        = concatenation of byte data
// 3. account   = 32 byte opaque identifier
// 4. class id  = 32 byte SHA3-256 of packed class attributes
// 5. u64       = big endian uint64 (8 bytes)
//
// Credit ledger:
//
//   C ++ account               - native credit balance
//                                data: u64
//   W ++ owner ++ spender      - spend allowance granted by owner
//                                data: u64
//
// Class registry:
//
//   R ++ class id              - registered class record
//                                data: packed class attributes
//
// Access ledger:
//
//   B ++ account ++ class id   - access balance
//                                data: u64
//   S ++ class id              - class total supply
//                                data: u64
//
// Control:
//
//   M ++ account               - minter allow-list entry
//                                data: 0x01
//   K ++ name                  - named control scalars (total supply,
//                                paused flag, snapshot markers)
//                                data: u64 or raw bytes
package storage
