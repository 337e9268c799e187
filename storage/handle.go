// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Accessgrid Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"

	"github.com/syndtr/goleveldb/leveldb"
	ldb_util "github.com/syndtr/goleveldb/leveldb/util"

	"github.com/bitmark-inc/logger"
)

// Handle - the interface offered by a pool
type Handle interface {
	Put(key []byte, value []byte)
	PutN(key []byte, value uint64)
	Get(key []byte) []byte
	GetN(key []byte) (uint64, bool)
	Has(key []byte) bool
	Delete(key []byte)
	Iterate(fn func(key []byte, value []byte) bool)
	Clear()
}

// PoolHandle - a single prefixed table inside the database
type PoolHandle struct {
	prefix byte
}

// prepend the prefix onto the key
func (p *PoolHandle) prefixKey(key []byte) []byte {
	prefixedKey := make([]byte, 1, len(key)+1)
	prefixedKey[0] = p.prefix
	return append(prefixedKey, key...)
}

// Put - store a key/value bytes pair to the database
func (p *PoolHandle) Put(key []byte, value []byte) {
	poolData.RLock()
	defer poolData.RUnlock()
	if nil == poolData.db {
		logger.Panic("pool.Put nil database")
		return
	}
	err := poolData.db.Put(p.prefixKey(key), value, nil)
	logger.PanicIfError("pool.Put", err)
}

// PutN - store a big endian uint64 under a key
func (p *PoolHandle) PutN(key []byte, value uint64) {
	buffer := make([]byte, 8)
	binary.BigEndian.PutUint64(buffer, value)
	p.Put(key, buffer)
}

// Get - read a value for a given key
//
// this returns the actual element - copy the result if it must be preserved
func (p *PoolHandle) Get(key []byte) []byte {
	poolData.RLock()
	defer poolData.RUnlock()
	if nil == poolData.db {
		return nil
	}
	value, err := poolData.db.Get(p.prefixKey(key), nil)
	if leveldb.ErrNotFound == err {
		return nil
	}
	logger.PanicIfError("pool.Get", err)
	return value
}

// GetN - read a record and decode as big endian uint64
//
// second parameter is false if record was not found
// panics if not exactly 8 bytes in the record
func (p *PoolHandle) GetN(key []byte) (uint64, bool) {
	buffer := p.Get(key)
	if nil == buffer {
		return 0, false
	}
	if 8 != len(buffer) {
		logger.Panicf("pool.GetN invalid count: %d bytes", len(buffer))
	}
	return binary.BigEndian.Uint64(buffer), true
}

// Has - check if a key exists
func (p *PoolHandle) Has(key []byte) bool {
	poolData.RLock()
	defer poolData.RUnlock()
	if nil == poolData.db {
		return false
	}
	value, err := poolData.db.Has(p.prefixKey(key), nil)
	logger.PanicIfError("pool.Has", err)
	return value
}

// Delete - remove a key from the database
func (p *PoolHandle) Delete(key []byte) {
	poolData.RLock()
	defer poolData.RUnlock()
	if nil == poolData.db {
		logger.Panic("pool.Delete nil database")
		return
	}
	err := poolData.db.Delete(p.prefixKey(key), nil)
	logger.PanicIfError("pool.Delete", err)
}

// Iterate - call fn for every element in the pool, in key order
//
// iteration stops early when fn returns false
// the prefix byte is stripped from the delivered keys
func (p *PoolHandle) Iterate(fn func(key []byte, value []byte) bool) {
	poolData.RLock()
	if nil == poolData.db {
		poolData.RUnlock()
		return
	}
	iterator := poolData.db.NewIterator(ldb_util.BytesPrefix([]byte{p.prefix}), nil)
	poolData.RUnlock()

	defer iterator.Release()
	for iterator.Next() {
		key := make([]byte, len(iterator.Key())-1)
		copy(key, iterator.Key()[1:])
		value := make([]byte, len(iterator.Value()))
		copy(value, iterator.Value())
		if !fn(key, value) {
			break
		}
	}
	logger.PanicIfError("pool.Iterate", iterator.Error())
}

// Clear - remove every element from the pool
func (p *PoolHandle) Clear() {
	keys := make([][]byte, 0, 16)
	p.Iterate(func(key []byte, value []byte) bool {
		keys = append(keys, key)
		return true
	})
	for _, key := range keys {
		p.Delete(key)
	}
}
