// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Accessgrid Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package registry - the class record store
//
// derives stable identifiers from attribute tuples and keeps the
// one-to-one identifier to attributes correspondence; records are
// created lazily on first mint and never deleted, so retired classes
// stay queryable for audit
package registry

import (
	"encoding/hex"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/accessgrid/accessd/account"
	"github.com/accessgrid/accessd/authority"
	"github.com/accessgrid/accessd/classrecord"
	"github.com/accessgrid/accessd/fault"
	"github.com/accessgrid/accessd/storage"
	"github.com/bitmark-inc/logger"
)

// read cache in front of the record pool
const (
	cacheExpiry  = 10 * time.Minute
	cacheCleanup = 20 * time.Minute
)

// Registry - class id to attribute tuple records
type Registry struct {
	sync.RWMutex
	log     *logger.L
	clock   Clock
	auth    authority.Context
	records storage.Handle
	cache   *cache.Cache
	baseURI string
}

// New - create a registry over a record pool
func New(records storage.Handle, clock Clock, auth authority.Context) (*Registry, error) {
	if nil == records || nil == clock || nil == auth {
		return nil, fault.NotInitialised
	}
	return &Registry{
		log:     logger.New("registry"),
		clock:   clock,
		auth:    auth,
		records: records,
		cache:   cache.New(cacheExpiry, cacheCleanup),
	}, nil
}

// read a packed record through the cache
func (r *Registry) fetch(classId classrecord.ClassId) classrecord.Packed {
	if cached, ok := r.cache.Get(classId.String()); ok {
		return cached.(classrecord.Packed)
	}
	packed := r.records.Get(classId[:])
	if nil == packed {
		return nil
	}
	record := classrecord.Packed(packed)
	r.cache.Set(classId.String(), record, cache.DefaultExpiration)
	return record
}

// ComputeClassId - pure identifier derivation, no side effects
func ComputeClassId(attributes *classrecord.ClassAttributes) classrecord.ClassId {
	return attributes.ClassId()
}

// GetOrCreate - derive the identifier and store the record on first use
//
// an existing record is verified field-for-field: any mismatch under
// the same identifier indicates a hash-derivation bug and hard-fails
// rather than silently correcting
func (r *Registry) GetOrCreate(attributes *classrecord.ClassAttributes) (classrecord.ClassId, error) {
	classId := attributes.ClassId()

	r.Lock()
	defer r.Unlock()

	existing := r.fetch(classId)
	if nil != existing {
		stored, err := existing.Unpack()
		if nil != err {
			r.log.Criticalf("corrupt record for class: %s  error: %s", classId, err)
			return classId, err
		}
		if !stored.Equal(attributes) {
			r.log.Criticalf("attribute mismatch for class: %s", classId)
			return classId, fault.ConfigMismatch
		}
		return classId, nil
	}

	packed := attributes.Pack()
	r.records.Put(classId[:], packed)
	r.cache.Set(classId.String(), packed, cache.DefaultExpiration)

	r.log.Infof("registered class: %s  model: %q  scope: %q  expiration: %d",
		classId, attributes.Model.String(), attributes.Scope.String(), attributes.Expiration)

	return classId, nil
}

// Get - fetch the attribute tuple for a registered class
func (r *Registry) Get(classId classrecord.ClassId) (*classrecord.ClassAttributes, error) {
	r.RLock()
	defer r.RUnlock()

	packed := r.fetch(classId)
	if nil == packed {
		return nil, fault.UnknownClassIdError{ClassId: classId.String()}
	}
	return packed.Unpack()
}

// Has - check a class is registered
func (r *Registry) Has(classId classrecord.ClassId) bool {
	r.RLock()
	defer r.RUnlock()
	return nil != r.fetch(classId)
}

// Now - current time from the injected clock
func (r *Registry) Now() uint64 {
	return r.clock.Now()
}

// Expired - derived expiration state of an attribute tuple
//
// zero expiration never expires; the boundary instant itself counts
// as expired
func (r *Registry) Expired(attributes *classrecord.ClassAttributes) bool {
	if 0 == attributes.Expiration {
		return false
	}
	return r.clock.Now() >= attributes.Expiration
}

// IsExpired - derived expiration state of a registered class
//
// false for an unregistered class: this is a query convenience, not a
// trust signal
func (r *Registry) IsExpired(classId classrecord.ClassId) bool {
	attributes, err := r.Get(classId)
	if nil != err {
		return false
	}
	return r.Expired(attributes)
}

// SetBaseURI - owner-only metadata base configuration
func (r *Registry) SetBaseURI(caller account.Account, baseURI string) error {
	if !r.auth.IsAuthorized(caller, authority.ActionConfigure) {
		return fault.Unauthorized
	}

	r.Lock()
	r.baseURI = baseURI
	r.Unlock()
	return nil
}

// BaseURI - the current metadata base
func (r *Registry) BaseURI() string {
	r.RLock()
	defer r.RUnlock()
	return r.baseURI
}

// URI - metadata location for a class
func (r *Registry) URI(classId classrecord.ClassId) string {
	r.RLock()
	defer r.RUnlock()
	return r.baseURI + hex.EncodeToString(classId[:]) + ".json"
}

// Classes - enumerate every registered class id, for audits
func (r *Registry) Classes() []classrecord.ClassId {
	r.RLock()
	defer r.RUnlock()

	classes := make([]classrecord.ClassId, 0, 16)
	r.records.Iterate(func(key []byte, value []byte) bool {
		var classId classrecord.ClassId
		if nil == classrecord.ClassIdFromBytes(&classId, key) {
			classes = append(classes, classId)
		}
		return true
	})
	return classes
}
