// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Accessgrid Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package registry_test

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/accessgrid/accessd/account"
	"github.com/accessgrid/accessd/authority"
	"github.com/accessgrid/accessd/classrecord"
	"github.com/accessgrid/accessd/fault"
	"github.com/accessgrid/accessd/registry"
	"github.com/accessgrid/accessd/storage"
	"github.com/bitmark-inc/logger"
)

// adjustable test time
var currentTime uint64 = 1000000

var testClock = registry.ClockFunc(func() uint64 {
	return currentTime
})

var owner = makeAccount(0x01)

func makeAccount(fill byte) account.Account {
	var a account.Account
	for i := 0; i < account.AccountSize; i += 1 {
		a[i] = fill
	}
	return a
}

func TestMain(m *testing.M) {
	workDirectory, err := ioutil.TempDir("", "registry-test")
	if nil != err {
		panic(fmt.Sprintf("tempdir failed: %s", err))
	}
	defer os.RemoveAll(workDirectory)

	logConfiguration := logger.Configuration{
		Directory: workDirectory,
		File:      "registry.log",
		Size:      1048576,
		Count:     10,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	}
	if err := logger.Initialise(logConfiguration); nil != err {
		panic(fmt.Sprintf("logger initialisation failed: %s", err))
	}

	if err := storage.Initialise(filepath.Join(workDirectory, "registry.leveldb")); nil != err {
		panic(fmt.Sprintf("storage initialisation failed: %s", err))
	}

	rc := m.Run()
	storage.Finalise()
	os.Exit(rc)
}

func newRegistry(t *testing.T) *registry.Registry {
	auth, err := authority.NewSingleOwner(owner)
	if nil != err {
		t.Fatalf("authority error: %s", err)
	}
	r, err := registry.New(storage.Pool.ClassRecords, testClock, auth)
	if nil != err {
		t.Fatalf("registry error: %s", err)
	}
	return r
}

func makeAttributes(t *testing.T, expiration uint64) *classrecord.ClassAttributes {
	model, err := classrecord.TagFromString("model-a")
	if nil != err {
		t.Fatalf("tag error: %s", err)
	}
	scope, err := classrecord.TagFromString("scope-a")
	if nil != err {
		t.Fatalf("tag error: %s", err)
	}
	return &classrecord.ClassAttributes{
		Model:      model,
		Scope:      scope,
		Expiration: expiration,
		OriginPool: makeAccount(0x10),
		Tradable:   true,
	}
}

func TestGetOrCreateIdempotent(t *testing.T) {
	r := newRegistry(t)
	attributes := makeAttributes(t, 0)

	first, err := r.GetOrCreate(attributes)
	assert.NoError(t, err, "first create error")

	second, err := r.GetOrCreate(attributes)
	assert.NoError(t, err, "second create error")
	assert.Equal(t, first, second, "identifier not stable")

	stored, err := r.Get(first)
	assert.NoError(t, err, "get error")
	assert.True(t, attributes.Equal(stored), "stored attributes mismatch")
	assert.True(t, r.Has(first), "record missing")
}

func TestGetUnknown(t *testing.T) {
	r := newRegistry(t)

	var missing classrecord.ClassId
	missing[0] = 0xde

	_, err := r.Get(missing)
	assert.True(t, fault.IsErrNotFound(fault.UnknownClassIdBase), "sentinel class")
	assert.Error(t, err, "missing class found")
	assert.IsType(t, fault.UnknownClassIdError{}, err, "wrong error type")
}

// a stored record that disagrees with the tuple deriving its id can
// only mean a broken hash derivation: must hard fail
func TestConfigMismatch(t *testing.T) {
	r := newRegistry(t)

	good := makeAttributes(t, 42)
	bad := makeAttributes(t, 43)
	classId := good.ClassId()

	// plant a record for a different tuple under good's identifier
	storage.Pool.ClassRecords.Put(classId[:], bad.Pack())

	_, err := r.GetOrCreate(good)
	assert.Equal(t, fault.ConfigMismatch, err, "mismatch not detected")

	storage.Pool.ClassRecords.Delete(classId[:])
}

func TestExpirationBoundary(t *testing.T) {
	r := newRegistry(t)

	expiration := currentTime + 100
	attributes := makeAttributes(t, expiration)
	classId, err := r.GetOrCreate(attributes)
	assert.NoError(t, err, "create error")

	saved := currentTime
	defer func() { currentTime = saved }()

	currentTime = expiration - 1
	assert.False(t, r.IsExpired(classId), "expired one second early")

	currentTime = expiration
	assert.True(t, r.IsExpired(classId), "boundary instant must count as expired")

	currentTime = expiration + 1
	assert.True(t, r.IsExpired(classId), "not expired after boundary")
}

func TestNeverExpires(t *testing.T) {
	r := newRegistry(t)

	attributes := makeAttributes(t, 0)
	classId, err := r.GetOrCreate(attributes)
	assert.NoError(t, err, "create error")

	saved := currentTime
	defer func() { currentTime = saved }()

	currentTime += 365 * 24 * 60 * 60
	assert.False(t, r.IsExpired(classId), "zero expiration must never expire")
}

func TestIsExpiredUnknown(t *testing.T) {
	r := newRegistry(t)

	var missing classrecord.ClassId
	missing[0] = 0xff
	assert.False(t, r.IsExpired(missing), "unregistered class reported expired")
}

func TestURI(t *testing.T) {
	r := newRegistry(t)

	attributes := makeAttributes(t, 0)
	classId, _ := r.GetOrCreate(attributes)

	err := r.SetBaseURI(makeAccount(0x99), "https://meta.test/")
	assert.Equal(t, fault.Unauthorized, err, "non-owner set accepted")

	err = r.SetBaseURI(owner, "https://meta.test/")
	assert.NoError(t, err, "set base URI error")

	expected := "https://meta.test/" + classId.String() + ".json"
	assert.Equal(t, expected, r.URI(classId), "wrong URI")
}

func TestClasses(t *testing.T) {
	r := newRegistry(t)

	attributes := makeAttributes(t, 7777)
	classId, _ := r.GetOrCreate(attributes)

	found := false
	for _, c := range r.Classes() {
		if c == classId {
			found = true
		}
	}
	assert.True(t, found, "registered class not enumerated")
}
